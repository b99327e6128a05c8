package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medslot/internal/domain"
)

// @Summary Забронировать слот
// @Description Атомарно занимает свободный слот и создает запись; стоимость делится 60/40 между врачом и больницей
// @Tags Бронирование
// @Accept json
// @Produce json
// @Param input body domain.BookSlotDTO true "Слот и аффилиация"
// @Success 201 {object} domain.Appointment "Созданная запись"
// @Failure 400 {object} errorResponseBody "Ошибка валидации данных"
// @Failure 404 {object} errorResponseBody "Слот не найден"
// @Failure 409 {object} errorResponseBody "Слот уже забронирован"
// @Failure 429 {object} errorResponseBody "Слишком много запросов"
// @Security ApiKeyAuth
// @Router /bookings [post]
func (h *Handler) bookSlot(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var req domain.BookSlotDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	appointment, err := h.services.Booking.Book(c.Request.Context(), caller.UserID, req)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	createdResponse(c, appointment)
}

// @Summary Мои записи
// @Tags Бронирование
// @Produce json
// @Success 200 {array} domain.Appointment "Записи пациента"
// @Security ApiKeyAuth
// @Router /appointments/me [get]
func (h *Handler) getMyAppointments(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	appointments, err := h.services.Booking.ListForPatient(c.Request.Context(), caller.UserID)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, appointments)
}

// @Summary Получить запись
// @Tags Бронирование
// @Produce json
// @Param id path string true "ID записи"
// @Success 200 {object} domain.Appointment "Запись"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Security ApiKeyAuth
// @Router /appointments/{id} [get]
func (h *Handler) getAppointment(c *gin.Context) {
	appointment, ok := h.loadAccessibleAppointment(c)
	if !ok {
		return
	}

	successResponse(c, http.StatusOK, appointment)
}

// @Summary Завершить прием
// @Description Переводит запись из статуса booked в completed
// @Tags Бронирование
// @Produce json
// @Param id path string true "ID записи"
// @Success 200 {object} domain.Appointment "Завершенная запись"
// @Failure 400 {object} errorResponseBody "Запись нельзя завершить"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Security ApiKeyAuth
// @Router /appointments/{id}/complete [post]
func (h *Handler) completeAppointment(c *gin.Context) {
	if _, ok := h.loadAccessibleAppointment(c); !ok {
		return
	}

	appointment, err := h.services.Booking.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, appointment)
}

// @Summary Квитанция о записи
// @Description PDF с QR-кодом; при настроенном хранилище возвращается ссылка
// @Tags Бронирование
// @Produce application/pdf
// @Produce json
// @Param id path string true "ID записи"
// @Success 200 {file} file "PDF квитанция"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Security ApiKeyAuth
// @Router /appointments/{id}/receipt [get]
func (h *Handler) getAppointmentReceipt(c *gin.Context) {
	if _, ok := h.loadAccessibleAppointment(c); !ok {
		return
	}

	doc, err := h.services.Booking.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	documentResponse(c, doc, "application/pdf")
}

// loadAccessibleAppointment lets the patient and the doctor of an appointment
// see it; hospital administrators see every appointment.
func (h *Handler) loadAccessibleAppointment(c *gin.Context) (*domain.Appointment, bool) {
	caller, err := getCaller(c)
	if err != nil {
		unauthorizedResponse(c)
		return nil, false
	}

	appointment, err := h.services.Booking.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceErrorResponse(c, err)
		return nil, false
	}

	switch caller.Role {
	case domain.UserRoleHospitalAdmin:
		return appointment, true
	case domain.UserRoleDoctor:
		if appointment.DoctorID == caller.UserID {
			return appointment, true
		}
	case domain.UserRolePatient:
		if appointment.PatientID == caller.UserID {
			return appointment, true
		}
	}

	forbiddenResponse(c)
	return nil, false
}
