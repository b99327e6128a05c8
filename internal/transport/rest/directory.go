package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medslot/internal/domain"
)

// @Summary Создать больницу
// @Description Регистрирует новую больницу
// @Tags Справочник
// @Accept json
// @Produce json
// @Param input body domain.CreateHospitalDTO true "Данные больницы"
// @Success 201 {object} domain.Hospital "Созданная больница"
// @Failure 400 {object} errorResponseBody "Ошибка валидации данных"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /hospitals [post]
func (h *Handler) createHospital(c *gin.Context) {
	var req domain.CreateHospitalDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	hospital, err := h.services.Directory.CreateHospital(c.Request.Context(), req)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	createdResponse(c, hospital)
}

// @Summary Список больниц
// @Tags Справочник
// @Produce json
// @Success 200 {array} domain.Hospital "Больницы"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Router /hospitals [get]
func (h *Handler) listHospitals(c *gin.Context) {
	hospitals, err := h.services.Directory.ListHospitals(c.Request.Context())
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, hospitals)
}

// @Summary Получить больницу
// @Tags Справочник
// @Produce json
// @Param id path string true "ID больницы"
// @Success 200 {object} domain.Hospital "Больница"
// @Failure 404 {object} errorResponseBody "Больница не найдена"
// @Router /hospitals/{id} [get]
func (h *Handler) getHospital(c *gin.Context) {
	hospital, err := h.services.Directory.GetHospital(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, hospital)
}

// @Summary Создать отделение
// @Tags Справочник
// @Accept json
// @Produce json
// @Param id path string true "ID больницы"
// @Param input body domain.CreateDepartmentDTO true "Данные отделения"
// @Success 201 {object} domain.Department "Созданное отделение"
// @Failure 400 {object} errorResponseBody "Ошибка валидации данных"
// @Failure 404 {object} errorResponseBody "Больница не найдена"
// @Security ApiKeyAuth
// @Router /hospitals/{id}/departments [post]
func (h *Handler) createDepartment(c *gin.Context) {
	var req domain.CreateDepartmentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	department, err := h.services.Directory.CreateDepartment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	createdResponse(c, department)
}

// @Summary Отделения больницы
// @Tags Справочник
// @Produce json
// @Param id path string true "ID больницы"
// @Success 200 {array} domain.Department "Отделения"
// @Failure 404 {object} errorResponseBody "Больница не найдена"
// @Router /hospitals/{id}/departments [get]
func (h *Handler) listDepartments(c *gin.Context) {
	departments, err := h.services.Directory.ListDepartments(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, departments)
}

// @Summary Сохранить профиль врача
// @Description Специализации передаются строкой через запятую
// @Tags Врачи
// @Accept json
// @Produce json
// @Param input body domain.UpsertDoctorProfileDTO true "Профиль"
// @Success 200 {object} domain.DoctorProfile "Профиль врача"
// @Failure 400 {object} errorResponseBody "Ошибка валидации данных"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Security ApiKeyAuth
// @Router /doctors/me/profile [put]
func (h *Handler) upsertDoctorProfile(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var req domain.UpsertDoctorProfileDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	profile, err := h.services.Directory.UpsertDoctorProfile(c.Request.Context(), caller.UserID, req)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, profile)
}

// @Summary Профиль врача
// @Tags Врачи
// @Produce json
// @Param id path string true "ID врача"
// @Success 200 {object} domain.DoctorProfile "Профиль врача"
// @Failure 404 {object} errorResponseBody "Профиль не найден"
// @Router /doctors/{id} [get]
func (h *Handler) getDoctorProfile(c *gin.Context) {
	profile, err := h.services.Directory.GetDoctorProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, profile)
}
