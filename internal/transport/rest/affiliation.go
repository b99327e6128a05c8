package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medslot/internal/domain"
	"medslot/internal/service"
)

// @Summary Привязаться к отделению больницы
// @Description Название отделения должно совпадать с одной из специализаций врача
// @Tags Аффилиации
// @Accept json
// @Produce json
// @Param input body domain.CreateAffiliationDTO true "Больница, отделение и стоимость"
// @Success 201 {object} domain.Affiliation "Созданная аффилиация"
// @Failure 400 {object} errorResponseBody "Ошибка валидации данных"
// @Failure 404 {object} errorResponseBody "Профиль, больница или отделение не найдены"
// @Security ApiKeyAuth
// @Router /affiliations [post]
func (h *Handler) createAffiliation(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var req domain.CreateAffiliationDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}
	if req.HospitalID == "" || req.DepartmentID == "" {
		badRequestResponse(c, "hospital_id и department_id обязательны")
		return
	}

	affiliation, err := h.services.Affiliation.Create(c.Request.Context(), caller.UserID, req)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	createdResponse(c, affiliation)
}

// @Summary Список аффилиаций
// @Tags Аффилиации
// @Produce json
// @Param doctor_id query string false "ID врача"
// @Param hospital_id query string false "ID больницы"
// @Success 200 {array} domain.Affiliation "Аффилиации"
// @Router /affiliations [get]
func (h *Handler) listAffiliations(c *gin.Context) {
	var filter domain.AffiliationFilter
	if doctorID := c.Query("doctor_id"); doctorID != "" {
		filter.DoctorID = service.PointerTo(doctorID)
	}
	if hospitalID := c.Query("hospital_id"); hospitalID != "" {
		filter.HospitalID = service.PointerTo(hospitalID)
	}

	affiliations, err := h.services.Affiliation.List(c.Request.Context(), filter)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, affiliations)
}
