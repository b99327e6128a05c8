package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medslot/internal/domain"
	"medslot/internal/service"
)

// @Summary Поиск врачей
// @Description Возвращает предложения врач/больница со свободными слотами
// @Tags Поиск
// @Produce json
// @Param hospital_id query string false "ID больницы"
// @Param specialization query string false "Точное название специализации"
// @Param q query string false "Поиск по имени или специализации"
// @Param date query string false "Дата в формате YYYY-MM-DD"
// @Success 200 {array} domain.DoctorOffering "Предложения"
// @Failure 400 {object} errorResponseBody "Неверный формат даты"
// @Router /search [get]
func (h *Handler) searchDoctors(c *gin.Context) {
	criteria := domain.SearchCriteria{
		Specialization: c.Query("specialization"),
		Query:          c.Query("q"),
	}
	if hospitalID := c.Query("hospital_id"); hospitalID != "" {
		criteria.HospitalID = service.PointerTo(hospitalID)
	}
	if date := c.Query("date"); date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, h.config.Location())
		if err != nil {
			badRequestResponse(c, "неверный формат даты, ожидается YYYY-MM-DD")
			return
		}
		criteria.Date = &day
	}

	offerings, err := h.services.Search.Search(c.Request.Context(), criteria)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, offerings)
}
