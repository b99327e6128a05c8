package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// @Summary Мой доход
// @Description Доля врача по завершенным приемам, сгруппированная по больницам
// @Tags Доход
// @Produce json
// @Success 200 {object} domain.RevenueReport "Доход врача"
// @Security ApiKeyAuth
// @Router /revenue/doctors/me [get]
func (h *Handler) getMyEarnings(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	report, err := h.services.Revenue.DoctorEarnings(c.Request.Context(), caller.UserID)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, report)
}

// @Summary Статистика больницы
// @Description Доля больницы по завершенным приемам в разрезе врачей и отделений
// @Tags Доход
// @Produce json
// @Param id path string true "ID больницы"
// @Success 200 {object} domain.HospitalDashboard "Статистика"
// @Failure 404 {object} errorResponseBody "Больница не найдена"
// @Security ApiKeyAuth
// @Router /revenue/hospitals/{id} [get]
func (h *Handler) getHospitalStats(c *gin.Context) {
	dashboard, err := h.services.Revenue.HospitalStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, dashboard)
}

// @Summary Выгрузка статистики больницы
// @Tags Доход
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce json
// @Param id path string true "ID больницы"
// @Success 200 {file} file "Книга Excel"
// @Failure 404 {object} errorResponseBody "Больница не найдена"
// @Security ApiKeyAuth
// @Router /revenue/hospitals/{id}/export [get]
func (h *Handler) exportHospitalStats(c *gin.Context) {
	doc, err := h.services.Revenue.ExportHospitalStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	documentResponse(c, doc, xlsxContentType)
}
