package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medslot/internal/domain"
)

// @Summary Добавить слот доступности
// @Description Слот не может пересекаться с другими свободными слотами врача ни в одной больнице
// @Tags Доступность
// @Accept json
// @Produce json
// @Param input body domain.RegisterSlotDTO true "Интервал и больница"
// @Success 201 {object} domain.Slot "Созданный слот"
// @Failure 400 {object} errorResponseBody "Время окончания не позже времени начала"
// @Failure 404 {object} errorResponseBody "Больница не найдена"
// @Failure 409 {object} errorResponseBody "Пересечение с существующим слотом"
// @Security ApiKeyAuth
// @Router /availability [post]
func (h *Handler) registerSlot(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var req domain.RegisterSlotDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	slot, err := h.services.Availability.Register(c.Request.Context(), caller.UserID, req)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	createdResponse(c, slot)
}

// @Summary Мои слоты
// @Tags Доступность
// @Produce json
// @Success 200 {array} domain.SlotView "Слоты врача"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Security ApiKeyAuth
// @Router /availability/me [get]
func (h *Handler) getMySlots(c *gin.Context) {
	caller, err := getCaller(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	slots, err := h.services.Availability.ListByDoctor(c.Request.Context(), caller.UserID)
	if err != nil {
		h.serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, slots)
}
