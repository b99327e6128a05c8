package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medslot/internal/domain"
)

type errorResponseBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
}

type successResponseBody struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func successResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, successResponseBody{
		Status: "success",
		Data:   data,
	})
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, errorResponseBody{
		Status:  "error",
		Message: message,
		Code:    statusCode,
	})
}

func createdResponse(c *gin.Context, data interface{}) {
	successResponse(c, http.StatusCreated, data)
}

func badRequestResponse(c *gin.Context, message string) {
	errorResponse(c, http.StatusBadRequest, message)
}

func unauthorizedResponse(c *gin.Context) {
	errorResponse(c, http.StatusUnauthorized, "требуется авторизация")
}

func forbiddenResponse(c *gin.Context, message ...string) {
	msg := "доступ запрещен"
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	errorResponse(c, http.StatusForbidden, msg)
}

func internalServerErrorResponse(c *gin.Context) {
	errorResponse(c, http.StatusInternalServerError, "внутренняя ошибка сервера")
}

// serviceErrorResponse maps the domain error taxonomy onto HTTP statuses.
func (h *Handler) serviceErrorResponse(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	var notFoundErr *domain.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponseBody{
			Status:  "error",
			Message: validationErr.Message,
			Code:    http.StatusBadRequest,
			Field:   validationErr.Field,
		})
	case errors.Is(err, domain.ErrInvalidTimeRange):
		badRequestResponse(c, err.Error())
	case errors.As(err, &notFoundErr), errors.Is(err, domain.ErrNotFound):
		errorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrSlotOverlap), errors.Is(err, domain.ErrSlotUnavailable):
		errorResponse(c, http.StatusConflict, err.Error())
	default:
		h.logger.Error("необработанная ошибка сервиса", zap.String("path", c.Request.URL.Path), zap.Error(err))
		internalServerErrorResponse(c)
	}
}

// documentResponse returns a link when the document was stored, the file itself otherwise.
func documentResponse(c *gin.Context, doc *domain.Document, contentType string) {
	if doc.URL != "" {
		successResponse(c, http.StatusOK, doc)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Data(http.StatusOK, contentType, doc.Content)
}
