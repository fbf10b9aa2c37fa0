package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
)

// errorResponse — единое тело отказа для всех ручек.
type errorResponse struct {
	Error         string              `json:"error"`
	ErrorCode     string              `json:"errorCode"`
	Details       []domain.FieldError `json:"details,omitempty"`
	CorrelationID string              `json:"correlationId"`
	Timestamp     time.Time           `json:"timestamp"`
}

// statusFromCode переводит код отказа в HTTP-статус. Всё, что не ложится
// в известные коды, трактуется как некорректный запрос.
func statusFromCode(code string) int {
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

// respond пишет значение Outcome при успехе или тело отказа при провале.
func respond[T any](c *gin.Context, successStatus int, outcome domain.Outcome[T]) {
	if outcome.IsSuccess() {
		c.JSON(successStatus, outcome.Value())
		return
	}
	respondFailure(c, outcome.Message(), outcome.Code(), outcome.Details())
}

func respondFailure(c *gin.Context, message, code string, details []domain.FieldError) {
	c.JSON(statusFromCode(code), errorResponse{
		Error:         message,
		ErrorCode:     code,
		Details:       details,
		CorrelationID: uuid.NewString(),
		Timestamp:     time.Now().UTC(),
	})
}

// respondBadRequest — отказ на этапе разбора запроса, до валидации.
func respondBadRequest(c *gin.Context, message string) {
	respondFailure(c, message, domain.CodeValidationError, nil)
}

// respondInternal — инфраструктурный сбой; детали остаются в логах.
func respondInternal(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, errorResponse{
		Error:         "internal server error",
		ErrorCode:     "INTERNAL_ERROR",
		CorrelationID: uuid.NewString(),
		Timestamp:     time.Now().UTC(),
	})
}
