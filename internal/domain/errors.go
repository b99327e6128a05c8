package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidTimeRange = errors.New("время окончания должно быть позже времени начала")
	ErrSlotOverlap      = errors.New("слот пересекается с существующей доступностью врача")
	ErrValidation       = errors.New("ошибка валидации")
	ErrNotFound         = errors.New("объект не найден")
	ErrSlotUnavailable  = errors.New("слот уже забронирован")
)

// OverlapError names the unbooked slot that the proposed interval intersects.
type OverlapError struct {
	SlotID string
	Start  time.Time
	End    time.Time
}

func (e *OverlapError) Error() string {
	if e.SlotID == "" {
		return ErrSlotOverlap.Error()
	}
	return fmt.Sprintf("%s: слот %s [%s, %s)", ErrSlotOverlap, e.SlotID,
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

func (e *OverlapError) Unwrap() error {
	return ErrSlotOverlap
}

type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

type NotFoundError struct {
	Entity string
	ID     string
}

func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s не найден", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
