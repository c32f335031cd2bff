package domain

import (
	"errors"
	"fmt"
)

// Application errors
var (
	// ErrInvalidRequest входные данные запроса не прошли валидацию
	ErrInvalidRequest = errors.New("invalid request")

	// ErrRateUnavailable не удалось получить курсы валют
	ErrRateUnavailable = errors.New("exchange rate unavailable")

	// ErrUnsupportedCurrency валюта не входит в поддерживаемый набор
	ErrUnsupportedCurrency = errors.New("unsupported currency")

	// ErrSignatureInvalid не удалось проверить подпись вебхука
	ErrSignatureInvalid = errors.New("webhook signature invalid")

	// ErrDeliveryFailed не удалось отправить письмо
	ErrDeliveryFailed = errors.New("message delivery failed")
)

// ProviderError представляет ошибку платежного провайдера или другого
// внешнего сервиса
type ProviderError struct {
	Service     string
	Op          string
	Message     string
	OriginalErr error
}

// Error реализует интерфейс error
func (e *ProviderError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Service, e.Op, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("%s: %s: %s", e.Service, e.Op, e.Message)
}

// Unwrap возвращает оригинальную ошибку
func (e *ProviderError) Unwrap() error {
	return e.OriginalErr
}

// NewProviderError создает новую ошибку внешнего сервиса
func NewProviderError(service, op, message string, err error) *ProviderError {
	return &ProviderError{
		Service:     service,
		Op:          op,
		Message:     message,
		OriginalErr: err,
	}
}

// ValidationError представляет ошибку валидации конкретного поля запроса
type ValidationError struct {
	Field   string
	Message string
}

// Error реализует интерфейс error
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
}

// Is сопоставляет ошибку с ErrInvalidRequest
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// NewValidationError создает новую ошибку валидации
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
