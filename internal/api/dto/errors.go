package dto

// APIError — тело любого ответа с ошибкой.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	ErrCodeNotFound        = "not_found"
	ErrCodeBadRequest      = "bad_request"
	ErrCodeValidation      = "validation_error"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeForbidden       = "forbidden"
	ErrCodeConflict        = "conflict"
	ErrCodeTooManyRequests = "too_many_requests"
	ErrCodeInternalError   = "internal_error"
)

func NewAPIError(code, message string) APIError {
	return APIError{
		Code:    code,
		Message: message,
	}
}

func NotFoundError(resource string) APIError {
	return NewAPIError(ErrCodeNotFound, resource+" not found")
}

func BadRequestError(message string) APIError {
	return NewAPIError(ErrCodeBadRequest, message)
}

func ValidationError(message string) APIError {
	return NewAPIError(ErrCodeValidation, message)
}

func UnauthorizedError() APIError {
	return NewAPIError(ErrCodeUnauthorized, "unauthorized")
}

func ForbiddenError() APIError {
	return NewAPIError(ErrCodeForbidden, "forbidden")
}

func ConflictError(message string) APIError {
	return NewAPIError(ErrCodeConflict, message)
}

func TooManyRequestsError() APIError {
	return NewAPIError(ErrCodeTooManyRequests, "too many attempts, retry later")
}

// InternalError не раскрывает причину клиенту, она остаётся в логах.
func InternalError() APIError {
	return NewAPIError(ErrCodeInternalError, "an internal error occurred")
}
