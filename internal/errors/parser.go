package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with a user-facing message.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError translates database and driver errors into user-facing codes.
// Sensitive detail stays out of the message; the raw error is logged by the
// caller.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Something went wrong"}
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(context)}
	}

	// Postgres unique violation (23505); sqlite reports "UNIQUE constraint failed"
	if strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	// Foreign key violation (23503)
	if strings.Contains(errStr, "foreign key constraint") {
		return ErrorInfo{Code: ResourceNotFound, Message: "Referenced record does not exist"}
	}

	// Not-null violation (23502)
	if strings.Contains(errStr, "null value") && strings.Contains(errStr, "not-null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
	}

	// Check violation (23514): only the stock guard uses checks
	if strings.Contains(errStr, "check constraint") {
		return ErrorInfo{Code: ValidationInvalidRange, Message: "A value is out of range"}
	}

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") {
		return ErrorInfo{Code: InternalDatabaseError, Message: "Service temporarily unavailable. Please try again later"}
	}

	return ErrorInfo{Code: InternalServerError, Message: "Something went wrong. Please try again later"}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	switch {
	case strings.Contains(errStr, "email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "This email is already registered"}
	case strings.Contains(errStr, "slug"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "This slug is already in use"}
	case strings.Contains(errStr, "order_number"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "Order number collision, please retry"}
	case strings.Contains(errStr, "name"):
		return ErrorInfo{Code: CatalogNameExists, Message: "This name is already taken"}
	case strings.Contains(errStr, "cart"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "This perfume is already in the cart"}
	default:
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "This record already exists"}
	}
}

// ParseAndRespond parses an error and writes the response in one step.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}

func notFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "perfume"):
		return "Perfume not found"
	case strings.Contains(contextLower, "brand"):
		return "Brand not found"
	case strings.Contains(contextLower, "category"):
		return "Category not found"
	case strings.Contains(contextLower, "order"):
		return "Order not found"
	case strings.Contains(contextLower, "cart"):
		return "Item not found in cart"
	case strings.Contains(contextLower, "user"):
		return "User not found"
	case strings.Contains(contextLower, "address"):
		return "Address not found"
	default:
		return "Requested record not found"
	}
}
