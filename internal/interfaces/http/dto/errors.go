package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation = "ERR_VALIDATION"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	ErrCodeEmptyCart    = "ERR_EMPTY_CART"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
)

// Payment error codes
const (
	ErrCodeInvalidSignature      = "ERR_INVALID_SIGNATURE"
	ErrCodePaymentNotConfigured  = "ERR_PAYMENT_NOT_CONFIGURED"
	ErrCodeProviderUnavailable   = "ERR_PROVIDER_UNAVAILABLE"
	ErrCodePayloadTooLarge       = "ERR_PAYLOAD_TOO_LARGE"
	ErrCodeInvalidCheckout       = "ERR_INVALID_CHECKOUT"
	ErrCodeUpstreamUnavailable   = "ERR_UPSTREAM_UNAVAILABLE"
	ErrCodeInvalidCredentials    = "ERR_INVALID_CREDENTIALS"
	ErrCodeAccountDeactivated    = "ERR_ACCOUNT_DEACTIVATED"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	// An empty cart is a user-correctable request problem
	ErrCodeEmptyCart: http.StatusBadRequest,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	// Webhook signature failures are the caller's fault; provider
	// outages are upstream faults.
	ErrCodeInvalidSignature:     http.StatusBadRequest,
	ErrCodePaymentNotConfigured: http.StatusBadRequest,
	ErrCodeProviderUnavailable:  http.StatusBadGateway,
	ErrCodePayloadTooLarge:      http.StatusUnprocessableEntity,
	ErrCodeInvalidCheckout:      http.StatusBadRequest,
	ErrCodeUpstreamUnavailable:  http.StatusBadGateway,
	ErrCodeInvalidCredentials:   http.StatusUnauthorized,
	ErrCodeAccountDeactivated:   http.StatusForbidden,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting
// to 500 for codes it does not know.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodeMapping maps domain error codes to wire-level codes
var domainErrorCodeMapping = map[string]string{
	"NOT_FOUND":              ErrCodeNotFound,
	"ALREADY_EXISTS":         ErrCodeAlreadyExists,
	"INVALID_INPUT":          ErrCodeInvalidInput,
	"INVALID_STATE":          ErrCodeInvalidState,
	"UNAUTHORIZED":           ErrCodeUnauthorized,
	"FORBIDDEN":              ErrCodeForbidden,
	"CONCURRENCY_CONFLICT":   ErrCodeConcurrencyConflict,
	"INTERNAL_ERROR":         ErrCodeInternal,
	"EMPTY_CART":             ErrCodeEmptyCart,
	"INVALID_SIGNATURE":      ErrCodeInvalidSignature,
	"PAYMENT_NOT_CONFIGURED": ErrCodePaymentNotConfigured,
	"PROVIDER_UNAVAILABLE":   ErrCodeProviderUnavailable,
	"PAYLOAD_TOO_LARGE":      ErrCodePayloadTooLarge,
	"INVALID_CHECKOUT":       ErrCodeInvalidCheckout,
	"ERP_UPSTREAM":           ErrCodeUpstreamUnavailable,
	"INVALID_GUEST_TOKEN":    ErrCodeBadRequest,
	"INVALID_CREDENTIALS":    ErrCodeInvalidCredentials,
	"ACCOUNT_DEACTIVATED":    ErrCodeAccountDeactivated,

	"CART_FULL":                   ErrCodeInvalidState,
	"EMAIL_TAKEN":                 ErrCodeAlreadyExists,
	"SKU_TAKEN":                   ErrCodeAlreadyExists,
	"SLUG_TAKEN":                  ErrCodeAlreadyExists,
	"INVALID_CATEGORY":            ErrCodeValidation,
	"INVALID_PARENT":              ErrCodeValidation,
	"INVALID_EMAIL":               ErrCodeValidation,
	"INVALID_NAME":                ErrCodeValidation,
	"INVALID_SKU":                 ErrCodeValidation,
	"INVALID_SLUG":                ErrCodeValidation,
	"INVALID_PRICE":               ErrCodeValidation,
	"INVALID_QUANTITY":            ErrCodeValidation,
	"INVALID_IMAGE_KEY":           ErrCodeValidation,
	"INVALID_ORDER_NUMBER":        ErrCodeValidation,
	"INVALID_PAYMENT_INTENT":      ErrCodeValidation,
	"WEAK_PASSWORD":               ErrCodeValidation,
	"UNSUPPORTED_IMAGE_TYPE":      ErrCodeValidation,
	"UNSUPPORTED_PAYLOAD_VERSION": ErrCodeBusinessRule,
	"UPLOAD_NOT_FOUND":            ErrCodeNotFound,
}

// NormalizeErrorCode converts a domain error code to the wire format.
// Codes already in the wire format, or unknown ones, pass through.
func NormalizeErrorCode(code string) string {
	if wireCode, ok := domainErrorCodeMapping[code]; ok {
		return wireCode
	}
	return code
}
