package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeStorageError       ErrorCode = "COMMON_017"
	ErrCodeMessagingError     ErrorCode = "COMMON_018"
)

// Structure pipeline error codes.
const (
	ErrCodeDescriptorInvalid   ErrorCode = "CDF_001"
	ErrCodeUnitBuildFailed     ErrorCode = "CDF_002"
	ErrCodeAssemblyFailed      ErrorCode = "CDF_003"
	ErrCodeAssemblyTimeout     ErrorCode = "CDF_004"
	ErrCodeInvalidMolecule     ErrorCode = "CDF_005"
	ErrCodeRenderFailed        ErrorCode = "CDF_006"
	ErrCodeMissingInput        ErrorCode = "CDF_007"
	ErrCodeWorkspaceInvalid    ErrorCode = "CDF_008"
	ErrCodeWorkspaceNotFound   ErrorCode = "CDF_009"
	ErrCodeMinimizationTimeout ErrorCode = "CDF_010"
	ErrCodeMinimizationFailed  ErrorCode = "CDF_011"
	ErrCodeToolUnavailable     ErrorCode = "CDF_012"
	ErrCodeSessionNotFound     ErrorCode = "CDF_013"
)

// Short aliases used at call sites.
const (
	CodeOK                 = ErrorCode("OK")
	CodeUnknown            = ErrorCode("UNKNOWN")
	CodeInternal           = ErrCodeInternal
	CodeInvalidParam       = ErrCodeBadRequest
	CodeNotFound           = ErrCodeNotFound
	CodeConflict           = ErrCodeConflict
	CodeRateLimit          = ErrCodeTooManyRequests
	CodeServiceUnavailable = ErrCodeServiceUnavailable
	CodeTimeout            = ErrCodeTimeout
	CodeCacheError         = ErrCodeCacheError
	CodeStorageError       = ErrCodeStorageError
	CodeMessagingError     = ErrCodeMessagingError

	CodeDescriptorInvalid   = ErrCodeDescriptorInvalid
	CodeUnitBuildFailed     = ErrCodeUnitBuildFailed
	CodeAssemblyFailed      = ErrCodeAssemblyFailed
	CodeAssemblyTimeout     = ErrCodeAssemblyTimeout
	CodeInvalidMolecule     = ErrCodeInvalidMolecule
	CodeRenderFailed        = ErrCodeRenderFailed
	CodeMissingInput        = ErrCodeMissingInput
	CodeWorkspaceInvalid    = ErrCodeWorkspaceInvalid
	CodeWorkspaceNotFound   = ErrCodeWorkspaceNotFound
	CodeMinimizationTimeout = ErrCodeMinimizationTimeout
	CodeMinimizationFailed  = ErrCodeMinimizationFailed
	CodeToolUnavailable     = ErrCodeToolUnavailable
	CodeSessionNotFound     = ErrCodeSessionNotFound
)

// Wire messages.  Clients of the original service match on these strings.
const (
	MsgAssemblyFailed      = "Error al generar la estructura"
	MsgAssemblyTimeout     = "Tiempo de espera agotado para la generación de la estructura"
	MsgInvalidMolecule     = "No se pudo generar una molécula válida"
	MsgRenderFailed        = "Error al generar coordenadas 2D"
	MsgMissingInput        = "Missing required data"
	MsgInvalidDirectory    = "Invalid directory"
	MsgMinimizationTimeout = "Minimization timeout"
	MsgMinimizationFailed  = "Minimization error"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeStorageError:       http.StatusInternalServerError,
	ErrCodeMessagingError:     http.StatusInternalServerError,

	ErrCodeDescriptorInvalid:   http.StatusUnprocessableEntity,
	ErrCodeUnitBuildFailed:     http.StatusInternalServerError,
	ErrCodeAssemblyFailed:      http.StatusInternalServerError,
	ErrCodeAssemblyTimeout:     http.StatusGatewayTimeout,
	ErrCodeInvalidMolecule:     http.StatusInternalServerError,
	ErrCodeRenderFailed:        http.StatusInternalServerError,
	ErrCodeMissingInput:        http.StatusBadRequest,
	ErrCodeWorkspaceInvalid:    http.StatusBadRequest,
	ErrCodeWorkspaceNotFound:   http.StatusNotFound,
	ErrCodeMinimizationTimeout: http.StatusGatewayTimeout,
	ErrCodeMinimizationFailed:  http.StatusBadGateway,
	ErrCodeToolUnavailable:     http.StatusServiceUnavailable,
	ErrCodeSessionNotFound:     http.StatusNotFound,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeStorageError:       "object storage error",
	ErrCodeMessagingError:     "event publishing error",

	ErrCodeDescriptorInvalid:   "invalid canonical string",
	ErrCodeUnitBuildFailed:     "unit structure build failed",
	ErrCodeAssemblyFailed:      MsgAssemblyFailed,
	ErrCodeAssemblyTimeout:     MsgAssemblyTimeout,
	ErrCodeInvalidMolecule:     MsgInvalidMolecule,
	ErrCodeRenderFailed:        MsgRenderFailed,
	ErrCodeMissingInput:        MsgMissingInput,
	ErrCodeWorkspaceInvalid:    MsgInvalidDirectory,
	ErrCodeWorkspaceNotFound:   MsgInvalidDirectory,
	ErrCodeMinimizationTimeout: MsgMinimizationTimeout,
	ErrCodeMinimizationFailed:  MsgMinimizationFailed,
	ErrCodeToolUnavailable:     "external tool unavailable",
	ErrCodeSessionNotFound:     "session not found",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
