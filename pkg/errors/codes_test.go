package errors

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "COMMON_001", ErrCodeInternal.String())
	assert.Equal(t, "CDF_004", ErrCodeAssemblyTimeout.String())
}

func TestHTTPStatusForCode(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeInternal, 500},
		{ErrCodeBadRequest, 400},
		{ErrCodeNotFound, 404},
		{ErrCodeValidation, 422},
		{ErrCodeDescriptorInvalid, 422},
		{ErrCodeAssemblyTimeout, 504},
		{ErrCodeInvalidMolecule, 500},
		{ErrCodeMissingInput, 400},
		{ErrCodeWorkspaceInvalid, 400},
		{ErrCodeWorkspaceNotFound, 404},
		{ErrCodeMinimizationTimeout, 504},
		{ErrCodeMinimizationFailed, 502},
		{ErrCodeToolUnavailable, 503},
		{ErrorCode("UNKNOWN"), 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, HTTPStatusForCode(tt.code), string(tt.code))
	}
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "internal server error", DefaultMessageForCode(ErrCodeInternal))
	assert.Equal(t, MsgMinimizationTimeout, DefaultMessageForCode(ErrCodeMinimizationTimeout))
	assert.Equal(t, MsgInvalidDirectory, DefaultMessageForCode(ErrCodeWorkspaceNotFound))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("UNKNOWN")))
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(ErrCodeBadRequest))
	assert.True(t, IsClientError(ErrCodeMissingInput))
	assert.False(t, IsClientError(ErrCodeInternal))
}

func TestIsServerError(t *testing.T) {
	assert.True(t, IsServerError(ErrCodeInternal))
	assert.True(t, IsServerError(ErrCodeAssemblyTimeout))
	assert.False(t, IsServerError(ErrCodeBadRequest))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "COMMON", ModuleForCode(ErrCodeInternal))
	assert.Equal(t, "CDF", ModuleForCode(ErrCodeInvalidMolecule))
	assert.Equal(t, "UNKNOWN", ModuleForCode(ErrorCode("")))
}

func TestAllCodesHaveStatusAndMessage(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z]+_\d{3}$`)
	for code := range ErrorCodeHTTPStatus {
		assert.Regexp(t, pattern, string(code))
		_, ok := ErrorCodeMessage[code]
		assert.True(t, ok, "missing default message for %s", code)
	}
}

//Personal.AI order the ending
