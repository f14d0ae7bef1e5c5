package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/circlesoft/crm/internal/domain/crm"
	"github.com/circlesoft/crm/internal/domain/identity"
	"github.com/circlesoft/crm/internal/domain/settings"
	"github.com/circlesoft/crm/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestDomainErrorsHaveStatus(t *testing.T) {
	tests := []struct {
		err      *shared.DomainError
		expected int
	}{
		{shared.ErrNotFound, http.StatusNotFound},
		{shared.ErrInvalidInput, http.StatusBadRequest},
		{shared.ErrNoCurrentUser, http.StatusUnauthorized},
		{crm.ErrCustomerExists, http.StatusConflict},
		{crm.ErrReferenceNotFound, http.StatusUnprocessableEntity},
		{crm.ErrFailureDetailRequired, http.StatusUnprocessableEntity},
		{crm.ErrInquiryNotFound, http.StatusNotFound},
		{identity.ErrInvalidCredentials, http.StatusUnauthorized},
		{identity.ErrEmailInUse, http.StatusConflict},
		{identity.ErrPasswordMismatch, http.StatusBadRequest},
		{identity.ErrTermsNotAccepted, http.StatusBadRequest},
		{identity.ErrUserNotFound, http.StatusNotFound},
		{settings.ErrInvalidPreference, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(NormalizeErrorCode(tt.err.Code)))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode("NOT_FOUND"))
	assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode(ErrCodeNotFound))
	assert.Equal(t, ErrCodeInternal, NormalizeErrorCode(""))
}

func TestResponses(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 23, 3, 10, 3)
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":[1,2],"meta":{"total":23,"page":3,"page_size":10,"total_pages":3}}`, string(raw))

	errResp := NewErrorResponseWithRequestID(ErrCodeNotFound, "missing", "req-1")
	assert.False(t, errResp.Success)
	assert.Equal(t, "req-1", errResp.Error.RequestID)
	assert.Nil(t, errResp.Data)
}
