package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderConstruction(t *testing.T) {
	t.Run("FullChain", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Connection(CodeStoreUnavailable.String(), "store unreachable").
			WithOperation("FindComponentByID").
			WithResource("component").
			WithUserID("user-1").
			WithCause(cause).
			WithRetryAfter(2 * time.Second).
			Build()

		assert.Equal(t, ErrorTypeConnection, err.Type)
		assert.Equal(t, "STORE_UNAVAILABLE", err.Code)
		assert.Equal(t, "FindComponentByID", err.Operation)
		assert.Equal(t, "component", err.Resource)
		assert.True(t, err.Retryable)
		assert.Equal(t, 2*time.Second, err.RetryAfter)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("DefaultSeverities", func(t *testing.T) {
		assert.Equal(t, SeverityLow, Validation("C", "m").Build().Severity)
		assert.Equal(t, SeverityLow, NotFound("C", "m").Build().Severity)
		assert.Equal(t, SeverityMedium, Conflict("C", "m").Build().Severity)
		assert.Equal(t, SeverityHigh, Internal("C", "m").Build().Severity)
	})
}

func TestClassification(t *testing.T) {
	notFound := NotFound(CodeBuildNotFound.String(), "build not found").Build()
	conflict := Conflict(CodeCategoryConflict.String(), "category occupied").Build()

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(conflict))
	assert.True(t, IsConflict(conflict))
	assert.True(t, IsRetryable(conflict))
	assert.False(t, IsRetryable(notFound))
	assert.Equal(t, "BUILD_NOT_FOUND", GetCode(notFound))
	assert.Empty(t, GetCode(errors.New("plain")))
}

func TestClassificationThroughWrapping(t *testing.T) {
	inner := NotFound(CodeComponentNotFound.String(), "component not found").Build()
	wrapped := fmt.Errorf("loading catalog: %w", inner)

	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, "COMPONENT_NOT_FOUND", GetCode(wrapped))
}

func TestWrap(t *testing.T) {
	t.Run("PreservesType", func(t *testing.T) {
		inner := Validation(CodeInvalidQuantity.String(), "quantity must be positive").Build()
		wrapped := Wrap(inner, "AddComponent", "cannot add component to build")

		require.NotNil(t, wrapped)
		assert.Equal(t, ErrorTypeValidation, wrapped.Type)
		assert.Equal(t, "AddComponent", wrapped.Operation)
		assert.True(t, IsValidation(wrapped))
	})

	t.Run("ForeignErrorBecomesInternal", func(t *testing.T) {
		wrapped := Wrap(errors.New("disk full"), "SaveBuild", "persist failed")
		assert.Equal(t, ErrorTypeInternal, wrapped.Type)
		assert.Equal(t, "disk full", wrapped.Details)
	})

	t.Run("NilPassthrough", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, "op", "msg"))
	})
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"Validation", Validation("C", "m").Build(), http.StatusBadRequest},
		{"NotFound", NotFound("C", "m").Build(), http.StatusNotFound},
		{"Conflict", Conflict("C", "m").Build(), http.StatusConflict},
		{"Unauthorized", Unauthorized("C", "m").Build(), http.StatusUnauthorized},
		{"Forbidden", Forbidden("C", "m").Build(), http.StatusForbidden},
		{"Internal", Internal("C", "m").Build(), http.StatusInternalServerError},
		{"Timeout", Timeout("C", "m").Build(), http.StatusGatewayTimeout},
		{"Foreign", errors.New("x"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestPublicMessageMasksInternals(t *testing.T) {
	internal := Internal(CodeInternalError.String(), "dynamo table missing").Build()
	assert.Equal(t, "an internal error occurred", PublicMessage(internal))

	visible := NotFound(CodeBuildNotFound.String(), "build not found").Build()
	assert.Equal(t, "build not found", PublicMessage(visible))
}
