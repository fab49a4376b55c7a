package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_SetsSeverityAndRetryable(t *testing.T) {
	e := New(KindFetchTransient, "timeout", nil)
	assert.Equal(t, SeverityError, e.Severity)
	assert.True(t, e.Retryable)

	e = New(KindNotFound, "missing", nil)
	assert.Equal(t, SeverityFatal, e.Severity)
	assert.False(t, e.Retryable)

	e = New(KindPerDocument, "bad doc", nil)
	assert.Equal(t, SeverityWarning, e.Severity)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(KindStorage, nil))
}

func TestError_UnwrapAndIs(t *testing.T) {
	cause := fmt.Errorf("boom")
	e := Wrap(KindStorage, cause)
	assert.ErrorIs(t, e, e)
	assert.Equal(t, cause, errors.Unwrap(e))
}

func TestIsRetryable_AndIsFatal(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", New(KindFetchTransient, "x", nil))
	assert.True(t, IsRetryable(wrapped))
	assert.False(t, IsFatal(wrapped))

	wrapped = fmt.Errorf("context: %w", New(KindConfiguration, "x", nil))
	assert.True(t, IsFatal(wrapped))
	assert.False(t, IsRetryable(wrapped))

	assert.False(t, IsRetryable(fmt.Errorf("plain")))
}

func TestWithDetail(t *testing.T) {
	e := New(KindValidation, "bad", nil).WithDetail("field", "base_url")
	assert.Equal(t, "base_url", e.Details["field"])
}

func TestFormatForUser(t *testing.T) {
	e := New(KindStorage, "disk full", nil)
	assert.Contains(t, FormatForUser(e), "disk full")
	assert.Equal(t, "plain", FormatForUser(errors.New("plain")))
	assert.Equal(t, "", FormatForUser(nil))
}
