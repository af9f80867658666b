package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	plain := New(ErrKindInvalidInput, "bad request")
	assert.Equal(t, "[invalid_input] bad request", plain.Error())

	wrapped := Wrap(ErrKindQueryFailed, "query failed", errors.New("syntax error near SELECT"))
	assert.Equal(t, "[query_failed] query failed: syntax error near SELECT", wrapped.Error())
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFound(New(ErrKindNotFound, "gone")))
	assert.True(t, IsTimeout(New(ErrKindTimeout, "slow")))
	assert.True(t, IsConnectionFailed(New(ErrKindConnectionFailed, "down")))
	assert.True(t, IsQueryFailed(New(ErrKindQueryFailed, "broken")))
	assert.True(t, IsInvalidInput(New(ErrKindInvalidInput, "bad")))

	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	inner := New(ErrKindNotFound, "missing table")
	outer := fmt.Errorf("while inspecting schema: %w", inner)

	assert.True(t, IsNotFound(outer))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("driver says no")
	err := Wrap(ErrKindConnectionFailed, "connect failed", cause)

	assert.True(t, errors.Is(err, cause))
}
