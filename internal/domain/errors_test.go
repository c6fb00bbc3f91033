package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesWrappedSentinel(t *testing.T) {
	sentinel := Validation("amount must be positive")
	wrapped := fmt.Errorf("deposit: %w", sentinel.Wrap(errors.New("cause")))

	assert.True(t, errors.Is(wrapped, sentinel))
	assert.False(t, errors.Is(wrapped, Validation("other")))
	assert.Equal(t, KindValidation, KindOf(wrapped))
	assert.Equal(t, "amount must be positive", MessageOf(wrapped, "x"))
}

func TestKindOfPlainError(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "fallback", MessageOf(err, "fallback"))
}

func TestIntegrityUnwraps(t *testing.T) {
	cause := errors.New("version conflict")
	err := Integrity("ledger write failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "integrity", err.Kind.String())
}
