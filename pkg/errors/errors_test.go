package errors

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	err := New(InvalidInput, "bad value")

	var e *Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, InvalidInput, e.Code())
	assert.Equal(t, "bad value", err.Error())
}

func TestWrapPreservesOriginal(t *testing.T) {
	original := stderrors.New("boom")
	err := Wrap(original, LLMGenerationFailed, "call failed")

	assert.ErrorIs(t, err, original)
	assert.Contains(t, err.Error(), "call failed")
	assert.Contains(t, err.Error(), "boom")
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, Unknown, "ignored"))
	assert.Nil(t, WithFields(nil, Fields{"k": "v"}))
}

func TestWithFieldsMergesIntoStructuredError(t *testing.T) {
	err := WithFields(New(SeedExhausted, "gave up"), Fields{"island_id": 3})
	err = WithFields(err, Fields{"max_attempts": 100})

	var e *Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, SeedExhausted, e.Code())
	assert.Equal(t, 3, e.Fields()["island_id"])
	assert.Equal(t, 100, e.Fields()["max_attempts"])
}

func TestWithFieldsWrapsForeignErrors(t *testing.T) {
	err := WithFields(stderrors.New("plain"), Fields{"k": "v"})

	var e *Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, Unknown, e.Code())
	assert.Equal(t, "v", e.Fields()["k"])
}

func TestIsMatchesOnCode(t *testing.T) {
	err := New(Canceled, "stopped")
	assert.True(t, stderrors.Is(err, New(Canceled, "anything")))
	assert.False(t, stderrors.Is(err, New(Timeout, "anything")))
}

func TestCheckContext(t *testing.T) {
	assert.NoError(t, CheckContext(context.Background(), "op"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := CheckContext(ctx, "evolution batch")
	require.Error(t, err)

	var e *Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, Canceled, e.Code())
	assert.Contains(t, err.Error(), "evolution batch canceled")
}
