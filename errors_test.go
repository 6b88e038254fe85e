package zxpipe_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericlevine/zxpipe"
)

func TestDecodeErrorsAreDecoderInternal(t *testing.T) {
	for _, err := range []error{zxpipe.ErrChecksum, zxpipe.ErrFormat} {
		wrapped := fmt.Errorf("block 3: %w", err)
		assert.ErrorIs(t, wrapped, zxpipe.ErrDecoderInternal)
		assert.ErrorIs(t, wrapped, err)
		assert.NotErrorIs(t, wrapped, zxpipe.ErrNotFound)
	}
	assert.False(t, errors.Is(zxpipe.ErrChecksum, zxpipe.ErrFormat))
	assert.False(t, errors.Is(zxpipe.ErrNotFound, zxpipe.ErrDecoderInternal))
	assert.False(t, errors.Is(zxpipe.ErrInvalidInput, zxpipe.ErrConfiguration))
}
