package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesCode(t *testing.T) {
	base := InvalidInput("sample size must be positive")
	wrapped := Wrap(base, "run scenario")

	assert.Equal(t, CodeInvalidInput, GetCode(wrapped))
	assert.Equal(t, "run scenario: sample size must be positive", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, base))
}

func TestWrapForeignError(t *testing.T) {
	wrapped := Wrapf(fs.ErrNotExist, "open %s", "energy.csv")

	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.ErrorIs(t, wrapped, fs.ErrNotExist)
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestIOError(t *testing.T) {
	err := IOError("data/energy.csv", fs.ErrNotExist)

	assert.Equal(t, CodeIOError, GetCode(err))
	assert.Contains(t, err.Error(), "data/energy.csv")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestNotFound(t *testing.T) {
	kind := stderrors.New("run not found")
	err := fmt.Errorf("lookup: %w", NotFound(kind, "0192"))

	assert.True(t, HasCode(err, CodeNotFound))
	assert.ErrorIs(t, err, kind)
	assert.Equal(t, "lookup: 0192: run not found", err.Error())
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
	assert.False(t, HasCode(nil, CodeNotFound))
}
