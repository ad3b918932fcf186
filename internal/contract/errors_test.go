package contract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestErrorCodes(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := WrapError(CodeStorage, cause, "saving %s", "abc")

	assert.Equal(t, "storage: saving abc: dial tcp: refused", err.Error())
	assert.True(t, HasCode(err, CodeStorage))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "saving abc", MessageOf(err))

	wrapped := fmt.Errorf("outer: %w", NewError(CodeInvalidInput, "empty url"))
	assert.ErrorIs(t, wrapped, ErrInvalidInput)
	assert.NotErrorIs(t, wrapped, ErrNotFound)
	assert.Equal(t, CodeInvalidInput, CodeOf(wrapped))

	assert.Nil(t, WrapError(CodeHarvest, nil, "nothing"))
	assert.Equal(t, ErrorCode(""), CodeOf(cause))
	assert.Equal(t, cause.Error(), MessageOf(cause))
}

func TestLoggerContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, log.InfoLevel)
	ctx := WithLogger(context.Background(), logger)

	assert.Same(t, logger, LoggerFrom(ctx))
	assert.NotNil(t, LoggerFrom(context.Background()))

	LoggerFrom(ctx).Info("scored", "url", "https://huggingface.co/gpt2")
	assert.Contains(t, buf.String(), "scored")

	buf.Reset()
	LoggerFrom(ctx).Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestNewStderrLogger(t *testing.T) {
	assert.Equal(t, log.DebugLevel, NewStderrLogger("DEBUG").GetLevel())
	assert.Equal(t, log.WarnLevel, NewStderrLogger("bogus").GetLevel())
}
