package cfgerr_test

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/kyson-dev/sing-deploy/internal/cfgerr"
	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	err := cfgerr.New(cfgerr.InvalidValue, "listen_port", "port %d out of range", 70000)
	assert.Equal(t, "invalid_value (listen_port): port 70000 out of range", err.Error())

	var nilErr *cfgerr.Error
	assert.Equal(t, "<nil>", nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())
}

func TestError_KindSurvivesWrapping(t *testing.T) {
	base := cfgerr.Missing("tls.key_path")
	wrapped := fmt.Errorf("module inbound failed: %w", base)

	assert.True(t, cfgerr.IsKind(wrapped, cfgerr.MissingField))
	assert.False(t, cfgerr.IsKind(wrapped, cfgerr.InvalidValue))
	assert.Equal(t, cfgerr.MissingField, cfgerr.KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, &cfgerr.Error{Kind: cfgerr.MissingField}))
	assert.True(t, errors.Is(wrapped, &cfgerr.Error{Kind: cfgerr.MissingField, Field: "tls.key_path"}))
	assert.False(t, errors.Is(wrapped, &cfgerr.Error{Kind: cfgerr.MissingField, Field: "tls.certificate_path"}))
}

// TestIsKind_JoinedErrors 聚合错误里排在后面的类别也能匹配
func TestIsKind_JoinedErrors(t *testing.T) {
	joined := errors.Join(
		cfgerr.Missing("inbounds.0.tag"),
		cfgerr.New(cfgerr.PortConflict, "inbounds.2.listen_port", "port 443 used by a, b"),
	)
	wrapped := fmt.Errorf("config rejected: %w", joined)

	assert.True(t, cfgerr.IsKind(wrapped, cfgerr.MissingField))
	assert.True(t, cfgerr.IsKind(wrapped, cfgerr.PortConflict))
	assert.False(t, cfgerr.IsKind(wrapped, cfgerr.SyntaxError))
	assert.Equal(t, cfgerr.MissingField, cfgerr.KindOf(wrapped))
	assert.False(t, cfgerr.IsKind(nil, cfgerr.MissingField))
}

func TestError_Unwrap(t *testing.T) {
	err := cfgerr.Wrap(cfgerr.SyntaxError, "", io.ErrUnexpectedEOF, "document is truncated")
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "unexpected EOF")
	assert.Equal(t, cfgerr.Kind(""), cfgerr.KindOf(io.EOF))
}
