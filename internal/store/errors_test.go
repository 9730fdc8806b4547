package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	nf := NotFound("get task", "task %q not found", "x")
	assert.ErrorIs(t, nf, ErrNotFound)
	assert.NotErrorIs(t, nf, ErrTransport)
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("wrapped: %w", nf)))
	assert.Equal(t, `get task: task "x" not found`, nf.Error())

	cause := errors.New("connection refused")
	tr := Transport("list emails", cause)
	assert.ErrorIs(t, tr, ErrTransport)
	assert.ErrorIs(t, tr, cause)

	assert.Equal(t, KindTransport, KindOf(errors.New("plain")))
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindNotFound, KindValidation, KindTransport} {
		assert.Equal(t, k, ParseKind(k.String()))
	}
	assert.Equal(t, KindTransport, ParseKind("weird"))
}
