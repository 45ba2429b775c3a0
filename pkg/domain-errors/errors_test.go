package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesChain(t *testing.T) {
	base := errors.New("socket closed")
	err := Wrap(base, CodeUnavailable, "upstream fetch failed")

	require.Error(t, err)
	assert.True(t, errors.Is(err, base))
	assert.True(t, HasCode(err, CodeUnavailable))
	assert.False(t, HasCode(err, CodeNotFound))
}

func TestHasCodeFindsInnerCode(t *testing.T) {
	inner := New(CodeNotFound, "no application record")
	outer := Wrap(inner, CodeInternal, "resolution failed")

	assert.True(t, HasCode(outer, CodeNotFound))
	assert.True(t, HasCode(outer, CodeInternal))
}

func TestHasCodeSurvivesPlainWrapping(t *testing.T) {
	err := fmt.Errorf("pipeline: %w", New(CodeUnauthorized, "token rejected"))
	assert.True(t, HasCode(err, CodeUnauthorized))
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeBadRequest, CodeOf(New(CodeBadRequest, "missing subject")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("anonymous")))
}
