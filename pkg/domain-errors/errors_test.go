package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCodeWalksChain(t *testing.T) {
	root := errors.New("connection reset")
	inner := Wrap(root, CodeInternal, "failed to load document")
	outer := fmt.Errorf("transition: %w", inner)

	assert.True(t, HasCode(outer, CodeInternal))
	assert.False(t, HasCode(outer, CodeNotFound))
	assert.ErrorIs(t, outer, root)
}

func TestNestedCodes(t *testing.T) {
	err := Wrap(New(CodeSelfVerification, "creator cannot verify"), CodeValidation, "rejected")

	assert.True(t, HasCode(err, CodeValidation))
	assert.True(t, HasCode(err, CodeSelfVerification))
	assert.True(t, IsAuthorization(err))
}

func TestIsAuthorization(t *testing.T) {
	assert.True(t, IsAuthorization(New(CodeForbidden, "wrong role")))
	assert.True(t, IsAuthorization(New(CodeSelfVerification, "own document")))
	assert.False(t, IsAuthorization(New(CodeInvalidTransition, "bad edge")))
	assert.False(t, IsAuthorization(errors.New("plain")))
}

func TestWrapNil(t *testing.T) {
	require.NoError(t, Wrap(nil, CodeInternal, "nothing"))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(New(CodeNotFound, "x")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("foreign")))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "not_found: document not found", New(CodeNotFound, "document not found").Error())
	assert.Equal(t, "internal_error: save: boom", Wrap(errors.New("boom"), CodeInternal, "save").Error())
}
