package failure

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSevere_WrapsAndUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Severe("app upload failed", cause)

	assert.True(t, IsSevere(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "app upload failed: connection refused", err.Error())
}

func TestSevere_DoesNotDoubleWrap(t *testing.T) {
	inner := Severe("inner", errors.New("boom"))
	outer := Severe("outer", inner)

	assert.Same(t, inner, outer)
}

func TestSevere_KeepsValidationReachable(t *testing.T) {
	err := Severe("invalid app", Invalid("app", "unknown key %q", "foo"))

	assert.True(t, IsSevere(err))
	assert.True(t, IsValidation(err))

	var invalid *ValidationError
	assert.True(t, errors.As(err, &invalid))
	assert.Equal(t, "app", invalid.Subject)
}

func TestIsSevere_PlainErrors(t *testing.T) {
	assert.False(t, IsSevere(nil))
	assert.False(t, IsSevere(errors.New("plain")))
	assert.True(t, IsSevere(fmt.Errorf("context: %w", Severe("x", nil))))
}

func TestValidationError_Message(t *testing.T) {
	assert.Equal(t, "bad", (&ValidationError{Reason: "bad"}).Error())
	assert.Equal(t, "caps: bad", Invalid("caps", "bad").Error())
}
