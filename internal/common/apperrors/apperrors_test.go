package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindClassification(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("gone")))
	assert.True(t, IsInvalidArgument(InvalidArgumentf("bad %s", "input")))
	assert.True(t, IsInvalidState(InvalidState("wrong state")))
	assert.True(t, IsAlreadyExists(AlreadyExists("dup")))

	assert.False(t, IsNotFound(InvalidState("wrong state")))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := NotFoundf("user %d not found", 7)
	wrapped := fmt.Errorf("loading requester: %w", err)

	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindInvalidState, cause, "store unavailable")

	assert.True(t, IsInvalidState(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "store unavailable")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("x")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(InvalidArgument("x")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(InvalidState("x")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(AlreadyExists("x")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("x")))
}
