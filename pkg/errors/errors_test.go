package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	err := Clone(ErrNotFound, "student not found")
	wrapped := fmt.Errorf("load: %w", err)

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrConflict))
	assert.True(t, HasCode(wrapped, ErrNotFound.Code))
}

func TestUpstreamKeepsBackendStatus(t *testing.T) {
	err := Upstream(http.StatusUnauthorized, "Invalid credentials")
	assert.Equal(t, http.StatusUnauthorized, err.Status)
	assert.Equal(t, "Invalid credentials", err.Error())

	fallback := Upstream(http.StatusOK, "odd")
	assert.Equal(t, http.StatusBadGateway, fallback.Status)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Nil(t, FromError(nil))
}
