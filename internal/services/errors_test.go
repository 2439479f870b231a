package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(notFound("booking %d not found", 3)))
	assert.Equal(t, KindValidation, KindOf(fmt.Errorf("wrapped: %w", validation("bad"))))
	assert.Equal(t, KindServiceError, KindOf(errors.New("plain")))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := serviceError("failed to create booking", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "SERVICE_ERROR: failed to create booking: connection reset", err.Error())
	assert.Equal(t, "NOT_FOUND: booking 3 not found", notFound("booking %d not found", 3).Error())
}
