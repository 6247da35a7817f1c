package errs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_FieldAggregation(t *testing.T) {
	err := Validation("invalid serial specification").
		WithField("serials", "serial 5 already exists").
		WithField("serials", "serial 6 already exists").
		WithField("quantity", "expected 3 serials, got 2")

	assert.True(t, err.HasFieldErrors())
	assert.Equal(t,
		"invalid serial specification; quantity: expected 3 serials, got 2; serials: serial 5 already exists, serial 6 already exists",
		err.Error())
}

func TestValidationError_NoFields(t *testing.T) {
	err := Validation("quantity must be positive, got %s", "-1")
	assert.False(t, err.HasFieldErrors())
	assert.Equal(t, "quantity must be positive, got -1", err.Error())
}

func TestKindMatchers_SurviveWrapping(t *testing.T) {
	testCases := []struct {
		name  string
		err   error
		match func(error) bool
	}{
		{"validation", Validation("bad input"), IsValidation},
		{"not found", NotFound("part", 42), IsNotFound},
		{"integrity", Integrity("cyclic bom"), IsIntegrity},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("loading dataset: %w", tc.err)
			assert.True(t, tc.match(wrapped))
		})
	}
}

func TestKindMatchers_Disjoint(t *testing.T) {
	err := NotFound("stock item", 7)
	assert.False(t, IsValidation(err))
	assert.False(t, IsIntegrity(err))
	assert.Equal(t, "stock item 7 not found", err.Error())
}
