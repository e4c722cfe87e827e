package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reviewForm struct {
	ProductName string `validate:"required"`
	ReviewText  string `validate:"required,min=10,max=1000"`
}

func TestValidateOK(t *testing.T) {
	assert.NoError(t, Validate(&reviewForm{
		ProductName: "VIP Rank",
		ReviewText:  "Great perks, instant delivery!",
	}))
}

func TestValidateRequired(t *testing.T) {
	err := Validate(&reviewForm{ReviewText: "Great perks, instant delivery!"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ProductName")
	assert.Contains(t, err.Error(), "is required")
}

func TestValidateMinLength(t *testing.T) {
	err := Validate(&reviewForm{ProductName: "VIP Rank", ReviewText: "meh"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 10 characters")
}
