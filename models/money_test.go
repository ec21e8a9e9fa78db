package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "R$ 100,00", FormatCents(10000))
	assert.Equal(t, "R$ 12.345,67", FormatCents(1234567))
	assert.Equal(t, "R$ 0,00", FormatCents(0))
	assert.Equal(t, "R$ 0,05", FormatCents(5))
	assert.Equal(t, "R$ 1.234.567.890,12", FormatCents(123456789012))
}
