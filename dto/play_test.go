package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRequest_Speed(t *testing.T) {
	for _, speed := range []float64{0.25, 0.5, 1, 1.75, 2} {
		assert.NoError(t, SettingsRequest{Sound: true, Speed: speed}.Validate(), "speed %v", speed)
	}

	for _, speed := range []float64{0, 0.2, 1.1, 2.25, 3} {
		assert.Error(t, SettingsRequest{Sound: true, Speed: speed}.Validate(), "speed %v", speed)
	}
}

func TestSettingsRequest_SpeedMessages(t *testing.T) {
	errs := FormatValidationErrors(SettingsRequest{Speed: 1.1}.Validate())
	require.Len(t, errs, 1)
	assert.Equal(t, "Speed", errs[0].Field)
	assert.Equal(t, "Speed must be a multiple of 0.25", errs[0].Message)

	errs = FormatValidationErrors(SettingsRequest{Speed: 2.25}.Validate())
	require.Len(t, errs, 1)
	assert.Equal(t, "Speed must be less than or equal to 2", errs[0].Message)
}
