package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderEscalation(t *testing.T) {
	params := EscalationMailParams{
		DisplayName:     "Bob",
		DaysSince:       "3.2",
		LastCheckInDate: "2025-06-07",
		BrandingName:    "DiedOrNot",
	}

	result, err := RenderEscalation(params)

	assert.NoError(t, err)
	assert.NotEmpty(t, result)
	assert.Contains(t, result, params.DisplayName)
	assert.Contains(t, result, params.DaysSince)
	assert.Contains(t, result, params.LastCheckInDate)
	assert.Contains(t, result, params.BrandingName)
	assert.Contains(t, result, "emergency contact")
}

func TestRenderEscalationWithoutName(t *testing.T) {
	params := EscalationMailParams{
		DaysSince:    "2.0",
		BrandingName: "DiedOrNot",
	}

	result, err := RenderEscalation(params)

	assert.NoError(t, err)
	assert.Contains(t, result, "a DiedOrNot user")
}

func TestRenderEscalationEscapesHTML(t *testing.T) {
	params := EscalationMailParams{
		DisplayName: `<script>alert("x")</script>`,
		DaysSince:   "2.0",
	}

	result, err := RenderEscalation(params)

	assert.NoError(t, err)
	assert.NotContains(t, result, "<script>")
}

func TestEscalationSubject(t *testing.T) {
	assert.Equal(t, "Bob may need attention", EscalationSubject("Bob"))
	assert.Equal(t, "A person you know may need attention", EscalationSubject(""))
}
