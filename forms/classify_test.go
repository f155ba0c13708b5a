package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		hint       string
		field      string
		confidence float64
	}{
		{"First Name first_name", "firstName", 0.9},
		{"Given name", "firstName", 0.9},
		{"Last Name", "lastName", 0.9},
		{"Surname", "lastName", 0.9},
		{"Full Name", "fullName", 0.9},
		{"Email Address candidate_email", "email", 0.9},
		{"E-mail", "email", 0.9},
		{"Phone number", "phone", 0.9},
		{"Mobile", "phone", 0.9},
		{"Current city", "location", 0.7},
		{"Are you authorized to work in the US?", "workAuthorization", 0.7},
		{"Will you require sponsorship?", "sponsorship", 0.8},
		{"Have you previously worked here?", "priorEmployment", 0.8},
		{"How did you hear about this job?", "referralSource", 0.8},
		{"Which state do you reside in?", "state", 0.8},
		{"Gender", "gender", 0.8},
		{"Do you identify as LGBTQ+?", "lgbtq", 0.8},
		{"Race / Ethnicity", "raceEthnicity", 0.8},
		{"Veteran status", "veteranStatus", 0.8},
		{"Disability status", "disabilityStatus", 0.8},
		{"LinkedIn profile", "linkedin", 0.8},
		{"Portfolio URL", "website", 0.8},
		{"GitHub username", "github", 0.8},
	}
	for _, tt := range tests {
		match := Classify(tt.hint)
		assert.Equal(t, tt.field, match.Field, "hint %q", tt.hint)
		assert.InDelta(t, tt.confidence, match.Confidence, 0.001, "hint %q", tt.hint)
	}
}

func TestClassifyNameFallback(t *testing.T) {
	match := Classify("name")
	assert.Equal(t, "fullName", match.Field)
	assert.InDelta(t, 0.7, match.Confidence, 0.001)

	match = Classify("preferred name")
	assert.Equal(t, "fullName", match.Field)
	assert.InDelta(t, 0.7, match.Confidence, 0.001)
}

func TestClassifyRuleOrder(t *testing.T) {
	// "first name" must win over the fullName fallback even though both
	// contain "name".
	match := Classify("First name of the candidate")
	assert.Equal(t, "firstName", match.Field)

	// Email beats location even when both keywords appear.
	match = Classify("email address including city")
	assert.Equal(t, "email", match.Field)
}

func TestClassifyUnknown(t *testing.T) {
	match := Classify("favorite color")
	assert.Empty(t, match.Field)
	assert.Zero(t, match.Confidence)
	assert.Less(t, match.Confidence, ConfidenceFloor)
}

func TestRetargetDemographic(t *testing.T) {
	assert.Equal(t, "gender", RetargetDemographic("Please select your gender", ""))
	assert.Equal(t, "gender", RetargetDemographic("", "Woman"))
	assert.Equal(t, "lgbtq", RetargetDemographic("Are you a member of the LGBT2QIA+ community?", ""))
	assert.Equal(t, "raceEthnicity", RetargetDemographic("", "Black or African American"))
	assert.Equal(t, "veteranStatus", RetargetDemographic("", "I am not a protected veteran"))
	assert.Equal(t, "disabilityStatus", RetargetDemographic("", "Yes, I have a disability"))
	assert.Empty(t, RetargetDemographic("Shirt size", "Large"))
}
