package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo/core"
)

func TestNewSession_Validate(t *testing.T) {
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)

	start := time.Date(2021, 3, 1, 14, 0, 0, 0, time.UTC)
	newSession := func(end time.Time) NewSession {
		return NewSession{Title: " Soldering 101 ", Capacity: 10, StartsAt: start, EndsAt: end}
	}

	tests := []struct {
		name       string
		session    NewSession
		wantFields map[string]string
	}{
		{name: "ends after its start", session: newSession(start.Add(time.Hour))},
		{
			name:       "ends before its start",
			session:    newSession(start.Add(-time.Hour)),
			wantFields: map[string]string{"endsAt": "endsAt must be after the start date"},
		},
		{
			name:       "ends when it starts",
			session:    newSession(start),
			wantFields: map[string]string{"endsAt": "endsAt must be after the start date"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns := tt.session
			err := core.TranslateValidation(ns.Validate(validate), translator)
			if tt.wantFields == nil {
				require.NoError(t, err)
				assert.Equal(t, "Soldering 101", ns.Title)
				return
			}
			vErr, ok := err.(*core.ValidationError)
			require.True(t, ok, "want a validation error, got %v", err)
			assert.Equal(t, tt.wantFields, vErr.FieldMap())
		})
	}
}

func TestUpdateSession_Validate(t *testing.T) {
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)

	start := time.Date(2021, 3, 1, 14, 0, 0, 0, time.UTC)
	end := start.Add(-time.Minute)

	us := UpdateSession{EndsAt: &end}
	assert.NoError(t, us.Validate(validate))

	us = UpdateSession{StartsAt: &start, EndsAt: &end}
	err := core.TranslateValidation(us.Validate(validate), translator)
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok, "want a validation error, got %v", err)
	assert.Equal(t, map[string]string{"endsAt": "endsAt must be after the start date"}, vErr.FieldMap())
}
