package project

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo/core"
)

func TestNewProject_Validate(t *testing.T) {
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)

	start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	newProject := func(end null.Time) NewProject {
		return NewProject{Name: "Weather station", Category: "IoT", Level: LevelBeginner, StartDate: start, EndDate: end}
	}

	tests := []struct {
		name       string
		project    NewProject
		wantFields map[string]string
	}{
		{name: "no end date", project: newProject(null.Time{})},
		{name: "ends after its start", project: newProject(null.TimeFrom(start.AddDate(0, 2, 0)))},
		{
			name:       "ends before its start",
			project:    newProject(null.TimeFrom(start.AddDate(0, 0, -1))),
			wantFields: map[string]string{"endDate": "endDate must be after the start date"},
		},
		{
			name:       "ends when it starts",
			project:    newProject(null.TimeFrom(start)),
			wantFields: map[string]string{"endDate": "endDate must be after the start date"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			np := tt.project
			err := core.TranslateValidation(np.Validate(validate), translator)
			if tt.wantFields == nil {
				require.NoError(t, err)
				assert.Equal(t, "iot", np.Category)
				assert.Equal(t, VisibilityPublic, np.Visibility)
				return
			}
			vErr, ok := err.(*core.ValidationError)
			require.True(t, ok, "want a validation error, got %v", err)
			assert.Equal(t, tt.wantFields, vErr.FieldMap())
		})
	}
}

func TestUpdateProject_Validate(t *testing.T) {
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)

	start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	before := null.TimeFrom(start.AddDate(0, 0, -1))
	cleared := null.Time{}

	tests := []struct {
		name    string
		update  UpdateProject
		wantErr bool
	}{
		{name: "end date alone", update: UpdateProject{EndDate: &before}},
		{name: "end date cleared", update: UpdateProject{StartDate: &start, EndDate: &cleared}},
		{name: "ends before its start", update: UpdateProject{StartDate: &start, EndDate: &before}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := tt.update
			err := core.TranslateValidation(up.Validate(validate), translator)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			vErr, ok := err.(*core.ValidationError)
			require.True(t, ok, "want a validation error, got %v", err)
			assert.Equal(t, map[string]string{"endDate": "endDate must be after the start date"}, vErr.FieldMap())
		})
	}
}
