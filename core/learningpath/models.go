package learningpath

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo/core"
)

// LearningPath is an ordered curriculum of steps a student can enroll in.
type LearningPath struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Level       string    `json:"level"`
	Category    string    `json:"category"`
	AuthorID    string    `json:"authorId"`
	Published   bool      `json:"published"`
	Steps       []Step    `json:"steps"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Step struct {
	Title       string `json:"title" validate:"required,notblank,max=150"`
	Description string `json:"description,omitempty" validate:"max=2000"`
	ResourceURL string `json:"resourceUrl,omitempty" validate:"omitempty,url"`
	// EstimatedMinutes is informative only.
	EstimatedMinutes int `json:"estimatedMinutes,omitempty" validate:"min=0"`
}

// Enrollment tracks a user in a learning path. Progress is computed by the backend.
type Enrollment struct {
	PathID         string    `json:"pathId"`
	UserID         string    `json:"userId"`
	CompletedSteps []int     `json:"completedSteps"`
	Progress       float64   `json:"progress"`
	EnrolledAt     time.Time `json:"enrolledAt"`
	CompletedAt    null.Time `json:"completedAt"`
}

// MyPath is a learning path along with the enrollment of the current user.
type MyPath struct {
	LearningPath
	Enrollment Enrollment `json:"enrollment"`
}

type NewLearningPath struct {
	Title       string `json:"title" validate:"required,notblank,min=3,max=150"`
	Description string `json:"description" validate:"max=3000"`
	Level       string `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	Category    string `json:"category" validate:"required,notblank,max=50"`
	Published   bool   `json:"published"`
	Steps       []Step `json:"steps" validate:"required,min=1,max=100,dive"`
}

func (nlp *NewLearningPath) Validate(validate *validator.Validate) error {
	nlp.Title = core.CleanString(nlp.Title)
	nlp.Category = core.CleanString(nlp.Category, true /* lower */)
	return validate.Struct(nlp)
}

// UpdateLearningPath defines what information may be provided to modify an existing path.
// Steps, when set, replace every step.
type UpdateLearningPath struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,notblank,min=3,max=150"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=3000"`
	Level       *string `json:"level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Published   *bool   `json:"published,omitempty"`
	Steps       []Step  `json:"steps,omitempty" validate:"omitempty,min=1,max=100,dive"`
}

func (ulp *UpdateLearningPath) Validate(validate *validator.Validate) error {
	return validate.Struct(ulp)
}

func (ulp UpdateLearningPath) Apply(lp LearningPath) LearningPath {
	if ulp.Title != nil {
		lp.Title = core.CleanString(*ulp.Title)
	}
	if ulp.Description != nil {
		lp.Description = *ulp.Description
	}
	if ulp.Level != nil {
		lp.Level = *ulp.Level
	}
	if ulp.Published != nil {
		lp.Published = *ulp.Published
	}
	if ulp.Steps != nil {
		lp.Steps = ulp.Steps
	}
	return lp
}

type QueryFilter struct {
	Level     string
	Category  string
	Search    string
	Published *bool
	core.Page
}

func (qf QueryFilter) Params() *core.Params {
	return core.NewParams().
		Set("level", qf.Level).
		Set("category", qf.Category).
		Set("search", qf.Search).
		SetBool("published", qf.Published).
		SetPage(qf.Page)
}
