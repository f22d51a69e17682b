package application

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo/core"
)

// Statuses
const (
	StatusPending   = "pending"
	StatusReviewing = "reviewing"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusWithdrawn = "withdrawn"
)

// Types
const (
	TypeMentor = "mentor"
	TypeMentee = "mentee"
)

// Application is a request to join the program as a mentor or a mentee.
type Application struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Motivation string    `json:"motivation"`
	Skills     []string  `json:"skills,omitempty"`
	Portfolio  string    `json:"portfolio,omitempty"`
	Status     string    `json:"status"`
	ReviewNote string    `json:"reviewNote,omitempty"`
	ReviewerID string    `json:"reviewerId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Closed reports whether a decision has been made on the application.
func (a Application) Closed() bool {
	switch a.Status {
	case StatusAccepted, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

type NewApplication struct {
	Type       string   `json:"type" validate:"required,oneof=mentor mentee"`
	Name       string   `json:"name" validate:"required,notblank,min=2,max=100"`
	Email      string   `json:"email" validate:"required,email"`
	Motivation string   `json:"motivation" validate:"required,notblank,min=20,max=3000"`
	Skills     []string `json:"skills,omitempty" validate:"max=20,dive,max=50"`
	Portfolio  string   `json:"portfolio,omitempty" validate:"omitempty,url"`
}

func (na *NewApplication) Validate(validate *validator.Validate) error {
	na.Name = core.CleanString(na.Name)
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.Portfolio = core.CleanString(na.Portfolio)
	return validate.Struct(na)
}

type StatusUpdate struct {
	Status     string `json:"status" validate:"required,oneof=pending reviewing accepted rejected withdrawn"`
	ReviewNote string `json:"reviewNote,omitempty" validate:"max=2000"`
}

func (su *StatusUpdate) Validate(validate *validator.Validate) error {
	return validate.Struct(su)
}

type QueryFilter struct {
	Status string
	Type   string
	Search string
	core.Page
}

func (qf QueryFilter) Params() *core.Params {
	return core.NewParams().
		Set("status", qf.Status).
		Set("type", qf.Type).
		Set("search", qf.Search).
		SetPage(qf.Page)
}
