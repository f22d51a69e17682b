package newsletter

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo/core"
)

// Statuses
const (
	StatusActive       = "active"
	StatusUnsubscribed = "unsubscribed"
)

type Subscription struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name,omitempty"`
	Status         string    `json:"status"`
	Source         string    `json:"source,omitempty"`
	SubscribedAt   time.Time `json:"subscribedAt"`
	UnsubscribedAt null.Time `json:"unsubscribedAt"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Subscribe struct {
	Email  string `json:"email" validate:"required,email"`
	Name   string `json:"name,omitempty" validate:"max=100"`
	Source string `json:"source,omitempty" validate:"max=50"`
}

func (s *Subscribe) Validate(validate *validator.Validate) error {
	s.Email = core.CleanString(s.Email, true /* lower */)
	s.Name = core.CleanString(s.Name)
	return validate.Struct(s)
}

type Unsubscribe struct {
	Email string `json:"email" validate:"required,email"`
}

func (u *Unsubscribe) Validate(validate *validator.Validate) error {
	u.Email = core.CleanString(u.Email, true /* lower */)
	return validate.Struct(u)
}

type QueryFilter struct {
	Status string
	Search string
	core.Page
}

func (qf QueryFilter) Params() *core.Params {
	return core.NewParams().
		Set("status", qf.Status).
		Set("search", qf.Search).
		SetPage(qf.Page)
}
