package workspace

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo/core"
)

// Resource kinds
const (
	KindLink     = "link"
	KindDocument = "document"
	KindVideo    = "video"
	KindRepo     = "repository"
)

// Workspace holds the shared notes and resources of a project. There is one per project.
type Workspace struct {
	ProjectID string     `json:"projectId"`
	Notes     string     `json:"notes"`
	Resources []Resource `json:"resources"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type Resource struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Kind      string    `json:"kind"`
	AddedBy   string    `json:"addedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type UpdateNotes struct {
	Notes string `json:"notes" validate:"max=20000"`
}

func (un *UpdateNotes) Validate(validate *validator.Validate) error {
	return validate.Struct(un)
}

type NewResource struct {
	Title string `json:"title" validate:"required,notblank,max=150"`
	URL   string `json:"url" validate:"required,url"`
	Kind  string `json:"kind" validate:"required,oneof=link document video repository"`
}

func (nr *NewResource) Validate(validate *validator.Validate) error {
	nr.Title = core.CleanString(nr.Title)
	nr.URL = core.CleanString(nr.URL)
	if nr.Kind == "" {
		nr.Kind = KindLink
	}
	return validate.Struct(nr)
}
