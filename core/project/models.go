package project

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo/core"
)

// Levels
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Visibilities
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Member roles
const (
	MemberRoleMember = "member"
	MemberRoleMentor = "mentor"
)

type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Level       string    `json:"level"`
	StartDate   time.Time `json:"startDate"`
	EndDate     null.Time `json:"endDate"`
	Visibility  string    `json:"visibility"`
	OwnerID     string    `json:"ownerId"`
	MemberIDs   []string  `json:"memberIds"`
	MentorIDs   []string  `json:"mentorIds"`
	// Progress is computed by the backend, in percents.
	Progress  float64   `json:"progress"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasMember reports whether userID is the owner, a member or a mentor of the project.
func (p Project) HasMember(userID string) bool {
	if p.OwnerID == userID {
		return true
	}
	for _, id := range append(append([]string(nil), p.MemberIDs...), p.MentorIDs...) {
		if id == userID {
			return true
		}
	}
	return false
}

// NewProject contains information needed to create a new Project.
type NewProject struct {
	Name        string    `json:"name" validate:"required,notblank,min=3,max=100"`
	Description string    `json:"description" validate:"max=2000"`
	Category    string    `json:"category" validate:"required,notblank,max=50"`
	Level       string    `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	StartDate   time.Time `json:"startDate" validate:"required"`
	EndDate     null.Time `json:"endDate"`
	Visibility  string    `json:"visibility" validate:"required,oneof=public private"`
	MemberIDs   []string  `json:"memberIds,omitempty" validate:"omitempty,dive,required"`
	MentorIDs   []string  `json:"mentorIds,omitempty" validate:"omitempty,dive,required"`
}

func (np *NewProject) Validate(validate *validator.Validate) error {
	np.Name = core.CleanString(np.Name)
	np.Category = core.CleanString(np.Category, true /* lower */)
	np.Description = core.CleanString(np.Description)
	if np.Visibility == "" {
		np.Visibility = VisibilityPublic
	}
	return validate.Struct(np)
}

// UpdateProject defines what information may be provided to modify an existing Project.
// Nil fields are left unchanged; a non nil, invalid EndDate clears the end date.
type UpdateProject struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,notblank,min=3,max=100"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category    *string    `json:"category,omitempty" validate:"omitempty,notblank,max=50"`
	Level       *string    `json:"level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *null.Time `json:"endDate,omitempty"`
	Visibility  *string    `json:"visibility,omitempty" validate:"omitempty,oneof=public private"`
}

// UnmarshalJSON keeps an endDate explicitly set to null, which clears the end date.
func (up *UpdateProject) UnmarshalJSON(data []byte) error {
	type alias UpdateProject
	if err := json.Unmarshal(data, (*alias)(up)); err != nil {
		return err
	}
	nulls, err := core.NullKeys(data)
	if err != nil {
		return err
	}
	if nulls["endDate"] {
		up.EndDate = new(null.Time)
	}
	return nil
}

func (up *UpdateProject) Validate(validate *validator.Validate) error {
	if up.Name != nil {
		name := core.CleanString(*up.Name)
		up.Name = &name
	}
	if up.Category != nil {
		cat := core.CleanString(*up.Category, true /* lower */)
		up.Category = &cat
	}
	return validate.Struct(up)
}

// Apply returns p with the set fields of up.
func (up UpdateProject) Apply(p Project) Project {
	if up.Name != nil {
		p.Name = *up.Name
	}
	if up.Description != nil {
		p.Description = *up.Description
	}
	if up.Category != nil {
		p.Category = *up.Category
	}
	if up.Level != nil {
		p.Level = *up.Level
	}
	if up.StartDate != nil {
		p.StartDate = *up.StartDate
	}
	if up.EndDate != nil {
		p.EndDate = *up.EndDate
	}
	if up.Visibility != nil {
		p.Visibility = *up.Visibility
	}
	return p
}

// DatesValid reports whether the project ends after it starts.
func (p Project) DatesValid() bool {
	return !p.EndDate.Valid || p.EndDate.Time.After(p.StartDate)
}

type AddMember struct {
	UserID string `json:"userId" validate:"required,notblank"`
	Role   string `json:"role" validate:"required,oneof=member mentor"`
}

func (am *AddMember) Validate(validate *validator.Validate) error {
	am.UserID = core.CleanString(am.UserID)
	if am.Role == "" {
		am.Role = MemberRoleMember
	}
	return validate.Struct(am)
}

type QueryFilter struct {
	Search     string
	Category   string
	Level      string
	Visibility string
	MemberID   string
	MentorID   string
	Ordering   []core.Ordering
	core.Page
}

func (qf QueryFilter) Params() *core.Params {
	return core.NewParams().
		Set("search", qf.Search).
		Set("category", qf.Category).
		Set("level", qf.Level).
		Set("visibility", qf.Visibility).
		Set("memberId", qf.MemberID).
		Set("mentorId", qf.MentorID).
		SetOrdering(qf.Ordering).
		SetPage(qf.Page)
}

// Area is a sub-division of a Project grouping tasks.
type Area struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color,omitempty"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type NewArea struct {
	Name        string `json:"name" validate:"required,notblank,max=80"`
	Description string `json:"description" validate:"max=500"`
	Color       string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Order       int    `json:"order" validate:"min=0"`
}

func (na *NewArea) Validate(validate *validator.Validate) error {
	na.Name = core.CleanString(na.Name)
	return validate.Struct(na)
}

type UpdateArea struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,notblank,max=80"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Color       *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Order       *int    `json:"order,omitempty" validate:"omitempty,min=0"`
}

func (ua *UpdateArea) Validate(validate *validator.Validate) error {
	return validate.Struct(ua)
}

func (ua UpdateArea) Apply(a Area) Area {
	if ua.Name != nil {
		a.Name = core.CleanString(*ua.Name)
	}
	if ua.Description != nil {
		a.Description = *ua.Description
	}
	if ua.Color != nil {
		a.Color = *ua.Color
	}
	if ua.Order != nil {
		a.Order = *ua.Order
	}
	return a
}
