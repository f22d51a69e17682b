package task

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo/core"
)

// Statuses
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusInReview   = "in_review"
	StatusDone       = "done"
)

// Priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

var (
	AllStatuses   = []string{StatusTodo, StatusInProgress, StatusInReview, StatusDone}
	AllPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
)

// Task is a unit of work inside a project, optionally filed under one of its areas.
type Task struct {
	ID            string      `json:"id"`
	ProjectID     string      `json:"projectId"`
	ProjectAreaID null.String `json:"projectAreaId"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Status        string      `json:"status"`
	Priority      string      `json:"priority"`
	AssigneeID    null.String `json:"assigneeId"`
	CreatorID     string      `json:"creatorId"`
	DueDate       null.Time   `json:"dueDate"`
	Tags          []string    `json:"tags,omitempty"`
	Submission    *Submission `json:"submission,omitempty"`
	Grading       *Grading    `json:"grading,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// AreaID returns the area of the task, or "" when it has none.
func (t Task) AreaID() string {
	if t.ProjectAreaID.Valid {
		return t.ProjectAreaID.String
	}
	return ""
}

func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate.Valid && t.Status != StatusDone && t.DueDate.Time.Before(now)
}

type Submission struct {
	Content     string    `json:"content"`
	Links       []string  `json:"links,omitempty"`
	SubmittedBy string    `json:"submittedBy"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Grading is set by a mentor; the score is opaque to clients.
type Grading struct {
	Score    float64   `json:"score"`
	Feedback string    `json:"feedback,omitempty"`
	GradedBy string    `json:"gradedBy"`
	GradedAt time.Time `json:"gradedAt"`
}

// NewTask contains information needed to create a new Task.
type NewTask struct {
	Title         string      `json:"title" validate:"required,notblank,min=3,max=200"`
	Description   string      `json:"description" validate:"max=5000"`
	Status        string      `json:"status" validate:"required,oneof=todo in_progress in_review done"`
	Priority      string      `json:"priority" validate:"required,oneof=low medium high urgent"`
	ProjectAreaID null.String `json:"projectAreaId"`
	AssigneeID    null.String `json:"assigneeId"`
	DueDate       null.Time   `json:"dueDate"`
	Tags          []string    `json:"tags,omitempty" validate:"max=10,dive,max=30"`
}

func (nt *NewTask) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	if nt.Status == "" {
		nt.Status = StatusTodo
	}
	if nt.Priority == "" {
		nt.Priority = PriorityMedium
	}
	return validate.Struct(nt)
}

// UpdateTask defines what information may be provided to modify an existing Task.
// Nil fields are left unchanged; a set but null ProjectAreaID, AssigneeID or DueDate clears it.
type UpdateTask struct {
	Title         *string      `json:"title,omitempty" validate:"omitempty,notblank,min=3,max=200"`
	Description   *string      `json:"description,omitempty" validate:"omitempty,max=5000"`
	Priority      *string      `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	ProjectAreaID *null.String `json:"projectAreaId,omitempty"`
	AssigneeID    *null.String `json:"assigneeId,omitempty"`
	DueDate       *null.Time   `json:"dueDate,omitempty"`
	Tags          []string     `json:"tags,omitempty" validate:"omitempty,max=10,dive,max=30"`
}

// UnmarshalJSON keeps the fields explicitly set to null, which clear their value.
func (upd *UpdateTask) UnmarshalJSON(data []byte) error {
	type alias UpdateTask
	if err := json.Unmarshal(data, (*alias)(upd)); err != nil {
		return err
	}
	nulls, err := core.NullKeys(data)
	if err != nil {
		return err
	}
	if nulls["projectAreaId"] {
		upd.ProjectAreaID = new(null.String)
	}
	if nulls["assigneeId"] {
		upd.AssigneeID = new(null.String)
	}
	if nulls["dueDate"] {
		upd.DueDate = new(null.Time)
	}
	return nil
}

func (upd *UpdateTask) Validate(validate *validator.Validate) error {
	if upd.Title != nil {
		title := core.CleanString(*upd.Title)
		upd.Title = &title
	}
	return validate.Struct(upd)
}

// Apply returns t with the set fields of upd.
func (upd UpdateTask) Apply(t Task) Task {
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Priority != nil {
		t.Priority = *upd.Priority
	}
	if upd.ProjectAreaID != nil {
		t.ProjectAreaID = *upd.ProjectAreaID
	}
	if upd.AssigneeID != nil {
		t.AssigneeID = *upd.AssigneeID
	}
	if upd.DueDate != nil {
		t.DueDate = *upd.DueDate
	}
	if upd.Tags != nil {
		t.Tags = upd.Tags
	}
	return t
}

type StatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=todo in_progress in_review done"`
}

func (su *StatusUpdate) Validate(validate *validator.Validate) error {
	return validate.Struct(su)
}

type Submit struct {
	Content string   `json:"content" validate:"required,notblank,max=10000"`
	Links   []string `json:"links,omitempty" validate:"max=10,dive,url"`
}

func (s *Submit) Validate(validate *validator.Validate) error {
	return validate.Struct(s)
}

type Grade struct {
	Score    float64 `json:"score" validate:"min=0,max=100"`
	Feedback string  `json:"feedback,omitempty" validate:"max=5000"`
}

func (g *Grade) Validate(validate *validator.Validate) error {
	return validate.Struct(g)
}

// ListFilter selects the tasks of a project.
// AssigneeID and ProjectAreaID are nullable filters: FilterNull() selects unassigned tasks
// or tasks outside any area.
type ListFilter struct {
	Status        string
	Priority      string
	AssigneeID    core.StringFilter
	ProjectAreaID core.StringFilter
	Search        string
	DueBefore     time.Time
	DueAfter      time.Time
	Ordering      []core.Ordering
	core.Page
}

func (lf ListFilter) Params() *core.Params {
	return core.NewParams().
		Set("status", lf.Status).
		Set("priority", lf.Priority).
		SetFilter("assigneeId", lf.AssigneeID).
		SetFilter("projectAreaId", lf.ProjectAreaID).
		Set("search", lf.Search).
		SetTime("dueBefore", lf.DueBefore).
		SetTime("dueAfter", lf.DueAfter).
		SetOrdering(lf.Ordering).
		SetPage(lf.Page)
}

// Match reports whether t satisfies every field of the filter but pagination.
func (lf ListFilter) Match(t Task) bool {
	if lf.Status != "" && t.Status != lf.Status {
		return false
	}
	if lf.Priority != "" && t.Priority != lf.Priority {
		return false
	}
	if !lf.AssigneeID.Match(t.AssigneeID) || !lf.ProjectAreaID.Match(t.ProjectAreaID) {
		return false
	}
	if !lf.DueBefore.IsZero() && (!t.DueDate.Valid || !t.DueDate.Time.Before(lf.DueBefore)) {
		return false
	}
	if !lf.DueAfter.IsZero() && (!t.DueDate.Valid || !t.DueDate.Time.After(lf.DueAfter)) {
		return false
	}
	return true
}

// MyFilter selects the tasks assigned to the current user across projects.
type MyFilter struct {
	Status    string
	Priority  string
	ProjectID string
	Ordering  []core.Ordering
	core.Page
}

func (mf MyFilter) Params() *core.Params {
	return core.NewParams().
		Set("status", mf.Status).
		Set("priority", mf.Priority).
		Set("projectId", mf.ProjectID).
		SetOrdering(mf.Ordering).
		SetPage(mf.Page)
}
