package session

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo/core"
)

// Statuses
const (
	StatusScheduled = "scheduled"
	StatusLive      = "live"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// MaxCapacity caps the participants of a session.
const MaxCapacity = 500

// Session is a scheduled mentoring meeting.
type Session struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	MentorID       string    `json:"mentorId"`
	ProjectID      string    `json:"projectId,omitempty"`
	ParticipantIDs []string  `json:"participantIds"`
	Capacity       int       `json:"capacity"`
	StartsAt       time.Time `json:"startsAt"`
	EndsAt         time.Time `json:"endsAt"`
	MeetingURL     string    `json:"meetingUrl,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (s Session) IsFull() bool {
	return len(s.ParticipantIDs) >= s.Capacity
}

func (s Session) HasParticipant(userID string) bool {
	for _, id := range s.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Open reports whether participants may still join or leave.
func (s Session) Open() bool {
	return s.Status == StatusScheduled
}

type NewSession struct {
	Title       string    `json:"title" validate:"required,notblank,min=3,max=150"`
	Description string    `json:"description" validate:"max=2000"`
	ProjectID   string    `json:"projectId,omitempty"`
	Capacity    int       `json:"capacity" validate:"required,min=1,max=500"`
	StartsAt    time.Time `json:"startsAt" validate:"required"`
	EndsAt      time.Time `json:"endsAt" validate:"required"`
	MeetingURL  string    `json:"meetingUrl,omitempty" validate:"omitempty,url"`
}

func (ns *NewSession) Validate(validate *validator.Validate) error {
	ns.Title = core.CleanString(ns.Title)
	ns.MeetingURL = core.CleanString(ns.MeetingURL)
	return validate.Struct(ns)
}

// UpdateSession defines what information may be provided to modify an existing Session.
// Nil fields are left unchanged.
type UpdateSession struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,notblank,min=3,max=150"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Capacity    *int       `json:"capacity,omitempty" validate:"omitempty,min=1,max=500"`
	StartsAt    *time.Time `json:"startsAt,omitempty"`
	EndsAt      *time.Time `json:"endsAt,omitempty"`
	MeetingURL  *string    `json:"meetingUrl,omitempty" validate:"omitempty,url"`
}

func (us *UpdateSession) Validate(validate *validator.Validate) error {
	return validate.Struct(us)
}

func (us UpdateSession) Apply(s Session) Session {
	if us.Title != nil {
		s.Title = core.CleanString(*us.Title)
	}
	if us.Description != nil {
		s.Description = *us.Description
	}
	if us.Capacity != nil {
		s.Capacity = *us.Capacity
	}
	if us.StartsAt != nil {
		s.StartsAt = *us.StartsAt
	}
	if us.EndsAt != nil {
		s.EndsAt = *us.EndsAt
	}
	if us.MeetingURL != nil {
		s.MeetingURL = *us.MeetingURL
	}
	return s
}

type QueryFilter struct {
	Status        string
	MentorID      string
	ParticipantID string
	From          time.Time
	To            time.Time
	Ordering      []core.Ordering
	core.Page
}

func (qf QueryFilter) Params() *core.Params {
	return core.NewParams().
		Set("status", qf.Status).
		Set("mentorId", qf.MentorID).
		Set("participantId", qf.ParticipantID).
		SetTime("from", qf.From).
		SetTime("to", qf.To).
		SetOrdering(qf.Ordering).
		SetPage(qf.Page)
}
