package inmemdb

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/masomo/core/application"
	"github.com/trezcool/masomo/core/learningpath"
	"github.com/trezcool/masomo/core/newsletter"
	"github.com/trezcool/masomo/core/project"
	"github.com/trezcool/masomo/core/session"
	"github.com/trezcool/masomo/core/task"
	"github.com/trezcool/masomo/core/user"
	"github.com/trezcool/masomo/core/workspace"
)

// Seed is the content of a fixtures file. Field names are those of the JSON API.
type Seed struct {
	Users         []SeedUser                  `json:"users"`
	Projects      []project.Project           `json:"projects"`
	Areas         []project.Area              `json:"areas"`
	Tasks         []task.Task                 `json:"tasks"`
	Sessions      []session.Session           `json:"sessions"`
	Applications  []application.Application   `json:"applications"`
	Subscriptions []newsletter.Subscription   `json:"subscriptions"`
	LearningPaths []learningpath.LearningPath `json:"learningPaths"`
	Enrollments   []learningpath.Enrollment   `json:"enrollments"`
	Workspaces    []workspace.Workspace       `json:"workspaces"`
}

// SeedUser is a user along with their clear text password.
type SeedUser struct {
	user.User
	Password string `json:"password"`
}

// ParseSeed reads YAML fixtures. The YAML tree goes through JSON so that the API field
// names and formats (eg: RFC 3339 dates, null values) apply.
func ParseSeed(data []byte) (Seed, error) {
	var tree interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return Seed{}, errors.Wrap(err, "parsing yaml")
	}
	raw, err := json.Marshal(tree)
	if err != nil {
		return Seed{}, errors.Wrap(err, "converting yaml")
	}
	var seed Seed
	if err = json.Unmarshal(raw, &seed); err != nil {
		return Seed{}, errors.Wrap(err, "decoding seed")
	}
	return seed, nil
}

// LoadSeedFile reads the fixtures at path into db.
func LoadSeedFile(db *DB, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	seed, err := ParseSeed(data)
	if err != nil {
		return errors.Wrapf(err, "parsing %s", path)
	}
	return seed.Load(db)
}

// Load inserts the fixtures into db. Rows without ID get one; missing timestamps are set to now.
func (seed Seed) Load(db *DB) error {
	now := time.Now().UTC()
	stamp := func(id *string, createdAt, updatedAt *time.Time) {
		if *id == "" {
			*id = NewID()
		}
		if createdAt.IsZero() {
			*createdAt = now
		}
		if updatedAt.IsZero() {
			*updatedAt = *createdAt
		}
	}

	for _, su := range seed.Users {
		usr := su.User
		stamp(&usr.ID, &usr.CreatedAt, &usr.UpdatedAt)
		if su.Password != "" {
			if err := usr.SetPassword(su.Password); err != nil {
				return errors.Wrapf(err, "setting password of %s", usr.Email)
			}
		}
		if len(usr.Roles) == 0 {
			usr.Roles = []string{user.RoleStudent}
		}
		db.Users.Insert(usr.ID, usr)
	}
	for _, p := range seed.Projects {
		stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		db.Projects.Insert(p.ID, p)
	}
	for _, a := range seed.Areas {
		stamp(&a.ID, &a.CreatedAt, &a.UpdatedAt)
		db.Areas.Insert(a.ID, a)
	}
	for _, t := range seed.Tasks {
		stamp(&t.ID, &t.CreatedAt, &t.UpdatedAt)
		if t.Status == "" {
			t.Status = task.StatusTodo
		}
		db.Tasks.Insert(t.ID, t)
	}
	for _, s := range seed.Sessions {
		stamp(&s.ID, &s.CreatedAt, &s.UpdatedAt)
		db.Sessions.Insert(s.ID, s)
	}
	for _, a := range seed.Applications {
		stamp(&a.ID, &a.CreatedAt, &a.UpdatedAt)
		db.Applications.Insert(a.ID, a)
	}
	for _, s := range seed.Subscriptions {
		stamp(&s.ID, &s.CreatedAt, &s.UpdatedAt)
		if s.SubscribedAt.IsZero() {
			s.SubscribedAt = s.CreatedAt
		}
		db.Subscriptions.Insert(s.ID, s)
	}
	for _, lp := range seed.LearningPaths {
		stamp(&lp.ID, &lp.CreatedAt, &lp.UpdatedAt)
		db.LearningPaths.Insert(lp.ID, lp)
	}
	for _, e := range seed.Enrollments {
		if e.EnrolledAt.IsZero() {
			e.EnrolledAt = now
		}
		db.Enrollments.Insert(EnrollmentKey(e.PathID, e.UserID), e)
	}
	for _, w := range seed.Workspaces {
		if w.UpdatedAt.IsZero() {
			w.UpdatedAt = now
		}
		db.Workspaces.Insert(w.ProjectID, w)
	}
	return nil
}
