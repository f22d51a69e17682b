package inmemdb

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/task"
	"github.com/trezcool/masomo/core/user"
)

const seedYAML = `
users:
  - id: u1
    name: Ada
    email: ada@test.cd
    password: secret123
    isActive: true
    roles: [admin]
  - id: u2
    name: Grace
    email: grace@test.cd
    isActive: true
projects:
  - id: p1
    name: Weather station
    category: iot
    level: beginner
    visibility: public
    startDate: 2021-03-01T00:00:00Z
    endDate: null
    ownerId: u1
    memberIds: [u2]
areas:
  - id: a1
    projectId: p1
    name: Hardware
tasks:
  - id: t1
    projectId: p1
    projectAreaId: a1
    title: Wire the sensor
    priority: high
    assigneeId: u2
  - projectId: p1
    title: Write the docs
    priority: low
    assigneeId: null
enrollments:
  - pathId: lp1
    userId: u2
workspaces:
  - projectId: p1
    notes: kick-off on monday
`

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	db := Open()
	require.NoError(t, LoadSeedFile(db, path))

	assert.Equal(t, 2, db.Users.Len())
	admin, err := db.Users.Get("u1")
	require.NoError(t, err)
	assert.NoError(t, admin.CheckPassword("secret123"))
	assert.True(t, admin.IsActive)
	grace, _ := db.Users.Get("u2")
	assert.Equal(t, []string{user.RoleStudent}, grace.Roles)
	assert.Nil(t, grace.PasswordHash)

	p, err := db.Projects.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), p.StartDate)
	assert.False(t, p.EndDate.Valid)
	assert.Equal(t, []string{"u2"}, p.MemberIDs)
	assert.False(t, p.CreatedAt.IsZero())

	tasks := db.Tasks.Filter(nil)
	require.Len(t, tasks, 2)
	assert.Equal(t, "a1", tasks[0].AreaID())
	assert.Equal(t, task.StatusTodo, tasks[0].Status)
	assert.NotEmpty(t, tasks[1].ID)
	assert.False(t, tasks[1].AssigneeID.Valid)

	_, err = db.Enrollments.Get(EnrollmentKey("lp1", "u2"))
	assert.NoError(t, err)
	ws, err := db.Workspaces.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, "kick-off on monday", ws.Notes)
}

func TestLoadSeedFile_errors(t *testing.T) {
	dir := t.TempDir()
	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("users: {name: [}"), 0o600))
	mistyped := filepath.Join(dir, "mistyped.yaml")
	require.NoError(t, os.WriteFile(mistyped, []byte("users: lol"), 0o600))

	for _, path := range []string{filepath.Join(dir, "missing.yaml"), invalid, mistyped} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			assert.Error(t, LoadSeedFile(Open(), path))
		})
	}
}

func TestUserRepository(t *testing.T) {
	db := Open()
	repo := NewUserRepository(db)

	ada, err := repo.CreateUser(user.User{Name: "Ada", Email: "ada@test.cd", Roles: []string{user.RoleAdmin}, IsActive: true})
	require.NoError(t, err)
	_, err = repo.CreateUser(user.User{Name: "Grace", Email: "grace@test.cd", Roles: []string{user.RoleMentor}})
	require.NoError(t, err)

	assert.Equal(t, user.ErrEmailExists, repo.CheckEmailUniqueness("ada@test.cd"))
	assert.NoError(t, repo.CheckEmailUniqueness("ada@test.cd", ada))

	got, err := repo.GetUserByEmail("ada@test.cd")
	require.NoError(t, err)
	assert.Equal(t, ada.ID, got.ID)
	_, err = repo.GetUserByID("lol")
	assert.Equal(t, user.ErrNotFound, err)

	inactive := false
	list, err := repo.FilterUsers(user.QueryFilter{IsActive: &inactive})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Grace", list.Items[0].Name)

	list, err = repo.FilterUsers(user.QueryFilter{Search: "TEST.CD", Ordering: []core.Ordering{core.Desc("name")}})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, "Grace", list.Items[0].Name)

	ada.Name = "Ada Lovelace"
	updated, err := repo.UpdateUser(ada)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.Name)

	require.NoError(t, repo.DeleteUsersByID(ada.ID))
	assert.Equal(t, user.ErrNotFound, repo.DeleteUsersByID(ada.ID))
}

func TestLoadSeedFile_devFixtures(t *testing.T) {
	db := Open()
	require.NoError(t, LoadSeedFile(db, filepath.Join(core.Getwd(), "config", "seed.yaml")))

	assert.Equal(t, 3, db.Users.Len())
	mentor, err := db.Users.Get("u-mentor")
	require.NoError(t, err)
	assert.NoError(t, mentor.CheckPassword("M3ntor!Masomo"))

	unassigned := db.Tasks.Filter(func(t task.Task) bool { return !t.AssigneeID.Valid })
	assert.Len(t, unassigned, 2)
	lp, err := db.LearningPaths.Get("lp-electronics")
	require.NoError(t, err)
	assert.Len(t, lp.Steps, 2)
}
