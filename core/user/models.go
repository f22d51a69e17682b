package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/masomo/core"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleMentor  = "mentor"
	RoleStudent = "student"
)

var (
	AllRoles = []string{RoleAdmin, RoleMentor, RoleStudent}

	rolePriorities = map[string]int{
		RoleAdmin:   30,
		RoleMentor:  20,
		RoleStudent: 10,
	}

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Mentor", Value: RoleMentor},
		{Name: "Admin", Value: RoleAdmin},
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Bio          string    `json:"bio,omitempty"`
	Skills       []string  `json:"skills,omitempty"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	IsActive     bool      `json:"isActive"`
	Roles        []string  `json:"roles"`
	PasswordHash []byte    `json:"-" yaml:"-"`
	CreatedAt    time.Time `json:"createdAt"` // UTC
	UpdatedAt    time.Time `json:"updatedAt"` // UTC
	LastLogin    null.Time `json:"lastLogin"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u User) IsAdmin() bool   { return u.HasRole(RoleAdmin) }
func (u User) IsMentor() bool  { return u.HasRole(RoleMentor) }
func (u User) IsStudent() bool { return u.HasRole(RoleStudent) }

// RollbarPerson identifies the user in error reports.
func (u User) RollbarPerson() (id, username, email string) {
	return u.ID, u.Name, u.Email
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string   `json:"name" validate:"required,notblank,min=2,max=100"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"passwordConfirm" validate:"required,eqfield=Password"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
	Bio             string   `json:"bio,omitempty" validate:"max=1000"`
	Skills          []string `json:"skills,omitempty" validate:"max=20,dive,max=50"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	return validate.Struct(nu)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Nil fields are left unchanged.
type UpdateUser struct {
	Name      *string  `json:"name,omitempty" validate:"omitempty,notblank,min=2,max=100"`
	Bio       *string  `json:"bio,omitempty" validate:"omitempty,max=1000"`
	Skills    []string `json:"skills,omitempty" validate:"omitempty,max=20,dive,max=50"`
	AvatarURL *string  `json:"avatarUrl,omitempty" validate:"omitempty,url"`
	IsActive  *bool    `json:"isActive,omitempty"`
	Roles     []string `json:"roles,omitempty" validate:"omitempty,allroles"`
	Password  string   `json:"password,omitempty"`
	// PasswordConfirm must match Password when a new password is set.
	PasswordConfirm string `json:"passwordConfirm,omitempty" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(validate *validator.Validate) error {
	if uu.Name != nil {
		name := core.CleanString(*uu.Name)
		uu.Name = &name
	}
	return validate.Struct(uu)
}

// Credentials are exchanged for an access token.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	return validate.Struct(c)
}

// Session is the reply of a successful login.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type QueryFilter struct {
	Search   string
	Role     string
	IsActive *bool
	Ordering []core.Ordering
	core.Page
}

func (qf QueryFilter) Params() *core.Params {
	return core.NewParams().
		Set("search", qf.Search).
		Set("role", qf.Role).
		SetBool("isActive", qf.IsActive).
		SetOrdering(qf.Ordering).
		SetPage(qf.Page)
}
