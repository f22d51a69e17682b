package inmemdb

import (
	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/user"
)

var userOrderings = map[string]Less[user.User]{
	"name":      func(a, b user.User) bool { return a.Name < b.Name },
	"email":     func(a, b user.User) bool { return a.Email < b.Email },
	"createdAt": func(a, b user.User) bool { return a.CreatedAt.Before(b.CreatedAt) },
	"lastLogin": func(a, b user.User) bool { return a.LastLogin.Time.Before(b.LastLogin.Time) },
}

type userRepository struct {
	table *Table[user.User]
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{table: db.Users}
}

func (repo *userRepository) CheckEmailUniqueness(email string, excludedUsers ...user.User) error {
	_, err := repo.table.Find(func(usr user.User) bool {
		return usr.Email == email && !isExcluded(usr, excludedUsers)
	})
	if err == nil {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	usr.ID = NewID()
	repo.table.Insert(usr.ID, usr)
	return usr, nil
}

func (repo *userRepository) GetUserByID(id string) (user.User, error) {
	usr, err := repo.table.Get(id)
	return usr, notFound(err, user.ErrNotFound)
}

func (repo *userRepository) GetUserByEmail(email string) (user.User, error) {
	usr, err := repo.table.Find(func(usr user.User) bool { return usr.Email == email })
	return usr, notFound(err, user.ErrNotFound)
}

func (repo *userRepository) FilterUsers(filter user.QueryFilter) (core.List[user.User], error) {
	users := repo.table.Filter(func(usr user.User) bool {
		if filter.Search != "" && !(Contains(usr.Name, filter.Search) || Contains(usr.Email, filter.Search)) {
			return false
		}
		if filter.Role != "" && !usr.HasRole(filter.Role) {
			return false
		}
		if filter.IsActive != nil && usr.IsActive != *filter.IsActive {
			return false
		}
		return true
	})
	Sort(users, filter.Ordering, userOrderings)
	return Paginate(users, filter.Page), nil
}

func (repo *userRepository) UpdateUser(usr user.User) (user.User, error) {
	usr, err := repo.table.Update(usr.ID, func(row *user.User) error {
		usr.CreatedAt = row.CreatedAt
		if usr.PasswordHash == nil {
			usr.PasswordHash = row.PasswordHash
		}
		*row = usr
		return nil
	})
	return usr, notFound(err, user.ErrNotFound)
}

func (repo *userRepository) DeleteUsersByID(ids ...string) error {
	return notFound(repo.table.Delete(ids...), user.ErrNotFound)
}

func isExcluded(usr user.User, excludedUsers []user.User) bool {
	for _, excl := range excludedUsers {
		if excl.ID == usr.ID {
			return true
		}
	}
	return false
}

// notFound replaces ErrNotFound with the not found error of a domain package.
func notFound(err, domainErr error) error {
	if errors.Cause(err) == ErrNotFound {
		return domainErr
	}
	return err
}
