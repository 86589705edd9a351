package models

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/relabs-tech/jobly/core/csql"
	"github.com/relabs-tech/jobly/core/errs"
	"github.com/relabs-tech/jobly/core/sqlbuild"
)

// User is the externally visible shape of a user. The password hash is
// never part of it.
type User struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
	// Jobs and Technology are only resolved by Get, Register and Update
	Jobs       []Application `json:"jobs,omitempty"`
	Technology []string      `json:"technology,omitempty"`
}

// Application is one job application of a user
type Application struct {
	JobID    int64  `json:"jobId"`
	AppState string `json:"appState"`
}

// application states accepted by ApplyForJob
var allowedAppStates = []string{"interested", "applied", "accepted", "rejected"}

// NewUser is the payload for Users.Register
type NewUser struct {
	Username   string   `json:"username"`
	Password   string   `json:"password"`
	FirstName  string   `json:"firstName"`
	LastName   string   `json:"lastName"`
	Email      string   `json:"email"`
	IsAdmin    bool     `json:"isAdmin"`
	Technology []string `json:"technology"`
}

// Users is the data-access module for users
type Users struct {
	db         *csql.DB
	bcryptCost int
}

var userColumns = map[string]string{
	"firstName": "first_name",
	"lastName":  "last_name",
	"isAdmin":   "is_admin",
}

const userSelect = `username, first_name, last_name, email, is_admin`

func (m *Users) cost() int {
	if m.bcryptCost > 0 {
		return m.bcryptCost
	}
	return bcrypt.DefaultCost
}

// Authenticate verifies username and password and returns the user. An
// unknown username and a wrong password are indistinguishable to the
// caller, both fail with an unauthorized error.
func (m *Users) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user := User{}
	var hash string
	err := m.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT `+userSelect+`, password FROM %s.users WHERE username = $1`, m.db.Schema),
		username).
		Scan(&user.Username, &user.FirstName, &user.LastName, &user.Email, &user.IsAdmin, &hash)
	if err == csql.ErrNoRows {
		return nil, errs.New(errs.KindUnauthorized, "invalid username/password")
	} else if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, errs.New(errs.KindUnauthorized, "invalid username/password")
	}
	return &user, nil
}

// Register creates a user, hashing the password before storage. A supplied
// technology list establishes the user's technology associations in the
// same transaction.
func (m *Users) Register(ctx context.Context, u NewUser) (*User, error) {
	var existing string
	err := m.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT username FROM %s.users WHERE username = $1`, m.db.Schema),
		u.Username).Scan(&existing)
	if err == nil {
		return nil, errs.New(errs.KindDuplicate, "duplicate username: %s", u.Username)
	} else if err != csql.ErrNoRows {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), m.cost())
	if err != nil {
		return nil, err
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user := User{}
	err = tx.QueryRowContext(ctx,
		fmt.Sprintf(`INSERT INTO %s.users (username, password, first_name, last_name, email, is_admin)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+userSelect, m.db.Schema),
		u.Username, string(hash), u.FirstName, u.LastName, u.Email, u.IsAdmin).
		Scan(&user.Username, &user.FirstName, &user.LastName, &user.Email, &user.IsAdmin)
	if err != nil {
		if err, ok := err.(*pq.Error); ok && err.Code == pqUniqueViolation {
			return nil, errs.New(errs.KindDuplicate, "duplicate username: %s", u.Username)
		}
		return nil, err
	}

	if u.Technology != nil {
		user.Technology, err = replaceTechnology(ctx, tx, m.db.Schema, "users_tech", "username",
			user.Username, u.Technology)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAll returns all users ordered by username.
func (m *Users) FindAll(ctx context.Context) ([]User, error) {
	rows, err := m.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT `+userSelect+` FROM %s.users ORDER BY username`, m.db.Schema))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.Username, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Get returns the user with the given username, including the user's job
// applications and resolved technology names.
func (m *Users) Get(ctx context.Context, username string) (*User, error) {
	user := User{}
	err := m.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT `+userSelect+` FROM %s.users WHERE username = $1`, m.db.Schema),
		username).
		Scan(&user.Username, &user.FirstName, &user.LastName, &user.Email, &user.IsAdmin)
	if err == csql.ErrNoRows {
		return nil, errs.New(errs.KindNotFound, "no user: %s", username)
	} else if err != nil {
		return nil, err
	}

	rows, err := m.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT job_id, app_state FROM %s.applications WHERE username = $1 ORDER BY job_id`,
			m.db.Schema), username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	user.Jobs = []Application{}
	for rows.Next() {
		var a Application
		if err := rows.Scan(&a.JobID, &a.AppState); err != nil {
			return nil, err
		}
		user.Jobs = append(user.Jobs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	user.Technology, err = technologyOf(ctx, m.db, m.db.Schema, "users_tech", "username", username)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update changes the provided fields of the user with the given username.
// A password is re-hashed before storage. A technology key replaces the
// user's technology associations, otherwise the current association list is
// returned unchanged.
//
// WARNING: this function can set a new password or make a user an admin.
// Callers must be certain they have validated their inputs, or serious
// security risks are opened.
func (m *Users) Update(ctx context.Context, username string, data map[string]interface{}) (*User, error) {
	if err := sqlbuild.CheckAllowedKeys(sqlbuild.MapKeys(data),
		"firstName", "lastName", "password", "email", "isAdmin", "technology"); err != nil {
		return nil, err
	}

	if password, ok := data["password"].(string); ok {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost())
		if err != nil {
			return nil, err
		}
		data["password"] = string(hash)
	}

	technology, replace := data["technology"]
	delete(data, "technology")

	fields := sqlbuild.FieldsFromMap(data, "firstName", "lastName", "password", "email", "isAdmin")
	if len(fields) == 0 && !replace {
		return nil, errs.New(errs.KindInvalidInput, "no data")
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user := User{}
	if len(fields) > 0 {
		setClause, values, err := sqlbuild.ForPartialUpdate(fields, userColumns)
		if err != nil {
			return nil, err
		}
		query := fmt.Sprintf(`UPDATE %s.users SET %s WHERE username = $%d RETURNING `+userSelect,
			m.db.Schema, setClause, len(values)+1)
		err = tx.QueryRowContext(ctx, query, append(values, username)...).
			Scan(&user.Username, &user.FirstName, &user.LastName, &user.Email, &user.IsAdmin)
		if err == csql.ErrNoRows {
			return nil, errs.New(errs.KindNotFound, "no user: %s", username)
		} else if err != nil {
			return nil, err
		}
	} else {
		// technology-only update, the row itself stays untouched
		err = tx.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT `+userSelect+` FROM %s.users WHERE username = $1`, m.db.Schema),
			username).
			Scan(&user.Username, &user.FirstName, &user.LastName, &user.Email, &user.IsAdmin)
		if err == csql.ErrNoRows {
			return nil, errs.New(errs.KindNotFound, "no user: %s", username)
		} else if err != nil {
			return nil, err
		}
	}

	if replace {
		user.Technology, err = replaceTechnology(ctx, tx, m.db.Schema, "users_tech", "username",
			username, technologyNames(technology))
	} else {
		user.Technology, err = technologyOf(ctx, tx, m.db.Schema, "users_tech", "username", username)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &user, nil
}

// Remove deletes the user with the given username.
func (m *Users) Remove(ctx context.Context, username string) error {
	var deleted string
	err := m.db.QueryRowContext(ctx,
		fmt.Sprintf(`DELETE FROM %s.users WHERE username = $1 RETURNING username`, m.db.Schema),
		username).Scan(&deleted)
	if err == csql.ErrNoRows {
		return errs.New(errs.KindNotFound, "no user: %s", username)
	}
	return err
}

// ApplyForJob records an application of the user for the job. The state
// must be one of interested, applied, accepted or rejected. At most one
// application per (username, job) pair exists; a foreign key violation from
// the store names whichever of job or user was the unsatisfied reference.
func (m *Users) ApplyForJob(ctx context.Context, username string, jobID int64, appState string) (int64, error) {
	allowed := false
	for _, state := range allowedAppStates {
		if appState == state {
			allowed = true
			break
		}
	}
	if !allowed {
		return 0, errs.New(errs.KindInvalidInput, "state must be one of: %s",
			strings.Join(allowedAppStates, ", "))
	}

	var existing string
	err := m.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT username FROM %s.applications WHERE username = $1 AND job_id = $2`,
			m.db.Schema), username, jobID).Scan(&existing)
	if err == nil {
		return 0, errs.New(errs.KindDuplicate, "application already exists")
	} else if err != csql.ErrNoRows {
		return 0, err
	}

	var appliedID int64
	err = m.db.QueryRowContext(ctx,
		fmt.Sprintf(`INSERT INTO %s.applications (username, job_id, app_state)
			VALUES ($1, $2, $3)
			RETURNING job_id`, m.db.Schema),
		username, jobID, appState).Scan(&appliedID)
	if err != nil {
		if err, ok := err.(*pq.Error); ok {
			switch err.Code {
			case pqForeignKeyViolation:
				if strings.Contains(err.Constraint, "job_id") {
					return 0, errs.New(errs.KindNotFound, "no job with id: %d", jobID)
				}
				return 0, errs.New(errs.KindNotFound, "no user: %s", username)
			case pqUniqueViolation:
				return 0, errs.New(errs.KindDuplicate, "application already exists")
			}
		}
		return 0, err
	}
	return appliedID, nil
}
