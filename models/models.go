/*Package models contains the entity data-access modules for jobly:
companies, jobs, technologies and users.

Each module holds the injected database handle and exposes create, findAll,
get, update and remove operations that issue parameterized queries and map
rows to the externally visible DTOs. Store errors with a recognized postgres
code are translated into domain errors (see core/errs); everything else
propagates unmodified.
*/
package models

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/relabs-tech/jobly/core/csql"
	"github.com/relabs-tech/jobly/core/errs"
)

// postgres error codes the models know how to translate
const (
	pqUniqueViolation     = pq.ErrorCode("23505")
	pqForeignKeyViolation = pq.ErrorCode("23503")
	pqCheckViolation      = pq.ErrorCode("23514")
)

// Models bundles the entity data-access modules around one database handle.
type Models struct {
	Companies    *Companies
	Jobs         *Jobs
	Technologies *Technologies
	Users        *Users
}

// Builder is a builder helper for the Models
type Builder struct {
	// DB is the jobly postgres database. This is mandatory.
	DB *csql.DB
	// BcryptCost is the work factor for password hashing. Zero selects
	// the bcrypt default cost.
	BcryptCost int
}

// New creates the entity data-access modules and the database relations
// they need (if they do not exist yet).
func New(bb *Builder) (*Models, error) {
	if bb.DB == nil {
		panic("DB is missing")
	}
	if err := EnsureSchema(bb.DB); err != nil {
		return nil, err
	}
	return &Models{
		Companies:    &Companies{db: bb.DB},
		Jobs:         &Jobs{db: bb.DB},
		Technologies: &Technologies{db: bb.DB},
		Users:        &Users{db: bb.DB, bcryptCost: bb.BcryptCost},
	}, nil
}

// MustNew is like New but panics on error
func MustNew(bb *Builder) *Models {
	m, err := New(bb)
	if err != nil {
		panic(err)
	}
	return m
}

// replaceTechnology implements the full-replace semantics for the
// job<->technology and user<->technology join tables: all existing rows for
// the owner are deleted, then one row per supplied technology name is
// inserted. Both phases run on the same transaction, a failure rolls the
// delete back. Returns the inserted names in insertion order.
func replaceTechnology(ctx context.Context, tx *sql.Tx, schema, table, ownerColumn string,
	owner interface{}, technology []string) ([]string, error) {

	_, err := tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s.%s WHERE %s = $1`, schema, table, ownerColumn), owner)
	if err != nil {
		return nil, err
	}

	if len(technology) == 0 {
		return []string{}, nil
	}

	placeholders := make([]string, len(technology))
	values := make([]interface{}, 0, len(technology)+1)
	values = append(values, owner)
	for i := range technology {
		placeholders[i] = fmt.Sprintf("($1, $%d)", i+2)
		values = append(values, technology[i])
	}

	insertQuery := fmt.Sprintf(`INSERT INTO %s.%s (%s, tech_name) VALUES %s RETURNING tech_name`,
		schema, table, ownerColumn, strings.Join(placeholders, ","))
	rows, err := tx.QueryContext(ctx, insertQuery, values...)
	if err != nil {
		if err, ok := err.(*pq.Error); ok {
			switch err.Code {
			case pqForeignKeyViolation:
				return nil, errs.Wrap(errs.KindNotFound, err, "no such technology")
			case pqUniqueViolation:
				return nil, errs.Wrap(errs.KindDuplicate, err, "duplicate technology for "+ownerColumn)
			}
		}
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0, len(technology))
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// technologyOf returns the technology names currently associated with the
// owner row in the given join table.
func technologyOf(ctx context.Context, q interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}, schema, table, ownerColumn string, owner interface{}) ([]string, error) {

	rows, err := q.QueryContext(ctx,
		fmt.Sprintf(`SELECT tech_name FROM %s.%s WHERE %s = $1`, schema, table, ownerColumn), owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
