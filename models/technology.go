package models

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/relabs-tech/jobly/core/csql"
	"github.com/relabs-tech/jobly/core/errs"
	"github.com/relabs-tech/jobly/core/sqlbuild"
)

// Technology is the externally visible shape of a technology. The name is
// the natural key and must be lowercase, enforced by a store-level check
// constraint.
type Technology struct {
	Name string `json:"name"`
}

// TechnologyFilter holds the optional filters for Technologies.FindAll
type TechnologyFilter struct {
	Name *string
}

// Technologies is the data-access module for technologies
type Technologies struct {
	db *csql.DB
}

// Create adds a technology, fails with a duplicate error if the name is
// already taken and with an invalid-input error if the name is not
// lowercase.
func (m *Technologies) Create(ctx context.Context, t Technology) (*Technology, error) {
	var existing string
	err := m.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT name FROM %s.technologies WHERE name = $1`, m.db.Schema),
		t.Name).Scan(&existing)
	if err == nil {
		return nil, errs.New(errs.KindDuplicate, "duplicate technology: %s", t.Name)
	} else if err != csql.ErrNoRows {
		return nil, err
	}

	tech := Technology{}
	err = m.db.QueryRowContext(ctx,
		fmt.Sprintf(`INSERT INTO %s.technologies (name) VALUES ($1) RETURNING name`, m.db.Schema),
		t.Name).Scan(&tech.Name)
	if err != nil {
		if err, ok := err.(*pq.Error); ok && err.Code == pqCheckViolation {
			return nil, errs.Wrap(errs.KindInvalidInput, err, "name must be lowercase")
		}
		return nil, err
	}
	return &tech, nil
}

// FindAll returns all technologies matching the filter, ordered by name.
func (m *Technologies) FindAll(ctx context.Context, filter TechnologyFilter) ([]Technology, error) {
	var predicates []string
	var params []interface{}

	if filter.Name != nil {
		params = append(params, "%"+*filter.Name+"%")
		predicates = append(predicates, fmt.Sprintf(`name ILIKE $%d`, len(params)))
	}

	query := fmt.Sprintf(`SELECT name FROM %s.technologies %s ORDER BY name`,
		m.db.Schema, sqlbuild.WhereClause(predicates...))
	rows, err := m.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	technologies := []Technology{}
	for rows.Next() {
		var t Technology
		if err := rows.Scan(&t.Name); err != nil {
			return nil, err
		}
		technologies = append(technologies, t)
	}
	return technologies, rows.Err()
}

// Get returns the technology with the given name.
func (m *Technologies) Get(ctx context.Context, name string) (*Technology, error) {
	tech := Technology{}
	err := m.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT name FROM %s.technologies WHERE name = $1`, m.db.Schema),
		name).Scan(&tech.Name)
	if err == csql.ErrNoRows {
		return nil, errs.New(errs.KindNotFound, "no technology: %s", name)
	} else if err != nil {
		return nil, err
	}
	return &tech, nil
}

// Update changes the provided fields of the technology with the given name.
// The rename follows the lowercase check; renaming onto an existing name is
// a duplicate error.
func (m *Technologies) Update(ctx context.Context, name string, data map[string]interface{}) (*Technology, error) {
	if err := sqlbuild.CheckAllowedKeys(sqlbuild.MapKeys(data), "name"); err != nil {
		return nil, err
	}

	fields := sqlbuild.FieldsFromMap(data, "name")
	setClause, values, err := sqlbuild.ForPartialUpdate(fields, nil)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`UPDATE %s.technologies SET %s WHERE name = $%d RETURNING name`,
		m.db.Schema, setClause, len(values)+1)
	tech := Technology{}
	err = m.db.QueryRowContext(ctx, query, append(values, name)...).Scan(&tech.Name)
	if err == csql.ErrNoRows {
		return nil, errs.New(errs.KindNotFound, "no technology: %s", name)
	} else if err != nil {
		if err, ok := err.(*pq.Error); ok {
			switch err.Code {
			case pqCheckViolation:
				return nil, errs.Wrap(errs.KindInvalidInput, err, "name must be lowercase")
			case pqUniqueViolation:
				return nil, errs.Wrap(errs.KindDuplicate, err, "duplicate technology")
			}
		}
		return nil, err
	}
	return &tech, nil
}

// Remove deletes the technology with the given name.
func (m *Technologies) Remove(ctx context.Context, name string) error {
	var deleted string
	err := m.db.QueryRowContext(ctx,
		fmt.Sprintf(`DELETE FROM %s.technologies WHERE name = $1 RETURNING name`, m.db.Schema),
		name).Scan(&deleted)
	if err == csql.ErrNoRows {
		return errs.New(errs.KindNotFound, "no technology: %s", name)
	}
	return err
}
