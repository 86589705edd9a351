package models

import (
	"context"
	"fmt"

	"github.com/relabs-tech/jobly/core/csql"
	"github.com/relabs-tech/jobly/core/errs"
	"github.com/relabs-tech/jobly/core/sqlbuild"
)

// Company is the externally visible shape of a company.
type Company struct {
	Handle       string  `json:"handle"`
	Name         string  `json:"name"`
	NumEmployees *int    `json:"numEmployees"`
	Description  string  `json:"description"`
	LogoURL      *string `json:"logoUrl"`
	// Jobs is only resolved by Get
	Jobs []Job `json:"jobs,omitempty"`
}

// NewCompany is the payload for Companies.Create
type NewCompany struct {
	Handle       string  `json:"handle"`
	Name         string  `json:"name"`
	NumEmployees *int    `json:"numEmployees"`
	Description  string  `json:"description"`
	LogoURL      *string `json:"logoUrl"`
}

// CompanyFilter holds the optional filters for Companies.FindAll
type CompanyFilter struct {
	Name         *string
	MinEmployees *int
	MaxEmployees *int
}

// Companies is the data-access module for companies
type Companies struct {
	db *csql.DB
}

var companyColumns = map[string]string{
	"numEmployees": "num_employees",
	"logoUrl":      "logo_url",
}

const companySelect = `handle, name, num_employees, description, logo_url`

// Create adds a company, fails with a duplicate error if the handle is
// already taken.
func (m *Companies) Create(ctx context.Context, c NewCompany) (*Company, error) {
	var existing string
	err := m.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT handle FROM %s.companies WHERE handle = $1`, m.db.Schema),
		c.Handle).Scan(&existing)
	if err == nil {
		return nil, errs.New(errs.KindDuplicate, "duplicate company: %s", c.Handle)
	} else if err != csql.ErrNoRows {
		return nil, err
	}

	company := Company{}
	err = m.db.QueryRowContext(ctx,
		fmt.Sprintf(`INSERT INTO %s.companies (handle, name, num_employees, description, logo_url)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+companySelect, m.db.Schema),
		c.Handle, c.Name, c.NumEmployees, c.Description, c.LogoURL).
		Scan(&company.Handle, &company.Name, &company.NumEmployees, &company.Description, &company.LogoURL)
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// FindAll returns all companies matching the filter, ordered by name.
// A minimum employee count above the maximum is an invalid-input error.
func (m *Companies) FindAll(ctx context.Context, filter CompanyFilter) ([]Company, error) {
	if filter.MinEmployees != nil && filter.MaxEmployees != nil &&
		*filter.MinEmployees > *filter.MaxEmployees {
		return nil, errs.New(errs.KindInvalidInput, "minEmployees cannot be greater than maxEmployees")
	}

	var predicates []string
	var params []interface{}

	if filter.Name != nil {
		params = append(params, "%"+*filter.Name+"%")
		predicates = append(predicates, fmt.Sprintf(`name ILIKE $%d`, len(params)))
	}
	if filter.MinEmployees != nil {
		params = append(params, *filter.MinEmployees)
		predicates = append(predicates, fmt.Sprintf(`num_employees >= $%d`, len(params)))
	}
	if filter.MaxEmployees != nil {
		params = append(params, *filter.MaxEmployees)
		predicates = append(predicates, fmt.Sprintf(`num_employees <= $%d`, len(params)))
	}

	query := fmt.Sprintf(`SELECT `+companySelect+` FROM %s.companies %s ORDER BY name`,
		m.db.Schema, sqlbuild.WhereClause(predicates...))
	rows, err := m.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := []Company{}
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.Handle, &c.Name, &c.NumEmployees, &c.Description, &c.LogoURL); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// Get returns the company with the given handle, including its jobs.
func (m *Companies) Get(ctx context.Context, handle string) (*Company, error) {
	company := Company{}
	err := m.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT `+companySelect+` FROM %s.companies WHERE handle = $1`, m.db.Schema),
		handle).
		Scan(&company.Handle, &company.Name, &company.NumEmployees, &company.Description, &company.LogoURL)
	if err == csql.ErrNoRows {
		return nil, errs.New(errs.KindNotFound, "no company: %s", handle)
	} else if err != nil {
		return nil, err
	}

	rows, err := m.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, title, salary, equity, company_handle FROM %s.jobs
			WHERE company_handle = $1 ORDER BY title`, m.db.Schema), handle)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	company.Jobs = []Job{}
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.Title, &j.Salary, &j.Equity, &j.CompanyHandle); err != nil {
			return nil, err
		}
		company.Jobs = append(company.Jobs, j)
	}
	return &company, rows.Err()
}

// Update changes the provided fields of the company with the given handle.
// Fields not present in data are left untouched; an explicit null nulls the
// column.
func (m *Companies) Update(ctx context.Context, handle string, data map[string]interface{}) (*Company, error) {
	if err := sqlbuild.CheckAllowedKeys(sqlbuild.MapKeys(data),
		"name", "numEmployees", "description", "logoUrl"); err != nil {
		return nil, err
	}

	fields := sqlbuild.FieldsFromMap(data, "name", "numEmployees", "description", "logoUrl")
	setClause, values, err := sqlbuild.ForPartialUpdate(fields, companyColumns)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`UPDATE %s.companies SET %s WHERE handle = $%d RETURNING `+companySelect,
		m.db.Schema, setClause, len(values)+1)
	company := Company{}
	err = m.db.QueryRowContext(ctx, query, append(values, handle)...).
		Scan(&company.Handle, &company.Name, &company.NumEmployees, &company.Description, &company.LogoURL)
	if err == csql.ErrNoRows {
		return nil, errs.New(errs.KindNotFound, "no company: %s", handle)
	} else if err != nil {
		return nil, err
	}
	return &company, nil
}

// Remove deletes the company with the given handle. The store cascades the
// deletion to the company's jobs.
func (m *Companies) Remove(ctx context.Context, handle string) error {
	var deleted string
	err := m.db.QueryRowContext(ctx,
		fmt.Sprintf(`DELETE FROM %s.companies WHERE handle = $1 RETURNING handle`, m.db.Schema),
		handle).Scan(&deleted)
	if err == csql.ErrNoRows {
		return errs.New(errs.KindNotFound, "no company: %s", handle)
	}
	return err
}
