package models

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/relabs-tech/jobly/core/csql"
	"github.com/relabs-tech/jobly/core/errs"
	"github.com/relabs-tech/jobly/core/sqlbuild"
)

// Job is the externally visible shape of a job.
type Job struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Salary        *int     `json:"salary"`
	Equity        *float64 `json:"equity"`
	CompanyHandle string   `json:"companyHandle"`
	// Technology is only resolved by Get, Create and Update
	Technology []string `json:"technology,omitempty"`
}

// NewJob is the payload for Jobs.Create
type NewJob struct {
	Title         string   `json:"title"`
	Salary        *int     `json:"salary"`
	Equity        *float64 `json:"equity"`
	CompanyHandle string   `json:"companyHandle"`
	Technology    []string `json:"technology"`
}

// JobFilter holds the optional filters for Jobs.FindAll
type JobFilter struct {
	Title      *string
	MinSalary  *int
	HasEquity  bool
	Technology []string
}

// Jobs is the data-access module for jobs
type Jobs struct {
	db *csql.DB
}

const jobSelect = `id, title, salary, equity, company_handle`

// Create inserts a job. If a technology list is supplied, the job's
// technology associations are replaced in the same transaction.
func (m *Jobs) Create(ctx context.Context, j NewJob) (*Job, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	job := Job{}
	err = tx.QueryRowContext(ctx,
		fmt.Sprintf(`INSERT INTO %s.jobs (title, salary, equity, company_handle)
			VALUES ($1, $2, $3, $4)
			RETURNING `+jobSelect, m.db.Schema),
		j.Title, j.Salary, j.Equity, j.CompanyHandle).
		Scan(&job.ID, &job.Title, &job.Salary, &job.Equity, &job.CompanyHandle)
	if err != nil {
		if err, ok := err.(*pq.Error); ok {
			switch err.Code {
			case pqForeignKeyViolation:
				return nil, errs.New(errs.KindNotFound, "no company: %s", j.CompanyHandle)
			case pqCheckViolation:
				return nil, errs.Wrap(errs.KindInvalidInput, err, "salary must be >= 0 and equity <= 1.0")
			}
		}
		return nil, err
	}

	if j.Technology != nil {
		job.Technology, err = replaceTechnology(ctx, tx, m.db.Schema, "jobs_tech", "job_id", job.ID, j.Technology)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &job, nil
}

// FindAll returns all jobs matching the filter, ordered by title.
//
// The title filter is a case-insensitive partial match, minSalary a lower
// bound, hasEquity restricts to jobs with equity > 0, and technology
// restricts to jobs associated with any of the given technology names.
func (m *Jobs) FindAll(ctx context.Context, filter JobFilter) ([]Job, error) {
	var predicates []string
	var params []interface{}

	if filter.Title != nil {
		params = append(params, "%"+*filter.Title+"%")
		predicates = append(predicates, fmt.Sprintf(`title ILIKE $%d`, len(params)))
	}
	if filter.MinSalary != nil {
		params = append(params, *filter.MinSalary)
		predicates = append(predicates, fmt.Sprintf(`salary >= $%d`, len(params)))
	}
	if filter.HasEquity {
		predicates = append(predicates, `equity > 0`)
	}
	if len(filter.Technology) > 0 {
		params = append(params, pq.Array(filter.Technology))
		predicates = append(predicates, fmt.Sprintf(
			`id IN (SELECT job_id FROM %s.jobs_tech WHERE tech_name = ANY($%d))`,
			m.db.Schema, len(params)))
	}

	query := fmt.Sprintf(`SELECT `+jobSelect+` FROM %s.jobs %s ORDER BY title`,
		m.db.Schema, sqlbuild.WhereClause(predicates...))
	rows, err := m.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.Title, &j.Salary, &j.Equity, &j.CompanyHandle); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// Get returns the job with the given id, including its resolved technology
// names.
func (m *Jobs) Get(ctx context.Context, id int64) (*Job, error) {
	job := Job{}
	err := m.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT `+jobSelect+` FROM %s.jobs WHERE id = $1`, m.db.Schema), id).
		Scan(&job.ID, &job.Title, &job.Salary, &job.Equity, &job.CompanyHandle)
	if err == csql.ErrNoRows {
		return nil, errs.New(errs.KindNotFound, "no job with id: %d", id)
	} else if err != nil {
		return nil, err
	}

	job.Technology, err = technologyOf(ctx, m.db, m.db.Schema, "jobs_tech", "job_id", id)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Update changes the provided fields of the job with the given id. A
// technology key replaces the job's technology associations; the update and
// the replacement run in one transaction.
func (m *Jobs) Update(ctx context.Context, id int64, data map[string]interface{}) (*Job, error) {
	if err := sqlbuild.CheckAllowedKeys(sqlbuild.MapKeys(data),
		"title", "salary", "equity", "technology"); err != nil {
		return nil, err
	}

	technology, replace := data["technology"]
	delete(data, "technology")

	fields := sqlbuild.FieldsFromMap(data, "title", "salary", "equity")
	if len(fields) == 0 && !replace {
		return nil, errs.New(errs.KindInvalidInput, "no data")
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	job := Job{}
	if len(fields) > 0 {
		setClause, values, err := sqlbuild.ForPartialUpdate(fields, nil)
		if err != nil {
			return nil, err
		}
		query := fmt.Sprintf(`UPDATE %s.jobs SET %s WHERE id = $%d RETURNING `+jobSelect,
			m.db.Schema, setClause, len(values)+1)
		err = tx.QueryRowContext(ctx, query, append(values, id)...).
			Scan(&job.ID, &job.Title, &job.Salary, &job.Equity, &job.CompanyHandle)
		if err == csql.ErrNoRows {
			return nil, errs.New(errs.KindNotFound, "no job with id: %d", id)
		} else if err != nil {
			if err, ok := err.(*pq.Error); ok && err.Code == pqCheckViolation {
				return nil, errs.Wrap(errs.KindInvalidInput, err, "salary must be >= 0 and equity <= 1.0")
			}
			return nil, err
		}
	} else {
		// technology-only update, the row itself stays untouched
		err = tx.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT `+jobSelect+` FROM %s.jobs WHERE id = $1`, m.db.Schema), id).
			Scan(&job.ID, &job.Title, &job.Salary, &job.Equity, &job.CompanyHandle)
		if err == csql.ErrNoRows {
			return nil, errs.New(errs.KindNotFound, "no job with id: %d", id)
		} else if err != nil {
			return nil, err
		}
	}

	if replace {
		job.Technology, err = replaceTechnology(ctx, tx, m.db.Schema, "jobs_tech", "job_id",
			id, technologyNames(technology))
		if err != nil {
			return nil, err
		}
	} else {
		job.Technology, err = technologyOf(ctx, tx, m.db.Schema, "jobs_tech", "job_id", id)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &job, nil
}

// Remove deletes the job with the given id.
func (m *Jobs) Remove(ctx context.Context, id int64) error {
	var deleted string
	err := m.db.QueryRowContext(ctx,
		fmt.Sprintf(`DELETE FROM %s.jobs WHERE id = $1 RETURNING title`, m.db.Schema), id).
		Scan(&deleted)
	if err == csql.ErrNoRows {
		return errs.New(errs.KindNotFound, "no job with id: %d", id)
	}
	return err
}

// technologyNames coerces a decoded JSON value into a list of names.
func technologyNames(value interface{}) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []interface{}:
		names := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				names = append(names, s)
			}
		}
		return names
	}
	return []string{}
}
