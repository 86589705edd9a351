package models

import (
	"fmt"

	"github.com/relabs-tech/jobly/core/csql"
)

// EnsureSchema creates the jobly relations in the database's schema if they
// do not exist yet. Company removal cascades to jobs; job, user and
// technology removal cascade-clean their join rows.
func EnsureSchema(db *csql.DB) error {
	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s.companies (
	handle VARCHAR(25) PRIMARY KEY,
	name TEXT NOT NULL,
	num_employees INTEGER CHECK (num_employees >= 0),
	description TEXT NOT NULL DEFAULT '',
	logo_url TEXT
);
CREATE TABLE IF NOT EXISTS %[1]s.jobs (
	id SERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	salary INTEGER CHECK (salary >= 0),
	equity NUMERIC CHECK (equity <= 1.0),
	company_handle VARCHAR(25) NOT NULL
		REFERENCES %[1]s.companies ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS %[1]s.users (
	username VARCHAR(25) PRIMARY KEY,
	password TEXT NOT NULL,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	email TEXT NOT NULL,
	is_admin BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE TABLE IF NOT EXISTS %[1]s.technologies (
	name TEXT PRIMARY KEY CHECK (name = lower(name))
);
CREATE TABLE IF NOT EXISTS %[1]s.jobs_tech (
	job_id INTEGER REFERENCES %[1]s.jobs ON DELETE CASCADE,
	tech_name TEXT REFERENCES %[1]s.technologies ON DELETE CASCADE,
	PRIMARY KEY (job_id, tech_name)
);
CREATE TABLE IF NOT EXISTS %[1]s.users_tech (
	username VARCHAR(25) REFERENCES %[1]s.users ON DELETE CASCADE,
	tech_name TEXT REFERENCES %[1]s.technologies ON DELETE CASCADE,
	PRIMARY KEY (username, tech_name)
);
CREATE TABLE IF NOT EXISTS %[1]s.applications (
	username VARCHAR(25) REFERENCES %[1]s.users ON DELETE CASCADE,
	job_id INTEGER REFERENCES %[1]s.jobs ON DELETE CASCADE,
	app_state TEXT NOT NULL,
	PRIMARY KEY (username, job_id)
);
`, db.Schema)

	_, err := db.Exec(ddl)
	return err
}
