package models_test

import (
	"context"
	"testing"

	"github.com/joeshaw/envdecode"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/relabs-tech/jobly/core/csql"
	"github.com/relabs-tech/jobly/core/pointers"
	"github.com/relabs-tech/jobly/models"
)

// TestService is a models test fixture with a disposable database schema
//
// use POSTGRES="host=localhost port=5432 user=postgres password=docker dbname=postgres sslmode=disable"
type TestService struct {
	Postgres string `env:"POSTGRES,required" description:"the connection string for the Postgres DB"`
	Db       *csql.DB
	Models   *models.Models
}

// CreateTestService creates a new service that can be used for testing.
// It is expected to close the Db from the returned object when the object
// is no longer used.
func CreateTestService(t *testing.T) *TestService {
	s := TestService{}
	if err := envdecode.Decode(&s); err != nil {
		panic(err)
	}

	s.Db = csql.OpenWithSchema(s.Postgres, "jobly_models_test")
	s.Db.ClearSchema()
	s.Models = models.MustNew(&models.Builder{DB: s.Db, BcryptCost: bcrypt.MinCost})
	t.Cleanup(func() { s.Db.Close() })
	return &s
}

// seedCompanies inserts the companies c1, c2 and c3
func seedCompanies(t *testing.T, s *TestService) {
	ctx := context.Background()
	for i, handle := range []string{"c1", "c2", "c3"} {
		_, err := s.Models.Companies.Create(ctx, models.NewCompany{
			Handle:       handle,
			Name:         "C" + handle[1:],
			NumEmployees: pointers.IntPtr(i + 1),
			Description:  "Desc" + handle[1:],
			LogoURL:      pointers.StringPtr("http://" + handle + ".img"),
		})
		require.NoError(t, err)
	}
}

// seedJobs inserts the jobs j1..j4 and returns their ids by title
func seedJobs(t *testing.T, s *TestService) map[string]int64 {
	ctx := context.Background()
	ids := map[string]int64{}
	for _, j := range []models.NewJob{
		{Title: "j1", Salary: pointers.IntPtr(20000), Equity: pointers.Float64Ptr(0), CompanyHandle: "c1"},
		{Title: "j2", Salary: pointers.IntPtr(40000), Equity: pointers.Float64Ptr(0.8), CompanyHandle: "c1"},
		{Title: "j3", Salary: pointers.IntPtr(60000), Equity: pointers.Float64Ptr(0), CompanyHandle: "c2"},
		{Title: "j4", Salary: pointers.IntPtr(80000), Equity: pointers.Float64Ptr(0.4), CompanyHandle: "c3"},
	} {
		job, err := s.Models.Jobs.Create(ctx, j)
		require.NoError(t, err)
		ids[j.Title] = job.ID
	}
	return ids
}

// seedUsers registers the users u1 and u2
func seedUsers(t *testing.T, s *TestService) {
	ctx := context.Background()
	for _, u := range []models.NewUser{
		{Username: "u1", Password: "password1", FirstName: "U1F", LastName: "U1L", Email: "u1@email.com"},
		{Username: "u2", Password: "password2", FirstName: "U2F", LastName: "U2L", Email: "u2@email.com"},
	} {
		_, err := s.Models.Users.Register(ctx, u)
		require.NoError(t, err)
	}
}

// seedTechnologies inserts the given technology names
func seedTechnologies(t *testing.T, s *TestService, names ...string) {
	ctx := context.Background()
	for _, name := range names {
		_, err := s.Models.Technologies.Create(ctx, models.Technology{Name: name})
		require.NoError(t, err)
	}
}
