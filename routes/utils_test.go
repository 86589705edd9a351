package routes_test

import (
	"testing"

	"github.com/gorilla/mux"
	"github.com/joeshaw/envdecode"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/relabs-tech/jobly/client"
	"github.com/relabs-tech/jobly/core/access"
	"github.com/relabs-tech/jobly/core/csql"
	"github.com/relabs-tech/jobly/core/pointers"
	"github.com/relabs-tech/jobly/routes"
)

const testJWTSecret = "test-secret"

// TestService is a routes test fixture: the full api on a disposable
// database schema, accessed through the in-process client
type TestService struct {
	Postgres string `env:"POSTGRES,required" description:"the connection string for the Postgres DB"`
	Db       *csql.DB
	Api      *routes.API
	Client   client.Client
}

// CreateTestService creates a new service that can be used for testing.
func CreateTestService(t *testing.T) *TestService {
	s := TestService{}
	if err := envdecode.Decode(&s); err != nil {
		panic(err)
	}

	s.Db = csql.OpenWithSchema(s.Postgres, "jobly_routes_test")
	s.Db.ClearSchema()

	router := mux.NewRouter()
	s.Api = routes.MustNew(&routes.Builder{
		DB:         s.Db,
		Router:     router,
		JWTSecret:  testJWTSecret,
		BcryptCost: bcrypt.MinCost,
	})
	s.Client = client.NewWithRouter(router)
	t.Cleanup(func() { s.Db.Close() })
	return &s
}

// AsAdmin returns a client with admin authorization injected into the
// request context
func (s *TestService) AsAdmin() client.Client {
	return s.Client.WithAdminAuthorization("admin")
}

// AsUser returns a client authorized as the given regular user
func (s *TestService) AsUser(username string) client.Client {
	return s.Client.WithAuthorization(&access.Authorization{Username: username})
}

type companyBody struct {
	Handle       string  `json:"handle"`
	Name         string  `json:"name"`
	NumEmployees *int    `json:"numEmployees,omitempty"`
	Description  string  `json:"description,omitempty"`
	LogoURL      *string `json:"logoUrl,omitempty"`
}

type jobBody struct {
	Title         string   `json:"title"`
	Salary        *int     `json:"salary,omitempty"`
	Equity        *float64 `json:"equity,omitempty"`
	CompanyHandle string   `json:"companyHandle"`
	Technology    []string `json:"technology,omitempty"`
}

// seedCompanies creates the companies c1, c2 and c3 through the api
func seedCompanies(t *testing.T, s *TestService) {
	admin := s.AsAdmin()
	for i, handle := range []string{"c1", "c2", "c3"} {
		status, err := admin.Post("/companies", companyBody{
			Handle:       handle,
			Name:         "C" + handle[1:],
			NumEmployees: pointers.IntPtr(i + 1),
		}, nil)
		require.NoError(t, err)
		require.Equal(t, 201, status)
	}
}

// seedJobs creates the jobs j1..j4 through the api and returns their ids
// by title
func seedJobs(t *testing.T, s *TestService) map[string]int64 {
	admin := s.AsAdmin()
	ids := map[string]int64{}
	for _, j := range []jobBody{
		{Title: "j1", Salary: pointers.IntPtr(20000), Equity: pointers.Float64Ptr(0), CompanyHandle: "c1"},
		{Title: "j2", Salary: pointers.IntPtr(40000), Equity: pointers.Float64Ptr(0.8), CompanyHandle: "c1"},
		{Title: "j3", Salary: pointers.IntPtr(60000), Equity: pointers.Float64Ptr(0), CompanyHandle: "c2"},
		{Title: "j4", Salary: pointers.IntPtr(80000), Equity: pointers.Float64Ptr(0.4), CompanyHandle: "c3"},
	} {
		var result struct {
			Job struct {
				ID int64 `json:"id"`
			} `json:"job"`
		}
		status, err := admin.Post("/jobs", j, &result)
		require.NoError(t, err)
		require.Equal(t, 201, status)
		ids[j.Title] = result.Job.ID
	}
	return ids
}

// seedUser registers a regular user through the public endpoint
func seedUser(t *testing.T, s *TestService, username, password string) {
	status, err := s.Client.Post("/auth/register", map[string]interface{}{
		"username":  username,
		"password":  password,
		"firstName": "Test",
		"lastName":  "Tester",
		"email":     username + "@test.com",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, 201, status)
}

// seedTechnologies creates the given technologies through the api
func seedTechnologies(t *testing.T, s *TestService, names ...string) {
	admin := s.AsAdmin()
	for _, name := range names {
		status, err := admin.Post("/technologies", map[string]interface{}{"name": name}, nil)
		require.NoError(t, err)
		require.Equal(t, 201, status)
	}
}
