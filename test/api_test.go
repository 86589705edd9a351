package test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/relabs-tech/jobly/models"
)

type ApiTestSuite struct {
	IntegrationTestSuite
}

func TestApiTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, &ApiTestSuite{})
}

// TestJoblyLifecycle walks the full happy path: an admin sets up companies,
// technologies and jobs, a user registers, searches and applies.
func (s *ApiTestSuite) TestJoblyLifecycle() {
	admin := s.Client.WithAdminAuthorization("admin")

	// admin creates a company
	var companyResult struct {
		Company models.Company `json:"company"`
	}
	status, err := admin.Post("/companies", map[string]interface{}{
		"handle":       "acme",
		"name":         "Acme Corp",
		"numEmployees": 250,
		"description":  "makers of everything",
	}, &companyResult)
	s.Require().NoError(err)
	s.Require().Equal(http.StatusCreated, status)
	s.Equal("acme", companyResult.Company.Handle)

	// and the technologies the jobs will reference
	for _, name := range []string{"go", "postgres"} {
		status, err = admin.Post("/technologies", map[string]interface{}{"name": name}, nil)
		s.Require().NoError(err)
		s.Require().Equal(http.StatusCreated, status)
	}

	var jobResult struct {
		Job models.Job `json:"job"`
	}
	status, err = admin.Post("/jobs", map[string]interface{}{
		"title":         "backend engineer",
		"salary":        120000,
		"equity":        0.05,
		"companyHandle": "acme",
		"technology":    []string{"go", "postgres"},
	}, &jobResult)
	s.Require().NoError(err)
	s.Require().Equal(http.StatusCreated, status)
	s.Equal([]string{"go", "postgres"}, jobResult.Job.Technology)
	jobID := jobResult.Job.ID

	// a user registers and receives a token
	var registered struct {
		Token string `json:"token"`
	}
	status, err = s.Client.Post("/auth/register", map[string]interface{}{
		"username":  "aliya",
		"password":  "correcthorse",
		"firstName": "Aliya",
		"lastName":  "Tester",
		"email":     "aliya@example.com",
	}, &registered)
	s.Require().NoError(err)
	s.Require().Equal(http.StatusCreated, status)
	s.Require().NotEmpty(registered.Token)
	user := s.Client.WithToken(registered.Token)

	// the public job search finds the new job
	var jobsResult struct {
		Jobs []models.Job `json:"jobs"`
	}
	status, err = s.Client.Get("/jobs?minSalary=100000&hasEquity=true&technology=go", &jobsResult)
	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, status)
	s.Require().Len(jobsResult.Jobs, 1)
	s.Equal("backend engineer", jobsResult.Jobs[0].Title)

	// the user applies with their token
	var applyResult struct {
		Applied int64 `json:"applied"`
	}
	status, err = user.Post(fmt.Sprintf("/users/aliya/jobs/%d", jobID),
		map[string]interface{}{"state": "applied"}, &applyResult)
	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, status)
	s.Equal(jobID, applyResult.Applied)

	// a second application for the same job is rejected
	status, err = user.Post(fmt.Sprintf("/users/aliya/jobs/%d", jobID),
		map[string]interface{}{"state": "interested"}, nil)
	s.Require().NoError(err)
	s.Equal(http.StatusBadRequest, status)

	// the application shows up on the user record
	var userResult struct {
		User models.User `json:"user"`
	}
	status, err = user.Get("/users/aliya", &userResult)
	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, status)
	s.Require().Len(userResult.User.Jobs, 1)
	s.Equal(jobID, userResult.User.Jobs[0].JobID)
	s.Equal("applied", userResult.User.Jobs[0].AppState)

	// the company view includes the job
	status, err = s.Client.Get("/companies/acme", &companyResult)
	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, status)
	s.Require().Len(companyResult.Company.Jobs, 1)

	// deleting the company cascades to the job
	status, err = admin.Delete("/companies/acme")
	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, status)

	status, err = s.Client.Get(fmt.Sprintf("/jobs/%d", jobID), nil)
	s.Require().NoError(err)
	s.Equal(http.StatusNotFound, status)
}

// TestAuthorizationBoundaries verifies that write access stays behind the
// admin role and user records behind self-or-admin.
func (s *ApiTestSuite) TestAuthorizationBoundaries() {
	admin := s.Client.WithAdminAuthorization("admin")

	status, err := admin.Post("/companies", map[string]interface{}{
		"handle": "guarded",
		"name":   "Guarded Inc",
	}, nil)
	s.Require().NoError(err)
	s.Require().Equal(http.StatusCreated, status)

	// two users register
	tokens := map[string]string{}
	for _, username := range []string{"bob", "eve"} {
		var registered struct {
			Token string `json:"token"`
		}
		status, err = s.Client.Post("/auth/register", map[string]interface{}{
			"username":  username,
			"password":  "password-" + username,
			"firstName": "First",
			"lastName":  "Last",
			"email":     username + "@example.com",
		}, &registered)
		s.Require().NoError(err)
		s.Require().Equal(http.StatusCreated, status)
		tokens[username] = registered.Token
	}
	bob := s.Client.WithToken(tokens["bob"])
	eve := s.Client.WithToken(tokens["eve"])

	// anonymous and regular users cannot write companies
	status, err = s.Client.Patch("/companies/guarded", map[string]interface{}{"name": "x"}, nil)
	s.Require().NoError(err)
	s.Equal(http.StatusUnauthorized, status)

	status, err = bob.Patch("/companies/guarded", map[string]interface{}{"name": "x"}, nil)
	s.Require().NoError(err)
	s.Equal(http.StatusUnauthorized, status)

	// eve cannot read or change bob
	status, err = eve.Get("/users/bob", nil)
	s.Require().NoError(err)
	s.Equal(http.StatusUnauthorized, status)

	status, err = eve.Patch("/users/bob", map[string]interface{}{"firstName": "Evil"}, nil)
	s.Require().NoError(err)
	s.Equal(http.StatusUnauthorized, status)

	// bob can change himself, but cannot make himself an admin
	status, err = bob.Patch("/users/bob", map[string]interface{}{"firstName": "Robert"}, nil)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, status)

	status, err = bob.Patch("/users/bob", map[string]interface{}{"isAdmin": true}, nil)
	s.Require().NoError(err)
	s.Equal(http.StatusBadRequest, status)

	// a tampered token is rejected outright
	status, err = s.Client.WithToken(tokens["bob"]+"x").Get("/users/bob", nil)
	s.Require().NoError(err)
	s.Equal(http.StatusUnauthorized, status)
}
