package routes_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/jobly/core/pointers"
	"github.com/relabs-tech/jobly/models"
)

func TestJobRoutesCreate(t *testing.T) {
	s := CreateTestService(t)
	seedCompanies(t, s)
	seedTechnologies(t, s, "go", "postgres")

	var result struct {
		Job models.Job `json:"job"`
	}
	status, err := s.AsAdmin().Post("/jobs", jobBody{
		Title:         "engineer",
		Salary:        pointers.IntPtr(100000),
		Equity:        pointers.Float64Ptr(0.1),
		CompanyHandle: "c1",
		Technology:    []string{"go", "postgres"},
	}, &result)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, status)
	assert.NotZero(t, result.Job.ID)
	assert.Equal(t, "engineer", result.Job.Title)
	assert.Equal(t, []string{"go", "postgres"}, result.Job.Technology)

	status, err = s.Client.Post("/jobs", jobBody{Title: "x", CompanyHandle: "c1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, err = s.AsAdmin().Post("/jobs", jobBody{Title: "x", CompanyHandle: "nope"}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)

	status, err = s.AsAdmin().Post("/jobs", jobBody{
		Title:         "x",
		Equity:        pointers.Float64Ptr(1.5),
		CompanyHandle: "c1",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestJobRoutesList(t *testing.T) {
	s := CreateTestService(t)
	seedCompanies(t, s)
	seedJobs(t, s)

	var result struct {
		Jobs []models.Job `json:"jobs"`
	}

	status, err := s.Client.Get("/jobs", &result)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, result.Jobs, 4)
	assert.Equal(t, "j1", result.Jobs[0].Title)

	status, err = s.Client.Get("/jobs?minSalary=50000&hasEquity=true", &result)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, result.Jobs, 1)
	assert.Equal(t, "j4", result.Jobs[0].Title)

	status, err = s.Client.Get("/jobs?title=2", &result)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, result.Jobs, 1)
	assert.Equal(t, "j2", result.Jobs[0].Title)

	status, err = s.Client.Get("/jobs?salary=1", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, status)

	status, err = s.Client.Get("/jobs?hasEquity=maybe", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestJobRoutesListByTechnology(t *testing.T) {
	s := CreateTestService(t)
	seedCompanies(t, s)
	ids := seedJobs(t, s)
	seedTechnologies(t, s, "go", "postgres")

	status, err := s.AsAdmin().Patch(fmt.Sprintf("/jobs/%d", ids["j1"]),
		map[string]interface{}{"technology": []string{"go"}}, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	var result struct {
		Jobs []models.Job `json:"jobs"`
	}
	status, err = s.Client.Get("/jobs?technology=go&technology=postgres", &result)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, result.Jobs, 1)
	assert.Equal(t, "j1", result.Jobs[0].Title)
}

func TestJobRoutesGet(t *testing.T) {
	s := CreateTestService(t)
	seedCompanies(t, s)
	ids := seedJobs(t, s)

	var result struct {
		Job models.Job `json:"job"`
	}
	status, err := s.Client.Get(fmt.Sprintf("/jobs/%d", ids["j2"]), &result)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "j2", result.Job.Title)
	assert.Equal(t, 0.8, pointers.SafeFloat64(result.Job.Equity))

	status, err = s.Client.Get("/jobs/99999", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)

	// a non-numeric id is invalid input, not a missing resource
	status, err = s.Client.Get("/jobs/abc", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestJobRoutesUpdate(t *testing.T) {
	s := CreateTestService(t)
	seedCompanies(t, s)
	ids := seedJobs(t, s)
	path := fmt.Sprintf("/jobs/%d", ids["j1"])

	var result struct {
		Job models.Job `json:"job"`
	}
	status, err := s.AsAdmin().Patch(path,
		map[string]interface{}{"salary": 25000}, &result)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 25000, pointers.SafeInt(result.Job.Salary))
	assert.Equal(t, "j1", result.Job.Title)

	status, err = s.AsAdmin().Patch(path,
		map[string]interface{}{"equity": 2.0}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, status)

	status, err = s.AsAdmin().Patch(path,
		map[string]interface{}{"companyHandle": "c2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, status)

	status, err = s.AsUser("u1").Patch(path,
		map[string]interface{}{"salary": 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestJobRoutesDelete(t *testing.T) {
	s := CreateTestService(t)
	seedCompanies(t, s)
	ids := seedJobs(t, s)
	path := fmt.Sprintf("/jobs/%d", ids["j1"])

	status, err := s.Client.Delete(path)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, err = s.AsAdmin().Delete(path)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	status, err = s.AsAdmin().Delete(path)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)
}
