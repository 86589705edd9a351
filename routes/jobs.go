package routes

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/relabs-tech/jobly/core/access"
	"github.com/relabs-tech/jobly/core/errs"
	"github.com/relabs-tech/jobly/core/logger"
	"github.com/relabs-tech/jobly/models"
)

func (a *API) handleJobRoutes(router *mux.Router) {
	rlog := logger.Default()
	rlog.Debugln("  handle route: /jobs GET POST")
	rlog.Debugln("  handle route: /jobs/{id} GET PATCH DELETE")

	router.HandleFunc("/jobs", a.jobCreateHandler).Methods(http.MethodPost)
	router.HandleFunc("/jobs", a.jobListHandler).Methods(http.MethodGet)
	router.HandleFunc("/jobs/{id}", a.jobGetHandler).Methods(http.MethodGet)
	router.HandleFunc("/jobs/{id}", a.jobUpdateHandler).Methods(http.MethodPatch)
	router.HandleFunc("/jobs/{id}", a.jobDeleteHandler).Methods(http.MethodDelete)
}

func jobID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.New(errs.KindInvalidInput, "job id must be a positive integer")
	}
	return id, nil
}

// jobCreateHandler creates a job, optionally with technology associations.
// Authorization required: admin.
func (a *API) jobCreateHandler(w http.ResponseWriter, r *http.Request) {
	if err := access.EnsureAdmin(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	var newJob models.NewJob
	if err := a.readBody(r, "jobNew", &newJob); err != nil {
		writeError(w, r, err)
		return
	}

	job, err := a.models.Jobs.Create(r.Context(), newJob)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"job": job})
}

// jobListHandler returns all jobs, optionally filtered by title, minimum
// salary, equity and technology names (parameter may repeat).
// Authorization required: none.
func (a *API) jobListHandler(w http.ResponseWriter, r *http.Request) {
	if err := checkQueryKeys(r, "title", "minSalary", "hasEquity", "technology"); err != nil {
		writeError(w, r, err)
		return
	}

	filter := models.JobFilter{
		Title:      queryString(r, "title"),
		Technology: r.URL.Query()["technology"],
	}
	var err error
	if filter.MinSalary, err = queryInt(r, "minSalary"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.HasEquity, err = queryBool(r, "hasEquity"); err != nil {
		writeError(w, r, err)
		return
	}

	jobs, err := a.models.Jobs.FindAll(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs})
}

// jobGetHandler returns one job including its technology names.
// Authorization required: none.
func (a *API) jobGetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := jobID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	job, err := a.models.Jobs.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"job": job})
}

// jobUpdateHandler partially updates a job; a technology key replaces the
// job's technology associations. Authorization required: admin.
func (a *API) jobUpdateHandler(w http.ResponseWriter, r *http.Request) {
	if err := access.EnsureAdmin(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	id, err := jobID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data := map[string]interface{}{}
	if err := a.readBody(r, "jobUpdate", &data); err != nil {
		writeError(w, r, err)
		return
	}

	job, err := a.models.Jobs.Update(r.Context(), id, data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"job": job})
}

// jobDeleteHandler deletes a job. Authorization required: admin.
func (a *API) jobDeleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := access.EnsureAdmin(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	id, err := jobID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := a.models.Jobs.Remove(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": id})
}
