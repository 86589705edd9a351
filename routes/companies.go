package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/relabs-tech/jobly/core/access"
	"github.com/relabs-tech/jobly/core/logger"
	"github.com/relabs-tech/jobly/models"
)

func (a *API) handleCompanyRoutes(router *mux.Router) {
	rlog := logger.Default()
	rlog.Debugln("  handle route: /companies GET POST")
	rlog.Debugln("  handle route: /companies/{handle} GET PATCH DELETE")

	router.HandleFunc("/companies", a.companyCreateHandler).Methods(http.MethodPost)
	router.HandleFunc("/companies", a.companyListHandler).Methods(http.MethodGet)
	router.HandleFunc("/companies/{handle}", a.companyGetHandler).Methods(http.MethodGet)
	router.HandleFunc("/companies/{handle}", a.companyUpdateHandler).Methods(http.MethodPatch)
	router.HandleFunc("/companies/{handle}", a.companyDeleteHandler).Methods(http.MethodDelete)
}

// companyCreateHandler creates a company. Authorization required: admin.
func (a *API) companyCreateHandler(w http.ResponseWriter, r *http.Request) {
	if err := access.EnsureAdmin(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	var newCompany models.NewCompany
	if err := a.readBody(r, "companyNew", &newCompany); err != nil {
		writeError(w, r, err)
		return
	}

	company, err := a.models.Companies.Create(r.Context(), newCompany)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"company": company})
}

// companyListHandler returns all companies, optionally filtered by name
// (case-insensitive partial match) and employee count range.
// Authorization required: none.
func (a *API) companyListHandler(w http.ResponseWriter, r *http.Request) {
	if err := checkQueryKeys(r, "name", "minEmployees", "maxEmployees"); err != nil {
		writeError(w, r, err)
		return
	}

	filter := models.CompanyFilter{Name: queryString(r, "name")}
	var err error
	if filter.MinEmployees, err = queryInt(r, "minEmployees"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.MaxEmployees, err = queryInt(r, "maxEmployees"); err != nil {
		writeError(w, r, err)
		return
	}

	companies, err := a.models.Companies.FindAll(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"companies": companies})
}

// companyGetHandler returns one company including its jobs.
// Authorization required: none.
func (a *API) companyGetHandler(w http.ResponseWriter, r *http.Request) {
	company, err := a.models.Companies.Get(r.Context(), mux.Vars(r)["handle"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"company": company})
}

// companyUpdateHandler partially updates a company. Authorization
// required: admin.
func (a *API) companyUpdateHandler(w http.ResponseWriter, r *http.Request) {
	if err := access.EnsureAdmin(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	data := map[string]interface{}{}
	if err := a.readBody(r, "companyUpdate", &data); err != nil {
		writeError(w, r, err)
		return
	}

	company, err := a.models.Companies.Update(r.Context(), mux.Vars(r)["handle"], data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"company": company})
}

// companyDeleteHandler deletes a company and, through the store cascade,
// its jobs. Authorization required: admin.
func (a *API) companyDeleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := access.EnsureAdmin(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	handle := mux.Vars(r)["handle"]
	if err := a.models.Companies.Remove(r.Context(), handle); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": handle})
}
