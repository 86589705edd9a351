package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/relabs-tech/jobly/core/access"
	"github.com/relabs-tech/jobly/core/logger"
	"github.com/relabs-tech/jobly/models"
)

func (a *API) handleTechnologyRoutes(router *mux.Router) {
	rlog := logger.Default()
	rlog.Debugln("  handle route: /technologies GET POST")
	rlog.Debugln("  handle route: /technologies/{name} GET PATCH DELETE")

	router.HandleFunc("/technologies", a.technologyCreateHandler).Methods(http.MethodPost)
	router.HandleFunc("/technologies", a.technologyListHandler).Methods(http.MethodGet)
	router.HandleFunc("/technologies/{name}", a.technologyGetHandler).Methods(http.MethodGet)
	router.HandleFunc("/technologies/{name}", a.technologyUpdateHandler).Methods(http.MethodPatch)
	router.HandleFunc("/technologies/{name}", a.technologyDeleteHandler).Methods(http.MethodDelete)
}

// technologyCreateHandler creates a technology. Authorization required: admin.
func (a *API) technologyCreateHandler(w http.ResponseWriter, r *http.Request) {
	if err := access.EnsureAdmin(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	var newTech models.Technology
	if err := a.readBody(r, "techNew", &newTech); err != nil {
		writeError(w, r, err)
		return
	}

	tech, err := a.models.Technologies.Create(r.Context(), newTech)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"technology": tech})
}

// technologyListHandler returns all technologies, optionally filtered by a
// case-insensitive partial name match. Authorization required: none.
func (a *API) technologyListHandler(w http.ResponseWriter, r *http.Request) {
	if err := checkQueryKeys(r, "name"); err != nil {
		writeError(w, r, err)
		return
	}

	technologies, err := a.models.Technologies.FindAll(r.Context(),
		models.TechnologyFilter{Name: queryString(r, "name")})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"technologies": technologies})
}

// technologyGetHandler returns one technology. Authorization required: none.
func (a *API) technologyGetHandler(w http.ResponseWriter, r *http.Request) {
	tech, err := a.models.Technologies.Get(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"technology": tech})
}

// technologyUpdateHandler renames a technology. Authorization required: admin.
func (a *API) technologyUpdateHandler(w http.ResponseWriter, r *http.Request) {
	if err := access.EnsureAdmin(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	data := map[string]interface{}{}
	if err := a.readBody(r, "techUpdate", &data); err != nil {
		writeError(w, r, err)
		return
	}

	tech, err := a.models.Technologies.Update(r.Context(), mux.Vars(r)["name"], data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"technology": tech})
}

// technologyDeleteHandler deletes a technology. Authorization required: admin.
func (a *API) technologyDeleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := access.EnsureAdmin(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	name := mux.Vars(r)["name"]
	if err := a.models.Technologies.Remove(r.Context(), name); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": name})
}
