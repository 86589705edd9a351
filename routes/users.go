package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/relabs-tech/jobly/core/access"
	"github.com/relabs-tech/jobly/core/logger"
	"github.com/relabs-tech/jobly/models"
)

func (a *API) handleUserRoutes(router *mux.Router) {
	rlog := logger.Default()
	rlog.Debugln("  handle route: /users GET POST")
	rlog.Debugln("  handle route: /users/{username} GET PATCH DELETE")
	rlog.Debugln("  handle route: /users/{username}/jobs/{id} POST")

	router.HandleFunc("/users", a.userCreateHandler).Methods(http.MethodPost)
	router.HandleFunc("/users", a.userListHandler).Methods(http.MethodGet)
	router.HandleFunc("/users/{username}", a.userGetHandler).Methods(http.MethodGet)
	router.HandleFunc("/users/{username}", a.userUpdateHandler).Methods(http.MethodPatch)
	router.HandleFunc("/users/{username}", a.userDeleteHandler).Methods(http.MethodDelete)
	router.HandleFunc("/users/{username}/jobs/{id}", a.userApplyHandler).Methods(http.MethodPost)
}

// userCreateHandler creates a user, possibly an admin. This is not the
// self-registration endpoint, see /auth/register. Authorization
// required: admin.
func (a *API) userCreateHandler(w http.ResponseWriter, r *http.Request) {
	if err := access.EnsureAdmin(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	var newUser models.NewUser
	if err := a.readBody(r, "userNew", &newUser); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := a.models.Users.Register(r.Context(), newUser)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := access.NewToken(&access.Authorization{Username: user.Username, IsAdmin: user.IsAdmin}, a.jwtSecret)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"user": user, "token": token})
}

// userListHandler returns all users. Authorization required: admin.
func (a *API) userListHandler(w http.ResponseWriter, r *http.Request) {
	if err := access.EnsureAdmin(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	users, err := a.models.Users.FindAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// userGetHandler returns one user including applications and technology.
// Authorization required: same user or admin.
func (a *API) userGetHandler(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if err := access.EnsureSelfOrAdmin(r.Context(), username); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := a.models.Users.Get(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// userUpdateHandler partially updates a user. The schema does not admit
// isAdmin, privileges can only be granted through the admin-only create.
// Authorization required: same user or admin.
func (a *API) userUpdateHandler(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if err := access.EnsureSelfOrAdmin(r.Context(), username); err != nil {
		writeError(w, r, err)
		return
	}

	data := map[string]interface{}{}
	if err := a.readBody(r, "userUpdate", &data); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := a.models.Users.Update(r.Context(), username, data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// userDeleteHandler deletes a user. Authorization required: same user or admin.
func (a *API) userDeleteHandler(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if err := access.EnsureSelfOrAdmin(r.Context(), username); err != nil {
		writeError(w, r, err)
		return
	}

	if err := a.models.Users.Remove(r.Context(), username); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": username})
}

// userApplyHandler records a job application for the user. Authorization
// required: same user or admin.
func (a *API) userApplyHandler(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if err := access.EnsureSelfOrAdmin(r.Context(), username); err != nil {
		writeError(w, r, err)
		return
	}

	id, err := jobID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var application struct {
		State string `json:"state"`
	}
	if err := a.readBody(r, "userApply", &application); err != nil {
		writeError(w, r, err)
		return
	}

	appliedID, err := a.models.Users.ApplyForJob(r.Context(), username, id, application.State)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"applied": appliedID})
}
