package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/relabs-tech/jobly/core/access"
	"github.com/relabs-tech/jobly/core/logger"
	"github.com/relabs-tech/jobly/models"
)

func (a *API) handleAuthRoutes(router *mux.Router) {
	rlog := logger.Default()
	rlog.Debugln("  handle route: /auth/token POST")
	rlog.Debugln("  handle route: /auth/register POST")

	router.HandleFunc("/auth/token", a.authTokenHandler).Methods(http.MethodPost)
	router.HandleFunc("/auth/register", a.authRegisterHandler).Methods(http.MethodPost)
}

// authTokenHandler returns a signed token for valid username/password
// credentials. Authorization required: none.
func (a *API) authTokenHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := a.readBody(r, "userAuth", &credentials); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := a.models.Users.Authenticate(r.Context(), credentials.Username, credentials.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := access.NewToken(&access.Authorization{Username: user.Username, IsAdmin: user.IsAdmin}, a.jwtSecret)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"token": token})
}

// authRegisterHandler registers a new non-admin user and returns a signed
// token. Authorization required: none.
func (a *API) authRegisterHandler(w http.ResponseWriter, r *http.Request) {
	var newUser models.NewUser
	if err := a.readBody(r, "userRegister", &newUser); err != nil {
		writeError(w, r, err)
		return
	}
	newUser.IsAdmin = false // self-registration never grants admin

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
	writeJSON(w, http.StatusCreated, map[string]interface{}{"token": token})
}
