// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*Package routes provides the HTTP layer of jobly.

Handlers validate request bodies against the embedded JSON schemas, enforce
authorization, call the entity data-access modules and translate domain
errors into HTTP status codes with a JSON error body.
*/
package routes

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/relabs-tech/jobly/core/access"
	"github.com/relabs-tech/jobly/core/csql"
	"github.com/relabs-tech/jobly/core/logger"
	"github.com/relabs-tech/jobly/core/schema"
	"github.com/relabs-tech/jobly/models"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// API is the jobly REST api
type API struct {
	db        *csql.DB
	models    *models.Models
	validator *schema.Validator
	router    *mux.Router
	jwtSecret string
}

// Builder is a builder helper for the API
type Builder struct {
	// DB is the jobly postgres database. This is mandatory.
	DB *csql.DB
	// Router is a mux router. This is mandatory.
	Router *mux.Router
	// JWTSecret signs and verifies the HS256 bearer tokens. This is mandatory.
	JWTSecret string
	// BcryptCost is the work factor for password hashing, zero selects the default.
	BcryptCost int
}

// New realizes the actual api. It creates the sql relations (if they do not
// exist) and adds the routes and middleware to the router.
func New(bb *Builder) (*API, error) {
	if bb.DB == nil {
		panic("DB is missing")
	}
	if bb.Router == nil {
		panic("Router is missing")
	}
	if len(bb.JWTSecret) == 0 {
		panic("JWTSecret is missing")
	}

	m, err := models.New(&models.Builder{DB: bb.DB, BcryptCost: bb.BcryptCost})
	if err != nil {
		return nil, err
	}

	schemas, err := fs.Sub(schemaFS, "schemas")
	if err != nil {
		return nil, err
	}
	validator, err := schema.NewValidatorFromFS(schemas)
	if err != nil {
		return nil, err
	}

	a := &API{
		db:        bb.DB,
		models:    m,
		validator: validator,
		router:    bb.Router,
		jwtSecret: bb.JWTSecret,
	}

	logger.AddRequestID(a.router)
	a.router.Use(access.NewJwtMiddleware(a.jwtSecret))
	a.handleRoutes(a.router)
	return a, nil
}

// MustNew is like New but panics on error
func MustNew(bb *Builder) *API {
	a, err := New(bb)
	if err != nil {
		panic(err)
	}
	return a
}

func (a *API) handleRoutes(router *mux.Router) {
	rlog := logger.Default()
	rlog.Debugln("api: handle routes")

	a.handleAuthRoutes(router)
	a.handleCompanyRoutes(router)
	a.handleJobRoutes(router)
	a.handleTechnologyRoutes(router)
	a.handleUserRoutes(router)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody("not found", http.StatusNotFound))
	})
}
