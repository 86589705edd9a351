package main

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joeshaw/envdecode"
	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/jobly/core/csql"
	"github.com/relabs-tech/jobly/core/logger"
	"github.com/relabs-tech/jobly/routes"
)

// Service holds the configuration for this service
//
// use POSTGRES="host=localhost port=5432 user=postgres password=docker dbname=postgres sslmode=disable"
type Service struct {
	Postgres   string `env:"POSTGRES,required" description:"the connection string for the Postgres DB"`
	Schema     string `env:"POSTGRES_SCHEMA,default=jobly" description:"the database schema for the jobly tables"`
	Port       string `env:"PORT,default=3000" description:"the port to listen on"`
	JWTSecret  string `env:"JWT_SECRET,required" description:"the secret for signing bearer tokens"`
	BcryptCost int    `env:"BCRYPT_COST,default=12" description:"the bcrypt work factor for password hashing"`
	LogLevel   string `env:"LOG_LEVEL,default=info" description:"the log level"`
}

func main() {
	service := &Service{}
	if err := envdecode.Decode(service); err != nil {
		panic(err)
	}

	logLevel, err := logrus.ParseLevel(service.LogLevel)
	if err != nil {
		panic(err)
	}
	logger.InitLogger(logLevel)
	rlog := logger.Default()

	db := csql.OpenWithSchema(service.Postgres, service.Schema)
	defer db.Close()

	router := mux.NewRouter()
	routes.MustNew(&routes.Builder{
		DB:         db,
		Router:     router,
		JWTSecret:  service.JWTSecret,
		BcryptCost: service.BcryptCost,
	})

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"POST", "GET", "OPTIONS", "PUT", "DELETE", "PATCH"}),
		handlers.AllowedHeaders([]string{"Accept", "Content-Type", "Content-Length",
			"Accept-Encoding", "Authorization"}),
	)

	rlog.Infoln("listen on port :" + service.Port)
	err = http.ListenAndServe(":"+service.Port, handlers.RecoveryHandler()(cors(router)))
	if err != nil {
		rlog.WithError(err).Fatalln("server stopped")
	}
}
