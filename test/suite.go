package test

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/relabs-tech/jobly/client"
	"github.com/relabs-tech/jobly/core/csql"
	"github.com/relabs-tech/jobly/routes"
)

// IntegrationTestSuite runs the full api against a disposable Postgres
// container. It exercises the real route surface end to end, token
// middleware included.
type IntegrationTestSuite struct {
	suite.Suite
	srv *http.Server

	Api    *routes.API
	Client client.Client

	dbConn            *csql.DB
	router            *mux.Router
	postgresContainer testcontainers.Container
	postgresAddr      string
	postgresUser      string
	postgresPassword  string
	postgresDB        string
}

const jwtSecret = "integration-test-secret"

func (s *IntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	postgresUser := "testuser"
	postgresPassword := "testpass"
	postgresDB := "testdb"

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:15",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     postgresUser,
			"POSTGRES_PASSWORD": postgresPassword,
			"POSTGRES_DB":       postgresDB,
		},
		WaitingFor: wait.ForListeningPort("5432/tcp"),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	s.Require().NoError(err)
	s.postgresContainer = pgC

	pgHost, err := pgC.Host(ctx)
	s.Require().NoError(err)
	pgPort, err := pgC.MappedPort(ctx, "5432")
	s.Require().NoError(err)
	s.postgresAddr = fmt.Sprintf("%s:%s", pgHost, pgPort.Port())
	s.postgresUser = postgresUser
	s.postgresPassword = postgresPassword
	s.postgresDB = postgresDB

	s.router = mux.NewRouter()
	s.dbConn = csql.OpenWithSchema(fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		pgHost, pgPort.Port(), postgresUser, postgresPassword, postgresDB), "jobly")

	s.Api = routes.MustNew(&routes.Builder{
		DB:        s.dbConn,
		Router:    s.router,
		JWTSecret: jwtSecret,
	})
	s.Client = client.NewWithRouter(s.router)

	s.srv = &http.Server{
		Addr:    ":8080",
		Handler: s.router,
	}
	go func() {
		err := s.srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			s.T().Errorf("Failed to start HTTP server: %v", err)
		}
	}()
}

func (s *IntegrationTestSuite) TearDownSuite() {
	ctx := context.Background()
	if s.srv != nil {
		err := s.srv.Shutdown(ctx)
		s.Require().NoError(err)
	}

	if s.dbConn != nil {
		s.dbConn.Close()
	}

	if s.postgresContainer != nil {
		err := s.postgresContainer.Terminate(ctx)
		s.Require().NoError(err)
	}
}
