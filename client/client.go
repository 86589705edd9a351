// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*
Package client provides easy and fast in-process access to the jobly REST api

Instead of marshalling HTTP, the client talks directly to the mux router. It
is perfectly suited for unit tests.
*/
package client

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/goccy/go-json"

	"github.com/gorilla/mux"

	"github.com/relabs-tech/jobly/core/access"
)

// Client provides easy access to the REST API.
type Client struct {
	router *mux.Router
	auth   *access.Authorization
	token  string
	ctx    context.Context
}

// NewWithRouter creates a client to make pseudo-REST requests to the api,
// through the mux router.
//
// WithAuthorization() adds an authorization to the request context.
// WithToken() adds a bearer token to the request instead.
func NewWithRouter(router *mux.Router) Client {
	return Client{router: router}
}

// WithAuthorization returns a new client with specific authorization
// injected directly into the request context, bypassing token validation.
func (c Client) WithAuthorization(auth *access.Authorization) Client {
	c.auth = auth
	return c
}

// WithAdminAuthorization returns a new client with admin authorization
func (c Client) WithAdminAuthorization(username string) Client {
	return c.WithAuthorization(&access.Authorization{Username: username, IsAdmin: true})
}

// WithToken returns a new client that sends the token as Authorization
// header, exercising the JWT middleware.
func (c Client) WithToken(token string) Client {
	c.token = token
	return c
}

// WithContext returns a new client with specific request context
func (c Client) WithContext(ctx context.Context) Client {
	c.ctx = ctx
	return c
}

func (c Client) context() context.Context {
	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if c.auth != nil {
		ctx = c.auth.ContextWithAuthorization(ctx)
	}
	return ctx
}

func (c Client) do(method, path string, body interface{}, result interface{}) (int, error) {
	var reader *bytes.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(jsonData)
	} else {
		reader = bytes.NewReader(nil)
	}

	r, err := http.NewRequestWithContext(c.context(), method, path, reader)
	if err != nil {
		return 0, err
	}
	if len(c.token) > 0 {
		r.Header.Set("Authorization", "Bearer "+c.token)
	}
	r.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, r)

	res := rec.Result()
	defer res.Body.Close()

	if result != nil && res.StatusCode < 300 {
		if err := json.NewDecoder(res.Body).Decode(result); err != nil {
			return res.StatusCode, fmt.Errorf("cannot decode response for %s %s: %w", method, path, err)
		}
	}
	return res.StatusCode, nil
}

// Get reads the resource at path into result and returns the status code.
func (c Client) Get(path string, result interface{}) (int, error) {
	return c.do(http.MethodGet, path, nil, result)
}

// Post creates a resource at path and reads the response into result.
func (c Client) Post(path string, body interface{}, result interface{}) (int, error) {
	return c.do(http.MethodPost, path, body, result)
}

// Patch updates the resource at path and reads the response into result.
func (c Client) Patch(path string, body interface{}, result interface{}) (int, error) {
	return c.do(http.MethodPatch, path, body, result)
}

// Delete deletes the resource at path.
func (c Client) Delete(path string) (int, error) {
	return c.do(http.MethodDelete, path, nil, nil)
}
