package routes

import (
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/relabs-tech/jobly/core/errs"
	"github.com/relabs-tech/jobly/core/logger"
)

// statusOf is the single translation point from domain error kinds to HTTP
// status codes.
func statusOf(err error) int {
	switch errs.KindOf(err) {
	case errs.KindInvalidInput, errs.KindDuplicate:
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func errorBody(message string, status int) interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"message": message,
			"status":  status,
		},
	}
}

// writeError maps err to an HTTP status code and writes the JSON error
// body. Unexpected errors are logged and masked with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).WithError(err).Errorln("unexpected error")
		message = "internal server error"
	}
	writeJSON(w, status, errorBody(message, status))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	jsonData, _ := json.MarshalWithOption(body, json.DisableHTMLEscape())
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(jsonData)
}

// readBody reads the request body, validates it against the schema with the
// given ID and decodes it into target. An empty body is an invalid-input
// error.
func (a *API) readBody(r *http.Request, schemaID string, target interface{}) error {
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return errs.New(errs.KindInvalidInput, "request body required")
	}
	if err := a.validator.ValidateBytes(body, schemaID); err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errs.Wrap(errs.KindInvalidInput, err, "cannot parse request body")
	}
	return nil
}
