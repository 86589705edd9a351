package routes

import (
	"net/http"
	"strconv"

	"github.com/relabs-tech/jobly/core/errs"
	"github.com/relabs-tech/jobly/core/sqlbuild"
)

// checkQueryKeys guards the query string of a list endpoint against
// unexpected parameters before any filter is assembled.
func checkQueryKeys(r *http.Request, allowed ...string) error {
	keys := make([]string, 0, len(r.URL.Query()))
	for key := range r.URL.Query() {
		keys = append(keys, key)
	}
	return sqlbuild.CheckAllowedKeys(keys, allowed...)
}

func queryString(r *http.Request, key string) *string {
	if !r.URL.Query().Has(key) {
		return nil
	}
	value := r.URL.Query().Get(key)
	return &value
}

func queryInt(r *http.Request, key string) (*int, error) {
	if !r.URL.Query().Has(key) {
		return nil, nil
	}
	value, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return nil, errs.New(errs.KindInvalidInput, "parameter %q must be an integer", key)
	}
	return &value, nil
}

func queryBool(r *http.Request, key string) (bool, error) {
	if !r.URL.Query().Has(key) {
		return false, nil
	}
	value, err := strconv.ParseBool(r.URL.Query().Get(key))
	if err != nil {
		return false, errs.New(errs.KindInvalidInput, "parameter %q must be a boolean", key)
	}
	return value, nil
}
