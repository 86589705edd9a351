// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package schema

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/goccy/go-json"

	"github.com/xeipuuv/gojsonschema"

	"github.com/relabs-tech/jobly/core/errs"
)

// Validator validates request bodies against the JSON schemas the routes
// embed. Schemas are compiled once at startup; an unknown schema ID is a
// programming error and fails loudly.
type Validator struct {
	schemaValidators map[string]*gojsonschema.Schema
}

// NewValidatorFromFS creates a new Validator from all .json files in the
// root of schemaFS. Each schema file must carry a toplevel $id, which
// becomes the schema ID to validate against.
func NewValidatorFromFS(schemaFS fs.FS) (*Validator, error) {
	files, err := fs.ReadDir(schemaFS, ".")
	if err != nil {
		return nil, fmt.Errorf("cannot read schema dir %w", err)
	}

	var schemas []string
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		str, err := fs.ReadFile(schemaFS, f.Name())
		if err != nil {
			return nil, fmt.Errorf("cannot read file '%s' %w", f.Name(), err)
		}
		schemas = append(schemas, string(str))
	}
	return NewValidator(schemas)
}

// NewValidator creates a new Validator from the passed schema documents.
func NewValidator(schemas []string) (*Validator, error) {
	type schema struct {
		ID string `json:"$id"`
	}
	validator := Validator{schemaValidators: make(map[string]*gojsonschema.Schema)}
	for _, str := range schemas {
		s := schema{}
		err := json.Unmarshal([]byte(str), &s)
		if err != nil {
			return nil, fmt.Errorf("parse error '%v' in schema: '%s'", err, str)
		}
		if s.ID == "" {
			return nil, fmt.Errorf("schema does not contain $id: '%s'", str)
		}
		sl := gojsonschema.NewSchemaLoader()
		compiled, err := sl.Compile(gojsonschema.NewStringLoader(str))
		if err != nil {
			return nil, fmt.Errorf("cannot compile schema %s %s", s.ID, err)
		}
		validator.schemaValidators[s.ID] = compiled
	}
	return &validator, nil
}

// HasSchema returns true if schemaID is known
func (v *Validator) HasSchema(schemaID string) bool {
	_, ok := v.schemaValidators[schemaID]
	return ok
}

// ValidateBytes validates the given json document against schemaID. If no
// error is returned, the document is valid. Validation failures come back
// as invalid-input domain errors listing every violation.
func (v *Validator) ValidateBytes(document []byte, schemaID string) error {
	return v.validate(gojsonschema.NewBytesLoader(document), schemaID)
}

// ValidateStruct validates the given value, marshalled as json, against schemaID.
func (v *Validator) ValidateStruct(value interface{}, schemaID string) error {
	return v.validate(gojsonschema.NewGoLoader(value), schemaID)
}

func (v *Validator) validate(loader gojsonschema.JSONLoader, schemaID string) error {
	compiled, ok := v.schemaValidators[schemaID]
	if !ok {
		return fmt.Errorf("there is no schema %s", schemaID)
	}

	result, err := compiled.Validate(loader)
	if err != nil {
		return errs.New(errs.KindInvalidInput, "cannot validate with schema %s: %s", schemaID, err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return errs.New(errs.KindInvalidInput, "%s", strings.Join(msgs, "; "))
	}
	return nil
}
