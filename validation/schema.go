package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dcode-github/dealdirect/backend/models"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

func schemas() (map[string]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiled = make(map[string]*jsonschema.Schema)

		entries, err := fs.ReadDir(schemaFS, "schemas")
		if err != nil {
			compileErr = err
			return
		}
		for _, e := range entries {
			data, err := schemaFS.ReadFile(path.Join("schemas", e.Name()))
			if err != nil {
				compileErr = err
				return
			}
			if err := compiler.AddResource(e.Name(), bytes.NewReader(data)); err != nil {
				compileErr = fmt.Errorf("failed to add schema %s: %w", e.Name(), err)
				return
			}
		}
		for _, e := range entries {
			s, err := compiler.Compile(e.Name())
			if err != nil {
				compileErr = fmt.Errorf("failed to compile schema %s: %w", e.Name(), err)
				return
			}
			compiled[strings.TrimSuffix(e.Name(), ".json")] = s
		}
	})
	return compiled, compileErr
}

// decodeAgainst validates raw JSON with the named schema and then decodes it
// into dst. Every failure comes back as a validation error naming field.
func decodeAgainst(field, raw string, dst any) error {
	all, err := schemas()
	if err != nil {
		return models.StorageError(err, "schema registry unavailable")
	}
	schema, ok := all[field]
	if !ok {
		return models.StorageError(nil, "no schema for %s", field)
	}

	var doc any
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return models.ValidationError("%s must be valid JSON: %v", field, err)
	}
	if err := schema.Validate(doc); err != nil {
		return models.ValidationError("invalid %s: %s", field, schemaMessage(err))
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return models.ValidationError("invalid %s: %v", field, err)
	}
	return nil
}

// schemaMessage flattens the innermost causes of a schema failure into one
// line suitable for API clients.
func schemaMessage(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	var msgs []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := strings.TrimPrefix(e.InstanceLocation, "/")
			if loc == "" {
				msgs = append(msgs, e.Message)
			} else {
				msgs = append(msgs, loc+": "+e.Message)
			}
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return strings.Join(msgs, "; ")
}
