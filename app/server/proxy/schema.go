package proxy

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "routes.schema.json"

// Schema returns the JSON schema of the route table file, generated from Config.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{Anonymous: true, ExpandedStruct: true}
	s := r.Reflect(&Config{})
	s.Title = "screengate routes"
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal routes schema: %w", err)
	}
	return data, nil
}

// NewValidator compiles the route table schema and returns a ConfigValidator for it.
func NewValidator() (ConfigValidator, error) {
	data, err := Schema()
	if err != nil {
		return nil, err
	}
	c := validator.NewCompiler()
	if err := c.AddResource(schemaURL, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to add routes schema: %w", err)
	}
	sch, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile routes schema: %w", err)
	}

	return func(data []byte) error {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("invalid routes config: %w", err)
		}
		if err := sch.Validate(v); err != nil {
			return fmt.Errorf("routes config validation failed: %w", err)
		}
		return nil
	}, nil
}
