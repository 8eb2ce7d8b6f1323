package parser

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaErr      error
)

// Schema returns the JSON schema every NDJSON event line must satisfy.
func Schema() []byte {
	return schemaJSON
}

func eventSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	})
	return compiledSchema, schemaErr
}

// Validate checks every non-blank line of r against the event schema and
// returns one *LineError per offending line. Reading stops at the first I/O
// error, which is returned last.
func Validate(r io.Reader) []error {
	schema, err := eventSchema()
	if err != nil {
		return []error{fmt.Errorf("loading event schema: %w", err)}
	}

	var errs []error
	scanner := newLineScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			errs = append(errs, &LineError{Line: line, Err: fmt.Errorf("%w: %v", ErrMalformedEvent, err)})
			continue
		}
		if result.Valid() {
			continue
		}

		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		errs = append(errs, &LineError{Line: line, Err: fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(problems, "; "))})
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, fmt.Errorf("reading line %d: %w", line+1, err))
	}
	return errs
}
