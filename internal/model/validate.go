package model

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed resume.schema.json
var schemaJSON []byte

var (
	ErrPayloadTooLarge = errors.New("resume payload too large")
	ErrInvalidPayload  = errors.New("invalid resume payload")
)

var resumeSchema = mustLoadSchema()

func mustLoadSchema() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("model: bad embedded schema: %v", err))
	}
	return s
}

// ValidateMap validates a record against the embedded résumé schema. The
// schema bounds sizes only; fields of the wrong type are left to Decode.
func ValidateMap(m Record) error {
	if m == nil {
		return fmt.Errorf("%w: record is empty", ErrInvalidPayload)
	}
	res, err := resumeSchema.Validate(gojsonschema.NewGoLoader(map[string]interface{}(m)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: schema validation failed: %s", ErrInvalidPayload, strings.Join(msgs, "; "))
}

// ParsePayload decodes a client-carried record. maxBytes <= 0 disables the
// size check.
func ParsePayload(raw string, maxBytes int) (Record, error) {
	if maxBytes > 0 && len(raw) > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrPayloadTooLarge, len(raw), maxBytes)
	}

	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON object, got %T", ErrInvalidPayload, v)
	}

	rec := Record(obj)
	if err := ValidateMap(rec); err != nil {
		return nil, err
	}
	return rec, nil
}
