package modelfile

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

// Schema returns the JSON Schema describing the YAML/JSON document form,
// for editor completion and agent-side validation.
func Schema() ([]byte, error) {
	reflector := &jsonschema.Reflector{}
	schema := reflector.Reflect(&Document{})
	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encoding schema")
	}
	return append(out, '\n'), nil
}
