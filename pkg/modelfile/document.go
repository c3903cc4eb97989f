// Package modelfile loads pairwise test models from their on-disk forms:
// the plain-text parameter/constraint format, YAML or JSON documents, and
// markdown files carrying fenced model blocks. All forms reduce to a
// Document, which compiles into a model.Model.
package modelfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/pairgen/pairgen/pkg/model"
)

// Document is the declarative model form. Parameter order and value order
// are preserved from the source; both drive deterministic output.
type Document struct {
	Name        string         `json:"name,omitempty" yaml:"name,omitempty" jsonschema:"title=Model name,description=Display name of the generated suite"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty" jsonschema:"description=Free-form description of what the model covers"`
	Parameters  []ParameterDoc `json:"parameters" yaml:"parameters" jsonschema:"description=Parameters in declaration order"`
	Constraints []string       `json:"constraints,omitempty" yaml:"constraints,omitempty" jsonschema:"description=Constraint expressions restricting valid value combinations"`
}

// ParameterDoc is one parameter declaration.
type ParameterDoc struct {
	Name   string   `json:"name" yaml:"name" jsonschema:"description=Unique parameter name"`
	Values []string `json:"values" yaml:"values" jsonschema:"description=Domain values in order; a leading ~ marks a negative value"`
}

// Compile validates the document and builds the model.
func (d *Document) Compile() (*model.Model, error) {
	if len(d.Parameters) == 0 {
		return nil, errors.New("model has no parameters")
	}
	specs := make([]model.ParameterSpec, len(d.Parameters))
	for i, p := range d.Parameters {
		specs[i] = model.ParameterSpec{Name: p.Name, Values: p.Values}
	}
	return model.New(specs, d.Constraints)
}

// ParseYAML decodes a YAML document.
func ParseYAML(src []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing yaml model")
	}
	return &doc, nil
}

// ParseJSON decodes a JSON document.
func ParseJSON(src []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(src, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing json model")
	}
	return &doc, nil
}

// Load reads a model file and picks the parser by extension: .txt/.pict for
// the plain-text format, .yaml/.yml, .json, and .md/.markdown for
// fenced-block documents.
func Load(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading model file %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".pict":
		return ParseText(string(content))
	case ".yaml", ".yml":
		return ParseYAML(content)
	case ".json":
		return ParseJSON(content)
	case ".md", ".markdown":
		return ExtractMarkdown(content)
	}
	return nil, errors.Errorf("unsupported model file extension %q (expected .txt, .pict, .yaml, .yml, .json, .md)", filepath.Ext(path))
}
