package modelfile

import (
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// ParseText parses the plain-text model format: one
// "Name: value1, value2, ..." line per parameter, a blank line, then
// constraint expressions each terminated by ";". An expression may span
// lines, and full-line "#" comments are allowed anywhere. A leading "~" on
// a value stays part of the value.
func ParseText(src string) (*Document, error) {
	doc := &Document{}
	var result *multierror.Error

	inParams := true
	var constraintSrc strings.Builder
	for n, raw := range strings.Split(src, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			if len(doc.Parameters) > 0 {
				inParams = false
			}
		case strings.HasPrefix(line, "#"):
			// comment
		case inParams:
			param, err := parseParameterLine(line)
			if err != nil {
				result = multierror.Append(result, errors.Wrapf(err, "line %d", n+1))
				continue
			}
			doc.Parameters = append(doc.Parameters, param)
		default:
			constraintSrc.WriteString(raw)
			constraintSrc.WriteString("\n")
		}
	}

	constraints, err := splitConstraints(constraintSrc.String())
	if err != nil {
		result = multierror.Append(result, err)
	}
	doc.Constraints = constraints

	if len(doc.Parameters) == 0 {
		result = multierror.Append(result, errors.New("no parameter lines found"))
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, errors.Wrap(err, "invalid model file")
	}
	return doc, nil
}

func parseParameterLine(line string) (ParameterDoc, error) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return ParameterDoc{}, errors.Errorf("expected \"Name: value, ...\", got %q", line)
	}
	name := strings.TrimSpace(line[:idx])
	if name == "" {
		return ParameterDoc{}, errors.Errorf("parameter line %q has an empty name", line)
	}
	param := ParameterDoc{Name: name}
	for _, v := range strings.Split(line[idx+1:], ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			return ParameterDoc{}, errors.Errorf("parameter %q has an empty value", name)
		}
		param.Values = append(param.Values, v)
	}
	return param, nil
}

// splitConstraints cuts the constraint section on ";" terminators,
// ignoring semicolons inside string literals.
func splitConstraints(src string) ([]string, error) {
	var out []string
	var cur strings.Builder
	inQuote := false
	for _, r := range src {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case r == ';' && !inQuote:
			if text := strings.TrimSpace(cur.String()); text != "" {
				out = append(out, text)
			}
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if trailing := strings.TrimSpace(cur.String()); trailing != "" {
		return out, errors.Errorf("constraint %q is missing its terminating ';'", trailing)
	}
	return out, nil
}
