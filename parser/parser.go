// Package parser is the entry point of the normalization engine. It
// dispatches raw input to one of three format normalizers — OpenAPI v3,
// Swagger 2.0 and GraphQL — each of which emits the canonical IR.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abdallaemadeldin/auto-api-hooks/ir"
	"github.com/abdallaemadeldin/auto-api-hooks/parser/graphql"
	"github.com/abdallaemadeldin/auto-api-hooks/parser/openapi"
	"github.com/abdallaemadeldin/auto-api-hooks/parser/swagger2"
)

// Adapter binds a format name to its detection predicate and normalizer.
type Adapter struct {
	Name   string
	Detect func(raw []byte) bool
	Parse  func(raw []byte, baseURL string) (*ir.Spec, error)
}

// adapters are tried in declaration order: version-field sniffing for
// the two REST formats first, GraphQL shape and keyword sniffing last.
var adapters = []Adapter{
	{Name: "openapi", Detect: openapi.Detect, Parse: openapi.Normalize},
	{Name: "swagger2", Detect: swagger2.Detect, Parse: swagger2.Normalize},
	{Name: "graphql", Detect: graphql.Detect, Parse: graphql.Normalize},
}

// graphExtensions route straight to the GraphQL normalizer without
// structured decoding.
var graphExtensions = map[string]bool{
	".graphql":  true,
	".gql":      true,
	".graphqls": true,
	".sdl":      true,
}

// Parse normalizes an API description into the IR. input may be a
// file-system path, raw document bytes, schema source text, or an
// already-decoded document value.
func Parse(input any, opts ...Option) (*ir.Spec, error) {
	o := buildOptions(opts)

	switch v := input.(type) {
	case []byte:
		return parseBytes(v, o)
	case string:
		if looksLikePath(v) {
			return parseFile(v, o)
		}
		return parseBytes([]byte(v), o)
	case map[string]any:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, &Error{
				Kind:    SourceUnreadable,
				Message: "document value is not serializable",
				Preview: previewKeys(v),
				Cause:   err,
			}
		}
		return parseBytes(raw, o)
	case nil:
		return nil, &Error{Kind: SourceUnreadable, Message: "nil input"}
	}
	return nil, &Error{
		Kind:    SourceUnreadable,
		Message: fmt.Sprintf("unsupported input type %T", input),
	}
}

// ParseFile normalizes the API description stored at path. The file
// extension selects the decoding strategy: GraphQL extensions pass the
// content through as schema source, everything else goes through
// structured detection.
func ParseFile(path string, opts ...Option) (*ir.Spec, error) {
	return parseFile(path, buildOptions(opts))
}

func parseFile(path string, o Options) (*ir.Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{
			Kind:    SourceUnreadable,
			Message: "cannot read spec file",
			Path:    path,
			Cause:   err,
		}
	}

	if graphExtensions[strings.ToLower(filepath.Ext(path))] {
		o.Logger.Debug("dispatching by extension", "format", "graphql", "path", path)
		return graphql.Normalize(raw, o.BaseURL)
	}
	spec, err := parseBytes(raw, o)
	if err != nil {
		var pe *Error
		if errors.As(err, &pe) && pe.Path == "" {
			pe.Path = path
		}
		return nil, err
	}
	return spec, nil
}

func parseBytes(raw []byte, o Options) (*ir.Spec, error) {
	for _, a := range adapters {
		if !a.Detect(raw) {
			continue
		}
		o.Logger.Debug("format detected", "format", a.Name)
		spec, err := a.Parse(raw, o.BaseURL)
		if err != nil {
			return nil, &Error{
				Kind:    SourceUnreadable,
				Message: fmt.Sprintf("%s normalization failed", a.Name),
				Cause:   err,
			}
		}
		return spec, nil
	}
	return nil, &Error{
		Kind:    FormatUnrecognized,
		Message: "no format matched the input",
		Preview: preview(raw),
	}
}

// looksLikePath treats a short single-line string as a candidate path
// and confirms it against the file system.
func looksLikePath(s string) bool {
	if len(s) > 4096 || strings.ContainsAny(s, "\n{") {
		return false
	}
	_, err := os.Stat(s)
	return err == nil
}

// preview renders a short excerpt of unrecognized input: the first few
// top-level keys when it decodes as a mapping, otherwise the leading
// characters.
func preview(raw []byte) string {
	var m map[string]any
	if err := yaml.Unmarshal(raw, &m); err == nil && len(m) > 0 {
		return previewKeys(m)
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > 80 {
		s = s[:80] + "..."
	}
	return s
}

func previewKeys(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 5 {
		keys = keys[:5]
	}
	return "keys: " + strings.Join(keys, ", ")
}
