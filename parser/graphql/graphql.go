// Package graphql normalizes GraphQL schemas into the canonical IR.
// It accepts SDL source text and introspection JSON; the introspection
// path is rebuilt into an AST schema first so both inputs share one
// conversion pipeline.
package graphql

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	gqlparser "github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/abdallaemadeldin/auto-api-hooks/ir"
)

// Keywords must be followed by whitespace: a bare word boundary would
// also claim YAML documents with keys like "type:" at line start.
var sdlSignature = regexp.MustCompile(`(?m)^\s*(type|schema|input|enum|union|interface|scalar|directive|extend)\s`)

// Detect reports whether the payload is a GraphQL schema: introspection
// JSON or SDL source starting with a definition keyword.
func Detect(raw []byte) bool {
	if looksLikeIntrospection(raw) {
		return true
	}
	return sdlSignature.Match(raw)
}

// Normalize converts a GraphQL schema into the canonical IR. GraphQL
// documents declare no base URL, so BaseURL comes solely from the
// caller override.
func Normalize(raw []byte, baseURL string) (*ir.Spec, error) {
	var schema *ast.Schema
	if looksLikeIntrospection(raw) {
		intro, err := decodeIntrospection(raw)
		if err != nil {
			return nil, fmt.Errorf("graphql: %w", err)
		}
		schema = introspectionToSchema(intro)
	} else {
		s, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: string(raw)})
		if err != nil {
			return nil, fmt.Errorf("graphql: schema parse failed: %w", err)
		}
		schema = s
	}

	c := &converter{
		schema: schema,
		named:  map[string]bool{},
		types:  map[string]*ir.Type{},
	}

	roots := map[string]bool{}
	for _, def := range []*ast.Definition{schema.Query, schema.Mutation, schema.Subscription} {
		if def != nil {
			roots[def.Name] = true
		}
	}

	// Two passes over the named-type section: names first, so that
	// bodies converted in the second pass can emit refs to types whose
	// own conversion has not happened yet.
	names := make([]string, 0, len(schema.Types))
	for name, def := range schema.Types {
		if strings.HasPrefix(name, "__") || roots[name] || builtinScalar(name) {
			continue
		}
		if def.Kind == ast.Scalar {
			continue
		}
		names = append(names, name)
		c.named[name] = true
	}
	sort.Strings(names)
	for _, name := range names {
		c.types[name] = c.definition(schema.Types[name])
	}

	spec := &ir.Spec{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Types:   c.types,
	}

	seen := map[string]bool{}
	for _, root := range []struct {
		def    *ast.Definition
		opType string
		tag    string
	}{
		{schema.Query, "query", "queries"},
		{schema.Mutation, "mutation", "mutations"},
		{schema.Subscription, "subscription", "subscriptions"},
	} {
		if root.def == nil {
			continue
		}
		fields := make([]*ast.FieldDefinition, 0, len(root.def.Fields))
		for _, f := range root.def.Fields {
			if f != nil && f.Name != "" && !strings.HasPrefix(f.Name, "__") {
				fields = append(fields, f)
			}
		}
		sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
		for _, field := range fields {
			id := field.Name
			if seen[id] {
				id = root.opType + "_" + field.Name
			}
			seen[id] = true
			spec.Operations = append(spec.Operations, c.buildOperation(id, root.tag, field))
		}
	}

	return spec, nil
}

type converter struct {
	schema *ast.Schema
	named  map[string]bool
	types  map[string]*ir.Type
}

// definition converts the body of one named type.
func (c *converter) definition(def *ast.Definition) *ir.Type {
	switch def.Kind {
	case ast.Object, ast.Interface, ast.InputObject:
		props := make([]ir.Property, 0, len(def.Fields))
		for _, f := range def.Fields {
			if f == nil || f.Name == "" || strings.HasPrefix(f.Name, "__") {
				continue
			}
			props = append(props, ir.Property{
				Name:     f.Name,
				Type:     c.convert(f.Type),
				Required: f.Type != nil && f.Type.NonNull,
			})
		}
		return &ir.Type{Kind: ir.KindObject, Name: def.Name, Properties: props}
	case ast.Enum:
		values := make([]any, 0, len(def.EnumValues))
		for _, ev := range def.EnumValues {
			if ev != nil && ev.Name != "" {
				values = append(values, ev.Name)
			}
		}
		return &ir.Type{Kind: ir.KindEnum, Name: def.Name, Values: values}
	case ast.Union:
		variants := make([]*ir.Type, 0, len(def.Types))
		for _, member := range def.Types {
			if c.named[member] {
				variants = append(variants, &ir.Type{Kind: ir.KindRef, Ref: member})
			}
		}
		return &ir.Type{Kind: ir.KindUnion, Variants: variants}
	}
	return ir.Unknown()
}

// convert maps a type reference, unwrapping list wrappers into arrays.
// Non-null wrappers carry no type information of their own; the caller
// reads NonNull off the outermost wrapper for required semantics.
func (c *converter) convert(typ *ast.Type) *ir.Type {
	if typ == nil {
		return ir.Unknown()
	}
	if typ.Elem != nil {
		return &ir.Type{Kind: ir.KindArray, Items: c.convert(typ.Elem)}
	}
	name := typ.NamedType
	switch name {
	case "String", "ID":
		return &ir.Type{Kind: ir.KindPrimitive, Primitive: ir.PrimString}
	case "Int":
		return &ir.Type{Kind: ir.KindPrimitive, Primitive: ir.PrimInteger}
	case "Float":
		return &ir.Type{Kind: ir.KindPrimitive, Primitive: ir.PrimNumber}
	case "Boolean":
		return &ir.Type{Kind: ir.KindPrimitive, Primitive: ir.PrimBoolean}
	}
	if c.named[name] {
		return &ir.Type{Kind: ir.KindRef, Ref: name}
	}
	// Custom scalars and anything unregistered degrade to unknown.
	return ir.Unknown()
}

// buildOperation turns one root field into an operation. The field name
// doubles as the path; arguments travel as query parameters and, when
// present, are also bundled into a synthetic request-body object.
func (c *converter) buildOperation(id, tag string, field *ast.FieldDefinition) *ir.Operation {
	op := &ir.Operation{
		ID:         id,
		Method:     "POST",
		Path:       field.Name,
		Tags:       []string{tag},
		Deprecated: isDeprecated(field),
	}

	// Arguments keep their declaration order; it determines emitted
	// field order downstream.
	args := make([]*ast.ArgumentDefinition, 0, len(field.Arguments))
	for _, arg := range field.Arguments {
		if arg != nil && arg.Name != "" {
			args = append(args, arg)
		}
	}

	for _, arg := range args {
		required := arg.Type != nil && arg.Type.NonNull
		typ := c.convert(arg.Type)
		op.QueryParams = append(op.QueryParams, ir.Param{
			Name:     arg.Name,
			In:       ir.InQuery,
			Required: required,
			Type:     typ,
		})
	}
	if len(op.QueryParams) > 0 {
		props := make([]ir.Property, 0, len(op.QueryParams))
		for _, p := range op.QueryParams {
			props = append(props, ir.Property{Name: p.Name, Type: p.Type, Required: p.Required})
		}
		op.RequestBody = &ir.Type{Kind: ir.KindObject, Properties: props}
	}

	op.Response = c.convert(field.Type)
	return op
}

func isDeprecated(field *ast.FieldDefinition) bool {
	for _, d := range field.Directives {
		if d != nil && d.Name == "deprecated" {
			return true
		}
	}
	return false
}

func builtinScalar(name string) bool {
	switch name {
	case "String", "Int", "Float", "Boolean", "ID":
		return true
	}
	return false
}
