package graphql

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

type introspectionEnvelope struct {
	Schema *introspectionSchema `json:"__schema"`
	Data   struct {
		Schema *introspectionSchema `json:"__schema"`
	} `json:"data"`
}

type introspectionSchema struct {
	QueryType        *introspectionTypeRef `json:"queryType"`
	MutationType     *introspectionTypeRef `json:"mutationType"`
	SubscriptionType *introspectionTypeRef `json:"subscriptionType"`
	Types            []introspectionType   `json:"types"`
}

type introspectionTypeRef struct {
	Kind   string                `json:"kind"`
	Name   string                `json:"name"`
	OfType *introspectionTypeRef `json:"ofType"`
}

type introspectionType struct {
	Kind          string                   `json:"kind"`
	Name          string                   `json:"name"`
	Fields        []introspectionField     `json:"fields"`
	InputFields   []introspectionInput     `json:"inputFields"`
	EnumValues    []introspectionEnumValue `json:"enumValues"`
	PossibleTypes []introspectionTypeRef   `json:"possibleTypes"`
}

type introspectionField struct {
	Name         string               `json:"name"`
	Args         []introspectionInput `json:"args"`
	Type         introspectionTypeRef `json:"type"`
	IsDeprecated bool                 `json:"isDeprecated"`
}

type introspectionInput struct {
	Name string               `json:"name"`
	Type introspectionTypeRef `json:"type"`
}

type introspectionEnumValue struct {
	Name string `json:"name"`
}

// looksLikeIntrospection reports whether the payload is a GraphQL
// introspection result, with or without the "data" envelope.
func looksLikeIntrospection(raw []byte) bool {
	env, err := decodeIntrospection(raw)
	return err == nil && env != nil
}

func decodeIntrospection(raw []byte) (*introspectionSchema, error) {
	var env introspectionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if env.Schema != nil && env.Schema.Types != nil {
		return env.Schema, nil
	}
	if env.Data.Schema != nil && env.Data.Schema.Types != nil {
		return env.Data.Schema, nil
	}
	return nil, fmt.Errorf("graphql introspection: missing __schema")
}

// introspectionToSchema rebuilds an *ast.Schema from an introspection
// result so that the SDL and introspection inputs share one conversion
// path downstream.
func introspectionToSchema(schema *introspectionSchema) *ast.Schema {
	out := &ast.Schema{
		Types:         map[string]*ast.Definition{},
		Directives:    map[string]*ast.DirectiveDefinition{},
		PossibleTypes: map[string][]*ast.Definition{},
	}

	for _, t := range schema.Types {
		if t.Name == "" || strings.HasPrefix(t.Name, "__") {
			continue
		}
		def := &ast.Definition{
			Kind: ast.DefinitionKind(t.Kind),
			Name: t.Name,
		}
		for _, f := range t.Fields {
			if f.Name == "" {
				continue
			}
			field := &ast.FieldDefinition{
				Name: f.Name,
				Type: typeRefToAST(f.Type),
			}
			if f.IsDeprecated {
				field.Directives = append(field.Directives, &ast.Directive{Name: "deprecated"})
			}
			for _, arg := range f.Args {
				if arg.Name == "" {
					continue
				}
				field.Arguments = append(field.Arguments, &ast.ArgumentDefinition{
					Name: arg.Name,
					Type: typeRefToAST(arg.Type),
				})
			}
			def.Fields = append(def.Fields, field)
		}
		for _, in := range t.InputFields {
			if in.Name == "" {
				continue
			}
			def.Fields = append(def.Fields, &ast.FieldDefinition{
				Name: in.Name,
				Type: typeRefToAST(in.Type),
			})
		}
		for _, ev := range t.EnumValues {
			if ev.Name == "" {
				continue
			}
			def.EnumValues = append(def.EnumValues, &ast.EnumValueDefinition{Name: ev.Name})
		}
		for _, pt := range t.PossibleTypes {
			if pt.Name != "" {
				def.Types = append(def.Types, pt.Name)
			}
		}
		out.Types[t.Name] = def
	}

	if schema.QueryType != nil {
		out.Query = out.Types[schema.QueryType.Name]
	}
	if schema.MutationType != nil {
		out.Mutation = out.Types[schema.MutationType.Name]
	}
	if schema.SubscriptionType != nil {
		out.Subscription = out.Types[schema.SubscriptionType.Name]
	}
	return out
}

func typeRefToAST(ref introspectionTypeRef) *ast.Type {
	if ref.Kind == "NON_NULL" && ref.OfType != nil {
		inner := typeRefToAST(*ref.OfType)
		inner.NonNull = true
		return inner
	}
	if ref.Kind == "LIST" && ref.OfType != nil {
		return &ast.Type{Elem: typeRefToAST(*ref.OfType)}
	}
	return &ast.Type{NamedType: ref.Name}
}
