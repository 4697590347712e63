package parser

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdallaemadeldin/auto-api-hooks/internal/logging"
	"github.com/abdallaemadeldin/auto-api-hooks/ir"
)

const openapiDoc = `openapi: 3.0.0
info:
  title: Tiny
  version: 1.0.0
servers:
  - url: https://tiny.example.com
paths:
  /things:
    get:
      operationId: listThings
      responses:
        "200":
          description: ok
`

const swaggerDoc = `swagger: "2.0"
info: {title: Legacy, version: "1.0"}
host: legacy.example.com
paths:
  /things:
    get:
      operationId: listThings
      responses:
        "200":
          description: ok
`

const graphqlDoc = `type Query {
  things: [String!]!
}
`

func TestParseDispatchesByFormat(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		title string
	}{
		{"openapi", openapiDoc, "Tiny"},
		{"swagger2", swaggerDoc, "Legacy"},
		{"graphql", graphqlDoc, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Parse([]byte(tt.raw), WithLogger(logging.Discard()))
			require.NoError(t, err)
			assert.Equal(t, tt.title, spec.Title)
			require.Len(t, spec.Operations, 1)
		})
	}
}

func TestParseStringContent(t *testing.T) {
	spec, err := Parse(graphqlDoc, WithLogger(logging.Discard()))
	require.NoError(t, err)
	assert.Equal(t, "things", spec.Operations[0].ID)
}

func TestParseDecodedDocument(t *testing.T) {
	doc := map[string]any{
		"openapi": "3.0.0",
		"info":    map[string]any{"title": "FromMap", "version": "1.0.0"},
		"paths":   map[string]any{},
	}
	spec, err := Parse(doc, WithLogger(logging.Discard()))
	require.NoError(t, err)
	assert.Equal(t, "FromMap", spec.Title)
}

func TestParseFileByExtension(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "api.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(openapiDoc), 0o644))
	spec, err := ParseFile(yamlPath, WithLogger(logging.Discard()))
	require.NoError(t, err)
	assert.Equal(t, "Tiny", spec.Title)

	// GraphQL extensions skip structured decoding entirely.
	gqlPath := filepath.Join(dir, "schema.graphql")
	require.NoError(t, os.WriteFile(gqlPath, []byte(graphqlDoc), 0o644))
	spec, err = ParseFile(gqlPath, WithLogger(logging.Discard()))
	require.NoError(t, err)
	require.Len(t, spec.Operations, 1)

	// A path argument to Parse routes through the same file handling.
	spec, err = Parse(yamlPath, WithLogger(logging.Discard()))
	require.NoError(t, err)
	assert.Equal(t, "Tiny", spec.Title)
}

func TestParseBaseURLOverride(t *testing.T) {
	spec, err := Parse([]byte(openapiDoc),
		WithBaseURL("https://override.example.com"),
		WithLogger(logging.Discard()))
	require.NoError(t, err)
	assert.Equal(t, "https://override.example.com", spec.BaseURL)
}

func TestParseUnrecognizedFormat(t *testing.T) {
	_, err := Parse([]byte(`{"random":1,"keys":2}`), WithLogger(logging.Discard()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFormatUnrecognized))

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, FormatUnrecognized, pe.Kind)
	assert.Contains(t, pe.Preview, "keys: ")
	assert.Contains(t, pe.Preview, "random")
}

func TestParseUnrecognizedYAMLWithTypeKey(t *testing.T) {
	// A stray YAML document whose top-level keys include "type" must not
	// be claimed by the GraphQL adapter.
	raw := []byte("type: object\nproperties:\n  name:\n    type: string\n")
	_, err := Parse(raw, WithLogger(logging.Discard()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFormatUnrecognized))

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Preview, "type")
}

func TestParseLogsDispatchTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, "text", "debug")
	_, err := Parse([]byte(openapiDoc), WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "format detected")
	assert.Contains(t, buf.String(), "format=openapi")
}

func TestParseUnrecognizedPlainText(t *testing.T) {
	long := "this is not an api description at all, just a long sentence that keeps going and going and going"
	_, err := Parse([]byte(long), WithLogger(logging.Discard()))
	require.Error(t, err)

	var pe *Error
	require.ErrorAs(t, err, &pe)
	// Preview is truncated to keep diagnostics short.
	assert.LessOrEqual(t, len(pe.Preview), 90)
}

func TestParseMissingFile(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.yaml"), WithLogger(logging.Discard()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceUnreadable))
}

func TestCrossFormatOperationEquivalence(t *testing.T) {
	restDoc := `openapi: 3.0.0
info: {title: Users, version: "1.0"}
paths:
  /users:
    get:
      operationId: users
      responses:
        "200": {description: ok}
    post:
      operationId: createUser
      responses:
        "200": {description: ok}
  /users/{id}:
    get:
      operationId: user
      parameters:
        - name: id
          in: path
          required: true
          schema: {type: string}
      responses:
        "200": {description: ok}
`
	graphDoc := `type Query {
  users: [User!]!
  user(id: ID!): User
}

type Mutation {
  createUser(name: String!): User
}

type User {
  id: ID!
  name: String
}
`
	rest, err := Parse([]byte(restDoc), WithLogger(logging.Discard()))
	require.NoError(t, err)
	graph, err := Parse([]byte(graphDoc), WithLogger(logging.Discard()))
	require.NoError(t, err)

	count := func(ops []*ir.Operation, read bool) int {
		n := 0
		for _, op := range ops {
			if op.IsRead() == read {
				n++
			}
		}
		return n
	}
	assert.Equal(t, count(rest.Operations, true), count(graph.Operations, true))
	assert.Equal(t, count(rest.Operations, false), count(graph.Operations, false))
}

func TestParseNilInput(t *testing.T) {
	_, err := Parse(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceUnreadable))
}
