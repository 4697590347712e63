package graphql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdallaemadeldin/auto-api-hooks/ir"
)

const blogSDL = `type Query {
  posts(first: Int, after: String): PostConnection
  post(id: ID!): Post
}

type Mutation {
  createPost(input: PostInput!): Post
  deletePost(id: ID!): Boolean @deprecated(reason: "use archivePost")
  archivePost(id: ID!): Post
}

type Post {
  id: ID!
  title: String!
  tags: [String!]
  author: Author
}

type Author {
  id: ID!
  posts: [Post!]!
}

type PostConnection {
  nodes: [Post!]!
  endCursor: String
}

input PostInput {
  title: String!
  tags: [String!]
}

enum PostState {
  DRAFT
  PUBLISHED
}

union SearchResult = Post | Author
`

func TestDetect(t *testing.T) {
	assert.True(t, Detect([]byte(blogSDL)))
	assert.True(t, Detect([]byte("  schema { query: Query }")))
	assert.True(t, Detect([]byte(`{"data":{"__schema":{"types":[]}}}`)))
	assert.True(t, Detect([]byte(`{"__schema":{"types":[]}}`)))
	assert.False(t, Detect([]byte(`{"openapi":"3.0.0"}`)))
	assert.False(t, Detect([]byte("just some prose")))
	// YAML keys like "type:" at line start are not SDL keywords.
	assert.False(t, Detect([]byte("type: object\nproperties: {}\n")))
	assert.False(t, Detect([]byte("schema:\n  url: https://example.com\n")))
}

func TestNormalizeSDLOperations(t *testing.T) {
	spec, err := Normalize([]byte(blogSDL), "https://api.example.com/graphql")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/graphql", spec.BaseURL)

	require.Len(t, spec.Operations, 5)

	// Queries first, sorted by field name, then mutations.
	assert.Equal(t, []string{"post", "posts", "archivePost", "createPost", "deletePost"},
		[]string{spec.Operations[0].ID, spec.Operations[1].ID, spec.Operations[2].ID,
			spec.Operations[3].ID, spec.Operations[4].ID})

	posts := spec.Operations[1]
	assert.Equal(t, "POST", posts.Method)
	assert.Equal(t, "posts", posts.Path)
	assert.Equal(t, []string{"queries"}, posts.Tags)
	assert.True(t, posts.IsRead())

	// Arguments become query params and a bundled request body, both in
	// declaration order.
	require.Len(t, posts.QueryParams, 2)
	assert.Equal(t, "first", posts.QueryParams[0].Name)
	assert.Equal(t, "after", posts.QueryParams[1].Name)
	assert.False(t, posts.QueryParams[0].Required)
	require.NotNil(t, posts.RequestBody)
	require.Len(t, posts.RequestBody.Properties, 2)
	assert.Equal(t, "first", posts.RequestBody.Properties[0].Name)
	assert.Equal(t, "after", posts.RequestBody.Properties[1].Name)

	// Non-null argument unwraps into required=true.
	post := spec.Operations[0]
	require.Len(t, post.QueryParams, 1)
	assert.True(t, post.QueryParams[0].Required)
	assert.Equal(t, ir.PrimString, post.QueryParams[0].Type.Primitive)

	// Mutations are writes.
	create := spec.Operations[3]
	assert.Equal(t, []string{"mutations"}, create.Tags)
	assert.False(t, create.IsRead())
	assert.Equal(t, &ir.Type{Kind: ir.KindRef, Ref: "PostInput"}, create.QueryParams[0].Type)

	assert.True(t, spec.Operations[4].Deprecated)
	assert.False(t, create.Deprecated)
}

func TestNormalizeSDLTypes(t *testing.T) {
	spec, err := Normalize([]byte(blogSDL), "")
	require.NoError(t, err)

	for _, name := range []string{"Post", "Author", "PostConnection", "PostInput", "PostState", "SearchResult"} {
		require.Contains(t, spec.Types, name)
	}
	// Root types are operations, not registry entries.
	assert.NotContains(t, spec.Types, "Query")
	assert.NotContains(t, spec.Types, "Mutation")
	assert.NotContains(t, spec.Types, "String")

	post := spec.Types["Post"]
	require.Equal(t, ir.KindObject, post.Kind)

	// Field declaration order carries through to property order.
	var order []string
	byName := map[string]ir.Property{}
	for _, p := range post.Properties {
		order = append(order, p.Name)
		byName[p.Name] = p
	}
	assert.Equal(t, []string{"id", "title", "tags", "author"}, order)
	// Non-null unwraps to required.
	assert.True(t, byName["id"].Required)
	assert.False(t, byName["author"].Required)
	// List wrapper unwraps to array.
	require.Equal(t, ir.KindArray, byName["tags"].Type.Kind)
	assert.Equal(t, ir.PrimString, byName["tags"].Type.Items.Primitive)
	assert.Equal(t, &ir.Type{Kind: ir.KindRef, Ref: "Author"}, byName["author"].Type)

	state := spec.Types["PostState"]
	require.Equal(t, ir.KindEnum, state.Kind)
	assert.Equal(t, []any{"DRAFT", "PUBLISHED"}, state.Values)

	search := spec.Types["SearchResult"]
	require.Equal(t, ir.KindUnion, search.Kind)
	assert.Equal(t, []*ir.Type{
		{Kind: ir.KindRef, Ref: "Post"},
		{Kind: ir.KindRef, Ref: "Author"},
	}, search.Variants)
}

func TestNormalizeSDLMutualRecursion(t *testing.T) {
	spec, err := Normalize([]byte(blogSDL), "")
	require.NoError(t, err)

	author := spec.Types["Author"]
	byName := map[string]ir.Property{}
	for _, p := range author.Properties {
		byName[p.Name] = p
	}
	// Post and Author reference each other; both stay refs.
	require.Equal(t, ir.KindArray, byName["posts"].Type.Kind)
	assert.Equal(t, &ir.Type{Kind: ir.KindRef, Ref: "Post"}, byName["posts"].Type.Items)
}

const introspectionDoc = `{
  "data": {
    "__schema": {
      "queryType": {"name": "Query"},
      "mutationType": {"name": "Mutation"},
      "types": [
        {
          "kind": "OBJECT",
          "name": "Query",
          "fields": [
            {
              "name": "user",
              "args": [
                {"name": "id", "type": {"kind": "NON_NULL", "ofType": {"kind": "SCALAR", "name": "ID"}}}
              ],
              "type": {"kind": "OBJECT", "name": "User"}
            },
            {
              "name": "users",
              "args": [],
              "type": {"kind": "LIST", "ofType": {"kind": "OBJECT", "name": "User"}}
            }
          ]
        },
        {
          "kind": "OBJECT",
          "name": "Mutation",
          "fields": [
            {
              "name": "deleteUser",
              "args": [
                {"name": "id", "type": {"kind": "NON_NULL", "ofType": {"kind": "SCALAR", "name": "ID"}}}
              ],
              "type": {"kind": "SCALAR", "name": "Boolean"},
              "isDeprecated": true
            }
          ]
        },
        {
          "kind": "OBJECT",
          "name": "User",
          "fields": [
            {"name": "id", "args": [], "type": {"kind": "NON_NULL", "ofType": {"kind": "SCALAR", "name": "ID"}}},
            {"name": "role", "args": [], "type": {"kind": "ENUM", "name": "Role"}}
          ]
        },
        {
          "kind": "ENUM",
          "name": "Role",
          "enumValues": [{"name": "ADMIN"}, {"name": "MEMBER"}]
        },
        {"kind": "SCALAR", "name": "ID"},
        {"kind": "SCALAR", "name": "Boolean"},
        {"kind": "OBJECT", "name": "__Schema", "fields": []}
      ]
    }
  }
}`

func TestNormalizeIntrospection(t *testing.T) {
	spec, err := Normalize([]byte(introspectionDoc), "")
	require.NoError(t, err)

	require.Len(t, spec.Operations, 3)
	assert.Equal(t, "user", spec.Operations[0].ID)
	assert.Equal(t, "users", spec.Operations[1].ID)
	assert.Equal(t, "deleteUser", spec.Operations[2].ID)

	assert.Equal(t, []string{"queries"}, spec.Operations[0].Tags)
	assert.Equal(t, []string{"mutations"}, spec.Operations[2].Tags)
	assert.True(t, spec.Operations[2].Deprecated)

	// NON_NULL argument wrapper unwraps to required.
	user := spec.Operations[0]
	require.Len(t, user.QueryParams, 1)
	assert.True(t, user.QueryParams[0].Required)

	// LIST wrapper unwraps to array of refs.
	users := spec.Operations[1]
	require.Equal(t, ir.KindArray, users.Response.Kind)
	assert.Equal(t, &ir.Type{Kind: ir.KindRef, Ref: "User"}, users.Response.Items)

	// Introspection-internal types never register.
	assert.NotContains(t, spec.Types, "__Schema")
	require.Contains(t, spec.Types, "Role")
	assert.Equal(t, []any{"ADMIN", "MEMBER"}, spec.Types["Role"].Values)
}

func TestNormalizeBadSDL(t *testing.T) {
	_, err := Normalize([]byte("type Query {"), "")
	assert.Error(t, err)
}
