// Package ir holds the canonical, format-independent representation of an
// API surface. Every normalizer emits this model and every analysis pass
// consumes it; downstream emitters depend only on its shape.
package ir

import "strings"

// Spec is the root of the intermediate representation.
type Spec struct {
	Title      string
	BaseURL    string
	Version    string
	Operations []*Operation
	// Types maps a declared type name to its normalized shape.
	// Name collisions resolve last-write-wins.
	Types map[string]*Type
}

// Operation is one callable unit: a REST endpoint or a GraphQL root field.
// For GraphQL operations Path is the field name and exactly one of the tags
// "queries", "mutations" or "subscriptions" is set.
type Operation struct {
	ID           string
	Method       string
	Path         string
	Tags         []string
	PathParams   []Param
	QueryParams  []Param
	HeaderParams []Param
	RequestBody  *Type
	Response     *Type
	Pagination   *Pagination
	Deprecated   bool
}

// HasTag reports whether the operation carries the given tag.
func (o *Operation) HasTag(tag string) bool {
	for _, t := range o.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// IsRead reports whether the operation is safe to cache and page through:
// a GET/HEAD endpoint or a GraphQL query.
func (o *Operation) IsRead() bool {
	switch strings.ToUpper(o.Method) {
	case "GET", "HEAD":
		return true
	}
	return o.HasTag("queries")
}

// Location is where a parameter travels.
type Location string

const (
	InPath   Location = "path"
	InQuery  Location = "query"
	InHeader Location = "header"
)

// Param is a single operation parameter.
type Param struct {
	Name     string
	In       Location
	Required bool
	Type     *Type
}

// Kind tags the variant of a Type. The set is closed: consumers switch
// exhaustively over these six cases.
type Kind string

const (
	KindPrimitive Kind = "primitive"
	KindObject    Kind = "object"
	KindArray     Kind = "array"
	KindEnum      Kind = "enum"
	KindUnion     Kind = "union"
	KindRef       Kind = "ref"
)

// Primitive scalar names used by KindPrimitive types.
const (
	PrimString  = "string"
	PrimNumber  = "number"
	PrimInteger = "integer"
	PrimBoolean = "boolean"
	PrimNull    = "null"
	PrimUnknown = "unknown"
)

// Type is the unified type representation, a tagged variant. Only the
// fields belonging to the active Kind are meaningful.
type Type struct {
	Kind Kind

	// KindPrimitive
	Primitive string
	Format    string

	// KindObject. Property order is stable and determines emitted field
	// order downstream.
	Name                 string
	Properties           []Property
	AdditionalProperties *Type

	// KindArray
	Items *Type

	// KindEnum. Values hold strings and numbers only; an empty list is a
	// legal, impossible value.
	Values []any

	// KindUnion. An empty list is a legal, impossible value.
	Variants []*Type

	// KindRef. Ref always names an entry in Spec.Types.
	Ref string
}

// Property is a named member of an object type.
type Property struct {
	Name     string
	Type     *Type
	Required bool
}

// Unknown returns the permissive fallback type used when a schema fragment
// has no recognizable shape.
func Unknown() *Type {
	return &Type{Kind: KindPrimitive, Primitive: PrimUnknown}
}

// Strategy names a pagination traversal style.
type Strategy string

const (
	StrategyCursor      Strategy = "cursor"
	StrategyOffsetLimit Strategy = "offset-limit"
	StrategyPageNumber  Strategy = "page-number"
)

// Pagination describes how an operation pages through results. It is
// attached post-hoc by the pagination detector or supplied by the caller;
// a nil Pagination means not paginated or undetected.
type Pagination struct {
	Strategy     Strategy
	PageParam    string
	NextPagePath []string
	ItemsPath    []string
}
