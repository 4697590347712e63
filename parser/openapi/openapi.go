// Package openapi normalizes OpenAPI v3 documents into the canonical IR.
package openapi

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/abdallaemadeldin/auto-api-hooks/ir"
)

// Detect reports whether the payload declares an OpenAPI v3 version field.
func Detect(raw []byte) bool {
	var probe struct {
		OpenAPI string `yaml:"openapi" json:"openapi"`
	}
	if err := yaml.Unmarshal(raw, &probe); err != nil {
		return false
	}
	return probe.OpenAPI != ""
}

// Normalize parses an OpenAPI v3 document (JSON or YAML) and converts it
// into the canonical IR. baseURL, when non-empty, overrides the document's
// first server URL. Malformed schema fragments degrade to unknown types
// rather than failing the whole conversion.
func Normalize(raw []byte, baseURL string) (*ir.Spec, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true

	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, err
	}

	// Validate but don't fail hard: many real-world specs have minor
	// validation issues yet are perfectly usable.
	_ = doc.Validate(context.Background(),
		openapi3.DisableExamplesValidation(),
		openapi3.DisableSchemaDefaultsValidation())

	c := &converter{
		doc:      doc,
		types:    map[string]*ir.Type{},
		building: map[string]bool{},
	}
	c.registerComponents()

	spec := &ir.Spec{Types: c.types}
	if doc.Info != nil {
		spec.Title = doc.Info.Title
		spec.Version = doc.Info.Version
	}
	spec.BaseURL = strings.TrimRight(baseURL, "/")
	if spec.BaseURL == "" && len(doc.Servers) > 0 {
		spec.BaseURL = strings.TrimRight(doc.Servers[0].URL, "/")
	}

	paths := map[string]*openapi3.PathItem{}
	if doc.Paths != nil {
		paths = doc.Paths.Map()
	}
	pathKeys := sortedKeys(paths)
	for _, path := range pathKeys {
		item := paths[path]
		if item == nil {
			continue
		}
		methodOps := []*openapi3.Operation{
			item.Get, item.Post, item.Put, item.Patch,
			item.Delete, item.Options, item.Head, item.Trace,
		}
		methods := []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD", "TRACE"}
		for i, op := range methodOps {
			if op == nil {
				continue
			}
			spec.Operations = append(spec.Operations, c.buildOperation(methods[i], path, item, op))
		}
	}

	sort.Slice(spec.Operations, func(i, j int) bool {
		if spec.Operations[i].Path == spec.Operations[j].Path {
			return spec.Operations[i].Method < spec.Operations[j].Method
		}
		return spec.Operations[i].Path < spec.Operations[j].Path
	})

	return spec, nil
}

// converter carries the per-call state of one normalization: the named-type
// registry under construction and the in-progress set guarding recursive
// registration. Nothing here outlives a single Normalize call.
type converter struct {
	doc      *openapi3.T
	types    map[string]*ir.Type
	building map[string]bool
}

func (c *converter) registerComponents() {
	if c.doc.Components == nil {
		return
	}
	for _, name := range sortedKeys(c.doc.Components.Schemas) {
		c.register(name, c.doc.Components.Schemas[name])
	}
}

func (c *converter) register(name string, sr *openapi3.SchemaRef) {
	c.building[name] = true
	t := c.convert(sr)
	delete(c.building, name)
	if t.Kind == ir.KindObject || t.Kind == ir.KindEnum {
		t.Name = name
	}
	c.types[name] = t
}

// convert maps one schema node to an IR type following a fixed priority:
// oneOf/anyOf, allOf, enum, array, object, scalar, unknown.
func (c *converter) convert(sr *openapi3.SchemaRef) *ir.Type {
	if sr == nil {
		return ir.Unknown()
	}
	if sr.Ref != "" {
		if name := refName(sr.Ref); name != "" {
			return &ir.Type{Kind: ir.KindRef, Ref: name}
		}
		return ir.Unknown()
	}
	s := sr.Value
	if s == nil {
		return ir.Unknown()
	}

	if len(s.OneOf) > 0 {
		return c.union(s.OneOf)
	}
	if len(s.AnyOf) > 0 {
		return c.union(s.AnyOf)
	}
	if len(s.AllOf) > 0 {
		return c.mergeAllOf(s)
	}
	if len(s.Enum) > 0 {
		return &ir.Type{Kind: ir.KindEnum, Values: enumValues(s.Enum)}
	}
	if (s.Type != nil && s.Type.Is(openapi3.TypeArray)) || s.Items != nil {
		return &ir.Type{Kind: ir.KindArray, Items: c.convert(s.Items)}
	}
	if isObjectShape(s) {
		return c.object(s)
	}
	if s.Type != nil {
		switch {
		case s.Type.Is(openapi3.TypeString):
			return &ir.Type{Kind: ir.KindPrimitive, Primitive: ir.PrimString, Format: s.Format}
		case s.Type.Is(openapi3.TypeInteger):
			return &ir.Type{Kind: ir.KindPrimitive, Primitive: ir.PrimInteger, Format: s.Format}
		case s.Type.Is(openapi3.TypeNumber):
			return &ir.Type{Kind: ir.KindPrimitive, Primitive: ir.PrimNumber, Format: s.Format}
		case s.Type.Is(openapi3.TypeBoolean):
			return &ir.Type{Kind: ir.KindPrimitive, Primitive: ir.PrimBoolean}
		case s.Type.Is(openapi3.TypeNull):
			return &ir.Type{Kind: ir.KindPrimitive, Primitive: ir.PrimNull}
		}
	}
	return ir.Unknown()
}

func (c *converter) union(subs openapi3.SchemaRefs) *ir.Type {
	variants := make([]*ir.Type, 0, len(subs))
	for _, sub := range subs {
		if sub == nil {
			continue
		}
		variants = append(variants, c.convert(sub))
	}
	return &ir.Type{Kind: ir.KindUnion, Variants: variants}
}

// allOfMerge accumulates one flattened allOf composition: union of
// required names, key-wise property merge with the later schema
// winning, and a visited set so reference chains terminate.
type allOfMerge struct {
	requiredSet map[string]bool
	propSchemas map[string]*openapi3.SchemaRef
	order       []string
	addl        *openapi3.SchemaRef
	seen        map[string]bool
}

// mergeAllOf flattens allOf composition into one synthetic object,
// recursing into components that are themselves allOf compositions.
// A subschema referencing a type whose registration is still in progress is
// skipped rather than expanded, which keeps directly recursive named types
// bounded during construction.
func (c *converter) mergeAllOf(s *openapi3.Schema) *ir.Type {
	m := &allOfMerge{
		requiredSet: map[string]bool{},
		propSchemas: map[string]*openapi3.SchemaRef{},
		seen:        map[string]bool{},
	}
	c.collectAllOf(s.AllOf, m)

	props := make([]ir.Property, 0, len(m.order))
	for _, name := range m.order {
		props = append(props, ir.Property{
			Name:     name,
			Type:     c.convert(m.propSchemas[name]),
			Required: m.requiredSet[name],
		})
	}
	out := &ir.Type{Kind: ir.KindObject, Properties: props}
	if m.addl != nil {
		out.AdditionalProperties = c.convert(m.addl)
	}
	return out
}

func (c *converter) collectAllOf(subs openapi3.SchemaRefs, m *allOfMerge) {
	for _, sub := range subs {
		if sub == nil {
			continue
		}
		if sub.Ref != "" {
			name := refName(sub.Ref)
			if c.building[name] || m.seen[name] {
				continue
			}
			m.seen[name] = true
		}
		v := sub.Value
		if v == nil {
			continue
		}
		// Nested compositions contribute first; the component's own
		// members win over them.
		if len(v.AllOf) > 0 {
			c.collectAllOf(v.AllOf, m)
		}
		for _, r := range v.Required {
			m.requiredSet[r] = true
		}
		for _, name := range sortedKeys(v.Properties) {
			if _, ok := m.propSchemas[name]; !ok {
				m.order = append(m.order, name)
			}
			m.propSchemas[name] = v.Properties[name]
		}
		if v.AdditionalProperties.Schema != nil {
			m.addl = v.AdditionalProperties.Schema
		}
	}
}

func isObjectShape(s *openapi3.Schema) bool {
	if s.Type != nil && s.Type.Is(openapi3.TypeObject) {
		return true
	}
	if len(s.Properties) > 0 {
		return true
	}
	if s.AdditionalProperties.Schema != nil {
		return true
	}
	return s.AdditionalProperties.Has != nil && *s.AdditionalProperties.Has
}

func (c *converter) object(s *openapi3.Schema) *ir.Type {
	requiredSet := map[string]bool{}
	for _, r := range s.Required {
		requiredSet[r] = true
	}
	names := sortedKeys(s.Properties)
	props := make([]ir.Property, 0, len(names))
	for _, name := range names {
		props = append(props, ir.Property{
			Name:     name,
			Type:     c.convert(s.Properties[name]),
			Required: requiredSet[name],
		})
	}
	out := &ir.Type{Kind: ir.KindObject, Properties: props}
	if s.AdditionalProperties.Schema != nil {
		out.AdditionalProperties = c.convert(s.AdditionalProperties.Schema)
	} else if s.AdditionalProperties.Has != nil && *s.AdditionalProperties.Has {
		out.AdditionalProperties = ir.Unknown()
	}
	return out
}

func (c *converter) buildOperation(method, path string, item *openapi3.PathItem, op *openapi3.Operation) *ir.Operation {
	id := op.OperationID
	if id == "" {
		id = deriveOperationID(method, path)
	}

	out := &ir.Operation{
		ID:         id,
		Method:     method,
		Path:       path,
		Tags:       append([]string(nil), op.Tags...),
		Deprecated: op.Deprecated,
	}

	for _, pr := range mergeParameters(item.Parameters, op.Parameters) {
		p := pr.Value
		param := ir.Param{
			Name:     p.Name,
			Required: p.Required || p.In == openapi3.ParameterInPath,
			Type:     c.paramType(p),
		}
		switch p.In {
		case openapi3.ParameterInPath:
			param.In = ir.InPath
			out.PathParams = append(out.PathParams, param)
		case openapi3.ParameterInQuery:
			param.In = ir.InQuery
			out.QueryParams = append(out.QueryParams, param)
		case openapi3.ParameterInHeader:
			param.In = ir.InHeader
			out.HeaderParams = append(out.HeaderParams, param)
		}
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		if sr := pickContentSchema(op.RequestBody.Value.Content); sr != nil {
			out.RequestBody = c.convert(sr)
		}
	}

	out.Response = c.responseType(op)
	return out
}

func (c *converter) paramType(p *openapi3.Parameter) *ir.Type {
	if p.Schema != nil {
		return c.convert(p.Schema)
	}
	if sr := pickContentSchema(p.Content); sr != nil {
		return c.convert(sr)
	}
	return ir.Unknown()
}

// responseType resolves the success response schema: 200, then 201, then
// the first 2xx status, then default. No content means unknown.
func (c *converter) responseType(op *openapi3.Operation) *ir.Type {
	if op.Responses == nil {
		return ir.Unknown()
	}
	responses := op.Responses.Map()

	candidates := []string{"200", "201"}
	var twoxx []string
	for code := range responses {
		if code != "200" && code != "201" && strings.HasPrefix(code, "2") {
			twoxx = append(twoxx, code)
		}
	}
	sort.Strings(twoxx)
	candidates = append(candidates, twoxx...)
	candidates = append(candidates, "default")

	for _, code := range candidates {
		rr, ok := responses[code]
		if !ok || rr == nil || rr.Value == nil {
			continue
		}
		if sr := pickContentSchema(rr.Value.Content); sr != nil {
			return c.convert(sr)
		}
		return ir.Unknown()
	}
	return ir.Unknown()
}

// mergeParameters combines path-level and operation-level parameters; the
// operation wins on a shared (location, name) key.
func mergeParameters(pathParams, opParams openapi3.Parameters) []*openapi3.ParameterRef {
	var merged []*openapi3.ParameterRef
	index := map[[2]string]int{}
	add := func(refs openapi3.Parameters) {
		for _, pr := range refs {
			if pr == nil || pr.Value == nil {
				continue
			}
			key := [2]string{pr.Value.In, pr.Value.Name}
			if i, ok := index[key]; ok {
				merged[i] = pr
				continue
			}
			index[key] = len(merged)
			merged = append(merged, pr)
		}
	}
	add(pathParams)
	add(opParams)
	return merged
}

func pickContentSchema(content openapi3.Content) *openapi3.SchemaRef {
	if media, ok := content["application/json"]; ok && media != nil && media.Schema != nil {
		return media.Schema
	}
	for _, ct := range sortedKeys(content) {
		if media := content[ct]; media != nil && media.Schema != nil {
			return media.Schema
		}
	}
	return nil
}

func enumValues(raw []any) []any {
	out := make([]any, 0, len(raw))
	for _, v := range raw {
		switch v.(type) {
		case string, float64, float32, int, int32, int64, uint64:
			out = append(out, v)
		}
	}
	return out
}

func refName(ref string) string {
	parts := strings.Split(ref, "/")
	return parts[len(parts)-1]
}

func deriveOperationID(method, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for _, seg := range strings.Split(path, "/") {
		seg = strings.Trim(seg, "{}")
		seg = strings.TrimPrefix(seg, ":")
		for _, word := range strings.FieldsFunc(seg, isWordBreak) {
			b.WriteString(strings.ToUpper(word[:1]))
			b.WriteString(word[1:])
		}
	}
	return b.String()
}

func isWordBreak(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
