// Package swagger2 normalizes legacy Swagger 2.0 documents into the
// canonical IR. It carries its own document model: the v2 format keeps
// parameter types outside JSON Schema and hosts named types under
// #/definitions, so nothing here is shared with the v3 normalizer.
package swagger2

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/abdallaemadeldin/auto-api-hooks/ir"
)

// Detect reports whether the payload declares a Swagger 2.0 version field.
func Detect(raw []byte) bool {
	var probe struct {
		Swagger string `yaml:"swagger" json:"swagger"`
	}
	if err := yaml.Unmarshal(raw, &probe); err != nil {
		return false
	}
	return probe.Swagger != ""
}

type document struct {
	Swagger     string                 `yaml:"swagger"`
	Info        docInfo                `yaml:"info"`
	Host        string                 `yaml:"host"`
	BasePath    string                 `yaml:"basePath"`
	Schemes     []string               `yaml:"schemes"`
	Paths       map[string]pathItem    `yaml:"paths"`
	Definitions map[string]*schemaNode `yaml:"definitions"`
}

type docInfo struct {
	Title   string `yaml:"title"`
	Version string `yaml:"version"`
}

type pathItem struct {
	Get        *operation   `yaml:"get"`
	Put        *operation   `yaml:"put"`
	Post       *operation   `yaml:"post"`
	Delete     *operation   `yaml:"delete"`
	Options    *operation   `yaml:"options"`
	Head       *operation   `yaml:"head"`
	Patch      *operation   `yaml:"patch"`
	Parameters []*parameter `yaml:"parameters"`
}

type operation struct {
	OperationID string               `yaml:"operationId"`
	Tags        []string             `yaml:"tags"`
	Deprecated  bool                 `yaml:"deprecated"`
	Parameters  []*parameter         `yaml:"parameters"`
	Responses   map[string]*response `yaml:"responses"`
}

// parameter is a v2 parameter: non-body parameters describe their type
// inline, body parameters carry a schema.
type parameter struct {
	Name     string      `yaml:"name"`
	In       string      `yaml:"in"`
	Required bool        `yaml:"required"`
	Type     string      `yaml:"type"`
	Format   string      `yaml:"format"`
	Enum     []any       `yaml:"enum"`
	Items    *schemaNode `yaml:"items"`
	Schema   *schemaNode `yaml:"schema"`
}

type response struct {
	Description string      `yaml:"description"`
	Schema      *schemaNode `yaml:"schema"`
}

type schemaNode struct {
	Ref                  string          `yaml:"$ref"`
	Type                 string          `yaml:"type"`
	Format               string          `yaml:"format"`
	Enum                 []any           `yaml:"enum"`
	Items                *schemaNode     `yaml:"items"`
	Properties           propertyList    `yaml:"properties"`
	Required             []string        `yaml:"required"`
	AllOf                []*schemaNode   `yaml:"allOf"`
	OneOf                []*schemaNode   `yaml:"oneOf"`
	AnyOf                []*schemaNode   `yaml:"anyOf"`
	AdditionalProperties additionalProps `yaml:"additionalProperties"`
}

// propertyList decodes a properties mapping while keeping document
// order: property order determines emitted field order downstream, so
// it cannot go through a Go map.
type propertyList struct {
	names  []string
	byName map[string]*schemaNode
}

func (p *propertyList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	p.byName = map[string]*schemaNode{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var name string
		if err := node.Content[i].Decode(&name); err != nil {
			continue
		}
		var s schemaNode
		if err := node.Content[i+1].Decode(&s); err != nil {
			continue
		}
		if _, ok := p.byName[name]; !ok {
			p.names = append(p.names, name)
		}
		p.byName[name] = &s
	}
	return nil
}

// additionalProps accepts the two shapes v2 allows: a boolean or a schema.
type additionalProps struct {
	Allowed *bool
	Schema  *schemaNode
}

func (a *additionalProps) UnmarshalYAML(node *yaml.Node) error {
	var b bool
	if err := node.Decode(&b); err == nil {
		a.Allowed = &b
		return nil
	}
	var s schemaNode
	if err := node.Decode(&s); err == nil {
		a.Schema = &s
	}
	// Unrecognized shapes are ignored; the field degrades to absent.
	return nil
}

// Normalize parses a Swagger 2.0 document (JSON or YAML; JSON is valid
// YAML) and converts it into the canonical IR. baseURL, when non-empty,
// overrides the host/basePath-derived base URL.
func Normalize(raw []byte, baseURL string) (*ir.Spec, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("swagger2: decode failed: %w", err)
	}
	if doc.Swagger == "" {
		return nil, fmt.Errorf("swagger2: missing swagger version")
	}

	c := &converter{
		defs:     doc.Definitions,
		types:    map[string]*ir.Type{},
		building: map[string]bool{},
	}
	for _, name := range sortedKeys(doc.Definitions) {
		c.register(name, doc.Definitions[name])
	}

	spec := &ir.Spec{
		Title:   doc.Info.Title,
		Version: doc.Info.Version,
		Types:   c.types,
	}
	spec.BaseURL = strings.TrimRight(baseURL, "/")
	if spec.BaseURL == "" && doc.Host != "" {
		scheme := "https"
		if len(doc.Schemes) > 0 {
			scheme = doc.Schemes[0]
		}
		spec.BaseURL = strings.TrimRight(scheme+"://"+doc.Host+doc.BasePath, "/")
	}

	for _, path := range sortedKeys(doc.Paths) {
		item := doc.Paths[path]
		methodOps := []*operation{
			item.Get, item.Post, item.Put, item.Patch,
			item.Delete, item.Options, item.Head,
		}
		methods := []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"}
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

type converter struct {
	defs     map[string]*schemaNode
	types    map[string]*ir.Type
	building map[string]bool
}

func (c *converter) register(name string, node *schemaNode) {
	c.building[name] = true
	t := c.convert(node)
	delete(c.building, name)
	if t.Kind == ir.KindObject || t.Kind == ir.KindEnum {
		t.Name = name
	}
	c.types[name] = t
}

func (c *converter) convert(node *schemaNode) *ir.Type {
	if node == nil {
		return ir.Unknown()
	}
	if node.Ref != "" {
		if name := refName(node.Ref); name != "" {
			return &ir.Type{Kind: ir.KindRef, Ref: name}
		}
		return ir.Unknown()
	}

	if len(node.OneOf) > 0 {
		return c.union(node.OneOf)
	}
	if len(node.AnyOf) > 0 {
		return c.union(node.AnyOf)
	}
	if len(node.AllOf) > 0 {
		return c.mergeAllOf(node)
	}
	if len(node.Enum) > 0 {
		return &ir.Type{Kind: ir.KindEnum, Values: enumValues(node.Enum)}
	}
	if node.Type == "array" || node.Items != nil {
		return &ir.Type{Kind: ir.KindArray, Items: c.convert(node.Items)}
	}
	if node.Type == "object" || len(node.Properties.names) > 0 ||
		node.AdditionalProperties.Schema != nil ||
		(node.AdditionalProperties.Allowed != nil && *node.AdditionalProperties.Allowed) {
		return c.object(node)
	}
	return scalar(node.Type, node.Format)
}

func (c *converter) union(subs []*schemaNode) *ir.Type {
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
	propSchemas map[string]*schemaNode
	order       []string
	addl        *schemaNode
	seen        map[string]bool
}

// mergeAllOf flattens allOf into one synthetic object. Referenced
// definitions are inlined, including definitions that are themselves
// allOf compositions; a reference to a definition whose own
// registration is still in progress stays unexpanded so that recursive
// definitions terminate.
func (c *converter) mergeAllOf(node *schemaNode) *ir.Type {
	m := &allOfMerge{
		requiredSet: map[string]bool{},
		propSchemas: map[string]*schemaNode{},
		seen:        map[string]bool{},
	}
	c.collectAllOf(node.AllOf, m)

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

func (c *converter) collectAllOf(subs []*schemaNode, m *allOfMerge) {
	for _, sub := range subs {
		if sub == nil {
			continue
		}
		body := sub
		if sub.Ref != "" {
			name := refName(sub.Ref)
			if c.building[name] || m.seen[name] {
				continue
			}
			m.seen[name] = true
			body = c.defs[name]
			if body == nil {
				continue
			}
		}
		// Nested compositions contribute first; the body's own members
		// win over them.
		if len(body.AllOf) > 0 {
			c.collectAllOf(body.AllOf, m)
		}
		for _, r := range body.Required {
			m.requiredSet[r] = true
		}
		for _, name := range body.Properties.names {
			if _, ok := m.propSchemas[name]; !ok {
				m.order = append(m.order, name)
			}
			m.propSchemas[name] = body.Properties.byName[name]
		}
		if body.AdditionalProperties.Schema != nil {
			m.addl = body.AdditionalProperties.Schema
		}
	}
}

func (c *converter) object(node *schemaNode) *ir.Type {
	requiredSet := map[string]bool{}
	for _, r := range node.Required {
		requiredSet[r] = true
	}
	props := make([]ir.Property, 0, len(node.Properties.names))
	for _, name := range node.Properties.names {
		props = append(props, ir.Property{
			Name:     name,
			Type:     c.convert(node.Properties.byName[name]),
			Required: requiredSet[name],
		})
	}
	out := &ir.Type{Kind: ir.KindObject, Properties: props}
	if node.AdditionalProperties.Schema != nil {
		out.AdditionalProperties = c.convert(node.AdditionalProperties.Schema)
	} else if node.AdditionalProperties.Allowed != nil && *node.AdditionalProperties.Allowed {
		out.AdditionalProperties = ir.Unknown()
	}
	return out
}

func (c *converter) buildOperation(method, path string, item pathItem, op *operation) *ir.Operation {
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

	var formData []*parameter
	for _, p := range mergeParameters(item.Parameters, op.Parameters) {
		switch p.In {
		case "body":
			out.RequestBody = c.convert(p.Schema)
			continue
		case "formData":
			formData = append(formData, p)
			continue
		}
		param := ir.Param{
			Name:     p.Name,
			Required: p.Required || p.In == "path",
			Type:     c.paramType(p),
		}
		switch p.In {
		case "path":
			param.In = ir.InPath
			out.PathParams = append(out.PathParams, param)
		case "query":
			param.In = ir.InQuery
			out.QueryParams = append(out.QueryParams, param)
		case "header":
			param.In = ir.InHeader
			out.HeaderParams = append(out.HeaderParams, param)
		}
	}

	// Form parameters travel in the request body: bundle them into one
	// synthetic object when no explicit body parameter claimed it.
	if len(formData) > 0 && out.RequestBody == nil {
		props := make([]ir.Property, 0, len(formData))
		for _, p := range formData {
			props = append(props, ir.Property{
				Name:     p.Name,
				Type:     c.paramType(p),
				Required: p.Required,
			})
		}
		out.RequestBody = &ir.Type{Kind: ir.KindObject, Properties: props}
	}

	out.Response = c.responseType(op)
	return out
}

// paramType converts a non-body parameter's inline type declaration.
func (c *converter) paramType(p *parameter) *ir.Type {
	if len(p.Enum) > 0 {
		return &ir.Type{Kind: ir.KindEnum, Values: enumValues(p.Enum)}
	}
	if p.Type == "array" || p.Items != nil {
		return &ir.Type{Kind: ir.KindArray, Items: c.convert(p.Items)}
	}
	return scalar(p.Type, p.Format)
}

func (c *converter) responseType(op *operation) *ir.Type {
	candidates := []string{"200", "201"}
	var twoxx []string
	for code := range op.Responses {
		if code != "200" && code != "201" && strings.HasPrefix(code, "2") {
			twoxx = append(twoxx, code)
		}
	}
	sort.Strings(twoxx)
	candidates = append(candidates, twoxx...)
	candidates = append(candidates, "default")

	for _, code := range candidates {
		resp, ok := op.Responses[code]
		if !ok || resp == nil {
			continue
		}
		if resp.Schema != nil {
			return c.convert(resp.Schema)
		}
		return ir.Unknown()
	}
	return ir.Unknown()
}

func mergeParameters(pathLevel, opLevel []*parameter) []*parameter {
	var merged []*parameter
	index := map[[2]string]int{}
	add := func(params []*parameter) {
		for _, p := range params {
			if p == nil {
				continue
			}
			key := [2]string{p.In, p.Name}
			if i, ok := index[key]; ok {
				merged[i] = p
				continue
			}
			index[key] = len(merged)
			merged = append(merged, p)
		}
	}
	add(pathLevel)
	add(opLevel)
	return merged
}

func scalar(typ, format string) *ir.Type {
	switch typ {
	case "string":
		return &ir.Type{Kind: ir.KindPrimitive, Primitive: ir.PrimString, Format: format}
	case "integer":
		return &ir.Type{Kind: ir.KindPrimitive, Primitive: ir.PrimInteger, Format: format}
	case "number":
		return &ir.Type{Kind: ir.KindPrimitive, Primitive: ir.PrimNumber, Format: format}
	case "boolean":
		return &ir.Type{Kind: ir.KindPrimitive, Primitive: ir.PrimBoolean}
	case "null":
		return &ir.Type{Kind: ir.KindPrimitive, Primitive: ir.PrimNull}
	}
	return ir.Unknown()
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
