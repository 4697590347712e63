package analyzer

import (
	"sort"

	"github.com/abdallaemadeldin/auto-api-hooks/ir"
	"github.com/abdallaemadeldin/auto-api-hooks/naming"
)

// ResourceKeys describes the cache-key namespace of one logical
// resource: its singular and plural forms and which read shapes exist.
// A resource can have both a list and a detail endpoint.
type ResourceKeys struct {
	Resource  string
	Singular  string
	Plural    string
	HasList   bool
	HasDetail bool
}

// DeriveResourceKeys groups read operations by the resource their path
// acts on and records the shapes present per resource. Write operations
// are ignored. Results are sorted by resource name.
func DeriveResourceKeys(ops []*ir.Operation) []ResourceKeys {
	byResource := map[string]*ResourceKeys{}
	for _, op := range ops {
		if !op.IsRead() {
			continue
		}
		resource := naming.ExtractResource(op.Path)
		rk, ok := byResource[resource]
		if !ok {
			singular := naming.Singularize(resource)
			rk = &ResourceKeys{
				Resource: resource,
				Singular: singular,
				Plural:   naming.Pluralize(singular),
			}
			byResource[resource] = rk
		}
		if naming.IsDetailPath(op.Path) {
			rk.HasDetail = true
		} else {
			rk.HasList = true
		}
	}

	out := make([]ResourceKeys, 0, len(byResource))
	for _, rk := range byResource {
		out = append(out, *rk)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Resource < out[j].Resource })
	return out
}
