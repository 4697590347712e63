// Package analyzer holds the passes that run over a completed IR:
// reference-cycle detection over the named-type registry, pagination
// inference over operations, and resource grouping for cache keys.
// Every pass is pure; annotated results are new values, never in-place
// mutations of the input.
package analyzer

import (
	"sort"

	"github.com/abdallaemadeldin/auto-api-hooks/ir"
)

// CircularTypes returns the sorted names of every registered type that
// participates in at least one reference cycle. The result is advisory
// metadata for emitters, which must defer evaluation of flagged
// references; nothing is stored back on the types themselves.
func CircularTypes(types map[string]*ir.Type) []string {
	deps := make(map[string][]string, len(types))
	for name, t := range types {
		refs := map[string]bool{}
		collectRefs(t, refs)
		var out []string
		for ref := range refs {
			if _, ok := types[ref]; ok {
				out = append(out, ref)
			}
		}
		sort.Strings(out)
		deps[name] = out
	}

	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)

	circular := map[string]bool{}
	visited := map[string]bool{}

	type frame struct {
		name string
		next int
	}

	for _, start := range names {
		if visited[start] {
			continue
		}
		stack := []frame{{name: start}}
		onStack := map[string]int{start: 0}
		visited[start] = true

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(deps[top.name]) {
				child := deps[top.name][top.next]
				top.next++
				if pos, ok := onStack[child]; ok {
					// Everything from the child's stack position to the
					// top is on the cycle.
					for i := pos; i < len(stack); i++ {
						circular[stack[i].name] = true
					}
					continue
				}
				if visited[child] {
					continue
				}
				visited[child] = true
				onStack[child] = len(stack)
				stack = append(stack, frame{name: child})
				continue
			}
			delete(onStack, top.name)
			stack = stack[:len(stack)-1]
		}
	}

	out := make([]string, 0, len(circular))
	for name := range circular {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// collectRefs gathers every ref name occurring inside one type's own
// structure. Other named types' bodies are separate graph nodes and are
// not followed.
func collectRefs(t *ir.Type, refs map[string]bool) {
	if t == nil {
		return
	}
	switch t.Kind {
	case ir.KindRef:
		refs[t.Ref] = true
	case ir.KindObject:
		for _, p := range t.Properties {
			collectRefs(p.Type, refs)
		}
		collectRefs(t.AdditionalProperties, refs)
	case ir.KindArray:
		collectRefs(t.Items, refs)
	case ir.KindUnion:
		for _, v := range t.Variants {
			collectRefs(v, refs)
		}
	}
}
