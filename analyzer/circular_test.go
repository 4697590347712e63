package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abdallaemadeldin/auto-api-hooks/ir"
)

func ref(name string) *ir.Type {
	return &ir.Type{Kind: ir.KindRef, Ref: name}
}

func object(props ...ir.Property) *ir.Type {
	return &ir.Type{Kind: ir.KindObject, Properties: props}
}

func prop(name string, t *ir.Type) ir.Property {
	return ir.Property{Name: name, Type: t}
}

func TestCircularTypesMutualCycle(t *testing.T) {
	types := map[string]*ir.Type{
		"A": object(prop("b", ref("B"))),
		"B": object(prop("a", ref("A"))),
	}
	assert.Equal(t, []string{"A", "B"}, CircularTypes(types))
}

func TestCircularTypesChainWithoutCycle(t *testing.T) {
	types := map[string]*ir.Type{
		"A": object(prop("b", ref("B"))),
		"B": object(prop("c", ref("C"))),
		"C": {Kind: ir.KindPrimitive, Primitive: ir.PrimString},
	}
	assert.Empty(t, CircularTypes(types))
}

func TestCircularTypesSelfReference(t *testing.T) {
	types := map[string]*ir.Type{
		"Node": object(
			prop("value", &ir.Type{Kind: ir.KindPrimitive, Primitive: ir.PrimString}),
			prop("children", &ir.Type{Kind: ir.KindArray, Items: ref("Node")}),
		),
	}
	assert.Equal(t, []string{"Node"}, CircularTypes(types))
}

func TestCircularTypesCycleWithTail(t *testing.T) {
	// D points into a cycle but is not part of it.
	types := map[string]*ir.Type{
		"A": object(prop("b", ref("B"))),
		"B": object(prop("c", ref("C"))),
		"C": object(prop("a", ref("A"))),
		"D": object(prop("a", ref("A"))),
	}
	assert.Equal(t, []string{"A", "B", "C"}, CircularTypes(types))
}

func TestCircularTypesRefsInsideUnionsAndAdditionalProperties(t *testing.T) {
	types := map[string]*ir.Type{
		"U": {Kind: ir.KindUnion, Variants: []*ir.Type{ref("V")}},
		"V": {Kind: ir.KindObject, AdditionalProperties: ref("U")},
	}
	assert.Equal(t, []string{"U", "V"}, CircularTypes(types))
}

func TestCircularTypesIgnoresUnknownRefs(t *testing.T) {
	types := map[string]*ir.Type{
		"A": object(prop("x", ref("Missing"))),
	}
	assert.Empty(t, CircularTypes(types))
}

func TestCircularTypesEmptyRegistry(t *testing.T) {
	assert.Empty(t, CircularTypes(map[string]*ir.Type{}))
}
