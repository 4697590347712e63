package analyzer

import "github.com/abdallaemadeldin/auto-api-hooks/ir"

// The name sets below are fixed and ordered: detection iterates them in
// declaration order and takes the first hit, so adding a name changes
// tie-breaks for operations matching several names at once.
var (
	cursorParams = []string{
		"cursor", "after", "before",
		"page_token", "pageToken",
		"next_token", "nextToken",
		"starting_after", "startingAfter",
		"ending_before", "endingBefore",
	}
	offsetParams = []string{"offset", "skip"}
	limitParams  = []string{
		"limit", "per_page", "perPage",
		"page_size", "pageSize", "size",
		"count", "max_results", "maxResults", "first",
	}
	pageParams = []string{"page", "page_number", "pageNumber", "p"}

	itemsFields = []string{
		"items", "data", "results", "records", "edges", "nodes",
		"entries", "list", "rows", "content", "hits",
	}
	cursorResponseFields = []string{
		"nextCursor", "next_cursor", "cursor",
		"nextPageToken", "next_page_token",
		"endCursor", "end_cursor",
		"nextToken", "next_token",
		"after", "next",
	}
	pageCountFields = []string{
		"totalPages", "total_pages",
		"totalCount", "total_count", "total",
		"pageCount", "page_count",
		"lastPage", "last_page",
	}

	// nestedContainers are response properties searched one level deep
	// for pagination metadata.
	nestedContainers = []string{"pagination", "meta", "page_info", "pageInfo"}
)

// DetectPagination classifies how an operation pages through results.
// It is pure and never fails: a nil result means not paginated or
// undetected. Write operations are never paginated, and an operation
// that already carries pagination info is returned unchanged.
func DetectPagination(op *ir.Operation) *ir.Pagination {
	return detect(op, op.Response)
}

// AnnotatePagination runs detection over every operation of a spec and
// returns an annotated copy. Existing annotations always win over the
// heuristic. Response types that are refs are resolved through the
// spec's type registry so that shape heuristics see the real object.
func AnnotatePagination(spec *ir.Spec) *ir.Spec {
	out := *spec
	out.Operations = make([]*ir.Operation, len(spec.Operations))
	for i, op := range spec.Operations {
		cp := *op
		cp.Pagination = detect(&cp, deref(spec.Types, cp.Response))
		out.Operations[i] = &cp
	}
	return &out
}

func detect(op *ir.Operation, response *ir.Type) *ir.Pagination {
	if op.Pagination != nil {
		return op.Pagination
	}
	if !op.IsRead() {
		return nil
	}

	// Cursor.
	if name := firstQueryParam(op, cursorParams); name != "" {
		next := findField(response, cursorResponseFields)
		if next == nil {
			next = []string{name}
		}
		return &ir.Pagination{
			Strategy:     ir.StrategyCursor,
			PageParam:    name,
			NextPagePath: next,
			ItemsPath:    itemsPath(response),
		}
	}

	// Offset-limit. An offset-like parameter without a limit-like
	// companion is not pagination at all; no fall-through.
	if name := firstQueryParam(op, offsetParams); name != "" {
		if firstQueryParam(op, limitParams) == "" {
			return nil
		}
		return &ir.Pagination{
			Strategy:     ir.StrategyOffsetLimit,
			PageParam:    name,
			NextPagePath: []string{name},
			ItemsPath:    itemsPath(response),
		}
	}

	// Page number.
	if name := firstQueryParam(op, pageParams); name != "" {
		next := findField(response, pageCountFields)
		if next == nil {
			next = []string{name}
		}
		return &ir.Pagination{
			Strategy:     ir.StrategyPageNumber,
			PageParam:    name,
			NextPagePath: next,
			ItemsPath:    itemsPath(response),
		}
	}

	// Shape-only fallback: a response that looks paginated even though
	// no parameter name matched. The parameter guess here is a fixed
	// first-match order and may not reflect the author's intent.
	if response == nil || response.Kind != ir.KindObject {
		return nil
	}
	next := findField(response, cursorResponseFields)
	items := itemsPath(response)
	if next == nil || len(items) == 0 {
		return nil
	}
	name := firstQueryParam(op, cursorParams)
	if name == "" {
		name = firstQueryParam(op, pageParams)
	}
	if name == "" {
		return nil
	}
	return &ir.Pagination{
		Strategy:     ir.StrategyCursor,
		PageParam:    name,
		NextPagePath: next,
		ItemsPath:    items,
	}
}

// firstQueryParam iterates names in their declared order and returns
// the first one present among the operation's query parameters.
func firstQueryParam(op *ir.Operation, names []string) string {
	present := map[string]bool{}
	for _, p := range op.QueryParams {
		present[p.Name] = true
	}
	for _, name := range names {
		if present[name] {
			return name
		}
	}
	return ""
}

// findField scans an object's direct properties for a name in the given
// set, then one level deeper inside known metadata containers. Returns
// the property path, or nil when nothing matches.
func findField(t *ir.Type, names []string) []string {
	if t == nil || t.Kind != ir.KindObject {
		return nil
	}
	direct := map[string]bool{}
	for _, p := range t.Properties {
		direct[p.Name] = true
	}
	for _, name := range names {
		if direct[name] {
			return []string{name}
		}
	}
	for _, container := range nestedContainers {
		inner := property(t, container)
		if inner == nil || inner.Kind != ir.KindObject {
			continue
		}
		nested := map[string]bool{}
		for _, p := range inner.Properties {
			nested[p.Name] = true
		}
		for _, name := range names {
			if nested[name] {
				return []string{container, name}
			}
		}
	}
	return nil
}

// itemsPath returns the name of the first direct response property that
// is in the items-field set and holds an array; empty when none.
func itemsPath(t *ir.Type) []string {
	if t == nil || t.Kind != ir.KindObject {
		return nil
	}
	for _, name := range itemsFields {
		if p := property(t, name); p != nil && p.Kind == ir.KindArray {
			return []string{name}
		}
	}
	return nil
}

func property(t *ir.Type, name string) *ir.Type {
	for _, p := range t.Properties {
		if p.Name == name {
			return p.Type
		}
	}
	return nil
}

func deref(types map[string]*ir.Type, t *ir.Type) *ir.Type {
	for i := 0; t != nil && t.Kind == ir.KindRef && i < 8; i++ {
		t = types[t.Ref]
	}
	return t
}
