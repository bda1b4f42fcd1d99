package listq

import (
	"sort"
	"strconv"
	"strings"
)

// Predicate is a SQL WHERE fragment with its bind arguments. A zero
// Predicate means match-all.
type Predicate struct {
	Where string
	Args  []any
}

// IsEmpty reports whether the predicate matches everything.
func (p Predicate) IsEmpty() bool { return p.Where == "" }

// Build combines the search predicate and the filter predicate for the
// request with AND. Either half may be absent; when both are, the result is
// the match-all predicate. Build never fails, whatever the client sent.
func Build(reg Registry, req Request) Predicate {
	search := buildSearch(reg, req.Search)
	filter := buildFilters(reg, req.Filters)

	switch {
	case search.IsEmpty():
		return filter
	case filter.IsEmpty():
		return search
	default:
		return Predicate{
			Where: "(" + search.Where + ") AND (" + filter.Where + ")",
			Args:  append(search.Args, filter.Args...),
		}
	}
}

// buildSearch OR-combines a case-insensitive substring match across every
// searchable field in the registry.
func buildSearch(reg Registry, term string) Predicate {
	term = strings.TrimSpace(term)
	if term == "" {
		return Predicate{}
	}

	pattern := "%" + strings.ToLower(term) + "%"

	var clauses []string
	var args []any
	for _, name := range sortedFields(reg) {
		f := reg[name]
		if !f.Searchable {
			continue
		}
		clauses = append(clauses, "lower("+f.Column+") LIKE ?")
		args = append(args, pattern)
	}
	if len(clauses) == 0 {
		return Predicate{}
	}
	return Predicate{Where: strings.Join(clauses, " OR "), Args: args}
}

// buildFilters AND-combines one clause per filter entry, dispatching on the
// field's declared type. Unknown fields and unparsable values are skipped.
func buildFilters(reg Registry, filters map[string]string) Predicate {
	if len(filters) == 0 {
		return Predicate{}
	}

	var clauses []string
	var args []any

	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := strings.TrimSpace(filters[name])
		if value == "" {
			continue
		}
		f, ok := reg[name]
		if !ok {
			continue
		}

		switch f.Type {
		case Bool:
			switch {
			case strings.EqualFold(value, "true"):
				clauses = append(clauses, f.Column+" = ?")
				args = append(args, 1)
			case strings.EqualFold(value, "false"):
				clauses = append(clauses, f.Column+" = ?")
				args = append(args, 0)
			}
			// Anything else is not a boolean; skip.

		case Int:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				continue
			}
			clauses = append(clauses, f.Column+" = ?")
			args = append(args, n)

		case String:
			if strings.ContainsAny(value, "%*") {
				// Pattern match; * is normalized to the SQL wildcard.
				pattern := strings.ToLower(strings.ReplaceAll(value, "*", "%"))
				clauses = append(clauses, "lower("+f.Column+") LIKE ?")
				args = append(args, pattern)
			} else {
				clauses = append(clauses, "lower("+f.Column+") = ?")
				args = append(args, strings.ToLower(value))
			}
		}
	}

	if len(clauses) == 0 {
		return Predicate{}
	}
	return Predicate{Where: strings.Join(clauses, " AND "), Args: args}
}

// sortedFields keeps clause order deterministic; map iteration order is not.
func sortedFields(reg Registry) []string {
	names := make([]string, 0, len(reg))
	for name := range reg {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
