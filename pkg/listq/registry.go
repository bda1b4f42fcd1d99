package listq

// FieldType declares how filter values against a field are interpreted.
type FieldType int

const (
	String FieldType = iota
	Int
	Bool
)

// Field describes one filterable/searchable field of an entity: the column
// it maps to and the type-aware filter semantics it gets.
type Field struct {
	Column     string
	Type       FieldType
	Searchable bool // included in free-text search OR-combination
	Sortable   bool
}

// Registry is the explicit allow-list of fields exposed to list requests for
// one entity. Anything a client names that is not registered here is
// silently ignored; the registry is the whole attack surface.
type Registry map[string]Field

// SortColumn resolves the request's sort field against the registry,
// falling back to the given default column when the field is unknown or not
// sortable.
func (reg Registry) SortColumn(field, fallback string) string {
	if f, ok := reg[field]; ok && f.Sortable {
		return f.Column
	}
	return fallback
}
