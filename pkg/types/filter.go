package types

import "fmt"

// Category filter values other than a category id
const (
	CategoryFilterAll           = ""
	CategoryFilterUncategorized = "uncategorized"
)

// NameOperator selects how NamePattern is matched
type NameOperator string

const (
	NameContains   NameOperator = "contains"
	NameStartsWith NameOperator = "startsWith"
	NameEndsWith   NameOperator = "endsWith"
	NameExact      NameOperator = "exact"
)

// SizeOperator selects how the size bounds are applied
type SizeOperator string

const (
	SizeLargerThan SizeOperator = "largerThan"
	SizeLessThan   SizeOperator = "lessThan"
	SizeBetween    SizeOperator = "between"
)

// FilterOptions is the user's filter selection. Every field is mandatory
// but may be empty; SizeValue and SizeValue2 are KB amounts as typed.
type FilterOptions struct {
	CategoryID   string       `json:"categoryId" yaml:"category_id"`
	NamePattern  string       `json:"namePattern" yaml:"name_pattern"`
	NameOperator NameOperator `json:"nameOperator" yaml:"name_operator"`
	SizeOperator SizeOperator `json:"sizeOperator" yaml:"size_operator"`
	SizeValue    string       `json:"sizeValue" yaml:"size_value"`
	SizeValue2   string       `json:"sizeValue2" yaml:"size_value2"`
}

// DefaultFilters returns filters that keep every image
func DefaultFilters() FilterOptions {
	return FilterOptions{
		NameOperator: NameContains,
		SizeOperator: SizeLargerThan,
	}
}

// SortField is the key images are ordered by
type SortField string

const (
	SortName            SortField = "name"
	SortDateCreated     SortField = "dateCreated"
	SortLastCategorized SortField = "lastCategorized"
	SortSize            SortField = "size"
)

// SortFields lists every sort key in menu order
func SortFields() []SortField {
	return []SortField{SortName, SortDateCreated, SortLastCategorized, SortSize}
}

// SortDirection orders ascending or descending
type SortDirection string

const (
	Ascending  SortDirection = "ascending"
	Descending SortDirection = "descending"
)

// SortOption combines a key and a direction
type SortOption struct {
	Field     SortField     `json:"field" yaml:"field"`
	Direction SortDirection `json:"direction" yaml:"direction"`
}

// DefaultSort orders by name, ascending
func DefaultSort() SortOption {
	return SortOption{Field: SortName, Direction: Ascending}
}

// ParseSortField validates a sort key name
func ParseSortField(s string) (SortField, error) {
	for _, f := range SortFields() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown sort option: %q", s)
}

// ParseSortDirection validates a direction name
func ParseSortDirection(s string) (SortDirection, error) {
	switch SortDirection(s) {
	case Ascending, Descending:
		return SortDirection(s), nil
	case "asc":
		return Ascending, nil
	case "desc":
		return Descending, nil
	}
	return "", fmt.Errorf("unknown sort direction: %q", s)
}
