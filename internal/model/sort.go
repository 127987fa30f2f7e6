package model

import (
	"fmt"
	"strings"
)

// SortField is the closed set of columns a recipe listing may be sorted by.
// Client-supplied names are resolved through ParseSortField and never reach
// a query as text.
type SortField string

const (
	SortTitle     SortField = "title"
	SortUpdatedAt SortField = "updatedAt"
	SortCreatedAt SortField = "createdAt"
)

// SortFields lists every accepted sort field.
var SortFields = []SortField{SortTitle, SortUpdatedAt, SortCreatedAt}

// ValueKind is the value domain of a sort field.
type ValueKind int

const (
	KindString ValueKind = iota + 1
	KindTime
	KindInteger
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindTime:
		return "timestamp"
	case KindInteger:
		return "integer"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// ParseSortField resolves a client-supplied sort field name.
func ParseSortField(s string) (SortField, error) {
	for _, f := range SortFields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", NewValidationError(fmt.Sprintf("unknown sort field %q: must be one of %v", s, SortFields))
}

// Valid reports whether f is in the closed set.
func (f SortField) Valid() bool {
	for _, known := range SortFields {
		if f == known {
			return true
		}
	}
	return false
}

// ValueKind returns the value domain of the field: textual fields are
// strings, time fields are timestamps, everything else is an integer.
func (f SortField) ValueKind() ValueKind {
	switch f {
	case SortTitle:
		return KindString
	case SortUpdatedAt, SortCreatedAt:
		return KindTime
	default:
		return KindInteger
	}
}

// SortOrder is the direction of a listing.
type SortOrder string

const (
	Asc  SortOrder = "ASC"
	Desc SortOrder = "DESC"
)

// ParseSortOrder resolves a client-supplied sort order, case-insensitively.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToUpper(s)) {
	case Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	default:
		return "", NewValidationError(fmt.Sprintf("unknown sort order %q: must be ASC or DESC", s))
	}
}

// Valid reports whether o is ASC or DESC.
func (o SortOrder) Valid() bool {
	return o == Asc || o == Desc
}
