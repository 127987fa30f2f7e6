package keyset

import "github.com/roach88/mise/internal/model"

// Predicate is a WHERE-clause condition.
//
// This is a sealed interface; only types in this package implement it, so
// the compiler's type switch is exhaustive.
type Predicate interface {
	predicateNode()
}

// Select describes a single-table listing query.
//
//	SELECT <columns> FROM <from>
//	WHERE <filters...> AND <seek>
//	ORDER BY <sort column> <dir>, id <dir>
//	LIMIT <limit>
type Select struct {
	From    string      // table name
	Columns []string    // selected columns, in scan order
	Filters []Predicate // conjunction; nil entries are ignored
	Sort    OrderBy     // primary ordering; id is always appended
	Seek    *Seek       // nil on the first page
	Limit   int         // must be positive
}

// OrderBy is the primary ordering of a Select.
type OrderBy struct {
	Column string
	Order  model.SortOrder
}

// Seek is the composite keyset predicate (column, id) op (value, id).
type Seek struct {
	Column string
	Order  model.SortOrder
	Value  any
	ID     string
}

func (Seek) predicateNode() {}

// In restricts a column to a set of values. An empty set matches nothing.
type In struct {
	Column string
	Values []string
}

func (In) predicateNode() {}

// Equals compares a column to a single value.
type Equals struct {
	Column string
	Value  any
}

func (Equals) predicateNode() {}

// Contains is a substring match of Column against Substring as given.
// LIKE wildcards in Substring match literally. Case-insensitive search
// stores a folded column and folds Substring the same way.
type Contains struct {
	Column    string
	Substring string
}

func (Contains) predicateNode() {}
