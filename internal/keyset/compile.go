package keyset

import (
	"fmt"
	"strings"

	"github.com/roach88/mise/internal/model"
)

// Compiler compiles a Select to parameterized SQL.
//
// Every query ends with ORDER BY <column> <dir>, id <dir> LIMIT ?. Values
// are never interpolated.
type Compiler struct {
	Dialect Dialect
}

// NewCompiler creates a Compiler for the given dialect.
func NewCompiler(d Dialect) *Compiler {
	return &Compiler{Dialect: d}
}

// Compile converts a Select to SQL and its bind parameters.
func (c *Compiler) Compile(q Select) (string, []any, error) {
	if !isIdent(q.From) {
		return "", nil, fmt.Errorf("invalid table name %q", q.From)
	}
	if len(q.Columns) == 0 {
		return "", nil, fmt.Errorf("select from %s: no columns", q.From)
	}
	for _, col := range q.Columns {
		if !isIdent(col) {
			return "", nil, fmt.Errorf("invalid column name %q", col)
		}
	}
	if q.Limit < 1 {
		return "", nil, fmt.Errorf("select from %s: limit must be positive, got %d", q.From, q.Limit)
	}

	var (
		where  []string
		params []any
	)
	for _, f := range q.Filters {
		if f == nil {
			continue
		}
		sql, args, err := c.compilePredicate(f)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		where = append(where, sql)
		params = append(params, args...)
	}
	if q.Seek != nil {
		sql, args, err := c.compileSeek(*q.Seek)
		if err != nil {
			return "", nil, fmt.Errorf("compile seek: %w", err)
		}
		where = append(where, sql)
		params = append(params, args...)
	}

	orderBy, err := c.orderBy(q.Sort)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(q.Columns, ", "), q.From)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(orderBy)
	b.WriteString(" LIMIT ?")
	params = append(params, q.Limit)

	return c.Dialect.Rebind(b.String()), params, nil
}

// orderBy always appends the id tiebreaker in the primary direction.
func (c *Compiler) orderBy(o OrderBy) (string, error) {
	dir, err := direction(o.Order)
	if err != nil {
		return "", err
	}
	if o.Column == "" || o.Column == IDColumn {
		return IDColumn + " " + dir, nil
	}
	if !isIdent(o.Column) {
		return "", fmt.Errorf("invalid sort column %q", o.Column)
	}
	return fmt.Sprintf("%s %s, %s %s", o.Column, dir, IDColumn, dir), nil
}

func (c *Compiler) compilePredicate(p Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case In:
		return c.compileIn(pred)
	case *In:
		return c.compileIn(*pred)
	case Equals:
		return c.compileEquals(pred)
	case *Equals:
		return c.compileEquals(*pred)
	case Contains:
		return c.compileContains(pred)
	case *Contains:
		return c.compileContains(*pred)
	case Seek:
		return c.compileSeek(pred)
	case *Seek:
		return c.compileSeek(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *Compiler) compileIn(in In) (string, []any, error) {
	if !isIdent(in.Column) {
		return "", nil, fmt.Errorf("invalid column name %q", in.Column)
	}
	if len(in.Values) == 0 {
		return "1 = 0", nil, nil
	}
	marks := make([]string, len(in.Values))
	params := make([]any, len(in.Values))
	for i, v := range in.Values {
		marks[i] = "?"
		params[i] = v
	}
	return fmt.Sprintf("%s IN (%s)", in.Column, strings.Join(marks, ", ")), params, nil
}

func (c *Compiler) compileEquals(eq Equals) (string, []any, error) {
	if !isIdent(eq.Column) {
		return "", nil, fmt.Errorf("invalid column name %q", eq.Column)
	}
	return eq.Column + " = ?", []any{eq.Value}, nil
}

func (c *Compiler) compileContains(ct Contains) (string, []any, error) {
	if !isIdent(ct.Column) {
		return "", nil, fmt.Errorf("invalid column name %q", ct.Column)
	}
	pattern := "%" + EscapeLike(ct.Substring) + "%"
	return fmt.Sprintf(`%s LIKE ? ESCAPE '\'`, ct.Column), []any{pattern}, nil
}

func (c *Compiler) compileSeek(s Seek) (string, []any, error) {
	if !isIdent(s.Column) {
		return "", nil, fmt.Errorf("invalid seek column %q", s.Column)
	}
	op, err := s.operator()
	if err != nil {
		return "", nil, err
	}
	sql := fmt.Sprintf("(%s, %s) %s (?, ?)", s.Column, IDColumn, op)
	return sql, []any{s.Value, s.ID}, nil
}

// operator is inclusive: the cursor row opens the next page.
func (s Seek) operator() (string, error) {
	switch s.Order {
	case model.Asc:
		return ">=", nil
	case model.Desc:
		return "<=", nil
	default:
		return "", model.NewValidationError(fmt.Sprintf("unknown sort order %q", s.Order))
	}
}

func direction(o model.SortOrder) (string, error) {
	switch o {
	case model.Asc, "":
		return "ASC", nil
	case model.Desc:
		return "DESC", nil
	default:
		return "", model.NewValidationError(fmt.Sprintf("unknown sort order %q", o))
	}
}

// EscapeLike escapes LIKE metacharacters with a backslash.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Where compiles a conjunction of predicates to a WHERE-clause fragment
// with "?" placeholders. The caller rebinds the complete statement.
func (c *Compiler) Where(preds ...Predicate) (string, []any, error) {
	var (
		parts  []string
		params []any
	)
	for _, p := range preds {
		if p == nil {
			continue
		}
		sql, args, err := c.compilePredicate(p)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, args...)
	}
	if len(parts) == 0 {
		return "1 = 1", nil, nil
	}
	return strings.Join(parts, " AND "), params, nil
}
