package cursor

import (
	"fmt"
	"time"

	"github.com/roach88/mise/internal/model"
)

// Value is the sort-column value carried by a cursor. Exactly one of the
// string, time or integer representations is meaningful, selected by Kind.
type Value struct {
	kind model.ValueKind
	s    string
	t    time.Time
	i    int64
}

// StringValue creates a textual value.
func StringValue(s string) Value {
	return Value{kind: model.KindString, s: s}
}

// TimeValue creates a timestamp value. The time is stored in UTC so that a
// decoded value is identical to the encoded one.
func TimeValue(t time.Time) Value {
	return Value{kind: model.KindTime, t: t.UTC()}
}

// IntValue creates an integer value.
func IntValue(i int64) Value {
	return Value{kind: model.KindInteger, i: i}
}

// Kind returns the value domain.
func (v Value) Kind() model.ValueKind { return v.kind }

// Str returns the textual value.
func (v Value) Str() string { return v.s }

// Time returns the timestamp value.
func (v Value) Time() time.Time { return v.t }

// Int returns the integer value.
func (v Value) Int() int64 { return v.i }

// Interface returns the value as string, time.Time or int64.
func (v Value) Interface() any {
	switch v.kind {
	case model.KindString:
		return v.s
	case model.KindTime:
		return v.t
	case model.KindInteger:
		return v.i
	default:
		return nil
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case model.KindString:
		return v.s == o.s
	case model.KindTime:
		return v.t.Equal(o.t)
	case model.KindInteger:
		return v.i == o.i
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case model.KindString:
		return fmt.Sprintf("%q", v.s)
	case model.KindTime:
		return v.t.Format(time.RFC3339Nano)
	case model.KindInteger:
		return fmt.Sprintf("%d", v.i)
	default:
		return "<invalid>"
	}
}
