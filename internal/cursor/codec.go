package cursor

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/mise/internal/ids"
	"github.com/roach88/mise/internal/model"
)

// MaxTokenLength bounds the size of a token accepted by Decode.
const MaxTokenLength = 2048

// Cursor identifies the first row of the next page under a given ordering.
type Cursor struct {
	LastValue Value
	SortOrder model.SortOrder
	SortField model.SortField
	LastID    string
}

// Equal reports whether two cursors designate the same position.
func (c Cursor) Equal(o Cursor) bool {
	return c.SortOrder == o.SortOrder &&
		c.SortField == o.SortField &&
		c.LastID == o.LastID &&
		c.LastValue.Equal(o.LastValue)
}

// wire keys, in emitted order.
var wireKeys = []string{"v", "o", "f", "i"}

type wire struct {
	V json.RawMessage `json:"v"`
	O string          `json:"o"`
	F string          `json:"f"`
	I string          `json:"i"`
}

// Encode serializes a cursor into an opaque URL-safe token.
//
// Encode refuses cursors Decode would reject, so every token it returns
// round-trips.
func Encode(c Cursor) (string, error) {
	if err := check(c); err != nil {
		return "", err
	}

	v, err := encodeValue(c.LastValue)
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(wire{
		V: v,
		O: string(c.SortOrder),
		F: string(c.SortField),
		I: c.LastID,
	})
	if err != nil {
		return "", fmt.Errorf("marshal cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode parses a token produced by Encode.
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, model.NewValidationError("cursor is empty")
	}
	if len(token) > MaxTokenLength {
		return Cursor{}, model.NewValidationError("cursor is too long")
	}

	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, model.WrapValidationError("cursor is not valid base64", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Cursor{}, model.WrapValidationError("cursor is not a JSON object", err)
	}
	for _, k := range wireKeys {
		raw, ok := fields[k]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return Cursor{}, model.NewValidationError(fmt.Sprintf("cursor is missing %q", k))
		}
	}
	if len(fields) != len(wireKeys) {
		return Cursor{}, model.NewValidationError("cursor has unexpected keys")
	}

	var order, field, lastID string
	if err := json.Unmarshal(fields["o"], &order); err != nil {
		return Cursor{}, model.WrapValidationError("cursor sort order is not a string", err)
	}
	if err := json.Unmarshal(fields["f"], &field); err != nil {
		return Cursor{}, model.WrapValidationError("cursor sort field is not a string", err)
	}
	if err := json.Unmarshal(fields["i"], &lastID); err != nil {
		return Cursor{}, model.WrapValidationError("cursor id is not a string", err)
	}

	c := Cursor{
		SortOrder: model.SortOrder(order),
		SortField: model.SortField(field),
		LastID:    lastID,
	}
	if !c.SortOrder.Valid() {
		return Cursor{}, model.NewValidationError(fmt.Sprintf("cursor has unknown sort order %q", order))
	}
	if !c.SortField.Valid() {
		return Cursor{}, model.NewValidationError(fmt.Sprintf("cursor has unknown sort field %q", field))
	}
	if !ids.Valid(lastID) {
		return Cursor{}, model.NewValidationError("cursor id is not a UUID")
	}

	c.LastValue, err = decodeValue(fields["v"], c.SortField.ValueKind())
	if err != nil {
		return Cursor{}, err
	}
	return c, nil
}

// Validate checks that a decoded cursor belongs to the requested ordering.
func Validate(c Cursor, field model.SortField, order model.SortOrder) error {
	if c.SortField != field {
		return model.NewConsistencyError(fmt.Sprintf(
			"cursor was issued for sort field %q, not %q", c.SortField, field))
	}
	if c.SortOrder != order {
		return model.NewConsistencyError(fmt.Sprintf(
			"cursor was issued for sort order %s, not %s", c.SortOrder, order))
	}
	return nil
}

func check(c Cursor) error {
	if !c.SortOrder.Valid() {
		return model.NewValidationError(fmt.Sprintf("unknown sort order %q", c.SortOrder))
	}
	if !c.SortField.Valid() {
		return model.NewValidationError(fmt.Sprintf("unknown sort field %q", c.SortField))
	}
	if !ids.Valid(c.LastID) {
		return model.NewValidationError(fmt.Sprintf("cursor id %q is not a UUID", c.LastID))
	}
	if want := c.SortField.ValueKind(); c.LastValue.Kind() != want {
		return model.NewValidationError(fmt.Sprintf(
			"sort field %q expects a %s value, got %s", c.SortField, want, c.LastValue.Kind()))
	}
	return nil
}

func encodeValue(v Value) (json.RawMessage, error) {
	var (
		data []byte
		err  error
	)
	switch v.Kind() {
	case model.KindString:
		data, err = json.Marshal(v.Str())
	case model.KindTime:
		data, err = json.Marshal(v.Time().Format(time.RFC3339Nano))
	case model.KindInteger:
		data, err = json.Marshal(v.Int())
	default:
		return nil, model.NewValidationError("cursor value has no kind")
	}
	if err != nil {
		return nil, fmt.Errorf("marshal cursor value: %w", err)
	}
	return data, nil
}

func decodeValue(raw json.RawMessage, kind model.ValueKind) (Value, error) {
	switch kind {
	case model.KindString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, model.WrapValidationError("cursor value is not a string", err)
		}
		return StringValue(s), nil

	case model.KindTime:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, model.WrapValidationError("cursor value is not a timestamp", err)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return Value{}, model.WrapValidationError("cursor value is not a timestamp", err)
		}
		return TimeValue(t), nil

	case model.KindInteger:
		var i int64
		if err := json.Unmarshal(raw, &i); err != nil {
			return Value{}, model.WrapValidationError("cursor value is not an integer", err)
		}
		return IntValue(i), nil

	default:
		return Value{}, model.NewValidationError(fmt.Sprintf("unsupported value kind %s", kind))
	}
}
