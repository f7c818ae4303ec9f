package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Detail value types. Every value in a Details bag has one of these types.
const (
	ValueTypeNull   = "null"
	ValueTypeString = "string"
	ValueTypeInt    = "int"
	ValueTypeFloat  = "float"
	ValueTypeBool   = "bool"
	ValueTypeTime   = "time"
)

// TimeLayout is the fixed-width UTC layout used when detail times are encoded
// as text. Encoded values sort lexicographically in chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// Details is the per-node detail bag: an ordered key/value store holding
// extension properties. Keys keep insertion order; setting an existing key
// keeps its position. The zero value is an empty bag ready to use.
type Details struct {
	keys   []string
	values map[string]any
}

// Set stores value under key. Supported values are nil, string, the integer
// kinds (stored as int64), float32/float64 (stored as float64), bool and
// time.Time (stored in UTC). Other types return ErrUnsupportedValue.
func (d *Details) Set(key string, value any) error {
	if key == "" {
		return fmt.Errorf("detail key must not be empty: %w", ErrInvalidData)
	}
	v, err := normalizeValue(value)
	if err != nil {
		return fmt.Errorf("detail %q: %w", key, err)
	}
	d.put(key, v)
	return nil
}

// put stores an already normalized value.
func (d *Details) put(key string, value any) {
	if d.values == nil {
		d.values = make(map[string]any)
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Get returns the value stored under key and whether the key is present.
// A present key may hold nil.
func (d *Details) Get(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Has reports whether key is present.
func (d *Details) Has(key string) bool {
	_, ok := d.values[key]
	return ok
}

// Delete removes key. Deleting an absent key is a no-op.
func (d *Details) Delete(key string) {
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (d *Details) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of keys.
func (d *Details) Len() int {
	return len(d.keys)
}

// Clone returns an independent copy of the bag.
func (d *Details) Clone() Details {
	c := Details{
		keys:   make([]string, len(d.keys)),
		values: make(map[string]any, len(d.values)),
	}
	copy(c.keys, d.keys)
	for k, v := range d.values {
		c.values[k] = v
	}
	return c
}

// String returns the string stored under key.
func (d *Details) String(key string) (string, error) {
	v, ok := d.values[key]
	if !ok {
		return "", ErrNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", ErrTypeMismatch
	}
	return s, nil
}

// Int returns the integer stored under key.
func (d *Details) Int(key string) (int64, error) {
	v, ok := d.values[key]
	if !ok {
		return 0, ErrNotFound
	}
	i, ok := v.(int64)
	if !ok {
		return 0, ErrTypeMismatch
	}
	return i, nil
}

// Bool returns the boolean stored under key.
func (d *Details) Bool(key string) (bool, error) {
	v, ok := d.values[key]
	if !ok {
		return false, ErrNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, ErrTypeMismatch
	}
	return b, nil
}

// Time returns the time stored under key.
func (d *Details) Time(key string) (time.Time, error) {
	v, ok := d.values[key]
	if !ok {
		return time.Time{}, ErrNotFound
	}
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, ErrTypeMismatch
	}
	return t, nil
}

func normalizeValue(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string, bool, int64, float64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case float32:
		return float64(v), nil
	case time.Time:
		return v.UTC(), nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		return v.UTC(), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
	}
}

// EncodeValue returns the value type and text encoding of a detail value.
// Backends store details in this form.
func EncodeValue(value any) (valueType, text string) {
	switch v := value.(type) {
	case nil:
		return ValueTypeNull, ""
	case string:
		return ValueTypeString, v
	case int64:
		return ValueTypeInt, strconv.FormatInt(v, 10)
	case float64:
		return ValueTypeFloat, strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return ValueTypeBool, strconv.FormatBool(v)
	case time.Time:
		return ValueTypeTime, FormatTime(v)
	default:
		return ValueTypeString, fmt.Sprint(v)
	}
}

// DecodeValue reverses EncodeValue.
func DecodeValue(valueType, text string) (any, error) {
	switch valueType {
	case ValueTypeNull:
		return nil, nil
	case ValueTypeString:
		return text, nil
	case ValueTypeInt:
		return strconv.ParseInt(text, 10, 64)
	case ValueTypeFloat:
		return strconv.ParseFloat(text, 64)
	case ValueTypeBool:
		return strconv.ParseBool(text)
	case ValueTypeTime:
		return ParseTime(text)
	default:
		return nil, fmt.Errorf("%w: value type %q", ErrUnsupportedValue, valueType)
	}
}

// FormatTime encodes t with TimeLayout in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime decodes a time encoded with FormatTime.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time %q: %w", s, err)
	}
	return t.UTC(), nil
}

// detailJSON is the JSON form of one detail entry.
type detailJSON struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// MarshalJSON encodes the bag as an ordered array of typed entries.
func (d Details) MarshalJSON() ([]byte, error) {
	entries := make([]detailJSON, 0, len(d.keys))
	for _, k := range d.keys {
		vt, text := EncodeValue(d.values[k])
		entries = append(entries, detailJSON{Key: k, Type: vt, Value: text})
	}
	return json.Marshal(entries)
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (d *Details) UnmarshalJSON(data []byte) error {
	var entries []detailJSON
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*d = Details{}
	for _, e := range entries {
		v, err := DecodeValue(e.Type, e.Value)
		if err != nil {
			return fmt.Errorf("detail %q: %w", e.Key, err)
		}
		d.put(e.Key, v)
	}
	return nil
}
