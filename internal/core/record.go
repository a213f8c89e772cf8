package core

// record.go defines the schema-less record model.
//
// Records come from several sources (JSON files, Firestore, MongoDB, Postgres)
// that disagree about typing: the same column can hold 4, "4" or nothing at
// all. Every raw value is normalized into a Value, a tagged union of absent,
// number and string, so the filter and sort code never has to type-switch on
// source-specific types.

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies which member of the Value union is set.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindNumber
	KindString
)

// Value is a normalized field value: absent, a number, or a string.
// The zero Value is absent.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Absent is the missing value.
var Absent = Value{}

// Number returns a numeric Value. NaN is treated as absent.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Absent
	}
	return Value{kind: KindNumber, num: f}
}

// String returns a string Value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// ValueOf normalizes a raw decoded value into a Value.
//
// nil becomes absent, numeric types become numbers, booleans become "true" or
// "false", times become RFC 3339 strings and anything else is rendered as
// compact JSON.
func ValueOf(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Absent
	case Value:
		return v
	case string:
		return String(v)
	case float64:
		return Number(v)
	case float32:
		return Number(float64(v))
	case int:
		return Number(float64(v))
	case int8:
		return Number(float64(v))
	case int16:
		return Number(float64(v))
	case int32:
		return Number(float64(v))
	case int64:
		return Number(float64(v))
	case uint:
		return Number(float64(v))
	case uint8:
		return Number(float64(v))
	case uint16:
		return Number(float64(v))
	case uint32:
		return Number(float64(v))
	case uint64:
		return Number(float64(v))
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return Number(f)
		}
		return String(v.String())
	case bool:
		return String(strconv.FormatBool(v))
	case time.Time:
		return String(v.UTC().Format(time.RFC3339))
	case fmt.Stringer:
		return String(v.String())
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return String(fmt.Sprint(v))
		}
		return String(string(b))
	}
}

// Kind reports which member of the union is set.
func (v Value) Kind() Kind { return v.kind }

// Defined reports whether the value is present (number or string).
func (v Value) Defined() bool { return v.kind != KindAbsent }

// Missing reports whether the value is absent or the empty string.
// Missing values sort to the end in ascending order.
func (v Value) Missing() bool {
	return v.kind == KindAbsent || (v.kind == KindString && v.str == "")
}

// Truthy reports whether the value is a non-empty string or a non-zero number.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNumber:
		return v.num != 0
	case KindString:
		return v.str != ""
	default:
		return false
	}
}

// Float returns the numeric payload and whether the value is a number.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// String returns the display form of the value. Absent values render as "".
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return formatNumber(v.num)
	case KindString:
		return v.str
	default:
		return ""
	}
}

// Interface returns the value as a plain Go value for encoding:
// nil, float64 or string.
func (v Value) Interface() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	default:
		return nil
	}
}

// formatNumber renders a float the way it prints in the dataset:
// integers without a fraction, everything else in shortest form.
func formatNumber(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Field is a single named value in a record.
type Field struct {
	Name  string
	Value Value
}

// Record is one vehicle entry: an opaque identifier plus an ordered list of
// defined fields. Field order is the source's natural key order.
type Record struct {
	ID     string
	fields []Field
}

// idKeys are document keys that carry the source-assigned identifier
// rather than data.
var idKeys = map[string]bool{"id": true, "_id": true}

// NewRecord builds a record from fields in order.
// Absent values are dropped; a repeated name overwrites the earlier value
// in its original position.
func NewRecord(id string, fields ...Field) Record {
	r := Record{ID: id, fields: make([]Field, 0, len(fields))}
	for _, f := range fields {
		r.set(f.Name, f.Value)
	}
	return r
}

// RecordFromMap builds a record from an unordered map.
// Keys are taken in sorted order since the map carries no natural order.
// An "id" or "_id" key fills ID when id is empty.
func RecordFromMap(id string, m map[string]any) Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	r := Record{ID: id, fields: make([]Field, 0, len(keys))}
	for _, k := range keys {
		r.setRaw(k, m[k])
	}
	return r
}

// setRaw stores a raw value, lifting identifier keys into ID.
func (r *Record) setRaw(name string, raw any) {
	if idKeys[name] {
		if r.ID == "" {
			r.ID = ValueOf(raw).String()
		}
		return
	}
	r.set(name, ValueOf(raw))
}

func (r *Record) set(name string, v Value) {
	for i := range r.fields {
		if r.fields[i].Name == name {
			if !v.Defined() {
				r.fields = append(r.fields[:i], r.fields[i+1:]...)
				return
			}
			r.fields[i].Value = v
			return
		}
	}
	if v.Defined() {
		r.fields = append(r.fields, Field{Name: name, Value: v})
	}
}

// Get returns the value of the named field, or Absent.
func (r Record) Get(name string) Value {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value
		}
	}
	return Absent
}

// Has reports whether the named field is defined.
func (r Record) Has(name string) bool {
	return r.Get(name).Defined()
}

// Fields returns the defined fields in natural order.
// The returned slice must not be modified.
func (r Record) Fields() []Field {
	return r.fields
}

// Keys returns the defined field names in natural order.
func (r Record) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Name
	}
	return keys
}

// Len returns the number of defined fields.
func (r Record) Len() int {
	return len(r.fields)
}

// MarshalJSON encodes the record as an object with "id" first (when set)
// followed by the fields in natural order.
func (r Record) MarshalJSON() ([]byte, error) {
	om := orderedmap.New[string, any](len(r.fields) + 1)
	if r.ID != "" {
		om.Set("id", r.ID)
	}
	for _, f := range r.fields {
		om.Set(f.Name, f.Value.Interface())
	}
	return json.Marshal(om)
}

// UnmarshalJSON decodes a JSON object, keeping the key order of the document.
func (r *Record) UnmarshalJSON(data []byte) error {
	om := orderedmap.New[string, any]()
	if err := json.Unmarshal(data, om); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}

	*r = Record{fields: make([]Field, 0, om.Len())}
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		r.setRaw(pair.Key, pair.Value)
	}
	return nil
}

// DecodeRecords decodes a JSON array of objects into records.
func DecodeRecords(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}
