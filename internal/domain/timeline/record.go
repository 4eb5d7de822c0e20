// Package timeline collects normalized event records and orders them for the
// match summary.
package timeline

import (
	"bytes"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/okian/replaystats/internal/domain/model"
)

type field struct {
	key   string
	value any
}

// Record is one timeline entry. It encodes as a JSON object with name and
// stamp first, then fields in the order they were set.
type Record struct {
	Stamp  model.Stamp
	Name   string
	fields []field
}

// NewRecord starts a record.
func NewRecord(name string, stamp model.Stamp) *Record {
	return &Record{Name: name, Stamp: stamp}
}

// Set adds or replaces a field and returns r for chaining.
func (r *Record) Set(key string, value any) *Record {
	for i := range r.fields {
		if r.fields[i].key == key {
			r.fields[i].value = value
			return r
		}
	}
	r.fields = append(r.fields, field{key: key, value: value})
	return r
}

// Get returns a field value.
func (r *Record) Get(key string) (any, bool) {
	for _, f := range r.fields {
		if f.key == key {
			return f.value, true
		}
	}
	return nil, false
}

// Has reports whether key is set.
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Keys lists field keys in insertion order, excluding name and stamp.
func (r *Record) Keys() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.key
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"name":`)
	name, err := json.Marshal(r.Name)
	if err != nil {
		return nil, err
	}
	buf.Write(name)
	buf.WriteString(`,"stamp":`)
	stamp, err := json.Marshal(r.Stamp)
	if err != nil {
		return nil, err
	}
	buf.Write(stamp)
	for _, f := range r.fields {
		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Timeline is an append-only record list.
type Timeline struct {
	records []*Record
}

// Append adds records in order.
func (t *Timeline) Append(rs ...*Record) {
	t.records = append(t.records, rs...)
}

// Len returns the number of records.
func (t *Timeline) Len() int { return len(t.records) }

// Records returns the records in insertion order. The slice is shared.
func (t *Timeline) Records() []*Record { return t.records }

// Merge concatenates deferred then live records and stable-sorts the result
// by stamp. Records sharing a stamp keep their relative order.
func Merge(deferred, live []*Record) []*Record {
	out := make([]*Record, 0, len(deferred)+len(live))
	out = append(out, deferred...)
	out = append(out, live...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stamp < out[j].Stamp })
	return out
}
