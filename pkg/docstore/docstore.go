// Package docstore is the schemaless document store port. Records cross the
// boundary as loosely typed maps; each bounded context normalizes them into
// its own domain types.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrNotFound = errors.New("docstore: record not found")

// IDField is the key every record is stored under.
const IDField = "_id"

type Record map[string]any

type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
	// ChangeClosed is delivered once when a watch ends on its own, e.g. a
	// change stream failing with a non-resumable error. No changes follow.
	ChangeClosed ChangeKind = "closed"
)

type Change struct {
	Kind   ChangeKind
	ID     string
	Record Record // nil on delete
}

// Query is a one-shot equality filter with optional ordering.
type Query struct {
	Where  map[string]any
	SortBy string
	Desc   bool
	Limit  int
}

type Store interface {
	Get(ctx context.Context, collection, id string) (Record, error)
	// Insert stores rec under rec["_id"], generating an id when absent.
	Insert(ctx context.Context, collection string, rec Record) (string, error)
	// Put replaces the record with the given id, creating it if missing.
	Put(ctx context.Context, collection, id string, rec Record) error
	// Update sets the given fields on an existing record.
	Update(ctx context.Context, collection, id string, fields Record) error
	Delete(ctx context.Context, collection, id string) error
	Find(ctx context.Context, collection string, q Query) ([]Record, error)
	// Watch delivers changes on collection until the returned cancel func is
	// called or ctx ends. A watch that stops for any other reason delivers a
	// final ChangeClosed.
	Watch(ctx context.Context, collection string, fn func(Change)) (func(), error)
}

func (r Record) ID() string {
	return r.String(IDField)
}

func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Has reports whether key is present and non-nil.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Float accepts any numeric representation, including numeric strings.
func (r Record) Float(key string) (float64, bool) {
	return toFloat(r[key])
}

func (r Record) Int(key string) (int, bool) {
	f, ok := toFloat(r[key])
	if !ok {
		return 0, false
	}
	return int(f), true
}

func (r Record) Bool(key string) (bool, bool) {
	switch v := r[key].(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return b, err == nil
	default:
		return false, false
	}
}

func (r Record) Time(key string) (time.Time, bool) {
	switch v := r[key].(type) {
	case time.Time:
		return v, true
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		return t, err == nil
	case int64:
		return time.UnixMilli(v), true
	case float64:
		return time.UnixMilli(int64(v)), true
	default:
		return time.Time{}, false
	}
}

// Map returns a nested record. Plain map[string]any values are accepted.
func (r Record) Map(key string) Record {
	switch v := r[key].(type) {
	case Record:
		return v
	case map[string]any:
		return Record(v)
	default:
		return nil
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func compare(a, b any) int {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	_, an := a.(string)
	_, bn := b.(string)
	if an != bn {
		return false
	}
	return compare(a, b) == 0
}
