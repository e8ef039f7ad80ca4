package scheduler

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/galvinograd/purple-titanium/internal/store"
)

// taggedPayload wraps a JSON-encoded task output together with the
// concrete Go type it was encoded from. json.Unmarshal into a bare `any`
// only ever produces float64/string/bool/map[string]any/[]any/nil, which
// would silently turn an int-returning task's cached value into a
// float64 on replay — exactly the kind of value a Param[int] can never
// bind back to. Tagging the payload with its type lets deserialize
// allocate a value of that same concrete type before decoding into it.
type taggedPayload struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

var (
	typeRegistryMu sync.Mutex
	typeRegistry   = map[string]reflect.Type{}
)

// registerType remembers t under its own String() so a later deserialize
// in this process can reconstruct it. Recorded automatically by
// serialize every time a value of that type is persisted. The registry is
// not itself persisted: in a process that has not yet serialized a value
// of a given type, a cache hit on a JSON entry of that type fails to
// decode, and the scheduler invalidates the entry and recomputes it.
func registerType(t reflect.Type) {
	typeRegistryMu.Lock()
	defer typeRegistryMu.Unlock()
	typeRegistry[t.String()] = t
}

func lookupType(name string) (reflect.Type, bool) {
	typeRegistryMu.Lock()
	defer typeRegistryMu.Unlock()
	t, ok := typeRegistry[name]
	return t, ok
}

// serialize renders a task's produced value for persistence, tagging the
// JSON payload with its concrete type so deserialize reconstructs the
// same Go type instead of collapsing into untyped JSON defaults. Values
// JSON cannot represent at all (e.g. containing unexported-only struct
// fields or channels) fall back to gob, the standard library's only
// general-purpose Go value codec — no example repo in the corpus carries
// a third-party binary object codec, so this one boundary stays on the
// standard library by necessity rather than choice.
func serialize(taskName string, v any) (store.Entry, error) {
	if raw, err := json.Marshal(v); err == nil {
		t := reflect.TypeOf(v)
		registerType(t)
		tagged, err := json.Marshal(taggedPayload{Type: t.String(), Value: raw})
		if err != nil {
			return store.Entry{}, err
		}
		return store.Entry{TaskName: taskName, Format: store.FormatJSON, Payload: tagged}, nil
	}
	buf := new(bytes.Buffer)
	if err := gob.NewEncoder(buf).Encode(&v); err != nil {
		return store.Entry{}, err
	}
	return store.Entry{TaskName: taskName, Format: store.FormatOpaque, Payload: buf.Bytes()}, nil
}

func deserialize(e store.Entry) (any, error) {
	switch e.Format {
	case store.FormatJSON:
		var tagged taggedPayload
		if err := json.Unmarshal(e.Payload, &tagged); err != nil {
			return nil, err
		}
		t, ok := lookupType(tagged.Type)
		if !ok {
			return nil, fmt.Errorf("scheduler: no registered Go type %q; the task producing it must run at least once in this process before a cache hit can decode its result", tagged.Type)
		}
		ptr := reflect.New(t)
		if err := json.Unmarshal(tagged.Value, ptr.Interface()); err != nil {
			return nil, err
		}
		return ptr.Elem().Interface(), nil
	default:
		var v any
		if err := gob.NewDecoder(bytes.NewReader(e.Payload)).Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
}
