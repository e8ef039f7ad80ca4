// Package phash implements Purple Titanium's Value Hasher: a
// deterministic, type-tag-discriminated 64-bit hash over the values that
// can flow through a task graph.
//
// Every value kind writes a distinct leading tag byte before its payload
// so that, for instance, the int64 1, the string "1", and the
// single-element sequence [1] never collide. Sequences hash their
// elements in order; mappings and sets are normalized (sorted by their
// own element hashes) before hashing so that iteration order never
// affects the result, matching the normalize-before-hash discipline the
// rest of this module follows.
package phash

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/galvinograd/purple-titanium/internal/pterrors"
)

// Sum is a 64-bit content signature contribution.
type Sum uint64

// tag bytes, one per hashable value kind. Stable across releases: changing
// a tag value changes every signature that contains a value of that kind.
const (
	tagIgnored byte = iota
	tagNil
	tagBool
	tagInt64
	tagUint64
	tagFloat64
	tagString
	tagBytes
	tagSequence
	tagMapping
	tagSet
	tagHandle
)

// Ignored is the sentinel value for Ignored parameters: it contributes
// nothing to a signature beyond its tag byte, regardless of the value
// bound to the parameter at construction time.
type Ignored struct{}

// Handle is implemented by lazy output handles (internal/task.Output) so
// that a dependency's signature propagates into its dependents' without
// this package importing internal/task and creating an import cycle.
type Handle interface {
	HashHandle() [8]byte
}

// Hash computes the signature contribution of v. An error is returned for
// any Go value this hasher has no tag for (spec's UnhashableValue).
func Hash(v any) (Sum, error) {
	d := xxhash.New()
	if err := write(d, v); err != nil {
		return 0, err
	}
	return Sum(d.Sum64()), nil
}

// Combine folds a sequence of already-computed sums into one, in the
// order given. Used by the Signature Engine to fold name, version, and
// each contributing parameter's hash together.
func Combine(parts ...Sum) Sum {
	d := xxhash.New()
	for _, p := range parts {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(p))
		_, _ = d.Write(buf[:])
	}
	return Sum(d.Sum64())
}

func write(d *xxhash.Digest, v any) error {
	switch x := v.(type) {
	case Ignored:
		_, _ = d.Write([]byte{tagIgnored})
		return nil
	case nil:
		_, _ = d.Write([]byte{tagNil})
		return nil
	case bool:
		b := byte(0)
		if x {
			b = 1
		}
		_, _ = d.Write([]byte{tagBool, b})
		return nil
	case string:
		return writeTagged(d, tagString, []byte(x))
	case []byte:
		return writeTagged(d, tagBytes, x)
	case Handle:
		h := x.HashHandle()
		_, _ = d.Write([]byte{tagHandle})
		_, _ = d.Write(h[:])
		return nil
	case Set:
		sum, err := x.hashSelf()
		if err != nil {
			return err
		}
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(sum))
		_, _ = d.Write(buf[:])
		return nil
	}

	switch x := v.(type) {
	case int, int8, int16, int32, int64:
		return writeInt64(d, reflect.ValueOf(x).Int())
	case uint, uint8, uint16, uint32, uint64, uintptr:
		return writeUint64(d, reflect.ValueOf(x).Uint())
	case float32, float64:
		return writeFloat64(d, reflect.ValueOf(x).Float())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return writeSequence(d, rv)
	case reflect.Map:
		return writeMapping(d, rv)
	default:
		return &pterrors.UnhashableValueError{Type: fmt.Sprintf("%T", v)}
	}
}

func writeTagged(d *xxhash.Digest, tag byte, payload []byte) error {
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(payload)))
	_, _ = d.Write([]byte{tag})
	_, _ = d.Write(lenBuf[:])
	_, _ = d.Write(payload)
	return nil
}

func writeInt64(d *xxhash.Digest, n int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(n))
	_, _ = d.Write([]byte{tagInt64})
	_, _ = d.Write(buf[:])
	return nil
}

func writeUint64(d *xxhash.Digest, n uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	_, _ = d.Write([]byte{tagUint64})
	_, _ = d.Write(buf[:])
	return nil
}

func writeFloat64(d *xxhash.Digest, f float64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(f))
	_, _ = d.Write([]byte{tagFloat64})
	_, _ = d.Write(buf[:])
	return nil
}

// writeSequence hashes an ordered list: element order is significant.
func writeSequence(d *xxhash.Digest, rv reflect.Value) error {
	_, _ = d.Write([]byte{tagSequence})
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(rv.Len()))
	_, _ = d.Write(lenBuf[:])
	for i := 0; i < rv.Len(); i++ {
		if err := write(d, rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

// writeMapping hashes a map as an order-independent set of (key, value)
// sums: each entry is hashed independently, the resulting per-entry sums
// are sorted, and the sorted sums are folded together. Map iteration
// order never reaches the digest.
func writeMapping(d *xxhash.Digest, rv reflect.Value) error {
	entries := make([]uint64, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		kd := xxhash.New()
		if err := write(kd, iter.Key().Interface()); err != nil {
			return err
		}
		if err := write(kd, iter.Value().Interface()); err != nil {
			return err
		}
		entries = append(entries, kd.Sum64())
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i] < entries[j] })

	_, _ = d.Write([]byte{tagMapping})
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(entries)))
	_, _ = d.Write(lenBuf[:])
	for _, e := range entries {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], e)
		_, _ = d.Write(buf[:])
	}
	return nil
}

// Set is a value wrapper marking a Go slice as order-independent (spec's
// "set" container): equal contents hash equally regardless of element
// order. Duplicates are not eliminated, so Set{1, 1} and Set{1} hash
// differently.
type Set []any

func (s Set) hashSelf() (Sum, error) {
	entries := make([]uint64, 0, len(s))
	for _, v := range s {
		sub, err := Hash(v)
		if err != nil {
			return 0, err
		}
		entries = append(entries, uint64(sub))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i] < entries[j] })

	d := xxhash.New()
	_, _ = d.Write([]byte{tagSet})
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(entries)))
	_, _ = d.Write(lenBuf[:])
	for _, e := range entries {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], e)
		_, _ = d.Write(buf[:])
	}
	return Sum(d.Sum64()), nil
}
