// Package signature implements Purple Titanium's Signature Engine: folding
// a task's name, version, and the resolved value of every contributing
// (non-Ignored) parameter into one 64-bit signature via the Value Hasher.
//
// Dependency signatures are not folded in as a separate step: a
// dependency is an ordinary parameter value (a task.Output, or a
// container holding one), so its signature reaches the fold exactly the
// way any other parameter value does, via phash's Handle dispatch. This
// is what makes a version bump anywhere upstream change every downstream
// signature without any special-casing here.
package signature

import (
	"encoding/hex"
	"sort"

	"github.com/galvinograd/purple-titanium/internal/phash"
	"github.com/galvinograd/purple-titanium/internal/resolve"
)

// Compute folds name, version, and every contributing bound parameter
// (sorted by parameter name, so declaration order never affects the
// result) into one signature.
func Compute(name string, version int, bound []resolve.Bound) (phash.Sum, error) {
	contributing := make([]resolve.Bound, 0, len(bound))
	for _, b := range bound {
		if b.Contributes {
			contributing = append(contributing, b)
		}
	}
	sort.Slice(contributing, func(i, j int) bool { return contributing[i].Name < contributing[j].Name })

	nameSum, err := phash.Hash(name)
	if err != nil {
		return 0, err
	}
	versionSum, err := phash.Hash(version)
	if err != nil {
		return 0, err
	}

	parts := make([]phash.Sum, 0, len(contributing)+2)
	parts = append(parts, nameSum, versionSum)
	for _, b := range contributing {
		paramNameSum, err := phash.Hash(b.Name)
		if err != nil {
			return 0, err
		}
		valueSum, err := phash.Hash(b.Resolved)
		if err != nil {
			return 0, err
		}
		parts = append(parts, paramNameSum, valueSum)
	}

	return phash.Combine(parts...), nil
}

// Hex renders a signature as the lowercase hex string used for on-disk
// persistence keys and log fields.
func Hex(s phash.Sum) string {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[7-i] = byte(s >> (8 * i))
	}
	return hex.EncodeToString(b[:])
}
