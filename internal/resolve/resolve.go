// Package resolve implements Purple Titanium's Parameter Resolver:
// classification (Plain / Injectable / Ignored, with Ignored+Injectable
// allowed together) and binding of a task's constructor arguments against
// the ambient context frame active at construction time.
package resolve

import (
	"github.com/galvinograd/purple-titanium/internal/ambient"
	"github.com/galvinograd/purple-titanium/internal/pterrors"
)

// Flag bits describe a parameter's classification. The zero value is a
// Plain parameter.
type Flag uint8

const (
	// FlagInjectable marks a parameter resolved from the ambient context
	// by name rather than supplied directly at construction.
	FlagInjectable Flag = 1 << iota
	// FlagIgnored marks a parameter that participates in execution but
	// contributes nothing to the task's signature.
	FlagIgnored
)

// Raw describes one constructor parameter before binding.
type Raw struct {
	Name string
	Flags Flag

	// Explicit, when true, means Value was supplied directly at
	// construction time and ambient resolution is skipped even for an
	// Injectable parameter (a local override).
	Explicit bool
	Value    any

	// InjectableName is the context binding name to resolve against, used
	// only when Flags&FlagInjectable != 0 and Explicit is false. Defaults
	// to Name when empty.
	InjectableName string
	HasDefault     bool
	Default        any
}

// Bound is a parameter after resolution: its final value and whether it
// contributes to the owning task's signature.
type Bound struct {
	Name        string
	Flags       Flag
	Resolved    any
	Contributes bool
}

// Bind resolves every Raw parameter of taskName against ctx's active
// frame. Injectable parameters without an explicit override are looked up
// by InjectableName; a miss falls back to the declared default, and a
// miss with no default is a MissingInjectableError.
func Bind(frame *ambient.Frame, taskName string, raws []Raw) ([]Bound, error) {
	out := make([]Bound, 0, len(raws))
	for _, r := range raws {
		b, err := bindOne(frame, taskName, r)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func bindOne(frame *ambient.Frame, taskName string, r Raw) (Bound, error) {
	contributes := r.Flags&FlagIgnored == 0

	if r.Explicit || r.Flags&FlagInjectable == 0 {
		return Bound{Name: r.Name, Flags: r.Flags, Resolved: r.Value, Contributes: contributes}, nil
	}

	name := r.InjectableName
	if name == "" {
		name = r.Name
	}
	if v, ok := frame.Lookup(name); ok {
		return Bound{Name: r.Name, Flags: r.Flags, Resolved: v, Contributes: contributes}, nil
	}
	if r.HasDefault {
		return Bound{Name: r.Name, Flags: r.Flags, Resolved: r.Default, Contributes: contributes}, nil
	}
	return Bound{}, &pterrors.MissingInjectableError{Task: taskName, Param: r.Name, Name: name}
}
