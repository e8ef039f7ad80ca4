// Package titanium is Purple Titanium's public declaration surface: the
// Param/Injectable/Ignore vocabulary and the Declare family of functions
// that wire a task body to Components B through E.
package titanium

import "github.com/galvinograd/purple-titanium/internal/resolve"

// Param describes one constructor argument's classification. The zero
// value (from Plain) is a plain, always-contributing parameter.
type Param[T any] struct {
	name string

	value      T
	hasExplicit bool

	injectable     bool
	injectableName string
	hasDefault     bool
	defaultValue   T

	ignored bool
}

// Plain declares an ordinary parameter bound to v at construction time.
func Plain[T any](name string, v T) Param[T] {
	return Param[T]{name: name, value: v, hasExplicit: true}
}

// Injectable declares a parameter resolved from the ambient context frame
// by name at construction time. Use Default to supply a fallback for
// scopes that never bound it, and Override to supply an explicit value
// that bypasses context resolution entirely for this one call.
func Injectable[T any](name string) Param[T] {
	return Param[T]{name: name, injectable: true, injectableName: name}
}

// From overrides the context binding name an Injectable parameter reads,
// decoupling the parameter's local name from its context key.
func (p Param[T]) From(contextName string) Param[T] {
	p.injectableName = contextName
	return p
}

// Default supplies the value used when no ambient binding exists.
func (p Param[T]) Default(v T) Param[T] {
	p.hasDefault = true
	p.defaultValue = v
	return p
}

// Override supplies an explicit value, bypassing ambient resolution even
// for an Injectable parameter.
func (p Param[T]) Override(v T) Param[T] {
	p.value = v
	p.hasExplicit = true
	return p
}

// Ignore marks the parameter as participating in execution but
// contributing nothing to the task's signature.
func (p Param[T]) Ignore() Param[T] {
	p.ignored = true
	return p
}

func (p Param[T]) raw() resolve.Raw {
	var flags resolve.Flag
	if p.injectable {
		flags |= resolve.FlagInjectable
	}
	if p.ignored {
		flags |= resolve.FlagIgnored
	}
	r := resolve.Raw{
		Name:           p.name,
		Flags:          flags,
		InjectableName: p.injectableName,
		HasDefault:     p.hasDefault,
	}
	if p.hasDefault {
		r.Default = p.defaultValue
	}
	if p.hasExplicit || !p.injectable {
		r.Explicit = true
		r.Value = p.value
	}
	return r
}
