package capabilities

import (
	"sort"

	"bsprep/internal/failure"

	"github.com/spf13/cast"
)

// Capability is a single capability set.
type Capability map[string]interface{}

// Kind identifies the shape a Container was decoded from.
type Kind int

const (
	KindList Kind = iota
	KindMultiremote
)

func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindMultiremote:
		return "multiremote"
	default:
		return "unknown"
	}
}

// multiremoteKey is the wrapper field holding an instance's capabilities.
const multiremoteKey = "capabilities"

// Container holds capability entries and remembers their original shape.
type Container struct {
	kind Kind

	// entries is the flat, ordered view every mutator iterates over.
	entries []Capability

	// instances maps instance names to their wrapper objects (multiremote only).
	instances map[string]map[string]interface{}
	names     []string
}

// NewList builds a list container from capability sets.
func NewList(entries ...Capability) *Container {
	list := make([]Capability, 0, len(entries))
	for _, e := range entries {
		if e == nil {
			e = Capability{}
		}
		list = append(list, e)
	}
	return &Container{kind: KindList, entries: list}
}

// NewMultiremote builds a multiremote container from named capability sets.
func NewMultiremote(instances map[string]Capability) *Container {
	raw := make(map[string]interface{}, len(instances))
	for name, caps := range instances {
		if caps == nil {
			caps = Capability{}
		}
		raw[name] = map[string]interface{}{multiremoteKey: map[string]interface{}(caps)}
	}
	c, _ := fromMap(raw)
	return c
}

// FromValue normalizes decoded JSON or YAML capability data.
// A slice becomes a list container and a map becomes a multiremote
// container. Any other value is rejected with a ValidationError.
func FromValue(v interface{}) (*Container, error) {
	switch val := v.(type) {
	case []interface{}:
		return fromSlice(val)
	case []map[string]interface{}:
		entries := make([]Capability, 0, len(val))
		for _, e := range val {
			entries = append(entries, Capability(e))
		}
		return NewList(entries...), nil
	case []Capability:
		return NewList(val...), nil
	case map[string]interface{}:
		return fromPlainMap(val)
	case map[interface{}]interface{}:
		m, err := cast.ToStringMapE(val)
		if err != nil {
			return nil, failure.Invalid("capabilities", "cannot read capability map: %v", err)
		}
		return fromPlainMap(m)
	default:
		return nil, failure.Invalid("capabilities", "expected a list or a map of capabilities, got %T", v)
	}
}

func fromSlice(items []interface{}) (*Container, error) {
	entries := make([]Capability, 0, len(items))
	for i, item := range items {
		m, err := toCapability(item)
		if err != nil {
			return nil, failure.Invalid("capabilities", "entry %d is not a map: %v", i, err)
		}
		entries = append(entries, m)
	}
	return NewList(entries...), nil
}

func fromPlainMap(m map[string]interface{}) (*Container, error) {
	if len(m) > 0 && !IsMultiremote(m) {
		return nil, failure.Invalid("capabilities", "map is not a multiremote map: no instance has a %q object", multiremoteKey)
	}
	return fromMap(m)
}

// fromMap treats m as a multiremote map. Instances without a "capabilities"
// object are kept in the output but receive no mutations.
func fromMap(m map[string]interface{}) (*Container, error) {
	c := &Container{
		kind:      KindMultiremote,
		instances: make(map[string]map[string]interface{}, len(m)),
	}

	for name := range m {
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)

	for _, name := range c.names {
		wrapper, err := cast.ToStringMapE(m[name])
		if err != nil {
			return nil, failure.Invalid("capabilities", "instance %q is not a map: %v", name, err)
		}
		c.instances[name] = wrapper

		raw, ok := wrapper[multiremoteKey]
		if !ok {
			continue
		}
		caps, err := toCapability(raw)
		if err != nil {
			return nil, failure.Invalid("capabilities", "instance %q capabilities: %v", name, err)
		}
		wrapper[multiremoteKey] = map[string]interface{}(caps)
		c.entries = append(c.entries, caps)
	}
	return c, nil
}

func toCapability(v interface{}) (Capability, error) {
	switch val := v.(type) {
	case Capability:
		return val, nil
	case map[string]interface{}:
		return Capability(val), nil
	case nil:
		return Capability{}, nil
	default:
		m, err := cast.ToStringMapE(val)
		if err != nil {
			return nil, err
		}
		return Capability(m), nil
	}
}

// IsMultiremote reports whether m looks like a multiremote map: it has no
// top-level "capabilities" key but at least one of its values does.
func IsMultiremote(m map[string]interface{}) bool {
	if _, ok := m[multiremoteKey]; ok {
		return false
	}
	for _, v := range m {
		inner, err := cast.ToStringMapE(v)
		if err != nil {
			continue
		}
		if _, ok := inner[multiremoteKey]; ok {
			return true
		}
	}
	return false
}

// Kind returns the shape the container was built from.
func (c *Container) Kind() Kind {
	return c.kind
}

// Entries returns the capability entries in processing order. Multiremote
// instances are ordered by name. The returned maps are the live entries.
func (c *Container) Entries() []Capability {
	return c.entries
}

// Len returns the number of capability entries.
func (c *Container) Len() int {
	return len(c.entries)
}

// Names returns the multiremote instance names in processing order.
func (c *Container) Names() []string {
	return c.names
}

// Value returns the container in its original shape, ready to be encoded.
func (c *Container) Value() interface{} {
	if c.kind == KindList {
		out := make([]interface{}, 0, len(c.entries))
		for _, e := range c.entries {
			out = append(out, map[string]interface{}(e))
		}
		return out
	}
	out := make(map[string]interface{}, len(c.instances))
	for name, wrapper := range c.instances {
		out[name] = wrapper
	}
	return out
}
