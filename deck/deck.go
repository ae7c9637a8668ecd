package deck

import (
	"fmt"
	"io"
	"strings"
)

// Kind identifies the coerced type of a deck value.
type Kind int

const (
	Int Kind = iota
	Float
	String
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a single deck parameter value, coerced to the narrowest
// applicable type: integer, then float, then string.
type Value struct {
	kind Kind
	i    int64
	f    float64
	raw  string
}

// Kind returns the coerced type of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// Int returns the value as an int64. It reports false for float and
// string values; floats are never truncated.
func (v Value) Int() (int64, bool) {
	if v.kind != Int {
		return 0, false
	}
	return v.i, true
}

// Float returns the value as a float64. Integer values are promoted.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case Int:
		return float64(v.i), true
	case Float:
		return v.f, true
	default:
		return 0, false
	}
}

// Raw returns the value text exactly as it appeared in the deck,
// comment stripped and whitespace trimmed.
func (v Value) Raw() string {
	return v.raw
}

// Interface returns the value as int64, float64 or string depending
// on its kind.
func (v Value) Interface() interface{} {
	switch v.kind {
	case Int:
		return v.i
	case Float:
		return v.f
	default:
		return v.raw
	}
}

// Deck is a parsed input deck: a flat record of parameter names mapped
// to scalar values. Key order is the order of first appearance, so
// a reserialized deck stays diffable against the original.
type Deck struct {
	keys   []string
	values map[string]Value
}

// NewDeck returns an empty deck.
func NewDeck() *Deck {
	return &Deck{values: make(map[string]Value)}
}

// Len returns the number of parameters in the deck.
func (d *Deck) Len() int {
	return len(d.keys)
}

// Keys returns the parameter names in first-seen order.
func (d *Deck) Keys() []string {
	keys := make([]string, len(d.keys))
	copy(keys, d.keys)
	return keys
}

// Lookup returns the value for the given parameter name.
func (d *Deck) Lookup(name string) (Value, bool) {
	v, ok := d.values[name]
	return v, ok
}

// Set stores a parameter, coercing the raw text to the narrowest type.
// Setting an existing parameter overwrites its value in place.
func (d *Deck) Set(name, raw string) {
	if _, ok := d.values[name]; !ok {
		d.keys = append(d.keys, name)
	}
	d.values[name] = coerce(raw)
}

// Map returns the deck as a name to interface{} mapping with int64,
// float64 and string values. The map is a copy.
func (d *Deck) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(d.keys))
	for name, v := range d.values {
		m[name] = v.Interface()
	}
	return m
}

// Encode writes the deck back out as "key value" lines in first-seen
// key order. Parsing the output yields the same mapping.
func (d *Deck) Encode(w io.Writer) error {
	for _, name := range d.keys {
		if _, err := fmt.Fprintf(w, "%s %s\n", name, d.values[name].raw); err != nil {
			return err
		}
	}
	return nil
}

// String returns the serialized deck.
func (d *Deck) String() string {
	var sb strings.Builder
	_ = d.Encode(&sb)
	return sb.String()
}
