// Package abi models the entries of a contract ABI, as found in the "abi"
// array of compiler artifacts.
package abi

import (
	"encoding/json"
	"errors"
	"slices"
	"strings"
)

// ErrMissingName is returned when an identifier is requested for a fragment
// that has no usable name.
var ErrMissingName = errors.New("missing fragment name")

// Input is one input parameter of a Fragment.
type Input struct {
	Name         *string `json:"name"`
	Type         string  `json:"type"`
	Indexed      *bool   `json:"indexed,omitempty"`
	InternalType *string `json:"internalType,omitempty"`
}

// Output is one output parameter of a Fragment. Outputs are never indexed.
type Output struct {
	Name         *string `json:"name"`
	Type         string  `json:"type"`
	InternalType *string `json:"internalType,omitempty"`
}

// Fragment is one entry of an ABI: a function, event, constructor, error,
// fallback or receive description.
//
// Field order is significant: it is the order in which fields appear when a
// Fragment is serialized, and thus the order of properties in generated
// literals. Kind is kept as a free-form string, the set of kinds is defined
// by the compilers emitting ABIs.
type Fragment struct {
	Name            *string  `json:"name"`
	Kind            string   `json:"type"`
	Inputs          []Input  `json:"inputs"`
	Outputs         []Output `json:"outputs,omitzero"`
	StateMutability *string  `json:"stateMutability,omitempty"`
	Anonymous       *bool    `json:"anonymous,omitempty"`
}

// HasName reports whether the fragment has a non-empty name.
func (f Fragment) HasName() bool {
	return f.Name != nil && *f.Name != ""
}

// NameOrEmpty returns the fragment name, or "" if it has none.
func (f Fragment) NameOrEmpty() string {
	if f.Name == nil {
		return ""
	}
	return *f.Name
}

// UniqueKey returns the identity used to deduplicate fragments: name, kind,
// and the sorted input and output types, joined with ":".
//
// Parameter names and order do not participate, so fragments that only
// differ in those are considered the same.
func (f Fragment) UniqueKey() string {
	in := make([]string, 0, len(f.Inputs))
	for _, p := range f.Inputs {
		in = append(in, p.Type)
	}
	out := make([]string, 0, len(f.Outputs))
	for _, p := range f.Outputs {
		out = append(out, p.Type)
	}
	slices.Sort(in)
	slices.Sort(out)

	return strings.Join([]string{
		f.NameOrEmpty(),
		f.Kind,
		strings.Join(in, ","),
		strings.Join(out, ","),
	}, ":")
}

// Deduplicate returns the fragments of frags with distinct unique keys. The
// first fragment with a given key is kept, in its original position.
func Deduplicate(frags []Fragment) []Fragment {
	seen := make(map[string]struct{}, len(frags))
	out := make([]Fragment, 0, len(frags))
	for _, f := range frags {
		key := f.UniqueKey()
		if _, has := seen[key]; has {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Identifier returns the name under which the fragment is exported.
//
// With explicit set, the name is qualified by the input types in declaration
// order, e.g. transfer_address_uint256, with "[]" spelled as "Array". This is
// used when several fragments of one output share a name.
func (f Fragment) Identifier(explicit bool) (string, error) {
	if !f.HasName() {
		return "", ErrMissingName
	}
	if !explicit {
		return *f.Name, nil
	}

	types := make([]string, len(f.Inputs))
	for i, p := range f.Inputs {
		types[i] = strings.ReplaceAll(p.Type, "[]", "Array")
	}
	return *f.Name + "_" + strings.Join(types, "_"), nil
}

// MarshalJSON never emits a null inputs list.
func (f Fragment) MarshalJSON() ([]byte, error) {
	type plain Fragment
	if f.Inputs == nil {
		f.Inputs = []Input{}
	}
	return json.Marshal(plain(f))
}

// UnmarshalJSON requires "type" and "inputs" to be present.
func (f *Fragment) UnmarshalJSON(data []byte) error {
	type plain Fragment
	var w struct {
		plain
		Kind   *string  `json:"type"`
		Inputs *[]Input `json:"inputs"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Kind == nil {
		return errors.New("fragment: missing field \"type\"")
	}
	if w.Inputs == nil {
		return errors.New("fragment: missing field \"inputs\"")
	}
	*f = Fragment(w.plain)
	f.Kind = *w.Kind
	f.Inputs = *w.Inputs
	return nil
}

// UnmarshalJSON requires "type" to be present.
func (p *Input) UnmarshalJSON(data []byte) error {
	type plain Input
	var w struct {
		plain
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Type == nil {
		return errors.New("input: missing field \"type\"")
	}
	*p = Input(w.plain)
	p.Type = *w.Type
	return nil
}

// UnmarshalJSON requires "type" to be present.
func (p *Output) UnmarshalJSON(data []byte) error {
	type plain Output
	var w struct {
		plain
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Type == nil {
		return errors.New("output: missing field \"type\"")
	}
	*p = Output(w.plain)
	p.Type = *w.Type
	return nil
}
