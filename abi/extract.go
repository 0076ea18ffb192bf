package abi

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/valyala/fastjson"
)

// Skipped describes an element of an "abi" array that could not be read as a
// Fragment.
type Skipped struct {
	Index int
	Err   error
}

func (s Skipped) Error() string {
	return fmt.Sprintf("abi[%d]: %v", s.Index, s.Err)
}

func (s Skipped) Unwrap() error {
	return s.Err
}

// Extract reads the fragments listed under the top-level "abi" key of an
// artifact document, in document order.
//
// Elements that cannot be read as a Fragment are left out and reported in
// skipped. A document with no "abi" array yields no fragments and no error;
// only a document that is not JSON at all is an error.
func Extract(data []byte) (frags []Fragment, skipped []Skipped, err error) {
	var p fastjson.Parser
	doc, err := p.ParseBytes(data)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid artifact document: %w", err)
	}

	list := doc.Get("abi")
	if list == nil || list.Type() != fastjson.TypeArray {
		return nil, nil, nil
	}
	elems, _ := list.Array()

	var buf []byte
	for i, el := range elems {
		if err := exactKeys(el, fragmentFields); err != nil {
			skipped = append(skipped, Skipped{Index: i, Err: err})
			continue
		}
		buf = el.MarshalTo(buf[:0])

		var f Fragment
		if err := json.Unmarshal(buf, &f); err != nil {
			skipped = append(skipped, Skipped{Index: i, Err: err})
			continue
		}
		frags = append(frags, f)
	}
	return frags, skipped, nil
}

var (
	fragmentFields = []string{"name", "type", "inputs", "outputs", "stateMutability", "anonymous"}
	inputFields    = []string{"name", "type", "indexed", "internalType"}
	outputFields   = []string{"name", "type", "internalType"}
)

// exactKeys makes field matching case-sensitive: keys that only match a
// field name when case is ignored are removed, so they are treated like any
// other unknown key. A field given more than once is an error. Parameters
// listed under inputs and outputs are processed the same way.
func exactKeys(v *fastjson.Value, fields []string) error {
	o, err := v.Object()
	if err != nil {
		// the decoder reports the type mismatch
		return nil
	}

	var (
		seen  = make(map[string]bool, len(fields))
		drop  []string
		dupes []string
	)
	o.Visit(func(key []byte, _ *fastjson.Value) {
		k := string(key)
		for _, f := range fields {
			switch {
			case k == f:
				if seen[k] {
					dupes = append(dupes, k)
				}
				seen[k] = true
			case strings.EqualFold(k, f):
				drop = append(drop, k)
			}
		}
	})
	if len(dupes) > 0 {
		return fmt.Errorf("duplicate field %q", dupes[0])
	}
	for _, k := range drop {
		o.Del(k)
	}

	for key, pf := range map[string][]string{"inputs": inputFields, "outputs": outputFields} {
		list := o.Get(key)
		if list == nil || list.Type() != fastjson.TypeArray {
			continue
		}
		params, _ := list.Array()
		for i, p := range params {
			if err := exactKeys(p, pf); err != nil {
				return fmt.Errorf("%s[%d]: %w", key, i, err)
			}
		}
	}
	return nil
}
