// Package tslit renders generic JSON values as TypeScript literal syntax.
//
// Values are taken as parsed by fastjson, which keeps object keys in document
// order and numbers in their original textual form; both survive rendering
// unchanged.
package tslit

import (
	"bytes"

	"github.com/valyala/fastjson"
)

// Render returns the literal form of v.
func Render(v *fastjson.Value) string {
	return string(Append(nil, v))
}

// RenderJSON parses data as JSON and returns its literal form.
func RenderJSON(data []byte) (string, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return "", err
	}
	return Render(v), nil
}

// Append appends the literal form of v to dst and returns the extended buffer.
//
// Strings are double quoted with embedded double quotes escaped, nothing else
// is escaped. Object keys are written bare.
func Append(dst []byte, v *fastjson.Value) []byte {
	switch v.Type() {
	case fastjson.TypeNull:
		return append(dst, "null"...)
	case fastjson.TypeTrue:
		return append(dst, "true"...)
	case fastjson.TypeFalse:
		return append(dst, "false"...)
	case fastjson.TypeNumber:
		// raw number text
		return v.MarshalTo(dst)
	case fastjson.TypeString:
		s, _ := v.StringBytes()
		return appendString(dst, s)
	case fastjson.TypeArray:
		elems, _ := v.Array()
		dst = append(dst, '[')
		for i, el := range elems {
			if i > 0 {
				dst = append(dst, ", "...)
			}
			dst = Append(dst, el)
		}
		return append(dst, ']')
	case fastjson.TypeObject:
		o, _ := v.Object()
		dst = append(dst, '{')
		first := true
		o.Visit(func(key []byte, el *fastjson.Value) {
			if !first {
				dst = append(dst, ", "...)
			}
			first = false
			dst = append(dst, key...)
			dst = append(dst, ": "...)
			dst = Append(dst, el)
		})
		return append(dst, '}')
	default:
		panic("unreachable")
	}
}

func appendString(dst, s []byte) []byte {
	dst = append(dst, '"')
	for {
		i := bytes.IndexByte(s, '"')
		if i < 0 {
			break
		}
		dst = append(dst, s[:i]...)
		dst = append(dst, '\\', '"')
		s = s[i+1:]
	}
	dst = append(dst, s...)
	return append(dst, '"')
}
