// Package tsgen turns ABI fragments into TypeScript modules of const
// declarations.
//
// A generated module holds one exported declaration per distinct fragment,
// followed by a default export listing all of them:
//
//	export const transfer = {name: "transfer", ...} as const;
//
//	export default [transfer] as const;
package tsgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/valyala/fastjson"

	"github.com/sdboyer/abits/abi"
	"github.com/sdboyer/abits/tslit"
)

// ErrSerialize is wrapped by errors returned when a fragment cannot be
// converted to its structural form.
var ErrSerialize = errors.New("cannot serialize fragment")

// Declaration returns the identifier of f and its exported const declaration.
// explicit selects the type-qualified identifier, see
// [abi.Fragment.Identifier].
func Declaration(f abi.Fragment, explicit bool) (ident, decl string, err error) {
	ident, err = f.Identifier(explicit)
	if err != nil {
		return "", "", err
	}

	raw, err := json.Marshal(f)
	if err != nil {
		return "", "", fmt.Errorf("%w %s: %w", ErrSerialize, ident, err)
	}
	var p fastjson.Parser
	v, err := p.ParseBytes(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w %s: %w", ErrSerialize, ident, err)
	}

	buf := make([]byte, 0, len(raw)+len(ident)+32)
	buf = append(buf, "export const "...)
	buf = append(buf, ident...)
	buf = append(buf, " = "...)
	buf = tslit.Append(buf, v)
	buf = append(buf, " as const;"...)
	return ident, string(buf), nil
}

// FileContent generates the module for one output unit.
//
// Unnamed fragments are left out. Of fragments sharing a unique key, only the
// first is kept. Names used by more than one named fragment are exported
// under their type-qualified identifier. ok is false when nothing is left to
// generate.
func FileContent(frags []abi.Fragment) (content string, ok bool, err error) {
	named := make([]abi.Fragment, 0, len(frags))
	for _, f := range frags {
		if f.HasName() {
			named = append(named, f)
		}
	}
	if len(named) == 0 {
		return "", false, nil
	}

	counts := make(map[string]int, len(named))
	for _, f := range named {
		counts[*f.Name]++
	}

	var (
		seen   = make(map[string]struct{}, len(named))
		idents = make([]string, 0, len(named))
		decls  = make([]string, 0, len(named))
	)
	for _, f := range named {
		key := f.UniqueKey()
		if _, has := seen[key]; has {
			continue
		}
		seen[key] = struct{}{}

		ident, decl, err := Declaration(f, counts[*f.Name] > 1)
		if err != nil {
			return "", false, err
		}
		idents = append(idents, ident)
		decls = append(decls, decl)
	}
	if len(idents) == 0 {
		return "", false, nil
	}

	var sb strings.Builder
	for _, d := range decls {
		sb.WriteString(d)
		sb.WriteString("\n\n")
	}
	sb.WriteString("export default [")
	sb.WriteString(strings.Join(idents, ", "))
	sb.WriteString("] as const;")
	return sb.String(), true, nil
}
