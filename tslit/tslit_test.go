package tslit

import (
	"regexp"
	"testing"

	"github.com/matryer/is"
	"github.com/valyala/fastjson"
)

func TestRenderJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"null", `null`, `null`},
		{"true", `true`, `true`},
		{"false", `false`, `false`},
		{"integer", `42`, `42`},
		{"number text kept", `1.50`, `1.50`},
		{"exponent kept", `-2E+10`, `-2E+10`},
		{"beyond float64", `123456789012345678901234567890`, `123456789012345678901234567890`},
		{"string", `"uint256"`, `"uint256"`},
		{"quotes escaped", `"say \"hi\""`, `"say \"hi\""`},
		{"backslash not escaped", `"a\\b"`, `"a\b"`},
		{"empty list", `[]`, `[]`},
		{"list", `[1, "a", null, [true]]`, `[1, "a", null, [true]]`},
		{"empty object", `{}`, `{}`},
		{"object keeps key order", `{"z": 1, "a": {"y": [], "b": false}}`, `{z: 1, a: {y: [], b: false}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			got, err := RenderJSON([]byte(tt.in))
			is.NoErr(err)
			is.Equal(got, tt.want)
		})
	}
}

func TestRenderJSONInvalid(t *testing.T) {
	is := is.New(t)
	_, err := RenderJSON([]byte(`{"a":`))
	is.True(err != nil)
}

func TestAppendReusesBuffer(t *testing.T) {
	is := is.New(t)

	v := fastjson.MustParse(`{"k": [1, 2]}`)
	buf := []byte("x = ")
	buf = Append(buf, v)
	is.Equal(string(buf), `x = {k: [1, 2]}`)
}

var bareKey = regexp.MustCompile(`([{,] ?)([A-Za-z_$][A-Za-z0-9_$]*): `)

// Quoting the bare keys of a rendered literal must give back the JSON value
// it was rendered from, down to number text and key order.
func TestRenderRoundTrip(t *testing.T) {
	docs := []string{
		`{"name":"transfer","type":"function","inputs":[{"name":"to","type":"address","indexed":true}],"outputs":[],"stateMutability":"nonpayable"}`,
		`{"name":null,"values":[1.10,0,-3e-7,100000000000000000000000],"nested":{"deeper":{"ok":true,"label":"a \"quoted\" word"}}}`,
		`[{"b":1,"a":2},{"a":2,"b":1}]`,
	}

	for _, doc := range docs {
		is := is.New(t)

		want := fastjson.MustParse(doc)
		lit := Render(want)
		got, err := fastjson.Parse(bareKey.ReplaceAllString(lit, `$1"$2": `))
		is.NoErr(err)
		is.Equal(got.String(), want.String())
	}
}
