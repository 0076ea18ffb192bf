package abi

import (
	"testing"

	"github.com/matryer/is"
)

func TestExtract(t *testing.T) {
	is := is.New(t)

	frags, skipped, err := Extract([]byte(`{
		"contractName": "Token",
		"abi": [
			{"name": "transfer", "type": "function", "inputs": [{"name": "to", "type": "address"}], "outputs": [{"type": "bool"}], "stateMutability": "nonpayable"},
			{"name": "broken", "inputs": []},
			42,
			{"type": "constructor", "inputs": []},
			{"name": "Transfer", "type": "event", "anonymous": false, "inputs": [{"name": "from", "type": "address", "indexed": true}]}
		],
		"bytecode": "0x"
	}`))
	is.NoErr(err)

	is.Equal(len(frags), 3)
	is.Equal(frags[0].NameOrEmpty(), "transfer")
	is.Equal(*frags[0].StateMutability, "nonpayable")
	is.Equal(frags[0].Outputs[0].Type, "bool")
	is.True(!frags[1].HasName())
	is.Equal(frags[1].Kind, "constructor")
	is.Equal(frags[2].Kind, "event")
	is.Equal(*frags[2].Inputs[0].Indexed, true)

	is.Equal(len(skipped), 2)
	is.Equal(skipped[0].Index, 1)
	is.Equal(skipped[1].Index, 2)
}

func TestExtractExactKeys(t *testing.T) {
	is := is.New(t)

	frags, skipped, err := Extract([]byte(`{"abi": [
		{"NAME": "upper", "Type": "function", "inputs": []},
		{"name": "first", "NAME": "second", "type": "function", "Inputs": 7, "inputs": []},
		{"name": "a", "name": "b", "type": "function", "inputs": []},
		{"name": "p", "type": "function", "inputs": [{"Name": "x", "type": "uint256", "TYPE": "bool"}]},
		{"name": "q", "type": "function", "inputs": [{"type": "uint256", "type": "bool"}]},
		{"name": "r", "type": "function", "inputs": [], "outputs": [{"Type": "bool"}]}
	]}`))
	is.NoErr(err)

	// only exact field names are read
	is.Equal(len(frags), 2)
	is.Equal(frags[0].NameOrEmpty(), "first")
	is.Equal(len(frags[0].Inputs), 0)
	is.Equal(frags[1].NameOrEmpty(), "p")
	is.Equal(frags[1].Inputs[0].Name, nil)
	is.Equal(frags[1].Inputs[0].Type, "uint256")

	// "type" missing, "name" twice, input "type" twice, output "type" missing
	is.Equal(len(skipped), 4)
	is.Equal(skipped[0].Index, 0)
	is.Equal(skipped[1].Index, 2)
	is.Equal(skipped[2].Index, 4)
	is.Equal(skipped[3].Index, 5)
}

func TestExtractNoFragments(t *testing.T) {
	for name, doc := range map[string]string{
		"no abi key":     `{"bytecode": "0x"}`,
		"abi not array":  `{"abi": {"name": "f"}}`,
		"abi null":       `{"abi": null}`,
		"empty abi":      `{"abi": []}`,
		"top level list": `[{"name": "f", "type": "function", "inputs": []}]`,
	} {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			frags, skipped, err := Extract([]byte(doc))
			is.NoErr(err)
			is.Equal(len(frags), 0)
			is.Equal(len(skipped), 0)
		})
	}
}

func TestExtractInvalidDocument(t *testing.T) {
	is := is.New(t)

	_, _, err := Extract([]byte(`{"abi": [`))
	is.True(err != nil)
}
