package tsgen

import (
	"github.com/sdboyer/abits/abi"
	"github.com/sdboyer/abits/codejen"
)

// DefaultExtension is the extension of generated modules.
const DefaultExtension = ".ts"

// Unit is the set of fragments destined for one generated module.
type Unit struct {
	// Name is the module file name without extension.
	Name string
	// Sources lists the artifact files the fragments came from, in the order
	// their fragments appear.
	Sources []string
	// Fragments in encounter order.
	Fragments []abi.Fragment
}

// UnitName is a namer for [codejen.JennyListWithNamer].
func UnitName(u Unit) string {
	return u.Name
}

// ModuleJenny generates one TypeScript module per Unit.
type ModuleJenny struct {
	// Extension of generated files, DefaultExtension if empty.
	Extension string
}

var _ codejen.OneToOne[Unit] = ModuleJenny{}

func (j ModuleJenny) JennyName() string {
	return "ModuleJenny"
}

// Generate returns nil, nil if the unit has nothing to export.
func (j ModuleJenny) Generate(u Unit) (*codejen.File, error) {
	content, ok, err := FileContent(u.Fragments)
	if err != nil || !ok {
		return nil, err
	}

	ext := j.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	return &codejen.File{
		RelativePath: u.Name + ext,
		Data:         []byte(content),
	}, nil
}
