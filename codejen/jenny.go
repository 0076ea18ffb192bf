// Package codejen is a small framework for file-producing code generators.
//
// A generator is called a jenny. Each jenny takes one kind of Input and
// produces zero or one [File] for it. Jennies are composed into a
// [JennyList], whose output is collected into an [FS] that can be written to
// disk, or verified against what is already there.
package codejen

// A Jenny is a named code generator over a particular Input type.
//
// jennies name their type parameter "Input" as an indicator for humans that
// a type parameter is used in this way.
type Jenny[Input any] interface {
	NamedJenny
}

// NamedJenny is the part of a Jenny that does not depend on its Input.
type NamedJenny interface {
	// JennyName returns the name of the generator.
	JennyName() string
}

// OneToOne is a Jenny that produces at most one File per Input.
type OneToOne[Input any] interface {
	Jenny[Input]

	// Generate takes an Input and generates one [File]. A nil, nil return
	// indicates the jenny had nothing to do for the provided Input.
	Generate(Input) (*File, error)
}
