package codejen

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// File is a single generated file.
type File struct {
	// The relative path to which the generated file should be written.
	RelativePath string

	// Contents of the generated file.
	Data []byte

	// From is the stack of jennies responsible for producing this File.
	From []NamedJenny
}

// Exists reports whether the File carries a path to write to.
func (f *File) Exists() bool {
	return f != nil && f.RelativePath != ""
}

// Files is a set of File objects.
type Files []File

// Validate checks that no File has an absolute path and that no two Files
// share a path.
func (fl Files) Validate() error {
	var result *multierror.Error
	seen := make(map[string]File, len(fl))
	for _, f := range fl {
		if filepath.IsAbs(f.RelativePath) {
			result = multierror.Append(result, fmt.Errorf("files must have relative paths, got %s from %s", f.RelativePath, jennystack(f.From)))
		}
		if prev, has := seen[f.RelativePath]; has {
			result = multierror.Append(result, fmt.Errorf("%s created by both %s and %s", f.RelativePath, jennystack(prev.From), jennystack(f.From)))
			continue
		}
		seen[f.RelativePath] = f
	}
	return result.ErrorOrNil()
}

// A FileMapper takes a File and transforms it into a new File.
type FileMapper func(File) (File, error)

// Prefixer returns a FileMapper that puts header, followed by a blank line,
// at the top of every file. An empty header leaves files untouched.
func Prefixer(header string) FileMapper {
	return func(f File) (File, error) {
		if header == "" {
			return f, nil
		}
		var buf bytes.Buffer
		buf.WriteString(strings.TrimRight(header, "\n"))
		buf.WriteString("\n\n")
		buf.Write(f.Data)
		f.Data = buf.Bytes()
		return f, nil
	}
}

func jennystack(s []NamedJenny) string {
	if len(s) == 0 {
		return "<unknown>"
	}
	names := make([]string, len(s))
	for i, j := range s {
		names[i] = j.JennyName()
	}
	return strings.Join(names, ":")
}
