package codejen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// DefaultIOLimit bounds the number of files written or verified at once.
const DefaultIOLimit = 12

// FS is an in-memory set of generated files that supports batch-writing its
// contents to the real filesystem, or batch-comparing its contents to the real
// filesystem.
//
// The normal behavior of a generator is to write files to disk, but in CI it
// should instead verify that what is already on disk is identical to the
// results of code generation. FS supports these through its Write and Verify
// methods, respectively.
//
// FS is stateless with respect to disk: if an input to the code generator goes
// away, it does not notice generated files left behind.
//
// Files cannot be removed once added. Adding a file whose path is already
// taken is an error.
type FS struct {
	mu    sync.Mutex
	files map[string]File

	// IOLimit bounds concurrent file operations in Write and Verify. Zero
	// means DefaultIOLimit.
	IOLimit int
}

// NewFS creates a new FS, ready for use.
func NewFS() *FS {
	return &FS{
		files: make(map[string]File),
	}
}

// Add adds files to the FS. Nothing is added if any of the files has an
// absolute path or conflicts with another file, in the FS or in the list.
func (fs *FS) Add(flist ...File) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var result *multierror.Error
	if err := Files(flist).Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	for _, f := range flist {
		if prev, has := fs.files[f.RelativePath]; has {
			result = multierror.Append(result, fmt.Errorf("%s already created by %s, cannot create for %s", f.RelativePath, jennystack(prev.From), jennystack(f.From)))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return multierror.Flatten(err)
	}

	for _, f := range flist {
		fs.files[f.RelativePath] = f
	}
	return nil
}

// Len returns the number of files in the FS.
func (fs *FS) Len() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.files)
}

// AsFiles returns the contents of the FS, sorted by path.
func (fs *FS) AsFiles() Files {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.sorted()
}

func (fs *FS) sorted() Files {
	fl := make(Files, 0, len(fs.files))
	for _, f := range fs.files {
		fl = append(fl, f)
	}
	sort.Slice(fl, func(i, j int) bool {
		return fl[i].RelativePath < fl[j].RelativePath
	})
	return fl
}

func (fs *FS) group(ctx context.Context) *errgroup.Group {
	g, _ := errgroup.WithContext(ctx)
	if fs.IOLimit > 0 {
		g.SetLimit(fs.IOLimit)
	} else {
		g.SetLimit(DefaultIOLimit)
	}
	return g
}

// Write writes all of the files to their paths, creating parent directories
// as needed.
//
// If the provided prefix path is non-empty, it will be prepended to all file
// paths. prefix may be an absolute path.
func (fs *FS) Write(ctx context.Context, prefix string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	g := fs.group(ctx)
	for _, f := range fs.sorted() {
		g.Go(func() error {
			path := filepath.Join(prefix, f.RelativePath)
			if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
				return fmt.Errorf("%s: failed to ensure parent directory exists: %w", path, err)
			}
			if err := os.WriteFile(path, f.Data, 0644); err != nil {
				return fmt.Errorf("%s: error while writing file: %w", path, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Verify checks the contents of each file against the filesystem. It returns
// an error listing every file that is missing or differs.
//
// If the provided prefix path is non-empty, it will be prepended to all file
// paths. prefix may be an absolute path.
func (fs *FS) Verify(ctx context.Context, prefix string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var (
		rmu    sync.Mutex
		result *multierror.Error
	)
	report := func(err error) {
		rmu.Lock()
		result = multierror.Append(result, err)
		rmu.Unlock()
	}

	g := fs.group(ctx)
	for _, f := range fs.sorted() {
		g.Go(func() error {
			path := filepath.Join(prefix, f.RelativePath)
			ob, err := os.ReadFile(path) //nolint:gosec
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					report(fmt.Errorf("%s: generated file should exist, but does not", path))
					return nil
				}
				return fmt.Errorf("%s: error reading file: %w", path, err)
			}
			if d := cmp.Diff(string(ob), string(f.Data)); d != "" {
				report(fmt.Errorf("%s would have changed:\n\n%s", path, d))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("io error while verifying tree: %w", err)
	}

	if result != nil {
		sort.Slice(result.Errors, func(i, j int) bool {
			return result.Errors[i].Error() < result.Errors[j].Error()
		})
	}
	return result.ErrorOrNil()
}
