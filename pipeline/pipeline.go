// Package pipeline drives generation over a directory of compiler artifacts:
// it finds artifact files, extracts their fragments, groups them into output
// units by file name and writes (or verifies) one module per unit.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	glob "github.com/ryanuber/go-glob"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sdboyer/abits/abi"
	"github.com/sdboyer/abits/codejen"
	"github.com/sdboyer/abits/config"
	"github.com/sdboyer/abits/tsgen"
)

// Summary reports what a run did.
type Summary struct {
	Discovered       int
	FailedFiles      int
	SkippedFragments int
	Units            int
	Generated        int
	FailedUnits      int
}

// Empty is the number of units that had nothing to export.
func (s Summary) Empty() int {
	return s.Units - s.Generated - s.FailedUnits
}

// Processor runs the pipeline for one configuration.
type Processor struct {
	cfg   config.GenerateConfig
	log   *zap.Logger
	jenny codejen.OneToOne[tsgen.Unit]
}

// New returns a Processor. A nil logger discards everything.
func New(cfg config.GenerateConfig, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{
		cfg:   cfg,
		log:   log,
		jenny: tsgen.ModuleJenny{Extension: cfg.Extension},
	}
}

func (p *Processor) matches(name string) bool {
	for _, pat := range p.cfg.Exclude {
		if glob.Glob(pat, name) {
			return false
		}
	}
	for _, pat := range p.cfg.Include {
		if glob.Glob(pat, name) {
			return true
		}
	}
	return false
}

// Discover returns the artifact files under the source directory, in lexical
// order. Patterns are matched against base names.
func (p *Processor) Discover(ctx context.Context) ([]string, error) {
	info, err := os.Stat(p.cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("unable to access source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", p.cfg.Source)
	}

	var paths []string
	err = filepath.WalkDir(p.cfg.Source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == p.cfg.Source {
				return err
			}
			p.log.Warn("Unable to read, skipping", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.Type().IsRegular() && p.matches(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to walk source directory: %w", err)
	}
	return paths, nil
}

// UnitName returns the name of the output unit an artifact belongs to: its
// base name without the final extension. Directories do not participate, so
// same-named artifacts from different directories share a unit.
func UnitName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

type extracted struct {
	frags   []abi.Fragment
	skipped int
	err     error
}

// Collect extracts fragments from every path and groups them into units.
//
// Files are read in parallel but their fragments are appended to units in
// path order. Files that cannot be read or parsed are logged and left out.
// Fragments repeated within a unit are dropped, the first occurrence wins.
// Units are returned in order of their first file.
func (p *Processor) Collect(ctx context.Context, paths []string, sum *Summary) ([]tsgen.Unit, error) {
	results := make([]extracted, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.WorkerCount())
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				results[i].err = err
				return nil
			}
			frags, skipped, err := abi.Extract(data)
			for _, s := range skipped {
				p.log.Debug("Skipping unreadable fragment", zap.String("file", path), zap.Error(s))
			}
			results[i] = extracted{frags: frags, skipped: len(skipped), err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var (
		units []tsgen.Unit
		index = make(map[string]int)
	)
	for i, res := range results {
		path := paths[i]
		if res.err != nil {
			sum.FailedFiles++
			p.log.Warn("Error processing file", zap.String("file", path), zap.Error(res.err))
			continue
		}
		sum.SkippedFragments += res.skipped
		if len(res.frags) == 0 {
			continue
		}

		name := UnitName(path)
		ui, has := index[name]
		if !has {
			ui = len(units)
			index[name] = ui
			units = append(units, tsgen.Unit{Name: name})
		} else {
			p.log.Debug("Merging into existing unit", zap.String("unit", name), zap.String("file", path))
		}
		units[ui].Sources = append(units[ui].Sources, path)
		units[ui].Fragments = append(units[ui].Fragments, res.frags...)
	}
	for i := range units {
		units[i].Fragments = abi.Deduplicate(units[i].Fragments)
	}
	sum.Units = len(units)
	return units, nil
}

// Generate produces the module of every unit. Units that fail are logged and
// left out of the returned FS; the returned error joins their failures.
func (p *Processor) Generate(ctx context.Context, units []tsgen.Unit) (*codejen.FS, error) {
	jl := codejen.JennyListWithNamer(tsgen.UnitName)
	jl.Workers = p.cfg.WorkerCount()
	jl.Append(p.jenny)
	jl.AddPostprocessors(codejen.Prefixer(p.cfg.Header))

	return jl.GenerateFS(ctx, units)
}

// ErrUnitsFailed is returned by Run in strict mode when any unit failed to
// generate.
var ErrUnitsFailed = errors.New("some modules failed to generate")

// Run performs a complete regeneration: discovery, collection, generation,
// then writing to (or verifying) the destination directory.
func (p *Processor) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	paths, err := p.Discover(ctx)
	if err != nil {
		return sum, err
	}
	sum.Discovered = len(paths)
	p.log.Debug("Discovered artifacts", zap.String("source", p.cfg.Source), zap.Int("count", len(paths)))

	units, err := p.Collect(ctx, paths, &sum)
	if err != nil {
		return sum, err
	}

	gfs, genErr := p.Generate(ctx, units)
	if ctx.Err() != nil {
		return sum, ctx.Err()
	}
	sum.Generated = gfs.Len()
	if genErr != nil {
		failures := []error{genErr}
		var merr *multierror.Error
		if errors.As(genErr, &merr) {
			failures = merr.Errors
		}
		sum.FailedUnits = len(failures)
		for _, err := range failures {
			p.log.Error("Module generation failed, skipping", zap.Error(err))
		}
		if p.cfg.Strict {
			return sum, fmt.Errorf("%w: %w", ErrUnitsFailed, genErr)
		}
	}

	if p.cfg.Verify {
		if err := gfs.Verify(ctx, p.cfg.Destination); err != nil {
			return sum, fmt.Errorf("generated modules are not up to date: %w", err)
		}
		return sum, nil
	}

	if err := os.MkdirAll(p.cfg.Destination, 0755); err != nil {
		return sum, fmt.Errorf("unable to create destination directory: %w", err)
	}
	gfs.IOLimit = p.cfg.WorkerCount()
	if err := gfs.Write(ctx, p.cfg.Destination); err != nil {
		return sum, err
	}
	return sum, nil
}
