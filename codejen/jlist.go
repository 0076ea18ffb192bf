package codejen

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// JennyListWithNamer creates a new JennyList that decorates errors using the
// provided namer func, which can derive a meaningful identifier string from the
// Input type for the JennyList.
func JennyListWithNamer[Input any](namer func(t Input) string) *JennyList[Input] {
	return &JennyList[Input]{
		inputnamer: namer,
	}
}

// JennyList is an ordered collection of jennies. When called, it constructs an
// [FS] by calling each of its contained jennies in order, on every Input.
//
// The File outputs of all member jennies exist in the same relative path
// namespace. JennyList does not modify emitted paths, and path uniqueness is
// enforced across the aggregate set of Files.
//
// Inputs are independent of one another and are generated concurrently, at
// most Workers at a time. Each Input is handed to a jenny whole, so anything
// order-sensitive within an Input is left as it is.
type JennyList[Input any] struct {
	mut sync.RWMutex

	jennies []OneToOne[Input]

	// postprocessors, to be run on every file returned from each contained jenny
	post []FileMapper

	// inputnamer, if non-nil, gives a name to an input.
	inputnamer func(t Input) string

	// Workers bounds concurrent calls to Generate. Zero or less means no bound.
	Workers int
}

func (js *JennyList[Input]) JennyName() string {
	return fmt.Sprintf("JennyList[%s]", reflect.TypeOf(new(Input)).Elem().Name())
}

func (js *JennyList[Input]) wrapinerr(in Input, err error) error {
	if err == nil || js.inputnamer == nil {
		return err
	}
	return fmt.Errorf("%w for input %q", err, js.inputnamer(in))
}

func (js *JennyList[Input]) generateOne(j OneToOne[Input], in Input) (*File, error) {
	f, err := j.Generate(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", j.JennyName(), err)
	}
	if !f.Exists() {
		return nil, nil
	}

	out := *f
	out.From = append([]NamedJenny{js, j}, f.From...)
	for _, post := range js.post {
		pf, err := post(out)
		if err != nil {
			return nil, fmt.Errorf("postprocessing of %s from %s failed: %w", out.RelativePath, jennystack(out.From), err)
		}
		out = pf
	}
	return &out, nil
}

// GenerateFS runs every jenny over every Input.
//
// A failure for one Input does not stop the others. The returned FS holds
// every file that was generated successfully, and the returned error, if any,
// holds one entry per failed Input, in Input order.
func (js *JennyList[Input]) GenerateFS(ctx context.Context, objs []Input) (*FS, error) {
	js.mut.RLock()
	defer js.mut.RUnlock()

	jfs := NewFS()
	errs := make([]error, len(objs)*len(js.jennies))

	g, ctx := errgroup.WithContext(ctx)
	if js.Workers > 0 {
		g.SetLimit(js.Workers)
	}
	for ji, j := range js.jennies {
		for oi, obj := range objs {
			slot := ji*len(objs) + oi
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				f, err := js.generateOne(j, obj)
				if err == nil && f != nil {
					err = jfs.Add(*f)
				}
				errs[slot] = js.wrapinerr(obj, err)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return jfs, err
	}

	var result *multierror.Error
	for _, err := range errs {
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	return jfs, result.ErrorOrNil()
}

// Generate is like GenerateFS, but returns a sorted list of Files.
func (js *JennyList[Input]) Generate(ctx context.Context, objs []Input) (Files, error) {
	jfs, err := js.GenerateFS(ctx, objs)
	return jfs.AsFiles(), err
}

// Append adds jennies to the end of the JennyList. In Generate, jennies are
// called in the order they were appended.
func (js *JennyList[Input]) Append(jennies ...OneToOne[Input]) {
	js.mut.Lock()
	js.jennies = append(js.jennies, jennies...)
	js.mut.Unlock()
}

// AddPostprocessors appends a slice of FileMapper to its internal list of
// postprocessors.
//
// Postprocessors are run (FIFO) on every File produced by the JennyList.
func (js *JennyList[Input]) AddPostprocessors(fn ...FileMapper) {
	js.mut.Lock()
	js.post = append(js.post, fn...)
	js.mut.Unlock()
}
