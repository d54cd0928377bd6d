package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-pkgz/syncs"
	"github.com/hashicorp/go-multierror"

	"github.com/semihalev/go-udf"
)

// Case is one usage site to evaluate: a function and the rows it sees.
type Case struct {
	Name     string
	Function udf.Binding
	Rows     [][]Value
}

// CaseResult is the outcome of running a Case on its own instance.
type CaseResult struct {
	Case       Case
	InstanceID string
	InitError  string // message written by init, empty on success
	Settings   Settings
	Rows       []udf.RowResult
}

// Run evaluates one case: init with arguments declared from the rows, each
// row in order, then deinit. A setup failure is part of the result, not an
// error; errors are reserved for malformed cases and lifecycle misuse.
func Run(c Case) (CaseResult, error) {
	res := CaseResult{Case: c}
	decl, err := Declare(c.Rows)
	if err != nil {
		return res, fmt.Errorf("case %q: %w", c.Name, err)
	}

	in := NewInstance(c.Function)
	res.InstanceID = in.ID
	if err := in.Init(decl); err != nil {
		if udf.IsError(err, udf.ErrSetup) {
			res.InitError = err.Error()
			return res, nil
		}
		return res, err
	}
	res.Settings = in.Settings()

	for _, row := range c.Rows {
		r, err := in.Row(row)
		if err != nil {
			return res, err
		}
		res.Rows = append(res.Rows, r)
	}
	return res, in.Deinit()
}

// RunCases runs every case on its own instance, up to concurrency at a
// time. Results keep the order of cases; all case errors are returned
// together.
func RunCases(ctx context.Context, cases []Case, concurrency int) ([]CaseResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]CaseResult, len(cases))
	var errs *multierror.Error
	var mu sync.Mutex

	wg := syncs.NewErrSizedGroup(concurrency, syncs.Context(ctx), syncs.Preemptive)
	for i, c := range cases {
		wg.Go(func() error {
			res, err := Run(c)
			results[i] = res
			if err != nil {
				mu.Lock()
				errs = multierror.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		errs = multierror.Append(errs, err)
	}
	return results, errs.ErrorOrNil()
}
