// Package build implements command line actions working with manifest and
// usage stores: compiling module sources, recording usage, collecting
// stylesheets.
package build

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"acss/compiler"
	"acss/manifest"
	"acss/source"
	"acss/state"
)

// Result of compiling single module source.
type Result struct {
	Origin string
	Module string
	State  manifest.State
}

type pending struct {
	unit
	err error
}

// compileUnits compiles sources and stores them into manifest. Modules may
// reference each other, so a source failing only with reference errors is
// retried after others were stored, as long as some progress is made.
func compileUnits(ctx context.Context, env *state.LocalEnv, units []unit, log *zap.Logger) ([]Result, error) {
	var (
		results []Result
		errs    error
		queue   = make([]pending, 0, len(units))
	)
	for _, u := range units {
		queue = append(queue, pending{unit: u})
	}

	for len(queue) > 0 {
		var retry []pending
		for _, p := range queue {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			res, err := compileUnit(env, p.unit, log)
			switch {
			case err == nil:
				results = append(results, res)
			case onlyReferences(err):
				retry = append(retry, pending{unit: p.unit, err: err})
			default:
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", p.origin, err))
			}
		}
		if len(retry) == len(queue) {
			// no progress, references are really missing
			for _, p := range retry {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", p.origin, p.err))
			}
			break
		}
		queue = retry
	}
	return results, errs
}

func compileUnit(env *state.LocalEnv, u unit, log *zap.Logger) (Result, error) {
	src, err := source.Parse(u.data)
	if err != nil {
		return Result{}, err
	}
	snapshot, err := env.Manifest.Read()
	if err != nil {
		return Result{}, fmt.Errorf("unable to read manifest: %w", err)
	}
	mod, err := env.Compiler(&snapshot).Compile(src)
	if err != nil {
		return Result{}, err
	}

	res := Result{Origin: u.origin, Module: mod.ID}
	if _, err := env.Manifest.Update(func(m *manifest.Manifest) error {
		if res.State = m.Apply(mod); res.State == manifest.Unchanged {
			return manifest.ErrNoChange
		}
		return nil
	}); err != nil {
		return Result{}, fmt.Errorf("unable to store module: %w", err)
	}

	log.Info("Module processed",
		zap.String("module", res.Module),
		zap.String("from", res.Origin),
		zap.Stringer("state", res.State),
		zap.Int("rulesets", len(mod.RuleSets)))
	return res, nil
}

func onlyReferences(err error) bool {
	for _, e := range multierr.Errors(err) {
		var re *compiler.ReferenceError
		if !errors.As(e, &re) {
			return false
		}
	}
	return true
}
