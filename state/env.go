// Package state defines shared program state.
package state

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"acss/collect"
	"acss/compiler"
	"acss/config"
	"acss/manifest"
	"acss/resolve"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// opened lazily by commands which need them
	Manifest *manifest.FileStore[manifest.Manifest]
	Usage    manifest.Store[manifest.Usage]

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}

// OpenStores opens manifest and usage stores configured, already opened stores
// are kept.
func (e *LocalEnv) OpenStores() error {
	var err error
	if e.Manifest == nil {
		if e.Manifest, err = manifest.OpenFile[manifest.Manifest](e.Cfg.Store.Manifest, manifest.SchemaVersion, e.Log); err != nil {
			return fmt.Errorf("unable to open manifest: %w", err)
		}
	}
	if e.Usage == nil {
		if e.Usage, err = e.Cfg.Store.OpenUsage(e.Log); err != nil {
			return fmt.Errorf("unable to open usage: %w", err)
		}
	}
	return nil
}

// CloseStores closes whatever was opened.
func (e *LocalEnv) CloseStores() (err error) {
	if e.Manifest != nil {
		err = multierr.Append(err, e.Manifest.Close())
		e.Manifest = nil
	}
	if e.Usage != nil {
		err = multierr.Append(err, e.Usage.Close())
		e.Usage = nil
	}
	return err
}

// Compiler returns module compiler configured and bound to the manifest
// snapshot for cross-module references.
func (e *LocalEnv) Compiler(catalog compiler.Catalog) *compiler.Compiler {
	return compiler.New(e.Cfg.Compiler.CompilerOptions(), catalog, e.Log)
}

// Collector returns configured stylesheet collector.
func (e *LocalEnv) Collector() *collect.Collector {
	return collect.New(e.Cfg.CollectOptions(), e.Log)
}

// Resolver returns runtime resolver over opened stores.
func (e *LocalEnv) Resolver() *resolve.Resolver {
	return resolve.New(e.Manifest, e.Usage, e.Log)
}
