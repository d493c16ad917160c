package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"acss/manifest"
	"acss/state"
)

func output(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// open makes sure stores are available, they are closed when program ends.
func open(ctx context.Context) (*state.LocalEnv, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env := state.EnvFromContext(ctx)
	if err := env.OpenStores(); err != nil {
		return nil, err
	}
	return env, nil
}

// snapshot puts current manifest into debug report, both as is and in
// readable form. Called once per command.
func snapshot(env *state.LocalEnv) {
	if env.Rpt == nil {
		return
	}
	if err := env.Rpt.StoreCopy("manifest.ion", env.Manifest.Path()); err != nil {
		env.Log.Debug("Manifest is not in the report", zap.Error(err))
	}
	if m, err := env.Manifest.Read(); err == nil {
		env.Rpt.StoreData("manifest.txt", []byte(m.String()))
	}
}

// Compile compiles module sources into manifest.
func Compile(ctx context.Context, cmd *cli.Command) error {
	env, err := open(ctx)
	if err != nil {
		return err
	}
	log := env.Log.Named("compile")

	if cmd.Args().Len() == 0 {
		return errors.New("no input source has been specified")
	}

	log.Info("Processing starting", zap.Strings("sources", cmd.Args().Slice()))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	units, err := discover(ctx, cmd.Args().Slice(), log)
	if err != nil {
		return err
	}
	results, err := compileUnits(ctx, env, units, log)
	snapshot(env)

	changed := 0
	for _, r := range results {
		if r.State != manifest.Unchanged {
			changed++
		}
	}
	log.Info("Modules compiled", zap.Int("found", len(units)), zap.Int("stored", len(results)), zap.Int("changed", changed))
	if err != nil {
		return fmt.Errorf("some modules were not compiled: %w", err)
	}
	return nil
}

// Use records artifacts as used, the way runtime does on first reference.
func Use(ctx context.Context, cmd *cli.Command) error {
	env, err := open(ctx)
	if err != nil {
		return err
	}
	if cmd.Args().Len() < 2 {
		return errors.New("module and at least one artifact name are required")
	}
	module, names := cmd.Args().First(), cmd.Args().Tail()

	if err := record(env, module, names...); err != nil {
		return err
	}
	env.Log.Named("use").Info("Usage recorded", zap.String("module", module), zap.Strings("names", names))
	return nil
}

func record(env *state.LocalEnv, module string, names ...string) error {
	m, err := env.Manifest.Read()
	if err != nil {
		return fmt.Errorf("unable to read manifest: %w", err)
	}
	known := make(map[string]bool)
	for _, a := range m.Artifacts() {
		if ref := a.Ref(); ref.Module == module {
			known[ref.Name] = true
		}
	}

	entries := make([]manifest.UsageEntry, 0, len(names))
	for _, n := range names {
		if !known[n] {
			return fmt.Errorf("module %q has no compiled artifact %q", module, n)
		}
		entries = append(entries, manifest.UsageEntry{Module: module, Name: n})
	}
	if err := manifest.Record(env.Usage, entries...); err != nil {
		return fmt.Errorf("unable to record usage: %w", err)
	}
	return nil
}

// Collect writes tree-shaken stylesheet to destination file or standard
// output.
func Collect(ctx context.Context, cmd *cli.Command) error {
	env, err := open(ctx)
	if err != nil {
		return err
	}
	log := env.Log.Named("collect")
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	var buf bytes.Buffer
	rules, err := writeStylesheet(env, &buf)
	if err != nil {
		return err
	}
	env.Rpt.StoreData("stylesheet.css", bytes.Clone(buf.Bytes()))
	snapshot(env)

	fname := cmd.Args().First()
	if fname == "" {
		_, err = buf.WriteTo(output(cmd))
		log.Debug("Stylesheet written", zap.String("file", "STDOUT"), zap.Int("items", rules))
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fname), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	if err := os.WriteFile(fname, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("unable to write stylesheet: %w", err)
	}
	log.Info("Stylesheet written", zap.String("file", fname), zap.Int("items", rules))
	return nil
}

func writeStylesheet(env *state.LocalEnv, w io.Writer) (int, error) {
	m, err := env.Manifest.Read()
	if err != nil {
		return 0, fmt.Errorf("unable to read manifest: %w", err)
	}
	u, err := env.Usage.Read()
	if err != nil {
		return 0, fmt.Errorf("unable to read usage: %w", err)
	}
	sheet, err := env.Collector().Stylesheet(&m, &u)
	if err != nil {
		return 0, err
	}
	if _, err := sheet.WriteTo(w); err != nil {
		return 0, fmt.Errorf("unable to write stylesheet: %w", err)
	}
	return len(sheet.Items), nil
}

// List prints compiled modules.
func List(ctx context.Context, cmd *cli.Command) error {
	env, err := open(ctx)
	if err != nil {
		return err
	}
	return listModules(env, output(cmd))
}

func listModules(env *state.LocalEnv, w io.Writer) error {
	m, err := env.Manifest.Read()
	if err != nil {
		return fmt.Errorf("unable to read manifest: %w", err)
	}
	u, err := env.Usage.Read()
	if err != nil {
		return fmt.Errorf("unable to read usage: %w", err)
	}

	type counts struct{ artifacts, used int }
	stats := make(map[string]*counts, len(m.Modules))
	for _, e := range m.Modules {
		stats[e.ID] = &counts{}
	}
	for _, a := range m.Artifacts() {
		ref := a.Ref()
		c, ok := stats[ref.Module]
		if !ok {
			continue
		}
		c.artifacts++
		if u.Has(ref.Module, ref.Name) {
			c.used++
		}
	}

	ids := make([]string, 0, len(m.Modules))
	for _, e := range m.Modules {
		ids = append(ids, e.ID)
	}
	sort.Sort(natural.StringSlice(ids))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODULE\tFINGERPRINT\tARTIFACTS\tUSED")
	for _, id := range ids {
		fp, _ := m.Fingerprint(id)
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", id, fp, stats[id].artifacts, stats[id].used)
	}
	return tw.Flush()
}

// Reset empties manifest, and usage records when asked.
func Reset(ctx context.Context, cmd *cli.Command) error {
	env, err := open(ctx)
	if err != nil {
		return err
	}
	return reset(env, cmd.Bool("usage"))
}

func reset(env *state.LocalEnv, usage bool) error {
	log := env.Log.Named("reset")
	if err := env.Manifest.Reset(); err != nil {
		return fmt.Errorf("unable to reset manifest: %w", err)
	}
	log.Info("Manifest reset", zap.String("file", env.Manifest.Path()))
	if !usage {
		return nil
	}
	if err := env.Usage.Reset(); err != nil {
		return fmt.Errorf("unable to reset usage: %w", err)
	}
	log.Info("Usage reset")
	return nil
}
