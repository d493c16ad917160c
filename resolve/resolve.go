// Package resolve is the runtime side of the engine: it turns references to
// compiled rule sets into class attribute values and records what was used so
// that the collector can tree-shake the stylesheet.
package resolve

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"acss/common"
	"acss/compiler"
	"acss/manifest"
	"acss/merge"
	"acss/model"
)

// Ref selects a rule set. Args bind runtime parameters of dynamic rule sets.
type Ref struct {
	Module string
	Name   string
	Args   map[string]string
}

// Static returns reference to rule set without parameters.
func Static(module, name string) Ref {
	return Ref{Module: module, Name: name}
}

// Dynamic returns reference to rule set with runtime parameters.
func Dynamic(module, name string, args map[string]string) Ref {
	return Ref{Module: module, Name: name, Args: args}
}

func (r Ref) String() string {
	return r.Module + ":" + r.Name
}

// CSS is what rendering layer puts into element attributes. Style is empty
// when none of the referenced rule sets takes parameters.
type CSS struct {
	Class string
	Style string
}

// Resolver reads manifest on every call, so it always observes the latest
// compiled state.
type Resolver struct {
	manifest manifest.Store[manifest.Manifest]
	usage    manifest.Store[manifest.Usage]
	log      *zap.Logger
}

func New(m manifest.Store[manifest.Manifest], u manifest.Store[manifest.Usage], log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{manifest: m, usage: u, log: log.Named("resolve")}
}

// GetCSS merges referenced rule sets in order, later references override
// earlier ones per property key.
func (r *Resolver) GetCSS(refs ...Ref) (CSS, error) {
	m, err := r.manifest.Read()
	if err != nil {
		return CSS{}, fmt.Errorf("unable to read manifest: %w", err)
	}

	var (
		acc   = merge.New()
		style []string
		used  = make([]manifest.UsageEntry, 0, len(refs))
	)
	for _, ref := range refs {
		rs, ok := m.RuleSet(ref.Module, ref.Name)
		if !ok {
			return CSS{}, &compiler.ReferenceError{Kind: common.ArtifactKindRuleset, Name: ref.String()}
		}
		decls, err := bind(rs, ref.Args)
		if err != nil {
			return CSS{}, err
		}
		style = append(style, decls...)
		acc = merge.Apply(acc, pairs(rs)...)
		used = append(used, manifest.UsageEntry{Module: rs.Module, Name: rs.Name})
	}
	if err := r.record(used...); err != nil {
		return CSS{}, err
	}
	return CSS{Class: acc.String(), Style: strings.Join(style, ";")}, nil
}

// GetCSSClass is GetCSS for callers which only need class attribute.
func (r *Resolver) GetCSSClass(refs ...Ref) (string, error) {
	out, err := r.GetCSS(refs...)
	if err != nil {
		return "", err
	}
	return out.Class, nil
}

// Theme returns class of a theme.
func (r *Resolver) Theme(module, name string) (string, error) {
	m, err := r.manifest.Read()
	if err != nil {
		return "", fmt.Errorf("unable to read manifest: %w", err)
	}
	t, ok := m.Theme(module, name)
	if !ok {
		return "", &compiler.ReferenceError{Kind: common.ArtifactKindTheme, Name: module + ":" + name}
	}
	if err := r.record(manifest.UsageEntry{Module: module, Name: name}); err != nil {
		return "", err
	}
	return t.Class, nil
}

// Marker returns class of a marker to be put on the contextual anchor element.
func (r *Resolver) Marker(module, name string) (string, error) {
	m, err := r.manifest.Read()
	if err != nil {
		return "", fmt.Errorf("unable to read manifest: %w", err)
	}
	mk, ok := m.Marker(module, name)
	if !ok {
		return "", &compiler.ReferenceError{Kind: common.ArtifactKindMarker, Name: module + ":" + name}
	}
	if err := r.record(manifest.UsageEntry{Module: module, Name: name}); err != nil {
		return "", err
	}
	return mk.Class, nil
}

func (r *Resolver) record(entries ...manifest.UsageEntry) error {
	if r.usage == nil || len(entries) == 0 {
		return nil
	}
	if err := manifest.Record(r.usage, entries...); err != nil {
		return fmt.Errorf("unable to record usage: %w", err)
	}
	return nil
}

func pairs(rs *model.RuleSet) []merge.Pair[string] {
	out := make([]merge.Pair[string], 0, len(rs.Rules)+1)
	for _, rule := range rs.Rules {
		out = append(out, merge.Pair[string]{Key: rule.Key, Value: rule.ClassName})
	}
	if rs.Debug != "" {
		out = append(out, merge.Pair[string]{Key: "debug::" + rs.Debug, Value: rs.Debug})
	}
	return out
}

// bind produces inline custom property declarations for rule set parameters.
func bind(rs *model.RuleSet, args map[string]string) ([]string, error) {
	for name := range args {
		if !rs.Dynamic || !slices.Contains(rs.Params, name) {
			return nil, compiler.Invalid(rs.Module, rs.Name, "", "unknown parameter %q", name)
		}
	}
	if !rs.Dynamic {
		return nil, nil
	}
	out := make([]string, 0, len(rs.Params))
	for i, p := range rs.Params {
		v, ok := args[p]
		if !ok {
			return nil, compiler.Invalid(rs.Module, rs.Name, "", "missing value for parameter %q", p)
		}
		out = append(out, rs.ParamVars[i]+":"+v)
	}
	return out, nil
}
