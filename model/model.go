// Package model defines compiled artifacts as they are persisted in the
// manifest. All artifacts are immutable once produced.
package model

import (
	"acss/common"
)

// ArtifactRef names an artifact by its module and declaration name. Usage
// records and dependencies are expressed with it.
type ArtifactRef struct {
	Kind   common.ArtifactKind `ion:"kind"`
	Module string              `ion:"module"`
	Name   string              `ion:"name"`
}

// Key returns map key for reference, kind is intentionally not a part of it:
// usage is recorded per (module, name) pair.
func (r ArtifactRef) Key() string {
	return r.Module + "\x00" + r.Name
}

// AtomicRule is one property under exactly one condition.
type AtomicRule struct {
	ClassName string `ion:"class"`
	Property  string `ion:"property"`
	// Condition in canonical text form, "default" for unconditioned rules.
	Condition string `ion:"condition"`
	// Key is the merge key: property for default condition,
	// "property::condition" otherwise.
	Key      string `ion:"key"`
	LTR      string `ion:"ltr"`
	RTL      string `ion:"rtl,omitempty"`
	Priority int    `ion:"priority"`
	// Group is at-rule chain of the rule, outermost first.
	Group string `ion:"group,omitempty"`
	// Unset marks tombstone: property was explicitly unset, no CSS is emitted.
	Unset bool `ion:"unset,omitempty"`
}

// HasRTL reports whether rule diverges for right to left documents.
func (r *AtomicRule) HasRTL() bool {
	return r.RTL != ""
}

// RuleSet is a named group of atomic rules, one per author style unit.
type RuleSet struct {
	Module string        `ion:"module"`
	Name   string        `ion:"name"`
	Seq    int           `ion:"seq"`
	Rules  []*AtomicRule `ion:"rules"`
	// Dynamic rule sets take runtime parameters, each parameter is bound to
	// custom property with name from ParamVars.
	Dynamic   bool          `ion:"dynamic,omitempty"`
	Params    []string      `ion:"params,omitempty"`
	ParamVars []string      `ion:"param_vars,omitempty"`
	Debug     string        `ion:"debug,omitempty"`
	Deps      []ArtifactRef `ion:"deps,omitempty"`
}

// Var is a single custom property value under condition (at-rule text, empty
// for default).
type Var struct {
	Name      string `ion:"name"`
	Ident     string `ion:"ident"`
	Condition string `ion:"condition,omitempty"`
	Value     string `ion:"value"`
}

// VarGroup is a named group of custom properties declared together.
type VarGroup struct {
	Module string        `ion:"module"`
	Name   string        `ion:"name"`
	Seq    int           `ion:"seq"`
	Vars   []Var         `ion:"vars"`
	Deps   []ArtifactRef `ion:"deps,omitempty"`
}

// Lookup returns custom property ident for variable name.
func (g *VarGroup) Lookup(name string) (string, bool) {
	for _, v := range g.Vars {
		if v.Name == name {
			return v.Ident, true
		}
	}
	return "", false
}

// Const is a compile-time constant, it produces no CSS.
type Const struct {
	Module string `ion:"module"`
	Name   string `ion:"name"`
	Seq    int    `ion:"seq"`
	Value  string `ion:"value"`
}

// Keyframes is a compiled @keyframes block.
type Keyframes struct {
	Module string        `ion:"module"`
	Name   string        `ion:"name"`
	Seq    int           `ion:"seq"`
	Ident  string        `ion:"ident"`
	LTR    string        `ion:"ltr"`
	Deps   []ArtifactRef `ion:"deps,omitempty"`
}

// Theme overrides variables of a group under a class.
type Theme struct {
	Module string `ion:"module"`
	Name   string `ion:"name"`
	Seq    int    `ion:"seq"`
	Class  string `ion:"class"`
	// Group references overridden variable group.
	Group ArtifactRef `ion:"group"`
	Vars  []Var       `ion:"vars"`
}

// PositionTry is a compiled @position-try block.
type PositionTry struct {
	Module string        `ion:"module"`
	Name   string        `ion:"name"`
	Seq    int           `ion:"seq"`
	Ident  string        `ion:"ident"`
	Text   string        `ion:"text"`
	Deps   []ArtifactRef `ion:"deps,omitempty"`
}

// ViewTransition is a set of ::view-transition-* rules bound to a class.
type ViewTransition struct {
	Module string        `ion:"module"`
	Name   string        `ion:"name"`
	Seq    int           `ion:"seq"`
	Ident  string        `ion:"ident"`
	Rules  []string      `ion:"rules"`
	Deps   []ArtifactRef `ion:"deps,omitempty"`
}

// Marker is a property-less class used as anchor for contextual selectors.
type Marker struct {
	Module string `ion:"module"`
	Name   string `ion:"name"`
	Seq    int    `ion:"seq"`
	Class  string `ion:"class"`
}

// Module is everything one compilation unit contributed.
type Module struct {
	ID              string
	Fingerprint     string
	RuleSets        []*RuleSet
	VarGroups       []*VarGroup
	Consts          []*Const
	Keyframes       []*Keyframes
	Themes          []*Theme
	PositionTries   []*PositionTry
	ViewTransitions []*ViewTransition
	Markers         []*Marker
}

// Ref returns reference to the rule set.
func (r *RuleSet) Ref() ArtifactRef {
	return ArtifactRef{Kind: common.ArtifactKindRuleset, Module: r.Module, Name: r.Name}
}

// Ref returns reference to the variable group.
func (g *VarGroup) Ref() ArtifactRef {
	return ArtifactRef{Kind: common.ArtifactKindVars, Module: g.Module, Name: g.Name}
}

// Ref returns reference to the constant.
func (c *Const) Ref() ArtifactRef {
	return ArtifactRef{Kind: common.ArtifactKindConsts, Module: c.Module, Name: c.Name}
}

// Ref returns reference to the keyframes.
func (k *Keyframes) Ref() ArtifactRef {
	return ArtifactRef{Kind: common.ArtifactKindKeyframes, Module: k.Module, Name: k.Name}
}

// Ref returns reference to the theme.
func (t *Theme) Ref() ArtifactRef {
	return ArtifactRef{Kind: common.ArtifactKindTheme, Module: t.Module, Name: t.Name}
}

// Ref returns reference to the position-try.
func (p *PositionTry) Ref() ArtifactRef {
	return ArtifactRef{Kind: common.ArtifactKindPositionTry, Module: p.Module, Name: p.Name}
}

// Ref returns reference to the view transition.
func (v *ViewTransition) Ref() ArtifactRef {
	return ArtifactRef{Kind: common.ArtifactKindViewTransition, Module: v.Module, Name: v.Name}
}

// Ref returns reference to the marker.
func (m *Marker) Ref() ArtifactRef {
	return ArtifactRef{Kind: common.ArtifactKindMarker, Module: m.Module, Name: m.Name}
}

// Artifact is anything manifest keeps per module. Order is global insertion
// sequence assigned by the manifest.
type Artifact interface {
	Ref() ArtifactRef
	Order() int
	SetOrder(int)
}

func (r *RuleSet) Order() int { return r.Seq }
func (r *RuleSet) SetOrder(seq int) { r.Seq = seq }
func (g *VarGroup) Order() int { return g.Seq }
func (g *VarGroup) SetOrder(seq int) { g.Seq = seq }
func (c *Const) Order() int { return c.Seq }
func (c *Const) SetOrder(seq int) { c.Seq = seq }
func (k *Keyframes) Order() int { return k.Seq }
func (k *Keyframes) SetOrder(seq int) { k.Seq = seq }
func (t *Theme) Order() int { return t.Seq }
func (t *Theme) SetOrder(seq int) { t.Seq = seq }
func (p *PositionTry) Order() int { return p.Seq }
func (p *PositionTry) SetOrder(seq int) { p.Seq = seq }
func (v *ViewTransition) Order() int { return v.Seq }
func (v *ViewTransition) SetOrder(seq int) { v.Seq = seq }
func (m *Marker) Order() int { return m.Seq }
func (m *Marker) SetOrder(seq int) { m.Seq = seq }
