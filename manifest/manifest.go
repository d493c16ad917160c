// Package manifest keeps compiled artifacts of all modules and usage records
// in durable, concurrency safe stores.
package manifest

import (
	"slices"

	"acss/model"
)

// SchemaVersion is persisted with manifest, data written with different
// version is discarded.
const SchemaVersion = 1

// State of module data after Apply.
type State int

const (
	// Compiled is the first successful compilation of a module.
	Compiled State = iota + 1
	// Unchanged means module fingerprint did not change, manifest was not
	// modified.
	Unchanged
	// Recompiled means all prior artifacts of the module were replaced.
	Recompiled
)

func (s State) String() string {
	switch s {
	case Compiled:
		return "compiled"
	case Unchanged:
		return "unchanged"
	case Recompiled:
		return "recompiled"
	}
	return "absent"
}

// ModuleEntry records module fingerprint.
type ModuleEntry struct {
	ID          string `ion:"id"`
	Fingerprint string `ion:"fingerprint"`
}

// Manifest is process-wide compiled state. Keyframes are kept in Animations
// since Keyframes is the lookup method. It is a plain value: readers get
// their own decoded copy, so nothing is shared between callers.
type Manifest struct {
	Seq             int                     `ion:"seq"`
	Modules         []ModuleEntry           `ion:"modules"`
	RuleSets        []*model.RuleSet        `ion:"rulesets"`
	VarGroups       []*model.VarGroup       `ion:"vars"`
	Consts          []*model.Const          `ion:"consts"`
	Animations      []*model.Keyframes      `ion:"keyframes"`
	Themes          []*model.Theme          `ion:"themes"`
	PositionTries   []*model.PositionTry    `ion:"position_try"`
	ViewTransitions []*model.ViewTransition `ion:"view_transitions"`
	Markers         []*model.Marker         `ion:"markers"`
}

// Clone returns copy of manifest which may be modified independently.
// Artifacts are immutable and shared.
func (m Manifest) Clone() Manifest {
	m.Modules = slices.Clone(m.Modules)
	m.RuleSets = slices.Clone(m.RuleSets)
	m.VarGroups = slices.Clone(m.VarGroups)
	m.Consts = slices.Clone(m.Consts)
	m.Animations = slices.Clone(m.Animations)
	m.Themes = slices.Clone(m.Themes)
	m.PositionTries = slices.Clone(m.PositionTries)
	m.ViewTransitions = slices.Clone(m.ViewTransitions)
	m.Markers = slices.Clone(m.Markers)
	return m
}

// IsEmpty reports whether nothing was compiled into manifest.
func (m *Manifest) IsEmpty() bool {
	return len(m.Modules) == 0
}

// Fingerprint returns last stored fingerprint of module.
func (m *Manifest) Fingerprint(module string) (string, bool) {
	i := slices.IndexFunc(m.Modules, func(e ModuleEntry) bool { return e.ID == module })
	if i < 0 {
		return "", false
	}
	return m.Modules[i].Fingerprint, true
}

// Apply stores compiled module. When module fingerprint did not change
// manifest is left intact. Otherwise every artifact of the module is replaced,
// artifacts which existed before keep their insertion sequence.
func (m *Manifest) Apply(mod *model.Module) State {
	i := slices.IndexFunc(m.Modules, func(e ModuleEntry) bool { return e.ID == mod.ID })
	if i >= 0 && m.Modules[i].Fingerprint == mod.Fingerprint {
		return Unchanged
	}

	state := Compiled
	if i >= 0 {
		state = Recompiled
		m.Modules[i].Fingerprint = mod.Fingerprint
	} else {
		m.Modules = append(m.Modules, ModuleEntry{ID: mod.ID, Fingerprint: mod.Fingerprint})
	}

	m.RuleSets = replace(m, m.RuleSets, mod.ID, mod.RuleSets)
	m.VarGroups = replace(m, m.VarGroups, mod.ID, mod.VarGroups)
	m.Consts = replace(m, m.Consts, mod.ID, mod.Consts)
	m.Animations = replace(m, m.Animations, mod.ID, mod.Keyframes)
	m.Themes = replace(m, m.Themes, mod.ID, mod.Themes)
	m.PositionTries = replace(m, m.PositionTries, mod.ID, mod.PositionTries)
	m.ViewTransitions = replace(m, m.ViewTransitions, mod.ID, mod.ViewTransitions)
	m.Markers = replace(m, m.Markers, mod.ID, mod.Markers)
	return state
}

// Remove drops module and all its artifacts.
func (m *Manifest) Remove(module string) bool {
	i := slices.IndexFunc(m.Modules, func(e ModuleEntry) bool { return e.ID == module })
	if i < 0 {
		return false
	}
	m.Modules = slices.Delete(m.Modules, i, i+1)
	m.RuleSets = replace(m, m.RuleSets, module, nil)
	m.VarGroups = replace(m, m.VarGroups, module, nil)
	m.Consts = replace(m, m.Consts, module, nil)
	m.Animations = replace(m, m.Animations, module, nil)
	m.Themes = replace(m, m.Themes, module, nil)
	m.PositionTries = replace(m, m.PositionTries, module, nil)
	m.ViewTransitions = replace(m, m.ViewTransitions, module, nil)
	m.Markers = replace(m, m.Markers, module, nil)
	return true
}

func replace[T model.Artifact](m *Manifest, items []T, module string, fresh []T) []T {
	old := make(map[model.ArtifactRef]int)
	kept := make([]T, 0, len(items)+len(fresh))
	for _, it := range items {
		if ref := it.Ref(); ref.Module == module {
			old[ref] = it.Order()
			continue
		}
		kept = append(kept, it)
	}
	for _, it := range fresh {
		seq, ok := old[it.Ref()]
		if !ok {
			m.Seq++
			seq = m.Seq
		}
		it.SetOrder(seq)
		kept = append(kept, it)
	}
	return kept
}

func find[T model.Artifact](items []T, module, name string) (T, bool) {
	for _, it := range items {
		if ref := it.Ref(); ref.Module == module && ref.Name == name {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// RuleSet looks up rule set by module and name.
func (m *Manifest) RuleSet(module, name string) (*model.RuleSet, bool) {
	return find(m.RuleSets, module, name)
}

// Const looks up constant.
func (m *Manifest) Const(module, name string) (*model.Const, bool) {
	return find(m.Consts, module, name)
}

// VarGroup looks up variable group.
func (m *Manifest) VarGroup(module, name string) (*model.VarGroup, bool) {
	return find(m.VarGroups, module, name)
}

// Keyframes looks up keyframes.
func (m *Manifest) Keyframes(module, name string) (*model.Keyframes, bool) {
	return find(m.Animations, module, name)
}

// Theme looks up theme.
func (m *Manifest) Theme(module, name string) (*model.Theme, bool) {
	return find(m.Themes, module, name)
}

// PositionTry looks up position-try.
func (m *Manifest) PositionTry(module, name string) (*model.PositionTry, bool) {
	return find(m.PositionTries, module, name)
}

// ViewTransition looks up view transition.
func (m *Manifest) ViewTransition(module, name string) (*model.ViewTransition, bool) {
	return find(m.ViewTransitions, module, name)
}

// Marker looks up marker.
func (m *Manifest) Marker(module, name string) (*model.Marker, bool) {
	return find(m.Markers, module, name)
}

// Artifacts returns every artifact in the manifest.
func (m *Manifest) Artifacts() []model.Artifact {
	var out []model.Artifact
	out = appendAll(out, m.RuleSets)
	out = appendAll(out, m.VarGroups)
	out = appendAll(out, m.Consts)
	out = appendAll(out, m.Animations)
	out = appendAll(out, m.Themes)
	out = appendAll(out, m.PositionTries)
	out = appendAll(out, m.ViewTransitions)
	out = appendAll(out, m.Markers)
	return out
}

func appendAll[T model.Artifact](out []model.Artifact, items []T) []model.Artifact {
	for _, it := range items {
		out = append(out, it)
	}
	return out
}
