package manifest

import (
	"sort"

	"github.com/maruel/natural"

	"acss/model"
	"acss/utils/debug"
)

// String returns readable tree of manifest grouped by module. It exists
// solely for manual inspection, debug report carries it next to the binary
// manifest.
func (m *Manifest) String() string {
	if m == nil {
		return "<nil Manifest>"
	}

	byModule := make(map[string][]model.Artifact)
	for _, a := range m.Artifacts() {
		ref := a.Ref()
		byModule[ref.Module] = append(byModule[ref.Module], a)
	}
	ids := make([]string, 0, len(m.Modules))
	for _, e := range m.Modules {
		ids = append(ids, e.ID)
	}
	sort.Sort(natural.StringSlice(ids))

	tw := debug.NewTreeWriter()
	tw.Line(0, "Manifest seq[%d] modules[%d]", m.Seq, len(m.Modules))
	for _, id := range ids {
		fp, _ := m.Fingerprint(id)
		tw.Line(1, "Module %q fingerprint[%s] artifacts[%d]", id, fp, len(byModule[id]))
		for _, a := range byModule[id] {
			dumpArtifact(tw, a)
		}
	}
	return tw.String()
}

func dumpDeps(tw *debug.TreeWriter, depth int, deps []model.ArtifactRef) {
	for _, d := range deps {
		tw.Line(depth, "depends on %s %s:%s", d.Kind, d.Module, d.Name)
	}
}

func dumpVars(tw *debug.TreeWriter, depth int, vars []model.Var) {
	for _, v := range vars {
		if v.Condition == "" {
			tw.Line(depth, "%s %s: %q", v.Name, v.Ident, v.Value)
		} else {
			tw.Line(depth, "%s %s: %q when %s", v.Name, v.Ident, v.Value, v.Condition)
		}
	}
}

func dumpArtifact(tw *debug.TreeWriter, a model.Artifact) {
	ref := a.Ref()
	tw.Line(2, "%s %q seq[%d]", ref.Kind, ref.Name, a.Order())

	switch v := a.(type) {
	case *model.RuleSet:
		tw.Field(3, "debug", v.Debug)
		if v.Dynamic {
			tw.Line(3, "params %v as %v", v.Params, v.ParamVars)
		}
		for _, r := range v.Rules {
			if r.Unset {
				tw.Line(3, "%s key[%s] unset", r.Property, r.Key)
				continue
			}
			tw.Line(3, "%s key[%s] class[%s] priority[%d]", r.Property, r.Key, r.ClassName, r.Priority)
			tw.Field(4, "ltr", r.LTR)
			tw.Field(4, "rtl", r.RTL)
		}
		dumpDeps(tw, 3, v.Deps)
	case *model.VarGroup:
		dumpVars(tw, 3, v.Vars)
		dumpDeps(tw, 3, v.Deps)
	case *model.Const:
		tw.Field(3, "value", v.Value)
	case *model.Keyframes:
		tw.Field(3, "ltr", v.LTR)
		dumpDeps(tw, 3, v.Deps)
	case *model.Theme:
		tw.Line(3, "class[%s] overrides %s:%s", v.Class, v.Group.Module, v.Group.Name)
		dumpVars(tw, 3, v.Vars)
	case *model.PositionTry:
		tw.Field(3, "text", v.Text)
		dumpDeps(tw, 3, v.Deps)
	case *model.ViewTransition:
		tw.Line(3, "ident[%s]", v.Ident)
		for _, r := range v.Rules {
			tw.Field(3, "rule", r)
		}
		dumpDeps(tw, 3, v.Deps)
	case *model.Marker:
		tw.Line(3, "class[%s]", v.Class)
	}
}
