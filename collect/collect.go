// Package collect produces the final stylesheet: it selects artifacts which
// were recorded as used (together with everything they depend on) and orders
// them deterministically.
package collect

import (
	"cmp"
	"slices"
	"strings"

	"acss/atrule"
	"acss/common"
	"acss/condition"
	"acss/css"
	"acss/manifest"
	"acss/model"
)

// Entry is a single piece of output CSS. Atomic rules carry their class name,
// everything else (variables, themes, keyframes, position-try and view
// transitions) has empty ClassName and zero Priority.
type Entry struct {
	Kind      common.ArtifactKind
	Module    string
	Name      string
	ClassName string
	LTR       string
	RTL       string
	Priority  int
	Group     string

	rank int
	seq  int
}

// Atomic reports whether entry is an atomic class rule.
func (e Entry) Atomic() bool {
	return e.Kind == common.ArtifactKindRuleset
}

// non-atomic blocks precede rules, variables go before themes which
// override them
var kindRank = map[common.ArtifactKind]int{
	common.ArtifactKindVars:           1,
	common.ArtifactKindTheme:          2,
	common.ArtifactKindKeyframes:      3,
	common.ArtifactKindPositionTry:    4,
	common.ArtifactKindViewTransition: 5,
	common.ArtifactKindRuleset:        10,
}

// Collect returns CSS entries of used artifacts ordered by ascending priority
// with ties broken by manifest insertion order. Nothing is returned when no
// usage was recorded.
func Collect(m *manifest.Manifest, u *manifest.Usage) []Entry {
	if m == nil || u == nil || u.Len() == 0 {
		return nil
	}
	used := closure(m, u)

	var out []Entry
	for _, rs := range m.RuleSets {
		if !used[rs.Ref().Key()] {
			continue
		}
		for _, r := range rs.Rules {
			if r.Unset {
				continue
			}
			out = append(out, Entry{
				Kind:      common.ArtifactKindRuleset,
				Module:    rs.Module,
				Name:      rs.Name,
				ClassName: r.ClassName,
				LTR:       r.LTR,
				RTL:       r.RTL,
				Priority:  r.Priority,
				Group:     r.Group,
				rank:      kindRank[common.ArtifactKindRuleset],
				seq:       rs.Seq,
			})
		}
	}
	for _, g := range m.VarGroups {
		if used[g.Ref().Key()] {
			out = append(out, blocks(g.Ref(), g.Seq, ":root", g.Vars)...)
		}
	}
	for _, t := range m.Themes {
		if used[t.Ref().Key()] {
			out = append(out, blocks(t.Ref(), t.Seq, "."+t.Class, t.Vars)...)
		}
	}
	for _, k := range m.Animations {
		if used[k.Ref().Key()] {
			out = append(out, single(k.Ref(), k.Seq, k.LTR))
		}
	}
	for _, p := range m.PositionTries {
		if used[p.Ref().Key()] {
			out = append(out, single(p.Ref(), p.Seq, p.Text))
		}
	}
	for _, v := range m.ViewTransitions {
		if used[v.Ref().Key()] {
			out = append(out, single(v.Ref(), v.Seq, strings.Join(v.Rules, "")))
		}
	}

	slices.SortStableFunc(out, func(a, b Entry) int {
		return cmp.Or(
			cmp.Compare(a.Priority, b.Priority),
			cmp.Compare(a.rank, b.rank),
			cmp.Compare(a.seq, b.seq),
		)
	})

	// identical declarations from different rule sets share the class
	seen := make(map[string]bool)
	return slices.DeleteFunc(out, func(e Entry) bool {
		if !e.Atomic() {
			return false
		}
		if seen[e.ClassName] {
			return true
		}
		seen[e.ClassName] = true
		return false
	})
}

// closure returns keys of used artifacts extended with everything they depend
// on.
func closure(m *manifest.Manifest, u *manifest.Usage) map[string]bool {
	deps := make(map[string][]model.ArtifactRef)
	add := func(ref model.ArtifactRef, refs []model.ArtifactRef) {
		deps[ref.Key()] = append(deps[ref.Key()], refs...)
	}
	for _, rs := range m.RuleSets {
		add(rs.Ref(), rs.Deps)
	}
	for _, g := range m.VarGroups {
		add(g.Ref(), g.Deps)
	}
	for _, k := range m.Animations {
		add(k.Ref(), k.Deps)
	}
	for _, t := range m.Themes {
		add(t.Ref(), []model.ArtifactRef{t.Group})
	}
	for _, p := range m.PositionTries {
		add(p.Ref(), p.Deps)
	}
	for _, v := range m.ViewTransitions {
		add(v.Ref(), v.Deps)
	}

	used := make(map[string]bool)
	var queue []string
	for _, e := range u.Entries {
		queue = append(queue, model.ArtifactRef{Module: e.Module, Name: e.Name}.Key())
	}
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		if used[key] {
			continue
		}
		used[key] = true
		for _, d := range deps[key] {
			queue = append(queue, d.Key())
		}
	}
	return used
}

func single(ref model.ArtifactRef, seq int, text string) Entry {
	return Entry{Kind: ref.Kind, Module: ref.Module, Name: ref.Name, LTR: text, rank: kindRank[ref.Kind], seq: seq}
}

// blocks renders custom properties into one block per condition, default
// condition first, others in order of appearance.
func blocks(ref model.ArtifactRef, seq int, selector string, vars []model.Var) []Entry {
	var conds []string
	byCond := make(map[string]css.Decls)
	for _, v := range vars {
		if _, ok := byCond[v.Condition]; !ok {
			conds = append(conds, v.Condition)
		}
		byCond[v.Condition] = append(byCond[v.Condition], css.Decl{Property: v.Ident, Value: v.Value})
	}
	slices.SortStableFunc(conds, func(a, b string) int {
		return cmp.Compare(btoi(a != ""), btoi(b != ""))
	})

	out := make([]Entry, 0, len(conds))
	for _, cond := range conds {
		body := byCond[cond].String()
		text := css.Block(selector, body)
		group := ""
		if cond != "" {
			if c, err := condition.Parse(cond); err == nil {
				w := atrule.Compose(c.Finalize())
				text = w.Rule(selector, body)
				group = w.Group()
			} else {
				text = css.Nest([]string{cond}, text)
				group = cond
			}
		}
		e := single(ref, seq, text)
		e.Group = group
		out = append(out, e)
	}
	return out
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
