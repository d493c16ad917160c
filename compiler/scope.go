package compiler

import (
	"slices"
	"strings"

	"acss/common"
	"acss/condition"
	"acss/model"
	"acss/naming"
)

// Catalog gives access to artifacts compiled from other modules. Manifest
// snapshot implements it.
type Catalog interface {
	Const(module, name string) (*model.Const, bool)
	VarGroup(module, name string) (*model.VarGroup, bool)
	Keyframes(module, name string) (*model.Keyframes, bool)
	Theme(module, name string) (*model.Theme, bool)
	PositionTry(module, name string) (*model.PositionTry, bool)
	ViewTransition(module, name string) (*model.ViewTransition, bool)
	Marker(module, name string) (*model.Marker, bool)
}

// scope resolves references while compiling a single declaration and
// accumulates what the declaration depends on.
type scope struct {
	opts    Options
	src     *Source
	catalog Catalog

	params map[string]string
	deps   []model.ArtifactRef
}

func (s *scope) module() string {
	if s.src == nil {
		return ""
	}
	return s.src.Module
}

func (s *scope) local(r Ref) bool {
	return r.Module == "" || r.Module == s.module()
}

func (s *scope) depend(kind common.ArtifactKind, module, name string) {
	ref := model.ArtifactRef{Kind: kind, Module: module, Name: name}
	if !slices.Contains(s.deps, ref) {
		s.deps = append(s.deps, ref)
	}
}

func (s *scope) takeDeps() []model.ArtifactRef {
	deps := s.deps
	s.deps = nil
	return deps
}

// resolve turns reference into value. Constants resolve to their value,
// everything else to identifier text.
func (s *scope) resolve(r Ref) (Value, error) {
	module := r.Module
	if s.local(r) {
		module = s.module()
	}
	unknown := &ReferenceError{Kind: r.Kind, Name: r.String()}

	switch r.Kind {
	case common.ArtifactKindConsts:
		if s.local(r) {
			if s.src != nil {
				for _, c := range s.src.Consts {
					if c.Name == r.Name {
						return c.Value, nil
					}
				}
			}
			return Value{}, unknown
		}
		if c, ok := s.lookupConst(module, r.Name); ok {
			return String(c.Value), nil
		}
		return Value{}, unknown

	case common.ArtifactKindVars:
		if !s.hasVar(module, r) {
			return Value{}, unknown
		}
		s.depend(r.Kind, module, r.Name)
		return String("var(" + naming.Var(module, r.Name, r.Member) + ")"), nil

	case common.ArtifactKindKeyframes:
		if !s.has(module, r, func(src *Source) bool {
			return slices.ContainsFunc(src.Keyframes, func(d KeyframesDecl) bool { return d.Name == r.Name })
		}, func(c Catalog) bool { _, ok := c.Keyframes(module, r.Name); return ok }) {
			return Value{}, unknown
		}
		s.depend(r.Kind, module, r.Name)
		return String(naming.Keyframes(module, r.Name)), nil

	case common.ArtifactKindPositionTry:
		if !s.has(module, r, func(src *Source) bool {
			return slices.ContainsFunc(src.PositionTry, func(d PositionTryDecl) bool { return d.Name == r.Name })
		}, func(c Catalog) bool { _, ok := c.PositionTry(module, r.Name); return ok }) {
			return Value{}, unknown
		}
		s.depend(r.Kind, module, r.Name)
		return String(naming.PositionTry(module, r.Name)), nil

	case common.ArtifactKindViewTransition:
		if !s.has(module, r, func(src *Source) bool {
			return slices.ContainsFunc(src.ViewTransitions, func(d ViewTransitionDecl) bool { return d.Name == r.Name })
		}, func(c Catalog) bool { _, ok := c.ViewTransition(module, r.Name); return ok }) {
			return Value{}, unknown
		}
		s.depend(r.Kind, module, r.Name)
		return String(naming.ViewTransition(module, r.Name)), nil

	case common.ArtifactKindTheme:
		if !s.has(module, r, func(src *Source) bool {
			return slices.ContainsFunc(src.Themes, func(d ThemeDecl) bool { return d.Name == r.Name })
		}, func(c Catalog) bool { _, ok := c.Theme(module, r.Name); return ok }) {
			return Value{}, unknown
		}
		s.depend(r.Kind, module, r.Name)
		return String(naming.Theme(module, r.Name)), nil

	case common.ArtifactKindMarker:
		ref := r.Name
		if r.Module != "" {
			ref = r.Module + ":" + r.Name
		}
		class, err := s.marker(ref)
		if err != nil {
			return Value{}, err
		}
		return String(class), nil
	}
	return Value{}, Invalid("", "", "", "reference %q cannot be used as a value", r.String())
}

func (s *scope) has(module string, r Ref, inSource func(*Source) bool, inCatalog func(Catalog) bool) bool {
	if s.local(r) {
		return s.src != nil && inSource(s.src)
	}
	return s.catalog != nil && inCatalog(s.catalog)
}

func (s *scope) hasVar(module string, r Ref) bool {
	if s.local(r) {
		if s.src == nil {
			return false
		}
		for _, g := range s.src.Vars {
			if g.Name == r.Name {
				return slices.ContainsFunc(g.Vars, func(v VarDecl) bool { return v.Name == r.Member })
			}
		}
		return false
	}
	if s.catalog == nil {
		return false
	}
	g, ok := s.catalog.VarGroup(module, r.Name)
	if !ok {
		return false
	}
	_, ok = g.Lookup(r.Member)
	return ok
}

func (s *scope) lookupConst(module, name string) (*model.Const, bool) {
	if s.catalog == nil {
		return nil, false
	}
	return s.catalog.Const(module, name)
}

// marker resolves marker reference ("card", "module:card") into class name,
// empty reference means default marker.
func (s *scope) marker(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return naming.DefaultMarker, nil
	}
	r := Ref{Kind: common.ArtifactKindMarker, Name: ref}
	if i := strings.LastIndexByte(ref, ':'); i >= 0 {
		r.Module, r.Name = ref[:i], ref[i+1:]
	}
	module := r.Module
	if s.local(r) {
		module = s.module()
	}
	if !s.has(module, r, func(src *Source) bool {
		return slices.Contains(src.Markers, r.Name)
	}, func(c Catalog) bool { _, ok := c.Marker(module, r.Name); return ok }) {
		return "", &ReferenceError{Kind: r.Kind, Name: r.String()}
	}
	s.depend(r.Kind, module, r.Name)
	return naming.Marker(module, r.Name), nil
}

// param returns var() reference to custom property carrying runtime
// parameter.
func (s *scope) param(name string) (string, error) {
	v, ok := s.params[name]
	if !ok {
		return "", Invalid("", "", "", "unknown parameter %q", name)
	}
	return "var(" + v + ")", nil
}

// Entry is a single flattened declaration of a property.
type Entry struct {
	Condition condition.Condition
	Value     Value
}

// flatten turns value tree into ordered list of entries. Order of branches is
// preserved, depth is not limited.
func (s *scope) flatten(node Node, parent condition.Condition, out []Entry) ([]Entry, error) {
	if node.Value != nil {
		return append(out, Entry{Condition: parent, Value: *node.Value}), nil
	}
	if len(node.Branches) == 0 {
		return out, Invalid("", "", "", "empty conditional value")
	}
	for _, b := range node.Branches {
		cond, err := s.branch(parent, b.Key)
		if err != nil {
			return out, err
		}
		if out, err = s.flatten(b.Node, cond, out); err != nil {
			return out, err
		}
	}
	return out, nil
}

func (s *scope) branch(parent condition.Condition, key string) (condition.Condition, error) {
	if strings.TrimSpace(key) == condition.DefaultKey {
		return parent, nil
	}
	w, ok, err := ParseWhen(key)
	if err != nil {
		return parent, Invalid("", "", "", "%v", err)
	}
	if ok {
		class, err := s.marker(w.Marker)
		if err != nil {
			return parent, err
		}
		sel, err := w.Selector(class)
		if err != nil {
			return parent, Invalid("", "", "", "%v", err)
		}
		return with(parent, condition.Part{Kind: condition.Pseudo, Text: sel})
	}
	c, err := condition.Parse(key)
	if err != nil {
		return parent, Invalid("", "", "", "%v", err)
	}
	merged, err := parent.Merge(c)
	if err != nil {
		return parent, Invalid("", "", "", "%v", err)
	}
	return merged, nil
}

func with(c condition.Condition, p condition.Part) (condition.Condition, error) {
	out, err := c.With(p)
	if err != nil {
		return c, Invalid("", "", "", "%v", err)
	}
	return out, nil
}
