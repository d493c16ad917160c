// Package compiler turns authored style declarations of a module into
// content-addressed atomic rules and other named artifacts.
package compiler

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"acss/common"
	"acss/condition"
	"acss/css"
	"acss/model"
	"acss/naming"
)

// DefaultRTLSelector scopes right to left overrides.
const DefaultRTLSelector = `[dir="rtl"]`

// Options control shape of generated CSS text.
type Options struct {
	Specificity     common.Specificity
	RTLSelector     string
	DebugClassNames bool
}

func (o Options) rtlSelector() string {
	if o.RTLSelector == "" {
		return DefaultRTLSelector
	}
	return o.RTLSelector
}

// Compiler is stateless apart from its options and may be used concurrently.
type Compiler struct {
	opts    Options
	catalog Catalog
	log     *zap.Logger
}

// New creates compiler. Catalog is used to resolve references to other
// modules and may be nil, in which case every such reference fails.
func New(opts Options, catalog Catalog, log *zap.Logger) *Compiler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Compiler{opts: opts, catalog: catalog, log: log.Named("compiler")}
}

// Flatten turns value tree into ordered list of flat entries. Contextual
// conditions may only use the default marker here.
func (c *Compiler) Flatten(node Node) ([]Entry, error) {
	s := &scope{opts: c.opts, catalog: c.catalog}
	return s.flatten(node, condition.Condition{}, nil)
}

// CompileProperty compiles ordered list of entries for a single property into
// atomic rules, one per distinct condition.
func (c *Compiler) CompileProperty(property string, entries []Entry) ([]*model.AtomicRule, error) {
	s := &scope{opts: c.opts, catalog: c.catalog}
	return s.compileProperty(property, entries)
}

// Compile compiles whole module. All validation and reference problems found
// in the module are reported together.
func (c *Compiler) Compile(src *Source) (*model.Module, error) {
	if strings.TrimSpace(src.Module) == "" {
		return nil, Invalid("", "", "", "module identifier is empty")
	}
	if err := checkDuplicates(src); err != nil {
		return nil, err
	}

	mod := &model.Module{ID: src.Module}
	var errs error

	for i, d := range src.Consts {
		cst, err := c.compileConst(src, d, i)
		if err != nil {
			errs = multierr.Append(errs, located(err, src.Module, d.Name, ""))
			continue
		}
		mod.Consts = append(mod.Consts, cst)
	}
	for i, d := range src.Vars {
		g, err := c.compileVarGroup(src, d, i)
		if err != nil {
			errs = multierr.Append(errs, located(err, src.Module, d.Name, ""))
			continue
		}
		mod.VarGroups = append(mod.VarGroups, g)
	}
	for i, d := range src.Themes {
		th, err := c.compileTheme(src, d, i)
		if err != nil {
			errs = multierr.Append(errs, located(err, src.Module, d.Name, ""))
			continue
		}
		mod.Themes = append(mod.Themes, th)
	}
	for i, d := range src.Keyframes {
		kf, err := c.compileKeyframes(src, d, i)
		if err != nil {
			errs = multierr.Append(errs, located(err, src.Module, d.Name, ""))
			continue
		}
		mod.Keyframes = append(mod.Keyframes, kf)
	}
	for i, d := range src.PositionTry {
		pt, err := c.compilePositionTry(src, d, i)
		if err != nil {
			errs = multierr.Append(errs, located(err, src.Module, d.Name, ""))
			continue
		}
		mod.PositionTries = append(mod.PositionTries, pt)
	}
	for i, d := range src.ViewTransitions {
		vt, err := c.compileViewTransition(src, d, i)
		if err != nil {
			errs = multierr.Append(errs, located(err, src.Module, d.Name, ""))
			continue
		}
		mod.ViewTransitions = append(mod.ViewTransitions, vt)
	}
	for i, name := range src.Markers {
		mod.Markers = append(mod.Markers, &model.Marker{
			Module: src.Module,
			Name:   name,
			Seq:    i,
			Class:  naming.Marker(src.Module, name),
		})
	}
	for i, d := range src.Classes {
		rs, err := c.compileClass(src, d, i)
		if err != nil {
			errs = multierr.Append(errs, located(err, src.Module, d.Name, ""))
			continue
		}
		mod.RuleSets = append(mod.RuleSets, rs)
	}

	if errs != nil {
		return nil, errs
	}
	mod.Fingerprint = Fingerprint(mod)

	c.log.Debug("Module compiled",
		zap.String("module", mod.ID),
		zap.String("fingerprint", mod.Fingerprint),
		zap.Int("rulesets", len(mod.RuleSets)),
		zap.Int("vars", len(mod.VarGroups)),
		zap.Int("keyframes", len(mod.Keyframes)))
	return mod, nil
}

func checkDuplicates(src *Source) error {
	var errs error
	dup := func(kind string, names []string) {
		seen := make(map[string]bool, len(names))
		for _, n := range names {
			if strings.TrimSpace(n) == "" {
				errs = multierr.Append(errs, Invalid(src.Module, "", "", "%s with empty name", kind))
				continue
			}
			if seen[n] {
				errs = multierr.Append(errs, Invalid(src.Module, n, "", "duplicate %s declaration", kind))
			}
			seen[n] = true
		}
	}
	dup("const", names(src.Consts, func(d ConstDecl) string { return d.Name }))
	dup("vars", names(src.Vars, func(d VarGroupDecl) string { return d.Name }))
	dup("theme", names(src.Themes, func(d ThemeDecl) string { return d.Name }))
	dup("keyframes", names(src.Keyframes, func(d KeyframesDecl) string { return d.Name }))
	dup("position-try", names(src.PositionTry, func(d PositionTryDecl) string { return d.Name }))
	dup("view-transition", names(src.ViewTransitions, func(d ViewTransitionDecl) string { return d.Name }))
	dup("marker", src.Markers)
	dup("class", names(src.Classes, func(d ClassDecl) string { return d.Name }))
	return errs
}

func names[T any](decls []T, name func(T) string) []string {
	out := make([]string, 0, len(decls))
	for _, d := range decls {
		out = append(out, name(d))
	}
	return out
}

// Fingerprint computes order independent hash of everything module
// contributes.
func Fingerprint(mod *model.Module) string {
	var contributions []string
	add := func(kind common.ArtifactKind, name string, fields ...string) {
		contributions = append(contributions, strings.Join(append([]string{string(kind), name}, fields...), "\x1f"))
	}
	deps := func(refs []model.ArtifactRef) string {
		out := make([]string, 0, len(refs))
		for _, r := range refs {
			out = append(out, string(r.Kind)+":"+r.Module+"."+r.Name)
		}
		slices.Sort(out)
		return strings.Join(out, ",")
	}
	vars := func(vs []model.Var) string {
		out := make([]string, 0, len(vs))
		for _, v := range vs {
			out = append(out, v.Name+"="+v.Ident+"@"+v.Condition+"="+v.Value)
		}
		slices.Sort(out)
		return strings.Join(out, ";")
	}

	for _, rs := range mod.RuleSets {
		fields := []string{strconv.FormatBool(rs.Dynamic), strings.Join(rs.Params, ","), rs.Debug, deps(rs.Deps)}
		for _, r := range rs.Rules {
			fields = append(fields, r.Key+"="+r.ClassName+"|"+r.LTR+"|"+r.RTL+"|"+strconv.Itoa(r.Priority))
		}
		add(common.ArtifactKindRuleset, rs.Name, fields...)
	}
	for _, g := range mod.VarGroups {
		add(common.ArtifactKindVars, g.Name, vars(g.Vars), deps(g.Deps))
	}
	for _, cst := range mod.Consts {
		add(common.ArtifactKindConsts, cst.Name, cst.Value)
	}
	for _, kf := range mod.Keyframes {
		add(common.ArtifactKindKeyframes, kf.Name, kf.LTR, deps(kf.Deps))
	}
	for _, th := range mod.Themes {
		add(common.ArtifactKindTheme, th.Name, th.Class, th.Group.Module+"."+th.Group.Name, vars(th.Vars))
	}
	for _, pt := range mod.PositionTries {
		add(common.ArtifactKindPositionTry, pt.Name, pt.Text, deps(pt.Deps))
	}
	for _, vt := range mod.ViewTransitions {
		add(common.ArtifactKindViewTransition, vt.Name, strings.Join(vt.Rules, ""), deps(vt.Deps))
	}
	for _, m := range mod.Markers {
		add(common.ArtifactKindMarker, m.Name, m.Class)
	}
	return naming.Fingerprint(contributions)
}

func (c *Compiler) compileClass(src *Source, d ClassDecl, seq int) (*model.RuleSet, error) {
	s := &scope{opts: c.opts, src: src, catalog: c.catalog}
	rs := &model.RuleSet{Module: src.Module, Name: d.Name, Seq: seq}

	if len(d.Params) > 0 {
		rs.Dynamic = true
		s.params = make(map[string]string, len(d.Params))
		for _, p := range d.Params {
			if _, ok := s.params[p]; ok {
				return nil, Invalid("", "", "", "duplicate parameter %q", p)
			}
			v := naming.Param(src.Module, d.Name, p)
			s.params[p] = v
			rs.Params = append(rs.Params, p)
			rs.ParamVars = append(rs.ParamVars, v)
		}
	}
	if c.opts.DebugClassNames {
		rs.Debug = slug.Make(src.Module) + "__" + slug.Make(d.Name)
	}

	var errs error
	for _, p := range d.Props {
		entries, err := s.flatten(p.Node, condition.Condition{}, nil)
		if err != nil {
			errs = multierr.Append(errs, located(err, "", "", p.Property))
			continue
		}
		rules, err := s.compileProperty(p.Property, entries)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		rs.Rules = append(rs.Rules, rules...)
	}
	if errs != nil {
		return nil, errs
	}
	rs.Deps = s.takeDeps()
	return rs, nil
}

func (c *Compiler) compileConst(src *Source, d ConstDecl, seq int) (*model.Const, error) {
	var text string
	switch d.Value.kind {
	case kindString:
		text = strings.TrimSpace(d.Value.str)
	case kindNumber:
		text = css.FormatNumber(d.Value.num)
	default:
		return nil, Invalid("", "", "", "constant must be a string or a number, got %s", d.Value)
	}
	return &model.Const{Module: src.Module, Name: d.Name, Seq: seq, Value: text}, nil
}

// varValues compiles conditional custom property value. Only default and
// at-rule conditions are allowed.
func (c *Compiler) varValues(s *scope, name, ident string, node Node) ([]model.Var, error) {
	entries, err := s.flatten(node, condition.Condition{}, nil)
	if err != nil {
		return nil, err
	}
	var out []model.Var
	for _, e := range entries {
		for _, p := range e.Condition.Parts() {
			if p.Kind != condition.AtRule {
				return nil, Invalid("", "", ident, "variable %q: only at-rule conditions are allowed, got %q", name, p.Text)
			}
		}
		values, err := s.values(ident, e.Value)
		if err != nil {
			return nil, err
		}
		if len(values) != 1 {
			return nil, Invalid("", "", ident, "variable %q: value compiles into %d declarations", name, len(values))
		}
		cond := ""
		if !e.Condition.IsDefault() {
			cond = e.Condition.String()
		}
		v := model.Var{Name: name, Ident: ident, Condition: cond, Value: values[0]}
		if i := slices.IndexFunc(out, func(x model.Var) bool { return x.Condition == cond }); i >= 0 {
			out[i] = v
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *Compiler) compileVarGroup(src *Source, d VarGroupDecl, seq int) (*model.VarGroup, error) {
	s := &scope{opts: c.opts, src: src, catalog: c.catalog}
	g := &model.VarGroup{Module: src.Module, Name: d.Name, Seq: seq}

	seen := make(map[string]bool, len(d.Vars))
	for _, v := range d.Vars {
		if seen[v.Name] {
			return nil, Invalid("", "", "", "duplicate variable %q", v.Name)
		}
		seen[v.Name] = true
		vars, err := c.varValues(s, v.Name, naming.Var(src.Module, d.Name, v.Name), v.Node)
		if err != nil {
			return nil, err
		}
		g.Vars = append(g.Vars, vars...)
	}
	g.Deps = slices.DeleteFunc(s.takeDeps(), func(r model.ArtifactRef) bool {
		// group may reference its own variables
		return r.Kind == common.ArtifactKindVars && r.Module == src.Module && r.Name == d.Name
	})
	return g, nil
}

func (c *Compiler) compileTheme(src *Source, d ThemeDecl, seq int) (*model.Theme, error) {
	s := &scope{opts: c.opts, src: src, catalog: c.catalog}

	group := d.Group
	group.Kind = common.ArtifactKindVars
	if s.local(group) {
		group.Module = src.Module
	}
	members, err := c.groupMembers(src, group)
	if err != nil {
		return nil, err
	}

	th := &model.Theme{
		Module: src.Module,
		Name:   d.Name,
		Seq:    seq,
		Class:  naming.Theme(src.Module, d.Name),
		Group:  model.ArtifactRef{Kind: common.ArtifactKindVars, Module: group.Module, Name: group.Name},
	}
	for _, v := range d.Values {
		if !slices.Contains(members, v.Name) {
			return nil, &ReferenceError{Kind: common.ArtifactKindVars, Name: group.Module + ":vars." + group.Name + "." + v.Name}
		}
		vars, err := c.varValues(s, v.Name, naming.Var(group.Module, group.Name, v.Name), v.Node)
		if err != nil {
			return nil, err
		}
		th.Vars = append(th.Vars, vars...)
	}
	return th, nil
}

func (c *Compiler) groupMembers(src *Source, group Ref) ([]string, error) {
	if group.Module == src.Module {
		for _, g := range src.Vars {
			if g.Name == group.Name {
				return names(g.Vars, func(v VarDecl) string { return v.Name }), nil
			}
		}
	} else if c.catalog != nil {
		if g, ok := c.catalog.VarGroup(group.Module, group.Name); ok {
			return names(g.Vars, func(v model.Var) string { return v.Name }), nil
		}
	}
	return nil, &ReferenceError{Kind: common.ArtifactKindVars, Name: group.Module + ":vars." + group.Name}
}

// plainDecls compiles unconditioned property list used inside keyframes,
// position-try and view transitions.
func (c *Compiler) plainDecls(s *scope, where string, props []PropDecl) (string, error) {
	var (
		decls []string
		errs  error
	)
	for _, p := range props {
		if p.Node.Value == nil {
			errs = multierr.Append(errs, Invalid("", "", p.Property, "%s do not support conditions", where))
			continue
		}
		rules, err := s.compileProperty(p.Property, []Entry{{Value: *p.Node.Value}})
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		for _, r := range rules {
			if r.Unset {
				continue
			}
			decls = append(decls, declsOf(r.LTR))
		}
	}
	if errs != nil {
		return "", errs
	}
	return strings.Join(decls, ";"), nil
}

// declsOf extracts declarations body from single unconditioned rule text.
func declsOf(rule string) string {
	start := strings.IndexByte(rule, '{')
	if start < 0 || !strings.HasSuffix(rule, "}") {
		return ""
	}
	return rule[start+1 : len(rule)-1]
}

func (c *Compiler) compileKeyframes(src *Source, d KeyframesDecl, seq int) (*model.Keyframes, error) {
	if len(d.Frames) == 0 {
		return nil, Invalid("", "", "", "keyframes have no frames")
	}
	s := &scope{opts: c.opts, src: src, catalog: c.catalog}
	ident := naming.Keyframes(src.Module, d.Name)

	var sb strings.Builder
	sb.WriteString("@keyframes " + ident + "{")
	for _, f := range d.Frames {
		if f.Props == nil {
			return nil, Invalid("", "", "", "keyframe %q must be an object of properties", f.Selector)
		}
		body, err := c.plainDecls(s, "keyframes", f.Props)
		if err != nil {
			return nil, err
		}
		sb.WriteString(strings.TrimSpace(f.Selector) + "{" + body + "}")
	}
	sb.WriteString("}")

	return &model.Keyframes{
		Module: src.Module,
		Name:   d.Name,
		Seq:    seq,
		Ident:  ident,
		LTR:    sb.String(),
		Deps:   s.takeDeps(),
	}, nil
}

func (c *Compiler) compilePositionTry(src *Source, d PositionTryDecl, seq int) (*model.PositionTry, error) {
	s := &scope{opts: c.opts, src: src, catalog: c.catalog}
	ident := naming.PositionTry(src.Module, d.Name)
	body, err := c.plainDecls(s, "position-try", d.Props)
	if err != nil {
		return nil, err
	}
	return &model.PositionTry{
		Module: src.Module,
		Name:   d.Name,
		Seq:    seq,
		Ident:  ident,
		Text:   "@position-try " + ident + "{" + body + "}",
		Deps:   s.takeDeps(),
	}, nil
}

var viewTransitionParts = []string{"group", "image-pair", "old", "new"}

func (c *Compiler) compileViewTransition(src *Source, d ViewTransitionDecl, seq int) (*model.ViewTransition, error) {
	s := &scope{opts: c.opts, src: src, catalog: c.catalog}
	ident := naming.ViewTransition(src.Module, d.Name)
	vt := &model.ViewTransition{Module: src.Module, Name: d.Name, Seq: seq, Ident: ident}

	for _, p := range d.Parts {
		if !slices.Contains(viewTransitionParts, p.Pseudo) {
			return nil, Invalid("", "", "", "unknown view transition part %q, expected one of %s", p.Pseudo, strings.Join(viewTransitionParts, ", "))
		}
		body, err := c.plainDecls(s, "view transitions", p.Props)
		if err != nil {
			return nil, err
		}
		vt.Rules = append(vt.Rules, fmt.Sprintf("::view-transition-%s(*.%s){%s}", p.Pseudo, ident, body))
	}
	vt.Deps = s.takeDeps()
	return vt, nil
}
