package compiler

import (
	"fmt"
	"strings"

	"acss/common"
)

// Ref names an artifact, Module is empty for references inside the module
// being compiled. Member selects single variable of a variable group.
type Ref struct {
	Module string
	Kind   common.ArtifactKind
	Name   string
	Member string
}

func (r Ref) String() string {
	var sb strings.Builder
	if r.Module != "" {
		sb.WriteString(r.Module)
		sb.WriteByte(':')
	}
	sb.WriteString(string(r.Kind))
	sb.WriteByte('.')
	sb.WriteString(r.Name)
	if r.Member != "" {
		sb.WriteByte('.')
		sb.WriteString(r.Member)
	}
	return sb.String()
}

var refKinds = map[string]common.ArtifactKind{
	"consts":           common.ArtifactKindConsts,
	"vars":             common.ArtifactKindVars,
	"keyframes":        common.ArtifactKindKeyframes,
	"themes":           common.ArtifactKindTheme,
	"position_try":     common.ArtifactKindPositionTry,
	"view_transitions": common.ArtifactKindViewTransition,
	"markers":          common.ArtifactKindMarker,
	"classes":          common.ArtifactKindRuleset,
}

// ParseRef parses "[module:]kind.name[.member]".
func ParseRef(text string) (Ref, error) {
	var r Ref
	rest := strings.TrimSpace(text)
	if i := strings.LastIndexByte(rest, ':'); i >= 0 {
		r.Module, rest = rest[:i], rest[i+1:]
	}
	kind, rest, ok := strings.Cut(rest, ".")
	if !ok || rest == "" {
		return Ref{}, fmt.Errorf("malformed reference %q, expected kind.name", text)
	}
	if r.Kind, ok = refKinds[kind]; !ok {
		k, err := common.ParseArtifactKind(kind)
		if err != nil {
			return Ref{}, fmt.Errorf("malformed reference %q: %w", text, err)
		}
		r.Kind = k
	}
	r.Name, r.Member, _ = strings.Cut(rest, ".")
	if r.Kind == common.ArtifactKindVars && r.Member == "" {
		return Ref{}, fmt.Errorf("malformed reference %q, expected vars.group.name", text)
	}
	return r, nil
}

// Node is author-time value tree: either a leaf value or ordered conditional
// branches, which can nest to any depth.
type Node struct {
	Value    *Value
	Branches []Branch
}

// Branch is a single conditional entry, Key is "default", condition text
// (":hover", "@media (...)", "::before") or contextual selector
// ("ancestor(:hover, card)").
type Branch struct {
	Key  string
	Node Node
}

// Leaf creates node holding a value.
func Leaf(v Value) Node { return Node{Value: &v} }

// Conditional creates node with branches.
func Conditional(branches ...Branch) Node { return Node{Branches: branches} }

// PropDecl is a single authored property.
type PropDecl struct {
	Property string
	Node     Node
}

// ClassDecl is author style unit, it becomes rule set. Classes with Params
// are dynamic.
type ClassDecl struct {
	Name   string
	Params []string
	Props  []PropDecl
}

// ConstDecl declares compile-time constant.
type ConstDecl struct {
	Name  string
	Value Value
}

// VarDecl declares single custom property, only default and at-rule branches
// are allowed.
type VarDecl struct {
	Name string
	Node Node
}

// VarGroupDecl declares group of custom properties.
type VarGroupDecl struct {
	Name string
	Vars []VarDecl
}

// ThemeDecl overrides subset of variable group.
type ThemeDecl struct {
	Name   string
	Group  Ref
	Values []VarDecl
}

// Frame is a single keyframes step.
type Frame struct {
	Selector string
	Props    []PropDecl
}

// KeyframesDecl declares animation.
type KeyframesDecl struct {
	Name   string
	Frames []Frame
}

// PositionTryDecl declares anchor positioning fallback.
type PositionTryDecl struct {
	Name  string
	Props []PropDecl
}

// ViewTransitionPart is one of old, new, group or image-pair.
type ViewTransitionPart struct {
	Pseudo string
	Props  []PropDecl
}

// ViewTransitionDecl declares view transition class.
type ViewTransitionDecl struct {
	Name  string
	Parts []ViewTransitionPart
}

// Source is a single compilation unit.
type Source struct {
	Module          string
	Consts          []ConstDecl
	Vars            []VarGroupDecl
	Themes          []ThemeDecl
	Keyframes       []KeyframesDecl
	PositionTry     []PositionTryDecl
	ViewTransitions []ViewTransitionDecl
	Markers         []string
	Classes         []ClassDecl
}
