// Package source reads authored modules. Module is a YAML document, it is
// decoded into yaml.Node tree first so that author order of conditions and
// declarations is preserved, and then converted into compiler input.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"acss/common"
	"acss/compiler"
)

// Extensions lists file name extensions recognized as module sources.
var Extensions = []string{".yaml", ".yml"}

// Decode reads single module from r.
func Decode(r io.Reader) (*compiler.Source, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty module document")
		}
		return nil, fmt.Errorf("unable to decode module: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, errorf(root, "module document must be a mapping")
	}
	return module(root)
}

// Parse is Decode for in-memory data.
func Parse(data []byte) (*compiler.Source, error) {
	return Decode(bytes.NewReader(data))
}

func errorf(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("line %d: %s", n.Line, fmt.Sprintf(format, args...))
}

// pairs iterates mapping node in order.
func pairs(n *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	if n.Kind != yaml.MappingNode {
		return errorf(n, "expected mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i]
		if k.Kind != yaml.ScalarNode {
			return errorf(k, "mapping key must be a scalar")
		}
		if err := fn(k.Value, n.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func module(root *yaml.Node) (*compiler.Source, error) {
	src := &compiler.Source{}
	err := pairs(root, func(key string, v *yaml.Node) (err error) {
		switch key {
		case "module":
			if v.Kind != yaml.ScalarNode || v.Value == "" {
				return errorf(v, "module must be a non empty string")
			}
			src.Module = v.Value
		case "consts":
			src.Consts, err = consts(v)
		case "vars":
			src.Vars, err = varGroups(v)
		case "themes":
			src.Themes, err = themes(v)
		case "keyframes":
			src.Keyframes, err = keyframes(v)
		case "position_try":
			err = pairs(v, func(name string, body *yaml.Node) error {
				props, err := props(body)
				if err != nil {
					return fmt.Errorf("position_try %q: %w", name, err)
				}
				src.PositionTry = append(src.PositionTry, compiler.PositionTryDecl{Name: name, Props: props})
				return nil
			})
		case "view_transitions":
			src.ViewTransitions, err = viewTransitions(v)
		case "markers":
			src.Markers, err = strs(v)
		case "classes":
			src.Classes, err = classes(v)
		default:
			return errorf(v, "unknown section %q", key)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if src.Module == "" {
		return nil, errorf(root, "module name is missing")
	}
	return src, nil
}

func consts(n *yaml.Node) ([]compiler.ConstDecl, error) {
	var out []compiler.ConstDecl
	err := pairs(n, func(name string, v *yaml.Node) error {
		val, err := value(v)
		if err != nil {
			return fmt.Errorf("const %q: %w", name, err)
		}
		out = append(out, compiler.ConstDecl{Name: name, Value: val})
		return nil
	})
	return out, err
}

func vars(n *yaml.Node) ([]compiler.VarDecl, error) {
	var out []compiler.VarDecl
	err := pairs(n, func(name string, v *yaml.Node) error {
		nd, err := node(v)
		if err != nil {
			return fmt.Errorf("var %q: %w", name, err)
		}
		out = append(out, compiler.VarDecl{Name: name, Node: nd})
		return nil
	})
	return out, err
}

func varGroups(n *yaml.Node) ([]compiler.VarGroupDecl, error) {
	var out []compiler.VarGroupDecl
	err := pairs(n, func(name string, v *yaml.Node) error {
		vs, err := vars(v)
		if err != nil {
			return fmt.Errorf("vars %q: %w", name, err)
		}
		out = append(out, compiler.VarGroupDecl{Name: name, Vars: vs})
		return nil
	})
	return out, err
}

func themes(n *yaml.Node) ([]compiler.ThemeDecl, error) {
	var out []compiler.ThemeDecl
	err := pairs(n, func(name string, v *yaml.Node) error {
		th := compiler.ThemeDecl{Name: name}
		err := pairs(v, func(key string, v *yaml.Node) (err error) {
			switch key {
			case "vars":
				if v.Kind != yaml.ScalarNode {
					return errorf(v, "vars must name variable group")
				}
				th.Group = groupRef(v.Value)
			case "values":
				th.Values, err = vars(v)
			default:
				return errorf(v, "unknown theme field %q", key)
			}
			return err
		})
		if err != nil {
			return fmt.Errorf("theme %q: %w", name, err)
		}
		if th.Group.Name == "" {
			return errorf(v, "theme %q: variable group is missing", name)
		}
		out = append(out, th)
		return nil
	})
	return out, err
}

// groupRef accepts "group", "module:group" and full "[module:]vars.group".
func groupRef(text string) compiler.Ref {
	r := compiler.Ref{Kind: common.ArtifactKindVars, Name: text}
	if i := strings.LastIndexByte(text, ':'); i >= 0 {
		r.Module, r.Name = text[:i], text[i+1:]
	}
	r.Name = strings.TrimPrefix(r.Name, "vars.")
	return r
}

func keyframes(n *yaml.Node) ([]compiler.KeyframesDecl, error) {
	var out []compiler.KeyframesDecl
	err := pairs(n, func(name string, v *yaml.Node) error {
		kf := compiler.KeyframesDecl{Name: name}
		err := pairs(v, func(sel string, body *yaml.Node) error {
			// compiler reports frames without declarations map
			var ps []compiler.PropDecl
			if body.Kind == yaml.MappingNode {
				var err error
				if ps, err = props(body); err != nil {
					return err
				}
			}
			kf.Frames = append(kf.Frames, compiler.Frame{Selector: sel, Props: ps})
			return nil
		})
		if err != nil {
			return fmt.Errorf("keyframes %q: %w", name, err)
		}
		out = append(out, kf)
		return nil
	})
	return out, err
}

func viewTransitions(n *yaml.Node) ([]compiler.ViewTransitionDecl, error) {
	var out []compiler.ViewTransitionDecl
	err := pairs(n, func(name string, v *yaml.Node) error {
		vt := compiler.ViewTransitionDecl{Name: name}
		err := pairs(v, func(pseudo string, body *yaml.Node) error {
			ps, err := props(body)
			if err != nil {
				return err
			}
			vt.Parts = append(vt.Parts, compiler.ViewTransitionPart{Pseudo: pseudo, Props: ps})
			return nil
		})
		if err != nil {
			return fmt.Errorf("view transition %q: %w", name, err)
		}
		out = append(out, vt)
		return nil
	})
	return out, err
}

func classes(n *yaml.Node) ([]compiler.ClassDecl, error) {
	var out []compiler.ClassDecl
	err := pairs(n, func(name string, v *yaml.Node) error {
		c := compiler.ClassDecl{Name: name, Props: []compiler.PropDecl{}}
		err := pairs(v, func(prop string, body *yaml.Node) error {
			if prop == "params" {
				ps, err := strs(body)
				if err != nil {
					return err
				}
				c.Params = ps
				return nil
			}
			nd, err := node(body)
			if err != nil {
				return fmt.Errorf("property %q: %w", prop, err)
			}
			c.Props = append(c.Props, compiler.PropDecl{Property: prop, Node: nd})
			return nil
		})
		if err != nil {
			return fmt.Errorf("class %q: %w", name, err)
		}
		out = append(out, c)
		return nil
	})
	return out, err
}

// props converts declarations mapping, result is never nil for mappings.
func props(n *yaml.Node) ([]compiler.PropDecl, error) {
	out := []compiler.PropDecl{}
	err := pairs(n, func(prop string, body *yaml.Node) error {
		nd, err := node(body)
		if err != nil {
			return fmt.Errorf("property %q: %w", prop, err)
		}
		out = append(out, compiler.PropDecl{Property: prop, Node: nd})
		return nil
	})
	return out, err
}

func strs(n *yaml.Node) ([]string, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, errorf(n, "expected list of names")
	}
	out := make([]string, 0, len(n.Content))
	for _, it := range n.Content {
		if it.Kind != yaml.ScalarNode {
			return nil, errorf(it, "expected name")
		}
		out = append(out, it.Value)
	}
	return out, nil
}

// node converts property value: either a value or conditional mapping whose
// keys are conditions.
func node(n *yaml.Node) (compiler.Node, error) {
	if n.Kind == yaml.AliasNode {
		return node(n.Alias)
	}
	if n.Kind == yaml.MappingNode && !isValueMap(n) {
		var branches []compiler.Branch
		err := pairs(n, func(key string, v *yaml.Node) error {
			nd, err := node(v)
			if err != nil {
				return err
			}
			branches = append(branches, compiler.Branch{Key: key, Node: nd})
			return nil
		})
		if err != nil {
			return compiler.Node{}, err
		}
		return compiler.Conditional(branches...), nil
	}
	v, err := value(n)
	if err != nil {
		return compiler.Node{}, err
	}
	return compiler.Leaf(v), nil
}

// value forms which are written as single key mappings
var valueKeys = []string{"ref", "param", "first_that_works"}

func isValueMap(n *yaml.Node) bool {
	if len(n.Content) != 2 || n.Content[0].Kind != yaml.ScalarNode {
		return false
	}
	for _, k := range valueKeys {
		if n.Content[0].Value == k {
			return true
		}
	}
	return false
}

func value(n *yaml.Node) (compiler.Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return value(n.Alias)
	case yaml.ScalarNode:
		return scalar(n)
	case yaml.SequenceNode:
		items, err := list(n)
		if err != nil {
			return compiler.Value{}, err
		}
		return compiler.List(items...), nil
	case yaml.MappingNode:
		if !isValueMap(n) {
			return compiler.Value{}, errorf(n, "nested mapping is not a value")
		}
		key, v := n.Content[0].Value, n.Content[1]
		switch key {
		case "ref":
			if v.Kind != yaml.ScalarNode {
				return compiler.Value{}, errorf(v, "reference must be a string")
			}
			r, err := compiler.ParseRef(v.Value)
			if err != nil {
				return compiler.Value{}, errorf(v, "%v", err)
			}
			return compiler.RefTo(r), nil
		case "param":
			if v.Kind != yaml.ScalarNode || v.Value == "" {
				return compiler.Value{}, errorf(v, "parameter must be a name")
			}
			return compiler.ParamOf(v.Value), nil
		default:
			if v.Kind != yaml.SequenceNode {
				return compiler.Value{}, errorf(v, "first_that_works expects a list")
			}
			items, err := list(v)
			if err != nil {
				return compiler.Value{}, err
			}
			return compiler.FirstThatWorks(items...), nil
		}
	}
	return compiler.Value{}, errorf(n, "unsupported value")
}

func list(n *yaml.Node) ([]compiler.Value, error) {
	items := make([]compiler.Value, 0, len(n.Content))
	for _, it := range n.Content {
		v, err := value(it)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

func scalar(n *yaml.Node) (compiler.Value, error) {
	switch n.ShortTag() {
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return compiler.Value{}, errorf(n, "bad number %q", n.Value)
		}
		return compiler.Number(f), nil
	case "!!bool":
		// rejected by compiler with proper location
		var b bool
		if err := n.Decode(&b); err != nil {
			return compiler.Value{}, errorf(n, "bad boolean %q", n.Value)
		}
		return compiler.Bool(b), nil
	case "!!null":
		return compiler.Value{}, errorf(n, "value is missing")
	default:
		return compiler.String(n.Value), nil
	}
}
