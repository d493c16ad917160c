package compiler

import (
	"slices"
	"strings"

	"go.uber.org/multierr"

	"acss/atrule"
	"acss/common"
	"acss/condition"
	"acss/css"
	"acss/logical"
	"acss/merge"
	"acss/model"
	"acss/naming"
	"acss/priority"
)

// notID is selector specificity bump which does not change what is matched.
const notID = `:not(#\#)`

// compileProperty produces one atomic rule per distinct condition. Later
// entry for the same condition replaces earlier one keeping its position.
func (s *scope) compileProperty(property string, entries []Entry) ([]*model.AtomicRule, error) {
	property = strings.TrimSpace(property)
	if property == "" {
		return nil, Invalid("", "", "", "empty property name")
	}

	conds := make([]condition.Condition, len(entries))
	for i, e := range entries {
		conds[i] = e.Condition.Finalize()
	}
	conds = atrule.BoundRanges(conds)

	var (
		rules []*model.AtomicRule
		index = make(map[string]int, len(entries))
		errs  error
	)
	for i, e := range entries {
		rule, err := s.compileRule(property, conds[i], e.Value)
		if err != nil {
			errs = multierr.Append(errs, located(err, "", "", property))
			continue
		}
		key := conds[i].String()
		if j, ok := index[key]; ok {
			rules[j] = rule
			continue
		}
		index[key] = len(rules)
		rules = append(rules, rule)
	}
	if errs != nil {
		return nil, errs
	}
	return rules, nil
}

func (s *scope) compileRule(property string, cond condition.Condition, v Value) (*model.AtomicRule, error) {
	if v.kind == kindString && strings.TrimSpace(v.str) == merge.Unset {
		out := logical.Transform(property, "")
		return &model.AtomicRule{
			ClassName: merge.Unset,
			Property:  out.Property,
			Condition: cond.String(),
			Key:       merge.KeyFor(out.Property, cond.String()),
			Priority:  priority.Of(out.Property, cond),
			Unset:     true,
		}, nil
	}

	values, err := s.values(property, v)
	if err != nil {
		return nil, err
	}

	var (
		ltr, rtl css.Decls
		hasRTL   bool
		physical = property
	)
	for _, val := range values {
		out := logical.Transform(property, val)
		physical = out.Property
		ltr = append(ltr, css.Decl{Property: out.Property, Value: out.Value})
		if out.HasRTL {
			hasRTL = true
			rtl = append(rtl, css.Decl{Property: out.Property, Value: out.RTLValue})
		} else {
			rtl = append(rtl, css.Decl{Property: out.Property, Value: out.Value})
		}
	}

	w := atrule.Compose(cond)
	hashed := make([]string, 0, len(ltr))
	for _, d := range ltr {
		hashed = append(hashed, d.Value)
	}
	class := naming.Class(physical, strings.Join(hashed, ";"), w.Suffix, cond.AtRules())
	selector := s.selector(class, cond)

	rule := &model.AtomicRule{
		ClassName: class,
		Property:  physical,
		Condition: cond.String(),
		Key:       merge.KeyFor(physical, cond.String()),
		LTR:       w.Rule(selector, ltr.String()),
		Priority:  priority.Of(physical, cond),
		Group:     w.Group(),
	}
	if hasRTL {
		rule.RTL = w.Rule(s.opts.rtlSelector()+" "+selector, rtl.String())
	}
	return rule, nil
}

// selector applies specificity strategy to class selector.
func (s *scope) selector(class string, cond condition.Condition) string {
	sel := "." + class
	switch s.opts.Specificity {
	case common.SpecificityDouble:
		if cond.HasAtRule() || cond.PseudoElement() != "" {
			sel += sel
		}
	case common.SpecificityNotId:
		if !cond.IsDefault() {
			sel += notID
		}
	}
	return sel
}

// values compiles raw value into one or more declaration values for property.
func (s *scope) values(property string, v Value) ([]string, error) {
	switch v.kind {
	case kindBool:
		return nil, Invalid("", "", property, "boolean value %v is not allowed", v.b)
	case kindString:
		text := css.Normalize(v.str)
		if text == "" {
			return nil, Invalid("", "", property, "empty value")
		}
		return []string{text}, nil
	case kindNumber:
		return []string{css.NumberValue(property, v.num)}, nil
	case kindRef:
		rv, err := s.resolve(v.ref)
		if err != nil {
			return nil, err
		}
		return s.values(property, rv)
	case kindParam:
		text, err := s.param(v.str)
		if err != nil {
			return nil, located(err, "", "", property)
		}
		return []string{text}, nil
	case kindList, kindFallback:
		var texts []string
		for _, it := range v.items {
			switch it.kind {
			case kindString, kindNumber, kindRef, kindParam:
			default:
				return nil, Invalid("", "", property, "array elements must be strings or numbers, got %s", it)
			}
			t, err := s.values(property, it)
			if err != nil {
				return nil, err
			}
			texts = append(texts, t...)
		}
		if len(texts) == 0 {
			return nil, Invalid("", "", property, "empty array value")
		}
		if v.kind == kindFallback {
			slices.Reverse(texts)
		}
		return chain(texts), nil
	}
	return nil, Invalid("", "", property, "unsupported value %s", v)
}

// chain composes fallback list into declaration values. Value following a
// var() reference becomes its fallback argument, compounding through
// consecutive references; any other value starts new declaration.
func chain(texts []string) []string {
	var (
		out  []string
		cur  string
		open bool
	)
	for i, t := range texts {
		switch {
		case i == 0:
			cur = t
		case open:
			cur = css.WithFallback(cur, t)
		default:
			out = append(out, cur)
			cur = t
		}
		open = acceptsFallback(t)
	}
	return append(out, cur)
}

// acceptsFallback reports whether t is a var() reference whose innermost
// fallback slot is still free.
func acceptsFallback(t string) bool {
	_, fallback, ok := css.ParseVar(t)
	if !ok {
		return false
	}
	return fallback == "" || acceptsFallback(fallback)
}
