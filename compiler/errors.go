package compiler

import (
	"fmt"
	"strings"

	"acss/common"
)

// ValidationError reports malformed author input. Compilation of the module
// fails, author has to fix the source.
type ValidationError struct {
	Module   string
	Name     string
	Property string
	Reason   string
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	if e.Module != "" {
		sb.WriteString(e.Module)
		sb.WriteString(": ")
	}
	if e.Name != "" {
		sb.WriteString(e.Name)
		sb.WriteString(": ")
	}
	if e.Property != "" {
		sb.WriteString("property ")
		sb.WriteString(e.Property)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Reason)
	return sb.String()
}

// ReferenceError reports lookup of unknown named artifact.
type ReferenceError struct {
	Kind common.ArtifactKind
	Name string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
}

// Invalid creates validation error for declaration of module.
func Invalid(module, name, property, format string, args ...any) error {
	return &ValidationError{Module: module, Name: name, Property: property, Reason: fmt.Sprintf(format, args...)}
}

// located fills location of validation error if it does not have one yet.
func located(err error, module, name, property string) error {
	if ve, ok := err.(*ValidationError); ok {
		out := *ve
		if out.Module == "" {
			out.Module = module
		}
		if out.Name == "" {
			out.Name = name
		}
		if out.Property == "" {
			out.Property = property
		}
		return &out
	}
	return err
}
