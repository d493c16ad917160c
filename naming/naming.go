// Package naming produces content-addressed identifiers. Identical canonical
// input always produces identical identifier, so deduplication of compiled
// artifacts falls out of hashing.
package naming

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/unicode/norm"
)

// Kind prefixes. Prefix makes identifiers valid CSS idents and keeps kinds
// from colliding with each other.
const (
	KindClass          byte = 'x'
	KindKeyframes      byte = 'k'
	KindVar            byte = 'v'
	KindPositionTry    byte = 'p'
	KindViewTransition byte = 't'
	KindMarker         byte = 'm'
	KindTheme          byte = 'h'
)

// Width is the number of hash characters following kind prefix.
const Width = 7

var modulus = pow36(Width)

func pow36(n int) uint64 {
	m := uint64(1)
	for range n {
		m *= 36
	}
	return m
}

// Hash returns fixed width lowercase alphanumeric identifier of the given
// kind. Parts are hashed length-prefixed, so ("a", "bc") and ("ab", "c") do
// not collide.
func Hash(kind byte, parts ...string) string {
	h := xxhash.New()
	h.Write([]byte{kind})
	for _, p := range parts {
		writeLengthPrefixed(h, norm.NFC.String(p))
	}
	s := strconv.FormatUint(h.Sum64()%modulus, 36)
	return string(kind) + strings.Repeat("0", Width-len(s)) + s
}

func writeLengthPrefixed(h *xxhash.Digest, s string) {
	var lengthBytes [4]byte
	binary.LittleEndian.PutUint32(lengthBytes[:], uint32(len(s)))
	h.Write(lengthBytes[:])
	h.WriteString(s)
}

// Class returns atomic class name. Suffix (pseudo-classes and pseudo-element)
// and at-rules must already be in canonical order.
func Class(property, value, suffix string, atRules []string) string {
	return Hash(KindClass, property, value, suffix, strings.Join(atRules, ""))
}

// Qualified joins module and declaration name into fully-qualified name.
func Qualified(module, name string) string {
	return module + "." + name
}

// Var returns custom property name (with leading dashes) for variable of
// group declared in module.
func Var(module, group, name string) string {
	return "--" + Hash(KindVar, module, group, name)
}

// Param returns custom property name carrying runtime parameter of a dynamic
// rule set.
func Param(module, set, param string) string {
	return "--" + Hash(KindVar, module, set, "("+param+")")
}

// Keyframes returns keyframes name.
func Keyframes(module, name string) string {
	return Hash(KindKeyframes, module, name)
}

// PositionTry returns position-try dashed ident.
func PositionTry(module, name string) string {
	return "--" + Hash(KindPositionTry, module, name)
}

// ViewTransition returns view transition class ident.
func ViewTransition(module, name string) string {
	return Hash(KindViewTransition, module, name)
}

// Marker returns marker class name.
func Marker(module, name string) string {
	return Hash(KindMarker, module, name)
}

// DefaultMarker is used by contextual selectors which do not name a marker.
var DefaultMarker = Marker("", "default-marker")

// Theme returns theme class name.
func Theme(module, name string) string {
	return Hash(KindTheme, module, name)
}
