// The only reason this package exists is because enums are shared between
// configuration, compiler and collector and none of them should depend on the
// others just to name a mode.
package common

//go:generate go tool go-enum --marshal --names --values

// Specificity bump strategy used for conditional atomic rules.
// ENUM(double, layers, not-id)
type Specificity int

// UsesLayers reports whether rules are grouped into cascade layers.
func (s Specificity) UsesLayers() bool {
	return s == SpecificityLayers
}

// Persistence backend for usage records.
// ENUM(file, sqlite)
type UsageBackend int

// Kind of compiled artifact kept in the manifest.
// ENUM(ruleset, vars, consts, keyframes, theme, position-try, view-transition, marker)
type ArtifactKind string
