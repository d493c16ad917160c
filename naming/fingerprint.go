package naming

import (
	"crypto/sha256"
	"fmt"
	"slices"
)

// Fingerprint computes module content hash over serialized contributions. The
// result does not depend on contributions order.
//
// Algorithm:
//  1. sort serialized contributions
//  2. SHA256 over contributions joined with newline separators
//  3. hex encode the digest
func Fingerprint(contributions []string) string {
	sorted := slices.Clone(contributions)
	slices.Sort(sorted)

	h := sha256.New()
	for i, c := range sorted {
		h.Write([]byte(c))
		if i < len(sorted)-1 {
			h.Write([]byte("\n"))
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
