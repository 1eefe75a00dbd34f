package manifest

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Key canonicalizes an instrument identifier.
//
// The same instrument may be named "BIR", "bir" or a decomposed Unicode
// spelling across manifests, catalog rows and CLI arguments; all of them
// must address one routing target. Canonical form is NFC-normalized,
// lower-cased, with surrounding whitespace removed.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(name)))
}
