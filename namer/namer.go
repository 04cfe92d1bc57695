/*
	Generates the names that materialized artifacts are stored under.

	A token looks like `<revprefix>_<random>_<seq>`.
	The revprefix shows a human which revision a file came from;
	the random part is what makes it unique across processes.
	File names and unit names are both derived from a token.
*/
package namer

import (
	"fmt"
	"path"
	"strings"

	"github.com/Avishs-nd/MuskCult/api"
	"github.com/Avishs-nd/MuskCult/lib/guid"
)

const (
	DefaultPrefixLen = 8
	randomLen        = 16
)

type Namer struct {
	// How many leading characters of the revision go into a token.
	// Zero means DefaultPrefixLen.
	PrefixLen int
}

/*
	Returns a fresh token for an artifact of the given revision.

	Never fails, and never returns the same token twice in a process
	(short of a collision in 64 random bits).
*/
func (n Namer) Next(rev api.RevisionID, seq uint64) string {
	prefixLen := n.PrefixLen
	if prefixLen <= 0 {
		prefixLen = DefaultPrefixLen
	}
	return fmt.Sprintf("%s_%s_%d", sanitize(rev.Short(prefixLen)), guid.New()[:randomLen], seq)
}

/*
	Returns the file name for a checkout of relPath: the token goes
	between the stem and the extension, so `lib/compute.star` becomes
	`compute.<token>.star` and tools that care about extensions still do.
*/
func FileName(relPath string, token string) string {
	base := path.Base(relPath)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" { // dotfiles: ".env" is all stem.
		stem, ext = base, ""
	}
	return stem + "." + token + ext
}

// Returns the unit name for a load of baseName.
func UnitName(baseName string, token string) string {
	return sanitize(baseName) + "_" + token
}

// Replaces everything outside `[A-Za-z0-9]` with underscores.
func sanitize(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
}
