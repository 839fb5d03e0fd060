package attach

import "strings"

// MatchName finds the group identifier a candidate name belongs to, using
// the two-tier policy:
//
//  1. exact: the first identifier equal to the candidate, case-folded
//  2. partial: the first identifier where either string contains the
//     other, case-folded
//
// Both tiers are first-fit over the identifiers in their given order, and
// the exact tier always wins over any partial match further along.
// Identifiers are not consumed: the same group may match several
// candidates in one run, which is intentional (forward and reverse read
// files both travel with the sample that names them).
//
// An empty candidate matches nothing; otherwise every identifier would
// satisfy the containment test vacuously.
func MatchName(candidate string, identifiers []string) (string, bool) {
	if candidate == "" {
		return "", false
	}
	folded := strings.ToLower(candidate)

	for _, id := range identifiers {
		if strings.ToLower(id) == folded {
			return id, true
		}
	}

	for _, id := range identifiers {
		foldedID := strings.ToLower(id)
		if strings.Contains(foldedID, folded) || strings.Contains(folded, foldedID) {
			return id, true
		}
	}

	return "", false
}
