package definition

import "slices"

// DefaultProfile is active when nothing else is declared.
const DefaultProfile = "default"

// NormalizeProfiles drops empty and duplicate names, keeping first-seen
// order. An empty result becomes [DefaultProfile].
func NormalizeProfiles(profiles []string) []string {
	out := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if p == "" || slices.Contains(out, p) {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return []string{DefaultProfile}
	}
	return out
}

// ProfilesIntersect reports whether declared and active share a name.
func ProfilesIntersect(declared, active []string) bool {
	for _, p := range declared {
		if slices.Contains(active, p) {
			return true
		}
	}
	return false
}
