package dataset

// FilterAll is the sentinel selector value meaning "no filter on this dimension".
const FilterAll = "All"

// Filter restricts the match table by season and/or team. An empty or "All"
// value is the identity for that dimension.
type Filter struct {
	Season string `json:"season,omitempty"`
	Team   string `json:"team,omitempty"`
}

// IsZero reports whether the filter selects every match.
func (f Filter) IsZero() bool {
	return !hasValue(f.Season) && !hasValue(f.Team)
}

// Matches reports whether a single match record satisfies the filter.
func (f Filter) Matches(m MatchRecord) bool {
	if hasValue(f.Season) && m.Season != f.Season {
		return false
	}
	if hasValue(f.Team) && m.Team1 != f.Team && m.Team2 != f.Team {
		return false
	}
	return true
}

// Apply returns the subset of matches satisfying the filter. The result is a
// new slice; input order is preserved. Applying the zero filter returns the
// input as-is.
func (f Filter) Apply(matches []MatchRecord) []MatchRecord {
	if f.IsZero() {
		return matches
	}
	out := make([]MatchRecord, 0, len(matches))
	for _, m := range matches {
		if f.Matches(m) {
			out = append(out, m)
		}
	}
	return out
}

func hasValue(v string) bool {
	return v != "" && v != FilterAll
}
