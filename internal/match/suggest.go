package match

import "sort"

// MinSuggestionScore is the normalized similarity a known name needs to be offered.
const MinSuggestionScore = 0.6

// Suggest returns up to limit names from known that look like unknown,
// best match first. Ties keep the order of known.
func Suggest(unknown string, known []string, limit int) []string {
	if limit <= 0 || len(known) == 0 {
		return nil
	}

	type scored struct {
		name  string
		score float64
	}

	var candidates []scored

	seen := make(map[string]struct{}, len(known))

	for _, name := range known {
		if name == unknown {
			continue
		}

		if _, dup := seen[name]; dup {
			continue
		}

		seen[name] = struct{}{}

		if score := NormalizedSimilarity(unknown, name); score >= MinSuggestionScore {
			candidates = append(candidates, scored{name: name, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	result := make([]string, len(candidates))
	for i, c := range candidates {
		result[i] = c.name
	}

	return result
}
