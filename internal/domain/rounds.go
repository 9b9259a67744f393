package domain

import "sort"

// FindRound returns the first round in declaration order whose range contains id.
// Overlapping ranges resolve to the earliest declared round.
func FindRound(id int, rounds []Round, enableRounds bool) (Round, bool) {
	if !enableRounds {
		return Round{}, false
	}
	for _, r := range rounds {
		if r.Contains(id) {
			return r, true
		}
	}
	return Round{}, false
}

// OtherRoundTitle heads the group of questions no round claims.
const OtherRoundTitle = "Other"

// GroupTiles lays questions out the way the grid shows them: one group per declared
// round (empty rounds are skipped) followed by an "Other" group for unmatched ids.
// With rounds disabled every question lands in a single untitled group.
func GroupTiles(questions []Question, visited func(int) bool, rounds []Round, enableRounds bool) []GridGroup {
	sorted := make([]Question, len(questions))
	copy(sorted, questions)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	tile := func(q Question) GridTile {
		return GridTile{ID: q.ID, Visited: visited(q.ID)}
	}

	if !enableRounds {
		group := GridGroup{Tiles: make([]GridTile, 0, len(sorted))}
		for _, q := range sorted {
			group.Tiles = append(group.Tiles, tile(q))
		}
		return []GridGroup{group}
	}

	byRound := make([][]GridTile, len(rounds))
	var other []GridTile
	for _, q := range sorted {
		placed := false
		for i, r := range rounds {
			if r.Contains(q.ID) {
				byRound[i] = append(byRound[i], tile(q))
				placed = true
				break
			}
		}
		if !placed {
			other = append(other, tile(q))
		}
	}

	groups := make([]GridGroup, 0, len(rounds)+1)
	for i, r := range rounds {
		if len(byRound[i]) == 0 {
			continue
		}
		groups = append(groups, GridGroup{Title: r.Title, Tiles: byRound[i]})
	}
	if len(other) > 0 {
		groups = append(groups, GridGroup{Title: OtherRoundTitle, Tiles: other})
	}
	return groups
}
