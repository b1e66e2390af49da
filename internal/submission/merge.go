package submission

import "github.com/open-telco/telbench/internal/models"

// Merge folds incoming rows into the board. A row whose model string
// exactly matches an existing one replaces it and moves to the end, so the
// newest submission always wins; everything else appends. The input slice
// is not modified.
func Merge(board []models.LeaderboardEntry, incoming ...models.LeaderboardEntry) []models.LeaderboardEntry {
	out := make([]models.LeaderboardEntry, len(board), len(board)+len(incoming))
	copy(out, board)

	for _, entry := range incoming {
		next := make([]models.LeaderboardEntry, 0, len(out)+1)
		for _, row := range out {
			if row.Model != entry.Model {
				next = append(next, row)
			}
		}
		out = append(next, entry)
	}
	return out
}
