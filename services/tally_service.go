// File: services/tally_service.go
package services

import (
	"fmt"
	"sort"

	"school-vote/models"
)

// ComputeTally counts records per ballot option, most votes first. Ties
// keep ballot order. Total counts every record; records whose vote is not
// a ballot option are counted as Invalid instead of in any entry.
func ComputeTally(records []models.VoteRecord) models.Tally {
	options := models.VoteOptions()
	index := make(map[string]int, len(options))
	entries := make([]models.TallyEntry, len(options))
	for i, o := range options {
		index[o.ID] = i
		entries[i] = models.TallyEntry{Name: o.ID}
	}

	invalid := 0
	for _, rec := range records {
		i, ok := index[rec.Vote]
		if !ok {
			invalid++
			continue
		}
		entries[i].Votes++
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Votes > entries[b].Votes
	})

	return models.Tally{Entries: entries, Total: len(records), Invalid: invalid}
}

// Percentage returns votes as a share of total, 0 when total is 0.
func Percentage(votes, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(votes) / float64(total) * 100
}

// FormatPercentage renders Percentage with one decimal, e.g. "40.0%".
func FormatPercentage(votes, total int) string {
	return fmt.Sprintf("%.1f%%", Percentage(votes, total))
}
