package shellhistory

import (
	"time"

	"cmdsense/internal/command"
)

// Pair is a typo and the correction the user typed right after it.
type Pair struct {
	Wrong   string
	Correct string
	Time    time.Time
}

// CorrectionPairs scans consecutive history entries for the same sequence
// the live tool learns from: an unrecognized command immediately followed by
// a recognized one that it closely resembles. isKnown decides recognition;
// similarity must strictly exceed the threshold.
func CorrectionPairs(entries []Entry, isKnown func(name string) bool, similarityThreshold float64) []Pair {
	var pairs []Pair
	for i := 1; i < len(entries); i++ {
		wrong, correct := entries[i-1].Command, entries[i].Command
		wrongFirst := command.FirstToken(wrong)
		correctFirst := command.FirstToken(correct)
		if wrongFirst == "" || correctFirst == "" {
			continue
		}
		if isKnown(wrongFirst) || !isKnown(correctFirst) {
			continue
		}
		wrongKey := command.Normalize(wrong)
		correctKey := command.Normalize(correct)
		if wrongKey == correctKey {
			continue
		}
		if command.Similarity(wrongKey, correctKey) <= similarityThreshold {
			continue
		}
		pairs = append(pairs, Pair{Wrong: wrong, Correct: correct, Time: entries[i].Time})
	}
	return pairs
}
