// Package learn turns observed typo corrections into confidence-weighted
// suggestion rules, and ages those rules back out again.
package learn

import (
	"math"
	"strings"
	"time"

	"cmdsense/internal/command"
	"cmdsense/internal/memory"
	"cmdsense/internal/safety"
)

// Settings are the injected tunables of the learning engine.
type Settings struct {
	DecayHalfLifeSeconds int64
	MinConfidence        float64
	PruneIntervalSeconds int64
}

// Confidence scores a rule in [0,1], rounded to 2 decimals. Reinforcement
// raises the base from 0.75 at count=1 toward a 0.95 cap; the whole score
// decays exponentially with the age of the last sighting. The half-life
// constant is used as a plain exponential time constant: decay is exp(-age/H),
// not 0.5^(age/H).
func Confidence(count int, lastSeen int64, now time.Time, halfLifeSeconds int64) float64 {
	age := float64(now.Unix() - lastSeen)
	if age < 0 {
		age = 0
	}
	decay := math.Exp(-age / float64(halfLifeSeconds))
	base := math.Min(0.6+float64(count)*0.15, 0.95)
	return math.Round(base*decay*100) / 100
}

// Learner records (wrong, correct) pairs as pattern rules, gated by the
// safety filter.
type Learner struct {
	filter   *safety.Filter
	settings Settings
}

func NewLearner(filter *safety.Filter, settings Settings) *Learner {
	return &Learner{filter: filter, settings: settings}
}

// Learn creates or reinforces the rule for the normalized wrong command.
// The safety veto is absolute and checked before any mutation; a vetoed
// pair leaves the document untouched.
func (l *Learner) Learn(doc *memory.Document, wrong, correct string, now time.Time) {
	if strings.TrimSpace(wrong) == "" || strings.TrimSpace(correct) == "" {
		return
	}
	if l.filter.VetoesLearning(wrong, correct) {
		return
	}

	wrongKey := command.Normalize(wrong)
	rule, ok := doc.Patterns[wrongKey]
	if !ok {
		rule = &memory.Rule{}
		doc.Patterns[wrongKey] = rule
	}
	rule.Count++
	rule.LastSeen = now.Unix()
	// Latest correction wins; the rule does not keep older corrections.
	rule.Correct = command.Normalize(correct)
}

// Prune removes rules whose decayed confidence has fallen below the floor.
// It runs at most once per prune interval, gated on meta.last_prune, and
// stamps the document when it does run. Reports whether a sweep happened.
func (l *Learner) Prune(doc *memory.Document, now time.Time) bool {
	if now.Unix()-doc.LastPrune() < l.settings.PruneIntervalSeconds {
		return false
	}
	for key, rule := range doc.Patterns {
		if Confidence(rule.Count, rule.LastSeen, now, l.settings.DecayHalfLifeSeconds) < l.settings.MinConfidence {
			delete(doc.Patterns, key)
		}
	}
	doc.SetLastPrune(now.Unix())
	return true
}
