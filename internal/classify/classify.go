package classify

import (
	"fmt"
	"time"

	"cmdsense/internal/command"
	"cmdsense/internal/learn"
	"cmdsense/internal/memory"
	"cmdsense/internal/safety"
)

const (
	IntentLearned     = "Learned correction pattern"
	IntentDestructive = "Destructive system command"
	IntentTypo        = "Likely typing error"
	IntentNormal      = "Normal system command"

	RiskLow      = "Low"
	RiskCritical = "Critical"
)

// Verdict is the classifier's advisory result. Confidence is only set for
// learned-pattern matches.
type Verdict struct {
	Intent     string  `json:"intent"`
	Risk       string  `json:"risk"`
	Reason     string  `json:"reason"`
	Suggestion string  `json:"suggestion"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Options are the injected tunables the classifier depends on.
type Options struct {
	SimilarityThreshold  float64
	MinConfidence        float64
	DecayHalfLifeSeconds int64
	CommonCommands       []string
}

// Classifier decides what a command is attempting. Classification never
// mutates the memory document.
type Classifier struct {
	filter   *safety.Filter
	resolver Resolver
	opts     Options
	common   map[string]struct{}
}

func New(filter *safety.Filter, resolver Resolver, opts Options) *Classifier {
	common := make(map[string]struct{}, len(opts.CommonCommands))
	for _, name := range opts.CommonCommands {
		common[name] = struct{}{}
	}
	return &Classifier{
		filter:   filter,
		resolver: resolver,
		opts:     opts,
		common:   common,
	}
}

// Classify evaluates in fixed priority order: learned patterns beat danger
// patterns beat the unknown-command check. The ordering is deliberate -- a
// correction the user taught us outranks the generic danger heuristics for
// near-miss commands, while anything genuinely destructive never reaches
// the typo branch.
func (c *Classifier) Classify(cmd string, doc memory.Document, now time.Time) Verdict {
	if verdict, ok := c.matchLearned(cmd, doc, now); ok {
		return verdict
	}

	if pattern, ok := c.filter.DangerousPattern(cmd); ok {
		return Verdict{
			Intent:     IntentDestructive,
			Risk:       RiskCritical,
			Reason:     fmt.Sprintf("matches destructive pattern %q", pattern),
			Suggestion: "Do not run this command",
		}
	}

	first := command.FirstToken(cmd)
	if !c.isKnownCommand(first) {
		return Verdict{
			Intent:     IntentTypo,
			Risk:       RiskLow,
			Reason:     fmt.Sprintf("%q is not a known command", first),
			Suggestion: "Check the spelling and try again",
		}
	}

	return Verdict{
		Intent:     IntentNormal,
		Risk:       RiskLow,
		Reason:     "Command appears valid",
		Suggestion: "Safe to proceed",
	}
}

// matchLearned scans stored rules for a key similar to the normalized
// command. Ties are broken deterministically: highest similarity, then most
// recent last_seen, then smallest key.
func (c *Classifier) matchLearned(cmd string, doc memory.Document, now time.Time) (Verdict, bool) {
	normalized := command.Normalize(cmd)

	var (
		bestKey  string
		bestRule *memory.Rule
		bestSim  float64
		bestConf float64
	)
	for key, rule := range doc.Patterns {
		sim := command.Similarity(normalized, key)
		if sim <= c.opts.SimilarityThreshold {
			continue
		}
		conf := learn.Confidence(rule.Count, rule.LastSeen, now, c.opts.DecayHalfLifeSeconds)
		if conf < c.opts.MinConfidence {
			continue
		}
		if bestRule == nil ||
			sim > bestSim ||
			(sim == bestSim && rule.LastSeen > bestRule.LastSeen) ||
			(sim == bestSim && rule.LastSeen == bestRule.LastSeen && key < bestKey) {
			bestKey, bestRule, bestSim, bestConf = key, rule, sim, conf
		}
	}
	if bestRule == nil {
		return Verdict{}, false
	}

	return Verdict{
		Intent:     IntentLearned,
		Risk:       RiskLow,
		Reason:     fmt.Sprintf("resembles previously corrected command %q", bestKey),
		Suggestion: command.SwapFirstToken(cmd, command.FirstToken(bestRule.Correct)),
		Confidence: bestConf,
	}, true
}

// isKnownCommand accepts names on the common allow list or resolvable on
// the executable search path. An empty first token (blank input) is
// neither, and classifies as a typing error.
func (c *Classifier) isKnownCommand(name string) bool {
	if name == "" {
		return false
	}
	if _, ok := c.common[name]; ok {
		return true
	}
	return c.resolver.Exists(name)
}
