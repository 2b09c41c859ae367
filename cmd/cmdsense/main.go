// cmdsense analyzes one shell command per invocation: it classifies the
// command's intent, flags destructive ones, and suggests corrections it has
// learned from the user's own typo-correction behaviour. It never executes
// anything.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"cmdsense/internal/classify"
	"cmdsense/internal/config"
	"cmdsense/internal/learn"
	"cmdsense/internal/memory"
	"cmdsense/internal/safety"
	"cmdsense/internal/shell"
	"cmdsense/internal/shellhistory"
	"cmdsense/internal/ui"
)

var version = "dev"

type options struct {
	JSON          bool
	Quiet         bool
	Hook          bool
	Version       bool
	ShowConfig    bool
	Patterns      bool
	History       bool
	Review        bool
	ImportHistory bool
	Forget        string
	Init          string
	UI            string
}

func main() {
	opts, cmdStr, err := parseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if opts.Version {
		fmt.Println(version)
		return
	}
	if opts.Init != "" {
		script, err := shell.InitScript(opts.Init)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cmdsense: %v\n", err)
			os.Exit(2)
		}
		fmt.Print(script)
		return
	}

	cfg, cfgPath, err := config.LoadOrCreate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cmdsense: could not load config: %v\n", err)
		os.Exit(1)
	}
	backend := effectiveBackend(cfg, opts)

	switch {
	case opts.ShowConfig:
		handleShowConfig(cfg, cfgPath, opts)
		return
	case opts.Patterns:
		exitOnError(handlePatterns(cfg, opts, time.Now()))
		return
	case opts.History:
		exitOnError(handleHistory(opts))
		return
	case opts.Review:
		exitOnError(handleReview(cfg, backend, time.Now()))
		return
	case opts.ImportHistory:
		exitOnError(handleImportHistory(cfg))
		return
	case opts.Forget != "":
		exitOnError(handleForget(opts.Forget, backend))
		return
	}

	verdict, err := analyze(cmdStr, cfg, classify.PathResolver{}, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "cmdsense: %v\n", err)
		os.Exit(1)
	}
	if opts.Hook && verdict.Intent == classify.IntentNormal {
		return
	}
	renderVerdict(os.Stdout, verdict, opts)
}

func parseArgs(args []string) (options, string, error) {
	fs := flag.NewFlagSet("cmdsense", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts options
	fs.BoolVar(&opts.JSON, "json", false, "output the verdict as JSON")
	fs.BoolVar(&opts.Quiet, "quiet", false, "print only the suggested action")
	fs.BoolVar(&opts.Hook, "hook", false, "shell-hook mode: record the command, report only notable verdicts")
	fs.BoolVar(&opts.Version, "version", false, "print version")
	fs.BoolVar(&opts.ShowConfig, "show-config", false, "show effective settings and exit")
	fs.BoolVar(&opts.Patterns, "patterns", false, "list learned correction patterns and exit")
	fs.BoolVar(&opts.History, "history", false, "list recorded command events and exit")
	fs.BoolVar(&opts.Review, "review", false, "interactively review and forget learned patterns")
	fs.BoolVar(&opts.ImportHistory, "import-history", false, "seed correction patterns from existing shell history")
	fs.StringVar(&opts.Forget, "forget", "", "forget the learned pattern for a wrong-command key")
	fs.StringVar(&opts.Init, "init", "", "print the shell hook for bash, zsh, or fish")
	fs.StringVar(&opts.UI, "ui", "", "override ui backend: auto|bubbletea|huh|tview|plain")

	if err := fs.Parse(args); err != nil {
		return options{}, "", err
	}
	return opts, strings.Join(fs.Args(), " "), nil
}

func effectiveBackend(cfg config.Config, opts options) string {
	if strings.TrimSpace(opts.UI) != "" {
		return ui.NormalizeBackend(opts.UI)
	}
	return ui.NormalizeBackend(cfg.UI.Backend)
}

// analyze runs one complete advisory transaction: load, prune, classify,
// record (and opportunistically learn), save. Classification itself never
// mutates state; everything the transaction changes goes through the
// document it loads here.
func analyze(cmdStr string, cfg config.Config, resolver classify.Resolver, now time.Time) (classify.Verdict, error) {
	doc, path, err := memory.Load()
	if err != nil {
		return classify.Verdict{}, err
	}

	filter := safety.NewFilter(cfg.Safety.DangerPatterns, cfg.Safety.CriticalPaths)
	learner := learn.NewLearner(filter, learnSettings(cfg))
	learner.Prune(&doc, now)

	classifier := classify.New(filter, resolver, classify.Options{
		SimilarityThreshold:  cfg.Advisor.SimilarityThreshold,
		MinConfidence:        cfg.Advisor.MinConfidence,
		DecayHalfLifeSeconds: cfg.Advisor.DecayHalfLifeSeconds,
		CommonCommands:       cfg.Commands.Common,
	})
	verdict := classifier.Classify(cmdStr, doc, now)

	recordAndLearn(&doc, cmdStr, verdict, learner, cfg, now)

	if err := memory.Save(path, doc); err != nil {
		return classify.Verdict{}, err
	}
	return verdict, nil
}

// recordAndLearn appends the event and fires the sole learning trigger: a
// "Likely typing error" event immediately followed by a "Normal system
// command" event is read as the user correcting their own typo.
func recordAndLearn(doc *memory.Document, cmdStr string, verdict classify.Verdict, learner *learn.Learner, cfg config.Config, now time.Time) {
	stored := cmdStr
	if cfg.Safety.RedactSecrets {
		stored = safety.Redact(cmdStr)
	}
	doc.AppendEvent(memory.Event{
		Command: stored,
		Intent:  verdict.Intent,
		Time:    now.Unix(),
	}, cfg.Advisor.HistoryLimit)

	n := len(doc.History)
	if n < 2 {
		return
	}
	previous, current := doc.History[n-2], doc.History[n-1]
	if previous.Intent == classify.IntentTypo && current.Intent == classify.IntentNormal {
		learner.Learn(doc, previous.Command, current.Command, now)
	}
}

func learnSettings(cfg config.Config) learn.Settings {
	return learn.Settings{
		DecayHalfLifeSeconds: cfg.Advisor.DecayHalfLifeSeconds,
		MinConfidence:        cfg.Advisor.MinConfidence,
		PruneIntervalSeconds: cfg.Advisor.PruneIntervalSeconds,
	}
}

func renderVerdict(w io.Writer, verdict classify.Verdict, opts options) {
	if opts.JSON {
		payload, err := json.MarshalIndent(verdict, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "cmdsense: could not encode verdict: %v\n", err)
			return
		}
		fmt.Fprintln(w, string(payload))
		return
	}
	if opts.Quiet {
		fmt.Fprintln(w, verdict.Suggestion)
		return
	}

	fmt.Fprintf(w, "Intent: %s\n", verdict.Intent)
	fmt.Fprintf(w, "Risk: %s\n", verdict.Risk)
	fmt.Fprintf(w, "  Reason: %s\n", verdict.Reason)
	fmt.Fprintf(w, "  Suggested action: %s\n", verdict.Suggestion)
	if verdict.Confidence > 0 {
		fmt.Fprintf(w, "  Confidence: %.2f\n", verdict.Confidence)
	}
}

func handleShowConfig(cfg config.Config, cfgPath string, opts options) {
	if opts.JSON {
		payload, err := json.MarshalIndent(map[string]any{
			"config_path": cfgPath,
			"settings":    cfg,
		}, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "cmdsense: could not encode settings: %v\n", err)
			return
		}
		fmt.Println(string(payload))
		return
	}
	fmt.Printf("config: %s\n", cfgPath)
	fmt.Printf("  decay_half_life_seconds: %d\n", cfg.Advisor.DecayHalfLifeSeconds)
	fmt.Printf("  min_confidence: %g\n", cfg.Advisor.MinConfidence)
	fmt.Printf("  prune_interval_seconds: %d\n", cfg.Advisor.PruneIntervalSeconds)
	fmt.Printf("  similarity_threshold: %g\n", cfg.Advisor.SimilarityThreshold)
	fmt.Printf("  history_limit: %d\n", cfg.Advisor.HistoryLimit)
	fmt.Printf("  ui.backend: %s\n", cfg.UI.Backend)
	fmt.Printf("  safety.redact_secrets: %v\n", cfg.Safety.RedactSecrets)
}

type patternEntry struct {
	Key        string  `json:"key"`
	Correct    string  `json:"correct"`
	Count      int     `json:"count"`
	LastSeen   int64   `json:"last_seen"`
	Confidence float64 `json:"confidence"`
}

func patternEntries(doc memory.Document, cfg config.Config, now time.Time) []patternEntry {
	entries := make([]patternEntry, 0, len(doc.Patterns))
	for key, rule := range doc.Patterns {
		entries = append(entries, patternEntry{
			Key:        key,
			Correct:    rule.Correct,
			Count:      rule.Count,
			LastSeen:   rule.LastSeen,
			Confidence: learn.Confidence(rule.Count, rule.LastSeen, now, cfg.Advisor.DecayHalfLifeSeconds),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Confidence == entries[j].Confidence {
			return entries[i].Key < entries[j].Key
		}
		return entries[i].Confidence > entries[j].Confidence
	})
	return entries
}

func handlePatterns(cfg config.Config, opts options, now time.Time) error {
	doc, _, err := memory.Load()
	if err != nil {
		return err
	}
	entries := patternEntries(doc, cfg, now)

	if opts.JSON {
		payload, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("could not encode patterns: %w", err)
		}
		fmt.Println(string(payload))
		return nil
	}
	if len(entries) == 0 {
		fmt.Println("No learned patterns yet.")
		return nil
	}
	fmt.Printf("Learned patterns (%d):\n", len(entries))
	for _, entry := range entries {
		fmt.Printf("  %s -> %s  (count %d, confidence %.2f)\n",
			entry.Key, entry.Correct, entry.Count, entry.Confidence)
	}
	return nil
}

func handleHistory(opts options) error {
	doc, _, err := memory.Load()
	if err != nil {
		return err
	}
	if opts.JSON {
		payload, err := json.MarshalIndent(doc.History, "", "  ")
		if err != nil {
			return fmt.Errorf("could not encode history: %w", err)
		}
		fmt.Println(string(payload))
		return nil
	}
	if len(doc.History) == 0 {
		fmt.Println("No recorded commands yet.")
		return nil
	}
	for _, event := range doc.History {
		fmt.Printf("%s  %-26s  %s\n",
			time.Unix(event.Time, 0).Format("2006-01-02 15:04:05"),
			event.Intent,
			event.Command)
	}
	return nil
}

func handleReview(cfg config.Config, backend string, now time.Time) error {
	doc, path, err := memory.Load()
	if err != nil {
		return err
	}
	entries := patternEntries(doc, cfg, now)
	if len(entries) == 0 {
		fmt.Println("No learned patterns to review.")
		return nil
	}

	items := make([]ui.PatternItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, ui.PatternItem{
			Key:        entry.Key,
			Correct:    entry.Correct,
			Count:      entry.Count,
			Confidence: entry.Confidence,
		})
	}

	key := ""
	if ui.IsInteractiveBackend(backend) && isTerminal(os.Stdin) && isTerminal(os.Stdout) {
		selected, used, err := ui.SelectPattern(backend, items)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cmdsense: review ui failed (%v); falling back to plain output\n", err)
		}
		if used {
			key = selected
		}
	}
	if key == "" {
		fmt.Printf("Learned patterns (%d):\n", len(items))
		for _, item := range items {
			fmt.Printf("  %s -> %s  (count %d, confidence %.2f)\n",
				item.Key, item.Correct, item.Count, item.Confidence)
		}
		fmt.Println("Use --forget <key> to drop one.")
		return nil
	}

	return forgetKey(&doc, path, key, backend)
}

// handleImportHistory replays the user's shell history through the same
// typo-then-fix detection the live tool uses, seeding the pattern store in
// one pass instead of one correction at a time.
func handleImportHistory(cfg config.Config) error {
	doc, path, err := memory.Load()
	if err != nil {
		return err
	}
	entries, err := shellhistory.LoadEntries()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No shell history found.")
		return nil
	}

	common := make(map[string]struct{}, len(cfg.Commands.Common))
	for _, name := range cfg.Commands.Common {
		common[name] = struct{}{}
	}
	resolver := classify.PathResolver{}
	isKnown := func(name string) bool {
		if _, ok := common[name]; ok {
			return true
		}
		return resolver.Exists(name)
	}

	pairs := shellhistory.CorrectionPairs(entries, isKnown, cfg.Advisor.SimilarityThreshold)
	if len(pairs) == 0 {
		fmt.Println("No correction patterns found in shell history.")
		return nil
	}

	filter := safety.NewFilter(cfg.Safety.DangerPatterns, cfg.Safety.CriticalPaths)
	learner := learn.NewLearner(filter, learnSettings(cfg))
	before := len(doc.Patterns)
	for _, pair := range pairs {
		learner.Learn(&doc, pair.Wrong, pair.Correct, pair.Time)
	}
	if err := memory.Save(path, doc); err != nil {
		return err
	}
	fmt.Printf("Imported %d corrections from shell history (%d new patterns).\n",
		len(pairs), len(doc.Patterns)-before)
	return nil
}

func handleForget(key string, backend string) error {
	doc, path, err := memory.Load()
	if err != nil {
		return err
	}
	return forgetKey(&doc, path, key, backend)
}

func forgetKey(doc *memory.Document, path, key, backend string) error {
	rule, ok := doc.Patterns[key]
	if !ok {
		fmt.Printf("No learned pattern for %q.\n", key)
		return nil
	}

	if isTerminal(os.Stdin) && isTerminal(os.Stdout) {
		approved := false
		if ui.IsInteractiveBackend(backend) {
			ok, used, err := ui.ConfirmForget(backend, key, rule.Correct)
			if err == nil && used {
				approved = ok
			} else {
				approved = confirmForgetPlain(key, rule.Correct)
			}
		} else {
			approved = confirmForgetPlain(key, rule.Correct)
		}
		if !approved {
			fmt.Println("Kept.")
			return nil
		}
	}

	delete(doc.Patterns, key)
	if err := memory.Save(path, *doc); err != nil {
		return err
	}
	fmt.Printf("Forgot %q.\n", key)
	return nil
}

func confirmForgetPlain(key, correct string) bool {
	fmt.Printf("Forget learned pattern %s -> %s? [y/N]: ", key, correct)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	trimmed := strings.ToLower(strings.TrimSpace(line))
	return trimmed == "y" || trimmed == "yes"
}

func isTerminal(file *os.File) bool {
	stat, err := file.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "cmdsense: %v\n", err)
		os.Exit(1)
	}
}
