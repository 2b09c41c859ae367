// Package shellhistory reads the user's existing shell history files so
// past typo-then-correction sequences can seed the learned-pattern store.
package shellhistory

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Entry is one command from a shell history file.
type Entry struct {
	Command string
	Time    time.Time
	Source  string
	order   int
}

const maxHistoryLineBytes = 1024 * 1024
const maxEntries = 12000

// LoadEntries reads every supported history file under the user's home
// directory and returns the merged entries in chronological order. A shell
// whose history file is missing or unreadable is skipped silently.
func LoadEntries() ([]Entry, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("could not determine home directory: %w", err)
	}
	return LoadEntriesFromHome(home)
}

func LoadEntriesFromHome(home string) ([]Entry, error) {
	sources := []struct {
		path   string
		loader func(string) ([]Entry, error)
	}{
		{filepath.Join(home, ".zsh_history"), loadZshHistory},
		{filepath.Join(home, ".bash_history"), loadBashHistory},
		{filepath.Join(home, ".local", "share", "fish", "fish_history"), loadFishHistory},
	}

	var entries []Entry
	nextOrder := 0
	for _, source := range sources {
		if _, err := os.Stat(source.path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		loaded, err := source.loader(source.path)
		if err != nil {
			continue
		}
		for _, entry := range loaded {
			entry.Command = strings.TrimSpace(entry.Command)
			if entry.Command == "" || looksSensitive(entry.Command) {
				continue
			}
			entry.order = nextOrder
			nextOrder++
			entries = append(entries, entry)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Time.Equal(entries[j].Time) {
			return entries[i].order < entries[j].order
		}
		return entries[i].Time.Before(entries[j].Time)
	})
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}
	return entries, nil
}

// loadZshHistory handles both plain and extended (": <epoch>:<dur>;cmd")
// zsh history lines.
func loadZshHistory(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	scanner := newHistoryScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		timestamp := time.Time{}
		command := line
		if strings.HasPrefix(line, ": ") {
			parts := strings.SplitN(line, ";", 2)
			if len(parts) == 2 {
				meta := strings.TrimPrefix(parts[0], ": ")
				metaParts := strings.Split(meta, ":")
				if len(metaParts) > 0 {
					if epoch, err := parseUnix(metaParts[0]); err == nil {
						timestamp = time.Unix(epoch, 0).UTC()
					}
				}
				command = parts[1]
			}
		}
		entries = append(entries, Entry{Command: command, Time: timestamp, Source: "zsh"})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	backfillMissingTimes(entries)
	return entries, nil
}

// loadBashHistory understands HISTTIMEFORMAT comment lines ("#<epoch>")
// preceding each command.
func loadBashHistory(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	scanner := newHistoryScanner(f)
	var pending time.Time
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if epoch, err := parseUnix(strings.TrimPrefix(line, "#")); err == nil {
				pending = time.Unix(epoch, 0).UTC()
			} else {
				pending = time.Time{}
			}
			continue
		}
		entries = append(entries, Entry{Command: line, Time: pending, Source: "bash"})
		pending = time.Time{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	backfillMissingTimes(entries)
	return entries, nil
}

func loadFishHistory(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	scanner := newHistoryScanner(f)
	current := Entry{Source: "fish"}
	flush := func() {
		if strings.TrimSpace(current.Command) != "" {
			entries = append(entries, current)
		}
		current = Entry{Source: "fish"}
	}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "- cmd:") {
			flush()
			current.Command = strings.TrimSpace(strings.TrimPrefix(line, "- cmd:"))
			continue
		}
		if strings.HasPrefix(line, "when:") {
			if epoch, err := parseUnix(strings.TrimSpace(strings.TrimPrefix(line, "when:"))); err == nil {
				current.Time = time.Unix(epoch, 0).UTC()
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	backfillMissingTimes(entries)
	return entries, nil
}

// backfillMissingTimes gives untimed entries synthetic timestamps that keep
// file order, one second apart, ending just before now.
func backfillMissingTimes(entries []Entry) {
	missing := 0
	for _, entry := range entries {
		if entry.Time.IsZero() {
			missing++
		}
	}
	if missing == 0 {
		return
	}
	start := time.Now().UTC().Add(-time.Duration(missing) * time.Second)
	i := 0
	for idx := range entries {
		if entries[idx].Time.IsZero() {
			entries[idx].Time = start.Add(time.Duration(i) * time.Second)
			i++
		}
	}
}

func newHistoryScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxHistoryLineBytes)
	return scanner
}

func parseUnix(s string) (int64, error) {
	var v int64
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &v); err != nil {
		return 0, err
	}
	return v, nil
}

// looksSensitive drops history lines that embed credentials. Imported
// entries feed the pattern store keys verbatim, so redaction is not enough
// here; the whole line is skipped.
func looksSensitive(command string) bool {
	low := strings.ToLower(command)
	markers := []string{
		"password=", "passwd", "token=", "secret=",
		"api_key=", "apikey=", "access_key", "private_key",
		"authorization: bearer",
	}
	for _, marker := range markers {
		if strings.Contains(low, marker) {
			return true
		}
	}
	return false
}
