// Package shell emits the integration snippets that feed cmdsense every
// command the user runs, which is what makes correction learning automatic.
package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	Bash = "bash"
	Zsh  = "zsh"
	Fish = "fish"
)

// Detect returns the current user's shell name from $SHELL, defaulting to
// bash when it is unset or unrecognized.
func Detect() string {
	name := strings.ToLower(filepath.Base(strings.TrimSpace(os.Getenv("SHELL"))))
	switch name {
	case Bash, Zsh, Fish:
		return name
	default:
		return Bash
	}
}

// InitScript returns the hook snippet for the given shell. The snippet runs
// cmdsense in hook mode after every command, which records the command and
// surfaces advice only for learned corrections and destructive commands.
// Each hook skips cmdsense's own invocations so analysis never feeds back
// into itself.
func InitScript(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Bash:
		return bashHook, nil
	case Zsh:
		return zshHook, nil
	case Fish:
		return fishHook, nil
	default:
		return "", fmt.Errorf("unsupported shell %q (supported: bash, zsh, fish)", name)
	}
}

const bashHook = `# cmdsense shell hook. Add to ~/.bashrc:
#   eval "$(cmdsense --init bash)"
__cmdsense_hook() {
  local last
  last=$(HISTTIMEFORMAT= builtin history 1 2>/dev/null | sed 's/^ *[0-9]* *//')
  case "$last" in
    ""|cmdsense*) return ;;
  esac
  command cmdsense --hook -- "$last"
}
if [[ ":$PROMPT_COMMAND:" != *":__cmdsense_hook:"* ]]; then
  PROMPT_COMMAND="__cmdsense_hook${PROMPT_COMMAND:+;$PROMPT_COMMAND}"
fi
`

const zshHook = `# cmdsense shell hook. Add to ~/.zshrc:
#   eval "$(cmdsense --init zsh)"
__cmdsense_hook() {
  local last
  last=$(builtin fc -ln -1 2>/dev/null)
  last="${last#"${last%%[![:space:]]*}"}"
  case "$last" in
    ""|cmdsense*) return ;;
  esac
  command cmdsense --hook -- "$last"
}
autoload -Uz add-zsh-hook
add-zsh-hook precmd __cmdsense_hook
`

const fishHook = `# cmdsense shell hook. Add to ~/.config/fish/config.fish:
#   cmdsense --init fish | source
function __cmdsense_hook --on-event fish_postexec
  set -l last $argv[1]
  if test -z "$last"
    return
  end
  if string match -q 'cmdsense*' -- $last
    return
  end
  command cmdsense --hook -- $last
end
`
