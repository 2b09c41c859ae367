package safety

import "testing"

func testFilter() *Filter {
	return NewFilter(
		[]string{"rm -rf /", "dd if=", "mkfs", ":(){ :|:& };:"},
		[]string{"/", "/boot", "/etc", "/usr", "/bin", "/sbin"},
	)
}

func TestDangerousSubstrings(t *testing.T) {
	filter := testFilter()
	cases := []struct {
		command string
		want    bool
	}{
		{"rm -rf /", true},
		{"sudo rm -rf / --no-preserve-root", true},
		{"dd if=/dev/zero of=/dev/sda", true},
		{"mkfs.ext4 /dev/sdb1", true},
		{":(){ :|:& };:", true},
		{"rm -rf ./build", false},
		{"ls -la", false},
		{"echo rm is dangerous", false},
	}
	for _, tc := range cases {
		if got := filter.Dangerous(tc.command); got != tc.want {
			t.Errorf("Dangerous(%q) = %v, want %v", tc.command, got, tc.want)
		}
	}
}

func TestDangerousPatternNamesTheMatch(t *testing.T) {
	filter := testFilter()
	pattern, ok := filter.DangerousPattern("dd if=/dev/sda of=/dev/null")
	if !ok || pattern != "dd if=" {
		t.Fatalf("unexpected match: %q %v", pattern, ok)
	}
	if _, ok := filter.DangerousPattern("git status"); ok {
		t.Fatalf("expected no match for benign command")
	}
}

func TestEscalatesPrivilege(t *testing.T) {
	filter := testFilter()
	cases := []struct {
		wrong   string
		correct string
		want    bool
	}{
		{"vim /tmp/a", "sudo vim /tmp/a", true},
		{"sudo vim /tmp/a", "sudo vim /tmp/b", false},
		// "sudosudo" is itself an elevation attempt, so correcting it to
		// "sudo" is not an escalation and stays learnable.
		{"sudosudo vim test.txt", "sudo vim test.txt", false},
		{"vim notes.txt", "nvim notes.txt", false},
	}
	for _, tc := range cases {
		if got := filter.EscalatesPrivilege(tc.wrong, tc.correct); got != tc.want {
			t.Errorf("EscalatesPrivilege(%q, %q) = %v, want %v", tc.wrong, tc.correct, got, tc.want)
		}
	}
}

func TestTouchesCriticalPath(t *testing.T) {
	filter := testFilter()
	cases := []struct {
		command string
		want    bool
	}{
		{"rm -r /etc", true},
		{"chmod 644 /etc passwd", true},
		{"ls /boot", true},
		{"cd /usr", true},
		{"cat /etc/hosts", false}, // /etc/hosts is not the bare token
		{"ls /home/me", false},
		{"echo done", false},
		{"du -sh /   ", true},
	}
	for _, tc := range cases {
		if got := filter.TouchesCriticalPath(tc.command); got != tc.want {
			t.Errorf("TouchesCriticalPath(%q) = %v, want %v", tc.command, got, tc.want)
		}
	}
}

func TestVetoesLearningAnyPredicate(t *testing.T) {
	filter := testFilter()
	if !filter.VetoesLearning("rm -rf ~/tmp", "rm -rf /") {
		t.Fatalf("expected dangerous correction vetoed")
	}
	if !filter.VetoesLearning("vim a", "sudo vim a") {
		t.Fatalf("expected escalating correction vetoed")
	}
	if !filter.VetoesLearning("rm old", "rm -r /etc") {
		t.Fatalf("expected critical-path correction vetoed")
	}
	if filter.VetoesLearning("gti status", "git status") {
		t.Fatalf("expected benign correction allowed")
	}
}

func TestRedactScrubsSecrets(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"export API_KEY=abc123", "export API_KEY=<redacted>"},
		{"curl --token=tok-99 example.com", "curl --token=<redacted> example.com"},
		{"mysql -u root -phunter2", "mysql -u root -p<redacted>"},
		{"git status", "git status"},
	}
	for _, tc := range cases {
		if got := Redact(tc.in); got != tc.want {
			t.Errorf("Redact(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
