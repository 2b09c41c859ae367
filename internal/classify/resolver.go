package classify

import "os/exec"

// Resolver reports whether a name resolves to an executable. It is an
// injected capability so tests can run without depending on the host PATH.
type Resolver interface {
	Exists(name string) bool
}

// PathResolver resolves against the process's executable search path.
type PathResolver struct{}

func (PathResolver) Exists(name string) bool {
	if name == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}
