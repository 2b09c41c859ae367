package appdirs

import (
	"fmt"
	"os"
	"path/filepath"
)

// Everything lives under one fixed directory in the user's home: the data
// directory holds the persisted memory document, the config file sits next
// to it. Shell integrations and older installs expect these exact paths, so
// they are not platform-dependent.
const (
	AppDirName     = "linux_ai"
	dataDirName    = "data"
	configFileName = "config.toml"
)

// BaseDir resolves <home>/linux_ai. CMDSENSE_HOME overrides the base for
// tests and sandboxed installs.
func BaseDir() (string, error) {
	if override := os.Getenv("CMDSENSE_HOME"); override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not resolve home directory: %w", err)
	}
	return filepath.Join(home, AppDirName), nil
}

func DataDir() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, dataDirName), nil
}

func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("could not create data dir: %w", err)
	}
	if err := os.Chmod(dir, 0o700); err != nil {
		return "", fmt.Errorf("could not secure data dir permissions: %w", err)
	}
	return dir, nil
}

func DataFilePath(name string) (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func ConfigFilePath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, configFileName), nil
}

func EnsureBaseDir() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(base, 0o700); err != nil {
		return "", fmt.Errorf("could not create app dir: %w", err)
	}
	if err := os.Chmod(base, 0o700); err != nil {
		return "", fmt.Errorf("could not secure app dir permissions: %w", err)
	}
	return base, nil
}
