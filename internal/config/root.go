package config

import (
	"os"
	"path/filepath"
)

const rootEnv = "WIDGETS_ROOT"

// FindRoot returns the project root: WIDGETS_ROOT when set, else the
// nearest directory at or above the working directory holding
// conf/global.yaml, else the parent of a bin/ directory holding the
// executable (the installed layout), else the working directory.
func FindRoot() string {
	if r := os.Getenv(rootEnv); r != "" {
		return r
	}
	wd, _ := os.Getwd()
	if r, ok := climb(wd); ok {
		return r
	}
	if exe, err := os.Executable(); err == nil {
		if bin := filepath.Dir(exe); filepath.Base(bin) == "bin" {
			return filepath.Dir(bin)
		}
	}
	return wd
}

// climb walks from dir towards the filesystem root.
func climb(dir string) (string, bool) {
	for d := dir; ; {
		if hasConf(d) {
			return d, true
		}
		up := filepath.Dir(d)
		if up == d {
			return "", false
		}
		d = up
	}
}

func hasConf(dir string) bool {
	fi, err := os.Stat(filepath.Join(dir, "conf", baseFile))
	return err == nil && !fi.IsDir()
}
