package configutil

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

func readJson5[T any](path string) (T, error) {
	var out T
	raw, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}
	err = json5.Unmarshal(raw, &out)
	if err != nil {
		return out, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, nil
}

func localPath(name string) string {
	dir := filepath.Dir(name)
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	stem := base[:len(base)-len(ext)]
	return filepath.Join(dir, stem+".local"+ext)
}

// reads a json5 configuration file, `name` should come with a file
// extension. when a sibling <name>.local.<ext> exists it is merged on
// top of the base file, local values win.
func ReadConfig[T any](name string) (T, error) {
	base, baseErr := readJson5[T](name)
	if baseErr != nil && !errors.Is(baseErr, fs.ErrNotExist) {
		return base, baseErr
	}

	local := localPath(name)
	override, localErr := readJson5[T](local)
	if localErr != nil && !errors.Is(localErr, fs.ErrNotExist) {
		return base, localErr
	}
	if localErr == nil {
		err := mergo.Merge(&base, override, mergo.WithOverride)
		if err != nil {
			return base, err
		}
		slog.Info("merging config with local overrides", "local", local)
		return base, nil
	}

	if baseErr != nil {
		return base, os.ErrNotExist
	}
	return base, nil
}

// ReadConfig but it walks up the filesystem from the cwd until the
// root to find a configuration file matching the name.
func ReadRecursively[T any](name string) (T, error) {
	var zero T

	current, err := os.Getwd()
	if err != nil {
		return zero, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if errors.Is(err, fs.ErrNotExist) {
			parent := filepath.Dir(current)
			if parent == current {
				return zero, os.ErrNotExist
			}
			current = parent
			continue
		}
		return config, err
	}
}
