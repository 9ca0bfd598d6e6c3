package config

import (
	"errors"
	"fmt"
	"os"
)

// Loaded is a resolved configuration and where it came from.
type Loaded struct {
	Config Config
	// Path is empty when defaults were used.
	Path string
	Root string
}

// FlowPath returns the absolute flow path, or "" for the built-in flow.
func (l Loaded) FlowPath() string {
	return ResolvePath(l.Root, l.Config.Flow.Path)
}

// Load reads, parses, and validates a config file without env overrides.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, err
	}
	if err := Validate(&cfg, RootFromConfigPath(path)); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ResolveOptions controls Resolve.
type ResolveOptions struct {
	// Path is an explicit config file; when empty the tree above StartDir
	// is searched.
	Path     string
	StartDir string
	// Lookup overrides environment access; nil reads the process
	// environment and .env.
	Lookup LookupFunc
}

// Resolve finds and loads the config file, falling back to defaults when
// none exists, then applies environment overrides and validates the result.
func Resolve(opts ResolveOptions) (Loaded, error) {
	loaded := Loaded{Config: Default(), Path: opts.Path}
	if loaded.Path == "" {
		found, err := FindConfigPath(opts.StartDir)
		switch {
		case err == nil:
			loaded.Path = found
		case errors.Is(err, ErrNotFound):
		default:
			return Loaded{}, err
		}
	}

	if loaded.Path != "" {
		data, err := os.ReadFile(loaded.Path)
		if err != nil {
			return Loaded{}, fmt.Errorf("read config: %w", err)
		}
		cfg, err := Parse(data)
		if err != nil {
			return Loaded{}, err
		}
		loaded.Config = cfg
		loaded.Root = RootFromConfigPath(loaded.Path)
	} else {
		root, err := startDir(opts.StartDir)
		if err != nil {
			return Loaded{}, err
		}
		loaded.Root = root
	}

	lookup := opts.Lookup
	if lookup == nil {
		envLookup, err := EnvLookup(loaded.Root)
		if err != nil {
			return Loaded{}, err
		}
		lookup = envLookup
	}
	if err := ApplyEnv(&loaded.Config, lookup); err != nil {
		return Loaded{}, err
	}
	if err := Validate(&loaded.Config, loaded.Root); err != nil {
		return Loaded{}, err
	}
	return loaded, nil
}

func startDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return wd, nil
}
