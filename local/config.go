package local

import (
	"fmt"
	"os"
)

const (
	defaultFileMode   os.FileMode = 0o644
	defaultFolderMode os.FileMode = 0o755
)

// Option configures a local Conn
type Option func(*config)

type config struct {
	fileMode   os.FileMode // permission bits for uploaded files
	folderMode os.FileMode // permission bits for created directories
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		fileMode:   defaultFileMode,
		folderMode: defaultFolderMode,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithFileMode sets permissions for uploaded files (default 0644)
func WithFileMode(mode os.FileMode) Option {
	return func(c *config) {
		if mode != 0 {
			c.fileMode = mode
		}
	}
}

// WithFolderMode sets permissions for created directories (default 0755)
func WithFolderMode(mode os.FileMode) Option {
	return func(c *config) {
		if mode != 0 {
			c.folderMode = mode
		}
	}
}

// validateRoot checks that root exists and is a directory
func validateRoot(root string) error {
	if root == "" {
		return fmt.Errorf("root directory required")
	}
	fi, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("root %s does not exist", root)
		}
		return fmt.Errorf("invalid root %q: %w", root, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("root %q is not a directory", root)
	}
	return nil
}
