package main

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"mp4press/internal/config"
)

type commandContext struct {
	configFlag *string
	dirFlag    *string
	forceFlag  *bool

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag, dirFlag *string, forceFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		dirFlag:    dirFlag,
		forceFlag:  forceFlag,
	}
}

// ensureConfig loads the configuration once and applies command-line
// overrides on top of it.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.dirFlag != nil {
			withDir, err := cfg.WithWorkingDir(*c.dirFlag)
			if err != nil {
				c.configErr = err
				return
			}
			cfg = &withDir
		}
		if c.forceFlag != nil && *c.forceFlag {
			cfg.Policy.ForceCompress = true
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
