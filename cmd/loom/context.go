package main

import (
	"strings"

	"loom/internal/api"
	"loom/internal/config"
)

// commandContext resolves configuration and the daemon API client once per
// invocation and shares them across subcommands.
type commandContext struct {
	configFlag *string
	addrFlag   *string

	cfg     *config.Config
	cfgPath string
}

func newCommandContext(configFlag, addrFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag, addrFlag: addrFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, path, _, err := config.Load(*c.configFlag)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	c.cfgPath = path
	return cfg, nil
}

// client builds an API client for the daemon: an explicit --addr wins,
// otherwise the configured bind address is used.
func (c *commandContext) client() (*api.Client, error) {
	if addr := strings.TrimSpace(*c.addrFlag); addr != "" {
		return api.NewClient(addr)
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return api.NewClient(cfg.Paths.APIBind)
}
