package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"certpilot/internal/acme"
	"certpilot/internal/config"
	"certpilot/internal/history"
	"certpilot/internal/logging"
	"certpilot/internal/provision"
	"certpilot/internal/renewal"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) buildLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureLogDir(); err != nil {
		return nil, fmt.Errorf("ensure log directory: %w", err)
	}
	return logging.NewFromConfig(cfg)
}

// buildIssuer picks the ACME client implementation the config asks for.
func (c *commandContext) buildIssuer() (acme.Issuer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	switch cfg.ACME.Client {
	case config.ClientEmbedded:
		return acme.NewLegoIssuer(cfg.Paths.AcmeHome, cfg.ACME.Email, cfg.ACME.CADirectoryURL), nil
	case config.ClientAcmeSh:
		return acme.NewShellClient(cfg.Paths.AcmeHome, cfg.Paths.AcmeConfig, cfg.Paths.CertsDir,
			acme.WithEmail(cfg.ACME.Email)), nil
	default:
		return nil, fmt.Errorf("unknown acme client %q", cfg.ACME.Client)
	}
}

func (c *commandContext) buildProvisioner() (*provision.Provisioner, *history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.buildLogger()
	if err != nil {
		return nil, nil, err
	}
	issuer, err := c.buildIssuer()
	if err != nil {
		return nil, nil, err
	}
	scheduler := renewal.NewCron(cfg.Paths.CronFile, issuer.RenewCommand(), cfg.TLS.ReloadCommand)

	opts := []provision.Option{}
	journal, journalErr := c.openJournal()
	if journalErr != nil {
		logger.Warn("run journal unavailable", "error", journalErr)
	} else {
		opts = append(opts, provision.WithRecorder(journal))
	}

	return provision.New(cfg, logger, issuer, scheduler, opts...), journal, nil
}

func (c *commandContext) openJournal() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return history.Open(filepath.Join(cfg.Paths.LogDir, "runs.db"))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
