package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/mrz1836/ledgerbox/internal/config"
	"github.com/mrz1836/ledgerbox/internal/output"
)

type cmdContextKey struct{}

// CommandContext holds dependencies for CLI commands.
type CommandContext struct {
	Config *config.Config
	Log    LogWriter
	Fmt    *output.Formatter

	// Backups is opened on first use unless set.
	Backups BackupService

	closers []func() error
}

// NewCommandContext creates a context with the given dependencies.
func NewCommandContext(cfg *config.Config, logger LogWriter, formatter *output.Formatter) *CommandContext {
	return &CommandContext{
		Config: cfg,
		Log:    logger,
		Fmt:    formatter,
	}
}

// SetCmdContext attaches cc to the command.
func SetCmdContext(cmd *cobra.Command, cc *CommandContext) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cmdContextKey{}, cc))
}

// GetCmdContext returns the context attached by SetCmdContext, or nil.
func GetCmdContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	if ctx == nil {
		return nil
	}
	cc, _ := ctx.Value(cmdContextKey{}).(*CommandContext)
	return cc
}

// backups returns the backup service, opening it on first use.
func (c *CommandContext) backups(ctx context.Context) (BackupService, error) {
	if c.Backups != nil {
		return c.Backups, nil
	}

	svc, closeFn, err := openBackupService(ctx, c.Config, c.Log)
	if err != nil {
		return nil, err
	}
	c.Backups = svc
	if closeFn != nil {
		c.closers = append(c.closers, closeFn)
	}
	return svc, nil
}

// Close releases everything opened through the context.
func (c *CommandContext) Close() error {
	var errs []error
	for _, fn := range c.closers {
		errs = append(errs, fn())
	}
	c.closers = nil
	return errors.Join(errs...)
}
