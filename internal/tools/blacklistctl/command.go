package blacklistctl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/snic-labs/policy-api/internal/config"
	"github.com/snic-labs/policy-api/internal/di"
	"github.com/snic-labs/policy-api/internal/observability"
	"github.com/snic-labs/policy-api/internal/security"
	"github.com/snic-labs/policy-api/internal/service"
	"github.com/snic-labs/policy-api/internal/tools/common"
	"github.com/snic-labs/policy-api/internal/tools/ui"
)

// Blacklist is the subset of the blacklist service the tool drives.
type Blacklist interface {
	service.ExpiredTokenPurger
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Opener builds the blacklist service and returns a release func.
type Opener func(envFile string) (Blacklist, func(), error)

type options struct {
	envFile string
	timeout time.Duration
	ci      bool
	open    Opener
	out     io.Writer
}

func NewRootCommand() *cobra.Command {
	return newRootCommand(openFromConfig, os.Stdout)
}

func newRootCommand(open Opener, out io.Writer) *cobra.Command {
	opts := &options{open: open, out: out}
	cmd := &cobra.Command{
		Use:           "blacklistctl",
		Short:         "Inspect and maintain the token blacklist",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "optional dotenv file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "upper bound for the operation")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newPurgeCommand(opts), newInspectCommand(opts))
	return cmd
}

func newPurgeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Run one cleanup cycle and delete expired blacklist entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.execute("blacklistctl purge", func(ctx context.Context, bl Blacklist) ([]string, error) {
				logger := slog.New(slog.NewTextHandler(io.Discard, nil))
				scheduler := service.NewBlacklistCleanupScheduler(bl, time.Hour, opts.timeout, logger)
				purged, err := scheduler.RunOnce(ctx)
				if err != nil {
					return nil, err
				}
				return []string{fmt.Sprintf("purged=%d", purged)}, nil
			})
		},
	}
}

func newInspectCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <token>",
		Short: "Decode a token without verifying it and report its revocation state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := args[0]
			return opts.execute("blacklistctl inspect", func(ctx context.Context, bl Blacklist) ([]string, error) {
				return inspect(ctx, bl, token)
			})
		},
	}
}

func inspect(ctx context.Context, bl Blacklist, token string) ([]string, error) {
	claims, err := security.ParseUnverified(token)
	if err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	details := []string{
		"token_id=" + claims.ID,
		"subject=" + claims.Subject,
		"username=" + claims.Username,
		"role=" + claims.Role,
	}
	if claims.ExpiresAt != nil {
		details = append(details, "expires_at="+claims.ExpiresAt.Time.UTC().Format(time.RFC3339))
	}
	if claims.ID == "" {
		return append(details, "revoked=false (no token id)"), nil
	}
	revoked, err := bl.IsRevoked(ctx, token)
	if err != nil {
		return details, err
	}
	return append(details, fmt.Sprintf("revoked=%t", revoked)), nil
}

func (o *options) execute(title string, fn func(context.Context, Blacklist) ([]string, error)) error {
	bl, release, err := o.open(o.envFile)
	if err != nil {
		if o.ci {
			common.WriteCIResult(o.out, false, title, nil, err)
		}
		return err
	}
	defer release()

	run := func(ctx context.Context) ([]string, error) { return fn(ctx, bl) }
	var details []string
	if o.ci {
		ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
		defer cancel()
		details, err = run(ctx)
		common.WriteCIResult(o.out, err == nil, title, details, err)
	} else {
		details, err = ui.Run(title, run)
	}
	return err
}

func openFromConfig(envFile string) (Blacklist, func(), error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	logger := observability.NewJSONLogger(os.Stderr, cfg.LogLevel)
	svc, cleanup, err := di.InitializeBlacklistService(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open blacklist store: %w", err)
	}
	return svc, cleanup, nil
}

// ExitCode maps command errors to process exit codes.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, service.ErrOperationFailed):
		return 4
	default:
		return 1
	}
}
