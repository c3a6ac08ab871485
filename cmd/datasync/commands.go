package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-datasync/internal/adapters/driven/auth"
	httpapi "github.com/custodia-labs/sercha-datasync/internal/adapters/driving/http"
	"github.com/custodia-labs/sercha-datasync/internal/config"
	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
	"github.com/custodia-labs/sercha-datasync/internal/core/services"
)

// errSyncFailed makes the process exit non-zero after a failed run has been printed
var errSyncFailed = errors.New("sync failed")

// cli carries state shared by all subcommands
type cli struct {
	configPath string
	jsonOutput bool

	out    io.Writer
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:           "datasync",
		Short:         "External data synchronization engine",
		Long:          "datasync pulls regulatory standards, supplier certifications and industry\nbenchmarks from external providers and reconciles them into PostgreSQL.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = cfg.Log.NewLogger(os.Stderr)
			slog.SetDefault(c.logger)
			return nil
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to YAML config file (default $DATASYNC_CONFIG)")
	root.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "Print results as JSON")

	root.AddCommand(
		c.serveCmd(),
		c.runCmd(),
		c.historyCmd(),
		c.sourcesCmd(),
		c.hashPasswordCmd(),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Skip config loading
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "datasync %s\n", version)
		},
	}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the admin API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			c.logger.Info("datasync starting", "version", version)

			e, err := newEngine(ctx, c.cfg, c.logger, true)
			if err != nil {
				return err
			}
			defer e.Close()

			authService := services.NewAuthService(c.cfg.Auth.Principals, auth.NewAdapter(c.cfg.Auth.JWTSecret), c.cfg.Auth.TokenTTL)
			if len(c.cfg.Auth.Principals) == 0 {
				c.logger.Warn("no principals configured, authenticated endpoints are unreachable")
			}

			var redisPinger httpapi.Pinger
			if e.redisClient != nil {
				redisPinger = e.lock
			}

			server := httpapi.NewServer(
				httpapi.Config{
					Host:    c.cfg.Server.Host,
					Port:    c.cfg.Server.Port,
					Version: version,
					Logger:  c.logger,
				},
				authService,
				e.orchestrator,
				e.registry,
				e.db,
				redisPinger,
				e.metricsHandler,
			)
			return server.Start(ctx)
		},
	}
}

func (c *cli) runCmd() *cobra.Command {
	var (
		mode     string
		retry    bool
		attempts int
		delay    time.Duration
		enable   bool
	)

	cmd := &cobra.Command{
		Use:       "run <source>",
		Short:     "Run one sync for a source",
		Args:      cobra.ExactArgs(1),
		ValidArgs: sourceNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := domain.ParseSourceType(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			e, err := newEngine(ctx, c.cfg, c.logger, false)
			if err != nil {
				return err
			}
			defer e.Close()

			if enable {
				e.registry.Enable(source)
			}

			syncMode, err := resolveMode(e.registry, source, mode)
			if err != nil {
				return err
			}

			var outcome *domain.SyncOutcome
			if retry {
				outcome = e.orchestrator.Retry(ctx, source, syncMode, nil, attempts, delay)
			} else {
				outcome = e.orchestrator.Run(ctx, source, syncMode, nil)
			}

			if err := c.printOutcome(source, syncMode, outcome); err != nil {
				return err
			}
			if !outcome.OK {
				return errSyncFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Sync mode: full or incremental (default: the source's configured mode)")
	cmd.Flags().BoolVar(&retry, "retry", false, "Retry failed attempts with exponential backoff")
	cmd.Flags().IntVar(&attempts, "attempts", 0, "Maximum attempts with --retry (default: the source's retry_attempts)")
	cmd.Flags().DurationVar(&delay, "delay", -1, "Base retry delay with --retry (default: the source's retry_delay)")
	cmd.Flags().BoolVar(&enable, "enable", false, "Enable the source for this invocation")
	return cmd
}

func (c *cli) historyCmd() *cobra.Command {
	var (
		source string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent sync runs, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter *domain.SourceType
			if source != "" {
				st, err := domain.ParseSourceType(source)
				if err != nil {
					return err
				}
				filter = &st
			}

			e, err := newEngine(cmd.Context(), c.cfg, c.logger, false)
			if err != nil {
				return err
			}
			defer e.Close()

			records := e.orchestrator.History(cmd.Context(), filter, limit)
			if c.jsonOutput {
				return c.printJSON(records)
			}
			return printHistory(c.out, records)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Only show runs of this source")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs")
	return cmd
}

func (c *cli) sourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List source configurations and their next scheduled run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := newRegistry(c.cfg, c.logger)
			if err != nil {
				return err
			}
			configs := registry.List()
			if c.jsonOutput {
				return c.printJSON(configs)
			}
			return printSources(c.out, registry, configs, time.Now())
		},
	}
}

func (c *cli) hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "hash-password",
		Short:             "Read a password from stdin and print its bcrypt hash for the principals list",
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password := strings.TrimRight(line, "\r\n")
			if password == "" {
				return fmt.Errorf("%w: empty password", domain.ErrInvalidInput)
			}
			// The secret only matters for tokens, not hashes
			hash, err := auth.NewAdapter("").HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

type configLookup interface {
	Get(source domain.SourceType) (domain.SyncConfig, bool)
}

// resolveMode parses an explicit mode or falls back to the source's configured one
func resolveMode(registry configLookup, source domain.SourceType, mode string) (domain.SyncMode, error) {
	if mode != "" {
		return domain.ParseSyncMode(mode)
	}
	if cfg, ok := registry.Get(source); ok {
		return cfg.Mode, nil
	}
	return domain.SyncModeIncremental, nil
}

func sourceNames() []string {
	all := domain.AllSourceTypes()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = string(s)
	}
	return names
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) printOutcome(source domain.SourceType, mode domain.SyncMode, outcome *domain.SyncOutcome) error {
	if c.jsonOutput {
		return c.printJSON(outcome)
	}
	fmt.Fprintf(c.out, "%s (%s): %s", source, mode, outcome.Status)
	if outcome.Kind != "" {
		fmt.Fprintf(c.out, " [%s]", outcome.Kind)
	}
	fmt.Fprintf(c.out, "  inserted=%d updated=%d deleted=%d\n", outcome.Inserted, outcome.Updated, outcome.Deleted)
	if outcome.Error != "" {
		fmt.Fprintf(c.out, "error: %s\n", outcome.Error)
	}
	return nil
}

func printHistory(out io.Writer, records []*domain.AuditRecord) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSOURCE\tMODE\tSTATUS\tINSERTED\tUPDATED\tDELETED\tERROR")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.Timestamp.Format(time.RFC3339), r.Source, r.Mode, r.Status,
			r.Inserted, r.Updated, r.Deleted, truncate(r.ErrorMessage, 60))
	}
	return tw.Flush()
}

type nextRunner interface {
	NextRun(source domain.SourceType, after time.Time) (time.Time, error)
}

func printSources(out io.Writer, registry nextRunner, configs []domain.SyncConfig, now time.Time) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tENABLED\tMODE\tSCHEDULE\tRETRIES\tDELAY\tNEXT RUN")
	for _, cfg := range configs {
		next := "-"
		if cfg.Enabled {
			if t, err := registry.NextRun(cfg.Source, now); err == nil {
				next = t.Format(time.RFC3339)
			}
		}
		fmt.Fprintf(tw, "%s\t%t\t%s\t%s\t%d\t%s\t%s\n",
			cfg.Source, cfg.Enabled, cfg.Mode, cfg.Schedule, cfg.RetryAttempts, cfg.RetryDelay, next)
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
