package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"duopane/internal/config"
	"duopane/internal/log"
	"duopane/internal/metrics"
	"duopane/internal/transaction"
	"duopane/internal/tui/styles"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// app carries the state shared by the root command and its subcommands.
type app struct {
	cfgFile     string
	logFile     string
	debug       bool
	metricsAddr string

	cfg     *config.Config
	metrics *metrics.Collector
	server  *http.Server
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "duopane [left] [right]",
		Short: "A dual-pane terminal file manager",
		Long: `duopane shows two directories side by side. Check entries in one pane,
cut or copy them, pick a directory in the other pane and paste.

Every change is a transaction that can be undone from the history.`,
		Version:           version,
		Args:              cobra.MaximumNArgs(2),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.teardown,
		RunE:              a.runTUI,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.config/duopane/config.yaml)")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	rootCmd.Flags().StringVar(&a.logFile, "log-file", "", "log file used while the interface runs (default is $HOME/.local/state/duopane/duopane.log)")

	rootCmd.AddCommand(newCopyCmd(a))
	rootCmd.AddCommand(newMoveCmd(a))
	rootCmd.AddCommand(newRemoveCmd(a))
	rootCmd.AddCommand(newChmodCmd(a))
	rootCmd.AddCommand(newMkdirCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))

	return rootCmd
}

func (a *app) configPath() (string, error) {
	if a.cfgFile != "" {
		return a.cfgFile, nil
	}
	return config.DefaultPath()
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	log.SetDebug(a.debug)

	path, err := a.configPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadConfigFile(path)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), errorText(fmt.Sprintf("Warning: %v", err)))
		fmt.Fprintln(cmd.ErrOrStderr(), infoText("Using default settings. Run 'duopane config init' to write a fresh config."))
		cfg = config.New()
	}
	a.cfg = cfg

	styles.Apply(styles.Palette{
		Primary:  cfg.Theme.Primary,
		Success:  cfg.Theme.Success,
		Warning:  cfg.Theme.Warning,
		Error:    cfg.Theme.Error,
		Info:     cfg.Theme.Info,
		Emphasis: cfg.Theme.Emphasis,
		Border:   cfg.Theme.Border,
	})

	a.metrics = metrics.New(prometheus.NewRegistry())
	if a.metricsAddr != "" {
		a.serveMetrics()
	}
	return nil
}

func (a *app) serveMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	a.server = &http.Server{
		Addr:              a.metricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.LogWithFields(log.F("addr", a.metricsAddr)).Info("serving metrics")
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogError(err, "metrics server stopped")
		}
	}()
}

func (a *app) teardown(cmd *cobra.Command, args []string) {
	if a.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		log.LogError(err, "metrics server shutdown")
	}
}

// txOptions are applied to every transaction the process runs.
func (a *app) txOptions() []transaction.Option {
	return []transaction.Option{
		transaction.WithObserver(a.metrics),
		transaction.WithPollInterval(a.cfg.PollInterval()),
	}
}

func defaultLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "duopane", "duopane.log"), nil
}
