// Command pharmacounter runs the pharmacy-counter knowledge catalog: the HTTP
// surface via "serve" and one-shot catalog operations as subcommands.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pharmacounter/internal/blob"
	"pharmacounter/internal/config"
	"pharmacounter/internal/core"
	"pharmacounter/internal/logger"
	"pharmacounter/internal/provider/gemini"
	"pharmacounter/pkg/domain"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, a := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	// pending writes are flushed even when the command failed
	if cerr := a.close(); cerr != nil {
		fmt.Fprintf(stderr, "Error: %v\n", cerr)
		return 1
	}
	if err != nil {
		return 1
	}
	return 0
}

// aiProvider is the union of the collaborator contracts one provider serves.
type aiProvider interface {
	domain.Extractor
	domain.Generator
	domain.Chatter
}

// newProvider builds the AI collaborator. Tests replace it.
var newProvider = func(ctx context.Context, cfg *config.Config, log *logger.Logger) (aiProvider, error) {
	timeout, err := cfg.AITimeout()
	if err != nil {
		return nil, err
	}
	return gemini.New(ctx, gemini.Config{APIKey: cfg.AI.APIKey, Model: cfg.AI.Model, Timeout: timeout}, log)
}

// app holds what every subcommand shares. The catalog is opened lazily so
// that serve can attach its metrics registry first.
type app struct {
	configPath string
	debug      bool
	trace      bool

	cfg     *config.Config
	log     *logger.Logger
	store   blob.Store
	kv      *blob.KV
	catalog *core.Catalog
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:          "pharmacounter",
		Short:        "Pharmacy-counter knowledge catalog",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "pharmacounter.yaml", "configuration file (YAML)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "debug logging")
	root.PersistentFlags().BoolVar(&a.trace, "trace", false, "write operation spans as JSON lines to stderr")

	root.AddCommand(
		newServeCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newSymptomsCmd(a),
		newStatsCmd(a),
		newDeleteCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newAssistCmd(a),
		newChatCmd(a),
		newSettingsCmd(a),
		newTipCmd(a),
		newStorageCmd(a),
	)
	return root, a
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	level := cfg.Logging.Level
	if a.debug {
		level = "debug"
	}
	log, err := logger.New(cfg.Logging.Mode, level)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg, a.log = cfg, log
	return nil
}

// open connects storage and the AI provider and restores the catalog.
func (a *app) open(cmd *cobra.Command, opts ...core.Option) (*core.Catalog, error) {
	if a.catalog != nil {
		return a.catalog, nil
	}
	ctx := cmd.Context()
	kv, err := a.openKV(cmd)
	if err != nil {
		return nil, err
	}

	deps := core.Dependencies{Persistence: kv}
	if interval, err := a.cfg.ReminderInterval(); err == nil {
		deps.ReminderInterval = interval
	}
	if a.cfg.AI.APIKey != "" {
		provider, err := newProvider(ctx, a.cfg, a.log)
		if err != nil {
			return nil, err
		}
		deps.Extractor, deps.Generator, deps.Chatter = provider, provider, provider
	} else {
		a.log.Warn("no AI api key configured; pre-fill, assist and chat are unavailable")
	}

	opts = append([]core.Option{core.WithLogger(a.log)}, opts...)
	if a.trace {
		opts = append(opts, core.WithTracer(core.NewJSONTracer(cmd.ErrOrStderr())))
	}
	a.catalog = core.NewCatalog(deps, opts...)
	source := a.catalog.Open(ctx)
	a.log.Debug("catalog opened", "driver", a.store.Driver(), "source", source)
	return a.catalog, nil
}

// openKV connects the configured storage driver without loading the catalog.
func (a *app) openKV(cmd *cobra.Command) (*blob.KV, error) {
	if a.kv != nil {
		return a.kv, nil
	}
	store, err := blob.Open(cmd.Context(), a.cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", a.cfg.Storage.Driver, err)
	}
	a.store = store
	a.kv = blob.NewKV(store, a.cfg.Storage.Prefix)
	return a.kv, nil
}

func (a *app) close() error {
	var errs []error
	if a.catalog != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		errs = append(errs, a.catalog.Close(ctx))
		cancel()
	}
	if a.store != nil {
		errs = append(errs, blob.Close(a.store))
	}
	if a.log != nil {
		a.log.Sync()
	}
	a.catalog, a.store, a.kv = nil, nil, nil
	return errors.Join(errs...)
}
