package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/ckdrisk/internal/config"
	"github.com/abhisek/ckdrisk/internal/inference"
	"github.com/abhisek/ckdrisk/internal/logging"
	"github.com/abhisek/ckdrisk/internal/model"
	"github.com/abhisek/ckdrisk/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "ckdrisk",
	Short: "Chronic kidney disease risk assessment",
	Long: "ckdrisk collects patient measurements, runs them through a trained classifier and\n" +
		"reports whether the patient is at high or low risk of chronic kidney disease.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to config file (overrides CKDRISK_CONFIG env var)")
	pf.String("model", "", "Path to model artifact (overrides CKDRISK_MODEL env var)")
	pf.String("schema", "", "Require this feature schema version")
	pf.String("db", "", "Path to SQLite event database (overrides CKDRISK_DB env var)")
	pf.String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(modelCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and environment, then applies flags.
// Flags win over everything else.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	explicit := path != ""
	if !explicit {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path, explicit)
	if err != nil {
		return cfg, err
	}

	if v, _ := cmd.Flags().GetString("model"); v != "" {
		cfg.ModelPath = v
	}
	if v, _ := cmd.Flags().GetString("schema"); v != "" {
		cfg.Schema = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	return cfg, cfg.Validate()
}

// resolveDBPath returns the configured database path, falling back to
// CKDRISK_DB and then the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// runtime holds what a command needs to make predictions.
type runtime struct {
	cfg     config.Config
	log     *zap.Logger
	store   *store.Store // nil when the event database could not be opened
	cache   *model.Cache
	invoker *inference.Invoker
}

// newRuntime loads config and wires logger, event store, model cache and
// invoker. quiet discards log output unless a log file is configured, so
// logs do not draw over the terminal UI.
func newRuntime(cmd *cobra.Command, quiet bool) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log := zap.NewNop()
	if !quiet || cfg.Log.File != "" {
		log, err = logging.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
		if err != nil {
			return nil, &config.Error{Source: "log", Err: err}
		}
	}

	rt := &runtime{cfg: cfg, log: log}

	cacheOpts := []model.CacheOption{model.WithLogger(log)}
	if st, err := openStore(cfg); err != nil {
		// Predictions work without the event log.
		log.Warn("event store unavailable", zap.Error(err))
	} else {
		rt.store = st
		cacheOpts = append(cacheOpts, model.WithEventRepo(st.EventRepo()))
	}

	rt.cache = model.NewCache(cfg.ModelPath, cacheOpts...)
	rt.invoker = inference.New(rt.cache, inference.WithSchema(cfg.Schema), inference.WithLogger(log))
	return rt, nil
}

func openStore(cfg config.Config) (*store.Store, error) {
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

func (rt *runtime) eventRepo() store.EventRepo {
	if rt.store == nil {
		return nil
	}
	return rt.store.EventRepo()
}

func (rt *runtime) Close() {
	if rt.store != nil {
		_ = rt.store.Close()
	}
	_ = rt.log.Sync()
}

// reportedError carries the user-facing message for a request error while
// keeping the cause for errors.Is/As.
type reportedError struct {
	msg string
	err error
}

func (e *reportedError) Error() string { return e.msg }
func (e *reportedError) Unwrap() error { return e.err }

// IsReported reports whether err already carries a user-facing message.
func IsReported(err error) bool {
	var re *reportedError
	return errors.As(err, &re)
}
