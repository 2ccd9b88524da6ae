package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"mediaforge/cache"
	"mediaforge/config"
	"mediaforge/core/orchestrator"
	"mediaforge/core/providers"
	"mediaforge/core/registry"
	"mediaforge/db"
	"mediaforge/logger"
	"mediaforge/model"
	"mediaforge/repository"
	"mediaforge/storage"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "mediaforge",
	Short: "mediaforge generates music, video and images via AI providers",
	Long: `mediaforge is a command line tool for AI media generation.
It submits prompts to music, video and image providers, tracks every
generation as a job and can re-check jobs that were still running when
the command exited.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger.InitLogger(logger.Config{
			Level:      logger.LogLevel(cfg.LogLevel),
			OutputPath: cfg.LogFile,
		})
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles everything a command needs. Built per invocation and
// closed when the command returns.
type app struct {
	registry *registry.Registry
	repo     repository.JobRepository
	orch     *orchestrator.Orchestrator

	gdb   *gorm.DB
	cache *cache.StatusCache
}

// newApp wires the registry, the job store and the optional cache and
// artifact mirror.
func newApp() (*app, error) {
	gdb, err := db.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(gdb, &model.Job{}); err != nil {
		db.Close(gdb)
		return nil, err
	}

	statusCache, err := cache.Connect(cfg)
	if err != nil {
		// The cache is an optimisation; a dead redis must not block
		// generation.
		logger.Warn("redis unavailable, continuing without cache", logger.ErrorField(err))
		statusCache = nil
	}

	store, err := storage.Connect(cfg)
	if err != nil {
		logger.Warn("minio unavailable, continuing without artifact mirror", logger.ErrorField(err))
		store = nil
	}

	reg := providers.Build(cfg)
	repo := repository.NewGormJobRepository(gdb)

	return &app{
		registry: reg,
		repo:     repo,
		orch:     orchestrator.New(reg, repo, statusCache, store, cfg.OutputDir),
		gdb:      gdb,
		cache:    statusCache,
	}, nil
}

func (a *app) Close() {
	_ = a.cache.Close()
	_ = db.Close(a.gdb)
}

// commandString rebuilds the invocation for the job audit trail.
// Arguments with whitespace are quoted so the line can be replayed.
func commandString() string {
	parts := make([]string, 0, len(os.Args))
	for _, arg := range os.Args {
		if strings.ContainsAny(arg, " \t\"'") {
			arg = fmt.Sprintf("%q", arg)
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}
