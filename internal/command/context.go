package command

import (
	"database/sql"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adamavenir/auradm/internal/api"
	"github.com/adamavenir/auradm/internal/config"
	"github.com/adamavenir/auradm/internal/logging"
	"github.com/adamavenir/auradm/internal/metrics"
	"github.com/adamavenir/auradm/internal/reconcile"
	"github.com/adamavenir/auradm/internal/store"
)

// CommandContext provides shared command resources.
type CommandContext struct {
	Config     config.Config
	ConfigPath string
	JSONMode   bool
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
	Tokens     api.TokenSource
	Client     *api.Client
	Account    string
	DB         *sql.DB
	Controller *reconcile.Controller

	closers []io.Closer
}

// loadConfig resolves the config file path and settings from the global
// flags.
func loadConfig(cmd *cobra.Command) (config.Config, string, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		var err error
		if path, err = config.Path(); err != nil {
			return config.Config{}, "", err
		}
	}
	baseURL, _ := cmd.Flags().GetString("base-url")
	token, _ := cmd.Flags().GetString("token")
	logFile, _ := cmd.Flags().GetString("log-file")

	cfg, err := config.Load(config.Options{
		Path: path,
		Overrides: config.Overrides{
			BaseURL: baseURL,
			Token:   token,
			LogFile: logFile,
		},
	})
	if err != nil {
		return config.Config{}, "", err
	}
	return cfg, path, nil
}

// GetContext builds the API client, state store and controller for a
// command. Callers must Close it.
func GetContext(cmd *cobra.Command) (*CommandContext, error) {
	jsonMode, _ := cmd.Flags().GetBool("json")
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Mode, cfg.Log.File)
	if err != nil {
		return nil, err
	}
	ctx := &CommandContext{
		Config:     cfg,
		ConfigPath: path,
		JSONMode:   jsonMode,
		Logger:     logger,
		Metrics:    metrics.New(),
	}

	tokens, err := ctx.tokenSource()
	if err != nil {
		ctx.Close()
		return nil, err
	}
	ctx.Tokens = tokens

	client, err := api.NewClient(cfg.Server.BaseURL, tokens,
		api.WithTimeout(cfg.Server.Timeout.Duration),
		api.WithLogger(logger),
		api.WithObserver(ctx.Metrics.ObserveRequest),
	)
	if err != nil {
		ctx.Close()
		return nil, err
	}
	ctx.Client = client

	ctx.Account = ctx.CurrentAccount()

	dbPath, err := store.DefaultPath()
	if err != nil {
		ctx.Close()
		return nil, err
	}
	db, err := store.Open(dbPath)
	if err != nil {
		ctx.Close()
		return nil, err
	}
	ctx.DB = db
	ctx.closers = append(ctx.closers, db)

	ctx.Controller = reconcile.New(client, store.NewAccountSelection(db, ctx.CurrentAccount),
		reconcile.WithLogger(logger),
		reconcile.WithRecorder(ctx.Metrics),
	)
	if !client.Authenticated() {
		ctx.Controller.MarkUnauthenticated()
	}
	return ctx, nil
}

// CurrentAccount is the configured account, else the one named by the
// token currently loaded. A reloaded token file changes it.
func (c *CommandContext) CurrentAccount() string {
	if c.Config.Auth.Account != "" {
		return c.Config.Auth.Account
	}
	if c.Tokens == nil {
		return ""
	}
	return api.AccountFromToken(c.Tokens.Token())
}

func (c *CommandContext) tokenSource() (api.TokenSource, error) {
	if c.Config.Auth.Token != "" || c.Config.Auth.TokenFile == "" {
		return api.StaticToken(c.Config.Auth.Token), nil
	}
	file, err := api.NewFileToken(expandHome(c.Config.Auth.TokenFile), c.Logger)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, file)
	return file, nil
}

// Close releases the store, token watcher and logger.
func (c *CommandContext) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i].Close()
	}
	c.closers = nil
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}

func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
