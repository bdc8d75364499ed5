package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"taskdeck/internal/api"
	"taskdeck/internal/config"
	"taskdeck/internal/conversation"
	"taskdeck/internal/i18n"
	"taskdeck/internal/logging"
	"taskdeck/internal/session"
	"taskdeck/internal/storage"
	"taskdeck/internal/task"
	"taskdeck/internal/tui"
)

func main() {
	var (
		configPath string
		serverURL  string
	)
	flag.StringVar(&configPath, "config", "", "Path to config JSON/JSONC")
	flag.StringVar(&serverURL, "server", "", "API server base URL override")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	if v := strings.TrimSpace(serverURL); v != "" {
		cfg.Server.BaseURL = strings.TrimRight(v, "/")
	}

	i18n.Init(cfg.UI.Locale)

	if err := os.MkdirAll(cfg.Storage.BaseDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "init storage dir failed: %v\n", err)
		os.Exit(1)
	}

	// TUI 独占终端，日志写入文件 / The TUI owns the terminal; logs go to a file
	logger, closeLog, err := logging.NewFileLogger(filepath.Join(cfg.Storage.BaseDir, "logs", "taskdeck.log"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx := context.Background()

	tokenStorage, err := session.NewFileTokenStorage(filepath.Join(cfg.Storage.BaseDir, "token"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "init token storage failed: %v\n", err)
		os.Exit(1)
	}
	sessStore := session.NewStore(tokenStorage, logger)
	if err := sessStore.Hydrate(ctx); err != nil {
		logger.Warn(ctx, "session hydrate failed", "err", err)
	}

	client := api.NewClient(cfg.Server, sessStore, logger)
	client.SetUnauthorizedHook(func() {
		logger.Warn(ctx, "session expired, token cleared")
	})
	sessMgr := session.NewManager(sessStore, client)

	store, err := storage.NewSQLiteStore(filepath.Join(cfg.Storage.BaseDir, "conversations.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "init conversation store failed: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	// 旧版 JSON 会话导入，一次性 / One-shot import of the legacy JSON collection
	legacyPath := filepath.Join(cfg.Storage.BaseDir, "conversations.json")
	if migrated, err := storage.MigrateFromJSON(legacyPath, store); err != nil {
		logger.Warn(ctx, "legacy conversation import failed", "err", err)
	} else if migrated > 0 {
		logger.Info(ctx, "imported legacy conversations", "count", migrated)
	}

	controller := task.NewController(client, logger)
	conv := conversation.NewManager(store, client, sessStore, cfg.Retention.MaxConversations, logger)

	logger.Info(ctx, "starting", "server", cfg.Server.BaseURL, "authenticated", sessStore.Authenticated())
	if err := tui.Run(sessStore, sessMgr, controller, conv, cfg.Server.BaseURL, logger); err != nil {
		fmt.Fprintf(os.Stderr, "tui failed: %v\n", err)
		os.Exit(1)
	}
}
