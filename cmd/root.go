package cmd

import (
	"context"
	"fmt"

	"codesight/internal/chat"
	"codesight/internal/config"
	"codesight/internal/db"
	"codesight/internal/logging"
	"codesight/internal/proxy"
	"codesight/internal/ui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "codesight",
	Short: "AI code review assistant for the terminal",
	Long: `CodeSight lets you attach a snippet of code and chat about it with one of
two agents: X.T for deep analysis and Sentinel for quick answers. Optimized
code from the replies can be copied or saved.

Run without arguments to open the chat. Use "codesight serve" to run the
chat proxy that holds the API key.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}
		c, err := config.Load(path)
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid config %s: %w", path, err)
		}
		cfg = c
		return nil
	},
	RunE: runChat,
}

// Execute is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <user config dir>/codesight/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(detectCmd)
}

// chatProxy picks the remote proxy when one is configured, otherwise the
// in-process handler.
func chatProxy(ctx context.Context, log *zap.Logger) (chat.Proxy, error) {
	if cfg.Client.ProxyURL != "" {
		log.Info("using remote proxy", zap.String("url", cfg.Client.ProxyURL))
		return proxy.NewClient(cfg.Client.ProxyURL, cfg.ClientTimeout()), nil
	}
	return newHandler(ctx, cfg, log)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log, err := logging.NewFile(cfg.Logging, verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	dbPath := cfg.Client.DBPath
	if dbPath == "" {
		if dbPath, err = db.DefaultPath(); err != nil {
			return err
		}
	}
	store, err := db.OpenStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := chatProxy(ctx, log)
	if err != nil {
		return err
	}

	bridge := &ui.Bridge{}
	session := chat.NewSession(chat.Deps{
		Store:    store,
		Proxy:    p,
		Sink:     bridge,
		Notifier: bridge,
		Log:      log,
	})
	session.Load(ctx)
	log.Info("chat session started",
		zap.String("db", dbPath),
		zap.String("agent", string(session.Agent())),
		zap.Stringer("state", session.State()))

	m := ui.NewModel(session, log)
	if _, err := ui.NewProgram(&m, bridge).Run(); err != nil {
		return fmt.Errorf("terminal UI: %w", err)
	}
	return nil
}
