package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-librarian/internal/agent"
	"github.com/kozaktomas/photo-librarian/internal/config"
	"github.com/kozaktomas/photo-librarian/internal/search"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Search the library conversationally",
	Long: `Start an interactive chat session. The assistant searches the photo
library on your behalf when you describe what you are looking for.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer func() { _ = log.Sync() }()

	cfg := config.Load()
	pool, records, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx, cancel := signalContext()
	defer cancel()

	embedder, err := newTextEmbedder(cfg)
	if err != nil {
		return err
	}
	engine := search.New(records, newClipClient(cfg), embedder, nil, nil, log)

	assistant := agent.New(
		cfg.OpenAI.Token,
		cfg.OpenAI.BaseURL,
		cfg.Models.OpenAI.Chat,
		engine,
		cfg.Search.MinSimilarity,
		cfg.Search.Limit,
		log,
	)
	return assistant.Run(ctx, os.Stdin, os.Stdout)
}
