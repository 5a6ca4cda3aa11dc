package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nishant/lectern/internal/app"
	"github.com/nishant/lectern/internal/llm"
	"github.com/nishant/lectern/internal/store"
)

// runApp opens the store, builds the provider, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	provider, err := llm.NewProviderFromEnv(ctx, st.EventRepo())
	if err != nil {
		return fmt.Errorf("configure AI provider: %w\n\nSet GEMINI_API_KEY, OPENAI_API_KEY, or ANTHROPIC_API_KEY (or the LECTERN_* equivalents)", err)
	}

	return app.New(provider, st).Run()
}
