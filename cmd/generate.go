package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nishant/lectern/internal/chat"
	"github.com/nishant/lectern/internal/export"
	"github.com/nishant/lectern/internal/guide"
	"github.com/nishant/lectern/internal/llm"
	"github.com/nishant/lectern/internal/store"
)

// generateCmd is the one-shot path: notes file in, Markdown guide out,
// session saved alongside the interactive flow's sessions.
var generateCmd = &cobra.Command{
	Use:   "generate <notes-file>",
	Short: "Generate a study guide from a notes file and print it as Markdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		notes, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read notes: %w", err)
		}
		if strings.TrimSpace(string(notes)) == "" {
			return fmt.Errorf("notes file %s is empty", args[0])
		}

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
			return fmt.Errorf("configure AI provider: %w", err)
		}

		sourceName := filepath.Base(args[0])
		g, err := guide.NewService(provider, guide.DefaultConfig()).Generate(ctx, string(notes), sourceName)
		if err != nil {
			return fmt.Errorf("generate study guide: %w", err)
		}

		rec := &store.SessionRecord{
			ID:         uuid.NewString(),
			CreatedAt:  time.Now(),
			SourceName: sourceName,
			Title:      g.Title,
			Notes:      string(notes),
			Guide:      *g,
			Chat:       []chat.Turn{},
		}
		if err := st.SessionRepo().Save(ctx, rec); err != nil {
			fmt.Fprintln(os.Stderr, "warning: could not save session:", err)
		}

		fmt.Print(export.Markdown(g))
		return nil
	},
}
