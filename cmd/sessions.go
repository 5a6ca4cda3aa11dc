package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nishant/lectern/internal/export"
	"github.com/nishant/lectern/internal/store"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved study sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		sessions, err := st.SessionRepo().List(context.Background())
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Println("No saved sessions.")
			return nil
		}

		fmt.Printf("%-36s  %-19s  %-3s  %s\n", "ID", "Created", "Pin", "Title")
		fmt.Println(strings.Repeat("─", 90))
		for _, s := range sessions {
			pin := ""
			if s.Pinned {
				pin = "★"
			}
			fmt.Printf("%-36s  %-19s  %-3s  %s\n",
				s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04:05"), pin, s.Title)
		}
		return nil
	},
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Print a saved session's study guide as Markdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		rec, err := st.SessionRepo().Get(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		if rec == nil {
			return fmt.Errorf("session %s not found", args[0])
		}

		flashcards, _ := cmd.Flags().GetBool("flashcards")
		if flashcards {
			out, err := export.FlashcardsCSV(&rec.Guide)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		}
		fmt.Print(export.Markdown(&rec.Guide))
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.SessionRepo().Delete(context.Background(), args[0]); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		fmt.Fprintln(os.Stderr, "Deleted", args[0])
		return nil
	},
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

func init() {
	sessionsExportCmd.Flags().Bool("flashcards", false, "Emit flashcards CSV instead of Markdown")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsExportCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}
