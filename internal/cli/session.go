package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tbcolby/settlement-game/internal/document"
	"github.com/tbcolby/settlement-game/internal/logging"
	"github.com/tbcolby/settlement-game/internal/negotiation"
	"github.com/tbcolby/settlement-game/internal/storage"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage stored negotiation sessions",
	}
	cmd.AddCommand(
		newSessionListCmd(),
		newSessionShowCmd(),
		newSessionExportCmd(),
		newSessionImportCmd(),
		newSessionDeleteCmd(),
		newSessionDocumentCmd(),
	)
	return cmd
}

// openStore opens the session store named by configuration and flags.
func openStore(cmd *cobra.Command) (*storage.Store, *zap.Logger, string, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, "", err
	}
	log, _, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, "", err
	}
	store, err := storage.New(cfg.DataDir, log)
	if err != nil {
		return nil, nil, "", err
	}
	return store, log, cfg.DocumentVersion, nil
}

func newSessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored session ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, log, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ids, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), id); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newSessionShowCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the state of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, log, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			s, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load session %s: %w", args[0], err)
			}
			if asJSON {
				return writeJSON(cmd, s)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Session %s (%s County)\n", s.ID, s.County)
			fmt.Fprintf(out, "Status: %s, turn %d, %s to move\n", s.Status, s.TurnNumber, s.CurrentTurn)
			fmt.Fprintf(out, "%s: %d points\n", s.PartyA.Name, s.AgreementPointsA)
			fmt.Fprintf(out, "%s: %d points\n", s.PartyB.Name, s.AgreementPointsB)
			fmt.Fprintf(out, "Accepted cards: %d\n", len(s.AcceptedCards))
			for _, c := range s.AcceptedCards {
				fmt.Fprintf(out, "  - %s (played by %s)\n", c.CardID, c.PlayedBy)
			}
			if p := s.PendingProposal; p != nil {
				fmt.Fprintf(out, "Pending: %s from %s (%s)\n", p.Card.CardID, p.ProposedBy, p.Status)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full session as JSON")
	return cmd
}

func newSessionExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a session to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, log, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			data, err := store.Export(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("export session %s: %w", args[0], err)
			}
			if out == "" {
				out = storage.ExportFileName(args[0], time.Now())
			}
			if out == "-" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := writeOutput(cmd, out, string(data)); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", args[0], out)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout (default settlement-game-<id>-<millis>.json)")
	return cmd
}

func newSessionImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import an exported session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, log, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			s, err := store.Import(cmd.Context(), data)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported session %s\n", s.ID)
			return err
		},
	}
}

func newSessionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, log, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete session %s: %w", args[0], err)
			}
			return nil
		},
	}
}

// newSessionDocumentCmd renders the agreement accepted so far without
// finalizing the session.
func newSessionDocumentCmd() *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "document <id>",
		Short: "Render the draft agreement of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := document.ParseFormat(format)
			if err != nil {
				return err
			}
			store, log, version, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			s, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load session %s: %w", args[0], err)
			}
			body, err := document.Export(negotiation.New().BuildAgreement(s, version), f)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, body)
		},
	}
	cmd.Flags().StringVar(&format, "format", string(document.FormatText), "output format: text, markdown, html, markdown-html")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to file instead of stdout")
	return cmd
}
