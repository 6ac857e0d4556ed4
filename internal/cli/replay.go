package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tbcolby/settlement-game/internal/document"
	"github.com/tbcolby/settlement-game/internal/engine"
	"github.com/tbcolby/settlement-game/internal/model"
	"github.com/tbcolby/settlement-game/internal/negotiation"
)

func newReplayCmd() *cobra.Command {
	var asJSON bool
	var format string
	cmd := &cobra.Command{
		Use:   "replay <script.json>",
		Short: "Replay a scripted negotiation",
		Long:  "replay creates a session from the script setup, applies its actions in order until one is refused and prints the messages. A script that finalizes the session also prints the agreement.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req model.ReplayRequest
			if err := decodeFile(cmd, args[0], &req); err != nil {
				return err
			}
			f, err := document.ParseFormat(format)
			if err != nil {
				return err
			}

			resp := engine.New(negotiation.New(), Version).Process(&req)
			if asJSON {
				return writeJSON(cmd, resp)
			}

			out := cmd.OutOrStdout()
			for _, step := range resp.Result.Actions {
				fmt.Fprintf(out, "turn %d: %s %s %s\n", step.TurnNumber, step.Action.Actor, step.Action.Action, step.Action.CardID)
				for _, i := range step.MessageIndexes {
					m := resp.Result.Messages[i]
					fmt.Fprintf(out, "  [%s] %s\n", m.Level, m.Message.Message)
				}
			}
			end := resp.Result.EndSession
			fmt.Fprintf(out, "outcome: %s (points A %d, B %d)\n", resp.Metadata.Outcome, end.AgreementPointsA, end.AgreementPointsB)

			if resp.Result.Agreement != nil {
				body, err := document.Export(*resp.Result.Agreement, f)
				if err != nil {
					return err
				}
				fmt.Fprintln(out)
				if _, err := fmt.Fprint(out, body); err != nil {
					return err
				}
			}
			if resp.Metadata.Outcome != model.OutcomeSuccess {
				return fmt.Errorf("replay stopped at action %d", len(resp.Result.Actions)-1)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full replay result as JSON")
	cmd.Flags().StringVar(&format, "format", string(document.FormatText), "agreement format: text, markdown, html, markdown-html")
	return cmd
}
