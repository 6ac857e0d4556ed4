package cli

import (
	"github.com/spf13/cobra"

	"github.com/tbcolby/settlement-game/internal/document"
	"github.com/tbcolby/settlement-game/internal/model"
)

func newRenderCmd() *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "render <msa.json>",
		Short: "Render a marital settlement agreement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := document.ParseFormat(format)
			if err != nil {
				return err
			}
			var msa model.MaritalSettlementAgreement
			if err := decodeFile(cmd, args[0], &msa); err != nil {
				return err
			}
			body, err := document.Export(msa, f)
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

func newSummaryCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "summary <msa.json>",
		Short: "Render the settlement summary cover sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var msa model.MaritalSettlementAgreement
			if err := decodeFile(cmd, args[0], &msa); err != nil {
				return err
			}
			return writeOutput(cmd, out, document.Summary(msa))
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to file instead of stdout")
	return cmd
}
