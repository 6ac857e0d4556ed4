// Package cli implements the settlement command line.
package cli

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// Version is reported by the version command and stamped on generated
// documents when no other version is configured.
var Version = "1.0.0"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "settlement",
		Short:         "Wisconsin divorce settlement negotiation engine",
		Long:          "settlement runs the negotiation API, analyzes property division equity, computes guideline child support and renders marital settlement agreements.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().String("data-dir", "", "session data directory (default $SETTLEMENT_DATA_DIR or ./data)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(),
		newAnalyzeCmd(),
		newChildSupportCmd(),
		newRenderCmd(),
		newSummaryCmd(),
		newCardsCmd(),
		newSessionCmd(),
		newReplayCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), Version)
			return err
		},
	}
}

// readInput reads the named file, or stdin when name is "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

func decodeFile(cmd *cobra.Command, name string, v any) error {
	data, err := readInput(cmd, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

// writeOutput writes body to the --out file when set, otherwise to stdout.
func writeOutput(cmd *cobra.Command, out, body string) error {
	if out == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), body)
		return err
	}
	if err := os.WriteFile(out, []byte(body), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}
