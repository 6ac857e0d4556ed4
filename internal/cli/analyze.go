package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tbcolby/settlement-game/internal/equity"
	"github.com/tbcolby/settlement-game/internal/legaltext"
	"github.com/tbcolby/settlement-game/internal/model"
	"github.com/tbcolby/settlement-game/internal/support"
)

func newAnalyzeCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "analyze <state.json>",
		Short: "Analyze the equity of a settlement state",
		Long:  "analyze reads a settlement state (use - for stdin) and prints the property division, Wisconsin compliance findings and suggestions.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var state model.SettlementState
			if err := decodeFile(cmd, args[0], &state); err != nil {
				return err
			}
			analysis := equity.Analyze(state)
			if asJSON {
				return writeJSON(cmd, model.AnalyzeResponse{
					Analysis:     analysis,
					ObligationsA: equity.MonthlyObligations(state.PartyA),
					ObligationsB: equity.MonthlyObligations(state.PartyB),
					Summary:      equity.Summary(state, analysis),
				})
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), equity.Summary(state, analysis))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the analysis as JSON")
	return cmd
}

type childSupportOptions struct {
	payor     float64
	payee     float64
	children  int
	placement float64
	health    float64
	childcare float64
	asJSON    bool
}

func newChildSupportCmd() *cobra.Command {
	var opts childSupportOptions
	cmd := &cobra.Command{
		Use:   "child-support",
		Short: "Compute Wisconsin guideline child support",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.payor < 0 || opts.payee < 0 || opts.children < 0 || opts.placement < 0 || opts.placement > 100 {
				return errors.New("incomes and children must be non-negative and placement between 0 and 100")
			}
			calc := support.Calculate(opts.payor, opts.payee, opts.children, opts.placement,
				support.WithHealthInsurance(opts.health),
				support.WithChildcare(opts.childcare))
			if opts.asJSON {
				return writeJSON(cmd, calc)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Guideline: %s%% of %s = %s\n",
				legaltext.Amount(calc.GuidelinePercentage*100), legaltext.Dollars(calc.PayorIncome), legaltext.Dollars(calc.GuidelineAmount))
			fmt.Fprintf(out, "Shared placement credit: %s\n", legaltext.Dollars(calc.SharedPlacementCredit))
			fmt.Fprintf(out, "Payor share of add-ons: %s\n", legaltext.Dollars(calc.PayorAddOnShare))
			_, err := fmt.Fprintf(out, "Child support: %s\n", legaltext.Dollars(calc.FinalAmount))
			return err
		},
	}
	cmd.Flags().Float64Var(&opts.payor, "payor", 0, "payor gross income")
	cmd.Flags().Float64Var(&opts.payee, "payee", 0, "payee gross income")
	cmd.Flags().IntVar(&opts.children, "children", 1, "number of children")
	cmd.Flags().Float64Var(&opts.placement, "placement", 0, "payor placement percentage")
	cmd.Flags().Float64Var(&opts.health, "health-insurance", 0, "monthly health insurance cost")
	cmd.Flags().Float64Var(&opts.childcare, "childcare", 0, "monthly childcare cost")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the calculation as JSON")
	_ = cmd.MarkFlagRequired("payor")
	return cmd
}
