package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"pinguard/internal/mpin"
)

// Exit codes for check, so scripts can branch without parsing output.
const (
	exitStrong  = 0
	exitWeak    = 2
	exitInvalid = 3
)

// exitError carries a non-zero exit code for a verdict that is not a failure
// of the command itself.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

type checkOutput struct {
	MPINLength   int      `json:"mpin_length"`
	Strength     string   `json:"strength"`
	Reasons      []string `json:"reasons"`
	Descriptions []string `json:"descriptions"`
}

func buildRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "mpinctl",
		Short: "Check MPIN strength against common and date-derived patterns",
		Long: strings.TrimSpace(`mpinctl classifies a 4 or 6 digit MPIN as STRONG, WEAK or INVALID.

A PIN is WEAK when it is commonly used or can be derived from the holder's
date of birth, the spouse's date of birth, or the wedding anniversary.`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(newCheckCommand())
	root.AddCommand(newReasonsCommand())
	root.AddCommand(newPatternsCommand())
	return root
}

func newCheckCommand() *cobra.Command {
	var (
		dates  mpin.Dates
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "check <mpin>",
		Short: "Evaluate a single MPIN",
		Long:  "Evaluate a single MPIN. Exits 0 when STRONG, 2 when WEAK and 3 when INVALID.",
		Example: strings.Join([]string{
			"  mpinctl check 7391",
			"  mpinctl check 0201 --dob 1998-01-02",
			"  mpinctl check 020198 --dob 1998-01-02 --spouse-dob 1999-05-06 --json",
		}, "\n"),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := mpin.Evaluate(args[0], dates)
			if err := writeCheck(cmd.OutOrStdout(), args[0], result, asJSON); err != nil {
				return err
			}
			return verdictExit(result.Verdict)
		},
	}

	cmd.Flags().StringVar(&dates.Self, "dob", "", "Holder's date of birth (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dates.Spouse, "spouse-dob", "", "Spouse's date of birth (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dates.Anniversary, "anniversary", "", "Wedding anniversary (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}

func newReasonsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "reasons [reason]",
		Short:   "List weakness reasons and their descriptions",
		Example: "  mpinctl reasons\n  mpinctl reasons DEMOGRAPHIC_DOB_SELF",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				reason, err := mpin.ParseReason(args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, reason.Description())
				return err
			}
			for _, reason := range mpin.AllReasons() {
				if _, err := fmt.Fprintf(out, "%-30s %s\n", reason, reason.Description()); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newPatternsCommand() *cobra.Command {
	var length int

	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Print the commonly used MPINs of a given length",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			patterns := mpin.CommonPatterns(length)
			if patterns == nil {
				return fmt.Errorf("unsupported length %d: must be 4 or 6", length)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(patterns, "\n"))
			return err
		},
	}
	cmd.Flags().IntVarP(&length, "length", "l", 4, "PIN length (4 or 6)")

	return cmd
}

func writeCheck(w io.Writer, pin string, result mpin.Result, asJSON bool) error {
	reasons := make([]string, 0, len(result.Reasons))
	for _, r := range result.Reasons {
		reasons = append(reasons, r.String())
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(checkOutput{
			MPINLength:   len(pin),
			Strength:     result.Verdict.String(),
			Reasons:      reasons,
			Descriptions: result.Descriptions(),
		})
	}

	if _, err := fmt.Fprintln(w, result.Verdict); err != nil {
		return err
	}
	for i, desc := range result.Descriptions() {
		if _, err := fmt.Fprintf(w, "  %s: %s\n", reasons[i], desc); err != nil {
			return err
		}
	}
	return nil
}

func verdictExit(v mpin.Verdict) error {
	switch v {
	case mpin.VerdictWeak:
		return &exitError{code: exitWeak}
	case mpin.VerdictInvalid:
		return &exitError{code: exitInvalid}
	default:
		return nil
	}
}
