package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fsmkit/pkg/document"
	"github.com/matzehuels/fsmkit/pkg/errors"
)

// minimizeCommand creates the minimize command: DFA document in, minimal
// DFA document out.
func (c *CLI) minimizeCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "minimize [dfa.json]",
		Short: "Reduce a DFA document to its minimal equivalent",
		Long: `Reduce a DFA document to the minimal DFA recognizing the same language.

States are grouped by finality and then split until no group contains two
states that disagree on any symbol; each surviving group becomes one state
of the output.

The input must be deterministic: a state with two targets for one symbol,
or any epsilon transition, is rejected. Use "fsmkit convert --minimize"
to go from an NFA straight to the minimal DFA.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMinimize(cmd, args[0], output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.min.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runMinimize(cmd *cobra.Command, input, output string, noCache bool) error {
	ctx := cmd.Context()

	if output != "" {
		if err := errors.ValidateOutputPath(output); err != nil {
			return err
		}
	}

	dfa, err := document.ReadDFAFile(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	min, err := runner.MinimizeDFA(ctx, dfa)
	if err != nil {
		return err
	}

	if output == "" {
		output = derivedPath(input, ".min.json")
	}
	if err := document.WriteDFAFile(min, output); err != nil {
		return err
	}

	printSuccess("Minimized %s (%d states → %d states)", input, len(dfa.States()), len(min.States()))
	printFile(output)
	return nil
}
