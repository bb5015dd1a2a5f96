package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fsmkit/pkg/document"
	"github.com/matzehuels/fsmkit/pkg/pipeline"
	"github.com/matzehuels/fsmkit/pkg/render"
)

// renderCommand creates the render command: automaton document in, Graphviz
// diagram out.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "render [automaton.json]",
		Short: "Render an automaton document as a Graphviz diagram",
		Long: `Render an automaton document as a Graphviz diagram.

Accepts NFA and DFA documents alike. Final states are drawn as double
circles, the start state gets an arrow from an invisible source node, and
epsilon transitions are labeled ε.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = c.Config.Format
			}
			return c.runRender(cmd, args[0], output, format)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: dot, svg, png (default from config, else svg)")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input, output, format string) error {
	ctx := cmd.Context()

	if err := pipeline.ValidateFormat(format); err != nil {
		return err
	}

	nfa, err := document.ReadNFAFile(input)
	if err != nil {
		return err
	}

	dot := render.ToDOT(nfa)

	var data []byte
	switch format {
	case pipeline.FormatDOT:
		data = []byte(dot)
	case pipeline.FormatSVG:
		data, err = render.RenderSVG(ctx, dot)
	case pipeline.FormatPNG:
		data, err = render.RenderPNG(ctx, dot)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}

	if output == "" {
		output = derivedPath(input, "."+format)
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Rendered %s", input)
	printStats("automaton", len(nfa.States()), false)
	printFile(output)
	return nil
}
