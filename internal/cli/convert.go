package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fsmkit/pkg/errors"
	"github.com/matzehuels/fsmkit/pkg/pipeline"
)

// convertCommand creates the convert command: NFA document in, DFA document
// (and optionally minimal DFA plus diagrams) out.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		output     string
		minimize   bool
		formatsStr string
		renderNFA  bool
		noCache    bool
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:   "convert [nfa.json]",
		Short: "Convert an NFA document to an equivalent DFA",
		Long: `Convert an NFA document to an equivalent DFA via subset construction.

The input is a JSON automaton document: a "startingState" key plus one
object per state holding "isTerminatingState" and the state's transitions.
Epsilon transitions are recognized as "", "epsilon" (any case), "ε" and the
common mis-encoded spelling of ε.

With --minimize the minimal DFA is produced as well, via partition
refinement. With --format the converted automata are also rendered as
Graphviz diagrams.

Results are cached locally by content hash for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			minimize = minimize || c.Config.Minimize
			return c.runConvert(cmd, args[0], convertParams{
				output:    output,
				minimize:  minimize,
				formats:   parseFormats(formatsStr),
				renderNFA: renderNFA,
				noCache:   noCache,
				refresh:   refresh,
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file for the DFA document (default: <input>.dfa.json)")
	cmd.Flags().BoolVarP(&minimize, "minimize", "m", false, "also emit the minimal DFA (default: <input>.min.json)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "also render diagram(s): dot, svg, png (comma-separated)")
	cmd.Flags().BoolVar(&renderNFA, "render-nfa", false, "render the input NFA too (requires --format)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and recompute")

	return cmd
}

type convertParams struct {
	output    string
	minimize  bool
	formats   []string
	renderNFA bool
	noCache   bool
	refresh   bool
}

func (c *CLI) runConvert(cmd *cobra.Command, input string, p convertParams) error {
	ctx := cmd.Context()

	if err := pipeline.ValidateFormats(p.formats); err != nil {
		return err
	}
	if p.output != "" {
		if err := errors.ValidateOutputPath(p.output); err != nil {
			return err
		}
	}

	doc, err := os.ReadFile(input)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "input document not found: %s", input)
		}
		return fmt.Errorf("read %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, p.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Converting...")
	spinner.Start()

	result, err := runner.Execute(ctx, pipeline.Options{
		Document:  doc,
		Minimize:  p.minimize,
		Formats:   p.formats,
		RenderNFA: p.renderNFA,
		Refresh:   p.refresh,
		Logger:    c.Logger,
	})
	if err != nil {
		spinner.StopWithError("Conversion failed")
		return err
	}
	spinner.Stop()

	dfaPath := p.output
	if dfaPath == "" {
		dfaPath = derivedPath(input, ".dfa.json")
	}
	if err := os.WriteFile(dfaPath, result.DFADocument, 0644); err != nil {
		return fmt.Errorf("write %s: %w", dfaPath, err)
	}

	printSuccess("Converted %s", input)
	printStats("DFA", result.Stats.DFAStates, result.CacheInfo.DeterminizeHit)
	printFile(dfaPath)

	if p.minimize {
		minPath := derivedPath(input, ".min.json")
		if err := os.WriteFile(minPath, result.MinDocument, 0644); err != nil {
			return fmt.Errorf("write %s: %w", minPath, err)
		}
		printStats("minimal DFA", result.Stats.MinStates, result.CacheInfo.MinimizeHit)
		printFile(minPath)
	}

	for _, name := range sortedArtifactNames(result.Artifacts) {
		path := derivedPath(input, "."+name)
		if err := os.WriteFile(path, result.Artifacts[name], 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	return nil
}

// derivedPath strips the input's .json suffix (when present) and appends
// the given suffix: nfa.json -> nfa.dfa.json.
func derivedPath(input, suffix string) string {
	base := strings.TrimSuffix(input, ".json")
	return base + suffix
}

// parseFormats splits a comma-separated format list, trimming blanks.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}
