// Package classify implements the interactive classification command.
package classify

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/finsort/cmd/common"
	"fjacquet/finsort/cmd/root"
	"fjacquet/finsort/internal/cli"
	"fjacquet/finsort/internal/flowerror"
	"fjacquet/finsort/internal/ledger"
	"fjacquet/finsort/internal/logging"
)

var (
	// Output is where the classified ledger is written; empty overwrites
	// the input file.
	Output string
	// NoSummary skips the pivot table after classification.
	NoSummary bool
)

// Cmd represents the classify command.
var Cmd = &cobra.Command{
	Use:   "classify <ledger.json>",
	Short: "Interactively classify the unclassified transactions of a ledger",
	Long: `Applies the taxonomy to a ledger, then walks the transactions it could
not classify, last one first. Pick an
existing classification by number or create one with +name; every decision
is saved to the taxonomy right away. When the queue is empty the whole ledger
is reclassified and summarized.`,
	Args: cobra.ExactArgs(1),
	RunE: classifyFunc,
}

func init() {
	Cmd.Flags().StringVarP(&Output, "output", "o", "", "Output ledger file (default: overwrite the input)")
	Cmd.Flags().BoolVar(&NoSummary, "no-summary", false, "Do not print the summary table when done")
}

func classifyFunc(cmd *cobra.Command, args []string) error {
	mode, err := root.CurrentMode()
	if err != nil {
		return err
	}
	c := root.AppContainer

	ctx, stop := common.SignalContext(cmd.Context())
	defer stop()

	if err := c.Preflight(ctx, mode); err != nil {
		return err
	}
	session, err := common.OpenLedger(c, args[0], mode)
	if err != nil {
		return err
	}
	if err := c.ApplyTaxonomy(ctx, session, mode); err != nil {
		root.Log.WithError(err).Warn("Could not apply the taxonomy, every unclassified record is queued")
	}

	controller := c.NewController(mode)
	if err := controller.Start(ctx, session); err != nil && !errors.Is(err, flowerror.ErrTaxonomyUnavailable) {
		return err
	}

	out := cmd.OutOrStdout()
	runErr := cli.NewPrompter(cmd.InOrStdin(), out, root.Log).Run(ctx, controller)
	stopped := errors.Is(runErr, cli.ErrQuit) || errors.Is(runErr, cli.ErrInputCancelled)
	if runErr != nil && !stopped {
		return runErr
	}

	target := Output
	if target == "" {
		target = args[0]
	}
	if err := ledger.WriteFile(target, session.Records()); err != nil {
		return err
	}
	root.Log.Info("Ledger saved",
		logging.F(logging.FieldFile, target),
		logging.F(logging.FieldRemaining, controller.Remaining()))

	if stopped {
		_, err := fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf(
			"Stopped with %d transactions left, progress saved to %s", controller.Remaining(), target)))
		return err
	}

	if NoSummary {
		return nil
	}
	summary, err := session.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", flowerror.UserMessage(err), err)
	}
	return cli.PrintSummary(out, summary)
}
