// Package serve implements the REST backend command.
package serve

import (
	"github.com/spf13/cobra"

	"fjacquet/finsort/cmd/common"
	"fjacquet/finsort/cmd/root"
	"fjacquet/finsort/internal/logging"
)

// Address overrides server.address when set.
var Address string

// Cmd represents the serve command.
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the classification REST backend",
	Long: `Serves the expense and income taxonomies, reclassification and pivot
aggregation over HTTP until interrupted.`,
	Args: cobra.NoArgs,
	RunE: serveFunc,
}

func init() {
	Cmd.Flags().StringVarP(&Address, "addr", "a", "", "Listen address (default: server.address)")
}

func serveFunc(cmd *cobra.Command, args []string) error {
	c := root.AppContainer
	if Address != "" {
		c.GetConfig().Server.Address = Address
	}

	ctx, stop := common.SignalContext(cmd.Context())
	defer stop()

	root.Log.Info("Starting REST backend",
		logging.F("address", c.GetConfig().Server.Address),
		logging.F("expense_file", c.GetConfig().Taxonomy.ExpenseFile),
		logging.F("income_file", c.GetConfig().Taxonomy.IncomeFile))
	return c.NewServer().Run(ctx)
}
