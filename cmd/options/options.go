// Package options implements the command listing taxonomy labels.
package options

import (
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/finsort/cmd/root"
	"fjacquet/finsort/internal/models"
)

// Type is the taxonomy to list: expense or income.
var Type string

// Cmd represents the options command.
var Cmd = &cobra.Command{
	Use:   "options",
	Short: "List the classifications of a taxonomy",
	Long:  `Lists the expense or income classifications, sorted, one per line.`,
	Args:  cobra.NoArgs,
	RunE:  optionsFunc,
}

func init() {
	Cmd.Flags().StringVarP(&Type, "type", "t", "", "Taxonomy to list: expense or income")
	_ = Cmd.MarkFlagRequired("type")
}

func optionsFunc(cmd *cobra.Command, args []string) error {
	dir, err := models.ParseDirection(Type)
	if err != nil {
		return err
	}
	mode, err := root.CurrentMode()
	if err != nil {
		return err
	}

	labels, err := root.AppContainer.Backend(mode).Options(cmd.Context(), dir)
	if err != nil {
		return fmt.Errorf("failed to load %s classifications: %w", dir, err)
	}
	for _, label := range labels {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), label); err != nil {
			return err
		}
	}
	return nil
}
