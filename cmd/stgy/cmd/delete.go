package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/stgyboard/pkg/printer"
	"github.com/ssargent/stgyboard/pkg/storage"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored board",
	Long: `Delete the board stored under an ID. Its share link stops working.

Example:
  stgy delete 2dc4kP7e4XxT6AdTXfxo9oWTV0u`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseBoardID(cmd, args[0])
		if err != nil {
			return err
		}

		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		err = store.Delete(id)
		if errors.Is(err, storage.ErrNotFound) {
			return printer.Error(cmd.ErrOrStderr(), "Board not found", fmt.Sprintf("No board is stored under %s.", id), nil)
		}
		if err != nil {
			return printer.Error(cmd.ErrOrStderr(), "Cannot delete board", err.Error(), nil)
		}

		printer.Success(cmd.OutOrStdout(), "Deleted board %s\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
