package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/stgyboard/pkg/printer"
	"github.com/ssargent/stgyboard/pkg/storage"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print a stored stgy code",
	Long: `Print the code stored under an ID, or the decoded board with --decode.

Examples:
  stgy get 2dc4kP7e4XxT6AdTXfxo9oWTV0u
  stgy get 2dc4kP7e4XxT6AdTXfxo9oWTV0u --decode --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		decode, _ := cmd.Flags().GetBool("decode")
		format, _ := cmd.Flags().GetString("format")

		id, err := parseBoardID(cmd, args[0])
		if err != nil {
			return err
		}

		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		stored, err := store.Read(id)
		if errors.Is(err, storage.ErrNotFound) {
			return printer.Error(cmd.ErrOrStderr(), "Board not found", fmt.Sprintf("No board is stored under %s.", id), nil)
		}
		if err != nil {
			return printer.Error(cmd.ErrOrStderr(), "Cannot read board", err.Error(), nil)
		}

		if !decode {
			fmt.Fprintln(cmd.OutOrStdout(), stored.Token)
			return nil
		}

		board, err := newCodec().Decode(stored.Token)
		if err != nil {
			return printer.Error(cmd.ErrOrStderr(), "Stored code no longer decodes", err.Error(), nil)
		}
		return writeValue(cmd.OutOrStdout(), board, format)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().Bool("decode", false, "Print the decoded board instead of the code")
	getCmd.Flags().StringP("format", "f", formatJSON, "Output format with --decode: json or yaml")
}
