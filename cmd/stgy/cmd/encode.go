package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/stgyboard/pkg/printer"
)

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode [file]",
	Short: "Encode a board file into a stgy code",
	Long: `Encode a board described in JSON or YAML into a [stgy:a...] code.
The board is read from stdin when no file is given.

Examples:
  stgy encode board.json
  cat board.yaml | stgy encode`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}

		board, err := readBoard(cmd.InOrStdin(), path)
		if err != nil {
			return printer.Error(cmd.ErrOrStderr(), "Cannot read board", err.Error(), nil)
		}

		token, err := newCodec().Encode(board)
		if err != nil {
			return printer.Error(cmd.ErrOrStderr(), "Cannot encode board", err.Error(), []string{
				"Check that positions are between 0 and 6553.5",
				"Only objects with objectId 100 may carry text",
			})
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
}
