package cmd

import (
	"github.com/spf13/cobra"
	"github.com/ssargent/stgyboard/pkg/printer"
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <code>",
	Short: "Decode a stgy code into a board",
	Long: `Decode a [stgy:a...] code and print the board as JSON or YAML.

Examples:
  stgy decode '[stgy:a...]'
  stgy decode '[stgy:a...]' --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		board, err := newCodec().Decode(tokenArg(args[0]))
		if err != nil {
			return printer.Error(cmd.ErrOrStderr(), "Invalid code", err.Error(), nil)
		}
		return writeValue(cmd.OutOrStdout(), board, format)
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().StringP("format", "f", formatJSON, "Output format: json or yaml")
}
