package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/stgyboard/pkg/printer"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <code>",
	Short: "Show the envelope of a stgy code",
	Long: `Validate a [stgy:a...] code and print its cipher key, checksum and sizes.

Example:
  stgy inspect '[stgy:a...]'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token := tokenArg(args[0])
		codec := newCodec()

		info, err := codec.Inspect(token)
		if err != nil {
			return printer.Error(cmd.ErrOrStderr(), "Invalid code", err.Error(), nil)
		}
		board, err := codec.Decode(token)
		if err != nil {
			return printer.Error(cmd.ErrOrStderr(), "Invalid code", err.Error(), nil)
		}

		out := cmd.OutOrStdout()
		printer.Field(out, "Key", fmt.Sprintf("%d (%s)", info.Key, info.KeyIndicator))
		printer.Field(out, "Checksum", fmt.Sprintf("0x%08X", info.Checksum))
		printer.Field(out, "Record bytes", info.DecompressedLength)
		printer.Field(out, "Compressed bytes", info.CompressedLength)
		printer.Field(out, "Code length", info.TokenLength)
		printer.Field(out, "Name", board.Name)
		printer.Field(out, "Version", board.Version)
		printer.Field(out, "Background", board.BackgroundID)
		printer.Field(out, "Objects", len(board.Objects))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
