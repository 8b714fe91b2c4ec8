package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/ssargent/stgyboard/pkg/printer"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored boards",
	Long: `List every stored board, oldest first.

Example:
  stgy list`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		boards, err := store.List()
		if err != nil {
			return printer.Error(cmd.ErrOrStderr(), "Cannot list boards", err.Error(), nil)
		}

		out := cmd.OutOrStdout()
		if len(boards) == 0 {
			printer.Info(out, "No boards stored. Add one with 'stgy put <code>'.\n")
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tOBJECTS\tUPDATED")
		for _, b := range boards {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", b.ID, b.Name, b.ObjectCount, b.UpdatedAt.Local().Format(time.DateTime))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
