package cmd

import (
	"strings"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
	"github.com/ssargent/stgyboard/pkg/api"
	"github.com/ssargent/stgyboard/pkg/printer"
	"github.com/ssargent/stgyboard/pkg/storage"
)

// putCmd represents the put command
var putCmd = &cobra.Command{
	Use:   "put <code>",
	Short: "Store a stgy code",
	Long: `Validate a [stgy:a...] code and store it in the local board store.

Example:
  stgy put '[stgy:a...]'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		stored, err := store.Create(tokenArg(args[0]))
		if err != nil {
			return printer.Error(cmd.ErrOrStderr(), "Cannot store board", err.Error(), nil)
		}

		out := cmd.OutOrStdout()
		printer.Success(out, "Board stored\n")
		printer.Field(out, "ID", stored.ID)
		printer.Field(out, "Name", stored.Name)
		printer.Field(out, "Objects", stored.ObjectCount)
		printer.Field(out, "Share URL", shareURL(stored.ID))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(putCmd)
}

// openStore opens the board store configured for this invocation.
func openStore(cmd *cobra.Command) (api.BoardStoreCloser, error) {
	store, err := container.GetStorageFactory().OpenStorage(cfg.DataDir, container.Logger())
	if err != nil {
		return nil, printer.Error(cmd.ErrOrStderr(), "Cannot open board store", err.Error(), []string{
			"Check --data-dir or data_dir in the configuration",
			"Make sure no other stgy process holds the store open",
		})
	}
	return store, nil
}

func shareURL(id string) string {
	return strings.TrimRight(cfg.Share.BaseURL, "/") + "/s/" + id
}

// parseBoardID reports a malformed ID through the printer.
func parseBoardID(cmd *cobra.Command, s string) (ksuid.KSUID, error) {
	id, err := storage.ParseID(s)
	if err != nil {
		return ksuid.Nil, printer.Error(cmd.ErrOrStderr(), "Invalid board ID", err.Error(), []string{
			"Run 'stgy list' to see stored board IDs",
		})
	}
	return id, nil
}
