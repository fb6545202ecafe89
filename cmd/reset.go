package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solheim-lab/hyttevakt/internal/config"
	"github.com/solheim-lab/hyttevakt/internal/storage"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear all stored snapshot history",
	Long:  "Delete every stored snapshot. The next check treats all cabins as first observations, so no change notifications fire for already-known dates.",
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}

func runReset(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		fmt.Printf("This deletes all snapshot history in %s. Continue? [y/N] ", cfg.DBPath())
		var answer string
		_, _ = fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("aborted")
			return nil
		}
	}

	db, _, err := storage.NewSQLiteDB(cfg.DBPath())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	history := storage.NewSQLiteHistoryStore(db, cfg.KeepLast)
	if err := history.ClearAll(context.Background()); err != nil {
		return err
	}
	fmt.Println("history cleared")
	return nil
}
