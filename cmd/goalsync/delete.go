package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ymatsuki/goalsync/internal/ui"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a goal",
	Long: `Delete a goal from the local store and, best-effort, from the
remote. Deleting an id that does not exist is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid goal id %q", args[0])
		}

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.coord.DeleteGoal(ctx, id); err != nil {
			return err
		}

		fmt.Printf("%s Deleted goal %d\n", ui.RenderPass("✓"), id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
