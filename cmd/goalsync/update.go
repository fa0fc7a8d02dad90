package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ymatsuki/goalsync/internal/schema"
	"github.com/ymatsuki/goalsync/internal/ui"
)

var updateFlags struct {
	progress    int
	status      string
	description string
	deadline    string
	tags        []string
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a goal's progress or details",
	Long: `Apply a partial update to a goal. Only the flags you pass change.

Progress and status are independent: setting --progress 100 does not
mark the goal completed, use --status completed (or 'goalsync done')
for that. Updating an id that no longer exists is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid goal id %q", args[0])
		}

		var patch schema.Patch
		if cmd.Flags().Changed("progress") {
			if updateFlags.progress < 0 || updateFlags.progress > 100 {
				return fmt.Errorf("progress must be between 0 and 100")
			}
			patch.Progress = &updateFlags.progress
		}
		if cmd.Flags().Changed("status") {
			if updateFlags.status != schema.StatusActive && updateFlags.status != schema.StatusCompleted {
				return fmt.Errorf("status must be %q or %q", schema.StatusActive, schema.StatusCompleted)
			}
			patch.Status = &updateFlags.status
		}
		if cmd.Flags().Changed("desc") {
			patch.Description = &updateFlags.description
		}
		if cmd.Flags().Changed("deadline") {
			deadline, err := parseDeadline(updateFlags.deadline)
			if err != nil {
				return err
			}
			patch.Deadline = &deadline
		}
		if cmd.Flags().Changed("tag") {
			patch.Tags = &updateFlags.tags
		}
		if patch.IsEmpty() {
			return fmt.Errorf("nothing to update, pass at least one flag")
		}

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		goal, err := a.coord.UpdateGoal(ctx, id, patch)
		if err != nil {
			return err
		}
		if goal == nil {
			fmt.Printf("%s Goal %d not found locally, nothing changed\n", ui.RenderWarn("⚠"), id)
			return nil
		}

		fmt.Printf("%s Updated goal %d: %s (%d%%, %s)\n",
			ui.RenderPass("✓"), goal.ID, goal.Title, goal.Progress, goal.Status)
		return nil
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a goal completed",
	Long: `Mark a goal completed without touching its progress value.

This is the completion-checkbox path: status flips to completed, the
progress percentage stays whatever it was.`,
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

		status := schema.StatusCompleted
		goal, err := a.coord.UpdateGoal(ctx, id, schema.Patch{Status: &status})
		if err != nil {
			return err
		}
		if goal == nil {
			fmt.Printf("%s Goal %d not found locally, nothing changed\n", ui.RenderWarn("⚠"), id)
			return nil
		}

		fmt.Printf("%s Completed: %s\n", ui.RenderPass("✓"), goal.Title)
		return nil
	},
}

func init() {
	updateCmd.Flags().IntVarP(&updateFlags.progress, "progress", "p", 0, "progress percentage (0-100)")
	updateCmd.Flags().StringVarP(&updateFlags.status, "status", "s", "", "status (active or completed)")
	updateCmd.Flags().StringVarP(&updateFlags.description, "desc", "d", "", "description")
	updateCmd.Flags().StringVar(&updateFlags.deadline, "deadline", "", "deadline (YYYY-MM-DD or natural phrase)")
	updateCmd.Flags().StringSliceVarP(&updateFlags.tags, "tag", "t", nil, "replace tags (repeatable)")
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(doneCmd)
}
