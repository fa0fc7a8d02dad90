package main

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ymatsuki/goalsync/internal/schema"
	"github.com/ymatsuki/goalsync/internal/ui"
)

var listFlags struct {
	year int
	tag  string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List goals for a year",
	Long: `List the current user's goals for a target year.

Pulls the remote partition down first (remote wins); if the remote is
unreachable the existing local data is shown instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		owner, err := a.owner()
		if err != nil {
			return err
		}

		if err := a.coord.SyncDown(ctx, owner); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", ui.RenderWarn("⚠"), err)
		}

		goals, err := a.coord.LoadGoals(ctx, owner, listFlags.year)
		if err != nil {
			return err
		}

		if listFlags.tag != "" {
			goals = slices.DeleteFunc(goals, func(g *schema.Goal) bool {
				return !slices.Contains(g.Tags, listFlags.tag)
			})
		}

		if len(goals) == 0 {
			fmt.Printf("No goals for %s in %d\n", owner, listFlags.year)
			return nil
		}

		years, err := a.local.Years(ctx, owner)
		if err != nil {
			return err
		}

		fmt.Printf("%s Goals for %s in %d\n\n", ui.RenderAccent("🎯"), owner, listFlags.year)
		for _, g := range goals {
			printGoal(g)
		}
		if len(years) > 1 {
			fmt.Printf("\n%s\n", ui.RenderFaint(fmt.Sprintf("Other years: %s", joinYears(years, listFlags.year))))
		}
		return nil
	},
}

func printGoal(g *schema.Goal) {
	mark := " "
	if g.Status == schema.StatusCompleted {
		mark = ui.RenderPass("✓")
	}
	deadline := "no deadline"
	if g.Deadline != "" {
		deadline = "due " + g.Deadline
	}
	fmt.Printf("[%s] %d  %s  %3d%%  %s\n", mark, g.ID, g.Title, g.Progress, ui.RenderFaint(deadline))
	if g.Description != "" {
		fmt.Printf("       %s\n", ui.RenderFaint(g.Description))
	}
	if len(g.Tags) > 0 {
		fmt.Printf("       %s\n", ui.RenderAccent("#"+strings.Join(g.Tags, " #")))
	}
}

func joinYears(years []int, current int) string {
	var parts []string
	for _, y := range years {
		if y != current {
			parts = append(parts, fmt.Sprint(y))
		}
	}
	return strings.Join(parts, ", ")
}

func init() {
	listCmd.Flags().IntVarP(&listFlags.year, "year", "y", time.Now().Year(), "target year")
	listCmd.Flags().StringVarP(&listFlags.tag, "tag", "t", "", "only goals carrying this tag")
	rootCmd.AddCommand(listCmd)
}
