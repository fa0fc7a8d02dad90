package main

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	goalsync "github.com/ymatsuki/goalsync/internal/sync"
	"github.com/ymatsuki/goalsync/internal/ui"
)

var addFlags struct {
	description string
	year        int
	deadline    string
	tags        []string
}

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Register a new goal",
	Long: `Register a new goal for the current user.

The deadline accepts either YYYY-MM-DD or a natural phrase like
"next friday" or "end of march".`,
	Args: cobra.ExactArgs(1),
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

		deadline, err := parseDeadline(addFlags.deadline)
		if err != nil {
			return err
		}

		goal, err := a.coord.CreateGoal(ctx, owner, goalsync.CreateFields{
			Title:       args[0],
			Description: addFlags.description,
			TargetYear:  addFlags.year,
			Deadline:    deadline,
			Tags:        addFlags.tags,
		})
		if err != nil {
			return err
		}

		fmt.Printf("%s Added goal %d: %s (%d)\n", ui.RenderPass("✓"), goal.ID, goal.Title, goal.TargetYear)
		return nil
	},
}

// parseDeadline normalizes a deadline flag to YYYY-MM-DD, trying the
// exact format first and a natural-language parse second.
func parseDeadline(input string) (string, error) {
	if input == "" {
		return "", nil
	}
	if t, err := time.Parse("2006-01-02", input); err == nil {
		return t.Format("2006-01-02"), nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(input, time.Now())
	if err != nil || r == nil {
		return "", fmt.Errorf("cannot parse deadline %q, use YYYY-MM-DD or a phrase like \"next friday\"", input)
	}
	return r.Time.Format("2006-01-02"), nil
}

func init() {
	addCmd.Flags().StringVarP(&addFlags.description, "desc", "d", "", "goal description")
	addCmd.Flags().IntVarP(&addFlags.year, "year", "y", time.Now().Year(), "target year")
	addCmd.Flags().StringVar(&addFlags.deadline, "deadline", "", "deadline (YYYY-MM-DD or natural phrase)")
	addCmd.Flags().StringSliceVarP(&addFlags.tags, "tag", "t", nil, "tags (repeatable)")
	rootCmd.AddCommand(addCmd)
}
