package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ymatsuki/goalsync/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull the remote partition into the local store",
	Long: `Replace the current user's local goals with the remote ones.

This is the same sync-down that runs at the start of 'list'. The
remote is authoritative: local-only changes that were never pushed
are overwritten, and an empty remote partition clears the local one.`,
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
		if a.remote == nil {
			return fmt.Errorf("no remote configured, set remote.dsn (or GOALSYNC_REMOTE_DSN)")
		}

		start := time.Now()
		if err := a.coord.SyncDown(ctx, owner); err != nil {
			return err
		}

		count, err := a.local.CountByOwner(ctx, owner)
		if err != nil {
			return err
		}

		fmt.Printf("%s Sync complete in %v, %d goals for %s\n",
			ui.RenderPass("✓"), time.Since(start).Round(time.Millisecond), count, owner)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		fmt.Printf("\n%s goalsync status\n\n", ui.RenderAccent("📊"))
		fmt.Printf("Local store: %s\n", viper.GetString("local.path"))

		if owner, ok, err := a.session.Current(); err != nil {
			return err
		} else if ok {
			count, err := a.local.CountByOwner(ctx, owner)
			if err != nil {
				return err
			}
			fmt.Printf("User: %s (%d goals)\n", owner, count)

			tags, err := a.local.Tags(ctx, owner)
			if err != nil {
				return err
			}
			if len(tags) > 0 {
				fmt.Printf("Tags: %s\n", strings.Join(tags, ", "))
			}
		} else {
			fmt.Println("User: not set")
		}

		if a.remote != nil {
			fmt.Printf("Remote: %s\n", ui.RenderPass("connected"))
		} else {
			fmt.Printf("Remote: %s\n", ui.RenderWarn("offline"))
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
}
