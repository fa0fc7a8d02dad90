package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ymatsuki/goalsync/internal/session"
	"github.com/ymatsuki/goalsync/internal/ui"
)

var loginCmd = &cobra.Command{
	Use:   "login <name>",
	Short: "Set the current user",
	Long: `Set the user name that partitions all goals.

The name is stored locally and used for every store call. It is not
validated against the remote; whoever you say you are is whose goals
you see.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := initConfig()
		if err != nil {
			return err
		}
		if err := session.New(dir).Set(args[0]); err != nil {
			return err
		}
		fmt.Printf("%s Logged in as %s\n", ui.RenderPass("✓"), args[0])
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current user",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := initConfig()
		if err != nil {
			return err
		}
		owner, ok, err := session.New(dir).Current()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "No user set")
			os.Exit(1)
		}
		fmt.Println(owner)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the current user",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := initConfig()
		if err != nil {
			return err
		}
		if err := session.New(dir).Clear(); err != nil {
			return err
		}
		fmt.Printf("%s Logged out\n", ui.RenderPass("✓"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(logoutCmd)
}
