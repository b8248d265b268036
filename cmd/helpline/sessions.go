package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage checkpointed conversations",
	Long:  `List, inspect and remove conversation checkpoints in the configured store.`,
}

var sessionsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List checkpointed conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ids, err := a.service.Store().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list conversations: %w", err)
		}
		if len(ids) == 0 {
			fmt.Println("No checkpointed conversations found.")
			return nil
		}
		for _, id := range ids {
			fmt.Println("- " + id)
		}
		return nil
	},
}

var sessionsInspectCmd = &cobra.Command{
	Use:   "inspect <conversation-id>",
	Short: "Print the checkpointed state of a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		state, err := a.service.Store().Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load conversation %q: %w", args[0], err)
		}

		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal state: %w", err)
		}
		fmt.Println(string(data))
		return nil
	},
}

var sessionsRmCmd = &cobra.Command{
	Use:   "rm <conversation-id>...",
	Short: "Remove one or more conversation checkpoints",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		for _, id := range args {
			if err := a.service.Store().Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to remove %q: %w", id, err)
			}
			fmt.Printf("Removed conversation %q\n", id)
		}
		return nil
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsLsCmd)
	sessionsCmd.AddCommand(sessionsInspectCmd)
	sessionsCmd.AddCommand(sessionsRmCmd)
	rootCmd.AddCommand(sessionsCmd)
}
