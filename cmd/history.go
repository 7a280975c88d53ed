package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"flowtrigger/internal/format"
	"flowtrigger/internal/storage"
)

func init() {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "View sent trigger requests",
		Args:  cobra.NoArgs,
		RunE:  runHistoryList,
	}

	historyCmd.Flags().IntP("limit", "n", 10, "Number of requests to show")

	showCmd := &cobra.Command{
		Use:   "show <id or index>",
		Short: "Show full details of a request",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShow,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear all history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryClear,
	}

	historyCmd.AddCommand(showCmd, clearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := storage.NewStorage()
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	defer store.Close()

	history, err := store.LoadHistory()
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	format.PrintHistoryList(cmd.OutOrStdout(), history.Requests, limit)
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := storage.NewStorage()
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	defer store.Close()

	identifier := args[0]

	// Try to parse as index first (1-based, newest first)
	if index, err := strconv.Atoi(identifier); err == nil {
		history, err := store.LoadHistory()
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		if index > 0 && index <= len(history.Requests) {
			format.PrintRequestDetail(cmd.OutOrStdout(), &history.Requests[index-1])
			return nil
		}
	}

	req, err := store.GetHistoryRequest(identifier)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if req == nil {
		return fmt.Errorf("request not found: %s", identifier)
	}

	format.PrintRequestDetail(cmd.OutOrStdout(), req)
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	store, err := storage.NewStorage()
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	defer store.Close()

	if err := store.ClearHistory(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	format.PrintSuccess(cmd.OutOrStdout(), "History cleared")
	return nil
}
