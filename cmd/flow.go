package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"flowtrigger/internal/format"
	"flowtrigger/internal/storage"
)

func init() {
	flowCmd := &cobra.Command{
		Use:   "flow",
		Short: "Manage saved flow trigger URLs",
		Long: `Manage saved flow trigger URLs.

Workflow trigger URLs are long and carry signatures. Save one under a
short name and pass the name to --url (or FLOW_URL) instead.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved flows",
		Args:  cobra.NoArgs,
		RunE:  runFlowList,
	}

	addCmd := &cobra.Command{
		Use:   "add <name> <url>",
		Short: "Save a flow trigger URL under a name",
		Long: `Save a flow trigger URL under a name.

Example:
  flowtrigger flow add tickets 'https://prod-00.westus.logic.azure.com/workflows/...'
  flowtrigger --url tickets --data '{"title": "Printer on fire"}'`,
		Args: cobra.ExactArgs(2),
		RunE: runFlowAdd,
	}

	showCmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show a saved flow",
		Args:  cobra.ExactArgs(1),
		RunE:  runFlowShow,
	}

	removeCmd := &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm", "delete"},
		Short:   "Remove a saved flow",
		Args:    cobra.ExactArgs(1),
		RunE:    runFlowRemove,
	}

	flowCmd.AddCommand(listCmd, addCmd, showCmd, removeCmd)
	rootCmd.AddCommand(flowCmd)
}

func runFlowList(cmd *cobra.Command, args []string) error {
	store, err := storage.NewStorage()
	if err != nil {
		return fmt.Errorf("failed to load flows: %w", err)
	}
	defer store.Close()

	flows, err := store.LoadFlows()
	if err != nil {
		return fmt.Errorf("failed to load flows: %w", err)
	}

	format.PrintFlowList(cmd.OutOrStdout(), flows)
	return nil
}

func runFlowAdd(cmd *cobra.Command, args []string) error {
	name, url := args[0], args[1]

	if strings.Contains(name, "://") {
		return fmt.Errorf("flow name %q must not look like a URL", name)
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("flow URL must start with http:// or https://")
	}

	store, err := storage.NewStorage()
	if err != nil {
		return fmt.Errorf("failed to save flow: %w", err)
	}
	defer store.Close()

	if err := store.SaveFlow(name, url); err != nil {
		return fmt.Errorf("failed to save flow: %w", err)
	}

	format.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Flow '%s' saved", name))
	return nil
}

func runFlowShow(cmd *cobra.Command, args []string) error {
	name := args[0]

	store, err := storage.NewStorage()
	if err != nil {
		return fmt.Errorf("failed to load flow: %w", err)
	}
	defer store.Close()

	url, exists, err := store.GetFlow(name)
	if err != nil {
		return fmt.Errorf("failed to load flow: %w", err)
	}
	if !exists {
		return fmt.Errorf("flow '%s' not found", name)
	}

	format.PrintFlow(cmd.OutOrStdout(), name, url)
	return nil
}

func runFlowRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	store, err := storage.NewStorage()
	if err != nil {
		return fmt.Errorf("failed to remove flow: %w", err)
	}
	defer store.Close()

	existed, err := store.DeleteFlow(name)
	if err != nil {
		return fmt.Errorf("failed to remove flow: %w", err)
	}
	if !existed {
		return fmt.Errorf("flow '%s' not found", name)
	}

	format.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Flow '%s' removed", name))
	return nil
}
