package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newDNCCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dnc",
		Short: "Manage the Do Not Call list",
	}

	cmd.AddCommand(newDNCListCommand())
	cmd.AddCommand(newDNCAddCommand())
	cmd.AddCommand(newDNCRemoveCommand())
	return cmd
}

func newDNCListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List blocked phone numbers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDNCList(cmd.Context())
		},
	}
}

func newDNCAddCommand() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "add <phone>",
		Short: "Add a phone number to the DNC list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDNCAdd(cmd.Context(), args[0], reason)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the number is blocked")
	return cmd
}

func newDNCRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <phone>",
		Short: "Remove a phone number from the DNC list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDNCRemove(cmd.Context(), args[0])
		},
	}
}

func runDNCList(ctx context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	entries, err := a.registry.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list DNC entries: %w", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Phone Key", "Original", "Reason", "Source", "Added"})
	for _, entry := range entries {
		t.AppendRow(table.Row{
			entry.PhoneKey,
			entry.OriginalPhone,
			entry.Reason,
			entry.Source,
			entry.AddedAt.Format("2006-01-02 15:04"),
		})
	}
	t.Render()
	fmt.Printf("%d blocked numbers\n", len(entries))
	return nil
}

func runDNCAdd(ctx context.Context, rawPhone, reason string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	added, err := a.registry.Add(ctx, rawPhone, reason, "cli")
	if err != nil {
		return fmt.Errorf("failed to add DNC entry: %w", err)
	}
	if !added {
		return fmt.Errorf("invalid phone number: %s", rawPhone)
	}

	fmt.Printf("blocked %s\n", rawPhone)
	return nil
}

func runDNCRemove(ctx context.Context, rawPhone string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	removed, err := a.registry.Remove(ctx, rawPhone)
	if err != nil {
		return fmt.Errorf("failed to remove DNC entry: %w", err)
	}
	if !removed {
		return fmt.Errorf("%s is not on the DNC list", rawPhone)
	}

	fmt.Printf("unblocked %s\n", rawPhone)
	return nil
}
