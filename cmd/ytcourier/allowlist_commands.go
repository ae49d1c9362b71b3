package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"ytcourier/internal/logging"
	"ytcourier/internal/whitelist"
)

func newAllowlistCommand(ctx *commandContext) *cobra.Command {
	allowlistCmd := &cobra.Command{
		Use:   "allowlist",
		Short: "Manage the user whitelist",
	}

	allowlistCmd.AddCommand(newAllowlistListCommand(ctx))
	allowlistCmd.AddCommand(newAllowlistAddCommand(ctx))
	allowlistCmd.AddCommand(newAllowlistRemoveCommand(ctx))

	return allowlistCmd
}

func (c *commandContext) openWhitelist() (*whitelist.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return whitelist.Open(cfg.Paths.WhitelistPath, cfg.Telegram.AdminID, logging.NewNop())
}

func newAllowlistListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show whitelisted users",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openWhitelist()
			if err != nil {
				return err
			}

			ids, usernames := store.Snapshot()
			out := cmd.OutOrStdout()
			if len(ids) == 0 && len(usernames) == 0 {
				fmt.Fprintln(out, "Whitelist is empty")
				return nil
			}

			tw := table.NewWriter()
			tw.SetStyle(table.StyleLight)
			tw.AppendHeader(table.Row{"Identifier", "Observed ID"})
			tw.SetColumnConfigs([]table.ColumnConfig{
				{Number: 2, Align: text.AlignRight},
			})

			for _, id := range ids {
				tw.AppendRow(table.Row{strconv.FormatInt(id, 10), id})
			}
			names := make([]string, 0, len(usernames))
			for name := range usernames {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				observed := "-"
				if id := usernames[name]; id != nil {
					observed = strconv.FormatInt(*id, 10)
				}
				tw.AppendRow(table.Row{"@" + name, observed})
			}

			fmt.Fprintln(out, tw.Render())
			return nil
		},
	}
}

func newAllowlistAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <id|@username>",
		Short: "Whitelist a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openWhitelist()
			if err != nil {
				return err
			}
			ident, err := store.Add(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Whitelisted %s\n", ident)
			return nil
		},
	}
}

func newAllowlistRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id|@username>",
		Short: "Remove a user from the whitelist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openWhitelist()
			if err != nil {
				return err
			}
			ident, err := store.Remove(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", ident)
			return nil
		},
	}
}
