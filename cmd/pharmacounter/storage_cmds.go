package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"pharmacounter/pkg/domain"
)

func newStorageCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Inspect or reset the persisted catalog",
	}
	cmd.AddCommand(newStorageListCmd(a), newStorageResetCmd(a))
	return cmd
}

func newStorageListCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List persisted keys under the configured prefix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kv, err := a.openKV(cmd)
			if err != nil {
				return err
			}
			entries, err := kv.Entries(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tSIZE\tMODIFIED")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", e.Key, e.Size, e.LastModified.UTC().Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newStorageResetCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the stored catalog and settings; the next run starts from the bootstrap record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("reset deletes every stored record; pass --yes to confirm")
			}
			kv, err := a.openKV(cmd)
			if err != nil {
				return err
			}
			for _, key := range []string{domain.RecordsKey, domain.SettingsKey} {
				removed, err := kv.Delete(cmd.Context(), key)
				if err != nil {
					return err
				}
				if removed {
					a.log.Info("stored value deleted", "key", key)
					fmt.Fprintln(cmd.OutOrStdout(), "deleted", key)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
