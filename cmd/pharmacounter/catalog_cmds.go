package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pharmacounter/internal/core"
	"pharmacounter/pkg/domain"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newListCmd(a *app) *cobra.Command {
	var (
		criteria domain.FilterCriteria
		types    []string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog records, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, raw := range types {
				t := domain.ProductType(raw)
				if !t.Valid() {
					return fmt.Errorf("unknown product type %q", raw)
				}
				if !criteria.HasType(t) {
					criteria.ToggleType(t)
				}
			}
			catalog, err := a.open(cmd)
			if err != nil {
				return err
			}
			records := catalog.List(criteria)
			if asJSON {
				return printJSON(cmd.OutOrStdout(), records)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPRODUCTS\tVERIFIED BY\tSYMPTOMS")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", r.ID, r.Name, len(r.Products), r.VerifiedBy, strings.Join(r.Symptoms, ", "))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&criteria.Query, "query", "q", "", "substring of the ingredient or any trade name")
	cmd.Flags().StringVarP(&criteria.Symptom, "symptom", "s", "", "symptom keyword")
	cmd.Flags().StringArrayVarP(&types, "type", "t", nil, "product type (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := a.open(cmd)
			if err != nil {
				return err
			}
			rec, err := catalog.Get(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
}

func newSymptomsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "symptoms",
		Short: "List every symptom keyword in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := a.open(cmd)
			if err != nil {
				return err
			}
			for _, s := range catalog.Symptoms() {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print catalog counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := a.open(cmd)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), catalog.Stats())
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := a.open(cmd)
			if err != nil {
				return err
			}
			if !catalog.Delete(cmd.Context(), args[0]) {
				return core.ErrNotFound{Entity: "record", ID: args[0]}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func newSettingsCmd(a *app) *cobra.Command {
	var (
		dark   bool
		accent string
		font   string
	)
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change display preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := a.open(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("dark") && !flags.Changed("accent") && !flags.Changed("font") {
				return printJSON(cmd.OutOrStdout(), catalog.Settings.Get())
			}
			updated, err := catalog.Settings.Update(func(s *domain.Settings) {
				if flags.Changed("dark") {
					s.DarkMode = dark
				}
				if flags.Changed("accent") {
					s.AccentColor = domain.AccentColor(accent)
				}
				if flags.Changed("font") {
					s.FontFamily = domain.FontFamily(font)
				}
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), updated)
		},
	}
	cmd.Flags().BoolVar(&dark, "dark", false, "dark mode")
	cmd.Flags().StringVar(&accent, "accent", "", "accent color")
	cmd.Flags().StringVar(&font, "font", "", "font family")
	return cmd
}

func newTipCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "tip",
		Short: "Print the health reminder for the current interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if all {
				for _, r := range core.HealthReminders {
					fmt.Fprintln(cmd.OutOrStdout(), r)
				}
				return nil
			}
			interval, err := a.cfg.ReminderInterval()
			if err != nil {
				return err
			}
			r := core.NewReminderRotator(interval)
			// a one-shot process lands on the reminder a long-running rotator would show now
			steps := int(nowFunc().UnixNano()/int64(interval)) % len(core.HealthReminders)
			for i := 0; i < steps; i++ {
				r.Advance()
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.Current())
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "print every reminder")
	return cmd
}
