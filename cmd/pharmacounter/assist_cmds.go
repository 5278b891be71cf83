package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pharmacounter/pkg/domain"
)

func newAssistCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "assist <explain|offer|compare> <drug> [other drug]",
		Short: "Ask the AI provider for counter-side guidance",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := a.open(cmd)
			if err != nil {
				return err
			}
			var second string
			if len(args) == 3 {
				second = args[2]
			}
			text, err := catalog.Assistant.Generate(cmd.Context(), domain.AssistMode(args[0]), args[1], second)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <question>",
		Short: "Ask a question answered with the catalog as context",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := a.open(cmd)
			if err != nil {
				return err
			}
			reply, err := catalog.Assistant.Chat(cmd.Context(), strings.Join(args, " "))
			if reply.Text != "" {
				fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
			}
			return err
		},
	}
}
