package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const defaultQuery = "Some news related to sports."

func askCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [query]",
		Short: "Answer a single query and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := flags.build(cmd)
			if err != nil {
				return err
			}

			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				query = defaultQuery
			}

			answer, err := a.Agent.Answer(cmd.Context(), a.NewConversation(), query)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), answer)
			return err
		},
	}
}
