// Command searchgpt answers questions with a language model that can search
// the web and read pages.
//
//	searchgpt ask "latest champions league results"
//	searchgpt chat
//	searchgpt serve --addr :8080
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leofalp/searchgpt/internal/app"
	"github.com/leofalp/searchgpt/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	provider   string
	model      string
	maxRounds  int
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:          "searchgpt",
		Short:        "Answer questions using web search and page reading tools",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file (default searchgpt.yaml in ., ./config or $HOME/.searchgpt)")
	root.PersistentFlags().StringVar(&flags.provider, "provider", "", "model provider: openai or gemini")
	root.PersistentFlags().StringVar(&flags.model, "model", "", "model name (provider default when empty)")
	root.PersistentFlags().IntVar(&flags.maxRounds, "max-rounds", 0, "maximum tool-call rounds per answer")

	root.AddCommand(askCmd(flags), chatCmd(flags), serveCmd(flags))
	return root
}

// build loads the configuration, applies flag overrides and wires the agent.
func (f *rootFlags) build(cmd *cobra.Command, mutate ...func(*config.Config)) (*app.App, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.provider != "" {
		cfg.Provider = f.provider
	}
	if f.model != "" {
		cfg.Model = f.model
	}
	if f.maxRounds != 0 {
		cfg.Agent.MaxRounds = f.maxRounds
	}
	for _, m := range mutate {
		m(cfg)
	}

	a, err := app.Build(cfg, app.WithLogOutput(cmd.ErrOrStderr()))
	if err != nil {
		return nil, fmt.Errorf("searchgpt: %w", err)
	}
	return a, nil
}
