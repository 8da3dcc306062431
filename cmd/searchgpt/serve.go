package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leofalp/searchgpt/internal/config"
	"github.com/leofalp/searchgpt/internal/server"
)

func serveCmd(flags *rootFlags) *cobra.Command {
	var addr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := flags.build(cmd, func(cfg *config.Config) {
				if addr != "" {
					cfg.Server.Address = addr
				}
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.New(a).ListenAndServe(ctx)
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.address)")
	return serve
}
