package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-sms/internal/api"
	"github.com/Veraticus/spice-sms/internal/cli"
	"github.com/Veraticus/spice-sms/internal/config"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the detector over HTTP",
		Long: `Start a JSON API so a phone-side forwarder can post notifications as they
arrive. Found transactions can be queued and reviewed through the same API.`,
		RunE: runServe,
	}

	cmd.Flags().String("address", config.DefaultServerAddress, "address to listen on")
	_ = viper.BindPFlag(config.KeyServerAddress, cmd.Flags().Lookup("address"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Server")
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	ctx = handler.HandleInterrupts(ctx, "")

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle("Listening on http://"+s.cfg.ServerAddress))
	return api.New(s.detector).Listen(ctx, s.cfg.ServerAddress)
}
