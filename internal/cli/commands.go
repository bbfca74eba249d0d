package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pfrederiksen/masters-pool/internal/api"
	"github.com/pfrederiksen/masters-pool/internal/logger"
	"github.com/spf13/cobra"
)

func newScoreboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "scoreboard",
		Aliases: []string{"competition"},
		Short:   "Show competitors ranked by the summed score of their picks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.svc.Scoreboard(cmd.Context())
			if err != nil {
				return err
			}
			return WriteScoreboard(cmd.OutOrStdout(), entries, a.format, flagVerbose)
		},
	}
}

func newFieldCmd(a *app) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "field",
		Short: "Show every tracked player ranked by score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.svc.FullField(cmd.Context(), refresh)
			if err != nil {
				return err
			}
			return WriteField(cmd.OutOrStdout(), records, a.format, flagVerbose)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", true, "Refresh recorded scores first when the cached leaderboard has expired")
	return cmd
}

func newRefreshCmd(a *app) *cobra.Command {
	var exitCode bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the leaderboard now and record score changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.svc.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			if err := WriteRefresh(cmd.OutOrStdout(), res, a.format, flagVerbose); err != nil {
				return err
			}
			if exitCode && len(res.Changes) > 0 {
				return errChanges
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "Exit with status 2 when any score changed")
	return cmd
}

func newPlayersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "players",
		Short: "List the players on the current leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			players, err := a.svc.AvailablePlayers(cmd.Context())
			if err != nil {
				return err
			}
			return WritePlayers(cmd.OutOrStdout(), players, a.format)
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pool as a JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := api.NewServer(a.svc,
				api.WithMetrics(a.metrics),
				api.WithAllowedOrigins(a.cfg.AllowedOrigins),
			)
			err := srv.ListenAndServe(ctx, addr)
			logger.Info("API server stopped", logger.Fields{"addr": addr})
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}
