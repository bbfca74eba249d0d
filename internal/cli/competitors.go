package cli

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/masters-pool/internal/competitor"
	"github.com/spf13/cobra"
)

func newCompetitorCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "competitor",
		Aliases: []string{"competitors"},
		Short:   "Manage pool competitors",
	}

	cmd.AddCommand(
		newCompetitorAddCmd(a),
		newCompetitorListCmd(a),
		newCompetitorEditCmd(a),
		newCompetitorRemoveCmd(a),
	)
	return cmd
}

func newCompetitorAddCmd(a *app) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "add NAME PLAYER1 PLAYER2 PLAYER3",
		Short: "Add a competitor with three player picks",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := competitor.New(args[0], [3]string{args[1], args[2], args[3]})
			if err != nil {
				return err
			}
			if check {
				if err := a.checkPicks(cmd, c.Players); err != nil {
					return err
				}
			}
			if err := a.store.AddCompetitor(c); err != nil {
				return fmt.Errorf("adding competitor: %w", err)
			}
			return WriteCompetitor(cmd.OutOrStdout(), c, "Added", a.format)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Reject picks that are not on the current leaderboard")
	return cmd
}

func newCompetitorListCmd(a *app) *cobra.Command {
	var sortFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List competitors and their picks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := parseSortOrder(sortFlag)
			if err != nil {
				return err
			}
			competitors, err := a.store.ListCompetitors()
			if err != nil {
				return fmt.Errorf("listing competitors: %w", err)
			}
			sortCompetitors(competitors, order)
			return WriteCompetitors(cmd.OutOrStdout(), competitors, a.format, flagVerbose)
		},
	}

	cmd.Flags().StringVar(&sortFlag, "sort", string(SortByAdded), "Sort order: added or name")
	return cmd
}

func newCompetitorEditCmd(a *app) *cobra.Command {
	var (
		name  string
		picks []string
		check bool
	)

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a competitor's name or picks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" && len(picks) == 0 {
				return fmt.Errorf("nothing to change: pass --name and/or three --pick flags")
			}
			if len(picks) != 0 && len(picks) != 3 {
				return fmt.Errorf("--pick must be given exactly 3 times, got %d", len(picks))
			}

			c, err := a.store.GetCompetitor(args[0])
			if err != nil {
				return err
			}
			if name != "" {
				c.Name = name
			}
			if len(picks) == 3 {
				copy(c.Players[:], picks)
			}
			c.Normalize()

			if check {
				if err := a.checkPicks(cmd, c.Players); err != nil {
					return err
				}
			}
			if err := a.store.UpdateCompetitor(c); err != nil {
				return fmt.Errorf("updating competitor: %w", err)
			}
			return WriteCompetitor(cmd.OutOrStdout(), c, "Updated", a.format)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New competitor name")
	cmd.Flags().StringArrayVar(&picks, "pick", nil, "Replacement player pick (repeat 3 times)")
	cmd.Flags().BoolVar(&check, "check", false, "Reject picks that are not on the current leaderboard")
	return cmd
}

func newCompetitorRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"rm", "delete"},
		Short:   "Remove a competitor",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.DeleteCompetitor(args[0]); err != nil {
				return err
			}
			if a.format == FormatJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"removed": args[0]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}
}

// checkPicks fails if any pick is missing from the current leaderboard
func (a *app) checkPicks(cmd *cobra.Command, picks [3]string) error {
	players, err := a.svc.AvailablePlayers(cmd.Context())
	if err != nil {
		return err
	}
	if len(players) == 0 {
		return fmt.Errorf("leaderboard unavailable; cannot check picks")
	}

	known := make(map[string]bool, len(players))
	for _, p := range players {
		known[p] = true
	}
	var unknown []string
	for _, p := range picks {
		if !known[p] {
			unknown = append(unknown, p)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: not on the leaderboard: %s", competitor.ErrInvalid, strings.Join(unknown, ", "))
	}
	return nil
}
