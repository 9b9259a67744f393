package cli

import (
	"fmt"

	"quizmaster/internal/app"

	"github.com/spf13/cobra"
)

// NewTeamsCmd groups the scoreboard subcommands.
func NewTeamsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Manage teams and scores",
	}
	cmd.AddCommand(
		newTeamsListCmd(opts),
		newTeamsAddCmd(opts),
		newTeamsDeleteCmd(opts),
		newTeamsScoreCmd(opts),
		newTeamsQuickCmd(opts),
		newTeamsActiveCmd(opts),
	)
	return cmd
}

func newTeamsListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the scoreboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			board := rt.service.Teams.Scoreboard()
			if len(board.Standings) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("no teams"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStandings(board))
			return nil
		},
	}
}

func newTeamsAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a team with score 0",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			team, err := rt.service.AddTeam(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("added %s (%s)", team.Name, team.ID)))
			return nil
		},
	}
}

func newTeamsDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.service.DeleteTeam(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("deleted "+args[0]))
			return nil
		},
	}
}

func newTeamsScoreCmd(opts *rootOptions) *cobra.Command {
	var points int
	cmd := &cobra.Command{
		Use:   "score <id>",
		Short: "Add points to a team (use --points=-5 to subtract)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			team, err := rt.service.UpdateScore(cmd.Context(), args[0], points)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", team.Name, team.Score)
			return nil
		},
	}
	cmd.Flags().IntVar(&points, "points", 0, "score delta")
	_ = cmd.MarkFlagRequired("points")
	return cmd
}

func newTeamsQuickCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "quick <correct|bonus|penalty>",
		Short:     "Apply a configured quick-score delta to the active team",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(app.ScoreCorrect), string(app.ScoreBonus), string(app.ScorePenalty)},
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			team, err := rt.service.QuickScore(cmd.Context(), app.ScoreKind(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", team.Name, team.Score)
			return nil
		},
	}
}

func newTeamsActiveCmd(opts *rootOptions) *cobra.Command {
	var unset bool
	cmd := &cobra.Command{
		Use:   "active [id]",
		Short: "Show or select the active team",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			switch {
			case unset:
				if err := rt.service.SetActiveTeam(cmd.Context(), ""); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("no active team"))
				return nil
			case len(args) == 1:
				if err := rt.service.SetActiveTeam(cmd.Context(), args[0]); err != nil {
					return err
				}
			}
			team, ok := rt.service.Teams.ActiveTeam()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("no active team"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), activeStyle.Render(team.Name), team.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&unset, "clear", false, "clear the active team")
	return cmd
}
