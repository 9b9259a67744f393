package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewProgressCmd groups the visited-question subcommands.
func NewProgressCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Inspect or reset visited questions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show progress stats and visited ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderStats(rt.service.Grid().Stats))
			visited := rt.service.Progress.Visited()
			ids := make([]string, len(visited))
			for i, id := range visited {
				ids[i] = strconv.Itoa(id)
			}
			if len(ids) > 0 {
				fmt.Fprintln(out, mutedStyle.Render("visited"), strings.Join(ids, " "))
			}
			return nil
		},
	}, &cobra.Command{
		Use:   "reset",
		Short: "Clear all visited questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.service.ResetProgress(cmd.Context(), opts.confirmer(cmd)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("progress cleared"))
			return nil
		},
	})
	return cmd
}

// NewGridCmd prints the question grid grouped by round.
func NewGridCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "grid",
		Short: "Print the question grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			fmt.Fprint(cmd.OutOrStdout(), renderGrid(rt.service.Grid()))
			return nil
		},
	}
}
