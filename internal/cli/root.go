package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	port       string
	yes        bool
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "quizmaster",
		Short:         "Quiz show host: question grid, timer, teams and scores",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&opts.port, "port", "", "port to listen on (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.yes, "yes", "y", false, "answer yes to confirmation prompts")

	cmd.AddCommand(NewServeCmd(opts))
	cmd.AddCommand(NewMigrateCmd(opts))
	cmd.AddCommand(NewExportCmd(opts))
	cmd.AddCommand(NewImportCmd(opts))
	cmd.AddCommand(NewResetCmd(opts))
	cmd.AddCommand(NewQuestionsCmd(opts))
	cmd.AddCommand(NewTeamsCmd(opts))
	cmd.AddCommand(NewProgressCmd(opts))
	cmd.AddCommand(NewGridCmd(opts))
	return cmd
}

// confirmer approves destructive commands from --yes or a y/N prompt.
type confirmer struct {
	yes bool
	in  io.Reader
	out io.Writer
}

func (opts *rootOptions) confirmer(cmd *cobra.Command) confirmer {
	return confirmer{yes: opts.yes, in: cmd.InOrStdin(), out: cmd.ErrOrStderr()}
}
