package cli

import (
	"fmt"
	"os"
	"strconv"

	"quizmaster/internal/domain"

	"github.com/spf13/cobra"
)

// NewQuestionsCmd groups the question bank subcommands.
func NewQuestionsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "questions",
		Aliases: []string{"q"},
		Short:   "Manage the question bank",
	}
	cmd.AddCommand(
		newQuestionsListCmd(opts),
		newQuestionsAddCmd(opts),
		newQuestionsEditCmd(opts),
		newQuestionsDeleteCmd(opts),
		newQuestionsExportSheetCmd(opts),
		newQuestionsImportSheetCmd(opts),
		newQuestionsAttachCmd(opts),
	)
	return cmd
}

func newQuestionsListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List questions in id order",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			fmt.Fprintln(cmd.OutOrStdout(), renderQuestions(rt.service.Questions.All(), rt.service.Config.Config()))
			return nil
		},
	}
}

type questionFlags struct {
	id        int
	text      string
	answer    string
	mediaType string
	mediaURL  string
}

func (f *questionFlags) bind(cmd *cobra.Command, idUsage string) {
	cmd.Flags().IntVar(&f.id, "id", 0, idUsage)
	cmd.Flags().StringVar(&f.text, "text", "", "question text")
	cmd.Flags().StringVar(&f.answer, "answer", "", "answer text")
	cmd.Flags().StringVar(&f.mediaType, "media-type", "", "media type: image or audio")
	cmd.Flags().StringVar(&f.mediaURL, "media-url", "", "media URL")
}

func parseMediaType(raw string) (domain.MediaType, error) {
	switch mt := domain.MediaType(raw); mt {
	case "", domain.MediaImage, domain.MediaAudio:
		return mt, nil
	}
	return "", fmt.Errorf("media type %q: %w", raw, domain.ErrUnsupportedMedia)
}

func newQuestionsAddCmd(opts *rootOptions) *cobra.Command {
	var f questionFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a question",
		RunE: func(cmd *cobra.Command, args []string) error {
			mt, err := parseMediaType(f.mediaType)
			if err != nil {
				return err
			}
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			var requested *int
			if cmd.Flags().Changed("id") {
				requested = &f.id
			}
			q, err := rt.service.Questions.Add(cmd.Context(), domain.QuestionDraft{
				Text: f.text, Answer: f.answer, MediaType: mt, MediaURL: f.mediaURL,
			}, requested)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("added question %d", q.ID)))
			return nil
		},
	}
	f.bind(cmd, "requested id (next free id at or above it is used)")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("answer")
	return cmd
}

func newQuestionsEditCmd(opts *rootOptions) *cobra.Command {
	var f questionFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a question, optionally moving it to a new id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("question id %q: %w", args[0], err)
			}
			mt, err := parseMediaType(f.mediaType)
			if err != nil {
				return err
			}
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			q, ok := rt.service.Questions.Get(oldID)
			if !ok {
				return fmt.Errorf("question %d: %w", oldID, domain.ErrQuestionNotFound)
			}
			flags := cmd.Flags()
			if flags.Changed("id") {
				q.ID = f.id
			}
			if flags.Changed("text") {
				q.Text = f.text
			}
			if flags.Changed("answer") {
				q.Answer = f.answer
			}
			if flags.Changed("media-type") {
				q.MediaType = mt
			}
			if flags.Changed("media-url") {
				q.MediaURL = f.mediaURL
			}
			if err := rt.service.Questions.Edit(cmd.Context(), oldID, q); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("saved question %d", q.ID)))
			return nil
		},
	}
	f.bind(cmd, "new id for the question")
	return cmd
}

func newQuestionsDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("question id %q: %w", args[0], err)
			}
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.service.Questions.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("deleted question %d", id)))
			return nil
		},
	}
}

func newQuestionsExportSheetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export-sheet [file]",
		Short: "Export questions to an XLSX workbook",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "questions.xlsx"
			if len(args) == 1 {
				path = args[0]
			}
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			data, err := rt.service.ExportSheet()
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write workbook: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("exported to "+path))
			return nil
		},
	}
}

func newQuestionsImportSheetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import-sheet <file>",
		Short: "Add questions from an XLSX workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open workbook: %w", err)
			}
			defer f.Close()
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			added, err := rt.service.ImportSheet(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("added %d questions", len(added))))
			return nil
		},
	}
}

func newQuestionsAttachCmd(opts *rootOptions) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "attach <id> <file>",
		Short: "Compress an image or WAV file and attach it to a question",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("question id %q: %w", args[0], err)
			}
			mt, err := parseMediaType(kind)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read media: %w", err)
			}
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			q, err := rt.service.AttachMedia(cmd.Context(), id, mt, data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(
				fmt.Sprintf("attached %s to question %d (%d bytes)", q.MediaType, q.ID, len(q.MediaURL))))
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "type", string(domain.MediaImage), "media type: image or audio")
	return cmd
}
