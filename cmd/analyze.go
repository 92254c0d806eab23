package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Vovarama1992/dislike-coach/internal/coach"
)

type analyzeFlags struct {
	file    string
	comment string
	hint    string
}

func newAnalyzeCmd() *cobra.Command {
	var f analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run one analysis and print the result as JSON",
		Long: `Run one analysis against the configured model and print the result.

The request is an AnalysisRequest JSON document read from --file, or from
stdin when --file is "-" or empty. --comment and --hint override the
user_comment and task_hint fields of the document.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := readInput(cmd, f.file)
			if err != nil {
				return err
			}
			req, err := coach.DecodeRequest(raw)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("comment") {
				req.UserComment = &f.comment
			}
			if cmd.Flags().Changed("hint") {
				req.TaskHint = &f.hint
			}

			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			res, err := a.svc.Analyze(cmd.Context(), req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	cmd.Flags().StringVarP(&f.file, "file", "f", "", "request JSON file (default stdin)")
	cmd.Flags().StringVar(&f.comment, "comment", "", "why the reply was disliked")
	cmd.Flags().StringVar(&f.hint, "hint", "", "task domain hint")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	return raw, nil
}
