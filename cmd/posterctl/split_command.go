package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"poster-backend/internal/report"
)

func newSplitCommand() *cobra.Command {
	var imageURL string

	cmd := &cobra.Command{
		Use:   "split [FILE|-]",
		Short: "Split saved model output into report text and poster payload",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			res := report.Split(raw)
			out := map[string]any{
				"outcome":     res.Outcome,
				"displayText": res.DisplayText,
				"payload":     res.Payload,
				"preview":     report.BuildPreview(res.Poster, imageURL),
			}
			if res.Reason != nil {
				out["reason"] = res.Reason.Error()
			}
			return writeJSON(cmd, out)
		},
	}
	cmd.Flags().StringVar(&imageURL, "image", "", "Poster image reference used for the focus crop")
	return cmd
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}
