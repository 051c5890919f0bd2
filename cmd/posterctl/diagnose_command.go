package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"poster-backend/internal/report"
	"poster-backend/internal/session"
)

func newDiagnoseCommand(d deps) *cobra.Command {
	var csvPath string
	var meetingID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Diagnose one poster from a CSV database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := os.ReadFile(csvPath)
			if err != nil {
				return fmt.Errorf("read csv: %w", err)
			}

			analyzer, err := d.buildAnalyzer(ctx, d.loadConfig())
			if err != nil {
				return err
			}

			svc := session.NewService(session.NewMemoryStore(0, nil), analyzer)
			st, err := svc.Create(ctx)
			if err != nil {
				return err
			}
			if _, err := svc.Upload(ctx, st.ID, string(data)); err != nil {
				return err
			}
			if _, err := svc.Submit(ctx, st.ID, meetingID); err != nil {
				if errors.Is(err, session.ErrRecordNotFound) {
					return errors.New(session.NotFoundMessage(meetingID))
				}
				return err
			}
			svc.Wait()

			st, err = svc.Get(ctx, st.ID)
			if err != nil {
				return err
			}
			if st.Status == session.StatusError {
				return errors.New(st.Error)
			}
			return printDiagnosis(cmd, st, asJSON)
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "Path to the poster CSV (meeting_id,content)")
	cmd.Flags().StringVar(&meetingID, "id", "", "Meeting ID to diagnose")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("csv")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func printDiagnosis(cmd *cobra.Command, st session.State, asJSON bool) error {
	if st.Result == nil || st.Current == nil {
		return errors.New("diagnosis produced no result")
	}
	preview := report.BuildPreview(st.Result.Poster, st.Current.ImageReference)
	if asJSON {
		return writeJSON(cmd, map[string]any{
			"meetingId":  st.Current.ID,
			"content":    st.Current.ImageReference,
			"outcome":    st.Result.Outcome,
			"reportText": st.Result.ReportText,
			"payload":    st.Result.Payload,
			"preview":    preview,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, st.Result.ReportText)
	fmt.Fprintln(out)
	if !preview.Ready {
		fmt.Fprintln(out, "No structured poster payload was returned.")
		return nil
	}
	rows := [][]string{
		{"Title", preview.Title},
		{"Subtitle", preview.Subtitle},
		{"Colors", preview.PrimaryColor + " / " + preview.SecondaryColor},
		{"Layout", preview.LayoutStyle},
		{"Time", preview.Time},
		{"Venue", preview.Venue},
		{"Website", preview.Website},
		{"Highlights", strings.Join(preview.Highlights, "; ")},
		{"Speakers", speakerNames(preview.Speakers)},
		{"Instructions", preview.Instructions},
		{"CTA", preview.CTAText},
	}
	fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
	return nil
}

func speakerNames(speakers []report.Speaker) string {
	names := make([]string, 0, len(speakers))
	for _, s := range speakers {
		if s.Title != "" {
			names = append(names, s.Name+" ("+s.Title+")")
			continue
		}
		names = append(names, s.Name)
	}
	return strings.Join(names, "; ")
}
