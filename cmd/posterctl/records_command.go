package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"poster-backend/internal/records"
)

func newRecordsCommand() *cobra.Command {
	var csvPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "records",
		Short: "Parse a poster CSV and list its records",
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := loadRecords(csvPath)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, recs)
			}
			rows := make([][]string, 0, len(recs))
			for i, rec := range recs {
				rows = append(rows, []string{strconv.Itoa(i + 1), rec.ID, rec.ImageReference})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Meeting ID", "Content"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			fmt.Fprintf(cmd.OutOrStdout(), "DATABASE: %d ENTRIES\n", len(recs))
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "Path to the poster CSV (meeting_id,content)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}

func loadRecords(path string) ([]records.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records.Parse(string(data))
}
