package report

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	dErrors "frontera/pkg/domain-errors"
)

// ExportCSV writes the report workbook as CSV sections: a summary block,
// then the outstanding-issues block. Nothing is written if the aggregates
// cannot be computed, so a failed export never leaves a partial file.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	summary, err := s.Summarize(ctx)
	if err != nil {
		return err
	}
	issues, err := s.OutstandingIssues(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	rows := [][]string{
		{"section", "category", "total", "approved", "rejected", "pending", "complete", "incomplete"},
		statusRow("summary", "vehicles", summary.Vehicles),
		completionRow("summary", "tourist_vehicles", summary.TouristVehicles),
		statusRow("summary", "declarations", summary.Declarations),
		statusRow("summary", "food", summary.Food),
		statusRow("summary", "pet", summary.Pet),
		completionRow("summary", "minors", summary.Minors),
		{},
		{"section", "collection", "record_id", "label", "status", "date"},
	}
	for _, issue := range issues {
		rows = append(rows, []string{
			"issues", issue.Collection, issue.RecordID, issue.Label, issue.Status,
			issue.Date.Format(time.RFC3339),
		})
	}

	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to write report")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to write report")
	}

	s.metrics.IncReportGenerated()
	return nil
}

func statusRow(section, category string, c StatusCounts) []string {
	return []string{
		section, category,
		strconv.Itoa(c.Total), strconv.Itoa(c.Approved), strconv.Itoa(c.Rejected), strconv.Itoa(c.Pending),
		"", "",
	}
}

func completionRow(section, category string, c CompletionCounts) []string {
	return []string{
		section, category,
		strconv.Itoa(c.Total), "", "", "",
		strconv.Itoa(c.Complete), strconv.Itoa(c.Incomplete),
	}
}
