package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/series-publisher/internal/db"
)

// Sheet names used in the workbook.
const (
	SummarySheet = "Summary"
	TopicsSheet  = "Topics"
)

var topicHeader = []interface{}{
	"Position", "Title", "Status", "Keywords", "Content Title", "Refined", "Tags",
	"Publish Status", "Post ID", "Attempts", "Retries", "Error", "References",
	"Top Reference", "Updated",
}

// Workbook builds the progress workbook for a report.
// The caller owns the returned file and must Close it.
func Workbook(r *Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name summary sheet: %w", err)
	}
	if _, err := f.NewSheet(TopicsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create topics sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSummary(f, r, bold); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeTopics(f, r, bold); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Write renders the report as xlsx into w.
func Write(w io.Writer, r *Report) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveAs renders the report as xlsx at path.
func SaveAs(path string, r *Report) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeSummary(f *excelize.File, r *Report, bold int) error {
	p := r.Plan
	rows := [][]interface{}{
		{"Resource", p.ResourceName},
		{"Kind", p.ResourceKind},
		{"Description", p.Description},
		{"Plan ID", p.ID.String()},
		{"Total Topics", p.TotalTopicCount},
		{"Completed", p.CompletedTopicCount},
		{"Progress %", fmt.Sprintf("%.1f", p.ProgressPercent())},
		{"Pending", r.Counts[db.TopicStatusPending]},
		{"Processing", r.Counts[db.TopicStatusProcessing]},
		{"Failed", r.Counts[db.TopicStatusFailed]},
		{"Created", p.CreatedAt.Format(time.RFC3339)},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}
	last := fmt.Sprintf("A%d", len(rows))
	if err := f.SetCellStyle(SummarySheet, "A1", last, bold); err != nil {
		return err
	}
	return f.SetColWidth(SummarySheet, "A", "B", 24)
}

func writeTopics(f *excelize.File, r *Report, bold int) error {
	if err := f.SetSheetRow(TopicsSheet, "A1", &topicHeader); err != nil {
		return fmt.Errorf("failed to write topic header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(topicHeader))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(TopicsSheet, "A1", lastCol+"1", bold); err != nil {
		return err
	}

	for i, row := range r.Rows {
		t := row.Topic
		values := []interface{}{
			t.Position,
			t.Title,
			t.Status,
			strings.Join(t.Keywords, ", "),
			row.ContentTitle,
			row.Refined,
			strings.Join(row.Tags, ", "),
			row.AttemptStatus,
			row.ExternalPostID,
			row.Attempts,
			row.RetryCount,
			row.AttemptError,
			row.References,
			row.TopReference,
			t.UpdatedAt.Format(time.RFC3339),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(TopicsSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write topic row %d: %w", t.Position, err)
		}
	}
	return f.SetColWidth(TopicsSheet, "B", "B", 40)
}
