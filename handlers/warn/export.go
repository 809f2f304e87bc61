package warn

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"community-bot/model"
)

const exportSheet = "Warnings"

var exportColumns = []string{"ID", "User ID", "Moderator ID", "Level", "Points", "Reason", "Evidence", "Active", "Counts", "Created At", "Expires At"}

// ExportWarnings renders warnings as an xlsx workbook, one row per warning.
// The Counts column tells whether the warning still adds to the point total at now.
func ExportWarnings(list []model.Warning, now time.Time) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, col); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}

	for idx := range list {
		w := &list[idx]
		expires := ""
		if w.ExpiresAt != nil {
			expires = w.ExpiresAt.UTC().Format(time.DateTime)
		}
		row := []any{
			w.ID, w.UserID, w.ModeratorID, string(w.Level), w.Points, w.Reason, w.Evidence,
			w.Active, w.CountsAt(now), w.CreatedAt.UTC().Format(time.DateTime), expires,
		}
		cell, _ := excelize.CoordinatesToCellName(1, idx+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write warning %s: %w", w.ID, err)
		}
	}

	for i := range exportColumns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(exportSheet, col, col, 18)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

func exportFileName(guildID string, now time.Time) string {
	return fmt.Sprintf("warnings-%s-%s.xlsx", guildID, now.UTC().Format("20060102"))
}
