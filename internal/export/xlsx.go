package export

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"github.com/supporthub/backend/internal/models"
)

const sheetName = "Feedbacks"

var headers = []string{"زمان", "نوع مشکل", "شهر", "مرکز", "شناسه/سیمکارت", "IP", "کارشناس", "توضیحات"}

// Workbook renders filtered feedback rows into a spreadsheet with the fixed
// column layout the shift leads hand around. authorNames maps user ids to
// display names; unknown authors fall back to the raw id.
func Workbook(records []models.Feedback, authorNames map[string]string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}

	for i, r := range records {
		row := []any{
			r.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			r.IssueType,
			deref(r.City),
			deref(r.CenterName),
			identifier(r),
			deref(r.CustomerIP),
			authorName(authorNames, r.CreatedBy),
			deref(r.Description),
		}
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}

	return f.WriteToBuffer()
}

// identifier picks whichever branch of the record is populated.
func identifier(r models.Feedback) string {
	if r.CustomerID != nil && *r.CustomerID != "" {
		return *r.CustomerID
	}
	if r.SimCardNumber != nil {
		return *r.SimCardNumber
	}
	return ""
}

func authorName(names map[string]string, userID string) string {
	if name, ok := names[userID]; ok && name != "" {
		return name
	}
	return userID
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
