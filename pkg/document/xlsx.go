package document

import (
	"fmt"
	"strings"

	"ScamSOS/internal/entity"

	"github.com/xuri/excelize/v2"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	xlsxSheet       = "Complaint"
)

type xlsxRenderer struct{}

func NewXLSXRenderer() Renderer {
	return &xlsxRenderer{}
}

// Render writes one field/value row per field on a single sheet. The
// narrative cells hold the wrapped lines joined by newlines.
func (r *xlsxRenderer) Render(c entity.Complaint) (*Document, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	wrapped, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return nil, err
	}

	rows := [][2]string{{"Field", "Value"}}
	for _, fl := range complaintFields(c) {
		rows = append(rows, [2]string{fl.label, fl.value})
	}
	rows = append(rows, [2]string{"Situation", strings.Join(Wrap(c.Situation, NarrativeWidth), "\n")})
	if c.CallSummary != "" {
		rows = append(rows, [2]string{"Call summary", strings.Join(Wrap(c.CallSummary, NarrativeWidth), "\n")})
	}

	for i, row := range rows {
		n := i + 1
		if err := f.SetCellValue(xlsxSheet, fmt.Sprintf("A%d", n), row[0]); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(xlsxSheet, fmt.Sprintf("B%d", n), row[1]); err != nil {
			return nil, err
		}
	}

	last := len(rows)
	if err := f.SetCellStyle(xlsxSheet, "A1", "B1", header); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(xlsxSheet, "B2", fmt.Sprintf("B%d", last), wrapped); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(xlsxSheet, "A", "A", 20); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(xlsxSheet, "B", "B", NarrativeWidth+4); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}

	return &Document{
		FileName:    fileName(c, string(FormatXLSX)),
		ContentType: xlsxContentType,
		Data:        buf.Bytes(),
	}, nil
}
