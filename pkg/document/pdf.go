package document

import (
	"bytes"
	"fmt"

	"ScamSOS/internal/entity"

	"github.com/go-pdf/fpdf"
)

const (
	pdfContentType = "application/pdf"
	pdfLineHeight  = 6.0
	pdfLabelWidth  = 45.0
	pdfMargin      = 15.0

	// fieldWidth keeps a field value inside the value column at 10pt.
	fieldWidth = 55
)

type pdfRenderer struct {
	scripts []ScriptFont
}

// NewPDFRenderer builds a PDF renderer. Text is set in the embedded DejaVu
// faces; runes of a script listed in scripts use that script's font instead.
func NewPDFRenderer(scripts ...ScriptFont) Renderer {
	return &pdfRenderer{scripts: scripts}
}

// Render lays the complaint out on A4 pages. Long narratives flow onto
// following pages through the automatic page break.
func (r *pdfRenderer) Render(c entity.Complaint) (*Document, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Scam complaint "+c.ID, true)
	pdf.SetCreator("ScamSOS", true)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetCellMargin(0)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")

	pdf.AddUTF8FontFromBytes(familySans, "", sansRegular)
	pdf.AddUTF8FontFromBytes(familySans, "B", sansBold)
	pdf.AddUTF8FontFromBytes(familyMono, "", monoRegular)
	for _, f := range r.scripts {
		pdf.AddUTF8FontFromBytes(f.family(), "", f.Data)
		pdf.AddUTF8FontFromBytes(f.family(), "B", f.Data)
	}

	fonts := newFontSet(r.scripts)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(familySans, "", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont(familySans, "B", 16)
	pdf.CellFormat(0, 10, "Scam Complaint Report", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	for _, f := range complaintFields(c) {
		pdf.SetFont(familySans, "B", 10)
		pdf.CellFormat(pdfLabelWidth, pdfLineHeight, f.label, "", 0, "L", false, 0, "")

		for i, line := range Wrap(f.value, fieldWidth) {
			if i > 0 {
				pdf.SetX(pdfMargin + pdfLabelWidth)
			}
			writeLine(pdf, fonts, familySans, "", 10, pdfLineHeight, line)
		}
	}

	r.section(pdf, fonts, "Situation", c.Situation)

	if c.CallSummary != "" {
		r.section(pdf, fonts, "Call summary", c.CallSummary)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}

	return &Document{
		FileName:       fileName(c, string(FormatPDF)),
		ContentType:    pdfContentType,
		Data:           buf.Bytes(),
		MissingScripts: fonts.missingScripts(),
	}, nil
}

func (r *pdfRenderer) section(pdf *fpdf.Fpdf, fonts *fontSet, title, body string) {
	pdf.Ln(4)
	pdf.SetFont(familySans, "B", 12)
	pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	pdf.Ln(1)

	for _, line := range Wrap(body, NarrativeWidth) {
		writeLine(pdf, fonts, familyMono, "", 9, pdfLineHeight-1, line)
	}
}

// writeLine prints one pre-wrapped line, switching fonts between runs, and
// moves to the next line.
func writeLine(pdf *fpdf.Fpdf, fonts *fontSet, base, style string, size, h float64, text string) {
	for _, rn := range fonts.runs(base, text) {
		pdf.SetFont(rn.family, style, size)
		pdf.CellFormat(pdf.GetStringWidth(rn.text), h, rn.text, "", 0, "L", false, 0, "")
	}
	pdf.Ln(h)
}
