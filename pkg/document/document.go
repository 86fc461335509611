package document

import (
	"errors"
	"strings"

	"ScamSOS/internal/entity"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

var ErrUnsupportedFormat = errors.New("unsupported document format")

// Document is a rendered complaint ready to be sent or archived.
type Document struct {
	FileName    string
	ContentType string
	Data        []byte

	// MissingScripts names the scripts in the complaint that no loaded font
	// has glyphs for. The text is still in the document and extractable,
	// but those runes print as blank boxes.
	MissingScripts []string
}

type Renderer interface {
	Render(complaint entity.Complaint) (*Document, error)
}

// NewRenderer picks a renderer by format name. An empty name means PDF.
// scripts are only used by the PDF renderer.
func NewRenderer(format string, scripts ...ScriptFont) (Renderer, error) {
	switch Format(strings.ToLower(strings.TrimSpace(format))) {
	case "", FormatPDF:
		return NewPDFRenderer(scripts...), nil
	case FormatXLSX:
		return NewXLSXRenderer(), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

type field struct {
	label string
	value string
}

// complaintFields lists the header fields in the order both renderers use.
// Optional fields are shown as "-" so the layout stays stable.
func complaintFields(c entity.Complaint) []field {
	return []field{
		{"Reference", c.ID},
		{"Filed at", c.FiledAt.Format("02 Jan 2006 15:04 MST")},
		{"Name", c.Name},
		{"Contact", c.Contact},
		{"Address", c.Address},
		{"Category", orDash(c.Category)},
		{"Scammer contact", orDash(c.CallerNumber)},
		{"AWB number", orDash(c.AWBNumber)},
		{"Amount", orDash(c.Amount)},
	}
}

func fileName(c entity.Complaint, ext string) string {
	id := c.ID
	if id == "" {
		id = "draft"
	}
	return "complaint-" + id + "." + ext
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
