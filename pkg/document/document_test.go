package document

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf16"

	"ScamSOS/internal/entity"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

func sampleComplaint(situation string) entity.Complaint {
	return entity.Complaint{
		ID:           "01HZXCOMPLAINT",
		Name:         "Asha Rao",
		Contact:      "+919800000000",
		Address:      "12 MG Road, Bengaluru",
		Category:     "OPB",
		Situation:    situation,
		CallerNumber: "+918000000001",
		AWBNumber:    "AWB123456",
		Amount:       "INR 4,999",
		FiledAt:      time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func pdfPageCount(t *testing.T, data []byte) int {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	return r.NumPage()
}

// pdfText collects the strings shown on every page. Text set in the UTF-8
// fonts is written as UTF-16BE code units, so the operands are decoded
// directly instead of through the font's ToUnicode map.
func pdfText(t *testing.T, data []byte) string {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		pdf.Interpret(page.V.Key("Contents"), func(stk *pdf.Stack, op string) {
			n := stk.Len()
			args := make([]pdf.Value, n)
			for j := n - 1; j >= 0; j-- {
				args[j] = stk.Pop()
			}
			if op != "Tj" || n != 1 {
				return
			}
			raw := []byte(args[0].RawString())
			units := make([]uint16, 0, len(raw)/2)
			for j := 0; j+1 < len(raw); j += 2 {
				units = append(units, uint16(raw[j])<<8|uint16(raw[j+1]))
			}
			b.WriteString(string(utf16.Decode(units)))
			b.WriteByte('\n')
		})
	}
	return b.String()
}

func TestPDFKeepsNonLatinText(t *testing.T) {
	c := sampleComplaint("Caller said मेरा पार्सल रुका है and asked for ₹5000 via UPI")
	c.Name = "आशा राव"
	c.Address = "Straße 5, Jalandhar"
	c.Amount = "₹5,000"

	doc, err := NewPDFRenderer().Render(c)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	text := pdfText(t, doc.Data)
	for _, want := range []string{"आशा राव", "पार्सल", "₹5000", "₹5,000", "Straße", "Scam Complaint Report", "Page 1 of 1"} {
		if !strings.Contains(text, want) {
			t.Errorf("PDF text lost %q:\n%s", want, text)
		}
	}

	if len(doc.MissingScripts) != 1 || doc.MissingScripts[0] != "Devanagari" {
		t.Fatalf("missing scripts = %v, want [Devanagari]", doc.MissingScripts)
	}
}

func TestPDFUsesConfiguredScriptFont(t *testing.T) {
	c := sampleComplaint("मेरा पार्सल रुका है")
	c.Name = "आशा राव"

	// Any TrueType face exercises the routing; glyph coverage is not checked.
	doc, err := NewPDFRenderer(ScriptFont{Script: "Devanagari", Data: sansRegular}).Render(c)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(doc.MissingScripts) != 0 {
		t.Fatalf("missing scripts = %v, want none", doc.MissingScripts)
	}

	text := pdfText(t, doc.Data)
	for _, want := range []string{"आशा राव", "मेरा पार्सल रुका है"} {
		if !strings.Contains(text, want) {
			t.Errorf("PDF text lost %q", want)
		}
	}
}

func TestPDFShortComplaintFitsOnePage(t *testing.T) {
	doc, err := NewPDFRenderer().Render(sampleComplaint("A caller claimed my parcel was held at customs."))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if doc.FileName != "complaint-01HZXCOMPLAINT.pdf" || doc.ContentType != "application/pdf" {
		t.Fatalf("unexpected document metadata: %s %s", doc.FileName, doc.ContentType)
	}
	if !bytes.HasPrefix(doc.Data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
	if n := pdfPageCount(t, doc.Data); n != 1 {
		t.Fatalf("expected 1 page, got %d", n)
	}
}

func TestPDFLongNarrativeContinuesOnNextPages(t *testing.T) {
	situation := strings.Repeat("The caller knew my name and address and said a parcel in my name contained illegal items. ", 150)

	doc, err := NewPDFRenderer().Render(sampleComplaint(situation))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if n := pdfPageCount(t, doc.Data); n < 2 {
		t.Fatalf("expected the narrative to span several pages, got %d", n)
	}
}

func TestXLSXCarriesFieldsAndWrappedNarrative(t *testing.T) {
	c := sampleComplaint(strings.Repeat("word ", 60))
	c.CallSummary = "Agent confirmed the victim transferred money."

	doc, err := NewXLSXRenderer().Render(c)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if doc.FileName != "complaint-01HZXCOMPLAINT.xlsx" {
		t.Fatalf("unexpected file name %s", doc.FileName)
	}

	f, err := excelize.OpenReader(bytes.NewReader(doc.Data))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}

	values := map[string]string{}
	for _, row := range rows {
		if len(row) == 2 {
			values[row[0]] = row[1]
		}
	}

	for label, want := range map[string]string{
		"Name":            "Asha Rao",
		"Contact":         "+919800000000",
		"Category":        "OPB",
		"Scammer contact": "+918000000001",
		"AWB number":      "AWB123456",
		"Amount":          "INR 4,999",
		"Call summary":    "Agent confirmed the victim transferred money.",
	} {
		if values[label] != want {
			t.Fatalf("%s: expected %q, got %q", label, want, values[label])
		}
	}

	situation := values["Situation"]
	if !strings.Contains(situation, "\n") {
		t.Fatalf("expected wrapped narrative, got %q", situation)
	}
	for _, line := range strings.Split(situation, "\n") {
		if len(line) > NarrativeWidth {
			t.Fatalf("narrative line too wide: %q", line)
		}
	}
}

func TestXLSXOmitsCallSummaryWhenAbsent(t *testing.T) {
	doc, err := NewXLSXRenderer().Render(sampleComplaint("short"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(doc.Data))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()

	rows, _ := f.GetRows(xlsxSheet)
	for _, row := range rows {
		if len(row) > 0 && row[0] == "Call summary" {
			t.Fatalf("call summary row present without an analyzed call")
		}
	}
}

func TestNewRenderer(t *testing.T) {
	if _, err := NewRenderer(""); err != nil {
		t.Fatalf("empty format should default to pdf: %v", err)
	}
	if _, err := NewRenderer("XLSX"); err != nil {
		t.Fatalf("format should be case-insensitive: %v", err)
	}
	if _, err := NewRenderer("docx"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
