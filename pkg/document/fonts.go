package document

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"
)

var (
	//go:embed fonts/DejaVuSans.ttf
	sansRegular []byte
	//go:embed fonts/DejaVuSans-Bold.ttf
	sansBold []byte
	//go:embed fonts/DejaVuSansMono.ttf
	monoRegular []byte
)

const (
	familySans = "dejavusans"
	familyMono = "dejavumono"
)

// baseScripts are the scripts the embedded DejaVu faces cover. Common holds
// digits, punctuation and currency signs such as the rupee sign.
var baseScripts = []*unicode.RangeTable{
	unicode.Latin,
	unicode.Greek,
	unicode.Cyrillic,
	unicode.Common,
	unicode.Inherited,
}

var ErrInvalidScriptFont = errors.New("invalid script font")

// ScriptFont is a TrueType face used for every rune of one Unicode script,
// for example Noto Sans Devanagari for Hindi and Marathi text.
type ScriptFont struct {
	Script string
	Data   []byte
}

func (f ScriptFont) family() string {
	return "script" + strings.ToLower(f.Script)
}

// ParseScriptFonts reads a list of Script=path pairs separated by commas,
// e.g. "Devanagari=/fonts/NotoSansDevanagari-Regular.ttf". Script names are
// the ones in unicode.Scripts and are matched case-insensitively.
func ParseScriptFonts(list string) ([]ScriptFont, error) {
	var fonts []ScriptFont

	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		name, path, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q is not Script=path", ErrInvalidScriptFont, item)
		}

		script, ok := lookupScript(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("%w: unknown script %q", ErrInvalidScriptFont, name)
		}

		data, err := os.ReadFile(strings.TrimSpace(path))
		if err != nil {
			return nil, fmt.Errorf("read %s font: %w", script, err)
		}
		if !isTrueType(data) {
			return nil, fmt.Errorf("%w: %s is not a TrueType font", ErrInvalidScriptFont, path)
		}

		fonts = append(fonts, ScriptFont{Script: script, Data: data})
	}

	return fonts, nil
}

func lookupScript(name string) (string, bool) {
	for script := range unicode.Scripts {
		if strings.EqualFold(script, name) {
			return script, true
		}
	}
	return "", false
}

// isTrueType accepts glyf-based faces only. CFF outlines ("OTTO") cannot be
// subset by fpdf.
func isTrueType(data []byte) bool {
	return len(data) > 4 &&
		(bytes.Equal(data[:4], []byte{0, 1, 0, 0}) || bytes.Equal(data[:4], []byte("true")))
}

type run struct {
	family string
	text   string
}

// fontSet routes runes to the embedded faces or to a script font and keeps
// track of scripts nothing could draw.
type fontSet struct {
	scripts []ScriptFont
	missing map[string]bool
}

func newFontSet(scripts []ScriptFont) *fontSet {
	return &fontSet{scripts: scripts, missing: map[string]bool{}}
}

// runs splits text into pieces that share a font family. Whitespace and
// combining marks stay with the run before them so words are not broken.
func (fs *fontSet) runs(base, text string) []run {
	var (
		out     []run
		current strings.Builder
		family  = base
	)

	for _, r := range text {
		next := fs.familyFor(base, r)
		if next == "" {
			next = family
		}
		if next != family && current.Len() > 0 {
			out = append(out, run{family: family, text: current.String()})
			current.Reset()
		}
		family = next
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		out = append(out, run{family: family, text: current.String()})
	}

	return out
}

// familyFor returns "" for runes that can be drawn by whatever run they
// follow.
func (fs *fontSet) familyFor(base string, r rune) string {
	if unicode.IsSpace(r) || unicode.Is(unicode.Inherited, r) {
		return ""
	}

	for _, f := range fs.scripts {
		if unicode.Is(unicode.Scripts[f.Script], r) {
			return f.family()
		}
	}

	if !unicode.In(r, baseScripts...) {
		fs.missing[scriptOf(r)] = true
	}
	return base
}

func (fs *fontSet) missingScripts() []string {
	if len(fs.missing) == 0 {
		return nil
	}
	out := make([]string, 0, len(fs.missing))
	for s := range fs.missing {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func scriptOf(r rune) string {
	for name, table := range unicode.Scripts {
		if unicode.Is(table, r) {
			return name
		}
	}
	return "Unknown"
}
