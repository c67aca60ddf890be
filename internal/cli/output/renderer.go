// Package output renders command results as terminal tables, markdown,
// CSV, JSON or YAML.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Mode selects the output format.
type Mode string

// Output modes.
const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
	ModeCSV      Mode = "csv"
	ModeYAML     Mode = "yaml"
)

// Modes lists every accepted mode.
var Modes = []Mode{ModeAuto, ModeText, ModeMarkdown, ModeJSON, ModeCSV, ModeYAML}

// Renderer writes command output in the selected mode.
type Renderer struct {
	w      io.Writer
	errW   io.Writer
	mode   Mode
	isTTY  bool
	styles Styles
}

// NewRenderer creates a renderer. ModeAuto resolves to text on a terminal
// and markdown otherwise.
func NewRenderer(w, errW io.Writer, mode Mode) *Renderer {
	return NewRendererWithTTY(w, errW, isTerminal(w), mode)
}

// NewRendererWithTTY creates a renderer with an explicit terminal state.
func NewRendererWithTTY(w, errW io.Writer, tty bool, mode Mode) *Renderer {
	styles := PlainStyles()
	if tty {
		styles = DefaultStyles()
	}
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{w: w, errW: errW, mode: mode, isTTY: tty, styles: styles}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// EffectiveMode returns the resolved output mode.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool {
	return r.isTTY
}

// Styles returns the active styles.
func (r *Renderer) Styles() Styles {
	return r.styles
}

// Writer returns the primary output writer.
func (r *Renderer) Writer() io.Writer {
	return r.w
}

// Println writes a line to the output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.w, a...)
}

// Printf writes formatted text to the output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.w, format, a...)
}

// Structured reports whether the mode is a machine format. In that case v is
// encoded and the caller skips human rendering.
func (r *Renderer) Structured(v any) (bool, error) {
	switch r.EffectiveMode() {
	case ModeJSON:
		return true, r.JSON(v)
	case ModeYAML:
		return true, r.YAML(v)
	default:
		return false, nil
	}
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	_, err = fmt.Fprintln(r.w, string(data))
	return err
}

// YAML writes v as YAML.
func (r *Renderer) YAML(v any) error {
	enc := yaml.NewEncoder(r.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

// Header writes a section header. CSV output has no headers.
func (r *Renderer) Header(level int, text string) {
	switch r.EffectiveMode() {
	case ModeMarkdown:
		r.Println(FormatHeader(level, text))
	case ModeText:
		r.Println(r.styles.Header.Render(text))
	}
}

// KeyValue writes one labelled value.
func (r *Renderer) KeyValue(key, value string) {
	switch r.EffectiveMode() {
	case ModeMarkdown:
		r.Println(FormatKeyValue(key, value))
	case ModeCSV:
		r.Println(key + "," + value)
	default:
		r.Printf("%s %s\n", r.styles.Key.Render(key+":"), value)
	}
}

// Success writes a success message.
func (r *Renderer) Success(msg string) {
	r.status("✓", msg, r.styles.Success)
}

// Warning writes a warning message.
func (r *Renderer) Warning(msg string) {
	r.status("!", msg, r.styles.Warning)
}

// Muted writes de-emphasized text.
func (r *Renderer) Muted(msg string) {
	if r.EffectiveMode() == ModeCSV {
		return
	}
	r.Println(r.styles.Muted.Render(msg))
}

// Error writes an error message to the error writer.
func (r *Renderer) Error(msg string) {
	_, _ = fmt.Fprintln(r.errW, r.styles.Error.Render("✗ "+msg))
}

func (r *Renderer) status(icon, msg string, style interface{ Render(...string) string }) {
	if r.EffectiveMode() == ModeCSV {
		return
	}
	r.Println(style.Render(icon + " " + msg))
}

// Table writes rows under the given columns in the effective mode.
// Cells are formatted with FormatValue.
func (r *Renderer) Table(columns []string, rows [][]any) {
	if len(rows) == 0 && r.EffectiveMode() != ModeCSV {
		r.Muted("(0 rows)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	t.AppendHeader(header)

	for _, row := range rows {
		out := make(table.Row, len(row))
		for i, v := range row {
			out[i] = FormatValue(v)
		}
		t.AppendRow(out)
	}

	switch r.EffectiveMode() {
	case ModeMarkdown:
		t.RenderMarkdown()
		r.Println()
	case ModeCSV:
		t.RenderCSV()
	default:
		t.Render()
		r.Muted(fmt.Sprintf("(%d rows)", len(rows)))
	}
}
