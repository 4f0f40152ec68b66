package widget

import (
	"strings"

	"github.com/gdamore/tcell"
	"github.com/rivo/tview"
)

// Debug is a widget to display the most recent log lines.
type Debug struct {
	*tview.TextView

	app *tview.Application

	maxLines int
	lines    []string
}

// NewDebug creates a new debug widget keeping at most maxLines lines.
func NewDebug(app *tview.Application, maxLines int) *Debug {
	d := &Debug{
		TextView: tview.NewTextView(),
		app:      app,
		maxLines: maxLines,
	}

	d.SetTextAlign(tview.AlignLeft).
		SetTextColor(tcell.ColorBlue).
		SetBorder(true).
		SetTitle("Debug")

	return d
}

// Append adds the supplied contents to the widget, dropping the oldest lines past the limit.
func (d *Debug) Append(contents string) {
	d.app.QueueUpdateDraw(func() {
		for _, line := range strings.Split(strings.TrimRight(contents, "\n"), "\n") {
			d.lines = append(d.lines, line)
		}
		if len(d.lines) > d.maxLines {
			d.lines = d.lines[len(d.lines)-d.maxLines:]
		}
		d.SetText(strings.Join(d.lines, "\n"))
	})
}
