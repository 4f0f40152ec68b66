package widget

import (
	"strings"

	"github.com/rivo/tview"
	"github.com/rmrobinson/kiosk/services/transit"
)

// Messages displays the current traffic messages.
type Messages struct {
	*tview.TextView

	app *tview.Application
}

// NewMessages creates a new traffic message widget.
func NewMessages(app *tview.Application) *Messages {
	m := &Messages{
		TextView: tview.NewTextView(),
		app:      app,
	}

	m.SetDynamicColors(true).
		SetWordWrap(true).
		SetBorder(true).
		SetTitle("Info trafic").
		SetTitleAlign(tview.AlignLeft)

	return m
}

// Refresh replaces the displayed messages.
func (m *Messages) Refresh(messages []transit.TrafficMessage) {
	text := renderMessages(messages)
	m.app.QueueUpdateDraw(func() {
		m.SetText(text)
	})
}

func renderMessages(messages []transit.TrafficMessage) string {
	var lines []string
	for _, msg := range messages {
		color := "white"
		switch msg.Severity {
		case transit.SeverityOK:
			color = "green"
		case transit.SeverityWarning:
			color = "orange"
		}

		line := "[" + color + "]" + tview.Escape(msg.Text) + "[-]"
		if msg.LineLabel != "" {
			line = "[::b]" + tview.Escape(msg.LineLabel) + "[::-] " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
