package widget

import (
	"context"
	"time"

	"github.com/gdamore/tcell"
	"github.com/rivo/tview"
)

// Time is a widget to display the time for the current location.
type Time struct {
	*tview.TextView

	app *tview.Application

	location *time.Location
}

// NewTime creates a new time widget using the supplied timezone.
func NewTime(app *tview.Application, location *time.Location) *Time {
	t := &Time{
		TextView: tview.NewTextView(),
		app:      app,
		location: location,
	}

	t.SetTextAlign(tview.AlignCenter).
		SetTextColor(tcell.ColorLime).
		SetBorder(true).
		SetTitle(location.String())

	return t
}

// Run updates the clock every second until the context is cancelled.
func (t *Time) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		t.app.QueueUpdateDraw(func() {
			now := time.Now().In(t.location)
			t.SetText(now.Format("Mon 02 Jan") + "\n" + now.Format("15:04:05"))
		})

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
