package widget

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
	"github.com/rmrobinson/kiosk/services/racing"
)

// Racing lists the next races of the day.
type Racing struct {
	*tview.TextView

	app *tview.Application
}

// NewRacing creates a new racing widget.
func NewRacing(app *tview.Application) *Racing {
	r := &Racing{
		TextView: tview.NewTextView(),
		app:      app,
	}

	r.SetBorder(true).
		SetTitle("Courses").
		SetTitleAlign(tview.AlignLeft)

	return r
}

// Refresh replaces the displayed races.
func (r *Racing) Refresh(races []racing.Race) {
	text := renderRaces(races)
	r.app.QueueUpdateDraw(func() {
		r.SetText(text)
	})
}

func renderRaces(races []racing.Race) string {
	if len(races) == 0 {
		return "Aucune course"
	}

	var lines []string
	for _, race := range races {
		lines = append(lines, fmt.Sprintf("%s %s %s", race.Start.Format("15:04"), race.Ref, race.Name))
	}
	return strings.Join(lines, "\n")
}
