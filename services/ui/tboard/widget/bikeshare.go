package widget

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
	"github.com/rmrobinson/kiosk/services/bikeshare"
)

// Bikeshare displays the availability at the tracked stations.
type Bikeshare struct {
	*tview.TextView

	app *tview.Application
}

// NewBikeshare creates a new bikeshare widget.
func NewBikeshare(app *tview.Application) *Bikeshare {
	b := &Bikeshare{
		TextView: tview.NewTextView(),
		app:      app,
	}

	b.SetDynamicColors(true).
		SetBorder(true).
		SetTitle("Vélib'").
		SetTitleAlign(tview.AlignLeft)

	return b
}

// Refresh replaces the displayed stations.
func (b *Bikeshare) Refresh(stations []*bikeshare.Station) {
	text := renderStations(stations)
	b.app.QueueUpdateDraw(func() {
		b.SetText(text)
	})
}

func renderStations(stations []*bikeshare.Station) string {
	var lines []string
	for _, station := range stations {
		if !station.Renting {
			lines = append(lines, tview.Escape(station.Name)+" [red]fermée[-]")
			continue
		}
		lines = append(lines, fmt.Sprintf("%s\n  %d méca  %d élec  %d places",
			tview.Escape(station.Name), station.Mechanical, station.Electric, station.FreeDocks))
	}
	return strings.Join(lines, "\n")
}
