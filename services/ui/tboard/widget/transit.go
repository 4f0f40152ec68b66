package widget

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
	"github.com/rmrobinson/kiosk/services/transit"
)

// Transit is a widget that displays the groups of one board column.
type Transit struct {
	*tview.TextView

	app *tview.Application

	maxTrips int
}

// NewTransit creates a new transit widget showing at most maxTrips rows per group.
// It will not show any data until Refresh() is called to display the data.
func NewTransit(app *tview.Application, title string, maxTrips int) *Transit {
	t := &Transit{
		TextView: tview.NewTextView(),
		app:      app,
		maxTrips: maxTrips,
	}

	t.SetDynamicColors(true).
		SetWrap(false).
		SetBorder(true).
		SetTitle(title).
		SetTitleAlign(tview.AlignLeft)

	return t
}

// Refresh causes the transit data to be updated.
func (t *Transit) Refresh(groups []transit.BoardGroup) {
	text := renderGroups(groups, t.maxTrips)
	t.app.QueueUpdateDraw(func() {
		t.SetText(text)
	})
}

func renderGroups(groups []transit.BoardGroup, maxTrips int) string {
	var b strings.Builder
	for i, group := range groups {
		if i > 0 {
			b.WriteString("\n")
		}

		b.WriteString(lineBadge(group))
		if group.Direction != "" {
			b.WriteString(" " + group.Direction)
		}
		if !group.HasRealTimeData && !group.NoService() {
			b.WriteString(" [gray](horaires)[-]")
		}
		b.WriteString("\n")

		if group.NoService() {
			b.WriteString("  [gray]Pas de service[-]\n")
		}
		for j, trip := range group.Trips {
			if maxTrips > 0 && j >= maxTrips {
				break
			}
			fmt.Fprintf(&b, "  %-24s %s\n", tview.Escape(trip.Destination), tripTimeText(trip))
		}

		if group.FirstService != "" || group.LastService != "" {
			fmt.Fprintf(&b, "  [gray]1er %s  dernier %s[-]\n", group.FirstService, group.LastService)
		}
	}
	return b.String()
}
