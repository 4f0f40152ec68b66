package widget

import (
	"fmt"

	"github.com/rmrobinson/kiosk/services/transit"
)

// tripTimeText is the right-hand column of a trip row.
func tripTimeText(trip transit.TripDisplay) string {
	if trip.Cancelled {
		return "[red]Supprimé[-]"
	}
	if trip.Source != transit.SourceLive {
		switch trip.ScheduleState {
		case transit.ScheduleFirst:
			return "1er " + trip.DisplayTime
		case transit.ScheduleEnded:
			return "demain " + trip.DisplayTime
		}
		if trip.WaitMinutes == nil {
			return "~" + trip.DisplayTime
		}
		return fmt.Sprintf("~%d min", *trip.WaitMinutes)
	}
	if trip.AtStop {
		return "[green]À quai[-]"
	}
	if trip.WaitMinutes == nil {
		return trip.DisplayTime
	}
	if *trip.WaitMinutes < 1 {
		return "[green]Proche[-]"
	}

	text := fmt.Sprintf("%d min", *trip.WaitMinutes)
	if trip.DelayMinutes != nil {
		text += fmt.Sprintf(" [orange]+%d[-]", *trip.DelayMinutes)
	}
	return text
}

// lineBadge renders the line code in its branding colors.
func lineBadge(group transit.BoardGroup) string {
	code := group.Meta.Code
	if code == "" {
		code = string(group.LineID)
	}
	if group.Meta.PrimaryColor == "" {
		return "[::b]" + code + "[::-]"
	}
	return fmt.Sprintf("[%s:%s:b] %s [-:-:-]", group.Meta.TextColor, group.Meta.PrimaryColor, code)
}
