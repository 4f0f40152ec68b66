package widget

import (
	"fmt"

	"github.com/rivo/tview"
	"github.com/rmrobinson/kiosk/services/weather"
)

// WeatherCondition is a widget to display the current weather conditions.
// It is a fixed-size widget of width 24.
type WeatherCondition struct {
	*tview.Flex

	app *tview.Application

	conditionsView  *tview.TextView
	temperatureView *tview.TextView
	windSpeedView   *tview.TextView
	observedView    *tview.TextView
}

// NewWeatherCondition creates a new weather condition widget.
// Nothing will be displayed until a report is set on this view using Refresh()
func NewWeatherCondition(app *tview.Application) *WeatherCondition {
	wc := &WeatherCondition{
		Flex: tview.NewFlex(),
		app:  app,

		conditionsView:  tview.NewTextView(),
		temperatureView: tview.NewTextView(),
		windSpeedView:   tview.NewTextView(),
		observedView:    tview.NewTextView(),
	}

	wc.conditionsView.SetTextAlign(tview.AlignCenter).
		SetTitle("Ciel").
		SetBorder(true)
	wc.temperatureView.SetTextAlign(tview.AlignCenter).
		SetTitle("Temp").
		SetBorder(true)
	wc.windSpeedView.SetTextAlign(tview.AlignCenter).
		SetTitle("Vent").
		SetBorder(true)
	wc.observedView.SetTextAlign(tview.AlignCenter)

	wc.SetBorder(true).
		SetTitle("Météo").
		SetTitleAlign(tview.AlignLeft)

	wc.SetDirection(tview.FlexRow).
		AddItem(wc.conditionsView, 3, 1, false).
		AddItem(tview.NewFlex().
			AddItem(wc.temperatureView, 11, 1, false).
			AddItem(wc.windSpeedView, 11, 1, false), 3, 1, false).
		AddItem(wc.observedView, 1, 1, false)

	return wc
}

// Refresh takes the supplied report and updates the widget with its values.
// A nil report clears the widget.
func (wc *WeatherCondition) Refresh(report *weather.Report) {
	wc.app.QueueUpdateDraw(func() {
		if report == nil {
			wc.conditionsView.Clear()
			wc.temperatureView.Clear()
			wc.windSpeedView.Clear()
			wc.observedView.Clear()
			return
		}

		wc.conditionsView.SetText(iconSymbol(report.Icon) + " " + report.Summary)
		wc.temperatureView.SetText(fmt.Sprintf("%2.1f C", report.Temperature))
		wc.windSpeedView.SetText(fmt.Sprintf("%2.f km/h", report.WindSpeed))
		wc.observedView.SetText(report.ObservedAt.Format("15:04"))
	})
}

func iconSymbol(icon weather.Icon) string {
	switch icon {
	case weather.IconSunny:
		return "☼"
	case weather.IconCloudy:
		return "☁"
	case weather.IconPartiallyCloudy:
		return "🌤"
	case weather.IconFog:
		return "🌫"
	case weather.IconRain:
		return "🌧"
	case weather.IconSnow:
		return "🌨"
	case weather.IconThunderstorms:
		return "⛈"
	default:
		return string(icon)
	}
}
