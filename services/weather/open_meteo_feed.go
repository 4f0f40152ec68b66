package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/rmrobinson/kiosk/lib/relay"
	"go.uber.org/zap"
)

const openMeteoTimeFormat = "2006-01-02T15:04"

// Fetcher retrieves an upstream document.
type Fetcher interface {
	Fetch(ctx context.Context, target string) *relay.Response
}

type openMeteoResponse struct {
	CurrentWeather *struct {
		Temperature   float64 `json:"temperature"`
		WindSpeed     float64 `json:"windspeed"`
		WindDirection float64 `json:"winddirection"`
		WeatherCode   int     `json:"weathercode"`
		IsDay         int     `json:"is_day"`
		Time          string  `json:"time"`
	} `json:"current_weather"`
}

// OpenMeteoFeed reads the current conditions from the Open-Meteo forecast API.
type OpenMeteoFeed struct {
	logger  *zap.Logger
	fetcher Fetcher
	path    string
}

// NewOpenMeteoFeed creates a new feed against the forecast endpoint at path.
func NewOpenMeteoFeed(logger *zap.Logger, fetcher Fetcher, path string) *OpenMeteoFeed {
	return &OpenMeteoFeed{
		logger:  logger,
		fetcher: fetcher,
		path:    path,
	}
}

// GetReport implements Feed.
func (f *OpenMeteoFeed) GetReport(ctx context.Context, latitude float64, longitude float64) (*Report, error) {
	target := fmt.Sprintf("%s?latitude=%.2f&longitude=%.2f&current_weather=true", f.path, latitude, longitude)

	raw := f.fetcher.Fetch(ctx, target)
	if raw == nil {
		return nil, ErrNoReport
	}

	var resp openMeteoResponse
	if err := raw.Decode(&resp); err != nil {
		return nil, fmt.Errorf("decoding weather report: %w", err)
	}
	if resp.CurrentWeather == nil {
		return nil, ErrNoReport
	}

	cw := resp.CurrentWeather
	report := &Report{
		Temperature:   cw.Temperature,
		WindSpeed:     cw.WindSpeed,
		WindDirection: cw.WindDirection,
		Code:          cw.WeatherCode,
		Summary:       summaryFromCode(cw.WeatherCode),
		Icon:          iconFromCode(cw.WeatherCode),
		IsDay:         cw.IsDay == 1,
	}

	observedAt, err := time.Parse(openMeteoTimeFormat, cw.Time)
	if err != nil {
		f.logger.Debug("unable to parse observation time",
			zap.String("time", cw.Time),
			zap.Error(err),
		)
		observedAt = time.Now()
	}
	report.ObservedAt = observedAt

	return report, nil
}

// summaryFromCode maps WMO weather interpretation codes onto a short French description.
func summaryFromCode(code int) string {
	switch {
	case code == 0:
		return "Ciel dégagé"
	case code == 1:
		return "Peu nuageux"
	case code == 2:
		return "Partiellement nuageux"
	case code == 3:
		return "Couvert"
	case code == 45 || code == 48:
		return "Brouillard"
	case code >= 51 && code <= 57:
		return "Bruine"
	case code >= 61 && code <= 67:
		return "Pluie"
	case code >= 71 && code <= 77:
		return "Neige"
	case code >= 80 && code <= 82:
		return "Averses"
	case code == 85 || code == 86:
		return "Averses de neige"
	case code >= 95:
		return "Orages"
	}
	return "Conditions inconnues"
}

func iconFromCode(code int) Icon {
	switch {
	case code == 0:
		return IconSunny
	case code == 1 || code == 2:
		return IconPartiallyCloudy
	case code == 3:
		return IconCloudy
	case code == 45 || code == 48:
		return IconFog
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return IconSnow
	case code >= 95:
		return IconThunderstorms
	case code >= 51 && code <= 82:
		return IconRain
	}
	return IconSunny
}
