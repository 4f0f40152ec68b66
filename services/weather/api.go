package weather

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNoReport is returned when the upstream did not produce a report.
	ErrNoReport = errors.New("no weather report available")
)

// Feed retrieves weather reports for a location.
type Feed interface {
	GetReport(ctx context.Context, latitude float64, longitude float64) (*Report, error)
}

// Icon is a coarse condition category used to pick a symbol.
type Icon string

// The supported icons.
const (
	IconSunny           Icon = "sunny"
	IconPartiallyCloudy Icon = "partially_cloudy"
	IconCloudy          Icon = "cloudy"
	IconFog             Icon = "fog"
	IconRain            Icon = "rain"
	IconSnow            Icon = "snow"
	IconThunderstorms   Icon = "thunderstorms"
)

// Report is an observation of the current conditions.
type Report struct {
	Temperature   float64   `json:"temperature"`
	WindSpeed     float64   `json:"wind_speed"`
	WindDirection float64   `json:"wind_direction"`
	Code          int       `json:"code"`
	Summary       string    `json:"summary"`
	Icon          Icon      `json:"icon"`
	IsDay         bool      `json:"is_day"`
	ObservedAt    time.Time `json:"observed_at"`
}

// Service keeps the latest report for a fixed location.
type Service struct {
	logger    *zap.Logger
	feed      Feed
	latitude  float64
	longitude float64

	reportLock sync.RWMutex
	report     *Report
}

// NewService creates a new weather service for the supplied location.
func NewService(logger *zap.Logger, feed Feed, latitude float64, longitude float64) *Service {
	return &Service{
		logger:    logger,
		feed:      feed,
		latitude:  latitude,
		longitude: longitude,
	}
}

// Refresh retrieves a new report. The previous report is kept when the upstream fails.
func (s *Service) Refresh(ctx context.Context) {
	report, err := s.feed.GetReport(ctx, s.latitude, s.longitude)
	if err != nil {
		s.logger.Info("unable to refresh weather report",
			zap.Error(err),
		)
		return
	}

	s.reportLock.Lock()
	s.report = report
	s.reportLock.Unlock()
}

// Current returns the latest report, or nil if none was retrieved yet.
func (s *Service) Current() *Report {
	s.reportLock.RLock()
	defer s.reportLock.RUnlock()

	return s.report
}
