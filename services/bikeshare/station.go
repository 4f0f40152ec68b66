// Package bikeshare reports the availability of shared bikes at nearby stations.
package bikeshare

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rmrobinson/kiosk/lib/relay"
	"go.uber.org/zap"
)

var (
	// ErrStationMismatch is returned when the upstream answers with a different station than requested.
	ErrStationMismatch = errors.New("upstream returned a different station")
)

// Fetcher retrieves an upstream document.
type Fetcher interface {
	Fetch(ctx context.Context, target string) *relay.Response
}

// Station is the availability of a single station.
type Station struct {
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Mechanical int       `json:"mechanical"`
	Electric   int       `json:"electric"`
	FreeDocks  int       `json:"free_docks"`
	Renting    bool      `json:"renting"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type availabilityResponse struct {
	Results []struct {
		StationCode       string `json:"stationcode"`
		Name              string `json:"name"`
		Mechanical        int    `json:"mechanical"`
		EBike             int    `json:"ebike"`
		NumDocksAvailable int    `json:"numdocksavailable"`
		IsRenting         string `json:"is_renting"`
		DueDate           string `json:"duedate"`
	} `json:"results"`
}

// Tracker polls the availability of a fixed set of stations.
type Tracker struct {
	logger   *zap.Logger
	fetcher  Fetcher
	path     string
	stations []string

	stateLock sync.RWMutex
	state     map[string]*Station
}

// NewTracker creates a tracker for the supplied station codes.
func NewTracker(logger *zap.Logger, fetcher Fetcher, path string, stations []string) *Tracker {
	return &Tracker{
		logger:   logger,
		fetcher:  fetcher,
		path:     path,
		stations: stations,
		state:    map[string]*Station{},
	}
}

// Refresh updates every station. A station whose fetch failed keeps its previous state.
func (t *Tracker) Refresh(ctx context.Context) {
	for _, code := range t.stations {
		station, err := t.station(ctx, code)
		if err != nil {
			t.logger.Info("unable to refresh station",
				zap.String("station_code", code),
				zap.Error(err),
			)
			continue
		}

		t.stateLock.Lock()
		t.state[code] = station
		t.stateLock.Unlock()
	}
}

// Stations returns the known stations in configuration order.
func (t *Tracker) Stations() []*Station {
	t.stateLock.RLock()
	defer t.stateLock.RUnlock()

	var ret []*Station
	for _, code := range t.stations {
		if station, ok := t.state[code]; ok {
			ret = append(ret, station)
		}
	}
	return ret
}

func (t *Tracker) station(ctx context.Context, code string) (*Station, error) {
	resp := t.fetcher.Fetch(ctx, fmt.Sprintf("%s?where=stationcode%%3D%s&limit=1", t.path, code))
	if resp == nil {
		return nil, fmt.Errorf("station %s unavailable", code)
	}

	var ar availabilityResponse
	if err := resp.Decode(&ar); err != nil {
		return nil, err
	}
	if len(ar.Results) < 1 {
		return nil, fmt.Errorf("station %s not found", code)
	}

	rec := ar.Results[0]
	if rec.StationCode != code {
		return nil, fmt.Errorf("%w: requested %s, got %s", ErrStationMismatch, code, rec.StationCode)
	}
	station := &Station{
		Code:       rec.StationCode,
		Name:       rec.Name,
		Mechanical: rec.Mechanical,
		Electric:   rec.EBike,
		FreeDocks:  rec.NumDocksAvailable,
		Renting:    rec.IsRenting == "OUI",
	}
	if ts, err := time.Parse(time.RFC3339, rec.DueDate); err == nil {
		station.UpdatedAt = ts
	}
	return station, nil
}
