package transit

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"
)

const (
	defaultSyntheticCount   = 3
	defaultSyntheticHorizon = 120 * time.Minute
	defaultJitterFraction   = 0.25
)

// FallbackRequest identifies the group a fallback prediction is made for.
type FallbackRequest struct {
	Stop      StopID
	Line      LineID
	Code      string
	Direction string
}

// Fallback predicts trips for a group that has no live data.
// Returned trips are never delayed nor cancelled.
type Fallback interface {
	Predict(ctx context.Context, req FallbackRequest, now time.Time) []TripDisplay
}

// ChainFallback returns the result of the first fallback producing any trip.
type ChainFallback []Fallback

// Predict implements Fallback.
func (c ChainFallback) Predict(ctx context.Context, req FallbackRequest, now time.Time) []TripDisplay {
	for _, f := range c {
		if f == nil {
			continue
		}
		if trips := f.Predict(ctx, req, now); len(trips) > 0 {
			return trips
		}
	}
	return nil
}

// SyntheticConfig controls the generated departures.
type SyntheticConfig struct {
	// Headways is the nominal interval between departures, per line.
	Headways map[LineID]time.Duration
	// Destinations are labels alternated over successive generated trips, per line.
	Destinations map[LineID][]string
	// DefaultHeadway applies to lines without an entry in Headways. Zero disables generation for them.
	DefaultHeadway time.Duration
	Count          int
	Horizon        time.Duration
	// JitterFraction bounds the random offset added to each departure, as a fraction of the headway.
	JitterFraction float64
	Location       *time.Location
}

// SyntheticFallback fabricates plausible departures from nominal headways.
type SyntheticFallback struct {
	cfg SyntheticConfig

	rndLock sync.Mutex
	rnd     *rand.Rand
}

// NewSyntheticFallback creates a generator using rnd as its source of jitter.
func NewSyntheticFallback(cfg SyntheticConfig, rnd *rand.Rand) *SyntheticFallback {
	if cfg.Count <= 0 {
		cfg.Count = defaultSyntheticCount
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = defaultSyntheticHorizon
	}
	if cfg.JitterFraction < 0 || cfg.JitterFraction >= 1 {
		cfg.JitterFraction = defaultJitterFraction
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &SyntheticFallback{
		cfg: cfg,
		rnd: rnd,
	}
}

func (s *SyntheticFallback) headway(line LineID) time.Duration {
	if h, ok := s.cfg.Headways[line]; ok && h > 0 {
		return h
	}
	return s.cfg.DefaultHeadway
}

func (s *SyntheticFallback) jitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	s.rndLock.Lock()
	defer s.rndLock.Unlock()
	return time.Duration(s.rnd.Int63n(int64(limit)))
}

// Predict implements Fallback.
func (s *SyntheticFallback) Predict(ctx context.Context, req FallbackRequest, now time.Time) []TripDisplay {
	headway := s.headway(req.Line)
	if headway <= 0 {
		return nil
	}

	labels := s.cfg.Destinations[req.Line]
	maxJitter := time.Duration(float64(headway) * s.cfg.JitterFraction)

	horizon := int(s.cfg.Horizon.Minutes())
	var trips []TripDisplay
	prevWait := -1
	for i := 0; i < s.cfg.Count; i++ {
		offset := time.Duration(i)*headway + s.jitter(maxJitter)
		if offset > s.cfg.Horizon {
			break
		}

		wait := int(math.Round(offset.Minutes()))
		if wait <= prevWait {
			wait = prevWait + 1
		}
		if wait > horizon {
			break
		}
		prevWait = wait

		dest := req.Direction
		if len(labels) > 0 {
			dest = labels[i%len(labels)]
		}

		w := wait
		trips = append(trips, TripDisplay{
			WaitMinutes: &w,
			DisplayTime: now.Add(time.Duration(wait) * time.Minute).In(s.cfg.Location).Format(clockFormat),
			Destination: dest,
			Source:      SourceSynthetic,
		})
	}
	return trips
}
