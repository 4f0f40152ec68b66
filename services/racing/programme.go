// Package racing reads the daily horse racing programme of the PMU.
package racing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rmrobinson/kiosk/lib/relay"
	"go.uber.org/zap"
)

// Fetcher retrieves an upstream document.
type Fetcher interface {
	Fetch(ctx context.Context, target string) *relay.Response
}

// Race is a single race of a meeting.
type Race struct {
	Ref        string    `json:"ref"`
	Hippodrome string    `json:"hippodrome"`
	Name       string    `json:"name"`
	Start      time.Time `json:"start"`
	Distance   int       `json:"distance"`
	Discipline string    `json:"discipline"`
	Prize      int       `json:"prize"`
}

type programmeResponse struct {
	Programme struct {
		Reunions []struct {
			NumOfficiel int `json:"numOfficiel"`
			Hippodrome  struct {
				Code string `json:"code"`
			} `json:"hippodrome"`
			Courses []struct {
				NumOrdre    int    `json:"numOrdre"`
				Libelle     string `json:"libelle"`
				HeureDepart int64  `json:"heureDepart"`
				Distance    int    `json:"distance"`
				Discipline  string `json:"discipline"`
				MontantPrix int    `json:"montantPrix"`
			} `json:"courses"`
		} `json:"reunions"`
	} `json:"programme"`
}

// Programme tracks the races of the day at a set of hippodromes.
type Programme struct {
	logger      *zap.Logger
	fetcher     Fetcher
	path        string
	hippodromes []string
	clock       func() time.Time

	racesLock sync.RWMutex
	races     map[string][]Race
}

// NewProgramme creates a programme reader for the supplied hippodrome codes (such as "VIN").
func NewProgramme(logger *zap.Logger, fetcher Fetcher, path string, hippodromes []string, clock func() time.Time) *Programme {
	if clock == nil {
		clock = time.Now
	}
	return &Programme{
		logger:      logger,
		fetcher:     fetcher,
		path:        strings.TrimSuffix(path, "/"),
		hippodromes: hippodromes,
		clock:       clock,
		races:       map[string][]Race{},
	}
}

// Refresh retrieves the programme of the current day.
func (p *Programme) Refresh(ctx context.Context) {
	day := p.clock().Format("02012006")
	resp := p.fetcher.Fetch(ctx, fmt.Sprintf("%s/%s", p.path, day))
	if resp == nil {
		return
	}

	var pr programmeResponse
	if err := resp.Decode(&pr); err != nil {
		p.logger.Info("unable to decode racing programme",
			zap.String("day", day),
			zap.Error(err),
		)
		return
	}

	races := map[string][]Race{}
	for _, code := range p.hippodromes {
		races[code] = nil
	}
	for _, reunion := range pr.Programme.Reunions {
		code := reunion.Hippodrome.Code
		if _, ok := races[code]; !ok {
			continue
		}

		for _, course := range reunion.Courses {
			if course.HeureDepart <= 0 {
				continue
			}
			races[code] = append(races[code], Race{
				Ref:        fmt.Sprintf("R%dC%d", reunion.NumOfficiel, course.NumOrdre),
				Hippodrome: code,
				Name:       course.Libelle,
				Start:      time.UnixMilli(course.HeureDepart),
				Distance:   course.Distance,
				Discipline: course.Discipline,
				Prize:      course.MontantPrix,
			})
		}
	}
	for code := range races {
		sort.SliceStable(races[code], func(i, j int) bool {
			return races[code][i].Start.Before(races[code][j].Start)
		})
	}

	p.racesLock.Lock()
	p.races = races
	p.racesLock.Unlock()
}

// Races returns the races of the day at the hippodrome, by start time.
func (p *Programme) Races(hippodrome string) []Race {
	p.racesLock.RLock()
	defer p.racesLock.RUnlock()

	return p.races[hippodrome]
}

// Upcoming returns the races of every hippodrome starting after now, by start time.
func (p *Programme) Upcoming(now time.Time) []Race {
	p.racesLock.RLock()
	defer p.racesLock.RUnlock()

	var ret []Race
	for _, code := range p.hippodromes {
		for _, race := range p.races[code] {
			if race.Start.After(now) {
				ret = append(ret, race)
			}
		}
	}
	sort.SliceStable(ret, func(i, j int) bool {
		return ret[i].Start.Before(ret[j].Start)
	})
	return ret
}
