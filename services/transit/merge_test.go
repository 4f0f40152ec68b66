package transit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

type stubFallback struct {
	trips []TripDisplay

	lock     sync.Mutex
	requests []FallbackRequest
}

func (s *stubFallback) Predict(ctx context.Context, req FallbackRequest, now time.Time) []TripDisplay {
	s.lock.Lock()
	s.requests = append(s.requests, req)
	s.lock.Unlock()

	return s.trips
}

func mergeColumn() Column {
	return Column{
		ID:   "col-test",
		Stop: StopJoinville,
		Lines: []ExpectedLine{
			{LineID: "77", Mode: ModeBus, Direction: "Direction Joinville RER"},
			{LineID: "A", Mode: ModeRail, Direction: "Vers Paris / La Défense"},
			{LineID: "A", Mode: ModeRail, Direction: "Vers Boissy-Saint-Léger"},
			{LineID: "112", Mode: ModeBus},
		},
	}
}

func visitAt(code, dest string, wait, delay int) Visit {
	exp := testNow.Add(time.Duration(wait) * time.Minute)
	aimed := exp.Add(-time.Duration(delay) * time.Minute)
	return Visit{
		LineCode:    code,
		Destination: dest,
		Expected:    &exp,
		Aimed:       &aimed,
	}
}

func findGroup(t *testing.T, groups []BoardGroup, line LineID, direction string) BoardGroup {
	t.Helper()
	for _, g := range groups {
		if g.LineID == line && g.Direction == direction {
			return g
		}
	}
	t.Fatalf("group %s/%s not found", line, direction)
	return BoardGroup{}
}

func TestMergeOneGroupPerExpectedLine(t *testing.T) {
	m := NewMerger(zaptest.NewLogger(t), DefaultRegistry(), nil, time.UTC, 0)
	col := mergeColumn()

	groups := m.MergeColumn(context.Background(), col, nil, testNow)
	assert.Len(t, groups, len(col.Lines))
	for _, g := range groups {
		assert.False(t, g.HasRealTimeData)
		assert.True(t, g.NoService())
	}
	assert.Equal(t, []string{
		"A|Vers Boissy-Saint-Léger",
		"A|Vers Paris / La Défense",
		"77|Direction Joinville RER",
		"112|",
	}, groupKeys(groups))
}

func TestMergeLiveDelayed(t *testing.T) {
	m := NewMerger(zaptest.NewLogger(t), DefaultRegistry(), &stubFallback{}, time.UTC, 0)

	groups := m.MergeColumn(context.Background(), mergeColumn(), []Visit{
		visitAt("C01742", "Boissy-Saint-Léger", 8, 3),
	}, testNow)

	boissy := findGroup(t, groups, "A", "Vers Boissy-Saint-Léger")
	assert.True(t, boissy.HasRealTimeData)
	assert.Len(t, boissy.Trips, 1)
	assert.Equal(t, intPtr(8), boissy.Trips[0].WaitMinutes)
	assert.Equal(t, intPtr(3), boissy.Trips[0].DelayMinutes)
	assert.Equal(t, StatusDelayed, boissy.Trips[0].Status)
	assert.Equal(t, SourceLive, boissy.Trips[0].Source)

	paris := findGroup(t, groups, "A", "Vers Paris / La Défense")
	assert.False(t, paris.HasRealTimeData)
}

func TestMergeDirectionDisambiguation(t *testing.T) {
	m := NewMerger(zaptest.NewLogger(t), DefaultRegistry(), nil, time.UTC, 0)

	groups := m.MergeColumn(context.Background(), mergeColumn(), []Visit{
		visitAt("C01742", "La Défense", 2, 0),
		visitAt("C01742", "Boissy-Saint-Léger", 4, 0),
		visitAt("C01742", "Gare de Lyon", 6, 0),
		// 77 towards Plateau de Gravelle is not shown in this column.
		visitAt("C01399", "Plateau de Gravelle", 1, 0),
		visitAt("C01399", "Joinville-le-Pont RER", 3, 0),
		// 112 has no direction so both ways are kept.
		visitAt("C01379", "Château de Vincennes", 5, 0),
		visitAt("C01379", "La Varenne", 7, 0),
	}, testNow)

	paris := findGroup(t, groups, "A", "Vers Paris / La Défense")
	assert.Len(t, paris.Trips, 2)
	assert.Equal(t, "La Défense", paris.Trips[0].Destination)
	// Matches no direction keyword, so it lands in the first group of the line.
	assert.Equal(t, "Gare de Lyon", paris.Trips[1].Destination)

	boissy := findGroup(t, groups, "A", "Vers Boissy-Saint-Léger")
	assert.Len(t, boissy.Trips, 1)

	bus77 := findGroup(t, groups, "77", "Direction Joinville RER")
	assert.Len(t, bus77.Trips, 1)
	assert.Equal(t, "Joinville-le-Pont RER", bus77.Trips[0].Destination)

	bus112 := findGroup(t, groups, "112", "")
	assert.Len(t, bus112.Trips, 2)
}

func TestMergeSortsAndCaps(t *testing.T) {
	m := NewMerger(zaptest.NewLogger(t), DefaultRegistry(), nil, time.UTC, 0)

	groups := m.MergeColumn(context.Background(), mergeColumn(), []Visit{
		visitAt("C01379", "fourth", 12, 0),
		visitAt("C01379", "second", 5, 0),
		visitAt("C01379", "first", 1, 0),
		visitAt("C01379", "third", 5, 0),
	}, testNow)

	bus112 := findGroup(t, groups, "112", "")
	assert.Len(t, bus112.Trips, 3)
	var dests []string
	for _, trip := range bus112.Trips {
		dests = append(dests, trip.Destination)
	}
	assert.Equal(t, []string{"first", "second", "third"}, dests)
}

func TestMergeCancelled(t *testing.T) {
	m := NewMerger(zaptest.NewLogger(t), DefaultRegistry(), nil, time.UTC, 0)

	v := visitAt("C01379", "La Varenne", 3, 2)
	v.Cancelled = true
	groups := m.MergeColumn(context.Background(), mergeColumn(), []Visit{v}, testNow)

	bus112 := findGroup(t, groups, "112", "")
	assert.Equal(t, StatusCancelled, bus112.Trips[0].Status)
	assert.True(t, bus112.Trips[0].Cancelled)
}

func TestMergeUntimedVisitsUseFallback(t *testing.T) {
	fb := &stubFallback{
		trips: []TripDisplay{
			{WaitMinutes: intPtr(2), Source: SourceSynthetic, Cancelled: true, DelayMinutes: intPtr(4), Status: StatusDelayed},
			{WaitMinutes: intPtr(8), Source: SourceSynthetic},
			{WaitMinutes: intPtr(14), Source: SourceSynthetic},
			{WaitMinutes: intPtr(20), Source: SourceSynthetic},
		},
	}
	m := NewMerger(zaptest.NewLogger(t), DefaultRegistry(), fb, time.UTC, 0)

	groups := m.MergeColumn(context.Background(), mergeColumn(), []Visit{
		{LineCode: "C01379", Destination: "La Varenne"},
	}, testNow)

	bus112 := findGroup(t, groups, "112", "")
	assert.False(t, bus112.HasRealTimeData)
	assert.Len(t, bus112.Trips, 3)
	for _, trip := range bus112.Trips {
		assert.False(t, trip.Cancelled)
		assert.Nil(t, trip.DelayMinutes)
		assert.Equal(t, StatusNone, trip.Status)
	}
	assert.Len(t, fb.requests, 4)
}

func TestMergeFallbackRequest(t *testing.T) {
	fb := &stubFallback{}
	m := NewMerger(zaptest.NewLogger(t), DefaultRegistry(), fb, time.UTC, 0)

	col := Column{
		ID:    "col-test",
		Stop:  StopBreuil,
		Lines: []ExpectedLine{{LineID: "201", Mode: ModeBus, Direction: "Direction Porte Dorée"}},
	}
	m.MergeColumn(context.Background(), col, nil, testNow)

	assert.Equal(t, []FallbackRequest{{
		Stop:      StopBreuil,
		Line:      "201",
		Code:      "C01219",
		Direction: "Direction Porte Dorée",
	}}, fb.requests)
}
