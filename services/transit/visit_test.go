package transit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type visitTimingTest struct {
	name     string
	expected *time.Time
	aimed    *time.Time
	wait     *int
	delay    *int
}

var visitTimingTests = []visitTimingTest{
	{
		"on time",
		timePtr(testNow.Add(5 * time.Minute)),
		timePtr(testNow.Add(5 * time.Minute)),
		intPtr(5),
		nil,
	},
	{
		"delayed",
		timePtr(testNow.Add(8 * time.Minute)),
		timePtr(testNow.Add(5 * time.Minute)),
		intPtr(8),
		intPtr(3),
	},
	{
		"early",
		timePtr(testNow.Add(4 * time.Minute)),
		timePtr(testNow.Add(6 * time.Minute)),
		intPtr(4),
		nil,
	},
	{
		"in the past",
		timePtr(testNow.Add(-2 * time.Minute)),
		nil,
		intPtr(0),
		nil,
	},
	{
		"rounds to nearest minute",
		timePtr(testNow.Add(150 * time.Second)),
		timePtr(testNow.Add(20 * time.Second)),
		intPtr(3),
		intPtr(2),
	},
	{
		"no expected time",
		nil,
		timePtr(testNow),
		nil,
		nil,
	},
}

func TestVisitTiming(t *testing.T) {
	for _, tt := range visitTimingTests {
		t.Run(tt.name, func(t *testing.T) {
			v := Visit{Expected: tt.expected, Aimed: tt.aimed}
			assert.Equal(t, tt.wait, v.WaitMinutes(testNow))
			assert.Equal(t, tt.delay, v.DelayMinutes())

			if wait := v.WaitMinutes(testNow); wait != nil {
				assert.GreaterOrEqual(t, *wait, 0)
			}
			if delay := v.DelayMinutes(); delay != nil {
				assert.Greater(t, *delay, 0)
			}
		})
	}
}

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, StatusCancelled, deriveStatus(true, intPtr(4)))
	assert.Equal(t, StatusDelayed, deriveStatus(false, intPtr(4)))
	assert.Equal(t, StatusNone, deriveStatus(false, nil))
	assert.Equal(t, StatusNone, deriveStatus(false, intPtr(0)))
}

func TestLiveTrip(t *testing.T) {
	v := Visit{
		LineCode:    "C01742",
		Destination: "Boissy-Saint-Léger",
		Expected:    timePtr(testNow.Add(8 * time.Minute)),
		Aimed:       timePtr(testNow.Add(5 * time.Minute)),
	}

	trip := liveTrip(v, testNow, time.UTC)
	assert.Equal(t, intPtr(8), trip.WaitMinutes)
	assert.Equal(t, intPtr(3), trip.DelayMinutes)
	assert.Equal(t, StatusDelayed, trip.Status)
	assert.Equal(t, "10:08", trip.DisplayTime)
	assert.Equal(t, "10:05", trip.AimedTime)
	assert.Equal(t, SourceLive, trip.Source)
}
