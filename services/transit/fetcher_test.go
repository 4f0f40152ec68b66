package transit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rmrobinson/kiosk/lib/relay"
)

type fakeFetcher struct {
	handler func(target string) *relay.Response

	lock    sync.Mutex
	targets []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, target string) *relay.Response {
	f.lock.Lock()
	f.targets = append(f.targets, target)
	f.lock.Unlock()

	if f.handler == nil {
		return nil
	}
	return f.handler(target)
}

func (f *fakeFetcher) count(substr string) int {
	f.lock.Lock()
	defer f.lock.Unlock()

	n := 0
	for _, t := range f.targets {
		if strings.Contains(t, substr) {
			n++
		}
	}
	return n
}

func jsonResponse(body string) *relay.Response {
	return &relay.Response{
		ContentType: "application/json",
		Body:        []byte(body),
	}
}

type testVisit struct {
	lineRef     string
	destination string
	expected    time.Time
	aimed       time.Time
	status      string
}

func stopMonitoringPayload(visits ...testVisit) string {
	var parts []string
	for _, v := range visits {
		expected, aimed := "", ""
		if !v.expected.IsZero() {
			expected = v.expected.UTC().Format(time.RFC3339)
		}
		if !v.aimed.IsZero() {
			aimed = v.aimed.UTC().Format(time.RFC3339)
		}
		parts = append(parts, fmt.Sprintf(`{
			"MonitoredVehicleJourney": {
				"LineRef": {"value": %q},
				"MonitoredCall": {
					"DestinationDisplay": [{"value": %q}],
					"ExpectedDepartureTime": %q,
					"AimedDepartureTime": %q,
					"DepartureStatus": %q
				}
			}
		}`, v.lineRef, v.destination, expected, aimed, v.status))
	}
	return `{"Siri": {"ServiceDelivery": {"StopMonitoringDelivery": [{"MonitoredStopVisit": [` +
		strings.Join(parts, ",") + `]}]}}}`
}

var testNow = time.Date(2024, time.March, 12, 10, 0, 0, 0, time.UTC)

func intPtr(i int) *int {
	return &i
}

func timePtr(t time.Time) *time.Time {
	return &t
}
