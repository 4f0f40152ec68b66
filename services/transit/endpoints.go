package transit

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/rmrobinson/kiosk/lib/relay"
)

// Fetcher retrieves an upstream document. A nil response means the fetch failed after retries.
type Fetcher interface {
	Fetch(ctx context.Context, target string) *relay.Response
}

// Endpoints holds the base URLs of the upstream APIs.
type Endpoints struct {
	StopMonitoring string `mapstructure:"stop_monitoring" yaml:"stop_monitoring"`
	GeneralMessage string `mapstructure:"general_message" yaml:"general_message"`
	Navitia        string `mapstructure:"navitia" yaml:"navitia"`
	LineCatalog    string `mapstructure:"line_catalog" yaml:"line_catalog"`
}

// DefaultEndpoints are the Île-de-France Mobilités marketplace and open data endpoints.
var DefaultEndpoints = Endpoints{
	StopMonitoring: "https://prim.iledefrance-mobilites.fr/marketplace/stop-monitoring",
	GeneralMessage: "https://prim.iledefrance-mobilites.fr/marketplace/general-message",
	Navitia:        "https://prim.iledefrance-mobilites.fr/marketplace/v2/navitia",
	LineCatalog:    "https://data.iledefrance-mobilites.fr/api/explore/v2.1/catalog/datasets/referentiel-des-lignes/records",
}

const navitiaTimeFormat = "20060102T150405"

var siriStopPattern = regexp.MustCompile(`SP:(\d+):`)

func (e Endpoints) stopMonitoringURL(stop StopID) string {
	return e.StopMonitoring + "?MonitoringRef=" + url.QueryEscape(string(stop))
}

func (e Endpoints) generalMessageURL(code string) string {
	return e.GeneralMessage + "?LineRef=" + url.QueryEscape("STIF:Line::"+code+":")
}

func (e Endpoints) scheduleURL(code, stopArea string, from time.Time, count int) string {
	return fmt.Sprintf("%s/lines/line:IDFM:%s/stop_areas/%s/stop_schedules?from_datetime=%s&count=%d",
		e.Navitia, code, stopArea, from.Format(navitiaTimeFormat), count)
}

// stopAreaFor maps a SIRI stop reference onto the journey planner stop area id.
// References without a numeric stop point are returned unchanged.
func stopAreaFor(stop StopID) string {
	m := siriStopPattern.FindStringSubmatch(string(stop))
	if len(m) < 2 {
		return string(stop)
	}
	return "stop_area:IDFM:" + m[1]
}
