package transit

import (
	"encoding/json"
	"regexp"

	"github.com/rmrobinson/kiosk/lib/htmltext"
	"go.uber.org/zap"
)

// DefaultLineCodePattern matches the internal line code embedded in references such as
// "STIF:Line::C01742:".
var DefaultLineCodePattern = regexp.MustCompile(`C\d{5}`)

// StopMonitoringParser turns a stop monitoring payload into visits.
type StopMonitoringParser struct {
	logger      *zap.Logger
	linePattern *regexp.Regexp
	classifier  *StatusClassifier
}

// NewStopMonitoringParser creates a parser. A nil pattern or classifier uses the defaults.
func NewStopMonitoringParser(logger *zap.Logger, linePattern *regexp.Regexp, classifier *StatusClassifier) *StopMonitoringParser {
	if linePattern == nil {
		linePattern = DefaultLineCodePattern
	}
	if classifier == nil {
		classifier = NewStatusClassifier(nil)
	}
	return &StopMonitoringParser{
		logger:      logger,
		linePattern: linePattern,
		classifier:  classifier,
	}
}

// Parse extracts every visit of every delivery in the payload.
// Malformed payloads yield an empty result; visits with an unresolvable line are kept with an empty line code.
func (p *StopMonitoringParser) Parse(body []byte) []Visit {
	if len(body) == 0 {
		return nil
	}

	var env siriEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		p.logger.Info("unable to decode stop monitoring payload",
			zap.Error(err),
		)
		return nil
	}

	var visits []Visit
	for _, delivery := range env.Siri.ServiceDelivery.StopMonitoringDelivery {
		for _, msv := range delivery.MonitoredStopVisit {
			visits = append(visits, p.visit(msv))
		}
	}
	return visits
}

func (p *StopMonitoringParser) visit(msv monitoredStopVisit) Visit {
	journey := msv.MonitoredVehicleJourney
	call := journey.MonitoredCall

	return Visit{
		LineCode:    p.linePattern.FindString(journey.LineRef.String()),
		Destination: htmltext.Clean(firstNonEmpty(call.DestinationDisplay, journey.DestinationName).String()),
		Expected:    firstNonEmpty(call.ExpectedDepartureTime, call.ExpectedArrivalTime).Time(),
		Aimed:       firstNonEmpty(call.AimedDepartureTime, call.AimedArrivalTime).Time(),
		Cancelled:   p.classifier.IsCancelled(firstNonEmpty(call.DepartureStatus, call.ArrivalStatus).String()),
		AtStop:      bool(call.VehicleAtStop),
	}
}
