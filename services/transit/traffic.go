package transit

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/rmrobinson/kiosk/lib/htmltext"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// NoDisruptionText is shown when no monitored line reports a message.
const NoDisruptionText = "Aucune perturbation majeure signalée."

// MonitoredLine is a line whose service messages are collected.
type MonitoredLine struct {
	Label string `mapstructure:"label" yaml:"label"`
	Code  string `mapstructure:"code" yaml:"code"`
}

// TrafficAggregator collects service disruption messages for a set of lines.
type TrafficAggregator struct {
	logger    *zap.Logger
	fetcher   Fetcher
	endpoints Endpoints
	lines     []MonitoredLine

	current *atomic.Pointer[[]TrafficMessage]
}

// NewTrafficAggregator creates an aggregator for the supplied lines.
func NewTrafficAggregator(logger *zap.Logger, fetcher Fetcher, endpoints Endpoints, lines []MonitoredLine) *TrafficAggregator {
	return &TrafficAggregator{
		logger:    logger,
		fetcher:   fetcher,
		endpoints: endpoints,
		lines:     lines,
		current:   atomic.NewPointer[[]TrafficMessage](nil),
	}
}

// Collect fetches the messages of every monitored line. Lines whose fetch failed contribute nothing.
// The result is never empty: without any message a single positive message is returned.
func (a *TrafficAggregator) Collect(ctx context.Context) []TrafficMessage {
	perLine := make([][]TrafficMessage, len(a.lines))

	var wg sync.WaitGroup
	for idx, line := range a.lines {
		wg.Add(1)
		go func(idx int, line MonitoredLine) {
			defer wg.Done()
			perLine[idx] = a.collectLine(ctx, line)
		}(idx, line)
	}
	wg.Wait()

	var msgs []TrafficMessage
	for _, lineMsgs := range perLine {
		msgs = append(msgs, lineMsgs...)
	}
	if len(msgs) < 1 {
		msgs = []TrafficMessage{{
			Text:     NoDisruptionText,
			Severity: SeverityOK,
		}}
	}
	return msgs
}

func (a *TrafficAggregator) collectLine(ctx context.Context, line MonitoredLine) []TrafficMessage {
	resp := a.fetcher.Fetch(ctx, a.endpoints.generalMessageURL(line.Code))
	if resp == nil {
		return nil
	}

	var env siriEnvelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		a.logger.Info("unable to decode general message payload",
			zap.String("line", line.Label),
			zap.Error(err),
		)
		return nil
	}

	var msgs []TrafficMessage
	for _, delivery := range env.Siri.ServiceDelivery.GeneralMessageDelivery {
		for _, info := range delivery.InfoMessage {
			severity := severityFor(info.InfoChannelRef.String())
			for _, m := range info.Content.Message {
				text := htmltext.Clean(m.MessageText.String())
				if text == "" {
					continue
				}
				msgs = append(msgs, TrafficMessage{
					LineLabel: line.Label,
					Text:      text,
					Severity:  severity,
				})
			}
		}
	}
	return msgs
}

// Refresh collects the messages and publishes them as the current set.
func (a *TrafficAggregator) Refresh(ctx context.Context) []TrafficMessage {
	msgs := a.Collect(ctx)
	a.current.Store(&msgs)
	return msgs
}

// Current returns the last published messages, or nil before the first refresh.
func (a *TrafficAggregator) Current() []TrafficMessage {
	msgs := a.current.Load()
	if msgs == nil {
		return nil
	}
	return *msgs
}

func severityFor(channel string) Severity {
	if strings.Contains(strings.ToLower(channel), "perturbation") {
		return SeverityWarning
	}
	return SeverityInfo
}
