package transit

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// The SIRI-lite JSON served by the stop monitoring and general message endpoints is loosely
// typed: the same field is sometimes a string, sometimes {"value": ...} and sometimes a list
// of those. The types below accept all of the shapes and never fail the decode of the
// surrounding document.

type siriEnvelope struct {
	Siri struct {
		ServiceDelivery struct {
			StopMonitoringDelivery siriList[stopMonitoringDelivery] `json:"StopMonitoringDelivery"`
			GeneralMessageDelivery siriList[generalMessageDelivery] `json:"GeneralMessageDelivery"`
		} `json:"ServiceDelivery"`
	} `json:"Siri"`
}

type stopMonitoringDelivery struct {
	MonitoredStopVisit siriList[monitoredStopVisit] `json:"MonitoredStopVisit"`
}

type monitoredStopVisit struct {
	MonitoringRef           siriValue               `json:"MonitoringRef"`
	MonitoredVehicleJourney monitoredVehicleJourney `json:"MonitoredVehicleJourney"`
}

type monitoredVehicleJourney struct {
	LineRef         siriValue     `json:"LineRef"`
	DestinationName siriValue     `json:"DestinationName"`
	MonitoredCall   monitoredCall `json:"MonitoredCall"`
}

type monitoredCall struct {
	VehicleAtStop         siriBool  `json:"VehicleAtStop"`
	DestinationDisplay    siriValue `json:"DestinationDisplay"`
	ExpectedDepartureTime siriValue `json:"ExpectedDepartureTime"`
	ExpectedArrivalTime   siriValue `json:"ExpectedArrivalTime"`
	AimedDepartureTime    siriValue `json:"AimedDepartureTime"`
	AimedArrivalTime      siriValue `json:"AimedArrivalTime"`
	DepartureStatus       siriValue `json:"DepartureStatus"`
	ArrivalStatus         siriValue `json:"ArrivalStatus"`
}

type generalMessageDelivery struct {
	InfoMessage siriList[infoMessage] `json:"InfoMessage"`
}

type infoMessage struct {
	InfoChannelRef siriValue `json:"InfoChannelRef"`
	Content        struct {
		Message siriList[struct {
			MessageType siriValue `json:"MessageType"`
			MessageText siriValue `json:"MessageText"`
		}] `json:"Message"`
	} `json:"Content"`
}

// siriValue is a string that may be encoded as "x", {"value":"x"} or [{"value":"x"}, ...].
// For lists the first entry wins.
type siriValue string

func (v *siriValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = siriValue(s)
		return nil
	}

	var obj struct {
		Value siriValue `json:"value"`
	}
	if err := json.Unmarshal(b, &obj); err == nil {
		*v = obj.Value
		return nil
	}

	var list []siriValue
	if err := json.Unmarshal(b, &list); err == nil {
		for _, item := range list {
			if item != "" {
				*v = item
				break
			}
		}
	}
	return nil
}

func (v siriValue) String() string {
	return string(v)
}

// Time parses the value as an RFC 3339 timestamp. Empty or unparsable values return nil.
func (v siriValue) Time() *time.Time {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

type siriBool bool

func (v *siriBool) UnmarshalJSON(b []byte) error {
	var flag bool
	if err := json.Unmarshal(b, &flag); err == nil {
		*v = siriBool(flag)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = siriBool(strings.EqualFold(strings.TrimSpace(s), "true"))
	}
	return nil
}

// siriList accepts either an array or a single object. Array elements that cannot be
// decoded are skipped one by one; the remaining elements are kept.
type siriList[T any] []T

func (l *siriList[T]) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return nil
	}

	switch trimmed[0] {
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil
		}
		items := make(siriList[T], 0, len(raw))
		for _, elem := range raw {
			var item T
			if err := json.Unmarshal(elem, &item); err != nil {
				continue
			}
			items = append(items, item)
		}
		*l = items
	case '{':
		var item T
		if err := json.Unmarshal(trimmed, &item); err == nil {
			*l = siriList[T]{item}
		}
	}
	return nil
}

func firstNonEmpty(values ...siriValue) siriValue {
	for _, v := range values {
		if strings.TrimSpace(string(v)) != "" {
			return v
		}
	}
	return ""
}
