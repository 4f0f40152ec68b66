package transit

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrUnknownLineCode is returned when an expected line has no internal code mapping.
	ErrUnknownLineCode = errors.New("expected line has no internal code")
	// ErrDuplicateColumn is returned when two columns share an identifier.
	ErrDuplicateColumn = errors.New("duplicate column id")
	// ErrUnknownColumn is returned when a column lookup fails.
	ErrUnknownColumn = errors.New("unknown column")
)

// ExpectedLine is a line and direction a column always displays, whether or not live data exists.
type ExpectedLine struct {
	LineID    LineID `mapstructure:"line" yaml:"line" json:"line"`
	Mode      Mode   `mapstructure:"mode" yaml:"mode" json:"mode"`
	Direction string `mapstructure:"direction" yaml:"direction" json:"direction"`
}

// Column is a board column fed by a single monitored stop.
type Column struct {
	ID    string         `mapstructure:"id" yaml:"id" json:"id"`
	Stop  StopID         `mapstructure:"stop" yaml:"stop" json:"stop"`
	Lines []ExpectedLine `mapstructure:"lines" yaml:"lines" json:"lines"`
}

// LineCodeMap maps a public line id to the internal code used by the real-time and catalog APIs.
type LineCodeMap map[LineID]string

// DirectionKeywords maps, per line, a direction label to the destination tokens that identify it.
type DirectionKeywords map[LineID]map[string][]string

// Registry is the static configuration of which lines each column shows.
type Registry struct {
	Columns    []Column
	Codes      LineCodeMap
	Directions DirectionKeywords
}

// Validate checks the registry invariants: unique column ids and a code for every expected line.
func (r *Registry) Validate() error {
	seen := map[string]bool{}
	for _, col := range r.Columns {
		if seen[col.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateColumn, col.ID)
		}
		seen[col.ID] = true

		for _, line := range col.Lines {
			if _, ok := r.Codes[line.LineID]; !ok {
				return fmt.Errorf("%w: %s in column %s", ErrUnknownLineCode, line.LineID, col.ID)
			}
		}
	}
	return nil
}

// Code returns the internal code for the line.
func (r *Registry) Code(line LineID) (string, bool) {
	code, ok := r.Codes[line]
	return code, ok
}

// Column returns the column with the supplied id.
func (r *Registry) Column(id string) (Column, error) {
	for _, col := range r.Columns {
		if col.ID == id {
			return col, nil
		}
	}
	return Column{}, ErrUnknownColumn
}

// Stops returns the distinct monitored stops, in column order.
func (r *Registry) Stops() []StopID {
	var stops []StopID
	seen := map[StopID]bool{}
	for _, col := range r.Columns {
		if seen[col.Stop] {
			continue
		}
		seen[col.Stop] = true
		stops = append(stops, col.Stop)
	}
	return stops
}

// Lines returns the distinct expected lines across all columns.
func (r *Registry) Lines() []LineID {
	var lines []LineID
	seen := map[LineID]bool{}
	for _, col := range r.Columns {
		for _, line := range col.Lines {
			if seen[line.LineID] {
				continue
			}
			seen[line.LineID] = true
			lines = append(lines, line.LineID)
		}
	}
	return lines
}

// matchesDirection reports whether the destination contains one of the keywords registered
// for the line and direction.
func (r *Registry) matchesDirection(line LineID, direction, destination string) bool {
	keywords := r.Directions[line][direction]
	if len(keywords) == 0 {
		return false
	}

	dest := foldText(destination)
	for _, kw := range keywords {
		kw = foldText(kw)
		if kw != "" && strings.Contains(dest, kw) {
			return true
		}
	}
	return false
}

// foldText lower-cases and strips diacritics so "Boissy-Saint-Léger" matches "leger".
func foldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
