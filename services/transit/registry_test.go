package transit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRegistryIsValid(t *testing.T) {
	r := DefaultRegistry()
	assert.Nil(t, r.Validate())

	assert.Equal(t, []StopID{StopJoinville, StopHippodrome, StopBreuil}, r.Stops())
	assert.Len(t, r.Lines(), 12)

	for _, col := range r.Columns {
		for _, line := range col.Lines {
			code, ok := r.Code(line.LineID)
			assert.True(t, ok, line.LineID)
			assert.Regexp(t, DefaultLineCodePattern, code)
		}
	}
}

func TestRegistryValidate(t *testing.T) {
	r := &Registry{
		Columns: []Column{
			{ID: "a", Lines: []ExpectedLine{{LineID: "77"}}},
		},
		Codes: LineCodeMap{},
	}
	assert.ErrorIs(t, r.Validate(), ErrUnknownLineCode)

	r.Codes["77"] = "C01399"
	assert.Nil(t, r.Validate())

	r.Columns = append(r.Columns, Column{ID: "a"})
	assert.ErrorIs(t, r.Validate(), ErrDuplicateColumn)
}

func TestRegistryColumn(t *testing.T) {
	r := DefaultRegistry()

	col, err := r.Column("col-hpv-77")
	assert.Nil(t, err)
	assert.Equal(t, StopHippodrome, col.Stop)

	_, err = r.Column("col-missing")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

type matchesDirectionTest struct {
	line        LineID
	direction   string
	destination string
	matches     bool
}

var matchesDirectionTests = []matchesDirectionTest{
	{"A", "Vers Boissy-Saint-Léger", "Boissy-Saint-Léger", true},
	{"A", "Vers Boissy-Saint-Léger", "BOISSY SAINT LEGER", true},
	{"A", "Vers Paris / La Défense", "La Défense (Grande Arche)", true},
	{"A", "Vers Paris / La Défense", "Boissy-Saint-Léger", false},
	{"77", "Direction Plateau de Gravelle", "Plateau de Gravelle", true},
	{"77", "Direction Joinville RER", "Plateau de Gravelle", false},
	{"112", "", "Château de Vincennes", false},
}

func TestRegistryMatchesDirection(t *testing.T) {
	r := DefaultRegistry()
	for _, tt := range matchesDirectionTests {
		t.Run(string(tt.line)+"/"+tt.destination, func(t *testing.T) {
			assert.Equal(t, tt.matches, r.matchesDirection(tt.line, tt.direction, tt.destination))
		})
	}
}

func TestStopAreaFor(t *testing.T) {
	assert.Equal(t, "stop_area:IDFM:43135", stopAreaFor(StopJoinville))
	assert.Equal(t, "stop_area:IDFM:71517", stopAreaFor("stop_area:IDFM:71517"))
}
