package transit

import "time"

// The monitored stops of the default board.
const (
	StopJoinville  StopID = "STIF:StopArea:SP:43135:"
	StopHippodrome StopID = "STIF:StopArea:SP:463641:"
	StopBreuil     StopID = "STIF:StopArea:SP:463644:"
)

// DefaultRegistry returns the lines displayed around the Vincennes hippodrome.
func DefaultRegistry() *Registry {
	return &Registry{
		Columns: []Column{
			{
				ID:   "col-joinville-rer-a",
				Stop: StopJoinville,
				Lines: []ExpectedLine{
					{LineID: "A", Mode: ModeRail, Direction: "Vers Paris / La Défense"},
					{LineID: "A", Mode: ModeRail, Direction: "Vers Boissy-Saint-Léger"},
					{LineID: "77", Mode: ModeBus, Direction: "Direction Joinville RER"},
					{LineID: "101", Mode: ModeBus},
					{LineID: "106", Mode: ModeBus},
					{LineID: "108", Mode: ModeBus},
					{LineID: "110", Mode: ModeBus},
					{LineID: "112", Mode: ModeBus},
					{LineID: "201", Mode: ModeBus},
					{LineID: "281", Mode: ModeBus},
					{LineID: "317", Mode: ModeBus},
					{LineID: "N33", Mode: ModeBus, Direction: "Noctilien"},
				},
			},
			{
				ID:   "col-hpv-77",
				Stop: StopHippodrome,
				Lines: []ExpectedLine{
					{LineID: "77", Mode: ModeBus, Direction: "Direction Joinville RER"},
					{LineID: "77", Mode: ModeBus, Direction: "Direction Plateau de Gravelle"},
					{LineID: "111", Mode: ModeBus},
					{LineID: "112", Mode: ModeBus},
					{LineID: "201", Mode: ModeBus},
				},
			},
			{
				ID:   "col-breuil-77-201",
				Stop: StopBreuil,
				Lines: []ExpectedLine{
					{LineID: "77", Mode: ModeBus, Direction: "Direction Joinville RER"},
					{LineID: "201", Mode: ModeBus, Direction: "Direction Porte Dorée"},
					{LineID: "112", Mode: ModeBus},
				},
			},
		},
		Codes: LineCodeMap{
			"A":   "C01742",
			"77":  "C01399",
			"101": "C01260",
			"106": "C01371",
			"108": "C01374",
			"110": "C01376",
			"111": "C01377",
			"112": "C01379",
			"201": "C01219",
			"281": "C01521",
			"317": "C01693",
			"N33": "C01833",
		},
		Directions: DirectionKeywords{
			"A": {
				"Vers Paris / La Défense": {"paris", "defense", "nation", "saint-germain", "cergy", "poissy"},
				"Vers Boissy-Saint-Léger": {"boissy", "sucy", "la varenne"},
			},
			"77": {
				"Direction Joinville RER":       {"joinville"},
				"Direction Plateau de Gravelle": {"gravelle", "plateau"},
			},
			"201": {
				"Direction Porte Dorée": {"porte doree"},
				"Direction Champigny":   {"champigny"},
			},
		},
	}
}

// DefaultMonitoredLines are the lines whose disruption messages are displayed.
func DefaultMonitoredLines() []MonitoredLine {
	return []MonitoredLine{
		{Label: "RER A", Code: "C01742"},
		{Label: "77", Code: "C01399"},
		{Label: "201", Code: "C01219"},
	}
}

// DefaultHeadways are the nominal intervals used to fabricate departures when no data is available.
func DefaultHeadways() map[LineID]time.Duration {
	return map[LineID]time.Duration{
		"A":   4 * time.Minute,
		"77":  8 * time.Minute,
		"101": 10 * time.Minute,
		"106": 12 * time.Minute,
		"108": 12 * time.Minute,
		"110": 10 * time.Minute,
		"111": 15 * time.Minute,
		"112": 10 * time.Minute,
		"201": 10 * time.Minute,
		"281": 15 * time.Minute,
		"317": 15 * time.Minute,
		"N33": 30 * time.Minute,
	}
}

// DefaultDestinations are alternated over fabricated departures of lines shown without a direction.
func DefaultDestinations() map[LineID][]string {
	return map[LineID][]string{
		"101": {"Château de Vincennes", "Gare de Joinville-le-Pont"},
		"106": {"Gare de Joinville-le-Pont", "Villiers-sur-Marne"},
		"108": {"Gare de Joinville-le-Pont", "Boissy-Saint-Léger"},
		"110": {"Gare de Joinville-le-Pont", "Villiers-sur-Marne"},
		"111": {"République", "Champigny"},
		"112": {"Château de Vincennes", "La Varenne-Chennevières"},
		"281": {"Créteil Europarc", "Saint-Maur"},
		"317": {"Nogent-sur-Marne", "Créteil"},
	}
}
