package update

import (
	"strconv"
	"strings"
)

// csvHeaderPaths is the fixed header-name -> document-path dictionary used
// by CSV imports and spreadsheet syncs.
var csvHeaderPaths = map[string]string{
	"Name":           "personal.name",
	"Date of Birth":  "personal.dateOfBirth",
	"Position":       "personal.position",
	"Jersey Number":  "personal.jerseyNumber",
	"Squad":          "personal.squad",
	"Season":         "gameStats.season",
	"Games Played":   "gameStats.gamesPlayed",
	"Goals":          "gameStats.goals",
	"Assists":        "gameStats.assists",
	"Minutes Played": "gameStats.minutesPlayed",
	"Pass Accuracy":  "gameStats.passAccuracy",
}

// csvIntPaths lists the destinations coerced to integers; csvFloatPaths the
// ones coerced to floats. Parse failures fall back to zero rather than
// failing the row.
var csvIntPaths = map[string]bool{
	"personal.jerseyNumber":   true,
	"gameStats.gamesPlayed":   true,
	"gameStats.goals":         true,
	"gameStats.assists":       true,
	"gameStats.minutesPlayed": true,
}

var csvFloatPaths = map[string]bool{
	"gameStats.passAccuracy": true,
}

// skillHeaderPrefix marks columns like "Skill: Passing", which map to
// skills.passing.
const skillHeaderPrefix = "Skill:"

// TransformCSVData maps one raw CSV row onto document update paths.
// Unrecognized headers are skipped; numeric-looking fields are coerced with
// a zero fallback on parse failure.
func TransformCSVData(row map[string]string) map[string]interface{} {
	updates := map[string]interface{}{}
	for header, raw := range row {
		header = strings.TrimSpace(header)
		raw = strings.TrimSpace(raw)

		if strings.HasPrefix(header, skillHeaderPrefix) {
			name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, skillHeaderPrefix)))
			if name == "" {
				continue
			}
			updates["skills."+name] = parseFloatOrZero(raw)
			continue
		}

		path, ok := csvHeaderPaths[header]
		if !ok {
			continue
		}
		switch {
		case csvIntPaths[path]:
			updates[path] = parseIntOrZero(raw)
		case csvFloatPaths[path]:
			updates[path] = parseFloatOrZero(raw)
		default:
			updates[path] = raw
		}
	}
	return updates
}

func parseIntOrZero(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func parseFloatOrZero(raw string) float64 {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return f
}
