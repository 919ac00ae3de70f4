package integrity

import "sort"

// settablePaths is the registry of update targets the engine accepts. A nil
// entry means the namespace is replaced wholesale (lists are never patched
// element-wise); "*" allows any single-level subkey; otherwise only the
// listed subkeys (or the whole namespace) are settable.
var settablePaths = map[string][]string{
	"personal":            {"name", "dateOfBirth", "position", "jerseyNumber", "squad"},
	"status":              {"medical", "availability", "fitness"},
	"injuries":            nil,
	"medicalAppointments": nil,
	"trainingAttendance":  nil,
	"physicalAttributes":  nil,
	"gameStats":           {"season", "gamesPlayed", "goals", "assists", "minutesPlayed", "passAccuracy"},
	"skills":              {"*"},
	"aiRating":            {"physicality", "skillset", "gameImpact", "overall", "lastUpdated"},
	"playerValue":         {"medicalScore", "fitnessScore", "performanceScore", "attendanceScore", "totalScore"},
	"cohesionMetrics":     {"reliability", "teamwork"},
}

// knownPath reports whether a dot path is a registered update target.
func knownPath(path string) bool {
	top := topLevel(path)
	subkeys, ok := settablePaths[top]
	if !ok {
		return false
	}
	if path == top {
		return true
	}
	if subkeys == nil {
		return false
	}
	rest := path[len(top)+1:]
	if len(subkeys) == 1 && subkeys[0] == "*" {
		// any single-level subkey, no deeper nesting
		return topLevel(rest) == rest
	}
	for _, k := range subkeys {
		if rest == k {
			return true
		}
	}
	return false
}

// namespaceCategory maps a top-level namespace to its history category.
var namespaceCategory = map[string]Category{
	"personal":            CategoryPersonal,
	"physicalAttributes":  CategoryPhysical,
	"injuries":            CategoryMedical,
	"medicalAppointments": CategoryMedical,
	"gameStats":           CategoryPerformance,
	"trainingAttendance":  CategoryPerformance,
	"skills":              CategorySkills,
	"aiRating":            CategoryAIRating,
	"status":              CategoryAvailability,
}

// categoryPriority is the fixed precedence used when one batch touches
// several namespaces. Lower index wins.
var categoryPriority = []Category{
	CategoryPersonal,
	CategoryPhysical,
	CategoryMedical,
	CategoryPerformance,
	CategorySkills,
	CategoryAIRating,
	CategoryAvailability,
}

// deriveCategory inspects the paths the caller submitted (not the cascade
// targets) and returns the single category recorded on the history entry.
// Unmapped namespaces (playerValue, cohesionMetrics) fall back to personal.
func deriveCategory(paths []string) Category {
	present := map[Category]bool{}
	for _, p := range paths {
		if cat, ok := namespaceCategory[topLevel(p)]; ok {
			present[cat] = true
		} else {
			present[CategoryPersonal] = true
		}
	}
	for _, cat := range categoryPriority {
		if present[cat] {
			return cat
		}
	}
	return CategoryPersonal
}

// metricLabels maps namespaces to the human-readable dashboard surfaces a
// change shows up on.
var metricLabels = map[string]string{
	"playerValue":         "Player Value Analysis",
	"aiRating":            "AI Performance Rating",
	"cohesionMetrics":     "Team Cohesion",
	"status":              "Availability Status",
	"injuries":            "Medical Record",
	"medicalAppointments": "Medical Record",
	"trainingAttendance":  "Training Attendance",
	"physicalAttributes":  "Physical Profile",
	"gameStats":           "Performance Profile",
	"skills":              "Performance Profile",
}

// affectedMetrics returns the sorted union of labels implied by the
// changed paths.
func affectedMetrics(paths []string) []string {
	seen := map[string]bool{}
	for _, p := range paths {
		if label, ok := metricLabels[topLevel(p)]; ok {
			seen[label] = true
		}
	}
	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// significantPaths are the fields whose change triggers the audit
// notification side effect.
var significantPaths = []string{
	"status.medical",
	"status.availability",
	"injuries",
	"aiRating.overall",
	"playerValue.totalScore",
}

// significantChanges returns which significant fields an update touches.
func significantChanges(paths []string) []string {
	var hits []string
	for _, sig := range significantPaths {
		for _, p := range paths {
			if pathWithin(sig, p) || pathWithin(p, sig) {
				hits = append(hits, sig)
				break
			}
		}
	}
	return hits
}
