// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify assigns defect descriptions to the fixed priority and
// category taxonomy: severity, response SLA, vehicle status, and
// escalation path.
package classify

import (
	"fmt"
	"strings"

	"github.com/mfreytag/diag-engine/pkg/types"
)

// Record is the static taxonomy entry for one priority level.
type Record struct {
	NameLocal     string
	NameEn        string
	ResponseTime  string
	VehicleStatus string
	Escalation    string
	ColorHint     string
	Keywords      []string
}

// priorityTable is the fixed taxonomy. Classification scans
// types.PriorityOrder and the first keyword match wins.
var priorityTable = map[types.DefectPriority]Record{
	types.PriorityCritical: {
		NameLocal:     "Kritisch",
		NameEn:        "critical",
		ResponseTime:  "Sofort, Bearbeitung innerhalb 1 Stunde",
		VehicleStatus: "Fahrzeug nicht einsatzbereit, sofort stillsetzen",
		Escalation:    "Kommandant, Instandsetzungsfeldwebel, Kompaniechef",
		ColorHint:     "red",
		Keywords: []string{
			"ausfall", "kritisch", "brand", "feuer", "rauch",
			"totalausfall", "notfall", "bremsversagen", "explosionsgefahr",
		},
	},
	types.PriorityHigh: {
		NameLocal:     "Hoch",
		NameEn:        "high",
		ResponseTime:  "Innerhalb 4 Stunden",
		VehicleStatus: "Einsatzbereitschaft eingeschränkt, nur Werkstattfahrt",
		Escalation:    "Instandsetzungsfeldwebel, Zugführer",
		ColorHint:     "orange",
		Keywords: []string{
			"überhitz", "ölverlust", "leistungsverlust", "undicht",
			"spannung fällt", "dringend", "kühlmittelverlust", "druckverlust",
		},
	},
	types.PriorityMedium: {
		NameLocal:     "Mittel",
		NameEn:        "medium",
		ResponseTime:  "Innerhalb 24 Stunden",
		VehicleStatus: "Einsatzbereit mit Auflagen, Beobachtung erforderlich",
		Escalation:    "Instandsetzungsfeldwebel",
		ColorHint:     "yellow",
		Keywords: []string{
			"verschleiß", "verschlissen", "schwergängig", "ruckelt",
			"korrosion", "unregelmäßig", "gelegentlich", "vibration",
		},
	},
	types.PriorityLow: {
		NameLocal:     "Niedrig",
		NameEn:        "low",
		ResponseTime:  "Im Rahmen der nächsten Fristenarbeit",
		VehicleStatus: "Voll einsatzbereit",
		Escalation:    "Besatzung, Schirrmeister",
		ColorHint:     "green",
		Keywords: []string{
			"kosmetisch", "lack", "kratzer", "leicht", "geringfügig", "abnutzung",
		},
	},
	types.PriorityInfo: {
		NameLocal:     "Hinweis",
		NameEn:        "info",
		ResponseTime:  "Keine Frist",
		VehicleStatus: "Voll einsatzbereit",
		Escalation:    "Besatzung",
		ColorHint:     "blue",
		Keywords: []string{
			"hinweis", "information", "routine", "turnus",
		},
	},
}

// categoryTable maps defect categories to their identifying terms, in
// fixed scan order. Category resolution is independent of priority.
var categoryTable = []struct {
	Category types.DefectCategory
	Terms    []string
}{
	{types.CategoryMechanical, []string{"mechanisch", "bruch", "riss", "lager", "getriebe", "kette", "verschleiß"}},
	{types.CategoryHydraulic, []string{"hydraulik", "hydraulisch", "druckspeicher", "ölverlust", "druckverlust"}},
	{types.CategoryElectrical, []string{"elektrisch", "elektrik", "spannung", "batterie", "generator", "kurzschluss"}},
	{types.CategoryElectronic, []string{"elektronik", "sensor", "bordcomputer", "anzeige", "feuerleit", "software"}},
	{types.CategoryStructural, []string{"strukturell", "wanne", "panzerung", "rahmen", "schweißnaht"}},
}

// recommendationTable holds the fixed action lists per priority.
var recommendationTable = map[types.DefectPriority][]string{
	types.PriorityCritical: {
		"Fahrzeug sofort stillsetzen und sichern",
		"Kommandant und Instandsetzungsfeldwebel unverzüglich informieren",
		"Meldung an Kompaniechef innerhalb 1 Stunde",
		"Fahrzeug bis zur Freigabe nicht bewegen",
	},
	types.PriorityHigh: {
		"Instandsetzung innerhalb 4 Stunden einplanen",
		"Fahrzeug nur für Werkstattfahrt bewegen",
		"Instandsetzungsfeldwebel informieren",
	},
	types.PriorityMedium: {
		"Instandsetzung innerhalb 24 Stunden einplanen",
		"Fehlerbild bei Nutzung beobachten und dokumentieren",
	},
	types.PriorityLow: {
		"Befund in der nächsten Fristenarbeit beheben",
		"Eintrag im Fahrzeugbegleitheft vornehmen",
	},
	types.PriorityInfo: {
		"Befund dokumentieren, keine Maßnahme erforderlich",
	},
}

// defaultConfidence is reported when no keyword matched at all.
const defaultConfidence = 0.1

// Classification is the classifier's output.
type Classification struct {
	Priority        types.DefectPriority
	Record          Record
	MatchedKeywords []string
	Confidence      float64

	// Category is empty when no category term matched.
	Category types.DefectCategory

	Recommendations []string
}

// Classify resolves priority, category, and recommendations for a defect
// description. Absence of any priority keyword defaults to low with the
// minimal confidence signal.
func Classify(description, componentID string, checkpointNumber int) Classification {
	lower := strings.ToLower(description)

	c := Classification{
		Priority:   types.PriorityLow,
		Confidence: defaultConfidence,
	}

	for _, priority := range types.PriorityOrder {
		record := PriorityRecord(priority)
		var matched []string
		for _, kw := range record.Keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, kw)
			}
		}
		if len(matched) > 0 {
			c.Priority = priority
			c.MatchedKeywords = matched
			c.Confidence = float64(len(matched)) * 0.3
			if c.Confidence > 1 {
				c.Confidence = 1
			}
			break
		}
	}

	c.Record = PriorityRecord(c.Priority)

	for _, entry := range categoryTable {
		if containsAny(lower, entry.Terms) || strings.Contains(lower, string(entry.Category)) {
			c.Category = entry.Category
			break
		}
	}

	c.Recommendations = append(c.Recommendations, recommendationTable[c.Priority]...)
	if componentID != "" {
		c.Recommendations = append(c.Recommendations,
			fmt.Sprintf("Betroffene Komponente %s gezielt prüfen", componentID))
	}
	if checkpointNumber != 0 {
		c.Recommendations = append(c.Recommendations,
			fmt.Sprintf("Prüfpunkt %d der Fristenliste heranziehen", checkpointNumber))
	}

	return c
}

// PriorityRecord returns the static record for a priority level. A
// missing entry means the fixed table is corrupted, which is an invariant
// violation, not a data condition.
func PriorityRecord(p types.DefectPriority) Record {
	record, ok := priorityTable[p]
	if !ok {
		panic(fmt.Sprintf("classify: unknown priority level %q", p))
	}
	return record
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
