// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package symptom maps free-text symptom reports onto the closed set of
// vehicle subsystems and derives the retrieval queries for them.
package symptom

import (
	"fmt"
	"strings"

	"github.com/mfreytag/diag-engine/pkg/types"
)

// systemKeywords maps each subsystem to the substrings that implicate it.
// Reports are written in German with the occasional English term, so both
// vocabularies are listed.
var systemKeywords = map[types.SystemTag][]string{
	types.SystemEngine: {
		"motor", "engine", "triebwerk", "zylinder", "öldruck",
		"auspuff", "abgas", "leerlauf", "springt nicht an",
	},
	types.SystemTransmission: {
		"getriebe", "schaltung", "kupplung", "schaltet", "transmission", "gangwechsel",
	},
	types.SystemHydraulic: {
		"hydraulik", "hydraulisch", "druckspeicher",
	},
	types.SystemElectrical: {
		"elektrik", "spannung", "batterie", "generator", "lichtmaschine",
		"sicherung", "kurzschluss",
	},
	types.SystemTurret: {
		"turm", "richtanlage", "schwenk", "kanone", "waffenanlage", "turret",
	},
	types.SystemTracks: {
		"kette", "laufwerk", "laufrolle", "treibrad", "spannrad", "track",
	},
	types.SystemCooling: {
		"kühl", "überhitz", "temperatur", "thermostat", "lüfter", "overheat", "coolant",
	},
	types.SystemFuel: {
		"kraftstoff", "einspritz", "förderpumpe", "tankanzeige", "fuel",
	},
	types.SystemBrakes: {
		"bremse", "bremsweg", "bremst", "brake",
	},
	types.SystemElectronics: {
		"elektronik", "bordcomputer", "anzeige", "display", "sensor", "feuerleit",
	},
}

// stopWords are dropped during keyword extraction.
var stopWords = map[string]bool{
	"der": true, "die": true, "das": true, "den": true, "dem": true,
	"ein": true, "eine": true, "einen": true, "und": true, "oder": true,
	"ist": true, "sind": true, "wird": true, "hat": true, "beim": true,
	"bei": true, "mit": true, "von": true, "auf": true, "für": true,
	"aus": true, "nicht": true, "sich": true, "sehr": true, "auch": true,
	"the": true, "and": true, "with": true, "when": true, "not": true,
	"has": true,
}

const maxKeywords = 10

// Analyze builds the immutable SymptomContext for one report. The
// affected-systems set is never empty: when no keyword matches, the
// report is tagged general.
func Analyze(rawText, vehicleID, componentHint string) types.SymptomContext {
	lower := strings.ToLower(rawText)

	var affected []types.SystemTag
	seen := make(map[types.SystemTag]bool)
	for _, tag := range types.AllSystems {
		if matchesSystem(lower, tag) {
			affected = append(affected, tag)
			seen[tag] = true
		}
	}

	// The hint can implicate systems the raw text missed.
	if componentHint != "" {
		hintLower := strings.ToLower(componentHint)
		for _, tag := range types.AllSystems {
			if !seen[tag] && matchesSystem(hintLower, tag) {
				affected = append(affected, tag)
				seen[tag] = true
			}
		}
	}

	if len(affected) == 0 {
		affected = []types.SystemTag{types.SystemGeneral}
	}

	ctx := types.SymptomContext{
		RawText:         rawText,
		VehicleID:       vehicleID,
		ComponentHint:   componentHint,
		AffectedSystems: affected,
		Keywords:        extractKeywords(lower),
	}

	ctx.SearchQueries = append(ctx.SearchQueries, rawText)
	for _, tag := range affected {
		ctx.SearchQueries = append(ctx.SearchQueries, SystemQuery(tag))
	}
	if componentHint != "" {
		ctx.SearchQueries = append(ctx.SearchQueries, fmt.Sprintf("%s inspektion fehlersuche", componentHint))
	}

	return ctx
}

// SystemQuery returns the derived retrieval query for one subsystem.
func SystemQuery(tag types.SystemTag) string {
	return fmt.Sprintf("%s problem troubleshooting", tag)
}

func matchesSystem(lowerText string, tag types.SystemTag) bool {
	for _, kw := range systemKeywords[tag] {
		if strings.Contains(lowerText, kw) {
			return true
		}
	}
	return false
}

// extractKeywords returns up to maxKeywords salient tokens in first-seen
// order: lower-cased, punctuation-trimmed, stop words and short tokens
// removed.
func extractKeywords(lowerText string) []string {
	var keywords []string
	seen := make(map[string]bool)

	for _, token := range strings.Fields(lowerText) {
		token = strings.Trim(token, ".,;:!?()\"'")
		if len([]rune(token)) <= 2 || stopWords[token] || seen[token] {
			continue
		}
		seen[token] = true
		keywords = append(keywords, token)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}
