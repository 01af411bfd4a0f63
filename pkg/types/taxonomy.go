// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DefectPriority is the severity classification of a defect. It drives the
// response-time SLA, the vehicle-availability status, and the escalation
// path.
type DefectPriority string

const (
	PriorityCritical DefectPriority = "critical"
	PriorityHigh     DefectPriority = "high"
	PriorityMedium   DefectPriority = "medium"
	PriorityLow      DefectPriority = "low"
	PriorityInfo     DefectPriority = "info"
)

// PriorityOrder lists priorities from most to least severe. Classification
// scans them in this order and the first keyword match wins.
var PriorityOrder = []DefectPriority{
	PriorityCritical,
	PriorityHigh,
	PriorityMedium,
	PriorityLow,
	PriorityInfo,
}

// MaintenanceLevel is the NATO-style escalation tier determining who may
// perform a repair.
type MaintenanceLevel string

const (
	// LevelCrew covers operator-level checks and minor corrections.
	LevelCrew MaintenanceLevel = "L1"

	// LevelField covers unit workshop repairs with standard spares.
	LevelField MaintenanceLevel = "L2"

	// LevelDepot covers depot or manufacturer repairs.
	LevelDepot MaintenanceLevel = "L3"
)

// DefectCategory groups defects by the nature of the fault, independent of
// priority.
type DefectCategory string

const (
	CategoryMechanical DefectCategory = "mechanical"
	CategoryHydraulic  DefectCategory = "hydraulic"
	CategoryElectrical DefectCategory = "electrical"
	CategoryElectronic DefectCategory = "electronic"
	CategoryStructural DefectCategory = "structural"
)
