package compat

import "pcforge-backend/internal/domain/component"

// RuleCode identifies a compatibility rule. Codes are stable; UI copy keys
// on them.
type RuleCode string

const (
	RuleCPUSocket       RuleCode = "CPU_MOTHERBOARD_SOCKET"
	RuleMemoryType      RuleCode = "RAM_MEMORY_TYPE"
	RuleMemorySpeed     RuleCode = "RAM_MEMORY_SPEED"
	RuleMemoryCapacity  RuleCode = "RAM_TOTAL_CAPACITY"
	RuleMemorySlots     RuleCode = "RAM_SLOT_COUNT"
	RuleCoolerSocket    RuleCode = "COOLER_SOCKET_SUPPORT"
	RuleCoolerHeight    RuleCode = "COOLER_CASE_HEIGHT"
	RuleGPULength       RuleCode = "GPU_CASE_LENGTH"
	RulePSUWattage      RuleCode = "PSU_WATTAGE_HEADROOM"
	RulePSUFormFactor   RuleCode = "PSU_CASE_FORM_FACTOR"
	RuleBoardFormFactor RuleCode = "MOTHERBOARD_CASE_FORM_FACTOR"
	RuleNVMeSlots       RuleCode = "STORAGE_NVME_SLOTS"
	RuleSATAPorts       RuleCode = "STORAGE_SATA_PORTS"
)

// Violation is one failed compatibility rule given the current membership.
// A violation is reportable state, not an error: builds holding violations
// remain legal and saveable.
type Violation struct {
	Rule       RuleCode             `json:"rule"`
	Message    string               `json:"message"`
	Categories []component.Category `json:"categories"`
}

// Decision is the outcome of a CanAdd probe.
type Decision struct {
	Accepted   bool        `json:"accepted"`
	Violations []Violation `json:"violations,omitempty"`
}
