package models

import "time"

// ScanBrief is an AI-generated summary of a completed scan. Optional; scans
// carry one only when the intel service is configured and the generation
// succeeded.
type ScanBrief struct {
	Summary     string    `json:"summary"`
	Highlights  []string  `json:"highlights,omitempty"`
	Cautions    []string  `json:"cautions,omitempty"`
	Model       string    `json:"model,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}
