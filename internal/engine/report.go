package engine

import (
	"time"

	"git.home.luguber.info/inful/docorch/internal/metrics"
)

// PageReport describes one rendered page.
type PageReport struct {
	Source      string `json:"source"`
	Output      string `json:"output"`
	Title       string `json:"title"`
	Fingerprint string `json:"fingerprint"`
	// Links and Images count the references found in the source.
	Links  int `json:"links"`
	Images int `json:"images"`
}

// Report summarises one build.
type Report struct {
	BuildID   string                    `json:"build_id"`
	Commit    string                    `json:"commit,omitempty"`
	StartedAt time.Time                 `json:"started_at"`
	Duration  time.Duration             `json:"duration"`
	Outcome   metrics.BuildOutcomeLabel `json:"outcome"`
	Pages     []PageReport              `json:"pages"`
}
