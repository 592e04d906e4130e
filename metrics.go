package virusscan

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for scanTotal.
const (
	outcomeClean       = "clean"
	outcomeInfected    = "infected"
	outcomeSkipped     = "skipped"
	outcomeDisabled    = "disabled"
	outcomeDegraded    = "degraded"
	outcomeUnavailable = "unavailable"
)

var (
	scanTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "virusscan",
		Name:      "scan_total",
		Help:      "Scan count by backend provider and terminal outcome.",
	}, []string{"provider", "outcome"})
	scanDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "virusscan",
		Name:      "scan_duration_seconds",
		Help:      "Wall-clock scan duration, including connection setup and teardown.",
	}, []string{"provider"})
)
