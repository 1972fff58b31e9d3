package event

import (
	"time"

	"github.com/elevatehq/pulse/pkg/pulse/config"
	perrors "github.com/elevatehq/pulse/pkg/pulse/errors"
)

// ConfigFromMap builds a BusConfig from a loaded configuration section.
//
// Recognized keys:
//
//	history_size: 1000
//	gate_flag: event-processing-enabled
//	dead_letter:
//	  max_entries: 1000
//	  sweep_interval: 30s
//	  backoff_base: 60s
//	  backoff_max: 0s
//
// Durations accept Go duration strings or bare seconds. Unset keys take
// the documented defaults. Collaborators (gate, logger, metrics, spans)
// are code, not configuration; set them on the returned BusConfig.
func ConfigFromMap(cfg config.Config) BusConfig {
	dl := cfg.Section("dead_letter")

	return BusConfig{
		HistorySize: cfg.Int("history_size", DefaultHistorySize),
		GateFlag:    cfg.String("gate_flag", DefaultGateFlag),
		DeadLetter: DeadLetterConfig{
			MaxEntries:    dl.Int("max_entries", DefaultDeadLetterCapacity),
			SweepInterval: dl.Duration("sweep_interval", DefaultSweepInterval),
			Backoff: perrors.Backoff{
				Base: dl.Duration("backoff_base", perrors.DefaultBackoff.Base),
				Max:  dl.Duration("backoff_max", time.Duration(0)),
			},
		},
	}
}
