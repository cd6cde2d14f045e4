package health

import (
	"context"
	"time"

	"github.com/cuemby/opsboard/pkg/log"
	"github.com/cuemby/opsboard/pkg/metrics"
)

// Source produces the health column of a snapshot: it invokes the probe,
// parses its output and substitutes a fallback table when either fails
type Source struct {
	invoker Invoker
	parser  Parser
}

// NewSource creates a Source. A nil parser selects the text parser.
func NewSource(invoker Invoker, parser Parser) *Source {
	if parser == nil {
		parser = NewTextParser()
	}
	return &Source{invoker: invoker, parser: parser}
}

// Records runs one probe cycle. It never fails and never returns an
// empty record list.
func (s *Source) Records(ctx context.Context) Report {
	start := time.Now()
	logger := log.WithComponent("health")

	raw, err := s.invoker.Invoke(ctx)
	records, tier := Resolve(s.parser, raw, err)

	report := Report{
		Records:   records,
		Tier:      tier,
		CheckedAt: start,
		Duration:  time.Since(start),
	}

	if failure, ok := AsProbeFailure(err); ok {
		report.Reason = failure.Reason
	}

	metrics.HealthSourceTotal.WithLabelValues(string(tier)).Inc()

	switch tier {
	case TierLive:
		logger.Debug().Int("records", len(records)).Msg("Health records parsed from probe output")
	case TierNoData:
		logger.Warn().Msg("Probe output matched no known service, using no-data fallback")
	case TierCheckFailed:
		logger.Warn().Str("reason", string(report.Reason)).Msg("Health check failed, using check-failed fallback")
	}

	return report
}
