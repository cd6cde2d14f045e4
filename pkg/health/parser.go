package health

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/cuemby/opsboard/pkg/types"
)

const (
	// SuccessGlyph marks a line as ok
	SuccessGlyph = "✅"

	// CautionGlyph marks a line as warning. Matched without the emoji
	// variation selector so both "⚠" and "⚠️" count.
	CautionGlyph = "⚠"

	// TokenExpiredPhrase marks a line as warning, matched case-insensitively
	TokenExpiredPhrase = "token expired"

	// DefaultMaxLineBytes bounds a single probe output line
	DefaultMaxLineBytes = 64 * 1024
)

// Marker maps a substring found in probe output to a service display name
type Marker struct {
	Token       string
	DisplayName string
}

// DefaultMarkers are the integrations the probe reports on, in board order
var DefaultMarkers = []Marker{
	{Token: "QuickBooks", DisplayName: "QuickBooks API"},
	{Token: "GHL", DisplayName: "GHL CRM"},
	{Token: "Meta", DisplayName: "Meta Ads API"},
	{Token: "Gateway", DisplayName: "OpenClaw Gateway"},
}

// TextParser scrapes human-readable probe output line by line
type TextParser struct {
	Markers      []Marker
	MaxLineBytes int
}

// NewTextParser creates a parser for the default markers
func NewTextParser() *TextParser {
	return &TextParser{
		Markers:      DefaultMarkers,
		MaxLineBytes: DefaultMaxLineBytes,
	}
}

// Parse returns one record per (marker, matching line) pair, grouped by
// marker order. Repeated lines yield repeated records.
func (p *TextParser) Parse(raw RawOutput) ([]types.HealthRecord, error) {
	lines, err := p.lines(raw)
	if err != nil {
		return nil, err
	}

	var records []types.HealthRecord
	for _, marker := range p.Markers {
		for _, line := range lines {
			if strings.Contains(line, marker.Token) {
				records = append(records, Classify(line, marker.DisplayName))
			}
		}
	}
	return records, nil
}

func (p *TextParser) lines(raw RawOutput) ([]string, error) {
	maxLine := p.MaxLineBytes
	if maxLine <= 0 {
		maxLine = DefaultMaxLineBytes
	}

	scanner := bufio.NewScanner(strings.NewReader(string(raw)))
	// the effective limit is the larger of maxLine and the initial capacity
	scanner.Buffer(make([]byte, 0, min(4096, maxLine)), maxLine)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("health: scan probe output: %w", err)
	}
	return lines, nil
}

// Classify maps one probe line to a record for the named service
func Classify(line, displayName string) types.HealthRecord {
	switch {
	case strings.Contains(line, SuccessGlyph):
		return types.HealthRecord{ServiceName: displayName, Level: types.LevelOK}
	case strings.Contains(strings.ToLower(line), TokenExpiredPhrase):
		return types.HealthRecord{ServiceName: displayName + " - Token Expired", Level: types.LevelWarning}
	case strings.Contains(line, CautionGlyph):
		return types.HealthRecord{ServiceName: displayName + " - Warning", Level: types.LevelWarning}
	default:
		return types.HealthRecord{ServiceName: displayName + " - Issue", Level: types.LevelIssue}
	}
}

// Resolve applies the fallback policy to one probe run: a probe failure or
// a parser failure yields the check-failed table, an empty parse yields
// the no-data table. The result is never empty.
func Resolve(parser Parser, raw RawOutput, probeErr error) (records []types.HealthRecord, tier Tier) {
	if probeErr != nil {
		return CheckFailedFallback(), TierCheckFailed
	}

	defer func() {
		if r := recover(); r != nil {
			records, tier = CheckFailedFallback(), TierCheckFailed
		}
	}()

	parsed, err := parser.Parse(raw)
	if err != nil {
		return CheckFailedFallback(), TierCheckFailed
	}
	if len(parsed) == 0 {
		return NoDataFallback(), TierNoData
	}
	return parsed, TierLive
}
