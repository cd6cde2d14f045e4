package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cuemby/opsboard/pkg/log"
	"github.com/cuemby/opsboard/pkg/metrics"
	"github.com/cuemby/opsboard/pkg/types"
)

// ErrGatewayUnavailable wraps every failure of the gateway listing call
var ErrGatewayUnavailable = errors.New("cron: gateway unavailable")

// DefaultUnnamed is used for jobs the gateway reports without a name
const DefaultUnnamed = "Unnamed Task"

const maxResponseBytes = 1 << 20

// Job is one entry of the gateway's cron listing
type Job struct {
	Name     *string  `json:"name"`
	Enabled  bool     `json:"enabled"`
	Schedule Schedule `json:"schedule"`
}

type listResponse struct {
	Jobs []Job `json:"jobs"`
}

// Source names which path produced an automation list
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// Report is the outcome of one Gateway.List call
type Report struct {
	Automations []types.Automation
	Source      Source
	Err         error
}

// Gateway lists automation jobs from the local scheduling gateway
type Gateway struct {
	// URL is the gateway base URL (e.g., "http://127.0.0.1:18789")
	URL string

	// TokenFile holds the bearer credential, read on every call
	TokenFile string

	// Client is the HTTP client to use; its Timeout caps the call
	Client *http.Client
}

// NewGateway creates a gateway client with a 5 second timeout
func NewGateway(baseURL, tokenFile string) *Gateway {
	return &Gateway{
		URL:       baseURL,
		TokenFile: tokenFile,
		Client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// WithTimeout sets the HTTP client timeout
func (g *Gateway) WithTimeout(timeout time.Duration) *Gateway {
	g.Client.Timeout = timeout
	return g
}

// List returns the enabled automations, capped at types.MaxAutomations.
// It never fails: any gateway error yields the fallback list.
func (g *Gateway) List(ctx context.Context) Report {
	logger := log.WithComponent("cron")
	timer := metrics.NewTimer()

	automations, err := g.Fetch(ctx)
	timer.ObserveDuration(metrics.GatewayRequestDuration)

	if err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues("fallback").Inc()
		logger.Warn().Err(err).Msg("Gateway listing failed, using fallback automations")
		return Report{Automations: FallbackAutomations(), Source: SourceFallback, Err: err}
	}

	metrics.GatewayRequestsTotal.WithLabelValues("success").Inc()
	logger.Debug().Int("automations", len(automations)).Msg("Gateway listing succeeded")
	return Report{Automations: automations, Source: SourceLive}
}

// Fetch performs the gateway call. Every error wraps ErrGatewayUnavailable.
func (g *Gateway) Fetch(ctx context.Context) ([]types.Automation, error) {
	token, err := g.readToken()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}

	endpoint, err := g.listURL()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrGatewayUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d %s", ErrGatewayUnavailable, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var body listResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %w", ErrGatewayUnavailable, err)
	}

	return ToAutomations(body.Jobs), nil
}

func (g *Gateway) readToken() (string, error) {
	data, err := os.ReadFile(g.TokenFile)
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", g.TokenFile)
	}
	return token, nil
}

func (g *Gateway) listURL() (string, error) {
	u, err := url.Parse(strings.TrimRight(g.URL, "/") + "/cron")
	if err != nil {
		return "", fmt.Errorf("invalid gateway url: %w", err)
	}
	q := u.Query()
	q.Set("action", "list")
	q.Set("includeDisabled", "false")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ToAutomations keeps enabled jobs in gateway order, names unnamed ones,
// labels their schedules and caps the result
func ToAutomations(jobs []Job) []types.Automation {
	out := make([]types.Automation, 0, min(len(jobs), types.MaxAutomations))
	for _, job := range jobs {
		if !job.Enabled {
			continue
		}
		name := DefaultUnnamed
		if job.Name != nil && strings.TrimSpace(*job.Name) != "" {
			name = *job.Name
		}
		out = append(out, types.Automation{Name: name, NextRunLabel: Label(job.Schedule)})
		if len(out) == types.MaxAutomations {
			break
		}
	}
	return out
}

var fallbackAutomations = [...]types.Automation{
	{Name: "Daily Morning Brief", NextRunLabel: "Daily: 7:00 AM"},
	{Name: "System Optimizer", NextRunLabel: "Daily: 8:00 PM"},
	{Name: "P&L Reports", NextRunLabel: "Weekly: Mon 8:30 AM"},
	{Name: "Sales Brief", NextRunLabel: "Coming Soon"},
}

// FallbackAutomations returns a fresh copy of the standing job list shown
// when the gateway is unreachable
func FallbackAutomations() []types.Automation {
	out := make([]types.Automation, len(fallbackAutomations))
	copy(out, fallbackAutomations[:])
	return out
}
