package cron

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/opsboard/pkg/types"
)

func writeToken(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gateway.token")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestGatewayListLive(t *testing.T) {
	var gotAuth, gotQuery, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"jobs":[
			{"name":"Morning Brief","enabled":true,"schedule":{"kind":"cron","expr":"0 7 * * *"}},
			{"name":"Paused Job","enabled":false,"schedule":{"kind":"cron","expr":"0 9 * * *"}},
			{"enabled":true,"schedule":{"kind":"every","everyMs":1800000}},
			{"name":"Odd","enabled":true,"schedule":{"kind":"cron","expr":"15 3 * * 2"}}
		]}`)
	}))
	defer server.Close()

	gw := NewGateway(server.URL+"/", writeToken(t, "  secret-token\n"))
	report := gw.List(context.Background())

	require.NoError(t, report.Err)
	assert.Equal(t, SourceLive, report.Source)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "/cron", gotPath)
	assert.Contains(t, gotQuery, "action=list")
	assert.Contains(t, gotQuery, "includeDisabled=false")

	assert.Equal(t, []types.Automation{
		{Name: "Morning Brief", NextRunLabel: "Daily: 7:00 AM"},
		{Name: DefaultUnnamed, NextRunLabel: "Every 30 min"},
		{Name: "Odd", NextRunLabel: "Cron: 15 3 * * 2"},
	}, report.Automations)
}

func TestGatewayListCapsAtMax(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var jobs []string
		for i := 0; i < 12; i++ {
			jobs = append(jobs, fmt.Sprintf(`{"name":"job-%d","enabled":true,"schedule":{"kind":"every","everyMs":60000}}`, i))
		}
		fmt.Fprintf(w, `{"jobs":[%s]}`, strings.Join(jobs, ","))
	}))
	defer server.Close()

	report := NewGateway(server.URL, writeToken(t, "tok")).List(context.Background())

	require.Len(t, report.Automations, types.MaxAutomations)
	assert.Equal(t, "job-0", report.Automations[0].Name)
	assert.Equal(t, "job-7", report.Automations[7].Name)
}

func TestGatewayListEmptyIsLive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jobs":[]}`)
	}))
	defer server.Close()

	report := NewGateway(server.URL, writeToken(t, "tok")).List(context.Background())

	require.NoError(t, report.Err)
	assert.Equal(t, SourceLive, report.Source)
	assert.NotNil(t, report.Automations)
	assert.Empty(t, report.Automations)
}

func TestGatewayListFallback(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		token   func(t *testing.T) string
	}{
		{
			name: "non-2xx status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", http.StatusUnauthorized)
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"jobs": [`)
			},
		},
		{
			name: "missing token file",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"jobs":[]}`)
			},
			token: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent")
			},
		},
		{
			name: "empty token file",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"jobs":[]}`)
			},
			token: func(t *testing.T) string {
				return writeToken(t, " \n")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			tokenFile := writeToken(t, "tok")
			if tt.token != nil {
				tokenFile = tt.token(t)
			}

			report := NewGateway(server.URL, tokenFile).List(context.Background())

			assert.ErrorIs(t, report.Err, ErrGatewayUnavailable)
			assert.Equal(t, SourceFallback, report.Source)
			assert.Equal(t, FallbackAutomations(), report.Automations)
		})
	}
}

func TestGatewayListUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	report := NewGateway(url, writeToken(t, "tok")).List(context.Background())

	assert.ErrorIs(t, report.Err, ErrGatewayUnavailable)
	assert.Equal(t, SourceFallback, report.Source)
	assert.Len(t, report.Automations, 4)
}

func TestGatewayListTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	start := time.Now()
	report := NewGateway(server.URL, writeToken(t, "tok")).
		WithTimeout(50 * time.Millisecond).
		List(context.Background())

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.ErrorIs(t, report.Err, ErrGatewayUnavailable)
	assert.Equal(t, SourceFallback, report.Source)
}

func TestFallbackAutomationsIsACopy(t *testing.T) {
	first := FallbackAutomations()
	first[0].Name = "mutated"

	second := FallbackAutomations()
	assert.Equal(t, "Daily Morning Brief", second[0].Name)
	assert.Equal(t, types.Automation{Name: "Sales Brief", NextRunLabel: "Coming Soon"}, second[3])
}

func TestToAutomationsBlankNameDefaults(t *testing.T) {
	blank := "   "
	got := ToAutomations([]Job{{Name: &blank, Enabled: true, Schedule: Schedule{Kind: "unknown"}}})

	assert.Equal(t, []types.Automation{{Name: DefaultUnnamed, NextRunLabel: UnknownLabel}}, got)
}
