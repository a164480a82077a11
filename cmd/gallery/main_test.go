package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"campaign-forge/internal/brief"
)

func newTestServer(t *testing.T) *server {
	t.Helper()
	return &server{
		campaignsDir: t.TempDir(),
		resultsDir:   "results",
		briefFile:    "brief.yaml",
		markerFile:   "meta.yaml",
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestHandleCampaigns(t *testing.T) {
	s := newTestServer(t)

	doneDir := filepath.Join(s.campaignsDir, "finished")
	require.NoError(t, os.MkdirAll(filepath.Join(doneDir, "results", "teapot", "base", "1x1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(doneDir, "brief.yaml"), []byte("products: [Teapot]\nlanguages: [English, German]\n"), 0o644))
	require.NoError(t, brief.WriteMarker(filepath.Join(doneDir, "meta.yaml"), brief.CompletedMarker()))
	for _, name := range []string{"teapot_1x1.png", "teapot_16x9.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(doneDir, "results", "teapot", "base", "1x1", name), []byte("png"), 0o644))
	}

	pendingDir := filepath.Join(s.campaignsDir, "pending_one")
	require.NoError(t, os.MkdirAll(pendingDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pendingDir, "brief.yaml"), []byte("products: [Kettle]\n"), 0o644))

	// Stray files are not campaigns.
	require.NoError(t, os.WriteFile(filepath.Join(s.campaignsDir, "notes.txt"), []byte("x"), 0o644))

	rec := httptest.NewRecorder()
	s.handleCampaigns(rec, httptest.NewRequest(http.MethodGet, "/api/campaigns", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var campaigns []campaignInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &campaigns))
	require.Len(t, campaigns, 2)

	require.Equal(t, "finished", campaigns[0].Name)
	require.Equal(t, "done", campaigns[0].Status)
	require.NotEmpty(t, campaigns[0].CompletedAt)
	require.Equal(t, []string{"Teapot"}, campaigns[0].Products)
	require.Equal(t, []string{"English", "German"}, campaigns[0].Languages)
	require.Equal(t, 2, campaigns[0].Renders)

	require.Equal(t, "pending_one", campaigns[1].Name)
	require.Equal(t, "pending", campaigns[1].Status)
	require.Empty(t, campaigns[1].CompletedAt)
	require.Zero(t, campaigns[1].Renders)
}

func TestHandleCampaignsMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleCampaigns(rec, httptest.NewRequest(http.MethodPost, "/api/campaigns", nil))

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleCampaignsMissingRoot(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, os.RemoveAll(s.campaignsDir))

	rec := httptest.NewRecorder()
	s.handleCampaigns(rec, httptest.NewRequest(http.MethodGet, "/api/campaigns", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
