package main

import (
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"campaign-forge/internal/brief"
)

//go:embed static/*
var staticFS embed.FS

// gallery is a read-only browser over the campaigns tree, meant for
// eyeballing run output without shelling into the results folders.
type server struct {
	campaignsDir string
	resultsDir   string
	briefFile    string
	markerFile   string
	logger       *slog.Logger
}

type apiError struct {
	Error string `json:"error"`
}

type campaignInfo struct {
	Name        string   `json:"name"`
	Status      string   `json:"status"`
	CompletedAt string   `json:"completed_at,omitempty"`
	Products    []string `json:"products,omitempty"`
	Languages   []string `json:"languages,omitempty"`
	Renders     int      `json:"renders"`
}

func main() {
	_ = godotenv.Load()

	addr := strings.TrimSpace(getEnv("GALLERY_ADDR", ":8080"))

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	s := &server{
		campaignsDir: strings.TrimSpace(getEnv("CAMPAIGNS_DIR", "campaigns")),
		resultsDir:   strings.TrimSpace(getEnv("RESULTS_DIR_NAME", "results")),
		briefFile:    strings.TrimSpace(getEnv("BRIEF_FILENAME", "brief.yaml")),
		markerFile:   strings.TrimSpace(getEnv("MARKER_FILENAME", "meta.yaml")),
		logger:       logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/campaigns", s.handleCampaigns)
	mux.Handle("/files/", http.StripPrefix("/files/", http.FileServer(http.Dir(s.campaignsDir))))

	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticSub)))

	srv := &http.Server{
		Addr:              addr,
		Handler:           withLogging(mux, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       90 * time.Second,
	}

	logger.Info("gallery started", "addr", addr, "campaigns_dir", s.campaignsDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "err", err)
	}
}

func (s *server) handleCampaigns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}

	entries, err := os.ReadDir(s.campaignsDir)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "failed to read campaigns dir"})
		return
	}

	campaigns := make([]campaignInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		campaigns = append(campaigns, s.describeCampaign(entry.Name()))
	}

	writeJSON(w, http.StatusOK, campaigns)
}

func (s *server) describeCampaign(name string) campaignInfo {
	dir := filepath.Join(s.campaignsDir, name)

	info := campaignInfo{
		Name:   name,
		Status: "pending",
	}

	if marker, err := brief.ReadMarker(filepath.Join(dir, s.markerFile)); err == nil && marker.Done() {
		info.Status = brief.StatusDone
		info.CompletedAt = marker.CompletedAt
	}

	if data, err := os.ReadFile(filepath.Join(dir, s.briefFile)); err == nil {
		var b brief.Brief
		if err := yaml.Unmarshal(data, &b); err == nil {
			info.Products = b.Products
			info.Languages = b.Languages
		} else {
			s.logger.Warn("unparseable brief", "campaign", name, "err", err)
		}
	}

	info.Renders = countRenders(filepath.Join(dir, s.resultsDir))
	return info
}

func countRenders(resultsPath string) int {
	count := 0
	_ = filepath.WalkDir(resultsPath, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(d.Name()), ".png") {
			count++
		}
		return nil
	})
	return count
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func withLogging(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("http", "method", r.Method, "path", r.URL.Path, "dur_ms", time.Since(start).Milliseconds())
	})
}
