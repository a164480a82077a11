package brief

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type LoaderOptions struct {
	CampaignsDir   string
	BriefFilename  string
	MarkerFilename string
	Logger         *slog.Logger
}

type Loader struct {
	campaignsDir   string
	briefFilename  string
	markerFilename string
	logger         *slog.Logger
}

func NewLoader(opts LoaderOptions) *Loader {
	campaignsDir := opts.CampaignsDir
	if campaignsDir == "" {
		campaignsDir = "campaigns"
	}

	briefFilename := opts.BriefFilename
	if briefFilename == "" {
		briefFilename = "brief.yaml"
	}

	markerFilename := opts.MarkerFilename
	if markerFilename == "" {
		markerFilename = "meta.yaml"
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Loader{
		campaignsDir:   campaignsDir,
		briefFilename:  briefFilename,
		markerFilename: markerFilename,
		logger:         logger,
	}
}

// LoadAll scans the campaigns root and returns the briefs still waiting
// to be processed, in lexical directory order. Campaigns whose marker
// says done are skipped; campaigns whose brief cannot be read or parsed
// are logged and skipped without aborting the scan.
func (l *Loader) LoadAll() ([]Brief, error) {
	entries, err := os.ReadDir(l.campaignsDir)
	if err != nil {
		return nil, fmt.Errorf("read campaigns dir: %w", err)
	}

	var briefs []Brief
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		name := entry.Name()
		dir := filepath.Join(l.campaignsDir, name)

		marker, err := ReadMarker(filepath.Join(dir, l.markerFilename))
		switch {
		case err == nil && marker.Done():
			l.logger.Info("skipping completed campaign", "campaign", name)
			continue
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			l.logger.Warn("unreadable campaign marker", "campaign", name, "err", err)
		}

		data, err := os.ReadFile(filepath.Join(dir, l.briefFilename))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				l.logger.Debug("campaign has no brief file", "campaign", name)
			} else {
				l.logger.Error("failed to read brief", "campaign", name, "err", err)
			}
			continue
		}

		var b Brief
		if err := yaml.Unmarshal(data, &b); err != nil {
			l.logger.Error("failed to parse brief", "campaign", name, "err", err)
			continue
		}

		b.CampaignName = name
		b.CampaignPath = dir
		b.applyDefaults()
		briefs = append(briefs, b)

		l.logger.Info("loaded campaign", "campaign", name)
	}

	return briefs, nil
}
