package brief

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const StatusDone = "done"

// Marker records campaign completion at the campaign folder root. Any
// status other than "done" leaves the campaign eligible for processing.
type Marker struct {
	Status      string `yaml:"status"`
	CompletedAt string `yaml:"completed_at"`
	ScenePrompt string `yaml:"scene_prompt,omitempty"`
}

func (m Marker) Done() bool {
	return m.Status == StatusDone
}

// CompletedMarker stamps a fresh marker for a campaign that just
// finished.
func CompletedMarker() Marker {
	return Marker{
		Status:      StatusDone,
		CompletedAt: time.Now().Format(time.RFC3339),
	}
}

func ReadMarker(path string) (Marker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Marker{}, err
	}

	var m Marker
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Marker{}, fmt.Errorf("parse marker: %w", err)
	}
	return m, nil
}

func WriteMarker(path string, m Marker) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal marker: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
