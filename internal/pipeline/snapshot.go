package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/vigil/internal/model"
)

// SaveSnapshot writes the edits as a timestamped YAML snapshot named
// <YYYY-MM-DD-HHMMSS>-<label>.yaml and returns the file path.
func SaveSnapshot(edits []*model.Edit, label, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	now := time.Now().UTC()
	snapshot := &model.Snapshot{
		FetchDate: now.Format(time.RFC3339),
		Label:     label,
		Count:     len(edits),
		Edits:     edits,
	}

	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	path := filepath.Join(dir, now.Format("2006-01-02-150405")+"-"+label+".yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot file written by SaveSnapshot
func LoadSnapshot(path string) (*model.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot model.Snapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", filepath.Base(path), err)
	}
	return &snapshot, nil
}
