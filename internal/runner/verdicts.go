package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/vigil/internal/model"
)

// ModelSlug returns the filename-safe tail of an OpenRouter model name,
// "deepseek/deepseek-v3.2" becoming "deepseek-v3.2".
func ModelSlug(judgeModel string) string {
	if i := strings.LastIndex(judgeModel, "/"); i >= 0 {
		return judgeModel[i+1:]
	}
	return judgeModel
}

// SaveVerdict writes one verdict record under dir, creating the
// directory as needed, and returns the file path. The name carries the
// run date, the edited item, the property, and the judge.
func SaveVerdict(dir string, record *model.VerdictRecord) (string, error) {
	title := record.Title
	if title == "" {
		title = "Q0"
	}
	property := record.Property
	if property == "" {
		property = "P0"
	}
	date := time.Now().UTC().Format("2006-01-02")
	name := fmt.Sprintf("%s-%s-%s-%s.yaml", date, title, property, ModelSlug(record.Model))

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create verdict dir %s: %w", dir, err)
	}

	data, err := yaml.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal verdict: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write verdict %s: %w", path, err)
	}
	return path, nil
}
