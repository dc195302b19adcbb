// Package runner fans enriched edits out to judge models, one
// (edit, model) unit at a time, with per-unit wall clock budgets and a
// checkpoint file that lets an interrupted run resume without paying
// for finished units again.
package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Pair identifies one (edit, judge model) unit
type Pair struct {
	RCID  int64  `yaml:"rcid"`
	Model string `yaml:"model"`
}

type checkpointFile struct {
	Completed []Pair `yaml:"completed"`
}

// Checkpoint is the set of units already processed. Every Record
// flushes to disk, so a crash loses at most the unit in flight.
type Checkpoint struct {
	path string
	done map[Pair]bool
}

// LoadCheckpoint reads the checkpoint at path. A missing file is an
// empty checkpoint, not an error.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	cp := &Checkpoint{path: path, done: make(map[Pair]bool)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cp, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint %s: %w", path, err)
	}

	var file checkpointFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse checkpoint %s: %w", path, err)
	}
	for _, p := range file.Completed {
		cp.done[p] = true
	}
	return cp, nil
}

// Done reports whether a unit was already processed
func (c *Checkpoint) Done(rcid int64, judgeModel string) bool {
	return c.done[Pair{RCID: rcid, Model: judgeModel}]
}

// Record marks a unit processed and rewrites the file
func (c *Checkpoint) Record(rcid int64, judgeModel string) error {
	c.done[Pair{RCID: rcid, Model: judgeModel}] = true
	return c.save()
}

// Len returns the number of recorded units
func (c *Checkpoint) Len() int {
	return len(c.done)
}

func (c *Checkpoint) save() error {
	pairs := make([]Pair, 0, len(c.done))
	for p := range c.done {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].RCID != pairs[j].RCID {
			return pairs[i].RCID < pairs[j].RCID
		}
		return pairs[i].Model < pairs[j].Model
	})

	data, err := yaml.Marshal(checkpointFile{Completed: pairs})
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create checkpoint dir: %w", err)
		}
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("write checkpoint %s: %w", c.path, err)
	}
	return nil
}
