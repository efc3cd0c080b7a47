// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-fetcher/pkg/types"
)

// Export is the on-disk form of one archived run.
type Export struct {
	Run    Run                 `json:"run" yaml:"run"`
	Papers []types.PaperResult `json:"papers" yaml:"papers"`
}

// ExportYAML writes the run identified by idPrefix to path as YAML.
func (s *Store) ExportYAML(ctx context.Context, idPrefix, path string) error {
	exp, err := s.export(ctx, idPrefix)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(exp)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the run identified by idPrefix to path as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, idPrefix, path string) error {
	exp, err := s.export(ctx, idPrefix)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) export(ctx context.Context, idPrefix string) (Export, error) {
	run, err := s.Find(ctx, idPrefix)
	if err != nil {
		return Export{}, err
	}
	papers, err := s.Papers(ctx, run.ID)
	if err != nil {
		return Export{}, fmt.Errorf("loading papers for export: %w", err)
	}
	return Export{Run: run, Papers: papers}, nil
}
