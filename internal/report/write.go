package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Durable report encodings.
const (
	FormatCSV  = "csv"
	FormatYAML = "yaml"
)

var csvHeader = []string{"source", "target", "archive", "status", "kind", "duration_ms", "detail"}

// Path returns the timestamped report file path inside dir.
func Path(dir, format string, now time.Time) string {
	ext := FormatCSV
	if format == FormatYAML {
		ext = FormatYAML
	}
	return filepath.Join(dir, fmt.Sprintf("conversion_report_%s.%s", now.Format("20060102_150405"), ext))
}

// Write persists the durable report, one row per processed file.
func Write(path, format string, r RunReport) error {
	var data []byte
	var err error
	switch format {
	case FormatYAML:
		data, err = marshalYAML(r)
	case FormatCSV, "":
		data, err = marshalCSV(r)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func marshalCSV(r RunReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, o := range r.Outcomes {
		row := []string{
			o.Name,
			baseOrEmpty(o.Target),
			baseOrEmpty(o.Archive),
			string(o.Status),
			o.Kind,
			strconv.FormatInt(o.Duration.Milliseconds(), 10),
			o.Detail,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// marshalYAML emits a canonical document: sorted keys, two-space indent,
// stable across runs for the same outcomes.
func marshalYAML(r RunReport) ([]byte, error) {
	top := &yaml.Node{Kind: yaml.MappingNode}
	top.Content = append(top.Content, scalarNode("summary"), canonicalMapNode(map[string]any{
		"total":     r.Total,
		"succeeded": r.Succeeded,
		"skipped":   r.Skipped,
		"failed":    r.Failed,
		"totalMs":   r.TotalDuration.Milliseconds(),
		"avgMs":     r.AvgDuration.Milliseconds(),
	}))

	rows := &yaml.Node{Kind: yaml.SequenceNode}
	for _, o := range r.Outcomes {
		rows.Content = append(rows.Content, canonicalMapNode(map[string]any{
			"source":     o.Name,
			"target":     baseOrEmpty(o.Target),
			"archive":    baseOrEmpty(o.Archive),
			"status":     string(o.Status),
			"kind":       o.Kind,
			"durationMs": o.Duration.Milliseconds(),
			"detail":     o.Detail,
		}))
	}
	top.Content = append(top.Content, scalarNode("outcomes"), rows)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(top); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func scalarNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func scalarFrom(v any) *yaml.Node {
	n := &yaml.Node{}
	_ = n.Encode(v)
	return n
}

func canonicalMapNode(m map[string]any) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n.Content = append(n.Content, scalarNode(k), scalarFrom(m[k]))
	}
	return n
}

func baseOrEmpty(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}
