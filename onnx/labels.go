package onnx

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/krau/moodshop/config"
)

// ReadLines returns the trimmed, non-empty lines of a text file.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if l := strings.TrimSpace(sc.Text()); l != "" {
			lines = append(lines, l)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// Labels returns the model's output labels, preferring the labels file.
func Labels(cfg config.AnalyzerConfig) ([]string, error) {
	if cfg.LabelsFile == "" {
		return cfg.Labels, nil
	}
	labels, err := ReadLines(cfg.LabelsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	return labels, nil
}
