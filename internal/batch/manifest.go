package batch

import (
	"encoding/json"
	"fmt"
	"os"
)

// ManifestName is the file WriteManifest produces in the output directory.
const ManifestName = "manifest.json"

// ManifestEntry represents one rendered scene in the output manifest.
type ManifestEntry struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Depth  int    `json:"depth"`
	Image  string `json:"image"`
}

// WriteManifest writes the successful results to path.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		entries = append(entries, ManifestEntry{
			Name:   r.Name,
			Source: r.Source,
			Width:  r.Width,
			Height: r.Height,
			Depth:  r.Depth,
			Image:  r.Image,
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("batch: write manifest: %w", err)
	}
	return nil
}
