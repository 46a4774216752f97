// Command markergen renders printable QR codes for marker ids. Each code
// encodes the frontend URL with the marker id, so scanning it opens the AR
// experience for that marker.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

func main() {
	var (
		id      = flag.String("id", "", "marker id to encode; generated when empty")
		count   = flag.Int("count", 1, "number of markers to generate (ignored when -id is set)")
		baseURL = flag.String("base-url", "http://localhost:3000", "frontend URL the code points at")
		out     = flag.String("out", "./markers", "output directory")
		size    = flag.Int("size", 512, "image size in pixels")
	)
	flag.Parse()

	ids := make([]string, 0, *count)
	if *id != "" {
		ids = append(ids, *id)
	} else {
		for i := 0; i < *count; i++ {
			ids = append(ids, uuid.New().String())
		}
	}

	paths, err := generate(ids, *baseURL, *out, *size)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for i, path := range paths {
		fmt.Printf("%s\t%s\n", ids[i], path)
	}
}

// generate writes one marker-<id>.png per id and returns the written paths.
func generate(ids []string, baseURL, out string, size int) ([]string, error) {
	if err := os.MkdirAll(out, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(ids))
	for _, markerID := range ids {
		target := fmt.Sprintf("%s?marker=%s", baseURL, markerID)
		path := filepath.Join(out, fmt.Sprintf("marker-%s.png", markerID))

		if err := qrcode.WriteFile(target, qrcode.Medium, size, path); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
