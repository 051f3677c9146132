// Package convert normalizes extracted Cityscapes images into the naming
// and format the gaze dataset expects.
package convert

import (
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// JPEGQuality is the encode quality for normalized images.
const JPEGQuality = 95

// NormalizeImages walks root for PNG files whose basename appears in the
// lookup, converts each to a 3-channel JPEG at the mapped name directly
// under destDir (flattening any directory depth), and deletes the source.
// A failure on one image is logged and skipped; the rest of the batch
// continues. It returns how many images were converted.
func NormalizeImages(root, destDir string, lookup map[string]string, logger *slog.Logger) (int, error) {
	var sources []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".png") {
			return nil
		}
		if _, ok := lookup[d.Name()]; ok {
			sources = append(sources, path)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to walk image tree: %w", err)
	}

	converted := 0
	for _, src := range sources {
		target := filepath.Join(destDir, lookup[filepath.Base(src)])

		if err := convertOne(src, target); err != nil {
			logger.Warn("Failed to convert image", "source", src, "error", err)
			continue
		}

		if err := os.Remove(src); err != nil {
			logger.Warn("Failed to remove source image", "source", src, "error", err)
		}

		converted++
		logger.Debug("Converted image", "source", src, "target", target)
	}

	logger.Info("Image conversion complete", "converted", converted, "found", len(sources))
	return converted, nil
}

// convertOne decodes one PNG, forces it into 3-channel RGB, and writes it as
// a JPEG.
func convertOne(src, dest string) error {
	img, err := imaging.Open(src)
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	// Drop any alpha channel so the output is plain RGB.
	rgb := image.NewRGBA(img.Bounds())
	draw.Draw(rgb, rgb.Bounds(), img, img.Bounds().Min, draw.Src)

	if err := imaging.Save(rgb, dest, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}

	return nil
}
