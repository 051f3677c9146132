package convert

import (
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTestPNG(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	img := imaging.New(8, 8, color.NRGBA{R: 100, G: 150, B: 200, A: 255})
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("Failed to write test PNG: %v", err)
	}
}

func TestNormalizeImages(t *testing.T) {
	root := t.TempDir()
	writeTestPNG(t, filepath.Join(root, "train", "city", "a.png"))
	writeTestPNG(t, filepath.Join(root, "val", "b.png"))
	writeTestPNG(t, filepath.Join(root, "val", "unmapped.png"))

	lookup := map[string]string{
		"a.png": "img1.jpg",
		"b.png": "img2.jpg",
	}

	converted, err := NormalizeImages(root, root, lookup, testLogger())
	if err != nil {
		t.Fatalf("NormalizeImages failed: %v", err)
	}

	if converted != 2 {
		t.Errorf("Expected 2 conversions, got %d", converted)
	}

	// Outputs land flattened under the destination root.
	for _, name := range []string{"img1.jpg", "img2.jpg"} {
		if _, err := os.Stat(filepath.Join(root, name)); err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
		}
	}

	// Source PNGs are deleted after conversion.
	for _, src := range []string{
		filepath.Join(root, "train", "city", "a.png"),
		filepath.Join(root, "val", "b.png"),
	} {
		if _, err := os.Stat(src); !os.IsNotExist(err) {
			t.Errorf("Expected source %s to be removed", src)
		}
	}

	// Unmapped images are left alone.
	if _, err := os.Stat(filepath.Join(root, "val", "unmapped.png")); err != nil {
		t.Errorf("Expected unmapped.png to survive: %v", err)
	}
}

func TestNormalizeImagesOutputIsOpaqueJPEG(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.png")

	// Source carries an alpha channel.
	img := imaging.New(4, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 128})
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("Failed to write test PNG: %v", err)
	}

	if _, err := NormalizeImages(root, root, map[string]string{"a.png": "out.jpg"}, testLogger()); err != nil {
		t.Fatalf("NormalizeImages failed: %v", err)
	}

	out, err := imaging.Open(filepath.Join(root, "out.jpg"))
	if err != nil {
		t.Fatalf("Failed to open output: %v", err)
	}

	_, _, _, a := out.At(1, 1).RGBA()
	if a != 0xffff {
		t.Errorf("Expected opaque output, got alpha %d", a)
	}
	if out.Bounds() != image.Rect(0, 0, 4, 4) {
		t.Errorf("Unexpected output bounds: %v", out.Bounds())
	}
}

func TestNormalizeImagesSkipsCorruptInput(t *testing.T) {
	root := t.TempDir()
	writeTestPNG(t, filepath.Join(root, "good.png"))
	if err := os.WriteFile(filepath.Join(root, "bad.png"), []byte("not a png"), 0644); err != nil {
		t.Fatal(err)
	}

	lookup := map[string]string{
		"good.png": "good.jpg",
		"bad.png":  "bad.jpg",
	}

	converted, err := NormalizeImages(root, root, lookup, testLogger())
	if err != nil {
		t.Fatalf("NormalizeImages failed: %v", err)
	}

	// The corrupt image is skipped; the valid one still converts.
	if converted != 1 {
		t.Errorf("Expected 1 conversion, got %d", converted)
	}
	if _, err := os.Stat(filepath.Join(root, "good.jpg")); err != nil {
		t.Errorf("Expected good.jpg to exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "bad.jpg")); !os.IsNotExist(err) {
		t.Error("Expected no output for corrupt input")
	}
	// The corrupt source stays on disk for inspection.
	if _, err := os.Stat(filepath.Join(root, "bad.png")); err != nil {
		t.Errorf("Expected corrupt source to survive: %v", err)
	}
}
