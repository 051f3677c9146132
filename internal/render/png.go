package render

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"os"
)

// OutputDPI is the physical resolution recorded in rendered PNGs.
const OutputDPI = 300

// pngHeaderSize covers the PNG signature plus the complete IHDR chunk.
const pngHeaderSize = 8 + 4 + 4 + 13 + 4

// WritePNG encodes the image and writes it with a pHYs chunk declaring the
// output DPI. The standard encoder carries no physical-size metadata, so the
// chunk is spliced in directly after IHDR.
func WritePNG(path string, img image.Image, dpi int) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}

	encoded := buf.Bytes()
	if len(encoded) < pngHeaderSize {
		return fmt.Errorf("encoded PNG shorter than its header")
	}

	phys := physChunk(dpi)

	out := make([]byte, 0, len(encoded)+len(phys))
	out = append(out, encoded[:pngHeaderSize]...)
	out = append(out, phys...)
	out = append(out, encoded[pngHeaderSize:]...)

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write PNG: %w", err)
	}

	return nil
}

// physChunk builds a pHYs chunk for the given DPI, converted to pixels per
// metre as the format requires.
func physChunk(dpi int) []byte {
	pixelsPerMetre := uint32(float64(dpi)/0.0254 + 0.5)

	data := make([]byte, 9)
	binary.BigEndian.PutUint32(data[0:4], pixelsPerMetre)
	binary.BigEndian.PutUint32(data[4:8], pixelsPerMetre)
	data[8] = 1 // unit: metre

	chunk := make([]byte, 0, 4+4+9+4)
	chunk = binary.BigEndian.AppendUint32(chunk, 9)
	chunk = append(chunk, "pHYs"...)
	chunk = append(chunk, data...)
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))

	return chunk
}
