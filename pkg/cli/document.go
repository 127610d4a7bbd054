package cli

import (
	"fmt"
	"image"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Fepozopo/normalmap/pkg/canvas"
	"github.com/Fepozopo/normalmap/pkg/normal"
)

// openDocument loads path as the single layer of a new document sized to
// the image.
func openDocument(path string) (*canvas.Document, string, error) {
	img, format, err := LoadImage(path)
	if err != nil {
		return nil, "", err
	}
	b := img.Bounds()
	doc := canvas.NewDocument(b.Dx(), b.Dy())
	doc.Append(canvas.LayerFromImage(filepath.Base(path), img, image.Point{}))
	return doc, format, nil
}

// loadMask builds a selection mask from the image at path. channel is
// "alpha" or "luminance".
func loadMask(path, channel string) (*normal.Mask, error) {
	img, _, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	return maskFromImage(img, channel)
}

func maskFromImage(img image.Image, channel string) (*normal.Mask, error) {
	switch strings.ToLower(channel) {
	case "alpha", "a":
		return normal.MaskFromAlpha(img), nil
	case "luminance", "luma", "gray", "grey":
		return normal.MaskFromLuminance(img), nil
	}
	return nil, fmt.Errorf("unknown mask channel %q (want alpha or luminance)", channel)
}

// parseLayerSpec splits "path[@x,y]" into a path and a canvas offset. A
// suffix that is not a valid offset is kept as part of the path.
func parseLayerSpec(s string) (string, image.Point, error) {
	if s == "" {
		return "", image.Point{}, fmt.Errorf("empty layer spec")
	}
	i := strings.LastIndex(s, "@")
	if i <= 0 {
		return s, image.Point{}, nil
	}
	xs, ys, ok := strings.Cut(s[i+1:], ",")
	if !ok {
		return s, image.Point{}, nil
	}
	x, errX := strconv.Atoi(strings.TrimSpace(xs))
	y, errY := strconv.Atoi(strings.TrimSpace(ys))
	if errX != nil || errY != nil {
		return s, image.Point{}, nil
	}
	return s[:i], image.Pt(x, y), nil
}

// defaultOutput derives "<dir>/<name><suffix>.png" from input.
func defaultOutput(input, suffix string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + suffix + ".png"
}
