// Package composer renders platform-sized marketing images. Three strategies
// share one interface: local canvas drawing, an image model and a hosted template API.
package composer

import (
	"image"
	"math"
	"strings"

	"golang.org/x/image/font"
)

// CoverFit returns the centered crop of a srcW x srcH image whose aspect ratio
// matches a boxW x boxH box, so scaling the crop fills the box without bars.
func CoverFit(srcW, srcH, boxW, boxH int) image.Rectangle {
	if srcW <= 0 || srcH <= 0 || boxW <= 0 || boxH <= 0 {
		return image.Rect(0, 0, max(srcW, 0), max(srcH, 0))
	}
	srcRatio := float64(srcW) / float64(srcH)
	boxRatio := float64(boxW) / float64(boxH)
	if srcRatio > boxRatio {
		sw := int(math.Round(float64(srcH) * boxRatio))
		sx := (srcW - sw) / 2
		return image.Rect(sx, 0, sx+sw, srcH)
	}
	sh := int(math.Round(float64(srcW) / boxRatio))
	sy := (srcH - sh) / 2
	return image.Rect(0, sy, srcW, sy+sh)
}

// WrapText breaks text into lines no wider than maxWidth pixels when drawn
// with face. Words are never split; a word wider than maxWidth gets its own line.
func WrapText(face font.Face, text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		candidate := line + " " + w
		if font.MeasureString(face, candidate).Ceil() <= maxWidth {
			line = candidate
			continue
		}
		lines = append(lines, line)
		line = w
	}
	return append(lines, line)
}

// containFit returns the largest rectangle with the source aspect ratio centered inside box
func containFit(srcW, srcH int, box image.Rectangle) image.Rectangle {
	if srcW <= 0 || srcH <= 0 {
		return box
	}
	scale := math.Min(float64(box.Dx())/float64(srcW), float64(box.Dy())/float64(srcH))
	w := int(float64(srcW) * scale)
	h := int(float64(srcH) * scale)
	x := box.Min.X + (box.Dx()-w)/2
	y := box.Min.Y + (box.Dy()-h)/2
	return image.Rect(x, y, x+w, y+h)
}
