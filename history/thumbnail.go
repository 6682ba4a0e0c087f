package history

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// Thumbnail decodes a PNG and scales it so its longest edge is at most
// maxEdge pixels, preserving aspect ratio. Images already within the
// bound are returned re-encoded unchanged in size.
func Thumbnail(pngData []byte, maxEdge int) ([]byte, error) {
	if maxEdge < 16 {
		return nil, fmt.Errorf("history: thumbnail edge %d too small", maxEdge)
	}

	src, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxEdge && h <= maxEdge {
		return pngData, nil
	}

	var tw, th int
	if w >= h {
		tw = maxEdge
		th = h * maxEdge / w
	} else {
		th = maxEdge
		tw = w * maxEdge / h
	}
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
