// Package preview renders converted meshes to small shaded thumbnails
// without a GPU. Rasterization is flat-shaded with a z-buffer; each
// submesh gets its own tint so material ranges stay visible.
package preview

import (
	"image"
	"math"
)

// FrameBuffer holds the rendering target as flat slices for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	ZBuf   []float64 // depth per pixel, len = W*H, initialized to -inf
}

// NewFrameBuffer allocates a zeroed color buffer and -inf z-buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	n := w * h
	zbuf := make([]float64, n)
	for i := range zbuf {
		zbuf[i] = math.Inf(-1)
	}
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, n*4),
		ZBuf:   zbuf,
	}
}

// Image copies the framebuffer into an NRGBA image.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Color)
	return img
}

// Light holds the lighting parameters for flat shading.
type Light struct {
	Dir     [3]float64 // normalized main light direction
	Ambient float64
	Direct  float64
	Hemi    float64
}

// DefaultLight returns the standard thumbnail lighting.
func DefaultLight() Light {
	d := [3]float64{0.45, 0.80, 0.40}
	l := math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
	return Light{
		Dir:     [3]float64{d[0] / l, d[1] / l, d[2] / l},
		Ambient: 0.40,
		Direct:  0.85,
		Hemi:    0.25,
	}
}

// shade returns the combined lighting scalar for a face normal.
// Lambert term is double-sided; both triangle windings light the same.
func (lt *Light) shade(nx, ny, nz float64) float64 {
	ndl := math.Abs(nx*lt.Dir[0] + ny*lt.Dir[1] + nz*lt.Dir[2])
	hemi := ((1.0-math.Abs(ny))*0.5 + 0.5) * lt.Hemi
	return lt.Ambient + hemi + ndl*lt.Direct
}

// fillTriangle rasterizes one flat-shaded triangle into fb. The px,
// py, pz slices hold screen-space coordinates; larger z is nearer the
// viewer. The inner loop allocates nothing.
func fillTriangle(fb *FrameBuffer, px, py, pz []float64, i0, i1, i2 int32, r, g, b uint8, lt *Light) {
	x0, y0, z0 := px[i0], py[i0], pz[i0]
	x1, y1, z1 := px[i1], py[i1], pz[i1]
	x2, y2, z2 := px[i2], py[i2], pz[i2]

	// Face normal for flat shading.
	e1x, e1y, e1z := x1-x0, y1-y0, z1-z0
	e2x, e2y, e2z := x2-x0, y2-y0, z2-z0
	nx := e1y*e2z - e1z*e2y
	ny := e1z*e2x - e1x*e2z
	nz := e1x*e2y - e1y*e2x
	nl := math.Sqrt(nx*nx + ny*ny + nz*nz)
	if nl < 1e-8 {
		return
	}
	shade := lt.shade(nx/nl, ny/nl, nz/nl)

	sr := clamp255(float64(r) * shade)
	sg := clamp255(float64(g) * shade)
	sb := clamp255(float64(b) * shade)

	// Bounding box clamped to the buffer.
	minX := int(math.Min(math.Min(x0, x1), x2))
	maxX := int(math.Max(math.Max(x0, x1), x2)) + 1
	minY := int(math.Min(math.Min(y0, y1), y2))
	maxY := int(math.Max(math.Max(y0, y1), y2)) + 1
	if minX < 0 {
		minX = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}
			fb.ZBuf[zIdx] = z

			pxIdx := zIdx * 4
			fb.Color[pxIdx] = sr
			fb.Color[pxIdx+1] = sg
			fb.Color[pxIdx+2] = sb
			fb.Color[pxIdx+3] = 255
		}
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
