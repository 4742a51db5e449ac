package preview

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	stdmath "math"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/nfnt/resize"

	"github.com/Turbo-bilder/io-object-mu/pkg/math"
	"github.com/Turbo-bilder/io-object-mu/pkg/mu"
)

// ErrFormat reports an unsupported thumbnail encoding.
var ErrFormat = errors.New("unsupported preview format")

// submesh tints, cycled when a mesh has more material ranges.
var palette = [][3]uint8{
	{178, 186, 194},
	{222, 150, 88},
	{126, 168, 212},
	{150, 198, 142},
	{204, 128, 160},
	{226, 214, 120},
}

// Options controls thumbnail rendering.
type Options struct {
	Size        int // output edge length, 512 when zero
	Supersample int // render at Size*n then downscale, 1 when zero
}

// Render draws mesh into a square thumbnail. The view is a fixed
// three-quarter orthographic angle fitted to the mesh bounds; each
// submesh cycles through the tint palette. An empty mesh yields a
// fully transparent image.
func Render(mesh *mu.Mesh, opts Options) *image.NRGBA {
	size := opts.Size
	if size <= 0 {
		size = 512
	}
	ss := opts.Supersample
	if ss < 1 {
		ss = 1
	}

	if mesh == nil || len(mesh.Verts) == 0 || mesh.TriangleCount() == 0 {
		return image.NewNRGBA(image.Rect(0, 0, size, size))
	}

	renderSize := size * ss
	margin := 16 * ss
	if margin > renderSize/4 {
		margin = renderSize / 4
	}
	px, py, pz := projectVertices(mesh.Verts, renderSize, margin)

	fb := NewFrameBuffer(renderSize, renderSize)
	light := DefaultLight()
	for si, tris := range mesh.Submeshes {
		tint := palette[si%len(palette)]
		for _, tri := range tris {
			fillTriangle(fb, px, py, pz, tri[0], tri[1], tri[2], tint[0], tint[1], tint[2], &light)
		}
	}

	img := fb.Image()
	if ss > 1 {
		img = toNRGBA(resize.Resize(uint(size), uint(size), img, resize.Lanczos3))
	}
	return img
}

// projectVertices maps mesh vertices to screen space: a fixed
// orthographic view, recentered and scaled so the mesh fills the
// frame minus margin. Larger returned z is nearer the viewer.
func projectVertices(verts []math.Vec3, renderSize, margin int) (px, py, pz []float64) {
	view := math.LookAt(math.Vec3{X: 1, Y: 0.8, Z: 1.4}, math.Vec3{}, math.Vec3{Y: 1})

	n := len(verts)
	px = make([]float64, n)
	py = make([]float64, n)
	pz = make([]float64, n)

	minX, minY := stdmath.Inf(1), stdmath.Inf(1)
	maxX, maxY := stdmath.Inf(-1), stdmath.Inf(-1)
	for i, v := range verts {
		t := view.TransformPoint(v)
		px[i], py[i], pz[i] = float64(t.X), float64(t.Y), float64(t.Z)
		if px[i] < minX {
			minX = px[i]
		}
		if px[i] > maxX {
			maxX = px[i]
		}
		if py[i] < minY {
			minY = py[i]
		}
		if py[i] > maxY {
			maxY = py[i]
		}
	}

	cx := (minX + maxX) / 2
	cy := (minY + maxY) / 2
	span := maxX - minX
	if s := maxY - minY; s > span {
		span = s
	}
	if span < 1e-3 {
		span = 1e-3
	}
	scale := float64(renderSize-2*margin) / span

	half := float64(renderSize) / 2
	for i := range px {
		px[i] = (px[i]-cx)*scale + half
		py[i] = half - (py[i]-cy)*scale // image y grows downward
	}
	return px, py, pz
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}

// Encode writes img in the named format: "png" (default) or "webp".
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "", "png":
		return png.Encode(w, img)
	case "webp":
		return nativewebp.Encode(w, img, nil)
	default:
		return fmt.Errorf("%w: %q", ErrFormat, format)
	}
}

// Save writes img to path, picking the format from the extension.
func Save(path string, img image.Image) error {
	format := "png"
	if strings.EqualFold(filepath.Ext(path), ".webp") {
		format = "webp"
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("saving preview: %w", err)
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return fmt.Errorf("saving preview: %w", err)
	}
	return f.Close()
}
