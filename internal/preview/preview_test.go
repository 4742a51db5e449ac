package preview

import (
	"bytes"
	"errors"
	stdmath "math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Turbo-bilder/io-object-mu/pkg/math"
	"github.com/Turbo-bilder/io-object-mu/pkg/mu"
)

// cubeMesh returns a unit cube with its triangles split over two
// submeshes so both tint and shading paths get exercised.
func cubeMesh() *mu.Mesh {
	verts := []math.Vec3{
		{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1},
		{X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1},
		{X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
	}
	tris := []mu.Triangle{
		{0, 1, 2}, {0, 2, 3}, // -Z
		{4, 6, 5}, {4, 7, 6}, // +Z
		{0, 5, 1}, {0, 4, 5}, // -Y
		{3, 2, 6}, {3, 6, 7}, // +Y
		{0, 3, 7}, {0, 7, 4}, // -X
		{1, 5, 6}, {1, 6, 2}, // +X
	}
	return &mu.Mesh{
		Name:      "cube",
		Verts:     verts,
		Submeshes: [][]mu.Triangle{tris[:6], tris[6:]},
	}
}

func TestNewFrameBuffer(t *testing.T) {
	fb := NewFrameBuffer(4, 3)
	if len(fb.Color) != 4*3*4 {
		t.Errorf("color length = %d, want %d", len(fb.Color), 4*3*4)
	}
	if len(fb.ZBuf) != 4*3 {
		t.Errorf("zbuf length = %d, want %d", len(fb.ZBuf), 4*3)
	}
	for i, z := range fb.ZBuf {
		if !stdmath.IsInf(z, -1) {
			t.Fatalf("zbuf[%d] = %v, want -inf", i, z)
		}
	}
}

func TestRenderCube(t *testing.T) {
	img := Render(cubeMesh(), Options{Size: 64})

	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Fatalf("bounds = %v, want 64x64", b)
	}

	if a := img.NRGBAAt(32, 32).A; a != 255 {
		t.Errorf("center pixel alpha = %d, want 255", a)
	}
	if a := img.NRGBAAt(1, 1).A; a != 0 {
		t.Errorf("margin pixel alpha = %d, want 0", a)
	}

	opaque := 0
	colors := map[[3]uint8]bool{}
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			c := img.NRGBAAt(x, y)
			if c.A == 255 {
				opaque++
				colors[[3]uint8{c.R, c.G, c.B}] = true
			}
		}
	}
	if opaque < 400 {
		t.Errorf("opaque pixels = %d, want at least 400", opaque)
	}
	// Three faces are visible and shaded differently.
	if len(colors) < 2 {
		t.Errorf("distinct face colors = %d, want at least 2", len(colors))
	}
}

func TestRenderEmpty(t *testing.T) {
	for _, mesh := range []*mu.Mesh{nil, {Name: "bare"}} {
		img := Render(mesh, Options{Size: 32})
		if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 32 {
			t.Fatalf("bounds = %v, want 32x32", b)
		}
		for y := 0; y < 32; y++ {
			for x := 0; x < 32; x++ {
				if img.NRGBAAt(x, y).A != 0 {
					t.Fatalf("pixel (%d,%d) not transparent for empty mesh", x, y)
				}
			}
		}
	}
}

func TestRenderSupersample(t *testing.T) {
	img := Render(cubeMesh(), Options{Size: 32, Supersample: 2})

	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 32 {
		t.Fatalf("bounds = %v, want 32x32 after downscale", b)
	}
	opaque := 0
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if img.NRGBAAt(x, y).A > 0 {
				opaque++
			}
		}
	}
	if opaque == 0 {
		t.Error("no visible pixels after supersampled render")
	}
}

func TestEncode(t *testing.T) {
	img := Render(cubeMesh(), Options{Size: 16})

	var pngBuf bytes.Buffer
	if err := Encode(&pngBuf, img, "png"); err != nil {
		t.Fatalf("Encode(png) error = %v", err)
	}
	if !bytes.HasPrefix(pngBuf.Bytes(), []byte("\x89PNG")) {
		t.Error("png output lacks PNG signature")
	}

	var webpBuf bytes.Buffer
	if err := Encode(&webpBuf, img, "webp"); err != nil {
		t.Fatalf("Encode(webp) error = %v", err)
	}
	if webpBuf.Len() == 0 {
		t.Error("webp output is empty")
	}

	if err := Encode(&bytes.Buffer{}, img, "bmp"); !errors.Is(err, ErrFormat) {
		t.Errorf("Encode(bmp) error = %v, want %v", err, ErrFormat)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	img := Render(cubeMesh(), Options{Size: 16})

	for _, name := range []string{"thumb.png", "thumb.webp"} {
		path := filepath.Join(dir, name)
		if err := Save(path, img); err != nil {
			t.Fatalf("Save(%s) error = %v", name, err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}
