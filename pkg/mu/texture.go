package mu

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
)

// TextureInfo describes a probed texture file. Only the header is read;
// pixel data stays on disk.
type TextureInfo struct {
	Path   string
	Width  int
	Height int
	Format string // decoder name: png, jpeg, tga, bmp
}

// ProbeTexture reads the header of an image file and reports its
// dimensions and format. Supported formats are PNG, JPEG, TGA and BMP.
func ProbeTexture(path string) (*TextureInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("probing texture: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("probing texture %s: %w", path, err)
	}
	return &TextureInfo{
		Path:   path,
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
	}, nil
}
