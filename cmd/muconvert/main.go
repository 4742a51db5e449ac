// muconvert converts polygonal scene files into engine-ready mesh data.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Turbo-bilder/io-object-mu/internal/config"
	"github.com/Turbo-bilder/io-object-mu/internal/logger"
	"github.com/Turbo-bilder/io-object-mu/internal/preview"
	"github.com/Turbo-bilder/io-object-mu/pkg/export"
	"github.com/Turbo-bilder/io-object-mu/pkg/formats"
	"github.com/Turbo-bilder/io-object-mu/pkg/mu"
	"github.com/Turbo-bilder/io-object-mu/pkg/scene"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "convert":
		cmdConvert(args)
	case "preview":
		cmdPreview(args)
	case "materials":
		cmdMaterials(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`muconvert - polygonal mesh to engine asset converter

Usage:
  muconvert <command> [options]

Commands:
  info <file>                     Show source mesh statistics
  convert <file> [options]        Run the conversion pipeline, report results
  preview <file> [options]        Convert and render a thumbnail
  materials <library.yaml>        Validate and list a material library
  config [-init]                  Show effective config, or write defaults

Sources: Wavefront OBJ (.obj) and glTF (.gltf, .glb).

Examples:
  muconvert info pod.obj
  muconvert convert pod.obj -materials ksp.yaml -textures ./tex
  muconvert convert rover.glb -proxy 0.3
  muconvert preview pod.obj -o pod.webp -size 256`)
}

// loadSource reads a scene object (and armature, for skinned glTF
// sources) from path, dispatching on the file extension.
func loadSource(path string) (*scene.Object, *scene.Armature, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		obj, err := formats.LoadOBJ(path)
		return obj, nil, err
	case ".gltf", ".glb":
		return formats.LoadGLTF(path)
	default:
		return nil, nil, fmt.Errorf("unsupported source format %q", filepath.Ext(path))
	}
}

// newConverter builds the registry-backed converter from config.
func newConverter(cfg *config.Config) (*export.Converter, *mu.Registry, error) {
	var lib *mu.Library
	if cfg.Paths.MaterialLib != "" {
		var err error
		lib, err = mu.LoadLibrary(cfg.Paths.MaterialLib)
		if err != nil {
			return nil, nil, err
		}
	}
	reg := mu.NewRegistry(lib)
	if cfg.Paths.TextureDir != "" {
		reg.ProbeTexturesIn(cfg.Paths.TextureDir)
	}
	return export.NewConverter(reg), reg, nil
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: muconvert info <file>")
		os.Exit(1)
	}

	obj, armature, err := loadSource(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := obj.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid source: %v\n", err)
		os.Exit(1)
	}

	m := obj.Mesh
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Object:\t%s\n", obj.Name)
	fmt.Fprintf(w, "Vertices:\t%d\n", len(m.Vertices))
	fmt.Fprintf(w, "Faces:\t%d\n", len(m.Faces))
	fmt.Fprintf(w, "Corners:\t%d\n", m.CornerCount())
	fmt.Fprintf(w, "Triangles:\t%d (after splitting)\n", m.TriangleCount())

	names := make([]string, len(m.UVLayers))
	for i, l := range m.UVLayers {
		names[i] = l.Name
	}
	fmt.Fprintf(w, "UV layers:\t%d %v\n", len(m.UVLayers), names)
	fmt.Fprintf(w, "Material slots:\t%v\n", obj.MaterialSlots)
	fmt.Fprintf(w, "Vertex groups:\t%v\n", obj.VertexGroups)
	if armature != nil {
		fmt.Fprintf(w, "Armature:\t%s %v\n", armature.Name, armature.Bones)
	}
	w.Flush()
}

func cmdConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to config file")
	materials := fs.String("materials", "", "Path to material library YAML")
	textures := fs.String("textures", "", "Directory probed for textures")
	proxy := fs.Float64("proxy", 0, "Also build a collision proxy at this triangle ratio")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: muconvert convert <file> [options]")
		os.Exit(1)
	}

	cfg, err := config.LoadFile(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *materials != "" {
		cfg.Paths.MaterialLib = *materials
	}
	if *textures != "" {
		cfg.Paths.TextureDir = *textures
	}
	if *proxy > 0 {
		cfg.Convert.ProxyRatio = *proxy
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	out, reg, err := convertFile(cfg, fs.Arg(0))
	if err != nil {
		logger.Error("conversion failed", zap.String("source", fs.Arg(0)), zap.Error(err))
		os.Exit(1)
	}

	printAsset(out, reg)

	if cfg.Convert.ProxyRatio > 0 {
		p := export.BuildProxy(out.RenderMesh(), cfg.Convert.ProxyRatio)
		fmt.Printf("\nProxy (%.2f): %d vertices, %d triangles\n",
			cfg.Convert.ProxyRatio, p.VertexCount(), p.TriangleCount())
	}
}

// convertFile runs the full pipeline on one source file.
func convertFile(cfg *config.Config, path string) (*mu.Object, *mu.Registry, error) {
	obj, armature, err := loadSource(path)
	if err != nil {
		return nil, nil, err
	}
	if err := obj.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid source: %w", err)
	}

	conv, reg, err := newConverter(cfg)
	if err != nil {
		return nil, nil, err
	}

	out := conv.ConvertObject(obj, armature)
	if out == nil {
		return nil, nil, fmt.Errorf("object %q has no convertible mesh", obj.Name)
	}

	mesh := out.RenderMesh()
	logger.Info("converted",
		zap.String("object", out.Name),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Bool("skinned", out.IsSkinned()),
	)
	return out, reg, nil
}

func printAsset(out *mu.Object, reg *mu.Registry) {
	mesh := out.RenderMesh()
	bounds := mesh.Bounds()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Object:\t%s\n", out.Name)
	fmt.Fprintf(w, "Vertices:\t%d\n", mesh.VertexCount())
	fmt.Fprintf(w, "Triangles:\t%d in %d submeshes\n", mesh.TriangleCount(), len(mesh.Submeshes))
	fmt.Fprintf(w, "Tangents:\t%d\n", len(mesh.Tangents))
	fmt.Fprintf(w, "Bounds:\tmin %v max %v\n", bounds.Min, bounds.Max)

	switch {
	case out.IsSkinned():
		fmt.Fprintf(w, "Skinned:\t%d bones %v\n", len(out.Skinned.Bones), out.Skinned.Bones)
		fmt.Fprintf(w, "Materials:\t%v\n", materialNames(out.Skinned.Materials, reg))
	case out.Renderer != nil:
		fmt.Fprintf(w, "Materials:\t%v\n", materialNames(out.Renderer.Materials, reg))
	default:
		fmt.Fprintf(w, "Materials:\t(none bound)\n")
	}
	w.Flush()
}

func materialNames(indices []int32, reg *mu.Registry) []string {
	mats := reg.Materials()
	names := make([]string, 0, len(indices))
	for _, idx := range indices {
		if int(idx) < len(mats) {
			names = append(names, fmt.Sprintf("%d:%s", idx, mats[idx].Name))
		}
	}
	return names
}

func cmdPreview(args []string) {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to config file")
	materials := fs.String("materials", "", "Path to material library YAML")
	out := fs.String("o", "", "Output image path (.png or .webp)")
	size := fs.Int("size", 0, "Thumbnail edge length")
	super := fs.Int("super", 0, "Supersampling factor")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: muconvert preview <file> [options]")
		os.Exit(1)
	}

	cfg, err := config.LoadFile(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *materials != "" {
		cfg.Paths.MaterialLib = *materials
	}
	if *size > 0 {
		cfg.Preview.Size = *size
	}
	if *super > 0 {
		cfg.Preview.Supersample = *super
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	asset, _, err := convertFile(cfg, fs.Arg(0))
	if err != nil {
		logger.Error("conversion failed", zap.String("source", fs.Arg(0)), zap.Error(err))
		os.Exit(1)
	}

	outPath := *out
	if outPath == "" {
		src := fs.Arg(0)
		outPath = strings.TrimSuffix(src, filepath.Ext(src)) + "." + cfg.Preview.Format
	}

	img := preview.Render(asset.RenderMesh(), preview.Options{
		Size:        cfg.Preview.Size,
		Supersample: cfg.Preview.Supersample,
	})
	if err := preview.Save(outPath, img); err != nil {
		logger.Error("preview failed", zap.String("output", outPath), zap.Error(err))
		os.Exit(1)
	}

	fmt.Printf("Preview: %s\n", outPath)
}

func cmdMaterials(args []string) {
	fs := flag.NewFlagSet("materials", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: muconvert materials <library.yaml>")
		os.Exit(1)
	}

	lib, err := mu.LoadLibrary(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSHADER\tMAIN TEXTURE")
	for _, name := range sortedNames(lib.Materials) {
		spec := lib.Materials[name]
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, spec.Shader, spec.MainTex)
	}
	if lib.Default.Shader != "" {
		fmt.Fprintf(w, "(default)\t%s\t%s\n", lib.Default.Shader, lib.Default.MainTex)
	}
	w.Flush()

	fmt.Fprintf(os.Stderr, "\n%d materials, all shaders valid\n", len(lib.Materials))
}

func sortedNames(m map[string]mu.MaterialSpec) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func cmdConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	initCfg := fs.Bool("init", false, "Write default config to the user config directory")
	fs.Parse(args)

	if *initCfg {
		cfg := config.Default()
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
		return
	}

	cfg, err := config.LoadFile("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Stdout.Write(data)
}
