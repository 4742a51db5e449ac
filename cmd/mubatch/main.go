// mubatch converts every mesh source under a directory on a worker
// pool and writes a thumbnail per converted asset.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Turbo-bilder/io-object-mu/internal/config"
	"github.com/Turbo-bilder/io-object-mu/internal/logger"
	"github.com/Turbo-bilder/io-object-mu/internal/preview"
	"github.com/Turbo-bilder/io-object-mu/pkg/export"
	"github.com/Turbo-bilder/io-object-mu/pkg/formats"
	"github.com/Turbo-bilder/io-object-mu/pkg/mu"
	"github.com/Turbo-bilder/io-object-mu/pkg/scene"
)

var (
	flagIn      = flag.String("in", ".", "Input directory walked for mesh sources")
	flagPattern = flag.String("pattern", "", "Base-name glob filter")
)

// result is the outcome of converting one source file.
type result struct {
	Path      string
	Err       error
	Vertices  int
	Triangles int
	Skinned   bool
}

func main() {
	config.ParseFlags()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *flagPattern != "" {
		cfg.Batch.Pattern = *flagPattern
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	sources, err := collectSources(*flagIn, cfg.Batch.Pattern)
	if err != nil {
		logger.Fatal("scanning input directory", zap.String("dir", *flagIn), zap.Error(err))
	}
	if len(sources) == 0 {
		fmt.Printf("No mesh sources under %s\n", *flagIn)
		return
	}

	conv, err := newConverter(cfg)
	if err != nil {
		logger.Fatal("building converter", zap.Error(err))
	}

	workers := cfg.Batch.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	fmt.Printf("Converting %d sources with %d workers\n", len(sources), workers)
	start := time.Now()

	results := run(cfg, conv, sources, workers)

	converted, failed := 0, 0
	totalVerts, totalTris := 0, 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			logger.Warn("conversion failed", zap.String("source", r.Path), zap.Error(r.Err))
			continue
		}
		converted++
		totalVerts += r.Vertices
		totalTris += r.Triangles
	}

	fmt.Printf("\nConverted %d/%d sources in %.1fs (%d vertices, %d triangles)\n",
		converted, len(results), time.Since(start).Seconds(), totalVerts, totalTris)
	if failed > 0 {
		fmt.Printf("%d failed, see log\n", failed)
		os.Exit(1)
	}
}

// run feeds sources to a worker pool. The converter's registry is the
// one shared resource; it serializes access internally.
func run(cfg *config.Config, conv *export.Converter, sources []string, workers int) []result {
	total := len(sources)
	results := make([]result, total)
	var processed atomic.Int64

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		start := time.Now()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					fmt.Printf("  [%d/%d] %.1f meshes/sec\n", p, total, rate)
				}
			}
		}
	}()

	srcChan := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range srcChan {
				results[idx] = processSource(cfg, conv, sources[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range sources {
		srcChan <- i
	}
	close(srcChan)

	wg.Wait()
	close(done)

	return results
}

// processSource converts one file and writes its thumbnail, mirroring
// the source's relative path under the output directory.
func processSource(cfg *config.Config, conv *export.Converter, path string) result {
	res := result{Path: path}

	obj, armature, err := loadSource(path)
	if err != nil {
		res.Err = err
		return res
	}
	if err := obj.Validate(); err != nil {
		res.Err = fmt.Errorf("invalid source: %w", err)
		return res
	}

	out := conv.ConvertObject(obj, armature)
	if out == nil {
		res.Err = fmt.Errorf("object %q has no convertible mesh", obj.Name)
		return res
	}

	mesh := out.RenderMesh()
	res.Vertices = mesh.VertexCount()
	res.Triangles = mesh.TriangleCount()
	res.Skinned = out.IsSkinned()

	rel, err := filepath.Rel(*flagIn, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	outPath := filepath.Join(cfg.Paths.OutputDir,
		strings.TrimSuffix(rel, filepath.Ext(rel))+"."+cfg.Preview.Format)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		res.Err = err
		return res
	}

	img := preview.Render(mesh, preview.Options{
		Size:        cfg.Preview.Size,
		Supersample: cfg.Preview.Supersample,
	})
	if err := preview.Save(outPath, img); err != nil {
		res.Err = err
		return res
	}

	logger.Debug("converted",
		zap.String("source", path),
		zap.Int("vertices", res.Vertices),
		zap.Int("triangles", res.Triangles),
		zap.Bool("skinned", res.Skinned),
	)
	return res
}

// collectSources walks dir for supported mesh files whose base name
// matches pattern ("" matches all).
func collectSources(dir, pattern string) ([]string, error) {
	var sources []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".obj", ".gltf", ".glb":
		default:
			return nil
		}
		if pattern != "" && pattern != "*" {
			matched, _ := filepath.Match(strings.ToLower(pattern), strings.ToLower(filepath.Base(path)))
			if !matched {
				return nil
			}
		}
		sources = append(sources, path)
		return nil
	})
	return sources, err
}

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

func newConverter(cfg *config.Config) (*export.Converter, error) {
	var lib *mu.Library
	if cfg.Paths.MaterialLib != "" {
		var err error
		lib, err = mu.LoadLibrary(cfg.Paths.MaterialLib)
		if err != nil {
			return nil, err
		}
	}
	reg := mu.NewRegistry(lib)
	if cfg.Paths.TextureDir != "" {
		reg.ProbeTexturesIn(cfg.Paths.TextureDir)
	}
	return export.NewConverter(reg), nil
}
