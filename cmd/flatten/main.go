// Command flatten loads a YAML display list, flattens it and prints the
// resulting picture tree.
//
// Usage:
//
//	flatten [-config flatten.toml] [-font 0=16] [-hit 50,50] [-v] scene.yaml
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/flatten"
	"github.com/gogpu/flatten/displaylist"
	"github.com/gogpu/flatten/resources"
	"github.com/gogpu/flatten/scene"
	"github.com/gogpu/flatten/spatial"
)

// fontSizes maps font instance indices to sizes, e.g. "-font 1=24".
type fontSizes map[uint32]float32

func (f fontSizes) String() string {
	parts := make([]string, 0, len(f))
	for k, v := range f {
		parts = append(parts, fmt.Sprintf("%d=%g", k, v))
	}
	return strings.Join(parts, ",")
}

func (f fontSizes) Set(s string) error {
	key, size, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("want index=size, got %q", s)
	}
	k, err := strconv.ParseUint(key, 10, 32)
	if err != nil {
		return fmt.Errorf("font index: %w", err)
	}
	v, err := strconv.ParseFloat(size, 32)
	if err != nil {
		return fmt.Errorf("font size: %w", err)
	}
	f[uint32(k)] = float32(v)
	return nil
}

func main() {
	var (
		configPath = flag.String("config", "", "TOML config file")
		verbose    = flag.Bool("v", false, "log debug output to stderr")
		hit        = flag.String("hit", "", "hit test the point x,y")
		chaseID    = flag.Int64("chase", -1, "log the primitive with this sequence number")
		fonts      = fontSizes{0: 16}
	)
	flag.Var(fonts, "font", "font instance index=size backed by Go Regular (repeatable)")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: flatten [flags] scene.yaml")
		flag.PrintDefaults()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	flatten.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := flatten.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = flatten.LoadConfig(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *chaseID >= 0 {
		id := uint64(*chaseID)
		cfg.ChasePrimitive.ID = &id
	}

	registry := resources.NewRegistry()
	fontKey := displaylist.FontKey{}
	if err := registry.AddFont(fontKey, goregular.TTF); err != nil {
		log.Fatalf("Failed to load font: %v", err)
	}
	for idx, size := range fonts {
		key := displaylist.FontInstanceKey{Index: idx}
		if err := registry.AddFontInstance(key, fontKey, size, flatten.FontRenderSubpixel, 0); err != nil {
			log.Fatalf("Failed to add font instance %d: %v", idx, err)
		}
	}

	doc, err := loadDocument(flag.Arg(0), registry)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", flag.Arg(0), err)
	}

	s, err := scene.Build(doc, spatial.NewTree(),
		scene.WithConfig(cfg),
		scene.WithFontInstances(registry),
	)
	if err != nil {
		log.Fatalf("Failed to flatten: %v", err)
	}
	if err := s.Dump(os.Stdout); err != nil {
		log.Fatalf("Failed to write: %v", err)
	}

	if *hit != "" {
		p, err := parsePoint(*hit)
		if err != nil {
			log.Fatalf("Invalid -hit: %v", err)
		}
		for _, r := range s.HitTesting.HitTest(p) {
			fmt.Printf("hit tag=%d extra=%d node=%v\n", r.Tag.ID, r.Tag.Extra, r.SpatialNode)
		}
	}
}

func loadDocument(path string, layouter displaylist.GlyphLayouter) (*scene.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pipelines, err := displaylist.LoadYAML(f, displaylist.WithGlyphLayouter(layouter))
	if err != nil {
		return nil, err
	}
	list := make([]*scene.Pipeline, len(pipelines))
	for i, p := range pipelines {
		list[i] = &scene.Pipeline{DisplayList: p.List, Viewport: p.Viewport, Background: p.Background}
	}
	return scene.NewDocument(list[0], list[1:]...), nil
}

func parsePoint(s string) (flatten.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return flatten.Point{}, fmt.Errorf("want x,y, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 32)
	if err != nil {
		return flatten.Point{}, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 32)
	if err != nil {
		return flatten.Point{}, err
	}
	return flatten.Point{X: float32(x), Y: float32(y)}, nil
}
