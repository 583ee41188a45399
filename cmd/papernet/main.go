package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"

	"papernet/pkg/cfg"
	"papernet/pkg/meshio"
	"papernet/pkg/unfold"
)

var (
	settings = cfg.Default()
	page     string
	seams    []string
	outPath  string
	verbose  bool

	noStickers bool
	noNumbers  bool
)

// result is what the unfold command writes.
type result struct {
	Scale float64     `json:"scale"`
	Cuts  []int       `json:"cuts"`
	Net   *unfold.Net `json:"net"`
}

func openOut(path string) (io.WriteCloser, error) {
	if path == "" {
		return os.Stdout, nil
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
}

// parseSeam reads a seam given as two vertex indices, like "3-7".
func parseSeam(s string) (int, int, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("seam %q is not of the form a-b", s)
	}
	a, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("seam %q: %w", s, err)
	}
	b, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("seam %q: %w", s, err)
	}
	return a, b, nil
}

func setupLogging() {
	if verbose {
		unfold.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
}

func unfoldMesh(cmd *cobra.Command, args []string) {
	setupLogging()
	if page != "" {
		w, h, err := cfg.PageSize(page)
		if err != nil {
			log.Fatalf("%s", err)
		}
		if !cmd.Flags().Changed("page-width") {
			settings.PageWidth = w
		}
		if !cmd.Flags().Changed("page-height") {
			settings.PageHeight = h
		}
	}
	settings.Stickers = !noStickers
	settings.Numbers = !noNumbers

	m, err := meshio.ReadFile(args[0], settings.Weld)
	if err != nil {
		log.Fatalf("mesh read error: %s", err)
	}
	for _, s := range seams {
		a, b, err := parseSeam(s)
		if err != nil {
			log.Fatalf("%s", err)
		}
		if err := m.MarkSeam(a, b); err != nil {
			log.Fatalf("%s", err)
		}
	}

	u, scale, err := unfold.Unfold(m, mgl64.Ident3(), settings)
	if err != nil {
		log.Fatalf("unfold error: %s", err)
	}

	w, err := openOut(outPath)
	if err != nil {
		log.Fatalf("output error: %s", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	out := result{
		Scale: scale,
		Cuts:  u.MarkCuts(),
		Net:   u.Net(settings.PageWidth, settings.PageHeight, settings.Margin, settings.AngleEpsilon),
	}
	if err := enc.Encode(out); err != nil {
		log.Fatalf("output error: %s", err)
	}
	if err := w.Close(); err != nil {
		log.Fatalf("output error: %s", err)
	}
}

func info(cmd *cobra.Command, args []string) {
	m, err := meshio.ReadFile(args[0], settings.Weld)
	if err != nil {
		log.Fatalf("mesh read error: %s", err)
	}
	fmt.Printf("File: %s\n", args[0])
	fmt.Printf("Vertices: %d\nEdges: %d\nFaces: %d\n", len(m.Verts), len(m.Edges), len(m.Faces))

	lo := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, v := range m.Verts {
		for i := range lo {
			lo[i] = math.Min(lo[i], v.Co[i])
			hi[i] = math.Max(hi[i], v.Co[i])
		}
	}
	fmt.Printf("Bounding box: %v - %v\n", lo, hi)

	boundary := 0
	for e := range m.Edges {
		if m.IsBoundary(e) {
			boundary++
		}
	}
	fmt.Printf("Boundary edges: %d\n", boundary)
	if err := m.Check(mgl64.Ident3(), settings.Epsilon); err != nil {
		fmt.Printf("Check: %s\n", err)
	} else {
		fmt.Printf("Check: ok\n")
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "papernet",
		Short: "Unfold polygon meshes into printable paper model nets",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Usage()
		},
	}

	unfoldCmd := &cobra.Command{
		Use:   "unfold mesh-file",
		Short: "Unfold a mesh and lay out the net on pages",
		Long: `unfold cuts an OBJ or STL mesh into islands that lie flat without overlapping,
adds glue tabs and places the islands onto pages. The layout is written as JSON;
all lengths are in meters.`,
		Args: cobra.ExactArgs(1),
		Run:  unfoldMesh,
	}
	f := unfoldCmd.Flags()
	f.StringVar(&page, "page", "", "Page size preset: "+strings.Join(cfg.PageSizeNames(), ", "))
	f.Float64Var(&settings.PageWidth, "page-width", settings.PageWidth, "Page width")
	f.Float64Var(&settings.PageHeight, "page-height", settings.PageHeight, "Page height")
	f.Float64Var(&settings.Margin, "margin", settings.Margin, "Page margin")
	f.Float64VarP(&settings.Scale, "scale", "s", settings.Scale, "Print at 1:scale")
	f.BoolVar(&settings.AutoScale, "auto-scale", settings.AutoScale, "Choose the smallest scale at which every island fits")
	f.BoolVar(&settings.LimitByPage, "limit-by-page", settings.LimitByPage, "Keep islands from growing past the page")
	f.Float64Var(&settings.Weights.Convex, "convex", settings.Weights.Convex, "Cut priority of convex folds")
	f.Float64Var(&settings.Weights.Concave, "concave", settings.Weights.Concave, "Cut priority of concave folds")
	f.Float64Var(&settings.Weights.Length, "length", settings.Weights.Length, "Cut priority of edge length")
	f.Float64Var(&settings.StickerWidth, "sticker-width", settings.StickerWidth, "Width of glue tabs and their numbers")
	f.Float64Var(&settings.AngleEpsilon, "angle-epsilon", settings.AngleEpsilon, "Folds flatter than this angle are not drawn")
	f.BoolVar(&noStickers, "no-stickers", false, "Do not make glue tabs")
	f.BoolVar(&noNumbers, "no-numbers", false, "Do not number the edges")
	f.BoolVar(&settings.QuickSweep, "quick-sweep", settings.QuickSweep, "Try the fast overlap test before the exhaustive one")
	f.Float64Var(&settings.Weld, "weld", settings.Weld, "Merge STL vertices closer than this")
	f.StringSliceVar(&seams, "seam", nil, "Always cut the edge between two vertices, given as a-b")
	f.StringVarP(&outPath, "output", "o", "", "Output JSON file. By default, it's stdout.")
	f.BoolVarP(&verbose, "verbose", "v", false, "Log the unfolding steps to stderr")
	rootCmd.AddCommand(unfoldCmd)

	infoCmd := &cobra.Command{
		Use:   "info mesh-file",
		Short: "Mesh file info",
		Args:  cobra.ExactArgs(1),
		Run:   info,
	}
	infoCmd.Flags().Float64Var(&settings.Weld, "weld", settings.Weld, "Merge STL vertices closer than this")
	rootCmd.AddCommand(infoCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
