// Package cli provides the command-line interface for png2dmc.
package cli

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/aast242/png2dmc/internal/imageio"
	"github.com/aast242/png2dmc/internal/legend"
	"github.com/aast242/png2dmc/internal/marker"
	"github.com/aast242/png2dmc/internal/match"
	"github.com/aast242/png2dmc/internal/palette"
	"github.com/aast242/png2dmc/internal/quantize"
)

var (
	// Convert command flags
	convertColors       int
	convertResize       int
	convertLegacy       bool
	convertEucDMC       bool
	convertSeed         int64
	convertRandomSeed   bool
	convertNoReuse      bool
	convertForce        bool
	convertOverwrite    bool
	convertOutput       string
	convertPalette      string
	convertMarkerSheet  string
	convertMarkerCell   int
	convertCharset      string
	convertCharsetCell  int
	convertCharsetOrder string
	convertNoKey        bool
	convertCellSize     int
)

// convertCmd represents the convert command.
var convertCmd = &cobra.Command{
	Use:   "convert <image>",
	Short: "Convert an image into a stitch pattern and colour key",
	Long: `Convert an image into a cross-stitch pattern.

The image's alpha channel is binarized, its colours are reduced to a bounded
count, every remaining colour is matched to its nearest DMC floss colour, and
each needed floss gets a symbolic marker. Two files are written: the pattern
overlay and the colour key.

Supported image formats: JPEG, PNG, GIF, WebP

Examples:
  # Convert with the defaults (16 colours, perceptual matching)
  png2dmc convert sprite.png

  # Reduce to 8 colours and scale the shorter side to 100 stitches
  png2dmc convert -c 8 -r 100 sprite.png

  # Legacy behaviour: adaptive palette and RGB-distance matching
  png2dmc convert --legacy-quantize --euc-dmc sprite.png

  # Reproducible markers under an explicit seed
  png2dmc convert --seed 42 sprite.png

  # Keep every colour (no reduction) on the legacy path
  png2dmc convert -c 0 --legacy-quantize sprite.png`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().IntVarP(&convertColors, "colors", "c", 16, "target colour count (0 = no reduction, otherwise >= 3)")
	convertCmd.Flags().IntVarP(&convertResize, "resize", "r", 0, "scale shorter side to this many stitches (0 = no rescale)")
	convertCmd.Flags().BoolVar(&convertLegacy, "legacy-quantize", false, "use the legacy adaptive-palette reduction instead of perceptual clustering")
	convertCmd.Flags().BoolVar(&convertEucDMC, "euc-dmc", false, "match floss colours by RGB Euclidean distance instead of perceptual distance")
	convertCmd.Flags().Int64Var(&convertSeed, "seed", 0, "marker shuffle seed (default: derived from the output name)")
	convertCmd.Flags().BoolVar(&convertRandomSeed, "random-seed", false, "use a non-reproducible random marker seed")
	convertCmd.Flags().BoolVar(&convertNoReuse, "no-reuse", false, "fail instead of reusing markers when colours outnumber them")
	convertCmd.Flags().BoolVar(&convertForce, "force", false, "proceed past the pattern size limit")
	convertCmd.Flags().BoolVar(&convertOverwrite, "overwrite", false, "replace existing output files")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "output base name (default: input file name)")
	convertCmd.Flags().StringVar(&convertPalette, "palette", "", "CSV palette file overriding the built-in DMC catalog")
	convertCmd.Flags().StringVar(&convertMarkerSheet, "marker-sheet", "", "glyph sheet image overriding the built-in markers")
	convertCmd.Flags().IntVar(&convertMarkerCell, "marker-cell", 0, "glyph cell size for --marker-sheet")
	convertCmd.Flags().StringVar(&convertCharset, "charset", "", "character strip image for key labels (default: built-in font)")
	convertCmd.Flags().IntVar(&convertCharsetCell, "charset-cell", 0, "character cell size for --charset")
	convertCmd.Flags().StringVar(&convertCharsetOrder, "charset-order", defaultCharsetOrder, "characters of the --charset strip, in strip order")
	convertCmd.Flags().BoolVar(&convertNoKey, "no-key", false, "skip writing the colour key image")
	convertCmd.Flags().IntVar(&convertCellSize, "cell-size", 9, "overlay cell size in pixels per stitch")
}

// convertOptions carries everything runPipeline needs, decoupled from cobra
// flag state so the pipeline is testable end to end.
type convertOptions struct {
	InputPath    string
	OutputBase   string
	Colors       int
	ResizeTo     int
	Legacy       bool
	EucDMC       bool
	Seed         int64
	SeedSet      bool
	RandomSeed   bool
	NoReuse      bool
	Force        bool
	Overwrite    bool
	PalettePath  string
	MarkerSheet  string
	MarkerCell   int
	CharsetPath  string
	CharsetCell  int
	CharsetOrder string
	NoKey        bool
	CellSize     int
}

// convertOutcome summarizes a completed run for reporting.
type convertOutcome struct {
	Result      *match.Result
	Assignment  *marker.Assignment
	Palette     *palette.Palette
	PatternPath string
	KeyPath     string
	Seed        int64
}

func runConvert(cmd *cobra.Command, args []string) error {
	opts := convertOptions{
		InputPath:    args[0],
		OutputBase:   convertOutput,
		Colors:       convertColors,
		ResizeTo:     convertResize,
		Legacy:       convertLegacy,
		EucDMC:       convertEucDMC,
		Seed:         convertSeed,
		SeedSet:      cmd.Flags().Changed("seed"),
		RandomSeed:   convertRandomSeed,
		NoReuse:      convertNoReuse,
		Force:        convertForce,
		Overwrite:    convertOverwrite,
		PalettePath:  convertPalette,
		MarkerSheet:  convertMarkerSheet,
		MarkerCell:   convertMarkerCell,
		CharsetPath:  convertCharset,
		CharsetCell:  convertCharsetCell,
		CharsetOrder: convertCharsetOrder,
		NoKey:        convertNoKey,
		CellSize:     convertCellSize,
	}

	outcome, err := runPipeline(opts, newLogger(cmd))
	if err != nil {
		return err
	}

	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		printReport(cmd.OutOrStdout(), outcome)
	}
	return nil
}

// runPipeline executes the whole conversion: load, quantize, match, assign,
// render, save. Stages run strictly in sequence; any failure is terminal.
func runPipeline(opts convertOptions, logger hclog.Logger) (*convertOutcome, error) {
	base := imageio.OutputBase(opts.InputPath, opts.OutputBase)
	patternPath := imageio.PatternPath(base)
	keyPath := imageio.KeyPath(base)

	outputs := []string{patternPath}
	if !opts.NoKey {
		outputs = append(outputs, keyPath)
	}
	if err := imageio.EnsureWritable(outputs, opts.Overwrite); err != nil {
		return nil, err
	}

	pal, err := loadPalette(opts.PalettePath)
	if err != nil {
		return nil, err
	}

	img, err := imageio.Load(opts.InputPath)
	if err != nil {
		return nil, err
	}

	seed := pickSeed(opts, base)
	rng := rand.New(rand.NewSource(seed)) // #nosec G404 - Deterministic marker shuffle, not security-sensitive
	logger.Debug("run seeded", "seed", seed)

	strategy := quantize.StrategyCluster
	if opts.Legacy {
		strategy = quantize.StrategyAdaptive
	}
	quantized, err := quantize.Quantize(img, quantize.Config{
		TargetColors: opts.Colors,
		Strategy:     strategy,
		ResizeTo:     opts.ResizeTo,
		Force:        opts.Force,
	}, rng, logger)
	if err != nil {
		return nil, err
	}

	metric := match.MetricLab
	if opts.EucDMC {
		metric = match.MetricRGB
	}
	res, err := match.Match(quantized, pal, metric)
	if err != nil {
		return nil, err
	}
	logger.Debug("matched", "colours", len(res.Needed))

	sheet, err := loadSheet(opts.MarkerSheet, opts.MarkerCell)
	if err != nil {
		return nil, err
	}
	chs, err := loadCharset(opts.CharsetPath, opts.CharsetCell, opts.CharsetOrder)
	if err != nil {
		return nil, err
	}
	asg, err := marker.Assign(res.Needed, pal, sheet, rng, !opts.NoReuse)
	if err != nil {
		return nil, err
	}

	pattern := legend.Overlay(res, asg, opts.CellSize)
	if err := imageio.SavePNG(pattern, patternPath); err != nil {
		return nil, err
	}
	logger.Debug("pattern written", "path", patternPath)

	if !opts.NoKey {
		key := legend.Key(res, asg, pal, chs)
		if err := imageio.SavePNG(key, keyPath); err != nil {
			return nil, err
		}
		logger.Debug("key written", "path", keyPath)
	} else {
		keyPath = ""
	}

	return &convertOutcome{
		Result:      res,
		Assignment:  asg,
		Palette:     pal,
		PatternPath: patternPath,
		KeyPath:     keyPath,
		Seed:        seed,
	}, nil
}

// pickSeed resolves the marker seed: explicit flag, opt-in random, or the
// reproducible default derived from the output name.
func pickSeed(opts convertOptions, base string) int64 {
	switch {
	case opts.RandomSeed:
		return time.Now().UnixNano()
	case opts.SeedSet:
		return opts.Seed
	default:
		return marker.SeedFor(base)
	}
}

func loadPalette(path string) (*palette.Palette, error) {
	if path == "" {
		return palette.Default(), nil
	}
	f, err := os.Open(path) // #nosec G304 - User-specified palette path
	if err != nil {
		return nil, fmt.Errorf("failed to open palette file: %w", err)
	}
	defer f.Close()
	return palette.Load(f)
}

// defaultCharsetOrder covers the characters DMC ids and names use; runes a
// strip does not map render as blank space.
const defaultCharsetOrder = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-"

// loadCharset loads the optional key-label character strip. An empty path
// means the built-in bitmap font is used instead.
func loadCharset(path string, cell int, order string) (*legend.Charset, error) {
	if path == "" {
		return nil, nil
	}
	if cell <= 0 {
		return nil, fmt.Errorf("--charset-cell is required with --charset")
	}
	img, err := imageio.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load charset strip: %w", err)
	}
	return legend.LoadCharset(img, cell, order)
}

func loadSheet(path string, cell int) (*marker.Sheet, error) {
	if path == "" {
		return marker.DefaultSheet(), nil
	}
	if cell <= 0 {
		return nil, fmt.Errorf("--marker-cell is required with --marker-sheet")
	}
	img, err := imageio.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load marker sheet: %w", err)
	}
	return marker.LoadSheet(img, cell)
}
