package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Fepozopo/normalmap/pkg/canvas"
	"github.com/Fepozopo/normalmap/pkg/normal"
	"github.com/Fepozopo/normalmap/pkg/stdimg"
)

func newRenormalizeCmd() *cobra.Command {
	var (
		output     string
		layers     []string
		fullImage  bool
		scalar     float64
		degenerate string
	)

	cmd := &cobra.Command{
		Use:     "renormalize <image>",
		Aliases: []string{"normalize"},
		Short:   "Rescale the vectors of a normal-map texture to a fixed length",
		Long: `Decode every pixel of a normal-map texture as a vector, rescale it to the
given length and encode it again. Alpha is preserved.

Extra --layer images are stacked above the input; with --full-image the
flattened stack is renormalized instead of the input alone.`,
		Example: `  normalmap renormalize bricks_n.png
  normalmap renormalize base.png --layer decal.png@32,16 --full-image -o merged_n.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg := configFromContext(ctx)

			f := cmd.Flags()
			if f.Changed("full-image") {
				cfg.Renormalize.FullImage = fullImage
			}
			if f.Changed("scalar") {
				cfg.Renormalize.Scalar = scalar
			}
			if f.Changed("degenerate") {
				cfg.Renormalize.Degenerate = degenerate
			}
			opts, err := cfg.Renormalizer()
			if err != nil {
				return err
			}

			doc, _, err := openDocument(args[0])
			if err != nil {
				return err
			}
			for _, spec := range layers {
				path, off, err := parseLayerSpec(spec)
				if err != nil {
					return err
				}
				img, _, err := LoadImage(path)
				if err != nil {
					return fmt.Errorf("layer %s: %w", path, err)
				}
				// each layer goes on top; the input stays active
				if err := doc.Insert(canvas.LayerFromImage(filepath.Base(path), img, off), 0); err != nil {
					return err
				}
			}

			eng := stdimg.NewEngine()
			eng.Renormalize = opts
			p := newProgress(logger)
			res, err := eng.Apply(ctx, doc, "textureNormalize", []string{strconv.FormatBool(cfg.Renormalize.FullImage)})
			if err != nil {
				return err
			}
			reportPixels(logger, res.Report)

			if output == "" {
				output = defaultOutput(args[0], "_renormalized")
			}
			if err := SaveImage(output, res.Layer.Image); err != nil {
				return err
			}
			p.done(fmt.Sprintf("Wrote %s", output))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output file (default <image>_renormalized.png)")
	f.StringArrayVarP(&layers, "layer", "l", nil, "extra layer file[@x,y] stacked above the input (repeatable)")
	f.BoolVar(&fullImage, "full-image", false, "renormalize the flattened layer stack")
	f.Float64Var(&scalar, "scalar", 1, "target vector length (nonzero)")
	f.StringVar(&degenerate, "degenerate", "up", "zero-length pixels: up or passthrough")
	return cmd
}

// reportPixels logs degenerate and clamped pixel counts as warnings.
func reportPixels(l *log.Logger, rep normal.Report) {
	if err := rep.Err(); errors.Is(err, normal.ErrDegenerateInput) {
		l.Warn("degenerate pixels", "count", rep.Degenerate, "of", rep.Pixels)
	}
	if rep.Clamped > 0 {
		l.Warn("clamped pixels", "count", rep.Clamped, "of", rep.Pixels)
	}
}
