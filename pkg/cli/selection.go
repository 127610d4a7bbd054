package cli

import (
	"fmt"
	"image"

	"github.com/spf13/cobra"

	"github.com/Fepozopo/normalmap/pkg/stdimg"
)

func newSelectionCmd() *cobra.Command {
	var (
		output      string
		maskPath    string
		maskChannel string
		flatten     bool

		edgeWidth  float64
		stepSize   float64
		fromCenter bool
		centerX    float64
		centerY    float64
		linear     bool
		invert     bool
		threshold  int
	)

	cmd := &cobra.Command{
		Use:   "selection <image>",
		Short: "Estimate a normal map from a selection shape",
		Long: `Estimate a normal map from the shape of a selection.

The selection is read from --mask (luminance by default) or from the alpha
channel of the input image. Pixels outside the selection are written fully
transparent; pixels inside are tilted away from the nearby selection edge.`,
		Example: `  normalmap selection sprite.png -o sprite_n.png
  normalmap selection photo.jpg --mask shape.png --edge-width 12 --linear
  normalmap selection disc.png --from-center --center-x 64 --center-y 64`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg := configFromContext(ctx)

			f := cmd.Flags()
			if f.Changed("edge-width") {
				cfg.Selection.EdgeWidth = edgeWidth
			}
			if f.Changed("step-size") {
				cfg.Selection.StepSize = stepSize
			}
			if f.Changed("from-center") {
				cfg.Selection.FromCenter = fromCenter
			}
			if f.Changed("center-x") {
				cfg.Selection.CenterX = &centerX
			}
			if f.Changed("center-y") {
				cfg.Selection.CenterY = &centerY
			}
			if f.Changed("linear") {
				cfg.Selection.LinearFalloff = linear
			}
			if f.Changed("invert") {
				cfg.Selection.Invert = invert
			}
			if f.Changed("threshold") {
				cfg.Selection.Threshold = threshold
			}

			opts, centered, err := cfg.Estimator()
			if err != nil {
				return err
			}
			th, err := cfg.MaskThreshold()
			if err != nil {
				return err
			}

			doc, _, err := openDocument(args[0])
			if err != nil {
				return err
			}
			if maskPath != "" {
				ch := maskChannel
				if ch == "" {
					ch = "luminance"
				}
				m, err := loadMask(maskPath, ch)
				if err != nil {
					return fmt.Errorf("mask: %w", err)
				}
				if m.Bounds().Size() != doc.Bounds().Size() {
					logger.Warn("mask size differs from image, rescaling", "mask", m.Bounds().Size(), "image", doc.Bounds().Size())
				}
				m.SetThreshold(th)
				doc.SetSelection(m)
			} else {
				ch := maskChannel
				if ch == "" {
					ch = "alpha"
				}
				base, err := doc.Active()
				if err != nil {
					return err
				}
				m, err := maskFromImage(base.Image, ch)
				if err != nil {
					return fmt.Errorf("mask: %w", err)
				}
				m.SetThreshold(th)
				doc.SetSelection(m)
			}

			logger.Debug("estimating normals",
				"edge_width", opts.EdgeWidth, "step_size", opts.StepSize,
				"from_center", opts.FromCenter, "falloff", opts.Falloff, "invert", opts.Invert)

			eng := stdimg.NewEngine()
			eng.Selection = opts
			eng.CenterSet = centered
			p := newProgress(logger)
			res, err := eng.Apply(ctx, doc, "selectionNormalMap", nil)
			if err != nil {
				return err
			}

			if output == "" {
				output = defaultOutput(args[0], "_normal")
			}
			var img image.Image = res.Layer.Image
			if flatten {
				img = doc.Flatten()
			}
			if err := SaveImage(output, img); err != nil {
				return err
			}
			p.done(fmt.Sprintf("Wrote %s", output))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output file (default <image>_normal.png)")
	f.StringVarP(&maskPath, "mask", "m", "", "selection mask image (default: input alpha)")
	f.StringVar(&maskChannel, "mask-channel", "", "mask channel: alpha or luminance")
	f.BoolVar(&flatten, "flatten", false, "write the normal map composited over the input")
	f.Float64VarP(&edgeWidth, "edge-width", "w", 8, "probing radius in pixels")
	f.Float64VarP(&stepSize, "step-size", "s", 1, "distance between probes in pixels")
	f.BoolVar(&fromCenter, "from-center", false, "probe along one ray away from the center")
	f.Float64Var(&centerX, "center-x", 0, "center x (default: image middle)")
	f.Float64Var(&centerY, "center-y", 0, "center y (default: image middle)")
	f.BoolVar(&linear, "linear", false, "linear falloff instead of cosine")
	f.BoolVar(&invert, "invert", false, "flip nudge direction")
	f.IntVar(&threshold, "threshold", 128, "mask value at which a pixel counts as selected")
	return cmd
}
