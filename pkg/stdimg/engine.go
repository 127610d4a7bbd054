package stdimg

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Fepozopo/normalmap/pkg/canvas"
	"github.com/Fepozopo/normalmap/pkg/normal"
)

// Result is what a command leaves behind. Layer is nil for commands that
// only change document state or describe it.
type Result struct {
	Layer  *canvas.Layer
	Report normal.Report
	Info   string
}

// Engine dispatches named commands against a document. Selection,
// Renormalize and FullImage hold the values used for omitted arguments.
// Selection.Center is only used when CenterSet is true; otherwise the
// canvas middle is.
type Engine struct {
	Selection   normal.Options
	CenterSet   bool
	Renormalize normal.RenormalizeOptions
	FullImage   bool
}

// NewEngine returns an engine with the package defaults.
func NewEngine() *Engine {
	return &Engine{
		Selection:   normal.DefaultOptions(),
		Renormalize: normal.DefaultRenormalizeOptions(),
	}
}

// ApplyCommand runs commandName on doc with the package defaults.
func ApplyCommand(ctx context.Context, doc *canvas.Document, commandName string, args []string) (Result, error) {
	return NewEngine().Apply(ctx, doc, commandName, args)
}

// arg returns args[i], or "" when it was not given.
func arg(args []string, i int) string {
	if i < len(args) {
		return strings.TrimSpace(args[i])
	}
	return ""
}

func parseFloatArg(args []string, i int, name string, def float64) (float64, error) {
	s := arg(args, i)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

func parseBoolArg(args []string, i int, name string, def bool) (bool, error) {
	s := arg(args, i)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s flag: %w", name, err)
	}
	return b, nil
}

// Apply runs commandName on doc. Positional args follow the order in
// Commands; empty or missing args take the engine's value.
func (e *Engine) Apply(ctx context.Context, doc *canvas.Document, commandName string, args []string) (Result, error) {
	if doc == nil {
		return Result{}, fmt.Errorf("document is nil")
	}
	switch commandName {
	case "selectionNormalMap":
		// selectionNormalMap [edgeWidth] [stepSize] [fromCenter] [centerX] [centerY] [linearFalloff] [invert]
		if len(args) > 7 {
			return Result{}, fmt.Errorf("selectionNormalMap takes at most 7 args")
		}
		opts := e.Selection
		var err error
		if opts.EdgeWidth, err = parseFloatArg(args, 0, "edgeWidth", opts.EdgeWidth); err != nil {
			return Result{}, err
		}
		if opts.StepSize, err = parseFloatArg(args, 1, "stepSize", opts.StepSize); err != nil {
			return Result{}, err
		}
		if opts.FromCenter, err = parseBoolArg(args, 2, "fromCenter", opts.FromCenter); err != nil {
			return Result{}, err
		}
		if !e.CenterSet {
			opts.Center = normal.Point{X: float64(doc.Width) / 2, Y: float64(doc.Height) / 2}
		}
		if opts.Center.X, err = parseFloatArg(args, 3, "centerX", opts.Center.X); err != nil {
			return Result{}, err
		}
		if opts.Center.Y, err = parseFloatArg(args, 4, "centerY", opts.Center.Y); err != nil {
			return Result{}, err
		}
		linear, err := parseBoolArg(args, 5, "linearFalloff", opts.Falloff == normal.Linear)
		if err != nil {
			return Result{}, err
		}
		opts.Falloff = normal.FalloffFor(linear)
		if opts.Invert, err = parseBoolArg(args, 6, "invert", opts.Invert); err != nil {
			return Result{}, err
		}
		l, err := SelectionNormalMap(ctx, doc, opts)
		if err != nil {
			return Result{}, err
		}
		return Result{Layer: l}, nil

	case "textureNormalize":
		// textureNormalize [fullImage] [scalar] [degenerate]
		if len(args) > 3 {
			return Result{}, fmt.Errorf("textureNormalize takes at most 3 args")
		}
		opts := e.Renormalize
		fullImage, err := parseBoolArg(args, 0, "fullImage", e.FullImage)
		if err != nil {
			return Result{}, err
		}
		if opts.Scalar, err = parseFloatArg(args, 1, "scalar", opts.Scalar); err != nil {
			return Result{}, err
		}
		if s := arg(args, 2); s != "" {
			p, err := normal.ParseDegeneratePolicy(s)
			if err != nil {
				return Result{}, fmt.Errorf("invalid degenerate: %w", err)
			}
			opts.Degenerate = p
		}
		l, rep, err := TextureNormalize(ctx, doc, opts, fullImage)
		if err != nil {
			return Result{}, err
		}
		return Result{Layer: l, Report: rep}, nil

	case "selectAll":
		doc.SelectAll()
		return Result{}, nil

	case "invertSelection":
		doc.Selection().Invert()
		return Result{}, nil

	case "activeLayer":
		if len(args) != 1 {
			return Result{}, fmt.Errorf("activeLayer requires 1 arg: index")
		}
		i, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil {
			return Result{}, fmt.Errorf("invalid index: %w", err)
		}
		if err := doc.SetActive(i); err != nil {
			return Result{}, err
		}
		return Result{}, nil

	case "identify":
		return Result{Info: Describe(doc)}, nil

	default:
		return Result{}, fmt.Errorf("unsupported command: %s", commandName)
	}
}

// Describe summarizes the canvas, its layer stack and the selection.
func Describe(doc *canvas.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Canvas: %dx%d\n", doc.Width, doc.Height)
	active, _ := doc.Active()
	for i, l := range doc.Layers() {
		mark := " "
		if l == active {
			mark = "*"
		}
		r := l.CanvasBounds()
		fmt.Fprintf(&b, "%s %d %q %dx%d at (%d,%d) opacity %.2f visible %t\n",
			mark, i, l.Name, r.Dx(), r.Dy(), r.Min.X, r.Min.Y, l.Opacity, l.Visible)
	}
	sel := doc.Selection()
	selected := 0
	sb := sel.Bounds()
	for y := sb.Min.Y; y < sb.Max.Y; y++ {
		for x := sb.Min.X; x < sb.Max.X; x++ {
			if sel.Selected(x, y) {
				selected++
			}
		}
	}
	fmt.Fprintf(&b, "Selection: %d of %d pixels (threshold %d)\n", selected, sb.Dx()*sb.Dy(), sel.Threshold())
	return b.String()
}
