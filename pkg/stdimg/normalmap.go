package stdimg

import (
	"context"
	"fmt"

	"github.com/Fepozopo/normalmap/pkg/canvas"
	"github.com/Fepozopo/normalmap/pkg/normal"
)

// Layer names given to filter output.
const (
	SelectionLayerName  = "selectionNormalMap"
	NormalizedLayerName = "normalized"
)

// SelectionNormalMap estimates a normal map from the document selection over
// the active layer's area and inserts the result as a new top layer.
// opts.Center is given in canvas coordinates.
func SelectionNormalMap(ctx context.Context, doc *canvas.Document, opts normal.Options) (*canvas.Layer, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}
	src, err := doc.Active()
	if err != nil {
		return nil, fmt.Errorf("selection normal map: %w", err)
	}
	local := opts
	local.Center.X -= float64(src.Offset.X)
	local.Center.Y -= float64(src.Offset.Y)
	e, err := normal.NewEstimator(local)
	if err != nil {
		return nil, err
	}

	// render into a fresh layer so a failed run leaves the document as it was
	out := doc.NewLayer(SelectionLayerName, src.CanvasBounds())
	if err := e.Apply(ctx, doc.SelectionFor(out), out); err != nil {
		return nil, err
	}
	if err := doc.Insert(out, 0); err != nil {
		return nil, err
	}
	return out, nil
}

// TextureNormalize rescales the encoded vectors of the active layer, or of
// the flattened canvas when fullImage is set, and inserts the result as a
// new top layer. Degenerate pixels are written per opts and counted in the
// report; they do not fail the call.
func TextureNormalize(ctx context.Context, doc *canvas.Document, opts normal.RenormalizeOptions, fullImage bool) (*canvas.Layer, normal.Report, error) {
	if doc == nil {
		return nil, normal.Report{}, fmt.Errorf("document is nil")
	}
	r, err := normal.NewRenormalizer(opts)
	if err != nil {
		return nil, normal.Report{}, err
	}

	var src normal.Source
	var out *canvas.Layer
	if fullImage {
		src = doc.Flatten()
		out = doc.NewLayer(NormalizedLayerName, doc.Bounds())
	} else {
		l, err := doc.Active()
		if err != nil {
			return nil, normal.Report{}, fmt.Errorf("texture normalize: %w", err)
		}
		src = l
		out = doc.NewLayer(NormalizedLayerName, l.CanvasBounds())
	}

	rep, err := r.Apply(ctx, src, out)
	if err != nil {
		return nil, normal.Report{}, err
	}
	if err := doc.Insert(out, 0); err != nil {
		return nil, normal.Report{}, err
	}
	return out, rep, nil
}
