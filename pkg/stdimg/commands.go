// Package stdimg: authoritative registry of engine commands.
//
// This file mirrors the commands implemented in ApplyCommand in
// pkg/stdimg/engine.go. Keep this list up-to-date when you add or
// modify commands so callers (CLI, docs, help text) can read a single
// source of truth.

package stdimg

// ArgSpec describes a single argument for a command. Fields are textual
// and intended for help/validation UI rather than machine-enforced typing.
type ArgSpec struct {
	Name        string // human name
	Type        string // "int", "float", "bool", "string", "enum", etc.
	Required    bool
	Default     string // textual default (for help only)
	Description string
}

// CommandSpec defines a single command and its expected arguments.
type CommandSpec struct {
	Name        string
	Args        []ArgSpec
	Usage       string // short usage string
	Description string // brief description
}

// Commands is the authoritative list of commands implemented by the engine.
// Keep this synchronized with ApplyCommand in pkg/stdimg/engine.go.
var Commands = []CommandSpec{
	{
		Name: "selectionNormalMap",
		Args: []ArgSpec{
			{"edgeWidth", "float", false, "8", "probing radius in pixels (> 0)"},
			{"stepSize", "float", false, "1", "distance between probes (> 0)"},
			{"fromCenter", "bool", false, "false", "probe along a single ray away from the center"},
			{"centerX", "float", false, "", "center x on the canvas (default: canvas middle)"},
			{"centerY", "float", false, "", "center y on the canvas (default: canvas middle)"},
			{"linearFalloff", "bool", false, "false", "linear instead of cosine falloff"},
			{"invert", "bool", false, "false", "flip nudge direction"},
		},
		Usage:       "selectionNormalMap [edgeWidth] [stepSize] [fromCenter] [centerX] [centerY] [linearFalloff] [invert]",
		Description: "Estimate a normal map from the selection shape into a new layer.",
	},
	{
		Name: "textureNormalize",
		Args: []ArgSpec{
			{"fullImage", "bool", false, "false", "sample the flattened canvas instead of the active layer"},
			{"scalar", "float", false, "1", "target vector length (nonzero)"},
			{"degenerate", "enum", false, "up", "up|passthrough for zero-length pixels"},
		},
		Usage:       "textureNormalize [fullImage] [scalar] [degenerate]",
		Description: "Rescale every encoded vector to a fixed length into a new layer.",
	},
	{
		Name:        "selectAll",
		Args:        []ArgSpec{},
		Usage:       "selectAll",
		Description: "Select the whole canvas.",
	},
	{
		Name:        "invertSelection",
		Args:        []ArgSpec{},
		Usage:       "invertSelection",
		Description: "Invert the selection mask.",
	},
	{
		Name:        "activeLayer",
		Args:        []ArgSpec{{"index", "int", true, "", "layer index, 0 is the top"}},
		Usage:       "activeLayer <index>",
		Description: "Choose the layer filters read from.",
	},
	{
		Name:        "identify",
		Args:        []ArgSpec{},
		Usage:       "identify",
		Description: "Describe the canvas, layers and selection; creates no layer.",
	},
}

// Lookup returns the spec registered under name.
func Lookup(name string) (CommandSpec, bool) {
	for _, c := range Commands {
		if c.Name == name {
			return c, true
		}
	}
	return CommandSpec{}, false
}
