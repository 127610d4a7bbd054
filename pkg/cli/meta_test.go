package cli

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Fepozopo/normalmap/pkg/stdimg"
)

func TestNormalizeArgsFromStd(t *testing.T) {
	store := NewMetaStoreFromStdimg(stdimg.Commands)

	tests := []struct {
		name    string
		cmd     string
		args    []string
		want    []string
		wantErr bool
	}{
		{
			name: "defaults stay empty",
			cmd:  "selectionNormalMap",
			args: nil,
			want: []string{"", "", "", "", "", "", ""},
		},
		{
			name: "floats and bools canonicalised",
			cmd:  "selectionNormalMap",
			args: []string{" 4.50 ", "1", "yes", "", "", "off", "T"},
			want: []string{"4.5", "1", "true", "", "", "false", "true"},
		},
		{
			name:    "negative edge width",
			cmd:     "selectionNormalMap",
			args:    []string{"-2"},
			wantErr: true,
		},
		{
			name:    "bad bool",
			cmd:     "selectionNormalMap",
			args:    []string{"", "", "sometimes"},
			wantErr: true,
		},
		{
			name: "degenerate alias",
			cmd:  "textureNormalize",
			args: []string{"", "2", "Pass-Through"},
			want: []string{"", "2", "passthrough"},
		},
		{
			name:    "unknown degenerate",
			cmd:     "textureNormalize",
			args:    []string{"", "", "sideways"},
			wantErr: true,
		},
		{
			name:    "missing required index",
			cmd:     "activeLayer",
			args:    []string{""},
			wantErr: true,
		},
		{
			name:    "negative index",
			cmd:     "activeLayer",
			args:    []string{"-1"},
			wantErr: true,
		},
		{
			name: "index",
			cmd:  "activeLayer",
			args: []string{"02"},
			want: []string{"2"},
		},
		{
			name:    "unknown command",
			cmd:     "sharpen",
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeArgsFromStd(store, tc.cmd, tc.args)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}

	_, err := NormalizeArgsFromStd(nil, "identify", nil)
	require.Error(t, err)
}

func TestCommandHelp(t *testing.T) {
	store := NewMetaStoreFromStdimg(stdimg.Commands)

	tip, rules, err := store.GetCommandHelp("textureNormalize")
	require.NoError(t, err)
	require.Contains(t, tip, "- scalar (float, optional): target vector length")
	require.Contains(t, tip, "(default: up)")
	require.Equal(t, ParamTypeEnum, rules["degenerate"].Type)
	require.Equal(t, []string{"up", "passthrough"}, rules["degenerate"].EnumOptions)

	// falloff is chosen with a bool, so no enum spellings apply to it
	_, rules, err = store.GetCommandHelp("selectionNormalMap")
	require.NoError(t, err)
	require.Equal(t, ParamTypeBool, rules["linearFalloff"].Type)
	require.Empty(t, rules["linearFalloff"].EnumOptions)
	require.Nil(t, enumOptions("falloff"))

	tip, err = store.GetTooltip("identify")
	require.NoError(t, err)
	require.Contains(t, tip, "no parameters")

	_, err = store.GetValidationRules("nope")
	require.Error(t, err)
}
