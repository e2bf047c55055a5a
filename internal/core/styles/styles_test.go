package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	assert.Contains(t, names, DefaultTheme)
	assert.IsIncreasing(t, names)

	for _, name := range names {
		_, ok := GetPalette(name)
		assert.True(t, ok, name)
	}
}

func TestBlendedColor(t *testing.T) {
	SetTheme(Palette{Background: "#000000"})
	t.Cleanup(func() { SetTheme(themes[DefaultTheme]) })

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"#FF0000", "#ff0000", true},
		{"#FF0000FF", "#ff0000", true},
		{"#FF000000", "#000000", true},
		{"#FFFFFF80", "#808080", true},
		{"red", "", false},
		{"#FF00", "", false},
		{"#FF0000ZZ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := BlendedColor(tt.in)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSwatch_Invalid(t *testing.T) {
	assert.Empty(t, Swatch("nope"))
	assert.Contains(t, Swatch("#00FF00"), IconSwatch)
}

func TestGlamourStyle_UsesPalette(t *testing.T) {
	cfg := GlamourStyle()
	require.NotNil(t, cfg.Document.Color)
	assert.Equal(t, string(CurrentPalette.Foreground), *cfg.Document.Color)
}
