package refiner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaletteByNameKnownAliases(t *testing.T) {
	tests := []struct {
		name string
		want Palette
	}{
		{"gameboy", PaletteGameBoyLegacy},
		{"gameboy-legacy", PaletteGameBoyLegacy},
		{"gameboy-pocket", PaletteGameBoyPocket},
		{"gameboy-light", PaletteGameBoyLight},
		{"pico8", PalettePico8},
		{"nes", PaletteNES},
		{"pc98", PalettePC98},
		{"msx1", PaletteMSX1},
		{"c64", PaletteC64},
		{"arne16", PaletteArne16},
		{"monochrome", PaletteMonochrome},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PaletteByName(tt.name)
			assert.True(t, ok)
			assert.Equal(t, tt.want.Colors, got.Colors)
		})
	}
}

func TestPaletteByNameUnknown(t *testing.T) {
	_, ok := PaletteByName("not-a-real-palette")
	assert.False(t, ok)
}

func TestPaletteMonochromeIsBlackAndWhite(t *testing.T) {
	assert.Equal(t, [][3]uint8{{0, 0, 0}, {255, 255, 255}}, PaletteMonochrome.Colors)
}
