package refiner

// Built-in fixed palettes, keyed by the published names used by their
// source hardware or tool. Values are well-known and sourced from each
// system's public documentation rather than derived at runtime.
var (
	PaletteGameBoyLegacy = Palette{Colors: [][3]uint8{
		{15, 56, 15}, {48, 98, 48}, {139, 172, 15}, {155, 188, 15},
	}}

	PaletteGameBoyPocket = Palette{Colors: [][3]uint8{
		{10, 20, 10}, {56, 72, 56}, {136, 144, 112}, {200, 208, 168},
	}}

	PaletteGameBoyLight = Palette{Colors: [][3]uint8{
		{37, 38, 18}, {76, 82, 24}, {136, 146, 40}, {194, 204, 68},
	}}

	PalettePico8 = Palette{Colors: [][3]uint8{
		{0, 0, 0}, {29, 43, 83}, {126, 37, 83}, {0, 135, 81},
		{171, 82, 54}, {95, 87, 79}, {194, 195, 199}, {255, 241, 232},
		{255, 0, 77}, {255, 163, 0}, {255, 236, 39}, {0, 228, 54},
		{41, 173, 255}, {131, 118, 156}, {255, 119, 168}, {255, 204, 170},
	}}

	PaletteNES = Palette{Colors: [][3]uint8{
		{124, 124, 124}, {0, 0, 252}, {0, 0, 188}, {68, 40, 188},
		{148, 0, 132}, {168, 0, 32}, {168, 16, 0}, {136, 20, 0},
		{80, 48, 0}, {0, 120, 0}, {0, 104, 0}, {0, 88, 0},
		{0, 64, 88}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0},
		{188, 188, 188}, {0, 120, 248}, {0, 88, 248}, {104, 68, 252},
		{216, 0, 204}, {228, 0, 88}, {248, 56, 0}, {228, 92, 16},
		{172, 124, 0}, {0, 184, 0}, {0, 168, 0}, {0, 168, 68},
		{0, 136, 136}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0},
		{248, 248, 248}, {60, 188, 252}, {104, 136, 252}, {152, 120, 248},
		{248, 120, 248}, {248, 88, 152}, {248, 120, 88}, {252, 160, 68},
		{248, 184, 0}, {184, 248, 24}, {88, 216, 84}, {88, 248, 152},
		{0, 232, 216}, {120, 120, 120}, {0, 0, 0}, {0, 0, 0},
		{252, 252, 252}, {164, 228, 252}, {184, 184, 248}, {216, 184, 248},
		{248, 184, 248}, {248, 164, 192}, {240, 208, 176}, {252, 224, 168},
		{248, 216, 120}, {216, 248, 120}, {184, 248, 184}, {184, 248, 216},
		{0, 252, 252}, {216, 216, 216}, {0, 0, 0}, {0, 0, 0},
	}}

	PalettePC98 = Palette{Colors: [][3]uint8{
		{0, 0, 0}, {0, 0, 170}, {170, 0, 0}, {170, 0, 170},
		{0, 170, 0}, {0, 170, 170}, {170, 170, 0}, {170, 170, 170},
		{85, 85, 85}, {85, 85, 255}, {255, 85, 85}, {255, 85, 255},
		{85, 255, 85}, {85, 255, 255}, {255, 255, 85}, {255, 255, 255},
	}}

	PaletteMSX1 = Palette{Colors: [][3]uint8{
		{0, 0, 0}, {0, 0, 0}, {33, 200, 66}, {94, 220, 120},
		{84, 85, 237}, {125, 118, 252}, {212, 82, 77}, {66, 235, 245},
		{252, 85, 84}, {255, 121, 120}, {212, 193, 65}, {230, 206, 128},
		{33, 176, 59}, {201, 91, 186}, {204, 204, 204}, {255, 255, 255},
	}}

	PaletteC64 = Palette{Colors: [][3]uint8{
		{0, 0, 0}, {255, 255, 255}, {136, 57, 50}, {103, 182, 189},
		{139, 63, 150}, {85, 160, 73}, {64, 49, 141}, {191, 206, 114},
		{139, 84, 41}, {87, 66, 0}, {184, 105, 98}, {80, 80, 80},
		{120, 120, 120}, {148, 224, 137}, {120, 105, 196}, {159, 159, 159},
	}}

	PaletteArne16 = Palette{Colors: [][3]uint8{
		{0, 0, 0}, {157, 157, 157}, {255, 255, 255}, {190, 38, 51},
		{224, 111, 139}, {73, 60, 43}, {164, 100, 34}, {235, 137, 49},
		{247, 226, 107}, {47, 72, 78}, {68, 137, 26}, {163, 206, 39},
		{27, 38, 50}, {0, 87, 132}, {49, 162, 242}, {178, 220, 239},
	}}

	PaletteMonochrome = Palette{Colors: [][3]uint8{
		{0, 0, 0}, {255, 255, 255},
	}}
)

// PaletteByName resolves one of the built-in palettes by its published
// name. The bool result is false for an unrecognized name.
func PaletteByName(name string) (Palette, bool) {
	switch name {
	case "gameboy", "gameboy-legacy":
		return PaletteGameBoyLegacy, true
	case "gameboy-pocket":
		return PaletteGameBoyPocket, true
	case "gameboy-light":
		return PaletteGameBoyLight, true
	case "pico8":
		return PalettePico8, true
	case "nes":
		return PaletteNES, true
	case "pc98":
		return PalettePC98, true
	case "msx1":
		return PaletteMSX1, true
	case "c64":
		return PaletteC64, true
	case "arne16":
		return PaletteArne16, true
	case "monochrome":
		return PaletteMonochrome, true
	default:
		return Palette{}, false
	}
}
