package theme

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

type RGB [3]uint8

type Palette struct {
	Name   string
	Colors []RGB
}

// Mixer is the built-in palette, dark slate up to warm amber
var Mixer = &Palette{
	Name: "mixer",
	Colors: []RGB{
		{0x12, 0x14, 0x1c},
		{0x1e, 0x23, 0x30},
		{0x3b, 0x44, 0x5c},
		{0x6b, 0x78, 0x9a},
		{0xa9, 0xb4, 0xd0},
		{0x4f, 0xa3, 0xe0},
		{0x5c, 0xd6, 0x8a},
		{0xe0, 0xc0, 0x4f},
		{0xf0, 0x8a, 0x3c},
		{0xe0, 0x4f, 0x4f},
	},
}

func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open palette")
	}
	defer f.Close()

	p := &Palette{}
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "Name:") {
			p.Name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
			continue
		}

		// Skip headers and comments
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "GIMP") || strings.HasPrefix(line, "Columns") {
			continue
		}

		// first 3 fields are R G B
		fields := strings.Fields(line)
		if len(fields) >= 3 {
			r, err1 := strconv.Atoi(fields[0])
			g, err2 := strconv.Atoi(fields[1])
			b, err3 := strconv.Atoi(fields[2])
			if err1 == nil && err2 == nil && err3 == nil {
				p.Colors = append(p.Colors, RGB{uint8(r), uint8(g), uint8(b)})
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read palette %s", path)
	}

	if len(p.Colors) == 0 {
		return nil, errors.Errorf("no colors found in palette %s", path)
	}

	return p, nil
}

// LoadOrDefault loads a GPL palette, falling back to Mixer when path is
// empty or unreadable
func LoadOrDefault(path string) (*Palette, error) {
	if path == "" {
		return Mixer, nil
	}
	p, err := LoadGPL(path)
	if err != nil {
		return Mixer, err
	}
	return p, nil
}

// Lookup returns the colour at norm (0-1), blended in Lab space between
// neighbouring entries
func (p *Palette) Lookup(norm float64) RGB {
	if norm <= 0 {
		return p.Colors[0]
	}
	if norm >= 1 {
		return p.Colors[len(p.Colors)-1]
	}

	pos := norm * float64(len(p.Colors)-1)
	i := int(pos)
	frac := pos - float64(i)

	c0 := toColorful(p.Colors[i])
	c1 := toColorful(p.Colors[i+1])
	r, g, b := c0.BlendLab(c1, frac).Clamped().RGB255()
	return RGB{r, g, b}
}

func toColorful(c RGB) colorful.Color {
	return colorful.Color{R: float64(c[0]) / 255, G: float64(c[1]) / 255, B: float64(c[2]) / 255}
}

// Index returns color at specific index (no interpolation)
func (p *Palette) Index(i int) RGB {
	if i < 0 {
		return p.Colors[0]
	}
	if i >= len(p.Colors) {
		return p.Colors[len(p.Colors)-1]
	}
	return p.Colors[i]
}
