// Package atlas rasterises the UV layout of quad sphere meshes, one
// wireframe colour per mesh, so the texture atlas cells can be inspected.
package atlas

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/chazu/quadsphere/pkg/kernel"
	"github.com/gogpu/gg"
)

// ErrNoUVs is returned for a mesh that carries no texture coordinates.
var ErrNoUVs = errors.New("atlas: mesh has no uvs")

// Background fills the image before any edges are drawn.
var Background = color.RGBA{R: 24, G: 24, B: 28, A: 255}

// Palette colours the meshes in order, wrapping around.
var Palette = []color.RGBA{
	{R: 0x4A, G: 0x90, B: 0xD9, A: 0xFF},
	{R: 0xE6, G: 0x7E, B: 0x22, A: 0xFF},
	{R: 0x2E, G: 0xCC, B: 0x71, A: 0xFF},
	{R: 0x9B, G: 0x59, B: 0xB6, A: 0xFF},
	{R: 0xE7, G: 0x4C, B: 0x3C, A: 0xFF},
	{R: 0x1A, G: 0xBC, B: 0x9C, A: 0xFF},
	{R: 0xF3, G: 0x9C, B: 0x12, A: 0xFF},
	{R: 0x34, G: 0x98, B: 0xDB, A: 0xFF},
}

// Hex returns c as a #RRGGBB string.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// lineWidth is the wireframe stroke width in pixels.
const lineWidth = 2.0

// Render draws every triangle edge of meshes in UV space onto a size x size
// image. UV (0,0) is the bottom-left corner.
func Render(meshes []*kernel.Mesh, size int) (*image.RGBA, error) {
	dc, err := draw(meshes, size)
	if err != nil {
		return nil, err
	}
	defer dc.Close()
	img, ok := dc.Image().(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("atlas: unexpected image type %T", dc.Image())
	}
	return img, nil
}

// SavePNG renders meshes and writes the image to path.
func SavePNG(path string, meshes []*kernel.Mesh, size int) error {
	dc, err := draw(meshes, size)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("atlas: save %s: %w", path, err)
	}
	return nil
}

func draw(meshes []*kernel.Mesh, size int) (*gg.Context, error) {
	if size <= 0 {
		return nil, fmt.Errorf("atlas: size %d must be positive", size)
	}
	for i, m := range meshes {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("atlas: mesh %d: %w", i, err)
		}
		if len(m.UVs) == 0 && !m.IsEmpty() {
			return nil, fmt.Errorf("mesh %d: %w", i, ErrNoUVs)
		}
	}

	dc := gg.NewContext(size, size)
	dc.ClearWithColor(gg.FromColor(Background))
	dc.SetLineWidth(lineWidth)

	s := float64(size)
	for i, m := range meshes {
		if len(m.Indices) == 0 {
			continue
		}
		dc.SetColor(Palette[i%len(Palette)])
		for t := 0; t+2 < len(m.Indices); t += 3 {
			for j := 0; j < 3; j++ {
				a, b := m.Indices[t+j], m.Indices[t+(j+1)%3]
				dc.DrawLine(
					float64(m.UVs[a*2])*s, (1-float64(m.UVs[a*2+1]))*s,
					float64(m.UVs[b*2])*s, (1-float64(m.UVs[b*2+1]))*s,
				)
			}
		}
		if err := dc.Stroke(); err != nil {
			dc.Close()
			return nil, fmt.Errorf("atlas: mesh %d: %w", i, err)
		}
	}
	return dc, nil
}
