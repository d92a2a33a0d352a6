package client

import (
	"math"

	"github.com/playmatatu/pitch/internal/game"
)

// View maps pitch coordinates to window pixels. The pitch is scaled uniformly and
// centered; Flip turns it half a revolution so that player one, whose paddle starts at
// the top, sees it at the bottom.
type View struct {
	Geometry game.Geometry
	Scale    float64
	OffsetX  float64
	OffsetY  float64
	Flip     bool
}

// NewView fits geom into a w×h window.
func NewView(geom game.Geometry, w, h int, flip bool) View {
	v := View{Geometry: geom, Scale: 1, Flip: flip}
	if geom.ScreenWidth <= 0 || geom.ScreenHeight <= 0 || w <= 0 || h <= 0 {
		return v
	}
	v.Scale = math.Min(float64(w)/geom.ScreenWidth, float64(h)/geom.ScreenHeight)
	v.OffsetX = (float64(w) - geom.ScreenWidth*v.Scale) / 2
	v.OffsetY = (float64(h) - geom.ScreenHeight*v.Scale) / 2
	return v
}

func (v View) orient(p game.Vec2) game.Vec2 {
	if !v.Flip {
		return p
	}
	return game.Vec2{X: v.Geometry.ScreenWidth - p.X, Y: v.Geometry.ScreenHeight - p.Y}
}

// ToScreen returns the window position of pitch point p.
func (v View) ToScreen(p game.Vec2) (float32, float32) {
	p = v.orient(p)
	return float32(v.OffsetX + p.X*v.Scale), float32(v.OffsetY + p.Y*v.Scale)
}

// ToPitch returns the pitch point under window pixel (x, y).
func (v View) ToPitch(x, y int) game.Vec2 {
	p := game.Vec2{
		X: (float64(x) - v.OffsetX) / v.Scale,
		Y: (float64(y) - v.OffsetY) / v.Scale,
	}
	return v.orient(p)
}

// Length scales a pitch distance to pixels.
func (v View) Length(l float64) float32 {
	return float32(l * v.Scale)
}

// Rect returns the window rectangle spanning pitch corners a and b.
func (v View) Rect(a, b game.Vec2) (x, y, w, h float32) {
	ax, ay := v.ToScreen(a)
	bx, by := v.ToScreen(b)
	x, y = min(ax, bx), min(ay, by)
	return x, y, max(ax, bx) - x, max(ay, by) - y
}
