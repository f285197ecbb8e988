package render

import "image/color"

// Shape selects how a visual is drawn in the top-down view.
type Shape int

const (
	ShapeCircle Shape = iota
	ShapeSquare
	ShapeTriangle
	ShapeDiamond
)

// Asset is the visual archetype of an entity type.
type Asset struct {
	Color color.RGBA
	Shape Shape
	// Radius in world units before scale.
	Radius float32
}

// FallbackAsset draws types the renderer has no asset for.
var FallbackAsset = Asset{Color: color.RGBA{200, 80, 200, 255}, Shape: ShapeDiamond, Radius: 0.5}

// DefaultAssets returns the archetypes of the built-in workbench types.
func DefaultAssets() map[string]Asset {
	return map[string]Asset{
		"tree_pine":       {Color: color.RGBA{45, 80, 22, 255}, Shape: ShapeTriangle, Radius: 0.8},
		"tree_oak":        {Color: color.RGBA{70, 120, 40, 255}, Shape: ShapeCircle, Radius: 1.0},
		"tree_birch":      {Color: color.RGBA{150, 190, 90, 255}, Shape: ShapeCircle, Radius: 0.7},
		"building_house":  {Color: color.RGBA{170, 110, 70, 255}, Shape: ShapeSquare, Radius: 1.5},
		"building_castle": {Color: color.RGBA{130, 130, 140, 255}, Shape: ShapeSquare, Radius: 3.0},
		"spaceship":       {Color: color.RGBA{90, 150, 220, 255}, Shape: ShapeDiamond, Radius: 2.0},
		"marker":          {Color: color.RGBA{230, 60, 60, 255}, Shape: ShapeCircle, Radius: 0.25},
	}
}
