package views

// ViewProps carries layout and interaction state into the view renderers.
type ViewProps struct {
	Width      int
	Height     int
	MenuCursor int
	AnimCursor float64
	MouseX     int
	MouseY     int
}
