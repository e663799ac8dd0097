package common

// Logical screen size of the demo; the window scales it to fit.
const (
	BaseWidth  = 960
	BaseHeight = 540
)
