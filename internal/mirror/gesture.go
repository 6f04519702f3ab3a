package mirror

// Slider gestures position the pointer along a horizontal rating bar. The bar
// maps ratings linearly: 0 sits at the left edge, 10 at the right edge, so a
// rating lands at rating/10 of the bar width.

// RatingOffset returns the horizontal pixel offset from the left edge of a
// rating bar of the given width for a 0-10 rating. Out-of-range ratings clamp
// to the bar edges.
func RatingOffset(rating int, width float64) float64 {
	if rating < 0 {
		rating = 0
	}
	if rating > 10 {
		rating = 10
	}
	return float64(rating) * width / 10
}

// DragDisplacement returns the horizontal distance to drag from the bar's
// midpoint to land on the given rating. Negative values drag left.
func DragDisplacement(rating int, width float64) float64 {
	return RatingOffset(rating, width) - width/2
}
