package render

// countingGenerator wraps a Generator and counts calls per primitive.
type countingGenerator struct {
	inner Generator
	calls int
}

func (g *countingGenerator) Rectangle(x, y, w, h float64, o Options) Shape {
	g.calls++
	return g.inner.Rectangle(x, y, w, h, o)
}

func (g *countingGenerator) Ellipse(cx, cy, w, h float64, o Options) Shape {
	g.calls++
	return g.inner.Ellipse(cx, cy, w, h, o)
}

func (g *countingGenerator) Path(p Path, o Options) Shape {
	g.calls++
	return g.inner.Path(p, o)
}
