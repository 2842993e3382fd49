package render

// Strip is the addressable light strip. SetPixel is only called for lit
// elements; Flush transmits the frame and clears it.
type Strip interface {
	SetPixel(i int, c RGB)
	Flush() error
}

// TextSink receives one diagnostic line per render tick.
type TextSink interface {
	WriteLine(text string) error
}
