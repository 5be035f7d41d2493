package flatten

// Option modifies a Config.
//
// Example:
//
//	cfg := flatten.NewConfig(
//	    flatten.WithPictureCaching(false),
//	    flatten.WithFontRenderMode(flatten.FontRenderAlpha),
//	)
type Option func(*Config)

// WithPictureCaching enables or disables tile-cache partitioning.
func WithPictureCaching(enabled bool) Option {
	return func(c *Config) {
		c.EnablePictureCaching = enabled
	}
}

// WithFontRenderMode sets the default (maximum) font render mode.
func WithFontRenderMode(m FontRenderMode) Option {
	return func(c *Config) {
		c.DefaultFontRenderMode = m
	}
}

// WithBackgroundColor sets the fallback background color.
func WithBackgroundColor(col ColorF) Option {
	return func(c *Config) {
		c.BackgroundColor = col
	}
}

// WithChaseID traces the primitive with the given sequence number.
func WithChaseID(id uint64) Option {
	return func(c *Config) {
		c.ChasePrimitive = ChasePrimitive{ID: &id}
	}
}

// WithChaseRect traces the leaf primitive whose layout rect equals r.
func WithChaseRect(r Rect) Option {
	return func(c *Config) {
		c.ChasePrimitive = ChasePrimitive{Rect: &[4]float32{r.MinX, r.MinY, r.Width(), r.Height()}}
	}
}

// WithLenientAssertions downgrades soft contract faults to warnings.
func WithLenientAssertions(lenient bool) Option {
	return func(c *Config) {
		c.LenientAssertions = lenient
	}
}
