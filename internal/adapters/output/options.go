package output

import "github.com/okian/replaystats/pkg/logger"

// Option configures a Writer.
type Option func(*Writer)

// WithHeatmap enables the density heatmap PNG.
func WithHeatmap(enabled bool) Option {
	return func(w *Writer) {
		w.heatmap = enabled
	}
}

// WithLogger sets the writer logger.
func WithLogger(l logger.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.log = l
		}
	}
}
