package table

// Default clustering thresholds
const (
	DefaultRowTokenLimit   = 5
	DefaultHeaderMinLength = 3
)

// Options controls the row clustering heuristic
type Options struct {
	// RowTokenLimit is the token count at which the last row is full
	RowTokenLimit int

	// HeaderMinLength is the length a run must exceed to count as a header
	HeaderMinLength int
}

// Option is a function that modifies the clustering heuristic
type Option func(*Options)

// DefaultOptions returns the default thresholds
func DefaultOptions() Options {
	return Options{
		RowTokenLimit:   DefaultRowTokenLimit,
		HeaderMinLength: DefaultHeaderMinLength,
	}
}

// WithRowTokenLimit sets how many tokens fill a row
func WithRowTokenLimit(limit int) Option {
	return func(o *Options) {
		if limit > 0 {
			o.RowTokenLimit = limit
		}
	}
}

// WithHeaderMinLength sets the length a header must exceed
func WithHeaderMinLength(length int) Option {
	return func(o *Options) {
		if length >= 0 {
			o.HeaderMinLength = length
		}
	}
}

func buildOptions(opts []Option) Options {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
