package mzml

// ExtractOption configures Extract.
type ExtractOption func(*extractConfig)

type extractConfig struct {
	ancestors     bool
	chromatograms []string
	variant       Variant
}

// WithAncestors also extracts every spectrum reachable through precursor
// references from the requested spectra. References into other files are
// skipped.
func WithAncestors() ExtractOption {
	return func(c *extractConfig) {
		c.ancestors = true
	}
}

// WithChromatograms adds the given chromatograms to the output.
func WithChromatograms(ids ...string) ExtractOption {
	return func(c *extractConfig) {
		c.chromatograms = append(c.chromatograms, ids...)
	}
}

// WithVariant selects the output container. By default the output matches
// the source.
func WithVariant(v Variant) ExtractOption {
	return func(c *extractConfig) {
		c.variant = v
	}
}
