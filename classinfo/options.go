package classinfo

import "strings"

// DefaultNoisePrefixes are the package prefixes left out of dependency lists
// unless the filter is replaced or disabled.
var DefaultNoisePrefixes = []string{"java.lang.", "java.util."}

type Options struct {
	// Code adds the decoded instruction listing to every method with a
	// Code attribute.
	Code bool
	// NoisePrefixes are dependency prefixes to drop.
	NoisePrefixes []string
}

type Option func(*Options)

// WithCode includes the instruction listing of each method.
func WithCode() Option {
	return func(o *Options) {
		o.Code = true
	}
}

// WithNoisePrefixes replaces the dependency noise filter.
func WithNoisePrefixes(prefixes ...string) Option {
	return func(o *Options) {
		o.NoisePrefixes = prefixes
	}
}

// WithoutNoiseFilter keeps every dependency.
func WithoutNoiseFilter() Option {
	return func(o *Options) {
		o.NoisePrefixes = nil
	}
}

func newOptions(opts []Option) Options {
	o := Options{NoisePrefixes: DefaultNoisePrefixes}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o Options) isNoise(name string) bool {
	for _, prefix := range o.NoisePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
