package domain

import "context"

// RunnerPort is the public port exposed by the module
type RunnerPort interface {
	Run(ctx context.Context, refs []string) (Report, error)
}

// Loader opens one image reference. Failures are ErrorCodeLoad.
type Loader interface {
	Load(ctx context.Context, ref string) (Image, Metadata, error)
}

// Sink persists a finished table and reports where it went.
// Failures are ErrorCodeSerialization, or ErrorCodeDB for database sinks.
type Sink interface {
	Write(ctx context.Context, t ResultTable) (dest string, err error)
}

// LoaderFunc adapts a function to Loader
type LoaderFunc func(ctx context.Context, ref string) (Image, Metadata, error)

// Load calls f
func (f LoaderFunc) Load(ctx context.Context, ref string) (Image, Metadata, error) {
	return f(ctx, ref)
}
