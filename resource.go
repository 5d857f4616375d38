package kernel

import "context"

// ResourceFetcher is the async work a Resource performs each time its
// tracked source changes, threaded with the latest source value
// alongside the usual context/token.
type ResourceFetcher[S, T any] func(source S, ctx context.Context, token uint64) (T, error)

// CreateResource composes a tracked source function with a fetcher,
// implementing switch-latest semantics: any change observed in source
// cancels the in-flight fetch (which settles by dropping, per the
// AsyncCell's own token gating) before a new fetch starts with the new
// source value.
func CreateResource[S, T any](source func() S, fetcher ResourceFetcher[S, T], opts ...AsyncOptions[T]) (func() T, *AsyncMeta[T]) {
	cellOpts := AsyncOptions[T]{}
	if len(opts) > 0 {
		cellOpts = opts[0]
	}
	cellOpts.Lazy = true

	var zero T
	cell := NewAsyncCell[T](func(ctx context.Context, token uint64) (T, error) {
		return zero, nil // replaced by setProducer before the first Reload
	}, cellOpts)

	first := true
	NewEffect(func() {
		s := source()

		cell.setProducer(func(ctx context.Context, token uint64) (T, error) {
			return fetcher(s, ctx, token)
		})

		if first {
			first = false
			cell.Reload()
			return
		}
		cell.Cancel("source-changed")
		cell.Reload()
	})

	return cell.Value, &AsyncMeta[T]{cell: cell}
}
