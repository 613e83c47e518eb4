package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"aoedash/internal/dataset"
	"aoedash/internal/logging"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	// Timeout bounds a single download. Zero means no deadline beyond ctx.
	Timeout time.Duration
	// Cache, when set, receives every good payload and serves as fallback.
	Cache *SnapshotCache
	// CacheMaxAge limits how stale a fallback snapshot may be.
	CacheMaxAge time.Duration
	// Now overrides the clock.
	Now func() time.Time
}

// Fetcher is a read-through memo of decoded datasets keyed by snapshot
// path. Successful downloads are kept until Invalidate; failures are not.
// A snapshot served from the local cache after a failed download is kept
// only as a fallback: every Fetch tries the source again and replaces it
// once a download succeeds.
type Fetcher struct {
	source Source
	opts   FetcherOptions

	mu    sync.RWMutex
	memo  map[string]*dataset.Dataset
	stale map[string]bool
	group singleflight.Group
}

// NewFetcher creates a fetcher in front of source.
func NewFetcher(source Source, opts FetcherOptions) *Fetcher {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Fetcher{
		source: source,
		opts:   opts,
		memo:   make(map[string]*dataset.Dataset),
		stale:  make(map[string]bool),
	}
}

// Source returns the underlying source.
func (f *Fetcher) Source() Source {
	return f.source
}

// Fetch returns the dataset for path, downloading and decoding it on first
// use. Concurrent first fetches of the same path share one download.
func (f *Fetcher) Fetch(ctx context.Context, path string) (*dataset.Dataset, error) {
	f.mu.RLock()
	ds, ok := f.memo[path]
	stale := f.stale[path]
	f.mu.RUnlock()
	if ok && !stale {
		logging.Cache("memo hit for %s", path)
		return ds, nil
	}

	v, err, shared := f.group.Do(path, func() (interface{}, error) {
		return f.load(ctx, path)
	})
	if shared {
		logging.Cache("shared in-flight fetch of %s", path)
	}
	if err != nil {
		return nil, err
	}
	return v.(*dataset.Dataset), nil
}

// Stale reports whether the memoized dataset for path came from the local
// snapshot cache rather than a live download.
func (f *Fetcher) Stale(path string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.stale[path]
}

// Cached reports whether path is memoized.
func (f *Fetcher) Cached(path string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.memo[path]
	return ok
}

// Invalidate drops the memoized dataset for path so the next Fetch
// downloads again.
func (f *Fetcher) Invalidate(path string) {
	f.mu.Lock()
	delete(f.memo, path)
	delete(f.stale, path)
	f.mu.Unlock()
	f.group.Forget(path)
	logging.Cache("invalidated %s", path)
}

// Prefetch downloads every path concurrently. All paths are attempted and
// their errors are joined.
func (f *Fetcher) Prefetch(ctx context.Context, paths []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	errs := make([]error, len(paths))
	for i, p := range paths {
		g.Go(func() error {
			_, errs[i] = f.Fetch(gctx, p)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

func (f *Fetcher) load(ctx context.Context, path string) (*dataset.Dataset, error) {
	// A flight that finished between the memo check and Do already stored it.
	f.mu.RLock()
	ds, ok := f.memo[path]
	stale := f.stale[path]
	f.mu.RUnlock()
	if ok && !stale {
		return ds, nil
	}

	ctx, span := otel.Tracer("aoedash/storage").Start(ctx, "storage.Fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("snapshot.path", path),
		attribute.String("snapshot.source", f.source.Describe()),
	)

	timer := logging.StartTimer(logging.CategoryFetch, "download "+path)

	dctx := ctx
	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
		defer cancel()
	}

	body, err := f.source.Read(dctx, path)
	if err != nil {
		timer.Stop()
		span.RecordError(err)
		fetchErr := &FetchError{Path: path, Source: f.source.Describe(), Err: err}

		if ok {
			logging.FetchWarn("%v; still serving cached snapshot from %s", fetchErr, ds.FetchedAt.Format(time.RFC3339))
			span.SetAttributes(attribute.Bool("snapshot.stale", true))
			return ds, nil
		}

		cached, cacheErr := f.fromCache(ctx, path)
		if cacheErr != nil {
			span.SetStatus(codes.Error, err.Error())
			logging.FetchWarn("%v", fetchErr)
			return nil, fetchErr
		}
		logging.FetchWarn("%v; using cached snapshot from %s", fetchErr, cached.FetchedAt.Format(time.RFC3339))
		span.SetAttributes(attribute.Bool("snapshot.stale", true))
		f.remember(path, cached, true)
		return cached, nil
	}
	timer.StopWithThreshold(10 * time.Second)

	ds, err = dataset.Decode(bytes.NewReader(body), path)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &FetchError{Path: path, Source: f.source.Describe(), Err: fmt.Errorf("decode: %w", err)}
	}
	ds.FetchedAt = f.opts.Now()
	span.SetAttributes(attribute.Int("snapshot.rows", ds.Len()))
	logging.Fetch("fetched %s: %d rows, %d bytes", path, ds.Len(), len(body))

	if f.opts.Cache != nil {
		if err := f.opts.Cache.Put(ctx, path, body, ds.FetchedAt); err != nil {
			logging.CacheWarn("%v", err)
		}
	}

	f.remember(path, ds, false)
	return ds, nil
}

func (f *Fetcher) fromCache(ctx context.Context, path string) (*dataset.Dataset, error) {
	if f.opts.Cache == nil {
		return nil, ErrCacheMiss
	}
	snap, err := f.opts.Cache.Get(ctx, path, f.opts.CacheMaxAge)
	if err != nil {
		return nil, err
	}
	ds, err := dataset.Decode(bytes.NewReader(snap.Body), path)
	if err != nil {
		return nil, fmt.Errorf("decode cached %s: %w", path, err)
	}
	ds.FetchedAt = snap.FetchedAt
	return ds, nil
}

func (f *Fetcher) remember(path string, ds *dataset.Dataset, stale bool) {
	f.mu.Lock()
	f.memo[path] = ds
	f.stale[path] = stale
	f.mu.Unlock()
}
