package persistence

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

type countingSource struct {
	calls atomic.Int32
	delay time.Duration
	snap  *domain.Snapshot
	err   error
}

func (s *countingSource) Load(context.Context) (*domain.Snapshot, error) {
	s.calls.Add(1)
	time.Sleep(s.delay)
	return s.snap, s.err
}

type memoryCache struct {
	mu     sync.Mutex
	snap   *domain.Snapshot
	getErr error
	saves  int
}

func (c *memoryCache) Get(context.Context) (*domain.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap, c.getErr
}

func (c *memoryCache) Save(_ context.Context, s *domain.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = s
	c.saves++
	return nil
}

func (c *memoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = nil
	return nil
}

func snapshot() *domain.Snapshot {
	return &domain.Snapshot{Categories: []domain.Category{{ID: 1, Name: "trees"}}}
}

func TestCompositeCatalogSource_ReadThrough(t *testing.T) {
	t.Parallel()

	src := &countingSource{snap: snapshot()}
	cache := &memoryCache{}
	repo := NewCompositeCatalogSource(src, "test", cache, metrics.New("test"), 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := repo.Load(ctx)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(got.Categories) != 1 {
			t.Fatalf("categories = %v", got.Categories)
		}
	}
	if n := src.calls.Load(); n != 1 {
		t.Errorf("source calls = %d, want 1", n)
	}
	if cache.saves != 1 {
		t.Errorf("cache saves = %d, want 1", cache.saves)
	}

	_ = cache.Invalidate(ctx)
	if _, err := repo.Load(ctx); err != nil {
		t.Fatalf("Load after invalidate: %v", err)
	}
	if n := src.calls.Load(); n != 2 {
		t.Errorf("source calls after invalidate = %d, want 2", n)
	}
}

func TestCompositeCatalogSource_CollapsesConcurrentLoads(t *testing.T) {
	t.Parallel()

	src := &countingSource{snap: snapshot(), delay: 50 * time.Millisecond}
	repo := NewCompositeCatalogSource(src, "test", &memoryCache{getErr: errors.New("cache down")}, nil, 0)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Load(context.Background()); err != nil {
				t.Errorf("Load: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := src.calls.Load(); n >= 10 {
		t.Errorf("source calls = %d, want concurrent loads collapsed", n)
	}
}

func TestCompositeCatalogSource_SourceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("db down")
	cache := &memoryCache{}
	repo := NewCompositeCatalogSource(&countingSource{err: boom}, "test", cache, nil, 0)
	if _, err := repo.Load(context.Background()); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
	if cache.saves != 0 {
		t.Errorf("failed load should not be cached")
	}
}

// gatedSource 阻塞到 release 关闭或 ctx 结束
type gatedSource struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	snap    *domain.Snapshot
}

func (s *gatedSource) Load(ctx context.Context) (*domain.Snapshot, error) {
	if s.calls.Add(1) == 1 {
		close(s.started)
	}
	select {
	case <-s.release:
		return s.snap, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestCompositeCatalogSource_CallerCancelDoesNotFailSharedLoad(t *testing.T) {
	t.Parallel()

	src := &gatedSource{started: make(chan struct{}), release: make(chan struct{}), snap: snapshot()}
	cache := &memoryCache{}
	repo := NewCompositeCatalogSource(src, "test", cache, nil, 0)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := repo.Load(firstCtx)
		firstErr <- err
	}()
	<-src.started

	type result struct {
		snap *domain.Snapshot
		err  error
	}
	second := make(chan result, 1)
	go func() {
		snap, err := repo.Load(context.Background())
		second <- result{snap, err}
	}()

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("first caller err = %v, want context.Canceled", err)
	}

	close(src.release)
	got := <-second
	if got.err != nil {
		t.Fatalf("second caller err = %v", got.err)
	}
	if len(got.snap.Categories) != 1 {
		t.Errorf("categories = %v", got.snap.Categories)
	}
	if n := src.calls.Load(); n != 1 {
		t.Errorf("source calls = %d, want 1", n)
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if cache.saves != 1 {
		t.Errorf("cache saves = %d, want 1", cache.saves)
	}
}

func TestCompositeCatalogSource_LoadTimeout(t *testing.T) {
	t.Parallel()

	src := &gatedSource{started: make(chan struct{}), release: make(chan struct{}), snap: snapshot()}
	repo := NewCompositeCatalogSource(src, "test", &memoryCache{}, nil, 20*time.Millisecond)

	if _, err := repo.Load(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}
