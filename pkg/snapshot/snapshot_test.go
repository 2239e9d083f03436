package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	loomerr "github.com/loom-ui/loom/internal/errors"
	"github.com/loom-ui/loom/pkg/vdom"
)

// memStore is an in-memory Store for archiver tests. Thread-safe, like the
// real backends.
type memStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
	fail  error
}

func newMemStore() *memStore {
	return &memStore{blobs: make(map[string][]byte)}
}

func (s *memStore) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.blobs[key] = data
	return nil
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[key]
	if !ok {
		return nil, os.ErrNotExist
	}
	return b, nil
}

func TestArchiverRoundTrip(t *testing.T) {
	store := newMemStore()
	a := NewArchiver(store)

	tree := vdom.Div(vdom.Class("app"), vdom.Span(vdom.Text("state")))
	if err := a.Snapshot(context.Background(), 3, tree); err != nil {
		t.Fatal(err)
	}

	got, err := a.Restore(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if got.Tag != "div" || got.Children[0].Children[0].Text != "state" {
		t.Errorf("restored %+v", got)
	}
}

func TestArchiverKeyIsSortable(t *testing.T) {
	a := NewArchiver(newMemStore())
	if got := a.Key(42); got != "snapshots/000000000042.loom" {
		t.Errorf("key = %s", got)
	}
	if a.Key(9) >= a.Key(10) {
		t.Error("keys must sort chronologically")
	}
}

func TestArchiverInterval(t *testing.T) {
	store := newMemStore()
	a := NewArchiver(store, WithEvery(5))

	for seq := uint64(1); seq <= 12; seq++ {
		if err := a.Snapshot(context.Background(), seq, vdom.Div()); err != nil {
			t.Fatal(err)
		}
	}
	if len(store.blobs) != 2 {
		t.Errorf("stored %d blobs, want seq 5 and 10", len(store.blobs))
	}
	if _, ok := store.blobs[a.Key(5)]; !ok {
		t.Error("seq 5 missing")
	}
}

func TestArchiverPrefix(t *testing.T) {
	store := newMemStore()
	a := NewArchiver(store, WithPrefix("sessions/abc/"))
	if err := a.Snapshot(context.Background(), 1, vdom.Div()); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.blobs["sessions/abc/000000000001.loom"]; !ok {
		t.Errorf("keys = %v", keys(store.blobs))
	}
}

// TestArchiverConcurrentSnapshots drives one archiver from several
// goroutines the way concurrent display drivers would share a backend, then
// checks every blob decodes back to its own tree.
func TestArchiverConcurrentSnapshots(t *testing.T) {
	store := newMemStore()
	a := NewArchiver(store)
	ctx := context.Background()

	const goroutines, perG = 4, 50
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perG; i++ {
				seq := uint64(g*1000 + i + 1)
				tree := vdom.Div(vdom.Span(vdom.Text(fmt.Sprintf("d%d-%d", g, i))))
				if err := a.Snapshot(ctx, seq, tree); err != nil {
					t.Error(err)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	for g := 0; g < goroutines; g++ {
		for i := 0; i < perG; i++ {
			got, err := a.Restore(ctx, uint64(g*1000+i+1))
			if err != nil {
				t.Fatal(err)
			}
			if want := fmt.Sprintf("d%d-%d", g, i); got.Children[0].Children[0].Text != want {
				t.Fatalf("blob for d%d-%d decoded to %q", g, i, got.Children[0].Children[0].Text)
			}
		}
	}
}

func TestArchiverStoreFailure(t *testing.T) {
	store := newMemStore()
	store.fail = fmt.Errorf("disk full")
	a := NewArchiver(store)

	err := a.Snapshot(context.Background(), 1, vdom.Div())
	if !errors.Is(err, loomerr.New(loomerr.CodeSnapshotStore)) {
		t.Errorf("err = %v", err)
	}
}

func TestRestoreCorruptBlob(t *testing.T) {
	store := newMemStore()
	a := NewArchiver(store)
	store.blobs[a.Key(1)] = []byte{0x7F, 0x00}

	_, err := a.Restore(context.Background(), 1)
	if !errors.Is(err, loomerr.New(loomerr.CodeProtocolDecode)) {
		t.Errorf("err = %v", err)
	}
}

func TestRestoreStripsDecoders(t *testing.T) {
	store := newMemStore()
	a := NewArchiver(store)

	tree := vdom.Button(vdom.On("click", vdom.Options{}, func(vdom.RawEvent) (vdom.Msg, error) {
		return nil, nil
	}))
	if err := a.Snapshot(context.Background(), 1, tree); err != nil {
		t.Fatal(err)
	}
	got, err := a.Restore(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Props[0].Name != "click" || got.Props[0].Decoder != nil {
		t.Errorf("restored event prop = %+v", got.Props[0])
	}
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := store.Put(ctx, "snapshots/000000000001.loom", []byte("blob")); err != nil {
		t.Fatal(err)
	}
	got, err := store.Get(ctx, "snapshots/000000000001.loom")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "blob" {
		t.Errorf("got %q", got)
	}

	// Writes are atomic; no temp files linger.
	entries, err := os.ReadDir(filepath.Join(dir, "snapshots"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries", len(entries))
	}

	if _, err := store.Get(ctx, "snapshots/missing.loom"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v", err)
	}
}

func TestLocalStoreOverwrite(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	_ = store.Put(ctx, "k", []byte("v1"))
	_ = store.Put(ctx, "k", []byte("v2"))
	got, _ := store.Get(ctx, "k")
	if string(got) != "v2" {
		t.Errorf("got %q", got)
	}
}

func keys(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
