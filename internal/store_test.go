package internal

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func testRecord(videoID string) *AnalysisRecord {
	return &AnalysisRecord{
		VideoID:    videoID,
		VideoTitle: PlaceholderTitle(videoID),
		Timestamps: []Highlight{
			{Seconds: 30, Time: "0:30", Reason: "Key point introduced"},
		},
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	store := NewFileStore(path, NewTestLogger())
	ctx := context.Background()

	record := testRecord("dQw4w9WgXcQ")
	if err := store.Put(ctx, record.VideoID, record); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, found, err := store.Get(ctx, record.VideoID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Fatal("Get: record not found after Put")
	}
	if got.VideoID != record.VideoID || got.VideoTitle != record.VideoTitle {
		t.Errorf("Get returned %+v, want %+v", got, record)
	}
	if len(got.Timestamps) != 1 || got.Timestamps[0] != record.Timestamps[0] {
		t.Errorf("Get timestamps = %+v, want %+v", got.Timestamps, record.Timestamps)
	}
	if !got.CreatedAt.Equal(record.CreatedAt) {
		t.Errorf("Get CreatedAt = %v, want %v", got.CreatedAt, record.CreatedAt)
	}
}

func TestFileStoreMissingFileIsMiss(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "cache.json")
	store := NewFileStore(path, NewTestLogger())

	_, found, err := store.Get(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Error("Get reported a hit against a missing cache file")
	}
}

func TestFileStoreCorruptFileIsMiss(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	store := NewFileStore(path, NewTestLogger())
	ctx := context.Background()

	_, found, err := store.Get(ctx, "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Error("Get reported a hit against a corrupt cache file")
	}

	// A Put over a corrupt file starts fresh rather than failing.
	record := testRecord("dQw4w9WgXcQ")
	if err := store.Put(ctx, record.VideoID, record); err != nil {
		t.Fatalf("Put over corrupt file: %v", err)
	}
	if _, found, _ := store.Get(ctx, record.VideoID); !found {
		t.Error("record not found after Put over corrupt file")
	}
}

func TestFileStorePutReplacesRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	store := NewFileStore(path, NewTestLogger())
	ctx := context.Background()

	first := testRecord("dQw4w9WgXcQ")
	if err := store.Put(ctx, first.VideoID, first); err != nil {
		t.Fatal(err)
	}

	second := testRecord("dQw4w9WgXcQ")
	second.Timestamps = []Highlight{
		{Seconds: 10, Time: "0:10", Reason: "Revised opening"},
		{Seconds: 95, Time: "1:35", Reason: "Conclusion begins"},
	}
	if err := store.Put(ctx, second.VideoID, second); err != nil {
		t.Fatal(err)
	}

	got, found, err := store.Get(ctx, second.VideoID)
	if err != nil || !found {
		t.Fatalf("Get: found=%v err=%v", found, err)
	}
	if len(got.Timestamps) != 2 {
		t.Errorf("got %d timestamps after replace, want 2", len(got.Timestamps))
	}
}

func TestFileStoreConcurrentPutsKeepAllRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	store := NewFileStore(path, NewTestLogger())
	ctx := context.Background()

	ids := []string{"aaaaaaaaaaa", "bbbbbbbbbbb", "ccccccccccc", "ddddddddddd"}
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := store.Put(ctx, id, testRecord(id)); err != nil {
				t.Errorf("Put(%s): %v", id, err)
			}
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		if _, found, _ := store.Get(ctx, id); !found {
			t.Errorf("record %s lost during concurrent writes", id)
		}
	}
}

func TestFileStoreCancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	store := NewFileStore(path, NewTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := store.Get(ctx, "dQw4w9WgXcQ"); err == nil {
		t.Error("Get with cancelled context succeeded, want error")
	}
	if err := store.Put(ctx, "dQw4w9WgXcQ", testRecord("dQw4w9WgXcQ")); err == nil {
		t.Error("Put with cancelled context succeeded, want error")
	}
}
