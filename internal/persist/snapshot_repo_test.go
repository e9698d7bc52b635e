package persist

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jadeengine/jade/internal/config"
	"github.com/jadeengine/jade/internal/scene"
	"go.uber.org/zap/zaptest"
)

func sampleRecords() []scene.Record {
	return []scene.Record{
		{Entity: 1, Name: "root", Rotation: [4]float32{0, 0, 0, 1}, Scale: [3]float32{1, 1, 1}},
		{Entity: 2, Parent: 1, Name: "child", Group: "actor", Position: [3]float32{1, 2, 3}, Rotation: [4]float32{0, 0, 0, 1}, Scale: [3]float32{1, 1, 1}},
	}
}

// go test -run ^TestDigest$ ./internal/persist -count 1
func TestDigest(t *testing.T) {
	a := sampleRecords()
	if d := Digest(a); len(d) != 32 {
		t.Fatalf("Expected 32-byte digest, got %d", len(d))
	}
	if !bytes.Equal(Digest(a), Digest(sampleRecords())) {
		t.Error("Digest is not stable")
	}

	t.Run("position", func(t *testing.T) {
		b := sampleRecords()
		b[1].Position[2] = 3.5
		if bytes.Equal(Digest(a), Digest(b)) {
			t.Error("Digest ignored a position change")
		}
	})
	t.Run("order", func(t *testing.T) {
		b := sampleRecords()
		b[0], b[1] = b[1], b[0]
		if bytes.Equal(Digest(a), Digest(b)) {
			t.Error("Digest ignored record order")
		}
	})
	t.Run("string boundaries", func(t *testing.T) {
		b := sampleRecords()
		b[1].Name, b[1].Group = "childa", "ctor"
		if bytes.Equal(Digest(a), Digest(b)) {
			t.Error("Digest confused name and group boundaries")
		}
	})
}

// newTestDB connects to JADE_TEST_DSN and skips when it is unset.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("JADE_TEST_DSN")
	if dsn == "" {
		t.Skip("JADE_TEST_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := NewDB(ctx, config.DatabaseConfig{DSN: dsn, MaxOpenConns: 2}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(db.Close)
	if _, err := RunMigrations(ctx, db.Pool); err != nil {
		t.Fatal(err)
	}
	return db
}

// JADE_TEST_DSN=postgres://... go test -run ^TestSnapshotRoundTrip$ ./internal/persist -count 1
func TestSnapshotRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewSnapshotRepo(db)
	ctx := context.Background()
	label := "test-" + t.Name() + "-" + time.Now().Format("150405.000000")

	if _, err := repo.Latest(ctx, label); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("Expected ErrNoSnapshot, got %v", err)
	}

	records := sampleRecords()
	id, saved, err := repo.Save(ctx, label, records)
	if err != nil || !saved {
		t.Fatalf("Save: id=%d saved=%v err=%v", id, saved, err)
	}

	again, saved, err := repo.Save(ctx, label, records)
	if err != nil {
		t.Fatal(err)
	}
	if saved || again != id {
		t.Errorf("Expected unchanged snapshot to be skipped, got id=%d saved=%v", again, saved)
	}

	meta, err := repo.Latest(ctx, label)
	if err != nil {
		t.Fatal(err)
	}
	if meta.ID != id || meta.EntityCount != 2 || !bytes.Equal(meta.Digest, Digest(records)) {
		t.Errorf("Unexpected meta %+v", meta)
	}

	loaded, err := repo.Load(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != len(records) {
		t.Fatalf("Expected %d records, got %d", len(records), len(loaded))
	}
	for i := range records {
		if loaded[i] != records[i] {
			t.Errorf("Record %d: got %+v, want %+v", i, loaded[i], records[i])
		}
	}

	records[1].Position[0] = 9
	if _, saved, err := repo.Save(ctx, label, records); err != nil || !saved {
		t.Fatalf("Expected changed snapshot to be saved, saved=%v err=%v", saved, err)
	}
	removed, err := repo.Prune(ctx, label, 1)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 pruned snapshot, got %d", removed)
	}
	if _, err := repo.Load(ctx, id); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Expected pruned snapshot to be gone, got %v", err)
	}
}
