package persist

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jadeengine/jade/internal/scene"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// ErrNoSnapshot is returned when no snapshot matches a lookup.
var ErrNoSnapshot = errors.New("persist: no snapshot")

// SnapshotMeta describes one stored snapshot.
type SnapshotMeta struct {
	ID          int64
	Label       string
	Digest      []byte
	EntityCount int
	CreatedAt   time.Time
}

type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Digest hashes records in order with BLAKE2b-256. Two snapshots with the
// same digest restore to the same scene.
func Digest(records []scene.Record) []byte {
	var buf []byte
	for _, r := range records {
		buf = binary.LittleEndian.AppendUint32(buf, r.Entity)
		buf = binary.LittleEndian.AppendUint32(buf, r.Parent)
		buf = appendString(buf, r.Name)
		buf = appendString(buf, r.Group)
		buf = appendFloats(buf, r.Position[:])
		buf = appendFloats(buf, r.Rotation[:])
		buf = appendFloats(buf, r.Scale[:])
		buf = appendFloats(buf, r.Velocity[:])
	}
	sum := blake2b.Sum256(buf)
	return sum[:]
}

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

func appendFloats(buf []byte, fs []float32) []byte {
	for _, f := range fs {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

// Save stores records under label in a single transaction. When the latest
// snapshot for label already has the same digest nothing is written and its
// id is returned with saved == false.
func (r *SnapshotRepo) Save(ctx context.Context, label string, records []scene.Record) (id int64, saved bool, err error) {
	digest := Digest(records)

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("snapshot begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		lastID     int64
		lastDigest []byte
	)
	err = tx.QueryRow(ctx,
		`SELECT id, digest FROM scene_snapshot WHERE label = $1 ORDER BY id DESC LIMIT 1`,
		label,
	).Scan(&lastID, &lastDigest)
	switch {
	case err == nil && bytes.Equal(lastDigest, digest):
		r.db.log.Debug("snapshot unchanged", zap.String("label", label), zap.Int64("id", lastID))
		return lastID, false, nil
	case err != nil && !errors.Is(err, pgx.ErrNoRows):
		return 0, false, fmt.Errorf("snapshot latest: %w", err)
	}

	if err := tx.QueryRow(ctx,
		`INSERT INTO scene_snapshot (label, digest, entity_count) VALUES ($1, $2, $3) RETURNING id`,
		label, digest, len(records),
	).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("snapshot insert: %w", err)
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"snapshot_entity"},
		[]string{"snapshot_id", "seq", "entity", "parent", "name", "grp", "position", "rotation", "scale", "velocity"},
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			rec := records[i]
			return []any{
				id, int32(i), int64(rec.Entity), int64(rec.Parent), rec.Name, rec.Group,
				rec.Position[:], rec.Rotation[:], rec.Scale[:], rec.Velocity[:],
			}, nil
		}),
	); err != nil {
		return 0, false, fmt.Errorf("snapshot entities: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, false, fmt.Errorf("snapshot commit: %w", err)
	}
	r.db.log.Info("snapshot saved", zap.String("label", label), zap.Int64("id", id), zap.Int("entities", len(records)))
	return id, true, nil
}

// Load returns the records of snapshot id in their saved order.
func (r *SnapshotRepo) Load(ctx context.Context, id int64) ([]scene.Record, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT entity, parent, name, grp, position, rotation, scale, velocity
		 FROM snapshot_entity
		 WHERE snapshot_id = $1
		 ORDER BY seq`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []scene.Record
	for rows.Next() {
		var (
			rec            scene.Record
			entity, parent int64
			pos, rot       []float32
			scale, vel     []float32
		)
		if err := rows.Scan(&entity, &parent, &rec.Name, &rec.Group, &pos, &rot, &scale, &vel); err != nil {
			return nil, err
		}
		rec.Entity = uint32(entity)
		rec.Parent = uint32(parent)
		copy(rec.Position[:], pos)
		copy(rec.Rotation[:], rot)
		copy(rec.Scale[:], scale)
		copy(rec.Velocity[:], vel)
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if result == nil {
		var exists bool
		if err := r.db.Pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM scene_snapshot WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("snapshot %d: %w", id, ErrNoSnapshot)
		}
	}
	return result, nil
}

// Latest returns the newest snapshot stored under label.
func (r *SnapshotRepo) Latest(ctx context.Context, label string) (SnapshotMeta, error) {
	var m SnapshotMeta
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, label, digest, entity_count, created_at
		 FROM scene_snapshot
		 WHERE label = $1
		 ORDER BY id DESC LIMIT 1`, label,
	).Scan(&m.ID, &m.Label, &m.Digest, &m.EntityCount, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SnapshotMeta{}, fmt.Errorf("label %q: %w", label, ErrNoSnapshot)
	}
	if err != nil {
		return SnapshotMeta{}, err
	}
	return m, nil
}

// Prune deletes all but the newest keep snapshots under label and returns
// how many were removed.
func (r *SnapshotRepo) Prune(ctx context.Context, label string, keep int) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM scene_snapshot
		 WHERE label = $1 AND id NOT IN (
		     SELECT id FROM scene_snapshot WHERE label = $1 ORDER BY id DESC LIMIT $2
		 )`, label, keep,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
