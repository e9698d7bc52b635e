package system

import (
	"context"
	"time"

	coresys "github.com/jadeengine/jade/internal/core/system"
	"github.com/jadeengine/jade/internal/scene"
	"go.uber.org/zap"
)

// SnapshotSaver stores flattened scenes. persist.SnapshotRepo implements it.
type SnapshotSaver interface {
	Save(ctx context.Context, label string, records []scene.Record) (int64, bool, error)
	Prune(ctx context.Context, label string, keep int) (int64, error)
}

// PersistenceSystem periodically snapshots the whole scene. Unchanged
// scenes are skipped by the saver. Phase 4 (Persist).
type PersistenceSystem struct {
	scene     *scene.Scene
	saver     SnapshotSaver
	label     string
	log       *zap.Logger
	tickCount int
	interval  int // snapshot every N ticks
	keep      int // snapshots kept per label, 0 = all
	timeout   time.Duration
}

func NewPersistenceSystem(sc *scene.Scene, saver SnapshotSaver, label string, log *zap.Logger, intervalTicks, keep int) *PersistenceSystem {
	return &PersistenceSystem{
		scene:    sc,
		saver:    saver,
		label:    label,
		log:      log,
		interval: intervalTicks,
		keep:     keep,
		timeout:  5 * time.Second,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	if s.interval <= 0 {
		return
	}
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	_, _ = s.SaveNow(ctx)
}

// SaveNow snapshots the scene immediately and reports whether a new
// snapshot was written. After a new snapshot, older ones beyond the keep
// limit are pruned; a failed prune is logged and does not fail the save.
func (s *PersistenceSystem) SaveNow(ctx context.Context) (bool, error) {
	records := s.scene.Snapshot()
	id, saved, err := s.saver.Save(ctx, s.label, records)
	if err != nil {
		s.log.Error("snapshot failed", zap.String("label", s.label), zap.Error(err))
		return false, err
	}
	if !saved {
		return false, nil
	}
	s.log.Info("scene snapshot", zap.String("label", s.label), zap.Int64("id", id), zap.Int("entities", len(records)))
	if s.keep > 0 {
		removed, err := s.saver.Prune(ctx, s.label, s.keep)
		if err != nil {
			s.log.Warn("snapshot prune failed", zap.String("label", s.label), zap.Error(err))
		} else if removed > 0 {
			s.log.Debug("snapshots pruned", zap.String("label", s.label), zap.Int64("removed", removed))
		}
	}
	return true, nil
}
