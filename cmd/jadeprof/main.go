// Profiling:
// go build ./cmd/jadeprof
// ./jadeprof && go tool pprof -http=":8000" -nodefraction=0.001 ./jadeprof mem.pprof

package main

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/jadeengine/jade/internal/component"
	"github.com/jadeengine/jade/internal/core/ecs"
	"github.com/jadeengine/jade/internal/core/event"
	"github.com/jadeengine/jade/internal/scene"
	"github.com/jadeengine/jade/internal/system"
	"github.com/pkg/profile"
	"go.uber.org/zap"
)

func main() {
	rounds := 20
	iters := 200
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, entities)
	p.Stop()
}

// run churns a scene: spawn a forest of small trees, move and propagate
// them, then destroy half and repeat.
func run(rounds, iters, numEntities int) {
	log := zap.NewNop()
	for r := 0; r < rounds; r++ {
		sc, err := scene.New(event.NewBus(), log)
		if err != nil {
			panic(err)
		}
		move := system.NewMovementSystem(sc)
		xform := system.NewTransformSystem(sc, log)
		cleanup := system.NewCleanupSystem(sc.World(), log)

		live := make([]ecs.EntityID, 0, numEntities)
		for it := 0; it < iters; it++ {
			for i := len(live); i < numEntities; i++ {
				group := scene.GroupNone
				if i%3 == 0 {
					group = scene.GroupActor
				}
				e, err := sc.SpawnIn(group, "")
				if err != nil {
					panic(err)
				}
				_ = sc.Velocities().Add(e, component.Velocity{Linear: mgl32.Vec3{1, 0, 0}})
				if i%4 != 0 && len(live) > 0 {
					_ = sc.Attach(live[len(live)-1], e)
				}
				live = append(live, e)
			}

			move.Update(16 * time.Millisecond)
			xform.Update(16 * time.Millisecond)

			for i := 0; i < len(live); i += 2 {
				sc.MarkForDestruction(live[i])
			}
			cleanup.Update(0)

			kept := live[:0]
			for _, e := range live {
				if sc.Alive(e) {
					kept = append(kept, e)
				}
			}
			live = kept
		}
	}
}
