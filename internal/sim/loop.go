package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"volley/server/effects/contract"
	"volley/server/logging"
)

// LoopConfig tunes the command buffer and tick loop orchestration.
type LoopConfig struct {
	TickRate        int
	CatchupMaxTicks int
	CommandCapacity int
	PerActorLimit   int
}

// LoopStepResult summarises one completed tick for the AfterStep hook.
type LoopStepResult struct {
	Tick      uint64
	Now       time.Time
	Delta     float64
	Snapshot  Snapshot
	EndEvents []contract.EntityEndEvent
	Duration  time.Duration
}

// LoopHooks let the transport layer observe the loop without the core
// depending on it.
type LoopHooks struct {
	AfterStep     func(LoopStepResult)
	OnCommandDrop func(reason string, cmd Command)
}

const (
	// CommandRejectQueueLimit indicates a command was dropped due to
	// per-actor throttling.
	CommandRejectQueueLimit = "queue_limit"
	// CommandRejectQueueFull indicates the global command buffer is
	// saturated.
	CommandRejectQueueFull = "queue_full"
)

// Loop coordinates command ingestion and the fixed-timestep runner around a
// World. Producers enqueue from any goroutine; the world is only touched on
// the loop goroutine.
type Loop struct {
	world     *World
	templates contract.Registry
	buffer    *CommandBuffer
	hooks     LoopHooks
	config    LoopConfig
	publisher logging.Publisher
	clock     logging.Clock

	queueMu       sync.Mutex
	perActorCount map[string]int
}

// NewLoop wraps the world with a ring-buffer queue and fixed-rate runner.
func NewLoop(world *World, templates contract.Registry, cfg LoopConfig, hooks LoopHooks) *Loop {
	if world == nil {
		return nil
	}
	if cfg.CommandCapacity <= 0 {
		cfg.CommandCapacity = 256
	}
	return &Loop{
		world:         world,
		templates:     templates,
		buffer:        NewCommandBuffer(cfg.CommandCapacity),
		hooks:         hooks,
		config:        cfg,
		publisher:     world.publisher,
		clock:         world.clock,
		perActorCount: make(map[string]int),
	}
}

// SetAfterStep installs the per-tick hook. The transport layer is built
// around the loop, so the hook lands after construction. Call before Run.
func (l *Loop) SetAfterStep(fn func(LoopStepResult)) {
	l.hooks.AfterStep = fn
}

// Enqueue stages a command, enforcing per-actor throttling and capacity
// limits.
func (l *Loop) Enqueue(cmd Command) (bool, string) {
	reason := ""
	l.queueMu.Lock()
	if l.config.PerActorLimit > 0 && cmd.ActorID != "" {
		if l.perActorCount[cmd.ActorID] >= l.config.PerActorLimit {
			reason = CommandRejectQueueLimit
		} else {
			l.perActorCount[cmd.ActorID]++
		}
	}
	if reason == "" && !l.buffer.Push(cmd) {
		reason = CommandRejectQueueFull
	}
	l.queueMu.Unlock()
	if reason != "" {
		if l.hooks.OnCommandDrop != nil {
			l.hooks.OnCommandDrop(reason, cmd)
		}
		return false, reason
	}
	return true, ""
}

// Pending reports the number of staged commands.
func (l *Loop) Pending() int {
	return l.buffer.Len()
}

// Apply executes staged commands against the world. Spawn commands resolve
// their wire type through the template registry first; a failure rejects
// that command alone.
func (l *Loop) Apply(commands []Command) {
	for _, cmd := range commands {
		switch cmd.Type {
		case CommandSpawn:
			if cmd.Spawn == nil {
				continue
			}
			id, err := l.applySpawn(cmd)
			if cmd.Spawn.Notify != nil {
				cmd.Spawn.Notify(id, err)
			}
		case CommandRemove:
			if cmd.Remove == nil {
				continue
			}
			if id, ok := ParseEntityID(cmd.Remove.ID); ok {
				l.world.Remove(id)
			}
		}
	}
}

func (l *Loop) applySpawn(cmd Command) (EntityID, error) {
	cfg := cmd.Spawn.Config
	if l.templates != nil && cmd.Spawn.Type != "" {
		resolved, err := l.templates.Resolve(cmd.Spawn.Type, cfg)
		if err != nil {
			return EntityID{}, fmt.Errorf("spawn command: %w", err)
		}
		cfg = resolved
	}
	return l.world.SpawnFromConfig(cmd.Spawn.Type, cmd.ActorID, cfg, nil)
}

// Advance executes a single simulation step using the staged commands.
func (l *Loop) Advance(now time.Time, dt float64) LoopStepResult {
	commands := l.drainCommands()
	l.Apply(commands)
	l.world.Step(now, dt)
	return LoopStepResult{
		Tick:      l.world.Tick(),
		Now:       now,
		Delta:     dt,
		Snapshot:  l.world.Snapshot(),
		EndEvents: l.world.DrainEndEvents(),
	}
}

// Run drives the fixed-timestep loop until the context is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	tickRate := l.config.TickRate
	if tickRate <= 0 {
		tickRate = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	last := l.clock.Now()
	budget := 1.0 / float64(tickRate)
	maxDt := budget
	if l.config.CatchupMaxTicks > 1 {
		maxDt = budget * float64(l.config.CatchupMaxTicks)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := l.clock.Now()
			dt := now.Sub(last).Seconds()
			if dt <= 0 {
				dt = budget
			} else if dt > maxDt {
				dt = maxDt
			}
			last = now

			start := l.clock.Now()
			result := l.Advance(now, dt)
			result.Duration = l.clock.Now().Sub(start)

			if l.hooks.AfterStep != nil {
				l.hooks.AfterStep(result)
			}
		}
	}
}

func (l *Loop) drainCommands() []Command {
	l.queueMu.Lock()
	defer l.queueMu.Unlock()
	commands := l.buffer.Drain()
	if len(l.perActorCount) > 0 {
		l.perActorCount = make(map[string]int)
	}
	return commands
}
