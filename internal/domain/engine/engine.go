// Package engine aggregates a replayed match into summary statistics, a
// sorted event timeline, a position density volume and CSV time series.
//
// An Engine is single-threaded. The driver calls Init once, then Dispatch
// and Tick in non-decreasing stamp order, then Finalize once.
package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/okian/replaystats/internal/domain/aggregate"
	"github.com/okian/replaystats/internal/domain/dedupe"
	"github.com/okian/replaystats/internal/domain/identity"
	"github.com/okian/replaystats/internal/domain/model"
	"github.com/okian/replaystats/internal/domain/timeline"
	"github.com/okian/replaystats/internal/domain/volume"
	"github.com/okian/replaystats/pkg/logger"
	"github.com/okian/replaystats/pkg/metrics"
)

type state uint8

const (
	stateNew state = iota
	stateRecording
	stateFinalized
)

// Setup carries everything known before the first tick.
type Setup struct {
	Header model.Header
	// StartStamp is the stamp of the first simulated tick. Joins at or
	// before it are applied during Init.
	StartStamp     model.Stamp
	Joins          []model.Join
	Leaves         []model.Leave
	Chat           []model.ChatMessage
	DeviceProfiles []model.DeviceProfile
	Performance    []model.PerformanceSnapshot
	// Loadouts are the roster's loadouts at StartStamp.
	Loadouts []model.Loadout
}

// Fault is a recoverable integrity problem observed while aggregating.
type Fault struct {
	Kind   FaultKind
	Stamp  model.Stamp
	Detail string
}

func (f Fault) String() string {
	return fmt.Sprintf("%s at %d: %s", f.Kind, f.Stamp, f.Detail)
}

// Engine aggregates one match.
type Engine struct {
	log            logger.Logger
	tickRate       float64
	sampleInterval float64
	catalog        *volume.Catalog
	percentiles    bool

	state       state
	header      model.Header
	startStamp  model.Stamp
	sampleEvery uint32

	resolver  *identity.Resolver
	lifecycle *identity.Log

	deferred []*timeline.Record
	live     timeline.Timeline

	players     map[string]*playerStats
	playerOrder []string
	items       map[model.ItemClass]*itemStats

	vol  *volume.Volume
	perf map[model.Stamp][]model.PerformanceSnapshot

	profiles    []model.DeviceProfile
	profileSeen dedupe.Deduper

	stabStart map[model.NodeID]model.Vector

	rangedKillDistance aggregate.RunningAverage
	swordStabDistance  aggregate.RunningAverage
	totalEliminations  uint64
	totalSpawns        uint64
	shurikenRegular    uint64
	shurikenDrop       uint64
	ripperAmmo         []uint8
	samples            []playerSample

	endReached  bool
	winningTeam *int
	winner      *string

	faults []Fault
}

// New creates an engine. The zero configuration runs at 60 ticks per second,
// samples positions every half second and uses the default map catalog.
func New(opts ...Option) *Engine {
	e := &Engine{
		log:            logger.Discard(),
		tickRate:       defaultTickRate,
		sampleInterval: defaultSampleInterval,
		catalog:        volume.DefaultCatalog(),
		resolver:       identity.NewResolver(),
		players:        make(map[string]*playerStats),
		items:          make(map[model.ItemClass]*itemStats),
		perf:           make(map[model.Stamp][]model.PerformanceSnapshot),
		stabStart:      make(map[model.NodeID]model.Vector),
		profileSeen:    dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0)),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.sampleEvery = uint32(math.Round(e.sampleInterval * e.tickRate))
	if e.sampleEvery == 0 {
		e.sampleEvery = 1
	}
	return e
}

// Init prepares the engine from the capture preamble.
func (e *Engine) Init(ctx context.Context, s Setup) error {
	switch e.state {
	case stateRecording:
		return ErrAlreadyInitialized
	case stateFinalized:
		return ErrFinalized
	}

	e.header = s.Header
	e.startStamp = s.StartStamp
	e.lifecycle = identity.NewLog(s.Joins, s.Leaves)

	for _, j := range s.Joins {
		e.player(j.Username)
		rec := timeline.NewRecord("join", j.Stamp).
			Set("username", j.Username).
			Set("id", j.Player)
		if j.NetID != "" {
			rec.Set("net_id", j.NetID)
		}
		e.deferred = append(e.deferred, rec)
	}
	for _, l := range s.Leaves {
		e.deferred = append(e.deferred, timeline.NewRecord("leave", l.Stamp).Set("id", l.Player))
	}
	for _, m := range s.Chat {
		e.deferred = append(e.deferred, timeline.NewRecord("chat", m.Stamp).
			Set("sender", m.Sender).
			Set("message", m.Message))
	}

	e.resolver.Bootstrap(e.lifecycle.JoinsThrough(s.StartStamp))

	for _, c := range model.TrackedItems() {
		e.items[c] = &itemStats{killDistance: aggregate.NewDistribution()}
	}

	if b, err := e.catalog.Lookup(s.Header.Map); err != nil {
		e.fault(ctx, FaultUnknownMap, s.StartStamp, err.Error())
	} else if v, err := b.Volume(); err != nil {
		e.fault(ctx, FaultUnknownMap, s.StartStamp, err.Error())
	} else {
		e.vol = v
	}

	perf := make([]model.PerformanceSnapshot, len(s.Performance))
	copy(perf, s.Performance)
	sort.SliceStable(perf, func(i, j int) bool { return perf[i].Stamp < perf[j].Stamp })
	for _, p := range perf {
		e.perf[p.Stamp] = append(e.perf[p.Stamp], p)
	}

	for _, p := range s.DeviceProfiles {
		e.AddDeviceProfile(ctx, p)
	}

	for _, l := range s.Loadouts {
		e.deferred = append(e.deferred, loadoutRecord(s.StartStamp, l))
	}

	e.state = stateRecording
	e.log.Info(ctx, "replay initialized",
		logger.String("game_id", strconv.FormatUint(s.Header.GameID, 10)),
		logger.String("map", s.Header.Map),
		logger.String("mode", s.Header.Mode),
		logger.Int("joins", len(s.Joins)),
		logger.Int("active", e.resolver.Active()),
	)
	return nil
}

// AddDeviceProfile keeps the first profile reported per username.
func (e *Engine) AddDeviceProfile(ctx context.Context, p model.DeviceProfile) bool {
	if e.profileSeen.SeenAndRecord(ctx, p.Username) {
		return false
	}
	e.profiles = append(e.profiles, p)
	return true
}

// Tick samples the world once per simulated tick.
func (e *Engine) Tick(ctx context.Context, w model.World) error {
	if err := e.recording(); err != nil {
		return err
	}
	stamp := w.Stamp()
	metrics.RecordTick()

	if w.EndConditionReached() && !e.endReached {
		e.endReached = true
		if len(w.Roster()) > 0 {
			e.captureOutcome(ctx, stamp, w.Outcome())
		}
	}

	for _, l := range w.LoadoutChanges() {
		e.live.Append(loadoutRecord(stamp, l))
	}

	// Joins at or before the start stamp were bootstrapped in Init.
	if stamp > e.startStamp {
		for _, l := range e.lifecycle.LeavesAt(stamp) {
			e.resolver.Leave(stamp, l.Player)
		}
		for _, j := range e.lifecycle.JoinsAt(stamp) {
			if err := e.resolver.Join(stamp, j.Player, j.Username); err != nil {
				e.fault(ctx, FaultDuplicateJoin, stamp, err.Error())
			}
		}
	}

	for _, part := range w.Roster() {
		name, ok := e.resolver.Resolve(part.Player)
		if !ok {
			continue
		}
		ps := e.player(name)
		ps.playTicks++
		if !part.Embodied {
			continue
		}
		e.sampleParticipant(stamp, w, part, ps)
	}

	for _, p := range e.perf[stamp] {
		if !p.HasPlayer {
			continue
		}
		name, ok := e.resolver.Resolve(p.Player)
		if !ok {
			continue
		}
		ps := e.player(name)
		if len(ps.perfLines) == 0 {
			ps.perfLines = append(ps.perfLines, model.PerformanceCSVHeader)
		}
		ps.perfLines = append(ps.perfLines, p.CSVLine())
	}
	return nil
}

func (e *Engine) sampleParticipant(stamp model.Stamp, w model.World, part model.Participant, ps *playerStats) {
	health := w.Health(part.Entity)
	loc := w.Location(part.Entity)
	rot := w.Rotation(part.Entity)
	vel := w.Velocity(part.Entity)

	if e.vol != nil && e.vol.AddPoint(loc) {
		metrics.RecordDensitySample()
	}

	if uint32(stamp)%e.sampleEvery == 0 {
		e.samples = append(e.samples, playerSample{
			stamp: stamp, player: part.Player, health: health,
			location: loc, rotation: rot, velocity: vel,
		})
	}

	if w.SurfaceLocked(part.Entity) {
		ps.magnet++
	} else {
		ps.floatTicks++
	}

	speed := vel.Length()
	ps.speed.Add(speed)
	if !w.InputDirection(part.Player).IsZero() {
		ps.movingSpeed.Add(speed)
	}

	equipped, hasEquipped := w.EquippedNode(part.Entity)
	for _, c := range w.Components(part.Entity) {
		st, ok := e.items[c.Class]
		if !ok {
			continue
		}
		if hasEquipped && c.Node == equipped {
			st.equippedTicks++
		}
		st.usedTicks++
	}
}

func (e *Engine) captureOutcome(ctx context.Context, stamp model.Stamp, o model.Outcome) {
	switch o.Kind {
	case model.OutcomeTeam:
		team := o.Team
		e.winningTeam = &team
	case model.OutcomePlayer:
		name := "None"
		if o.HasWinner {
			if n, ok := e.resolver.Resolve(o.Winner); ok {
				name = n
			} else {
				e.fault(ctx, FaultUnresolvedWinner, stamp, fmt.Sprintf("winner handle %d is not active", o.Winner))
			}
		}
		e.winner = &name
	}
}

// Faults returns every integrity fault reported so far.
func (e *Engine) Faults() []Fault {
	out := make([]Fault, len(e.faults))
	copy(out, e.faults)
	return out
}

// EndConditionReached reports whether a tick observed the end of the match.
func (e *Engine) EndConditionReached() bool { return e.endReached }

func (e *Engine) fault(ctx context.Context, kind FaultKind, stamp model.Stamp, detail string) {
	e.faults = append(e.faults, Fault{Kind: kind, Stamp: stamp, Detail: detail})
	metrics.RecordFault(string(kind))
	e.log.Warn(ctx, "integrity fault",
		logger.String("fault", string(kind)),
		logger.Uint64("stamp", uint64(stamp)),
		logger.String("detail", detail),
	)
}

func (e *Engine) recording() error {
	switch e.state {
	case stateNew:
		return ErrNotInitialized
	case stateFinalized:
		return ErrFinalized
	}
	return nil
}

// player returns the stats for name, creating them on first use.
func (e *Engine) player(name string) *playerStats {
	ps, ok := e.players[name]
	if !ok {
		ps = &playerStats{}
		e.players[name] = ps
		e.playerOrder = append(e.playerOrder, name)
	}
	return ps
}

func loadoutRecord(stamp model.Stamp, l model.Loadout) *timeline.Record {
	items := make([]string, len(l.Items))
	for i, c := range l.Items {
		items[i] = c.DisplayName()
	}
	return timeline.NewRecord("set_loadout", stamp).
		Set("player", l.Player).
		Set("items", items)
}
