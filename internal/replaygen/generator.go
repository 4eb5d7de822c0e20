package replaygen

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/replaystats/internal/adapters/replay"
	"github.com/okian/replaystats/internal/domain/model"
)

const (
	startUnix    = 1_700_000_000
	killChance   = 0.02
	dashChance   = 0.01
	arenaHalf    = 1500.0
	maxStep      = 25.0
	entityBase   = 100
	nodeBase     = 1000
	bulletBase   = 50_000
	playerHealth = 100
)

// Match is one generated capture and the totals it should aggregate to.
type Match struct {
	Header   replay.HeaderRecord
	Joins    []replay.JoinRecord
	Profiles []replay.DeviceProfileRecord
	Loadouts []replay.LoadoutRecord
	Ticks    []replay.TickRecord
	Expected Expected
}

type sim struct {
	rng     *rand.Rand
	names   []string
	loc     []model.Vector
	kills   []uint64
	bullets model.EntityID
}

// Generate simulates a free-for-all match. The same seed always yields the
// same capture.
func Generate(seed, gameID uint64, players, ticks int, mapName string) (*Match, error) {
	if players < 2 {
		return nil, fmt.Errorf("need at least 2 players, got %d", players)
	}
	if ticks < 1 {
		return nil, fmt.Errorf("need at least 1 tick, got %d", ticks)
	}

	s := &sim{
		rng:   rand.New(rand.NewPCG(seed, gameID)),
		names: make([]string, players),
		loc:   make([]model.Vector, players),
		kills: make([]uint64, players),
	}
	m := &Match{
		Header: replay.HeaderRecord{
			GameID:     gameID,
			StartUnix:  startUnix + gameID,
			Map:        mapName,
			Mode:       "FFA",
			FirstStamp: 1,
			LastStamp:  model.Stamp(ticks),
		},
		Expected: Expected{
			GameID: strconv.FormatUint(gameID, 10),
			Kills:  make(map[string]uint64, players),
			Deaths: make(map[string]uint64, players),
		},
	}

	for i := range s.names {
		name := fmt.Sprintf("player%02d", i+1)
		s.names[i] = name
		s.loc[i] = model.Vector{X: s.coord(), Y: s.coord(), Z: 0}
		m.Expected.Kills[name] = 0
		m.Expected.Deaths[name] = 0

		m.Joins = append(m.Joins, replay.JoinRecord{
			Stamp:    0,
			Player:   handle(i),
			Username: name,
			NetID:    uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String(),
		})
		m.Profiles = append(m.Profiles, replay.DeviceProfileRecord{Profile: model.DeviceProfile{
			Username: name,
			GPU:      model.GPUInfo{Name: "Synthetic GPU"},
			Settings: model.DisplaySettings{ResX: 1920, ResY: 1080, FrameRateLimit: 144},
		}})
		m.Loadouts = append(m.Loadouts, replay.LoadoutRecord{
			Player: handle(i),
			Items:  []string{string(model.AstroRifle), string(model.Sword)},
		})
	}

	for stamp := 1; stamp <= ticks; stamp++ {
		m.Ticks = append(m.Ticks, s.tick(model.Stamp(stamp), stamp == ticks, &m.Expected))
	}
	return m, nil
}

func (s *sim) tick(stamp model.Stamp, last bool, exp *Expected) replay.TickRecord {
	n := len(s.names)
	t := replay.TickRecord{Stamp: stamp}

	for i := 0; i < n; i++ {
		step := model.Vector{X: s.step(), Y: s.step(), Z: 0}
		s.loc[i] = clamp(s.loc[i].Add(step))

		ent := entity(i)
		eq := rifle(i)
		t.Players = append(t.Players, replay.ParticipantRecord{ID: handle(i), Entity: ent, Embodied: true})
		t.Entities = append(t.Entities, replay.EntityRecord{
			ID:            ent,
			Name:          "Astronaut_" + strconv.Itoa(int(ent)),
			Owner:         ptr(handle(i)),
			Location:      replay.FromVector(s.loc[i]),
			Rotation:      replay.FromRotator(model.DirectionToRotator(step)),
			Velocity:      replay.FromVector(step.Scale(60)),
			Health:        playerHealth,
			SurfaceLocked: s.rng.IntN(4) == 0,
			Equipped:      &eq,
		})
		t.Components = append(t.Components,
			replay.ComponentRecord{Node: rifle(i), Entity: ent, Class: string(model.AstroRifle)},
			replay.ComponentRecord{Node: sword(i), Entity: ent, Class: string(model.Sword)},
		)
		t.Inputs = append(t.Inputs, replay.InputRecord{Player: handle(i), Direction: replay.FromVector(step)})

		if s.rng.Float64() < dashChance {
			axes := []string{"X", "-X", "Y", "-Y", "Z", "-Z"}
			t.Events = append(t.Events, replay.EventRecord{Kind: replay.KindDash, Node: sword(i), Axis: axes[s.rng.IntN(len(axes))]})
		}
	}

	if s.rng.Float64() < killChance {
		killer := s.rng.IntN(n)
		victim := (killer + 1 + s.rng.IntN(n-1)) % n
		s.bullets++
		bullet := bulletBase + s.bullets
		label := "Bullet_" + strconv.Itoa(int(bullet))

		dir := s.loc[victim].Sub(s.loc[killer])
		t.Events = append(t.Events,
			replay.EventRecord{
				Kind:       replay.KindGunFire,
				Node:       rifle(killer),
				Entity:     ptr(entity(killer)),
				Shot:       &replay.ShotRecord{Origin: replay.FromVector(s.loc[killer]), Direction: replay.FromVector(dir)},
				Projectile: &replay.CauseRecord{Entity: &bullet, Label: label},
			},
			replay.EventRecord{
				Kind:   replay.KindElim,
				Entity: ptr(entity(victim)),
				Target: handle(victim),
				Cause: []replay.CauseRecord{
					{Player: ptr(handle(killer))},
					{Entity: &bullet, Label: label},
					{Node: ptr(rifle(killer))},
				},
			},
			replay.EventRecord{Kind: replay.KindSpawn, Player: handle(victim)},
		)
		s.kills[killer]++
		exp.Eliminations++
		exp.Spawns++
		exp.Kills[s.names[killer]]++
		exp.Deaths[s.names[victim]]++
		s.loc[victim] = model.Vector{X: s.coord(), Y: s.coord(), Z: 0}
	}

	if last {
		t.End = true
		best := 0
		for i := range s.kills {
			if s.kills[i] > s.kills[best] {
				best = i
			}
		}
		t.Outcome = &replay.OutcomeRecord{Kind: replay.OutcomePlayer, Winner: ptr(handle(best))}
		exp.Winner = s.names[best]
	}
	return t
}

// WriteTo encodes the capture as JSON Lines.
func (m *Match) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	enc := replay.NewEncoder(cw)
	if err := enc.Header(m.Header); err != nil {
		return cw.n, err
	}
	for _, j := range m.Joins {
		if err := enc.Join(j); err != nil {
			return cw.n, err
		}
	}
	for _, p := range m.Profiles {
		if err := enc.DeviceProfile(p); err != nil {
			return cw.n, err
		}
	}
	for _, l := range m.Loadouts {
		if err := enc.Loadout(l); err != nil {
			return cw.n, err
		}
	}
	for _, t := range m.Ticks {
		if err := enc.Tick(t); err != nil {
			return cw.n, err
		}
	}
	if err := enc.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func (s *sim) coord() float64 { return (s.rng.Float64()*2 - 1) * arenaHalf }
func (s *sim) step() float64  { return (s.rng.Float64()*2 - 1) * maxStep }

func clamp(v model.Vector) model.Vector {
	v.X = math.Max(-arenaHalf, math.Min(arenaHalf, v.X))
	v.Y = math.Max(-arenaHalf, math.Min(arenaHalf, v.Y))
	return v
}

func handle(i int) model.PlayerID { return model.PlayerID(i + 1) }
func entity(i int) model.EntityID { return model.EntityID(entityBase + i) }
func rifle(i int) model.NodeID    { return model.NodeID(nodeBase + i*10) }
func sword(i int) model.NodeID    { return model.NodeID(nodeBase + i*10 + 1) }

func ptr[T any](v T) *T { return &v }
