// Package replay decodes JSON Lines match captures into engine inputs.
//
// A capture starts with a header record, followed by preamble records
// (joins, leaves, chat, device profiles, performance samples and initial
// loadouts) and then tick records in non-decreasing stamp order.
package replay

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/okian/replaystats/internal/domain/engine"
	"github.com/okian/replaystats/internal/domain/model"
)

const maxLineBytes = 16 << 20

// Decoder reads a capture. It is not safe for concurrent use.
type Decoder struct {
	sc    *bufio.Scanner
	line  int
	setup engine.Setup

	pending   []byte
	lastStamp model.Stamp
	ticks     int
	profiles  []model.DeviceProfile
}

// NewDecoder reads the header and preamble from r. The returned decoder is
// positioned at the first tick.
func NewDecoder(r io.Reader) (*Decoder, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	d := &Decoder{sc: sc}

	first, err := d.nextLine()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(first, &env); err != nil || env.Type != TypeHeader {
		return nil, fmt.Errorf("%w: line %d", ErrMissingHeader, d.line)
	}
	var h HeaderRecord
	if err := json.Unmarshal(first, &h); err != nil {
		return nil, d.malformed(err)
	}
	d.setup.Header = model.Header{
		GameID:     h.GameID,
		StartUnix:  h.StartUnix,
		Map:        h.Map,
		Mode:       h.Mode,
		FirstStamp: h.FirstStamp,
		LastStamp:  h.LastStamp,
	}
	d.setup.StartStamp = h.FirstStamp
	if h.StartStamp != nil {
		d.setup.StartStamp = *h.StartStamp
	}

	if err := d.readPreamble(); err != nil {
		return nil, err
	}
	return d, nil
}

// Setup returns the preamble as engine input.
func (d *Decoder) Setup() engine.Setup { return d.setup }

// Ticks returns the number of ticks decoded so far.
func (d *Decoder) Ticks() int { return d.ticks }

// Profiles returns device profiles read after the last tick and forgets them.
// Profiles followed by a tick are delivered with that tick's frame instead.
func (d *Decoder) Profiles() []model.DeviceProfile {
	p := d.profiles
	d.profiles = nil
	return p
}

func (d *Decoder) readPreamble() error {
	for {
		line, err := d.nextLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		var env envelope
		if err := json.Unmarshal(line, &env); err != nil {
			return d.malformed(err)
		}
		if env.Type == TypeTick {
			d.pending = line
			return nil
		}
		if err := d.preamble(env.Type, line); err != nil {
			return err
		}
	}
}

func (d *Decoder) preamble(typ string, line []byte) error {
	switch typ {
	case TypeJoin:
		var r JoinRecord
		if err := json.Unmarshal(line, &r); err != nil {
			return d.malformed(err)
		}
		d.setup.Joins = append(d.setup.Joins, model.Join{Stamp: r.Stamp, Player: r.Player, Username: r.Username, NetID: r.NetID})
	case TypeLeave:
		var r LeaveRecord
		if err := json.Unmarshal(line, &r); err != nil {
			return d.malformed(err)
		}
		d.setup.Leaves = append(d.setup.Leaves, model.Leave{Stamp: r.Stamp, Player: r.Player})
	case TypeChat:
		var r ChatRecord
		if err := json.Unmarshal(line, &r); err != nil {
			return d.malformed(err)
		}
		d.setup.Chat = append(d.setup.Chat, model.ChatMessage{Stamp: r.Stamp, Sender: r.Sender, Message: r.Message})
	case TypeDeviceProfile:
		var r DeviceProfileRecord
		if err := json.Unmarshal(line, &r); err != nil {
			return d.malformed(err)
		}
		d.setup.DeviceProfiles = append(d.setup.DeviceProfiles, r.Profile)
	case TypePerformance:
		var r PerformanceRecord
		if err := json.Unmarshal(line, &r); err != nil {
			return d.malformed(err)
		}
		d.setup.Performance = append(d.setup.Performance, r.snapshot())
	case TypeLoadout:
		var r LoadoutRecord
		if err := json.Unmarshal(line, &r); err != nil {
			return d.malformed(err)
		}
		d.setup.Loadouts = append(d.setup.Loadouts, r.loadout())
	default:
		return fmt.Errorf("%w: line %d: unexpected %q record", ErrMalformed, d.line, typ)
	}
	return nil
}

// Next decodes the next tick. It returns io.EOF after the last one.
func (d *Decoder) Next(ctx context.Context) (*Frame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := d.pending
		d.pending = nil
		if line == nil {
			var err error
			if line, err = d.nextLine(); err != nil {
				return nil, err
			}
		}

		var env envelope
		if err := json.Unmarshal(line, &env); err != nil {
			return nil, d.malformed(err)
		}
		switch env.Type {
		case TypeTick:
			var t TickRecord
			if err := json.Unmarshal(line, &t); err != nil {
				return nil, d.malformed(err)
			}
			if d.ticks > 0 && t.Stamp < d.lastStamp {
				return nil, fmt.Errorf("%w: line %d: stamp %d after %d", ErrOutOfOrder, d.line, t.Stamp, d.lastStamp)
			}
			f, err := d.frame(&t)
			if err != nil {
				return nil, err
			}
			d.lastStamp = t.Stamp
			d.ticks++
			return f, nil
		case TypeDeviceProfile:
			var r DeviceProfileRecord
			if err := json.Unmarshal(line, &r); err != nil {
				return nil, d.malformed(err)
			}
			d.profiles = append(d.profiles, r.Profile)
		default:
			return nil, fmt.Errorf("%w: line %d: %q record after the first tick", ErrMalformed, d.line, env.Type)
		}
	}
}

func (d *Decoder) frame(t *TickRecord) (*Frame, error) {
	f := &Frame{
		stamp:      t.Stamp,
		roster:     make([]model.Participant, 0, len(t.Players)),
		entities:   make(map[model.EntityID]*EntityRecord, len(t.Entities)),
		components: make(map[model.NodeID]model.Component, len(t.Components)),
		held:       make(map[model.EntityID][]model.Component),
		inputs:     make(map[model.PlayerID]InputRecord, len(t.Inputs)),
		end:        t.End,
		Profiles:   d.profiles,
	}
	d.profiles = nil

	for _, p := range t.Players {
		f.roster = append(f.roster, model.Participant{Player: p.ID, Entity: p.Entity, Embodied: p.Embodied})
	}
	for i := range t.Entities {
		f.entities[t.Entities[i].ID] = &t.Entities[i]
	}
	for _, c := range t.Components {
		comp := model.Component{Node: c.Node, Entity: c.Entity, Class: model.ItemClass(c.Class), Stage: c.Stage}
		if c.Ammo != nil {
			comp.Ammo, comp.HasAmmo = *c.Ammo, true
		}
		f.components[c.Node] = comp
		f.held[c.Entity] = append(f.held[c.Entity], comp)
	}
	for _, in := range t.Inputs {
		f.inputs[in.Player] = in
	}
	for _, l := range t.Loadouts {
		f.loadouts = append(f.loadouts, l.loadout())
	}
	if t.Outcome != nil {
		o, err := d.outcome(t.Outcome)
		if err != nil {
			return nil, err
		}
		f.outcome = o
	}

	f.Events = make([]model.Event, 0, len(t.Events))
	for i := range t.Events {
		ev, err := d.event(f, t.Stamp, &t.Events[i])
		if err != nil {
			return nil, err
		}
		f.Events = append(f.Events, ev)
	}
	return f, nil
}

func (d *Decoder) outcome(o *OutcomeRecord) (model.Outcome, error) {
	switch o.Kind {
	case OutcomeTeam:
		return model.Outcome{Kind: model.OutcomeTeam, Team: o.Team}, nil
	case OutcomePlayer:
		out := model.Outcome{Kind: model.OutcomePlayer}
		if o.Winner != nil {
			out.Winner, out.HasWinner = *o.Winner, true
		}
		return out, nil
	case "":
		return model.Outcome{}, nil
	}
	return model.Outcome{}, fmt.Errorf("%w: line %d: unknown outcome %q", ErrMalformed, d.line, o.Kind)
}

func (d *Decoder) event(f *Frame, stamp model.Stamp, r *EventRecord) (model.Event, error) {
	ev := model.Event{Stamp: stamp, Node: r.Node}
	if r.Entity != nil {
		ev.Entity, ev.HasEntity = *r.Entity, true
	}

	switch r.Kind {
	case KindElim:
		ev.Payload = model.Elimination{Target: r.Target, Cause: d.chain(f, r.Cause)}
	case KindDamage:
		ev.Payload = model.Damage{Damage: r.Damage, Cause: d.chain(f, r.Cause)}
	case KindDash:
		ev.Payload = model.Dash{Axis: model.ParseAxis(r.Axis)}
	case KindEquip:
		ev.Payload = model.Equip{}
	case KindGunFire:
		p := model.GunFire{Shot: r.Shot.shot()}
		if r.Projectile != nil && r.Projectile.Entity != nil {
			p.Projectile = model.EntityRef{ID: *r.Projectile.Entity, Label: r.Projectile.Label}
		}
		ev.Payload = p
	case KindNightshadeFire:
		ev.Payload = model.NightshadeFire{Shot: r.Shot.shot()}
	case KindShotgunFire:
		pellets := make([]model.Shot, len(r.Pellets))
		for i := range r.Pellets {
			pellets[i] = r.Pellets[i].shot()
		}
		ev.Payload = model.ShotgunFire{Pellets: pellets}
	case KindReleaseStar:
		ev.Payload = model.ReleaseStar{}
	case KindExplosiveFire:
		p := model.ExplosiveFire{Shot: r.Shot.shot()}
		if r.Projectile != nil && r.Projectile.Entity != nil {
			p.Rocket = model.EntityRef{ID: *r.Projectile.Entity, Label: r.Projectile.Label}
		}
		ev.Payload = p
	case KindExplode:
		ev.Payload = model.Explode{}
	case KindKingChange:
		p := model.KingChange{New: r.New}
		if r.Prev != nil {
			p.Prev, p.HasPrev = *r.Prev, true
		}
		ev.Payload = p
	case KindSpawn:
		ev.Payload = model.SpawnPlayer{Player: r.Player}
	case KindSetTeam:
		ev.Payload = model.SetTeam{Player: r.Player, Team: r.Team}
	case KindSimple:
		if !model.IsSimpleEvent(r.Name) {
			return ev, fmt.Errorf("%w: line %d: unknown action %q", ErrMalformed, d.line, r.Name)
		}
		ev.Payload = model.Simple{Name: r.Name}
	default:
		return ev, fmt.Errorf("%w: line %d: unknown event kind %q", ErrMalformed, d.line, r.Kind)
	}
	return ev, nil
}

// chain resolves cause links. Nodes missing from the tick's component table
// keep only their id.
func (d *Decoder) chain(f *Frame, links []CauseRecord) model.CauseChain {
	out := make(model.CauseChain, 0, len(links))
	for _, l := range links {
		switch {
		case l.Player != nil:
			out = append(out, model.PlayerRef{ID: *l.Player})
		case l.Entity != nil:
			out = append(out, model.EntityRef{ID: *l.Entity, Label: l.Label})
		case l.Node != nil:
			c, ok := f.components[*l.Node]
			if !ok {
				c = model.Component{Node: *l.Node}
			}
			out = append(out, model.ComponentRef{Component: c})
		}
	}
	return out
}

func (d *Decoder) nextLine() ([]byte, error) {
	for d.sc.Scan() {
		d.line++
		line := bytes.TrimSpace(d.sc.Bytes())
		if len(line) == 0 {
			continue
		}
		out := make([]byte, len(line))
		copy(out, line)
		return out, nil
	}
	if err := d.sc.Err(); err != nil {
		return nil, fmt.Errorf("read capture: %w", err)
	}
	return nil, io.EOF
}

func (d *Decoder) malformed(err error) error {
	return fmt.Errorf("%w: line %d: %v", ErrMalformed, d.line, err)
}

func (s *ShotRecord) shot() model.Shot {
	if s == nil {
		return model.Shot{}
	}
	return model.Shot{Origin: s.Origin.Vector(), Direction: s.Direction.Vector()}
}

func (r PerformanceRecord) snapshot() model.PerformanceSnapshot {
	s := model.PerformanceSnapshot{
		Stamp:         r.Stamp,
		FrameAvg:      r.FrameAvg,
		FrameMax:      r.FrameMax,
		GameThread:    r.GameThread,
		RenderThread:  r.RenderThread,
		GPU:           r.GPU,
		NetTick:       r.NetTick,
		PacketLatency: r.PacketLatency,
		GPUBound:      r.GPUBound,
		GTBound:       r.GTBound,
		NTTBound:      r.NTTBound,
	}
	if r.Player != nil {
		s.Player, s.HasPlayer = *r.Player, true
	}
	return s
}

func (r LoadoutRecord) loadout() model.Loadout {
	items := make([]model.ItemClass, len(r.Items))
	for i, it := range r.Items {
		items[i] = model.ItemClass(it)
	}
	return model.Loadout{Player: r.Player, Items: items}
}
