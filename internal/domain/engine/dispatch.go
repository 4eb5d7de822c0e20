package engine

import (
	"context"
	"fmt"

	"github.com/okian/replaystats/internal/domain/model"
	"github.com/okian/replaystats/internal/domain/timeline"
	"github.com/okian/replaystats/pkg/metrics"
)

// Regular throwing star hits deal this much damage; anything else is a drop shot.
const throwingStarRegularDamage = 5

// Dispatch normalizes one gameplay event into counters and timeline records.
func (e *Engine) Dispatch(ctx context.Context, w model.World, ev model.Event) error {
	if err := e.recording(); err != nil {
		return err
	}
	if ev.Payload == nil {
		return fmt.Errorf("%w: nil payload at stamp %d", ErrUnknownEvent, ev.Stamp)
	}
	metrics.RecordEventDispatched(ev.Payload.Kind())

	switch p := ev.Payload.(type) {
	case model.Elimination:
		e.onElimination(ctx, w, ev, p)
	case model.Damage:
		e.onDamage(w, ev, p)
	case model.Dash:
		e.onDash(w, ev, p)
	case model.Equip:
		e.onEquip(w, ev)
	case model.GunFire:
		// The shooter is the owner of the astronaut carrying the weapon, i.e. its instigator.
		rec := e.playerRecord(w, ev, "fire")
		rec.Set("damager", p.Projectile.String())
		setShot(rec, p.Shot)
		e.live.Append(rec)
	case model.NightshadeFire:
		rec := e.playerRecord(w, ev, "fire")
		rec.Set("damager", e.entityString(w, ev.Entity))
		setShot(rec, p.Shot)
		e.live.Append(rec)
	case model.ShotgunFire:
		e.onShotgun(w, ev, p)
	case model.ReleaseStar:
		e.onReleaseStar(w, ev)
	case model.ExplosiveFire:
		rec := e.playerRecord(w, ev, "fire")
		rec.Set("damager", p.Rocket.String())
		setShot(rec, p.Shot)
		e.live.Append(rec)
	case model.Explode:
		if !ev.HasEntity {
			return nil
		}
		rec := timeline.NewRecord("explode", ev.Stamp)
		if player, ok := w.InstigatorOf(ev.Entity); ok {
			rec.Set("player", player)
		}
		rec.Set("loc", timeline.Vec(w.Location(ev.Entity), 0))
		e.live.Append(rec)
	case model.KingChange:
		rec := timeline.NewRecord("kingchange", ev.Stamp)
		if p.HasPrev {
			rec.Set("oldking", p.Prev)
		}
		rec.Set("newking", p.New)
		e.live.Append(rec)
	case model.SpawnPlayer:
		e.totalSpawns++
		e.live.Append(timeline.NewRecord("spawn", ev.Stamp).Set("player", p.Player))
	case model.SetTeam:
		e.live.Append(timeline.NewRecord("set_team", ev.Stamp).
			Set("player", p.Player).
			Set("team", p.Team))
	case model.Simple:
		e.onSimple(w, ev, p)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownEvent, p)
	}
	return nil
}

func (e *Engine) onElimination(ctx context.Context, w model.World, ev model.Event, p model.Elimination) {
	e.totalEliminations++

	var deathLoc model.Vector
	if ev.HasEntity {
		deathLoc = w.Location(ev.Entity)
	}

	rec := timeline.NewRecord("elim", ev.Stamp).Set("target", p.Target)
	e.attribute(w, rec, p.Cause)
	e.live.Append(rec)

	// Everything the victim carried shares the death; the equipped item
	// also takes a direct one.
	if ev.HasEntity {
		equipped, hasEquipped := w.EquippedNode(ev.Entity)
		for _, c := range w.Components(ev.Entity) {
			st, ok := e.items[c.Class]
			if !ok {
				continue
			}
			if hasEquipped && equipped == c.Node {
				st.deaths++
			}
			st.invDeaths++
		}
	}

	if name, ok := e.resolver.Resolve(p.Target); ok {
		e.player(name).deaths++
	}
	if killer, ok := p.Cause.PrimaryPlayer(); ok {
		if name, ok := e.resolver.Resolve(killer); ok {
			e.player(name).kills++
		}
	}

	for _, c := range p.Cause.Components() {
		st, ok := e.items[c.Class]
		if !ok {
			continue
		}
		st.kills++

		dist := w.Location(c.Entity).Dist(deathLoc)
		if c.Class == model.Sword && c.Stage == model.StageStab {
			if start, ok := e.stabStart[c.Node]; ok {
				dist = start.Dist(deathLoc)
				e.swordStabDistance.Add(dist)
			} else {
				e.fault(ctx, FaultMissingStabStart, ev.Stamp, fmt.Sprintf("no stab start for node %d", c.Node))
			}
		}

		st.killDistance.Add(dist)
		if c.Class.IsRanged() {
			e.rangedKillDistance.Add(dist)
		}

		for _, held := range w.Components(c.Entity) {
			if hs, ok := e.items[held.Class]; ok {
				hs.invKills++
			}
		}

		switch c.Class {
		case model.Ripper:
			if c.HasAmmo {
				e.ripperAmmo = append(e.ripperAmmo, c.Ammo)
			}
		case model.ThrowingStar:
			if star, ok := p.Cause.PrimaryEntity(); ok {
				if dmg, ok := w.ProjectileDamage(star.ID); ok {
					if dmg == throwingStarRegularDamage {
						e.shurikenRegular++
					} else {
						e.shurikenDrop++
					}
				}
			}
		}
	}
}

func (e *Engine) onDamage(w model.World, ev model.Event, p model.Damage) {
	if !ev.HasEntity {
		return
	}
	target, ok := w.EntityOwner(ev.Entity)
	if !ok {
		return
	}
	rec := timeline.NewRecord("damage", ev.Stamp).
		Set("target", target).
		Set("damage", p.Damage).
		Set("prev_health", w.Health(ev.Entity))
	e.attribute(w, rec, p.Cause)
	e.live.Append(rec)
}

func (e *Engine) onDash(w model.World, ev model.Event, p model.Dash) {
	comp, ok := w.Component(ev.Node)
	if !ok {
		return
	}
	player, ok := w.EntityOwner(comp.Entity)
	if !ok {
		return
	}
	name, ok := e.resolver.Resolve(player)
	if !ok {
		return
	}
	ps := e.player(name)
	ps.dashes++
	if p.Axis != model.AxisX {
		ps.dirDashes++
	}
	e.live.Append(timeline.NewRecord("dash", ev.Stamp).
		Set("player", player).
		Set("dir", p.Axis.String()))
}

func (e *Engine) onEquip(w model.World, ev model.Event) {
	if !ev.HasEntity {
		return
	}
	player, ok := w.EntityOwner(ev.Entity)
	if !ok {
		return
	}
	comp, ok := w.Component(ev.Node)
	if !ok {
		return
	}
	e.live.Append(timeline.NewRecord("equip", ev.Stamp).
		Set("player", player).
		Set("item", comp.Class.DisplayName()))
}

func (e *Engine) onShotgun(w model.World, ev model.Event, p model.ShotgunFire) {
	rec := e.playerRecord(w, ev, "fire")
	rec.Set("damager", e.entityString(w, ev.Entity))
	if n := len(p.Pellets); n > 0 {
		var origin, dir model.Vector
		for _, s := range p.Pellets {
			origin = origin.Add(s.Origin)
			dir = dir.Add(s.Direction)
		}
		inv := 1 / float64(n)
		setShot(rec, model.Shot{Origin: origin.Scale(inv), Direction: dir.Scale(inv)})
	}
	e.live.Append(rec)
}

func (e *Engine) onReleaseStar(w model.World, ev model.Event) {
	player, hasPlayer := e.eventPlayer(w, ev)
	rec := timeline.NewRecord("fire", ev.Stamp)
	if hasPlayer {
		rec.Set("player", player)
	}
	rec.Set("damager", e.entityString(w, ev.Entity))
	if ev.HasEntity {
		rec.Set("origin", timeline.Vec(w.Location(ev.Entity), 0))
	}
	if hasPlayer {
		rec.Set("dir", timeline.Dir(w.InputRotation(player).Vector()))
	}
	e.live.Append(rec)
}

func (e *Engine) onSimple(w model.World, ev model.Event, p model.Simple) {
	e.live.Append(e.playerRecord(w, ev, p.Kind()))

	switch p.Name {
	case model.ActionStab:
		if comp, ok := w.Component(ev.Node); ok {
			e.stabStart[ev.Node] = w.Location(comp.Entity)
		}
	case model.ActionKick:
		if player, ok := e.eventPlayer(w, ev); ok {
			if name, ok := e.resolver.Resolve(player); ok {
				e.player(name).kicks++
			}
		}
	}
}

// eventPlayer finds the participant behind an event: the owner of the
// raising component's astronaut, else the owner or instigator of the entity.
func (e *Engine) eventPlayer(w model.World, ev model.Event) (model.PlayerID, bool) {
	if comp, ok := w.Component(ev.Node); ok {
		if p, ok := w.EntityOwner(comp.Entity); ok {
			return p, true
		}
	}
	if ev.HasEntity {
		if p, ok := w.EntityOwner(ev.Entity); ok {
			return p, true
		}
		return w.InstigatorOf(ev.Entity)
	}
	return 0, false
}

// playerRecord starts a record with the event's participant when known.
func (e *Engine) playerRecord(w model.World, ev model.Event, name string) *timeline.Record {
	rec := timeline.NewRecord(name, ev.Stamp)
	if p, ok := e.eventPlayer(w, ev); ok {
		rec.Set("player", p)
	}
	return rec
}

// attribute adds instigator, causer, node and item fields from a cause chain.
func (e *Engine) attribute(w model.World, rec *timeline.Record, chain model.CauseChain) {
	if p, ok := chain.PrimaryPlayer(); ok {
		rec.Set("instigator", p)
	}
	if ent, ok := chain.PrimaryEntity(); ok {
		if ent.Label == "" {
			ent.Label = w.EntityName(ent.ID)
		}
		rec.Set("causer", ent.String())
	}
	if n, ok := chain.PrimaryNode(); ok {
		rec.Set("node", n.String())
	}
	if c, ok := chain.FirstTracked(); ok {
		rec.Set("item", c.Class.DisplayName())
	}
}

func (e *Engine) entityString(w model.World, id model.EntityID) string {
	return model.EntityRef{ID: id, Label: w.EntityName(id)}.String()
}

func setShot(rec *timeline.Record, s model.Shot) {
	rec.Set("origin", timeline.Vec(s.Origin, 0))
	rec.Set("dir", timeline.Dir(s.Direction))
}
