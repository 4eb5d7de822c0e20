package replay

import (
	"github.com/okian/replaystats/internal/domain/model"
)

var _ model.World = (*Frame)(nil)

// Frame is one decoded tick. It answers world queries from the tick's
// snapshot and carries the events raised during it.
type Frame struct {
	stamp      model.Stamp
	roster     []model.Participant
	entities   map[model.EntityID]*EntityRecord
	components map[model.NodeID]model.Component
	held       map[model.EntityID][]model.Component
	inputs     map[model.PlayerID]InputRecord
	loadouts   []model.Loadout
	end        bool
	outcome    model.Outcome

	// Events are the tick's events in capture order.
	Events []model.Event
	// Profiles are device profiles reported since the previous tick.
	Profiles []model.DeviceProfile
}

func (f *Frame) Stamp() model.Stamp              { return f.stamp }
func (f *Frame) Roster() []model.Participant     { return f.roster }
func (f *Frame) EndConditionReached() bool       { return f.end }
func (f *Frame) Outcome() model.Outcome          { return f.outcome }
func (f *Frame) LoadoutChanges() []model.Loadout { return f.loadouts }

func (f *Frame) Location(e model.EntityID) model.Vector {
	if ent, ok := f.entities[e]; ok {
		return ent.Location.Vector()
	}
	return model.Vector{}
}

func (f *Frame) Rotation(e model.EntityID) model.Rotator {
	if ent, ok := f.entities[e]; ok {
		return ent.Rotation.Rotator()
	}
	return model.Rotator{}
}

func (f *Frame) Velocity(e model.EntityID) model.Vector {
	if ent, ok := f.entities[e]; ok {
		return ent.Velocity.Vector()
	}
	return model.Vector{}
}

func (f *Frame) Health(e model.EntityID) uint32 {
	if ent, ok := f.entities[e]; ok {
		return ent.Health
	}
	return 0
}

func (f *Frame) SurfaceLocked(e model.EntityID) bool {
	ent, ok := f.entities[e]
	return ok && ent.SurfaceLocked
}

func (f *Frame) InputDirection(p model.PlayerID) model.Vector {
	return f.inputs[p].Direction.Vector()
}

func (f *Frame) InputRotation(p model.PlayerID) model.Rotator {
	return f.inputs[p].Rotation.Rotator()
}

func (f *Frame) EquippedNode(e model.EntityID) (model.NodeID, bool) {
	ent, ok := f.entities[e]
	if !ok || ent.Equipped == nil {
		return 0, false
	}
	return *ent.Equipped, true
}

func (f *Frame) Components(e model.EntityID) []model.Component { return f.held[e] }

func (f *Frame) Component(n model.NodeID) (model.Component, bool) {
	c, ok := f.components[n]
	return c, ok
}

func (f *Frame) EntityOwner(e model.EntityID) (model.PlayerID, bool) {
	ent, ok := f.entities[e]
	if !ok || ent.Owner == nil {
		return 0, false
	}
	return *ent.Owner, true
}

func (f *Frame) InstigatorOf(e model.EntityID) (model.PlayerID, bool) {
	ent, ok := f.entities[e]
	if !ok || ent.Instigator == nil {
		return 0, false
	}
	return *ent.Instigator, true
}

func (f *Frame) ProjectileDamage(e model.EntityID) (uint32, bool) {
	ent, ok := f.entities[e]
	if !ok || ent.ProjectileDamage == nil {
		return 0, false
	}
	return *ent.ProjectileDamage, true
}

func (f *Frame) EntityName(e model.EntityID) string {
	if ent, ok := f.entities[e]; ok {
		return ent.Name
	}
	return ""
}
