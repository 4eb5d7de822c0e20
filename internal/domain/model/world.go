package model

// Participant is one roster entry of the game mode at a tick.
type Participant struct {
	Player PlayerID
	// Entity is the participant's astronaut, valid when Embodied.
	Entity   EntityID
	Embodied bool
}

// OutcomeKind classifies how a match result is expressed.
type OutcomeKind uint8

// Outcome kinds.
const (
	OutcomeNone OutcomeKind = iota
	// OutcomeTeam reports a winning team.
	OutcomeTeam
	// OutcomePlayer reports a winning participant, or no winner (king modes).
	OutcomePlayer
)

// Outcome is the game mode's result when the end condition is reached.
type Outcome struct {
	Kind      OutcomeKind
	Team      int
	Winner    PlayerID
	HasWinner bool
}

// World is the queryable simulation state at the current tick. Queries for
// unknown entities return zero values.
type World interface {
	Stamp() Stamp
	// Roster lists the game mode's participants in roster order.
	Roster() []Participant

	Location(e EntityID) Vector
	Rotation(e EntityID) Rotator
	Velocity(e EntityID) Vector
	Health(e EntityID) uint32
	// SurfaceLocked reports whether the entity's magnet is locked to a surface.
	SurfaceLocked(e EntityID) bool

	InputDirection(p PlayerID) Vector
	InputRotation(p PlayerID) Rotator

	// EquippedNode is the item node currently equipped by an astronaut.
	EquippedNode(e EntityID) (NodeID, bool)
	Components(e EntityID) []Component
	Component(n NodeID) (Component, bool)
	// EntityOwner returns the participant owning the astronaut entity.
	EntityOwner(e EntityID) (PlayerID, bool)
	// InstigatorOf returns the participant that spawned a non-astronaut entity.
	InstigatorOf(e EntityID) (PlayerID, bool)
	ProjectileDamage(e EntityID) (uint32, bool)
	// EntityName is the capture's descriptive label for an entity, or "".
	EntityName(e EntityID) string

	EndConditionReached() bool
	Outcome() Outcome
	// LoadoutChanges lists loadouts assigned during this tick.
	LoadoutChanges() []Loadout
}
