package model

import "strings"

// Event is one discrete gameplay event pushed by the simulation.
type Event struct {
	Stamp Stamp
	// Node is the component that raised the event.
	Node NodeID
	// Entity is the entity the event is about, when present.
	Entity    EntityID
	HasEntity bool
	Payload   Payload
}

// Payload is the closed set of event bodies.
type Payload interface {
	// Kind is the record name emitted for the event.
	Kind() string
	isPayload()
}

// Elimination reports a participant elimination. Entity is the dead astronaut.
type Elimination struct {
	Target PlayerID
	Cause  CauseChain
}

// Damage reports damage applied to Entity.
type Damage struct {
	Damage uint32
	Cause  CauseChain
}

// Dash reports a dash along Axis by the astronaut owning Node.
type Dash struct {
	Axis Axis
}

// Equip reports that Node was equipped by the astronaut Entity.
type Equip struct{}

// Shot is a single discharge.
type Shot struct {
	Origin    Vector
	Direction Vector
}

// GunFire reports a gun discharge spawning Projectile.
type GunFire struct {
	Shot
	Projectile EntityRef
}

// NightshadeFire reports a beam discharge; Entity is the damager.
type NightshadeFire struct {
	Shot
}

// ShotgunFire reports a multi-pellet discharge.
type ShotgunFire struct {
	Pellets []Shot
}

// ReleaseStar reports a throwing star leaving the hand; Entity is the star.
type ReleaseStar struct{}

// ExplosiveFire reports a rocket launch.
type ExplosiveFire struct {
	Shot
	Rocket EntityRef
}

// Explode reports a rocket detonation at Entity's location.
type Explode struct{}

// KingChange reports a crown transfer.
type KingChange struct {
	Prev    PlayerID
	HasPrev bool
	New     PlayerID
}

// SpawnPlayer reports a participant spawn.
type SpawnPlayer struct {
	Player PlayerID
}

// SetTeam reports a team assignment.
type SetTeam struct {
	Player PlayerID
	Team   int
}

// Simple is an action event that only needs its acting participant.
// Name is one of SimpleEventNames.
type Simple struct {
	Name string
}

// Simple action names with extra handling.
const (
	ActionStab = "Stab"
	ActionKick = "Kick"
)

var simpleEventNames = []string{
	"Surface Lock", "Push Off", "Melee", ActionKick, "Start Reload", "Finish Reload",
	"Cancel Reload", "Burst", "Pump", "Catch", "Throw", "Cast", "Retract",
	"Start Load", "Finish Load", "Impulsive Fire", "Swing", ActionStab, "Block",
	"Stun", "Projectile Slice", "Teleport", "Expire", "Toss", "Trigger",
}

// SimpleEventNames returns the catalog of simple action names.
func SimpleEventNames() []string {
	out := make([]string, len(simpleEventNames))
	copy(out, simpleEventNames)
	return out
}

// IsSimpleEvent reports whether name belongs to the simple action catalog.
func IsSimpleEvent(name string) bool {
	for _, n := range simpleEventNames {
		if n == name {
			return true
		}
	}
	return false
}

func (Elimination) Kind() string    { return "elim" }
func (Damage) Kind() string         { return "damage" }
func (Dash) Kind() string           { return "dash" }
func (Equip) Kind() string          { return "equip" }
func (GunFire) Kind() string        { return "fire" }
func (NightshadeFire) Kind() string { return "fire" }
func (ShotgunFire) Kind() string    { return "fire" }
func (ReleaseStar) Kind() string    { return "fire" }
func (ExplosiveFire) Kind() string  { return "fire" }
func (Explode) Kind() string        { return "explode" }
func (KingChange) Kind() string     { return "kingchange" }
func (SpawnPlayer) Kind() string    { return "spawn" }
func (SetTeam) Kind() string        { return "set_team" }

// Kind lowercases the action name and joins words with underscores.
func (s Simple) Kind() string {
	return strings.ReplaceAll(strings.ToLower(s.Name), " ", "_")
}

func (Elimination) isPayload()    {}
func (Damage) isPayload()         {}
func (Dash) isPayload()           {}
func (Equip) isPayload()          {}
func (GunFire) isPayload()        {}
func (NightshadeFire) isPayload() {}
func (ShotgunFire) isPayload()    {}
func (ReleaseStar) isPayload()    {}
func (ExplosiveFire) isPayload()  {}
func (Explode) isPayload()        {}
func (KingChange) isPayload()     {}
func (SpawnPlayer) isPayload()    {}
func (SetTeam) isPayload()        {}
func (Simple) isPayload()         {}
