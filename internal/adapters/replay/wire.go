package replay

import (
	"github.com/okian/replaystats/internal/domain/model"
)

// Record types.
const (
	TypeHeader        = "header"
	TypeJoin          = "join"
	TypeLeave         = "leave"
	TypeChat          = "chat"
	TypeDeviceProfile = "device_profile"
	TypePerformance   = "performance"
	TypeLoadout       = "loadout"
	TypeTick          = "tick"
)

// Event kinds.
const (
	KindElim           = "elim"
	KindDamage         = "damage"
	KindDash           = "dash"
	KindEquip          = "equip"
	KindGunFire        = "gun_fire"
	KindNightshadeFire = "nightshade_fire"
	KindShotgunFire    = "shotgun_fire"
	KindReleaseStar    = "release_star"
	KindExplosiveFire  = "explosive_fire"
	KindExplode        = "explode"
	KindKingChange     = "kingchange"
	KindSpawn          = "spawn"
	KindSetTeam        = "set_team"
	KindSimple         = "simple"
)

// Outcome kinds.
const (
	OutcomeTeam   = "team"
	OutcomePlayer = "player"
)

// Vec3 is a vector or rotator on the wire.
type Vec3 [3]float64

// Vector converts v to a model vector.
func (v Vec3) Vector() model.Vector { return model.Vector{X: v[0], Y: v[1], Z: v[2]} }

// Rotator reads v as pitch, yaw, roll.
func (v Vec3) Rotator() model.Rotator { return model.Rotator{Pitch: v[0], Yaw: v[1], Roll: v[2]} }

// FromVector converts a model vector.
func FromVector(v model.Vector) Vec3 { return Vec3{v.X, v.Y, v.Z} }

// FromRotator converts a model rotator.
func FromRotator(r model.Rotator) Vec3 { return Vec3{r.Pitch, r.Yaw, r.Roll} }

type envelope struct {
	Type string `json:"type"`
}

// HeaderRecord opens every capture.
type HeaderRecord struct {
	Type       string      `json:"type"`
	GameID     uint64      `json:"game_id"`
	StartUnix  uint64      `json:"start_unix"`
	Map        string      `json:"map"`
	Mode       string      `json:"mode"`
	FirstStamp model.Stamp `json:"first_stamp"`
	LastStamp  model.Stamp `json:"last_stamp"`
	// StartStamp defaults to FirstStamp.
	StartStamp *model.Stamp `json:"start_stamp,omitempty"`
}

type JoinRecord struct {
	Type     string         `json:"type"`
	Stamp    model.Stamp    `json:"stamp"`
	Player   model.PlayerID `json:"player"`
	Username string         `json:"username"`
	NetID    string         `json:"net_id,omitempty"`
}

type LeaveRecord struct {
	Type   string         `json:"type"`
	Stamp  model.Stamp    `json:"stamp"`
	Player model.PlayerID `json:"player"`
}

type ChatRecord struct {
	Type    string      `json:"type"`
	Stamp   model.Stamp `json:"stamp"`
	Sender  string      `json:"sender"`
	Message string      `json:"message"`
}

type DeviceProfileRecord struct {
	Type    string              `json:"type"`
	Profile model.DeviceProfile `json:"profile"`
}

type PerformanceRecord struct {
	Type          string          `json:"type"`
	Stamp         model.Stamp     `json:"stamp"`
	Player        *model.PlayerID `json:"player,omitempty"`
	FrameAvg      float64         `json:"frame_avg"`
	FrameMax      float64         `json:"frame_max"`
	GameThread    float64         `json:"game_thread"`
	RenderThread  float64         `json:"render_thread"`
	GPU           float64         `json:"gpu"`
	NetTick       float64         `json:"net_tick"`
	PacketLatency float64         `json:"packet_latency"`
	GPUBound      bool            `json:"gpu_bound"`
	GTBound       bool            `json:"gt_bound"`
	NTTBound      bool            `json:"ntt_bound"`
}

// LoadoutRecord lists internal item class names for a participant.
type LoadoutRecord struct {
	Type   string         `json:"type,omitempty"`
	Player model.PlayerID `json:"player"`
	Items  []string       `json:"items"`
}

type ParticipantRecord struct {
	ID       model.PlayerID `json:"id"`
	Entity   model.EntityID `json:"entity,omitempty"`
	Embodied bool           `json:"embodied,omitempty"`
}

type EntityRecord struct {
	ID               model.EntityID  `json:"id"`
	Name             string          `json:"name,omitempty"`
	Owner            *model.PlayerID `json:"owner,omitempty"`
	Instigator       *model.PlayerID `json:"instigator,omitempty"`
	Location         Vec3            `json:"location"`
	Rotation         Vec3            `json:"rotation"`
	Velocity         Vec3            `json:"velocity"`
	Health           uint32          `json:"health,omitempty"`
	SurfaceLocked    bool            `json:"surface_locked,omitempty"`
	Equipped         *model.NodeID   `json:"equipped,omitempty"`
	ProjectileDamage *uint32         `json:"projectile_damage,omitempty"`
}

type ComponentRecord struct {
	Node   model.NodeID   `json:"node"`
	Entity model.EntityID `json:"entity"`
	Class  string         `json:"class"`
	Stage  string         `json:"stage,omitempty"`
	Ammo   *uint8         `json:"ammo,omitempty"`
}

type InputRecord struct {
	Player    model.PlayerID `json:"player"`
	Direction Vec3           `json:"direction"`
	Rotation  Vec3           `json:"rotation"`
}

type OutcomeRecord struct {
	Kind   string          `json:"kind"`
	Team   int             `json:"team,omitempty"`
	Winner *model.PlayerID `json:"winner,omitempty"`
}

// CauseRecord is one cause chain link. Exactly one of Player, Entity and
// Node is set.
type CauseRecord struct {
	Player *model.PlayerID `json:"player,omitempty"`
	Entity *model.EntityID `json:"entity,omitempty"`
	Label  string          `json:"label,omitempty"`
	Node   *model.NodeID   `json:"node,omitempty"`
}

type ShotRecord struct {
	Origin    Vec3 `json:"origin"`
	Direction Vec3 `json:"direction"`
}

// EventRecord is the union of every event body; Kind selects the fields.
type EventRecord struct {
	Kind       string          `json:"kind"`
	Node       model.NodeID    `json:"node,omitempty"`
	Entity     *model.EntityID `json:"entity,omitempty"`
	Target     model.PlayerID  `json:"target,omitempty"`
	Damage     uint32          `json:"damage,omitempty"`
	Cause      []CauseRecord   `json:"cause,omitempty"`
	Axis       string          `json:"axis,omitempty"`
	Shot       *ShotRecord     `json:"shot,omitempty"`
	Pellets    []ShotRecord    `json:"pellets,omitempty"`
	Projectile *CauseRecord    `json:"projectile,omitempty"`
	Prev       *model.PlayerID `json:"prev,omitempty"`
	New        model.PlayerID  `json:"new,omitempty"`
	Player     model.PlayerID  `json:"player,omitempty"`
	Team       int             `json:"team,omitempty"`
	Name       string          `json:"name,omitempty"`
}

// TickRecord is the world snapshot and events of one stamp.
type TickRecord struct {
	Type       string              `json:"type"`
	Stamp      model.Stamp         `json:"stamp"`
	Players    []ParticipantRecord `json:"players,omitempty"`
	Entities   []EntityRecord      `json:"entities,omitempty"`
	Components []ComponentRecord   `json:"components,omitempty"`
	Inputs     []InputRecord       `json:"inputs,omitempty"`
	Loadouts   []LoadoutRecord     `json:"loadouts,omitempty"`
	End        bool                `json:"end,omitempty"`
	Outcome    *OutcomeRecord      `json:"outcome,omitempty"`
	Events     []EventRecord       `json:"events,omitempty"`
}
