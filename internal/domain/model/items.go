package model

import "strings"

// ItemClass is the internal type name of a component, e.g. NTRipperRemote.
type ItemClass string

// Tracked item classes.
const (
	AstroRifle     ItemClass = "NTAstroRifleRemote"
	Boomerang      ItemClass = "NTBoomerangRemote"
	Grapple        ItemClass = "NTGrapple"
	Net            ItemClass = "NTNetRemote"
	Nightshade     ItemClass = "NTNightshadeRemote"
	QuadCannon     ItemClass = "NTQuadCannonRemote"
	Ripper         ItemClass = "NTRipperRemote"
	RocketLauncher ItemClass = "NTRocketLauncherRemote"
	Sledge         ItemClass = "NTSledgeRemote"
	Spark          ItemClass = "NTSparkRemote"
	Sword          ItemClass = "NTSwordRemote"
	Teleport       ItemClass = "NTTeleportRemote"
	ThrowingStar   ItemClass = "NTThrowingStarRemote"
)

var trackedItems = []ItemClass{
	AstroRifle, Boomerang, Grapple, Net, Nightshade, QuadCannon, Ripper,
	RocketLauncher, Sledge, Spark, Sword, Teleport, ThrowingStar,
}

var rangedItems = map[ItemClass]struct{}{
	AstroRifle:     {},
	Boomerang:      {},
	Nightshade:     {},
	QuadCannon:     {},
	Ripper:         {},
	RocketLauncher: {},
	Sledge:         {},
	Spark:          {},
	ThrowingStar:   {},
}

// TrackedItems returns the catalog of tracked classes in a stable order.
func TrackedItems() []ItemClass {
	out := make([]ItemClass, len(trackedItems))
	copy(out, trackedItems)
	return out
}

// IsTracked reports whether c is in the tracked catalog.
func (c ItemClass) IsTracked() bool {
	for _, t := range trackedItems {
		if t == c {
			return true
		}
	}
	return false
}

// IsRanged reports whether kills with c count toward the ranged kill distance.
func (c ItemClass) IsRanged() bool {
	_, ok := rangedItems[c]
	return ok
}

// DisplayName strips the NT prefix and Remote suffix.
func (c ItemClass) DisplayName() string {
	name := strings.TrimPrefix(string(c), "NT")
	return strings.TrimSuffix(name, "Remote")
}

// Sword action stages.
const (
	StageStab = "Stab"
)

// Component is an item or ability node attached to an entity.
type Component struct {
	Node   NodeID
	Entity EntityID
	Class  ItemClass
	// Stage is the current action stage for staged items (sword).
	Stage string
	// Ammo is the loaded ammunition for gun-backed items.
	Ammo    uint8
	HasAmmo bool
}
