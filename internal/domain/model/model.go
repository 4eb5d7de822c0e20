// Package model contains the replay domain types shared by the engine and
// its collaborators.
package model

// Stamp is a simulation tick number.
type Stamp uint32

// PlayerID is a transient, match-scoped participant handle.
type PlayerID uint32

// EntityID identifies a simulated entity (astronaut, projectile, rocket).
type EntityID uint32

// NodeID identifies a component attached to an entity.
type NodeID uint32
