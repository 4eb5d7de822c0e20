package model

import "fmt"

// CauseNode is one hop of an attribution chain.
type CauseNode interface {
	AsPlayer() (PlayerID, bool)
	AsEntity() (EntityID, bool)
	AsComponent() (Component, bool)
	String() string
}

// PlayerRef attributes to a participant.
type PlayerRef struct {
	ID PlayerID
}

func (p PlayerRef) AsPlayer() (PlayerID, bool)   { return p.ID, true }
func (PlayerRef) AsEntity() (EntityID, bool)     { return 0, false }
func (PlayerRef) AsComponent() (Component, bool) { return Component{}, false }
func (p PlayerRef) String() string               { return fmt.Sprintf("Player_%d", p.ID) }

// EntityRef attributes to an entity. Label is the entity's descriptive name
// when the capture provides one.
type EntityRef struct {
	ID    EntityID
	Label string
}

func (EntityRef) AsPlayer() (PlayerID, bool)     { return 0, false }
func (e EntityRef) AsEntity() (EntityID, bool)   { return e.ID, true }
func (EntityRef) AsComponent() (Component, bool) { return Component{}, false }

func (e EntityRef) String() string {
	if e.Label != "" {
		return e.Label
	}
	return fmt.Sprintf("Entity_%d", e.ID)
}

// ComponentRef attributes to a component node.
type ComponentRef struct {
	Component Component
}

func (ComponentRef) AsPlayer() (PlayerID, bool)       { return 0, false }
func (ComponentRef) AsEntity() (EntityID, bool)       { return 0, false }
func (c ComponentRef) AsComponent() (Component, bool) { return c.Component, true }

func (c ComponentRef) String() string {
	return fmt.Sprintf("%s_%d", c.Component.Class.DisplayName(), c.Component.Node)
}

// CauseChain is an ordered attribution list, most direct cause first.
type CauseChain []CauseNode

// PrimaryPlayer returns the first player in the chain.
func (c CauseChain) PrimaryPlayer() (PlayerID, bool) {
	for _, n := range c {
		if id, ok := n.AsPlayer(); ok {
			return id, true
		}
	}
	return 0, false
}

// PrimaryEntity returns the first entity in the chain.
func (c CauseChain) PrimaryEntity() (EntityRef, bool) {
	for _, n := range c {
		if id, ok := n.AsEntity(); ok {
			if ref, isRef := n.(EntityRef); isRef {
				return ref, true
			}
			return EntityRef{ID: id}, true
		}
	}
	return EntityRef{}, false
}

// PrimaryNode returns the first component node in the chain.
func (c CauseChain) PrimaryNode() (ComponentRef, bool) {
	for _, n := range c {
		if comp, ok := n.AsComponent(); ok {
			return ComponentRef{Component: comp}, true
		}
	}
	return ComponentRef{}, false
}

// Components returns every component node in chain order.
func (c CauseChain) Components() []Component {
	var out []Component
	for _, n := range c {
		if comp, ok := n.AsComponent(); ok {
			out = append(out, comp)
		}
	}
	return out
}

// FirstTracked returns the first tracked item component in the chain.
func (c CauseChain) FirstTracked() (Component, bool) {
	for _, comp := range c.Components() {
		if comp.Class.IsTracked() {
			return comp, true
		}
	}
	return Component{}, false
}
