package engine

import (
	"github.com/okian/replaystats/internal/domain/aggregate"
	"github.com/okian/replaystats/internal/domain/model"
)

// playerStats accumulates per-username statistics.
type playerStats struct {
	kills, deaths                 uint64
	dashes, dirDashes, kicks      uint64
	playTicks, floatTicks, magnet uint64
	speed, movingSpeed            aggregate.RunningAverage
	perfLines                     []string
}

// itemStats accumulates per-class statistics.
type itemStats struct {
	kills, deaths       uint64
	invKills, invDeaths uint64
	equippedTicks       uint64
	usedTicks           uint64
	killDistance        *aggregate.Distribution
}

// playerSample is one PlayerUpdate CSV row.
type playerSample struct {
	stamp    model.Stamp
	player   model.PlayerID
	health   uint32
	location model.Vector
	rotation model.Rotator
	velocity model.Vector
}
