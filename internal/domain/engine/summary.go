package engine

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/replaystats/internal/domain/model"
	"github.com/okian/replaystats/internal/domain/timeline"
	"github.com/okian/replaystats/pkg/logger"
)

// Column headers of the CSV exports.
const (
	PlayerUpdateCSVHeader = "Stamp, PlayerId, Health, Location.X, Location.Y, Location.Z, Rotation.Pitch, Rotation.Yaw, Rotation.Roll, Velocity.X, Velocity.Y, Velocity.Z"
	RipperAmmoCSVHeader   = "Remaining Ammo"
)

// Summary is the match document.
type Summary struct {
	GameID             string                   `json:"GameId"`
	StartUnixTimestamp string                   `json:"StartUnixTimestamp"`
	GameMode           string                   `json:"GameMode"`
	DurationSec        int64                    `json:"DurationSec"`
	Map                string                   `json:"Map"`
	WinningTeam        *int                     `json:"winning team,omitempty"`
	Winner             *string                  `json:"winner,omitempty"`
	AverageKillDist    timeline.Number          `json:"AverageKillDistance"`
	TotalEliminations  uint64                   `json:"TotalEliminations"`
	TotalSpawns        uint64                   `json:"TotalSpawns"`
	Misc               MiscSummary              `json:"misc"`
	DeviceProfiles     []model.DeviceProfile    `json:"DeviceProfiles"`
	Players            map[string]PlayerSummary `json:"Players"`
	Items              map[string]ItemSummary   `json:"Items"`
	Events             []*timeline.Record       `json:"events"`
}

// MiscSummary holds item specific trivia.
type MiscSummary struct {
	AverageSwordStabKillDistance timeline.Number `json:"AverageSwordStabKillDistance"`
	NumSwordStabKills            uint64          `json:"NumSwordStabKills"`
	ShurikenDropShotKills        uint64          `json:"ShurikenDropShotKills"`
	ShurikenRegularShotKills     uint64          `json:"ShurikenRegularShotKills"`
}

// PlayerSummary is the per-username block.
type PlayerSummary struct {
	Kills          uint64          `json:"Kills"`
	Deaths         uint64          `json:"Deaths"`
	AvgSpeed       timeline.Number `json:"AvgSpeed"`
	AvgMovingSpeed timeline.Number `json:"AvgMovingSpeed"`
	PlayTimeSec    timeline.Number `json:"PlayTimeSec"`
	FloatTimeSec   timeline.Number `json:"FloatTimeSec"`
	MagnetTimeSec  timeline.Number `json:"MagnetTimeSec"`
	Dashes         uint64          `json:"Dashes"`
	DirDashes      uint64          `json:"DirDashes"`
	Kicks          uint64          `json:"Kicks"`
}

// ItemSummary is the per-item block keyed by display name.
type ItemSummary struct {
	PlayTime    timeline.Number  `json:"PlayTime"`
	EquipTime   timeline.Number  `json:"EquipTime"`
	Kills       uint64           `json:"Kills"`
	Deaths      uint64           `json:"Deaths"`
	InvKills    uint64           `json:"InvKills"`
	InvDeaths   uint64           `json:"InvDeaths"`
	AvgKillDist timeline.Number  `json:"AvgKillDist"`
	KillDistP50 *timeline.Number `json:"KillDistP50,omitempty"`
	KillDistP90 *timeline.Number `json:"KillDistP90,omitempty"`
}

// PerformanceSeries is one participant's performance CSV, header first.
type PerformanceSeries struct {
	Username string
	Lines    []string
}

// Result is everything Finalize produces.
type Result struct {
	Summary     *Summary
	Performance []PerformanceSeries
	// Density is the serialized volume, nil when the map had no bounds.
	Density         []byte
	AmmoCSV         []string
	PlayerUpdateCSV []string
}

// Finalize closes the match and builds every output. It succeeds once.
func (e *Engine) Finalize(ctx context.Context) (*Result, error) {
	if err := e.recording(); err != nil {
		return nil, err
	}
	if !e.endReached {
		e.fault(ctx, FaultEndConditionNotReached, e.header.LastStamp, "finalize requested before the match ended")
		return nil, ErrEndConditionNotReached
	}
	e.state = stateFinalized

	res := &Result{
		Summary:         e.summary(),
		Performance:     e.performance(),
		AmmoCSV:         e.ammoCSV(),
		PlayerUpdateCSV: e.playerUpdateCSV(),
	}
	if e.vol != nil {
		res.Density = e.vol.Serialize()
	}

	e.log.Info(ctx, "replay finalized",
		logger.String("game_id", res.Summary.GameID),
		logger.Int("events", len(res.Summary.Events)),
		logger.Uint64("eliminations", e.totalEliminations),
		logger.Int("faults", len(e.faults)),
	)
	return res, nil
}

func (e *Engine) summary() *Summary {
	s := &Summary{
		GameID:             strconv.FormatUint(e.header.GameID, 10),
		StartUnixTimestamp: strconv.FormatUint(e.header.StartUnix, 10),
		GameMode:           e.header.Mode,
		Map:                e.header.Map,
		WinningTeam:        e.winningTeam,
		Winner:             e.winner,
		AverageKillDist:    timeline.Round(e.rangedKillDistance.Average(), 1),
		TotalEliminations:  e.totalEliminations,
		TotalSpawns:        e.totalSpawns,
		Misc: MiscSummary{
			AverageSwordStabKillDistance: timeline.Round(e.swordStabDistance.Average(), 1),
			NumSwordStabKills:            e.swordStabDistance.Count(),
			ShurikenDropShotKills:        e.shurikenDrop,
			ShurikenRegularShotKills:     e.shurikenRegular,
		},
		DeviceProfiles: append([]model.DeviceProfile{}, e.profiles...),
		Players:        make(map[string]PlayerSummary, len(e.players)),
		Items:          make(map[string]ItemSummary, len(e.items)),
		Events:         timeline.Merge(e.deferred, e.live.Records()),
	}
	if e.header.LastStamp > e.header.FirstStamp {
		s.DurationSec = int64(math.Trunc(e.seconds(uint64(e.header.LastStamp - e.header.FirstStamp))))
	}

	for name, ps := range e.players {
		s.Players[name] = PlayerSummary{
			Kills:          ps.kills,
			Deaths:         ps.deaths,
			AvgSpeed:       timeline.Round(ps.speed.Average(), 1),
			AvgMovingSpeed: timeline.Round(ps.movingSpeed.Average(), 1),
			PlayTimeSec:    timeline.Round(e.seconds(ps.playTicks), 2),
			FloatTimeSec:   timeline.Round(e.seconds(ps.floatTicks), 2),
			MagnetTimeSec:  timeline.Round(e.seconds(ps.magnet), 2),
			Dashes:         ps.dashes,
			DirDashes:      ps.dirDashes,
			Kicks:          ps.kicks,
		}
	}

	for class, st := range e.items {
		item := ItemSummary{
			PlayTime:    timeline.Round(e.seconds(st.usedTicks), 2),
			EquipTime:   timeline.Round(e.seconds(st.equippedTicks), 2),
			Kills:       st.kills,
			Deaths:      st.deaths,
			InvKills:    st.invKills,
			InvDeaths:   st.invDeaths,
			AvgKillDist: timeline.Round(st.killDistance.Average(), 1),
		}
		if e.percentiles {
			p50 := timeline.Round(st.killDistance.Quantile(0.5), 1)
			p90 := timeline.Round(st.killDistance.Quantile(0.9), 1)
			item.KillDistP50, item.KillDistP90 = &p50, &p90
		}
		s.Items[class.DisplayName()] = item
	}
	return s
}

func (e *Engine) performance() []PerformanceSeries {
	var out []PerformanceSeries
	for _, name := range e.playerOrder {
		ps := e.players[name]
		if len(ps.perfLines) == 0 {
			continue
		}
		out = append(out, PerformanceSeries{
			Username: name,
			Lines:    append([]string{}, ps.perfLines...),
		})
	}
	return out
}

func (e *Engine) ammoCSV() []string {
	lines := make([]string, 0, len(e.ripperAmmo)+1)
	lines = append(lines, RipperAmmoCSVHeader)
	for _, a := range e.ripperAmmo {
		lines = append(lines, strconv.FormatUint(uint64(a), 10))
	}
	return lines
}

func (e *Engine) playerUpdateCSV() []string {
	lines := make([]string, 0, len(e.samples)+1)
	lines = append(lines, PlayerUpdateCSVHeader)
	for _, s := range e.samples {
		lines = append(lines, s.csvLine())
	}
	return lines
}

func (s playerSample) csvLine() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d, %d, %d", s.stamp, s.player, s.health)
	for _, v := range []float64{
		s.location.X, s.location.Y, s.location.Z,
		s.rotation.Pitch, s.rotation.Yaw, s.rotation.Roll,
		s.velocity.X, s.velocity.Y, s.velocity.Z,
	} {
		fmt.Fprintf(&b, ", %.0f", v)
	}
	return b.String()
}

func (e *Engine) seconds(ticks uint64) float64 {
	return float64(ticks) / e.tickRate
}
