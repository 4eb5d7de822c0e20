package model

import (
	"strconv"
	"strings"
)

// Header describes a captured match.
type Header struct {
	GameID    uint64
	StartUnix uint64
	Map       string
	Mode      string
	// FirstStamp and LastStamp bound the captured input range.
	FirstStamp Stamp
	LastStamp  Stamp
}

// Join records a participant joining at Stamp.
type Join struct {
	Stamp    Stamp
	Player   PlayerID
	Username string
	NetID    string
}

// Leave records a participant leaving at Stamp.
type Leave struct {
	Stamp  Stamp
	Player PlayerID
}

// ChatMessage is a captured chat line.
type ChatMessage struct {
	Stamp   Stamp
	Sender  string
	Message string
}

// Loadout is the item set assigned to a participant.
type Loadout struct {
	Player PlayerID
	Items  []ItemClass
}

// GPUInfo describes the graphics adapter of a client.
type GPUInfo struct {
	Name          string `json:"Name"`
	DriverVersion string `json:"DriverVersion,omitempty"`
}

// DisplaySettings are the client's video settings.
type DisplaySettings struct {
	ResX           int     `json:"ResX"`
	ResY           int     `json:"ResY"`
	WindowMode     string  `json:"WindowMode"`
	FrameRateLimit float64 `json:"FrameRateLimit"`
}

// DeviceProfile is a client hardware report.
type DeviceProfile struct {
	Username string          `json:"Username"`
	CPU      string          `json:"CPU,omitempty"`
	GPU      GPUInfo         `json:"GPU"`
	Settings DisplaySettings `json:"Settings"`
}

// PerformanceSnapshot is one client frame timing sample.
type PerformanceSnapshot struct {
	Stamp     Stamp
	Player    PlayerID
	HasPlayer bool

	FrameAvg      float64
	FrameMax      float64
	GameThread    float64
	RenderThread  float64
	GPU           float64
	NetTick       float64
	PacketLatency float64
	GPUBound      bool
	GTBound       bool
	NTTBound      bool
}

// PerformanceCSVHeader is the column header of per-participant performance files.
const PerformanceCSVHeader = "Stamp,Frame Avg,Frame Max,Game Thread,Render Thread,GPU,NetTick,Packet Latency,GPU Bound,GT Bound,NTT Bound"

// CSVLine renders the snapshot in PerformanceCSVHeader column order.
func (p PerformanceSnapshot) CSVLine() string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(uint64(p.Stamp), 10))
	for _, v := range []float64{p.FrameAvg, p.FrameMax, p.GameThread, p.RenderThread, p.GPU, p.NetTick, p.PacketLatency} {
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(v, 'f', 2, 64))
	}
	for _, f := range []bool{p.GPUBound, p.GTBound, p.NTTBound} {
		b.WriteByte(',')
		if f {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
