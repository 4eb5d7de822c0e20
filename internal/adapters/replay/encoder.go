package replay

import (
	"bufio"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// Encoder writes capture records as JSON Lines.
type Encoder struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// NewEncoder returns an encoder writing to w. Call Flush when done.
func NewEncoder(w io.Writer) *Encoder {
	bw := bufio.NewWriter(w)
	return &Encoder{w: bw, enc: json.NewEncoder(bw)}
}

func (e *Encoder) Header(r HeaderRecord) error {
	r.Type = TypeHeader
	return e.write(r)
}

func (e *Encoder) Join(r JoinRecord) error {
	r.Type = TypeJoin
	return e.write(r)
}

func (e *Encoder) Leave(r LeaveRecord) error {
	r.Type = TypeLeave
	return e.write(r)
}

func (e *Encoder) Chat(r ChatRecord) error {
	r.Type = TypeChat
	return e.write(r)
}

func (e *Encoder) DeviceProfile(r DeviceProfileRecord) error {
	r.Type = TypeDeviceProfile
	return e.write(r)
}

func (e *Encoder) Performance(r PerformanceRecord) error {
	r.Type = TypePerformance
	return e.write(r)
}

func (e *Encoder) Loadout(r LoadoutRecord) error {
	r.Type = TypeLoadout
	return e.write(r)
}

func (e *Encoder) Tick(r TickRecord) error {
	r.Type = TypeTick
	return e.write(r)
}

// Flush writes buffered records to the underlying writer.
func (e *Encoder) Flush() error {
	return e.w.Flush()
}

func (e *Encoder) write(v any) error {
	if err := e.enc.Encode(v); err != nil {
		return fmt.Errorf("encode capture record: %w", err)
	}
	return nil
}
