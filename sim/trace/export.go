package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// line is one JSONL entry; exactly one of the pointers is set.
type line struct {
	Kind   string        `json:"kind"`
	Header *Header       `json:"header,omitempty"`
	Tick   *TickRecord   `json:"tick,omitempty"`
	Action *ActionRecord `json:"action,omitempty"`
}

// WriteJSONL writes the header line then every record, ticks and actions
// interleaved by tick (actions first, since they were applied before the tick ran).
func WriteJSONL(w io.Writer, st *SimulationTrace) error {
	bw := bufio.NewWriterSize(w, 128*1024)
	enc := json.NewEncoder(bw)
	if err := enc.Encode(line{Kind: "header", Header: &st.Header}); err != nil {
		return err
	}

	ai := 0
	for i := range st.Ticks {
		t := &st.Ticks[i]
		for ai < len(st.Actions) && st.Actions[ai].Tick <= t.Tick {
			if err := enc.Encode(line{Kind: "action", Action: &st.Actions[ai]}); err != nil {
				return err
			}
			ai++
		}
		if err := enc.Encode(line{Kind: "tick", Tick: t}); err != nil {
			return err
		}
	}
	for ; ai < len(st.Actions); ai++ {
		if err := enc.Encode(line{Kind: "action", Action: &st.Actions[ai]}); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteJSONLZstd writes the trace as zstd-compressed JSONL to path.
func WriteJSONLZstd(path string, st *SimulationTrace) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating trace directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating trace file: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	if err := WriteJSONL(enc, st); err != nil {
		_ = enc.Close()
		_ = f.Close()
		return fmt.Errorf("writing trace: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadJSONLZstd decodes a file written by WriteJSONLZstd.
func ReadJSONLZstd(path string) (*SimulationTrace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	st := NewSimulationTrace(Header{})
	jd := json.NewDecoder(dec)
	for jd.More() {
		var l line
		if err := jd.Decode(&l); err != nil {
			return nil, fmt.Errorf("decoding trace line: %w", err)
		}
		switch {
		case l.Header != nil:
			st.Header = *l.Header
		case l.Tick != nil:
			st.RecordTick(*l.Tick)
		case l.Action != nil:
			st.RecordAction(*l.Action)
		}
	}
	return st, nil
}
