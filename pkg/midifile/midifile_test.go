package midifile

import (
	"bytes"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/haivivi/beatforge/pkg/pattern"
	"github.com/haivivi/beatforge/pkg/timeline"
)

type noteOn struct {
	tick uint32
	ch   uint8
	key  uint8
	vel  uint8
}

func readNotes(t *testing.T, data []byte) (map[string][]noteOn, float64) {
	t.Helper()
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if tf, ok := s.TimeFormat.(smf.MetricTicks); !ok || tf.Ticks4th() != TicksPerQuarter {
		t.Fatalf("TimeFormat = %v", s.TimeFormat)
	}
	out := make(map[string][]noteOn)
	var bpm float64
	for _, tr := range s.Tracks {
		var name string
		var abs uint32
		var notes []noteOn
		for _, ev := range tr {
			abs += ev.Delta
			var ch, key, vel uint8
			var text string
			var tempo float64
			switch {
			case ev.Message.GetMetaTrackName(&text):
				name = text
			case ev.Message.GetMetaTempo(&tempo):
				bpm = tempo
			case midi.Message(ev.Message).GetNoteStart(&ch, &key, &vel):
				notes = append(notes, noteOn{abs, ch, key, vel})
			}
		}
		out[name] = notes
	}
	return out, bpm
}

func TestWritePop(t *testing.T) {
	tl, err := timeline.Schedule(120, pattern.NewPop(), 4000)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, tl); err != nil {
		t.Fatal(err)
	}
	tracks, bpm := readNotes(t, buf.Bytes())
	if bpm < 119.99 || bpm > 120.01 {
		t.Errorf("tempo = %v", bpm)
	}
	if len(tracks) != 4 {
		t.Fatalf("tracks = %d, want 4", len(tracks))
	}

	kicks := tracks["kick"]
	if len(kicks) != 8 {
		t.Fatalf("kick notes = %d, want 8", len(kicks))
	}
	for i, n := range kicks {
		if n.tick != uint32(i*TicksPerQuarter) || n.ch != 9 || n.key != 36 || n.vel != 100 {
			t.Errorf("kick %d = %+v", i, n)
		}
	}
	if hh := tracks["hihat"]; len(hh) != 16 || hh[1].tick != 480 || hh[0].key != 42 {
		t.Errorf("hihat = %+v", hh)
	}
	bass := tracks["bass"]
	if len(bass) != 8 || bass[0].ch != 0 || bass[4].key != 38 || bass[4].tick != 4*TicksPerQuarter {
		t.Errorf("bass = %+v", bass)
	}
}

func TestEncodePartsOffsets(t *testing.T) {
	a, _ := timeline.Schedule(120, pattern.NewFunk(), 2000)
	b, _ := timeline.Schedule(120, pattern.NewPop(), 2000)
	var buf bytes.Buffer
	if err := WriteParts(&buf, 120, Part{Timeline: a}, Part{OffsetMs: 2000, Timeline: b}); err != nil {
		t.Fatal(err)
	}
	tracks, _ := readNotes(t, buf.Bytes())
	kicks := tracks["kick"]
	if len(kicks) != 8+4 {
		t.Fatalf("kick notes = %d", len(kicks))
	}
	if kicks[8].tick != 4*TicksPerQuarter {
		t.Errorf("second part starts at tick %d", kicks[8].tick)
	}
}

func TestEncodeErrors(t *testing.T) {
	if _, err := Encode(nil); err == nil {
		t.Error("nil timeline encoded")
	}
	if _, err := EncodeParts(0); err == nil {
		t.Error("zero tempo encoded")
	}
}

func TestChannel(t *testing.T) {
	if Channel(pattern.Bass) != 0 || Channel(pattern.Snare) != 9 {
		t.Error("wrong channels")
	}
}
