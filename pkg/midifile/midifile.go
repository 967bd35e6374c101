// Package midifile writes scheduled timelines as Standard MIDI Files using
// gitlab.com/gomidi/midi/v2/smf.
//
// Each instrument gets its own track with a name, a 4/4 meter and the tempo.
// Drums play on General MIDI channel 10 (index 9) with their GM note numbers;
// bass plays on channel 1 (index 0) with the pitches from the pattern.
package midifile

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/haivivi/beatforge/pkg/pattern"
	"github.com/haivivi/beatforge/pkg/timeline"
)

// TicksPerQuarter is the file resolution.
const TicksPerQuarter = 960

const (
	drumChannel = 9
	bassChannel = 0
)

// Channel returns the zero-based MIDI channel for inst.
func Channel(inst pattern.Instrument) uint8 {
	if inst == pattern.Bass {
		return bassChannel
	}
	return drumChannel
}

// Part is a timeline placed at an offset in a longer piece.
type Part struct {
	OffsetMs int64
	Timeline *timeline.Timeline
}

type note struct {
	tick uint32
	on   bool
	key  uint8
	vel  uint8
}

// Encode converts a single timeline.
func Encode(tl *timeline.Timeline) (*smf.SMF, error) {
	if tl == nil {
		return nil, errors.New("midifile: nil timeline")
	}
	return EncodeParts(tl.Tempo(), Part{Timeline: tl})
}

// EncodeParts converts timelines laid end to end (or overlapping) at tempo.
// Part offsets are converted from milliseconds to ticks at tempo.
func EncodeParts(tempo timeline.Tempo, parts ...Part) (*smf.SMF, error) {
	if err := tempo.Validate(); err != nil {
		return nil, err
	}
	ticksPerMs := float64(tempo) / 60000 * TicksPerQuarter

	notes := make(map[pattern.Instrument][]note)
	for _, p := range parts {
		if p.Timeline == nil {
			return nil, errors.New("midifile: nil timeline")
		}
		offset := float64(p.OffsetMs) * ticksPerMs
		for _, ev := range p.Timeline.Events() {
			on := offset + ev.Beat*TicksPerQuarter
			off := on + max(ev.Length*TicksPerQuarter, 1)
			notes[ev.Instrument] = append(notes[ev.Instrument],
				note{tick: ticks(on), on: true, key: ev.Pitch, vel: min(ev.Velocity, 127)},
				note{tick: ticks(off), key: ev.Pitch},
			)
		}
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)
	for _, inst := range pattern.Instruments() {
		list, ok := notes[inst]
		if !ok {
			continue
		}
		if err := s.Add(track(inst, tempo, list)); err != nil {
			return nil, fmt.Errorf("midifile: %w", err)
		}
	}
	return s, nil
}

func ticks(v float64) uint32 {
	return uint32(math.Round(max(v, 0)))
}

func track(inst pattern.Instrument, tempo timeline.Tempo, notes []note) smf.Track {
	// Note-offs sort before note-ons on the same tick so that a repeated
	// pitch is released before it is struck again.
	slices.SortStableFunc(notes, func(a, b note) int {
		if c := cmp.Compare(a.tick, b.tick); c != 0 {
			return c
		}
		switch {
		case a.on == b.on:
			return 0
		case !a.on:
			return -1
		}
		return 1
	})

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(string(inst)))
	tr.Add(0, smf.MetaMeter(4, 4))
	tr.Add(0, smf.MetaTempo(float64(tempo)))

	ch := Channel(inst)
	var last uint32
	for _, n := range notes {
		delta := n.tick - last
		last = n.tick
		if n.on {
			tr.Add(delta, midi.NoteOn(ch, n.key, n.vel))
		} else {
			tr.Add(delta, midi.NoteOff(ch, n.key))
		}
	}
	tr.Close(0)
	return tr
}

// Write encodes tl and writes the file to w.
func Write(w io.Writer, tl *timeline.Timeline) error {
	s, err := Encode(tl)
	if err != nil {
		return err
	}
	_, err = s.WriteTo(w)
	return err
}

// WriteParts encodes parts and writes the file to w.
func WriteParts(w io.Writer, tempo timeline.Tempo, parts ...Part) error {
	s, err := EncodeParts(tempo, parts...)
	if err != nil {
		return err
	}
	_, err = s.WriteTo(w)
	return err
}
