package pattern

// Funk is a one-bar pattern: straight eighth kicks, backbeat snare, accented
// sixteenth hihats and an eighth-note bass line.
type Funk struct {
	bar Template
}

// NewFunk returns the funk pattern.
func NewFunk(opts ...Option) *Funk {
	accent := applyOptions(opts, Accent{Strong: 80, Weak: 60})

	var kick, hihat, bass []Onset
	bassNotes := [8]uint8{36, 36, 38, 36, 36, 38, 36, 38}
	for i := range 8 {
		beat := float64(i) * 0.5
		kick = append(kick, Onset{Beat: beat, Velocity: 100, Length: 0.25})
		bass = append(bass, Onset{Beat: beat, Velocity: 80, Pitch: bassNotes[i], Length: 0.4})
	}
	for i := range 16 {
		hihat = append(hihat, Onset{Beat: float64(i) * 0.25, Velocity: accent.velocity(i), Length: 0.125})
	}

	return &Funk{bar: mustTemplate(StyleFunk, map[Instrument][]Onset{
		Kick:  kick,
		Snare: {{Beat: 1, Velocity: 90, Length: 0.25}, {Beat: 3, Velocity: 90, Length: 0.25}},
		Hihat: hihat,
		Bass:  bass,
	})}
}

func (*Funk) Style() Style { return StyleFunk }

func (*Funk) Cycle() int { return 1 }

func (p *Funk) Bar(int) Template { return p.bar }

// Pop is a two-bar pattern: four-on-the-floor kick, backbeat snare, accented
// eighth hihats and a quarter-note bass line that walks root and fifth, moving
// up a tone in the second bar.
type Pop struct {
	bars [2]Template
}

// NewPop returns the pop pattern.
func NewPop(opts ...Option) *Pop {
	accent := applyOptions(opts, Accent{Strong: 85, Weak: 65})

	var kick, hihat []Onset
	for i := range 4 {
		kick = append(kick, Onset{Beat: float64(i), Velocity: 100, Length: 0.5})
	}
	for i := range 8 {
		hihat = append(hihat, Onset{Beat: float64(i) * 0.5, Velocity: accent.velocity(i), Length: 0.25})
	}
	snare := []Onset{{Beat: 1, Velocity: 95, Length: 0.25}, {Beat: 3, Velocity: 95, Length: 0.25}}

	bassNotes := [8]uint8{36, 43, 36, 43, 38, 43, 38, 43}
	p := &Pop{}
	for b := range 2 {
		var bass []Onset
		for i := range 4 {
			bass = append(bass, Onset{Beat: float64(i), Velocity: 80, Pitch: bassNotes[b*4+i], Length: 0.4})
		}
		p.bars[b] = mustTemplate(StylePop, map[Instrument][]Onset{
			Kick:  kick,
			Snare: snare,
			Hihat: hihat,
			Bass:  bass,
		})
	}
	return p
}

func (*Pop) Style() Style { return StylePop }

func (*Pop) Cycle() int { return 2 }

func (p *Pop) Bar(index int) Template { return p.bars[cycleIndex(index, len(p.bars))] }
