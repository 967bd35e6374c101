// Package timeline turns a rhythm pattern into absolutely-timed events.
//
// Schedule expands a pattern.Pattern over as many bars as are needed to cover
// a target duration at a given tempo. Event times are whole milliseconds from
// the start of the section; events that would start at or after the target
// duration are dropped, never wrapped.
//
//	tl, err := timeline.Schedule(120, pop, 2000)
//	// tl.Instrument(pattern.Kick) → kicks at 0, 500, 1000, 1500 ms
package timeline
