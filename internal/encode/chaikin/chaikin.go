// Package chaikin implements corner-cutting line smoothing (spec.md §4.8:
// "apply a simple corner-cutting pass (Chaikin, 1 iteration) on the line
// string before WKB encoding").
package chaikin

import "github.com/paulmach/orb"

// DefaultIterations is the smoothing pass count used when a request does
// not specify one (spec.md §9 open question, resolved as a named, overridable
// constant rather than a hardcoded single pass).
const DefaultIterations = 1

// Smooth applies iterations passes of Chaikin corner-cutting to line. The
// endpoints are preserved; a line with fewer than 3 points is returned
// unchanged since there are no interior corners to cut.
func Smooth(line orb.LineString, iterations int) orb.LineString {
	if iterations <= 0 || len(line) < 3 {
		return line
	}

	current := line
	for i := 0; i < iterations; i++ {
		current = smoothOnce(current)
	}
	return current
}

func smoothOnce(line orb.LineString) orb.LineString {
	out := make(orb.LineString, 0, 2*(len(line)-1))
	out = append(out, line[0])

	for i := 0; i < len(line)-1; i++ {
		p0, p1 := line[i], line[i+1]
		q := orb.Point{
			0.75*p0[0] + 0.25*p1[0],
			0.75*p0[1] + 0.25*p1[1],
		}
		r := orb.Point{
			0.25*p0[0] + 0.75*p1[0],
			0.25*p0[1] + 0.75*p1[1],
		}
		out = append(out, q, r)
	}

	out = append(out, line[len(line)-1])
	return out
}
