package coverage

import (
	"github.com/grailbio/plasmidqc/pileup"
)

// Bin summarizes depth over the 0-based half-open interval [Start, End).
type Bin struct {
	Start, End int
	Mean       float64
	Min, Max   uint32
}

// Marker flags one low-confidence position.
type Marker struct {
	Pos   int
	Depth uint32
}

// Plot is the data behind a coverage plot.
type Plot struct {
	Bins    []Bin
	Markers []Marker
}

// PlotData bins the depth series of records into at most maxPoints
// equal-width bins (the last may be shorter).  maxPoints <= 0 gives one bin
// per position.  Every low-confidence position becomes a Marker.
func PlotData(records []pileup.Record, maxPoints int) Plot {
	var p Plot
	n := len(records)
	if n == 0 {
		return p
	}
	width := 1
	if maxPoints > 0 && n > maxPoints {
		width = (n + maxPoints - 1) / maxPoints
	}
	p.Bins = make([]Bin, 0, (n+width-1)/width)
	for start := 0; start < n; start += width {
		end := start + width
		if end > n {
			end = n
		}
		b := Bin{Start: start, End: end, Min: records[start].Depth}
		var sum uint64
		for i := start; i < end; i++ {
			d := records[i].Depth
			sum += uint64(d)
			if d < b.Min {
				b.Min = d
			}
			if d > b.Max {
				b.Max = d
			}
		}
		b.Mean = float64(sum) / float64(end-start)
		p.Bins = append(p.Bins, b)
	}
	for i := range records {
		if records[i].Low {
			p.Markers = append(p.Markers, Marker{Pos: records[i].Pos, Depth: records[i].Depth})
		}
	}
	return p
}
