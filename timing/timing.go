//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

// Package timing records the preprocessing phases and renders the
// timing, traffic, and latency reports.
package timing

import (
	"fmt"
	"io"
	"time"

	"github.com/markkurossi/tabulate"
	"github.com/markkurossi/tinier/p2p"
	"github.com/montanaflynn/stats"
)

// FileSize implements human readable byte counts.
type FileSize uint64

func (s FileSize) String() string {
	if s > 1000*1000*1000*1000 {
		return fmt.Sprintf("%dTB", s/(1000*1000*1000*1000))
	} else if s > 1000*1000*1000 {
		return fmt.Sprintf("%dGB", s/(1000*1000*1000))
	} else if s > 1000*1000 {
		return fmt.Sprintf("%dMB", s/(1000*1000))
	} else if s > 1000 {
		return fmt.Sprintf("%dkB", s/1000)
	} else {
		return fmt.Sprintf("%dB", s)
	}
}

// Timing records timing samples and renders a profiling report.
type Timing struct {
	Start   time.Time
	Samples []*Sample
}

// NewTiming creates a new Timing instance.
func NewTiming() *Timing {
	return &Timing{
		Start: time.Now(),
	}
}

// Sample adds a timing sample with label and data columns.
func (t *Timing) Sample(label string, cols []string) *Sample {
	start := t.Start
	if len(t.Samples) > 0 {
		start = t.Samples[len(t.Samples)-1].End
	}
	sample := &Sample{
		Label: label,
		Start: start,
		End:   time.Now(),
		Cols:  cols,
	}
	t.Samples = append(t.Samples, sample)
	return sample
}

// Print prints the profiling report to w.
func (t *Timing) Print(w io.Writer, xfer p2p.IOStats) {
	if len(t.Samples) == 0 {
		return
	}

	sent := xfer.Sent.Load()
	received := xfer.Recvd.Load()
	flushed := xfer.Flushed.Load()

	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Op").SetAlign(tabulate.ML)
	tab.Header("Time").SetAlign(tabulate.MR)
	tab.Header("%").SetAlign(tabulate.MR)
	tab.Header("Xfer").SetAlign(tabulate.MR)

	total := t.Samples[len(t.Samples)-1].End.Sub(t.Start)
	for _, sample := range t.Samples {
		row := tab.Row()
		row.Column(sample.Label)

		duration := sample.End.Sub(sample.Start)
		row.Column(duration.String())
		row.Column(percent(float64(duration), float64(total)))

		for _, col := range sample.Cols {
			row.Column(col)
		}

		for idx, sub := range sample.Samples {
			row := tab.Row()

			var prefix string
			if idx+1 >= len(sample.Samples) {
				prefix = "\u2570\u2574"
			} else {
				prefix = "\u251C\u2574"
			}
			row.Column(prefix + sub.Label).SetFormat(tabulate.FmtItalic)

			var d time.Duration
			if sub.Abs > 0 {
				d = sub.Abs
			} else {
				d = sub.End.Sub(sub.Start)
			}
			row.Column(d.String()).SetFormat(tabulate.FmtItalic)
			row.Column(percent(float64(d), float64(duration))).
				SetFormat(tabulate.FmtItalic)
		}
	}
	row := tab.Row()
	row.Column("Total").SetFormat(tabulate.FmtBold)
	row.Column(total.String()).SetFormat(tabulate.FmtBold)
	row.Column("").SetFormat(tabulate.FmtBold)
	row.Column(FileSize(sent + received).String()).SetFormat(tabulate.FmtBold)

	row = tab.Row()
	row.Column("\u251C\u2574Sent").SetFormat(tabulate.FmtItalic)
	row.Column("")
	row.Column(percent(float64(sent), float64(sent+received))).
		SetFormat(tabulate.FmtItalic)
	row.Column(FileSize(sent).String()).SetFormat(tabulate.FmtItalic)

	row = tab.Row()
	row.Column("\u251C\u2574Rcvd").SetFormat(tabulate.FmtItalic)
	row.Column("")
	row.Column(percent(float64(received), float64(sent+received))).
		SetFormat(tabulate.FmtItalic)
	row.Column(FileSize(received).String()).SetFormat(tabulate.FmtItalic)

	row = tab.Row()
	row.Column("\u2570\u2574Flcd").SetFormat(tabulate.FmtItalic)
	row.Column("")
	row.Column("")
	row.Column(fmt.Sprintf("%v", flushed)).SetFormat(tabulate.FmtItalic)

	tab.Print(w)
}

func percent(v, total float64) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", v/total*100)
}

// Sample contains information about one timing sample.
type Sample struct {
	Label   string
	Start   time.Time
	End     time.Time
	Abs     time.Duration
	Cols    []string
	Samples []*Sample
}

// SubSample adds a sub-sample for a timing sample.
func (s *Sample) SubSample(label string, end time.Time) {
	start := s.Start
	if len(s.Samples) > 0 {
		start = s.Samples[len(s.Samples)-1].End
	}
	s.Samples = append(s.Samples, &Sample{
		Label: label,
		Start: start,
		End:   end,
	})
}

// AbsSubSample adds an absolute sub-sample for a timing sample.
func (s *Sample) AbsSubSample(label string, duration time.Duration) {
	s.Samples = append(s.Samples, &Sample{
		Label: label,
		Abs:   duration,
	})
}

// Latency summarizes a series of operation latencies.
type Latency struct {
	Count  int
	Mean   time.Duration
	Median time.Duration
	P95    time.Duration
	Max    time.Duration
	StdDev time.Duration
}

// Summarize computes the latency summary of the durations.
func Summarize(durations []time.Duration) (Latency, error) {
	if len(durations) == 0 {
		return Latency{}, fmt.Errorf("no samples")
	}
	data := make(stats.Float64Data, len(durations))
	for i, d := range durations {
		data[i] = float64(d)
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return Latency{}, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return Latency{}, err
	}
	p95, err := stats.Percentile(data, 95)
	if err != nil {
		return Latency{}, err
	}
	maximum, err := stats.Max(data)
	if err != nil {
		return Latency{}, err
	}
	stddev, err := stats.StandardDeviation(data)
	if err != nil {
		return Latency{}, err
	}
	return Latency{
		Count:  len(durations),
		Mean:   time.Duration(mean),
		Median: time.Duration(median),
		P95:    time.Duration(p95),
		Max:    time.Duration(maximum),
		StdDev: time.Duration(stddev),
	}, nil
}

// PrintLatencies prints the latency summaries of the labeled
// operations to w.
func PrintLatencies(w io.Writer, labels []string, latencies []Latency) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Op").SetAlign(tabulate.ML)
	tab.Header("N").SetAlign(tabulate.MR)
	tab.Header("Mean").SetAlign(tabulate.MR)
	tab.Header("Median").SetAlign(tabulate.MR)
	tab.Header("P95").SetAlign(tabulate.MR)
	tab.Header("Max").SetAlign(tabulate.MR)
	tab.Header("σ").SetAlign(tabulate.MR)

	for i, l := range latencies {
		row := tab.Row()
		row.Column(labels[i])
		row.Column(fmt.Sprintf("%v", l.Count))
		row.Column(l.Mean.String())
		row.Column(l.Median.String())
		row.Column(l.P95.String())
		row.Column(l.Max.String())
		row.Column(l.StdDev.String())
	}
	tab.Print(w)
}
