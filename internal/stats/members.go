package stats

import (
	"math"
	"sort"

	"github.com/bookclubapp/bookclub-server/internal/domain"
)

// MemberStats summarizes one member's rating behavior.
type MemberStats struct {
	Name    string   `json:"name"`
	Count   int      `json:"count"`
	Average *float64 `json:"average,omitempty"`
	StdDev  *float64 `json:"std_dev,omitempty"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Picked  int      `json:"picked"`
}

// MemberComparison computes per-member rating stats in roster order. Members
// who never rated still appear, with a zero count, so the dashboard table
// always shows the whole roster.
func MemberComparison(reports []domain.BookReport, roster *domain.Roster) []MemberStats {
	out := make([]MemberStats, 0, len(roster.Members))
	for _, name := range roster.Names() {
		ms := MemberStats{Name: name}
		var values []float64
		for i := range reports {
			r := &reports[i]
			if v, ok := r.Ratings[name]; ok {
				values = append(values, v)
			}
			if r.PickedBy == name {
				ms.Picked++
			}
		}
		ms.Count = len(values)
		if len(values) > 0 {
			mean, sd := meanStdDev(values)
			lo, hi := minMax(values)
			ms.Average = &mean
			ms.StdDev = &sd
			ms.Min = &lo
			ms.Max = &hi
		}
		out = append(out, ms)
	}
	return out
}

// Alignment is the pairwise agreement between two members: the Pearson
// correlation of their ratings over the books both rated.
type Alignment struct {
	MemberA     string   `json:"member_a"`
	MemberB     string   `json:"member_b"`
	SharedBooks int      `json:"shared_books"`
	Correlation *float64 `json:"correlation,omitempty"`
}

// MemberAlignment computes the correlation for every member pair, in roster
// order. Pairs with fewer than three shared books, or where either member's
// ratings have no variance, get a nil correlation instead of a misleading
// number.
func MemberAlignment(reports []domain.BookReport, roster *domain.Roster) []Alignment {
	names := roster.Names()
	out := make([]Alignment, 0, len(names)*(len(names)-1)/2)

	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			a, b := names[i], names[j]
			var va, vb []float64
			for k := range reports {
				r := &reports[k]
				ra, okA := r.Ratings[a]
				rb, okB := r.Ratings[b]
				if okA && okB {
					va = append(va, ra)
					vb = append(vb, rb)
				}
			}
			al := Alignment{MemberA: a, MemberB: b, SharedBooks: len(va)}
			if len(va) >= 3 {
				if corr, ok := pearson(va, vb); ok {
					al.Correlation = &corr
				}
			}
			out = append(out, al)
		}
	}
	return out
}

// MostAligned returns the pair with the highest correlation, or nil when no
// pair has one.
func MostAligned(alignments []Alignment) *Alignment {
	var best *Alignment
	for i := range alignments {
		a := &alignments[i]
		if a.Correlation == nil {
			continue
		}
		if best == nil || *a.Correlation > *best.Correlation {
			best = a
		}
	}
	return best
}

func pearson(xs, ys []float64) (float64, bool) {
	n := float64(len(xs))
	meanX, _ := meanStdDev(xs)
	meanY, _ := meanStdDev(ys)

	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}
	return (cov / n) / (math.Sqrt(varX/n) * math.Sqrt(varY/n)), true
}

func meanStdDev(values []float64) (mean, sd float64) {
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	for _, v := range values {
		d := v - mean
		sd += d * d
	}
	sd = math.Sqrt(sd / float64(len(values)))
	return mean, sd
}

func minMax(values []float64) (lo, hi float64) {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sorted[0], sorted[len(sorted)-1]
}
