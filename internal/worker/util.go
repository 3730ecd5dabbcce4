package worker

import (
	"errors"
	"fmt"
)

var ErrLadderMismatch = errors.New("ladder: bitrates and qualities differ in length")

// Rung is one step of a bitrate ladder with its subjective quality score
// in percent.
type Rung struct {
	Kbps    int
	Quality float64
}

// Ladder is swept in the order given; it is never sorted.
type Ladder []Rung

// NewLadder pairs bitrates with their quality scores.
func NewLadder(kbps []int, qualities []float64) (Ladder, error) {
	if len(kbps) != len(qualities) {
		return nil, fmt.Errorf("%w (%d bitrates, %d qualities)", ErrLadderMismatch, len(kbps), len(qualities))
	}
	ladder := make(Ladder, len(kbps))
	for i := range kbps {
		if kbps[i] <= 0 {
			return nil, fmt.Errorf("ladder: bitrate %d at index %d is not positive", kbps[i], i)
		}
		if qualities[i] < 0 || qualities[i] > 100 {
			return nil, fmt.Errorf("ladder: quality %v at index %d is outside 0-100", qualities[i], i)
		}
		ladder[i] = Rung{Kbps: kbps[i], Quality: qualities[i]}
	}
	return ladder, nil
}

// DefaultVideoLadder returns the six video rungs from 500 to 5000 kbps.
// Quality rises with bitrate.
func DefaultVideoLadder() Ladder {
	return Ladder{
		{500, 30},
		{1500, 50},
		{2000, 70},
		{3000, 85},
		{4000, 90},
		{5000, 95},
	}
}

// DefaultAudioLadder returns the seven audio rungs, highest bitrate first.
func DefaultAudioLadder() Ladder {
	return Ladder{
		{320, 95},
		{256, 95},
		{192, 85},
		{160, 80},
		{128, 60},
		{96, 30},
		{64, 20},
	}
}

func (l Ladder) Bitrates() []int {
	out := make([]int, len(l))
	for i, r := range l {
		out[i] = r.Kbps
	}
	return out
}

func (l Ladder) Qualities() []float64 {
	out := make([]float64, len(l))
	for i, r := range l {
		out[i] = r.Quality
	}
	return out
}
