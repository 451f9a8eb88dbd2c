package main

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)
	clickFreq  = 1800.0
	clickLen   = 25 * time.Millisecond
)

// clicker plays a short tick through the speaker.
type clicker struct{}

func newClicker() (*clicker, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return nil, err
	}
	return &clicker{}, nil
}

// Click queues one tick. It does not block.
func (c *clicker) Click() {
	speaker.Play(beep.Take(sampleRate.N(clickLen), newClickTone(sampleRate, clickFreq, clickLen)))
}

func (c *clicker) Close() {
	speaker.Clear()
	speaker.Close()
}

// clickTone is a sine burst with an exponential decay envelope.
type clickTone struct {
	sr    beep.SampleRate
	freq  float64
	decay float64 // samples per e-fold
	pos   int
}

func newClickTone(sr beep.SampleRate, freq float64, length time.Duration) *clickTone {
	return &clickTone{
		sr:    sr,
		freq:  freq,
		decay: float64(sr.N(length)) / 5,
	}
}

func (g *clickTone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		env := 0.25 * math.Exp(-float64(g.pos)/g.decay)
		s := env * math.Sin(2*math.Pi*g.freq*t)
		samples[i][0] = s
		samples[i][1] = s
		g.pos++
	}
	return len(samples), true
}

func (g *clickTone) Err() error {
	return nil
}
