package telemetry

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase is one timed part of a frame.
type Phase uint8

const (
	PhaseInput Phase = iota
	PhaseStep
	PhaseValidate
	PhaseRender
	numPhases
)

var phaseNames = [numPhases]string{"input", "step", "validate", "render"}

func (p Phase) String() string {
	if p < numPhases {
		return phaseNames[p]
	}
	return "unknown"
}

// Phases returns every phase in frame order.
func Phases() []Phase {
	out := make([]Phase, numPhases)
	for i := range out {
		out[i] = Phase(i)
	}
	return out
}

// frameSample is the timing of one game frame. A frame may enter the same
// phase several times (one step per owed tick); the durations add up.
type frameSample struct {
	total  time.Duration
	phases [numPhases]time.Duration
}

// PerfCollector keeps the last window of frame timings in a ring.
type PerfCollector struct {
	ring  []frameSample
	next  int
	count int

	cur        frameSample
	frameStart time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	lastPresent time.Time
	present     time.Duration
}

// NewPerfCollector keeps the last window frames. A window below 1 means 60.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{ring: make([]frameSample, window)}
}

// BeginFrame starts timing a frame.
func (p *PerfCollector) BeginFrame() {
	p.frameStart = time.Now()
	p.cur = frameSample{}
	p.inPhase = false
}

// Enter closes the running phase, if any, and starts timing ph.
func (p *PerfCollector) Enter(ph Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase = ph
	p.phaseStart = now
	p.inPhase = true
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
		p.inPhase = false
	}
}

// EndFrame closes the running phase and stores the frame in the ring.
func (p *PerfCollector) EndFrame() {
	now := time.Now()
	p.closePhase(now)
	p.cur.total = now.Sub(p.frameStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	p.count = min(p.count+1, len(p.ring))
}

// MarkPresent records that a frame reached the screen, for FPS.
func (p *PerfCollector) MarkPresent() {
	now := time.Now()
	if !p.lastPresent.IsZero() {
		p.present = now.Sub(p.lastPresent)
	}
	p.lastPresent = now
}

// PhaseTiming is the window average of one phase.
type PhaseTiming struct {
	Avg time.Duration
	Pct float64 // share of the average frame
}

// PerfStats summarizes the frames in the window.
type PerfStats struct {
	Frames      int
	AvgFrame    time.Duration
	StdDevFrame time.Duration
	MinFrame    time.Duration
	MaxFrame    time.Duration
	Phases      [numPhases]PhaseTiming

	// FrameRate is how many frames per second the work alone would allow.
	FrameRate float64

	// Measured between MarkPresent calls.
	PresentInterval time.Duration
	FPS             float64
}

// Phase returns the timing of ph.
func (s PerfStats) Phase(ph Phase) PhaseTiming {
	if ph >= numPhases {
		return PhaseTiming{}
	}
	return s.Phases[ph]
}

// Stats summarizes the window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{Frames: p.count, PresentInterval: p.present}
	if p.present > 0 {
		s.FPS = float64(time.Second) / float64(p.present)
	}
	if p.count == 0 {
		return s
	}

	totals := make([]float64, p.count)
	var phaseSum [numPhases]time.Duration
	for i, f := range p.ring[:p.count] {
		totals[i] = float64(f.total)
		if i == 0 || f.total < s.MinFrame {
			s.MinFrame = f.total
		}
		s.MaxFrame = max(s.MaxFrame, f.total)
		for ph, d := range f.phases {
			phaseSum[ph] += d
		}
	}

	mean, std := stat.MeanStdDev(totals, nil)
	if p.count < 2 {
		std = 0
	}
	s.AvgFrame = time.Duration(mean)
	s.StdDevFrame = time.Duration(std)
	if s.AvgFrame > 0 {
		s.FrameRate = float64(time.Second) / float64(s.AvgFrame)
	}

	for ph, sum := range phaseSum {
		avg := sum / time.Duration(p.count)
		s.Phases[ph].Avg = avg
		if s.AvgFrame > 0 {
			s.Phases[ph].Pct = float64(avg) / float64(s.AvgFrame) * 100
		}
	}
	return s
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("frames", s.Frames),
		slog.Int64("avg_frame_us", s.AvgFrame.Microseconds()),
		slog.Int64("std_frame_us", s.StdDevFrame.Microseconds()),
		slog.Int64("max_frame_us", s.MaxFrame.Microseconds()),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for _, ph := range Phases() {
		if pct := s.Phases[ph].Pct; pct >= 0.1 {
			attrs = append(attrs, slog.Float64(ph.String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// LogStats logs the summary at info level.
func (s PerfStats) LogStats() {
	slog.Info("perf", "frame", s)
}

// PerfRow is one line of perf.csv.
type PerfRow struct {
	WindowEnd   int64   `csv:"window_end"`
	Frames      int     `csv:"frames"`
	AvgFrameUS  int64   `csv:"avg_frame_us"`
	StdFrameUS  int64   `csv:"std_frame_us"`
	MinFrameUS  int64   `csv:"min_frame_us"`
	MaxFrameUS  int64   `csv:"max_frame_us"`
	FPS         float64 `csv:"fps"`
	InputPct    float64 `csv:"input_pct"`
	StepPct     float64 `csv:"step_pct"`
	ValidatePct float64 `csv:"validate_pct"`
	RenderPct   float64 `csv:"render_pct"`
}

// Row flattens s for CSV output.
func (s PerfStats) Row(windowEnd int64) PerfRow {
	return PerfRow{
		WindowEnd:   windowEnd,
		Frames:      s.Frames,
		AvgFrameUS:  s.AvgFrame.Microseconds(),
		StdFrameUS:  s.StdDevFrame.Microseconds(),
		MinFrameUS:  s.MinFrame.Microseconds(),
		MaxFrameUS:  s.MaxFrame.Microseconds(),
		FPS:         s.FPS,
		InputPct:    s.Phases[PhaseInput].Pct,
		StepPct:     s.Phases[PhaseStep].Pct,
		ValidatePct: s.Phases[PhaseValidate].Pct,
		RenderPct:   s.Phases[PhaseRender].Pct,
	}
}
