package api

import (
	"math"
	"net/http"
	"strconv"

	"github.com/okian/twinkle/internal/domain/scene"
	"github.com/okian/twinkle/internal/domain/timeline"
)

// SceneProvider returns the scene currently playing.
type SceneProvider interface {
	Snapshot() (scene.Scene, bool)
}

// TimelineHandler serves the generated keyframes.
type TimelineHandler struct {
	scenes SceneProvider
}

// NewTimelineHandler creates a new timeline handler.
func NewTimelineHandler(scenes SceneProvider) *TimelineHandler {
	return &TimelineHandler{scenes: scenes}
}

// HandleTimeline handles GET /timeline requests.
func (h *TimelineHandler) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	sc, ok := h.scenes.Snapshot()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no_scene", ErrNoScene)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

type sampleResponse struct {
	Generation string                                   `json:"generation"`
	Time       float64                                  `json:"t"`
	LoopTime   float64                                  `json:"loop_time"`
	Targets    map[string]map[timeline.Property]float64 `json:"targets"`
}

// SampleHandler evaluates the scene at an explicit time.
type SampleHandler struct {
	scenes SceneProvider
}

// NewSampleHandler creates a new sample handler.
func NewSampleHandler(scenes SceneProvider) *SampleHandler {
	return &SampleHandler{scenes: scenes}
}

// HandleSample handles GET /sample?t=<seconds> requests.
func (h *SampleHandler) HandleSample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	raw := r.URL.Query().Get("t")
	if raw == "" {
		raw = "0"
	}
	t, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(t) || math.IsInf(t, 0) {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	sc, ok := h.scenes.Snapshot()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no_scene", ErrNoScene)
		return
	}
	writeJSON(w, http.StatusOK, sampleResponse{
		Generation: sc.Generation,
		Time:       t,
		LoopTime:   loopTime(t, sc.Loop),
		Targets:    sc.Sample(t),
	})
}

func loopTime(t, loop float64) float64 {
	if loop <= 0 {
		return 0
	}
	m := math.Mod(t, loop)
	if m < 0 {
		m += loop
	}
	return m
}
