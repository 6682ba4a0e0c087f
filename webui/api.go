package webui

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/dax8it/z-image-mps/history"
	"github.com/dax8it/z-image-mps/imagegen"
)

// flexString unmarshals either a JSON string or a JSON number into a
// string. Browser clients are inconsistent about quoting numeric form
// fields, and the seed in particular must stay a string end to end.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// generateRequest is the wire form of a generation call.
type generateRequest struct {
	Prompt         string     `json:"prompt"`
	NegativePrompt string     `json:"negative_prompt"`
	Steps          flexString `json:"steps"`
	Guidance       flexString `json:"guidance"`
	Aspect         string     `json:"aspect"`
	Height         flexString `json:"height"`
	Width          flexString `json:"width"`
	Seed           flexString `json:"seed"`
	Backend        string     `json:"backend"`
	Device         string     `json:"device"`
	Compile        bool       `json:"compile"`
	CPUOffload     bool       `json:"cpu_offload"`
	LoRAName       string     `json:"lora_name"`
	LoRAScale      flexString `json:"lora_scale"`
}

// generateResponse is the wire form of a completed generation.
// Image is base64-encoded PNG (encoding/json encodes []byte that way).
type generateResponse struct {
	ID         string `json:"id"`
	Info       string `json:"info"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Seed       int64  `json:"seed"`
	Device     string `json:"device"`
	DType      string `json:"dtype"`
	DurationMS int64  `json:"duration_ms"`
	Image      []byte `json:"image"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.config.Version,
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Prompt == "" {
		s.writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	id := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", id))

	raw := imagegen.RawGenerationInput{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Steps:          string(req.Steps),
		Guidance:       string(req.Guidance),
		Aspect:         req.Aspect,
		Height:         string(req.Height),
		Width:          string(req.Width),
		Seed:           string(req.Seed),
		Backend:        req.Backend,
		Device:         req.Device,
		Compile:        req.Compile,
		CPUOffload:     req.CPUOffload,
		LoRAName:       req.LoRAName,
		LoRAScale:      string(req.LoRAScale),
	}

	start := time.Now()
	result, err := s.processor.Generate(r.Context(), raw)
	if err != nil {
		logger.Error("generation failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	elapsed := time.Since(start)

	logger.Info("generation complete",
		zap.Int64("seed", result.Request.Seed),
		zap.Int("width", result.Request.Width),
		zap.Int("height", result.Request.Height),
		zap.Duration("duration", elapsed),
	)

	s.recordRun(r, id, result, elapsed)

	s.writeJSON(w, http.StatusOK, generateResponse{
		ID:         id,
		Info:       result.Info,
		Width:      result.Request.Width,
		Height:     result.Request.Height,
		Seed:       result.Request.Seed,
		Device:     string(result.Device),
		DType:      string(result.DType),
		DurationMS: elapsed.Milliseconds(),
		Image:      result.Image.PNG,
	})
}

// recordRun persists a completed generation. History failures are logged
// but never fail the request: the client already has its image.
func (s *Server) recordRun(r *http.Request, id string, result *imagegen.GenerateResult, elapsed time.Duration) {
	if s.runs == nil {
		return
	}

	thumb, err := history.Thumbnail(result.Image.PNG, s.config.ThumbnailSize)
	if err != nil {
		s.logger.Warn("thumbnail failed", zap.String("run_id", id), zap.Error(err))
		thumb = nil
	}

	req := result.Request
	run := history.Run{
		ID:               id,
		Prompt:           req.Prompt,
		NegativePrompt:   req.NegativePrompt,
		Steps:            req.Steps,
		GuidanceScale:    req.Guidance,
		Width:            req.Width,
		Height:           req.Height,
		Seed:             req.Seed,
		Device:           string(result.Device),
		DType:            string(result.DType),
		AttentionBackend: req.Config.AttentionBackend,
		Compile:          req.Config.Compile,
		CPUOffload:       req.Config.CPUOffload,
		LoRAName:         req.Config.LoRAName,
		LoRAScale:        req.Config.LoRAScale,
		Descriptor:       result.Info,
		Image:            result.Image.PNG,
		Thumbnail:        thumb,
		DurationMS:       int(elapsed.Milliseconds()),
	}
	if err := s.runs.InsertRun(r.Context(), run); err != nil {
		s.logger.Warn("record run failed", zap.String("run_id", id), zap.Error(err))
	}
}

// presetEntry is one row of the /api/presets response.
type presetEntry struct {
	Name   string `json:"name"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	table := s.processor.Presets()
	entries := make([]presetEntry, 0, len(table)+1)
	for _, name := range table.Names() {
		e := presetEntry{Name: name}
		if dims, ok := table[name]; ok {
			e.Width = dims.Width
			e.Height = dims.Height
		}
		entries = append(entries, e)
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleLoRAs(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, imagegen.AvailableLoRAs(s.config.LoRADir))
}

// runSummaryResponse is the wire form of one history list entry.
type runSummaryResponse struct {
	ID            string    `json:"id"`
	Prompt        string    `json:"prompt"`
	Steps         int       `json:"steps"`
	GuidanceScale float64   `json:"guidance_scale"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	Seed          int64     `json:"seed"`
	Device        string    `json:"device"`
	LoRAName      string    `json:"lora_name,omitempty"`
	Descriptor    string    `json:"descriptor"`
	DurationMS    int       `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 100 {
		limit = 100
	}

	summaries, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("list runs", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	out := make([]runSummaryResponse, 0, len(summaries))
	for _, sum := range summaries {
		out = append(out, runSummaryResponse{
			ID:            sum.ID,
			Prompt:        sum.Prompt,
			Steps:         sum.Steps,
			GuidanceScale: sum.GuidanceScale,
			Width:         sum.Width,
			Height:        sum.Height,
			Seed:          sum.Seed,
			Device:        sum.Device,
			LoRAName:      sum.LoRAName,
			Descriptor:    sum.Descriptor,
			DurationMS:    sum.DurationMS,
			CreatedAt:     sum.CreatedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, runSummaryResponse{
		ID:            run.ID,
		Prompt:        run.Prompt,
		Steps:         run.Steps,
		GuidanceScale: run.GuidanceScale,
		Width:         run.Width,
		Height:        run.Height,
		Seed:          run.Seed,
		Device:        run.Device,
		LoRAName:      run.LoRAName,
		Descriptor:    run.Descriptor,
		DurationMS:    run.DurationMS,
		CreatedAt:     run.CreatedAt,
	})
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	err := s.runs.DeleteRun(r.Context(), id)
	if errors.Is(err, history.ErrRunNotFound) {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		s.logger.Error("delete run", zap.String("run_id", id), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to delete run")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRunImage(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	if len(run.Image) == 0 {
		s.writeError(w, http.StatusNotFound, "run has no stored image")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(run.Image)
}

func (s *Server) handleRunThumbnail(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	if len(run.Thumbnail) == 0 {
		s.writeError(w, http.StatusNotFound, "run has no thumbnail")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(run.Thumbnail)
}

func (s *Server) lookupRun(w http.ResponseWriter, r *http.Request) (history.Run, bool) {
	id := mux.Vars(r)["id"]
	run, err := s.runs.GetRun(r.Context(), id)
	if errors.Is(err, history.ErrRunNotFound) {
		s.writeError(w, http.StatusNotFound, "run not found")
		return history.Run{}, false
	}
	if err != nil {
		s.logger.Error("get run", zap.String("run_id", id), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to load run")
		return history.Run{}, false
	}
	return run, true
}
