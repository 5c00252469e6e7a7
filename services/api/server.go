// services/api/server.go
package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"lightorchestra-go/bus"
	"lightorchestra-go/errcode"
	"lightorchestra-go/services/player"
	"lightorchestra-go/services/sensor"
	"lightorchestra-go/services/sysinfo"
	"lightorchestra-go/types"
	"lightorchestra-go/x/mathx"
)

const controlTimeout = 2 * time.Second

// Server is the device HTTP API. It holds no hardware state of its own: the
// latest reading and health snapshot are mirrored from retained bus values,
// and playback verbs are forwarded to the player over request/reply.
type Server struct {
	conn *bus.Connection

	mu      sync.RWMutex
	reading types.LightReading
	health  types.HealthInfo
}

func New(conn *bus.Connection) *Server {
	return &Server{conn: conn}
}

// Start launches the mirror loop tracking retained sensor/health values.
func (s *Server) Start(ctx context.Context) {
	go s.mirror(ctx)
}

func (s *Server) mirror(ctx context.Context) {
	valSub := s.conn.Subscribe(sensor.TopicValue)
	defer s.conn.Unsubscribe(valSub)
	healthSub := s.conn.Subscribe(sysinfo.TopicHealth)
	defer s.conn.Unsubscribe(healthSub)

	for {
		select {
		case <-ctx.Done():
			return
		case m := <-valSub.Channel():
			var r types.LightReading
			if types.Decode(m.Payload, &r) == nil {
				s.mu.Lock()
				s.reading = r
				s.mu.Unlock()
			}
		case m := <-healthSub.Channel():
			var h types.HealthInfo
			if types.Decode(m.Payload, &h) == nil {
				s.mu.Lock()
				s.health = h
				s.mu.Unlock()
			}
		}
	}
}

// Serve blocks serving the API on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()
	err := srv.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /sensor", s.handleSensor)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /tone", s.handleTone)
	mux.HandleFunc("POST /melody", s.handleMelody)
	mux.HandleFunc("POST /cancel", s.handleCancel)
	mux.HandleFunc("POST /mode", s.handleMode)

	// Known paths with the wrong method get a JSON 405; everything else 404.
	for _, p := range []string{"/sensor", "/health", "/tone", "/melody", "/cancel", "/mode"} {
		mux.HandleFunc(p, func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed", "")
		})
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found", "")
	})
	return mux
}

// -----------------------------------------------------------------------------
// Read endpoints
// -----------------------------------------------------------------------------

func (s *Server) handleSensor(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	reading := s.reading
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, reading)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	h := s.health
	reading := s.reading
	s.mu.RUnlock()
	h.Sensor = &reading
	writeJSON(w, http.StatusOK, h)
}

// -----------------------------------------------------------------------------
// Playback endpoints
// -----------------------------------------------------------------------------

// toneBody separates "absent" from explicit zero for the required field.
type toneBody struct {
	Freq *int64   `json:"freq"`
	Ms   *int64   `json:"ms"`
	Duty *float64 `json:"duty"`
}

func (s *Server) handleTone(w http.ResponseWriter, r *http.Request) {
	var body toneBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if body.Freq == nil || *body.Freq < 0 {
		writeError(w, http.StatusBadRequest, "Invalid tone parameters", "freq required")
		return
	}
	req := types.ToneRequest{
		FreqHz: uint32(*body.Freq),
		Ms:     types.DefaultToneMs,
		Duty:   types.DefaultDuty,
	}
	if body.Ms != nil && *body.Ms > 0 {
		req.Ms = uint32(*body.Ms)
	}
	if body.Duty != nil {
		req.Duty = mathx.Clamp(*body.Duty, 0, 1)
	}

	if !s.control(w, r.Context(), "tone", req) {
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status": "tone played",
		"freq":   req.FreqHz,
		"ms":     req.Ms,
		"duty":   req.Duty,
	})
}

func (s *Server) handleMelody(w http.ResponseWriter, r *http.Request) {
	req := types.MelodyRequest{GapMs: types.DefaultGapMs, Duty: types.DefaultDuty}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid melody payload", err.Error())
		return
	}
	if len(req.Notes) == 0 || len(req.Notes) > types.MaxMelodyNotes {
		writeError(w, http.StatusBadRequest, "Invalid melody payload", "notes must be [[freq, ms], ...]")
		return
	}
	req.Duty = mathx.Clamp(req.Duty, 0, 1)

	if !s.control(w, r.Context(), "melody", req) {
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status": "melody played",
		"length": len(req.Notes),
		"gap_ms": req.GapMs,
		"duty":   req.Duty,
	})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if !s.control(w, r.Context(), "cancel", nil) {
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "canceled"})
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	var req types.ModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if !s.control(w, r.Context(), "mode", req) {
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "mode set", "follow": req.Follow})
}

// control forwards a verb to the player and writes the failure response if
// any. Returns true when the caller should write its success body.
func (s *Server) control(w http.ResponseWriter, ctx context.Context, verb string, payload any) bool {
	ctx, cancel := context.WithTimeout(ctx, controlTimeout)
	defer cancel()

	reply, err := s.conn.RequestWait(ctx, s.conn.NewMessage(player.TopicControl.Append(verb), payload, false))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", string(errcode.Timeout))
		return false
	}
	if er, ok := reply.Payload.(types.ErrorReply); ok {
		writeError(w, http.StatusBadRequest, er.Error, "")
		return false
	}
	return true
}

// -----------------------------------------------------------------------------
// JSON plumbing
// -----------------------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		println("[api] response encode failed:", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg, detail string) {
	body := map[string]string{"error": msg}
	if detail != "" {
		body["detail"] = detail
	}
	writeJSON(w, status, body)
}
