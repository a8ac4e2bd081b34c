package board

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
	"github.com/nineyards/whiteboard/backend-go/internal/render"
	"github.com/nineyards/whiteboard/backend-go/internal/storage"
	"github.com/nineyards/whiteboard/backend-go/internal/typeid"
)

var ErrBoardOpen = errors.New("board is open for editing")

const maxFrameSize = 4096

// Live exposes boards currently open in an editing session.
type Live interface {
	Live(boardID string) (*document.Board, bool)
}

type Handler struct {
	store  storage.Store
	live   Live
	width  int
	height int
}

// NewHandler serves boards from store. live may be nil; when set, reads
// prefer the in-memory state of an open board and writes to an open board
// are refused.
func NewHandler(store storage.Store, live Live, frameWidth, frameHeight int) *Handler {
	return &Handler{store: store, live: live, width: frameWidth, height: frameHeight}
}

// Register mounts the board routes on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/boards", h.List).Methods("GET")
	r.HandleFunc("/boards", h.Create).Methods("POST")
	r.HandleFunc("/boards/{boardId}", withBoardID(h.Get)).Methods("GET")
	r.HandleFunc("/boards/{boardId}", withBoardID(h.Update)).Methods("PUT")
	r.HandleFunc("/boards/{boardId}", withBoardID(h.Delete)).Methods("DELETE")
	r.HandleFunc("/boards/{boardId}/snapshots", withBoardID(h.ListSnapshots)).Methods("GET")
	r.HandleFunc("/boards/{boardId}/snapshots/{version:[0-9]+}", withBoardID(h.GetSnapshot)).Methods("GET")
	r.HandleFunc("/boards/{boardId}/frame.png", withBoardID(h.Frame)).Methods("GET")
}

// withBoardID answers 404 for ids that cannot name a board.
func withBoardID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := typeid.Validate(mux.Vars(r)["boardId"], typeid.PrefixBoard); err != nil {
			handleServiceError(w, fmt.Errorf("%w: %w", storage.ErrNotFound, err))
			return
		}
		next(w, r)
	}
}

type createRequest struct {
	Name   string `json:"name"`
	Sample bool   `json:"sample"`
}

type updateRequest struct {
	Name       string              `json:"name"`
	Background string              `json:"background"`
	Viewport   *document.Viewport  `json:"viewport"`
	Elements   []*document.Element `json:"elements"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	boards, err := h.store.List(r.Context())
	if err != nil {
		slog.Error("list boards failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, boards)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	b, err := h.store.Create(r.Context(), req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if req.Sample {
		sample := document.NewSampleBoard(b.ID)
		b.Elements = sample.Elements
		if b, err = h.store.Save(r.Context(), b); err != nil {
			handleServiceError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.load(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	boardID := mux.Vars(r)["boardId"]
	if h.isLive(boardID) {
		handleServiceError(w, ErrBoardOpen)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	b, err := h.store.Get(r.Context(), boardID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	b.Name = req.Name
	if req.Background != "" {
		b.Background = req.Background
	}
	if req.Viewport != nil {
		b.Viewport = req.Viewport.Clamped()
	}
	if req.Elements != nil {
		b.Elements = req.Elements
	}

	saved, err := h.store.Save(r.Context(), b)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	boardID := mux.Vars(r)["boardId"]
	if h.isLive(boardID) {
		handleServiceError(w, ErrBoardOpen)
		return
	}

	if err := h.store.Delete(r.Context(), boardID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	boardID := mux.Vars(r)["boardId"]

	snaps, err := h.store.Snapshots(r.Context(), boardID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snaps)
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	version, err := strconv.Atoi(vars["version"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid version"})
		return
	}

	b, err := h.store.Revision(r.Context(), vars["boardId"], version)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, b)
}

// Frame renders the board to a PNG. width and height query parameters
// override the default frame size.
func (h *Handler) Frame(w http.ResponseWriter, r *http.Request) {
	b, err := h.load(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	width, height, ok := h.frameSize(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid frame size"})
		return
	}

	surface, err := render.NewRasterSurface(width, height)
	if err != nil {
		slog.Error("create frame surface", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	defer surface.Close()

	render.NewRenderer(surface, render.NewSketchGenerator()).Render(render.Frame{
		Elements:   b.Elements,
		Viewport:   b.Viewport,
		Background: b.Background,
	})
	if err := surface.Err(); err != nil {
		slog.Warn("frame drawn with errors", "board", b.ID, "error", err)
	}

	var buf bytes.Buffer
	if err := surface.EncodePNG(&buf); err != nil {
		slog.Error("encode frame", "board", b.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *Handler) load(r *http.Request) (*document.Board, error) {
	boardID := mux.Vars(r)["boardId"]
	if h.live != nil {
		if b, ok := h.live.Live(boardID); ok {
			return b, nil
		}
	}
	return h.store.Get(r.Context(), boardID)
}

func (h *Handler) isLive(boardID string) bool {
	if h.live == nil {
		return false
	}
	_, ok := h.live.Live(boardID)
	return ok
}

func (h *Handler) frameSize(r *http.Request) (int, int, bool) {
	width, height := h.width, h.height
	q := r.URL.Query()
	for _, p := range []struct {
		key string
		dst *int
	}{{"width", &width}, {"height", &height}} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		*p.dst = n
	}
	if width <= 0 || height <= 0 || width > maxFrameSize || height > maxFrameSize {
		return 0, 0, false
	}
	return width, height, true
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, storage.ErrNoName):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
	case errors.Is(err, ErrBoardOpen):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "board is open for editing"})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
