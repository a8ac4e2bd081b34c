package board

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
	"github.com/nineyards/whiteboard/backend-go/internal/storage"
)

type liveBoards map[string]*document.Board

func (l liveBoards) Live(id string) (*document.Board, bool) {
	b, ok := l[id]
	return b, ok
}

func newTestServer(t *testing.T, live Live) (*mux.Router, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	r := mux.NewRouter()
	NewHandler(store, live, 64, 48).Register(r)
	return r, store
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBoard(t *testing.T, rec *httptest.ResponseRecorder) *document.Board {
	t.Helper()
	var b document.Board
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&b))
	return &b
}

func TestCreateGetList(t *testing.T) {
	r, _ := newTestServer(t, nil)

	rec := do(r, "POST", "/boards", createRequest{Name: "Roadmap"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBoard(t, rec)
	assert.Equal(t, "Roadmap", created.Name)
	assert.Equal(t, 1, created.Version)

	rec = do(r, "GET", "/boards/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decodeBoard(t, rec).ID)

	rec = do(r, "GET", "/boards", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []storage.Summary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "Roadmap", list[0].Name)

	rec = do(r, "GET", "/boards/board_missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(r, "POST", "/boards", createRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest("POST", "/boards", bytes.NewBufferString("{"))
	bad := httptest.NewRecorder()
	r.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestCreateSample(t *testing.T) {
	r, _ := newTestServer(t, nil)

	rec := do(r, "POST", "/boards", createRequest{Name: "Demo", Sample: true})
	require.Equal(t, http.StatusCreated, rec.Code)
	b := decodeBoard(t, rec)
	assert.NotEmpty(t, b.Elements)
	assert.Equal(t, 2, b.Version)
}

func TestUpdateAndSnapshots(t *testing.T) {
	r, store := newTestServer(t, nil)
	b, err := store.Create(context.Background(), "Plan")
	require.NoError(t, err)

	rec := do(r, "PUT", "/boards/"+b.ID, updateRequest{
		Background: "#eeeeee",
		Viewport:   &document.Viewport{Zoom: 100},
		Elements:   []*document.Element{{ID: "el_1", Type: document.TypeEllipse, Width: 20, Height: 20}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	saved := decodeBoard(t, rec)
	assert.Equal(t, 2, saved.Version)
	assert.Equal(t, "Plan", saved.Name)
	assert.Equal(t, "#eeeeee", saved.Background)
	assert.Equal(t, document.MaxZoom, saved.Viewport.Zoom)
	require.Len(t, saved.Elements, 1)

	rec = do(r, "GET", "/boards/"+b.ID+"/snapshots", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snaps []document.Snapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snaps))
	require.Len(t, snaps, 2)
	assert.Equal(t, 2, snaps[0].Version)

	rec = do(r, "GET", "/boards/"+b.ID+"/snapshots/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBoard(t, rec).Elements)

	rec = do(r, "GET", "/boards/"+b.ID+"/snapshots/9", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(r, "PUT", "/boards/board_missing", updateRequest{Name: "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDelete(t *testing.T) {
	r, store := newTestServer(t, nil)
	b, err := store.Create(context.Background(), "Scratch")
	require.NoError(t, err)

	rec := do(r, "DELETE", "/boards/"+b.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(r, "DELETE", "/boards/"+b.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLiveBoardsAreReadOnly(t *testing.T) {
	live := liveBoards{}
	r, store := newTestServer(t, live)
	b, err := store.Create(context.Background(), "Shared")
	require.NoError(t, err)

	open := b.Clone()
	open.Elements = []*document.Element{{ID: "el_live", Type: document.TypeRectangle, Width: 5, Height: 5}}
	live[b.ID] = open

	rec := do(r, "GET", "/boards/"+b.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBoard(t, rec)
	require.Len(t, got.Elements, 1)
	assert.Equal(t, "el_live", got.Elements[0].ID)

	rec = do(r, "PUT", "/boards/"+b.ID, updateRequest{Name: "Renamed"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = do(r, "DELETE", "/boards/"+b.ID, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestFramePNG(t *testing.T) {
	r, store := newTestServer(t, nil)
	b, err := store.Create(context.Background(), "Pic")
	require.NoError(t, err)
	b.Elements = document.NewSampleBoard(b.ID).Elements
	_, err = store.Save(context.Background(), b)
	require.NoError(t, err)

	rec := do(r, "GET", "/boards/"+b.ID+"/frame.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG\r\n\x1a\n")))

	rec = do(r, "GET", "/boards/"+b.ID+"/frame.png?width=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(r, "GET", "/boards/"+b.ID+"/frame.png?height=big", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(r, "GET", "/boards/board_missing/frame.png", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMalformedBoardIDIsNotFound(t *testing.T) {
	r, store := newTestServer(t, nil)
	_, err := store.Create(context.Background(), "Real")
	require.NoError(t, err)

	for _, path := range []string{"/boards/not-a-board", "/boards/el_01h455vb4pex5vsknk084sn02q", "/boards/x/snapshots"} {
		rec := do(r, "GET", path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}
