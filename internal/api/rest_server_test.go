package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/annel0/afterlife-world/internal/afterlife"
	"github.com/annel0/afterlife-world/internal/config"
	"github.com/annel0/afterlife-world/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*RestServer, *world.Registry, *afterlife.Manager) {
	t.Helper()

	cfg := config.NewStore(map[string]interface{}{
		"afterlife": map[string]interface{}{
			"enabled":   true,
			"generator": "flat",
		},
	})
	registry := world.NewRegistry(t.TempDir())
	t.Cleanup(registry.CloseAll)

	manager := afterlife.NewManager(cfg, registry, nil)
	return NewRestServer(Config{Addr: ":0"}, manager, registry), registry, manager
}

func doRequest(rs *RestServer, method, path string, body []byte) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rs.Engine().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rs, _, _ := newTestServer(t)

	rec := doRequest(rs, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatus_NotLoaded(t *testing.T) {
	rs, _, _ := newTestServer(t)

	rec := doRequest(rs, http.MethodGet, "/api/afterlife/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["loaded"])
}

func TestStatus_Loaded(t *testing.T) {
	rs, _, manager := newTestServer(t)
	require.NoError(t, manager.Init(false, nil))

	rec := doRequest(rs, http.MethodGet, "/api/afterlife/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Loaded bool `json:"loaded"`
		World  struct {
			Name        string `json:"name"`
			Environment string `json:"environment"`
		} `json:"world"`
		Border struct {
			Size float64 `json:"size"`
		} `json:"border"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Loaded)
	assert.Equal(t, "afterlife", resp.World.Name)
	assert.Equal(t, "NORMAL", resp.World.Environment)
	assert.Equal(t, float64(256), resp.Border.Size, "Размер границы по умолчанию")
}

func TestSpawn(t *testing.T) {
	rs, _, manager := newTestServer(t)

	rec := doRequest(rs, http.MethodGet, "/api/afterlife/spawn", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "До инициализации спавн недоступен")

	require.NoError(t, manager.Init(false, nil))
	rec = doRequest(rs, http.MethodGet, "/api/afterlife/spawn", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var loc afterlife.Location
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loc))
	assert.Equal(t, "afterlife", loc.World)
	assert.Equal(t, 0.5, loc.X)
}

func TestRegenerate(t *testing.T) {
	rs, registry, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]int64{"seed": 555})
	rec := doRequest(rs, http.MethodPost, "/api/afterlife/regenerate", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OK       bool                       `json:"ok"`
		Reason   string                     `json:"reason"`
		Messages []afterlife.NotifyMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.NotEmpty(t, resp.Messages, "Сообщения нотификатора возвращаются вызывающему")

	w := registry.Find("afterlife")
	require.NotNil(t, w, "Мир существует после регенерации")
	assert.Equal(t, int64(555), w.Seed())
}

func TestRegenerate_UnloadRefused(t *testing.T) {
	rs, registry, manager := newTestServer(t)
	require.NoError(t, manager.Init(false, nil))

	w := registry.Find("afterlife")
	w.Retain()
	defer w.Release()

	rec := doRequest(rs, http.MethodPost, "/api/afterlife/regenerate", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		OK     bool   `json:"ok"`
		Reason string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, "unload failed", resp.Reason)
}

func TestRegenerate_BadBody(t *testing.T) {
	rs, _, _ := newTestServer(t)

	rec := doRequest(rs, http.MethodPost, "/api/afterlife/regenerate", []byte("не json"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWorlds(t *testing.T) {
	rs, registry, manager := newTestServer(t)
	_, err := registry.Create("world", world.CreateOptions{Generator: world.GeneratorVoid})
	require.NoError(t, err)
	require.NoError(t, manager.Init(false, nil))

	rec := doRequest(rs, http.MethodGet, "/api/worlds", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Worlds []struct {
			Name string `json:"name"`
		} `json:"worlds"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Worlds, 2)
	assert.Equal(t, "world", resp.Worlds[0].Name, "Миры перечисляются в порядке создания")
	assert.Equal(t, "afterlife", resp.Worlds[1].Name)
}
