package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/rankdesk/rankdesk/internal/adapters/catalog"
	"github.com/rankdesk/rankdesk/internal/adapters/http/api"
	service "github.com/rankdesk/rankdesk/internal/app"
	"github.com/rankdesk/rankdesk/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type fakeCatalog struct {
	games   map[int64]catalog.GameConfig
	players map[int64]string
}

func (f *fakeCatalog) GameConfig(_ context.Context, id int64) (catalog.GameConfig, error) {
	g, ok := f.games[id]
	if !ok {
		return catalog.GameConfig{}, catalog.ErrGameNotFound
	}
	return g, nil
}

func (f *fakeCatalog) PlayerName(_ context.Context, id int64) (string, error) {
	name, ok := f.players[id]
	if !ok {
		return "", catalog.ErrPlayerNotFound
	}
	return name, nil
}

func (f *fakeCatalog) ListGames(_ context.Context) ([]catalog.GameConfig, error) {
	out := make([]catalog.GameConfig, 0, len(f.games))
	for _, g := range f.games {
		out = append(out, g)
	}
	return out, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	svc := service.New(&fakeCatalog{
		games: map[int64]catalog.GameConfig{
			7: {
				ID:                 7,
				Name:               "Crokinole",
				ScoringDirection:   "higher_wins",
				SupportsIndividual: true,
				SupportsTeam:       true,
				MinPlayers:         2,
				MaxPlayers:         8,
				MinPlayersPerTeam:  2,
				MaxPlayersPerTeam:  4,
				MinTeams:           2,
				MaxTeams:           4,
			},
		},
		players: map[int64]string{101: "Ada", 102: "Grace"},
	},
		service.WithWorkerCount(1),
		service.WithQueueSize(16),
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)

	router := mux.NewRouter()
	api.NewServer(svc, svc, 100).Register(context.Background(), router)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestEditorRoutes(t *testing.T) {
	Convey("Given a running API server", t, func() {
		ts := newTestServer(t)

		Convey("When an editor is opened", func() {
			resp, view := postJSON(t, ts.URL+"/editors", map[string]any{"game_id": 7})
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)
			editorID, _ := view["id"].(string)
			So(editorID, ShouldNotBeEmpty)
			So(view["operation"], ShouldEqual, "add")

			Convey("Then it can be fetched back", func() {
				resp, fetched := getJSON(t, ts.URL+"/editors/"+editorID)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(fetched["game"], ShouldEqual, "Crokinole")
			})

			Convey("Then resizing clamps to the game bounds", func() {
				resp, resized := postJSON(t, ts.URL+"/editors/"+editorID+"/resize",
					map[string]any{"kind": "players", "rows": 50})
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resized["players"], ShouldHaveLength, 8)
			})

			Convey("Then rows accept values and a submission is accepted", func() {
				for i, p := range []int64{101, 102} {
					resp, _ := postJSON(t, ts.URL+"/editors/"+editorID+"/rows", map[string]any{
						"row": i, "player_id": p, "score": 10 - i, "weight": 1,
					})
					So(resp.StatusCode, ShouldEqual, http.StatusOK)
				}

				resp, payload := postJSON(t, ts.URL+"/editors/"+editorID+"/submission",
					map[string]any{"idempotency_key": "k-1", "reconcile": true})
				So(resp.StatusCode, ShouldEqual, http.StatusAccepted)
				So(payload["operation"], ShouldEqual, "add")

				Convey("And a retry with the same key conflicts", func() {
					resp, _ := postJSON(t, ts.URL+"/editors/"+editorID+"/submission",
						map[string]any{"idempotency_key": "k-1"})
					So(resp.StatusCode, ShouldEqual, http.StatusConflict)
				})
			})

			Convey("Then switching mode folds the table into teams", func() {
				resp, _ := postJSON(t, ts.URL+"/editors/"+editorID+"/resize",
					map[string]any{"kind": "players", "rows": 4})
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				for i, p := range []int64{101, 102, 103, 104} {
					_, _ = postJSON(t, ts.URL+"/editors/"+editorID+"/rows", map[string]any{
						"row": i, "player_id": p, "position": i + 1, "weight": 1,
					})
				}
				resp, teamed := postJSON(t, ts.URL+"/editors/"+editorID+"/mode",
					map[string]any{"mode": "team"})
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(teamed["mode"], ShouldEqual, "team")
				So(teamed["teams"], ShouldHaveLength, 2)
			})

			Convey("Then closing it frees the id", func() {
				req, err := http.NewRequest(http.MethodDelete, ts.URL+"/editors/"+editorID, nil)
				So(err, ShouldBeNil)
				resp, err := http.DefaultClient.Do(req)
				So(err, ShouldBeNil)
				resp.Body.Close()
				So(resp.StatusCode, ShouldEqual, http.StatusNoContent)

				resp, _ = getJSON(t, ts.URL+"/editors/"+editorID)
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When an editor is opened over a recorded session", func() {
			recorded := map[string]any{
				"mode": "individual",
				"ranks": []map[string]any{
					{"id": 11, "position": 1, "score": 12},
					{"id": 12, "position": 2, "score": 9},
				},
				"performances": []map[string]any{
					{"id": 21, "player_id": 101, "weight": 1},
					{"id": 22, "player_id": 102, "weight": 1},
				},
			}
			resp, view := postJSON(t, ts.URL+"/editors",
				map[string]any{"game_id": 7, "session": recorded})

			Convey("Then it opens as an edit form holding the recorded rows", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusCreated)
				So(view["operation"], ShouldEqual, "edit")
				So(view["players"], ShouldHaveLength, 2)
			})

			Convey("Then submitting it emits an edit payload", func() {
				editorID, _ := view["id"].(string)
				resp, payload := postJSON(t, ts.URL+"/editors/"+editorID+"/submission",
					map[string]any{"idempotency_key": "k-edit"})
				So(resp.StatusCode, ShouldEqual, http.StatusAccepted)
				So(payload["operation"], ShouldEqual, "edit")
			})
		})

		Convey("When the recorded session is malformed", func() {
			resp, _ := postJSON(t, ts.URL+"/editors", map[string]any{
				"game_id": 7,
				"session": map[string]any{
					"mode":  "individual",
					"ranks": []map[string]any{{"position": 1}},
				},
			})
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When an unknown game is requested", func() {
			resp, _ := postJSON(t, ts.URL+"/editors", map[string]any{"game_id": 404})
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestReadRoutes(t *testing.T) {
	Convey("Given a running API server", t, func() {
		ts := newTestServer(t)

		Convey("Then the game config echoes the requested id", func() {
			resp, cfg := getJSON(t, ts.URL+"/games/7/config")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(cfg["game_id"], ShouldEqual, 7)
		})

		Convey("Then player names resolve", func() {
			resp, body := getJSON(t, ts.URL+"/players/101/name")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(body["name"], ShouldEqual, "Ada")

			resp, _ = getJSON(t, ts.URL+"/players/404/name")
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then the leaderboard validates its query", func() {
			resp, _ := getJSON(t, ts.URL+"/leaderboard")
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

			resp, _ = getJSON(t, fmt.Sprintf("%s/leaderboard?game_id=7&limit=%d", ts.URL, 5000))
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Then stats and health respond", func() {
			resp, stats := getJSON(t, ts.URL+"/stats")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(stats["started"], ShouldEqual, true)

			health, err := http.Get(ts.URL + "/healthz")
			So(err, ShouldBeNil)
			health.Body.Close()
			So(health.StatusCode, ShouldEqual, http.StatusOK)
		})
	})
}
