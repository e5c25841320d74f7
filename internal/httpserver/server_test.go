package httpserver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/robalobadob/wordscape/apps/go-server/internal/config"
	"github.com/robalobadob/wordscape/apps/go-server/internal/game"
	"github.com/robalobadob/wordscape/apps/go-server/internal/storage"
	"github.com/robalobadob/wordscape/apps/go-server/internal/store"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      "test_secret",
		JWTExpiresDays: 1,
		CookieName:     "wordscape_token",
		ClientOrigin:   "http://localhost:5173",
		AppEnv:         "test",
		SpeechEnabled:  true,
	}
}

// newTestServer starts a server over a temp DB and returns a client with a cookie jar.
func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	src := game.SourceFunc(func() []game.Word {
		return []game.Word{
			{Text: "Apple", Color: "#FD5115", Animation: game.Animation{Duration: 4 * time.Second}},
			{Text: "Grape", Color: "#9C27B0", Animation: game.Animation{Duration: 3 * time.Second}},
		}
	})
	s := New(Deps{Config: testConfig(), Sessions: store.NewMemoryStore(), DB: db, Words: src})
	ts := httptest.NewServer(s.Router())
	t.Cleanup(func() {
		ts.Close()
		s.CloseSessions(context.Background())
		_ = db.Close()
	})
	jar, _ := cookiejar.New(nil)
	return ts, &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

func do(t *testing.T, c *http.Client, method, url string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer res.Body.Close()
	if out != nil && res.StatusCode < 300 {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return res.StatusCode
}

func newGame(t *testing.T, ts *httptest.Server, c *http.Client) snapshotDTO {
	t.Helper()
	var snap snapshotDTO
	if code := do(t, c, http.MethodPost, ts.URL+"/game/new", nil, &snap); code != http.StatusOK {
		t.Fatalf("new game: %d", code)
	}
	return snap
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestHealth(t *testing.T) {
	ts, c := newTestServer(t)
	var body map[string]bool
	if code := do(t, c, http.MethodGet, ts.URL+"/health", nil, &body); code != http.StatusOK || !body["ok"] {
		t.Fatalf("health: %d %v", code, body)
	}
}

func TestGameFlow(t *testing.T) {
	ts, c := newTestServer(t)
	snap := newGame(t, ts, c)
	if snap.Status != string(game.StatusReadyToPlay) || len(snap.Words) != 2 {
		t.Fatalf("new game: %+v", snap)
	}
	if snap.Words[0].Position != string(game.PositionStart) || snap.Words[0].Animation.DurationMs != 4000 {
		t.Fatalf("word 0: %+v", snap.Words[0])
	}
	base := ts.URL + "/game/" + snap.GameID

	var tr transitionDTO
	do(t, c, http.MethodPost, base+"/words/0/caught", nil, &tr)
	if tr.Changed || tr.CaughtScore != 0 {
		t.Fatalf("caught while ready should be a no-op: %+v", tr)
	}

	do(t, c, http.MethodPost, base+"/toggle", nil, &snap)
	if snap.Status != string(game.StatusPlaying) || snap.Words[1].Position != string(game.PositionMoving) {
		t.Fatalf("toggle: %+v", snap)
	}

	tr = transitionDTO{}
	do(t, c, http.MethodPost, base+"/words/0/caught", nil, &tr)
	if !tr.Changed || tr.CaughtScore != 1 || !tr.Words[0].Caught || len(tr.Caught) != 1 || tr.Caught[0] != 0 {
		t.Fatalf("caught: %+v", tr)
	}
	tr = transitionDTO{}
	do(t, c, http.MethodPost, base+"/words/0/caught", nil, &tr)
	if tr.Changed || tr.CaughtScore != 1 {
		t.Fatalf("second catch should be a no-op: %+v", tr)
	}

	tr = transitionDTO{}
	do(t, c, http.MethodPost, base+"/words/1/lost", nil, &tr)
	if !tr.Changed || tr.LostScore != 1 || tr.Words[1].Position != string(game.PositionEnd) {
		t.Fatalf("lost: %+v", tr)
	}

	do(t, c, http.MethodPost, base+"/toggle", nil, &snap)
	if snap.Status != string(game.StatusReadyToPlay) || snap.CaughtScore != 0 || snap.LostScore != 0 || len(snap.Caught) != 0 {
		t.Fatalf("reset: %+v", snap)
	}
}

func TestGameErrors(t *testing.T) {
	ts, c := newTestServer(t)
	snap := newGame(t, ts, c)
	base := ts.URL + "/game/" + snap.GameID

	cases := []struct {
		method, url string
		want        int
	}{
		{http.MethodGet, ts.URL + "/game/nope", http.StatusNotFound},
		{http.MethodPost, ts.URL + "/game/nope/toggle", http.StatusNotFound},
		{http.MethodPost, base + "/words/7/caught", http.StatusBadRequest},
		{http.MethodPost, base + "/words/-1/lost", http.StatusBadRequest},
		{http.MethodPost, base + "/words/x/lost", http.StatusBadRequest},
		{http.MethodGet, ts.URL + "/no/such/route", http.StatusNotFound},
	}
	for _, tc := range cases {
		if got := do(t, c, tc.method, tc.url, nil, nil); got != tc.want {
			t.Errorf("%s %s = %d, want %d", tc.method, tc.url, got, tc.want)
		}
	}

	if code := do(t, c, http.MethodDelete, base, nil, nil); code != http.StatusOK {
		t.Fatalf("delete: %d", code)
	}
	if code := do(t, c, http.MethodGet, base, nil, nil); code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", code)
	}
}

func TestSpeechCatchesWords(t *testing.T) {
	ts, c := newTestServer(t)
	snap := newGame(t, ts, c)
	base := ts.URL + "/game/" + snap.GameID

	var res map[string]bool
	do(t, c, http.MethodPost, base+"/speech", speechReq{Transcript: "apple"}, &res)
	if res["accepted"] {
		t.Fatalf("speech before start should be dropped")
	}

	do(t, c, http.MethodPost, base+"/toggle", nil, &snap)
	do(t, c, http.MethodPost, base+"/speech", speechReq{Transcript: "APPLE pear"}, &res)
	if !res["accepted"] {
		t.Fatalf("speech while playing should be accepted")
	}
	waitFor(t, func() bool {
		var cur snapshotDTO
		do(t, c, http.MethodGet, base, nil, &cur)
		return cur.CaughtScore == 1 && cur.Words[0].Caught
	})

	do(t, c, http.MethodPost, base+"/permission", permissionReq{Granted: false}, &snap)
	if snap.VoicePermission {
		t.Fatalf("permission should be revoked")
	}
	res = nil
	do(t, c, http.MethodPost, base+"/speech", speechReq{Words: []string{"grape"}}, &res)
	if res["accepted"] {
		t.Fatalf("speech without permission should be dropped")
	}

	do(t, c, http.MethodDelete, base+"/permission", nil, &snap)
	if !snap.VoicePermission {
		t.Fatalf("dismiss should restore permission")
	}
	do(t, c, http.MethodPost, base+"/speech", speechReq{Words: []string{"grape"}}, &res)
	waitFor(t, func() bool {
		var cur snapshotDTO
		do(t, c, http.MethodGet, base, nil, &cur)
		return cur.CaughtScore == 2
	})
}

func TestSpeechErrorIsReported(t *testing.T) {
	ts, c := newTestServer(t)
	snap := newGame(t, ts, c)
	base := ts.URL + "/game/" + snap.GameID

	do(t, c, http.MethodPost, base+"/speech", speechReq{Error: "client"}, nil)
	do(t, c, http.MethodGet, base, nil, &snap)
	if snap.Speech.Error != "" {
		t.Fatalf("client abort should be ignored: %q", snap.Speech.Error)
	}

	do(t, c, http.MethodPost, base+"/speech", speechReq{Error: "network"}, nil)
	do(t, c, http.MethodGet, base, nil, &snap)
	if snap.Speech.Error != "Error: network" {
		t.Fatalf("speech error = %q", snap.Speech.Error)
	}
}

func TestAuthStatsAndLeaderboard(t *testing.T) {
	ts, c := newTestServer(t)

	// A guest round is claimed by the account created afterwards.
	snap := newGame(t, ts, c)
	base := ts.URL + "/game/" + snap.GameID
	do(t, c, http.MethodPost, base+"/toggle", nil, nil)
	do(t, c, http.MethodPost, base+"/words/0/caught", nil, nil)
	do(t, c, http.MethodPost, base+"/toggle", nil, nil)

	if code := do(t, c, http.MethodGet, ts.URL+"/auth/me", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("me as guest: %d", code)
	}

	creds := credentials{Username: "alice_1", Password: "password123"}
	if code := do(t, c, http.MethodPost, ts.URL+"/auth/signup", creds, nil); code != http.StatusOK {
		t.Fatalf("signup: %d", code)
	}
	if code := do(t, c, http.MethodPost, ts.URL+"/auth/signup", creds, nil); code != http.StatusConflict {
		t.Fatalf("duplicate signup: %d", code)
	}
	bad := credentials{Username: "alice_1", Password: "wrong-password"}
	if code := do(t, c, http.MethodPost, ts.URL+"/auth/login", bad, nil); code != http.StatusUnauthorized {
		t.Fatalf("bad login: %d", code)
	}

	var me authUser
	if code := do(t, c, http.MethodGet, ts.URL+"/auth/me", nil, &me); code != http.StatusOK || me.Username != "alice_1" {
		t.Fatalf("me: %d %+v", code, me)
	}

	// A second round, owned by the account.
	snap = newGame(t, ts, c)
	base = ts.URL + "/game/" + snap.GameID
	do(t, c, http.MethodPost, base+"/toggle", nil, nil)
	do(t, c, http.MethodPost, base+"/words/0/caught", nil, nil)
	do(t, c, http.MethodPost, base+"/words/1/caught", nil, nil)
	do(t, c, http.MethodPost, base+"/toggle", nil, nil)

	var stats struct {
		Stats storage.Stats `json:"stats"`
	}
	do(t, c, http.MethodGet, ts.URL+"/stats/me", nil, &stats)
	if stats.Stats.RoundsPlayed != 2 || stats.Stats.TotalCaught != 3 || stats.Stats.BestCaught != 2 {
		t.Fatalf("stats: %+v", stats.Stats)
	}

	var rows []storage.LBRow
	do(t, c, http.MethodGet, ts.URL+"/rounds/leaderboard", nil, &rows)
	if len(rows) != 2 || rows[0].Player != "alice_1" || rows[0].Caught != 2 {
		t.Fatalf("leaderboard: %+v", rows)
	}

	do(t, c, http.MethodPost, ts.URL+"/auth/logout", nil, nil)
	if code := do(t, c, http.MethodGet, ts.URL+"/stats/me", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("stats after logout: %d", code)
	}
}

func TestEventsStream(t *testing.T) {
	ts, c := newTestServer(t)
	snap := newGame(t, ts, c)
	base := ts.URL + "/game/" + snap.GameID

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, base+"/events", nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if ct := res.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type %q", ct)
	}

	events := make(chan string, 16)
	go func() {
		defer close(events)
		sc := bufio.NewScanner(res.Body)
		for sc.Scan() {
			if name, ok := strings.CutPrefix(sc.Text(), "event: "); ok {
				events <- name
			}
		}
	}()

	next := func() string {
		select {
		case e := <-events:
			return e
		case <-ctx.Done():
			t.Fatalf("no event before deadline")
			return ""
		}
	}
	if e := next(); e != "snapshot" {
		t.Fatalf("first event %q", e)
	}
	do(t, c, http.MethodPost, base+"/toggle", nil, nil)
	if e := next(); e != "snapshot" {
		t.Fatalf("event after toggle %q", e)
	}
	do(t, c, http.MethodDelete, base, nil, nil)
	for {
		if e := next(); e == "closed" {
			return
		}
	}
}

func TestLeaderboardHugeLimit(t *testing.T) {
	ts, c := newTestServer(t)
	for _, q := range []string{"68719476736", "-5", "abc", "99999999999999999999999"} {
		var rows []storage.LBRow
		if code := do(t, c, http.MethodGet, ts.URL+"/rounds/leaderboard?limit="+q, nil, &rows); code != http.StatusOK {
			t.Errorf("limit=%s: status %d", q, code)
		}
		if rows == nil {
			t.Errorf("limit=%s: want an empty list, got null", q)
		}
	}
}
