package fuzz

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/auth"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/catalog"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/dal"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/draft"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/formation"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/handlers"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/logger"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/pubsub"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/session"
)

func init() {
	// Initialize logger for tests
	logger.Init("error")
}

var seedIDs = func() []int {
	ids := []int{}
	for _, p := range catalog.Seed() {
		ids = append(ids, p.ID)
	}
	return ids
}()

type harness struct {
	svc     *session.Service
	handler http.Handler
	token   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	base, err := catalog.New(catalog.Seed())
	if err != nil {
		t.Fatal(err)
	}
	ps := pubsub.New()
	svc := session.NewService(base, formation.NewTable(), dal.NewMemoryStore(),
		session.WithPublisher(ps),
		session.WithDefaults(3, ""),
	)
	authProvider := auth.NewMockAuth()
	api := handlers.NewAPIHandlers(svc, base, formation.NewTable(), ps, nil)
	return &harness{
		svc:     svc,
		handler: handlers.NewRouter(api, authProvider, handlers.NewHealth()),
		token:   authProvider.IssueSession(auth.DevUser),
	}
}

func (h *harness) newDraft(t *testing.T) string {
	t.Helper()
	id, _, err := h.svc.Create(context.Background(), session.CreateRequest{Managers: []string{"Ana", "Ben", "Cy"}})
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func (h *harness) send(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.token)
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	return w
}

// FuzzHTTPCreateDraft fuzzes the create draft endpoint
func FuzzHTTPCreateDraft(f *testing.F) {
	f.Add(`{"managers":["Ana","Ben"]}`)
	f.Add(`{"managers":["Ana","Ben"],"maxRounds":3,"formation":"4-4-2"}`)
	f.Add(`{"managers":[]}`)
	f.Add(`{"managers":"Ana"}`)
	f.Add(`{"managers":["` + string(make([]byte, 100)) + `"]}`)
	f.Add(`null`)

	f.Fuzz(func(t *testing.T, data string) {
		h := newHarness(t)
		w := h.send(http.MethodPost, "/api/drafts", data)
		if w.Code >= 500 {
			t.Fatalf("server error %d for %q: %s", w.Code, data, w.Body.String())
		}
	})
}

// FuzzHTTPPick fuzzes the pick endpoint
func FuzzHTTPPick(f *testing.F) {
	f.Add(`{"playerId":231747}`)
	f.Add(`{"playerId":-1}`)
	f.Add(`{"playerId":"231747"}`)
	f.Add(`{"playerId":1e40}`)
	f.Add(`{}`)

	f.Fuzz(func(t *testing.T, data string) {
		h := newHarness(t)
		id := h.newDraft(t)
		w := h.send(http.MethodPost, "/api/drafts/"+id+"/pick", data)
		if w.Code >= 500 {
			t.Fatalf("server error %d for %q: %s", w.Code, data, w.Body.String())
		}
	})
}

// FuzzHTTPSlotCommands fuzzes the slot-addressed board commands
func FuzzHTTPSlotCommands(f *testing.F) {
	f.Add("st", "lw", 231747)
	f.Add("cb_0", "cb_1", 203376)
	f.Add("", "gk", 0)
	f.Add("cb_99", "st", -5)

	f.Fuzz(func(t *testing.T, from, to string, playerID int) {
		h := newHarness(t)
		id := h.newDraft(t)
		base := "/api/drafts/" + id

		h.send(http.MethodPost, base+"/pick", `{"playerId":231747}`)
		body := func(v interface{}) string {
			b, _ := json.Marshal(v)
			return string(b)
		}
		for _, req := range []struct{ path, body string }{
			{"/place/field", body(map[string]string{"slotId": from})},
			{"/swap", body(map[string]string{"fromSlotId": from, "toSlotId": to})},
			{"/move/field-to-bench", body(map[string]interface{}{"playerId": playerID, "slotId": to})},
			{"/move/bench-to-field", body(map[string]interface{}{"playerId": playerID, "slotId": from})},
		} {
			w := h.send(http.MethodPost, base+req.path, req.body)
			if w.Code >= 500 {
				t.Fatalf("server error %d on %s: %s", w.Code, req.path, w.Body.String())
			}
		}
	})
}

// FuzzHTTPCommandSequence drives a draft with arbitrary command sequences and
// checks the board never holds a player twice
func FuzzHTTPCommandSequence(f *testing.F) {
	f.Add([]byte{0, 1, 9, 0, 2, 9})
	f.Add([]byte{0, 2, 0, 2, 0, 2, 0, 2, 0, 2, 0, 2, 0, 2, 0, 2})
	f.Add([]byte{0, 1, 8, 7, 3, 4, 5, 6})

	f.Fuzz(func(t *testing.T, ops []byte) {
		if len(ops) > 64 {
			ops = ops[:64]
		}
		h := newHarness(t)
		id := h.newDraft(t)
		base := "/api/drafts/" + id
		slots := formation.SlotIDs(mustSlots(t, formation.Default))

		for i, op := range ops {
			arg := int(ops[(i+1)%len(ops)])
			player := seedIDs[arg%len(seedIDs)]
			slot := slots[arg%len(slots)]
			other := slots[(arg+1)%len(slots)]

			var w *httptest.ResponseRecorder
			switch op % 10 {
			case 0:
				w = h.send(http.MethodPost, base+"/pick", `{"playerId":`+itoa(player)+`}`)
			case 1:
				w = h.send(http.MethodPost, base+"/place/field", `{"slotId":"`+slot+`"}`)
			case 2:
				w = h.send(http.MethodPost, base+"/place/bench", "")
			case 3:
				w = h.send(http.MethodPost, base+"/swap", `{"fromSlotId":"`+slot+`","toSlotId":"`+other+`"}`)
			case 4:
				w = h.send(http.MethodPost, base+"/move/bench-to-field", `{"playerId":`+itoa(player)+`,"slotId":"`+slot+`"}`)
			case 5:
				w = h.send(http.MethodPost, base+"/move/field-to-bench", `{"playerId":`+itoa(player)+`,"slotId":"`+slot+`"}`)
			case 6:
				names := formation.NewTable().Names()
				w = h.send(http.MethodPut, base+"/formation", `{"formation":"`+names[arg%len(names)]+`"}`)
			case 7:
				w = h.send(http.MethodPost, base+"/undo", "")
			case 8:
				w = h.send(http.MethodPost, base+"/finish-turn", "")
			case 9:
				w = h.send(http.MethodGet, base, "")
			}
			if w.Code >= 500 {
				t.Fatalf("op %d: server error %d: %s", op, w.Code, w.Body.String())
			}
		}

		view, err := h.svc.Get(context.Background(), id)
		if err != nil {
			t.Fatal(err)
		}
		assertNoDuplicates(t, view)
	})
}

func mustSlots(t *testing.T, name string) []string {
	tags, ok := formation.NewTable().SlotsFor(name)
	if !ok {
		t.Fatalf("missing formation %q", name)
	}
	return tags
}

func assertNoDuplicates(t *testing.T, view draft.View) {
	seen := make(map[int]bool)
	check := func(id int) {
		if seen[id] {
			t.Fatalf("player %d appears twice", id)
		}
		seen[id] = true
	}
	for _, s := range view.Slots {
		if s.Occupant != nil {
			check(s.Occupant.ID)
		}
	}
	for _, p := range view.Bench {
		check(p.ID)
	}
	if len(view.Bench) > view.BenchCapacity+len(view.Slots) {
		t.Fatalf("bench grew to %d", len(view.Bench))
	}
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

// FuzzJSONParsing tests JSON parsing robustness
func FuzzJSONParsing(f *testing.F) {
	f.Add(`{"key":"value"}`)
	f.Add(`[1,2,3]`)
	f.Add(`null`)
	f.Add(`"string"`)
	f.Add(`123`)
	f.Add(`true`)

	f.Fuzz(func(t *testing.T, data string) {
		var result interface{}
		_ = json.Unmarshal([]byte(data), &result)
	})
}
