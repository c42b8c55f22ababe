package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mcoot/eventgames/internal/api/response"
	"github.com/mcoot/eventgames/internal/model"
	"github.com/mcoot/eventgames/internal/testutil"
)

type stubSource struct {
	snapshot *model.LeaderboardSnapshot
	err      error
	calls    int
}

func (s *stubSource) Snapshot(context.Context) (*model.LeaderboardSnapshot, error) {
	s.calls++
	return s.snapshot, s.err
}

func testSnapshot() *model.LeaderboardSnapshot {
	return &model.LeaderboardSnapshot{
		Players: map[model.GameKind][]model.PlayerRankingEntry{
			model.GameKindMemo: {{Rank: 1, ParticipantID: "p_1", DisplayName: "Pat", Team: "Alpha", Kind: model.GameKindMemo, BestScore: 8}},
		},
		Teams: map[model.GameKind][]model.TeamRankingEntry{},
		TeamTotals: []model.TeamTotalEntry{
			{Rank: 1, Team: "Alpha", GamesPlayed: 1, TotalScore: 8, Bests: map[model.GameKind]int{model.GameKindMemo: 8}},
		},
	}
}

// readEvent pulls one event off a client's queue and decodes its data line
func readEvent(t *testing.T, client *Client) (string, string) {
	t.Helper()
	select {
	case msg := <-client.send:
		var event, data string
		for _, line := range strings.Split(string(msg), "\n") {
			switch {
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data += strings.TrimPrefix(line, "data: ")
			}
		}
		return event, data
	case <-time.After(time.Second):
		t.Fatal("client did not receive message")
		return "", ""
	}
}

func TestBroadcaster_ResultRecorded(t *testing.T) {
	hub := newRunningHub(t)
	source := &stubSource{snapshot: testSnapshot()}
	broadcaster := NewBroadcaster(hub, source, testutil.NopLogger())

	client := NewClient(hub, "display-1")
	hub.Register(client)
	waitForClients(t, hub, 1)

	broadcaster.ResultRecorded(context.Background(), &model.Submission{Outcome: model.OutcomeAccepted})

	event, data := readEvent(t, client)
	if event != EventLeaderboardUpdated {
		t.Fatalf("event = %q, want %q", event, EventLeaderboardUpdated)
	}
	var snapshot response.LeaderboardSnapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		t.Fatalf("invalid snapshot json: %v", err)
	}
	if got := snapshot.Players["memo"]; len(got) != 1 || got[0].BestScore != 8 {
		t.Errorf("unexpected memo players: %+v", got)
	}
	if len(snapshot.TeamTotals) != 1 || snapshot.TeamTotals[0].Team != "Alpha" {
		t.Errorf("unexpected team totals: %+v", snapshot.TeamTotals)
	}
}

func TestBroadcaster_SkipsWorkWithoutClients(t *testing.T) {
	hub := newRunningHub(t)
	source := &stubSource{snapshot: testSnapshot()}
	broadcaster := NewBroadcaster(hub, source, testutil.NopLogger())

	broadcaster.BroadcastLeaderboard(context.Background())

	if source.calls != 0 {
		t.Errorf("Snapshot called %d times with no clients", source.calls)
	}
}

func TestBroadcaster_SnapshotErrorSendsNothing(t *testing.T) {
	hub := newRunningHub(t)
	source := &stubSource{err: errors.New("store down")}
	broadcaster := NewBroadcaster(hub, source, testutil.NopLogger())

	client := NewClient(hub, "display-1")
	hub.Register(client)
	waitForClients(t, hub, 1)

	broadcaster.BroadcastLeaderboard(context.Background())

	select {
	case msg := <-client.send:
		t.Errorf("unexpected message %q", string(msg))
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcaster_ResultsReset(t *testing.T) {
	hub := newRunningHub(t)
	source := &stubSource{snapshot: &model.LeaderboardSnapshot{}}
	broadcaster := NewBroadcaster(hub, source, testutil.NopLogger())

	client := NewClient(hub, "display-1")
	hub.Register(client)
	waitForClients(t, hub, 1)

	broadcaster.ResultsReset(context.Background(), 4)

	event, data := readEvent(t, client)
	if event != EventResultsReset {
		t.Fatalf("event = %q, want %q", event, EventResultsReset)
	}
	if data != `{"deleted":4}` {
		t.Errorf("data = %q", data)
	}

	event, _ = readEvent(t, client)
	if event != EventLeaderboardUpdated {
		t.Errorf("event = %q, want %q", event, EventLeaderboardUpdated)
	}
}

func TestServeSSE_StreamsEvents(t *testing.T) {
	hub := newRunningHub(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = ServeSSE(w, r, hub, r.RemoteAddr, func(context.Context) ([]byte, error) {
			return formatSSEMessage("hello", "first"), nil
		})
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	waitForClients(t, hub, 1)
	hub.BroadcastEvent("update", "second")

	var events []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() && len(events) < 3 {
		if line := scanner.Text(); strings.HasPrefix(line, "event: ") {
			events = append(events, strings.TrimPrefix(line, "event: "))
		}
	}

	want := []string{EventConnected, "hello", "update"}
	if strings.Join(events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestServeSSE_BroadcastDuringInitialIsDelivered(t *testing.T) {
	hub := newRunningHub(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = ServeSSE(w, r, hub, "display-1", func(context.Context) ([]byte, error) {
			// A result stored while the first snapshot is being built
			hub.BroadcastEvent(EventLeaderboardUpdated, "newer")
			return formatSSEMessage(EventLeaderboardUpdated, "initial"), nil
		})
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()

	var data []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() && len(data) < 3 {
		if line := scanner.Text(); strings.HasPrefix(line, "data: ") {
			data = append(data, strings.TrimPrefix(line, "data: "))
		}
	}

	want := []string{`{"status":"connected"}`, "initial", "newer"}
	if strings.Join(data, ",") != strings.Join(want, ",") {
		t.Errorf("data = %v, want %v", data, want)
	}
}

func TestServeSSE_InitialErrorIsReturnedBeforeWriting(t *testing.T) {
	hub := newRunningHub(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/events", nil)

	err := ServeSSE(rec, req, hub, "display-1", func(context.Context) ([]byte, error) {
		return nil, errors.New("store down")
	})

	if err == nil || err.Error() != "store down" {
		t.Fatalf("err = %v, want store down", err)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body written on error: %q", rec.Body.String())
	}
	waitForClients(t, hub, 0)
}
