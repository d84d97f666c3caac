package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/user/cinestream/internal/config"
	"github.com/user/cinestream/internal/model"
	"github.com/user/cinestream/internal/utils"
)

// newTestSports 返回指向本地假 TheSportsDB 的服务；league 999 始终失败
func newTestSports(t *testing.T, leagues []string) *SportsService {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/eventsnextleague.php"):
			id := r.URL.Query().Get("id")
			if id == "999" {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			var events []string
			for i := 0; i < 30; i++ {
				events = append(events, fmt.Sprintf(
					`{"idEvent":"%s-%d","strEvent":"e","idLeague":"%s","strTimestamp":"2026-11-%02dT%02d:00:00"}`,
					id, i, id, 1+i%28, i%24))
			}
			fmt.Fprintf(w, `{"events":[%s]}`, strings.Join(events, ","))
		case strings.HasSuffix(r.URL.Path, "/lookupevent.php"):
			fmt.Fprintf(w, `{"events":[{"idEvent":"%s"}]}`, r.URL.Query().Get("id"))
		case strings.HasSuffix(r.URL.Path, "/searchteams.php"):
			fmt.Fprintf(w, `{"teams":[{"strTeam":"%s"}]}`, r.URL.Query().Get("t"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	return NewSportsService(&config.Config{
		SportsDBBaseURL: srv.URL + "/api/v1/json",
		SportsDBAPIKey:  "3",
		SportsLeagues:   leagues,
	})
}

func TestMatchesMergesSortsAndTruncates(t *testing.T) {
	t.Parallel()

	svc := newTestSports(t, nil)
	events, err := svc.Matches(context.Background(), []string{"4328", "4387"})
	if err != nil {
		t.Fatalf("Matches: %v", err)
	}
	if len(events) != MaxEvents {
		t.Fatalf("len = %d, want %d", len(events), MaxEvents)
	}
	prev := time.Time{}
	for _, e := range events {
		at, ok := EventTime(e)
		if !ok {
			t.Fatalf("unparseable event %+v", e)
		}
		if at.Before(prev) {
			t.Fatalf("events out of order at %s", e.ID)
		}
		prev = at
	}
}

func TestMatchesSkipsFailingLeague(t *testing.T) {
	t.Parallel()

	svc := newTestSports(t, nil)
	events, err := svc.Matches(context.Background(), []string{"999", "4391"})
	if err != nil {
		t.Fatalf("Matches: %v", err)
	}
	if len(events) != 30 {
		t.Fatalf("len = %d, want 30 from the healthy league", len(events))
	}
	for _, e := range events {
		if e.LeagueID != "4391" {
			t.Errorf("unexpected league %q", e.LeagueID)
		}
	}

	events, err = svc.Matches(context.Background(), []string{"999"})
	if err != nil {
		t.Fatalf("Matches: %v", err)
	}
	if events == nil || len(events) != 0 {
		t.Errorf("all leagues failing should yield an empty list, got %v", events)
	}
}

func TestMatchesValidation(t *testing.T) {
	t.Parallel()

	svc := newTestSports(t, []string{"1", "2", "3", "4", "5", "6", "7", "8"})

	tests := []struct {
		name string
		ids  []string
	}{
		{"too many", []string{"1", "2", "3", "4", "5", "6", "7"}},
		{"not numeric", []string{"4328", "abc"}},
	}
	for _, tt := range tests {
		if _, err := svc.Matches(context.Background(), tt.ids); !errors.Is(err, ErrInvalidParam) {
			t.Errorf("%s: err = %v, want ErrInvalidParam", tt.name, err)
		}
	}

	// 默认联赛列表截断到上限
	if _, err := svc.Matches(context.Background(), nil); err != nil {
		t.Errorf("default leagues: %v", err)
	}

	empty := newTestSports(t, nil)
	if _, err := empty.Matches(context.Background(), nil); !errors.Is(err, ErrMissingParam) {
		t.Errorf("no leagues configured: err = %v", err)
	}
}

func TestSortEvents(t *testing.T) {
	t.Parallel()

	events := []model.SportsEvent{
		{ID: "no-time"},
		{ID: "late", Timestamp: "2026-10-20T20:00:00+00:00"},
		{ID: "date-only", DateEvent: "2026-10-20", Time: "12:30:00"},
		{ID: "early", Timestamp: "2026-10-19T08:00:00"},
		{ID: "midnight", DateEvent: "2026-10-20"},
	}
	got := SortEvents(events)

	want := []string{"early", "midnight", "date-only", "late", "no-time"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("order = %v, want %v", ids(got), want)
		}
	}
}

func ids(events []model.SportsEvent) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func TestSportsPassthrough(t *testing.T) {
	t.Parallel()

	svc := newTestSports(t, nil)

	body, err := svc.Event(context.Background(), "441613")
	if err != nil || !strings.Contains(string(body), `"441613"`) {
		t.Errorf("Event = %s, %v", body, err)
	}
	if _, err := svc.Event(context.Background(), "1;drop"); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("Event invalid id err = %v", err)
	}

	body, err = svc.SearchTeams(context.Background(), " Arsenal ")
	if err != nil || !strings.Contains(string(body), `"Arsenal"`) {
		t.Errorf("SearchTeams = %s, %v", body, err)
	}
	if _, err := svc.SearchTeams(context.Background(), ""); !errors.Is(err, ErrMissingParam) {
		t.Errorf("SearchTeams empty err = %v", err)
	}
}

func TestLeaguesUsesKnownNames(t *testing.T) {
	t.Parallel()

	svc := NewSportsService(&config.Config{SportsLeagues: []string{"4328", "12345"}})
	leagues := svc.Leagues()
	if len(leagues) != 2 || leagues[0].Name != "English Premier League" || leagues[1].ID != "12345" {
		t.Errorf("Leagues = %+v", leagues)
	}
}

// 不并行：启用全局缓存
func TestMatchesCache(t *testing.T) {
	utils.InitCache()
	t.Cleanup(func() { utils.Cache = nil })

	var hits, failing atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if failing.Load() == 1 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		id := r.URL.Query().Get("id")
		fmt.Fprintf(w, `{"events":[{"idEvent":"%s-1","idLeague":"%s","strTimestamp":"2026-11-01T10:00:00"}]}`, id, id)
	}))
	t.Cleanup(srv.Close)
	svc := NewSportsService(&config.Config{SportsDBBaseURL: srv.URL, SportsDBAPIKey: "3"})

	// 调用方已取消：不缓存
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if events, err := svc.Matches(ctx, []string{"5001"}); err != nil || len(events) != 0 {
		t.Fatalf("cancelled Matches = %v, %v", events, err)
	}
	events, err := svc.Matches(context.Background(), []string{"5001"})
	if err != nil || len(events) != 1 {
		t.Fatalf("after cancelled call: %v, %v", events, err)
	}

	// 命中缓存，不再请求上游
	before := hits.Load()
	events, err = svc.Matches(context.Background(), []string{"5001"})
	if err != nil || len(events) != 1 {
		t.Fatalf("cached Matches = %v, %v", events, err)
	}
	if hits.Load() != before {
		t.Errorf("repeat call reached upstream (%d -> %d hits)", before, hits.Load())
	}

	// 联赛集合不同：未命中
	events, err = svc.Matches(context.Background(), []string{"5002", "5001"})
	if err != nil || len(events) != 2 {
		t.Fatalf("two leagues = %v, %v", events, err)
	}
	if hits.Load() != before+2 {
		t.Errorf("different league set should miss the cache, hits = %d", hits.Load())
	}

	// 全部失败：不缓存，恢复后立即返回数据
	failing.Store(1)
	if events, _ := svc.Matches(context.Background(), []string{"5003"}); len(events) != 0 {
		t.Fatalf("failing upstream returned %v", events)
	}
	failing.Store(0)
	events, err = svc.Matches(context.Background(), []string{"5003"})
	if err != nil || len(events) != 1 {
		t.Errorf("all-failed result was cached: %v, %v", events, err)
	}
}
