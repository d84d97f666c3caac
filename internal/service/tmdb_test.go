package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/user/cinestream/internal/config"
)

func newTestTMDB(t *testing.T, handler http.HandlerFunc, cacheTTL time.Duration) *TMDBService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewTMDBService(&config.Config{
		TMDBAPIKey:   "server-key",
		TMDBBaseURL:  srv.URL + "/3",
		TMDBLanguage: "en-US",
		TMDBCacheTTL: cacheTTL,
	})
}

func TestBuildTMDBPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		requestID string
		params    url.Values
		wantPath  string
		wantQuery url.Values
		wantErr   error
	}{
		{
			name:      "trending defaults",
			requestID: "trending",
			params:    url.Values{},
			wantPath:  "/trending/all/day",
			wantQuery: url.Values{},
		},
		{
			name:      "details with append",
			requestID: "movieDetails",
			params:    url.Values{"id": {"550"}, "append_to_response": {"credits"}, "evil": {"1"}},
			wantPath:  "/movie/550",
			wantQuery: url.Values{"append_to_response": {"credits"}},
		},
		{
			name:      "episode",
			requestID: "tvEpisode",
			params:    url.Values{"id": {"1399"}, "season": {"1"}, "episode": {"3"}},
			wantPath:  "/tv/1399/season/1/episode/3",
			wantQuery: url.Values{},
		},
		{
			name:      "discover fixed values",
			requestID: "discoverMovies",
			params:    url.Values{"with_genres": {"18"}},
			wantPath:  "/discover/movie",
			wantQuery: url.Values{"with_genres": {"18"}, "sort_by": {"popularity.desc"}, "include_video": {"false"}},
		},
		{name: "missing requestID", requestID: "", wantErr: ErrMissingParam},
		{name: "unknown requestID", requestID: "adminUsers", wantErr: ErrUnknownRequest},
		{name: "missing id", requestID: "tvDetails", params: url.Values{}, wantErr: ErrMissingParam},
		{name: "missing query", requestID: "searchMulti", params: url.Values{"query": {"  "}}, wantErr: ErrMissingParam},
		{name: "path traversal", requestID: "movieDetails", params: url.Values{"id": {"../account"}}, wantErr: ErrInvalidParam},
		{name: "bad time window", requestID: "trending", params: url.Values{"time_window": {"year"}}, wantErr: ErrInvalidParam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path, query, err := buildTMDBPath(tt.requestID, tt.params)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if !IsClientError(err) {
					t.Errorf("%v should be a client error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if path != tt.wantPath {
				t.Errorf("path = %q, want %q", path, tt.wantPath)
			}
			if query.Encode() != tt.wantQuery.Encode() {
				t.Errorf("query = %q, want %q", query.Encode(), tt.wantQuery.Encode())
			}
		})
	}
}

func TestMissingParamNamesParameter(t *testing.T) {
	t.Parallel()

	_, _, err := buildTMDBPath("searchPerson", url.Values{})
	var pe *ParamError
	if !errors.As(err, &pe) || pe.Param != "query" {
		t.Fatalf("err = %v, want ParamError for query", err)
	}
}

func TestEveryRouteHasValidTemplate(t *testing.T) {
	t.Parallel()

	for _, id := range TMDBRequestIDs() {
		params := url.Values{"id": {"1"}, "season": {"1"}, "episode": {"1"}, "query": {"x"}}
		if _, _, err := buildTMDBPath(id, params); err != nil {
			t.Errorf("%s: %v", id, err)
		}
	}
}

func TestTMDBRequestInjectsKeyAndLanguage(t *testing.T) {
	t.Parallel()

	var got url.Values
	var gotPath string
	svc := newTestTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		got = r.URL.Query()
		w.Write([]byte(`{"id":550}`))
	}, 0)

	body, err := svc.Request(context.Background(), "movieDetails", url.Values{"id": {"550"}, "api_key": {"client-key"}})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if string(body) != `{"id":550}` {
		t.Errorf("body = %s", body)
	}
	if gotPath != "/3/movie/550" {
		t.Errorf("path = %q", gotPath)
	}
	if got.Get("api_key") != "server-key" {
		t.Errorf("api_key = %q, want server-key", got.Get("api_key"))
	}
	if got.Get("language") != "en-US" {
		t.Errorf("language = %q", got.Get("language"))
	}
}

func TestTMDBRequestCachesResponses(t *testing.T) {
	t.Parallel()

	var hits int32
	svc := newTestTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`{"results":[]}`))
	}, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := svc.Request(context.Background(), "popularMovies", url.Values{"page": {"1"}}); err != nil {
			t.Fatalf("Request: %v", err)
		}
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("upstream hits = %d, want 1", n)
	}

	if _, err := svc.Request(context.Background(), "popularMovies", url.Values{"page": {"2"}}); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Errorf("different page should miss cache, hits = %d", n)
	}
}

func TestTMDBRequestTranslatesUpstreamError(t *testing.T) {
	t.Parallel()

	svc := newTestTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status_code":7,"status_message":"Invalid API key: You must be granted a valid key."}`))
	}, time.Minute)

	_, err := svc.Request(context.Background(), "tvDetails", url.Values{"id": {"1"}})
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("err = %v, want UpstreamError", err)
	}
	if upstream.Status != http.StatusUnauthorized || upstream.Message != "Invalid API key: You must be granted a valid key." {
		t.Errorf("upstream = %+v", upstream)
	}
	if IsClientError(err) {
		t.Error("upstream errors are not client errors")
	}
}

func TestTMDBRequestWithoutKey(t *testing.T) {
	t.Parallel()

	svc := NewTMDBService(&config.Config{TMDBBaseURL: "http://127.0.0.1:0"})

	// 参数错误优先于配置错误
	if _, err := svc.Request(context.Background(), "movieDetails", url.Values{}); !errors.Is(err, ErrMissingParam) {
		t.Errorf("err = %v, want ErrMissingParam", err)
	}
	if _, err := svc.Request(context.Background(), "movieDetails", url.Values{"id": {"1"}}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}
