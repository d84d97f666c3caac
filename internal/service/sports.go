package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/user/cinestream/internal/config"
	"github.com/user/cinestream/internal/model"
	"github.com/user/cinestream/internal/utils"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxLeagues 单次聚合最多请求的联赛数
	MaxLeagues = 6
	// MaxEvents 聚合结果最多返回的赛事数
	MaxEvents = 50

	sportsCacheTTL        = 2 * time.Minute
	sportsPartialCacheTTL = 15 * time.Second
)

var leagueIDRe = regexp.MustCompile(`^[0-9]{1,8}$`)

// knownLeagues 常用联赛名称
var knownLeagues = map[string]model.League{
	"4328": {ID: "4328", Name: "English Premier League", Sport: "Soccer"},
	"4331": {ID: "4331", Name: "German Bundesliga", Sport: "Soccer"},
	"4332": {ID: "4332", Name: "Italian Serie A", Sport: "Soccer"},
	"4334": {ID: "4334", Name: "French Ligue 1", Sport: "Soccer"},
	"4335": {ID: "4335", Name: "Spanish La Liga", Sport: "Soccer"},
	"4346": {ID: "4346", Name: "American Major League Soccer", Sport: "Soccer"},
	"4380": {ID: "4380", Name: "NHL", Sport: "Ice Hockey"},
	"4387": {ID: "4387", Name: "NBA", Sport: "Basketball"},
	"4391": {ID: "4391", Name: "NFL", Sport: "American Football"},
	"4424": {ID: "4424", Name: "MLB", Sport: "Baseball"},
	"4480": {ID: "4480", Name: "UEFA Champions League", Sport: "Soccer"},
}

// SportsService TheSportsDB 代理与赛事聚合
type SportsService struct {
	client  *utils.HTTPClient
	baseURL string
	apiKey  string
	leagues []string
}

// NewSportsService 创建赛事服务
func NewSportsService(cfg *config.Config) *SportsService {
	return &SportsService{
		client:  utils.NewHTTPClient(10 * time.Second),
		baseURL: cfg.SportsDBBaseURL,
		apiKey:  cfg.SportsDBAPIKey,
		leagues: cfg.SportsLeagues,
	}
}

type sportsEventsResponse struct {
	Events []model.SportsEvent `json:"events"`
}

// Leagues 返回配置的联赛列表
func (s *SportsService) Leagues() []model.League {
	out := make([]model.League, 0, len(s.leagues))
	for _, id := range s.leagues {
		if l, ok := knownLeagues[id]; ok {
			out = append(out, l)
			continue
		}
		out = append(out, model.League{ID: id})
	}
	return out
}

// Matches 并发拉取各联赛的近期赛事，合并后按时间排序并截断
// 单个联赛失败时按空列表处理
func (s *SportsService) Matches(ctx context.Context, leagueIDs []string) ([]model.SportsEvent, error) {
	if len(leagueIDs) == 0 {
		leagueIDs = s.leagues
		if len(leagueIDs) > MaxLeagues {
			leagueIDs = leagueIDs[:MaxLeagues]
		}
	}
	if len(leagueIDs) == 0 {
		return nil, missingParam("leagues")
	}
	if len(leagueIDs) > MaxLeagues {
		return nil, invalidParam("leagues")
	}
	for _, id := range leagueIDs {
		if !leagueIDRe.MatchString(id) {
			return nil, invalidParam("leagues")
		}
	}

	sorted := append([]string(nil), leagueIDs...)
	sort.Strings(sorted)
	cacheKey := "sports:matches:" + strings.Join(sorted, ",")
	if cached, ok := utils.CacheGet(cacheKey); ok {
		if events, ok := cached.([]model.SportsEvent); ok {
			return events, nil
		}
	}

	results := make([][]model.SportsEvent, len(leagueIDs))
	var failed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range leagueIDs {
		g.Go(func() error {
			events, err := s.leagueEvents(gctx, id)
			if err != nil {
				failed.Add(1)
				log.Warn().Str("component", "sports").Str("league", id).Err(err).Msg("获取联赛赛事失败，已跳过")
				return nil
			}
			results[i] = events
			return nil
		})
	}
	_ = g.Wait()

	var merged []model.SportsEvent
	for _, events := range results {
		merged = append(merged, events...)
	}
	merged = SortEvents(merged)
	if len(merged) > MaxEvents {
		merged = merged[:MaxEvents]
	}
	if merged == nil {
		merged = []model.SportsEvent{}
	}

	// 调用方取消或全部联赛失败时不写缓存，部分失败只短暂缓存
	switch n := int(failed.Load()); {
	case ctx.Err() != nil, n == len(leagueIDs):
	case n > 0:
		utils.CacheSet(cacheKey, merged, sportsPartialCacheTTL)
	default:
		utils.CacheSet(cacheKey, merged, sportsCacheTTL)
	}
	return merged, nil
}

func (s *SportsService) leagueEvents(ctx context.Context, leagueID string) ([]model.SportsEvent, error) {
	var resp sportsEventsResponse
	if err := s.client.GetJSON(ctx, s.endpoint("eventsnextleague.php", url.Values{"id": {leagueID}}), &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// Event 查询单场赛事，原样返回 JSON
func (s *SportsService) Event(ctx context.Context, eventID string) ([]byte, error) {
	if eventID == "" {
		return nil, missingParam("id")
	}
	if !leagueIDRe.MatchString(eventID) {
		return nil, invalidParam("id")
	}
	return s.get(ctx, "lookupevent.php", url.Values{"id": {eventID}})
}

// SearchTeams 按名称搜索球队，原样返回 JSON
func (s *SportsService) SearchTeams(ctx context.Context, name string) ([]byte, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, missingParam("name")
	}
	return s.get(ctx, "searchteams.php", url.Values{"t": {name}})
}

func (s *SportsService) get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	body, err := s.client.Get(ctx, s.endpoint(endpoint, query))
	if err != nil {
		var statusErr *utils.StatusError
		if errors.As(err, &statusErr) {
			return nil, &UpstreamError{Service: "sportsdb", Status: statusErr.Status, Message: "TheSportsDB request failed"}
		}
		return nil, fmt.Errorf("sportsdb %s: %w", endpoint, err)
	}
	return body, nil
}

func (s *SportsService) endpoint(name string, query url.Values) string {
	return fmt.Sprintf("%s/%s/%s?%s", s.baseURL, url.PathEscape(s.apiKey), name, query.Encode())
}

// SortEvents 按开赛时间升序排列，无法解析时间的赛事排在最后
func SortEvents(events []model.SportsEvent) []model.SportsEvent {
	type keyed struct {
		at    time.Time
		ok    bool
		event model.SportsEvent
	}
	items := make([]keyed, len(events))
	for i, e := range events {
		at, ok := EventTime(e)
		items[i] = keyed{at: at, ok: ok, event: e}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].ok != items[j].ok {
			return items[i].ok
		}
		return items[i].at.Before(items[j].at)
	})
	out := make([]model.SportsEvent, len(items))
	for i, it := range items {
		out[i] = it.event
	}
	return out
}

var eventTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// EventTime 解析赛事时间：优先 strTimestamp，其次 dateEvent + strTime（UTC）
func EventTime(e model.SportsEvent) (time.Time, bool) {
	candidates := []string{strings.TrimSpace(e.Timestamp)}
	if e.DateEvent != "" {
		t := strings.TrimSpace(e.Time)
		if t == "" {
			t = "00:00:00"
		}
		candidates = append(candidates, e.DateEvent+"T"+t)
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		for _, layout := range eventTimeLayouts {
			if at, err := time.ParseInLocation(layout, c, time.UTC); err == nil {
				return at, true
			}
		}
	}
	return time.Time{}, false
}
