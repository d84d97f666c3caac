package service

import (
	"net/url"
	"regexp"
	"strings"
)

// tmdbRoute 一个 requestID 对应的上游请求模板
type tmdbRoute struct {
	path     string            // 路径模板，{name} 会被参数替换
	required []string          // 必填查询参数（路径占位符自动必填）
	optional []string          // 允许透传的查询参数
	defaults map[string]string // 未提供时使用的默认值（可用于占位符）
	fixed    map[string]string // 固定追加的查询参数
}

var (
	listParams     = []string{"page", "language", "region"}
	detailParams   = []string{"language", "append_to_response"}
	searchParams   = []string{"page", "language", "include_adult", "region", "year", "primary_release_year", "first_air_date_year"}
	discoverParams = []string{
		"page", "language", "region", "sort_by", "include_adult", "with_genres", "without_genres",
		"year", "primary_release_year", "first_air_date_year", "with_original_language",
		"vote_average.gte", "vote_count.gte", "with_watch_providers", "watch_region",
		"with_runtime.gte", "with_runtime.lte", "with_keywords", "with_networks", "with_companies",
	}
)

// tmdbRoutes 统一路由表
var tmdbRoutes = map[string]tmdbRoute{
	// 趋势
	"trending":       {path: "/trending/{media_type}/{time_window}", optional: listParams, defaults: map[string]string{"media_type": "all", "time_window": "day"}},
	"trendingMovies": {path: "/trending/movie/{time_window}", optional: listParams, defaults: map[string]string{"time_window": "week"}},
	"trendingTv":     {path: "/trending/tv/{time_window}", optional: listParams, defaults: map[string]string{"time_window": "week"}},

	// 电影列表
	"popularMovies":    {path: "/movie/popular", optional: listParams},
	"topRatedMovies":   {path: "/movie/top_rated", optional: listParams},
	"upcomingMovies":   {path: "/movie/upcoming", optional: listParams},
	"nowPlayingMovies": {path: "/movie/now_playing", optional: listParams},

	// 剧集列表
	"popularTv":     {path: "/tv/popular", optional: listParams},
	"topRatedTv":    {path: "/tv/top_rated", optional: listParams},
	"airingTodayTv": {path: "/tv/airing_today", optional: listParams},
	"onTheAirTv":    {path: "/tv/on_the_air", optional: listParams},

	// 详情
	"movieDetails":          {path: "/movie/{id}", optional: detailParams},
	"tvDetails":             {path: "/tv/{id}", optional: detailParams},
	"movieCredits":          {path: "/movie/{id}/credits", optional: []string{"language"}},
	"tvCredits":             {path: "/tv/{id}/aggregate_credits", optional: []string{"language"}},
	"movieVideos":           {path: "/movie/{id}/videos", optional: []string{"language", "include_video_language"}},
	"tvVideos":              {path: "/tv/{id}/videos", optional: []string{"language", "include_video_language"}},
	"movieRecommendations":  {path: "/movie/{id}/recommendations", optional: listParams},
	"tvRecommendations":     {path: "/tv/{id}/recommendations", optional: listParams},
	"similarMovies":         {path: "/movie/{id}/similar", optional: listParams},
	"similarTv":             {path: "/tv/{id}/similar", optional: listParams},
	"movieImages":           {path: "/movie/{id}/images", optional: []string{"include_image_language"}, defaults: map[string]string{"include_image_language": "en,null"}},
	"tvImages":              {path: "/tv/{id}/images", optional: []string{"include_image_language"}, defaults: map[string]string{"include_image_language": "en,null"}},
	"movieWatchProviders":   {path: "/movie/{id}/watch/providers"},
	"tvWatchProviders":      {path: "/tv/{id}/watch/providers"},
	"movieExternalIds":      {path: "/movie/{id}/external_ids"},
	"tvExternalIds":         {path: "/tv/{id}/external_ids"},
	"tvSeason":              {path: "/tv/{id}/season/{season}", optional: detailParams},
	"tvEpisode":             {path: "/tv/{id}/season/{season}/episode/{episode}", optional: detailParams},
	"collection":            {path: "/collection/{id}", optional: []string{"language"}},
	"personDetails":         {path: "/person/{id}", optional: detailParams},
	"personCombinedCredits": {path: "/person/{id}/combined_credits", optional: []string{"language"}},

	// 搜索
	"searchMulti":  {path: "/search/multi", required: []string{"query"}, optional: searchParams},
	"searchMovies": {path: "/search/movie", required: []string{"query"}, optional: searchParams},
	"searchTv":     {path: "/search/tv", required: []string{"query"}, optional: searchParams},
	"searchPerson": {path: "/search/person", required: []string{"query"}, optional: searchParams},

	// 发现与类型
	"discoverMovies": {path: "/discover/movie", optional: discoverParams, defaults: map[string]string{"sort_by": "popularity.desc"}, fixed: map[string]string{"include_video": "false"}},
	"discoverTv":     {path: "/discover/tv", optional: discoverParams, defaults: map[string]string{"sort_by": "popularity.desc"}},
	"movieGenres":    {path: "/genre/movie/list", optional: []string{"language"}},
	"tvGenres":       {path: "/genre/tv/list", optional: []string{"language"}},
}

var (
	placeholderRe = regexp.MustCompile(`\{([a-z_]+)\}`)
	digitsRe      = regexp.MustCompile(`^[0-9]{1,10}$`)
)

// placeholderValid 校验路径占位符取值，防止拼接出任意上游路径
func placeholderValid(name, value string) bool {
	switch name {
	case "media_type":
		return value == "all" || value == "movie" || value == "tv" || value == "person"
	case "time_window":
		return value == "day" || value == "week"
	default:
		return digitsRe.MatchString(value)
	}
}

// buildTMDBPath 根据路由与参数构造上游路径和查询串（不含 api_key）
func buildTMDBPath(requestID string, params url.Values) (string, url.Values, error) {
	if requestID == "" {
		return "", nil, missingParam("requestID")
	}
	route, ok := tmdbRoutes[requestID]
	if !ok {
		return "", nil, ErrUnknownRequest
	}

	value := func(name string) string {
		if v := strings.TrimSpace(params.Get(name)); v != "" {
			return v
		}
		return route.defaults[name]
	}

	var pathErr error
	path := placeholderRe.ReplaceAllStringFunc(route.path, func(m string) string {
		name := m[1 : len(m)-1]
		v := value(name)
		if pathErr != nil {
			return m
		}
		if v == "" {
			pathErr = missingParam(name)
			return m
		}
		if !placeholderValid(name, v) {
			pathErr = invalidParam(name)
			return m
		}
		return url.PathEscape(v)
	})
	if pathErr != nil {
		return "", nil, pathErr
	}

	query := url.Values{}
	for _, name := range route.required {
		v := value(name)
		if v == "" {
			return "", nil, missingParam(name)
		}
		query.Set(name, v)
	}
	for _, name := range route.optional {
		if v := value(name); v != "" {
			query.Set(name, v)
		}
	}
	for k, v := range route.fixed {
		query.Set(k, v)
	}
	return path, query, nil
}

// TMDBRequestIDs 返回全部已注册的 requestID
func TMDBRequestIDs() []string {
	ids := make([]string, 0, len(tmdbRoutes))
	for id := range tmdbRoutes {
		ids = append(ids, id)
	}
	return ids
}
