package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/cinestream/internal/utils"
)

// SportsLeagues 已配置的联赛 GET /api/sports/leagues
func (h *Handler) SportsLeagues(c *gin.Context) {
	utils.Success(c, h.Sports.Leagues())
}

// SportsMatches 多联赛赛程聚合 GET /api/sports/matches?leagues=4328,4387
func (h *Handler) SportsMatches(c *gin.Context) {
	var ids []string
	for _, id := range strings.Split(c.Query("leagues"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	events, err := h.Sports.Matches(c.Request.Context(), ids)
	if err != nil {
		h.fail(c, err, "获取赛程失败")
		return
	}
	utils.Success(c, events)
}

// SportsEvent 赛事详情 GET /api/sports/event/:id
func (h *Handler) SportsEvent(c *gin.Context) {
	body, err := h.Sports.Event(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "获取赛事详情失败")
		return
	}
	utils.RawJSON(c, body)
}

// SportsTeams 球队搜索 GET /api/sports/teams?name=
func (h *Handler) SportsTeams(c *gin.Context) {
	body, err := h.Sports.SearchTeams(c.Request.Context(), c.Query("name"))
	if err != nil {
		h.fail(c, err, "搜索球队失败")
		return
	}
	utils.RawJSON(c, body)
}
