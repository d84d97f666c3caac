package handler

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/user/cinestream/internal/utils"
)

// settingDefaults 可配置的播放偏好及默认值
var settingDefaults = map[string]bool{
	"autoplay":       true,
	"autoNext":       true,
	"blockRedirects": true,
	"showAdult":      false,
	"resumePlayback": true,
}

const settingPrefix = "setting:"

func readSettings(session sessions.Session) map[string]bool {
	out := make(map[string]bool, len(settingDefaults))
	for name, def := range settingDefaults {
		out[name] = def
		if v, ok := session.Get(settingPrefix + name).(bool); ok {
			out[name] = v
		}
	}
	return out
}

// GetSettings 读取偏好 GET /api/settings
func (h *Handler) GetSettings(c *gin.Context) {
	utils.Success(c, readSettings(sessions.Default(c)))
}

// UpdateSettings 更新偏好 PUT /api/settings
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req map[string]bool
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "无效的请求参数")
		return
	}
	for name := range req {
		if _, ok := settingDefaults[name]; !ok {
			utils.BadRequest(c, "未知的设置项: "+name)
			return
		}
	}

	session := sessions.Default(c)
	for name, v := range req {
		session.Set(settingPrefix+name, v)
	}
	if err := session.Save(); err != nil {
		h.fail(c, err, "保存设置失败")
		return
	}
	utils.Success(c, readSettings(session))
}
