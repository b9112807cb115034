package dashboard

import (
	"net/http"

	"github.com/MadhusudanDhakad/file-management-app/internal/errors"
	"github.com/MadhusudanDhakad/file-management-app/internal/middleware"
	"github.com/MadhusudanDhakad/file-management-app/internal/service"

	"github.com/gin-gonic/gin"
)

// DashboardHandler 处理仪表盘统计请求
type DashboardHandler struct {
	statsService service.StatsServiceInterface
}

func NewDashboardHandler(statsService service.StatsServiceInterface) *DashboardHandler {
	return &DashboardHandler{statsService}
}

// Summary 返回当前用户的文件统计，管理员额外返回所有用户的文件数量明细
func (h *DashboardHandler) Summary(c *gin.Context) {
	user := middleware.CurrentUser(c)

	stats, err := h.statsService.Summary(user)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
