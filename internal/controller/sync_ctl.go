package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/middleware"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/service"
)

type SyncController struct {
	syncSvc *service.SyncService
}

func NewSyncController(syncSvc *service.SyncService) *SyncController {
	return &SyncController{
		syncSvc: syncSvc,
	}
}

// StartSync 触发店铺同步
// @Summary 触发店铺同步
// @Description 抢占同步门闩后立即返回，同步在后台执行；已有同步在跑时 started=false
// @Tags Sync (数据同步)
// @Produce json
// @Param id path int true "店铺ID"
// @Success 200 {object} dto.StartSyncResp "触发结果"
// @Failure 404 {object} map[string]string "店铺不存在"
// @Router /api/v1/stores/{id}/sync [post]
func (c *SyncController) StartSync(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的店铺ID"})
		return
	}

	resp, err := c.syncSvc.StartSync(ctx.Request.Context(), middleware.GetCompanyID(ctx), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "店铺不存在"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// GetSyncStatus 查询同步进度
// @Summary 查询同步进度
// @Description 前端轮询接口，返回当前步骤与各实体累计处理数
// @Tags Sync (数据同步)
// @Produce json
// @Param id path int true "店铺ID"
// @Success 200 {object} dto.SyncStatusResp "同步进度快照"
// @Failure 404 {object} map[string]string "店铺不存在"
// @Router /api/v1/stores/{id}/sync-status [get]
func (c *SyncController) GetSyncStatus(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的店铺ID"})
		return
	}

	resp, err := c.syncSvc.GetSyncStatus(ctx.Request.Context(), middleware.GetCompanyID(ctx), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "店铺不存在"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}
