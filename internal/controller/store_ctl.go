package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/api/dto"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/middleware"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/service"
)

type StoreController struct {
	storeSvc *service.StoreService
}

func NewStoreController(storeSvc *service.StoreService) *StoreController {
	return &StoreController{
		storeSvc: storeSvc,
	}
}

// TestConnection 测试店铺连接
// @Summary 测试店铺连接
// @Description 校验 WooCommerce 站点地址与 API 凭证，不落库
// @Tags Store (店铺管理)
// @Accept json
// @Produce json
// @Param request body dto.TestConnectionReq true "连接参数"
// @Success 200 {object} dto.TestConnectionResp "测试结果"
// @Failure 400 {object} map[string]string "参数错误"
// @Router /api/v1/stores/test-connection [post]
func (c *StoreController) TestConnection(ctx *gin.Context) {
	var req dto.TestConnectionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	resp := c.storeSvc.TestConnection(ctx.Request.Context(), &req)
	ctx.JSON(http.StatusOK, resp)
}

// CreateStore 连接新店铺
// @Summary 连接新店铺
// @Description 先做连接测试，凭证有效才创建
// @Tags Store (店铺管理)
// @Accept json
// @Produce json
// @Param request body dto.CreateStoreReq true "店铺参数"
// @Success 200 {object} dto.StoreVO "新店铺"
// @Failure 400 {object} map[string]string "参数错误或凭证无效"
// @Router /api/v1/stores [post]
func (c *StoreController) CreateStore(ctx *gin.Context) {
	var req dto.CreateStoreReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	resp, err := c.storeSvc.CreateStore(ctx.Request.Context(), middleware.GetCompanyID(ctx), &req)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// GetStoreList 获取店铺列表
// @Summary 获取店铺列表
// @Description 分页查询当前公司的店铺，支持按名称、状态筛选
// @Tags Store (店铺管理)
// @Produce json
// @Param keyword query string false "店铺名称关键词"
// @Param status query string false "状态筛选 active/inactive/error"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.StoreListResp "店铺列表"
// @Router /api/v1/stores [get]
func (c *StoreController) GetStoreList(ctx *gin.Context) {
	var req dto.StoreListReq
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	resp, err := c.storeSvc.ListStores(ctx.Request.Context(), middleware.GetCompanyID(ctx), &req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// GetStoreDetail 获取店铺详情
// @Summary 获取店铺详情
// @Tags Store (店铺管理)
// @Produce json
// @Param id path int true "店铺ID"
// @Success 200 {object} dto.StoreVO "店铺详情"
// @Failure 404 {object} map[string]string "店铺不存在"
// @Router /api/v1/stores/{id} [get]
func (c *StoreController) GetStoreDetail(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的店铺ID"})
		return
	}

	resp, err := c.storeSvc.GetStore(ctx.Request.Context(), middleware.GetCompanyID(ctx), id)
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

// UpdateStore 更新店铺配置
// @Summary 更新店铺配置
// @Description 更新名称、凭证、财务配置；凭证变更时重新做连接测试
// @Tags Store (店铺管理)
// @Accept json
// @Produce json
// @Param id path int true "店铺ID"
// @Param request body dto.UpdateStoreReq true "更新参数"
// @Success 200 {object} dto.StoreVO "更新后的店铺"
// @Failure 400 {object} map[string]string "参数错误或凭证无效"
// @Router /api/v1/stores/{id} [put]
func (c *StoreController) UpdateStore(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的店铺ID"})
		return
	}

	var req dto.UpdateStoreReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	resp, err := c.storeSvc.UpdateStore(ctx.Request.Context(), middleware.GetCompanyID(ctx), id, &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "店铺不存在"})
			return
		}
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// DeleteStore 断开店铺连接
// @Summary 断开店铺连接
// @Description 删除店铺及其本地镜像数据，远端店铺不受影响
// @Tags Store (店铺管理)
// @Produce json
// @Param id path int true "店铺ID"
// @Success 200 {object} map[string]string "{"message": "店铺已断开"}"
// @Failure 404 {object} map[string]string "店铺不存在"
// @Router /api/v1/stores/{id} [delete]
func (c *StoreController) DeleteStore(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的店铺ID"})
		return
	}

	if err := c.storeSvc.DeleteStore(ctx.Request.Context(), middleware.GetCompanyID(ctx), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "店铺不存在"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "店铺已断开"})
}
