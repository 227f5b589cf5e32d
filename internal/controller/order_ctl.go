package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/api/dto"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/middleware"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/service"
)

type OrderController struct {
	orderSvc *service.OrderService
}

func NewOrderController(orderSvc *service.OrderService) *OrderController {
	return &OrderController{
		orderSvc: orderSvc,
	}
}

// GetOrderList 获取订单列表
// @Summary 获取订单列表
// @Description 分页查询订单，支持按店铺、状态、日期区间、关键词筛选
// @Tags Order (订单管理)
// @Produce json
// @Param store_id query int false "店铺ID"
// @Param status query string false "订单状态"
// @Param keyword query string false "订单号/客户关键词"
// @Param start_date query string false "起始日期 2006-01-02"
// @Param end_date query string false "结束日期 2006-01-02"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.OrderListResp "订单列表"
// @Router /api/v1/orders [get]
func (c *OrderController) GetOrderList(ctx *gin.Context) {
	var req dto.OrderListReq
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	resp, err := c.orderSvc.ListOrders(ctx.Request.Context(), middleware.GetCompanyID(ctx), &req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// GetOrderStats 订单统计
// @Summary 订单统计
// @Description 单店铺订单按状态聚合，含营收、退款与净收入估算
// @Tags Order (订单管理)
// @Produce json
// @Param store_id query int true "店铺ID"
// @Param start_date query string false "起始日期 2006-01-02"
// @Param end_date query string false "结束日期 2006-01-02"
// @Success 200 {object} dto.OrderStatsResp "统计结果"
// @Failure 404 {object} map[string]string "店铺不存在"
// @Router /api/v1/orders/stats [get]
func (c *OrderController) GetOrderStats(ctx *gin.Context) {
	var req dto.OrderStatsReq
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	resp, err := c.orderSvc.OrderStats(ctx.Request.Context(), middleware.GetCompanyID(ctx), &req)
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
