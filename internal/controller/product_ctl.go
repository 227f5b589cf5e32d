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

type ProductController struct {
	productSvc *service.ProductService
}

func NewProductController(productSvc *service.ProductService) *ProductController {
	return &ProductController{
		productSvc: productSvc,
	}
}

// GetProductList 获取商品列表
// @Summary 获取商品列表
// @Description 分页查询当前公司全部店铺的商品，支持按店铺、类型、库存状态、关键词筛选
// @Tags Product (商品管理)
// @Produce json
// @Param store_id query int false "店铺ID"
// @Param type query string false "商品类型 simple/variable"
// @Param stock_status query string false "库存状态 instock/outofstock"
// @Param keyword query string false "名称或SKU关键词"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.ProductListResp "商品列表"
// @Router /api/v1/products [get]
func (c *ProductController) GetProductList(ctx *gin.Context) {
	var req dto.ProductListReq
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	resp, err := c.productSvc.ListProducts(ctx.Request.Context(), middleware.GetCompanyID(ctx), &req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// GetProductDetail 获取商品详情
// @Summary 获取商品详情
// @Description variable 商品附带全部变体与变体库存合计
// @Tags Product (商品管理)
// @Produce json
// @Param id path int true "商品ID"
// @Success 200 {object} dto.ProductDetailResp "商品详情"
// @Failure 404 {object} map[string]string "商品不存在"
// @Router /api/v1/products/{id} [get]
func (c *ProductController) GetProductDetail(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的商品ID"})
		return
	}

	resp, err := c.productSvc.GetProduct(ctx.Request.Context(), middleware.GetCompanyID(ctx), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "商品不存在"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// UpdateStock 修改本地库存
// @Summary 修改本地库存
// @Description 修改本地库存并重算库存状态；push_remote=true 时同步推送远端店铺
// @Tags Product (商品管理)
// @Accept json
// @Produce json
// @Param id path int true "商品ID"
// @Param request body dto.UpdateStockReq true "库存参数"
// @Success 200 {object} dto.ProductVO "更新后的商品"
// @Failure 400 {object} map[string]string "参数错误或远端推送失败"
// @Router /api/v1/products/{id}/stock [put]
func (c *ProductController) UpdateStock(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的商品ID"})
		return
	}

	var req dto.UpdateStockReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	resp, err := c.productSvc.UpdateStock(ctx.Request.Context(), middleware.GetCompanyID(ctx), id, &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "商品不存在"})
			return
		}
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// UpdatePurchasePrice 录入采购价
// @Summary 录入采购价
// @Description 采购价仅存在本地，后续同步不会覆盖
// @Tags Product (商品管理)
// @Accept json
// @Produce json
// @Param id path int true "商品ID"
// @Param request body dto.UpdatePurchasePriceReq true "采购价参数"
// @Success 200 {object} dto.ProductVO "更新后的商品"
// @Failure 400 {object} map[string]string "参数错误"
// @Router /api/v1/products/{id}/purchase-price [put]
func (c *ProductController) UpdatePurchasePrice(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的商品ID"})
		return
	}

	var req dto.UpdatePurchasePriceReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	resp, err := c.productSvc.UpdatePurchasePrice(ctx.Request.Context(), middleware.GetCompanyID(ctx), id, &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "商品不存在"})
			return
		}
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}
