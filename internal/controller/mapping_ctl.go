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

type MappingController struct {
	mappingSvc *service.MappingService
}

func NewMappingController(mappingSvc *service.MappingService) *MappingController {
	return &MappingController{
		mappingSvc: mappingSvc,
	}
}

// CreateMapping 创建跨店映射
// @Summary 创建跨店映射
// @Description 将多个店铺的商品归并到一个主 SKU；任一商品已属于其他映射时整体拒绝
// @Tags Mapping (跨店映射)
// @Accept json
// @Produce json
// @Param request body dto.CreateMappingReq true "映射参数"
// @Success 200 {object} dto.MappingVO "新映射"
// @Failure 409 {object} map[string]string "商品已属于其他映射"
// @Router /api/v1/mappings [post]
func (c *MappingController) CreateMapping(ctx *gin.Context) {
	var req dto.CreateMappingReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	resp, err := c.mappingSvc.CreateMapping(ctx.Request.Context(), middleware.GetCompanyID(ctx), &req)
	if err != nil {
		var conflict *service.MappingConflictError
		if errors.As(err, &conflict) {
			ctx.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
			return
		}
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// GetMappingList 获取映射列表
// @Summary 获取映射列表
// @Description 当前公司全部映射，含 real/total 库存
// @Tags Mapping (跨店映射)
// @Produce json
// @Success 200 {object} dto.MappingListResp "映射列表"
// @Router /api/v1/mappings [get]
func (c *MappingController) GetMappingList(ctx *gin.Context) {
	resp, err := c.mappingSvc.ListMappings(ctx.Request.Context(), middleware.GetCompanyID(ctx))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// GetMappingDetail 获取映射详情
// @Summary 获取映射详情
// @Tags Mapping (跨店映射)
// @Produce json
// @Param id path int true "映射ID"
// @Success 200 {object} dto.MappingVO "映射详情"
// @Failure 404 {object} map[string]string "映射不存在"
// @Router /api/v1/mappings/{id} [get]
func (c *MappingController) GetMappingDetail(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的映射ID"})
		return
	}

	resp, err := c.mappingSvc.GetMapping(ctx.Request.Context(), middleware.GetCompanyID(ctx), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "映射不存在"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// DeleteMapping 解除映射
// @Summary 解除映射
// @Description 只解除归并关系，商品本身不受影响
// @Tags Mapping (跨店映射)
// @Produce json
// @Param id path int true "映射ID"
// @Success 200 {object} map[string]string "{"message": "映射已解除"}"
// @Failure 404 {object} map[string]string "映射不存在"
// @Router /api/v1/mappings/{id} [delete]
func (c *MappingController) DeleteMapping(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的映射ID"})
		return
	}

	if err := c.mappingSvc.DeleteMapping(ctx.Request.Context(), middleware.GetCompanyID(ctx), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "映射不存在"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "映射已解除"})
}

// GetSuggestions 获取映射建议
// @Summary 获取映射建议
// @Description 扫描未映射商品，按归一化 SKU 给出跨店归并候选
// @Tags Mapping (跨店映射)
// @Produce json
// @Param store_ids query []int false "限定店铺范围"
// @Success 200 {array} dto.SuggestionVO "建议列表"
// @Router /api/v1/mappings/suggestions [get]
func (c *MappingController) GetSuggestions(ctx *gin.Context) {
	var req dto.SuggestMappingsReq
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	resp, err := c.mappingSvc.SuggestMappings(ctx.Request.Context(), middleware.GetCompanyID(ctx), &req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// DismissSuggestion 忽略映射建议
// @Summary 忽略映射建议
// @Description 按归一化 SKU 记录，之后该建议不再出现
// @Tags Mapping (跨店映射)
// @Accept json
// @Produce json
// @Param request body dto.DismissSuggestionReq true "忽略参数"
// @Success 200 {object} map[string]string "{"message": "建议已忽略"}"
// @Router /api/v1/mappings/suggestions/dismiss [post]
func (c *MappingController) DismissSuggestion(ctx *gin.Context) {
	var req dto.DismissSuggestionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	if err := c.mappingSvc.DismissSuggestion(ctx.Request.Context(), middleware.GetCompanyID(ctx), &req); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "建议已忽略"})
}
