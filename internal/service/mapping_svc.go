package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/api/dto"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/model"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/repository"
)

// ==================== MappingService 跨店商品映射 ====================

// MappingService 跨店商品映射管理
// 同一实物商品在多个店铺分别上架时，归并到一个主 SKU 下统一看库存：
// real stock 取 source 店铺，total stock 为各店求和（同一实物重复计数，仅参考）
type MappingService struct {
	mappingRepo repository.MappingRepository
	productRepo repository.ProductRepository
}

// NewMappingService 创建映射服务
func NewMappingService(
	mappingRepo repository.MappingRepository,
	productRepo repository.ProductRepository,
) *MappingService {
	return &MappingService{
		mappingRepo: mappingRepo,
		productRepo: productRepo,
	}
}

// ==================== CRUD ====================

// CreateMapping 创建映射
// 冲突检查与写入在同一事务内：任一商品已属于其他映射则整体拒绝
func (s *MappingService) CreateMapping(ctx context.Context, companyID int64, req *dto.CreateMappingReq) (*dto.MappingVO, error) {
	sourceIncluded := false
	for _, id := range req.ProductIDs {
		if id == req.SourceProductID {
			sourceIncluded = true
			break
		}
	}
	if !sourceIncluded {
		return nil, fmt.Errorf("source_product_id 必须包含在 product_ids 中")
	}

	// 归属校验：全部商品须属于当前公司
	products := make(map[int64]*model.Product, len(req.ProductIDs))
	for _, id := range req.ProductIDs {
		p, err := s.productRepo.GetForCompany(ctx, companyID, id)
		if err != nil {
			return nil, fmt.Errorf("商品 %d 不存在或无权访问: %w", id, err)
		}
		products[id] = p
	}

	var mapping *model.ProductMapping
	err := s.mappingRepo.Transaction(ctx, func(txRepo repository.MappingRepository) error {
		taken, err := txRepo.FindItemsByProductIDs(ctx, req.ProductIDs)
		if err != nil {
			return err
		}
		if len(taken) > 0 {
			item := taken[0]
			conflict := &MappingConflictError{
				ProductID: item.ProductID,
				MappingID: item.MappingID,
			}
			if item.Mapping != nil {
				conflict.MasterSKU = item.Mapping.MasterSKU
			}
			return conflict
		}

		mapping = &model.ProductMapping{
			CompanyID:   companyID,
			MasterSKU:   req.MasterSKU,
			DisplayName: req.DisplayName,
		}
		for _, id := range req.ProductIDs {
			mapping.Items = append(mapping.Items, model.ProductMappingItem{
				StoreID:   products[id].StoreID,
				ProductID: id,
				IsSource:  id == req.SourceProductID,
			})
		}
		return txRepo.Create(ctx, mapping)
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("[Mapping] 公司 %d 创建映射 %d (%s)，条目 %d 个",
		companyID, mapping.ID, mapping.MasterSKU, len(mapping.Items))
	return s.GetMapping(ctx, companyID, mapping.ID)
}

// GetMapping 映射详情
func (s *MappingService) GetMapping(ctx context.Context, companyID, id int64) (*dto.MappingVO, error) {
	mapping, err := s.mappingRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	vo := toMappingVO(mapping)
	return &vo, nil
}

// ListMappings 映射列表
func (s *MappingService) ListMappings(ctx context.Context, companyID int64) (*dto.MappingListResp, error) {
	mappings, err := s.mappingRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	list := make([]dto.MappingVO, 0, len(mappings))
	for i := range mappings {
		list = append(list, toMappingVO(&mappings[i]))
	}
	return &dto.MappingListResp{List: list}, nil
}

// DeleteMapping 解除映射
// 只删除归并关系，商品本身不受影响
func (s *MappingService) DeleteMapping(ctx context.Context, companyID, id int64) error {
	return s.mappingRepo.Delete(ctx, companyID, id)
}

// ==================== 映射建议 ====================

// SuggestMappings 扫描未映射商品，给出候选归并建议
// 归一化 SKU 相同且分布在至少两个店铺的为一组；已被忽略的 SKU 不再出现
func (s *MappingService) SuggestMappings(ctx context.Context, companyID int64, req *dto.SuggestMappingsReq) ([]dto.SuggestionVO, error) {
	products, err := s.productRepo.ListUnmapped(ctx, companyID, req.StoreIDs)
	if err != nil {
		return nil, err
	}

	dismissed, err := s.mappingRepo.ListDismissedSKUs(ctx, companyID)
	if err != nil {
		return nil, err
	}
	dismissedSet := make(map[string]struct{}, len(dismissed))
	for _, sku := range dismissed {
		dismissedSet[sku] = struct{}{}
	}

	groups := make(map[string][]dto.SuggestionProductVO)
	for i := range products {
		p := &products[i]
		key := NormalizeSKU(p.SKU)
		if key == "" {
			continue
		}
		if _, ok := dismissedSet[key]; ok {
			continue
		}
		groups[key] = append(groups[key], dto.SuggestionProductVO{
			ProductID: p.ID,
			StoreID:   p.StoreID,
			Name:      p.Name,
			SKU:       p.SKU,
		})
	}

	var suggestions []dto.SuggestionVO
	for key, group := range groups {
		stores := make(map[int64]struct{})
		for _, p := range group {
			stores[p.StoreID] = struct{}{}
		}
		// 单店内 SKU 重复不构成跨店归并
		if len(stores) < 2 {
			continue
		}
		suggestions = append(suggestions, dto.SuggestionVO{SKU: key, Products: group})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		return suggestions[i].SKU < suggestions[j].SKU
	})
	return suggestions, nil
}

// DismissSuggestion 忽略一条建议，之后不再出现
func (s *MappingService) DismissSuggestion(ctx context.Context, companyID int64, req *dto.DismissSuggestionReq) error {
	key := NormalizeSKU(req.SKU)
	if key == "" {
		return fmt.Errorf("SKU 不能为空")
	}
	return s.mappingRepo.CreateDismissal(ctx, &model.MappingSuggestionDismissal{
		CompanyID:     companyID,
		NormalizedSKU: key,
	})
}

// ==================== 工具与视图 ====================

// NormalizeSKU SKU 归一化：去空白、转小写
// 不同店铺录入大小写不一致是常态
func NormalizeSKU(sku string) string {
	return strings.ToLower(strings.TrimSpace(sku))
}

func toMappingVO(m *model.ProductMapping) dto.MappingVO {
	vo := dto.MappingVO{
		ID:          m.ID,
		MasterSKU:   m.MasterSKU,
		DisplayName: m.DisplayName,
		Items:       make([]dto.MappingItemVO, 0, len(m.Items)),
	}

	for i := range m.Items {
		item := &m.Items[i]
		itemVO := dto.MappingItemVO{
			ID:        item.ID,
			StoreID:   item.StoreID,
			ProductID: item.ProductID,
			IsSource:  item.IsSource,
		}
		if item.Product != nil {
			itemVO.ProductName = item.Product.Name
			itemVO.SKU = item.Product.SKU
			itemVO.StockQuantity = item.Product.StockQuantity
			vo.TotalStock += item.Product.StockQuantity
			if item.IsSource {
				vo.RealStock = item.Product.StockQuantity
			}
		}
		vo.Items = append(vo.Items, itemVO)
	}
	return vo
}
