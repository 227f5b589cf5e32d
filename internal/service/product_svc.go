package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/api/dto"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/model"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/repository"
)

// ==================== ProductService 商品管理 ====================

// ProductService 商品查询与本地编辑
type ProductService struct {
	productRepo repository.ProductRepository
	storeRepo   repository.StoreRepository
	client      StorefrontClient
}

// NewProductService 创建商品服务
func NewProductService(
	productRepo repository.ProductRepository,
	storeRepo repository.StoreRepository,
	client StorefrontClient,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		storeRepo:   storeRepo,
		client:      client,
	}
}

// ==================== 查询 ====================

// ListProducts 商品列表
func (s *ProductService) ListProducts(ctx context.Context, companyID int64, req *dto.ProductListReq) (*dto.ProductListResp, error) {
	products, total, err := s.productRepo.List(ctx, repository.ProductFilter{
		CompanyID:   companyID,
		StoreID:     req.StoreID,
		Type:        req.Type,
		StockStatus: req.StockStatus,
		Keyword:     req.Keyword,
		Page:        req.Page,
		PageSize:    req.PageSize,
	})
	if err != nil {
		return nil, err
	}

	list := make([]dto.ProductVO, 0, len(products))
	for i := range products {
		list = append(list, toProductVO(&products[i]))
	}
	return &dto.ProductListResp{Total: total, List: list}, nil
}

// GetProduct 商品详情
// variable 商品附带全部变体与变体库存合计
func (s *ProductService) GetProduct(ctx context.Context, companyID, id int64) (*dto.ProductDetailResp, error) {
	product, err := s.productRepo.GetForCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	resp := &dto.ProductDetailResp{
		Product:    toProductVO(product),
		Variations: make([]dto.VariationVO, 0, len(product.Variations)),
	}

	for i := range product.Variations {
		v := &product.Variations[i]
		resp.Variations = append(resp.Variations, dto.VariationVO{
			ID:            v.ID,
			WCVariationID: v.WCVariationID,
			SKU:           v.SKU,
			AttributeText: v.AttributeText,
			Price:         v.Price.StringFixed(2),
			StockQuantity: v.StockQuantity,
			StockStatus:   v.StockStatus,
		})
	}

	if product.Type == model.ProductTypeVariable {
		total, err := s.productRepo.SumVariationStock(ctx, product.ID)
		if err != nil {
			return nil, err
		}
		resp.TotalVariationStock = total
	}

	return resp, nil
}

// ==================== 本地编辑 ====================

// UpdateStock 修改本地库存
// 库存状态按数量重算；push_remote=true 时同步推送远端，
// 远端推送失败则本地修改一并放弃
func (s *ProductService) UpdateStock(ctx context.Context, companyID, id int64, req *dto.UpdateStockReq) (*dto.ProductVO, error) {
	product, err := s.productRepo.GetForCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if product.Type == model.ProductTypeVariable {
		return nil, fmt.Errorf("variable 商品请在变体维度修改库存")
	}

	quantity := *req.StockQuantity

	if req.PushRemote {
		store, err := s.storeRepo.GetByID(ctx, product.StoreID)
		if err != nil {
			return nil, err
		}
		if err := s.client.UpdateProductStock(ctx, store, product.WCProductID, quantity); err != nil {
			return nil, err
		}
		logrus.Infof("[Product] 商品 %d 库存 %d 已推送店铺 %d", product.ID, quantity, store.ID)
	}

	if err := s.productRepo.UpdateFields(ctx, product.ID, map[string]interface{}{
		"stock_quantity": quantity,
		"stock_status":   model.DeriveStockStatus(quantity),
	}); err != nil {
		return nil, err
	}

	product.StockQuantity = quantity
	product.StockStatus = model.DeriveStockStatus(quantity)
	vo := toProductVO(product)
	return &vo, nil
}

// UpdatePurchasePrice 录入采购价
// 纯本地字段，后续同步不会覆盖
func (s *ProductService) UpdatePurchasePrice(ctx context.Context, companyID, id int64, req *dto.UpdatePurchasePriceReq) (*dto.ProductVO, error) {
	product, err := s.productRepo.GetForCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	price, err := decimal.NewFromString(req.PurchasePrice)
	if err != nil {
		return nil, fmt.Errorf("采购价格式无效: %s", req.PurchasePrice)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("采购价不能为负数")
	}

	if err := s.productRepo.UpdateFields(ctx, product.ID, map[string]interface{}{
		"purchase_price": price,
	}); err != nil {
		return nil, err
	}

	product.PurchasePrice = decimal.NewNullDecimal(price)
	vo := toProductVO(product)
	return &vo, nil
}

// ==================== 视图转换 ====================

func toProductVO(p *model.Product) dto.ProductVO {
	vo := dto.ProductVO{
		ID:            p.ID,
		StoreID:       p.StoreID,
		WCProductID:   p.WCProductID,
		SKU:           p.SKU,
		Name:          p.Name,
		Type:          p.Type,
		Categories:    p.Categories,
		Price:         p.Price.StringFixed(2),
		StockQuantity: p.StockQuantity,
		StockStatus:   p.StockStatus,
		IsActive:      p.IsActive,
		SyncedAt:      p.SyncedAt,
	}
	if p.PurchasePrice.Valid {
		price := p.PurchasePrice.Decimal.StringFixed(2)
		vo.PurchasePrice = &price
	}
	return vo
}
