package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/api/dto"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/model"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/repository"
)

// ==================== StoreService 店铺管理 ====================

// StoreService 店铺生命周期管理
type StoreService struct {
	storeRepo repository.StoreRepository
	client    StorefrontClient
}

// NewStoreService 创建店铺服务
func NewStoreService(storeRepo repository.StoreRepository, client StorefrontClient) *StoreService {
	return &StoreService{storeRepo: storeRepo, client: client}
}

// ==================== 连接测试 ====================

// TestConnection 校验站点地址与 API 凭证
// 失败原因作为结果返回，向导页面直接展示
func (s *StoreService) TestConnection(ctx context.Context, req *dto.TestConnectionReq) *dto.TestConnectionResp {
	if err := s.client.TestConnection(ctx, req.BaseURL, req.ConsumerKey, req.ConsumerSecret); err != nil {
		return &dto.TestConnectionResp{Success: false, Error: err.Error()}
	}
	return &dto.TestConnectionResp{Success: true}
}

// ==================== CRUD ====================

// CreateStore 连接新店铺
// 先做一次连接测试，凭证无效直接拒绝创建
func (s *StoreService) CreateStore(ctx context.Context, companyID int64, req *dto.CreateStoreReq) (*dto.StoreVO, error) {
	if err := s.client.TestConnection(ctx, req.BaseURL, req.ConsumerKey, req.ConsumerSecret); err != nil {
		return nil, err
	}

	store := &model.Store{
		CompanyID:      companyID,
		Name:           req.Name,
		BaseURL:        req.BaseURL,
		ConsumerKey:    req.ConsumerKey,
		ConsumerSecret: req.ConsumerSecret,
		Status:         model.StoreStatusActive,
		Currency:       req.Currency,
		CommissionRate: parseDecimal(req.CommissionRate),
		ShippingCost:   parseDecimal(req.ShippingCost),
	}
	if store.Currency == "" {
		store.Currency = "USD"
	}

	if err := s.storeRepo.Create(ctx, store); err != nil {
		return nil, err
	}

	logrus.Infof("[Store] 公司 %d 连接新店铺 %d (%s)", companyID, store.ID, store.Name)
	vo := toStoreVO(store)
	return &vo, nil
}

// GetStore 店铺详情
func (s *StoreService) GetStore(ctx context.Context, companyID, id int64) (*dto.StoreVO, error) {
	store, err := s.storeRepo.GetForCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	vo := toStoreVO(store)
	return &vo, nil
}

// ListStores 店铺列表
func (s *StoreService) ListStores(ctx context.Context, companyID int64, req *dto.StoreListReq) (*dto.StoreListResp, error) {
	stores, total, err := s.storeRepo.List(ctx, repository.StoreFilter{
		CompanyID: companyID,
		Status:    req.Status,
		Keyword:   req.Keyword,
		Page:      req.Page,
		PageSize:  req.PageSize,
	})
	if err != nil {
		return nil, err
	}

	list := make([]dto.StoreVO, 0, len(stores))
	for i := range stores {
		list = append(list, toStoreVO(&stores[i]))
	}
	return &dto.StoreListResp{Total: total, List: list}, nil
}

// UpdateStore 更新店铺配置
// 凭证变更时重新做连接测试
func (s *StoreService) UpdateStore(ctx context.Context, companyID, id int64, req *dto.UpdateStoreReq) (*dto.StoreVO, error) {
	store, err := s.storeRepo.GetForCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if req.ConsumerKey != nil || req.ConsumerSecret != nil {
		key := store.ConsumerKey
		secret := store.ConsumerSecret
		if req.ConsumerKey != nil {
			key = *req.ConsumerKey
		}
		if req.ConsumerSecret != nil {
			secret = *req.ConsumerSecret
		}
		if err := s.client.TestConnection(ctx, store.BaseURL, key, secret); err != nil {
			return nil, err
		}
		store.ConsumerKey = key
		store.ConsumerSecret = secret
		// 新凭证验证通过，error 态恢复
		if store.Status == model.StoreStatusError {
			store.Status = model.StoreStatusActive
		}
	}

	if req.Name != nil {
		store.Name = *req.Name
	}
	if req.Status != nil {
		store.Status = *req.Status
	}
	if req.Currency != nil {
		store.Currency = *req.Currency
	}
	if req.CommissionRate != nil {
		store.CommissionRate = parseDecimal(*req.CommissionRate)
	}
	if req.ShippingCost != nil {
		store.ShippingCost = parseDecimal(*req.ShippingCost)
	}

	if err := s.storeRepo.Update(ctx, store); err != nil {
		return nil, err
	}
	vo := toStoreVO(store)
	return &vo, nil
}

// DeleteStore 断开店铺连接
// 本地镜像数据（商品/变体/订单/映射条目）一并删除，远端店铺不受影响
func (s *StoreService) DeleteStore(ctx context.Context, companyID, id int64) error {
	store, err := s.storeRepo.GetForCompany(ctx, companyID, id)
	if err != nil {
		return err
	}
	logrus.Infof("[Store] 公司 %d 断开店铺 %d (%s)", companyID, store.ID, store.Name)
	return s.storeRepo.Delete(ctx, store.ID)
}

// ==================== 视图转换 ====================

func toStoreVO(store *model.Store) dto.StoreVO {
	return dto.StoreVO{
		ID:             store.ID,
		Name:           store.Name,
		BaseURL:        store.BaseURL,
		Status:         store.Status,
		Currency:       store.Currency,
		CommissionRate: store.CommissionRate.StringFixed(2),
		ShippingCost:   store.ShippingCost.StringFixed(2),
		IsSyncing:      store.IsSyncing,
		LastSyncAt:     store.LastSyncAt,
		CreatedAt:      store.CreatedAt,
	}
}
