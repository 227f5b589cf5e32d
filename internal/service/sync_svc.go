package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/api/dto"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/model"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/repository"
)

// ==================== SyncService 同步编排 ====================

// SyncService 单店铺同步编排器
// 同步是一条固定路径的状态机：connection -> products -> variations -> orders -> saving，
// 任一步失败立即终止，sync_step 冻结在出错节点，已落库的数据保留不回滚。
//
// 互斥依赖 StoreRepository.BeginSync 的条件更新，同一店铺任意时刻至多一条同步在跑；
// 不排队、不自动重试，由用户或定时任务再次触发。
type SyncService struct {
	storeRepo  repository.StoreRepository
	reconciler *ReconcileService
	client     StorefrontClient

	pageSize   int
	runTimeout time.Duration
}

// NewSyncService 创建同步编排器
func NewSyncService(
	storeRepo repository.StoreRepository,
	reconciler *ReconcileService,
	client StorefrontClient,
	pageSize int,
	runTimeout time.Duration,
) *SyncService {
	if pageSize <= 0 {
		pageSize = 50
	}
	if runTimeout <= 0 {
		runTimeout = 30 * time.Minute
	}
	return &SyncService{
		storeRepo:  storeRepo,
		reconciler: reconciler,
		client:     client,
		pageSize:   pageSize,
		runTimeout: runTimeout,
	}
}

// ==================== 触发入口 ====================

// StartSync 触发一次店铺同步
// 抢占门闩成功后立即返回，同步在后台 goroutine 执行；
// 门闩被占时返回 started=false，不视为错误
func (s *SyncService) StartSync(ctx context.Context, companyID, storeID int64) (*dto.StartSyncResp, error) {
	store, err := s.storeRepo.GetForCompany(ctx, companyID, storeID)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	ok, err := s.storeRepo.BeginSync(ctx, store.ID, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &dto.StartSyncResp{
			Success: true,
			Message: "同步正在进行中，请稍后再试",
			Started: false,
		}, nil
	}

	logrus.Infof("[Sync] 店铺 %d 同步启动 run=%s", store.ID, runID)
	go s.runSync(store.ID, runID)

	return &dto.StartSyncResp{
		Success: true,
		Message: "同步已启动",
		Started: true,
	}, nil
}

// SyncStore 同步一个店铺并等待完成（定时任务用）
// started=false 表示门闩被占，本轮跳过
func (s *SyncService) SyncStore(ctx context.Context, storeID int64) (bool, error) {
	runID := uuid.NewString()
	ok, err := s.storeRepo.BeginSync(ctx, storeID, runID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	s.runSync(storeID, runID)
	return true, nil
}

// ==================== 状态机主体 ====================

// runSync 执行一次完整同步
// 运行在独立 context 上，不随触发请求取消
func (s *SyncService) runSync(storeID int64, runID string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		logrus.Errorf("[Sync] 店铺 %d 读取失败 run=%s: %v", storeID, runID, err)
		s.releaseLatch(storeID)
		return
	}

	start := time.Now()

	// 沿 SyncStepOrder 单向推进，任一步失败立即终止；
	// 首步 connection 已由 BeginSync 落库，无需 enterStep
	var variableParents []int64
	for step := model.SyncStepOrder[0]; step != model.SyncStepSaving; {
		if err := s.runStep(ctx, store, step, &variableParents); err != nil {
			s.failSync(store, step, err)
			return
		}
		next, ok := model.NextSyncStep(step)
		if !ok {
			break
		}
		step = next
		s.enterStep(ctx, store.ID, step)
	}

	// saving 收尾
	now := time.Now()
	fields := map[string]interface{}{
		"is_syncing":   false,
		"sync_step":    "",
		"sync_error":   "",
		"last_sync_at": now,
	}
	// 凭证恢复有效后店铺状态回归 active
	if store.Status == model.StoreStatusError {
		fields["status"] = model.StoreStatusActive
	}
	if err := s.storeRepo.UpdateSyncFields(ctx, store.ID, fields); err != nil {
		logrus.Errorf("[Sync] 店铺 %d 收尾落库失败 run=%s: %v", store.ID, runID, err)
		s.releaseLatch(store.ID)
		return
	}

	logrus.Infof("[Sync] 店铺 %d 同步完成 run=%s 耗时=%s", store.ID, runID, time.Since(start).Round(time.Millisecond))
}

// runStep 执行一个状态机节点
// variableParents 在 products 步骤产出，variations 步骤消费
func (s *SyncService) runStep(ctx context.Context, store *model.Store, step model.SyncStep, variableParents *[]int64) error {
	switch step {
	case model.SyncStepConnection:
		return s.client.TestConnection(ctx, store.BaseURL, store.ConsumerKey, store.ConsumerSecret)
	case model.SyncStepProducts:
		ids, err := s.syncProducts(ctx, store)
		*variableParents = ids
		return err
	case model.SyncStepVariations:
		return s.syncVariations(ctx, store, *variableParents)
	case model.SyncStepOrders:
		return s.syncOrders(ctx, store)
	}
	return nil
}

// syncProducts 分页拉取并对账商品
// 返回本次拉取中出现过的 variable 商品远端 ID（变体步骤的工作清单）
func (s *SyncService) syncProducts(ctx context.Context, store *model.Store) ([]int64, error) {
	var variableIDs []int64
	seen := make(map[int64]struct{})
	processed := 0

	for page := 1; ; page++ {
		records, err := s.client.FetchProductsPage(ctx, store, page, s.pageSize)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			break
		}

		for _, rec := range records {
			if rec.Type == model.ProductTypeVariable {
				if _, ok := seen[rec.ID]; !ok {
					seen[rec.ID] = struct{}{}
					variableIDs = append(variableIDs, rec.ID)
				}
			}
		}

		result, err := s.reconciler.ReconcileProductsPage(ctx, store, records)
		if err != nil {
			return nil, err
		}
		processed += result.Processed()

		// 进度逐页落库，供前端轮询
		if err := s.storeRepo.UpdateSyncFields(ctx, store.ID, map[string]interface{}{
			"sync_products_count": processed,
		}); err != nil {
			logrus.Warnf("[Sync] 店铺 %d 商品进度落库失败: %v", store.ID, err)
		}

		if len(records) < s.pageSize {
			break
		}
	}

	return variableIDs, nil
}

// syncVariations 对每个 variable 父商品分页拉取并对账变体
func (s *SyncService) syncVariations(ctx context.Context, store *model.Store, wcProductIDs []int64) error {
	if len(wcProductIDs) == 0 {
		return nil
	}

	parents, err := s.reconciler.productRepo.MapByWCProductIDs(ctx, store.ID, wcProductIDs)
	if err != nil {
		return err
	}
	// map 遍历顺序不稳定，按远端 ID 升序处理
	sort.Slice(wcProductIDs, func(i, j int) bool { return wcProductIDs[i] < wcProductIDs[j] })

	processed := 0
	for _, wcID := range wcProductIDs {
		parent, ok := parents[wcID]
		if !ok {
			// 商品步骤逐条兜底时可能有单条落库失败
			logrus.Warnf("[Sync] 店铺 %d 商品 %d 本地缺失，跳过其变体", store.ID, wcID)
			continue
		}

		for page := 1; ; page++ {
			records, err := s.client.FetchVariationsPage(ctx, store, wcID, page, s.pageSize)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				break
			}

			result, err := s.reconciler.ReconcileVariationsPage(ctx, &parent, records)
			if err != nil {
				return err
			}
			processed += result.Processed()

			if err := s.storeRepo.UpdateSyncFields(ctx, store.ID, map[string]interface{}{
				"sync_variations_count": processed,
			}); err != nil {
				logrus.Warnf("[Sync] 店铺 %d 变体进度落库失败: %v", store.ID, err)
			}

			if len(records) < s.pageSize {
				break
			}
		}
	}

	return nil
}

// syncOrders 分页拉取并对账订单
func (s *SyncService) syncOrders(ctx context.Context, store *model.Store) error {
	processed := 0

	for page := 1; ; page++ {
		records, err := s.client.FetchOrdersPage(ctx, store, page, s.pageSize)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			break
		}

		result, err := s.reconciler.ReconcileOrdersPage(ctx, store, records)
		if err != nil {
			return err
		}
		processed += result.Processed()

		if err := s.storeRepo.UpdateSyncFields(ctx, store.ID, map[string]interface{}{
			"sync_orders_count": processed,
		}); err != nil {
			logrus.Warnf("[Sync] 店铺 %d 订单进度落库失败: %v", store.ID, err)
		}

		if len(records) < s.pageSize {
			break
		}
	}

	return nil
}

// ==================== 失败与收尾 ====================

// enterStep 状态机推进到下一节点
func (s *SyncService) enterStep(ctx context.Context, storeID int64, step model.SyncStep) {
	if err := s.storeRepo.UpdateSyncFields(ctx, storeID, map[string]interface{}{
		"sync_step": string(step),
	}); err != nil {
		logrus.Warnf("[Sync] 店铺 %d 步骤 %s 落库失败: %v", storeID, step, err)
	}
}

// failSync 同步失败终止
// sync_step 冻结在出错节点不清空，诊断时可直接看到失败位置；
// 用独立的短超时 context 落库，主 context 可能已超时
func (s *SyncService) failSync(store *model.Store, step model.SyncStep, err error) {
	logrus.Errorf("[Sync] 店铺 %d 同步在 %s 步骤失败: %v", store.ID, step, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fields := map[string]interface{}{
		"is_syncing": false,
		"sync_step":  string(step),
		"sync_error": err.Error(),
	}

	// 凭证失效时店铺进入 error 态，列表页醒目提示重新配置
	var authErr *AuthError
	if errors.As(err, &authErr) {
		fields["status"] = model.StoreStatusError
	}

	if dbErr := s.storeRepo.UpdateSyncFields(ctx, store.ID, fields); dbErr != nil {
		logrus.Errorf("[Sync] 店铺 %d 失败状态落库失败: %v", store.ID, dbErr)
	}
}

// releaseLatch 异常路径兜底释放门闩，避免店铺永久卡在同步中
func (s *SyncService) releaseLatch(storeID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.storeRepo.UpdateSyncFields(ctx, storeID, map[string]interface{}{
		"is_syncing": false,
	}); err != nil {
		logrus.Errorf("[Sync] 店铺 %d 门闩释放失败: %v", storeID, err)
	}
}

// ==================== 进度读取 ====================

// GetSyncStatus 同步进度快照
func (s *SyncService) GetSyncStatus(ctx context.Context, companyID, storeID int64) (*dto.SyncStatusResp, error) {
	store, err := s.storeRepo.GetForCompany(ctx, companyID, storeID)
	if err != nil {
		return nil, err
	}

	resp := &dto.SyncStatusResp{
		IsSyncing:           store.IsSyncing,
		SyncProductsCount:   store.SyncProductsCount,
		SyncVariationsCount: store.SyncVariationsCount,
		SyncOrdersCount:     store.SyncOrdersCount,
		LastSyncAt:          store.LastSyncAt,
	}
	if store.SyncStep != "" {
		step := store.SyncStep
		resp.SyncStep = &step
	}
	if store.SyncError != "" {
		msg := store.SyncError
		resp.SyncError = &msg
	}
	return resp, nil
}
