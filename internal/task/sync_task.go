package task

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/repository"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/service"
)

// ==================== StoreSyncTask 店铺定时同步任务 ====================

// StoreSyncTask 所有活跃店铺的后台定时同步
// 与手动触发共用同一条同步路径，互斥同样由数据库门闩保证：
// 某店铺正被手动同步时，本轮直接跳过该店铺
type StoreSyncTask struct {
	storeRepo repository.StoreRepository
	syncSvc   *service.SyncService
	cron      *cron.Cron

	// 并发控制
	concurrencyLimit int
	sleepTime        time.Duration

	// cron 表达式（含秒位）
	schedule string
}

// NewStoreSyncTask 创建定时同步任务
func NewStoreSyncTask(storeRepo repository.StoreRepository, syncSvc *service.SyncService) *StoreSyncTask {
	return &StoreSyncTask{
		storeRepo:        storeRepo,
		syncSvc:          syncSvc,
		cron:             cron.New(cron.WithSeconds()),
		concurrencyLimit: 3,
		sleepTime:        500 * time.Millisecond,
		schedule:         "0 */30 * * * *", // 每 30 分钟
	}
}

// SetConcurrency 设置并发参数
func (t *StoreSyncTask) SetConcurrency(limit int, sleep time.Duration) {
	if limit > 0 {
		t.concurrencyLimit = limit
	}
	t.sleepTime = sleep
}

// SetSchedule 设置执行周期
func (t *StoreSyncTask) SetSchedule(spec string) {
	if spec != "" {
		t.schedule = spec
	}
}

// Start 启动定时任务
func (t *StoreSyncTask) Start() {
	// 首次执行（延迟 1 分钟，等服务完全就绪）
	go func() {
		time.Sleep(time.Minute)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
		defer cancel()
		logrus.Info("[StoreSyncTask] 执行首次全量同步...")
		t.syncAllStores(ctx)
	}()

	_, err := t.cron.AddFunc(t.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
		defer cancel()
		t.syncAllStores(ctx)
	})
	if err != nil {
		logrus.Errorf("[StoreSyncTask] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	logrus.Infof("[StoreSyncTask] 已启动 (%s)", t.schedule)
}

// Stop 停止任务，等待在跑的调度回调退出
func (t *StoreSyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	logrus.Info("[StoreSyncTask] 已停止")
}

// SyncAllNow 立即触发一轮全量同步
func (t *StoreSyncTask) SyncAllNow() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
		defer cancel()
		t.syncAllStores(ctx)
	}()
}

// syncAllStores 同步所有活跃店铺
func (t *StoreSyncTask) syncAllStores(ctx context.Context) {
	stores, err := t.storeRepo.ListActive(ctx)
	if err != nil {
		logrus.Errorf("[StoreSyncTask] 获取店铺列表失败: %v", err)
		return
	}

	if len(stores) == 0 {
		logrus.Info("[StoreSyncTask] 无活跃店铺需要同步")
		return
	}

	sem := make(chan struct{}, t.concurrencyLimit)
	var wg sync.WaitGroup
	var startedCount, skippedCount, failCount int
	var mu sync.Mutex

	logrus.Infof("[StoreSyncTask] 开始处理 %d 个店铺", len(stores))

	for i := range stores {
		store := stores[i]
		select {
		case <-ctx.Done():
			logrus.Warn("[StoreSyncTask] 任务超时停止")
			wg.Wait()
			return
		default:
		}

		sem <- struct{}{}
		wg.Add(1)
		time.Sleep(t.sleepTime)

		go func(storeID int64, storeName string) {
			defer wg.Done()
			defer func() { <-sem }()

			started, err := t.syncSvc.SyncStore(ctx, storeID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				logrus.Errorf("[StoreSyncTask] 店铺 %s(%d) 同步触发失败: %v", storeName, storeID, err)
				failCount++
			case !started:
				skippedCount++
			default:
				startedCount++
			}
		}(store.ID, store.Name)
	}

	wg.Wait()
	logrus.Infof("[StoreSyncTask] 本轮完成: 执行 %d, 跳过 %d, 失败 %d", startedCount, skippedCount, failCount)
}
