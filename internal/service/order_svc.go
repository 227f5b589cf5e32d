package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/api/dto"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/model"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/repository"
)

// ==================== OrderService 订单查询与统计 ====================

// OrderService 订单只读视图
// 订单数据由同步落库，状态迁移完全由远端所有，这里不提供任何写入口
type OrderService struct {
	orderRepo repository.OrderRepository
	storeRepo repository.StoreRepository
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, storeRepo repository.StoreRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo, storeRepo: storeRepo}
}

// ==================== 查询 ====================

// ListOrders 订单列表
func (s *OrderService) ListOrders(ctx context.Context, companyID int64, req *dto.OrderListReq) (*dto.OrderListResp, error) {
	filter := repository.OrderFilter{
		CompanyID: companyID,
		StoreID:   req.StoreID,
		Status:    req.Status,
		Keyword:   req.Keyword,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}

	var err error
	if filter.StartDate, err = parseDateParam(req.StartDate, false); err != nil {
		return nil, err
	}
	if filter.EndDate, err = parseDateParam(req.EndDate, true); err != nil {
		return nil, err
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	list := make([]dto.OrderVO, 0, len(orders))
	for i := range orders {
		list = append(list, toOrderVO(&orders[i]))
	}
	return &dto.OrderListResp{Total: total, List: list}, nil
}

// ==================== 统计 ====================

// OrderStats 单店铺订单统计
// revenue 只计 completed/processing；net_revenue 按店铺财务配置扣减
// 平台佣金（revenue * rate%）与单均运费成本（completed 单数 * cost）
func (s *OrderService) OrderStats(ctx context.Context, companyID int64, req *dto.OrderStatsReq) (*dto.OrderStatsResp, error) {
	store, err := s.storeRepo.GetForCompany(ctx, companyID, req.StoreID)
	if err != nil {
		return nil, err
	}

	start, err := parseDateParam(req.StartDate, false)
	if err != nil {
		return nil, err
	}
	end, err := parseDateParam(req.EndDate, true)
	if err != nil {
		return nil, err
	}

	stats, err := s.orderRepo.StatsByStatus(ctx, store.ID, start, end)
	if err != nil {
		return nil, err
	}

	resp := &dto.OrderStatsResp{
		Currency: store.Currency,
		ByStatus: make(map[string]int64, len(stats)),
	}

	revenue := decimal.Zero
	refunded := decimal.Zero
	var paidCount int64

	for _, st := range stats {
		resp.OrdersCount += st.Count
		resp.ByStatus[st.Status] = st.Count

		switch st.Status {
		case model.OrderStatusCompleted, model.OrderStatusProcessing:
			revenue = revenue.Add(st.Total)
			paidCount += st.Count
		case model.OrderStatusRefunded:
			refunded = refunded.Add(st.Total)
		}
	}

	commission := revenue.Mul(store.CommissionRate).Div(decimal.NewFromInt(100))
	shipping := store.ShippingCost.Mul(decimal.NewFromInt(paidCount))
	net := revenue.Sub(commission).Sub(shipping)

	resp.Revenue = revenue.StringFixed(2)
	resp.RefundedTotal = refunded.StringFixed(2)
	resp.NetRevenue = net.StringFixed(2)
	return resp, nil
}

// ==================== 工具与视图 ====================

// parseDateParam 解析 2006-01-02 查询参数
// endOfDay=true 时取当日 23:59:59，保证闭区间
func parseDateParam(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return &t, nil
}

func toOrderVO(o *model.Order) dto.OrderVO {
	return dto.OrderVO{
		ID:            o.ID,
		StoreID:       o.StoreID,
		WCOrderID:     o.WCOrderID,
		Number:        o.Number,
		Status:        o.Status,
		Currency:      o.Currency,
		Subtotal:      o.Subtotal.StringFixed(2),
		TaxTotal:      o.TaxTotal.StringFixed(2),
		ShippingTotal: o.ShippingTotal.StringFixed(2),
		DiscountTotal: o.DiscountTotal.StringFixed(2),
		Total:         o.Total.StringFixed(2),
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		PaymentMethod: o.PaymentMethod,
		ItemsCount:    o.ItemsCount,
		OrderDate:     o.OrderDate,
	}
}
