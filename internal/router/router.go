package router

import (
	"github.com/gin-gonic/gin"

	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/controller"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/middleware"
)

// InitRoutes 注册所有路由
// 业务路由全部挂在 JWT 认证之后，company_id 从 token 注入
func InitRoutes(r *gin.Engine,
	storeCtl *controller.StoreController,
	syncCtl *controller.SyncController,
	productCtl *controller.ProductController,
	orderCtl *controller.OrderController,
	mappingCtl *controller.MappingController) {

	// 健康检查，不走认证
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.JWTAuth())
	{
		// store 店铺管理
		stores := api.Group("/stores")
		{
			// POST /api/v1/stores/test-connection
			stores.POST("/test-connection",
				middleware.SyncRateLimit(middleware.ActionConnTest, 0),
				storeCtl.TestConnection)

			stores.GET("", storeCtl.GetStoreList)
			stores.POST("", storeCtl.CreateStore)
			stores.GET("/:id", storeCtl.GetStoreDetail)
			stores.PUT("/:id", storeCtl.UpdateStore)
			stores.DELETE("/:id", storeCtl.DeleteStore)

			// 同步触发与进度
			// POST /api/v1/stores/:id/sync
			stores.POST("/:id/sync",
				middleware.SyncRateLimit(middleware.ActionSync, 0),
				syncCtl.StartSync)
			stores.GET("/:id/sync-status", syncCtl.GetSyncStatus)
		}

		// product 商品管理
		products := api.Group("/products")
		{
			products.GET("", productCtl.GetProductList)
			products.GET("/:id", productCtl.GetProductDetail)
			products.PUT("/:id/stock", productCtl.UpdateStock)
			products.PUT("/:id/purchase-price", productCtl.UpdatePurchasePrice)
		}

		// order 订单查询与统计
		orders := api.Group("/orders")
		{
			orders.GET("", orderCtl.GetOrderList)
			orders.GET("/stats", orderCtl.GetOrderStats)
		}

		// mapping 跨店商品映射
		mappings := api.Group("/mappings")
		{
			mappings.GET("", mappingCtl.GetMappingList)
			mappings.POST("", mappingCtl.CreateMapping)
			mappings.GET("/suggestions", mappingCtl.GetSuggestions)
			mappings.POST("/suggestions/dismiss", mappingCtl.DismissSuggestion)
			mappings.GET("/:id", mappingCtl.GetMappingDetail)
			mappings.DELETE("/:id", mappingCtl.DeleteMapping)
		}
	}
}
