package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go-storefront/apps/storefront/cache"
	"go-storefront/apps/storefront/middleware"
	"go-storefront/apps/storefront/model"
	"go-storefront/apps/storefront/service"
	"go-storefront/apps/storefront/store"
	"go-storefront/pkg/config"
	"go-storefront/pkg/database"
	"go-storefront/pkg/discovery"
	"go-storefront/pkg/mq"
	"go-storefront/pkg/payment"
	"go-storefront/pkg/response"
	"go-storefront/pkg/search"
	"go-storefront/pkg/tracer"

	sentinel "github.com/alibaba/sentinel-golang/api"
	"github.com/alibaba/sentinel-golang/core/base"
	"github.com/alibaba/sentinel-golang/core/flow"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// 定义资源名称
const ResCheckout = "checkout_api"

// initSentinel 初始化限流规则
// 下单接口是整条链路里最重的写操作，先限住它
func initSentinel() {
	err := sentinel.InitDefault()
	if err != nil {
		log.Fatalf("初始化 Sentinel 失败: %v", err)
	}

	_, err = flow.LoadRules([]*flow.Rule{
		{
			Resource:               ResCheckout, // 资源名称
			TokenCalculateStrategy: flow.Direct, // 直接计数
			ControlBehavior:        flow.Reject, // 直接拒绝
			Threshold:              20,          // QPS 限制为 20
			StatIntervalInMs:       1000,        // 统计周期 1秒
		},
	})
	if err != nil {
		log.Fatalf("加载 Sentinel 规则失败: %v", err)
	}
	log.Println("Sentinel 限流规则已加载: 下单接口 QPS Limit = 20")
}

func main() {
	c, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 环境变量覆盖
	if v := os.Getenv("MYSQL_HOST"); v != "" {
		c.Mysql.Host = v
		log.Printf("Config Override: MYSQL_HOST used (%s)", v)
	}
	if v := os.Getenv("MYSQL_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Mysql.Port = p
		}
	}
	if v := os.Getenv("MYSQL_USER"); v != "" {
		c.Mysql.User = v
	}
	if v := os.Getenv("MYSQL_PASSWORD"); v != "" {
		c.Mysql.Password = v
	}
	if v := os.Getenv("MYSQL_DBNAME"); v != "" {
		c.Mysql.DbName = v
	}
	if v := os.Getenv("REDIS_ADDRESS"); v != "" {
		c.Redis.Address = v
	}
	if v := os.Getenv("CONSUL_ADDRESS"); v != "" {
		c.Consul.Address = v
	}
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		c.Rabbitmq.Url = v
	}
	if v := os.Getenv("ELASTIC_URL"); v != "" {
		c.Elastic.Url = v
	}
	if v := os.Getenv("PAYMENT_SECRET_KEY"); v != "" {
		c.Payment.SecretKey = v
	}
	if v := os.Getenv("SERVICE_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Service.Port = p
		}
	}

	// 初始化 Tracer
	jaegerAddr := "jaeger:4318"
	if os.Getenv("JAEGER_HOST") != "" {
		jaegerAddr = os.Getenv("JAEGER_HOST")
	}
	tp, err := tracer.InitTracer(c.Service.Name, jaegerAddr)
	if err != nil {
		log.Printf("Init tracer failed: %v", err)
	}
	if tp != nil {
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	// 初始化限流器
	initSentinel()

	// 初始化数据库
	db, err := database.InitMySQL(c.Mysql)
	if err != nil {
		log.Fatalf("Failed to init mysql: %v", err)
	}
	db.AutoMigrate(&model.Product{}, &model.CartItem{}, &model.Order{}, &model.OrderItem{})

	// Redis 商品缓存（没配就直查库）
	var productCache cache.ProductCache
	if c.Redis.Address != "" {
		rdb := database.InitRedis(c.Redis)
		productCache = cache.NewRedisProductCache(rdb)
	} else {
		log.Println("Redis not configured, product cache disabled")
	}

	// RabbitMQ 事件发布（没配就不发）
	var events service.EventPublisher
	if c.Rabbitmq.Url != "" {
		publisher, err := mq.NewPublisher(c.Rabbitmq.Url)
		if err != nil {
			log.Fatalf("Failed to init RabbitMQ: %v", err)
		}
		defer publisher.Close()
		events = publisher
	} else {
		log.Println("RabbitMQ not configured, order events disabled")
	}

	// Elasticsearch 搜索（没配就走 SQL LIKE）
	var searcher service.Searcher
	if c.Elastic.Url != "" {
		esClient, err := search.NewClient(c.Elastic.Url)
		if err != nil {
			log.Fatalf("Failed to init Elasticsearch: %v", err)
		}
		searcher = esClient
	}

	// 支付网关：没配密钥就走测试模式，承认请求直接批准
	var payClient payment.Client
	if c.Payment.SecretKey != "" {
		payClient = payment.NewHTTPClient(c.Payment.BaseUrl, c.Payment.SecretKey, 10*time.Second)
	} else {
		log.Println("Payment secret key not configured, running in TEST mode (all payments approved)")
		payClient = payment.TestClient{}
	}

	// 组装 Store 和 Service
	productStore := store.NewGormProductStore(db)
	cartStore := store.NewGormCartStore(db)
	orderStore := store.NewGormOrderStore(db)

	catalogService := service.NewCatalogService(productStore, productCache, searcher)
	cartService := service.NewCartService(productStore, cartStore, events)
	orderService := service.NewOrderService(productStore, cartStore, orderStore, events)
	paymentService := service.NewPaymentService(orderStore, payClient, events)

	// 启动时重建一次搜索索引
	if searcher != nil {
		if err := catalogService.Reindex(context.Background()); err != nil {
			log.Printf("Failed to reindex products: %v", err)
		}
	}

	// 启动 Gin
	r := gin.Default()
	r.Use(otelgin.Middleware(c.Service.Name))

	// Consul 健康检查用
	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "ok")
	})

	v1 := r.Group("/api/v1")

	// 公开接口
	{
		v1.GET("/products", func(ctx *gin.Context) {
			// 带关键词走搜索，否则按分类列表
			if query := ctx.Query("query"); query != "" {
				products, err := catalogService.SearchProducts(ctx.Request.Context(), query)
				if err != nil {
					response.Error(ctx, service.HTTPStatus(err), err.Error())
					return
				}
				response.Success(ctx, products)
				return
			}

			products, err := catalogService.ListProducts(ctx.Request.Context(), ctx.Query("category"))
			if err != nil {
				response.Error(ctx, service.HTTPStatus(err), err.Error())
				return
			}
			response.Success(ctx, products)
		})

		v1.GET("/products/featured", func(ctx *gin.Context) {
			limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "8"))
			products, err := catalogService.FeaturedProducts(ctx.Request.Context(), limit)
			if err != nil {
				response.Error(ctx, service.HTTPStatus(err), err.Error())
				return
			}
			response.Success(ctx, products)
		})

		v1.GET("/products/:id", func(ctx *gin.Context) {
			p, err := catalogService.GetProduct(ctx.Request.Context(), ctx.Param("id"))
			if err != nil {
				response.Error(ctx, service.HTTPStatus(err), err.Error())
				return
			}
			response.Success(ctx, p)
		})

		v1.GET("/categories", func(ctx *gin.Context) {
			categories, err := catalogService.ListCategories(ctx.Request.Context())
			if err != nil {
				response.Error(ctx, service.HTTPStatus(err), err.Error())
				return
			}
			response.Success(ctx, categories)
		})
	}

	// 受保护接口
	authed := v1.Group("/")
	authed.Use(middleware.AuthMiddleware())
	{
		// Cart
		authed.POST("/cart/items", func(ctx *gin.Context) {
			var req struct {
				ProductID string `json:"product_id" binding:"required"`
				Quantity  int    `json:"quantity"`
			}
			if err := ctx.ShouldBindJSON(&req); err != nil {
				response.Error(ctx, http.StatusBadRequest, err.Error())
				return
			}
			if req.Quantity == 0 {
				req.Quantity = 1 // 不传默认加一件
			}
			userID := ctx.MustGet("userId").(string)
			if err := cartService.Add(ctx.Request.Context(), userID, req.ProductID, req.Quantity); err != nil {
				response.Error(ctx, service.HTTPStatus(err), err.Error())
				return
			}
			response.Success(ctx, nil)
		})

		authed.GET("/cart", func(ctx *gin.Context) {
			userID := ctx.MustGet("userId").(string)
			lines, total, err := cartService.List(ctx.Request.Context(), userID)
			if err != nil {
				response.Error(ctx, service.HTTPStatus(err), err.Error())
				return
			}
			response.Success(ctx, gin.H{"items": lines, "total_amount": total})
		})

		authed.PUT("/cart/items/:id", func(ctx *gin.Context) {
			var req struct {
				Quantity int `json:"quantity" binding:"required"`
			}
			if err := ctx.ShouldBindJSON(&req); err != nil {
				response.Error(ctx, http.StatusBadRequest, err.Error())
				return
			}
			userID := ctx.MustGet("userId").(string)
			if err := cartService.UpdateQuantity(ctx.Request.Context(), userID, ctx.Param("id"), req.Quantity); err != nil {
				response.Error(ctx, service.HTTPStatus(err), err.Error())
				return
			}
			response.Success(ctx, nil)
		})

		authed.DELETE("/cart/items/:id", func(ctx *gin.Context) {
			userID := ctx.MustGet("userId").(string)
			if err := cartService.Remove(ctx.Request.Context(), userID, ctx.Param("id")); err != nil {
				response.Error(ctx, service.HTTPStatus(err), err.Error())
				return
			}
			response.Success(ctx, nil)
		})

		// Order（Sentinel 限流埋点）
		authed.POST("/orders", func(ctx *gin.Context) {
			e, b := sentinel.Entry(ResCheckout, sentinel.WithTrafficType(base.Inbound))
			if b != nil {
				// 被限流了
				response.Error(ctx, http.StatusTooManyRequests, "系统繁忙，请稍后再试")
				return
			}
			defer e.Exit() // 务必退出

			var req struct {
				ShippingAddress model.ShippingAddress `json:"shipping_address" binding:"required"`
				OrderNote       string                `json:"order_note"`
			}
			if err := ctx.ShouldBindJSON(&req); err != nil {
				response.Error(ctx, http.StatusBadRequest, err.Error())
				return
			}
			userID := ctx.MustGet("userId").(string)
			orderID, err := orderService.Create(ctx.Request.Context(), userID, req.ShippingAddress, req.OrderNote)
			if err != nil {
				response.Error(ctx, service.HTTPStatus(err), err.Error())
				return
			}
			response.Success(ctx, gin.H{"order_id": orderID})
		})

		authed.GET("/orders", func(ctx *gin.Context) {
			userID := ctx.MustGet("userId").(string)
			orders, err := orderService.List(ctx.Request.Context(), userID)
			if err != nil {
				response.Error(ctx, service.HTTPStatus(err), err.Error())
				return
			}
			response.Success(ctx, orders)
		})

		authed.GET("/orders/:id", func(ctx *gin.Context) {
			userID := ctx.MustGet("userId").(string)
			detail, err := orderService.Get(ctx.Request.Context(), userID, ctx.Param("id"))
			if err != nil {
				response.Error(ctx, service.HTTPStatus(err), err.Error())
				return
			}
			response.Success(ctx, detail)
		})

		// Payment
		authed.POST("/payments/confirm", func(ctx *gin.Context) {
			var req struct {
				OrderID    string `json:"order_id" binding:"required"`
				PaymentKey string `json:"payment_key" binding:"required"`
				Amount     int64  `json:"amount" binding:"required"`
			}
			if err := ctx.ShouldBindJSON(&req); err != nil {
				response.Error(ctx, http.StatusBadRequest, err.Error())
				return
			}
			userID := ctx.MustGet("userId").(string)
			if err := paymentService.Confirm(ctx.Request.Context(), userID, req.OrderID, req.PaymentKey, req.Amount); err != nil {
				response.Error(ctx, service.HTTPStatus(err), err.Error())
				return
			}
			response.Success(ctx, gin.H{"order_id": req.OrderID})
		})

		authed.POST("/payments/fail", func(ctx *gin.Context) {
			var req struct {
				OrderID string `json:"order_id" binding:"required"`
			}
			if err := ctx.ShouldBindJSON(&req); err != nil {
				response.Error(ctx, http.StatusBadRequest, err.Error())
				return
			}
			userID := ctx.MustGet("userId").(string)
			if err := paymentService.Fail(ctx.Request.Context(), userID, req.OrderID); err != nil {
				response.Error(ctx, service.HTTPStatus(err), err.Error())
				return
			}
			response.Success(ctx, nil)
		})
	}

	// 注册到 Consul
	if c.Consul.Address != "" {
		if err := discovery.RegisterService(c.Service.Name, c.Service.Port, c.Consul.Address); err != nil {
			log.Printf("Failed to register service: %v", err)
		}
	}

	addr := fmt.Sprintf(":%d", c.Service.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	log.Printf("Storefront listening on %s", addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
