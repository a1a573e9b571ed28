package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/motodesk/motodesk/internal/config"
	invoicingdomain "github.com/motodesk/motodesk/internal/invoicing/domain"
	"github.com/motodesk/motodesk/internal/order/exclusion"
	orderservice "github.com/motodesk/motodesk/internal/order/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	log          *zap.Logger
	invoicingSvc invoicingdomain.Service
	orderSvc     orderservice.Service
	exclusions   exclusion.Registry
	db           *gorm.DB
	rdb          *redis.Client
}

type ServerParam struct {
	fx.In

	Log          *zap.Logger
	InvoicingSvc invoicingdomain.Service
	OrderSvc     orderservice.Service
	Exclusions   exclusion.Registry
	DB           *gorm.DB
	RDB          *redis.Client
}

func NewServer(p ServerParam) *Server {
	return &Server{
		log:          p.Log.Named("server"),
		invoicingSvc: p.InvoicingSvc,
		orderSvc:     p.OrderSvc,
		exclusions:   p.Exclusions,
		db:           p.DB,
		rdb:          p.RDB,
	}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", s.Healthz)

	r.GET("/orders", s.ListOrders)

	r.GET("/exclusions", s.ListExclusions)
	r.POST("/exclusions", s.AddExclusions)
	r.DELETE("/exclusions/:orderId", s.RemoveExclusion)

	inv := r.Group("/invoicing")
	inv.POST("/create", s.CreateInvoice)
	inv.POST("/create-bulk", s.CreateBulkInvoices)
}

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(Run),
)

func Run(lc fx.Lifecycle, s *Server, cfg config.Config, log *zap.Logger) {
	engine := gin.New()
	engine.Use(gin.Recovery())
	s.RegisterRoutes(engine)

	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: engine}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
