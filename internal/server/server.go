package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tracesphere/campusasset/internal/approval"
	approvaldomain "github.com/tracesphere/campusasset/internal/approval/domain"
	"github.com/tracesphere/campusasset/internal/asset"
	assetdomain "github.com/tracesphere/campusasset/internal/asset/domain"
	"github.com/tracesphere/campusasset/internal/audit"
	auditdomain "github.com/tracesphere/campusasset/internal/audit/domain"
	"github.com/tracesphere/campusasset/internal/auth"
	authdomain "github.com/tracesphere/campusasset/internal/auth/domain"
	"github.com/tracesphere/campusasset/internal/auth/oauth"
	"github.com/tracesphere/campusasset/internal/auth/session"
	"github.com/tracesphere/campusasset/internal/authorization"
	"github.com/tracesphere/campusasset/internal/catalog"
	"github.com/tracesphere/campusasset/internal/config"
	"github.com/tracesphere/campusasset/internal/dashboard"
	dashboarddomain "github.com/tracesphere/campusasset/internal/dashboard/domain"
	"github.com/tracesphere/campusasset/internal/docstore"
	"github.com/tracesphere/campusasset/internal/observability"
	obslogger "github.com/tracesphere/campusasset/internal/observability/logger"
	obsmetrics "github.com/tracesphere/campusasset/internal/observability/metrics"
	"github.com/tracesphere/campusasset/internal/procurement"
	procurementdomain "github.com/tracesphere/campusasset/internal/procurement/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	audit.Module,
	catalog.Module,
	auth.Module,
	session.Module,
	docstore.Module,
	asset.Module,
	approval.Module,
	procurement.Module,
	dashboard.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log, obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	authsvc        authdomain.Service
	oauthsvc       oauth.Service
	sessions       *session.Manager
	authzSvc       authorization.Service
	auditSvc       auditdomain.Service
	assetSvc       assetdomain.Service
	approvalSvc    approvaldomain.Service
	procurementSvc procurementdomain.Service
	dashboardSvc   dashboarddomain.Service
	catalog        *catalog.Holder
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Authsvc        authdomain.Service
	Oauthsvc       oauth.Service
	Sessions       *session.Manager
	AuthzSvc       authorization.Service
	AuditSvc       auditdomain.Service
	AssetSvc       assetdomain.Service
	ApprovalSvc    approvaldomain.Service
	ProcurementSvc procurementdomain.Service
	DashboardSvc   dashboarddomain.Service
	Catalog        *catalog.Holder
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		db:             p.DB,
		log:            p.Log.Named("http.server"),
		genID:          p.GenID,
		authsvc:        p.Authsvc,
		oauthsvc:       p.Oauthsvc,
		sessions:       p.Sessions,
		authzSvc:       p.AuthzSvc,
		auditSvc:       p.AuditSvc,
		assetSvc:       p.AssetSvc,
		approvalSvc:    p.ApprovalSvc,
		procurementSvc: p.ProcurementSvc,
		dashboardSvc:   p.DashboardSvc,
		catalog:        p.Catalog,
	}

	svc.registerAuthRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.GET("/oauth/:provider", s.OAuthLogin)
	auth.POST("/logout", s.Logout)
	auth.POST("/change-password", s.WebAuthRequired(), s.ChangePassword)
	auth.POST("/forgot", s.Forgot)
	auth.POST("/reset", s.ResetPassword)
	auth.GET("/me", s.Me)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	admin.Use(s.WebAuthRequired())

	// Home / Dashboard
	admin.GET("/dashboard/stats", s.authorizeAction(authorization.ObjectDashboard, authorization.ActionView), s.GetDashboardStats)
	admin.GET("/catalog", s.GetCatalog)

	// -------- Assets --------
	admin.GET("/assets", s.authorizeAction(authorization.ObjectAsset, authorization.ActionView), s.ListAssets)
	admin.POST("/assets", s.authorizeAction(authorization.ObjectAsset, authorization.ActionCreate), s.CreateAsset)
	admin.GET("/assets/export", s.authorizeAction(authorization.ObjectAsset, authorization.ActionExport), s.ExportAssets)
	admin.GET("/assets/live", s.authorizeAction(authorization.ObjectAsset, authorization.ActionView), s.StreamAssets)
	admin.GET("/assets/lookup", s.authorizeAction(authorization.ObjectAsset, authorization.ActionView), s.LookupAsset)
	admin.GET("/assets/:id", s.authorizeAction(authorization.ObjectAsset, authorization.ActionView), s.GetAssetByID)
	admin.PATCH("/assets/:id", s.authorizeAction(authorization.ObjectAsset, authorization.ActionUpdate), s.UpdateAsset)
	admin.DELETE("/assets/:id", s.authorizeAction(authorization.ObjectAsset, authorization.ActionDelete), s.DeleteAsset)

	// -------- Approvals --------
	admin.GET("/approvals", s.authorizeAction(authorization.ObjectApproval, authorization.ActionView), s.ListApprovals)
	admin.POST("/approvals", s.authorizeAction(authorization.ObjectApproval, authorization.ActionCreate), s.CreateApproval)
	admin.GET("/approvals/live", s.authorizeAction(authorization.ObjectApproval, authorization.ActionView), s.StreamApprovals)
	admin.POST("/approvals/:id/approve", s.authorizeAction(authorization.ObjectApproval, authorization.ActionApprovalResolve), s.ApproveRequest)
	admin.POST("/approvals/:id/reject", s.authorizeAction(authorization.ObjectApproval, authorization.ActionApprovalResolve), s.RejectRequest)

	// -------- Procurement --------
	admin.GET("/procurement", s.authorizeAction(authorization.ObjectProcurement, authorization.ActionView), s.ListPurchaseOrders)
	admin.POST("/procurement", s.authorizeAction(authorization.ObjectProcurement, authorization.ActionCreate), s.CreatePurchaseOrder)
	admin.GET("/procurement/export", s.authorizeAction(authorization.ObjectProcurement, authorization.ActionExport), s.ExportPurchaseOrders)
	admin.GET("/procurement/live", s.authorizeAction(authorization.ObjectProcurement, authorization.ActionView), s.StreamPurchaseOrders)
	admin.PATCH("/procurement/:id", s.authorizeAction(authorization.ObjectProcurement, authorization.ActionUpdate), s.UpdatePurchaseOrder)
	admin.POST("/procurement/:id/status", s.authorizeAction(authorization.ObjectProcurement, authorization.ActionProcurementStatus), s.UpdatePurchaseOrderStatus)
	admin.DELETE("/procurement/:id", s.authorizeAction(authorization.ObjectProcurement, authorization.ActionDelete), s.DeletePurchaseOrder)

	// -------- Audit / Users --------
	admin.GET("/audit-logs", s.authorizeAction(authorization.ObjectAuditLog, authorization.ActionView), s.ListAuditLogs)
	admin.POST("/users", s.authorizeAction(authorization.ObjectUser, authorization.ActionUserCreate), s.CreateUser)
}
