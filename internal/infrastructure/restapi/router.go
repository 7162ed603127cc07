package restapi

import (
	_ "embed"
	"net/http"
	"net/http/pprof"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

//go:embed docs/swagger.yaml
var swaggerSpec []byte

const swaggerSpecPath = "/docs/swagger.yaml"

// RouterOptions toggles the operational surface around the value-source routes.
type RouterOptions struct {
	Logger           *zap.Logger
	CORSAllowOrigins []string
	EnableSwagger    bool
	EnablePprof      bool
}

// SetupRouter builds the gin engine serving the value-source endpoints.
func SetupRouter(healthHandler *HealthHandler, opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	corsConfig := cors.DefaultConfig()
	if len(opts.CORSAllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = opts.CORSAllowOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", RequestIDHeader}
	corsConfig.ExposeHeaders = []string{RequestIDHeader}
	router.Use(cors.New(corsConfig))

	router.Use(RequestIDMiddleware())
	router.Use(ZapLoggerMiddleware(logger))
	router.Use(MetricsMiddleware())
	router.Use(gin.Recovery())

	router.GET("/health-factor/:address", healthHandler.GetHealthFactor)
	router.GET("/debug-health/:address", healthHandler.GetDebugHealth)
	router.GET("/account-data/:address", healthHandler.GetAccountData)
	router.GET("/verify-execution/:address", healthHandler.VerifyExecution)
	router.POST("/verify-execution/:address", healthHandler.VerifyExecution)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if opts.EnableSwagger {
		router.GET(swaggerSpecPath, func(c *gin.Context) {
			c.Data(http.StatusOK, "application/yaml", swaggerSpec)
		})
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL(swaggerSpecPath)))
		logger.Info("Swagger UI enabled", zap.String("path", "/swagger/index.html"))
	}

	if opts.EnablePprof {
		pprofRouter := router.Group("/debug/pprof")
		{
			pprofRouter.GET("/", gin.WrapF(pprof.Index))
			pprofRouter.GET("/cmdline", gin.WrapF(pprof.Cmdline))
			pprofRouter.GET("/profile", gin.WrapF(pprof.Profile))
			pprofRouter.POST("/symbol", gin.WrapF(pprof.Symbol))
			pprofRouter.GET("/symbol", gin.WrapF(pprof.Symbol))
			pprofRouter.GET("/trace", gin.WrapF(pprof.Trace))
			pprofRouter.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
			pprofRouter.GET("/block", gin.WrapH(pprof.Handler("block")))
			pprofRouter.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
			pprofRouter.GET("/heap", gin.WrapH(pprof.Handler("heap")))
			pprofRouter.GET("/mutex", gin.WrapH(pprof.Handler("mutex")))
			pprofRouter.GET("/threadcreate", gin.WrapH(pprof.Handler("threadcreate")))
		}
		logger.Info("Pprof endpoints enabled under /debug/pprof")
	}

	return router
}
