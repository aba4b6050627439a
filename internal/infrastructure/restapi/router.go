package restapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterOptions toggles the optional surfaces of the HTTP API.
type RouterOptions struct {
	SwaggerEnabled bool
	SwaggerSpec    string
}

// SetupRouter configures and returns the Gin router.
func SetupRouter(handler *Handler, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true // Adjust for production
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/rebalance", handler.AnalyzeHandler)
		v1.POST("/allocations/parse", handler.ParseAllocationHandler)

		v1.POST("/strategies", handler.CreateStrategyHandler)
		v1.GET("/strategies", handler.ListStrategiesHandler)
		v1.GET("/strategies/:id", handler.GetStrategyHandler)
		v1.DELETE("/strategies/:id", handler.DeleteStrategyHandler)
		v1.POST("/strategies/:id/run", handler.RunStrategyHandler)

		v1.GET("/recommendations", handler.RecommendationsHandler)
		v1.GET("/chains", handler.ChainsHandler)
	}

	router.GET("/health", handler.HealthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if opts.SwaggerEnabled {
		spec := opts.SwaggerSpec
		if spec == "" {
			spec = "./docs/swagger.yaml"
		}
		router.StaticFile("/docs/swagger.yaml", spec)
		swaggerURL := ginSwagger.URL("/docs/swagger.yaml")
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, swaggerURL))
	}

	return router
}
