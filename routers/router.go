package routers

import (
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/penglongli/gin-metrics/ginmetrics"

	"lockd/models/mode"
	"lockd/pkg/config"
	"lockd/pkg/log"
	"lockd/pkg/metrics"
	"lockd/routers/routes"
)

func NewRouter() *gin.Engine {
	router := gin.New()
	log.Debugf("external URL base path is %q; routes are mounted at the root", getUrlBasePath())

	// Global middleware
	ginLogger := log.Get("api")
	router.Use(corsAllowAll())
	router.Use(getGinLogger())
	router.Use(ginzap.RecoveryWithZap(ginLogger.Desugar(), true))

	// Metrics middleware
	m := ginmetrics.GetMonitor()
	m.SetMetricPath("/internal/metrics")
	m.SetMetricPrefix(metrics.Prefix)
	m.Use(router)

	// Private routing group - requires an admin bearer token.
	private := router.Group("/")

	// Public routing group - the three lock operations plus healthz.
	public := router.Group("/")

	// Hook routing group - unused today, kept for symmetry with the
	// routing-group abstraction.
	hook := router.Group("/")

	groups := routes.RoutingGroups()
	for _, group := range groups {
		for _, route := range group.PublicRoutes() {
			HandleRoute(public, route.Method, route.Pattern, route.HandlerFunc, route.Middleware)
		}

		for _, route := range group.PrivateRoutes() {
			HandleRoute(private, route.Method, route.Pattern, route.HandlerFunc, route.Middleware)
		}

		for _, route := range group.HookRoutes() {
			HandleRoute(hook, route.Method, route.Pattern, route.HandlerFunc, route.Middleware)
		}
	}

	registerCustomValidators()

	return router
}

// HandleRoute registers a route with the given method, path, handler and middleware.
func HandleRoute(engine *gin.RouterGroup, method, path string, handler gin.HandlerFunc, middleware []gin.HandlerFunc) {
	allHandlers := append(middleware, handler)
	engine.Handle(method, path, allHandlers...)
}

func corsAllowAll() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowCredentials = true
	corsConfig.AddAllowHeaders("authorization")

	// When AllowCredentials is true, we cannot use wildcard "*" for origins.
	// Instead, use AllowOriginFunc to dynamically allow the requesting origin.
	corsConfig.AllowOriginFunc = func(origin string) bool {
		return true
	}

	return cors.New(corsConfig)
}

// registerCustomValidators registers custom validators for the gin binding.
func registerCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]

			if name == "-" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}

			if name == "-" {
				return ""
			}

			return name
		})
	}
}

// getUrlBasePath returns the base path of the external URL.
// Meaning if we have an external URL of https://example.com/deploy,
// this function will return "/deploy"
func getUrlBasePath() string {
	res := ""

	u, err := url.Parse(config.Config.ExternalURL)
	if err != nil {
		log.Fatalln("failed to parse external URL. details:", err)
	}
	res = u.Path
	res = strings.TrimSuffix(res, "/")

	return res
}

// getGinLogger returns the logger used for Gin Gonic.
// In development mode, the default gin.Logger() is easier to read; in
// production, requests go through the structured zap logger.
func getGinLogger() gin.HandlerFunc {
	if config.Config.Mode != mode.Prod {
		return gin.Logger()
	}

	return ginzap.Ginzap(log.Get("api").Desugar(), time.RFC3339, true)
}
