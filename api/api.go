package api

import (
	"errors"
	"fmt"
	"mirrorbalance/internal/app"
	"mirrorbalance/internal/domain"
	"mirrorbalance/internal/logger"
	l1_service "mirrorbalance/internal/service/l1"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ApiHandler struct {
	ReferenceDataCache l1_service.ReferenceDataCache
	RebalancerHandler  app.RebalancerHandler
	// JwtSecret enables HS256 bearer auth on every route but / when set
	JwtSecret string
}

func (m ApiHandler) NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(m.logRequestMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to mirrorbalance"})
	})

	authed := router.Group("/")
	if m.JwtSecret != "" {
		authed.Use(m.authMiddleware)
	}
	authed.GET("/rebalance", m.rebalance)
	authed.GET("/accounts", m.listAccounts)

	return router
}

func (m ApiHandler) StartApi(port int) error {
	return m.NewRouter().Run(fmt.Sprintf(":%d", port))
}

// errorStatusCode maps run failures onto HTTP statuses. Anything that is
// not a known domain error came from the provider.
func errorStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrZeroPrimaryValue), errors.Is(err, domain.ErrDuplicateFigi):
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, errorStatusCode(err))
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	logger.FromContext(c.Request.Context()).Warnf("request failed with %d: %v", code, err)
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

func (m ApiHandler) logRequestMiddleware(c *gin.Context) {
	start := time.Now().UTC()
	requestID := uuid.New()

	log := logger.FromContext(c.Request.Context()).With("requestID", requestID.String())
	c.Request = c.Request.WithContext(logger.NewContext(c.Request.Context(), log))

	c.Next()

	log.Infow(
		"request",
		"method", c.Request.Method,
		"route", c.Request.URL.Path,
		"ip", c.ClientIP(),
		"status", c.Writer.Status(),
		"durationMs", time.Since(start).Milliseconds(),
	)
}
