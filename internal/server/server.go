package server

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/haojie06/canvas-relay/internal/config"
	"github.com/haojie06/canvas-relay/internal/logger"
	"github.com/haojie06/canvas-relay/internal/utils"
)

const (
	requestIdHeader = "X-Request-Id"
	livenessText    = "Hello from canvas-relay!"
)

// InLambda reports whether the process runs inside the Lambda runtime.
func InLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// RequestIdMiddleware keeps an inbound X-Request-Id or assigns a new one.
func RequestIdMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader(requestIdHeader)
		if requestId == "" {
			requestId = uuid.New().String()
		}
		c.Set(utils.RequestIdKey, requestId)
		c.Header(requestIdHeader, requestId)
		c.Next()
	}
}

func liveness(c *gin.Context) {
	c.String(http.StatusOK, livenessText)
}

// NewRouter builds the shared engine; routes adds the handler specific routes.
func NewRouter(enablePprof bool, routes func(r *gin.Engine)) *gin.Engine {
	router := gin.New()
	router.Use(ginzap.RecoveryWithZap(logger.ZapLogger, true))
	router.Use(ginzap.Ginzap(logger.ZapLogger, time.RFC3339Nano, true))
	router.Use(cors.Default())
	router.Use(RequestIdMiddleware())
	if enablePprof {
		pprof.Register(router)
	}
	router.GET("/", liveness)
	routes(router)
	return router
}

// lambdaHandler picks the proxy for the event payload in front of the
// function: v1 for API Gateway REST APIs, v2 for HTTP APIs and function URLs.
func lambdaHandler(router *gin.Engine, eventVersion string) (interface{}, error) {
	switch eventVersion {
	case config.LambdaEventV1:
		return ginadapter.New(router).ProxyWithContext, nil
	case config.LambdaEventV2, "":
		return ginadapter.NewV2(router).ProxyWithContext, nil
	}
	return nil, fmt.Errorf("unknown lambda event version %q", eventVersion)
}

// Start serves router through the Lambda runtime when deployed, otherwise
// on host:port.
func Start(router *gin.Engine, c config.ServerConfig) {
	if InLambda() {
		handler, err := lambdaHandler(router, c.LambdaEvent)
		if err != nil {
			panic(err)
		}
		logger.Infof("starting lambda handler, event version: %s", c.LambdaEvent)
		lambda.Start(handler)
		return
	}
	host, port := c.Host, c.Port
	logger.Infof("service is starting, host: %s, port: %s", host, port)
	if err := router.Run(host + ":" + port); err != nil {
		panic(err)
	}
}
