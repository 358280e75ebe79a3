// Package https_server 提供 HTTP/HTTPS 服务器的初始化和配置
// 负责创建 Gin 引擎实例并配置中间件、健康检查和 socket.io 挂载点
package https_server

import (
	"net/http"

	"yuanfen_chat_server/internal/config"
	"yuanfen_chat_server/internal/infrastructure/logger"
	"yuanfen_chat_server/internal/infrastructure/middleware"
	"yuanfen_chat_server/internal/service/chat"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Init 初始化 HTTP/HTTPS 服务器并返回 Gin 引擎实例
// 配置顺序：
//  1. 创建 Gin 引擎（空白，不含默认中间件）
//  2. 注册日志和恢复中间件
//  3. 配置 CORS 跨域规则
//  4. 挂载 socket.io 处理器与健康检查
func Init(chatServer *chat.ChatServer) *gin.Engine {
	// 创建空白 Gin 引擎（不使用 gin.Default() 以便完全控制中间件）
	engine := gin.New()

	// 注册自定义 Zap 日志中间件，替代 Gin 默认的日志
	engine.Use(logger.GinLogger())

	// 注册 Panic 恢复中间件，捕获 panic 并记录堆栈
	engine.Use(logger.GinRecovery(true))

	// 配置 CORS 跨域规则
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // 允许所有来源（生产环境应指定具体域名）
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	// TLS 重定向中间件（可选，由 Nginx 处理 SSL 时关闭 enableTls 即可）
	mainConfig := config.GetConfig().MainConfig
	if mainConfig.EnableTls {
		engine.Use(middleware.TlsHandler(mainConfig.Host, mainConfig.Port))
	}

	// socket.io 挂载点，长轮询与 websocket 升级共用此路径
	sioHandler := chatServer.ServeHandler()
	engine.Any("/socket.io/*any", gin.WrapH(sioHandler))

	// 健康检查，供负载均衡探活
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "app": mainConfig.AppName})
	})

	return engine
}
