package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yuanfen_chat_server/internal/config"
	dao "yuanfen_chat_server/internal/dao/mysql"
	myredis "yuanfen_chat_server/internal/dao/redis"
	"yuanfen_chat_server/internal/https_server"
	"yuanfen_chat_server/internal/infrastructure/logger"
	"yuanfen_chat_server/internal/service/chat"
	"yuanfen_chat_server/pkg/util/jwt"
	"yuanfen_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, "dev"); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化数据库
	dao.Init()
	zap.L().Info("数据库初始化成功")

	// 4. 初始化 Redis
	myredis.Init()
	zap.L().Info("Redis 初始化成功")

	// 5. 初始化 JWT
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)
	zap.L().Info("JWT 初始化成功")

	// 6. 初始化雪花算法节点（消息 ID 生成）
	snowflake.Init(conf.SnowflakeConfig.MachineID)
	zap.L().Info("雪花算法初始化成功")

	// 7. 初始化 ChatServer (依赖注入)
	chatServer := chat.NewChatServer(chat.ChatServerConfig{
		Mode:          conf.KafkaConfig.MessageMode,
		Repos:         dao.Repos,
		CacheService:  myredis.GetCacheService(),
		PresenceTTL:   conf.PresenceConfig.TTL(),
		AdvertiseAddr: conf.MainConfig.AdvertiseAddr,
	})
	chatServer.Start()
	zap.L().Info("ChatServer 初始化成功", zap.String("mode", conf.KafkaConfig.MessageMode))

	// 8. 初始化 HTTP 服务器并挂载 socket.io
	engine := https_server.Init(chatServer)
	zap.L().Info("HTTP 服务器初始化成功")

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler: engine,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("HTTP 服务器启动失败", zap.Error(err))
		}
	}()
	zap.L().Info("服务已启动", zap.String("addr", srv.Addr))

	// 设置信号监听
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// 等待信号
	<-quit
	zap.L().Info("关闭服务器...")

	// 先停 socket 层再停 HTTP，避免关闭期间接受新连接
	chatServer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("HTTP 服务器关闭异常", zap.Error(err))
	}

	zap.L().Info("服务器已关闭")
}
