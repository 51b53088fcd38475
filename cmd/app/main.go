package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/auth"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/config"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/input"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/logging"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/realtime"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/repository"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logService, err := logging.NewService(cfg.LogDir, cfg.EnableLogging)
	if err != nil {
		return err
	}
	defer logService.CloseAll()
	go logService.Run(ctx)

	httpLog, err := logService.RegisterSubsystem("http")
	if err != nil {
		return err
	}
	realtimeLog, err := logService.RegisterSubsystem("realtime")
	if err != nil {
		return err
	}
	serviceLog, err := logService.RegisterSubsystem("service")
	if err != nil {
		return err
	}

	db, err := repository.OpenDatabase(cfg.DBPath)
	if err != nil {
		return err
	}

	users := repository.NewSQLiteUserRepository(db)
	chats := repository.NewSQLiteChatRepository(db)
	memberships := repository.NewSQLiteMembershipRepository(db)
	messages := repository.NewSQLiteMessageRepository(db)

	tokens := auth.NewTokenIssuer(cfg.AccessTokenSecret, cfg.RefreshTokenSecret)

	registry := realtime.NewRegistry(realtimeLog)
	resolver := realtime.NewResolver(memberships, realtimeLog)
	fanout := realtime.NewFanout(registry, resolver, chats, realtimeLog)

	authService := service.NewAuthService(users, tokens, serviceLog)
	userService := service.NewUserService(users, serviceLog)
	chatService := service.NewChatService(chats, memberships, users, serviceLog)
	messageService := service.NewMessageService(messages, memberships, chats, fanout, serviceLog)

	connections := realtime.NewConnectionManager(registry, chats, messageService, cfg.MaxFrameSize, realtimeLog)

	inputManager := input.NewInputManager()
	inputManager.SetLogger(httpLog)
	inputManager.SetTokenIssuer(tokens)
	inputManager.SetAuthService(authService)
	inputManager.SetUserService(userService)
	inputManager.SetChatService(chatService)
	inputManager.SetMessageService(messageService)
	inputManager.SetConnectionManager(connections)

	iptCfg := &input.IptConfig{
		Host:         cfg.Host,
		ServerPort:   cfg.Port,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if err := inputManager.Run(ctx, iptCfg); err != nil {
		return err
	}

	// The listener is down; drain the websocket pumps before exiting.
	if err := connections.Shutdown(cfg.ShutdownTimeout); err != nil {
		httpLog.Logf("forced exit: %v", err)
	}
	return nil
}
