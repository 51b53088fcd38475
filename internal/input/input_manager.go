// Package input manages the HTTP front of the server: routing, the
// websocket endpoint and graceful shutdown of the listener.
package input

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/auth"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/handler"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/logging"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/middleware"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/realtime"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/service"
)

type IptConfig struct {
	Host         string
	ServerPort   int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type InputManager struct {
	running atomic.Bool
	paused  atomic.Bool

	logger logging.Logger
	server *http.Server

	stopFromOutsideChan chan struct{}
	doneFromInsideChan  chan struct{}

	tokens *auth.TokenIssuer

	authService    service.AuthService
	userService    service.UserService
	chatService    service.ChatService
	messageService service.MessageService

	connections *realtime.ConnectionManager
}

func NewInputManager() *InputManager {
	return &InputManager{
		stopFromOutsideChan: make(chan struct{}),
		doneFromInsideChan:  make(chan struct{}),
	}
}

func (i *InputManager) IsReady() bool {
	return i.logger != nil &&
		i.tokens != nil &&
		i.authService != nil &&
		i.userService != nil &&
		i.chatService != nil &&
		i.messageService != nil &&
		i.connections != nil
}

func (i *InputManager) IsRunning() bool {
	return i.running.Load()
}

func (i *InputManager) SetLogger(l logging.Logger) {
	i.logger = l
}

func (i *InputManager) SetTokenIssuer(t *auth.TokenIssuer) {
	i.tokens = t
}

func (i *InputManager) SetAuthService(s service.AuthService) {
	i.authService = s
}

func (i *InputManager) SetUserService(s service.UserService) {
	i.userService = s
}

func (i *InputManager) SetChatService(s service.ChatService) {
	i.chatService = s
}

func (i *InputManager) SetMessageService(s service.MessageService) {
	i.messageService = s
}

func (i *InputManager) SetConnectionManager(m *realtime.ConnectionManager) {
	i.connections = m
}

func (i *InputManager) Logf(format string, a ...any) {
	i.logger.Logf(format, a...)
}

func (i *InputManager) SetPause(paused bool) {
	i.paused.Store(paused)
}

func (i *InputManager) IsPaused() bool {
	return i.paused.Load()
}

// Router builds the full route table. Exposed so tests can mount it on
// an httptest server without binding a real port.
func (i *InputManager) Router() *mux.Router {
	authHandler := handler.NewAuthHandler(i.authService)
	userHandler := handler.NewUserHandler(i.userService)
	chatHandler := handler.NewChatHandler(i.chatService)
	messageHandler := handler.NewMessageHandler(i.messageService)

	guard := func(next func(w http.ResponseWriter, r *http.Request)) func(w http.ResponseWriter, r *http.Request) {
		return i.pause(middleware.AuthMiddleware(i.tokens, next))
	}

	r := mux.NewRouter()

	r.HandleFunc("/api/register", i.pause(authHandler.Register)).Methods("POST")
	r.HandleFunc("/api/login", i.pause(authHandler.Login)).Methods("POST")
	r.HandleFunc("/api/token", i.pause(authHandler.Token)).Methods("POST")
	r.HandleFunc("/api/logout", guard(authHandler.Logout)).Methods("POST")

	r.HandleFunc("/api/user", guard(userHandler.Me)).Methods("GET")
	r.HandleFunc("/api/user/{id}", guard(userHandler.GetByID)).Methods("GET")
	r.HandleFunc("/api/users", guard(userHandler.List)).Methods("GET")

	r.HandleFunc("/chats", guard(chatHandler.List)).Methods("GET")
	r.HandleFunc("/api/chat/{id}", guard(chatHandler.Get)).Methods("GET")
	r.HandleFunc("/api/chat/private", guard(chatHandler.CreatePrivate)).Methods("POST")
	r.HandleFunc("/api/chat/group", guard(chatHandler.CreateGroup)).Methods("POST")
	r.HandleFunc("/api/chats/{id}", guard(chatHandler.Leave)).Methods("DELETE")
	r.HandleFunc("/api/chats/{id}", guard(chatHandler.Restore)).Methods("PATCH")
	r.HandleFunc("/api/chats/group/edit/{id}", guard(chatHandler.EditGroup)).Methods("PATCH")
	r.HandleFunc("/api/chats/group/addUser/{id}", guard(chatHandler.AddUser)).Methods("PATCH")

	r.HandleFunc("/api/message", guard(messageHandler.Send)).Methods("POST")

	r.HandleFunc("/ws", i.pause(i.connections.HandleWebSocket)).Methods("GET")

	return r
}

// pause turns the whole surface away with 503 while the manager is
// paused, without tearing the listener down.
func (i *InputManager) pause(next func(w http.ResponseWriter, r *http.Request)) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if i.paused.Load() {
			http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
			return
		}
		next(w, r)
	}
}

func (i *InputManager) Run(ctx context.Context, cfg *IptConfig) error {
	if !i.IsReady() {
		return fmt.Errorf("the input manager is not ready, missing components")
	}

	i.server = &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Host, cfg.ServerPort),
		Handler:        i.Router(),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		select {
		case <-ctx.Done():
			i.Logf("Received stop signal. Shutting down...")
		case <-i.stopFromOutsideChan:
			i.Logf("Server was asked to stop. Shutting down...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := i.server.Shutdown(shutdownCtx); err != nil {
			i.Logf("Error during shutdown... %v", err)
		}
		close(i.doneFromInsideChan)
	}()

	i.Logf("Http server starting on %s", i.server.Addr)
	i.running.Store(true)

	if err := i.server.ListenAndServe(); err != http.ErrServerClosed {
		i.Logf("FATAL: HTTP Server error{%v}", err)
		i.running.Store(false)
		return err
	}

	<-i.doneFromInsideChan
	i.running.Store(false)
	return nil
}

func (i *InputManager) Stop() {
	close(i.stopFromOutsideChan)
	<-i.doneFromInsideChan
	i.running.Store(false)
}
