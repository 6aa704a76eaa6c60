package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/sirupsen/logrus"

	"github.com/bandage123/estimationwhist-sub000/internal/auth"
	"github.com/bandage123/estimationwhist-sub000/internal/cache"
	"github.com/bandage123/estimationwhist-sub000/internal/database"
	"github.com/bandage123/estimationwhist-sub000/internal/handlers"
	"github.com/bandage123/estimationwhist-sub000/internal/middleware"
)

func main() {
	logger := logrus.New()
	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logrus.DebugLevel)
	}

	auth.Init()

	// Persistence and the results queue are optional; games run fully
	// in-memory without them.
	if err := database.ConnectDB(); err != nil {
		logger.Warnf("postgres unavailable, saves and high scores disabled: %v", err)
	} else {
		defer database.DB.Close()
	}
	if err := cache.ConnectRedis(); err != nil {
		logger.Warnf("redis unavailable, result publishing disabled: %v", err)
	}

	gs := handlers.NewGameServer(logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})
	mux.HandleFunc("/game/create", gs.CreateGameHandler)
	mux.HandleFunc("/game/join", gs.JoinGameHandler)
	mux.HandleFunc("/game/cpu", gs.AddCPUHandler)
	mux.HandleFunc("/game/save", gs.SaveGameHandler)
	mux.HandleFunc("/game/saves", gs.ListSavesHandler)
	mux.HandleFunc("/game/load", gs.LoadGameHandler)
	mux.HandleFunc("/game/highscores", gs.HighScoresHandler)
	mux.HandleFunc("/game/ws/", gs.GameWSHandler)

	server := &http.Server{
		Handler:     middleware.LogMiddleware(logger)(mux),
		ReadTimeout: time.Second * 10,
		// No WriteTimeout: websocket connections stay open for the whole game.
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	l, err := net.Listen("tcp", fmt.Sprintf(":%s", port))
	if err != nil {
		logger.Fatalf("failed to listen: %v", err)
	}
	logger.Infof("listening on %s", l.Addr())

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(l)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case err := <-errc:
		logger.Errorf("failed to serve: %v", err)
	case sig := <-sigs:
		logger.Infof("terminating: %v", sig)
	}
}
