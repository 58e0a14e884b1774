package http_test

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	httpserver "github.com/fyrsmithlabs/textparser/internal/http"
	"github.com/fyrsmithlabs/textparser/internal/logging"
	"github.com/fyrsmithlabs/textparser/internal/parser"
	"github.com/fyrsmithlabs/textparser/internal/selector"
	"github.com/fyrsmithlabs/textparser/internal/store"
	"github.com/fyrsmithlabs/textparser/internal/template"
)

// ExampleServer demonstrates how to create and start the HTTP server.
func ExampleServer() {
	ctx := context.Background()
	logger := logging.NewNop()

	p, err := parser.New(ctx, store.NewStatic(template.Source{
		ID:   "shipped.txt",
		Text: "Order #{%id%} shipped",
	}), parser.WithLogger(logger))
	if err != nil {
		panic(err)
	}

	server, err := httpserver.NewServer(p, logger, &httpserver.Config{
		Host:        "localhost",
		Port:        9090,
		DefaultMode: selector.ModeBestFit,
	})
	if err != nil {
		panic(err)
	}

	go func() {
		if err := server.Start(); err != nil {
			logger.Error(ctx, "server error", zap.Error(err))
		}
	}()

	time.Sleep(100 * time.Millisecond)

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("shutdown error: %v\n", err)
	}

	fmt.Println("Server started and stopped successfully")
	// Output: Server started and stopped successfully
}
