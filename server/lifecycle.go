package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nanhai/arena/errors"
)

// Start runs the hub and the HTTP listener. It blocks until the
// listener fails or Stop shuts it down.
func (s *ArenaServer) Start(port int) error {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run()
	}()

	addr := fmt.Sprintf(":%d", port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Infow("Server ready",
		"url", fmt.Sprintf("http://localhost:%d", port),
		"port", port,
	)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return errors.Wrap(err, "http server failed")
}

// Stop gracefully shuts down the server and cleans up resources
func (s *ArenaServer) Stop() error {
	s.logger.Infow("Initiating server shutdown")

	// Stop accepting requests first, then tear down clients
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Warnw("HTTP shutdown error", "error", err)
		}
	}

	// Close client connections before cancelling the context so the
	// read pumps unblock cleanly
	s.mu.Lock()
	clientsToClose := make([]*Client, 0, len(s.clients))
	for client := range s.clients {
		clientsToClose = append(clientsToClose, client)
		delete(s.clients, client)
	}
	s.mu.Unlock()

	if len(clientsToClose) > 0 {
		s.logger.Infow("Closing client connections", "count", len(clientsToClose))
		for _, client := range clientsToClose {
			client.conn.Close()
		}
	}

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Infow("All goroutines stopped cleanly")
	case <-time.After(ShutdownTimeout):
		s.logger.Warnw("Goroutine shutdown timed out, forcing exit",
			"timeout", ShutdownTimeout,
		)
	}

	s.logger.Infow("Server shutdown complete",
		"broadcast_drops", s.broadcastDrops.Load(),
	)
	return nil
}
