package server

import "net/http"

// routes builds the HTTP mux for the API, the webhook and the WebSocket
// endpoint. A dedicated mux keeps tests free of http.DefaultServeMux
// state.
func (s *ArenaServer) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/users", s.corsMiddleware(s.HandleUsers))
	mux.HandleFunc("/api/users/", s.corsMiddleware(s.HandleUser))

	mux.HandleFunc("/api/submissions", s.corsMiddleware(s.HandleSubmissions))
	mux.HandleFunc("/api/submissions/", s.corsMiddleware(s.HandleSubmission))

	mux.HandleFunc("/api/competition/start", s.corsMiddleware(s.HandleCompetitionStart))
	mux.HandleFunc("/api/competition/current", s.corsMiddleware(s.HandleCompetitionCurrent))
	mux.HandleFunc("/api/competition/stats/", s.corsMiddleware(s.HandleCompetitionStats))

	mux.HandleFunc("/api/build-trigger", s.corsMiddleware(s.HandleBuildTrigger))

	mux.HandleFunc("/ws", s.corsMiddleware(s.HandleWebSocket))
	mux.HandleFunc("/health", s.corsMiddleware(s.HandleHealth))

	return mux
}

// corsMiddleware adds CORS headers using the configured allowed origins,
// the same origin list the WebSocket upgrade checks.
func (s *ArenaServer) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.checkOrigin(r) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}
