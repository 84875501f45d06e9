package server

import (
	"net/http"
)

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/document", func(w http.ResponseWriter, r *http.Request) {
		RouteResourceCollection(w, r, s.documents.GetHandler, s.documents.UploadHandler)
	})
	mux.HandleFunc("/api/document/page", s.documents.PageHandler)
	mux.HandleFunc("/api/export", s.exports.ExportHandler)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/ws", s.pointer.HandleWebSocket)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{
		http.MethodGet: func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		},
	})
}
