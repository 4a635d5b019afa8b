package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the GeoJSON layers to the map frontend",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           newRouter(cfg.Output, cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port), zap.String("dir", cfg.Output))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newRouter serves the .geojson files of dir.
func newRouter(dir string, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/layers", func(w http.ResponseWriter, _ *http.Request) {
		layers, err := listLayers(dir)
		if err != nil {
			zap.L().Error("serve: list layers", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cannot list layers"})
			return
		}
		writeJSON(w, http.StatusOK, map[string][]string{"layers": layers})
	})

	r.Get("/layers/{name}", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		if !validLayerName(name) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid layer name"})
			return
		}
		if !strings.HasSuffix(name, ".geojson") {
			name += ".geojson"
		}
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "layer not found"})
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		http.ServeFile(w, req, path)
	})

	return r
}

// listLayers returns the layer names (file names without .geojson) in dir.
func listLayers(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "serve: read dir %s", dir)
	}
	layers := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".geojson") {
			continue
		}
		layers = append(layers, strings.TrimSuffix(e.Name(), ".geojson"))
	}
	sort.Strings(layers)
	return layers, nil
}

func validLayerName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && !strings.HasPrefix(name, ".")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
