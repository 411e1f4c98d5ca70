package music

import (
	"context"
	"errors"
	"net/http"

	"github.com/2beens/gymcoach/internal/telemetry/tracing"
	"github.com/2beens/gymcoach/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type playlistProvider interface {
	Playlist(ctx context.Context) (*Playlist, error)
}

type Handler struct {
	playlists playlistProvider
}

func NewHandler(playlists playlistProvider) *Handler {
	return &Handler{
		playlists: playlists,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/music/playlist", handler.HandlePlaylist).Methods("GET").Name("music-playlist")
}

func (handler *Handler) HandlePlaylist(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.music.playlist")
	defer span.End()

	p, err := handler.playlists.Playlist(ctx)
	if errors.Is(err, ErrNotConfigured) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("get workout playlist: %s", err)
		http.Error(w, "playlist unavailable", http.StatusBadGateway)
		return
	}

	pkg.WriteJSON(w, p, http.StatusOK)
}
