package narration

import (
	"context"
	"errors"
	"net/http"

	"github.com/2beens/gymcoach/internal/gym/library"
	"github.com/2beens/gymcoach/internal/telemetry/tracing"
	"github.com/2beens/gymcoach/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type speaker interface {
	Speak(ctx context.Context, text string) ([]byte, error)
}

type Handler struct {
	speaker speaker
}

func NewHandler(speaker speaker) *Handler {
	return &Handler{
		speaker: speaker,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/exercises/{id}/narration", handler.HandleNarration).Methods("GET").Name("exercise-narration")
}

func (handler *Handler) HandleNarration(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.narration")
	defer span.End()

	ex, err := library.Get(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "exercise not found", http.StatusNotFound)
		return
	}

	audio, err := handler.speaker.Speak(ctx, ex.Voice)
	if errors.Is(err, ErrEmptyText) {
		http.Error(w, "no narration for exercise", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("narration for %s: %s", ex.ID, err)
		http.Error(w, "narration unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	pkg.WriteResponseBytesOK(w, pkg.ContentType.MP3, audio)
}
