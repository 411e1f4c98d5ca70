package library

import (
	"net/http"

	"github.com/2beens/gymcoach/pkg"

	"github.com/gorilla/mux"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/exercises", handler.HandleList).Methods("GET").Name("exercises")
	mainRouter.HandleFunc("/exercises/{id}", handler.HandleGet).Methods("GET").Name("exercise")
}

func (handler *Handler) HandleList(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, All(), http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ex, err := Get(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "exercise not found", http.StatusNotFound)
		return
	}
	pkg.WriteJSON(w, ex, http.StatusOK)
}
