package report

import (
	"bytes"
	"context"
	"net/http"

	"github.com/2beens/gymcoach/internal/auth"
	"github.com/2beens/gymcoach/internal/storage"
	"github.com/2beens/gymcoach/internal/telemetry/tracing"
	"github.com/2beens/gymcoach/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const exportFileName = "gym_report_full"

type usersGetter interface {
	Get(ctx context.Context, username string) (*storage.UserRecord, error)
}

type PreviewResponse struct {
	Rows  []Row `json:"rows"`
	Total int   `json:"total"`
}

type Handler struct {
	users usersGetter
}

func NewHandler(users usersGetter) *Handler {
	return &Handler{
		users: users,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	reportsRouter := mainRouter.PathPrefix("/reports").Subrouter()
	reportsRouter.HandleFunc("/preview", handler.HandlePreview).Methods("GET").Name("reports-preview")
	reportsRouter.HandleFunc("/export.csv", handler.HandleExportCSV).Methods("GET").Name("reports-csv")
	reportsRouter.HandleFunc("/export.xlsx", handler.HandleExportXLSX).Methods("GET").Name("reports-xlsx")
}

func (handler *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.reports.preview")
	defer span.End()

	rows, ok := handler.rows(ctx, w)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int("rows", len(rows)))

	pkg.WriteJSON(w, PreviewResponse{
		Rows:  Preview(rows),
		Total: len(rows),
	}, http.StatusOK)
}

func (handler *Handler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.reports.csv")
	defer span.End()

	rows, ok := handler.exportRows(ctx, w)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		log.Errorf("write csv report: %s", err)
		http.Error(w, "report export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFileName+`.csv"`)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.CSV, buf.Bytes())
}

func (handler *Handler) HandleExportXLSX(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.reports.xlsx")
	defer span.End()

	rows, ok := handler.exportRows(ctx, w)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, rows); err != nil {
		log.Errorf("write xlsx report: %s", err)
		http.Error(w, "report export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFileName+`.xlsx"`)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.XLSX, buf.Bytes())
}

func (handler *Handler) exportRows(ctx context.Context, w http.ResponseWriter) ([]Row, bool) {
	rows, ok := handler.rows(ctx, w)
	if !ok {
		return nil, false
	}
	if len(rows) == 0 {
		http.Error(w, "no sessions logged yet", http.StatusNotFound)
		return nil, false
	}
	return rows, true
}

func (handler *Handler) rows(ctx context.Context, w http.ResponseWriter) ([]Row, bool) {
	username, ok := auth.UsernameFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return nil, false
	}

	record, err := handler.users.Get(ctx, username)
	if err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return nil, false
	}
	return BuildRows(record.History, record.Program), true
}
