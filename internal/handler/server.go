// Package handler implements the HTTP API of the trip planner.
// All handlers are methods on Server. They are split into resource files
// (catalog.go, generate.go, trip.go, editor.go) but share one Server so they
// can reach its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/backpackor/planner/internal/domain"
	"github.com/backpackor/planner/internal/service"
	"github.com/backpackor/planner/internal/validation"
)

// The interfaces below are declared where they are consumed so handler tests
// can inject mocks without touching the service layer.

// CatalogServicer reads the place catalog.
type CatalogServicer interface {
	ListRegions(ctx context.Context, prefix string) ([]domain.Region, error)
	List(ctx context.Context, filter domain.PlaceFilter, p domain.PaginationParams) ([]domain.Place, int64, error)
	GetByID(ctx context.Context, id string) (domain.Place, error)
}

// GenerationServicer proposes a plan for a set of trip constraints.
type GenerationServicer interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (domain.ProposedPlan, []byte, error)
}

// TripServicer reads and deletes saved trips.
type TripServicer interface {
	Load(ctx context.Context, id uuid.UUID) (domain.SavedTrip, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, p domain.PaginationParams) ([]domain.TripHeader, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Export(ctx context.Context, id uuid.UUID) ([]domain.ItineraryRow, error)
}

// EditorServicer runs editor sessions.
type EditorServicer interface {
	Open(ctx context.Context, in service.OpenInput) (service.EditorSnapshot, error)
	Get(ctx context.Context, id uuid.UUID) (service.EditorSnapshot, error)
	SetDates(ctx context.Context, id uuid.UUID, start, end *time.Time) (service.EditorSnapshot, error)
	SetTitle(ctx context.Context, id uuid.UUID, title string) (service.EditorSnapshot, error)
	SetActiveDay(ctx context.Context, id uuid.UUID, day int) (service.EditorSnapshot, error)
	AddPlace(ctx context.Context, id uuid.UUID, placeID string, day int) (service.EditorSnapshot, bool, error)
	RemovePlace(ctx context.Context, id uuid.UUID, day int, placeID string) (service.EditorSnapshot, error)
	Reorder(ctx context.Context, id uuid.UUID, day int, fromID, toID string) (service.EditorSnapshot, error)
	Discard(ctx context.Context, id uuid.UUID) error
	Save(ctx context.Context, id uuid.UUID) (domain.TripHeader, error)
}

// Deps lists everything a Server needs. Tests may leave out services their
// routes never reach.
type Deps struct {
	Catalog    CatalogServicer
	Generation GenerationServicer
	Trips      TripServicer
	Editor     EditorServicer
	// Stream serves GET /places/stream.
	Stream http.Handler
	// GenerateLimit wraps GET /generate-plan; nil means unlimited.
	GenerateLimit func(http.Handler) http.Handler
	// DefaultOwner is used when a request names no owner.
	DefaultOwner uuid.UUID
	Logger       *slog.Logger
}

// Server holds the handler dependencies.
type Server struct {
	catalog       CatalogServicer
	generation    GenerationServicer
	trips         TripServicer
	editor        EditorServicer
	stream        http.Handler
	generateLimit func(http.Handler) http.Handler
	defaultOwner  uuid.UUID
	validate      *validation.Validator
	log           *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	limit := d.GenerateLimit
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}
	return &Server{
		catalog:       d.Catalog,
		generation:    d.Generation,
		trips:         d.Trips,
		editor:        d.Editor,
		stream:        d.Stream,
		generateLimit: limit,
		defaultOwner:  d.DefaultOwner,
		validate:      validation.New(),
		log:           log,
	}
}

// Routes returns the API router. Cross-cutting middleware (request id,
// logging, CORS) is applied by the caller.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Get("/regions", s.ListRegions)

	r.Route("/places", func(r chi.Router) {
		r.Get("/", s.ListPlaces)
		if s.stream != nil {
			r.Method(http.MethodGet, "/stream", s.stream)
		}
		r.Get("/{placeId}", s.GetPlace)
	})

	r.With(s.generateLimit).Get("/generate-plan", s.GeneratePlan)

	r.Route("/trips", func(r chi.Router) {
		r.Get("/", s.ListTrips)
		r.Get("/{tripId}", s.GetTrip)
		r.Delete("/{tripId}", s.DeleteTrip)
		r.Get("/{tripId}/export", s.ExportTrip)
	})

	r.Route("/editor/sessions", func(r chi.Router) {
		r.Post("/", s.OpenSession)
		r.Route("/{sessionId}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DiscardSession)
			r.Put("/dates", s.SetSessionDates)
			r.Put("/title", s.SetSessionTitle)
			r.Put("/active-day", s.SetSessionActiveDay)
			r.Post("/places", s.AddSessionActivePlace)
			r.Post("/days/{day}/places", s.AddSessionPlace)
			r.Delete("/days/{day}/places/{placeId}", s.RemoveSessionPlace)
			r.Post("/days/{day}/reorder", s.ReorderSessionDay)
			r.Post("/save", s.SaveSession)
		})
	})

	return r
}
