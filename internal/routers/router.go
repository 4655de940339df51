package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mentorhub/internal/api"
	"mentorhub/internal/metrics"
	"mentorhub/internal/session"
	"mentorhub/internal/store"
	"mentorhub/internal/utils"
)

func New(log *utils.Logger, st *store.Store, coord *session.Coordinator) http.Handler {
	h := api.NewHandlers(log, st, coord)
	r := chi.NewRouter()

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", metrics.Handler())

	r.Get("/code-blocks", h.ListCodeBlocks)
	r.Get("/code-blocks/{blockId}", h.GetCodeBlock)

	r.Get("/assign-role/{clientId}", h.AssignRole)
	r.Get("/my-role/{clientId}", h.MyRole)

	r.Get("/ws/lobby/{clientId}", h.LobbyWS)
	r.Get("/ws/{roomId}/{clientId}", h.RoomWS)

	return r
}
