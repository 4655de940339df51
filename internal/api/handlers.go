package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"mentorhub/internal/models"
	"mentorhub/internal/session"
	"mentorhub/internal/store"
	"mentorhub/internal/utils"
)

type Handlers struct {
	log   *utils.Logger
	store *store.Store
	coord *session.Coordinator
}

func NewHandlers(log *utils.Logger, st *store.Store, coord *session.Coordinator) *Handlers {
	return &Handlers{log: log, store: st, coord: coord}
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

/*** Exercise content ***/

func (h *Handlers) ListCodeBlocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.store.List(r.Context())
	if err != nil {
		h.log.Error("listing code blocks failed", "error", err.Error())
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load code blocks"})
		return
	}
	utils.JSON(w, http.StatusOK, models.CodeBlockList{CodeBlocks: blocks})
}

func (h *Handlers) GetCodeBlock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "blockId")
	block, err := h.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Code block not found"})
		return
	}
	if err != nil {
		h.log.Error("fetching code block failed", "blockId", id, "error", err.Error())
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load code block"})
		return
	}
	utils.JSON(w, http.StatusOK, block)
}

/*** Roles ***/

func (h *Handlers) AssignRole(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientId")
	role := h.coord.AssignRole(clientID)
	utils.JSON(w, http.StatusOK, models.RoleResponse{Role: role})
}

func (h *Handlers) MyRole(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientId")
	role, ok := h.coord.LookupRole(clientID)
	if !ok {
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Role not found"})
		return
	}
	utils.JSON(w, http.StatusOK, models.RoleResponse{Role: role})
}

/*** Websocket channels ***/

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// LobbyWS holds a pre-session connection and relays the mentor's exercise
// selection to waiting students.
func (h *Handlers) LobbyWS(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientId")
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	if _, ok := h.coord.LookupRole(clientID); !ok {
		closePolicyViolation(conn)
		return
	}

	client := session.NewClient(conn, clientID)
	h.coord.JoinLobby(client)
	defer h.coord.LeaveLobby(client)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg models.Envelope
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		if msg.Type == models.MsgMentorRedirect {
			h.coord.Redirect(client, msg.BlockID)
		}
	}
}

// RoomWS admits a connection into a room and runs its receive loop. Malformed
// frames, unknown tags and failed preconditions are dropped; a read error is
// the disconnect signal and triggers the cleanup path.
func (h *Handlers) RoomWS(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	clientID := chi.URLParam(r, "clientId")
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	role, ok := h.coord.LookupRole(clientID)
	if !ok {
		closePolicyViolation(conn)
		return
	}

	client := session.NewClient(conn, clientID)
	h.coord.Admit(roomID, client, role)
	defer h.coord.Disconnect(roomID, client)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg models.Envelope
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case models.MsgMentorLeaving:
			if h.coord.MentorLeaving(roomID, client) {
				return
			}
		case models.MsgCodeUpdate:
			h.coord.ForwardCode(roomID, client, json.RawMessage(raw))
		case models.MsgRequestEdit:
			h.coord.RequestEdit(roomID, client)
		}
	}
}

// closePolicyViolation rejects admission for a client id that never got a
// role assigned (close code 1008).
func closePolicyViolation(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "role not assigned")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
