package session

import (
	"encoding/json"
	"sync"

	"mentorhub/internal/metrics"
	"mentorhub/internal/models"
	"mentorhub/internal/utils"
)

const mentorLeftNotice = "Mentor has left the room"

// Coordinator owns every piece of process-wide session state: assigned roles,
// active rooms with their editor tokens, and the lobby. All of it sits behind
// a single mutex; rooms are small and contention is low, so one critical
// section keeps admits, removals and edit requests serialized without
// per-room locking.
type Coordinator struct {
	mu    sync.Mutex
	log   *utils.Logger
	roles map[string]models.Role
	rooms map[string]*room
	lobby map[*Client]struct{}
}

func NewCoordinator(log *utils.Logger) *Coordinator {
	return &Coordinator{
		log:   log,
		roles: make(map[string]models.Role),
		rooms: make(map[string]*room),
		lobby: make(map[*Client]struct{}),
	}
}

// Reset drops all session state. Called at process stop and between tests.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roles = make(map[string]models.Role)
	c.rooms = make(map[string]*room)
	c.lobby = make(map[*Client]struct{})
	metrics.ActiveRooms.Set(0)
	metrics.ConnectedParticipants.Set(0)
}

/*** Role registry ***/

// AssignRole hands out roles first-come-first-served: the first client id to
// ask while no mentor exists becomes the mentor, everyone after is a student.
// Repeated calls for a known id return the existing role unchanged.
func (c *Coordinator) AssignRole(clientID string) models.Role {
	c.mu.Lock()
	defer c.mu.Unlock()
	if role, ok := c.roles[clientID]; ok {
		return role
	}
	role := models.RoleStudent
	if c.mentorCountLocked() == 0 {
		role = models.RoleMentor
	}
	c.roles[clientID] = role
	c.log.Info("role assigned", "clientId", clientID, "role", role)
	return role
}

func (c *Coordinator) LookupRole(clientID string) (models.Role, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	role, ok := c.roles[clientID]
	return role, ok
}

func (c *Coordinator) mentorCountLocked() int {
	n := 0
	for _, role := range c.roles {
		if role == models.RoleMentor {
			n++
		}
	}
	return n
}

/*** Lobby ***/

func (c *Coordinator) JoinLobby(cl *Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lobby[cl] = struct{}{}
}

func (c *Coordinator) LeaveLobby(cl *Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.lobby, cl)
}

// Redirect forwards the mentor's exercise selection to every student waiting
// in the lobby. Only a mentor may redirect; returns the number of students
// notified.
func (c *Coordinator) Redirect(sender *Client, blockID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.roles[sender.ClientID] != models.RoleMentor {
		return 0
	}
	msg := models.Redirect{Type: models.MsgRedirect, BlockID: blockID}
	n := 0
	for member := range c.lobby {
		if member == sender {
			continue
		}
		if c.roles[member.ClientID] == models.RoleStudent {
			member.Send(msg)
			n++
		}
	}
	c.log.Info("lobby redirect", "blockId", blockID, "students", n)
	return n
}

/*** Room lifecycle ***/

// AdmitState is the initial state reported to a participant joining a room.
type AdmitState struct {
	Role         models.Role
	StudentCount int
	CanEdit      bool
}

// Admit adds the connection to the room, creating the room on first join.
// A stale connection holding the same role for the same client id is evicted
// first. The newcomer gets its role message, then the whole room (newcomer
// included) gets the refreshed student count.
func (c *Coordinator) Admit(roomID string, cl *Client, role models.Role) AdmitState {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rooms[roomID]
	if !ok {
		r = newRoom(roomID)
		c.rooms[roomID] = r
		metrics.ActiveRooms.Inc()
	}

	c.evictStaleRoleHolderLocked(r, cl.ClientID, role)

	r.members[cl] = role
	metrics.ConnectedParticipants.Inc()
	if role == models.RoleStudent && r.editor == nil {
		r.editor = cl
	}

	count := r.studentCount()
	state := AdmitState{
		Role:         role,
		StudentCount: count,
		CanEdit:      role == models.RoleStudent && r.editor == cl,
	}
	cl.Send(models.RoleState{
		Type:         models.MsgRole,
		Role:         state.Role,
		StudentCount: state.StudentCount,
		CanEdit:      state.CanEdit,
	})
	r.broadcast(nil, models.StudentCount{Type: models.MsgStudentCount, Count: count})

	c.log.Info("participant admitted",
		"room", roomID, "conn", cl.ConnID, "clientId", cl.ClientID, "role", role)
	return state
}

// evictStaleRoleHolderLocked closes and removes an existing member holding
// the same role for the same client identifier, so a reload or duplicate tab
// does not leave a dead connection occupying the role slot.
func (c *Coordinator) evictStaleRoleHolderLocked(r *room, clientID string, role models.Role) {
	for member, memberRole := range r.members {
		if memberRole != role || member.ClientID != clientID {
			continue
		}
		delete(r.members, member)
		metrics.ConnectedParticipants.Dec()
		if r.editor == member {
			r.editor = nil
		}
		member.Close()
		c.log.Info("stale connection evicted",
			"room", r.id, "conn", member.ConnID, "clientId", clientID)
	}
}

// ForwardCode fans the raw codeUpdate payload out to every other member.
// Only the current editor-token holder may broadcast; anything else is
// dropped without a reply.
func (c *Coordinator) ForwardCode(roomID string, cl *Client, raw json.RawMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rooms[roomID]
	if !ok {
		return false
	}
	if r.members[cl] != models.RoleStudent || r.editor != cl {
		return false
	}
	r.broadcast(cl, raw)
	metrics.CodeUpdatesForwarded.Inc()
	return true
}

// RequestEdit reassigns the editor token to the requesting student,
// last-requester-wins. The previous holder alone is told it lost the token;
// the requester is told it holds it now.
func (c *Coordinator) RequestEdit(roomID string, cl *Client) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rooms[roomID]
	if !ok || r.members[cl] != models.RoleStudent {
		return false
	}
	prev := r.editor
	r.editor = cl
	if prev != nil && prev != cl {
		prev.Send(models.EditorChange{Type: models.MsgEditorChange, CanEdit: false})
	}
	cl.Send(models.EditorChange{Type: models.MsgEditorChange, CanEdit: true})
	c.log.Info("editor token reassigned", "room", roomID, "conn", cl.ConnID)
	return true
}

// MentorLeaving handles an explicit mentorLeaving message. Reports whether
// the caller was the room's mentor and should terminate its receive loop.
func (c *Coordinator) MentorLeaving(roomID string, cl *Client) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rooms[roomID]
	if !ok || r.members[cl] != models.RoleMentor {
		return false
	}
	c.removeLocked(roomID, r, cl)
	return true
}

// Disconnect runs the cleanup path for any connection close: re-elect or
// clear the editor token, remove the member, tear the room down if it lost
// its mentor or emptied out, and otherwise refresh the student count.
func (c *Coordinator) Disconnect(roomID string, cl *Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rooms[roomID]
	if !ok {
		return
	}
	if _, member := r.members[cl]; !member {
		return
	}
	if r.editor == cl {
		next := r.firstStudentExcept(cl)
		r.editor = next
		if next != nil {
			next.Send(models.EditorChange{Type: models.MsgEditorChange, CanEdit: true})
		}
	}
	c.removeLocked(roomID, r, cl)
}

// removeLocked removes the member and applies the teardown checks in order:
// a mentorless room is deleted after a mentorLeft notice to the survivors,
// an empty room is deleted silently, and a surviving room gets a refreshed
// studentCount broadcast.
func (c *Coordinator) removeLocked(roomID string, r *room, cl *Client) {
	if _, ok := r.members[cl]; !ok {
		return
	}
	delete(r.members, cl)
	metrics.ConnectedParticipants.Dec()
	if r.editor == cl {
		r.editor = nil
	}

	if !r.hasMentor() {
		r.broadcast(nil, models.MentorLeft{Type: models.MsgMentorLeft, Message: mentorLeftNotice})
		metrics.ConnectedParticipants.Sub(float64(len(r.members)))
		delete(c.rooms, roomID)
		metrics.ActiveRooms.Dec()
		c.log.Info("room torn down", "room", roomID, "orphaned", len(r.members))
		return
	}
	if len(r.members) == 0 {
		delete(c.rooms, roomID)
		metrics.ActiveRooms.Dec()
		return
	}
	r.broadcast(nil, models.StudentCount{Type: models.MsgStudentCount, Count: r.studentCount()})
}

/*** Read-side helpers ***/

func (c *Coordinator) StudentCount(roomID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rooms[roomID]
	if !ok {
		return 0
	}
	return r.studentCount()
}

func (c *Coordinator) LobbySize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lobby)
}

func (c *Coordinator) RoomExists(roomID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.rooms[roomID]
	return ok
}
