package session

import "mentorhub/internal/models"

// room holds the membership and editor token for one collaborative session.
// It carries no lock of its own: every access goes through the Coordinator's
// critical section.
type room struct {
	id      string
	members map[*Client]models.Role
	editor  *Client
}

func newRoom(id string) *room {
	return &room{
		id:      id,
		members: make(map[*Client]models.Role),
	}
}

func (r *room) studentCount() int {
	n := 0
	for _, role := range r.members {
		if role == models.RoleStudent {
			n++
		}
	}
	return n
}

func (r *room) hasMentor() bool {
	for _, role := range r.members {
		if role == models.RoleMentor {
			return true
		}
	}
	return false
}

// firstStudentExcept picks an arbitrary remaining student; map iteration
// order is deliberately good enough here.
func (r *room) firstStudentExcept(skip *Client) *Client {
	for member, role := range r.members {
		if role == models.RoleStudent && member != skip {
			return member
		}
	}
	return nil
}

func (r *room) broadcast(exclude *Client, v any) {
	for member := range r.members {
		if member == exclude {
			continue
		}
		member.Send(v)
	}
}
