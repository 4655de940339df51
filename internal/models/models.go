package models

type Role string

const (
	RoleMentor  Role = "mentor"
	RoleStudent Role = "student"
)

// Message tags carried in the "type" field of every websocket frame.
const (
	// inbound
	MsgMentorLeaving  = "mentorLeaving"
	MsgCodeUpdate     = "codeUpdate"
	MsgRequestEdit    = "requestEdit"
	MsgMentorRedirect = "mentorRedirect"

	// outbound
	MsgRole         = "role"
	MsgStudentCount = "studentCount"
	MsgEditorChange = "editorChange"
	MsgMentorLeft   = "mentorLeft"
	MsgRedirect     = "redirect"
)

// Envelope is the minimal decode of an inbound frame. The codeUpdate payload
// stays opaque: it is re-broadcast from the raw bytes, never from this struct.
type Envelope struct {
	Type    string `json:"type"`
	BlockID string `json:"blockId,omitempty"`
}

// RoleState is the first frame a participant receives after joining a room.
type RoleState struct {
	Type         string `json:"type"`
	Role         Role   `json:"role"`
	StudentCount int    `json:"studentCount"`
	CanEdit      bool   `json:"canEdit"`
}

type StudentCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type EditorChange struct {
	Type    string `json:"type"`
	CanEdit bool   `json:"canEdit"`
}

type MentorLeft struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Redirect struct {
	Type    string `json:"type"`
	BlockID string `json:"blockId"`
}

/*** Exercise content ***/

type CodeBlock struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Template string `json:"template"`
	Solution string `json:"solution"`
}

type CodeBlockList struct {
	CodeBlocks []CodeBlock `json:"code_blocks"`
}

/*** REST responses ***/

type RoleResponse struct {
	Role Role `json:"role"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
