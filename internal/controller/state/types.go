package state

// UserState marks where a user is inside a multi-step dialog.
type UserState string

const (
	// StateNone means no dialog in progress.
	StateNone UserState = ""

	// StateLinkCode: the user was asked to type their link code (/vincular).
	StateLinkCode UserState = "link_code"

	// StateCodeIDs: an admin picked a role for a new link code and must now
	// type the backend ids.
	StateCodeIDs UserState = "code_ids"

	// StateAdminMatricula: an admin must type the enrollment id to open the
	// on-behalf booking calendar.
	StateAdminMatricula UserState = "admin_matricula"
)

// UserData is one user's dialog state plus scratch values collected along
// the way.
type UserData struct {
	State UserState
	Data  map[string]interface{}
}
