package domain

// DemoUserID 是本地演示身份使用的固定 id
const DemoUserID = "dev"

// Session is the identity of the logged-in actor.
type Session struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// IsDemo reports whether the session was manufactured locally.
func (s Session) IsDemo() bool {
	return s.ID == DemoUserID
}
