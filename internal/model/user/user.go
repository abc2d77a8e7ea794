package user

// User captures the chat profile attributes exposed to the frontend. Account
// credentials live with the auth service; only the token index is shared here.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}
