package users

import "time"

type User struct {
	ID          int        `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	DisplayName string     `json:"displayName"`
	Timezone    string     `json:"timezone"`
	MigratedAt  *time.Time `json:"migratedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Credentials is a user together with the stored bcrypt hash, never sent to clients.
type Credentials struct {
	User
	PasswordHash string
}
