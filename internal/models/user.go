package models

import "time"

// Role enumerates the access levels a user can hold.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether the role is one of the known enumeration values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the persistent user record. The identifier is assigned by the
// store, immutable, and never reused after deletion.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	Role     Role `gorm:"type:varchar(16);default:USER" json:"role"`
	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserView is the read-path projection of a user record. It is what gets
// cached and returned to API consumers; the password credential never
// appears here.
type UserView struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// View projects the record into its cacheable, credential-free form.
func (u *User) View() UserView {
	return UserView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
