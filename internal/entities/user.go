package entities

import (
	"strings"
	"time"
)

const (
	AuthorityAdmin = "ROLE_ADMIN"
	AuthorityUser  = "ROLE_USER"
)

// User is a local account allowed to obtain API tokens.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Login        string    `gorm:"uniqueIndex;size:50" json:"login"`
	PasswordHash string    `gorm:"size:60" json:"-"`
	Authorities  string    `gorm:"size:255" json:"authorities"` // Comma-separated, e.g. "ROLE_ADMIN,ROLE_USER"
	Activated    bool      `gorm:"default:true" json:"activated"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "app_user"
}

// AuthorityList splits the stored authorities into a slice.
func (u *User) AuthorityList() []string {
	var out []string
	for _, a := range strings.Split(u.Authorities, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

func (u *User) HasAuthority(authority string) bool {
	for _, a := range u.AuthorityList() {
		if a == authority {
			return true
		}
	}
	return false
}
