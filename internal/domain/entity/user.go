package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role names
const (
	RoleAdmin = "admin"
	RoleAgent = "agent"
)

// User represents an operator of the quoting back office
type User struct {
	ID        uuid.UUID      `gorm:"column:UtilisateurID;size:36;primaryKey" json:"id"`
	Name      string         `gorm:"column:Nom;size:255;not null" json:"name"`
	Email     string         `gorm:"column:Email;size:255;uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"column:MotDePasse;size:255;not null" json:"-"`
	RoleID    uint           `gorm:"column:RoleID;not null;index" json:"role_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Role Role `gorm:"foreignKey:RoleID" json:"role"`
}

// BeforeCreate generates a UUID before creating a new user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "Utilisateurs"
}

// HasRole checks if the user has a specific role
func (u *User) HasRole(roleName string) bool {
	return u.Role.Name == roleName
}

// Role represents a role in the RBAC system
type Role struct {
	ID        uint      `gorm:"column:RoleID;primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:NomRole;size:50;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the Role model
func (Role) TableName() string {
	return "Roles"
}
