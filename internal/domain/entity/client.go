package entity

import (
	"time"

	"gorm.io/gorm"
)

// Client is a customer of the water-delivery service
type Client struct {
	ID        uint           `gorm:"column:ClientID;primaryKey;autoIncrement" json:"id"`
	Name      string         `gorm:"column:Nom;size:255;not null;index" json:"name"`
	Address   *string        `gorm:"column:Adresse;size:500" json:"address,omitempty"`
	Phone     *string        `gorm:"column:Telephone;size:50" json:"phone,omitempty"`
	Email     *string        `gorm:"column:Email;size:255" json:"email,omitempty"`
	TaxID     *string        `gorm:"column:MatriculeFiscal;size:50" json:"tax_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for the Client model
func (Client) TableName() string {
	return "Clients"
}
