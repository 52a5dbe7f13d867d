// Package domain contains the business profile that issues invoices.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Profile is the issuing business; every organization and invoice belongs to one.
type Profile struct {
	ID                      snowflake.ID `gorm:"primaryKey" json:"id"`
	BusinessName            string       `gorm:"size:255;not null;uniqueIndex:ux_profile_business_name" json:"business_name"`
	BusinessEmail           string       `gorm:"size:255;not null;uniqueIndex:ux_profile_business_email" json:"business_email"`
	BusinessRole            string       `gorm:"size:255" json:"business_role,omitempty"`
	BusinessAddress         string       `gorm:"size:255" json:"business_address,omitempty"`
	BusinessCity            string       `gorm:"size:255" json:"business_city,omitempty"`
	BusinessStateOrProvince string       `gorm:"column:business_stateorprovince;size:255" json:"business_stateorprovince,omitempty"`
	BusinessCountry         string       `gorm:"size:255" json:"business_country,omitempty"`
	BusinessPostalCode      string       `gorm:"size:64" json:"business_postal_code,omitempty"`
	BusinessPhone           string       `gorm:"size:64" json:"business_phone,omitempty"`
	BusinessGSTHSTNumber    string       `gorm:"column:business_gst_hst_number;size:64" json:"business_gst_hst_number,omitempty"`
	CreatedAt               time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt               time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Profile) TableName() string { return "profile" }
