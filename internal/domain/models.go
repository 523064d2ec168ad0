// Package domain defines the persistence models for agency users, insurance
// policies, and demo requests. These types are mapped with GORM and form the
// core data layer of the policy tracking application.
package domain

import (
	"time"
)

// Policy represents an insurance contract tracked for renewal purposes.
// A policy belongs to exactly one owner (the agency user that created it) and
// is read-only once stored.
//
// Fields:
//   - ID: stable UUID primary key (char(36)), assigned by the store.
//   - OwnerID: identifier of the owning agency user; set at creation, never updated.
//   - CustomerName / Phone / Company: contact and insurer details.
//   - PolicyType: catalog value such as "Kasko", "Trafik", "DASK", "Sağlık".
//   - StartDate / EndDate: calendar dates (midnight UTC); EndDate > StartDate.
//   - CreatedAt: creation timestamp, used for newest-first listings.
//
// Status and days remaining are derived at read time and never stored.
type Policy struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	OwnerID      string    `json:"owner_id"      gorm:"type:varchar(64);not null;index:idx_owner_end,priority:1;index:idx_owner_created,priority:1;<-:create"`
	CustomerName string    `json:"customer_name" gorm:"type:varchar(255);not null"`
	Phone        string    `json:"phone"         gorm:"type:varchar(32);not null"`
	Company      string    `json:"company"       gorm:"type:varchar(255);not null"`
	PolicyType   string    `json:"policy_type"   gorm:"type:varchar(64);not null"`
	StartDate    time.Time `json:"start_date"    gorm:"not null"`
	EndDate      time.Time `json:"end_date"      gorm:"not null;index:idx_owner_end,priority:2"`
	CreatedAt    time.Time `json:"created_at"    gorm:"index:idx_owner_created,priority:2"`
}

// TableName returns the database table name for Policy.
func (Policy) TableName() string { return "policies" }

// User is an agency account. Passwords are stored as bcrypt hashes and never
// serialized.
type User struct {
	ID           string    `json:"id"          gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email"       gorm:"type:varchar(320);not null;uniqueIndex"`
	AgencyName   string    `json:"agency_name" gorm:"type:varchar(255);not null"`
	PasswordHash string    `json:"-"           gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// DemoRequest is a lead captured from the public landing page. It is written
// once and never read back by the application.
type DemoRequest struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	FullName   string    `json:"full_name"   gorm:"type:varchar(255);not null"`
	AgencyName string    `json:"agency_name" gorm:"type:varchar(255);not null"`
	Email      string    `json:"email"       gorm:"type:varchar(320);not null"`
	Phone      string    `json:"phone"       gorm:"type:varchar(32)"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the database table name for DemoRequest.
func (DemoRequest) TableName() string { return "demo_requests" }
