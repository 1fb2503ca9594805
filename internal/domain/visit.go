// Package domain defines the core persistence models for the application.
// This file holds the analytics and back-office models.
package domain

import "time"

// Column limits for PageVisit. Values longer than these are cut to the first
// N runes before insert.
const (
	MaxVisitPathLen      = 500
	MaxVisitIPLen        = 50
	MaxVisitUserAgentLen = 500
)

// PageVisit is one logged observation of a trackable page request.
//
// Rows are append-only: created once per qualifying request right after the
// response is known, never updated and never deleted. Several rows may share
// the same (path, ip_address) pair. The composite index backs the 24h
// view-count deduplication lookup.
type PageVisit struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	Path      string    `json:"path"       gorm:"size:500;not null;index;index:idx_visit_dedup,priority:1"`
	IPAddress *string   `json:"ip_address,omitempty" gorm:"size:50;index;index:idx_visit_dedup,priority:2"`
	UserAgent *string   `json:"user_agent,omitempty" gorm:"size:500"`
	VisitedAt time.Time `json:"visited_at" gorm:"not null;index;index:idx_visit_dedup,priority:3"`
}

// TableName returns the database table name for PageVisit.
func (PageVisit) TableName() string { return "page_visits" }

// AdminUser is a back-office account. PasswordHash is a bcrypt hash.
type AdminUser struct {
	ID           uint      `json:"id"           gorm:"primaryKey"`
	Username     string    `json:"username"     gorm:"size:100;not null;uniqueIndex"`
	PasswordHash string    `json:"-"            gorm:"size:256;not null"`
	DisplayName  *string   `json:"display_name,omitempty" gorm:"size:200"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for AdminUser.
func (AdminUser) TableName() string { return "admin_users" }
