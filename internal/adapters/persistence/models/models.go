package models

import (
	"time"

	"fss-elibrary/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Auth tables
// ============================================================

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'MEMBER'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Catalog table
// ============================================================

// Resource represents resources table. Quantity is the number of
// copies owned; Available is the number not currently on loan.
// Invariant: 0 <= Available <= Quantity, maintained only through the
// lending transaction.
type Resource struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:255;not null;index" json:"title"`
	Author       string    `gorm:"size:255;index" json:"author"`
	ResourceType string    `gorm:"size:20;not null;index" json:"resource_type"`
	ISBN         string    `gorm:"size:32" json:"isbn"`
	Description  string    `gorm:"type:text" json:"description"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	Available    int       `gorm:"not null" json:"available"`
	CoverURL     string    `gorm:"size:500" json:"cover_url"`
	FilePath     string    `gorm:"size:500" json:"file_path"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Resource) TableName() string {
	return "resources"
}

// ResourceResponse DTO
type ResourceResponse struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	ResourceType string    `json:"resource_type"`
	ISBN         string    `json:"isbn,omitempty"`
	Description  string    `json:"description,omitempty"`
	Quantity     int       `json:"quantity"`
	Available    int       `json:"available"`
	CoverURL     string    `json:"cover_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *Resource) ToResponse() *ResourceResponse {
	return &ResourceResponse{
		ID:           r.ID,
		Title:        r.Title,
		Author:       r.Author,
		ResourceType: r.ResourceType,
		ISBN:         r.ISBN,
		Description:  r.Description,
		Quantity:     r.Quantity,
		Available:    r.Available,
		CoverURL:     r.CoverURL,
		CreatedAt:    r.CreatedAt,
	}
}

// ============================================================
// Ledger table
// ============================================================

// Loan represents loans table. Rows are never deleted; a return only
// flips Status and sets ReturnedAt.
type Loan struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index:idx_loans_user" json:"user_id"`
	ResourceID uint       `gorm:"not null;index" json:"resource_id"`
	BorrowedAt time.Time  `gorm:"not null" json:"borrowed_at"`
	DueAt      time.Time  `gorm:"not null" json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at"`
	Status     string     `gorm:"size:20;not null;default:'active';index:idx_loans_user" json:"status"`

	// Relations
	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Resource *Resource `gorm:"foreignKey:ResourceID" json:"resource,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}

func (l *Loan) IsActive() bool {
	return l.Status == string(domain.LoanActive)
}

// LoanResponse DTO with the derived due classification attached
type LoanResponse struct {
	ID            uint       `json:"id"`
	UserID        uint       `json:"user_id"`
	ResourceID    uint       `json:"resource_id"`
	ResourceTitle string     `json:"resource_title,omitempty"`
	ResourceType  string     `json:"resource_type,omitempty"`
	Author        string     `json:"author,omitempty"`
	BorrowedAt    time.Time  `json:"borrowed_at"`
	DueAt         time.Time  `json:"due_at"`
	ReturnedAt    *time.Time `json:"returned_at,omitempty"`
	Status        string     `json:"status"`
	DueStatus     string     `json:"due_status,omitempty"`
	DaysUntilDue  int        `json:"days_until_due"`
}

func (l *Loan) ToResponse() *LoanResponse {
	resp := &LoanResponse{
		ID:         l.ID,
		UserID:     l.UserID,
		ResourceID: l.ResourceID,
		BorrowedAt: l.BorrowedAt,
		DueAt:      l.DueAt,
		ReturnedAt: l.ReturnedAt,
		Status:     l.Status,
	}
	if l.Resource != nil {
		resp.ResourceTitle = l.Resource.Title
		resp.ResourceType = l.Resource.ResourceType
		resp.Author = l.Resource.Author
	}
	return resp
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Resource{},
		&Loan{},
	)
}
