package models

import (
	"time"

	"gorm.io/gorm"
)

// CopyGroup mirrors a leader account's trades into follower accounts
type CopyGroup struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"index;not null" json:"user_id"`
	Name            string         `gorm:"size:100" json:"name"`
	LeaderAccountID uint           `gorm:"index;not null" json:"leader_account_id"`
	IsActive        bool           `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	LeaderAccount Account      `gorm:"foreignKey:LeaderAccountID" json:"-"`
	Members       []CopyMember `gorm:"foreignKey:CopyGroupID" json:"members,omitempty"`
}

// TableName specifies the table name for CopyGroup model
func (CopyGroup) TableName() string {
	return "copy_groups"
}

// CopyMember is one follower account inside a copy group. Scaled copies of
// the leader's trades are written to the follower, multiplied by RiskMultiplier.
type CopyMember struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	CopyGroupID       uint      `gorm:"index;not null" json:"copy_group_id"`
	FollowerAccountID uint      `gorm:"index;not null" json:"follower_account_id"`
	RiskMultiplier    float64   `gorm:"type:decimal(10,4);default:1" json:"risk_multiplier"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Relations
	FollowerAccount Account `gorm:"foreignKey:FollowerAccountID" json:"-"`
}

// TableName specifies the table name for CopyMember model
func (CopyMember) TableName() string {
	return "copy_members"
}
