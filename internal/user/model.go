package user

import (
	"time"
)

// Role 用户角色。企业用车场景下只有单一角色。
type Role string

const (
	RoleEmployee Role = "EMPLOYEE" // 普通员工，预订需审批
	RoleManager  Role = "MANAGER"  // 部门经理，可审批预订
	RoleAdmin    Role = "ADMIN"    // 车队管理员
)

// User 是 users 表的 GORM 模型。
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:128;not null" json:"email"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	PasswordSalt string    `gorm:"size:64;not null" json:"-"`
	FirstName    string    `gorm:"size:64" json:"firstName"`
	LastName     string    `gorm:"size:64" json:"lastName"`
	Department   string    `gorm:"size:64;index" json:"department"`
	CostCenter   string    `gorm:"size:64" json:"costCenter"`
	Role         Role      `gorm:"type:varchar(16);not null" json:"role"`
	Enabled      bool      `gorm:"not null;default:true" json:"enabled"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
