package maintenance

import "time"

// Status 维保任务状态。
type Status string

const (
	StatusOpen       Status = "OPEN"        // 已登记，未开工
	StatusInProgress Status = "IN_PROGRESS" // 进行中，车辆下线
	StatusDone       Status = "DONE"        // 完工，车辆回池
)

// ValidStatus 判断状态取值是否合法。
func ValidStatus(s Status) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task 维保任务 GORM 模型。
// 费用用十进制字符串存，避免浮点数记账。
type Task struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	VehicleID string `gorm:"index;size:36;not null" json:"vehicleId"`
	CreatedBy string `gorm:"size:36;not null" json:"createdBy"`

	Title       string `gorm:"size:128;not null" json:"title"`
	Description string `gorm:"size:1024" json:"description"`
	Status      Status `gorm:"type:varchar(16);index;not null" json:"status"`
	Workshop    string `gorm:"size:128" json:"workshop"`
	Cost        string `gorm:"type:decimal(12,2);default:0" json:"cost"`

	PlannedDate   *time.Time `json:"plannedDate,omitempty"`
	CompletedDate *time.Time `json:"completedDate,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
