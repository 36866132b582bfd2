package booking

import "time"

// Status 预订状态枚举（持久化为字符串）。
type Status string

const (
	StatusPending   Status = "PENDING"   // 已提交，待审批
	StatusApproved  Status = "APPROVED"  // 审批通过，待取车
	StatusRejected  Status = "REJECTED"  // 审批驳回
	StatusCancelled Status = "CANCELLED" // 已取消（员工或系统）
	StatusCompleted Status = "COMPLETED" // 已还车完成
)

// Booking 预订 GORM 模型。
// 冲突判定只看 PENDING / APPROVED 两种“活跃”状态。
type Booking struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// 业务关联
	VehicleID  string  `gorm:"index;size:36;not null" json:"vehicleId"`
	UserID     string  `gorm:"index;size:36;not null" json:"userId"`
	ApproverID *string `gorm:"size:36" json:"approverId,omitempty"` // 审批人，自动通过时为空
	Status     Status  `gorm:"type:varchar(16);index;not null" json:"status"`

	// 时间窗（半开区间 [StartTime, EndTime)）
	StartTime time.Time `gorm:"index;not null" json:"startTime"`
	EndTime   time.Time `gorm:"not null" json:"endTime"`

	// 行程信息
	PickupLocation string `gorm:"size:255" json:"pickupLocation"`
	ReturnLocation string `gorm:"size:255" json:"returnLocation"`
	Purpose        string `gorm:"size:255" json:"purpose"`

	ApprovalRequired   bool   `gorm:"not null;default:true" json:"approvalRequired"`
	RejectionReason    string `gorm:"size:255" json:"rejectionReason,omitempty"`
	CancellationReason string `gorm:"size:255" json:"cancellationReason,omitempty"`

	// 时间信息
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`
	RejectedAt  *time.Time `json:"rejectedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// 1:1 用车记录，取车时创建
	Usage *Usage `gorm:"foreignKey:BookingID" json:"usage,omitempty"`
}

// Active 判断预订是否占用车辆时间窗。
func (b *Booking) Active() bool {
	return b.Status == StatusPending || b.Status == StatusApproved
}

// Usage 用车记录 GORM 模型，与 Booking 一一对应。
// DistanceDriven 在还车时由起止里程推导；负值原样落库，
// 属于数据质量问题而不是错误。
type Usage struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	BookingID string `gorm:"uniqueIndex;size:36;not null" json:"bookingId"`

	StartMileage   int64    `gorm:"not null" json:"startMileage"`
	EndMileage     *int64   `json:"endMileage,omitempty"`
	StartFuelLevel float64  `json:"startFuelLevel"` // 油量百分比 0-100
	EndFuelLevel   *float64 `json:"endFuelLevel,omitempty"`
	DistanceDriven *int64   `json:"distanceDriven,omitempty"`

	DamageReported    bool   `gorm:"not null;default:false" json:"damageReported"`
	DamageDescription string `gorm:"size:512" json:"damageDescription,omitempty"`

	// 取/还车照片引用（对象存储 key 列表）
	PrePhotoRefs  []string `gorm:"serializer:json" json:"prePhotoRefs,omitempty"`
	PostPhotoRefs []string `gorm:"serializer:json" json:"postPhotoRefs,omitempty"`

	CheckoutComment string `gorm:"size:512" json:"checkoutComment,omitempty"`
	CheckinComment  string `gorm:"size:512" json:"checkinComment,omitempty"`

	CheckoutAt time.Time  `gorm:"not null" json:"checkoutAt"`
	CheckinAt  *time.Time `json:"checkinAt,omitempty"`
}

// CheckedIn 是否已还车。
func (u *Usage) CheckedIn() bool {
	return u != nil && u.CheckinAt != nil
}
