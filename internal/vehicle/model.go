package vehicle

import (
	"time"
)

// Status 车辆状态。
type Status string

const (
	StatusAvailable   Status = "AVAILABLE"   // 可预订
	StatusInUse       Status = "IN_USE"      // 使用中（预订审批通过后）
	StatusMaintenance Status = "MAINTENANCE" // 维保中，不可预订
	StatusInactive    Status = "INACTIVE"    // 停用
)

// ValidStatus 判断状态取值是否合法。
func ValidStatus(s Status) bool {
	switch s {
	case StatusAvailable, StatusInUse, StatusMaintenance, StatusInactive:
		return true
	}
	return false
}

// Type 车辆类别。
type Type string

const (
	TypeSedan Type = "SEDAN"
	TypeSUV   Type = "SUV"
	TypeVan   Type = "VAN"
	TypeTruck Type = "TRUCK"
)

// FuelType 燃料类型。
type FuelType string

const (
	FuelGasoline FuelType = "GASOLINE"
	FuelDiesel   FuelType = "DIESEL"
	FuelHybrid   FuelType = "HYBRID"
	FuelElectric FuelType = "ELECTRIC"
)

// Vehicle 是 vehicles 表的 GORM 模型。
// CurrentMileage 和 Status 只由预订/用车/维保流程以及管理员显式
// 覆盖来修改，普通 Update 不碰它们。
type Vehicle struct {
	ID             string   `gorm:"primaryKey;size:36" json:"id"`
	LicensePlate   string   `gorm:"uniqueIndex;size:16;not null" json:"licensePlate"`
	Brand          string   `gorm:"size:64;not null" json:"brand"`
	Model          string   `gorm:"size:64;not null" json:"model"`
	Year           int      `gorm:"not null" json:"year"`
	Color          string   `gorm:"size:32" json:"color"`
	VehicleType    Type     `gorm:"type:varchar(16);not null" json:"vehicleType"`
	FuelType       FuelType `gorm:"type:varchar(16);not null" json:"fuelType"`
	SeatCapacity   int      `json:"seatCapacity"`
	VIN            string   `gorm:"column:vin;size:32" json:"vin"`
	Department     string   `gorm:"size:64;index" json:"department"`
	CostCenter     string   `gorm:"size:64" json:"costCenter"`
	Status         Status   `gorm:"type:varchar(16);not null;index" json:"status"`
	CurrentMileage int64    `gorm:"not null;default:0" json:"currentMileage"`

	NextServiceDate        *time.Time `json:"nextServiceDate,omitempty"`
	InsuranceExpiryDate    *time.Time `json:"insuranceExpiryDate,omitempty"`
	RegistrationExpiryDate *time.Time `json:"registrationExpiryDate,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
