package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type UserStatus string

const (
	StatusPending  UserStatus = "pending"
	StatusApproved UserStatus = "approved"
	StatusBlocked  UserStatus = "blocked"
)

// QRStatus tracks the lifecycle of a product's QR raster. Products are
// created as Pending and filled in by the background job; Failed means the
// generator gave up after its retry budget.
type QRStatus string

const (
	QRPending QRStatus = "pending"
	QRReady   QRStatus = "ready"
	QRFailed  QRStatus = "failed"
)

type User struct {
	Id           int        `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string     `json:"name" form:"name"`
	Email        string     `json:"email" form:"email" gorm:"uniqueIndex"`
	Password     string     `json:"-"`
	Phone        string     `json:"phone" form:"phone"`
	Address      string     `json:"address" form:"address"`
	ProfileImage string     `json:"profileImage"`
	Role         UserRole   `json:"role" gorm:"default:user"`
	Status       UserStatus `json:"status" gorm:"default:pending"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type Category struct {
	Id          int       `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	UserId      int       `json:"-" gorm:"index"`
	Name        string    `json:"name" form:"name"`
	Description string    `json:"description" form:"description"`
	Color       string    `json:"color" form:"color"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Product struct {
	Id          int             `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	UserId      int             `json:"-" gorm:"index"`
	CategoryId  *int            `json:"categoryId" form:"categoryId"`
	Name        string          `json:"name" form:"name"`
	Price       decimal.Decimal `json:"price" form:"price" gorm:"type:decimal(10,2)"`
	Description string          `json:"description" form:"description"`
	Image       string          `json:"image"`
	QRCodePath  string          `json:"qrCodePath"`
	QRStatus    QRStatus        `json:"qrStatus" gorm:"default:pending"`
	QRAttempts  int             `json:"-"`
	IsActive    bool            `json:"isActive" gorm:"default:true"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// QRScan is an append-only scan event. UserId is nil for anonymous
// visitors; rows are never updated or deduplicated.
type QRScan struct {
	Id        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductId int       `json:"productId" gorm:"index"`
	UserId    *int      `json:"userId"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	Location  string    `json:"location"`
	ScannedAt time.Time `json:"scannedAt" gorm:"index"`
}

type Setting struct {
	Id    int    `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Key   string `json:"key" form:"key"`
	Value string `json:"value" form:"value"`
}
