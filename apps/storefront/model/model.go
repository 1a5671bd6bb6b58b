package model

import "time"

// 订单状态
// 本服务只做 pending -> confirmed / pending -> cancelled，
// shipped / delivered 由外部履约系统推进
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Product 商品表，价格和库存以这里为准
// Price 用整数货币单位（韩元），避免浮点误差
type Product struct {
	ID            string `gorm:"type:char(36);primaryKey"`
	Name          string `gorm:"type:varchar(100);not null"`
	Description   string `gorm:"type:text"`
	Price         int64  `gorm:"not null"`
	Category      string `gorm:"type:varchar(50);index"`
	StockQuantity int    `gorm:"not null;default:0"`
	IsActive      bool   `gorm:"not null;default:1"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CartItem 购物车行，一个用户一个商品只有一行
type CartItem struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	UserID    string `gorm:"type:varchar(64);uniqueIndex:uni_user_product"`
	ProductID string `gorm:"type:char(36);uniqueIndex:uni_user_product"`
	Quantity  int    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ShippingAddress 收货地址，内嵌到订单里
type ShippingAddress struct {
	Name          string `gorm:"type:varchar(50)" json:"name"`
	Phone         string `gorm:"type:varchar(20)" json:"phone"`
	Address       string `gorm:"type:varchar(255)" json:"address"`
	AddressDetail string `gorm:"type:varchar(255)" json:"address_detail,omitempty"`
	PostalCode    string `gorm:"type:varchar(10)" json:"postal_code"`
}

// Order 订单主表
// TotalAmount 在创建时算定，之后永不重算
type Order struct {
	ID              string          `gorm:"type:char(36);primaryKey"`
	UserID          string          `gorm:"type:varchar(64);index"`
	TotalAmount     int64           `gorm:"not null"`
	Status          string          `gorm:"type:varchar(20);not null;default:pending"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_"`
	OrderNote       string          `gorm:"type:varchar(500)"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem 订单明细表
// ProductName / Price 是下单瞬间的快照，后续改商品不影响历史订单
type OrderItem struct {
	ID          string `gorm:"type:char(36);primaryKey"`
	OrderID     string `gorm:"type:char(36);index"`
	ProductID   string `gorm:"type:char(36);index"`
	ProductName string `gorm:"type:varchar(100)"`
	Quantity    int    `gorm:"not null"`
	Price       int64  `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
