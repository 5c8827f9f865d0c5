// Package catalog 商品目录：商品 / 分类 / 属性 / 属性值
package catalog

import "time"

// Product 价格以最小货币单位存整数
type Product struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Name        string     `gorm:"size:255;not null" json:"name" binding:"required"`
	BasePrice   int64      `gorm:"not null;default:0" json:"base_price" binding:"gte=0"`
	Description *string    `json:"description,omitempty"`
	ImageURLs   []string   `gorm:"serializer:json" json:"image_urls,omitempty" binding:"omitempty,dive,url"`
	Categories  []Category `gorm:"-" json:"categories,omitempty"` // 仅 ?expand=categories 时填充
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Category ParentID 为空表示顶级分类
type Category struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name" binding:"required"`
	ParentID  *string   `gorm:"size:36;index" json:"parent_id,omitempty" binding:"omitempty,uuid"`
	Parent    *Category `gorm:"foreignKey:ParentID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Attribute struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name" binding:"required"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AttributeValue 属性的一个取值，PriceEffect 叠加到商品基础价
type AttributeValue struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	AttributeID string     `gorm:"size:36;not null;index" json:"attribute_id" binding:"required,uuid"`
	Attribute   *Attribute `gorm:"foreignKey:AttributeID;constraint:OnDelete:CASCADE" json:"-"`
	Value       string     `gorm:"size:255;not null" json:"value" binding:"required"`
	PriceEffect int64      `gorm:"not null;default:0" json:"price_effect"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ProductCategory struct {
	ProductID  string    `gorm:"primaryKey;size:36" json:"product_id"`
	CategoryID string    `gorm:"primaryKey;size:36;index" json:"category_id"`
	Product    *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	Category   *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// Models 迁移顺序：被引用的表在前
func Models() []interface{} {
	return []interface{}{&Product{}, &Category{}, &Attribute{}, &AttributeValue{}, &ProductCategory{}}
}
