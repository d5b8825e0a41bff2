package medicine

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Medicine 药品目录(读多写少)
// ProductID是业务主键,批次、发药、批发明细都通过它关联
type Medicine struct {
	ID          uint
	ProductID   string
	Name        string
	Category    string
	Unit        string // 计量单位:盒、瓶、片...
	Price       decimal.Decimal
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewMedicine 创建药品(工厂方法,保证必填项和价格合法)
func NewMedicine(productID, name, category, unit string, price decimal.Decimal) (*Medicine, error) {
	m := &Medicine{
		ProductID: strings.TrimSpace(productID),
		Name:      strings.TrimSpace(name),
		Category:  strings.TrimSpace(category),
		Unit:      strings.TrimSpace(unit),
		Price:     price,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	return m, nil
}

// Validate 校验实体
func (m *Medicine) Validate() error {
	if m.ProductID == "" || len(m.ProductID) > 64 {
		return ErrInvalidProductID
	}
	if m.Name == "" || len(m.Name) > 200 {
		return ErrInvalidName
	}
	if m.Price.IsNegative() {
		return ErrInvalidPrice
	}
	return nil
}

// Patch 部分更新,nil字段保持不变
type Patch struct {
	Name        *string
	Category    *string
	Unit        *string
	Price       *decimal.Decimal
	Description *string
}

// Apply 应用部分更新
func (m *Medicine) Apply(p Patch) error {
	if p.Name != nil {
		m.Name = strings.TrimSpace(*p.Name)
	}
	if p.Category != nil {
		m.Category = strings.TrimSpace(*p.Category)
	}
	if p.Unit != nil {
		m.Unit = strings.TrimSpace(*p.Unit)
	}
	if p.Price != nil {
		m.Price = *p.Price
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if err := m.Validate(); err != nil {
		return err
	}
	m.UpdatedAt = time.Now()
	return nil
}
