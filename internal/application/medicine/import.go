package medicine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/xiebiao/pharmacy/internal/domain/medicine"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
	"github.com/xiebiao/pharmacy/pkg/logger"
	"github.com/xiebiao/pharmacy/pkg/tabular"
)

// 导入文件必须包含的列,category、unit可选
var requiredColumns = []string{"product_id", "name", "price"}

// ImportMedicinesUseCase 目录批量导入(CSV/XLSX)
// 按product_id插入或更新;坏行跳过并报告,不影响其它行
type ImportMedicinesUseCase struct {
	repo  medicine.Repository
	cache Cache
}

// NewImportMedicinesUseCase 创建用例
func NewImportMedicinesUseCase(repo medicine.Repository, cache Cache) *ImportMedicinesUseCase {
	return &ImportMedicinesUseCase{repo: repo, cache: cache}
}

// ImportResult 导入结果
type ImportResult struct {
	Imported int        `json:"imported"`
	Created  int        `json:"created"`
	Updated  int        `json:"updated"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors"`
}

// RowError 某一行的错误
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Execute 表头缺列直接拒绝整个文件
func (uc *ImportMedicinesUseCase) Execute(ctx context.Context, table *tabular.Table) (*ImportResult, error) {
	if missing := table.Missing(requiredColumns...); len(missing) > 0 {
		fields := make(map[string]string, len(missing))
		for _, c := range missing {
			fields[c] = fmt.Sprintf("The %s column is required.", c)
		}
		return nil, apperrors.Validation(fields)
	}

	result := &ImportResult{Errors: []RowError{}}
	seen := make(map[string]int, len(table.Rows))

	for _, row := range table.Rows {
		m, err := parseRow(table, row)
		if err == nil {
			if first, dup := seen[m.ProductID]; dup {
				err = fmt.Errorf("duplicate product_id %s (first seen on line %d)", m.ProductID, first)
			}
		}
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, RowError{Line: row.Line, Message: err.Error()})
			continue
		}
		seen[m.ProductID] = row.Line

		created, err := uc.repo.Upsert(ctx, m)
		if err != nil {
			return nil, err
		}
		result.Imported++
		if created {
			result.Created++
		} else {
			result.Updated++
			if uc.cache != nil {
				if err := uc.cache.Delete(ctx, m.ProductID); err != nil {
					logger.L().WithError(err).WithField("product_id", m.ProductID).Warn("medicine cache invalidate failed")
				}
			}
		}
	}

	logger.L().WithFields(logrus.Fields{
		"imported": result.Imported,
		"skipped":  result.Skipped,
	}).Info("medicine catalog imported")
	return result, nil
}

func parseRow(table *tabular.Table, row tabular.Row) (*medicine.Medicine, error) {
	raw := table.Get(row, "price")
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q", raw)
	}
	m, err := medicine.NewMedicine(
		table.Get(row, "product_id"),
		table.Get(row, "name"),
		table.Get(row, "category"),
		table.Get(row, "unit"),
		price,
	)
	if err != nil {
		return nil, fmt.Errorf("%s", apperrors.GetAppError(err).Message)
	}
	return m, nil
}
