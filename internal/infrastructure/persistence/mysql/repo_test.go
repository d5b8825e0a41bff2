package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	driver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/xiebiao/pharmacy/internal/domain/adjustment"
	"github.com/xiebiao/pharmacy/internal/domain/stock"
	"github.com/xiebiao/pharmacy/internal/domain/wholesale"
	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

// newMockDB GORM连到sqlmock,SQL按正则匹配
// 关闭默认事务,只有TxManager.Transaction会产生BEGIN/COMMIT
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError:         true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, isDuplicateError(&driver.MySQLError{Number: 1062, Message: "Duplicate entry 'P1-PAY-1'"}))
	assert.True(t, isDuplicateError(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateError(errors.New("Error 1062: Duplicate entry 'x' for key 'y'")))

	assert.False(t, isDuplicateError(nil))
	assert.False(t, isDuplicateError(&driver.MySQLError{Number: 1213, Message: "Deadlock found"}))
	assert.False(t, isDuplicateError(gorm.ErrRecordNotFound))
}

func TestLikePatternAndOffset(t *testing.T) {
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
	assert.Equal(t, 0, offset(0, 20))
	assert.Equal(t, 40, offset(3, 20))
}

func TestBatchLockByProduct(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBatchRepository(db)
	expire := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "product_id", "batch_no", "current_quantity", "buying_price", "product_price", "expire_date"}).
		AddRow(1, "P1", "B-EARLY", 3, "3.20", "5.50", expire).
		AddRow(2, "P1", "B-NODATE", 10, "3.00", "5.00", nil)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `medicine_batches` WHERE product_id = \\? ORDER BY expire_date IS NULL, expire_date ASC, batch_no ASC FOR UPDATE").
		WithArgs("P1").
		WillReturnRows(rows)
	mock.ExpectCommit()

	var batches []*stock.Batch
	err := NewTxManager(db).Transaction(context.Background(), func(ctx context.Context) error {
		var err error
		batches, err = repo.LockByProduct(ctx, "P1")
		return err
	})
	require.NoError(t, err)
	require.Len(t, batches, 2)

	assert.Equal(t, "B-EARLY", batches[0].BatchNo)
	assert.Equal(t, 3, batches[0].CurrentQuantity)
	assert.True(t, batches[0].ExpireDate.Equal(expire))
	assert.Equal(t, "5.5", batches[0].ProductPrice.String())
	assert.True(t, batches[1].ExpireDate.IsZero(), "无有效期的批次")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	const update = "UPDATE `medicine_batches` SET .*current_quantity \\+ \\?.* WHERE id = \\? AND current_quantity \\+ \\? >= 0"
	const lookup = "SELECT `product_id`,`current_quantity` FROM `medicine_batches` WHERE `medicine_batches`.`id` = \\?"

	t.Run("条件满足时更新", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewBatchRepository(db).UpdateQuantity(ctx, 7, -2))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("没有更新到行且批次存在时为库存不足,事务回滚", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(lookup).WillReturnRows(
			sqlmock.NewRows([]string{"product_id", "current_quantity"}).AddRow("P1", 3))
		mock.ExpectRollback()

		err := NewTxManager(db).Transaction(ctx, func(ctx context.Context) error {
			return NewBatchRepository(db).UpdateQuantity(ctx, 7, -5)
		})
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInsufficientStock), "%v", err)
		assert.Contains(t, err.Error(), "requested 5, available 3")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("批次不存在", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(lookup).WillReturnRows(sqlmock.NewRows([]string{"product_id", "current_quantity"}))

		err := NewBatchRepository(db).UpdateQuantity(ctx, 99, -1)
		assert.ErrorIs(t, err, stock.ErrBatchNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSaleMarkPayment(t *testing.T) {
	ctx := context.Background()
	const insert = "INSERT INTO `payment_validations`"

	t.Run("首次标记成功", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, NewSaleRepository(db).MarkPayment(ctx, "P1", "PAY-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("唯一索引冲突转换为重复付款", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(insert).
			WithArgs("P1", "PAY-1", sqlmock.AnyArg()).
			WillReturnError(&driver.MySQLError{Number: 1062, Message: "Duplicate entry 'P1-PAY-1' for key 'uk_product_payment'"})

		err := NewSaleRepository(db).MarkPayment(ctx, "P1", "PAY-1")
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeDuplicatePayment), "%v", err)
		assert.Contains(t, err.Error(), "PAY-1")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("其他数据库错误按内部错误返回", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(insert).WillReturnError(&driver.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"})

		err := NewSaleRepository(db).MarkPayment(ctx, "P1", "PAY-1")
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInternal), "%v", err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAdjustmentSoftDelete(t *testing.T) {
	ctx := context.Background()
	const softDelete = "UPDATE `stock_adjustments` SET `deleted_at`=\\? WHERE `stock_adjustments`.`id` = \\? AND `stock_adjustments`.`deleted_at` IS NULL"

	t.Run("软删除", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(softDelete).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewAdjustmentRepository(db).Delete(ctx, 5))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("已撤销的记录返回不存在", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(softDelete).WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewAdjustmentRepository(db).Delete(ctx, 5)
		assert.ErrorIs(t, err, adjustment.ErrAdjustmentNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("加锁查询排除已撤销记录", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery("SELECT \\* FROM `stock_adjustments` WHERE `stock_adjustments`.`id` = \\? AND `stock_adjustments`.`deleted_at` IS NULL .*FOR UPDATE").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := NewAdjustmentRepository(db).LockByID(ctx, 5)
		assert.ErrorIs(t, err, adjustment.ErrAdjustmentNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWholesaleLoadWithAllocations(t *testing.T) {
	db, mock := newMockDB(t)
	mock.MatchExpectationsInOrder(false)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	expire := time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT \\* FROM `wholesale_orders` WHERE `wholesale_orders`.`id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "order_no", "customer_name", "status", "total_amount", "paid_amount", "balance_amount", "created_by", "created_at", "updated_at",
		}).AddRow(3, "WHS-1", "Kilimanjaro Clinic", "confirmed", "38.00", "10.00", "28.00", "amina", created, created))
	mock.ExpectQuery("SELECT \\* FROM `wholesale_order_items` WHERE `wholesale_order_items`.`order_id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "unit_price", "subtotal"}).
			AddRow(11, 3, "P1", 8, "2.50", "20.00"))
	mock.ExpectQuery("SELECT \\* FROM `wholesale_allocations` WHERE `wholesale_allocations`.`item_id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "item_id", "batch_id", "batch_no", "quantity", "buying_price", "product_price", "expire_date"}).
			AddRow(21, 11, 1, "A1", 5, "1.00", "3.00", expire).
			AddRow(22, 11, 2, "A2", 3, "1.00", "3.00", nil))
	mock.ExpectQuery("SELECT \\* FROM `wholesale_payments` WHERE `wholesale_payments`.`order_id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "amount", "method", "created_at"}).
			AddRow(31, 3, "10.00", "cash", created))
	mock.ExpectQuery("SELECT \\* FROM `wholesale_deliveries` WHERE `wholesale_deliveries`.`order_id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))

	o, err := NewWholesaleRepository(db).FindByID(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, wholesale.StatusConfirmed, o.Status)
	assert.Equal(t, "28", o.BalanceAmount.String())
	require.Len(t, o.Items, 1)
	require.Len(t, o.Items[0].Allocations, 2)

	// 取消订单时按批号归还库存
	first := o.Items[0].Allocations[0]
	assert.Equal(t, "A1", first.BatchNo)
	assert.Equal(t, 5, first.Quantity)
	assert.True(t, first.ExpireDate.Equal(expire))
	assert.Equal(t, 8, stock.SumAllocated(o.Items[0].Allocations))

	require.Len(t, o.Payments, 1)
	assert.Equal(t, "cash", o.Payments[0].Method)
	assert.Empty(t, o.Deliveries)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWholesaleLockByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT `id` FROM `wholesale_orders` WHERE `wholesale_orders`.`id` = \\? .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewWholesaleRepository(db).LockByID(context.Background(), 404)
	assert.ErrorIs(t, err, wholesale.ErrOrderNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
