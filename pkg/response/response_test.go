package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/pharmacy/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(handler gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)

	var body Response
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestError(t *testing.T) {
	t.Run("业务拒绝返回400", func(t *testing.T) {
		w, body := perform(func(c *gin.Context) {
			Error(c, apperrors.ErrInsufficientStock.WithMessage("need 5, have 3"))
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperrors.ErrCodeInsufficientStock, body.Code)
		assert.Equal(t, "need 5, have 3", body.Message)
	})

	t.Run("字段校验返回422", func(t *testing.T) {
		w, body := perform(func(c *gin.Context) {
			Error(c, apperrors.Validation(map[string]string{"quantity": "quantity is required"}))
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "quantity is required", body.Errors["quantity"])
	})

	t.Run("未知错误返回500且不泄露细节", func(t *testing.T) {
		w, body := perform(func(c *gin.Context) {
			Error(c, errors.New("Error 1213: Deadlock found when trying to get lock"))
		})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "Deadlock")
		assert.Equal(t, apperrors.ErrCodeInternal, body.Code)
	})
}

func TestSuccessWithPage(t *testing.T) {
	w, _ := perform(func(c *gin.Context) {
		SuccessWithPage(c, []int{1, 2, 3}, 21, 1, 10)
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data PageData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Data.TotalPages)
	assert.Equal(t, int64(21), body.Data.Total)
}
