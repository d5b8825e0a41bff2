package adjustment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{"increase", TypeIncrease, false},
		{" Decrease ", TypeDecrease, false},
		{"TRANSFER", TypeTransfer, false},
		{"donation", TypeDonation, false},
		{"theft", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	a, err := New("P1", "B1", TypeDecrease, 5, "broken", "", "amina")
	require.NoError(t, err)
	assert.Equal(t, -5, a.RequestedDelta())

	inc, err := New("P1", "B1", TypeIncrease, 5, "", "", "amina")
	require.NoError(t, err)
	assert.Equal(t, 5, inc.RequestedDelta())

	_, err = New("P1", "B1", TypeTransfer, 5, "", " ", "amina")
	assert.Equal(t, ErrDestinationRequired, err)

	_, err = New("P1", "", TypeIncrease, 5, "", "", "amina")
	assert.Equal(t, ErrBatchRequired, err)

	_, err = New("P1", "B1", TypeIncrease, 0, "", "", "amina")
	assert.Equal(t, ErrInvalidQuantity, err)

	_, err = New("P1", "B1", TypeIncrease, MaxQuantity+1, "", "", "amina")
	assert.Equal(t, ErrQuantityTooLarge, err)

	_, err = New("P1", "B1", TypeIncrease, MaxQuantity, "", "", "amina")
	assert.NoError(t, err)
}

func TestClampedAndReversal(t *testing.T) {
	a, err := New("P1", "B1", TypeDecrease, 5, "", "", "amina")
	require.NoError(t, err)

	// 库存只有3时实际只扣3
	a.AppliedDelta = -3
	assert.True(t, a.Clamped())
	assert.Equal(t, 3, a.ReversalDelta())

	a.AppliedDelta = -5
	assert.False(t, a.Clamped())
	assert.Equal(t, 5, a.ReversalDelta())
}
