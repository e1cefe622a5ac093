package vecann

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecann/index"
	"github.com/hupe1980/vecann/internal/resource"
)

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))

	t.Run("dimension mismatch", func(t *testing.T) {
		cause := fmt.Errorf("search: %w", &index.ErrDimensionMismatch{Expected: 3, Actual: 2})
		err := translateError(cause)

		var dm *ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 3, dm.Expected)
		assert.Equal(t, 2, dm.Actual)
		assert.Equal(t, "dimension mismatch: expected 3, got 2", dm.Error())

		var inner *index.ErrDimensionMismatch
		assert.ErrorAs(t, err, &inner)
	})

	tests := []struct {
		name  string
		cause error
		want  error
	}{
		{"not trained", index.ErrNotTrained, ErrNotTrained},
		{"already trained", index.ErrAlreadyTrained, ErrAlreadyFit},
		{"invalid k", index.ErrInvalidK, ErrInvalidArgument},
		{"invalid argument", index.InvalidArgument("n_probe %d", 9), ErrInvalidArgument},
		{"memory", resource.ErrMemoryLimitExceeded, ErrMemoryLimitExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translateError(tt.cause)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.cause)
		})
	}

	t.Run("passthrough", func(t *testing.T) {
		other := errors.New("other")
		assert.Equal(t, other, translateError(other))
	})
}
