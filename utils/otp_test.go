package utils

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateOTP_SixDigits(t *testing.T) {
	t.Parallel()

	for i := 0; i < 1000; i++ {
		code := GenerateOTP()
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100000)
		require.LessOrEqual(t, n, 999999)
	}
}
