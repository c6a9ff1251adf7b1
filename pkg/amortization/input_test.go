package amortization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/segyhp/sacco-engine/pkg/errors"
)

func TestResolve(t *testing.T) {
	terms := LoanTerms{
		PrincipalWithFee: dec("30150"),
		MonthlyRate:      dec("0.018"),
		TermMonths:       12,
		Balance:          dec("30150"),
	}

	t.Run("live payment", func(t *testing.T) {
		out, err := Resolve(terms, LivePayment{Amount: dec("2816.07")})
		require.NoError(t, err)
		require.NotNil(t, out.Live)
		assert.Nil(t, out.CatchUp)
		assert.True(t, out.Live.InterestPortion.Equal(dec("542.70")), "interest = %s", out.Live.InterestPortion)
	})

	t.Run("elapsed periods", func(t *testing.T) {
		out, err := Resolve(terms, ElapsedPeriods{MonthsElapsed: 5})
		require.NoError(t, err)
		require.NotNil(t, out.CatchUp)
		assert.Nil(t, out.Live)
		assert.True(t, out.CatchUp.RemainingBalance.Equal(dec("18366.51")))
	})

	t.Run("explicit figures", func(t *testing.T) {
		out, err := Resolve(terms, ExplicitFigures{PrincipalPaid: dec("1000"), InterestPaid: dec("100")})
		require.NoError(t, err)
		require.NotNil(t, out.CatchUp)
		assert.True(t, out.CatchUp.Explicit)
	})

	t.Run("errors propagate", func(t *testing.T) {
		_, err := Resolve(terms, LivePayment{Amount: dec("0")})
		assert.ErrorIs(t, err, customError.ErrInvalidPaymentAmount)

		_, err = Resolve(terms, ExplicitFigures{PrincipalPaid: dec("99999"), InterestPaid: dec("0")})
		assert.ErrorIs(t, err, customError.ErrOverrideExceedsPrincipal)
	})

	t.Run("nil input", func(t *testing.T) {
		_, err := Resolve(terms, nil)
		assert.Error(t, err)
	})
}
