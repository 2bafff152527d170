package alert

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/overtake-labs/staking-monitor/internal/config"
	"github.com/overtake-labs/staking-monitor/internal/types"
	"github.com/overtake-labs/staking-monitor/tests/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const chatID = "-1001234567890"

func testConfig() *config.TelegramConfig {
	return &config.TelegramConfig{
		BotToken:         "token",
		ExplorerTxURL:    "https://suiscan.xyz/mainnet/tx/",
		DeliveryAttempts: 3,
		DefaultRetryWait: 5 * time.Millisecond,
		RetryMargin:      time.Millisecond,
	}
}

func testTx(function types.StakingFunction) *types.ClassifiedTransaction {
	return &types.ClassifiedTransaction{
		Function: function,
		Sender:   "0x1234567890abcdef1234567890abcdef12345678",
		Digest:   "9vJ3digest",
	}
}

func TestFormatMessage(t *testing.T) {
	msg := FormatMessage(testTx(types.FunctionDeposit), decimal.RequireFromString("40000"), decimal.RequireFromString("11200"), testConfig().ExplorerTxURL)

	assert.Contains(t, msg, "<b>OVERTAKE Stake</b>")
	assert.Contains(t, msg, "40000.00 TAKE")
	assert.Contains(t, msg, "$11200.00")
	assert.Contains(t, msg, "<code>0x12345678...12345678</code>")
	assert.Contains(t, msg, `href="https://suiscan.xyz/mainnet/tx/9vJ3digest"`)
	assert.NotContains(t, msg, "unbonding")

	unstake := FormatMessage(testTx(types.FunctionRequestUnstake), decimal.NewFromInt(1), decimal.NewFromInt(1), "x/")
	assert.True(t, strings.HasSuffix(unstake, "<i>Claimable after the 7-day unbonding period</i>"))
}

func TestDispatch(t *testing.T) {
	ctx := t.Context()
	amount := decimal.RequireFromString("40000")
	fiat := decimal.RequireFromString("11200")

	t.Run("delivered", func(t *testing.T) {
		notifier := mocks.NewNotifier(t)
		notifier.On("Send", mock.Anything, chatID, mock.AnythingOfType("string")).Return(nil).Once()

		err := NewDispatcher(notifier, testConfig()).Dispatch(ctx, chatID, testTx(types.FunctionDeposit), amount, fiat)
		require.NoError(t, err)
	})

	t.Run("rate limit then success", func(t *testing.T) {
		notifier := mocks.NewNotifier(t)
		notifier.On("Send", mock.Anything, chatID, mock.Anything).
			Return(&types.RateLimitError{RetryAfter: 10 * time.Millisecond}).Once()
		notifier.On("Send", mock.Anything, chatID, mock.Anything).Return(nil).Once()

		start := time.Now()
		err := NewDispatcher(notifier, testConfig()).Dispatch(ctx, chatID, testTx(types.FunctionDeposit), amount, fiat)
		require.NoError(t, err)
		// suggested wait plus margin
		assert.GreaterOrEqual(t, time.Since(start), 11*time.Millisecond)
	})

	t.Run("rate limit exhausts attempts", func(t *testing.T) {
		notifier := mocks.NewNotifier(t)
		notifier.On("Send", mock.Anything, chatID, mock.Anything).Return(&types.RateLimitError{}).Times(3)

		err := NewDispatcher(notifier, testConfig()).Dispatch(ctx, chatID, testTx(types.FunctionClaimUnstake), amount, fiat)
		require.ErrorIs(t, err, types.ErrExhaustedRetries)
		assert.True(t, types.IsRateLimited(err))
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		notifier := mocks.NewNotifier(t)
		notifier.On("Send", mock.Anything, chatID, mock.Anything).Return(errors.New("chat not found")).Once()

		err := NewDispatcher(notifier, testConfig()).Dispatch(ctx, chatID, testTx(types.FunctionDeposit), amount, fiat)
		require.Error(t, err)
		assert.NotErrorIs(t, err, types.ErrExhaustedRetries)
	})

	t.Run("outcome is published", func(t *testing.T) {
		notifier := mocks.NewNotifier(t)
		notifier.On("Send", mock.Anything, chatID, mock.Anything).Return(errors.New("blocked")).Once()
		publisher := mocks.NewEventPublisher(t)
		publisher.On("PublishAlertEvent", mock.Anything, mock.MatchedBy(func(e *types.AlertEvent) bool {
			return e.SessionID == chatID &&
				e.Status == types.AlertFailed &&
				e.Attempts == 1 &&
				e.Error != "" &&
				e.Amount.Equal(amount)
		})).Return(errors.New("queue down")).Once()

		dispatcher := NewDispatcher(notifier, testConfig(), WithEventPublisher(publisher))
		err := dispatcher.Dispatch(ctx, chatID, testTx(types.FunctionDeposit), amount, fiat)
		require.Error(t, err)
	})
}
