// Package bots implements the Telegram user bot and admin bot on top of the core services.
package bots

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/investment_bot/internal/apperrors"
	"github.com/SscSPs/investment_bot/internal/core/domain"
	"github.com/SscSPs/investment_bot/internal/middleware"
	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
)

// Sender is the part of the Bot API the handlers talk to.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// API is a Sender that can also long-poll for updates.
type API interface {
	Sender
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Handler processes one update.
type Handler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// NewAPI connects to the Bot API, retrying while Telegram is unreachable.
func NewAPI(ctx context.Context, token string, maxElapsed time.Duration) (*tgbotapi.BotAPI, error) {
	expo := backoff.NewExponentialBackOff()
	expo.MaxElapsedTime = maxElapsed

	var api *tgbotapi.BotAPI
	err := backoff.RetryNotify(func() error {
		var err error
		api, err = tgbotapi.NewBotAPI(token)
		return err
	}, backoff.WithContext(expo, ctx), func(err error, wait time.Duration) {
		middleware.GetLoggerFromCtx(ctx).Warn("Bot API not reachable, retrying",
			slog.String("error", err.Error()), slog.Duration("wait", wait))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect bot: %w", err)
	}
	return api, nil
}

// Run long-polls api and hands every update to h until ctx is cancelled.
func Run(ctx context.Context, name string, api API, h Handler) {
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("bot", name))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)
	defer api.StopReceivingUpdates()

	logger.Info("Bot started")
	for {
		select {
		case <-ctx.Done():
			logger.Info("Bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			dispatch(ctx, logger, h, update)
		}
	}
}

// dispatch runs one update with a scoped logger and actor, recovering panics so one bad
// update cannot stop the bot.
func dispatch(ctx context.Context, logger *slog.Logger, h Handler, update tgbotapi.Update) {
	if from := update.SentFrom(); from != nil {
		actor := strconv.FormatInt(from.ID, 10)
		logger = logger.With(slog.Int("update_id", update.UpdateID), slog.String("actor", actor))
		ctx = middleware.WithActor(ctx, actor)
	}
	ctx = middleware.WithLogger(ctx, logger)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic while handling update", slog.Any("panic", r))
		}
	}()
	h.HandleUpdate(ctx, update)
}

// withRetry retries op while it fails with apperrors.ErrTransient.
func withRetry(ctx context.Context, op func() error) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	return backoff.Retry(func() error {
		err := op()
		if err != nil && !errors.Is(err, apperrors.ErrTransient) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

// errorText turns a service error into a short message for a chat.
func errorText(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return "❌ Not found."
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		return "❌ Insufficient funds."
	case errors.Is(err, apperrors.ErrNotDue):
		return "⏳ ROI is not due yet."
	case errors.Is(err, apperrors.ErrWithdrawalLocked):
		return "🔒 Withdrawal is not unlocked yet."
	case errors.Is(err, apperrors.ErrCodeAlreadyUsed):
		return "❌ This access code has already been used."
	case errors.Is(err, apperrors.ErrCodeExpired):
		return "❌ This access code has expired."
	case errors.Is(err, apperrors.ErrInvalidCode):
		return "❌ Invalid access code. Please contact support."
	case errors.Is(err, apperrors.ErrDuplicate):
		return "❌ Already exists."
	case errors.Is(err, apperrors.ErrInvalidTransition):
		return "❌ That ticket can no longer be changed."
	case errors.Is(err, apperrors.ErrValidation):
		return "❌ " + err.Error()
	case errors.Is(err, apperrors.ErrTransient):
		return "⚠️ The service is busy. Please try again in a moment."
	default:
		return "❌ An error occurred. Please try again later."
	}
}

func button(text, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, data)
}

func keyboard(buttons ...tgbotapi.InlineKeyboardButton) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(b))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func send(ctx context.Context, sender Sender, chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	if _, err := sender.Send(msg); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to send message",
			slog.String("error", err.Error()), slog.Int64("chat_id", chatID))
	}
}

func answerCallback(ctx context.Context, sender Sender, id string) {
	if _, err := sender.Request(tgbotapi.NewCallback(id, "")); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to answer callback", slog.String("error", err.Error()))
	}
}

// parseAmount reads a positive money amount with at most two decimal places.
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimPrefix(raw, "$"))
	if err != nil || !domain.IsMoneyAmount(amount) {
		return decimal.Zero, fmt.Errorf("%w: %q is not a positive amount in dollars and cents", apperrors.ErrValidation, raw)
	}
	return amount, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "Not set"
	}
	return t.Format("2006-01-02")
}
