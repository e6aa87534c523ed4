package bots

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/SscSPs/investment_bot/internal/apperrors"
	"github.com/SscSPs/investment_bot/internal/core/domain"
	portssvc "github.com/SscSPs/investment_bot/internal/core/ports/services"
	"github.com/SscSPs/investment_bot/internal/dto"
	"github.com/SscSPs/investment_bot/internal/middleware"
	"github.com/SscSPs/investment_bot/internal/session"
	"github.com/SscSPs/investment_bot/internal/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	historyLimit     = 10
	projectionWeeks  = 12
	projectionShown  = 8
	ticketsShownUser = 5
)

// UserBotConfig holds what the user bot shows besides account data.
type UserBotConfig struct {
	BTCAddress       string
	USDTTRC20Address string
}

// UserBot serves investors: registration by access code, balance, history, projections,
// withdrawal info, reinvestment and support tickets.
type UserBot struct {
	sender   Sender
	svc      *portssvc.ServiceContainer
	sessions session.Store
	cfg      UserBotConfig
}

// NewUserBot creates the user bot.
func NewUserBot(sender Sender, svc *portssvc.ServiceContainer, sessions session.Store, cfg UserBotConfig) *UserBot {
	return &UserBot{sender: sender, svc: svc, sessions: sessions, cfg: cfg}
}

var _ Handler = (*UserBot)(nil)

// chat is the conversation an update belongs to.
type chat struct {
	id     int64
	userID string
	name   string
}

func chatFor(msg *tgbotapi.Message, from *tgbotapi.User) chat {
	name := strings.TrimSpace(from.FirstName + " " + from.LastName)
	return chat{id: msg.Chat.ID, userID: strconv.FormatInt(from.ID, 10), name: name}
}

func (b *UserBot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		answerCallback(ctx, b.sender, cq.ID)
		if cq.Message == nil || cq.From == nil {
			return
		}
		b.handleAction(ctx, chatFor(cq.Message, cq.From), cq.Data)
	case update.Message != nil && update.Message.From != nil:
		msg := update.Message
		c := chatFor(msg, msg.From)
		if msg.IsCommand() {
			b.handleCommand(ctx, c, msg.Command(), strings.TrimSpace(msg.CommandArguments()))
			return
		}
		b.handleText(ctx, c, strings.TrimSpace(msg.Text))
	}
}

func (b *UserBot) handleCommand(ctx context.Context, c chat, command, args string) {
	switch command {
	case "start":
		if args != "" {
			b.redeem(ctx, c, args)
			return
		}
		b.showWelcome(ctx, c)
	case "code":
		if args == "" {
			b.promptForCode(ctx, c)
			return
		}
		b.redeem(ctx, c, args)
	case "menu":
		b.showMainMenu(ctx, c)
	case "cancel":
		b.clearSession(ctx, c)
		b.reply(ctx, c, "Cancelled.", mainMenuButton())
	default:
		b.handleAction(ctx, c, command)
	}
}

// handleAction serves both inline buttons and their equivalent commands.
func (b *UserBot) handleAction(ctx context.Context, c chat, action string) {
	switch action {
	case "main_menu":
		b.showMainMenu(ctx, c)
	case "balance":
		b.showBalance(ctx, c)
	case "history", "investment_history":
		b.showHistory(ctx, c)
	case "projection", "earnings_calculator":
		b.showProjection(ctx, c)
	case "withdraw":
		b.showWithdraw(ctx, c)
	case "reinvest":
		b.showReinvest(ctx, c)
	case "confirm_reinvest":
		b.confirmReinvest(ctx, c)
	case "support":
		b.promptForSupport(ctx, c)
	case "tickets":
		b.showTickets(ctx, c)
	default:
		b.reply(ctx, c, "Unknown command. Use /menu to see what I can do.", nil)
	}
}

// handleText answers free text according to the pending prompt, if any.
func (b *UserBot) handleText(ctx context.Context, c chat, text string) {
	state, ok, err := b.sessions.Get(ctx, c.userID)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to read session", slog.String("error", err.Error()))
	}
	if !ok || text == "" {
		b.reply(ctx, c, "Use /menu to see what I can do.", nil)
		return
	}
	switch state.Awaiting {
	case session.AwaitingAccessCode:
		b.redeem(ctx, c, text)
	case session.AwaitingSupportMessage:
		b.createTicket(ctx, c, text)
	default:
		b.reply(ctx, c, "Use /menu to see what I can do.", nil)
	}
}

func (b *UserBot) reply(ctx context.Context, c chat, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	send(ctx, b.sender, c.id, text, markup)
}

func mainMenuButton() *tgbotapi.InlineKeyboardMarkup {
	m := keyboard(button("🏠 Main Menu", "main_menu"))
	return &m
}

func (b *UserBot) setSession(ctx context.Context, c chat, awaiting session.Awaiting) {
	if err := b.sessions.Set(ctx, c.userID, session.State{Awaiting: awaiting}); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to store session", slog.String("error", err.Error()))
	}
}

func (b *UserBot) clearSession(ctx context.Context, c chat) {
	if err := b.sessions.Clear(ctx, c.userID); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to clear session", slog.String("error", err.Error()))
	}
}

// account loads the caller's account. ok is false when the caller is not registered;
// the welcome text has then already been sent.
func (b *UserBot) account(ctx context.Context, c chat) (*domain.Account, bool) {
	var acc *domain.Account
	err := withRetry(ctx, func() error {
		var err error
		acc, err = b.svc.Account.GetAccount(ctx, c.userID)
		return err
	})
	if errors.Is(err, apperrors.ErrNotFound) {
		b.showWelcome(ctx, c)
		return nil, false
	}
	if err != nil {
		b.reply(ctx, c, errorText(err), nil)
		return nil, false
	}
	return acc, true
}

func (b *UserBot) showWelcome(ctx context.Context, c chat) {
	if _, err := b.svc.Account.GetAccount(ctx, c.userID); err == nil {
		b.showMainMenu(ctx, c)
		return
	}
	b.setSession(ctx, c, session.AwaitingAccessCode)
	b.reply(ctx, c, "👋 Welcome to Investment Bot!\n\n"+
		"To get started, you need an access code from an administrator.\n"+
		"Send your code now, or use /code <code>.", nil)
}

func (b *UserBot) promptForCode(ctx context.Context, c chat) {
	b.setSession(ctx, c, session.AwaitingAccessCode)
	b.reply(ctx, c, "Please send your access code.", nil)
}

func (b *UserBot) redeem(ctx context.Context, c chat, code string) {
	if _, err := b.svc.Account.GetAccount(ctx, c.userID); err == nil {
		b.clearSession(ctx, c)
		b.reply(ctx, c, "You are already registered!", mainMenuButton())
		return
	}

	var acc *domain.Account
	err := withRetry(ctx, func() error {
		var err error
		acc, err = b.svc.AccessCode.RedeemAccessCode(ctx, dto.RedeemAccessCodeRequest{
			Code:   code,
			UserID: c.userID,
			Name:   c.name,
		})
		return err
	})
	if err != nil {
		b.reply(ctx, c, errorText(err), nil)
		return
	}
	b.clearSession(ctx, c)

	policy := b.svc.ROI.Policy()
	b.reply(ctx, c, fmt.Sprintf("🎉 Welcome to Investment Bot!\n\n"+
		"✅ Access code redeemed successfully\n"+
		"💰 Initial Balance: %s\n"+
		"📈 Weekly ROI: %s%% (%s)\n\n"+
		"Your investment journey starts now!",
		utils.FormatUSD(acc.InitialBalance),
		policy.Percentage.String(),
		utils.FormatUSD(b.svc.ROI.NextAmount(acc))), mainMenuButton())
}

func (b *UserBot) showMainMenu(ctx context.Context, c chat) {
	acc, ok := b.account(ctx, c)
	if !ok {
		return
	}
	menu := keyboard(
		button("💰 Balance", "balance"),
		button("📈 Earnings Calculator", "earnings_calculator"),
		button("📊 Investment History", "investment_history"),
		button("💸 Withdraw", "withdraw"),
		button("🔄 Reinvest", "reinvest"),
		button("🎫 Support", "support"),
	)
	b.reply(ctx, c, fmt.Sprintf("🏠 Main Menu\n\nWelcome back, %s!\nCurrent Balance: %s\nROI Cycles: %d/%d",
		acc.Name, utils.FormatUSD(acc.CurrentBalance), acc.ROICyclesCompleted, acc.MaxROICycles), &menu)
}

func (b *UserBot) showBalance(ctx context.Context, c chat) {
	acc, ok := b.account(ctx, c)
	if !ok {
		return
	}
	canWithdraw := "✅ Yes"
	if !acc.CanWithdrawNow() {
		canWithdraw = fmt.Sprintf("❌ No (complete %d ROI cycles)", acc.MaxROICycles)
	}
	b.reply(ctx, c, fmt.Sprintf("💰 Your Balance\n\n"+
		"💵 Current Balance: %s\n"+
		"🏦 Initial Balance: %s\n"+
		"📈 ROI Cycles Completed: %d/%d\n"+
		"📅 Next ROI Date: %s\n"+
		"💸 Can Withdraw: %s\n\n"+
		"📊 Weekly ROI: %s (%s%%)",
		utils.FormatUSD(acc.CurrentBalance),
		utils.FormatUSD(acc.InitialBalance),
		acc.ROICyclesCompleted, acc.MaxROICycles,
		formatDate(acc.NextROIDate),
		canWithdraw,
		utils.FormatUSD(b.svc.ROI.NextAmount(acc)),
		b.svc.ROI.Policy().Percentage.String()), mainMenuButton())
}

func (b *UserBot) showProjection(ctx context.Context, c chat) {
	if _, ok := b.account(ctx, c); !ok {
		return
	}
	projection, err := b.svc.ROI.ProjectEarnings(ctx, c.userID, projectionWeeks)
	if err != nil {
		b.reply(ctx, c, errorText(err), nil)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📈 %d-Week Earnings Projection\n\n", projectionWeeks)
	fmt.Fprintf(&sb, "Current Balance: %s\nWeekly ROI: %s\n\n",
		utils.FormatUSD(projection.CurrentBalance), utils.FormatUSD(projection.WeeklyAmount))
	for i, w := range projection.Breakdown {
		if i == projectionShown && len(projection.Breakdown) > projectionShown+1 {
			sb.WriteString("...\n")
			w = projection.Breakdown[len(projection.Breakdown)-1]
			fmt.Fprintf(&sb, "Week %d: +%s → %s\n", w.Week, utils.FormatUSD(w.Amount), utils.FormatUSD(w.Total))
			break
		}
		fmt.Fprintf(&sb, "Week %d: +%s → %s\n", w.Week, utils.FormatUSD(w.Amount), utils.FormatUSD(w.Total))
	}
	fmt.Fprintf(&sb, "\n💰 Total Projected: %s", utils.FormatUSD(projection.TotalProjected))
	b.reply(ctx, c, sb.String(), mainMenuButton())
}

func kindEmoji(kind domain.TransactionKind) string {
	switch kind {
	case domain.InitialDeposit:
		return "💰"
	case domain.ROIPayment:
		return "📈"
	case domain.Reinvestment:
		return "🔄"
	case domain.Withdrawal:
		return "💸"
	case domain.AdminCredit:
		return "➕"
	case domain.AdminDebit:
		return "➖"
	case domain.TransferIn:
		return "↗️"
	case domain.TransferOut:
		return "↘️"
	default:
		return "📊"
	}
}

func (b *UserBot) showHistory(ctx context.Context, c chat) {
	if _, ok := b.account(ctx, c); !ok {
		return
	}
	var records []domain.LedgerRecord
	err := withRetry(ctx, func() error {
		var err error
		records, err = b.svc.Balance.GetHistory(ctx, c.userID, historyLimit)
		return err
	})
	if err != nil {
		b.reply(ctx, c, errorText(err), nil)
		return
	}
	if len(records) == 0 {
		b.reply(ctx, c, "📊 Investment History\n\nNo transactions found.", mainMenuButton())
		return
	}

	var sb strings.Builder
	sb.WriteString("📊 Recent Investment History\n\n")
	for _, rec := range records {
		amount := "+" + utils.FormatUSD(rec.Amount)
		switch {
		case rec.Kind.IsDebit():
			amount = "-" + utils.FormatUSD(rec.Amount)
		case rec.Kind == domain.Reinvestment:
			amount = "⟳" + utils.FormatUSD(rec.Amount)
		}
		fmt.Fprintf(&sb, "%s %s\n%s - %s\nBalance: %s\n\n",
			kindEmoji(rec.Kind), rec.CreatedAt.Format("2006-01-02"),
			amount, rec.Description, utils.FormatUSD(rec.BalanceAfter))
	}
	b.reply(ctx, c, sb.String(), mainMenuButton())
}

func (b *UserBot) showWithdraw(ctx context.Context, c chat) {
	acc, ok := b.account(ctx, c)
	if !ok {
		return
	}
	if !acc.CanWithdrawNow() {
		b.reply(ctx, c, fmt.Sprintf("💸 Withdrawal\n\n"+
			"❌ Withdrawal is not available yet.\n"+
			"You need to complete %d more ROI cycles.\n\n"+
			"Current Progress: %d/%d",
			acc.CyclesRemaining(), acc.ROICyclesCompleted, acc.MaxROICycles), mainMenuButton())
		return
	}
	menu := keyboard(button("🎫 Contact Support", "support"), button("🏠 Main Menu", "main_menu"))
	b.reply(ctx, c, fmt.Sprintf("💸 Withdrawal\n\n"+
		"Available Balance: %s\n\n"+
		"To request a withdrawal, contact support with:\n"+
		"• Your withdrawal amount\n"+
		"• Your preferred method (BTC/USDT)\n"+
		"• Your withdrawal address\n\n"+
		"Withdrawal addresses:\n"+
		"BTC: %s\n"+
		"USDT (TRC20): %s",
		utils.FormatUSD(acc.CurrentBalance), b.cfg.BTCAddress, b.cfg.USDTTRC20Address), &menu)
}

func (b *UserBot) showReinvest(ctx context.Context, c chat) {
	acc, ok := b.account(ctx, c)
	if !ok {
		return
	}
	gain := acc.CurrentBalance.Sub(acc.InitialBalance)
	if !gain.IsPositive() {
		b.reply(ctx, c, "🔄 Reinvest\n\n❌ There are no earnings to reinvest yet.", mainMenuButton())
		return
	}
	b.setSession(ctx, c, session.AwaitingReinvestOK)
	menu := keyboard(button("✅ Yes, Reinvest", "confirm_reinvest"), button("❌ Cancel", "main_menu"))
	b.reply(ctx, c, fmt.Sprintf("🔄 Reinvest\n\n"+
		"Current Balance: %s\n"+
		"Earnings to reinvest: %s\n\n"+
		"Your ROI will be calculated on the full balance from now on.\n\n"+
		"⚠️ This action cannot be undone. Are you sure?",
		utils.FormatUSD(acc.CurrentBalance), utils.FormatUSD(gain)), &menu)
}

func (b *UserBot) confirmReinvest(ctx context.Context, c chat) {
	state, ok, _ := b.sessions.Get(ctx, c.userID)
	if !ok || state.Awaiting != session.AwaitingReinvestOK {
		b.reply(ctx, c, "Use /reinvest first.", mainMenuButton())
		return
	}
	b.clearSession(ctx, c)

	acc, err := b.svc.Balance.Reinvest(ctx, c.userID, c.userID)
	if err != nil {
		b.reply(ctx, c, errorText(err), mainMenuButton())
		return
	}
	b.reply(ctx, c, fmt.Sprintf("✅ Reinvested!\n\nNew ROI base: %s\nNext weekly ROI: %s",
		utils.FormatUSD(acc.InitialBalance), utils.FormatUSD(b.svc.ROI.NextAmount(acc))), mainMenuButton())
}

func (b *UserBot) promptForSupport(ctx context.Context, c chat) {
	if _, ok := b.account(ctx, c); !ok {
		return
	}
	b.setSession(ctx, c, session.AwaitingSupportMessage)
	menu := keyboard(button("❌ Cancel", "main_menu"))
	b.reply(ctx, c, "🎫 Support\n\nHow can we help you today?\n\nPlease describe your issue or question:", &menu)
}

func (b *UserBot) createTicket(ctx context.Context, c chat, message string) {
	ticket, err := b.svc.Support.CreateTicket(ctx, dto.CreateTicketRequest{UserID: c.userID, Message: message})
	if err != nil {
		b.reply(ctx, c, errorText(err), nil)
		return
	}
	b.clearSession(ctx, c)
	b.reply(ctx, c, fmt.Sprintf("✅ Support ticket %s created!\n\n"+
		"We will review your message and respond as soon as possible.", shortID(ticket.TicketID)), mainMenuButton())
}

func (b *UserBot) showTickets(ctx context.Context, c chat) {
	tickets, err := b.svc.Support.ListTicketsByUser(ctx, c.userID)
	if err != nil {
		b.reply(ctx, c, errorText(err), nil)
		return
	}
	if len(tickets) == 0 {
		b.reply(ctx, c, "🎫 You have no support tickets.", mainMenuButton())
		return
	}
	var sb strings.Builder
	sb.WriteString("🎫 Your Tickets\n\n")
	for i, t := range tickets {
		if i == ticketsShownUser {
			break
		}
		fmt.Fprintf(&sb, "%s #%s (%s)\n%s\n", statusEmoji(t.Status), shortID(t.TicketID), t.Status, truncate(t.Message, 50))
		if t.AdminResponse != "" {
			fmt.Fprintf(&sb, "↳ %s\n", t.AdminResponse)
		}
		sb.WriteString("\n")
	}
	b.reply(ctx, c, sb.String(), mainMenuButton())
}

func statusEmoji(status domain.TicketStatus) string {
	switch status {
	case domain.TicketOpen:
		return "🔴"
	case domain.TicketInProgress:
		return "🟡"
	case domain.TicketClosed:
		return "🟢"
	default:
		return "⚪"
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
