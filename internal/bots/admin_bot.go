package bots

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/investment_bot/internal/core/domain"
	portssvc "github.com/SscSPs/investment_bot/internal/core/ports/services"
	"github.com/SscSPs/investment_bot/internal/dto"
	"github.com/SscSPs/investment_bot/internal/middleware"
	"github.com/SscSPs/investment_bot/internal/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const adminTicketsShown = 10

// AdminBotConfig holds the admin bot's settings.
type AdminBotConfig struct {
	AdminChatIDs  []int64
	SweepInterval time.Duration
}

// AdminBot lets administrators manage accounts, balances, ROI, access codes and tickets.
// Only chats listed in AdminChatIDs are served.
type AdminBot struct {
	sender Sender
	svc    *portssvc.ServiceContainer
	runner portssvc.SweepRunnerSvc
	notify Sender
	cfg    AdminBotConfig
}

// NewAdminBot creates the admin bot. notify, if not nil, is used to tell users about
// ticket responses; it is normally the user bot's sender.
func NewAdminBot(sender Sender, svc *portssvc.ServiceContainer, runner portssvc.SweepRunnerSvc, notify Sender, cfg AdminBotConfig) *AdminBot {
	return &AdminBot{sender: sender, svc: svc, runner: runner, notify: notify, cfg: cfg}
}

var _ Handler = (*AdminBot)(nil)

const adminHelp = `🔧 Admin Panel

/register <user_id> <name> <initial_balance> [email] [phone] [country]
/credit <user_id> <amount> [description]
/debit <user_id> <amount> [description]
/transfer <from_id> <to_id> <amount>
/withdraw <user_id> <amount> [destination]
/increment_roi <user_id>
/roi_status
/catchup_roi
/users
/user <user_id>
/deactivate <user_id>
/create_code <initial_balance> <name> [code]
/codes
/tickets [open|in_progress|closed]
/progress <ticket_id>
/respond <ticket_id> <message>
/close <ticket_id>
/settings`

func (b *AdminBot) isAdmin(chatID int64) bool {
	for _, id := range b.cfg.AdminChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

func (b *AdminBot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		if update.CallbackQuery != nil {
			answerCallback(ctx, b.sender, update.CallbackQuery.ID)
		}
		return
	}
	if !b.isAdmin(msg.From.ID) {
		middleware.GetLoggerFromCtx(ctx).Warn("Rejected non-admin chat", slog.Int64("from_id", msg.From.ID))
		b.reply(ctx, msg.Chat.ID, "❌ Access denied. This bot is for administrators only.")
		return
	}
	if !msg.IsCommand() {
		b.reply(ctx, msg.Chat.ID, "Use /help to see the available commands.")
		return
	}
	args := strings.Fields(msg.CommandArguments())
	b.reply(ctx, msg.Chat.ID, b.run(ctx, msg.Command(), args))
}

func (b *AdminBot) reply(ctx context.Context, chatID int64, text string) {
	send(ctx, b.sender, chatID, text, nil)
}

// actor is the admin issuing the command.
func actor(ctx context.Context) string {
	if a, ok := middleware.ActorFromCtx(ctx); ok {
		return a
	}
	return domain.SystemActor
}

// run executes one admin command and returns the reply text.
func (b *AdminBot) run(ctx context.Context, command string, args []string) string {
	switch command {
	case "start", "help":
		return adminHelp
	case "register":
		return b.register(ctx, args)
	case "credit", "debit":
		return b.changeBalance(ctx, command, args)
	case "transfer":
		return b.transfer(ctx, args)
	case "withdraw":
		return b.withdraw(ctx, args)
	case "increment_roi":
		return b.incrementROI(ctx, args)
	case "roi_status":
		return b.roiStatus(ctx)
	case "catchup_roi":
		return b.catchupROI(ctx)
	case "users":
		return b.users(ctx)
	case "user":
		return b.user(ctx, args)
	case "deactivate":
		return b.deactivate(ctx, args)
	case "create_code":
		return b.createCode(ctx, args)
	case "codes":
		return b.codes(ctx)
	case "tickets":
		return b.tickets(ctx, args)
	case "progress":
		return b.ticketAction(ctx, args, b.svc.Support.SetInProgress)
	case "close":
		return b.ticketAction(ctx, args, b.svc.Support.CloseTicket)
	case "respond":
		return b.respond(ctx, args)
	case "settings":
		return b.settings()
	default:
		return "Unknown command. Use /help."
	}
}

func (b *AdminBot) register(ctx context.Context, args []string) string {
	if len(args) < 3 {
		return "Usage: /register <user_id> <name> <initial_balance> [email] [phone] [country]"
	}
	amount, err := parseAmount(args[2])
	if err != nil {
		return errorText(err)
	}
	req := dto.CreateAccountRequest{UserID: args[0], Name: args[1], InitialBalance: amount}
	optional := []*string{&req.Email, &req.Phone, &req.Country}
	for i, v := range args[3:] {
		if i < len(optional) {
			*optional[i] = v
		}
	}
	acc, err := b.svc.Account.CreateAccount(ctx, req, actor(ctx))
	if err != nil {
		return errorText(err)
	}
	return fmt.Sprintf("✅ Registered %s (%s) with %s\nNext ROI: %s",
		acc.Name, acc.UserID, utils.FormatUSD(acc.CurrentBalance), formatDate(acc.NextROIDate))
}

func (b *AdminBot) changeBalance(ctx context.Context, command string, args []string) string {
	if len(args) < 2 {
		return fmt.Sprintf("Usage: /%s <user_id> <amount> [description]", command)
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		return errorText(err)
	}
	req := dto.BalanceChangeRequest{UserID: args[0], Amount: amount, Description: strings.Join(args[2:], " ")}

	var acc *domain.Account
	if command == "credit" {
		acc, err = b.svc.Balance.Credit(ctx, req, actor(ctx))
	} else {
		acc, err = b.svc.Balance.Debit(ctx, req, actor(ctx))
	}
	if err != nil {
		return errorText(err)
	}
	return fmt.Sprintf("✅ %s %s for %s\nNew balance: %s",
		strings.ToUpper(command[:1])+command[1:], utils.FormatUSD(amount), acc.UserID, utils.FormatUSD(acc.CurrentBalance))
}

func (b *AdminBot) transfer(ctx context.Context, args []string) string {
	if len(args) < 3 {
		return "Usage: /transfer <from_id> <to_id> <amount>"
	}
	amount, err := parseAmount(args[2])
	if err != nil {
		return errorText(err)
	}
	err = b.svc.Balance.Transfer(ctx, dto.TransferRequest{FromUserID: args[0], ToUserID: args[1], Amount: amount}, actor(ctx))
	if err != nil {
		return errorText(err)
	}
	return fmt.Sprintf("✅ Transferred %s from %s to %s", utils.FormatUSD(amount), args[0], args[1])
}

func (b *AdminBot) withdraw(ctx context.Context, args []string) string {
	if len(args) < 2 {
		return "Usage: /withdraw <user_id> <amount> [destination]"
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		return errorText(err)
	}
	acc, err := b.svc.Balance.Withdraw(ctx, dto.WithdrawRequest{
		UserID: args[0], Amount: amount, Destination: strings.Join(args[2:], " "),
	}, actor(ctx))
	if err != nil {
		return errorText(err)
	}
	return fmt.Sprintf("✅ Withdrawal of %s recorded for %s\nNew balance: %s",
		utils.FormatUSD(amount), acc.UserID, utils.FormatUSD(acc.CurrentBalance))
}

func (b *AdminBot) incrementROI(ctx context.Context, args []string) string {
	if len(args) < 1 {
		return "Usage: /increment_roi <user_id>"
	}
	var acc *domain.Account
	err := withRetry(ctx, func() error {
		var err error
		acc, err = b.svc.ROI.ProcessOne(ctx, args[0], b.svc.ROI.Now())
		return err
	})
	if err != nil {
		return errorText(err)
	}
	return fmt.Sprintf("✅ ROI paid to %s (%s)\nCycle %d/%d, balance %s, next ROI %s",
		acc.Name, acc.UserID, acc.ROICyclesCompleted, acc.MaxROICycles,
		utils.FormatUSD(acc.CurrentBalance), formatDate(acc.NextROIDate))
}

func (b *AdminBot) roiStatus(ctx context.Context) string {
	due, err := b.svc.ROI.DueAccounts(ctx, b.svc.ROI.Now())
	if err != nil {
		return errorText(err)
	}
	var sb strings.Builder
	sb.WriteString("📊 ROI Status\n\n")
	if status := b.runner.Status(); status.LastRunAt != nil && status.LastResult != nil {
		fmt.Fprintf(&sb, "Last sweep: %s (%d paid, %d errors)\n",
			status.LastRunAt.Format(time.RFC3339), status.LastResult.Processed, len(status.LastResult.Errors))
	}
	fmt.Fprintf(&sb, "ROI Due: %d\n", len(due))
	for _, d := range due {
		fmt.Fprintf(&sb, "\n• %s (%s)\n  Balance: %s\n  Next ROI: %s\n",
			d.Account.Name, d.Account.UserID, utils.FormatUSD(d.Account.CurrentBalance), utils.FormatUSD(d.ROIAmount))
	}
	return sb.String()
}

func (b *AdminBot) catchupROI(ctx context.Context) string {
	result, ran := b.runner.TriggerSweep(ctx)
	if !ran {
		return "⏳ A sweep is already running."
	}
	text := fmt.Sprintf("✅ ROI Catchup Completed\n\nProcessed: %d users\nErrors: %d", result.Processed, len(result.Errors))
	if len(result.Errors) > 0 {
		text += "\n\n" + strings.Join(result.Errors, "\n")
	}
	return text
}

func (b *AdminBot) users(ctx context.Context) string {
	accounts, err := b.svc.Account.ListAccounts(ctx)
	if err != nil {
		return errorText(err)
	}
	if len(accounts) == 0 {
		return "📊 All Users\n\nNo users found."
	}
	var sb strings.Builder
	sb.WriteString("📊 All Users\n")
	for i, acc := range accounts {
		fmt.Fprintf(&sb, "\n%d. %s\n   ID: %s\n   Balance: %s\n   ROI Cycles: %d/%d\n   Can Withdraw: %s\n",
			i+1, acc.Name, acc.UserID, utils.FormatUSD(acc.CurrentBalance),
			acc.ROICyclesCompleted, acc.MaxROICycles, yesNo(acc.CanWithdrawNow()))
	}
	return sb.String()
}

func (b *AdminBot) user(ctx context.Context, args []string) string {
	if len(args) < 1 {
		return "Usage: /user <user_id>"
	}
	acc, err := b.svc.Account.GetAccount(ctx, args[0])
	if err != nil {
		return errorText(err)
	}
	records, err := b.svc.Balance.GetHistory(ctx, acc.UserID, 5)
	if err != nil {
		return errorText(err)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 %s (%s)\n", acc.Name, acc.UserID)
	if acc.Email != "" || acc.Phone != "" || acc.Country != "" {
		fmt.Fprintf(&sb, "%s %s %s\n", acc.Email, acc.Phone, acc.Country)
	}
	fmt.Fprintf(&sb, "Initial: %s\nCurrent: %s\nCycles: %d/%d\nNext ROI: %s (%s)\nCan Withdraw: %s\n",
		utils.FormatUSD(acc.InitialBalance), utils.FormatUSD(acc.CurrentBalance),
		acc.ROICyclesCompleted, acc.MaxROICycles, formatDate(acc.NextROIDate),
		utils.FormatUSD(b.svc.ROI.NextAmount(acc)), yesNo(acc.CanWithdrawNow()))
	if len(records) > 0 {
		sb.WriteString("\nRecent:\n")
		for _, rec := range records {
			fmt.Fprintf(&sb, "%s %s %s %s\n", kindEmoji(rec.Kind), rec.CreatedAt.Format("2006-01-02"), rec.Kind, utils.FormatUSD(rec.Amount))
		}
	}
	return sb.String()
}

func (b *AdminBot) deactivate(ctx context.Context, args []string) string {
	if len(args) < 1 {
		return "Usage: /deactivate <user_id>"
	}
	if err := b.svc.Account.DeactivateAccount(ctx, args[0], actor(ctx)); err != nil {
		return errorText(err)
	}
	return fmt.Sprintf("✅ Account %s deactivated", args[0])
}

func (b *AdminBot) createCode(ctx context.Context, args []string) string {
	if len(args) < 2 {
		return "Usage: /create_code <initial_balance> <name> [code]"
	}
	amount, err := parseAmount(args[0])
	if err != nil {
		return errorText(err)
	}
	req := dto.CreateAccessCodeRequest{InitialBalance: amount, Name: args[1]}
	if len(args) > 2 {
		req.Code = args[2]
	}
	code, err := b.svc.AccessCode.CreateAccessCode(ctx, req, actor(ctx))
	if err != nil {
		return errorText(err)
	}
	return fmt.Sprintf("✅ Access code created\n\nCode: %s\nName: %s\nInitial balance: %s\n\nUsers redeem it with /start %s",
		code.Code, code.Name, utils.FormatUSD(code.InitialBalance), code.Code)
}

func (b *AdminBot) codes(ctx context.Context) string {
	codes, err := b.svc.AccessCode.ListAccessCodes(ctx)
	if err != nil {
		return errorText(err)
	}
	if len(codes) == 0 {
		return "🔑 No access codes."
	}
	var sb strings.Builder
	sb.WriteString("🔑 Access Codes\n")
	for _, code := range codes {
		state := "unused"
		if code.IsUsed {
			state = "used by " + code.UsedBy
		}
		fmt.Fprintf(&sb, "\n%s  %s  %s  (%s)", code.Code, code.Name, utils.FormatUSD(code.InitialBalance), state)
	}
	return sb.String()
}

func (b *AdminBot) tickets(ctx context.Context, args []string) string {
	var status *domain.TicketStatus
	if len(args) > 0 {
		s := domain.TicketStatus(args[0])
		status = &s
	}
	tickets, err := b.svc.Support.ListTickets(ctx, status)
	if err != nil {
		return errorText(err)
	}
	stats, err := b.svc.Support.TicketStats(ctx)
	if err != nil {
		return errorText(err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🎫 Support Tickets\n\n📊 Total: %d | Open: %d | In Progress: %d | Closed: %d\n",
		stats.Total, stats.Open, stats.InProgress, stats.Closed)
	if len(tickets) == 0 {
		sb.WriteString("\nNo tickets found.")
	}
	for i, t := range tickets {
		if i == adminTicketsShown {
			break
		}
		fmt.Fprintf(&sb, "\n%s %s\nUser: %s\nDate: %s\nMessage: %s\n",
			statusEmoji(t.Status), t.TicketID, t.UserID, t.CreatedAt.Format("2006-01-02"), truncate(t.Message, 50))
	}
	return sb.String()
}

func (b *AdminBot) ticketAction(ctx context.Context, args []string, action func(context.Context, string) (*domain.SupportTicket, error)) string {
	if len(args) < 1 {
		return "Usage: /progress <ticket_id> or /close <ticket_id>"
	}
	ticket, err := action(ctx, args[0])
	if err != nil {
		return errorText(err)
	}
	return fmt.Sprintf("✅ Ticket %s is now %s", shortID(ticket.TicketID), ticket.Status)
}

func (b *AdminBot) respond(ctx context.Context, args []string) string {
	if len(args) < 2 {
		return "Usage: /respond <ticket_id> <message>"
	}
	ticket, err := b.svc.Support.Respond(ctx, dto.RespondTicketRequest{
		TicketID: args[0],
		AdminID:  actor(ctx),
		Response: strings.Join(args[1:], " "),
	})
	if err != nil {
		return errorText(err)
	}
	b.notifyUser(ctx, ticket)
	return fmt.Sprintf("✅ Responded to ticket %s and closed it", shortID(ticket.TicketID))
}

// notifyUser forwards a ticket response to the user through the user bot.
func (b *AdminBot) notifyUser(ctx context.Context, ticket *domain.SupportTicket) {
	if b.notify == nil {
		return
	}
	chatID, err := strconv.ParseInt(ticket.UserID, 10, 64)
	if err != nil {
		return
	}
	send(ctx, b.notify, chatID, fmt.Sprintf("🎫 Support replied to ticket %s:\n\n%s",
		shortID(ticket.TicketID), ticket.AdminResponse), nil)
}

func (b *AdminBot) settings() string {
	policy := b.svc.ROI.Policy()
	return fmt.Sprintf("⚙️ Settings\n\n"+
		"• ROI Percentage: %s%%\n"+
		"• Required Cycles: %d\n"+
		"• ROI Interval: %s\n"+
		"• Sweep Interval: %s\n"+
		"• Withdrawal Enabled: after %d cycles\n\n"+
		"Settings are configured in the environment.",
		policy.Percentage.String(), policy.MaxCycles, policy.Interval, b.cfg.SweepInterval, policy.MaxCycles)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
