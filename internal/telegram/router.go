package telegram

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ShishMikhail/MoyGrafik-bot/internal/store"
)

// Pending state keys used in conversational flows.
const (
	pendingVacationStart = "await_vacation_start"
	pendingVacationEnd   = "await_vacation_end"
	pendingArrivalTime   = "await_arrival_time"
	pendingDepartureTime = "await_departure_time"
)

// Router wires Telegram updates to handlers and holds minimal in-memory
// conversation state.
type Router struct {
	bot  *tgbotapi.BotAPI
	log  *zap.Logger
	repo store.Repo

	mu    sync.RWMutex
	state map[int64]string // chatID -> pending state
	draft map[int64]string // chatID -> stashed input (vacation start date)
}

// NewRouter creates a new Telegram router.
func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, repo store.Repo) *Router {
	return &Router{
		bot:   bot,
		log:   log,
		repo:  repo,
		state: make(map[int64]string),
		draft: make(map[int64]string),
	}
}

// setPending sets a pending state for a chat (non-persistent, in-memory).
func (r *Router) setPending(chatID int64, s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state[chatID] = s
}

// getPending returns current pending state for a chat.
func (r *Router) getPending(chatID int64) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state[chatID]
}

// clearPending clears pending state and any stashed draft for a chat.
func (r *Router) clearPending(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.state, chatID)
	delete(r.draft, chatID)
}

func (r *Router) setDraft(chatID int64, v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draft[chatID] = v
}

func (r *Router) getDraft(chatID int64) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.draft[chatID]
}

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		msg := upd.Message
		chatID := msg.Chat.ID
		text := strings.TrimSpace(msg.Text)

		switch {
		case strings.HasPrefix(text, "/start"):
			r.clearPending(chatID)
			r.handleStart(ctx, chatID)
		case strings.HasPrefix(text, "/menu"):
			r.clearPending(chatID)
			r.handleMenu(ctx, chatID)
		case strings.HasPrefix(text, "/status"):
			r.handleStatus(ctx, chatID)
		case strings.HasPrefix(text, "/register"):
			r.handleRegister(ctx, chatID, msg.From)
		default:
			// Free-form text feeds whatever flow is pending.
			r.handleFreeForm(ctx, chatID, text)
		}
		return
	}

	if upd.CallbackQuery != nil {
		cb := upd.CallbackQuery
		data := cb.Data
		chatID := cb.Message.Chat.ID
		_ = r.answerCallback(cb.ID)

		switch {
		case data == "toggle_subscription":
			r.handleToggleSubscription(ctx, chatID)
		case data == "set_vacation":
			r.sendText(chatID, askVacationStartText)
			r.setPending(chatID, pendingVacationStart)
		case data == "remove_vacation":
			r.handleRemoveVacation(ctx, chatID)
		case data == "add_arrival_time":
			r.askAddTime(ctx, chatID, true)
		case data == "remove_arrival_time":
			r.askRemoveTime(ctx, chatID, true)
		case strings.HasPrefix(data, "remove_arrival_time:"):
			r.handleRemoveTime(ctx, chatID, strings.TrimPrefix(data, "remove_arrival_time:"), true)
		case data == "add_departure_time":
			r.askAddTime(ctx, chatID, false)
		case data == "remove_departure_time":
			r.askRemoveTime(ctx, chatID, false)
		case strings.HasPrefix(data, "remove_departure_time:"):
			r.handleRemoveTime(ctx, chatID, strings.TrimPrefix(data, "remove_departure_time:"), false)
		case data == "attendance_today":
			r.handleAttendanceToday(ctx, chatID)
		case data == "attendance_10_days":
			r.handleAttendanceHistory(ctx, chatID)
		default:
			// Unknown callback — ignore silently
		}
		return
	}
}

// SendMessage sends a plain text message to the given chat.
// This makes Router satisfy scheduler.Sender.
func (r *Router) SendMessage(chatID int64, text string) error {
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (r *Router) sendText(chatID int64, text string) {
	_, _ = r.bot.Send(tgbotapi.NewMessage(chatID, text))
}

func (r *Router) answerCallback(id string) error {
	_, err := r.bot.Request(tgbotapi.NewCallback(id, ""))
	return err
}
