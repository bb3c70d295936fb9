package telegram

import (
	"context"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ShishMikhail/MoyGrafik-bot/internal/domain"
	"github.com/ShishMikhail/MoyGrafik-bot/internal/store"
)

// sendMenu fetches fresh settings and shows the main menu.
func (r *Router) sendMenu(ctx context.Context, chatID int64, header string) {
	s, err := r.repo.GetSettings(ctx, chatID)
	if err != nil {
		r.log.Error("get settings failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, genericErrorText)
		return
	}
	body := menuText(s)
	if header != "" {
		body = header + "\n\n" + body
	}
	msg := tgbotapi.NewMessage(chatID, body)
	msg.ReplyMarkup = mainMenuKeyboard()
	_, _ = r.bot.Send(msg)
}

// --- Commands ---

func (r *Router) handleStart(ctx context.Context, chatID int64) {
	emp, err := r.repo.GetEmployee(ctx, chatID)
	if errors.Is(err, store.ErrNotFound) {
		r.sendText(chatID, notRegisteredText)
		return
	}
	if err != nil {
		r.log.Error("get employee failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, genericErrorText)
		return
	}
	r.sendMenu(ctx, chatID, greetingFor(emp))
}

func greetingFor(emp *domain.Employee) string {
	name := emp.FirstName
	if emp.LastName != "" {
		name += " " + emp.LastName
	}
	return "👋 Hi, " + name + "! I help you keep track of your work schedule."
}

func (r *Router) handleMenu(ctx context.Context, chatID int64) {
	if _, err := r.repo.GetEmployee(ctx, chatID); errors.Is(err, store.ErrNotFound) {
		r.sendText(chatID, notRegisteredText)
		return
	}
	r.sendMenu(ctx, chatID, "")
}

func (r *Router) handleStatus(ctx context.Context, chatID int64) {
	s, err := r.repo.GetSettings(ctx, chatID)
	if errors.Is(err, store.ErrNotFound) {
		r.sendText(chatID, notRegisteredText)
		return
	}
	if err != nil {
		r.log.Error("get settings failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, genericErrorText)
		return
	}
	r.sendText(chatID, menuText(s))
}

func (r *Router) handleRegister(ctx context.Context, chatID int64, from *tgbotapi.User) {
	firstName, lastName := "", ""
	if from != nil {
		firstName, lastName = from.FirstName, from.LastName
	}
	created, err := r.repo.RegisterUser(ctx, chatID, firstName, lastName)
	if err != nil {
		r.log.Error("register failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, genericErrorText)
		return
	}
	if !created {
		r.sendText(chatID, alreadyRegisteredText)
		return
	}
	r.log.Info("user registered", zap.Int64("chatID", chatID))
	r.sendText(chatID, registeredText)
}

// --- Subscription ---

func (r *Router) handleToggleSubscription(ctx context.Context, chatID int64) {
	s, err := r.repo.GetSettings(ctx, chatID)
	if err != nil {
		r.log.Error("get settings failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, genericErrorText)
		return
	}
	subscribed := !s.Subscribed
	if err := r.repo.UpdateSettings(ctx, chatID, domain.SettingsPatch{Subscribed: &subscribed}); err != nil {
		r.log.Error("toggle subscription failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, "❌ Could not update the subscription. Try again.")
		return
	}
	status := "subscribed ✅"
	if !subscribed {
		status = "unsubscribed 🚫"
	}
	r.sendMenu(ctx, chatID, "📩 Reminder subscription: "+status)
}

// --- Vacation ---

func (r *Router) handleRemoveVacation(ctx context.Context, chatID int64) {
	s, err := r.repo.GetSettings(ctx, chatID)
	if err != nil {
		r.log.Error("get settings failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, genericErrorText)
		return
	}
	if s.VacationStart == nil && s.VacationEnd == nil {
		r.sendText(chatID, "🏖️ You have no vacation period set! 😕")
		return
	}
	if err := r.repo.UpdateSettings(ctx, chatID, domain.SettingsPatch{SetVacation: true}); err != nil {
		r.log.Error("remove vacation failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, "❌ Could not remove the vacation period. Try again.")
		return
	}
	r.sendMenu(ctx, chatID, "🏖️ Vacation period removed! ✅")
}

// --- Reminder times ---

func (r *Router) askAddTime(ctx context.Context, chatID int64, arrival bool) {
	s, err := r.repo.GetSettings(ctx, chatID)
	if err != nil {
		r.log.Error("get settings failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, genericErrorText)
		return
	}
	times, prompt, pending := s.ArrivalTimes, askArrivalTimeText, pendingArrivalTime
	if !arrival {
		times, prompt, pending = s.DepartureTimes, askDepartureTimeText, pendingDepartureTime
	}
	if len(times) >= domain.MaxReminderTimes {
		r.sendText(chatID, "⏰ Reminder time limit reached (10). Remove one of the existing times first! 🗑️")
		return
	}
	r.sendText(chatID, prompt)
	r.setPending(chatID, pending)
}

func (r *Router) askRemoveTime(ctx context.Context, chatID int64, arrival bool) {
	s, err := r.repo.GetSettings(ctx, chatID)
	if err != nil {
		r.log.Error("get settings failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, genericErrorText)
		return
	}
	times, prefix, label := s.ArrivalTimes, "remove_arrival_time:", "check-in"
	if !arrival {
		times, prefix, label = s.DepartureTimes, "remove_departure_time:", "check-out"
	}
	if len(times) == 0 {
		r.sendText(chatID, "⏰ You have no "+label+" reminder times set! 😕")
		return
	}
	msg := tgbotapi.NewMessage(chatID, "⏰ Pick a "+label+" reminder time to remove: 👇")
	msg.ReplyMarkup = removeTimesKeyboard(prefix, times)
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleRemoveTime(ctx context.Context, chatID int64, value string, arrival bool) {
	s, err := r.repo.GetSettings(ctx, chatID)
	if err != nil {
		r.log.Error("get settings failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, genericErrorText)
		return
	}

	var patch domain.SettingsPatch
	var removed bool
	if arrival {
		var list []string
		list, removed = domain.RemoveReminderTime(s.ArrivalTimes, value)
		patch.ArrivalTimes = &list
	} else {
		var list []string
		list, removed = domain.RemoveReminderTime(s.DepartureTimes, value)
		patch.DepartureTimes = &list
	}
	if !removed {
		// Stale button from an old menu; nothing to do.
		return
	}
	if err := r.repo.UpdateSettings(ctx, chatID, patch); err != nil {
		r.log.Error("remove reminder time failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, "❌ Could not remove the reminder time. Try again.")
		return
	}
	r.sendMenu(ctx, chatID, "⏰ Reminder time "+value+" removed! ✅")
}

// --- Attendance views ---

func (r *Router) handleAttendanceToday(ctx context.Context, chatID int64) {
	s, err := r.repo.GetSettings(ctx, chatID)
	if err != nil {
		r.log.Error("get settings failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, genericErrorText)
		return
	}
	today := domain.DayString(time.Now())
	rec, err := r.repo.Attendance(ctx, s.EmployeeID, today)
	if err != nil {
		r.log.Error("attendance fetch failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, genericErrorText)
		return
	}
	r.sendText(chatID, attendanceTodayText(today, rec))
}

func (r *Router) handleAttendanceHistory(ctx context.Context, chatID int64) {
	s, err := r.repo.GetSettings(ctx, chatID)
	if err != nil {
		r.log.Error("get settings failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, genericErrorText)
		return
	}
	today := domain.DayString(time.Now())
	records, err := r.repo.AttendanceLastDays(ctx, s.EmployeeID, today, 10)
	if err != nil {
		r.log.Error("attendance history fetch failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, genericErrorText)
		return
	}
	if len(records) == 0 {
		r.sendText(chatID, "📊 No attendance data for the last 10 days! 😕")
		return
	}
	r.sendText(chatID, attendanceHistoryText(records))
}

// --- Free-form dispatcher (conversational inputs) ---

func (r *Router) handleFreeForm(ctx context.Context, chatID int64, text string) {
	switch r.getPending(chatID) {
	case pendingVacationStart:
		start, err := domain.ParseUserDate(text)
		if err != nil {
			r.sendText(chatID, "❌ Invalid date format. Try again (DD-MM-YYYY, e.g. 01-01-2025):")
			return
		}
		if domain.DateOnly(start).Before(domain.DateOnly(time.Now())) {
			r.sendText(chatID, "❌ The vacation start date cannot be in the past. Try again (DD-MM-YYYY):")
			return
		}
		r.setDraft(chatID, domain.DayString(start))
		r.setPending(chatID, pendingVacationEnd)
		r.sendText(chatID, askVacationEndText)

	case pendingVacationEnd:
		end, err := domain.ParseUserDate(text)
		if err != nil {
			r.sendText(chatID, "❌ Invalid date format. Try again (DD-MM-YYYY, e.g. 01-01-2025):")
			return
		}
		startStr := r.getDraft(chatID)
		start, err := time.ParseInLocation(domain.DayLayout, startStr, time.Local)
		if err != nil {
			r.clearPending(chatID)
			r.sendText(chatID, "❌ Something went wrong. Start over with 'Set vacation'. 😕")
			return
		}
		if !domain.DateOnly(end).After(domain.DateOnly(start)) {
			r.sendText(chatID, "❌ The vacation end date must be after the start date. Try again (DD-MM-YYYY):")
			return
		}
		r.clearPending(chatID)
		if err := r.repo.UpdateSettings(ctx, chatID, domain.SettingsPatch{
			SetVacation:   true,
			VacationStart: &start,
			VacationEnd:   &end,
		}); err != nil {
			r.log.Error("set vacation failed", zap.Error(err), zap.Int64("chatID", chatID))
			r.sendText(chatID, "❌ Could not set the vacation period. Try again.")
			return
		}
		r.sendMenu(ctx, chatID, "🏖️ Vacation period "+domain.DayString(start)+" — "+domain.DayString(end)+" set! ✅")

	case pendingArrivalTime:
		r.addReminderTime(ctx, chatID, text, true)

	case pendingDepartureTime:
		r.addReminderTime(ctx, chatID, text, false)

	default:
		// No pending flow: ignore free-form message
	}
}

func (r *Router) addReminderTime(ctx context.Context, chatID int64, text string, arrival bool) {
	value, err := domain.NormalizeClock(text)
	if err != nil {
		r.sendText(chatID, "❌ Invalid time format. Try again (HH:MM or H:MM, e.g. 09:00 or 9:00):")
		return
	}
	r.clearPending(chatID)

	s, err := r.repo.GetSettings(ctx, chatID)
	if err != nil {
		r.log.Error("get settings failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, genericErrorText)
		return
	}

	list := s.ArrivalTimes
	if !arrival {
		list = s.DepartureTimes
	}
	list, err = domain.AddReminderTime(list, value)
	switch {
	case errors.Is(err, domain.ErrDuplicateTime):
		r.sendText(chatID, "⏰ Reminder time "+value+" is already added! 😕")
		return
	case errors.Is(err, domain.ErrTooManyTimes):
		r.sendText(chatID, "⏰ Reminder time limit reached (10). Remove one of the existing times first! 🗑️")
		return
	case err != nil:
		r.sendText(chatID, genericErrorText)
		return
	}

	var patch domain.SettingsPatch
	if arrival {
		patch.ArrivalTimes = &list
	} else {
		patch.DepartureTimes = &list
	}
	if err := r.repo.UpdateSettings(ctx, chatID, patch); err != nil {
		r.log.Error("add reminder time failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, "❌ Could not add the reminder time. Try again.")
		return
	}
	r.sendMenu(ctx, chatID, "⏰ Reminder time "+value+" added! ✅")
}
