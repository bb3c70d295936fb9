package telegram

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ShishMikhail/MoyGrafik-bot/internal/domain"
)

// UI texts in English
const (
	notRegisteredText = "👋 Hi! I help you keep track of your work schedule.\n\n" +
		"❌ Looks like you are not registered yet.\n" +
		"Use /register to get started! 📝"

	registeredText = "🎉 Registration complete!\n" +
		"Now you can use:\n" +
		"/start — open the menu\n" +
		"/menu — view your settings\n" +
		"/status — check your current status"

	alreadyRegisteredText = "✅ You are already registered! Use /start to open the menu."

	genericErrorText = "❌ Something went wrong. Try again or contact the administrator."

	askVacationStartText = "📅 Enter the vacation start date as DD-MM-YYYY (e.g. 01-01-2025):"
	askVacationEndText   = "📅 Enter the vacation end date as DD-MM-YYYY (e.g. 01-01-2025):"
	askArrivalTimeText   = "⏰ Enter a check-in reminder time as HH:MM or H:MM (e.g. 09:00 or 9:00):"
	askDepartureTimeText = "🚪 Enter a check-out reminder time as HH:MM or H:MM (e.g. 17:00 or 9:00):"

	unspecifiedText = "not set"
)

// menuText renders the settings summary shown above the main menu.
func menuText(s *domain.Settings) string {
	subscription := "subscribed ✅"
	if !s.Subscribed {
		subscription = "not subscribed 🚫"
	}

	vacation := "not set 📅"
	if s.VacationStart != nil && s.VacationEnd != nil {
		vacation = domain.DayString(*s.VacationStart) + " — " + domain.DayString(*s.VacationEnd)
	}

	arrival := "not set ⏰"
	if len(s.ArrivalTimes) > 0 {
		arrival = strings.Join(s.ArrivalTimes, ", ")
	}
	departure := "not set 🚪"
	if len(s.DepartureTimes) > 0 {
		departure = strings.Join(s.DepartureTimes, ", ")
	}

	return "📋 Your current settings:\n" +
		"📩 Reminder subscription: " + subscription + "\n" +
		"🏖️ Vacation period: " + vacation + "\n" +
		"⏰ Check-in reminder times: " + arrival + "\n" +
		"🚪 Check-out reminder times: " + departure + "\n\n" +
		"Pick an action: 👇"
}

// mainMenuKeyboard builds the inline keyboard for the settings menu.
func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📩 Toggle subscription", "toggle_subscription"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏖️ Set vacation", "set_vacation"),
			tgbotapi.NewInlineKeyboardButtonData("🗑️ Remove vacation", "remove_vacation"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏰ Add check-in time", "add_arrival_time"),
			tgbotapi.NewInlineKeyboardButtonData("🗑️ Remove check-in time", "remove_arrival_time"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚪 Add check-out time", "add_departure_time"),
			tgbotapi.NewInlineKeyboardButtonData("🗑️ Remove check-out time", "remove_departure_time"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Attendance today", "attendance_today"),
			tgbotapi.NewInlineKeyboardButtonData("📊 Last 10 days", "attendance_10_days"),
		),
	)
}

// removeTimesKeyboard lists configured times as buttons; callbackPrefix is
// "remove_arrival_time:" or "remove_departure_time:".
func removeTimesKeyboard(callbackPrefix string, times []string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(times))
	for _, t := range times {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t+" 🗑️", callbackPrefix+t),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// stampClock renders a presence timestamp as HH:MM, or a placeholder when
// none is on record.
func stampClock(t *time.Time) string {
	if t == nil {
		return unspecifiedText
	}
	return t.Format("15:04")
}

// attendanceTodayText renders today's presence record.
func attendanceTodayText(day string, rec domain.AttendanceRecord) string {
	night := "no"
	if rec.NightShift {
		night = "yes"
	}
	return fmt.Sprintf(
		"📅 Attendance for today (%s)\n⏰ Check-in: %s\n🏁 Check-out: %s\n🌙 Night shift: %s",
		day, stampClock(rec.CheckIn), stampClock(rec.CheckOut), night,
	)
}

// attendanceHistoryText renders the trailing-window presence records.
func attendanceHistoryText(records []domain.DayAttendance) string {
	var b strings.Builder
	b.WriteString("📊 Attendance for the last 10 days\n")
	for _, r := range records {
		fmt.Fprintf(&b, "🌟 %s\n   ⏰ Check-in: %s\n   🏁 Check-out: %s\n",
			r.Date, stampClock(r.Record.CheckIn), stampClock(r.Record.CheckOut))
	}
	return b.String()
}
