package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/chat"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/lesson"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/tutors"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/state"
	"github.com/Freeeeeet/tutoring_bot/internal/lessons"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/service"
)

// HandleTextMessage обрабатывает текст в зависимости от состояния диалога
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	if update.Message.Document != nil {
		h.HandleDocument(ctx, b, update)
		return
	}
	msg := update.Message
	if msg.Text == "" || strings.HasPrefix(msg.Text, "/") {
		h.sendMessage(ctx, b, msg.Chat.ID, "❓ Неизвестная команда. Список команд: /help")
		return
	}

	telegramID := msg.From.ID
	current := h.stateManager.GetState(telegramID)

	h.logger.Debug("Text message",
		zap.Int64("telegram_id", telegramID),
		zap.String("state", string(current)))

	switch current {
	case state.StateLoginUsername:
		h.handleLoginUsername(ctx, b, msg)
	case state.StateLoginPassword:
		h.handleLoginPassword(ctx, b, msg)

	case state.StateRegisterUsername:
		h.handleRegisterStep(ctx, b, msg, state.KeyUsername, state.StateRegisterEmail, "📧 Email:")
	case state.StateRegisterEmail:
		h.handleRegisterStep(ctx, b, msg, state.KeyEmail, state.StateRegisterFirstName, "👤 Имя:")
	case state.StateRegisterFirstName:
		h.handleRegisterStep(ctx, b, msg, state.KeyFirstName, state.StateRegisterLastName, "👤 Фамилия:")
	case state.StateRegisterLastName:
		h.handleRegisterStep(ctx, b, msg, state.KeyLastName, state.StateRegisterPassword, "🔑 Пароль (от 8 символов):")
	case state.StateRegisterPassword:
		h.handleRegisterPassword(ctx, b, msg)
	case state.StateRegisterRole:
		h.sendScreen(ctx, b, msg.Chat.ID, "Выберите роль кнопкой:", common.RoleKeyboard())

	case state.StateBookingDate:
		h.handleBookingDate(ctx, b, msg)
	case state.StateBookingTime:
		h.handleBookingTime(ctx, b, msg)
	case state.StateBookingPrice:
		h.handleBookingPrice(ctx, b, msg)
	case state.StateBookingDescription:
		h.handleBookingDescription(ctx, b, msg)
	case state.StateBookingConfirm:
		h.sendMessage(ctx, b, msg.Chat.ID, "Подтвердите или отмените бронирование кнопками выше. Отмена: /cancel")

	case state.StateLessonUpdate:
		h.handleLessonUpdate(ctx, b, msg)
	case state.StateFeedbackText:
		h.handleFeedbackText(ctx, b, msg)
	case state.StateDocumentUpload:
		h.sendMessage(ctx, b, msg.Chat.ID, "📎 Отправьте файл документом. Отмена: /cancel")

	case state.StateProfileField:
		h.handleProfileField(ctx, b, msg)
	case state.StateAddChild:
		h.handleAddChild(ctx, b, msg)

	case state.StateChat:
		h.handleChatMessage(ctx, b, msg)

	default:
		h.sendMessage(ctx, b, msg.Chat.ID, "Не понимаю. Главный экран: /dashboard, все команды: /help")
	}
}

// ===== Вход =====

func (h *Handlers) handleLoginUsername(ctx context.Context, b *bot.Bot, msg *models.Message) {
	h.stateManager.SetData(msg.From.ID, state.KeyUsername, strings.TrimSpace(msg.Text))
	h.stateManager.SetState(msg.From.ID, state.StateLoginPassword)
	h.sendMessage(ctx, b, msg.Chat.ID, "🔑 Пароль:")
}

func (h *Handlers) handleLoginPassword(ctx context.Context, b *bot.Bot, msg *models.Message) {
	telegramID := msg.From.ID
	// пароль не остаётся в истории чата
	h.deleteMessage(ctx, b, msg)

	form := service.LoginForm{
		Username: common.String(h.states, telegramID, state.KeyUsername),
		Password: msg.Text,
	}
	h.stateManager.ClearState(telegramID)

	user, err := h.userService.Login(ctx, telegramID, msg.Chat.ID, form)
	if err != nil {
		h.logger.Warn("Login failed", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, msg.Chat.ID, loginError(err)+"\n\nПопробовать снова: /login")
		return
	}

	sess, err := h.guard.Check(ctx, telegramID)
	if err != nil {
		h.replyError(ctx, b, msg.Chat.ID, err, "check session after login")
		return
	}
	h.showDashboard(ctx, b, msg.Chat.ID, sess, user)
}

// loginError неверные учётные данные сервер возвращает как 401
func loginError(err error) string {
	if common.IsLoginRequired(err) {
		return "❌ Неверное имя пользователя или пароль"
	}
	return common.ErrorMessage(err)
}

// ===== Регистрация =====

func (h *Handlers) handleRegisterStep(ctx context.Context, b *bot.Bot, msg *models.Message, key string, next state.UserState, prompt string) {
	h.stateManager.SetData(msg.From.ID, key, strings.TrimSpace(msg.Text))
	h.stateManager.SetState(msg.From.ID, next)
	h.sendMessage(ctx, b, msg.Chat.ID, prompt)
}

func (h *Handlers) handleRegisterPassword(ctx context.Context, b *bot.Bot, msg *models.Message) {
	h.deleteMessage(ctx, b, msg)
	h.stateManager.SetData(msg.From.ID, state.KeyPassword, msg.Text)
	h.stateManager.SetState(msg.From.ID, state.StateRegisterRole)
	h.sendScreen(ctx, b, msg.Chat.ID, "🎭 Кем вы будете на платформе?", common.RoleKeyboard())
}

// ===== Бронирование =====

func (h *Handlers) bookingDraft(ctx context.Context, b *bot.Bot, msg *models.Message) (*common.BookingDraft, bool) {
	draft, err := common.Booking(h.states, msg.From.ID)
	if err != nil {
		h.stateManager.ClearDialog(msg.From.ID)
		h.replyError(ctx, b, msg.Chat.ID, err, "load booking")
		return nil, false
	}
	return draft, true
}

func (h *Handlers) handleBookingDate(ctx context.Context, b *bot.Bot, msg *models.Message) {
	draft, ok := h.bookingDraft(ctx, b, msg)
	if !ok {
		return
	}
	date, err := ParseDate(msg.Text)
	if err != nil {
		h.sendError(ctx, b, msg.Chat.ID, "❌ Неверная дата.\n\n"+tutors.DatePrompt)
		return
	}
	draft.Form.Date = date
	h.stateManager.SetState(msg.From.ID, state.StateBookingTime)
	h.sendMessage(ctx, b, msg.Chat.ID, "🕒 Время урока, например <code>10:00-11:30</code>:")
}

func (h *Handlers) handleBookingTime(ctx context.Context, b *bot.Bot, msg *models.Message) {
	draft, ok := h.bookingDraft(ctx, b, msg)
	if !ok {
		return
	}
	from, to, err := ParseTimeRange(msg.Text)
	if err != nil {
		h.sendError(ctx, b, msg.Chat.ID, "❌ Нужен интервал вида <code>10:00-11:30</code>, конец позже начала.")
		return
	}
	draft.Form.StartTime, draft.Form.EndTime = from, to
	h.stateManager.SetState(msg.From.ID, state.StateBookingPrice)
	h.sendMessage(ctx, b, msg.Chat.ID, fmt.Sprintf("💰 Цена за час. Репетитор указал %s:",
		formatting.PriceRange(draft.Subject.PriceMin, draft.Subject.PriceMax)))
}

func (h *Handlers) handleBookingPrice(ctx context.Context, b *bot.Bot, msg *models.Message) {
	draft, ok := h.bookingDraft(ctx, b, msg)
	if !ok {
		return
	}
	price, err := ParsePrice(msg.Text)
	if err != nil {
		h.sendError(ctx, b, msg.Chat.ID, "❌ Цена должна быть положительным числом, например <code>80</code>.")
		return
	}
	draft.Form.PricePerHour = price
	h.stateManager.SetState(msg.From.ID, state.StateBookingDescription)
	h.sendMessage(ctx, b, msg.Chat.ID, "📝 Что хотите разобрать на уроке? Отправьте <code>-</code>, чтобы пропустить.")
}

func (h *Handlers) handleBookingDescription(ctx context.Context, b *bot.Bot, msg *models.Message) {
	draft, ok := h.bookingDraft(ctx, b, msg)
	if !ok {
		return
	}
	description := strings.TrimSpace(msg.Text)
	if description == "-" {
		description = ""
	}
	draft.Form.Description = description
	h.stateManager.SetState(msg.From.ID, state.StateBookingConfirm)

	text, kb := common.BuildBookingScreen(draft.Tutor, draft.Subject, draft.Form)
	h.sendScreen(ctx, b, msg.Chat.ID, text, kb)
}

// ===== Уроки =====

func (h *Handlers) handleLessonUpdate(ctx context.Context, b *bot.Bot, msg *models.Message) {
	sess, user, ok := h.requireSession(ctx, b, msg)
	if !ok {
		return
	}
	lessonID, err := common.LessonID(h.states, sess.TelegramID)
	if err != nil {
		h.stateManager.ClearDialog(sess.TelegramID)
		h.replyError(ctx, b, msg.Chat.ID, err, "update lesson")
		return
	}
	l, err := h.lessonService.Get(ctx, sess, lessonID)
	if err != nil {
		h.replyError(ctx, b, msg.Chat.ID, err, "get lesson")
		return
	}

	form, err := ParseLessonUpdate(msg.Text, l, h.lessonService.Location())
	if err != nil {
		h.sendError(ctx, b, msg.Chat.ID, "❌ Не получилось разобрать. Формат:\n"+lesson.UpdateFormatHelp)
		return
	}

	var prices []model.SubjectPrice
	if p, ok := user.Tutor(); ok {
		prices = p.SubjectPrices
	}
	updated, err := h.lessonService.Update(ctx, sess, user, l, prices, form)
	if err != nil {
		h.replyError(ctx, b, msg.Chat.ID, err, "update lesson")
		return
	}
	h.stateManager.ClearDialog(sess.TelegramID)

	text := "✅ Урок изменён, ждём подтверждения второй стороны\n\n" +
		formatting.FormatLessonInfo(updated, user.Role(), h.lessonService.Location(), h.now())
	h.sendScreen(ctx, b, msg.Chat.ID, text, lessonButton(updated))
}

func (h *Handlers) handleFeedbackText(ctx context.Context, b *bot.Bot, msg *models.Message) {
	telegramID := msg.From.ID
	lessonID, err := common.LessonID(h.states, telegramID)
	if err != nil {
		h.stateManager.ClearDialog(telegramID)
		h.replyError(ctx, b, msg.Chat.ID, err, "feedback")
		return
	}
	text := strings.TrimSpace(msg.Text)
	if len([]rune(text)) > 2000 {
		h.sendError(ctx, b, msg.Chat.ID, "❌ "+common.FieldMessage(service.FieldError{Field: "feedback", Rule: "max", Param: "2000"}))
		return
	}

	h.stateManager.SetData(telegramID, state.KeyFeedback, text)
	h.stateManager.ClearDialog(telegramID)

	kb := keyboard.NewBuilder().
		Row(keyboard.RatingButtons(common.RateLesson, lessonID)...).
		Build()
	h.sendScreen(ctx, b, msg.Chat.ID, "⭐ Оцените урок от 0 до 5:", kb)
}

func lessonButton(l *model.Lesson) *models.InlineKeyboardMarkup {
	return lessonButtonByID(l.ID)
}

func lessonButtonByID(id int64) *models.InlineKeyboardMarkup {
	return keyboard.NewBuilder().
		Row(keyboard.Button("📋 Открыть урок", fmt.Sprintf("%s%d:%s", common.ViewLesson, id, lessons.TabPending))).
		AddBackToMainButton().
		Build()
}

// ===== Профиль =====

func (h *Handlers) handleProfileField(ctx context.Context, b *bot.Bot, msg *models.Message) {
	sess, user, ok := h.requireSession(ctx, b, msg)
	if !ok {
		return
	}
	field := common.String(h.states, sess.TelegramID, state.KeyField)
	value := strings.TrimSpace(msg.Text)

	var err error
	switch p := user.Profile.(type) {
	case *model.StudentProfile:
		err = h.updateStudentField(ctx, sess, user, p, field, value)
	case *model.TutorProfile:
		err = h.updateTutorField(ctx, sess, user, p, field, value)
	default:
		err = service.ErrWrongRole
	}

	var parseErr *inputError
	if errors.As(err, &parseErr) {
		h.sendError(ctx, b, msg.Chat.ID, parseErr.message)
		return
	}
	if err != nil {
		h.replyError(ctx, b, msg.Chat.ID, err, "update profile")
		return
	}

	h.stateManager.ClearDialog(sess.TelegramID)
	h.stateManager.DeleteData(sess.TelegramID, state.KeyField)
	text, kb := common.BuildProfileScreen(user)
	h.sendScreen(ctx, b, msg.Chat.ID, "✅ Сохранено\n\n"+text, kb)
}

// inputError ввод не разобран, пользователь остаётся в диалоге
type inputError struct {
	message string
}

func (e *inputError) Error() string { return e.message }

func (h *Handlers) updateStudentField(ctx context.Context, sess *model.Session, user *model.User, p *model.StudentProfile, field, value string) error {
	form := service.StudentProfileForm{
		Bio:              p.Bio,
		TasksDescription: p.TasksDescription,
		Goal:             p.Goal,
		EducationLevel:   p.EducationLevel,
		AvailableHours:   p.AvailableHours,
	}
	switch field {
	case common.ProfileFieldBio:
		form.Bio = value
	case common.ProfileFieldTasks:
		form.TasksDescription = value
	case common.ProfileFieldGoal:
		form.Goal = value
	case common.ProfileFieldEducation:
		form.EducationLevel = value
	case common.ProfileFieldHours:
		hours, err := ParseHours(value)
		if err != nil {
			return &inputError{"❌ Формат часов: <code>Monday 10:00-12:00; Wednesday 16:00-18:00</code>"}
		}
		form.AvailableHours = hours
	default:
		return common.ErrDialogExpired
	}
	return h.userService.UpdateStudentProfile(ctx, sess, user, form)
}

func (h *Handlers) updateTutorField(ctx context.Context, sess *model.Session, user *model.User, p *model.TutorProfile, field, value string) error {
	form := service.TutorProfileForm{Bio: p.Bio}
	switch field {
	case common.ProfileFieldBio:
		form.Bio = value
	case common.ProfileFieldHours:
		hours, err := ParseHours(value)
		if err != nil {
			return &inputError{"❌ Формат часов: <code>Monday 10:00-12:00; Wednesday 16:00-18:00</code>"}
		}
		form.AvailableHours = hours
	case common.ProfileFieldSubjects:
		ids, err := ParseSubjectIDs(value)
		if err != nil {
			return &inputError{"❌ Укажите номера предметов через запятую, например <code>1, 4</code>"}
		}
		form.SubjectIDs = ids
	default:
		return common.ErrDialogExpired
	}
	return h.userService.UpdateTutorProfile(ctx, sess, user, form)
}

func (h *Handlers) handleAddChild(ctx context.Context, b *bot.Bot, msg *models.Message) {
	sess, user, ok := h.requireSession(ctx, b, msg)
	if !ok {
		return
	}
	if err := h.userService.AddChild(ctx, sess, user, service.ChildForm{Email: msg.Text}); err != nil {
		h.replyError(ctx, b, msg.Chat.ID, err, "add child")
		return
	}
	h.stateManager.ClearDialog(sess.TelegramID)
	text, kb := common.BuildProfileScreen(user)
	h.sendScreen(ctx, b, msg.Chat.ID, "✅ Ребёнок добавлен\n\n"+text, kb)
}

// ===== Чат =====

func (h *Handlers) handleChatMessage(ctx context.Context, b *bot.Bot, msg *models.Message) {
	err := h.chatService.Send(msg.From.ID, msg.Text)
	if errors.Is(err, chat.ErrNoStream) {
		// поток закрыт (например, после перезапуска): выходим из режима чата
		h.stateManager.ClearDialog(msg.From.ID)
	}
	if err != nil {
		h.replyError(ctx, b, msg.Chat.ID, err, "send chat message")
		return
	}
	h.logger.Debug("Chat message sent",
		zap.Int64("telegram_id", msg.From.ID),
		zap.String("recipient", h.chatService.Recipient(msg.From.ID)))
}
