package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/lesson"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/state"
	"github.com/Freeeeeet/tutoring_bot/internal/lessons"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

const helpText = "📖 <b>Команды</b>\n\n" +
	"/login - войти\n" +
	"/register - зарегистрироваться\n" +
	"/dashboard - главный экран\n" +
	"/lessons - мои уроки\n" +
	"/week - уроки на неделе картинкой\n" +
	"/tutors - найти репетитора, например " + common.TutorFilterHelp + "\n" +
	"/book - записаться на урок\n" +
	"/chat - переписка, <code>/chat имя</code> - написать собеседнику\n" +
	"/payments - платежи\n" +
	"/profile - профиль\n" +
	"/cancel - отменить текущее действие\n" +
	"/logout - выйти"

// HandleStart приветствие; с действующей сессией сразу главный экран
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	msg := update.Message

	if sess, err := h.guard.Check(ctx, msg.From.ID); err == nil {
		if user, err := h.userService.Current(ctx, sess); err == nil {
			h.showDashboard(ctx, b, msg.Chat.ID, sess, user)
			return
		}
	}

	h.sendMessage(ctx, b, msg.Chat.ID,
		"👋 Это бот платформы репетиторов.\n\n"+
			"Здесь можно искать репетиторов, бронировать и подтверждать уроки, переписываться и оплачивать занятия.\n\n"+
			"Войти: /login\nЗарегистрироваться: /register\nВсе команды: /help")
}

// HandleHelp список команд
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleCancel прерывает диалог; открытый чат тоже закрывается
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	telegramID := update.Message.From.ID

	current := h.stateManager.GetState(telegramID)
	if current == state.StateChat {
		h.chatService.Close(telegramID)
	}
	h.stateManager.ClearDialog(telegramID)
	for _, key := range []string{state.KeyBooking, state.KeyFeedback, state.KeyPassword, state.KeyLessonID, state.KeyField} {
		h.stateManager.DeleteData(telegramID, key)
	}

	if current == state.StateNone {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "Нечего отменять. /dashboard - главный экран")
		return
	}
	h.logger.Info("Dialog cancelled", zap.Int64("telegram_id", telegramID), zap.String("state", string(current)))
	h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Действие отменено")
}

// HandleLogin начинает вход
func (h *Handlers) HandleLogin(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	telegramID := update.Message.From.ID
	h.stateManager.ClearState(telegramID)
	h.stateManager.SetState(telegramID, state.StateLoginUsername)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "🔐 Имя пользователя:\n\nОтмена: /cancel")
}

// HandleRegister начинает регистрацию
func (h *Handlers) HandleRegister(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	telegramID := update.Message.From.ID
	h.stateManager.ClearState(telegramID)
	h.stateManager.SetState(telegramID, state.StateRegisterUsername)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "📝 Регистрация\n\nПридумайте имя пользователя (от 3 символов):\n\nОтмена: /cancel")
}

// HandleLogout удаляет токены и закрывает чат
func (h *Handlers) HandleLogout(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	telegramID := update.Message.From.ID

	h.chatService.Close(telegramID)
	if err := h.userService.Logout(ctx, telegramID); err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err, "logout")
		return
	}
	h.stateManager.ClearState(telegramID)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "👋 Вы вышли из аккаунта.\n\nВойти снова: /login")
}

// HandleDashboard главный экран по роли
func (h *Handlers) HandleDashboard(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	sess, user, ok := h.requireSession(ctx, b, update.Message)
	if !ok {
		return
	}
	h.showDashboard(ctx, b, update.Message.Chat.ID, sess, user)
}

func (h *Handlers) showDashboard(ctx context.Context, b *bot.Bot, chatID int64, sess *model.Session, user *model.User) {
	var counters *lessons.Buckets
	if buckets, err := h.lessonService.Buckets(ctx, sess, user.Role()); err == nil {
		counters = &buckets
	} else {
		h.logger.Warn("Failed to load lesson counters", zap.Int64("telegram_id", sess.TelegramID), zap.Error(err))
	}
	text, kb := common.BuildDashboardScreen(user, counters)
	h.sendScreen(ctx, b, chatID, text, kb)
}

// HandleProfile профиль с кнопками редактирования
func (h *Handlers) HandleProfile(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	_, user, ok := h.requireSession(ctx, b, update.Message)
	if !ok {
		return
	}
	text, kb := common.BuildProfileScreen(user)
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleLessons список уроков, вкладка "Ожидают"
func (h *Handlers) HandleLessons(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	sess, user, ok := h.requireSession(ctx, b, update.Message)
	if !ok {
		return
	}
	buckets, err := h.lessonService.Buckets(ctx, sess, user.Role())
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err, "load lessons")
		return
	}
	h.stateManager.SetData(sess.TelegramID, state.KeyTab, string(lessons.TabPending))
	text, kb := common.BuildLessonsScreen(buckets, lessons.TabPending, 0, user.Role(), h.lessonService.Location())
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleWeek картинка текущей недели
func (h *Handlers) HandleWeek(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	sess, user, ok := h.requireSession(ctx, b, update.Message)
	if !ok {
		return
	}
	png, caption, err := lesson.RenderWeek(ctx, h.lessonService, sess, user.Role(), 0)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err, "render week")
		return
	}
	h.sendPhoto(ctx, b, update.Message.Chat.ID, png, caption, lesson.WeekKeyboard(0))
}

// HandleTutors поиск репетиторов с фильтром из аргументов команды
func (h *Handlers) HandleTutors(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	sess, user, ok := h.requireRole(ctx, b, update.Message, model.RoleStudent, model.RoleParent)
	if !ok {
		return
	}
	h.searchTutors(ctx, b, update.Message, sess, user)
}

func (h *Handlers) searchTutors(ctx context.Context, b *bot.Bot, msg *models.Message, sess *model.Session, user *model.User) {
	filter := ParseTutorFilter(commandArgs(msg.Text))
	tutors, err := h.tutorService.Search(ctx, sess, user, filter)
	if err != nil {
		h.replyError(ctx, b, msg.Chat.ID, err, "search tutors")
		return
	}
	h.stateManager.SetData(sess.TelegramID, state.KeyFilter, filter)
	h.stateManager.SetData(sess.TelegramID, state.KeyTutors, tutors)

	text, kb := common.BuildTutorsScreen(tutors, 0)
	h.sendScreen(ctx, b, msg.Chat.ID, text, kb)
}

// HandleBook бронирование начинается с выбора репетитора
func (h *Handlers) HandleBook(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	sess, user, ok := h.requireRole(ctx, b, update.Message, model.RoleStudent)
	if !ok {
		return
	}
	h.searchTutors(ctx, b, update.Message, sess, user)
}

// HandlePayments экран платежей
func (h *Handlers) HandlePayments(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	sess, user, ok := h.requireSession(ctx, b, update.Message)
	if !ok {
		return
	}
	sum, err := h.paymentService.Summary(ctx, sess, user.Role())
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err, "load payments")
		return
	}
	text, kb := common.BuildPaymentsScreen(user.Role(), sum, h.lessonService.Location())
	h.sendScreen(ctx, b, update.Message.Chat.ID, text, kb)
}

// HandleChat список собеседников; с аргументом открывает переписку
func (h *Handlers) HandleChat(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	msg := update.Message
	sess, _, ok := h.requireSession(ctx, b, msg)
	if !ok {
		return
	}

	if recipient := commandArgs(msg.Text); recipient != "" {
		h.openChat(ctx, b, msg.Chat.ID, sess, recipient)
		return
	}

	contacts, err := h.chatService.Contacts(ctx, sess)
	if err != nil {
		h.replyError(ctx, b, msg.Chat.ID, err, "load contacts")
		return
	}
	h.stateManager.SetData(sess.TelegramID, state.KeyContacts, contacts)
	text, kb := common.BuildContactsScreen(contacts, h.chatService.Recipient(sess.TelegramID))
	h.sendScreen(ctx, b, msg.Chat.ID, text, kb)
}

func (h *Handlers) openChat(ctx context.Context, b *bot.Bot, chatID int64, sess *model.Session, recipient string) {
	history, err := h.chatService.Open(ctx, sess, recipient)
	if err != nil {
		h.replyError(ctx, b, chatID, err, "open chat")
		return
	}
	h.stateManager.SetState(sess.TelegramID, state.StateChat)
	h.logger.Info("Chat opened", zap.Int64("telegram_id", sess.TelegramID), zap.String("recipient", recipient))
	h.sendMessage(ctx, b, chatID, common.BuildTranscript(recipient, history))
}
