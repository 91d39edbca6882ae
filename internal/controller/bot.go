package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/handlers"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/state"
	"github.com/Freeeeeet/tutoring_bot/internal/lessons"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/service"
)

const (
	// deliverTimeout отправка входящего сообщения чата не должна висеть дольше
	deliverTimeout = 10 * time.Second

	// брошенные диалоги (черновики бронирования, результаты поиска) живут сутки
	dialogMaxIdle = 24 * time.Hour
	pruneInterval = time.Hour
)

// Services зависимости контроллера
type Services struct {
	Users    *service.UserService
	Lessons  *service.LessonService
	Tutors   *service.TutorService
	Payments *service.PaymentService
	Chat     *service.ChatService
	Guard    callbacktypes.SessionGuard
}

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	states          *state.Manager
	loc             *time.Location
	logger          *zap.Logger
}

func NewBotController(botInstance *bot.Bot, svc Services, logger *zap.Logger) *BotController {
	// Создаём менеджер состояний
	stateManager := state.NewManager()

	// Создаём обработчики команд
	cmdHandlers := handlers.NewHandlers(
		svc.Users,
		svc.Lessons,
		svc.Tutors,
		svc.Payments,
		svc.Chat,
		svc.Guard,
		stateManager,
		logger,
	)

	// Создаём callback handler с зависимостями
	callbackHandler := callbacks.NewHandler(
		svc.Users,
		svc.Lessons,
		svc.Tutors,
		svc.Payments,
		svc.Chat,
		svc.Guard,
		state.NewAdapter(stateManager),
		logger,
	)

	return &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		states:          stateManager,
		loc:             svc.Lessons.Location(),
		logger:          logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	exact := map[string]bot.HandlerFunc{
		"/start":     c.handlers.HandleStart,
		"/help":      c.handlers.HandleHelp,
		"/cancel":    c.handlers.HandleCancel,
		"/login":     c.handlers.HandleLogin,
		"/register":  c.handlers.HandleRegister,
		"/logout":    c.handlers.HandleLogout,
		"/dashboard": c.handlers.HandleDashboard,
		"/profile":   c.handlers.HandleProfile,
		"/lessons":   c.handlers.HandleLessons,
		"/week":      c.handlers.HandleWeek,
		"/payments":  c.handlers.HandlePayments,
	}
	for cmd, handler := range exact {
		c.bot.RegisterHandler(bot.HandlerTypeMessageText, cmd, bot.MatchTypeExact, handler)
	}

	// Команды с аргументами
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/tutors", bot.MatchTypePrefix, c.handlers.HandleTutors)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/book", bot.MatchTypePrefix, c.handlers.HandleBook)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/chat", bot.MatchTypePrefix, c.handlers.HandleChat)

	// Файлы для уроков
	c.bot.RegisterHandlerMatchFunc(handlers.IsDocument, c.handlers.HandleDocument)

	// Обработчик текстовых сообщений (для диалогов с состояниями)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "dashboard", Description: "🏠 Главный экран"},
		{Command: "lessons", Description: "📚 Мои уроки"},
		{Command: "week", Description: "🗓 Неделя картинкой"},
		{Command: "tutors", Description: "🔎 Найти репетитора"},
		{Command: "book", Description: "📝 Записаться на урок"},
		{Command: "chat", Description: "💬 Переписка"},
		{Command: "payments", Description: "💳 Платежи"},
		{Command: "profile", Description: "👤 Профиль"},
		{Command: "login", Description: "🔐 Войти"},
		{Command: "register", Description: "📝 Регистрация"},
		{Command: "logout", Description: "🚪 Выйти"},
		{Command: "cancel", Description: "❌ Отменить действие"},
		{Command: "help", Description: "❓ Справка по командам"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Notify напоминание о скором уроке, вызывается планировщиком
func (c *BotController) Notify(ctx context.Context, sess *model.Session, l model.Lesson) error {
	text := "⏰ <b>Скоро урок</b>\n\n" + formatting.FormatLessonInfo(&l, model.RoleUnknown, c.loc, time.Now())
	kb := keyboard.NewBuilder().
		Row(keyboard.Button("📋 Открыть урок", fmt.Sprintf("%s%d:%s", common.ViewLesson, l.ID, lessons.TabUpcoming)))
	if l.IsRemote && l.MeetingURL != "" {
		kb.Row(keyboard.URLButton("🎥 Подключиться", l.MeetingURL))
	}

	chatID := sess.ChatID
	if chatID == 0 {
		chatID = sess.TelegramID
	}
	_, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: kb.Build(),
	})
	if err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}
	return nil
}

// Deliver пересылает входящее сообщение чата пользователю; личный чат совпадает с telegram id
func (c *BotController) Deliver(telegramID int64, msg model.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	_, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    telegramID,
		Text:      "💬 " + common.FormatChatMessage(msg),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		c.logger.Error("Failed to deliver chat message",
			zap.Int64("telegram_id", telegramID),
			zap.Error(err))
	}
}

// Start запускает бота
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	go c.pruneDialogs(ctx)
	c.bot.Start(ctx)
	return nil
}

func (c *BotController) pruneDialogs(ctx context.Context) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.states.Prune(dialogMaxIdle); n > 0 {
				c.logger.Info("Idle dialogs pruned", zap.Int("count", n))
			}
		}
	}
}
