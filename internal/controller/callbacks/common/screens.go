package common

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/tutoring_bot/internal/lessons"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/service"
)

const (
	LessonsPerPage = 5
	TutorsPerPage  = 5
	transcriptTail = 15
)

// BuildDashboardScreen главный экран по роли пользователя; buckets может быть nil
func BuildDashboardScreen(user *model.User, buckets *lessons.Buckets) (string, *models.InlineKeyboardMarkup) {
	role := user.Role()

	var sb strings.Builder
	fmt.Fprintf(&sb, "👋 Привет, <b>%s</b>!\n", html.EscapeString(user.FullName()))
	fmt.Fprintf(&sb, "Роль: %s\n", formatting.GetRoleDisplay(role))

	if user.Profile != nil && !user.Profile.Complete() {
		switch role {
		case model.RoleStudent:
			sb.WriteString("\n⚠️ Укажите уровень образования в профиле, чтобы репетиторам было проще.\n")
		case model.RoleTutor:
			sb.WriteString("\n⚠️ Добавьте описание о себе, иначе ученики не узнают о вас.\n")
		case model.RoleParent:
			sb.WriteString("\n⚠️ Добавьте ребёнка по его email, чтобы видеть его уроки.\n")
		}
	}

	if buckets != nil {
		sb.WriteString("\n")
		for _, tab := range lessons.Tabs {
			fmt.Fprintf(&sb, "%s: %d\n", formatting.GetTabDisplay(tab), len(buckets.Get(tab)))
		}
	}

	kb := keyboard.NewBuilder().
		Row(keyboard.Button("📚 Уроки", MenuLessons), keyboard.Button("🗓 Неделя", MenuWeek))
	if role == model.RoleStudent || role == model.RoleParent {
		kb.Row(keyboard.Button("🔎 Найти репетитора", MenuTutors))
	}
	kb.Row(keyboard.Button("💬 Чат", MenuChat), keyboard.Button("💳 Платежи", MenuPayments)).
		Row(keyboard.Button("👤 Профиль", MenuProfile), keyboard.Button("🚪 Выйти", Logout))

	return sb.String(), kb.Build()
}

// BuildLessonsScreen вкладка уроков с пагинацией
func BuildLessonsScreen(buckets lessons.Buckets, tab lessons.Tab, page int, role model.Role, loc *time.Location) (string, *models.InlineKeyboardMarkup) {
	list := buckets.Get(tab)
	start, end, page, pages := keyboard.Page(len(list), LessonsPerPage, page)

	var sb strings.Builder
	fmt.Fprintf(&sb, "📚 <b>Уроки · %s</b>\n", formatting.GetTabDisplay(tab).Text)
	if len(list) == 0 {
		sb.WriteString("\nЗдесь пока пусто.")
	} else {
		fmt.Fprintf(&sb, "%s\n\n", formatting.CountLessons(len(list)))
		for i := start; i < end; i++ {
			sb.WriteString(formatting.FormatLessonShort(&list[i], role, loc, i+1))
			sb.WriteString("\n\n")
		}
	}

	kb := keyboard.NewBuilder()
	tabs := make([]models.InlineKeyboardButton, 0, len(lessons.Tabs))
	for _, t := range lessons.Tabs {
		label := fmt.Sprintf("%s %d", formatting.GetTabDisplay(t).Emoji, len(buckets.Get(t)))
		if t == tab {
			label = "· " + label + " ·"
		}
		tabs = append(tabs, keyboard.Button(label, fmt.Sprintf("%s%s:0", LessonsTab, t)))
	}
	kb.Row(tabs...)

	for i := start; i < end; i++ {
		l := &list[i]
		kb.Row(keyboard.Button(
			fmt.Sprintf("%d. %s %s", i+1, l.Subject.Name, formatting.FormatDate(l.StartTime.In(loc))),
			fmt.Sprintf("%s%d:%s", ViewLesson, l.ID, tab),
		))
	}
	kb.AddPagination(fmt.Sprintf("%s%s:", LessonsTab, tab), page, pages)
	kb.AddBackToMainButton()

	return strings.TrimRight(sb.String(), "\n"), kb.Build()
}

// LessonActions какие действия доступны над уроком
type LessonActions struct {
	Accept   bool
	Propose  bool
	Update   bool
	Feedback bool
	Upload   bool
	Pay      bool
}

// ActionsFor вычисляет кнопки урока для роли на момент now
func ActionsFor(l *model.Lesson, role model.Role, now time.Time, paid bool) LessonActions {
	return LessonActions{
		Accept:   lessons.CanAccept(l, role, now),
		Propose:  lessons.CanPropose(l, role, now),
		Update:   lessons.CanUpdate(l, role, now),
		Feedback: lessons.CanLeaveFeedback(l, now),
		Upload:   role != model.RoleUnknown,
		Pay:      lessons.CanPay(l, role, paid),
	}
}

// BuildLessonScreen карточка урока с действиями
func BuildLessonScreen(l *model.Lesson, role model.Role, tab lessons.Tab, loc *time.Location, now time.Time, actions LessonActions) (string, *models.InlineKeyboardMarkup) {
	text := formatting.FormatLessonInfo(l, role, loc, now)

	id := strconv.FormatInt(l.ID, 10)
	kb := keyboard.NewBuilder()
	if actions.Accept {
		kb.Row(keyboard.Button("✅ Подтвердить", AcceptLesson+id))
	}
	if actions.Propose {
		kb.Row(keyboard.Button("📨 Предложить репетитору", ProposeLesson+id))
	}
	if actions.Update {
		kb.Row(keyboard.Button("✏️ Изменить", EditLesson+id))
	}
	if actions.Feedback {
		kb.Row(keyboard.Button("💬 Оставить отзыв", FeedbackLesson+id))
	}
	if actions.Upload {
		kb.Row(keyboard.Button("📎 Загрузить документ", UploadDocument+id))
	}
	if actions.Pay {
		kb.Row(keyboard.Button("💳 Оплатить "+formatting.Money(l.Amount()), PayLesson+id))
	}
	if l.MeetingURL != "" && l.IsRemote {
		kb.Row(keyboard.URLButton("🎥 Подключиться", l.MeetingURL))
	}
	for i, d := range l.Documents {
		if strings.HasPrefix(d.Document, "http") {
			kb.Row(keyboard.URLButton(fmt.Sprintf("📄 Документ %d", i+1), d.Document))
		}
	}
	kb.AddBackButton(fmt.Sprintf("%s%s:0", LessonsTab, tab))

	return text, kb.Build()
}

// BuildTutorsScreen результаты поиска репетиторов
func BuildTutorsScreen(tutors []model.User, page int) (string, *models.InlineKeyboardMarkup) {
	start, end, page, pages := keyboard.Page(len(tutors), TutorsPerPage, page)

	var sb strings.Builder
	sb.WriteString("🔎 <b>Репетиторы</b>\n\n")
	if len(tutors) == 0 {
		sb.WriteString("Никого не нашлось. Попробуйте изменить фильтр:\n" + TutorFilterHelp)
	} else {
		fmt.Fprintf(&sb, "Найдено: %d %s\n\n", len(tutors), formatting.PluralizeTutors(len(tutors)))
		for i := start; i < end; i++ {
			sb.WriteString(formatting.FormatTutorShort(&tutors[i], i+1))
			sb.WriteString("\n\n")
		}
	}

	kb := keyboard.NewBuilder()
	for i := start; i < end; i++ {
		p, ok := tutors[i].Tutor()
		if !ok {
			continue
		}
		kb.Row(keyboard.Button(fmt.Sprintf("%d. %s", i+1, tutors[i].FullName()), fmt.Sprintf("%s%d", ViewTutor, p.ID)))
	}
	kb.AddPagination(TutorsPage, page, pages)
	kb.AddBackToMainButton()

	return strings.TrimRight(sb.String(), "\n"), kb.Build()
}

// TutorFilterHelp формат фильтра поиска
const TutorFilterHelp = "<code>/tutors city=Kraków subject=Math min=50 max=120 remote</code>"

// BuildTutorScreen карточка репетитора с кнопками бронирования по предметам
func BuildTutorScreen(tutor *model.User) (string, *models.InlineKeyboardMarkup) {
	p, _ := tutor.Tutor()

	var sb strings.Builder
	fmt.Fprintf(&sb, "🎓 <b>%s</b>\n", html.EscapeString(tutor.FullName()))
	kb := keyboard.NewBuilder()

	if p != nil {
		fmt.Fprintf(&sb, "⭐ %.1f\n", p.AverageRating)
		if tutor.City != "" {
			fmt.Fprintf(&sb, "📍 %s\n", html.EscapeString(tutor.City))
		}
		if p.Bio != "" {
			fmt.Fprintf(&sb, "\n%s\n", html.EscapeString(p.Bio))
		}
		if len(p.WorkingExperience) > 0 {
			sb.WriteString("\n💼 Опыт:\n")
			for _, w := range p.WorkingExperience {
				fmt.Fprintf(&sb, "• %s (%s – %s)\n", html.EscapeString(w.Position), w.StartDate, orDash(w.EndDate))
			}
		}
		fmt.Fprintf(&sb, "\n🕒 Часы: %s\n", html.EscapeString(formatting.FormatHours(p.AvailableHours)))

		if len(p.SubjectPrices) > 0 {
			sb.WriteString("\n📚 Предметы:\n")
		}
		for _, sp := range p.SubjectPrices {
			fmt.Fprintf(&sb, "• %s: %s\n", html.EscapeString(sp.Subject.Name), formatting.PriceRange(sp.PriceMin, sp.PriceMax))
			kb.Row(keyboard.Button("📝 Записаться: "+sp.Subject.Name, fmt.Sprintf("%s%d:%d", BookSubject, p.ID, sp.Subject.ID)))
		}
	}
	kb.AddBackButton(TutorsPage + "0")

	return strings.TrimRight(sb.String(), "\n"), kb.Build()
}

func orDash(s string) string {
	if s == "" {
		return "сейчас"
	}
	return s
}

// BuildBookingScreen сводка черновика бронирования перед отправкой
func BuildBookingScreen(tutor *model.User, subject model.SubjectPrice, form service.BookingForm) (string, *models.InlineKeyboardMarkup) {
	format := "🏫 Очно"
	toggle := "💻 Сделать онлайн"
	if form.IsRemote {
		format = "💻 Онлайн"
		toggle = "🏫 Сделать очным"
	}
	description := form.Description
	if description == "" {
		description = "—"
	}

	text := fmt.Sprintf(
		"📝 <b>Бронирование</b>\n\n"+
			"🎓 %s\n"+
			"📚 %s (%s)\n"+
			"🗓 %s %s-%s\n"+
			"💰 %s/ч\n"+
			"%s\n"+
			"📝 %s\n\n"+
			"Проверьте и подтвердите:",
		html.EscapeString(tutor.FullName()),
		html.EscapeString(subject.Subject.Name),
		formatting.PriceRange(subject.PriceMin, subject.PriceMax),
		form.Date, form.StartTime, form.EndTime,
		formatting.Money(form.PricePerHour),
		format,
		html.EscapeString(description),
	)

	kb := keyboard.NewBuilder().
		Row(keyboard.Button(toggle, BookRemote)).
		AddRows(keyboard.ConfirmCancelButtons(BookConfirm, BookCancel)).
		Build()
	return text, kb
}

// BuildProfileScreen профиль пользователя с кнопками редактирования
func BuildProfileScreen(user *model.User) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 <b>%s</b>\n", html.EscapeString(user.FullName()))
	fmt.Fprintf(&sb, "%s\n", formatting.GetRoleDisplay(user.Role()))
	fmt.Fprintf(&sb, "📧 %s\n", html.EscapeString(user.Email))
	if user.City != "" {
		fmt.Fprintf(&sb, "📍 %s\n", html.EscapeString(user.City))
	}
	sb.WriteString("\n")

	kb := keyboard.NewBuilder()
	field := func(label, key, value string) {
		if value == "" {
			value = "—"
		}
		fmt.Fprintf(&sb, "<b>%s:</b> %s\n", label, html.EscapeString(value))
		kb.Row(keyboard.Button("✏️ "+label, EditProfile+key))
	}

	switch p := user.Profile.(type) {
	case *model.StudentProfile:
		field("О себе", ProfileFieldBio, p.Bio)
		field("Задачи", ProfileFieldTasks, p.TasksDescription)
		field("Цель", ProfileFieldGoal, p.Goal)
		field("Уровень образования", ProfileFieldEducation, p.EducationLevel)
		field("Доступные часы", ProfileFieldHours, formatting.FormatHours(p.AvailableHours))
	case *model.TutorProfile:
		field("О себе", ProfileFieldBio, p.Bio)
		var names []string
		for _, sp := range p.SubjectPrices {
			names = append(names, sp.Subject.Name)
		}
		field("Предметы", ProfileFieldSubjects, strings.Join(names, ", "))
		field("Доступные часы", ProfileFieldHours, formatting.FormatHours(p.AvailableHours))
	case *model.ParentProfile:
		children := "—"
		if len(p.Children) > 0 {
			children = strings.Join(p.Children, ", ")
		}
		fmt.Fprintf(&sb, "<b>Дети:</b> %s\n", html.EscapeString(children))
		kb.Row(keyboard.Button("➕ Добавить ребёнка", AddChild))
	}
	kb.AddBackToMainButton()

	return strings.TrimRight(sb.String(), "\n"), kb.Build()
}

// Поля профиля для редактирования
const (
	ProfileFieldBio       = "bio"
	ProfileFieldTasks     = "tasks"
	ProfileFieldGoal      = "goal"
	ProfileFieldEducation = "education"
	ProfileFieldHours     = "hours"
	ProfileFieldSubjects  = "subjects"
)

// BuildPaymentsScreen оплаченные и неоплаченные уроки
func BuildPaymentsScreen(role model.Role, sum *service.PaymentSummary, loc *time.Location) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	sb.WriteString("💳 <b>Платежи</b>\n\n")
	if role == model.RoleTutor {
		fmt.Fprintf(&sb, "К получению: <b>%s</b>\n", formatting.Money(sum.UnpaidBalance))
		fmt.Fprintf(&sb, "Оплачено: <b>%s</b>\n", formatting.Money(sum.PaidTotal))
	} else {
		fmt.Fprintf(&sb, "К оплате: <b>%s</b>\n", formatting.Money(sum.UnpaidBalance))
		fmt.Fprintf(&sb, "Оплачено: <b>%s</b>\n", formatting.Money(sum.PaidTotal))
	}

	kb := keyboard.NewBuilder()

	if len(sum.Unpaid) > 0 {
		sb.WriteString("\n❗️ Не оплачены:\n")
	}
	for i := range sum.Unpaid {
		l := &sum.Unpaid[i]
		fmt.Fprintf(&sb, "• %s · %s · %s\n",
			html.EscapeString(l.Subject.Name),
			formatting.FormatLessonTime(l.StartTime, l.EndTime, loc),
			formatting.Money(l.Amount()))
		if lessons.CanPay(l, role, false) {
			kb.Row(keyboard.Button(fmt.Sprintf("💳 %s %s · %s", l.Subject.Name, formatting.FormatDate(l.StartTime.In(loc)), formatting.Money(l.Amount())),
				fmt.Sprintf("%s%d", PayLesson, l.ID)))
		}
	}

	if len(sum.Paid) > 0 {
		sb.WriteString("\n✅ Оплачены:\n")
	}
	for i := range sum.Paid {
		l := &sum.Paid[i]
		fmt.Fprintf(&sb, "• %s · %s · %s\n",
			html.EscapeString(l.Subject.Name),
			formatting.FormatLessonTime(l.StartTime, l.EndTime, loc),
			formatting.Money(l.Amount()))
	}
	kb.AddBackToMainButton()

	return strings.TrimRight(sb.String(), "\n"), kb.Build()
}

const contactsPerRow = 2

// BuildContactsScreen список собеседников; callback содержит индекс в contacts
func BuildContactsScreen(contacts []model.Contact, current string) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	sb.WriteString("💬 <b>Чат</b>\n\n")
	if current != "" {
		fmt.Fprintf(&sb, "Открыт чат с <b>%s</b>. Просто пишите сообщения.\n\n", html.EscapeString(current))
	}
	if len(contacts) == 0 {
		sb.WriteString("Переписок пока нет. Чтобы написать новому собеседнику: <code>/chat имя_пользователя</code>")
	} else {
		sb.WriteString("Выберите собеседника или <code>/chat имя_пользователя</code>:")
	}

	buttons := make([]models.InlineKeyboardButton, 0, len(contacts))
	for i, c := range contacts {
		buttons = append(buttons, keyboard.Button("👤 "+c.Username, fmt.Sprintf("%s%d", OpenChat, i)))
	}
	kb := keyboard.NewBuilder().Grid(contactsPerRow, buttons...)
	if current != "" {
		kb.Row(keyboard.Button("🔚 Закрыть чат", CloseChat))
	}
	kb.AddBackToMainButton()

	return sb.String(), kb.Build()
}

// BuildTranscript последние сообщения переписки
func BuildTranscript(recipient string, history []model.Message) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "💬 Чат с <b>%s</b>\n\n", html.EscapeString(recipient))

	if len(history) == 0 {
		sb.WriteString("Сообщений пока нет.\n")
	}
	if len(history) > transcriptTail {
		fmt.Fprintf(&sb, "… ещё %d ранее\n", len(history)-transcriptTail)
		history = history[len(history)-transcriptTail:]
	}
	for _, m := range history {
		sb.WriteString(FormatChatMessage(m))
		sb.WriteString("\n")
	}
	sb.WriteString("\nПишите сообщения сюда. Выйти из чата: /cancel")
	return sb.String()
}

// FormatChatMessage одно сообщение переписки
func FormatChatMessage(m model.Message) string {
	sender := m.Sender
	if sender == model.YouSender {
		sender = "Вы"
	}
	return fmt.Sprintf("<b>%s:</b> %s", html.EscapeString(sender), html.EscapeString(m.Content))
}

// RoleKeyboard выбор роли при регистрации
func RoleKeyboard() *models.InlineKeyboardMarkup {
	kb := keyboard.NewBuilder()
	for _, r := range []model.Role{model.RoleStudent, model.RoleTutor, model.RoleParent} {
		kb.Row(keyboard.Button(formatting.GetRoleDisplay(r).String(), RegisterRole+string(r)))
	}
	return kb.Build()
}

// FormatSubjectList справочник предметов с номерами для ввода
func FormatSubjectList(list []model.Subject) string {
	if len(list) == 0 {
		return "Справочник предметов пуст."
	}
	var sb strings.Builder
	for _, s := range list {
		fmt.Fprintf(&sb, "<code>%d</code> %s\n", s.ID, html.EscapeString(s.Name))
	}
	return strings.TrimRight(sb.String(), "\n")
}
