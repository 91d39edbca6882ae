package common

// Форматы callback data. Telegram ограничивает data 64 байтами,
// поэтому длинные значения (имена собеседников) передаются индексом.
const (
	BackToMain = "back_to_main"
	Noop       = "noop"

	MenuLessons  = "menu_lessons"
	MenuTutors   = "menu_tutors"
	MenuChat     = "menu_chat"
	MenuPayments = "menu_payments"
	MenuProfile  = "menu_profile"
	MenuWeek     = "menu_week"

	LessonsTab     = "tab:"      // tab:pending:0
	ViewLesson     = "lesson:"   // lesson:123:pending
	AcceptLesson   = "accept:"   // accept:123
	ProposeLesson  = "propose:"  // propose:123
	EditLesson     = "edit:"     // edit:123
	FeedbackLesson = "feedback:" // feedback:123
	RateLesson     = "rate:"     // rate:123:5
	UploadDocument = "doc:"      // doc:123
	PayLesson      = "pay:"      // pay:123
	WeekOffset     = "week:"     // week:-1

	TutorsPage  = "tutors_page:" // tutors_page:2
	ViewTutor   = "tutor:"       // tutor:15
	BookSubject = "book:"        // book:15:3
	BookRemote  = "book_remote"
	BookConfirm = "book_confirm"
	BookCancel  = "book_cancel"

	OpenChat  = "chat_open:" // chat_open:0
	CloseChat = "chat_close"

	EditProfile  = "profile_edit:" // profile_edit:bio
	AddChild     = "add_child"
	RegisterRole = "register_role:" // register_role:Tutor
	Logout       = "logout"
)
