package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/service"
)

// Ошибки разбора ввода
var (
	ErrBadDate      = errors.New("bad date")
	ErrBadTimeRange = errors.New("bad time range")
	ErrBadPrice     = errors.New("bad price")
	ErrBadHours     = errors.New("bad available hours")
	ErrBadUpdate    = errors.New("bad lesson update")
	ErrBadSubjects  = errors.New("bad subject list")
)

var weekdays = map[string]string{
	"monday": "Monday", "mon": "Monday", "пн": "Monday", "понедельник": "Monday",
	"tuesday": "Tuesday", "tue": "Tuesday", "вт": "Tuesday", "вторник": "Tuesday",
	"wednesday": "Wednesday", "wed": "Wednesday", "ср": "Wednesday", "среда": "Wednesday",
	"thursday": "Thursday", "thu": "Thursday", "чт": "Thursday", "четверг": "Thursday",
	"friday": "Friday", "fri": "Friday", "пт": "Friday", "пятница": "Friday",
	"saturday": "Saturday", "sat": "Saturday", "сб": "Saturday", "суббота": "Saturday",
	"sunday": "Sunday", "sun": "Sunday", "вс": "Sunday", "воскресенье": "Sunday",
}

// ParseTutorFilter разбирает аргументы /tutors: city=Kraków subject=Math min=50 max=120 remote
func ParseTutorFilter(args string) model.TutorFilter {
	var f model.TutorFilter
	for _, token := range strings.Fields(args) {
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			if strings.EqualFold(token, "remote") || strings.EqualFold(token, "online") {
				f.RemoteOnly = true
			}
			continue
		}
		value = strings.ReplaceAll(value, "_", " ")
		switch strings.ToLower(key) {
		case "city":
			f.City = value
		case "subject":
			f.Subject = value
		case "min":
			f.MinPrice = value
		case "max":
			f.MaxPrice = value
		}
	}
	return f
}

// ParseDate дата урока ГГГГ-ММ-ДД
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(service.DateLayout, s); err != nil {
		return "", ErrBadDate
	}
	return s, nil
}

// ParseTimeRange "10:00-11:30" -> "10:00", "11:30"
func ParseTimeRange(s string) (string, string, error) {
	from, to, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return "", "", ErrBadTimeRange
	}
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	start, err := time.Parse(service.ClockLayout, from)
	if err != nil {
		return "", "", ErrBadTimeRange
	}
	end, err := time.Parse(service.ClockLayout, to)
	if err != nil {
		return "", "", ErrBadTimeRange
	}
	if !end.After(start) {
		return "", "", ErrBadTimeRange
	}
	return start.Format(service.ClockLayout), end.Format(service.ClockLayout), nil
}

// ParsePrice цена за час, запятая допускается как разделитель
func ParsePrice(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil || v <= 0 {
		return 0, ErrBadPrice
	}
	return v, nil
}

// ParseHours "Monday 10:00-12:00; Wednesday 16:00-18:00"
func ParseHours(s string) ([]model.AvailableHour, error) {
	var hours []model.AvailableHour
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Fields(part)
		if len(fields) != 2 {
			return nil, ErrBadHours
		}
		day, ok := weekdays[strings.ToLower(fields[0])]
		if !ok {
			return nil, ErrBadHours
		}
		start, end, err := ParseTimeRange(fields[1])
		if err != nil {
			return nil, ErrBadHours
		}
		hours = append(hours, model.AvailableHour{DayOfWeek: day, StartTime: start, EndTime: end})
	}
	if len(hours) == 0 {
		return nil, ErrBadHours
	}
	return hours, nil
}

// ParseSubjectIDs "1, 4 7" -> [1 4 7]
func ParseSubjectIDs(s string) ([]int64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == ';' })
	if len(fields) == 0 {
		return nil, ErrBadSubjects
	}
	ids := make([]int64, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil || id <= 0 {
			return nil, ErrBadSubjects
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseLessonUpdate "2026-03-10 10:00-11:30 80 online"; без последнего слова формат урока не меняется
func ParseLessonUpdate(s string, current *model.Lesson, loc *time.Location) (service.LessonUpdateForm, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 || len(fields) > 4 {
		return service.LessonUpdateForm{}, ErrBadUpdate
	}
	date, err := ParseDate(fields[0])
	if err != nil {
		return service.LessonUpdateForm{}, ErrBadUpdate
	}
	from, to, err := ParseTimeRange(fields[1])
	if err != nil {
		return service.LessonUpdateForm{}, ErrBadUpdate
	}
	price, err := ParsePrice(fields[2])
	if err != nil {
		return service.LessonUpdateForm{}, ErrBadUpdate
	}

	remote := current.IsRemote
	if len(fields) == 4 {
		switch strings.ToLower(fields[3]) {
		case "online", "онлайн":
			remote = true
		case "offline", "очно":
			remote = false
		default:
			return service.LessonUpdateForm{}, ErrBadUpdate
		}
	}

	start, _ := time.ParseInLocation(service.DateLayout+" "+service.ClockLayout, date+" "+from, loc)
	end, _ := time.ParseInLocation(service.DateLayout+" "+service.ClockLayout, date+" "+to, loc)
	return service.LessonUpdateForm{
		SubjectID:    current.Subject.ID,
		StartTime:    start,
		EndTime:      end,
		PricePerHour: price,
		IsRemote:     remote,
		Description:  current.Description,
	}, nil
}
