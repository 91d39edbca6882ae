package common

import (
	"bytes"
	"image/color"
	"strconv"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/tutoring_bot/internal/lessons"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// FontStyle определяет стиль шрифта
type FontStyle string

const (
	FontStyleDefault FontStyle = "" // Regular
	FontStyleMedium  FontStyle = "medium"
	FontStyleBold    FontStyle = "bold"
)

// Константы размеров и отступов
const (
	imageWidth        = 1400
	imageHeight       = 900
	headerHeight      = 100
	leftLabelsWidth   = 80
	legendWidth       = 130
	dayPaddingX       = 8
	minLessonHeight   = 8.0
	lessonRadius      = 6.0
	shadowOffset      = 3.0
	totalDaysInWeek   = 7
	hourPaddingTop    = 1
	hourPaddingBot    = 1
	defaultMinHour    = 8
	defaultMaxHour    = 20
	lessonTitleMaxLen = 18
)

// Константы шрифтов
const (
	titleFontSize      = 25.0
	dayFontSize        = 24.0
	hourLabelFontSize  = 16.0
	lessonFontSize     = 15.0
	legendItemFontSize = 12.0
)

// Цветовая схема
var (
	bgColor          = color.RGBA{245, 246, 248, 255}
	textColor        = color.RGBA{80, 85, 90, 220}
	hourLabelColor   = color.RGBA{110, 115, 120, 200}
	hourLineColor    = color.NRGBA{150, 150, 150, 255}
	todayBgColor     = color.NRGBA{255, 99, 71, 90}
	evenDayColor     = color.NRGBA{240, 240, 240, 255}
	oddDayColor      = color.NRGBA{225, 225, 225, 255}
	currentTimeColor = color.NRGBA{255, 80, 80, 200}

	pendingColor      = color.RGBA{255, 214, 102, 230}
	upcomingColor     = color.RGBA{133, 193, 85, 220}
	archiveColor      = color.RGBA{190, 190, 190, 200}
	lessonTextColor   = color.RGBA{20, 24, 28, 230}
	lessonShadowColor = color.RGBA{0, 0, 0, 20}

	legendItemColor = color.RGBA{70, 74, 78, 220}
)

// weekBounds содержит границы недели
type weekBounds struct {
	start time.Time
	end   time.Time
}

// hourRange содержит диапазон часов для отображения
type hourRange struct {
	start int
	end   int
	total int
}

var (
	fontsMu     sync.Mutex
	cachedFonts = make(map[FontStyle]*opentype.Font)
)

// loadFont загружает шрифт указанного стиля или использует basicfont как fallback
func loadFont(dc *gg.Context, size float64, style FontStyle) {
	var data []byte
	switch style {
	case FontStyleBold:
		data = gobold.TTF
	case FontStyleMedium:
		data = gomedium.TTF
	default:
		data = goregular.TTF
	}

	fontsMu.Lock()
	parsed, ok := cachedFonts[style]
	if !ok {
		var err error
		parsed, err = opentype.Parse(data)
		if err != nil {
			fontsMu.Unlock()
			dc.SetFontFace(basicfont.Face7x13)
			return
		}
		cachedFonts[style] = parsed
	}
	fontsMu.Unlock()

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		dc.SetFontFace(basicfont.Face7x13)
		return
	}
	dc.SetFontFace(face)
}

// GenerateWeekImage рисует неделю с уроками, цвет урока по вкладке (ожидают/предстоящие/архив).
// Неделя определяется датой day в часовом поясе loc.
func GenerateWeekImage(day time.Time, list []model.Lesson, now time.Time, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.Local
	}
	week := normalizeToWeekBounds(day.In(loc))
	today := normalizeToDay(now.In(loc))
	highlightToday := isTodayInWeek(today, week)

	byDay := groupLessonsByDay(list, week, loc)
	hours := calculateHourRange(byDay)

	dc := createCanvas()
	dayWidth := (imageWidth - leftLabelsWidth - legendWidth) / totalDaysInWeek
	dayHeight := imageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(hours.total)

	drawHeader(dc, week)
	drawHourLabels(dc, hours, cellHeight)

	current := week.start
	for dayIndex := 0; dayIndex < totalDaysInWeek; dayIndex++ {
		x := float64(leftLabelsWidth + dayIndex*dayWidth)
		y := float64(headerHeight)

		drawDayBackground(dc, x, y, dayWidth, dayHeight, dayIndex, highlightToday && isSameDay(current, today))
		drawDayHeader(dc, current, x, y, dayWidth)
		drawHourLines(dc, x, y, dayWidth, hours, cellHeight)
		for i := range byDay[current.Format("2006-01-02")] {
			l := byDay[current.Format("2006-01-02")][i]
			drawLesson(dc, &l, lessons.Classify(&l, now), x, y, dayWidth, hours, cellHeight, loc)
		}

		current = current.AddDate(0, 0, 1)
	}

	if highlightToday {
		drawCurrentTimeLine(dc, now.In(loc), hours, cellHeight, dayWidth)
	}
	drawLegend(dc, dayWidth)

	return encodeImage(dc)
}

// WeekStart понедельник недели, в которую попадает day
func WeekStart(day time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return normalizeToWeekBounds(day.In(loc)).start
}

// normalizeToWeekBounds нормализует дату к границам недели (Пн-Вс)
func normalizeToWeekBounds(date time.Time) weekBounds {
	normalized := normalizeToDay(date)

	daysSinceMonday := int(normalized.Weekday()) - 1
	if normalized.Weekday() == time.Sunday {
		daysSinceMonday = 6
	}

	start := normalized.AddDate(0, 0, -daysSinceMonday)
	return weekBounds{start: start, end: start.AddDate(0, 0, 7)}
}

// normalizeToDay нормализует время к началу дня
func normalizeToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func isTodayInWeek(today time.Time, week weekBounds) bool {
	return !today.Before(week.start) && today.Before(week.end)
}

func isSameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// groupLessonsByDay уроки недели по дате начала, время переведено в loc
func groupLessonsByDay(list []model.Lesson, week weekBounds, loc *time.Location) map[string][]model.Lesson {
	byDay := make(map[string][]model.Lesson)
	for _, l := range list {
		l.StartTime = l.StartTime.In(loc)
		l.EndTime = l.EndTime.In(loc)
		if l.StartTime.Before(week.start) || !l.StartTime.Before(week.end) {
			continue
		}
		key := l.StartTime.Format("2006-01-02")
		byDay[key] = append(byDay[key], l)
	}
	return byDay
}

// calculateHourRange определяет диапазон часов для отображения
func calculateHourRange(byDay map[string][]model.Lesson) hourRange {
	minHour, maxHour := 24, 0
	for _, list := range byDay {
		for _, l := range list {
			startH := l.StartTime.Hour()
			end := l.EndTime
			endH := end.Hour()
			if end.Minute() > 0 {
				endH++
			}
			if !isSameDay(l.StartTime, end) || endH < startH {
				endH = 24
			}
			if startH < minHour {
				minHour = startH
			}
			if endH > maxHour {
				maxHour = endH
			}
		}
	}

	if minHour == 24 {
		minHour, maxHour = defaultMinHour, defaultMaxHour
	}

	start := minHour - hourPaddingTop
	end := maxHour + hourPaddingBot
	if start < 0 {
		start = 0
	}
	if end > 24 {
		end = 24
	}
	if end <= start {
		end = start + 1
	}
	return hourRange{start: start, end: end, total: end - start}
}

func createCanvas() *gg.Context {
	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()
	return dc
}

// drawHeader рисует заголовок с названием месяца
func drawHeader(dc *gg.Context, week weekBounds) {
	last := week.end.AddDate(0, 0, -1)
	title := formatting.GetMonthName(week.start.Month())
	if week.start.Month() != last.Month() {
		title += " - " + formatting.GetMonthName(last.Month())
	}
	title += " " + strconv.Itoa(last.Year())

	loadFont(dc, titleFontSize, FontStyleBold)
	dc.SetColor(textColor)
	w, h := dc.MeasureString(title)
	dc.DrawStringAnchored(title, w/2+10, float64(headerHeight)/8+h/2, 0, 0)
}

// drawHourLabels рисует колонку с часами слева
func drawHourLabels(dc *gg.Context, hours hourRange, cellHeight float64) {
	loadFont(dc, hourLabelFontSize, FontStyleMedium)
	dc.SetColor(hourLabelColor)

	for i := 0; i <= hours.total; i++ {
		y := float64(headerHeight) + float64(i)*cellHeight
		dc.DrawStringAnchored(formatHourLabel(hours.start+i), float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

func drawDayBackground(dc *gg.Context, x, y float64, dayWidth, dayHeight, dayIndex int, isToday bool) {
	switch {
	case isToday:
		dc.SetColor(todayBgColor)
	case dayIndex%2 == 0:
		dc.SetColor(evenDayColor)
	default:
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, y, float64(dayWidth), float64(dayHeight))
	dc.Fill()
}

// drawDayHeader рисует название дня недели и дату
func drawDayHeader(dc *gg.Context, date time.Time, x, y float64, dayWidth int) {
	loadFont(dc, dayFontSize, FontStyleBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(date.Format("02.01"), x+float64(dayWidth)/2, y, 0.5, -1)
	dc.DrawStringAnchored(formatting.GetWeekdayShort(date.Weekday()), x+float64(dayWidth)/2, y, 0.5, -0.2)
}

func drawHourLines(dc *gg.Context, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)

	for i := 0; i <= hours.total; i++ {
		hy := y + float64(i)*cellHeight
		dc.DrawLine(x, hy, x+float64(dayWidth), hy)
		dc.Stroke()
	}
}

// drawLesson рисует один урок
func drawLesson(dc *gg.Context, l *model.Lesson, tab lessons.Tab, x, y float64, dayWidth int, hours hourRange, cellHeight float64, loc *time.Location) {
	start := l.StartTime.In(loc)
	end := l.EndTime.In(loc)

	startHour := float64(start.Hour()) + float64(start.Minute())/60.0
	endHour := float64(end.Hour()) + float64(end.Minute())/60.0
	if !isSameDay(start, end) || endHour < startHour {
		endHour = float64(hours.end)
	}

	top := y + (startHour-float64(hours.start))*cellHeight
	height := (endHour - startHour) * cellHeight
	if height < minLessonHeight {
		height = minLessonHeight
	}

	fill := tabColor(tab)
	width := float64(dayWidth) - float64(dayPaddingX*2)

	dc.SetColor(lessonShadowColor)
	dc.DrawRoundedRectangle(x+dayPaddingX+shadowOffset, top+2+shadowOffset, width, height-4, lessonRadius)
	dc.Fill()

	dc.SetColor(fill)
	dc.DrawRoundedRectangle(x+dayPaddingX, top+2, width, height-4, lessonRadius)
	dc.Fill()

	dc.SetColor(darkenColor(fill, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x+dayPaddingX, top+2, width, height-4, lessonRadius)
	dc.Stroke()

	loadFont(dc, lessonFontSize, FontStyleMedium)
	dc.SetColor(lessonTextColor)
	txtX := x + dayPaddingX + 8
	txtY := top + 18
	dc.DrawStringAnchored(formatting.FormatTimeRange(start, end), txtX, txtY, 0, 0)

	if height > 30 {
		loadFont(dc, lessonFontSize-2, FontStyleDefault)
		dc.DrawStringAnchored(truncate(l.Subject.Name, lessonTitleMaxLen), txtX, txtY+16, 0, 0)
	}
}

// truncate обрезает строку по рунам
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// tabColor цвет урока по вкладке
func tabColor(tab lessons.Tab) color.RGBA {
	switch tab {
	case lessons.TabPending:
		return pendingColor
	case lessons.TabUpcoming:
		return upcomingColor
	default:
		return archiveColor
	}
}

// darkenColor затемняет цвет на указанный множитель
func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// drawCurrentTimeLine рисует красную линию текущего времени
func drawCurrentTimeLine(dc *gg.Context, now time.Time, hours hourRange, cellHeight float64, dayWidth int) {
	current := float64(now.Hour()) + float64(now.Minute())/60.0
	if current < float64(hours.start) || current > float64(hours.end) {
		return
	}

	y := float64(headerHeight) + (current-float64(hours.start))*cellHeight
	dc.SetColor(currentTimeColor)
	dc.SetLineWidth(2.0)
	dc.DrawLine(float64(leftLabelsWidth), y, float64(leftLabelsWidth+totalDaysInWeek*dayWidth), y)
	dc.Stroke()
}

// drawLegend рисует легенду справа
func drawLegend(dc *gg.Context, dayWidth int) {
	x := float64(leftLabelsWidth + totalDaysInWeek*dayWidth + 10)
	y := float64(imageHeight) - 100.0

	items := []struct {
		Label string
		Clr   color.Color
	}{
		{formatting.GetTabDisplay(lessons.TabPending).Text, pendingColor},
		{formatting.GetTabDisplay(lessons.TabUpcoming).Text, upcomingColor},
		{formatting.GetTabDisplay(lessons.TabArchive).Text, archiveColor},
	}

	const boxW, boxH = 20.0, 14.0
	for _, item := range items {
		dc.SetColor(item.Clr)
		dc.DrawRoundedRectangle(x, y, boxW, boxH, 3)
		dc.Fill()

		loadFont(dc, legendItemFontSize, FontStyleDefault)
		dc.SetColor(legendItemColor)
		dc.DrawStringAnchored(item.Label, x+boxW+8, y+boxH/2+1, 0, 0.2)
		y += boxH + 14
	}
}

// encodeImage кодирует изображение в PNG
func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatHourLabel(h int) string {
	if h < 10 {
		return "0" + strconv.Itoa(h) + ":00"
	}
	return strconv.Itoa(h) + ":00"
}
