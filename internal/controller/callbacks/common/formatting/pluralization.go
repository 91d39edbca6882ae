package formatting

import "fmt"

// Pluralize выбирает форму слова для числа: one (1, 21), few (2-4, 22-24), many (остальное)
func Pluralize(count int, one, few, many string) string {
	if count < 0 {
		count = -count
	}
	if count%10 == 1 && count%100 != 11 {
		return one
	}
	if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
		return few
	}
	return many
}

// PluralizeLessons возвращает правильное склонение слова "урок"
func PluralizeLessons(count int) string {
	return Pluralize(count, "урок", "урока", "уроков")
}

// PluralizeTutors возвращает правильное склонение слова "репетитор"
func PluralizeTutors(count int) string {
	return Pluralize(count, "репетитор", "репетитора", "репетиторов")
}

func PluralizeDays(count int) string {
	return Pluralize(count, "день", "дня", "дней")
}

func PluralizeHours(count int) string {
	return Pluralize(count, "час", "часа", "часов")
}

func PluralizeMinutes(count int) string {
	return Pluralize(count, "минута", "минуты", "минут")
}

// CountLessons "3 урока"
func CountLessons(count int) string {
	return fmt.Sprintf("%d %s", count, PluralizeLessons(count))
}
