package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// Рисует недельную сетку на тестовых уроках, чтобы проверить картинку без бота
func main() {
	output := pflag.StringP("output", "o", "week.png", "output png file")
	offset := pflag.Int("week", 0, "week offset from current")
	pflag.Parse()

	now := time.Now()
	monday := common.WeekStart(now.AddDate(0, 0, 7*(*offset)), time.Local)

	at := func(day, hour int) time.Time {
		return monday.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour)
	}
	lesson := func(id int64, day, from, to int, subject, student string, accepted bool) model.Lesson {
		return model.Lesson{
			ID:           id,
			Tutor:        model.PersonRef{ID: 1, UserFullName: "Анна Петрова"},
			Student:      model.PersonRef{ID: 2, UserFullName: student},
			Subject:      model.Subject{ID: id, Name: subject},
			StartTime:    at(day, from),
			EndTime:      at(day, to),
			PricePerHour: 1500,
			IsAccepted:   accepted,
			AcceptedBy:   model.RoleTutor,
		}
	}

	list := []model.Lesson{
		lesson(1, 0, 9, 10, "Математика", "Иван Смирнов", true),
		lesson(2, 0, 14, 16, "Физика", "Мария Иванова", true),
		lesson(3, 1, 10, 11, "Математика", "Иван Смирнов", false),
		lesson(4, 2, 15, 16, "Английский язык", "Олег Козлов", true),
		lesson(5, 4, 11, 13, "Информатика", "Мария Иванова", false),
		lesson(6, 5, 12, 13, "Физика", "Олег Козлов", true),
	}

	data, err := common.GenerateWeekImage(monday, list, now, time.Local)
	if err != nil {
		fmt.Printf("Ошибка генерации изображения: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*output, data, 0o644); err != nil {
		fmt.Printf("Ошибка сохранения файла: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Изображение сохранено в %s\n", *output)
	fmt.Printf("📅 Неделя с %s\n", monday.Format("02.01.2006"))
	fmt.Printf("📊 Уроков: %d\n", len(list))
}
