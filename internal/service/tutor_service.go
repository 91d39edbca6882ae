package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/apiclient"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

type TutorService struct {
	api    *apiclient.Client
	logger *zap.Logger
}

func NewTutorService(api *apiclient.Client, logger *zap.Logger) *TutorService {
	return &TutorService{api: api, logger: logger}
}

// Search ищет репетиторов: рейтинг по убыванию, при равном рейтинге сначала из города пользователя
func (s *TutorService) Search(ctx context.Context, sess *model.Session, user *model.User, filter model.TutorFilter) ([]model.User, error) {
	tutors, err := s.api.Tutors(ctx, sess.AccessToken, filter)
	if err != nil {
		return nil, err
	}

	city := ""
	if user != nil {
		city = user.City
	}
	SortTutors(tutors, city)

	s.logger.Debug("Tutor search",
		zap.Int64("telegram_id", sess.TelegramID),
		zap.Int("found", len(tutors)))
	return tutors, nil
}

// SortTutors сортировка результатов поиска на месте
func SortTutors(tutors []model.User, city string) {
	sort.SliceStable(tutors, func(i, j int) bool {
		ri, rj := rating(&tutors[i]), rating(&tutors[j])
		if ri != rj {
			return ri > rj
		}
		if city == "" {
			return false
		}
		return sameCity(tutors[i].City, city) && !sameCity(tutors[j].City, city)
	})
}

func rating(u *model.User) float64 {
	if p, ok := u.Tutor(); ok {
		return p.AverageRating
	}
	return 0
}

func sameCity(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Find репетитор из последнего поиска по id профиля
func Find(tutors []model.User, profileID int64) (*model.User, bool) {
	for i := range tutors {
		if p, ok := tutors[i].Tutor(); ok && p.ID == profileID {
			return &tutors[i], true
		}
	}
	return nil, false
}

func (s *TutorService) Subjects(ctx context.Context, sess *model.Session) ([]model.Subject, error) {
	return s.api.Subjects(ctx, sess.AccessToken)
}
