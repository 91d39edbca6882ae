package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/apiclient"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/session"
)

type UserService struct {
	api      *apiclient.Client
	sessions *session.Service
	logger   *zap.Logger
}

func NewUserService(api *apiclient.Client, sessions *session.Service, logger *zap.Logger) *UserService {
	return &UserService{
		api:      api,
		sessions: sessions,
		logger:   logger,
	}
}

// Login входит в аккаунт платформы и привязывает его к пользователю Telegram
func (s *UserService) Login(ctx context.Context, telegramID, chatID int64, form LoginForm) (*model.User, error) {
	form.Username = strings.TrimSpace(form.Username)
	if err := validateForm(form); err != nil {
		return nil, err
	}

	tokens, err := s.api.Login(ctx, form.Username, form.Password)
	if err != nil {
		return nil, err
	}

	if _, err := s.sessions.Login(ctx, telegramID, chatID, "", tokens.Access, tokens.Refresh); err != nil {
		return nil, err
	}

	user, err := s.api.Me(ctx, tokens.Access)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.SetEmail(ctx, telegramID, user.Email); err != nil {
		return nil, err
	}

	s.logger.Info("User logged in",
		zap.Int64("telegram_id", telegramID),
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.Role())))

	return user, nil
}

// Register создаёт аккаунт с одной ролью; вход выполняется отдельно
func (s *UserService) Register(ctx context.Context, form RegisterForm) (string, error) {
	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.TrimSpace(form.Email)
	if err := validateForm(form); err != nil {
		return "", err
	}

	msg, err := s.api.Register(ctx, apiclient.RegisterRequest{
		Username:  form.Username,
		Email:     form.Email,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Password:  form.Password,
		Roles:     []int{form.Role.ID()},
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("User registered", zap.String("username", form.Username), zap.String("role", string(form.Role)))
	return msg, nil
}

// Logout уничтожает токены
func (s *UserService) Logout(ctx context.Context, telegramID int64) error {
	return s.sessions.Logout(ctx, telegramID)
}

// Current текущий пользователь по токену сессии
func (s *UserService) Current(ctx context.Context, sess *model.Session) (*model.User, error) {
	user, err := s.api.Me(ctx, sess.AccessToken)
	if err != nil {
		return nil, err
	}
	if user.Email != "" && user.Email != sess.Email {
		if err := s.sessions.SetEmail(ctx, sess.TelegramID, user.Email); err != nil {
			s.logger.Warn("Failed to remember email", zap.Int64("telegram_id", sess.TelegramID), zap.Error(err))
		}
	}
	return user, nil
}

func (s *UserService) UpdateStudentProfile(ctx context.Context, sess *model.Session, user *model.User, form StudentProfileForm) error {
	profile, ok := user.Student()
	if !ok {
		return ErrWrongRole
	}
	if err := validateForm(form); err != nil {
		return err
	}
	if err := checkHours(form.AvailableHours); err != nil {
		return err
	}

	err := s.api.UpdateStudentProfile(ctx, sess.AccessToken, profile.ID, apiclient.StudentProfileUpdate{
		Bio:              form.Bio,
		TasksDescription: form.TasksDescription,
		Goal:             form.Goal,
		EducationLevel:   form.EducationLevel,
		AvailableHours:   form.AvailableHours,
	})
	if err != nil {
		return err
	}

	profile.Bio = form.Bio
	profile.TasksDescription = form.TasksDescription
	profile.Goal = form.Goal
	profile.EducationLevel = form.EducationLevel
	profile.AvailableHours = form.AvailableHours
	return nil
}

func (s *UserService) UpdateTutorProfile(ctx context.Context, sess *model.Session, user *model.User, form TutorProfileForm) error {
	profile, ok := user.Tutor()
	if !ok {
		return ErrWrongRole
	}
	if err := validateForm(form); err != nil {
		return err
	}
	if err := checkHours(form.AvailableHours); err != nil {
		return err
	}

	hours := form.AvailableHours
	if hours == nil {
		hours = profile.AvailableHours
	}
	subjects := form.SubjectIDs
	if subjects == nil {
		for _, sp := range profile.SubjectPrices {
			subjects = append(subjects, sp.Subject.ID)
		}
	}

	err := s.api.UpdateTutorProfile(ctx, sess.AccessToken, profile.ID, apiclient.TutorProfileUpdate{
		Bio:               form.Bio,
		AvailableHours:    hours,
		Subjects:          subjects,
		WorkingExperience: profile.WorkingExperience,
	})
	if err != nil {
		return err
	}

	profile.Bio = form.Bio
	profile.AvailableHours = hours
	return nil
}

// AddChild привязывает ребёнка к профилю родителя по email
func (s *UserService) AddChild(ctx context.Context, sess *model.Session, user *model.User, form ChildForm) error {
	profile, ok := user.Parent()
	if !ok {
		return ErrWrongRole
	}
	form.Email = strings.TrimSpace(form.Email)
	if err := validateForm(form); err != nil {
		return err
	}

	children := append([]string(nil), profile.Children...)
	for _, c := range children {
		if strings.EqualFold(c, form.Email) {
			return nil
		}
	}
	children = append(children, form.Email)

	if err := s.api.UpdateParentProfile(ctx, sess.AccessToken, profile.ID, apiclient.ParentProfileUpdate{Children: children}); err != nil {
		return fmt.Errorf("add child: %w", err)
	}
	profile.Children = children
	return nil
}
