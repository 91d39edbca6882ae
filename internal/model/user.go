package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role определяет активную роль пользователя на платформе
type Role string

const (
	RoleUnknown Role = ""
	RoleStudent Role = "Student"
	RoleTutor   Role = "Tutor"
	RoleParent  Role = "Parent"
)

// Числовые идентификаторы ролей в API
const (
	RoleIDStudent = 1
	RoleIDTutor   = 2
	RoleIDParent  = 3
)

// RoleFromID переводит идентификатор роли из API в Role
func RoleFromID(id int) Role {
	switch id {
	case RoleIDStudent:
		return RoleStudent
	case RoleIDTutor:
		return RoleTutor
	case RoleIDParent:
		return RoleParent
	default:
		return RoleUnknown
	}
}

// ID возвращает числовой идентификатор роли для API
func (r Role) ID() int {
	switch r {
	case RoleStudent:
		return RoleIDStudent
	case RoleTutor:
		return RoleIDTutor
	case RoleParent:
		return RoleIDParent
	default:
		return 0
	}
}

// Counterpart возвращает роль, которая должна подтвердить урок, предложенный ролью r
func (r Role) Counterpart() Role {
	if r == RoleTutor {
		return RoleStudent
	}
	return RoleTutor
}

type AvailableHour struct {
	DayOfWeek string `json:"day_of_week" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

type WorkingExperience struct {
	Position    string `json:"position"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

// Profile ролевой профиль пользователя. Реализации: *StudentProfile, *TutorProfile, *ParentProfile
type Profile interface {
	Role() Role
	ProfileID() int64
	// Complete сообщает, заполнены ли обязательные поля профиля
	Complete() bool
}

type StudentProfile struct {
	ID               int64           `json:"id"`
	Bio              string          `json:"bio"`
	TasksDescription string          `json:"tasks_description"`
	Goal             string          `json:"goal"`
	EducationLevel   string          `json:"education_level"`
	AvailableHours   []AvailableHour `json:"available_hours"`
}

func (p *StudentProfile) Role() Role       { return RoleStudent }
func (p *StudentProfile) ProfileID() int64 { return p.ID }
func (p *StudentProfile) Complete() bool   { return p.EducationLevel != "" }

type TutorProfile struct {
	ID                int64               `json:"id"`
	Bio               string              `json:"bio"`
	AverageRating     float64             `json:"average_rating"`
	AvailableHours    []AvailableHour     `json:"available_hours"`
	WorkingExperience []WorkingExperience `json:"working_experience"`
	SubjectPrices     []SubjectPrice      `json:"subject_prices"`
}

func (p *TutorProfile) Role() Role       { return RoleTutor }
func (p *TutorProfile) ProfileID() int64 { return p.ID }
func (p *TutorProfile) Complete() bool   { return p.Bio != "" }

// PriceFor ищет диапазон цены по предмету
func (p *TutorProfile) PriceFor(subjectID int64) (SubjectPrice, bool) {
	for _, sp := range p.SubjectPrices {
		if sp.Subject.ID == subjectID {
			return sp, true
		}
	}
	return SubjectPrice{}, false
}

type ParentProfile struct {
	ID       int64    `json:"id"`
	Children []string `json:"children"`
}

func (p *ParentProfile) Role() Role       { return RoleParent }
func (p *ParentProfile) ProfileID() int64 { return p.ID }
func (p *ParentProfile) Complete() bool   { return len(p.Children) > 0 }

// User текущий пользователь или карточка репетитора из поиска
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
	City      string `json:"city"`
	Phone     string `json:"phone"`

	// Profile единственный активный профиль, определяет дашборд
	Profile Profile `json:"-"`
}

type roleRef struct {
	ID int `json:"id"`
}

type userWire struct {
	ID             int64           `json:"id"`
	Username       string          `json:"username"`
	Email          string          `json:"email"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	Avatar         string          `json:"avatar"`
	City           string          `json:"city"`
	Phone          string          `json:"phone"`
	Roles          []roleRef       `json:"roles"`
	StudentProfile *StudentProfile `json:"student_profile"`
	TutorProfile   *TutorProfile   `json:"tutor_profile"`
	ParentProfile  *ParentProfile  `json:"parent_profile"`
}

// UnmarshalJSON выбирает профиль по первой роли; без ролей берётся первый непустой профиль
func (u *User) UnmarshalJSON(data []byte) error {
	var w userWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode user: %w", err)
	}

	*u = User{
		ID:        w.ID,
		Username:  w.Username,
		Email:     w.Email,
		FirstName: w.FirstName,
		LastName:  w.LastName,
		Avatar:    w.Avatar,
		City:      w.City,
		Phone:     w.Phone,
	}

	role := RoleUnknown
	if len(w.Roles) > 0 {
		role = RoleFromID(w.Roles[0].ID)
	}

	switch {
	case role == RoleStudent && w.StudentProfile != nil:
		u.Profile = w.StudentProfile
	case role == RoleTutor && w.TutorProfile != nil:
		u.Profile = w.TutorProfile
	case role == RoleParent && w.ParentProfile != nil:
		u.Profile = w.ParentProfile
	case role == RoleStudent:
		u.Profile = &StudentProfile{}
	case role == RoleTutor:
		u.Profile = &TutorProfile{}
	case role == RoleParent:
		u.Profile = &ParentProfile{}
	case w.TutorProfile != nil:
		u.Profile = w.TutorProfile
	case w.StudentProfile != nil:
		u.Profile = w.StudentProfile
	case w.ParentProfile != nil:
		u.Profile = w.ParentProfile
	}

	return nil
}

// MarshalJSON возвращает форму API: roles + профиль под ключом своей роли
func (u User) MarshalJSON() ([]byte, error) {
	w := userWire{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Avatar:    u.Avatar,
		City:      u.City,
		Phone:     u.Phone,
	}
	switch p := u.Profile.(type) {
	case *StudentProfile:
		w.Roles = []roleRef{{ID: RoleIDStudent}}
		w.StudentProfile = p
	case *TutorProfile:
		w.Roles = []roleRef{{ID: RoleIDTutor}}
		w.TutorProfile = p
	case *ParentProfile:
		w.Roles = []roleRef{{ID: RoleIDParent}}
		w.ParentProfile = p
	}
	return json.Marshal(w)
}

// Role активная роль пользователя
func (u *User) Role() Role {
	if u == nil || u.Profile == nil {
		return RoleUnknown
	}
	return u.Profile.Role()
}

func (u *User) Student() (*StudentProfile, bool) {
	p, ok := u.Profile.(*StudentProfile)
	return p, ok
}

func (u *User) Tutor() (*TutorProfile, bool) {
	p, ok := u.Profile.(*TutorProfile)
	return p, ok
}

func (u *User) Parent() (*ParentProfile, bool) {
	p, ok := u.Profile.(*ParentProfile)
	return p, ok
}

// FullName имя для отображения
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
