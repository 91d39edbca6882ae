package model

// TutorFilter параметры поиска репетиторов
type TutorFilter struct {
	City       string
	Subject    string
	MinPrice   string
	MaxPrice   string
	RemoteOnly bool
}
