package model

import (
	"encoding/json"
	"fmt"
)

// Subject предмет из справочника платформы
type Subject struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SubjectPrice диапазон цены за час, который репетитор указал для предмета
type SubjectPrice struct {
	Subject  Subject `json:"subject"`
	PriceMin float64 `json:"price_min"`
	PriceMax float64 `json:"price_max"`
}

// InRange проверяет попадание цены в диапазон репетитора
func (p SubjectPrice) InRange(price float64) bool {
	return price >= p.PriceMin && price <= p.PriceMax
}

// UnmarshalJSON принимает как объект предмета, так и его числовой id
func (s *Subject) UnmarshalJSON(data []byte) error {
	var id int64
	if err := json.Unmarshal(data, &id); err == nil {
		*s = Subject{ID: id}
		return nil
	}
	type plain Subject
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode subject: %w", err)
	}
	*s = Subject(p)
	return nil
}
