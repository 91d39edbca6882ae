package formatting

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency валюта платформы
const Currency = "PLN"

var printer = message.NewPrinter(language.Russian)

// Money форматирует сумму с разделителями разрядов; отрицательные суммы показываются как ноль
func Money(amount float64) string {
	if amount < 0 {
		amount = 0
	}
	if amount == float64(int64(amount)) {
		return printer.Sprintf("%d %s", int64(amount), Currency)
	}
	return printer.Sprintf("%.2f %s", amount, Currency)
}

// PriceRange диапазон цены за час
func PriceRange(min, max float64) string {
	return Money(min) + " – " + Money(max)
}
