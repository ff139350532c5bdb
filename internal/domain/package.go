package domain

// CreditPackage пакет кредитов из каталога (JSON-файл или встроенный дефолт)
type CreditPackage struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Credits    int64  `json:"credits"`
	Bonus      int64  `json:"bonus,omitempty"` // бонусные кредиты сверх базовых
	PriceStars int64  `json:"price_stars"`     // цена в Stars (XTR, целое)
	PriceRub   int64  `json:"price_rub"`       // цена в рублях (целое, сумма провайдера "NNN.00")
	Popular    bool   `json:"popular,omitempty"`
}

// TotalCredits сколько кредитов начислить за пакет (с бонусом)
func (p *CreditPackage) TotalCredits() int64 {
	return p.Credits + p.Bonus
}
