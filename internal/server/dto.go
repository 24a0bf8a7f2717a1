package server

import (
	"fmt"
	"time"

	"github.com/mmynk/tripledger/internal/engine"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
	"github.com/mmynk/tripledger/internal/service"
)

// Wire shapes. Dates travel as RFC 3339 strings, monetary values as plain
// decimal strings ("12.34"); both are converted here so the rest of the
// codebase never sees wire formats.

const dateLayout = time.RFC3339

type tripRequest struct {
	Name      string `json:"name"`
	Currency  string `json:"currency"`
	Budget    string `json:"budget,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

type tripResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Currency  string `json:"currency"`
	Budget    string `json:"budget,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

type personRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Color string `json:"color,omitempty"`
}

type personResponse struct {
	ID     string `json:"id"`
	TripID string `json:"trip_id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Color  string `json:"color,omitempty"`
}

type expenseRequest struct {
	PayerID       string             `json:"payer_id"`
	Item          string             `json:"item"`
	Amount        string             `json:"amount"`
	Participants  []string           `json:"participants"`
	Date          string             `json:"date,omitempty"`
	Category      string             `json:"category,omitempty"`
	SplitType     string             `json:"split_type"`
	Weights       map[string]float64 `json:"weights,omitempty"`
	Amounts       map[string]string  `json:"amounts,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	Receipt       string             `json:"receipt,omitempty"`
	PaymentMethod string             `json:"payment_method,omitempty"`
}

type expenseResponse struct {
	ID            string             `json:"id"`
	TripID        string             `json:"trip_id"`
	PayerID       string             `json:"payer_id"`
	Item          string             `json:"item"`
	Amount        string             `json:"amount"`
	Participants  []string           `json:"participants"`
	Date          string             `json:"date"`
	Category      string             `json:"category,omitempty"`
	SplitType     string             `json:"split_type"`
	Weights       map[string]float64 `json:"weights,omitempty"`
	Amounts       map[string]string  `json:"amounts,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	Receipt       string             `json:"receipt,omitempty"`
	PaymentMethod string             `json:"payment_method,omitempty"`
	CreatedAt     int64              `json:"created_at"`
}

type settlementRequest struct {
	FromPersonID string `json:"from_person_id"`
	ToPersonID   string `json:"to_person_id"`
	Amount       string `json:"amount"`
	Date         string `json:"date,omitempty"`
	Method       string `json:"method,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

type settlementResponse struct {
	ID           string `json:"id"`
	TripID       string `json:"trip_id"`
	FromPersonID string `json:"from_person_id"`
	ToPersonID   string `json:"to_person_id"`
	Amount       string `json:"amount"`
	Date         string `json:"date"`
	Method       string `json:"method,omitempty"`
	Notes        string `json:"notes,omitempty"`
	CreatedAt    int64  `json:"created_at"`
}

type planStepResponse struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type budgetResponse struct {
	HasBudget  bool    `json:"has_budget"`
	Budget     string  `json:"budget,omitempty"`
	Spent      string  `json:"spent"`
	Remaining  string  `json:"remaining,omitempty"`
	Percentage float64 `json:"percentage"`
	OverBudget bool    `json:"over_budget"`
}

type summaryResponse struct {
	Trip     tripResponse       `json:"trip"`
	People   []personResponse   `json:"people"`
	Balances map[string]string  `json:"balances"`
	Plan     []planStepResponse `json:"plan"`
	Budget   budgetResponse     `json:"budget"`
}

type categoryTotalResponse struct {
	Category   string  `json:"category"`
	Amount     string  `json:"amount"`
	Percentage float64 `json:"percentage"`
}

type personTotalResponse struct {
	PersonID   string  `json:"person_id"`
	Paid       string  `json:"paid"`
	Percentage float64 `json:"percentage"`
	Payments   int     `json:"payments"`
}

type analyticsResponse struct {
	Trip       tripResponse            `json:"trip"`
	Categories []categoryTotalResponse `json:"categories"`
	Payers     []personTotalResponse   `json:"payers"`
	Frequency  map[string]int          `json:"frequency"`
	NonPayers  []personResponse        `json:"non_payers"`
}

func parseAmount(field, s string) (money.Money, error) {
	m, err := money.Parse(s)
	if err != nil {
		return money.Money{}, fmt.Errorf("%w: %s %q is not a valid amount", service.ErrValidation, field, s)
	}
	return m, nil
}

func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %q is not a valid RFC 3339 date", service.ErrValidation, field, s)
	}
	return t, nil
}

func (req tripRequest) toInput() (service.TripInput, error) {
	in := service.TripInput{Name: req.Name, Currency: req.Currency}
	if req.Budget != "" {
		budget, err := parseAmount("budget", req.Budget)
		if err != nil {
			return service.TripInput{}, err
		}
		in.Budget = &budget
	}
	if req.StartDate != "" {
		t, err := parseDate("start_date", req.StartDate)
		if err != nil {
			return service.TripInput{}, err
		}
		in.StartDate = &t
	}
	if req.EndDate != "" {
		t, err := parseDate("end_date", req.EndDate)
		if err != nil {
			return service.TripInput{}, err
		}
		in.EndDate = &t
	}
	return in, nil
}

func (req expenseRequest) toInput(tripID string) (service.ExpenseInput, error) {
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return service.ExpenseInput{}, err
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return service.ExpenseInput{}, err
	}
	var amounts map[string]money.Money
	if len(req.Amounts) > 0 {
		amounts = make(map[string]money.Money, len(req.Amounts))
		for id, s := range req.Amounts {
			m, err := parseAmount("amounts["+id+"]", s)
			if err != nil {
				return service.ExpenseInput{}, err
			}
			amounts[id] = m
		}
	}
	return service.ExpenseInput{
		TripID:        tripID,
		PayerID:       req.PayerID,
		Item:          req.Item,
		Amount:        amount,
		Participants:  req.Participants,
		Date:          date,
		Category:      req.Category,
		SplitType:     models.SplitType(req.SplitType),
		Weights:       req.Weights,
		Amounts:       amounts,
		Notes:         req.Notes,
		Receipt:       req.Receipt,
		PaymentMethod: req.PaymentMethod,
	}, nil
}

func (req settlementRequest) toInput(tripID string) (service.SettlementInput, error) {
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return service.SettlementInput{}, err
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return service.SettlementInput{}, err
	}
	return service.SettlementInput{
		TripID:       tripID,
		FromPersonID: req.FromPersonID,
		ToPersonID:   req.ToPersonID,
		Amount:       amount,
		Date:         date,
		Method:       req.Method,
		Notes:        req.Notes,
	}, nil
}

func toTripResponse(t *models.Trip) tripResponse {
	resp := tripResponse{
		ID:        t.ID,
		Name:      t.Name,
		Currency:  t.Currency,
		CreatedAt: t.CreatedAt,
	}
	if t.Budget != nil {
		resp.Budget = t.Budget.String()
	}
	if t.StartDate != nil {
		resp.StartDate = t.StartDate.Format(dateLayout)
	}
	if t.EndDate != nil {
		resp.EndDate = t.EndDate.Format(dateLayout)
	}
	return resp
}

func toPersonResponse(p *models.Person) personResponse {
	return personResponse{ID: p.ID, TripID: p.TripID, Name: p.Name, Email: p.Email, Color: p.Color}
}

func toPeopleResponse(people []models.Person) []personResponse {
	out := make([]personResponse, len(people))
	for i := range people {
		out[i] = toPersonResponse(&people[i])
	}
	return out
}

func toExpenseResponse(e *models.Expense) expenseResponse {
	resp := expenseResponse{
		ID:            e.ID,
		TripID:        e.TripID,
		PayerID:       e.PayerID,
		Item:          e.Item,
		Amount:        e.Amount.String(),
		Participants:  e.Participants,
		Date:          e.Date.Format(dateLayout),
		Category:      e.Category,
		SplitType:     string(e.SplitType),
		Weights:       e.Weights,
		Notes:         e.Notes,
		Receipt:       e.Receipt,
		PaymentMethod: e.PaymentMethod,
		CreatedAt:     e.CreatedAt,
	}
	if len(e.Amounts) > 0 {
		resp.Amounts = make(map[string]string, len(e.Amounts))
		for id, m := range e.Amounts {
			resp.Amounts[id] = m.String()
		}
	}
	return resp
}

func toSettlementResponse(s *models.Settlement) settlementResponse {
	return settlementResponse{
		ID:           s.ID,
		TripID:       s.TripID,
		FromPersonID: s.FromPersonID,
		ToPersonID:   s.ToPersonID,
		Amount:       s.Amount.String(),
		Date:         s.Date.Format(dateLayout),
		Method:       s.Method,
		Notes:        s.Notes,
		CreatedAt:    s.CreatedAt,
	}
}

func toBalancesResponse(balances map[string]money.Money) map[string]string {
	out := make(map[string]string, len(balances))
	for id, m := range balances {
		out[id] = m.String()
	}
	return out
}

func toPlanResponse(steps []engine.PlanStep) []planStepResponse {
	out := make([]planStepResponse, len(steps))
	for i, step := range steps {
		out[i] = planStepResponse{From: step.From, To: step.To, Amount: step.Amount.String()}
	}
	return out
}

func toBudgetResponse(b engine.BudgetStatus) budgetResponse {
	resp := budgetResponse{
		HasBudget:  b.HasBudget,
		Spent:      b.Spent.String(),
		Percentage: b.Percentage,
		OverBudget: b.OverBudget,
	}
	if b.HasBudget {
		resp.Budget = b.Budget.String()
		resp.Remaining = b.Remaining.String()
	}
	return resp
}

func toSummaryResponse(s *service.Summary) summaryResponse {
	return summaryResponse{
		Trip:     toTripResponse(&s.Trip),
		People:   toPeopleResponse(s.People),
		Balances: toBalancesResponse(s.Balances),
		Plan:     toPlanResponse(s.Plan),
		Budget:   toBudgetResponse(s.Budget),
	}
}

func toAnalyticsResponse(a *service.Analytics) analyticsResponse {
	categories := make([]categoryTotalResponse, len(a.Categories))
	for i, c := range a.Categories {
		categories[i] = categoryTotalResponse{Category: c.Category, Amount: c.Amount.String(), Percentage: c.Percentage}
	}
	payers := make([]personTotalResponse, len(a.Payers))
	for i, p := range a.Payers {
		payers[i] = personTotalResponse{PersonID: p.PersonID, Paid: p.Paid.String(), Percentage: p.Percentage, Payments: p.Payments}
	}
	return analyticsResponse{
		Trip:       toTripResponse(&a.Trip),
		Categories: categories,
		Payers:     payers,
		Frequency:  a.Frequency,
		NonPayers:  toPeopleResponse(a.NonPayers),
	}
}
