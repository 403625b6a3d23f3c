package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/comedor-pos/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const (
	topItemsLimit    = 10
	maxDashboardDays = 366
	dateLayout       = "2006-01-02"
)

// ErrInvalidDateRange is returned for reversed or over-long ranges.
var ErrInvalidDateRange = errors.New("end_date must not be before start_date and the range is limited to one year")

// DashboardStore defines the DB methods the dashboard reads.
// Satisfied by *database.Queries; narrow interface for testability.
type DashboardStore interface {
	ListDashboardOrders(ctx context.Context, arg database.ListDashboardOrdersParams) ([]database.ListDashboardOrdersRow, error)
	ListDashboardPayments(ctx context.Context, arg database.ListDashboardPaymentsParams) ([]database.ListDashboardPaymentsRow, error)
	ListExpenses(ctx context.Context, arg database.ListExpensesParams) ([]database.Expense, error)
	GetTopMenuItems(ctx context.Context, arg database.GetTopMenuItemsParams) ([]database.GetTopMenuItemsRow, error)
}

// CategoryTotals groups orders by type and meal, e.g. DELIVERY_LUNCH.
type CategoryTotals struct {
	Orders    int             `json:"orders"`
	Billed    decimal.Decimal `json:"billed"`
	Collected decimal.Decimal `json:"collected"`
}

// MethodTotals sums payments taken with one method.
type MethodTotals struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// DeliveryPersonTotals settles one rider. Orders counts every assigned
// delivery order; Delivered only those handed over (DELIVERED or COMPLETED).
type DeliveryPersonTotals struct {
	DeliveryPersonID string          `json:"delivery_person_id"`
	Name             string          `json:"name"`
	Orders           int             `json:"orders"`
	Delivered        int             `json:"delivered"`
	Billed           decimal.Decimal `json:"billed"`
	Collected        decimal.Decimal `json:"collected"`
	CashCollected    decimal.Decimal `json:"cash_collected"`
	DeliveryFees     decimal.Decimal `json:"delivery_fees"`
}

// DailyTotals is one business date of the series.
type DailyTotals struct {
	Date     string          `json:"date"`
	Orders   int             `json:"orders"`
	Sales    decimal.Decimal `json:"sales"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// TopItem is a best seller by quantity.
type TopItem struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	Quantity   int64           `json:"quantity"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// DashboardSummary is the admin dashboard payload.
type DashboardSummary struct {
	StartDate         string                     `json:"start_date"`
	EndDate           string                     `json:"end_date"`
	Orders            int                        `json:"orders"`
	GrossSales        decimal.Decimal            `json:"gross_sales"`
	Billed            decimal.Decimal            `json:"billed"`
	Expenses          decimal.Decimal            `json:"expenses"`
	Net               decimal.Decimal            `json:"net"`
	Outstanding       decimal.Decimal            `json:"outstanding"`
	AverageTicket     decimal.Decimal            `json:"average_ticket"`
	ByCategory        map[string]CategoryTotals  `json:"by_category"`
	ByPaymentMethod   map[string]MethodTotals    `json:"by_payment_method"`
	ByDeliveryPerson  []DeliveryPersonTotals     `json:"by_delivery_person"`
	ByExpenseCategory map[string]decimal.Decimal `json:"by_expense_category"`
	OrdersByStatus    map[string]int             `json:"orders_by_status"`
	Daily             []DailyTotals              `json:"daily"`
	TopItems          []TopItem                  `json:"top_items"`
}

// DashboardInput is everything Aggregate needs, already loaded.
type DashboardInput struct {
	Start    time.Time
	End      time.Time
	Orders   []database.ListDashboardOrdersRow
	Payments []database.ListDashboardPaymentsRow
	Expenses []database.Expense
	TopItems []database.GetTopMenuItemsRow
}

// DashboardService builds the admin dashboard from the store.
type DashboardService struct {
	store DashboardStore
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(store DashboardStore) *DashboardService {
	return &DashboardService{store: store}
}

// Summary loads the business-date range [start, end] and aggregates it.
func (s *DashboardService) Summary(ctx context.Context, start, end time.Time) (*DashboardSummary, error) {
	if end.Before(start) || end.Sub(start) > maxDashboardDays*24*time.Hour {
		return nil, ErrInvalidDateRange
	}

	startDate := pgtype.Date{Time: start, Valid: true}
	endDate := pgtype.Date{Time: end, Valid: true}

	orders, err := s.store.ListDashboardOrders(ctx, database.ListDashboardOrdersParams{StartDate: startDate, EndDate: endDate})
	if err != nil {
		return nil, fmt.Errorf("list dashboard orders: %w", err)
	}
	payments, err := s.store.ListDashboardPayments(ctx, database.ListDashboardPaymentsParams{StartDate: startDate, EndDate: endDate})
	if err != nil {
		return nil, fmt.Errorf("list dashboard payments: %w", err)
	}
	expenses, err := s.store.ListExpenses(ctx, database.ListExpensesParams{StartDate: startDate, EndDate: endDate})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	top, err := s.store.GetTopMenuItems(ctx, database.GetTopMenuItemsParams{StartDate: startDate, EndDate: endDate, Limit: topItemsLimit})
	if err != nil {
		return nil, fmt.Errorf("get top menu items: %w", err)
	}

	summary := Aggregate(DashboardInput{
		Start:    start,
		End:      end,
		Orders:   orders,
		Payments: payments,
		Expenses: expenses,
		TopItems: top,
	})
	return &summary, nil
}

// orderFacts is what Aggregate remembers about an order while walking payments.
type orderFacts struct {
	row      database.ListDashboardOrdersRow
	category string
	paid     decimal.Decimal
}

// Aggregate rolls orders, payments and expenses into dashboard totals.
// Cancelled orders only count toward OrdersByStatus.
func Aggregate(in DashboardInput) DashboardSummary {
	sum := DashboardSummary{
		StartDate:         in.Start.Format(dateLayout),
		EndDate:           in.End.Format(dateLayout),
		GrossSales:        decimal.Zero,
		Billed:            decimal.Zero,
		Expenses:          decimal.Zero,
		Outstanding:       decimal.Zero,
		AverageTicket:     decimal.Zero,
		ByCategory:        make(map[string]CategoryTotals),
		ByPaymentMethod:   make(map[string]MethodTotals),
		ByDeliveryPerson:  []DeliveryPersonTotals{},
		ByExpenseCategory: make(map[string]decimal.Decimal),
		OrdersByStatus:    make(map[string]int),
		Daily:             []DailyTotals{},
		TopItems:          []TopItem{},
	}

	for _, t := range []database.OrderType{database.OrderTypeTABLE, database.OrderTypeTAKEAWAY, database.OrderTypeDELIVERY} {
		for _, m := range []database.Meal{database.MealBREAKFAST, database.MealLUNCH} {
			sum.ByCategory[CategoryKey(t, m)] = CategoryTotals{Billed: decimal.Zero, Collected: decimal.Zero}
		}
	}
	for _, m := range []database.PaymentMethod{database.PaymentMethodCASH, database.PaymentMethodNEQUI, database.PaymentMethodDAVIPLATA, database.PaymentMethodCARD} {
		sum.ByPaymentMethod[string(m)] = MethodTotals{Amount: decimal.Zero}
	}
	for _, s := range []database.OrderStatus{
		database.OrderStatusPENDING, database.OrderStatusPREPARING, database.OrderStatusREADY,
		database.OrderStatusDELIVERED, database.OrderStatusCOMPLETED, database.OrderStatusCANCELLED,
	} {
		sum.OrdersByStatus[string(s)] = 0
	}

	daily := make(map[string]*DailyTotals)
	var days []string
	for d := in.Start; !d.After(in.End); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		daily[key] = &DailyTotals{Date: key, Sales: decimal.Zero, Expenses: decimal.Zero}
		days = append(days, key)
	}
	dayFor := func(date pgtype.Date) *DailyTotals {
		key := date.Time.Format(dateLayout)
		if d, ok := daily[key]; ok {
			return d
		}
		d := &DailyTotals{Date: key, Sales: decimal.Zero, Expenses: decimal.Zero}
		daily[key] = d
		days = append(days, key)
		return d
	}

	// --- Orders ---
	orders := make(map[uuid.UUID]*orderFacts, len(in.Orders))
	people := make(map[string]*DeliveryPersonTotals)
	for _, o := range in.Orders {
		sum.OrdersByStatus[string(o.Status)]++
		if o.Status == database.OrderStatusCANCELLED {
			continue
		}

		total := numericToDecimal(o.TotalAmount)
		key := CategoryKey(o.OrderType, o.Meal)
		orders[o.ID] = &orderFacts{row: o, category: key, paid: decimal.Zero}

		sum.Orders++
		sum.Billed = sum.Billed.Add(total)

		cat := sum.ByCategory[key]
		cat.Orders++
		cat.Billed = cat.Billed.Add(total)
		sum.ByCategory[key] = cat

		dayFor(o.BusinessDate).Orders++

		if o.OrderType == database.OrderTypeDELIVERY {
			p := deliveryPerson(people, o)
			p.Orders++
			if o.Status == database.OrderStatusDELIVERED || o.Status == database.OrderStatusCOMPLETED {
				p.Delivered++
			}
			p.Billed = p.Billed.Add(total)
			p.DeliveryFees = p.DeliveryFees.Add(numericToDecimal(o.DeliveryFee))
		}
	}

	// --- Payments ---
	for _, p := range in.Payments {
		amount := numericToDecimal(p.Amount)

		method := sum.ByPaymentMethod[string(p.PaymentMethod)]
		method.Count++
		method.Amount = method.Amount.Add(amount)
		sum.ByPaymentMethod[string(p.PaymentMethod)] = method

		sum.GrossSales = sum.GrossSales.Add(amount)

		facts, ok := orders[p.OrderID]
		if !ok {
			continue
		}
		facts.paid = facts.paid.Add(amount)

		cat := sum.ByCategory[facts.category]
		cat.Collected = cat.Collected.Add(amount)
		sum.ByCategory[facts.category] = cat

		day := dayFor(facts.row.BusinessDate)
		day.Sales = day.Sales.Add(amount)

		if facts.row.OrderType == database.OrderTypeDELIVERY {
			person := deliveryPerson(people, facts.row)
			person.Collected = person.Collected.Add(amount)
			if p.PaymentMethod == database.PaymentMethodCASH {
				person.CashCollected = person.CashCollected.Add(amount)
			}
		}
	}

	for _, facts := range orders {
		due := numericToDecimal(facts.row.TotalAmount).Sub(facts.paid)
		if due.IsPositive() {
			sum.Outstanding = sum.Outstanding.Add(due)
		}
	}

	// --- Expenses ---
	for _, e := range in.Expenses {
		amount := numericToDecimal(e.Amount)
		sum.Expenses = sum.Expenses.Add(amount)
		cat := string(e.Category)
		if prev, ok := sum.ByExpenseCategory[cat]; ok {
			sum.ByExpenseCategory[cat] = prev.Add(amount)
		} else {
			sum.ByExpenseCategory[cat] = amount
		}
		day := dayFor(e.ExpenseDate)
		day.Expenses = day.Expenses.Add(amount)
	}

	sum.Net = sum.GrossSales.Sub(sum.Expenses)
	if sum.Orders > 0 {
		sum.AverageTicket = sum.Billed.Div(decimal.NewFromInt(int64(sum.Orders))).Round(2)
	}

	sort.Strings(days)
	for _, key := range days {
		d := daily[key]
		d.Net = d.Sales.Sub(d.Expenses)
		sum.Daily = append(sum.Daily, *d)
	}

	for _, p := range people {
		sum.ByDeliveryPerson = append(sum.ByDeliveryPerson, *p)
	}
	sort.Slice(sum.ByDeliveryPerson, func(i, j int) bool {
		a, b := sum.ByDeliveryPerson[i], sum.ByDeliveryPerson[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.DeliveryPersonID < b.DeliveryPersonID
	})

	for _, t := range in.TopItems {
		sum.TopItems = append(sum.TopItems, TopItem{
			MenuItemID: t.MenuItemID.String(),
			Name:       t.Name,
			Quantity:   t.QuantitySold,
			Revenue:    numericToDecimal(t.Revenue),
		})
	}

	return sum
}

// CategoryKey buckets an order by type and meal, e.g. DELIVERY_LUNCH.
func CategoryKey(t database.OrderType, m database.Meal) string {
	return string(t) + "_" + string(m)
}

const unassignedDeliveryPerson = "UNASSIGNED"

func deliveryPerson(people map[string]*DeliveryPersonTotals, o database.ListDashboardOrdersRow) *DeliveryPersonTotals {
	id, name := unassignedDeliveryPerson, "Unassigned"
	if o.DeliveryPersonID.Valid {
		id = uuid.UUID(o.DeliveryPersonID.Bytes).String()
		name = o.DeliveryPersonName.String
	}
	if p, ok := people[id]; ok {
		return p
	}
	p := &DeliveryPersonTotals{
		DeliveryPersonID: id,
		Name:             name,
		Billed:           decimal.Zero,
		Collected:        decimal.Zero,
		CashCollected:    decimal.Zero,
		DeliveryFees:     decimal.Zero,
	}
	people[id] = p
	return p
}
