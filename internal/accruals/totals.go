package accruals

import (
	"slices"
	"strings"
	"time"

	"github.com/donaldgifford/concur-accruals/internal/concur"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

// ComputeTotals sums posted amounts of txns whose date (selected by dt)
// falls within [from, to], grouped by card program and by employee.
// Transactions without the selected date, a posted amount or a card
// program are counted in Skipped. Output is sorted by key.
func ComputeTotals(txns []concur.Item, from, to time.Time, dt domain.DateType) domain.CardTotals {
	out := domain.CardTotals{
		DateFrom:  from.Format(concur.DateLayout),
		DateTo:    to.Format(concur.DateLayout),
		DateType:  dt,
		ByProgram: []domain.ProgramTotal{},
		ByUser:    []domain.UserTotal{},
	}

	programs := map[string]*domain.ProgramTotal{}
	users := map[string]*domain.UserTotal{}

	for _, t := range txns {
		d, ok := transactionDate(t, dt)
		if !ok {
			out.Skipped++
			continue
		}
		if d.Before(from) || d.After(to) {
			continue
		}

		posted := t.Object("postedAmount")
		amount, ok := posted.Number("value")
		program := t.Object("account").Object("paymentType").String("id")
		if !ok || program == "" {
			out.Skipped++
			continue
		}
		currency := posted.String("currencyCode")

		userKey := t.String("employeeId")
		if userKey == "" {
			userKey = t.Object("account").String("lastSegment") + " (" + program + ")"
		}

		p, ok := programs[program]
		if !ok {
			p = &domain.ProgramTotal{CardProgramID: program}
			programs[program] = p
		}
		p.Count++
		p.Total += amount
		p.Currency = currency

		u, ok := users[userKey]
		if !ok {
			u = &domain.UserTotal{UserKey: userKey}
			users[userKey] = u
		}
		u.Count++
		u.Total += amount
		u.Currency = currency
	}

	for _, k := range sortedKeys(programs) {
		out.ByProgram = append(out.ByProgram, *programs[k])
	}
	for _, k := range sortedKeys(users) {
		out.ByUser = append(out.ByUser, *users[k])
	}
	return out
}

func transactionDate(t concur.Item, dt domain.DateType) (time.Time, bool) {
	var raw string
	switch dt {
	case domain.DatePosted:
		raw = t.String("postedDate")
	case domain.DateBilling:
		raw = t.Object("statement").String("billingDate")
		if raw == "" {
			raw = t.String("billingDate")
		}
	default:
		raw = t.String("transactionDate")
	}
	return parseDay(raw)
}

// parseDay reads the calendar day from an ISO-8601 date or timestamp.
func parseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < len(concur.DateLayout) {
		return time.Time{}, false
	}
	d, err := time.Parse(concur.DateLayout, s[:len(concur.DateLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
