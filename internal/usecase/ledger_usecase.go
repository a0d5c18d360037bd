package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/billsplit/internal/domain"
	"github.com/iho/billsplit/internal/infrastructure/metrics"
)

// forecastMonths is how far ahead the summary projects open installments.
const forecastMonths = 6

// LedgerUseCase computes per-party balances. It is strictly read-side:
// every call re-derives the carry-forward from the full raw history, so
// closings, imports and manual edits can never leave stale aggregates.
type LedgerUseCase struct {
	txRepo      TransactionRepository
	paymentRepo PaymentRepository
	wdRepo      WithdrawalRepository
	closingRepo ClosingRepository
	invoiceRepo InvoiceRepository
	idGen       IDGenerator
	cache       Cache
	cacheTTL    time.Duration
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase. cache may be nil to
// disable summary caching.
func NewLedgerUseCase(
	txRepo TransactionRepository,
	paymentRepo PaymentRepository,
	wdRepo WithdrawalRepository,
	closingRepo ClosingRepository,
	invoiceRepo InvoiceRepository,
	idGen IDGenerator,
	cache Cache,
	cacheTTL time.Duration,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRepo:      txRepo,
		paymentRepo: paymentRepo,
		wdRepo:      wdRepo,
		closingRepo: closingRepo,
		invoiceRepo: invoiceRepo,
		idGen:       idGen,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
		metrics:     m,
	}
}

// MonthForecast is one month of expected installment charges.
type MonthForecast struct {
	Month string
	Eu    decimal.Decimal
	Dinda decimal.Decimal
	Total decimal.Decimal
}

// LedgerSummary is the full picture of one billing month.
type LedgerSummary struct {
	Month string

	// Current-month invoice, deduplicated by hash.
	InvoiceTotal decimal.Decimal
	ShareEu      decimal.Decimal
	ShareDinda   decimal.Decimal
	PendingCount int

	// Raw and effective payments of the current month.
	PaidEu             decimal.Decimal
	PaidDinda          decimal.Decimal
	WithdrawnEu        decimal.Decimal
	WithdrawnDinda     decimal.Decimal
	EffectivePaidEu    decimal.Decimal
	EffectivePaidDinda decimal.Decimal

	// Carry-forward from months before this one. Only "eu" carries.
	PriorBalanceEu decimal.Decimal
	PriorCreditEu  decimal.Decimal
	PriorDebtEu    decimal.Decimal

	// Final balances: positive is debt toward Dinda, negative is credit.
	BalanceEu    decimal.Decimal
	BalanceDinda decimal.Decimal

	// Sum of installments finishing this month.
	FinalInstallmentsTotal decimal.Decimal

	Forecast []MonthForecast
}

// ComputeLedger returns the summary for a month, from cache when fresh.
func (uc *LedgerUseCase) ComputeLedger(ctx context.Context, month string) (*LedgerSummary, error) {
	if !domain.ValidMonth(month) {
		return nil, domain.ErrInvalidMonth
	}

	cacheKey := "ledger:" + month

	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, cacheKey); err == nil {
			var summary LedgerSummary
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				uc.metrics.ObserveLedgerCache("hit")

				return &summary, nil
			}
		}

		uc.metrics.ObserveLedgerCache("miss")
	}

	summary, err := uc.computeFresh(ctx, month)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if payload, err := json.Marshal(summary); err == nil {
			if err := uc.cache.Set(ctx, cacheKey, string(payload), uc.cacheTTL); err != nil {
				uc.logger.Warn().Err(err).Str("month", month).Msg("could not cache ledger summary")
			}
		}
	}

	return summary, nil
}

func (uc *LedgerUseCase) computeFresh(ctx context.Context, month string) (*LedgerSummary, error) {
	transactions, err := uc.txRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	payments, err := uc.paymentRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	withdrawals, err := uc.wdRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	uc.metrics.ObserveLedger()

	return ComputeSummary(month, transactions, payments, withdrawals), nil
}

// ComputeSummary is the pure balance aggregation. It walks every month
// before the viewed one in chronological order accumulating each party's
// purchases minus effective payments, then settles the viewed month.
//
// The carry-forward is deliberately asymmetric: the card is Dinda's, so
// only "eu" brings prior credit or debt into the viewed month; Dinda's
// history is accumulated for reporting but her balance is always
// per-month. Withdrawals follow the same house rule: cash taken by "eu"
// reduces eu's effective payment and counts as a payment by Dinda, while
// cash taken by Dinda raises eu's effective payment.
func ComputeSummary(
	month string,
	transactions []*domain.Transaction,
	payments []*domain.Payment,
	withdrawals []*domain.Withdrawal,
) *LedgerSummary {
	timeline := domain.Timeline(
		transactionMonths(transactions),
		paymentMonths(payments),
		withdrawalMonths(withdrawals),
		[]string{month},
	)

	// Dinda's balance never carries over, so only eu's history is walked.
	priorEu := decimal.Zero

	for _, m := range timeline {
		if m >= month {
			break
		}

		purchasesEu, _ := purchaseTotals(transactions, m)
		paidEu, _ := paymentTotals(payments, m)
		takenEu, takenDinda := withdrawalTotals(withdrawals, m)

		effectiveEu := paidEu.Add(takenDinda).Sub(takenEu)

		priorEu = priorEu.Add(purchasesEu).Sub(effectiveEu)
	}

	priorCreditEu := decimal.Zero
	priorDebtEu := decimal.Zero

	switch {
	case priorEu.IsNegative():
		priorCreditEu = priorEu.Neg()
	case priorEu.IsPositive():
		priorDebtEu = priorEu
	}

	// Current month, one count per unique fact.
	unique := dedupeByHash(monthTransactions(transactions, month))

	total := decimal.Zero
	shareEu := decimal.Zero
	shareDinda := decimal.Zero
	pending := 0

	for _, tx := range unique {
		total = total.Add(tx.Amount)

		switch tx.Owner {
		case domain.OwnerEu:
			shareEu = shareEu.Add(tx.Amount)
		case domain.OwnerDinda:
			shareDinda = shareDinda.Add(tx.Amount)
		case domain.OwnerPending:
			pending++
		}
	}

	// A month with nothing imported yet still has expected charges if open
	// installments from other months land on it.
	if total.IsZero() {
		if projected, ok := projectedMonthTotals(transactions, month); ok {
			total = projected.Total
			shareEu = projected.Eu
			shareDinda = projected.Dinda
		}
	}

	paidEu, paidDinda := paymentTotals(payments, month)
	takenEu, takenDinda := withdrawalTotals(withdrawals, month)

	finalTotal := decimal.Zero

	for _, tx := range monthTransactions(transactions, month) {
		if tx.FinalInstallment() {
			finalTotal = finalTotal.Add(tx.Amount)
		}
	}

	effectiveEu := paidEu.Add(takenDinda).Sub(takenEu).Add(priorCreditEu)
	effectiveDinda := paidDinda.Add(takenEu)

	balanceEu := priorDebtEu.Add(shareEu).Sub(effectiveEu)
	balanceDinda := shareDinda.Sub(effectiveDinda)

	return &LedgerSummary{
		Month:                  month,
		InvoiceTotal:           total,
		ShareEu:                shareEu,
		ShareDinda:             shareDinda,
		PendingCount:           pending,
		PaidEu:                 paidEu,
		PaidDinda:              paidDinda,
		WithdrawnEu:            takenEu,
		WithdrawnDinda:         takenDinda,
		EffectivePaidEu:        effectiveEu,
		EffectivePaidDinda:     effectiveDinda,
		PriorBalanceEu:         priorEu,
		PriorCreditEu:          priorCreditEu,
		PriorDebtEu:            priorDebtEu,
		BalanceEu:              balanceEu,
		BalanceDinda:           balanceDinda,
		FinalInstallmentsTotal: finalTotal,
		Forecast:               forecast(transactions, month),
	}
}

// forecast projects the viewed month's open installments over the next
// six months.
func forecast(transactions []*domain.Transaction, month string) []MonthForecast {
	byMonth := make(map[string]*MonthForecast)

	for _, tx := range monthTransactions(transactions, month) {
		if !tx.OpenInstallment() {
			continue
		}

		for i := 1; i <= tx.RemainingInstallments(); i++ {
			m := domain.AddMonths(month, i)

			entry, ok := byMonth[m]
			if !ok {
				entry = &MonthForecast{Month: m, Eu: decimal.Zero, Dinda: decimal.Zero, Total: decimal.Zero}
				byMonth[m] = entry
			}

			switch tx.Owner {
			case domain.OwnerEu:
				entry.Eu = entry.Eu.Add(tx.Amount)
			case domain.OwnerDinda:
				entry.Dinda = entry.Dinda.Add(tx.Amount)
			}

			entry.Total = entry.Total.Add(tx.Amount)
		}
	}

	months := make([]MonthForecast, 0, forecastMonths)

	for i := 1; i <= forecastMonths; i++ {
		m := domain.AddMonths(month, i)

		if entry, ok := byMonth[m]; ok {
			months = append(months, *entry)

			continue
		}

		months = append(months, MonthForecast{Month: m, Eu: decimal.Zero, Dinda: decimal.Zero, Total: decimal.Zero})
	}

	return months
}

// projectedMonthTotals spreads every installment plan in the ledger over
// its full schedule and returns the slice landing on the given month.
func projectedMonthTotals(transactions []*domain.Transaction, month string) (MonthForecast, bool) {
	totals := MonthForecast{Month: month, Eu: decimal.Zero, Dinda: decimal.Zero, Total: decimal.Zero}
	found := false

	for _, tx := range transactions {
		if tx.CurrentInstallment <= 0 || tx.TotalInstallments <= 0 {
			continue
		}

		// The installment landing on the given month, if the plan reaches it.
		landing := tx.CurrentInstallment + domain.MonthsBetween(tx.ReferenceMonth, month)
		if landing < 1 || landing > tx.TotalInstallments {
			continue
		}

		found = true
		totals.Total = totals.Total.Add(tx.Amount)

		switch tx.Owner {
		case domain.OwnerEu:
			totals.Eu = totals.Eu.Add(tx.Amount)
		case domain.OwnerDinda:
			totals.Dinda = totals.Dinda.Add(tx.Amount)
		}
	}

	return totals, found
}

// CloseResult is the outcome of closing a month.
type CloseResult struct {
	Closings []*domain.MonthlyClosing
	Summary  *LedgerSummary
}

// CloseMonth snapshots both parties' final balances as MonthlyClosing
// records. The snapshot is informational: later computations still derive
// carry-forward from raw history.
func (uc *LedgerUseCase) CloseMonth(ctx context.Context, month string) (*CloseResult, error) {
	if !domain.ValidMonth(month) {
		return nil, domain.ErrInvalidMonth
	}

	summary, err := uc.computeFresh(ctx, month)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	closings := []*domain.MonthlyClosing{
		{ID: uc.idGen.Generate(), Month: month, Party: domain.OwnerEu, FinalBalance: summary.BalanceEu, CreatedAt: now},
		{ID: uc.idGen.Generate(), Month: month, Party: domain.OwnerDinda, FinalBalance: summary.BalanceDinda, CreatedAt: now},
	}

	for _, closing := range closings {
		if err := uc.closingRepo.Create(ctx, closing); err != nil {
			return nil, err
		}
	}

	uc.metrics.ObserveClose()
	uc.logger.Info().Str("month", month).
		Str("balance_eu", summary.BalanceEu.String()).
		Str("balance_dinda", summary.BalanceDinda.String()).
		Msg("month closed")

	return &CloseResult{Closings: closings, Summary: summary}, nil
}

// Closings returns the snapshots recorded for a month, newest first. A
// month closed more than once keeps every snapshot.
func (uc *LedgerUseCase) Closings(ctx context.Context, month string) ([]*domain.MonthlyClosing, error) {
	if !domain.ValidMonth(month) {
		return nil, domain.ErrInvalidMonth
	}

	return uc.closingRepo.ListByMonth(ctx, month)
}

// InstallmentReport lists each party's open installments in a month,
// deduplicated, with the amount still owed after that month.
type InstallmentReport struct {
	Month          string
	Eu             []*domain.Transaction
	Dinda          []*domain.Transaction
	RemainingEu    decimal.Decimal
	RemainingDinda decimal.Decimal
}

// OpenInstallments reports the open installment plans visible in a month.
func (uc *LedgerUseCase) OpenInstallments(ctx context.Context, month string) (*InstallmentReport, error) {
	if !domain.ValidMonth(month) {
		return nil, domain.ErrInvalidMonth
	}

	transactions, err := uc.txRepo.ListByReferenceMonth(ctx, month)
	if err != nil {
		return nil, err
	}

	report := &InstallmentReport{
		Month:          month,
		RemainingEu:    decimal.Zero,
		RemainingDinda: decimal.Zero,
	}

	seen := make(map[string]bool)

	for _, tx := range transactions {
		if !tx.OpenInstallment() {
			continue
		}

		key := tx.UniqueHash
		if key == "" {
			key = tx.Description + "_" + domain.FormatAmount(tx.Amount)
		}

		if seen[key] {
			continue
		}

		seen[key] = true

		switch tx.Owner {
		case domain.OwnerEu:
			report.Eu = append(report.Eu, tx)
			report.RemainingEu = report.RemainingEu.Add(tx.RemainingAmount())
		case domain.OwnerDinda:
			report.Dinda = append(report.Dinda, tx)
			report.RemainingDinda = report.RemainingDinda.Add(tx.RemainingAmount())
		}
	}

	return report, nil
}

// DeleteMonth wipes a month's imported transactions along with its invoice
// metadata. Payments and withdrawals are kept; they were entered by hand.
func (uc *LedgerUseCase) DeleteMonth(ctx context.Context, month string) (int64, error) {
	if !domain.ValidMonth(month) {
		return 0, domain.ErrInvalidMonth
	}

	removed, err := uc.txRepo.DeleteByReferenceMonth(ctx, month)
	if err != nil {
		return 0, err
	}

	if err := uc.invoiceRepo.DeleteByMonth(ctx, month); err != nil && !errors.Is(err, domain.ErrInvoiceNotFound) {
		uc.logger.Warn().Err(err).Str("month", month).Msg("could not delete invoice metadata")
	}

	if uc.cache != nil {
		if err := uc.cache.Delete(ctx, "ledger:"+month); err != nil {
			uc.logger.Warn().Err(err).Str("month", month).Msg("could not invalidate ledger cache")
		}
	}

	uc.logger.Info().Str("month", month).Int64("removed", removed).Msg("month wiped")

	return removed, nil
}

// Transactions returns a month's raw transactions, projections included.
func (uc *LedgerUseCase) Transactions(ctx context.Context, month string) ([]*domain.Transaction, error) {
	if !domain.ValidMonth(month) {
		return nil, domain.ErrInvalidMonth
	}

	return uc.txRepo.ListByReferenceMonth(ctx, month)
}

// DeleteTransaction removes a single transaction by ID.
func (uc *LedgerUseCase) DeleteTransaction(ctx context.Context, id string) error {
	return uc.txRepo.Delete(ctx, id)
}

// Invoices lists the imported invoice metadata, one entry per month.
func (uc *LedgerUseCase) Invoices(ctx context.Context) ([]*domain.Invoice, error) {
	return uc.invoiceRepo.List(ctx)
}

// UpsertInvoice stores or refreshes a month's invoice metadata. Blank
// fields keep whatever an earlier import or edit recorded, so setting the
// due date does not wipe the imported file name.
func (uc *LedgerUseCase) UpsertInvoice(ctx context.Context, month, fileName, dueDate string) (*domain.Invoice, error) {
	if !domain.ValidMonth(month) {
		return nil, domain.ErrInvalidMonth
	}

	if existing, err := uc.invoiceRepo.GetByMonth(ctx, month); err == nil {
		if fileName == "" {
			fileName = existing.FileName
		}
		if dueDate == "" {
			dueDate = existing.DueDate
		}
	}

	invoice := &domain.Invoice{
		ReferenceMonth: month,
		FileName:       fileName,
		DueDate:        dueDate,
	}
	if err := uc.invoiceRepo.Upsert(ctx, invoice); err != nil {
		return nil, err
	}

	return invoice, nil
}

func monthTransactions(transactions []*domain.Transaction, month string) []*domain.Transaction {
	var out []*domain.Transaction
	for _, tx := range transactions {
		if tx.ReferenceMonth == month {
			out = append(out, tx)
		}
	}

	return out
}

func dedupeByHash(transactions []*domain.Transaction) []*domain.Transaction {
	seen := make(map[string]bool)

	var out []*domain.Transaction
	for _, tx := range transactions {
		key := tx.DedupKey()
		if seen[key] {
			continue
		}

		seen[key] = true
		out = append(out, tx)
	}

	return out
}

func purchaseTotals(transactions []*domain.Transaction, month string) (eu, dinda decimal.Decimal) {
	eu, dinda = decimal.Zero, decimal.Zero

	for _, tx := range transactions {
		if tx.ReferenceMonth != month {
			continue
		}

		switch tx.Owner {
		case domain.OwnerEu:
			eu = eu.Add(tx.Amount)
		case domain.OwnerDinda:
			dinda = dinda.Add(tx.Amount)
		}
	}

	return eu, dinda
}

func paymentTotals(payments []*domain.Payment, month string) (eu, dinda decimal.Decimal) {
	eu, dinda = decimal.Zero, decimal.Zero

	for _, p := range payments {
		if p.ReferenceMonth != month {
			continue
		}

		switch p.Payer {
		case domain.OwnerEu:
			eu = eu.Add(p.Amount)
		case domain.OwnerDinda:
			dinda = dinda.Add(p.Amount)
		}
	}

	return eu, dinda
}

func withdrawalTotals(withdrawals []*domain.Withdrawal, month string) (eu, dinda decimal.Decimal) {
	eu, dinda = decimal.Zero, decimal.Zero

	for _, w := range withdrawals {
		if w.ReferenceMonth != month {
			continue
		}

		switch w.Taker {
		case domain.OwnerEu:
			eu = eu.Add(w.Amount)
		case domain.OwnerDinda:
			dinda = dinda.Add(w.Amount)
		}
	}

	return eu, dinda
}

func transactionMonths(transactions []*domain.Transaction) []string {
	months := make([]string, 0, len(transactions))
	for _, tx := range transactions {
		months = append(months, tx.ReferenceMonth)
	}

	return months
}

func paymentMonths(payments []*domain.Payment) []string {
	months := make([]string, 0, len(payments))
	for _, p := range payments {
		months = append(months, p.ReferenceMonth)
	}

	return months
}

func withdrawalMonths(withdrawals []*domain.Withdrawal) []string {
	months := make([]string, 0, len(withdrawals))
	for _, w := range withdrawals {
		months = append(months, w.ReferenceMonth)
	}

	return months
}
