package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"

	"github.com/iho/gocommission/internal/domain"
)

// CommissionConfig holds the collaborators of CommissionUseCase.
type CommissionConfig struct {
	TxManager     TransactionManager
	SaleItems     SaleItemRepository
	Beneficiaries BeneficiaryRepository
	Entries       LedgerEntryRepository
	Outbox        OutboxRepository // optional
	IDGen         IDGenerator
	Retrier       Retrier           // optional, runs once when nil
	Cache         ReceiptCache      // optional
	Metrics       CommissionMetrics // optional
	Rates         domain.RateTable
	Logger        zerolog.Logger

	TxTimeout  time.Duration
	ReceiptTTL time.Duration
	Now        func() time.Time
}

// CommissionUseCase processes sale commissions.
type CommissionUseCase struct {
	txManager     TransactionManager
	saleItems     SaleItemRepository
	beneficiaries BeneficiaryRepository
	outbox        OutboxRepository
	idGen         IDGenerator
	retrier       Retrier
	cache         ReceiptCache
	metrics       CommissionMetrics
	rates         domain.RateTable
	logger        zerolog.Logger
	resolver      *AncestorResolver
	writer        *LedgerWriter
	txTimeout     time.Duration
	receiptTTL    time.Duration
	now           func() time.Time
}

// NewCommissionUseCase creates a new CommissionUseCase.
func NewCommissionUseCase(cfg CommissionConfig) *CommissionUseCase {
	uc := &CommissionUseCase{
		txManager:     cfg.TxManager,
		saleItems:     cfg.SaleItems,
		beneficiaries: cfg.Beneficiaries,
		outbox:        cfg.Outbox,
		idGen:         cfg.IDGen,
		retrier:       cfg.Retrier,
		cache:         cfg.Cache,
		metrics:       cfg.Metrics,
		rates:         cfg.Rates,
		logger:        cfg.Logger,
		resolver:      NewAncestorResolver(cfg.Beneficiaries, cfg.Logger),
		writer:        NewLedgerWriter(cfg.Entries, cfg.IDGen),
		txTimeout:     cfg.TxTimeout,
		receiptTTL:    cfg.ReceiptTTL,
		now:           cfg.Now,
	}

	if uc.retrier == nil {
		uc.retrier = noRetry{}
	}

	if uc.metrics == nil {
		uc.metrics = nopMetrics{}
	}

	if uc.txTimeout <= 0 {
		uc.txTimeout = DefaultTransactionTimeout
	}

	if uc.receiptTTL <= 0 {
		uc.receiptTTL = DefaultReceiptTTL
	}

	if uc.now == nil {
		uc.now = func() time.Time { return time.Now().UTC() }
	}

	uc.writer.now = uc.now

	return uc
}

// ProcessCommission pays the stockist, the sponsor and up to ten ancestors of
// a sale item and marks it processed, all in one transaction. Every failure,
// soft or fatal, is returned as a *domain.CommissionError inside the result.
func (uc *CommissionUseCase) ProcessCommission(ctx context.Context, saleItemID string) mo.Result[*domain.Receipt] {
	start := time.Now()

	item, err := uc.saleItems.GetByID(ctx, saleItemID)
	if err != nil {
		return uc.fail(nil, saleItemID, lookupError(saleItemID, err), start)
	}

	if cerr := precheck(item); cerr != nil {
		return uc.fail(item, saleItemID, cerr, start)
	}

	var receipt *domain.Receipt

	err = uc.retrier.Retry(ctx, func() error {
		r, err := uc.processInTx(ctx, saleItemID)
		if err != nil {
			return err
		}

		receipt = r

		return nil
	})
	if err != nil {
		return uc.fail(item, saleItemID, classify(saleItemID, err), start)
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, receipt, uc.receiptTTL); err != nil {
			uc.logger.Warn().Err(err).Str("sale_item_id", saleItemID).Msg("failed to cache receipt")
		}
	}

	for _, p := range receipt.Payouts {
		uc.metrics.RecordPayout(p.Role, p.Amount)
	}

	uc.metrics.RecordOutcome(OutcomeProcessed, time.Since(start))

	uc.logger.Info().
		Str("sale_item_id", saleItemID).
		Str("total_commission", receipt.TotalCommission.StringFixed(2)).
		Int("payouts", len(receipt.Payouts)).
		Int("beneficiaries", receipt.BeneficiaryCount()).
		Msg("commission processed")

	return mo.Ok(receipt)
}

func (uc *CommissionUseCase) processInTx(ctx context.Context, saleItemID string) (*domain.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, domain.NewCommissionError(domain.KindStoreFailure, saleItemID, err)
	}
	defer tx.Rollback(ctx)

	// Lock the row and re-check under the lock: a concurrent winner has
	// already flipped the flag by the time we get here.
	item, err := uc.saleItems.GetByIDForUpdate(ctx, tx, saleItemID)
	if err != nil {
		return nil, lookupError(saleItemID, err)
	}

	if cerr := precheck(item); cerr != nil {
		return nil, cerr
	}

	seller, err := uc.beneficiaries.GetByID(ctx, item.SellerID)
	if err != nil {
		if errors.Is(err, domain.ErrBeneficiaryNotFound) {
			return nil, domain.NewCommissionError(domain.KindSellerNotFound, saleItemID,
				fmt.Errorf("%w: %s", domain.ErrSellerNotFound, item.SellerID))
		}

		return nil, domain.NewCommissionError(domain.KindStoreFailure, saleItemID, err)
	}

	if !seller.CanReceiveCommission() {
		return nil, domain.NewCommissionError(domain.KindSellerInactive, saleItemID,
			fmt.Errorf("%w: %s", domain.ErrSellerInactive, seller.ID))
	}

	receipt := &domain.Receipt{
		SaleItemID: item.ID,
		Subtotal:   item.Subtotal,
	}

	if err := uc.payStockist(ctx, tx, item, receipt); err != nil {
		return nil, err
	}

	sponsorAmount := domain.Calculate(item.Subtotal, uc.rates.Sponsor())
	if !sponsorAmount.IsPositive() {
		return nil, domain.NewCommissionError(domain.KindInvalidCommissionAmount, saleItemID,
			fmt.Errorf("%w: sponsor amount %s", domain.ErrInvalidCommissionAmount, sponsorAmount))
	}

	paid, err := uc.pay(ctx, tx, item, receipt, seller, domain.CommissionTypeSponsor, uc.rates.Sponsor(), sponsorAmount)
	if err != nil {
		return nil, err
	}

	item.SponsorCommission = paid

	if err := uc.payAncestors(ctx, tx, item, receipt, seller); err != nil {
		return nil, err
	}

	total := receipt.PayoutTotal()
	if !total.IsPositive() {
		return nil, domain.NewCommissionError(domain.KindInvalidCommissionAmount, saleItemID,
			fmt.Errorf("%w: total %s", domain.ErrInvalidCommissionAmount, total))
	}

	now := uc.now()
	item.MarkProcessed(total, now)

	receipt.TotalCommission = total
	receipt.BalanceAfterCommission = item.BalanceAfterCommission
	receipt.ProcessedAt = now

	if err := uc.saleItems.MarkProcessed(ctx, tx, item); err != nil {
		if errors.Is(err, domain.ErrAlreadyProcessed) {
			return nil, domain.NewCommissionError(domain.KindAlreadyProcessed, saleItemID, err)
		}

		return nil, domain.NewCommissionError(domain.KindStoreFailure, saleItemID, err)
	}

	if err := uc.writeOutboxEvent(ctx, tx, item, receipt); err != nil {
		return nil, domain.NewCommissionError(domain.KindStoreFailure, saleItemID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.NewCommissionError(domain.KindStoreFailure, saleItemID, err)
	}

	return receipt, nil
}

func (uc *CommissionUseCase) payStockist(ctx context.Context, tx Transaction, item *domain.SaleLineItem, receipt *domain.Receipt) error {
	if item.StockistID == "" {
		return nil
	}

	log := uc.logger.With().Str("sale_item_id", item.ID).Str("stockist_id", item.StockistID).Logger()

	stockist, err := uc.beneficiaries.GetByID(ctx, item.StockistID)
	if err != nil {
		if errors.Is(err, domain.ErrBeneficiaryNotFound) {
			log.Warn().Msg("stockist not found, skipping stockist commission")
			return nil
		}

		return domain.NewCommissionError(domain.KindStoreFailure, item.ID, err)
	}

	if !stockist.CanReceiveCommission() {
		log.Info().Msg("stockist inactive, skipping stockist commission")
		return nil
	}

	amount := domain.Calculate(item.Subtotal, uc.rates.Stockist())
	if !amount.IsPositive() {
		return nil
	}

	paid, err := uc.pay(ctx, tx, item, receipt, stockist, domain.CommissionTypeStockist, uc.rates.Stockist(), amount)
	if err != nil {
		return err
	}

	item.StockistCommission = paid

	return nil
}

func (uc *CommissionUseCase) payAncestors(
	ctx context.Context,
	tx Transaction,
	item *domain.SaleLineItem,
	receipt *domain.Receipt,
	sponsor *domain.Beneficiary,
) error {
	slots, err := uc.resolver.Resolve(ctx, sponsor)
	if err != nil {
		return domain.NewCommissionError(domain.KindStoreFailure, item.ID, err)
	}

	for _, slot := range slots {
		item.RecordLevel(slot.Level, slot.BeneficiaryID, decimal.Zero)

		if slot.Beneficiary == nil {
			continue
		}

		if !slot.Beneficiary.CanReceiveCommission() {
			uc.logger.Info().
				Str("sale_item_id", item.ID).
				Str("ancestor_id", slot.BeneficiaryID).
				Int("level", slot.Level).
				Msg("ancestor inactive, skipping level")

			continue
		}

		rate := uc.rates.Level(slot.Level)

		amount := domain.Calculate(item.Subtotal, rate)
		if !amount.IsPositive() {
			continue
		}

		paid, err := uc.pay(ctx, tx, item, receipt, slot.Beneficiary, domain.ParentLevelType(slot.Level), rate, amount)
		if err != nil {
			return err
		}

		item.RecordLevel(slot.Level, slot.BeneficiaryID, paid)
	}

	return nil
}

// pay writes one entry and adds it to the receipt. The receipt and the returned
// amount use what is stored in the ledger, which for a pre-existing entry may
// differ from rate and amount.
func (uc *CommissionUseCase) pay(
	ctx context.Context,
	tx Transaction,
	item *domain.SaleLineItem,
	receipt *domain.Receipt,
	b *domain.Beneficiary,
	role domain.CommissionType,
	rate, amount decimal.Decimal,
) (decimal.Decimal, error) {
	entry, created, err := uc.writer.CreateEntry(ctx, tx, CreateEntryInput{
		Beneficiary: b,
		SaleItem:    item,
		Role:        role,
		Rate:        rate,
		Amount:      amount,
	})
	if err != nil {
		return decimal.Zero, domain.NewCommissionError(domain.KindStoreFailure, item.ID, err)
	}

	if !created {
		uc.logger.Warn().
			Str("sale_item_id", item.ID).
			Str("beneficiary_id", b.ID).
			Str("role", string(role)).
			Str("entry_id", entry.ID).
			Msg("reusing existing ledger entry")
	}

	receipt.AddPayout(domain.Payout{
		Level:           role.Level(),
		Role:            role,
		BeneficiaryID:   b.ID,
		BeneficiaryName: b.Name,
		Rate:            entry.Rate,
		Amount:          entry.Amount,
		LedgerEntryID:   entry.ID,
	})

	return entry.Amount, nil
}

func (uc *CommissionUseCase) writeOutboxEvent(ctx context.Context, tx Transaction, item *domain.SaleLineItem, receipt *domain.Receipt) error {
	if uc.outbox == nil {
		return nil
	}

	event, err := domain.NewCommissionProcessedOutboxEvent(uc.idGen.Generate(), item, receipt)
	if err != nil {
		return err
	}

	return uc.outbox.Create(ctx, tx, event)
}

func (uc *CommissionUseCase) fail(item *domain.SaleLineItem, saleItemID string, cerr *domain.CommissionError, start time.Time) mo.Result[*domain.Receipt] {
	uc.metrics.RecordOutcome(string(cerr.Kind), time.Since(start))

	if cerr.Soft() {
		uc.logger.Info().
			Str("sale_item_id", saleItemID).
			Str("kind", string(cerr.Kind)).
			Msg("commission not processed")

		return mo.Err[*domain.Receipt](cerr)
	}

	ev := uc.logger.Error().
		Err(cerr.Err).
		Str("sale_item_id", saleItemID).
		Str("kind", string(cerr.Kind))

	if item != nil {
		ev = ev.Str("seller_id", item.SellerID).Str("subtotal", item.Subtotal.String())
	}

	ev.Msg("commission processing failed")

	return mo.Err[*domain.Receipt](cerr)
}

// precheck applies the fast-fail preconditions in order.
func precheck(item *domain.SaleLineItem) *domain.CommissionError {
	if item.CommissionIsProcessed {
		return domain.NewCommissionError(domain.KindAlreadyProcessed, item.ID, nil)
	}

	if !item.HasEligibleSeller() {
		return domain.NewCommissionError(domain.KindNoEligibleSeller, item.ID, nil)
	}

	if !item.Subtotal.IsPositive() {
		return domain.NewCommissionError(domain.KindInvalidAmount, item.ID,
			fmt.Errorf("%w: subtotal %s", domain.ErrInvalidAmount, item.Subtotal))
	}

	return nil
}

func lookupError(saleItemID string, err error) *domain.CommissionError {
	if errors.Is(err, domain.ErrSaleItemNotFound) {
		return domain.NewCommissionError(domain.KindSaleItemNotFound, saleItemID, err)
	}

	return domain.NewCommissionError(domain.KindStoreFailure, saleItemID, err)
}

func classify(saleItemID string, err error) *domain.CommissionError {
	if cerr, ok := domain.AsCommissionError(err); ok {
		return cerr
	}

	return domain.NewCommissionError(domain.KindStoreFailure, saleItemID, err)
}
