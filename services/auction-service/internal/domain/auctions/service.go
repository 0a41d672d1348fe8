package auctions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/floroz/bidmaster/pkg/database"
	"github.com/floroz/bidmaster/pkg/events"
)

// Config holds the lifecycle rules that operators may tune
type Config struct {
	ReviewGraceWindow time.Duration
	MaxDurationDays   int
	PlaceholderImage  string
}

// Service is the auction lifecycle controller
type Service struct {
	txManager   database.TransactionManager
	auctionRepo AuctionRepository
	bidReader   HighestBidReader
	outbox      OutboxWriter
	cache       AuctionCache
	cfg         Config
	logger      *slog.Logger
	now         func() time.Time
}

// NewService creates a new lifecycle service. A nil cache disables caching.
func NewService(
	txManager database.TransactionManager,
	auctionRepo AuctionRepository,
	bidReader HighestBidReader,
	outbox OutboxWriter,
	cache AuctionCache,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	return &Service{
		txManager:   txManager,
		auctionRepo: auctionRepo,
		bidReader:   bidReader,
		outbox:      outbox,
		cache:       cache,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *Service) validateDuration(days int) error {
	if days < 1 || days > s.cfg.MaxDurationDays {
		return fmt.Errorf("%w: must be between 1 and %d days", ErrInvalidDuration, s.cfg.MaxDurationDays)
	}
	return nil
}

// CreateAuction stores a new listing awaiting admin verification
func (s *Service) CreateAuction(ctx context.Context, cmd CreateAuctionCommand) (*Auction, error) {
	if strings.TrimSpace(cmd.Title) == "" || strings.TrimSpace(cmd.Category) == "" || strings.TrimSpace(cmd.ItemCondition) == "" {
		return nil, ErrInvalidAuction
	}
	if cmd.StartingPrice <= 0 {
		return nil, ErrInvalidStartingPrice
	}
	if cmd.ReservePrice != nil && *cmd.ReservePrice < cmd.StartingPrice {
		return nil, ErrInvalidReservePrice
	}
	if err := s.validateDuration(cmd.DurationDays); err != nil {
		return nil, err
	}

	images := cmd.Images
	if len(images) == 0 && s.cfg.PlaceholderImage != "" {
		images = []string{s.cfg.PlaceholderImage}
	}

	now := s.now().UTC()
	auction := &Auction{
		ID:            uuid.New(),
		SellerID:      cmd.SellerID,
		Title:         strings.TrimSpace(cmd.Title),
		Category:      strings.TrimSpace(cmd.Category),
		ItemCondition: strings.TrimSpace(cmd.ItemCondition),
		Description:   cmd.Description,
		StartingPrice: cmd.StartingPrice,
		ReservePrice:  cmd.ReservePrice,
		Images:        images,
		DurationDays:  cmd.DurationDays,
		EndsAt:        now.AddDate(0, 0, cmd.DurationDays),
		Status:        StatusPendingVerification,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.inTx(ctx, "create auction", func(tx pgx.Tx) error {
		if err := s.auctionRepo.CreateAuction(ctx, tx, auction); err != nil {
			return err
		}
		return s.saveEvent(ctx, tx, events.EventTypeAuctionSubmitted, auction.ID, now, map[string]any{
			"seller_id":      auction.SellerID.String(),
			"starting_price": int64(auction.StartingPrice),
			"ends_at":        auction.EndsAt.Format(time.RFC3339),
		})
	})
	if err != nil {
		return nil, err
	}
	return auction, nil
}

// GetAuction reads an auction through the snapshot cache
func (s *Service) GetAuction(ctx context.Context, auctionID uuid.UUID) (*Auction, error) {
	if cached, ok := s.cache.Get(ctx, auctionID); ok {
		return cached, nil
	}

	var auction *Auction
	err := database.RetryRead(ctx, func(ctx context.Context) error {
		var err error
		auction, err = s.auctionRepo.GetAuctionByID(ctx, auctionID)
		return err
	})
	if err != nil {
		return nil, WrapStoreError("get auction", err)
	}

	s.cache.Set(ctx, auction)
	return auction, nil
}

// DecideVerification applies an admin decision to a pending auction, or
// revises a decision made within the grace window.
func (s *Service) DecideVerification(ctx context.Context, cmd DecideVerificationCommand) (*Auction, error) {
	var next Status
	switch cmd.Decision {
	case DecisionApprove:
		next = StatusActive
	case DecisionReject:
		if strings.TrimSpace(cmd.RejectionReason) == "" || strings.TrimSpace(cmd.RejectionMessage) == "" {
			return nil, ErrMissingRejectionDetails
		}
		next = StatusRejected
	case DecisionMoreInfo:
		next = StatusMoreInfo
	default:
		return nil, ErrInvalidDecision
	}

	var auction *Auction
	err := s.inTx(ctx, "decide verification", func(tx pgx.Tx) error {
		var err error
		auction, err = s.auctionRepo.GetAuctionByIDForUpdate(ctx, tx, cmd.AuctionID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		if !s.reviewable(auction, next, now) {
			return ErrNotReviewable
		}

		auction.Status = next
		auction.VerifiedBy = &cmd.AdminID
		auction.VerifiedAt = &now
		auction.AdminNotes = optional(cmd.AdminNotes)
		auction.RejectionReason = nil
		auction.RejectionMessage = nil
		if next == StatusRejected {
			auction.RejectionReason = optional(cmd.RejectionReason)
			auction.RejectionMessage = optional(cmd.RejectionMessage)
		}
		auction.UpdatedAt = now

		if err := s.auctionRepo.SaveVerification(ctx, tx, auction); err != nil {
			return err
		}
		return s.saveEvent(ctx, tx, events.EventTypeAuctionVerified, auction.ID, now, map[string]any{
			"decision":  string(cmd.Decision),
			"status":    string(next),
			"admin_id":  cmd.AdminID.String(),
			"seller_id": auction.SellerID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, auction.ID)
	return auction, nil
}

func (s *Service) reviewable(a *Auction, next Status, now time.Time) bool {
	switch a.Status {
	case StatusPendingVerification:
		return true
	case StatusActive, StatusRejected, StatusMoreInfo:
		if a.VerifiedAt == nil || now.Sub(*a.VerifiedAt) > s.cfg.ReviewGraceWindow {
			return false
		}
		// Bids already placed would be stranded on a withdrawn listing
		return a.BidCount == 0 || next == StatusActive
	default:
		return false
	}
}

// SellNow closes an active auction early, selling to the highest bidder
func (s *Service) SellNow(ctx context.Context, cmd SellNowCommand) (*Auction, error) {
	var sold *Auction
	err := s.inTx(ctx, "sell now", func(tx pgx.Tx) error {
		auction, err := s.auctionRepo.GetAuctionByIDForUpdate(ctx, tx, cmd.AuctionID)
		if err != nil {
			return err
		}
		if !auction.IsOwnedBy(cmd.SellerID) {
			return ErrNotOwner
		}
		if auction.Status != StatusActive {
			return ErrAuctionNotActive
		}

		highest, err := s.bidReader.GetHighestBidForUpdate(ctx, tx, auction.ID)
		if err != nil {
			return err
		}
		if highest == nil {
			return ErrNoBids
		}

		now := s.now().UTC()
		sold, err = s.auctionRepo.MarkSold(ctx, tx, auction.ID, highest.BidderID, highest.Amount, now)
		if err != nil {
			return err
		}

		return s.saveEvent(ctx, tx, events.EventTypeAuctionSold, auction.ID, now, map[string]any{
			"seller_id":   auction.SellerID.String(),
			"buyer_id":    highest.BidderID.String(),
			"bid_id":      highest.BidID.String(),
			"final_price": int64(highest.Amount),
		})
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, sold.ID)
	return sold, nil
}

// Relist sends an unsold auction back to verification with a fresh window.
// The bid ledger is left untouched.
func (s *Service) Relist(ctx context.Context, cmd RelistCommand) (*Auction, error) {
	if err := s.validateDuration(cmd.DurationDays); err != nil {
		return nil, err
	}

	var auction *Auction
	err := s.inTx(ctx, "relist auction", func(tx pgx.Tx) error {
		var err error
		auction, err = s.auctionRepo.GetAuctionByIDForUpdate(ctx, tx, cmd.AuctionID)
		if err != nil {
			return err
		}
		if !auction.IsOwnedBy(cmd.SellerID) {
			return ErrNotOwner
		}

		now := s.now().UTC()
		if Classify(auction, now) != ClassificationUnsold {
			return ErrCannotRelist
		}

		auction.Status = StatusPendingVerification
		auction.DurationDays = cmd.DurationDays
		auction.CreatedAt = now
		auction.EndsAt = now.AddDate(0, 0, cmd.DurationDays)
		auction.VerifiedBy = nil
		auction.VerifiedAt = nil
		auction.AdminNotes = nil
		auction.RejectionReason = nil
		auction.RejectionMessage = nil
		auction.UpdatedAt = now

		if err := s.auctionRepo.SaveRelist(ctx, tx, auction); err != nil {
			return err
		}
		return s.saveEvent(ctx, tx, events.EventTypeAuctionRelisted, auction.ID, now, map[string]any{
			"seller_id":     auction.SellerID.String(),
			"duration_days": auction.DurationDays,
			"ends_at":       auction.EndsAt.Format(time.RFC3339),
		})
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, auction.ID)
	return auction, nil
}

// SweepExpiredAuctions ends every active auction whose window has closed
// and returns how many were transitioned. Running it twice is harmless.
func (s *Service) SweepExpiredAuctions(ctx context.Context) (int64, error) {
	var ended []*EndedAuction
	err := s.inTx(ctx, "sweep expired auctions", func(tx pgx.Tx) error {
		now := s.now().UTC()
		var err error
		ended, err = s.auctionRepo.EndExpiredAuctions(ctx, tx, now)
		if err != nil {
			return err
		}

		for _, a := range ended {
			data := map[string]any{
				"seller_id": a.SellerID.String(),
				"bid_count": a.BidCount,
				"ends_at":   a.EndsAt.Format(time.RFC3339),
			}
			if a.BuyerID != nil && a.FinalPrice != nil {
				data["buyer_id"] = a.BuyerID.String()
				data["final_price"] = int64(*a.FinalPrice)
			}
			if err := s.saveEvent(ctx, tx, events.EventTypeAuctionEnded, a.ID, now, data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if len(ended) > 0 {
		ids := make([]uuid.UUID, len(ended))
		for i, a := range ended {
			ids[i] = a.ID
		}
		s.cache.Invalidate(ctx, ids...)
		s.logger.Info("Ended expired auctions", "count", len(ended))
	}
	return int64(len(ended)), nil
}

// ListSellerAuctions groups the seller's auctions by classification
func (s *Service) ListSellerAuctions(ctx context.Context, sellerID uuid.UUID) (*SellerListings, error) {
	var list []*Auction
	err := database.RetryRead(ctx, func(ctx context.Context) error {
		var err error
		list, err = s.auctionRepo.ListAuctionsBySeller(ctx, sellerID)
		return err
	})
	if err != nil {
		return nil, WrapStoreError("list seller auctions", err)
	}

	now := s.now()
	out := &SellerListings{}
	for _, a := range list {
		switch Classify(a, now) {
		case ClassificationScheduled:
			out.Scheduled = append(out.Scheduled, a)
		case ClassificationActive:
			out.Active = append(out.Active, a)
		case ClassificationSold:
			out.Sold = append(out.Sold, a)
		default:
			out.Unsold = append(out.Unsold, a)
		}
	}
	return out, nil
}

// ListReviewQueue returns pending auctions and decisions still inside the grace window
func (s *Service) ListReviewQueue(ctx context.Context) (*ReviewQueue, error) {
	since := s.now().Add(-s.cfg.ReviewGraceWindow)

	var list []*Auction
	err := database.RetryRead(ctx, func(ctx context.Context) error {
		var err error
		list, err = s.auctionRepo.ListReviewQueue(ctx, since)
		return err
	})
	if err != nil {
		return nil, WrapStoreError("list review queue", err)
	}

	queue := &ReviewQueue{}
	for _, a := range list {
		if a.Status == StatusPendingVerification {
			queue.Pending = append(queue.Pending, a)
		} else {
			queue.RecentlyDecided = append(queue.RecentlyDecided, a)
		}
	}
	return queue, nil
}

// inTx runs fn in a transaction and commits it. Any failure rolls back
// everything fn wrote.
func (s *Service) inTx(ctx context.Context, op string, fn func(tx pgx.Tx) error) error {
	tx, err := s.txManager.BeginTx(ctx)
	if err != nil {
		return WrapStoreError(op, err)
	}
	defer func() {
		_ = tx.Rollback(ctx) // Rollback if commit is not called
	}()

	if err := fn(tx); err != nil {
		return WrapStoreError(op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return WrapStoreError(op, err)
	}
	return nil
}

func (s *Service) saveEvent(ctx context.Context, tx pgx.Tx, eventType string, auctionID uuid.UUID, at time.Time, data map[string]any) error {
	event, err := events.NewOutboxEvent(events.NewEnvelope(eventType, auctionID, at, data))
	if err != nil {
		return err
	}
	if err := s.outbox.SaveEvent(ctx, tx, event); err != nil {
		return fmt.Errorf("failed to save outbox event: %w", err)
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
