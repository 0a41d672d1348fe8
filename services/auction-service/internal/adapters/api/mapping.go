package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/floroz/bidmaster/pkg/money"
	marketplacev1 "github.com/floroz/bidmaster/pkg/rpc/marketplacev1"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/auctions"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/bids"
)

func centsOrEmpty(c *money.Cents) string {
	if c == nil {
		return ""
	}
	return c.String()
}

func idOrEmpty(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// parseOptionalCents treats an empty string as absent
func parseOptionalCents(s string) (*money.Cents, error) {
	if s == "" {
		return nil, nil
	}
	c, err := money.ParsePositive(s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func mapAuction(a *auctions.Auction, now time.Time) *marketplacev1.Auction {
	images := a.Images
	if images == nil {
		images = []string{}
	}
	return &marketplacev1.Auction{
		ID:               a.ID.String(),
		SellerID:         a.SellerID.String(),
		Title:            a.Title,
		Category:         a.Category,
		ItemCondition:    a.ItemCondition,
		Description:      a.Description,
		StartingPrice:    a.StartingPrice.String(),
		ReservePrice:     centsOrEmpty(a.ReservePrice),
		Images:           images,
		DurationDays:     int32(a.DurationDays),
		EndsAt:           a.EndsAt,
		CurrentBid:       centsOrEmpty(a.CurrentBid),
		BidCount:         int32(a.BidCount),
		Status:           string(a.Status),
		Classification:   string(auctions.Classify(a, now)),
		BuyerID:          idOrEmpty(a.BuyerID),
		FinalPrice:       centsOrEmpty(a.FinalPrice),
		VerifiedBy:       idOrEmpty(a.VerifiedBy),
		VerifiedAt:       a.VerifiedAt,
		AdminNotes:       strOrEmpty(a.AdminNotes),
		RejectionReason:  strOrEmpty(a.RejectionReason),
		RejectionMessage: strOrEmpty(a.RejectionMessage),
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func mapAuctions(list []*auctions.Auction, now time.Time) []*marketplacev1.Auction {
	out := make([]*marketplacev1.Auction, len(list))
	for i, a := range list {
		out[i] = mapAuction(a, now)
	}
	return out
}

func mapBid(b *bids.Bid) *marketplacev1.Bid {
	return &marketplacev1.Bid{
		ID:         b.ID.String(),
		AuctionID:  b.AuctionID.String(),
		BidderID:   b.BidderID.String(),
		BidderName: b.BidderName,
		Amount:     b.Amount.String(),
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt,
	}
}

func mapUserBids(list []*bids.UserBidSummary, now time.Time) []*marketplacev1.UserBid {
	out := make([]*marketplacev1.UserBid, len(list))
	for i, s := range list {
		out[i] = &marketplacev1.UserBid{
			Auction:       mapAuction(s.Auction, now),
			HighestAmount: s.HighestAmount.String(),
			LastBidAt:     s.LastBidAt,
			BidCount:      int32(s.BidCount),
			Outcome:       string(s.Outcome),
		}
	}
	return out
}
