package api

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/floroz/bidmaster/pkg/auth"
	"github.com/floroz/bidmaster/pkg/money"
	marketplacev1 "github.com/floroz/bidmaster/pkg/rpc/marketplacev1"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/auctions"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/bids"
	"github.com/floroz/bidmaster/services/auction-service/internal/domain/watchlist"
)

// AuctionServiceHandler implements marketplacev1.AuctionServiceHandler
type AuctionServiceHandler struct {
	lifecycle *auctions.Service
	engine    *bids.Engine
	watchlist *watchlist.Service
	logger    *slog.Logger
	now       func() time.Time
}

var _ marketplacev1.AuctionServiceHandler = (*AuctionServiceHandler)(nil)

func NewAuctionServiceHandler(lifecycle *auctions.Service, engine *bids.Engine, watchlistService *watchlist.Service, logger *slog.Logger) *AuctionServiceHandler {
	return &AuctionServiceHandler{
		lifecycle: lifecycle,
		engine:    engine,
		watchlist: watchlistService,
		logger:    logger,
		now:       time.Now,
	}
}

func (h *AuctionServiceHandler) fail(procedure string, err error) error {
	return toConnectError(h.logger, procedure, err)
}

func parseAuctionID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, invalidID("auction_id")
	}
	return id, nil
}

func (h *AuctionServiceHandler) PlaceBid(
	ctx context.Context,
	req *connect.Request[marketplacev1.PlaceBidRequest],
) (*connect.Response[marketplacev1.PlaceBidResponse], error) {
	// 1. Caller identity (validated by the auth interceptor)
	userID, claims, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, h.fail("PlaceBid", err)
	}

	// 2. Validation / Mapping
	auctionID, err := parseAuctionID(req.Msg.AuctionID)
	if err != nil {
		return nil, err
	}
	amount, err := money.Parse(req.Msg.Amount)
	if err != nil {
		return nil, h.fail("PlaceBid", err)
	}

	// 3. Execution
	result, err := h.engine.PlaceBid(ctx, bids.PlaceBidCommand{
		AuctionID:      auctionID,
		BidderID:       userID,
		BidderName:     claims.FullName,
		Amount:         amount,
		IdempotencyKey: req.Msg.IdempotencyKey,
	})
	if err != nil {
		return nil, h.fail("PlaceBid", err)
	}

	// 4. Response Mapping
	return connect.NewResponse(&marketplacev1.PlaceBidResponse{
		Bid:        mapBid(result.Bid),
		CurrentBid: result.CurrentBid.String(),
		BidCount:   int32(result.BidCount),
	}), nil
}

func (h *AuctionServiceHandler) SellNow(
	ctx context.Context,
	req *connect.Request[marketplacev1.SellNowRequest],
) (*connect.Response[marketplacev1.SellNowResponse], error) {
	userID, _, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, h.fail("SellNow", err)
	}
	auctionID, err := parseAuctionID(req.Msg.AuctionID)
	if err != nil {
		return nil, err
	}

	sold, err := h.lifecycle.SellNow(ctx, auctions.SellNowCommand{AuctionID: auctionID, SellerID: userID})
	if err != nil {
		return nil, h.fail("SellNow", err)
	}
	return connect.NewResponse(&marketplacev1.SellNowResponse{Auction: mapAuction(sold, h.now())}), nil
}

func (h *AuctionServiceHandler) DecideVerification(
	ctx context.Context,
	req *connect.Request[marketplacev1.DecideVerificationRequest],
) (*connect.Response[marketplacev1.DecideVerificationResponse], error) {
	adminID, _, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, h.fail("DecideVerification", err)
	}
	if err := auth.RequirePermission(ctx, auth.PermissionVerifyAuctions); err != nil {
		return nil, h.fail("DecideVerification", err)
	}
	auctionID, err := parseAuctionID(req.Msg.AuctionID)
	if err != nil {
		return nil, err
	}

	decided, err := h.lifecycle.DecideVerification(ctx, auctions.DecideVerificationCommand{
		AuctionID:        auctionID,
		AdminID:          adminID,
		Decision:         auctions.Decision(req.Msg.Decision),
		AdminNotes:       req.Msg.AdminNotes,
		RejectionReason:  req.Msg.RejectionReason,
		RejectionMessage: req.Msg.RejectionMessage,
	})
	if err != nil {
		return nil, h.fail("DecideVerification", err)
	}
	return connect.NewResponse(&marketplacev1.DecideVerificationResponse{Auction: mapAuction(decided, h.now())}), nil
}

func (h *AuctionServiceHandler) RelistAuction(
	ctx context.Context,
	req *connect.Request[marketplacev1.RelistAuctionRequest],
) (*connect.Response[marketplacev1.RelistAuctionResponse], error) {
	userID, _, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, h.fail("RelistAuction", err)
	}
	auctionID, err := parseAuctionID(req.Msg.AuctionID)
	if err != nil {
		return nil, err
	}

	relisted, err := h.lifecycle.Relist(ctx, auctions.RelistCommand{
		AuctionID:    auctionID,
		SellerID:     userID,
		DurationDays: int(req.Msg.DurationDays),
	})
	if err != nil {
		return nil, h.fail("RelistAuction", err)
	}
	return connect.NewResponse(&marketplacev1.RelistAuctionResponse{Auction: mapAuction(relisted, h.now())}), nil
}

// CreateAuction submits a new listing for verification
func (h *AuctionServiceHandler) CreateAuction(
	ctx context.Context,
	req *connect.Request[marketplacev1.CreateAuctionRequest],
) (*connect.Response[marketplacev1.CreateAuctionResponse], error) {
	userID, _, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, h.fail("CreateAuction", err)
	}

	startingPrice, err := money.ParsePositive(req.Msg.StartingPrice)
	if err != nil {
		return nil, h.fail("CreateAuction", err)
	}
	reservePrice, err := parseOptionalCents(req.Msg.ReservePrice)
	if err != nil {
		return nil, h.fail("CreateAuction", err)
	}

	created, err := h.lifecycle.CreateAuction(ctx, auctions.CreateAuctionCommand{
		SellerID:      userID,
		Title:         req.Msg.Title,
		Category:      req.Msg.Category,
		ItemCondition: req.Msg.ItemCondition,
		Description:   req.Msg.Description,
		StartingPrice: startingPrice,
		ReservePrice:  reservePrice,
		Images:        req.Msg.Images,
		DurationDays:  int(req.Msg.DurationDays),
	})
	if err != nil {
		return nil, h.fail("CreateAuction", err)
	}
	return connect.NewResponse(&marketplacev1.CreateAuctionResponse{Auction: mapAuction(created, h.now())}), nil
}

// GetAuction is public
func (h *AuctionServiceHandler) GetAuction(
	ctx context.Context,
	req *connect.Request[marketplacev1.GetAuctionRequest],
) (*connect.Response[marketplacev1.GetAuctionResponse], error) {
	auctionID, err := parseAuctionID(req.Msg.AuctionID)
	if err != nil {
		return nil, err
	}

	a, err := h.lifecycle.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, h.fail("GetAuction", err)
	}
	return connect.NewResponse(&marketplacev1.GetAuctionResponse{Auction: mapAuction(a, h.now())}), nil
}

// ListAuctionBids is public and returns the ledger newest first
func (h *AuctionServiceHandler) ListAuctionBids(
	ctx context.Context,
	req *connect.Request[marketplacev1.ListAuctionBidsRequest],
) (*connect.Response[marketplacev1.ListAuctionBidsResponse], error) {
	auctionID, err := parseAuctionID(req.Msg.AuctionID)
	if err != nil {
		return nil, err
	}

	list, err := h.engine.ListAuctionBids(ctx, auctionID)
	if err != nil {
		return nil, h.fail("ListAuctionBids", err)
	}

	out := make([]*marketplacev1.Bid, len(list))
	for i, b := range list {
		out[i] = mapBid(b)
	}
	return connect.NewResponse(&marketplacev1.ListAuctionBidsResponse{Bids: out}), nil
}

func (h *AuctionServiceHandler) ListMyBids(
	ctx context.Context,
	_ *connect.Request[marketplacev1.ListMyBidsRequest],
) (*connect.Response[marketplacev1.ListMyBidsResponse], error) {
	userID, _, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, h.fail("ListMyBids", err)
	}

	userBids, err := h.engine.ListUserBids(ctx, userID)
	if err != nil {
		return nil, h.fail("ListMyBids", err)
	}

	now := h.now()
	return connect.NewResponse(&marketplacev1.ListMyBidsResponse{
		Active: mapUserBids(userBids.Active, now),
		Won:    mapUserBids(userBids.Won, now),
		Lost:   mapUserBids(userBids.Lost, now),
	}), nil
}

func (h *AuctionServiceHandler) GetBidCounts(
	ctx context.Context,
	_ *connect.Request[marketplacev1.GetBidCountsRequest],
) (*connect.Response[marketplacev1.GetBidCountsResponse], error) {
	userID, _, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, h.fail("GetBidCounts", err)
	}

	counts, err := h.engine.GetBidCounts(ctx, userID)
	if err != nil {
		return nil, h.fail("GetBidCounts", err)
	}
	return connect.NewResponse(&marketplacev1.GetBidCountsResponse{
		ActiveBids:  int32(counts.ActiveBids),
		WonAuctions: int32(counts.WonAuctions),
		Watchlist:   int32(counts.Watchlist),
	}), nil
}

func (h *AuctionServiceHandler) ListMyAuctions(
	ctx context.Context,
	_ *connect.Request[marketplacev1.ListMyAuctionsRequest],
) (*connect.Response[marketplacev1.ListMyAuctionsResponse], error) {
	userID, _, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, h.fail("ListMyAuctions", err)
	}

	listings, err := h.lifecycle.ListSellerAuctions(ctx, userID)
	if err != nil {
		return nil, h.fail("ListMyAuctions", err)
	}

	now := h.now()
	return connect.NewResponse(&marketplacev1.ListMyAuctionsResponse{
		Scheduled: mapAuctions(listings.Scheduled, now),
		Active:    mapAuctions(listings.Active, now),
		Sold:      mapAuctions(listings.Sold, now),
		Unsold:    mapAuctions(listings.Unsold, now),
	}), nil
}

func (h *AuctionServiceHandler) ListReviewQueue(
	ctx context.Context,
	_ *connect.Request[marketplacev1.ListReviewQueueRequest],
) (*connect.Response[marketplacev1.ListReviewQueueResponse], error) {
	if err := auth.RequirePermission(ctx, auth.PermissionVerifyAuctions); err != nil {
		return nil, h.fail("ListReviewQueue", err)
	}

	queue, err := h.lifecycle.ListReviewQueue(ctx)
	if err != nil {
		return nil, h.fail("ListReviewQueue", err)
	}

	now := h.now()
	return connect.NewResponse(&marketplacev1.ListReviewQueueResponse{
		Pending:         mapAuctions(queue.Pending, now),
		RecentlyDecided: mapAuctions(queue.RecentlyDecided, now),
	}), nil
}

func (h *AuctionServiceHandler) AddToWatchlist(
	ctx context.Context,
	req *connect.Request[marketplacev1.WatchlistRequest],
) (*connect.Response[marketplacev1.WatchlistResponse], error) {
	userID, _, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, h.fail("AddToWatchlist", err)
	}
	auctionID, err := parseAuctionID(req.Msg.AuctionID)
	if err != nil {
		return nil, err
	}

	if _, err := h.watchlist.Add(ctx, userID, auctionID); err != nil {
		return nil, h.fail("AddToWatchlist", err)
	}
	return connect.NewResponse(&marketplacev1.WatchlistResponse{Watching: true}), nil
}

func (h *AuctionServiceHandler) RemoveFromWatchlist(
	ctx context.Context,
	req *connect.Request[marketplacev1.WatchlistRequest],
) (*connect.Response[marketplacev1.WatchlistResponse], error) {
	userID, _, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, h.fail("RemoveFromWatchlist", err)
	}
	auctionID, err := parseAuctionID(req.Msg.AuctionID)
	if err != nil {
		return nil, err
	}

	if err := h.watchlist.Remove(ctx, userID, auctionID); err != nil {
		return nil, h.fail("RemoveFromWatchlist", err)
	}
	return connect.NewResponse(&marketplacev1.WatchlistResponse{Watching: false}), nil
}

func (h *AuctionServiceHandler) CheckWatchlist(
	ctx context.Context,
	req *connect.Request[marketplacev1.WatchlistRequest],
) (*connect.Response[marketplacev1.WatchlistResponse], error) {
	userID, _, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, h.fail("CheckWatchlist", err)
	}
	auctionID, err := parseAuctionID(req.Msg.AuctionID)
	if err != nil {
		return nil, err
	}

	watching, err := h.watchlist.IsWatching(ctx, userID, auctionID)
	if err != nil {
		return nil, h.fail("CheckWatchlist", err)
	}
	return connect.NewResponse(&marketplacev1.WatchlistResponse{Watching: watching}), nil
}

func (h *AuctionServiceHandler) ListWatchlist(
	ctx context.Context,
	_ *connect.Request[marketplacev1.ListWatchlistRequest],
) (*connect.Response[marketplacev1.ListWatchlistResponse], error) {
	userID, _, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, h.fail("ListWatchlist", err)
	}

	list, err := h.watchlist.List(ctx, userID)
	if err != nil {
		return nil, h.fail("ListWatchlist", err)
	}
	return connect.NewResponse(&marketplacev1.ListWatchlistResponse{Auctions: mapAuctions(list, h.now())}), nil
}
