package marketplacev1

import "time"

// Auction is the public view of an auction. Money fields are decimal strings.
type Auction struct {
	ID               string     `json:"id"`
	SellerID         string     `json:"seller_id"`
	Title            string     `json:"title"`
	Category         string     `json:"category"`
	ItemCondition    string     `json:"item_condition"`
	Description      string     `json:"description"`
	StartingPrice    string     `json:"starting_price"`
	ReservePrice     string     `json:"reserve_price,omitempty"`
	Images           []string   `json:"images"`
	DurationDays     int32      `json:"duration_days"`
	EndsAt           time.Time  `json:"ends_at"`
	CurrentBid       string     `json:"current_bid,omitempty"`
	BidCount         int32      `json:"bid_count"`
	Status           string     `json:"status"`
	Classification   string     `json:"classification"`
	BuyerID          string     `json:"buyer_id,omitempty"`
	FinalPrice       string     `json:"final_price,omitempty"`
	VerifiedBy       string     `json:"verified_by,omitempty"`
	VerifiedAt       *time.Time `json:"verified_at,omitempty"`
	AdminNotes       string     `json:"admin_notes,omitempty"`
	RejectionReason  string     `json:"rejection_reason,omitempty"`
	RejectionMessage string     `json:"rejection_message,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type Bid struct {
	ID         string    `json:"id"`
	AuctionID  string    `json:"auction_id"`
	BidderID   string    `json:"bidder_id"`
	BidderName string    `json:"bidder_name"`
	Amount     string    `json:"amount"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type PlaceBidRequest struct {
	AuctionID      string `json:"auction_id"`
	Amount         string `json:"amount"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type PlaceBidResponse struct {
	Bid        *Bid   `json:"bid"`
	CurrentBid string `json:"current_bid"`
	BidCount   int32  `json:"bid_count"`
}

type SellNowRequest struct {
	AuctionID string `json:"auction_id"`
}

type SellNowResponse struct {
	Auction *Auction `json:"auction"`
}

type DecideVerificationRequest struct {
	AuctionID        string `json:"auction_id"`
	Decision         string `json:"decision"`
	AdminNotes       string `json:"admin_notes,omitempty"`
	RejectionReason  string `json:"rejection_reason,omitempty"`
	RejectionMessage string `json:"rejection_message,omitempty"`
}

type DecideVerificationResponse struct {
	Auction *Auction `json:"auction"`
}

type RelistAuctionRequest struct {
	AuctionID    string `json:"auction_id"`
	DurationDays int32  `json:"duration_days"`
}

type RelistAuctionResponse struct {
	Auction *Auction `json:"auction"`
}

type CreateAuctionRequest struct {
	Title         string   `json:"title"`
	Category      string   `json:"category"`
	ItemCondition string   `json:"item_condition"`
	Description   string   `json:"description"`
	StartingPrice string   `json:"starting_price"`
	ReservePrice  string   `json:"reserve_price,omitempty"`
	Images        []string `json:"images,omitempty"`
	DurationDays  int32    `json:"duration_days"`
}

type CreateAuctionResponse struct {
	Auction *Auction `json:"auction"`
}

type GetAuctionRequest struct {
	AuctionID string `json:"auction_id"`
}

type GetAuctionResponse struct {
	Auction *Auction `json:"auction"`
}

type ListAuctionBidsRequest struct {
	AuctionID string `json:"auction_id"`
}

type ListAuctionBidsResponse struct {
	Bids []*Bid `json:"bids"`
}

type ListMyBidsRequest struct{}

// UserBid summarises the caller's participation in one auction.
type UserBid struct {
	Auction       *Auction  `json:"auction"`
	HighestAmount string    `json:"highest_amount"`
	LastBidAt     time.Time `json:"last_bid_at"`
	BidCount      int32     `json:"bid_count"`
	Outcome       string    `json:"outcome"`
}

type ListMyBidsResponse struct {
	Active []*UserBid `json:"active"`
	Won    []*UserBid `json:"won"`
	Lost   []*UserBid `json:"lost"`
}

type GetBidCountsRequest struct{}

type GetBidCountsResponse struct {
	ActiveBids  int32 `json:"active_bids"`
	WonAuctions int32 `json:"won_auctions"`
	Watchlist   int32 `json:"watchlist"`
}

type ListMyAuctionsRequest struct{}

type ListMyAuctionsResponse struct {
	Scheduled []*Auction `json:"scheduled"`
	Active    []*Auction `json:"active"`
	Sold      []*Auction `json:"sold"`
	Unsold    []*Auction `json:"unsold"`
}

type ListReviewQueueRequest struct{}

type ListReviewQueueResponse struct {
	Pending         []*Auction `json:"pending"`
	RecentlyDecided []*Auction `json:"recently_decided"`
}

type WatchlistRequest struct {
	AuctionID string `json:"auction_id"`
}

type WatchlistResponse struct {
	Watching bool `json:"watching"`
}

type ListWatchlistRequest struct{}

type ListWatchlistResponse struct {
	Auctions []*Auction `json:"auctions"`
}
