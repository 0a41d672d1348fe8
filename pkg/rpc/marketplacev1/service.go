package marketplacev1

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// AuctionServiceName is the fully-qualified name of the AuctionService service.
const AuctionServiceName = "marketplace.v1.AuctionService"

// Fully-qualified procedure names, as they appear in request paths.
const (
	AuctionServicePlaceBidProcedure            = "/marketplace.v1.AuctionService/PlaceBid"
	AuctionServiceSellNowProcedure             = "/marketplace.v1.AuctionService/SellNow"
	AuctionServiceDecideVerificationProcedure  = "/marketplace.v1.AuctionService/DecideVerification"
	AuctionServiceRelistAuctionProcedure       = "/marketplace.v1.AuctionService/RelistAuction"
	AuctionServiceCreateAuctionProcedure       = "/marketplace.v1.AuctionService/CreateAuction"
	AuctionServiceGetAuctionProcedure          = "/marketplace.v1.AuctionService/GetAuction"
	AuctionServiceListAuctionBidsProcedure     = "/marketplace.v1.AuctionService/ListAuctionBids"
	AuctionServiceListMyBidsProcedure          = "/marketplace.v1.AuctionService/ListMyBids"
	AuctionServiceGetBidCountsProcedure        = "/marketplace.v1.AuctionService/GetBidCounts"
	AuctionServiceListMyAuctionsProcedure      = "/marketplace.v1.AuctionService/ListMyAuctions"
	AuctionServiceListReviewQueueProcedure     = "/marketplace.v1.AuctionService/ListReviewQueue"
	AuctionServiceAddToWatchlistProcedure      = "/marketplace.v1.AuctionService/AddToWatchlist"
	AuctionServiceRemoveFromWatchlistProcedure = "/marketplace.v1.AuctionService/RemoveFromWatchlist"
	AuctionServiceCheckWatchlistProcedure      = "/marketplace.v1.AuctionService/CheckWatchlist"
	AuctionServiceListWatchlistProcedure       = "/marketplace.v1.AuctionService/ListWatchlist"
)

// PublicProcedures may be called without a bearer token.
var PublicProcedures = []string{
	AuctionServiceGetAuctionProcedure,
	AuctionServiceListAuctionBidsProcedure,
}

// AuctionServiceHandler is implemented by the API adapter.
type AuctionServiceHandler interface {
	PlaceBid(context.Context, *connect.Request[PlaceBidRequest]) (*connect.Response[PlaceBidResponse], error)
	SellNow(context.Context, *connect.Request[SellNowRequest]) (*connect.Response[SellNowResponse], error)
	DecideVerification(context.Context, *connect.Request[DecideVerificationRequest]) (*connect.Response[DecideVerificationResponse], error)
	RelistAuction(context.Context, *connect.Request[RelistAuctionRequest]) (*connect.Response[RelistAuctionResponse], error)
	CreateAuction(context.Context, *connect.Request[CreateAuctionRequest]) (*connect.Response[CreateAuctionResponse], error)
	GetAuction(context.Context, *connect.Request[GetAuctionRequest]) (*connect.Response[GetAuctionResponse], error)
	ListAuctionBids(context.Context, *connect.Request[ListAuctionBidsRequest]) (*connect.Response[ListAuctionBidsResponse], error)
	ListMyBids(context.Context, *connect.Request[ListMyBidsRequest]) (*connect.Response[ListMyBidsResponse], error)
	GetBidCounts(context.Context, *connect.Request[GetBidCountsRequest]) (*connect.Response[GetBidCountsResponse], error)
	ListMyAuctions(context.Context, *connect.Request[ListMyAuctionsRequest]) (*connect.Response[ListMyAuctionsResponse], error)
	ListReviewQueue(context.Context, *connect.Request[ListReviewQueueRequest]) (*connect.Response[ListReviewQueueResponse], error)
	AddToWatchlist(context.Context, *connect.Request[WatchlistRequest]) (*connect.Response[WatchlistResponse], error)
	RemoveFromWatchlist(context.Context, *connect.Request[WatchlistRequest]) (*connect.Response[WatchlistResponse], error)
	CheckWatchlist(context.Context, *connect.Request[WatchlistRequest]) (*connect.Response[WatchlistResponse], error)
	ListWatchlist(context.Context, *connect.Request[ListWatchlistRequest]) (*connect.Response[ListWatchlistResponse], error)
}

// NewAuctionServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewAuctionServiceHandler(svc AuctionServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(AuctionServicePlaceBidProcedure, connect.NewUnaryHandler(AuctionServicePlaceBidProcedure, svc.PlaceBid, opts...))
	mux.Handle(AuctionServiceSellNowProcedure, connect.NewUnaryHandler(AuctionServiceSellNowProcedure, svc.SellNow, opts...))
	mux.Handle(AuctionServiceDecideVerificationProcedure, connect.NewUnaryHandler(AuctionServiceDecideVerificationProcedure, svc.DecideVerification, opts...))
	mux.Handle(AuctionServiceRelistAuctionProcedure, connect.NewUnaryHandler(AuctionServiceRelistAuctionProcedure, svc.RelistAuction, opts...))
	mux.Handle(AuctionServiceCreateAuctionProcedure, connect.NewUnaryHandler(AuctionServiceCreateAuctionProcedure, svc.CreateAuction, opts...))
	mux.Handle(AuctionServiceGetAuctionProcedure, connect.NewUnaryHandler(AuctionServiceGetAuctionProcedure, svc.GetAuction, opts...))
	mux.Handle(AuctionServiceListAuctionBidsProcedure, connect.NewUnaryHandler(AuctionServiceListAuctionBidsProcedure, svc.ListAuctionBids, opts...))
	mux.Handle(AuctionServiceListMyBidsProcedure, connect.NewUnaryHandler(AuctionServiceListMyBidsProcedure, svc.ListMyBids, opts...))
	mux.Handle(AuctionServiceGetBidCountsProcedure, connect.NewUnaryHandler(AuctionServiceGetBidCountsProcedure, svc.GetBidCounts, opts...))
	mux.Handle(AuctionServiceListMyAuctionsProcedure, connect.NewUnaryHandler(AuctionServiceListMyAuctionsProcedure, svc.ListMyAuctions, opts...))
	mux.Handle(AuctionServiceListReviewQueueProcedure, connect.NewUnaryHandler(AuctionServiceListReviewQueueProcedure, svc.ListReviewQueue, opts...))
	mux.Handle(AuctionServiceAddToWatchlistProcedure, connect.NewUnaryHandler(AuctionServiceAddToWatchlistProcedure, svc.AddToWatchlist, opts...))
	mux.Handle(AuctionServiceRemoveFromWatchlistProcedure, connect.NewUnaryHandler(AuctionServiceRemoveFromWatchlistProcedure, svc.RemoveFromWatchlist, opts...))
	mux.Handle(AuctionServiceCheckWatchlistProcedure, connect.NewUnaryHandler(AuctionServiceCheckWatchlistProcedure, svc.CheckWatchlist, opts...))
	mux.Handle(AuctionServiceListWatchlistProcedure, connect.NewUnaryHandler(AuctionServiceListWatchlistProcedure, svc.ListWatchlist, opts...))

	return "/" + AuctionServiceName + "/", mux
}

// AuctionServiceClient is a client for the marketplace.v1.AuctionService service.
type AuctionServiceClient struct {
	placeBid            *connect.Client[PlaceBidRequest, PlaceBidResponse]
	sellNow             *connect.Client[SellNowRequest, SellNowResponse]
	decideVerification  *connect.Client[DecideVerificationRequest, DecideVerificationResponse]
	relistAuction       *connect.Client[RelistAuctionRequest, RelistAuctionResponse]
	createAuction       *connect.Client[CreateAuctionRequest, CreateAuctionResponse]
	getAuction          *connect.Client[GetAuctionRequest, GetAuctionResponse]
	listAuctionBids     *connect.Client[ListAuctionBidsRequest, ListAuctionBidsResponse]
	listMyBids          *connect.Client[ListMyBidsRequest, ListMyBidsResponse]
	getBidCounts        *connect.Client[GetBidCountsRequest, GetBidCountsResponse]
	listMyAuctions      *connect.Client[ListMyAuctionsRequest, ListMyAuctionsResponse]
	listReviewQueue     *connect.Client[ListReviewQueueRequest, ListReviewQueueResponse]
	addToWatchlist      *connect.Client[WatchlistRequest, WatchlistResponse]
	removeFromWatchlist *connect.Client[WatchlistRequest, WatchlistResponse]
	checkWatchlist      *connect.Client[WatchlistRequest, WatchlistResponse]
	listWatchlist       *connect.Client[ListWatchlistRequest, ListWatchlistResponse]
}

// NewAuctionServiceClient constructs a client for the AuctionService. baseURL
// is the server root, for example http://localhost:8080.
func NewAuctionServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuctionServiceClient {
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)

	return &AuctionServiceClient{
		placeBid:            connect.NewClient[PlaceBidRequest, PlaceBidResponse](httpClient, baseURL+AuctionServicePlaceBidProcedure, opts...),
		sellNow:             connect.NewClient[SellNowRequest, SellNowResponse](httpClient, baseURL+AuctionServiceSellNowProcedure, opts...),
		decideVerification:  connect.NewClient[DecideVerificationRequest, DecideVerificationResponse](httpClient, baseURL+AuctionServiceDecideVerificationProcedure, opts...),
		relistAuction:       connect.NewClient[RelistAuctionRequest, RelistAuctionResponse](httpClient, baseURL+AuctionServiceRelistAuctionProcedure, opts...),
		createAuction:       connect.NewClient[CreateAuctionRequest, CreateAuctionResponse](httpClient, baseURL+AuctionServiceCreateAuctionProcedure, opts...),
		getAuction:          connect.NewClient[GetAuctionRequest, GetAuctionResponse](httpClient, baseURL+AuctionServiceGetAuctionProcedure, opts...),
		listAuctionBids:     connect.NewClient[ListAuctionBidsRequest, ListAuctionBidsResponse](httpClient, baseURL+AuctionServiceListAuctionBidsProcedure, opts...),
		listMyBids:          connect.NewClient[ListMyBidsRequest, ListMyBidsResponse](httpClient, baseURL+AuctionServiceListMyBidsProcedure, opts...),
		getBidCounts:        connect.NewClient[GetBidCountsRequest, GetBidCountsResponse](httpClient, baseURL+AuctionServiceGetBidCountsProcedure, opts...),
		listMyAuctions:      connect.NewClient[ListMyAuctionsRequest, ListMyAuctionsResponse](httpClient, baseURL+AuctionServiceListMyAuctionsProcedure, opts...),
		listReviewQueue:     connect.NewClient[ListReviewQueueRequest, ListReviewQueueResponse](httpClient, baseURL+AuctionServiceListReviewQueueProcedure, opts...),
		addToWatchlist:      connect.NewClient[WatchlistRequest, WatchlistResponse](httpClient, baseURL+AuctionServiceAddToWatchlistProcedure, opts...),
		removeFromWatchlist: connect.NewClient[WatchlistRequest, WatchlistResponse](httpClient, baseURL+AuctionServiceRemoveFromWatchlistProcedure, opts...),
		checkWatchlist:      connect.NewClient[WatchlistRequest, WatchlistResponse](httpClient, baseURL+AuctionServiceCheckWatchlistProcedure, opts...),
		listWatchlist:       connect.NewClient[ListWatchlistRequest, ListWatchlistResponse](httpClient, baseURL+AuctionServiceListWatchlistProcedure, opts...),
	}
}

func (c *AuctionServiceClient) PlaceBid(ctx context.Context, req *connect.Request[PlaceBidRequest]) (*connect.Response[PlaceBidResponse], error) {
	return c.placeBid.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) SellNow(ctx context.Context, req *connect.Request[SellNowRequest]) (*connect.Response[SellNowResponse], error) {
	return c.sellNow.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) DecideVerification(ctx context.Context, req *connect.Request[DecideVerificationRequest]) (*connect.Response[DecideVerificationResponse], error) {
	return c.decideVerification.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) RelistAuction(ctx context.Context, req *connect.Request[RelistAuctionRequest]) (*connect.Response[RelistAuctionResponse], error) {
	return c.relistAuction.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) CreateAuction(ctx context.Context, req *connect.Request[CreateAuctionRequest]) (*connect.Response[CreateAuctionResponse], error) {
	return c.createAuction.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) GetAuction(ctx context.Context, req *connect.Request[GetAuctionRequest]) (*connect.Response[GetAuctionResponse], error) {
	return c.getAuction.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) ListAuctionBids(ctx context.Context, req *connect.Request[ListAuctionBidsRequest]) (*connect.Response[ListAuctionBidsResponse], error) {
	return c.listAuctionBids.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) ListMyBids(ctx context.Context, req *connect.Request[ListMyBidsRequest]) (*connect.Response[ListMyBidsResponse], error) {
	return c.listMyBids.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) GetBidCounts(ctx context.Context, req *connect.Request[GetBidCountsRequest]) (*connect.Response[GetBidCountsResponse], error) {
	return c.getBidCounts.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) ListMyAuctions(ctx context.Context, req *connect.Request[ListMyAuctionsRequest]) (*connect.Response[ListMyAuctionsResponse], error) {
	return c.listMyAuctions.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) ListReviewQueue(ctx context.Context, req *connect.Request[ListReviewQueueRequest]) (*connect.Response[ListReviewQueueResponse], error) {
	return c.listReviewQueue.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) AddToWatchlist(ctx context.Context, req *connect.Request[WatchlistRequest]) (*connect.Response[WatchlistResponse], error) {
	return c.addToWatchlist.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) RemoveFromWatchlist(ctx context.Context, req *connect.Request[WatchlistRequest]) (*connect.Response[WatchlistResponse], error) {
	return c.removeFromWatchlist.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) CheckWatchlist(ctx context.Context, req *connect.Request[WatchlistRequest]) (*connect.Response[WatchlistResponse], error) {
	return c.checkWatchlist.CallUnary(ctx, req)
}

func (c *AuctionServiceClient) ListWatchlist(ctx context.Context, req *connect.Request[ListWatchlistRequest]) (*connect.Response[ListWatchlistResponse], error) {
	return c.listWatchlist.CallUnary(ctx, req)
}
