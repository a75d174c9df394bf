package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitroom/pkg/api"
)

const BillServiceName = "splitroom.v1.BillService"

const (
	BillServiceGetSummaryProcedure   = "/splitroom.v1.BillService/GetSummary"
	BillServiceWatchSummaryProcedure = "/splitroom.v1.BillService/WatchSummary"
)

// BillServiceHandler computes room totals and per-participant shares.
type BillServiceHandler interface {
	GetSummary(context.Context, *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.SummaryResponse], error)
	// WatchSummary sends a summary immediately and again after every change
	// to the room, until the room is deleted or the client goes away.
	WatchSummary(context.Context, *connect.Request[api.WatchSummaryRequest], *connect.ServerStream[api.SummaryResponse]) error
}

// NewBillServiceHandler returns the path to mount the handler on and the handler.
func NewBillServiceHandler(svc BillServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	handleUnary(mux, BillServiceGetSummaryProcedure, svc.GetSummary, opts)
	mux.Handle(BillServiceWatchSummaryProcedure, connect.NewServerStreamHandler(
		BillServiceWatchSummaryProcedure,
		svc.WatchSummary,
		opts...,
	))
	return "/" + BillServiceName + "/", mux
}

// BillServiceClient is a client for the BillService.
type BillServiceClient interface {
	GetSummary(context.Context, *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.SummaryResponse], error)
	WatchSummary(context.Context, *connect.Request[api.WatchSummaryRequest]) (*connect.ServerStreamForClient[api.SummaryResponse], error)
}

type billServiceClient struct {
	getSummary   *connect.Client[api.GetSummaryRequest, api.SummaryResponse]
	watchSummary *connect.Client[api.WatchSummaryRequest, api.SummaryResponse]
}

// NewBillServiceClient constructs a client for the BillService at baseURL.
func NewBillServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) BillServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &billServiceClient{
		getSummary:   connect.NewClient[api.GetSummaryRequest, api.SummaryResponse](httpClient, baseURL+BillServiceGetSummaryProcedure, opts...),
		watchSummary: connect.NewClient[api.WatchSummaryRequest, api.SummaryResponse](httpClient, baseURL+BillServiceWatchSummaryProcedure, opts...),
	}
}

func (c *billServiceClient) GetSummary(ctx context.Context, req *connect.Request[api.GetSummaryRequest]) (*connect.Response[api.SummaryResponse], error) {
	return c.getSummary.CallUnary(ctx, req)
}

func (c *billServiceClient) WatchSummary(ctx context.Context, req *connect.Request[api.WatchSummaryRequest]) (*connect.ServerStreamForClient[api.SummaryResponse], error) {
	return c.watchSummary.CallServerStream(ctx, req)
}
