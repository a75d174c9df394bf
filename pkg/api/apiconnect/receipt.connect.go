package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitroom/pkg/api"
)

const ReceiptServiceName = "splitroom.v1.ReceiptService"

const (
	ReceiptServiceScanReceiptProcedure   = "/splitroom.v1.ReceiptService/ScanReceipt"
	ReceiptServiceAcceptReceiptProcedure = "/splitroom.v1.ReceiptService/AcceptReceipt"
)

// MaxReceiptBytes bounds a ScanReceipt request, base64 image included.
const MaxReceiptBytes = 16 << 20

// ReceiptServiceHandler turns receipt photos into items.
type ReceiptServiceHandler interface {
	ScanReceipt(context.Context, *connect.Request[api.ScanReceiptRequest]) (*connect.Response[api.ScanReceiptResponse], error)
	AcceptReceipt(context.Context, *connect.Request[api.AcceptReceiptRequest]) (*connect.Response[api.AcceptReceiptResponse], error)
}

// NewReceiptServiceHandler returns the path to mount the handler on and the handler.
func NewReceiptServiceHandler(svc ReceiptServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(append(opts, connect.WithReadMaxBytes(MaxReceiptBytes)))
	mux := http.NewServeMux()
	handleUnary(mux, ReceiptServiceScanReceiptProcedure, svc.ScanReceipt, opts)
	handleUnary(mux, ReceiptServiceAcceptReceiptProcedure, svc.AcceptReceipt, opts)
	return "/" + ReceiptServiceName + "/", mux
}

// ReceiptServiceClient is a client for the ReceiptService.
type ReceiptServiceClient interface {
	ScanReceipt(context.Context, *connect.Request[api.ScanReceiptRequest]) (*connect.Response[api.ScanReceiptResponse], error)
	AcceptReceipt(context.Context, *connect.Request[api.AcceptReceiptRequest]) (*connect.Response[api.AcceptReceiptResponse], error)
}

type receiptServiceClient struct {
	scanReceipt   *connect.Client[api.ScanReceiptRequest, api.ScanReceiptResponse]
	acceptReceipt *connect.Client[api.AcceptReceiptRequest, api.AcceptReceiptResponse]
}

// NewReceiptServiceClient constructs a client for the ReceiptService at baseURL.
func NewReceiptServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ReceiptServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &receiptServiceClient{
		scanReceipt:   connect.NewClient[api.ScanReceiptRequest, api.ScanReceiptResponse](httpClient, baseURL+ReceiptServiceScanReceiptProcedure, opts...),
		acceptReceipt: connect.NewClient[api.AcceptReceiptRequest, api.AcceptReceiptResponse](httpClient, baseURL+ReceiptServiceAcceptReceiptProcedure, opts...),
	}
}

func (c *receiptServiceClient) ScanReceipt(ctx context.Context, req *connect.Request[api.ScanReceiptRequest]) (*connect.Response[api.ScanReceiptResponse], error) {
	return c.scanReceipt.CallUnary(ctx, req)
}

func (c *receiptServiceClient) AcceptReceipt(ctx context.Context, req *connect.Request[api.AcceptReceiptRequest]) (*connect.Response[api.AcceptReceiptResponse], error) {
	return c.acceptReceipt.CallUnary(ctx, req)
}
