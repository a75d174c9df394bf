package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitroom/pkg/api"
)

const RoomServiceName = "splitroom.v1.RoomService"

const (
	RoomServiceCreateRoomProcedure             = "/splitroom.v1.RoomService/CreateRoom"
	RoomServiceGetRoomProcedure                = "/splitroom.v1.RoomService/GetRoom"
	RoomServiceGetRoomByCodeProcedure          = "/splitroom.v1.RoomService/GetRoomByCode"
	RoomServiceJoinRoomProcedure               = "/splitroom.v1.RoomService/JoinRoom"
	RoomServiceLeaveRoomProcedure              = "/splitroom.v1.RoomService/LeaveRoom"
	RoomServiceListMyRoomsProcedure            = "/splitroom.v1.RoomService/ListMyRooms"
	RoomServiceDeleteRoomProcedure             = "/splitroom.v1.RoomService/DeleteRoom"
	RoomServiceRenameParticipantProcedure      = "/splitroom.v1.RoomService/RenameParticipant"
	RoomServiceSetSubmittedProcedure           = "/splitroom.v1.RoomService/SetSubmitted"
	RoomServiceUpdateServiceChargeProcedure    = "/splitroom.v1.RoomService/UpdateServiceCharge"
	RoomServiceUpdateTaxProfilesProcedure      = "/splitroom.v1.RoomService/UpdateTaxProfiles"
	RoomServiceToggleGlobalTaxProfileProcedure = "/splitroom.v1.RoomService/ToggleGlobalTaxProfile"
	RoomServiceToggleDoubleTaxProfileProcedure = "/splitroom.v1.RoomService/ToggleDoubleTaxProfile"
	RoomServiceAddItemProcedure                = "/splitroom.v1.RoomService/AddItem"
	RoomServiceDeleteItemProcedure             = "/splitroom.v1.RoomService/DeleteItem"
	RoomServiceListItemsProcedure              = "/splitroom.v1.RoomService/ListItems"
	RoomServiceToggleSelectionProcedure        = "/splitroom.v1.RoomService/ToggleSelection"
	RoomServiceSetItemTaxProfileProcedure      = "/splitroom.v1.RoomService/SetItemTaxProfile"
)

// RoomServiceHandler manages rooms, their participants, tax profiles and items.
type RoomServiceHandler interface {
	CreateRoom(context.Context, *connect.Request[api.CreateRoomRequest]) (*connect.Response[api.RoomResponse], error)
	GetRoom(context.Context, *connect.Request[api.GetRoomRequest]) (*connect.Response[api.RoomResponse], error)
	GetRoomByCode(context.Context, *connect.Request[api.GetRoomByCodeRequest]) (*connect.Response[api.RoomResponse], error)
	JoinRoom(context.Context, *connect.Request[api.JoinRoomRequest]) (*connect.Response[api.RoomResponse], error)
	LeaveRoom(context.Context, *connect.Request[api.LeaveRoomRequest]) (*connect.Response[api.LeaveRoomResponse], error)
	ListMyRooms(context.Context, *connect.Request[api.ListMyRoomsRequest]) (*connect.Response[api.ListMyRoomsResponse], error)
	DeleteRoom(context.Context, *connect.Request[api.DeleteRoomRequest]) (*connect.Response[api.DeleteRoomResponse], error)
	RenameParticipant(context.Context, *connect.Request[api.RenameParticipantRequest]) (*connect.Response[api.RoomResponse], error)
	SetSubmitted(context.Context, *connect.Request[api.SetSubmittedRequest]) (*connect.Response[api.RoomResponse], error)
	UpdateServiceCharge(context.Context, *connect.Request[api.UpdateServiceChargeRequest]) (*connect.Response[api.RoomResponse], error)
	UpdateTaxProfiles(context.Context, *connect.Request[api.UpdateTaxProfilesRequest]) (*connect.Response[api.RoomResponse], error)
	ToggleGlobalTaxProfile(context.Context, *connect.Request[api.ToggleTaxProfileRequest]) (*connect.Response[api.RoomResponse], error)
	ToggleDoubleTaxProfile(context.Context, *connect.Request[api.ToggleTaxProfileRequest]) (*connect.Response[api.RoomResponse], error)
	AddItem(context.Context, *connect.Request[api.AddItemRequest]) (*connect.Response[api.ItemResponse], error)
	DeleteItem(context.Context, *connect.Request[api.DeleteItemRequest]) (*connect.Response[api.DeleteItemResponse], error)
	ListItems(context.Context, *connect.Request[api.ListItemsRequest]) (*connect.Response[api.ListItemsResponse], error)
	ToggleSelection(context.Context, *connect.Request[api.ToggleSelectionRequest]) (*connect.Response[api.ToggleSelectionResponse], error)
	SetItemTaxProfile(context.Context, *connect.Request[api.SetItemTaxProfileRequest]) (*connect.Response[api.ItemResponse], error)
}

// NewRoomServiceHandler returns the path to mount the handler on and the handler.
func NewRoomServiceHandler(svc RoomServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	handleUnary(mux, RoomServiceCreateRoomProcedure, svc.CreateRoom, opts)
	handleUnary(mux, RoomServiceGetRoomProcedure, svc.GetRoom, opts)
	handleUnary(mux, RoomServiceGetRoomByCodeProcedure, svc.GetRoomByCode, opts)
	handleUnary(mux, RoomServiceJoinRoomProcedure, svc.JoinRoom, opts)
	handleUnary(mux, RoomServiceLeaveRoomProcedure, svc.LeaveRoom, opts)
	handleUnary(mux, RoomServiceListMyRoomsProcedure, svc.ListMyRooms, opts)
	handleUnary(mux, RoomServiceDeleteRoomProcedure, svc.DeleteRoom, opts)
	handleUnary(mux, RoomServiceRenameParticipantProcedure, svc.RenameParticipant, opts)
	handleUnary(mux, RoomServiceSetSubmittedProcedure, svc.SetSubmitted, opts)
	handleUnary(mux, RoomServiceUpdateServiceChargeProcedure, svc.UpdateServiceCharge, opts)
	handleUnary(mux, RoomServiceUpdateTaxProfilesProcedure, svc.UpdateTaxProfiles, opts)
	handleUnary(mux, RoomServiceToggleGlobalTaxProfileProcedure, svc.ToggleGlobalTaxProfile, opts)
	handleUnary(mux, RoomServiceToggleDoubleTaxProfileProcedure, svc.ToggleDoubleTaxProfile, opts)
	handleUnary(mux, RoomServiceAddItemProcedure, svc.AddItem, opts)
	handleUnary(mux, RoomServiceDeleteItemProcedure, svc.DeleteItem, opts)
	handleUnary(mux, RoomServiceListItemsProcedure, svc.ListItems, opts)
	handleUnary(mux, RoomServiceToggleSelectionProcedure, svc.ToggleSelection, opts)
	handleUnary(mux, RoomServiceSetItemTaxProfileProcedure, svc.SetItemTaxProfile, opts)
	return "/" + RoomServiceName + "/", mux
}

// RoomServiceClient is a client for the RoomService.
type RoomServiceClient interface {
	CreateRoom(context.Context, *connect.Request[api.CreateRoomRequest]) (*connect.Response[api.RoomResponse], error)
	GetRoom(context.Context, *connect.Request[api.GetRoomRequest]) (*connect.Response[api.RoomResponse], error)
	GetRoomByCode(context.Context, *connect.Request[api.GetRoomByCodeRequest]) (*connect.Response[api.RoomResponse], error)
	JoinRoom(context.Context, *connect.Request[api.JoinRoomRequest]) (*connect.Response[api.RoomResponse], error)
	LeaveRoom(context.Context, *connect.Request[api.LeaveRoomRequest]) (*connect.Response[api.LeaveRoomResponse], error)
	ListMyRooms(context.Context, *connect.Request[api.ListMyRoomsRequest]) (*connect.Response[api.ListMyRoomsResponse], error)
	DeleteRoom(context.Context, *connect.Request[api.DeleteRoomRequest]) (*connect.Response[api.DeleteRoomResponse], error)
	RenameParticipant(context.Context, *connect.Request[api.RenameParticipantRequest]) (*connect.Response[api.RoomResponse], error)
	SetSubmitted(context.Context, *connect.Request[api.SetSubmittedRequest]) (*connect.Response[api.RoomResponse], error)
	UpdateServiceCharge(context.Context, *connect.Request[api.UpdateServiceChargeRequest]) (*connect.Response[api.RoomResponse], error)
	UpdateTaxProfiles(context.Context, *connect.Request[api.UpdateTaxProfilesRequest]) (*connect.Response[api.RoomResponse], error)
	ToggleGlobalTaxProfile(context.Context, *connect.Request[api.ToggleTaxProfileRequest]) (*connect.Response[api.RoomResponse], error)
	ToggleDoubleTaxProfile(context.Context, *connect.Request[api.ToggleTaxProfileRequest]) (*connect.Response[api.RoomResponse], error)
	AddItem(context.Context, *connect.Request[api.AddItemRequest]) (*connect.Response[api.ItemResponse], error)
	DeleteItem(context.Context, *connect.Request[api.DeleteItemRequest]) (*connect.Response[api.DeleteItemResponse], error)
	ListItems(context.Context, *connect.Request[api.ListItemsRequest]) (*connect.Response[api.ListItemsResponse], error)
	ToggleSelection(context.Context, *connect.Request[api.ToggleSelectionRequest]) (*connect.Response[api.ToggleSelectionResponse], error)
	SetItemTaxProfile(context.Context, *connect.Request[api.SetItemTaxProfileRequest]) (*connect.Response[api.ItemResponse], error)
}

type roomServiceClient struct {
	createRoom             *connect.Client[api.CreateRoomRequest, api.RoomResponse]
	getRoom                *connect.Client[api.GetRoomRequest, api.RoomResponse]
	getRoomByCode          *connect.Client[api.GetRoomByCodeRequest, api.RoomResponse]
	joinRoom               *connect.Client[api.JoinRoomRequest, api.RoomResponse]
	leaveRoom              *connect.Client[api.LeaveRoomRequest, api.LeaveRoomResponse]
	listMyRooms            *connect.Client[api.ListMyRoomsRequest, api.ListMyRoomsResponse]
	deleteRoom             *connect.Client[api.DeleteRoomRequest, api.DeleteRoomResponse]
	renameParticipant      *connect.Client[api.RenameParticipantRequest, api.RoomResponse]
	setSubmitted           *connect.Client[api.SetSubmittedRequest, api.RoomResponse]
	updateServiceCharge    *connect.Client[api.UpdateServiceChargeRequest, api.RoomResponse]
	updateTaxProfiles      *connect.Client[api.UpdateTaxProfilesRequest, api.RoomResponse]
	toggleGlobalTaxProfile *connect.Client[api.ToggleTaxProfileRequest, api.RoomResponse]
	toggleDoubleTaxProfile *connect.Client[api.ToggleTaxProfileRequest, api.RoomResponse]
	addItem                *connect.Client[api.AddItemRequest, api.ItemResponse]
	deleteItem             *connect.Client[api.DeleteItemRequest, api.DeleteItemResponse]
	listItems              *connect.Client[api.ListItemsRequest, api.ListItemsResponse]
	toggleSelection        *connect.Client[api.ToggleSelectionRequest, api.ToggleSelectionResponse]
	setItemTaxProfile      *connect.Client[api.SetItemTaxProfileRequest, api.ItemResponse]
}

// NewRoomServiceClient constructs a client for the RoomService at baseURL.
func NewRoomServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) RoomServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &roomServiceClient{
		createRoom:             connect.NewClient[api.CreateRoomRequest, api.RoomResponse](httpClient, baseURL+RoomServiceCreateRoomProcedure, opts...),
		getRoom:                connect.NewClient[api.GetRoomRequest, api.RoomResponse](httpClient, baseURL+RoomServiceGetRoomProcedure, opts...),
		getRoomByCode:          connect.NewClient[api.GetRoomByCodeRequest, api.RoomResponse](httpClient, baseURL+RoomServiceGetRoomByCodeProcedure, opts...),
		joinRoom:               connect.NewClient[api.JoinRoomRequest, api.RoomResponse](httpClient, baseURL+RoomServiceJoinRoomProcedure, opts...),
		leaveRoom:              connect.NewClient[api.LeaveRoomRequest, api.LeaveRoomResponse](httpClient, baseURL+RoomServiceLeaveRoomProcedure, opts...),
		listMyRooms:            connect.NewClient[api.ListMyRoomsRequest, api.ListMyRoomsResponse](httpClient, baseURL+RoomServiceListMyRoomsProcedure, opts...),
		deleteRoom:             connect.NewClient[api.DeleteRoomRequest, api.DeleteRoomResponse](httpClient, baseURL+RoomServiceDeleteRoomProcedure, opts...),
		renameParticipant:      connect.NewClient[api.RenameParticipantRequest, api.RoomResponse](httpClient, baseURL+RoomServiceRenameParticipantProcedure, opts...),
		setSubmitted:           connect.NewClient[api.SetSubmittedRequest, api.RoomResponse](httpClient, baseURL+RoomServiceSetSubmittedProcedure, opts...),
		updateServiceCharge:    connect.NewClient[api.UpdateServiceChargeRequest, api.RoomResponse](httpClient, baseURL+RoomServiceUpdateServiceChargeProcedure, opts...),
		updateTaxProfiles:      connect.NewClient[api.UpdateTaxProfilesRequest, api.RoomResponse](httpClient, baseURL+RoomServiceUpdateTaxProfilesProcedure, opts...),
		toggleGlobalTaxProfile: connect.NewClient[api.ToggleTaxProfileRequest, api.RoomResponse](httpClient, baseURL+RoomServiceToggleGlobalTaxProfileProcedure, opts...),
		toggleDoubleTaxProfile: connect.NewClient[api.ToggleTaxProfileRequest, api.RoomResponse](httpClient, baseURL+RoomServiceToggleDoubleTaxProfileProcedure, opts...),
		addItem:                connect.NewClient[api.AddItemRequest, api.ItemResponse](httpClient, baseURL+RoomServiceAddItemProcedure, opts...),
		deleteItem:             connect.NewClient[api.DeleteItemRequest, api.DeleteItemResponse](httpClient, baseURL+RoomServiceDeleteItemProcedure, opts...),
		listItems:              connect.NewClient[api.ListItemsRequest, api.ListItemsResponse](httpClient, baseURL+RoomServiceListItemsProcedure, opts...),
		toggleSelection:        connect.NewClient[api.ToggleSelectionRequest, api.ToggleSelectionResponse](httpClient, baseURL+RoomServiceToggleSelectionProcedure, opts...),
		setItemTaxProfile:      connect.NewClient[api.SetItemTaxProfileRequest, api.ItemResponse](httpClient, baseURL+RoomServiceSetItemTaxProfileProcedure, opts...),
	}
}

func (c *roomServiceClient) CreateRoom(ctx context.Context, req *connect.Request[api.CreateRoomRequest]) (*connect.Response[api.RoomResponse], error) {
	return c.createRoom.CallUnary(ctx, req)
}

func (c *roomServiceClient) GetRoom(ctx context.Context, req *connect.Request[api.GetRoomRequest]) (*connect.Response[api.RoomResponse], error) {
	return c.getRoom.CallUnary(ctx, req)
}

func (c *roomServiceClient) GetRoomByCode(ctx context.Context, req *connect.Request[api.GetRoomByCodeRequest]) (*connect.Response[api.RoomResponse], error) {
	return c.getRoomByCode.CallUnary(ctx, req)
}

func (c *roomServiceClient) JoinRoom(ctx context.Context, req *connect.Request[api.JoinRoomRequest]) (*connect.Response[api.RoomResponse], error) {
	return c.joinRoom.CallUnary(ctx, req)
}

func (c *roomServiceClient) LeaveRoom(ctx context.Context, req *connect.Request[api.LeaveRoomRequest]) (*connect.Response[api.LeaveRoomResponse], error) {
	return c.leaveRoom.CallUnary(ctx, req)
}

func (c *roomServiceClient) ListMyRooms(ctx context.Context, req *connect.Request[api.ListMyRoomsRequest]) (*connect.Response[api.ListMyRoomsResponse], error) {
	return c.listMyRooms.CallUnary(ctx, req)
}

func (c *roomServiceClient) DeleteRoom(ctx context.Context, req *connect.Request[api.DeleteRoomRequest]) (*connect.Response[api.DeleteRoomResponse], error) {
	return c.deleteRoom.CallUnary(ctx, req)
}

func (c *roomServiceClient) RenameParticipant(ctx context.Context, req *connect.Request[api.RenameParticipantRequest]) (*connect.Response[api.RoomResponse], error) {
	return c.renameParticipant.CallUnary(ctx, req)
}

func (c *roomServiceClient) SetSubmitted(ctx context.Context, req *connect.Request[api.SetSubmittedRequest]) (*connect.Response[api.RoomResponse], error) {
	return c.setSubmitted.CallUnary(ctx, req)
}

func (c *roomServiceClient) UpdateServiceCharge(ctx context.Context, req *connect.Request[api.UpdateServiceChargeRequest]) (*connect.Response[api.RoomResponse], error) {
	return c.updateServiceCharge.CallUnary(ctx, req)
}

func (c *roomServiceClient) UpdateTaxProfiles(ctx context.Context, req *connect.Request[api.UpdateTaxProfilesRequest]) (*connect.Response[api.RoomResponse], error) {
	return c.updateTaxProfiles.CallUnary(ctx, req)
}

func (c *roomServiceClient) ToggleGlobalTaxProfile(ctx context.Context, req *connect.Request[api.ToggleTaxProfileRequest]) (*connect.Response[api.RoomResponse], error) {
	return c.toggleGlobalTaxProfile.CallUnary(ctx, req)
}

func (c *roomServiceClient) ToggleDoubleTaxProfile(ctx context.Context, req *connect.Request[api.ToggleTaxProfileRequest]) (*connect.Response[api.RoomResponse], error) {
	return c.toggleDoubleTaxProfile.CallUnary(ctx, req)
}

func (c *roomServiceClient) AddItem(ctx context.Context, req *connect.Request[api.AddItemRequest]) (*connect.Response[api.ItemResponse], error) {
	return c.addItem.CallUnary(ctx, req)
}

func (c *roomServiceClient) DeleteItem(ctx context.Context, req *connect.Request[api.DeleteItemRequest]) (*connect.Response[api.DeleteItemResponse], error) {
	return c.deleteItem.CallUnary(ctx, req)
}

func (c *roomServiceClient) ListItems(ctx context.Context, req *connect.Request[api.ListItemsRequest]) (*connect.Response[api.ListItemsResponse], error) {
	return c.listItems.CallUnary(ctx, req)
}

func (c *roomServiceClient) ToggleSelection(ctx context.Context, req *connect.Request[api.ToggleSelectionRequest]) (*connect.Response[api.ToggleSelectionResponse], error) {
	return c.toggleSelection.CallUnary(ctx, req)
}

func (c *roomServiceClient) SetItemTaxProfile(ctx context.Context, req *connect.Request[api.SetItemTaxProfileRequest]) (*connect.Response[api.ItemResponse], error) {
	return c.setItemTaxProfile.CallUnary(ctx, req)
}
