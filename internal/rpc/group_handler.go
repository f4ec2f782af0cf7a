package rpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitright/internal/service"
)

// GroupServer adapts LedgerService to the GroupService procedures.
type GroupServer struct {
	svc *service.LedgerService
}

// NewGroupServer creates a GroupServer.
func NewGroupServer(svc *service.LedgerService) *GroupServer {
	return &GroupServer{svc: svc}
}

// NewGroupServiceHandler builds an HTTP handler for every GroupService procedure and
// returns the path prefix to mount it on.
func NewGroupServiceHandler(s *GroupServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{codecOption()}, opts...)

	mux := http.NewServeMux()
	mux.Handle(GroupServiceCreateGroupProcedure, connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, s.CreateGroup, opts...))
	mux.Handle(GroupServiceGetGroupProcedure, connect.NewUnaryHandler(GroupServiceGetGroupProcedure, s.GetGroup, opts...))
	mux.Handle(GroupServiceListGroupsProcedure, connect.NewUnaryHandler(GroupServiceListGroupsProcedure, s.ListGroups, opts...))
	mux.Handle(GroupServiceUpdateGroupProcedure, connect.NewUnaryHandler(GroupServiceUpdateGroupProcedure, s.UpdateGroup, opts...))
	mux.Handle(GroupServiceDeleteGroupProcedure, connect.NewUnaryHandler(GroupServiceDeleteGroupProcedure, s.DeleteGroup, opts...))
	mux.Handle(GroupServiceGetBalancesProcedure, connect.NewUnaryHandler(GroupServiceGetBalancesProcedure, s.GetBalances, opts...))
	mux.Handle(GroupServiceGetSettlementsProcedure, connect.NewUnaryHandler(GroupServiceGetSettlementsProcedure, s.GetSettlements, opts...))
	return "/" + GroupServiceName + "/", mux
}

// CreateGroup creates a new group.
func (s *GroupServer) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	group, err := s.svc.CreateGroup(ctx, req.Msg.Name, req.Msg.Members)
	if err != nil {
		return nil, toConnectError("CreateGroup", err)
	}
	return connect.NewResponse(&CreateGroupResponse{Group: group}), nil
}

// GetGroup retrieves a group by ID.
func (s *GroupServer) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error) {
	if err := requireGroupID(req.Msg.GroupID); err != nil {
		return nil, err
	}
	group, err := s.svc.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("GetGroup", err)
	}
	return connect.NewResponse(&GetGroupResponse{Group: group}), nil
}

// ListGroups retrieves all groups.
func (s *GroupServer) ListGroups(ctx context.Context, _ *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	groups, err := s.svc.ListGroups(ctx)
	if err != nil {
		return nil, toConnectError("ListGroups", err)
	}
	return connect.NewResponse(&ListGroupsResponse{Groups: groups}), nil
}

// UpdateGroup replaces a group's name and member list.
func (s *GroupServer) UpdateGroup(ctx context.Context, req *connect.Request[UpdateGroupRequest]) (*connect.Response[UpdateGroupResponse], error) {
	if err := requireGroupID(req.Msg.GroupID); err != nil {
		return nil, err
	}
	group, err := s.svc.UpdateGroup(ctx, req.Msg.GroupID, req.Msg.Name, req.Msg.Members)
	if err != nil {
		return nil, toConnectError("UpdateGroup", err)
	}
	return connect.NewResponse(&UpdateGroupResponse{Group: group}), nil
}

// DeleteGroup removes a group and its expenses.
func (s *GroupServer) DeleteGroup(ctx context.Context, req *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error) {
	if err := requireGroupID(req.Msg.GroupID); err != nil {
		return nil, err
	}
	if err := s.svc.DeleteGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, toConnectError("DeleteGroup", err)
	}
	return connect.NewResponse(&DeleteGroupResponse{}), nil
}

// GetBalances returns every member's rounded position.
func (s *GroupServer) GetBalances(ctx context.Context, req *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	if err := requireGroupID(req.Msg.GroupID); err != nil {
		return nil, err
	}
	summaries, err := s.svc.GetBalances(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("GetBalances", err)
	}
	return connect.NewResponse(&GetBalancesResponse{Balances: toMemberBalances(summaries)}), nil
}

// GetSettlements returns the payments that settle the group.
func (s *GroupServer) GetSettlements(ctx context.Context, req *connect.Request[GetSettlementsRequest]) (*connect.Response[GetSettlementsResponse], error) {
	if err := requireGroupID(req.Msg.GroupID); err != nil {
		return nil, err
	}
	settlements, err := s.svc.GetSettlements(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("GetSettlements", err)
	}
	return connect.NewResponse(&GetSettlementsResponse{Settlements: toSettlements(settlements)}), nil
}
