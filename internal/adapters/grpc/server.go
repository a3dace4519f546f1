package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ZhiquAI/aigrading-license-service/internal/application"
)

// LicenseInternalService is the contract other backend services call over
// gRPC: access-token validation and quota checks without an HTTP round-trip.
type LicenseInternalService interface {
	ValidateToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckQuota(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type LicenseInternalServer struct {
	service *application.Service
}

func NewLicenseInternalServer(service *application.Service) *LicenseInternalServer {
	return &LicenseInternalServer{service: service}
}

func Register(server grpc.ServiceRegistrar, svc LicenseInternalService) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: "zhiqu.license.v1.LicenseInternalService",
		HandlerType: (*LicenseInternalService)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "ValidateToken",
				Handler:    validateTokenHandler(svc),
			},
			{
				MethodName: "CheckQuota",
				Handler:    checkQuotaHandler(svc),
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "zhiqu/license/v1/license_internal.proto",
	}, svc)
}

func (s *LicenseInternalServer) ValidateToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	tokenVal := req.GetFields()["token"]
	if tokenVal == nil {
		return nil, status.Error(codes.InvalidArgument, "missing token")
	}
	token := tokenVal.GetStringValue()
	if token == "" {
		return nil, status.Error(codes.InvalidArgument, "missing token")
	}

	claims, err := s.service.VerifyAccess(ctx, token)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	resp, err := structpb.NewStruct(map[string]any{
		"valid":      true,
		"user_id":    claims.UserID.String(),
		"email":      claims.Email,
		"role":       claims.Role,
		"expires_at": claims.ExpiresAt.Unix(),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func (s *LicenseInternalServer) CheckQuota(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	deviceVal := req.GetFields()["device_id"]
	if deviceVal == nil {
		return nil, status.Error(codes.InvalidArgument, "missing device_id")
	}
	deviceID := deviceVal.GetStringValue()
	if deviceID == "" {
		return nil, status.Error(codes.InvalidArgument, "missing device_id")
	}

	check, err := s.service.CheckQuota(ctx, deviceID)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "check quota: %v", err)
	}

	resp, err := structpb.NewStruct(map[string]any{
		"can_use":   check.CanUse,
		"remaining": check.Remaining,
		"total":     check.Total,
		"used":      check.Used,
		"reason":    check.Reason,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func validateTokenHandler(svc LicenseInternalService) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &structpb.Struct{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return svc.ValidateToken(ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/zhiqu.license.v1.LicenseInternalService/ValidateToken",
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*structpb.Struct)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return svc.ValidateToken(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}

func checkQuotaHandler(svc LicenseInternalService) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &structpb.Struct{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return svc.CheckQuota(ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/zhiqu.license.v1.LicenseInternalService/CheckQuota",
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*structpb.Struct)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return svc.CheckQuota(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}
