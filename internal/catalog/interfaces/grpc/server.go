package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/storefront/internal/catalog/application"
	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName 目录服务全名
const ServiceName = "storefront.catalog.v1.CatalogService"

// CatalogServiceServer 目录 gRPC 服务，请求与响应均为 google.protobuf.Struct
type CatalogServiceServer interface {
	GetFilterPage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCategoriesWithOffers(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// Server 目录 gRPC 服务实现
type Server struct {
	app *application.CatalogQueryService
}

// NewServer 创建并注册目录 gRPC 服务
func NewServer(s *grpc.Server, app *application.CatalogQueryService) *Server {
	srv := &Server{app: app}
	s.RegisterService(&CatalogServiceDesc, srv)
	return srv
}

// GetFilterPage 筛选页
// 请求字段：page, categoryId, available, minPrice, maxPrice, sorting
func (s *Server) GetFilterPage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	q, err := filterQueryFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	res, err := s.app.GetFilterPage(ctx, q)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(res)
}

// GetCategoriesWithOffers 首页分组，结果位于 groups 字段
func (s *Server) GetCategoriesWithOffers(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	groups, err := s.app.GetCategoriesWithOffers(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{"groups": groups})
}

func filterQueryFromStruct(req *structpb.Struct) (domain.FilterQuery, error) {
	q := domain.FilterQuery{Page: 1}
	fields := req.GetFields()

	if v, ok := fields["page"]; ok && !isNull(v) {
		n, err := intValue(v)
		if err != nil {
			return q, fmt.Errorf("page: %w", err)
		}
		q.Page = int(n)
	}
	if v, ok := fields["categoryId"]; ok && !isNull(v) {
		n, err := intValue(v)
		if err != nil {
			return q, fmt.Errorf("categoryId: %w", err)
		}
		q.CategoryID = &n
	}
	if v, ok := fields["available"]; ok && !isNull(v) {
		b, ok := v.GetKind().(*structpb.Value_BoolValue)
		if !ok {
			return q, errors.New("available: expected bool")
		}
		q.Available = &b.BoolValue
	}

	lo, hasMin := fields["minPrice"]
	hi, hasMax := fields["maxPrice"]
	if hasMin != hasMax {
		return q, errors.New("minPrice and maxPrice must be provided together")
	}
	if hasMin {
		minPrice, err := decimalValue(lo)
		if err != nil {
			return q, fmt.Errorf("minPrice: %w", err)
		}
		maxPrice, err := decimalValue(hi)
		if err != nil {
			return q, fmt.Errorf("maxPrice: %w", err)
		}
		if minPrice.GreaterThan(maxPrice) {
			return q, errors.New("minPrice must not exceed maxPrice")
		}
		q.PriceRange = &domain.MultiRange{Min: minPrice, Max: maxPrice}
	}

	if v, ok := fields["sorting"]; ok && !isNull(v) {
		b, ok := v.GetKind().(*structpb.Value_BoolValue)
		if !ok {
			return q, errors.New("sorting: expected bool")
		}
		q.Sorting = domain.SortDirectionFromFlag(&b.BoolValue)
	}
	return q, nil
}

func isNull(v *structpb.Value) bool {
	_, ok := v.GetKind().(*structpb.Value_NullValue)
	return ok
}

func intValue(v *structpb.Value) (int64, error) {
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != float64(int64(n.NumberValue)) {
		return 0, errors.New("expected integer")
	}
	return int64(n.NumberValue), nil
}

func decimalValue(v *structpb.Value) (decimal.Decimal, error) {
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return decimal.NewFromFloat(k.NumberValue), nil
	case *structpb.Value_StringValue:
		return decimal.NewFromString(k.StringValue)
	default:
		return decimal.Decimal{}, errors.New("expected number or decimal string")
	}
}

// toStruct 经 JSON 转换为 Struct，字段名与 HTTP 接口一致
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return st, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrCategoryNotFound), errors.Is(err, domain.ErrOfferNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Unavailable, "catalog temporarily unavailable")
	}
}

func getFilterPageHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServiceServer).GetFilterPage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetFilterPage"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServiceServer).GetFilterPage(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func getCategoriesWithOffersHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServiceServer).GetCategoriesWithOffers(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetCategoriesWithOffers"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServiceServer).GetCategoriesWithOffers(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// CatalogServiceDesc 手写的服务描述
var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetFilterPage", Handler: getFilterPageHandler},
		{MethodName: "GetCategoriesWithOffers", Handler: getCategoriesWithOffersHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/catalog/v1/catalog.proto",
}
