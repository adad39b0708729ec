package api

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"storefront-catalog/internal/catalog"
	"storefront-catalog/internal/domain"
)

// CatalogServiceName is the fully qualified gRPC service name.
const CatalogServiceName = "storefront.catalog.v1.CatalogService"

// Requests and responses travel as google.protobuf.Struct so that the
// service needs no generated code; field names match the HTTP JSON.

// CatalogServiceServer is the server API for CatalogService.
type CatalogServiceServer interface {
	QueryProducts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetFilterMetadata(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterCatalogServiceServer registers srv with s.
func RegisterCatalogServiceServer(s grpc.ServiceRegistrar, srv CatalogServiceServer) {
	s.RegisterService(&catalogServiceDesc, srv)
}

func unaryHandler(method string, call func(CatalogServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CatalogServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + CatalogServiceName + "/" + method}
			return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(CatalogServiceServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

var catalogServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("QueryProducts", CatalogServiceServer.QueryProducts),
		unaryHandler("GetProduct", CatalogServiceServer.GetProduct),
		unaryHandler("GetFilterMetadata", CatalogServiceServer.GetFilterMetadata),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/catalog/v1/catalog.proto",
}

// CatalogServiceClient is the client API for CatalogService.
type CatalogServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCatalogServiceClient(cc grpc.ClientConnInterface) *CatalogServiceClient {
	return &CatalogServiceClient{cc: cc}
}

func (c *CatalogServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+CatalogServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogServiceClient) QueryProducts(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "QueryProducts", in, opts...)
}

func (c *CatalogServiceClient) GetProduct(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetProduct", in, opts...)
}

func (c *CatalogServiceClient) GetFilterMetadata(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetFilterMetadata", in, opts...)
}

// GRPCHandler implements CatalogServiceServer over a loaded catalog.
type GRPCHandler struct {
	products []domain.Product
	opts     catalog.Options
	logger   *zap.Logger
}

// NewGRPCHandler creates a new GRPCHandler.
func NewGRPCHandler(products []domain.Product, opts catalog.Options, logger *zap.Logger) *GRPCHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCHandler{products: products, opts: opts, logger: logger}
}

// QueryRequest is the decoded form of a QueryProducts request.
type QueryRequest struct {
	MinPrice     *float64 `json:"min_price"`
	MaxPrice     *float64 `json:"max_price"`
	Categories   []string `json:"categories"`
	Brands       []string `json:"brands"`
	Rating       *int     `json:"rating"`
	Availability []string `json:"availability"`
	Sort         string   `json:"sort"`
	Page         int      `json:"page"`
	PageSize     int      `json:"page_size"`
}

func (s *GRPCHandler) QueryProducts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var q QueryRequest
	if err := fromStruct(req, &q); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "malformed query: %v", err)
	}
	if q.Page < 0 || q.PageSize < 0 || q.PageSize > maxPageSize {
		return nil, status.Errorf(codes.InvalidArgument, "page must be >= 1 and page_size between 1 and %d", maxPageSize)
	}

	patch := domain.FilterPatch{
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
		Categories: q.Categories,
		Brands:     q.Brands,
		Rating:     q.Rating,
	}
	for _, raw := range q.Availability {
		a, ok := domain.ParseAvailability(raw)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "unknown availability %q", raw)
		}
		patch.Availability = append(patch.Availability, a)
	}

	engine := catalog.New(s.products, s.opts, nil)
	engine.SetFilter(patch)
	engine.SetSort(domain.SortKey(q.Sort))
	engine.SetPageSize(q.PageSize)
	snap := engine.Snapshot()
	// A page past the end is answered with no items, as over HTTP.
	if q.Page > 0 {
		snap.Page = q.Page
	}
	view := catalog.Restore(s.products, snap, s.opts, nil).View()

	s.logger.Debug("QueryProducts served",
		zap.Int("total_items", view.Pagination.TotalItems),
		zap.Int("page", view.Pagination.Page))
	return toStruct(view)
}

func (s *GRPCHandler) GetProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	idValue, ok := req.GetFields()["id"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "Product ID is required")
	}
	id := int64(idValue.GetNumberValue())
	if id <= 0 || float64(id) != idValue.GetNumberValue() {
		return nil, status.Error(codes.InvalidArgument, "Product ID must be a positive integer")
	}

	product, found := catalog.New(s.products, s.opts, nil).ProductByID(id)
	if !found {
		return nil, status.Errorf(codes.NotFound, "Product with ID %d not found", id)
	}
	return toStruct(newProductDetail(product))
}

// FilterMetadata is everything a client needs to draw the filter sidebar.
type FilterMetadata struct {
	catalog.Facets
	SortKeys     []domain.SortKey `json:"sort_keys"`
	PriceCeiling float64          `json:"price_ceiling"`
	PageSize     int              `json:"page_size"`
}

func (s *GRPCHandler) GetFilterMetadata(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	engine := catalog.New(s.products, s.opts, nil)
	opts := engine.Options()
	return toStruct(FilterMetadata{
		Facets:       engine.Facets(),
		SortKeys:     domain.SortKeys,
		PriceCeiling: opts.PriceCeiling,
		PageSize:     opts.PageSize,
	})
}

// UnaryRecoveryInterceptor turns a handler panic into codes.Internal so one
// bad request cannot take the server down.
func UnaryRecoveryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("gRPC handler panic",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					zap.Stack("stack"))
				resp, err = nil, status.Error(codes.Internal, "internal server error")
			}
		}()
		return handler(ctx, req)
	}
}

// UnaryLoggingInterceptor logs each call with its duration and status code.
func UnaryLoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Duration("duration", time.Since(start)),
			zap.String("code", status.Code(err).String()),
		}
		if err != nil {
			logger.Warn("gRPC call failed", append(fields, zap.Error(err))...)
		} else {
			logger.Info("gRPC call", fields...)
		}
		return resp, err
	}
}

func fromStruct(in *structpb.Struct, dst interface{}) error {
	if in == nil {
		return nil
	}
	raw, err := json.Marshal(in.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}
