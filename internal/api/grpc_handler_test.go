package api

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func setupGRPCClient(t *testing.T) *CatalogServiceClient {
	t.Helper()
	return setupGRPCClientFor(t, NewGRPCHandler(testCatalog(), testOptions(), nil), zap.NewNop())
}

func setupGRPCClientFor(t *testing.T, srv CatalogServiceServer, logger *zap.Logger) *CatalogServiceClient {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(
		UnaryLoggingInterceptor(logger),
		UnaryRecoveryInterceptor(logger),
	))
	RegisterCatalogServiceServer(s, srv)

	go func() {
		_ = s.Serve(lis)
	}()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewCatalogServiceClient(conn)
}

func mustStruct(t *testing.T, m map[string]interface{}) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func structItemIDs(t *testing.T, resp *structpb.Struct) []int64 {
	t.Helper()
	var ids []int64
	for _, v := range resp.GetFields()["items"].GetListValue().GetValues() {
		ids = append(ids, int64(v.GetStructValue().GetFields()["id"].GetNumberValue()))
	}
	return ids
}

func TestGRPCHandler_QueryProducts(t *testing.T) {
	client := setupGRPCClient(t)
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		resp, err := client.QueryProducts(ctx, mustStruct(t, nil))
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 4}, structItemIDs(t, resp))

		pagination := resp.GetFields()["pagination"].GetStructValue().GetFields()
		assert.Equal(t, 5.0, pagination["total_items"].GetNumberValue())
		assert.Equal(t, 3.0, pagination["total_pages"].GetNumberValue())
	})

	t.Run("filters sort and page", func(t *testing.T) {
		resp, err := client.QueryProducts(ctx, mustStruct(t, map[string]interface{}{
			"brands":    []interface{}{"acme", "penguin"},
			"sort":      "price-low",
			"page":      2,
			"page_size": 3,
		}))
		require.NoError(t, err)
		// acme+penguin by effective price: 3 (20), 4 (30), 5 (45), 1 (799)
		assert.Equal(t, []int64{1}, structItemIDs(t, resp))
	})

	t.Run("price bounds are inclusive", func(t *testing.T) {
		resp, err := client.QueryProducts(ctx, mustStruct(t, map[string]interface{}{
			"min_price": 35,
			"max_price": 150,
			"page_size": 10,
		}))
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{2, 4, 5}, structItemIDs(t, resp))
	})

	t.Run("page past the end", func(t *testing.T) {
		resp, err := client.QueryProducts(ctx, mustStruct(t, map[string]interface{}{"page": 40}))
		require.NoError(t, err)
		assert.Empty(t, structItemIDs(t, resp))
	})

	t.Run("huge page", func(t *testing.T) {
		for _, page := range []float64{9e17, 1e18} {
			resp, err := client.QueryProducts(ctx, mustStruct(t, map[string]interface{}{"page": page, "page_size": 12}))
			require.NoError(t, err)
			assert.Empty(t, structItemIDs(t, resp))
			pagination := resp.GetFields()["pagination"].GetStructValue().GetFields()
			assert.Equal(t, page, pagination["page"].GetNumberValue())
		}
	})

	t.Run("invalid arguments", func(t *testing.T) {
		for _, req := range []map[string]interface{}{
			{"availability": []interface{}{"backorder"}},
			{"page_size": 1000},
			{"page": -1},
			{"categories": "books"},
		} {
			_, err := client.QueryProducts(ctx, mustStruct(t, req))
			require.Error(t, err)
			assert.Equal(t, codes.InvalidArgument, status.Code(err), "request %v", req)
		}
	})
}

func TestGRPCHandler_GetProduct(t *testing.T) {
	client := setupGRPCClient(t)
	ctx := context.Background()

	resp, err := client.GetProduct(ctx, mustStruct(t, map[string]interface{}{"id": 4}))
	require.NoError(t, err)
	fields := resp.GetFields()
	assert.Equal(t, "Cookbook", fields["name"].GetStringValue())
	assert.Equal(t, 30.0, fields["effective_price"].GetNumberValue())
	assert.Equal(t, 14.0, fields["discount_percent"].GetNumberValue())

	_, err = client.GetProduct(ctx, mustStruct(t, map[string]interface{}{"id": 404}))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.GetProduct(ctx, mustStruct(t, map[string]interface{}{"id": 1.5}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.GetProduct(ctx, mustStruct(t, nil))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPCHandler_GetFilterMetadata(t *testing.T) {
	client := setupGRPCClient(t)

	resp, err := client.GetFilterMetadata(context.Background(), mustStruct(t, nil))
	require.NoError(t, err)
	fields := resp.GetFields()

	assert.Equal(t, 1000.0, fields["price_ceiling"].GetNumberValue())
	assert.Equal(t, 2.0, fields["page_size"].GetNumberValue())
	assert.Len(t, fields["sort_keys"].GetListValue().GetValues(), 7)
	assert.Len(t, fields["brands"].GetListValue().GetValues(), 3)

	availability := fields["availability"].GetStructValue().GetFields()
	assert.Equal(t, 3.0, availability["in_stock"].GetNumberValue())
	assert.Equal(t, 2.0, availability["out_of_stock"].GetNumberValue())
}

// panickingCatalog fails every query with a runtime panic.
type panickingCatalog struct {
	*GRPCHandler
}

func (panickingCatalog) QueryProducts(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	var items []int
	_ = items[3]
	return nil, nil
}

func TestUnaryRecoveryInterceptor(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	client := setupGRPCClientFor(t, panickingCatalog{NewGRPCHandler(testCatalog(), testOptions(), nil)}, zap.New(core))
	ctx := context.Background()

	_, err := client.QueryProducts(ctx, mustStruct(t, nil))
	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Equal(t, 1, logs.FilterMessage("gRPC handler panic").Len())

	// The server keeps serving after a panic.
	resp, err := client.GetProduct(ctx, mustStruct(t, map[string]interface{}{"id": 1}))
	require.NoError(t, err)
	assert.Equal(t, "Laptop", resp.GetFields()["name"].GetStringValue())
}
