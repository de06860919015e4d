package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	httpadapter "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/memory"
	"dispatch/internal/adapters/out/metrics"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/services"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

// ServerTestSuite drives the router end to end over the in-memory store.
type ServerTestSuite struct {
	suite.Suite
	echo *echo.Echo
}

func (suite *ServerTestSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)
	store := memory.NewStore()
	reg := prometheus.NewRegistry()

	sink, err := metrics.NewPromSink(reg)
	suite.Require().NoError(err)
	recorder, err := metrics.NewHTTPRecorder(reg)
	suite.Require().NoError(err)

	registry := services.NewCourierRegistry(store.CourierRepository(), nil, logger)
	matcher := services.NewDispatchMatcher(registry, store.OrderRepository(), services.MatcherSettings{}, logger)
	claims := services.NewClaimCoordinator(registry, store.OrderRepository(), sink, logger)

	server := httpadapter.NewServer(httpadapter.Handlers{
		UpdateCourierLocation:   commands.NewUpdateCourierLocationCommandHandler(registry),
		CreateOrder:             commands.NewCreateOrderCommandHandler(store.OrderRepository(), matcher, sink, logger),
		SetOrderStatus:          commands.NewSetOrderStatusCommandHandler(claims),
		AcceptOrder:             commands.NewAcceptOrderCommandHandler(claims),
		RejectOrder:             commands.NewRejectOrderCommandHandler(claims),
		GetOrder:                queries.NewGetOrderQueryHandler(store.OrderRepository()),
		ListCustomerOrders:      queries.NewListCustomerOrdersQueryHandler(store.OrderRepository()),
		ListNearbyPendingOrders: queries.NewListNearbyPendingOrdersQueryHandler(registry, matcher),
	}, store, logger)

	suite.echo = httpadapter.NewRouter(server, httpadapter.RouterOptions{Gatherer: reg, Recorder: recorder})
}

func (suite *ServerTestSuite) TestDispatchScenario() {
	a := suite.ping(`{"name":"A","phone":"+911","location":{"type":"Point","coordinates":[77.2091,28.6140]}}`)
	b := suite.ping(`{"name":"B","phone":"+912","location":{"type":"Point","coordinates":[77.230,28.650]}}`)

	rec := suite.do(http.MethodPost, "/api/orders?maxDistance=2000", newOrderBody("customer-1"))
	suite.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var created httpadapter.CreatedOrder
	suite.decode(rec, &created)
	suite.Equal("pending", created.Order.Status)
	suite.Nil(created.Order.AssignedCourierID)
	suite.InDelta(250.5, created.Order.TotalAmount, 1e-9)
	suite.Require().Len(created.CandidateCouriers, 1)
	suite.Equal(a.ID, created.CandidateCouriers[0].ID)
	orderID := created.Order.ID

	suite.Len(suite.nearby(a.ID, ""), 1)

	rec = suite.do(http.MethodPost, "/api/couriers/"+a.ID+"/orders/"+orderID+"/reject", "")
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	suite.Empty(suite.nearby(a.ID, ""))
	suite.Len(suite.nearby(b.ID, ""), 1)
	suite.Empty(suite.nearby(b.ID, "1000"))

	rec = suite.do(http.MethodPost, "/api/couriers/"+b.ID+"/orders/"+orderID+"/accept", "")
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var accepted httpadapter.Order
	suite.decode(rec, &accepted)
	suite.Equal("accepted", accepted.Status)
	suite.Require().NotNil(accepted.AssignedCourierID)
	suite.Equal(b.ID, *accepted.AssignedCourierID)
	suite.Equal([]string{a.ID}, accepted.RejectedBy)

	rec = suite.do(http.MethodPost, "/api/couriers/"+a.ID+"/orders/"+orderID+"/accept", "")
	suite.Equal(http.StatusConflict, rec.Code)
	rec = suite.do(http.MethodPost, "/api/couriers/"+a.ID+"/orders/"+orderID+"/reject", "")
	suite.Equal(http.StatusNotFound, rec.Code)

	for _, status := range []string{"picked_up", "delivered"} {
		rec = suite.do(http.MethodPost, "/api/orders/"+orderID+"/status", `{"status":"`+status+`"}`)
		suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	}
	rec = suite.do(http.MethodPost, "/api/orders/"+orderID+"/status", `{"status":"cancelled"}`)
	suite.Equal(http.StatusConflict, rec.Code)

	rec = suite.do(http.MethodGet, "/api/orders/"+orderID, "")
	suite.Require().Equal(http.StatusOK, rec.Code)
	var got httpadapter.Order
	suite.decode(rec, &got)
	suite.Equal("delivered", got.Status)
	suite.Equal(b.ID, *got.AssignedCourierID)
}

func (suite *ServerTestSuite) TestConcurrentAccepts_ExactlyOneWins() {
	rec := suite.do(http.MethodPost, "/api/orders", newOrderBody("customer-1"))
	suite.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var created httpadapter.CreatedOrder
	suite.decode(rec, &created)

	const couriers = 16
	ids := make([]string, couriers)
	for i := range ids {
		ids[i] = suite.ping(fmt.Sprintf(
			`{"phone":"+9100%d","location":{"coordinates":[77.2091,28.6140]}}`, i)).ID
	}

	codes := make([]int, couriers)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost,
				"/api/couriers/"+ids[i]+"/orders/"+created.Order.ID+"/accept", nil)
			r := httptest.NewRecorder()
			suite.echo.ServeHTTP(r, req)
			codes[i] = r.Code
		}(i)
	}
	wg.Wait()

	won := 0
	for _, code := range codes {
		switch code {
		case http.StatusOK:
			won++
		case http.StatusConflict:
		default:
			suite.Failf("unexpected status", "got %d", code)
		}
	}
	suite.Equal(1, won)
}

func (suite *ServerTestSuite) TestUpdateCourierLocation() {
	c := suite.ping(`{"phone":"+913","location":{"coordinates":[77.2,28.6]}}`)
	suite.Equal("Courier", c.Name)
	suite.True(c.IsAvailable)
	suite.Equal("Point", c.Location.Type)
	suite.Equal([]float64{77.2, 28.6}, c.Location.Coordinates)

	rec := suite.do(http.MethodPost, "/api/couriers/location",
		`{"courierId":"`+c.ID+`","isAvailable":false,"location":{"coordinates":[77.3,28.7]}}`)
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var moved httpadapter.Courier
	suite.decode(rec, &moved)
	suite.Equal(c.ID, moved.ID)
	suite.False(moved.IsAvailable)
	suite.Equal("+913", moved.Phone)

	cases := map[string]string{
		"missing location":      `{"phone":"+914"}`,
		"one coordinate":        `{"phone":"+914","location":{"coordinates":[77.2]}}`,
		"latitude out of range": `{"phone":"+914","location":{"coordinates":[77.2,95]}}`,
		"no id and no phone":    `{"location":{"coordinates":[77.2,28.6]}}`,
		"malformed courier id":  `{"courierId":"nope","location":{"coordinates":[77.2,28.6]}}`,
		"not a point":           `{"phone":"+914","location":{"type":"LineString","coordinates":[77.2,28.6]}}`,
		"body is not json":      `{`,
	}
	for name, body := range cases {
		rec = suite.do(http.MethodPost, "/api/couriers/location", body)
		suite.Equal(http.StatusBadRequest, rec.Code, name)
		var e httpadapter.Error
		suite.decode(rec, &e)
		suite.Equal(http.StatusBadRequest, e.Code, name)
		suite.NotEmpty(e.Message, name)
	}
}

func (suite *ServerTestSuite) TestCreateOrder_Validation() {
	cases := map[string]string{
		"missing total":    `{"customerId":"c","pickup":{"geo":{"coordinates":[77.2,28.6]}},"dropoff":{"geo":{"coordinates":[77.21,28.61]}},"paymentMethod":"cash"}`,
		"missing customer": `{"pickup":{"geo":{"coordinates":[77.2,28.6]}},"dropoff":{"geo":{"coordinates":[77.21,28.61]}},"paymentMethod":"cash","totalAmount":10}`,
		"missing dropoff":  `{"customerId":"c","pickup":{"geo":{"coordinates":[77.2,28.6]}},"paymentMethod":"cash","totalAmount":10}`,
		"bad payment":      `{"customerId":"c","pickup":{"geo":{"coordinates":[77.2,28.6]}},"dropoff":{"geo":{"coordinates":[77.21,28.61]}},"paymentMethod":"cheque","totalAmount":10}`,
		"negative total":   `{"customerId":"c","pickup":{"geo":{"coordinates":[77.2,28.6]}},"dropoff":{"geo":{"coordinates":[77.21,28.61]}},"paymentMethod":"cash","totalAmount":-1}`,
		"bad item":         `{"customerId":"c","pickup":{"geo":{"coordinates":[77.2,28.6]}},"dropoff":{"geo":{"coordinates":[77.21,28.61]}},"items":[{"name":"tea","quantity":0,"price":1}],"paymentMethod":"cash","totalAmount":10}`,
	}
	for name, body := range cases {
		rec := suite.do(http.MethodPost, "/api/orders", body)
		suite.Equal(http.StatusBadRequest, rec.Code, name)
	}

	rec := suite.do(http.MethodPost, "/api/orders?maxDistance=-5", newOrderBody("c"))
	suite.Equal(http.StatusBadRequest, rec.Code)
	rec = suite.do(http.MethodPost, "/api/orders?maxDistance=far", newOrderBody("c"))
	suite.Equal(http.StatusBadRequest, rec.Code)

	rec = suite.do(http.MethodGet, "/api/orders?customerId=c", "")
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.JSONEq(`[]`, rec.Body.String())
}

func (suite *ServerTestSuite) TestMaxDistance_RejectsNonFiniteAndNegative() {
	far := suite.ping(`{"name":"NY","phone":"+1212","location":{"type":"Point","coordinates":[-74.0,40.7]}}`)
	suite.createOrder("customer-1")

	for _, value := range []string{"NaN", "Inf", "-Inf", "infinity"} {
		rec := suite.do(http.MethodGet, "/api/couriers/"+far.ID+"/nearby-orders?maxDistance="+value, "")
		suite.Equal(http.StatusBadRequest, rec.Code, value)
		suite.Contains(rec.Body.String(), "maxDistance", value)

		rec = suite.do(http.MethodPost, "/api/orders?maxDistance="+value, newOrderBody("customer-2"))
		suite.Equal(http.StatusBadRequest, rec.Code, value)
	}

	rec := suite.do(http.MethodGet, "/api/couriers/"+far.ID+"/nearby-orders?maxDistance=-5", "")
	suite.Require().Equal(http.StatusBadRequest, rec.Code)
	var body httpadapter.Error
	suite.decode(rec, &body)
	suite.Contains(body.Message, "-5 is maxDistance")
	suite.NotContains(body.Message, "%!")

	suite.Empty(suite.nearby(far.ID, ""))
	suite.Empty(suite.nearby(far.ID, "20000"))
}

func (suite *ServerTestSuite) TestUpdateCourierLocation_PhoneOfAnotherCourier() {
	owner := suite.ping(`{"name":"A","phone":"+911","location":{"type":"Point","coordinates":[77.2091,28.6140]}}`)
	other := suite.ping(`{"name":"B","phone":"+912","location":{"type":"Point","coordinates":[77.230,28.650]}}`)

	rec := suite.do(http.MethodPost, "/api/couriers/location",
		`{"courierId":"`+other.ID+`","phone":"+911","location":{"type":"Point","coordinates":[77.23,28.65]}}`)
	suite.Require().Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
	suite.Contains(rec.Body.String(), "phone")

	again := suite.ping(`{"phone":"+911","location":{"type":"Point","coordinates":[77.2092,28.6141]}}`)
	suite.Equal(owner.ID, again.ID)
}

func (suite *ServerTestSuite) TestGetAndListOrders() {
	rec := suite.do(http.MethodGet, "/api/orders/not-a-uuid", "")
	suite.Equal(http.StatusBadRequest, rec.Code)
	rec = suite.do(http.MethodGet, "/api/orders/6f1c2f6e-8d0a-4c55-9a57-1e0f8f0b8a11", "")
	suite.Equal(http.StatusNotFound, rec.Code)

	first := suite.createOrder("customer-7")
	second := suite.createOrder("customer-7")
	suite.createOrder("customer-8")

	rec = suite.do(http.MethodGet, "/api/orders?customerId=customer-7", "")
	suite.Require().Equal(http.StatusOK, rec.Code)
	var history []httpadapter.Order
	suite.decode(rec, &history)
	suite.Require().Len(history, 2)
	suite.Equal(second, history[0].ID)
	suite.Equal(first, history[1].ID)

	rec = suite.do(http.MethodGet, "/api/orders?customerId=customer-7&limit=1", "")
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.decode(rec, &history)
	suite.Len(history, 1)

	rec = suite.do(http.MethodGet, "/api/orders", "")
	suite.Equal(http.StatusBadRequest, rec.Code)
	rec = suite.do(http.MethodGet, "/api/orders?customerId=customer-7&limit=-1", "")
	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *ServerTestSuite) TestClaimErrors() {
	orderID := suite.createOrder("customer-1")
	c := suite.ping(`{"phone":"+915","location":{"coordinates":[77.2091,28.6140]}}`)
	unknown := "6f1c2f6e-8d0a-4c55-9a57-1e0f8f0b8a11"

	rec := suite.do(http.MethodPost, "/api/couriers/"+unknown+"/orders/"+orderID+"/accept", "")
	suite.Equal(http.StatusNotFound, rec.Code)
	rec = suite.do(http.MethodPost, "/api/couriers/"+c.ID+"/orders/"+unknown+"/accept", "")
	suite.Equal(http.StatusNotFound, rec.Code)
	rec = suite.do(http.MethodPost, "/api/couriers/"+unknown+"/orders/"+orderID+"/reject", "")
	suite.Equal(http.StatusNotFound, rec.Code)
	rec = suite.do(http.MethodPost, "/api/couriers/bad/orders/"+orderID+"/accept", "")
	suite.Equal(http.StatusBadRequest, rec.Code)
	rec = suite.do(http.MethodGet, "/api/couriers/"+unknown+"/nearby-orders", "")
	suite.Equal(http.StatusNotFound, rec.Code)

	rec = suite.do(http.MethodPost, "/api/orders/"+orderID+"/status", `{"status":"pending"}`)
	suite.Equal(http.StatusBadRequest, rec.Code)
	rec = suite.do(http.MethodPost, "/api/orders/"+orderID+"/status", `{"status":"delivered"}`)
	suite.Equal(http.StatusConflict, rec.Code)
	rec = suite.do(http.MethodPost, "/api/orders/"+unknown+"/status", `{"status":"cancelled"}`)
	suite.Equal(http.StatusNotFound, rec.Code)

	rec = suite.do(http.MethodPost, "/api/orders/"+orderID+"/status", `{"status":"cancelled"}`)
	suite.Require().Equal(http.StatusOK, rec.Code)
	rec = suite.do(http.MethodPost, "/api/couriers/"+c.ID+"/orders/"+orderID+"/accept", "")
	suite.Equal(http.StatusConflict, rec.Code)
	suite.Empty(suite.nearby(c.ID, ""))
}

func (suite *ServerTestSuite) TestHealthMetricsAndUnknownRoutes() {
	rec := suite.do(http.MethodGet, "/health", "")
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.JSONEq(`{"status":"ok","store":"ok"}`, rec.Body.String())

	orderID := suite.createOrder("customer-1")
	c := suite.ping(`{"phone":"+916","location":{"coordinates":[77.2091,28.6140]}}`)
	suite.do(http.MethodPost, "/api/couriers/"+c.ID+"/orders/"+orderID+"/accept", "")

	rec = suite.do(http.MethodGet, "/metrics", "")
	suite.Require().Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	suite.Contains(body, `dispatch_claims_total{outcome="won"} 1`)
	suite.Contains(body, "dispatch_orders_created_total 1")
	suite.Contains(body, `http_requests_total{method="POST",path="/api/orders",status="201"} 1`)

	rec = suite.do(http.MethodGet, "/api/nowhere", "")
	suite.Equal(http.StatusNotFound, rec.Code)
	var e httpadapter.Error
	suite.decode(rec, &e)
	suite.Equal(http.StatusNotFound, e.Code)
}

func (suite *ServerTestSuite) TestBodyLimitAndSecurityHeaders() {
	rec := suite.do(http.MethodGet, "/health", "")
	suite.Equal("nosniff", rec.Header().Get(echo.HeaderXContentTypeOptions))
	suite.Equal("SAMEORIGIN", rec.Header().Get(echo.HeaderXFrameOptions))

	oversized := `{"customerId":"` + strings.Repeat("x", 2<<20) + `"}`
	rec = suite.do(http.MethodPost, "/api/orders", oversized)
	suite.Equal(http.StatusRequestEntityTooLarge, rec.Code)
	var e httpadapter.Error
	suite.decode(rec, &e)
	suite.Equal(http.StatusRequestEntityTooLarge, e.Code)

	rec = suite.do(http.MethodGet, "/api/orders?customerId=customer-1", "")
	suite.Equal(http.StatusOK, rec.Code)
}

func (suite *ServerTestSuite) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequestWithContext(context.Background(), method, target, nil)
	} else {
		req = httptest.NewRequestWithContext(context.Background(), method, target, bytes.NewBufferString(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	suite.echo.ServeHTTP(rec, req)
	return rec
}

func (suite *ServerTestSuite) decode(rec *httptest.ResponseRecorder, v any) {
	suite.Require().NoError(json.NewDecoder(strings.NewReader(rec.Body.String())).Decode(v), rec.Body.String())
}

func (suite *ServerTestSuite) ping(body string) httpadapter.Courier {
	rec := suite.do(http.MethodPost, "/api/couriers/location", body)
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var c httpadapter.Courier
	suite.decode(rec, &c)
	return c
}

func (suite *ServerTestSuite) createOrder(customerID string) string {
	rec := suite.do(http.MethodPost, "/api/orders", newOrderBody(customerID))
	suite.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var created httpadapter.CreatedOrder
	suite.decode(rec, &created)
	return created.Order.ID
}

func (suite *ServerTestSuite) nearby(courierID, maxDistance string) []httpadapter.Order {
	target := "/api/couriers/" + courierID + "/nearby-orders"
	if maxDistance != "" {
		target += "?maxDistance=" + maxDistance
	}
	rec := suite.do(http.MethodGet, target, "")
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var orders []httpadapter.Order
	suite.decode(rec, &orders)
	return orders
}

func newOrderBody(customerID string) string {
	return `{
		"customerId": "` + customerID + `",
		"pickup": {"address": "Library", "geo": {"type": "Point", "coordinates": [77.209, 28.6139]}},
		"dropoff": {"address": "Hostel 4", "geo": {"type": "Point", "coordinates": [77.215, 28.62]}},
		"items": [{"name": "samosa", "quantity": 2, "price": 25.25}, {"name": "thali", "quantity": 1, "price": 200}],
		"totalAmount": 250.5,
		"paymentMethod": "cash"
	}`
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}
