//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/avolio/stockbook-be/internal/adapters/db"
	redis_a "github.com/avolio/stockbook-be/internal/adapters/redis_adapter"
	"github.com/avolio/stockbook-be/internal/core/services"
	"github.com/avolio/stockbook-be/internal/handlers"
	"github.com/avolio/stockbook-be/test/helpers"
)

type StockWorkflowE2ESuite struct {
	suite.Suite
	server    *httptest.Server
	client    *http.Client
	baseURL   string
	testDB    *helpers.TestDB
	testRedis *helpers.TestRedis
}

func (s *StockWorkflowE2ESuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.testRedis = helpers.SetupTestRedis(s.T())

	s.server = s.startTestServer()
	s.client = &http.Client{Timeout: 10 * time.Second}
	s.baseURL = s.server.URL + "/api/v1"
}

func (s *StockWorkflowE2ESuite) TearDownSuite() {
	s.server.Close()
}

func (s *StockWorkflowE2ESuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
	s.testRedis.Server.FlushAll()
}

func (s *StockWorkflowE2ESuite) startTestServer() *httptest.Server {
	logger := helpers.TestLogger()
	database := s.testDB.Database

	cache := redis_a.NewCache(s.testRedis.Client, time.Minute, logger)
	txManager := db.NewTxManager(database, logger)
	itemRepo := db.NewItemRepository(database, logger)
	transactionRepo := db.NewTransactionRepository(database, logger)
	sequenceRepo := db.NewSequenceRepository(database, logger)

	itemService := services.NewItemService(itemRepo, txManager, cache, logger)
	engine := services.NewTransactionEngine(transactionRepo, itemService, sequenceRepo, txManager, logger)

	itemHandler := handlers.NewItemHandler(itemService, logger)
	transactionHandler := handlers.NewTransactionHandler(engine, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/items/next-sku", itemHandler.NextSKU)
	mux.HandleFunc("POST /api/v1/items", itemHandler.CreateItem)
	mux.HandleFunc("GET /api/v1/items", itemHandler.ListItems)
	mux.HandleFunc("GET /api/v1/items/{id}", itemHandler.GetItem)
	mux.HandleFunc("DELETE /api/v1/items/{id}", itemHandler.DeleteItem)
	mux.HandleFunc("GET /api/v1/items/sku/{sku}", itemHandler.GetItemBySKU)
	mux.HandleFunc("POST /api/v1/items/{id}/stock/add", itemHandler.AddStock)
	mux.HandleFunc("POST /api/v1/items/{id}/stock/remove", itemHandler.RemoveStock)
	mux.HandleFunc("PATCH /api/v1/items/{id}/settings", itemHandler.UpdateSettings)
	mux.HandleFunc("POST /api/v1/transactions", transactionHandler.CreateTransaction)
	mux.HandleFunc("GET /api/v1/transactions/{id}", transactionHandler.GetTransaction)
	mux.HandleFunc("POST /api/v1/transactions/{id}/status", transactionHandler.ChangeStatus)
	mux.HandleFunc("POST /api/v1/transactions/{id}/payments", transactionHandler.RecordPayment)
	mux.HandleFunc("GET /api/v1/parties/{id}/transactions", transactionHandler.ListByParty)
	mux.HandleFunc("GET /api/v1/valuation/summary", itemHandler.ValuationSummary)
	mux.HandleFunc("GET /api/v1/valuation/reorder", itemHandler.ReorderReport)

	return httptest.NewServer(mux)
}

func (s *StockWorkflowE2ESuite) TestPurchaseToSaleLifecycle() {
	// 1. Create an item with FIFO valuation
	createReq := map[string]interface{}{
		"name":        "Cold-Rolled Steel Sheet",
		"kind":        "material",
		"category":    "raw-materials",
		"measurement": "weight",
		"unit":        "kg",
		"valuation":   "FIFO",
	}

	resp := s.makeRequest("POST", "/items", createReq)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var item map[string]interface{}
	s.decodeResponse(resp, &item)
	itemID := item["item_id"].(string)
	s.NotEmpty(item["sku"])

	// 2. Create a purchase for 100 kg @ 2.50
	purchaseReq := map[string]interface{}{
		"kind":            "PURCHASE",
		"counterparty_id": "c1a0b672-30ac-4fd2-8a36-31d07d0a9e11",
		"lines": []map[string]interface{}{
			{"item_id": itemID, "quantity": "100", "unit_price": "2.50"},
		},
	}

	resp = s.makeRequest("POST", "/transactions", purchaseReq)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var purchase map[string]interface{}
	s.decodeResponse(resp, &purchase)
	purchaseID := purchase["id"].(string)
	s.Equal("DRAFT", purchase["status"])
	externalID := purchase["external_id"].(string)
	s.Regexp(`^PO\d{10}$`, externalID)

	// 3. Confirm the purchase; stock enters the ledger
	resp = s.makeRequest("POST", fmt.Sprintf("/transactions/%s/status", purchaseID),
		map[string]interface{}{"status": "CONFIRMED"})
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = s.makeRequest("GET", fmt.Sprintf("/items/%s", itemID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decodeResponse(resp, &item)
	s.Equal("100", item["on_hand"])
	s.Equal("2.5", item["average_cost"])

	// 4. Look up the purchase by its external ID
	resp = s.makeRequest("GET", fmt.Sprintf("/transactions/%s", externalID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	// 5. Sell 40 kg @ 4.00 and confirm
	saleReq := map[string]interface{}{
		"kind":            "SALE",
		"counterparty_id": "7d46f0da-82dc-4a39-a08c-5a6ea2ff3a0f",
		"lines": []map[string]interface{}{
			{"item_id": itemID, "quantity": "40", "unit_price": "4.00"},
		},
	}

	resp = s.makeRequest("POST", "/transactions", saleReq)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var sale map[string]interface{}
	s.decodeResponse(resp, &sale)
	saleID := sale["id"].(string)

	resp = s.makeRequest("POST", fmt.Sprintf("/transactions/%s/status", saleID),
		map[string]interface{}{"status": "CONFIRMED"})
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = s.makeRequest("GET", fmt.Sprintf("/items/%s", itemID), nil)
	s.decodeResponse(resp, &item)
	s.Equal("60", item["on_hand"])

	// 6. Record a partial payment on the sale
	resp = s.makeRequest("POST", fmt.Sprintf("/transactions/%s/payments", saleID),
		map[string]interface{}{"amount": "100", "method": "bank_transfer"})
	s.Equal(http.StatusOK, resp.StatusCode)

	s.decodeResponse(resp, &sale)
	s.Equal("PARTIAL", sale["payment_status"])

	// 7. Valuation summary reflects the remaining stock
	resp = s.makeRequest("GET", "/valuation/summary", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var summary map[string]interface{}
	s.decodeResponse(resp, &summary)
	s.Equal("150", summary["total_value"]) // 60 kg @ 2.50

	// 8. Selling more than on hand is rejected
	oversellReq := map[string]interface{}{
		"kind":            "SALE",
		"counterparty_id": "7d46f0da-82dc-4a39-a08c-5a6ea2ff3a0f",
		"lines": []map[string]interface{}{
			{"item_id": itemID, "quantity": "500", "unit_price": "4.00"},
		},
	}
	resp = s.makeRequest("POST", "/transactions", oversellReq)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var oversell map[string]interface{}
	s.decodeResponse(resp, &oversell)

	resp = s.makeRequest("POST", fmt.Sprintf("/transactions/%s/status", oversell["id"]),
		map[string]interface{}{"status": "CONFIRMED"})
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
}

func (s *StockWorkflowE2ESuite) TestManualStockAdjustments() {
	resp := s.makeRequest("POST", "/items", map[string]interface{}{
		"name":        "Packing Boxes",
		"category":    "packaging",
		"measurement": "quantity",
		"unit":        "case",
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	var item map[string]interface{}
	s.decodeResponse(resp, &item)
	itemID := item["item_id"].(string)

	// Add then remove stock via the adjustment endpoints
	resp = s.makeRequest("POST", fmt.Sprintf("/items/%s/stock/add", itemID),
		map[string]interface{}{"quantity": "30", "unit_cost": "3.40"})
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = s.makeRequest("POST", fmt.Sprintf("/items/%s/stock/remove", itemID),
		map[string]interface{}{"quantity": "10"})
	s.Equal(http.StatusOK, resp.StatusCode)

	var movement map[string]interface{}
	s.decodeResponse(resp, &movement)
	s.Equal("20", movement["on_hand"])

	// Removing more than on hand fails with 422
	resp = s.makeRequest("POST", fmt.Sprintf("/items/%s/stock/remove", itemID),
		map[string]interface{}{"quantity": "100"})
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
}

func (s *StockWorkflowE2ESuite) TestSKUsAreSequentialAndSoftDeleteFreesThem() {
	resp := s.makeRequest("POST", "/items", map[string]interface{}{
		"name": "First", "category": "misc",
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	var first map[string]interface{}
	s.decodeResponse(resp, &first)

	resp = s.makeRequest("GET", "/items/next-sku", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var next map[string]string
	s.decodeResponse(resp, &next)
	s.NotEqual(first["sku"], next["sku"])

	// Soft delete then recreate with the freed SKU
	resp = s.makeRequest("DELETE", fmt.Sprintf("/items/%s", first["item_id"]), nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = s.makeRequest("GET", fmt.Sprintf("/items/%s", first["item_id"]), nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp = s.makeRequest("POST", "/items", map[string]interface{}{
		"name": "Second", "category": "misc", "sku": first["sku"],
	})
	s.Equal(http.StatusCreated, resp.StatusCode)
}

func (s *StockWorkflowE2ESuite) TestPartyHistory() {
	partyID := "c1a0b672-30ac-4fd2-8a36-31d07d0a9e11"

	resp := s.makeRequest("POST", "/items", map[string]interface{}{
		"name": "Wire", "category": "raw-materials", "measurement": "length", "unit": "m",
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	var item map[string]interface{}
	s.decodeResponse(resp, &item)

	for i := 0; i < 3; i++ {
		resp = s.makeRequest("POST", "/transactions", map[string]interface{}{
			"kind":            "PURCHASE",
			"counterparty_id": partyID,
			"lines": []map[string]interface{}{
				{"item_id": item["item_id"], "quantity": "5", "unit_price": "0.18"},
			},
		})
		s.Equal(http.StatusCreated, resp.StatusCode)
	}

	resp = s.makeRequest("GET", fmt.Sprintf("/parties/%s/transactions?kind=PURCHASE", partyID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var list map[string]interface{}
	s.decodeResponse(resp, &list)
	s.Equal(float64(3), list["total_count"])
}

func (s *StockWorkflowE2ESuite) makeRequest(method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		s.NoError(err)
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reqBody)
	s.NoError(err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	s.NoError(err)

	return resp
}

func (s *StockWorkflowE2ESuite) decodeResponse(resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	err := json.NewDecoder(resp.Body).Decode(v)
	s.NoError(err)
}

func TestStockWorkflowE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	suite.Run(t, new(StockWorkflowE2ESuite))
}
