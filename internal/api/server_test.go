package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-sms/internal/category"
	"github.com/Veraticus/spice-sms/internal/engine"
	"github.com/Veraticus/spice-sms/internal/extract"
	"github.com/Veraticus/spice-sms/internal/model"
	"github.com/Veraticus/spice-sms/internal/testutil"
)

const swiggySMS = "Rs.500.00 debited from A/c XX1234 on 26-01-26 to VPA swiggy@upi"

func newTestServer(t *testing.T, withStorage bool) *Server {
	t.Helper()

	config := engine.DefaultConfig()
	config.Accounts = []model.Account{{ID: "cash", Name: "Cash", Type: "cash"}}
	clock := extract.WithClock(func() time.Time {
		return time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC)
	})

	var d *engine.Detector
	if withStorage {
		db := testutil.SetupTestDB(t)
		d = engine.New(db.Storage, config, clock)
	} else {
		d = engine.New(nil, config, clock)
	}
	d.Load(context.Background())
	return New(d)
}

func doJSON(t *testing.T, s *Server, method, path, body string, out any) int {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.App().Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, true)

	var body map[string]any
	status := doJSON(t, s, "GET", "/api/health", "", &body)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["pending"])
}

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantFound  bool
	}{
		{name: "transaction", body: `{"text":"` + swiggySMS + `"}`, wantStatus: fiber.StatusOK, wantFound: true},
		{name: "not a transaction", body: `{"text":"Your OTP is 123456"}`, wantStatus: fiber.StatusOK},
		{name: "empty text", body: `{"text":"  "}`, wantStatus: fiber.StatusBadRequest},
		{name: "malformed body", body: `{"text":`, wantStatus: fiber.StatusBadRequest},
	}

	s := newTestServer(t, false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp parseResponse
			var out any = &resp
			if tt.wantStatus != fiber.StatusOK {
				out = nil
			}

			status := doJSON(t, s, "POST", "/api/parse", tt.body, out)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantStatus != fiber.StatusOK {
				return
			}

			assert.Equal(t, tt.wantFound, resp.Found)
			if tt.wantFound {
				require.NotNil(t, resp.Transaction)
				assert.InDelta(t, -500.0, resp.Transaction.Amount, 0.0001)
				assert.Equal(t, category.FoodDining, resp.Transaction.Category)
				assert.Equal(t, "cash", resp.Transaction.AccountID)
			}
		})
	}
}

func TestParseSubmitAndReview(t *testing.T) {
	s := newTestServer(t, true)
	body := `{"text":"` + swiggySMS + `","submit":true}`

	var first parseResponse
	assert.Equal(t, fiber.StatusCreated, doJSON(t, s, "POST", "/api/parse", body, &first))
	require.NotEmpty(t, first.PendingID)

	var second parseResponse
	assert.Equal(t, fiber.StatusOK, doJSON(t, s, "POST", "/api/parse", body, &second))
	assert.True(t, second.Duplicate)

	var items []model.PendingTransaction
	assert.Equal(t, fiber.StatusOK, doJSON(t, s, "GET", "/api/pending", "", &items))
	require.Len(t, items, 1)

	var confirmed model.PendingTransaction
	status := doJSON(t, s, "POST", "/api/pending/"+first.PendingID+"/confirm", `{"category":"Shopping"}`, &confirmed)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Shopping", confirmed.Transaction.Category)

	status = doJSON(t, s, "POST", "/api/pending/"+first.PendingID+"/dismiss", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestParseSubmitWithoutStorage(t *testing.T) {
	s := newTestServer(t, false)

	status := doJSON(t, s, "POST", "/api/parse", `{"text":"`+swiggySMS+`","submit":true}`, nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, fiber.StatusServiceUnavailable, doJSON(t, s, "GET", "/api/pending", "", nil))
}

func TestParseSubmitRuleWithoutAmount(t *testing.T) {
	s := newTestServer(t, true)
	require.Equal(t, fiber.StatusCreated, doJSON(t, s, "POST", "/api/rules", `{"pattern":"NETFLIX","category":"Entertainment"}`, nil))

	var resp parseResponse
	assert.Equal(t, fiber.StatusOK, doJSON(t, s, "POST", "/api/parse", `{"text":"NETFLIX renewed"}`, &resp))
	assert.False(t, resp.Found)
	require.NotNil(t, resp.Extraction)
	assert.True(t, resp.Extraction.RuleMatched)

	status := doJSON(t, s, "POST", "/api/parse", `{"text":"NETFLIX renewed","submit":true}`, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestRules(t *testing.T) {
	s := newTestServer(t, true)

	var rule model.CustomRule
	status := doJSON(t, s, "POST", "/api/rules", `{"pattern":"NETFLIX","category":"Entertainment","description":"Netflix"}`, &rule)
	require.Equal(t, fiber.StatusCreated, status)
	assert.NotEmpty(t, rule.ID)

	assert.Equal(t, fiber.StatusBadRequest, doJSON(t, s, "POST", "/api/rules", `{"pattern":"([broken","is_regex":true}`, nil))
	assert.Equal(t, fiber.StatusBadRequest, doJSON(t, s, "POST", "/api/rules", `{"pattern":""}`, nil))

	var rules []model.CustomRule
	doJSON(t, s, "GET", "/api/rules", "", &rules)
	assert.Len(t, rules, 1)

	assert.Equal(t, fiber.StatusNoContent, doJSON(t, s, "DELETE", "/api/rules/"+rule.ID, "", nil))
	doJSON(t, s, "GET", "/api/rules", "", &rules)
	assert.Empty(t, rules)
}

func TestCategories(t *testing.T) {
	s := newTestServer(t, true)

	var names []string
	doJSON(t, s, "GET", "/api/categories", "", &names)
	assert.Contains(t, names, category.Other)

	status := doJSON(t, s, "POST", "/api/categories/learn", `{"description":"Corner Shop","category":"Groceries"}`, nil)
	assert.Equal(t, fiber.StatusNoContent, status)
	assert.Equal(t, fiber.StatusBadRequest, doJSON(t, s, "POST", "/api/categories/learn", `{"description":""}`, nil))

	var suggest struct {
		Prediction model.Prediction `json:"prediction"`
	}
	status = doJSON(t, s, "GET", "/api/categories/suggest?description=corner%20shop", "", &suggest)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Groceries", suggest.Prediction.Category)

	assert.Equal(t, fiber.StatusBadRequest, doJSON(t, s, "GET", "/api/categories/suggest", "", nil))
}

func TestBankMappings(t *testing.T) {
	s := newTestServer(t, true)

	status := doJSON(t, s, "PUT", "/api/banks/mappings", `{"bank":"HDFC Bank","account_id":"hdfc-acc"}`, nil)
	require.Equal(t, fiber.StatusNoContent, status)
	assert.Equal(t, fiber.StatusBadRequest, doJSON(t, s, "PUT", "/api/banks/mappings", `{"bank":"HDFC Bank"}`, nil))

	var mappings map[string]string
	doJSON(t, s, "GET", "/api/banks/mappings", "", &mappings)
	assert.Equal(t, map[string]string{"hdfc bank": "hdfc-acc"}, mappings)

	assert.Equal(t, fiber.StatusNoContent, doJSON(t, s, "DELETE", "/api/banks/mappings/HDFC%20Bank", "", nil))
	doJSON(t, s, "GET", "/api/banks/mappings", "", &mappings)
	assert.Empty(t, mappings)
}

func TestListenStopsOnCancel(t *testing.T) {
	s := newTestServer(t, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Listen(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
