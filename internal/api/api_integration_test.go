// internal/api/api_integration_test.go
package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "fintrack/internal"
	"fintrack/internal/auth"
)

// testApp is the global application instance for testing.
var testApp *app.Application

// testServer is the httptest server.
var testServer *httptest.Server

const testSecret = "integration-secret-0123456789"

// TestMain is the special entry point for Go tests, executed once before all tests.
func TestMain(m *testing.M) {
	// 1. The in-memory backend keeps these tests free of external services.
	os.Setenv("DATA_BACKEND", "memory")
	os.Setenv("JWT_SECRET", testSecret)
	os.Setenv("AMQP_URL", "")
	os.Setenv("LOG_LEVEL", "error")

	// 2. Initialize the application.
	testApp = app.NewApplication()
	if err := testApp.Initialize(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize test application: %v\n", err)
		os.Exit(1) // Exit tests if initialization fails
	}

	// 3. Start an httptest server to test the HTTP handling layer.
	testServer = httptest.NewServer(testApp.HTTPHandler)

	// 4. Run all tests.
	code := m.Run()

	// 5. Shut down application resources after tests.
	testServer.Close()
	if err := testApp.Shutdown(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to shutdown test application: %v\n", err)
		os.Exit(1)
	}

	os.Exit(code)
}

// makeRequest helper function: sends an HTTP request to the test server.
func makeRequest(t *testing.T, method, path, token string, body io.Reader) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, testServer.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(respBody)
}

func decode(t *testing.T, body string, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(body), dst), "body: %s", body)
}

// registerUser creates an account with a unique email and returns its token and id.
func registerUser(t *testing.T, name string) (string, string) {
	t.Helper()
	email := fmt.Sprintf("%s.%d@example.com", strings.ToLower(name), time.Now().UnixNano())
	resp, body := makeRequest(t, http.MethodPost, "/api/auth/register", "",
		strings.NewReader(fmt.Sprintf(`{"name":%q,"email":%q,"password":"s3cret!"}`, name, email)))
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	var result struct {
		User struct {
			ID string `json:"_id"`
		} `json:"user"`
		Token string `json:"token"`
	}
	decode(t, body, &result)
	require.NotEmpty(t, result.Token)
	return result.Token, result.User.ID
}

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}

func createTransaction(t *testing.T, token, payload string) map[string]interface{} {
	t.Helper()
	resp, body := makeRequest(t, http.MethodPost, "/api/transactions", token, strings.NewReader(payload))
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	var tx map[string]interface{}
	decode(t, body, &tx)
	return tx
}

func TestHealth(t *testing.T) {
	resp, body := makeRequest(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body)
}

func TestAuthIntegration(t *testing.T) {
	email := fmt.Sprintf("ada.%d@example.com", time.Now().UnixNano())
	registerBody := fmt.Sprintf(`{"name":"Ada","email":%q,"password":"correct horse"}`, strings.ToUpper(email))

	t.Run("Register", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodPost, "/api/auth/register", "", strings.NewReader(registerBody))
		require.Equal(t, http.StatusCreated, resp.StatusCode, body)

		var result map[string]interface{}
		decode(t, body, &result)
		user := result["user"].(map[string]interface{})
		assert.Equal(t, "Ada", user["name"])
		assert.Equal(t, email, user["email"])
		assert.NotContains(t, body, "password")
	})

	t.Run("RegisterDuplicate", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodPost, "/api/auth/register", "", strings.NewReader(registerBody))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "User already exists")
	})

	t.Run("RegisterMissingFields", func(t *testing.T) {
		resp, _ := makeRequest(t, http.MethodPost, "/api/auth/register", "", strings.NewReader(`{"email":"x@example.com"}`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("LoginAndMe", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodPost, "/api/auth/login", "",
			strings.NewReader(fmt.Sprintf(`{"email":%q,"password":"correct horse"}`, email)))
		require.Equal(t, http.StatusOK, resp.StatusCode, body)

		var result struct {
			Token string `json:"token"`
		}
		decode(t, body, &result)

		resp, body = makeRequest(t, http.MethodGet, "/api/auth/me", result.Token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
		var profile map[string]interface{}
		decode(t, body, &profile)
		assert.Equal(t, email, profile["email"])
		assert.NotEmpty(t, profile["_id"])
	})

	t.Run("LoginWrongPassword", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodPost, "/api/auth/login", "",
			strings.NewReader(fmt.Sprintf(`{"email":%q,"password":"wrong"}`, email)))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "Invalid credentials")
	})

	t.Run("LoginUnknownEmail", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodPost, "/api/auth/login", "",
			strings.NewReader(`{"email":"nobody@example.com","password":"whatever"}`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "Invalid credentials")
	})
}

func TestAuthorizationGuardIntegration(t *testing.T) {
	t.Run("NoToken", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodGet, "/api/transactions", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Contains(t, body, "Not authorized")
	})

	t.Run("GarbageToken", func(t *testing.T) {
		resp, _ := makeRequest(t, http.MethodGet, "/api/transactions/reports", "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		_, userID := registerUser(t, "Expired")
		// exp has second precision
		token, err := auth.NewTokenManager(testSecret, time.Nanosecond).Issue(mustUUID(t, userID))
		require.NoError(t, err)
		time.Sleep(1100 * time.Millisecond)

		resp, _ := makeRequest(t, http.MethodGet, "/api/auth/me", token, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("UnknownSubject", func(t *testing.T) {
		token, err := auth.NewTokenManager(testSecret, time.Hour).Issue(mustUUID(t, "6f1c2b1e-1111-4222-8333-944455556666"))
		require.NoError(t, err)

		resp, _ := makeRequest(t, http.MethodGet, "/api/transactions", token, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		_, userID := registerUser(t, "Forged")
		token, err := auth.NewTokenManager("some-other-secret-entirely", time.Hour).Issue(mustUUID(t, userID))
		require.NoError(t, err)

		resp, _ := makeRequest(t, http.MethodGet, "/api/transactions", token, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestTransactionLifecycleIntegration(t *testing.T) {
	token, userID := registerUser(t, "Alice")

	created := createTransaction(t, token, `{"title":"Coffee","amount":-3.5,"category":"Food","date":"2024-03-01"}`)
	id := created["_id"].(string)
	assert.Equal(t, userID, created["user"])
	assert.Equal(t, -3.5, created["amount"])
	assert.Equal(t, "2024-03-01", created["date"])

	t.Run("CreateMissingField", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodPost, "/api/transactions", token,
			strings.NewReader(`{"title":"No date","amount":1,"category":"Misc"}`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "required")
	})

	t.Run("CreateMalformedJSON", func(t *testing.T) {
		resp, _ := makeRequest(t, http.MethodPost, "/api/transactions", token, strings.NewReader(`{"title":`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Get", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodGet, "/api/transactions/"+id, token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, body)

		var tx map[string]interface{}
		decode(t, body, &tx)
		assert.Equal(t, id, tx["_id"])
		assert.Equal(t, userID, tx["user"])
		assert.Equal(t, "Coffee", tx["title"])
		assert.Equal(t, -3.5, tx["amount"])
		assert.Equal(t, "Food", tx["category"])
		assert.Equal(t, "2024-03-01", tx["date"])
	})

	t.Run("CreateThenGetKeepsStoredPrecision", func(t *testing.T) {
		created := createTransaction(t, token, `{"title":"Interest","amount":1.23456,"category":"Bank","date":"2024-03-03"}`)
		assert.Equal(t, 1.2346, created["amount"])

		resp, body := makeRequest(t, http.MethodGet, "/api/transactions/"+created["_id"].(string), token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
		var fetched map[string]interface{}
		decode(t, body, &fetched)
		assert.Equal(t, created, fetched)

		resp, _ = makeRequest(t, http.MethodDelete, "/api/transactions/"+created["_id"].(string), token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("GetMalformedID", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodGet, "/api/transactions/not-a-uuid", token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, body, "Transaction not found")
	})

	t.Run("UpdatePartial", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodPut, "/api/transactions/"+id, token,
			strings.NewReader(`{"amount":-4.25,"user":"00000000-0000-0000-0000-000000000000"}`))
		require.Equal(t, http.StatusOK, resp.StatusCode, body)

		var tx map[string]interface{}
		decode(t, body, &tx)
		assert.Equal(t, -4.25, tx["amount"])
		assert.Equal(t, "Coffee", tx["title"])
		assert.Equal(t, userID, tx["user"])
	})

	t.Run("UpdateTwiceIsIdempotent", func(t *testing.T) {
		payload := `{"title":"Flat white","amount":-4.75,"category":"Cafe","date":"2024-03-04"}`

		resp, body := makeRequest(t, http.MethodPut, "/api/transactions/"+id, token, strings.NewReader(payload))
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
		var first map[string]interface{}
		decode(t, body, &first)

		resp, body = makeRequest(t, http.MethodPut, "/api/transactions/"+id, token, strings.NewReader(payload))
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
		var second map[string]interface{}
		decode(t, body, &second)

		delete(first, "updatedAt")
		delete(second, "updatedAt")
		assert.Equal(t, first, second)
		assert.Equal(t, "Flat white", second["title"])
		assert.Equal(t, -4.75, second["amount"])
		assert.Equal(t, "Cafe", second["category"])
		assert.Equal(t, "2024-03-04", second["date"])
	})

	t.Run("List", func(t *testing.T) {
		createTransaction(t, token, `{"title":"Salary","amount":2000,"category":"Salary","date":"2024-03-02"}`)

		resp, body := makeRequest(t, http.MethodGet, "/api/transactions", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var txs []map[string]interface{}
		decode(t, body, &txs)
		require.Len(t, txs, 2)
		assert.Equal(t, "Salary", txs[0]["title"], "newest created first")
	})

	t.Run("Delete", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodDelete, "/api/transactions/"+id, token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "Transaction removed")

		resp, _ = makeRequest(t, http.MethodGet, "/api/transactions/"+id, token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp, _ = makeRequest(t, http.MethodDelete, "/api/transactions/"+id, token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestOwnershipIsolationIntegration(t *testing.T) {
	aliceToken, _ := registerUser(t, "Alice")
	bobToken, _ := registerUser(t, "Bob")

	tx := createTransaction(t, aliceToken, `{"title":"Rent","amount":-900,"category":"Housing","date":"2024-04-01"}`)
	id := tx["_id"].(string)

	resp, _ := makeRequest(t, http.MethodGet, "/api/transactions/"+id, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = makeRequest(t, http.MethodPut, "/api/transactions/"+id, bobToken, strings.NewReader(`{"title":"Mine now"}`))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = makeRequest(t, http.MethodDelete, "/api/transactions/"+id, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := makeRequest(t, http.MethodGet, "/api/transactions", bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, body)

	resp, body = makeRequest(t, http.MethodGet, "/api/transactions/"+id, aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"title":"Rent"`)
}

func TestReportsIntegration(t *testing.T) {
	token, _ := registerUser(t, "Reporter")
	today := time.Now().UTC().Format("2006-01-02")

	createTransaction(t, token, fmt.Sprintf(`{"title":"Pay","amount":1000,"category":"Salary","date":%q}`, today))
	createTransaction(t, token, fmt.Sprintf(`{"title":"Groceries","amount":-200,"category":"Food","date":%q}`, today))
	createTransaction(t, token, fmt.Sprintf(`{"title":"Snacks","amount":-50,"category":"Food","date":%q}`, today))
	createTransaction(t, token, `{"title":"Old","amount":-10,"category":"Misc","date":"2001-06-01"}`)

	type report struct {
		TimeRange string `json:"timeRange"`
		Summary   struct {
			TotalIncome   float64 `json:"totalIncome"`
			TotalExpenses float64 `json:"totalExpenses"`
			Net           float64 `json:"net"`
		} `json:"summary"`
		ByCategory []struct {
			ID    string  `json:"_id"`
			Total float64 `json:"total"`
			Count int     `json:"count"`
			Type  string  `json:"type"`
		} `json:"byCategory"`
		RecentTransactions []map[string]interface{} `json:"recentTransactions"`
	}

	t.Run("Year", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodGet, "/api/transactions/reports?timeRange=year", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, body)

		var r report
		decode(t, body, &r)
		assert.Equal(t, "year", r.TimeRange)
		assert.Equal(t, 1000.0, r.Summary.TotalIncome)
		assert.Equal(t, 250.0, r.Summary.TotalExpenses)
		assert.Equal(t, 750.0, r.Summary.Net)
		require.Len(t, r.ByCategory, 2)
		assert.Equal(t, "Salary", r.ByCategory[0].ID)
		assert.Equal(t, "income", r.ByCategory[0].Type)
		assert.Equal(t, "Food", r.ByCategory[1].ID)
		assert.Equal(t, 250.0, r.ByCategory[1].Total)
		assert.Equal(t, 2, r.ByCategory[1].Count)
		assert.Equal(t, "expense", r.ByCategory[1].Type)
		require.Len(t, r.RecentTransactions, 4)
		assert.Equal(t, "Snacks", r.RecentTransactions[0]["title"])
	})

	t.Run("All", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodGet, "/api/transactions/reports?timeRange=all", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, body)

		var r report
		decode(t, body, &r)
		assert.Equal(t, 260.0, r.Summary.TotalExpenses)
		assert.Len(t, r.ByCategory, 3)
	})

	t.Run("Week", func(t *testing.T) {
		weekToken, _ := registerUser(t, "Weekly")
		now := time.Now().UTC()
		createTransaction(t, weekToken, fmt.Sprintf(`{"title":"Lunch","amount":-12,"category":"Food","date":%q}`, now.Format("2006-01-02")))
		createTransaction(t, weekToken, fmt.Sprintf(`{"title":"Concert","amount":-80,"category":"Fun","date":%q}`, now.AddDate(0, 0, -10).Format("2006-01-02")))

		resp, body := makeRequest(t, http.MethodGet, "/api/transactions/reports?timeRange=7", weekToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, body)

		var r report
		decode(t, body, &r)
		assert.Equal(t, "7", r.TimeRange)
		assert.Equal(t, 12.0, r.Summary.TotalExpenses)
		assert.Equal(t, -12.0, r.Summary.Net)
		require.Len(t, r.ByCategory, 1)
		assert.Equal(t, "Food", r.ByCategory[0].ID)

		require.Len(t, r.RecentTransactions, 2)
		assert.Equal(t, "Lunch", r.RecentTransactions[0]["title"])
		assert.Equal(t, "Concert", r.RecentTransactions[1]["title"])
	})

	t.Run("EmptyAccount", func(t *testing.T) {
		emptyToken, _ := registerUser(t, "Empty")
		resp, body := makeRequest(t, http.MethodGet, "/api/transactions/reports", emptyToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, body)

		var r report
		decode(t, body, &r)
		assert.Equal(t, "30", r.TimeRange)
		assert.Zero(t, r.Summary.Net)
		assert.NotNil(t, r.ByCategory)
		assert.Empty(t, r.ByCategory)
		assert.NotNil(t, r.RecentTransactions)
	})
}
