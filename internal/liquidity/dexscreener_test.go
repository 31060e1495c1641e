package liquidity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestOracle(baseURL string) *Oracle {
	return NewOracle(Config{
		BaseURL:         baseURL,
		MinLiquidityUSD: 1000,
		Timeout:         2 * time.Second,
	})
}

func pairsBody(liquidities ...float64) map[string]interface{} {
	pairs := make([]map[string]interface{}, 0, len(liquidities))
	for _, usd := range liquidities {
		pairs = append(pairs, map[string]interface{}{
			"liquidity": map[string]interface{}{"usd": usd},
		})
	}
	return map[string]interface{}{"pairs": pairs}
}

func TestOracleEvaluatePassAboveFloor(t *testing.T) {
	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		json.NewEncoder(w).Encode(pairsBody(40, 1000))
	}))
	defer server.Close()

	oracle := newTestOracle(server.URL)
	outcome := oracle.Evaluate(context.Background(), "0xabc")

	if outcome != OutcomePass {
		t.Errorf("Expected pass, got %s", outcome)
	}
	if !strings.HasSuffix(requestedPath, "/0xabc") {
		t.Errorf("Expected request path ending in /0xabc, got %s", requestedPath)
	}
	if !oracle.CheckLiquidity(context.Background(), "0xabc") {
		t.Error("Expected CheckLiquidity to keep the contract")
	}
}

func TestOracleEvaluateRejectAllBelowFloor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(pairsBody(10, 999.99))
	}))
	defer server.Close()

	oracle := newTestOracle(server.URL)
	if outcome := oracle.Evaluate(context.Background(), "0xabc"); outcome != OutcomeReject {
		t.Errorf("Expected reject, got %s", outcome)
	}
	if oracle.CheckLiquidity(context.Background(), "0xabc") {
		t.Error("Expected CheckLiquidity to drop the contract")
	}
}

func TestOracleEvaluateNoPairsPasses(t *testing.T) {
	payloads := []string{
		`{"pairs": null}`,
		`{"pairs": []}`,
	}
	for _, payload := range payloads {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(payload))
		}))

		oracle := newTestOracle(server.URL)
		if outcome := oracle.Evaluate(context.Background(), "0xabc"); outcome != OutcomePass {
			t.Errorf("Payload %s: expected pass, got %s", payload, outcome)
		}
		server.Close()
	}
}

func TestOracleEvaluateFailOpenOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	oracle := newTestOracle(server.URL)
	if outcome := oracle.Evaluate(context.Background(), "0xabc"); outcome != OutcomeFailOpen {
		t.Errorf("Expected fail_open, got %s", outcome)
	}
	if !oracle.CheckLiquidity(context.Background(), "0xabc") {
		t.Error("Expected fail-open consultation to keep the contract")
	}
}

func TestOracleEvaluateFailOpenOnMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>rate limited</html>"))
	}))
	defer server.Close()

	oracle := newTestOracle(server.URL)
	if outcome := oracle.Evaluate(context.Background(), "0xabc"); outcome != OutcomeFailOpen {
		t.Errorf("Expected fail_open, got %s", outcome)
	}
}

func TestOracleEvaluateFailOpenOnTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	oracle := newTestOracle(server.URL)
	if outcome := oracle.Evaluate(context.Background(), "0xabc"); outcome != OutcomeFailOpen {
		t.Errorf("Expected fail_open, got %s", outcome)
	}
}

func TestOracleTokenName(t *testing.T) {
	tests := []struct {
		name     string
		base     map[string]interface{}
		expected string
	}{
		{"name and symbol", map[string]interface{}{"name": "Pepe", "symbol": "PEPE"}, "Pepe (PEPE)"},
		{"symbol only", map[string]interface{}{"symbol": "PEPE"}, "PEPE"},
		{"name only", map[string]interface{}{"name": "Pepe"}, "Pepe"},
		{"neither", map[string]interface{}{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]interface{}{
					"pairs": []map[string]interface{}{
						{"baseToken": tt.base},
					},
				})
			}))
			defer server.Close()

			oracle := newTestOracle(server.URL)
			if got := oracle.TokenName(context.Background(), "0xabc"); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestOracleTokenNameNoPairs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs": null}`))
	}))
	defer server.Close()

	oracle := newTestOracle(server.URL)
	if got := oracle.TokenName(context.Background(), "0xabc"); got != "" {
		t.Errorf("Expected empty name, got %q", got)
	}
}
