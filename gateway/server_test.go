package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"tokenforge/core/events"
	"tokenforge/core/state"
	"tokenforge/core/types"
	"tokenforge/native/migration"
	"tokenforge/native/minter"
	"tokenforge/native/staking"
	"tokenforge/native/token"
	"tokenforge/native/vesting"
	"tokenforge/storage"
)

const (
	treasuryHex = "0x1111111111111111111111111111111111111111"
	aliceHex    = "0x2222222222222222222222222222222222222222"
)

func newTestServer(t *testing.T) (*httptest.Server, *int64) {
	t.Helper()
	manager := state.NewManager(storage.NewMemDB())
	treasury := types.MustParseAddress(treasuryHex)

	ledger := token.NewEngine()
	ledger.SetState(manager)
	if err := ledger.InitGenesis(treasury, big.NewInt(1_000_000_000)); err != nil {
		t.Fatalf("init genesis: %v", err)
	}

	now := int64(1_700_000_000)
	clock := func() int64 { return now }

	mintEngine := minter.NewEngine(ledger)
	mintEngine.SetState(manager)
	mintEngine.SetNowFunc(clock)
	for _, channel := range []string{minter.ChannelAdmin, minter.ChannelGame} {
		if err := mintEngine.InitChannel(channel, minter.ChannelDefaults{
			RatePerSecond: big.NewInt(100),
			HardCap:       big.NewInt(1_000_000),
		}); err != nil {
			t.Fatalf("init channel %s: %v", channel, err)
		}
	}

	stakeEngine := staking.NewEngine(ledger)
	stakeEngine.SetState(manager)
	stakeEngine.SetNowFunc(clock)
	if err := stakeEngine.Init(); err != nil {
		t.Fatalf("init staking: %v", err)
	}

	tracker := migration.NewEngine(ledger)
	tracker.SetState(manager)

	vestEngine := vesting.NewEngine(ledger, tracker)
	vestEngine.SetState(manager)
	vestEngine.SetNowFunc(clock)

	ring := events.NewRingEmitter(128)
	ledger.SetEmitter(ring)
	mintEngine.SetEmitter(ring)
	stakeEngine.SetEmitter(ring)
	vestEngine.SetEmitter(ring)
	tracker.SetEmitter(ring)

	server := NewServer(Config{
		Engines: Engines{
			Token:     ledger,
			Minter:    mintEngine,
			Staking:   stakeEngine,
			Vesting:   vestEngine,
			Migration: tracker,
		},
		Events: ring,
	})
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return ts, &now
}

func postJSON(t *testing.T, ts *httptest.Server, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", path, err)
	}
	return resp
}

func getJSON(t *testing.T, ts *httptest.Server, path string, out interface{}) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get %s status = %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestTransferAndBalance(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := postJSON(t, ts, "/v1/token/transfer", map[string]string{
		"from":   treasuryHex,
		"to":     aliceHex,
		"amount": "12345",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("transfer status = %d", resp.StatusCode)
	}
	var out map[string]string
	getJSON(t, ts, fmt.Sprintf("/v1/token/balance/SLG/%s", aliceHex), &out)
	if out["balance"] != "12345" {
		t.Fatalf("balance = %q", out["balance"])
	}
}

func TestTransferInsufficientIsBadRequest(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := postJSON(t, ts, "/v1/token/transfer", map[string]string{
		"from":   aliceHex,
		"to":     treasuryHex,
		"amount": "1",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUnauthorizedIsForbidden(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := postJSON(t, ts, "/v1/token/fee", map[string]interface{}{
		"caller":      aliceHex,
		"numerator":   10,
		"denominator": 1000,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
}

func TestSpecialMintOverBudgetIsTooManyRequests(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := postJSON(t, ts, "/v1/mint/special", map[string]string{
		"caller": treasuryHex,
		"amount": "999999999",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
}

func TestMintChannelInfo(t *testing.T) {
	ts, now := newTestServer(t)
	*now += 100
	var out map[string]interface{}
	getJSON(t, ts, "/v1/mint/channels/admin", &out)
	if out["mintable"] != "10000" {
		t.Fatalf("mintable = %v", out["mintable"])
	}
	if out["ratePerSecond"] != "100" {
		t.Fatalf("ratePerSecond = %v", out["ratePerSecond"])
	}
}

func TestStakingRoundTrip(t *testing.T) {
	ts, now := newTestServer(t)
	resp := postJSON(t, ts, "/v1/staking/stake", map[string]string{
		"caller": treasuryHex,
		"amount": "1000",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stake status = %d", resp.StatusCode)
	}

	var withdraw map[string]uint64
	resp = postJSON(t, ts, "/v1/staking/withdraw", map[string]string{
		"caller": treasuryHex,
		"amount": "400",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("withdraw status = %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&withdraw); err != nil {
		t.Fatalf("decode withdraw: %v", err)
	}
	resp.Body.Close()

	var user map[string]interface{}
	getJSON(t, ts, "/v1/staking/user/"+treasuryHex, &user)
	if user["stake"] != "600" {
		t.Fatalf("stake = %v", user["stake"])
	}

	*now += int64(staking.DefaultPendingPeriod)
	var pending map[string]interface{}
	getJSON(t, ts, fmt.Sprintf("/v1/staking/pending/%s/%d", treasuryHex, withdraw["id"]), &pending)
	if pending["claimablePercent"] != "25000000000" {
		t.Fatalf("claimablePercent = %v", pending["claimablePercent"])
	}

	resp = postJSON(t, ts, "/v1/staking/claim", map[string]interface{}{
		"caller": treasuryHex,
		"id":     withdraw["id"],
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("claim status = %d", resp.StatusCode)
	}
}

func TestUnknownPendingIsNotFound(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/v1/staking/pending/" + treasuryHex + "/99")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestMigrationAndVestingFlow(t *testing.T) {
	ts, _ := newTestServer(t)
	// Seed legacy RSUN via a direct taxed-exempt transfer path is not
	// available over HTTP; mint through the admin special channel is SLG
	// only, so give alice RSUN through the migration engine's ledger by
	// transferring SLG and depositing legacy balances is exercised in the
	// engine tests. Here the error contract is verified instead.
	resp := postJSON(t, ts, "/v1/migration/deposit/rsun", map[string]string{
		"caller": aliceHex,
		"amount": "100",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for missing balance", resp.StatusCode)
	}
	var totals map[string]string
	getJSON(t, ts, "/v1/migration/totals", &totals)
	if totals["rsun"] != "0" || totals["inf"] != "0" {
		t.Fatalf("totals = %v", totals)
	}
	var toDeposit map[string]string
	getJSON(t, ts, "/v1/vesting/to-deposit", &toDeposit)
	if toDeposit["toDeposit"] != "0" {
		t.Fatalf("toDeposit = %v", toDeposit["toDeposit"])
	}
}

func TestEventsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := postJSON(t, ts, "/v1/token/transfer", map[string]string{
		"from":   treasuryHex,
		"to":     aliceHex,
		"amount": "5",
	})
	resp.Body.Close()

	var out struct {
		Events []struct {
			Type       string            `json:"type"`
			Attributes map[string]string `json:"attributes"`
		} `json:"events"`
	}
	getJSON(t, ts, "/v1/events?limit=10", &out)
	if len(out.Events) == 0 {
		t.Fatal("no events returned")
	}
	last := out.Events[len(out.Events)-1]
	if last.Type != "token.transferred" {
		t.Fatalf("last event type = %q", last.Type)
	}
	if last.Attributes["amount"] != "5" {
		t.Fatalf("amount attribute = %q", last.Attributes["amount"])
	}
}
