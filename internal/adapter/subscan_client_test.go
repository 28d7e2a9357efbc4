package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/substrate-wallet-core/internal/types"
)

func newTestSubscanClient(url string) *SubscanClient {
	return NewSubscanClient(map[types.ChainID]string{types.ChainPolkadot: url}, "test-key", 1000)
}

func rewardSlashHandler(t *testing.T, pages map[int]string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/scan/account/reward_slash" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("X-API-Key"); got != "test-key" {
			t.Errorf("X-API-Key = %q, want %q", got, "test-key")
		}

		var req struct {
			Address string `json:"address"`
			Row     int    `json:"row"`
			Page    int    `json:"page"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Row != RewardRowCap {
			t.Errorf("row = %d, want %d", req.Row, RewardRowCap)
		}

		body, ok := pages[req.Page]
		if !ok {
			body = `{"code":0,"message":"Success","data":{"count":0,"list":[]}}`
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}
}

func TestRewardHistory_SinglePage(t *testing.T) {
	srv := httptest.NewServer(rewardSlashHandler(t, map[int]string{
		0: `{"code":0,"message":"Success","data":{"count":2,"list":[
			{"era":1400,"amount":"5000000000","block_timestamp":1717200000,"event_id":"Reward","module_id":"staking"},
			{"era":1399,"amount":"4000000000","block_timestamp":1717113600,"event_id":"Rewarded","module_id":"staking"}
		]}}`,
	}))
	defer srv.Close()

	events, err := newTestSubscanClient(srv.URL).RewardHistory(context.Background(), types.ChainPolkadot, "15oF4u...")
	if err != nil {
		t.Fatalf("RewardHistory() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Era != 1400 || events[0].AmountRaw != "5000000000" {
		t.Errorf("events[0] = %+v", events[0])
	}
	if events[0].Amount.String() != "5000000000" {
		t.Errorf("Amount = %s, want 5000000000", events[0].Amount)
	}
}

func TestRewardHistory_FiltersSlashes(t *testing.T) {
	srv := httptest.NewServer(rewardSlashHandler(t, map[int]string{
		0: `{"code":0,"message":"Success","data":{"count":3,"list":[
			{"era":1400,"amount":"5000000000","block_timestamp":1717200000,"event_id":"Reward","module_id":"staking"},
			{"era":1399,"amount":"9999","block_timestamp":1717113600,"event_id":"Slashed","module_id":"staking"},
			{"era":1398,"amount":"3000000000","block_timestamp":1717027200,"event_id":"Rewarded","module_id":"nomination_pools","pool_id":12}
		]}}`,
	}))
	defer srv.Close()

	events, err := newTestSubscanClient(srv.URL).RewardHistory(context.Background(), types.ChainPolkadot, "15oF4u...")
	if err != nil {
		t.Fatalf("RewardHistory() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2 (slash filtered)", len(events))
	}
	if events[1].PoolID == nil || *events[1].PoolID != 12 {
		t.Errorf("PoolID = %v, want 12", events[1].PoolID)
	}
}

func TestRewardHistory_Pagination(t *testing.T) {
	fullPage := func(era int) string {
		rows := make([]string, 0, RewardRowCap)
		for i := 0; i < RewardRowCap; i++ {
			rows = append(rows, fmt.Sprintf(
				`{"era":%d,"amount":"100","block_timestamp":%d,"event_id":"Reward"}`,
				era-i, 1717200000-i*86400))
		}
		return `{"code":0,"message":"Success","data":{"count":150,"list":[` + strings.Join(rows, ",") + `]}}`
	}
	srv := httptest.NewServer(rewardSlashHandler(t, map[int]string{
		0: fullPage(1400),
		1: `{"code":0,"message":"Success","data":{"count":150,"list":[
			{"era":1200,"amount":"100","block_timestamp":1700000000,"event_id":"Reward"}
		]}}`,
	}))
	defer srv.Close()

	events, err := newTestSubscanClient(srv.URL).RewardHistory(context.Background(), types.ChainPolkadot, "15oF4u...")
	if err != nil {
		t.Fatalf("RewardHistory() error = %v", err)
	}
	if len(events) != RewardRowCap+1 {
		t.Fatalf("len(events) = %d, want %d", len(events), RewardRowCap+1)
	}
}

func TestRewardHistory_NullListResolvesEmpty(t *testing.T) {
	srv := httptest.NewServer(rewardSlashHandler(t, map[int]string{
		0: `{"code":0,"message":"Success","data":{"count":0,"list":null}}`,
	}))
	defer srv.Close()

	events, err := newTestSubscanClient(srv.URL).RewardHistory(context.Background(), types.ChainPolkadot, "15oF4u...")
	if err != nil {
		t.Fatalf("RewardHistory() error = %v", err)
	}
	if events != nil {
		t.Errorf("events = %v, want nil for resolved-empty", events)
	}
}

func TestRewardHistory_EmptyListIsNotNil(t *testing.T) {
	// An empty list means the indexer answered with zero rewards, which is
	// distinct from a null list.
	srv := httptest.NewServer(rewardSlashHandler(t, nil))
	defer srv.Close()

	events, err := newTestSubscanClient(srv.URL).RewardHistory(context.Background(), types.ChainPolkadot, "15oF4u...")
	if err != nil {
		t.Fatalf("RewardHistory() error = %v", err)
	}
	if events == nil {
		t.Fatal("events = nil, want empty slice")
	}
	if len(events) != 0 {
		t.Errorf("len(events) = %d, want 0", len(events))
	}
}

func TestRewardHistory_APIError(t *testing.T) {
	srv := httptest.NewServer(rewardSlashHandler(t, map[int]string{
		0: `{"code":10004,"message":"Record Not Found"}`,
	}))
	defer srv.Close()

	if _, err := newTestSubscanClient(srv.URL).RewardHistory(context.Background(), types.ChainPolkadot, "15oF4u..."); err == nil {
		t.Fatal("expected error for non-zero subscan code")
	}
}

func TestRewardHistory_MalformedAmount(t *testing.T) {
	srv := httptest.NewServer(rewardSlashHandler(t, map[int]string{
		0: `{"code":0,"message":"Success","data":{"count":1,"list":[
			{"era":1400,"amount":"not-a-number","block_timestamp":1717200000,"event_id":"Reward"}
		]}}`,
	}))
	defer srv.Close()

	if _, err := newTestSubscanClient(srv.URL).RewardHistory(context.Background(), types.ChainPolkadot, "15oF4u..."); err == nil {
		t.Fatal("expected error for malformed amount")
	}
}

func TestRewardHistory_UnconfiguredChain(t *testing.T) {
	client := NewSubscanClient(map[types.ChainID]string{}, "", 1000)
	if _, err := client.RewardHistory(context.Background(), types.ChainKusama, "addr"); err == nil {
		t.Fatal("expected error for unconfigured chain")
	}
}
