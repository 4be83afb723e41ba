package health_test

import (
	"encoding/json"
	"testing"

	"github.com/dalemusser/campushub/internal/app/features/health"
	"github.com/dalemusser/campushub/internal/testutil"
	"go.uber.org/zap"
)

func TestHandler_Serve(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := health.NewHandler(db.Client(), zap.NewNop())

	rec := testutil.NewRecorder()
	h.Serve(rec, testutil.NewRequest("GET", "/health"))

	rec.AssertStatus(t, 200)
	var resp struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Status != "ok" || resp.Database != "connected" {
		t.Errorf("unexpected health payload: %+v", resp)
	}
}
