package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"github.com/KAsare1/Gymhub-server/cmd/utils"
	"github.com/KAsare1/Gymhub-server/service/tenancy"
	"github.com/KAsare1/Gymhub-server/store/storetest"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addClients(t *testing.T, mem *storetest.Memory, ownerID string, n int) {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-client-%d", ownerID, i)
		client := &models.Client{
			ID: id, OwnerID: ownerID, Name: id, Phone: "900000000",
			MembershipType: models.MembershipMonthly, StartDate: start, EndDate: start.AddDate(0, 1, 0),
			Fee: decimal.NewFromInt(1500),
		}
		receipt := &models.Receipt{ID: "RCP-" + id, ClientID: id, OwnerID: ownerID, Amount: client.Fee}
		require.NoError(t, mem.CreateClient(context.Background(), client, receipt))
	}
}

func TestCanAddClientFreePlan(t *testing.T) {
	mem := storetest.New()
	gate := NewGate(mem)
	ctx := context.Background()

	addClients(t, mem, "owner-1", 9)
	decision, err := gate.CanAddClient(ctx, "owner-1")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, int64(9), decision.CurrentCount)
	require.NotNil(t, decision.Limit)
	assert.Equal(t, 10, *decision.Limit)

	require.NoError(t, mem.CreateClient(ctx,
		&models.Client{ID: "tenth", OwnerID: "owner-1", Name: "Tenth", Phone: "1"},
		&models.Receipt{ID: "RCP-tenth", ClientID: "tenth", OwnerID: "owner-1"}))

	decision, err = gate.CanAddClient(ctx, "owner-1")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, int64(10), decision.CurrentCount)
}

func TestCanAddClientPaidPlan(t *testing.T) {
	mem := storetest.New()
	gate := NewGate(mem)
	ctx := context.Background()

	addClients(t, mem, "owner-2", 25)
	_, err := gate.Update(ctx, "owner-2", "pro", models.BillingYearly)
	require.NoError(t, err)

	decision, err := gate.CanAddClient(ctx, "owner-2")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Nil(t, decision.Limit)
	assert.Equal(t, int64(25), decision.CurrentCount)
}

func TestGetCreatesFreeSubscriptionOnce(t *testing.T) {
	mem := storetest.New()
	gate := NewGate(mem)
	ctx := context.Background()

	first, err := gate.Get(ctx, "owner-3")
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, first.Plan)
	assert.Equal(t, models.BillingMonthly, first.BillingCycle)

	second, err := gate.Get(ctx, "owner-3")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestUpdateValidation(t *testing.T) {
	gate := NewGate(storetest.New())

	_, err := gate.Update(context.Background(), "owner-4", "", "")
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = gate.Update(context.Background(), "owner-4", "pro", "weekly")
	assert.ErrorIs(t, err, utils.ErrValidation)

	sub, err := gate.Update(context.Background(), "owner-4", "pro", "")
	require.NoError(t, err)
	assert.Equal(t, models.BillingMonthly, sub.BillingCycle)
}

func TestSubscriptionRoutes(t *testing.T) {
	mem := storetest.New()
	router := mux.NewRouter()
	NewSubscriptionHandler(NewGate(mem)).RegisterRoutes(router)

	owner := &tenancy.Scope{Actor: &models.User{ID: "owner-5", Role: models.RoleOwner}, TenantID: "owner-5"}
	worker := &tenancy.Scope{Actor: &models.User{ID: "worker-5", Role: models.RoleWorker}, TenantID: "owner-5"}

	do := func(scope *tenancy.Scope, method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req = req.WithContext(tenancy.WithScope(req.Context(), scope))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := do(worker, http.MethodPut, "/subscription", `{"plan":"pro"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(owner, http.MethodPut, "/subscription", `{"plan":"pro","billingCycle":"weekly"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(owner, http.MethodPut, "/subscription", `{"plan":"pro","billingCycle":"yearly"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(worker, http.MethodGet, "/subscription/can-add-client", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["allowed"])
	assert.Equal(t, "pro", body["plan"])
	assert.Nil(t, body["limit"])
}
