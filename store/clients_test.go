package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"github.com/KAsare1/Gymhub-server/cmd/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	now     = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	firstPg = utils.Page{Number: 1, Size: 20}
)

func seedRoster(t *testing.T, s *Store) {
	t.Helper()
	seedOwner(t, s, "owner-1")
	seedOwner(t, s, "owner-2")
	issued := now.AddDate(0, -1, 0)
	seedClient(t, s, clientSeed{id: "c-pending", owner: "owner-1", name: "Asha", phone: "9000000001", end: now.AddDate(0, 1, 0)}, issued)
	seedClient(t, s, clientSeed{id: "c-active", owner: "owner-1", name: "Ravi_Kumar", phone: "9000000002", end: now.AddDate(0, 1, 0), activated: true}, issued)
	seedClient(t, s, clientSeed{id: "c-expired", owner: "owner-1", name: "Meera", phone: "8000000003", end: now.AddDate(0, 0, -1), activated: true}, issued)
	seedClient(t, s, clientSeed{id: "c-other", owner: "owner-2", name: "Asha Other", phone: "9000000009", end: now.AddDate(0, 1, 0), activated: true}, issued)
}

func ids(clients []models.Client) []string {
	out := make([]string, 0, len(clients))
	for _, c := range clients {
		out = append(out, c.ID)
	}
	return out
}

func TestListClientsStatusFilters(t *testing.T) {
	s := newTestStore(t)
	seedRoster(t, s)
	ctx := context.Background()

	tests := []struct {
		status string
		want   []string
	}{
		{"", []string{"c-pending", "c-active", "c-expired"}},
		{models.ClientStatusPending, []string{"c-pending"}},
		{models.ClientStatusActive, []string{"c-active"}},
		{models.ClientStatusExpired, []string{"c-expired"}},
	}
	for _, tt := range tests {
		t.Run("status="+tt.status, func(t *testing.T) {
			clients, total, err := s.ListClients(ctx, "owner-1", ClientFilter{Status: tt.status, Page: firstPg}, now)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.want)), total)
			assert.ElementsMatch(t, tt.want, ids(clients))
		})
	}

	flipped, err := s.AcceptTerms(ctx, "c-pending", now)
	require.NoError(t, err)
	require.True(t, flipped)
	clients, _, err := s.ListClients(ctx, "owner-1", ClientFilter{Status: models.ClientStatusActive, Page: firstPg}, now)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c-pending", "c-active"}, ids(clients))
}

func TestListClientsSearch(t *testing.T) {
	s := newTestStore(t)
	seedRoster(t, s)
	ctx := context.Background()

	tests := []struct {
		search string
		want   []string
	}{
		{"asha", []string{"c-pending"}},
		{"9000", []string{"c-pending", "c-active"}},
		{"_", []string{"c-active"}},
		{"%", []string{}},
	}
	for _, tt := range tests {
		clients, total, err := s.ListClients(ctx, "owner-1", ClientFilter{Search: tt.search, Page: firstPg}, now)
		require.NoError(t, err, tt.search)
		assert.Equal(t, int64(len(tt.want)), total, tt.search)
		assert.ElementsMatch(t, tt.want, ids(clients), tt.search)
	}
}

func TestListClientsPaging(t *testing.T) {
	s := newTestStore(t)
	seedRoster(t, s)

	clients, total, err := s.ListClients(context.Background(), "owner-1", ClientFilter{Page: utils.Page{Number: 2, Size: 2}}, now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, clients, 1)
}

func TestClientStats(t *testing.T) {
	s := newTestStore(t)
	seedRoster(t, s)

	stats, err := s.ClientStats(context.Background(), "owner-1", now)
	require.NoError(t, err)
	assert.Equal(t, ClientStats{Total: 3, Active: 1, Pending: 1, Expired: 1}, *stats)

	stats, err = s.ClientStats(context.Background(), "owner-2", now)
	require.NoError(t, err)
	assert.Equal(t, ClientStats{Total: 1, Active: 1}, *stats)
}

func TestClientQueriesAreTenantScoped(t *testing.T) {
	s := newTestStore(t)
	seedRoster(t, s)
	ctx := context.Background()

	_, err := s.FindClient(ctx, "owner-2", "c-active")
	assert.ErrorIs(t, err, utils.ErrNotFound)

	_, err = s.UpdateClient(ctx, "owner-2", "c-active", map[string]interface{}{"name": "Hijacked"})
	assert.ErrorIs(t, err, utils.ErrNotFound)

	_, err = s.RenewClient(ctx, "owner-2", "c-active", map[string]interface{}{"is_active": 1}, &models.Receipt{
		ID: "RCP-x", ClientID: "c-active", OwnerID: "owner-2", ClientName: "x", Amount: decimal.NewFromInt(1),
		MembershipType: models.MembershipMonthly, StartDate: now, EndDate: now.AddDate(0, 1, 0), GeneratedAt: now,
	})
	assert.ErrorIs(t, err, utils.ErrNotFound)

	assert.ErrorIs(t, s.DeleteClient(ctx, "owner-2", "c-active"), utils.ErrNotFound)

	count, err := s.CountClients(ctx, "owner-2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	c, err := s.FindClient(ctx, "owner-1", "c-active")
	require.NoError(t, err)
	assert.Equal(t, "Ravi_Kumar", c.Name)

	_, err = s.FindReceipt(ctx, "owner-2", "RCP-c-active")
	assert.ErrorIs(t, err, utils.ErrNotFound)
	receipts, err := s.ListClientReceipts(ctx, "owner-2", "c-active")
	require.NoError(t, err)
	assert.Empty(t, receipts)
	assert.ErrorIs(t, s.DeleteReceipt(ctx, "owner-2", "RCP-c-active"), utils.ErrNotFound)
}

func TestAcceptTermsFlipsOnce(t *testing.T) {
	s := newTestStore(t)
	seedRoster(t, s)
	ctx := context.Background()

	flipped, err := s.AcceptTerms(ctx, "c-pending", now)
	require.NoError(t, err)
	assert.True(t, flipped)

	flipped, err = s.AcceptTerms(ctx, "c-pending", now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, flipped)

	c, err := s.FindClientByID(ctx, "c-pending")
	require.NoError(t, err)
	assert.True(t, c.TermsAccepted)
	assert.Equal(t, 1, c.IsActive)
	require.NotNil(t, c.TermsAcceptedAt)
	assert.True(t, now.Equal(*c.TermsAcceptedAt))

	flipped, err = s.AcceptTerms(ctx, "missing", now)
	require.NoError(t, err)
	assert.False(t, flipped)
}

func TestAcceptTermsConcurrent(t *testing.T) {
	s := newTestStore(t)
	seedRoster(t, s)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			flipped, err := s.AcceptTerms(context.Background(), "c-pending", now)
			assert.NoError(t, err)
			if flipped {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestCreateAndRenewBookRevenue(t *testing.T) {
	s := newTestStore(t)
	seedOwner(t, s, "owner-1")
	ctx := context.Background()

	_, admission := seedClient(t, s, clientSeed{id: "c-1", owner: "owner-1", name: "Asha", phone: "9000000001", end: now.AddDate(0, 1, 0), fee: 1500}, now.AddDate(0, -1, 0))

	renewal := &models.Receipt{
		ID: "RCP-renew", ClientID: "c-1", OwnerID: "owner-1", ClientName: "Asha", ClientPhone: "9000000001",
		Amount: decimal.NewFromInt(15000), MembershipType: models.MembershipYearly,
		StartDate: now, EndDate: now.AddDate(1, 0, 0), GeneratedAt: now,
	}
	renewed, err := s.RenewClient(ctx, "owner-1", "c-1", map[string]interface{}{
		"membership_type": models.MembershipYearly,
		"start_date":      now,
		"end_date":        now.AddDate(1, 0, 0),
		"fee":             decimal.NewFromInt(15000),
		"is_active":       1,
	}, renewal)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipYearly, renewed.MembershipType)
	assert.True(t, now.AddDate(1, 0, 0).Equal(renewed.EndDate))

	owner, err := s.FindUser(ctx, "owner-1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(16500).Equal(owner.TotalRevenue), owner.TotalRevenue.String())

	first, err := s.AdmissionReceipt(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, admission.ID, first.ID)
	assert.Equal(t, models.MembershipMonthly, first.MembershipType)

	require.NoError(t, s.DeleteClient(ctx, "owner-1", "c-1"))
	receipts, err := s.ListClientReceipts(ctx, "owner-1", "c-1")
	require.NoError(t, err)
	assert.Len(t, receipts, 2)
	assert.Equal(t, "RCP-renew", receipts[0].ID)
}

func TestAppendClientPhoto(t *testing.T) {
	s := newTestStore(t)
	seedRoster(t, s)
	ctx := context.Background()

	_, err := s.AppendClientPhoto(ctx, "owner-1", "c-active", "https://cdn.test/a.jpg")
	require.NoError(t, err)
	c, err := s.AppendClientPhoto(ctx, "owner-1", "c-active", "https://cdn.test/b.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.test/a.jpg", "https://cdn.test/b.jpg"}, []string(c.PhotoRefs))

	_, err = s.AppendClientPhoto(ctx, "owner-2", "c-active", "https://cdn.test/c.jpg")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}
