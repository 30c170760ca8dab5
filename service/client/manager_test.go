package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"github.com/KAsare1/Gymhub-server/cmd/utils"
	"github.com/KAsare1/Gymhub-server/service/notifications"
	"github.com/KAsare1/Gymhub-server/service/receipt/receipttest"
	"github.com/KAsare1/Gymhub-server/service/subscription"
	"github.com/KAsare1/Gymhub-server/service/tenancy"
	"github.com/KAsare1/Gymhub-server/store"
	"github.com/KAsare1/Gymhub-server/store/storetest"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockIssuer struct {
	mock.Mock
}

func (m *mockIssuer) IssueBestEffort(ctx context.Context, rcpt *models.Receipt) *string {
	args := m.Called(rcpt)
	url, _ := args.Get(0).(*string)
	return url
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) ReceiptIssued(ctx context.Context, notice notification.ReceiptNotice) {
	m.Called(notice)
}

var jan1 = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

type fixture struct {
	mem      *storetest.Memory
	manager  *Manager
	issuer   *mockIssuer
	notifier *mockNotifier
	photos   *receipttest.Storage
	owner    *tenancy.Scope
	worker   *tenancy.Scope
	other    *tenancy.Scope
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := storetest.New()
	ctx := context.Background()

	owner := &models.User{ID: "owner-1", Name: "Ravi", Email: "ravi@example.com", Role: models.RoleOwner, Status: models.StatusActive, GymName: strPtr("Iron Temple")}
	require.NoError(t, mem.CreateOwner(ctx, owner, &models.Subscription{ID: "sub-1", OwnerID: owner.ID, Plan: models.PlanFree}))
	worker := &models.User{ID: "worker-1", Name: "Meena", Email: "meena@example.com", Role: models.RoleWorker, OwnerID: strPtr("owner-1")}
	require.NoError(t, mem.CreateWorker(ctx, worker))
	other := &models.User{ID: "owner-2", Name: "Kiran", Email: "kiran@example.com", Role: models.RoleOwner, Status: models.StatusActive}
	require.NoError(t, mem.CreateOwner(ctx, other, &models.Subscription{ID: "sub-2", OwnerID: other.ID, Plan: models.PlanFree}))

	f := &fixture{
		mem:      mem,
		issuer:   new(mockIssuer),
		notifier: new(mockNotifier),
		photos:   new(receipttest.Storage),
		owner:    &tenancy.Scope{Actor: owner, Tenant: owner, TenantID: owner.ID},
		worker:   &tenancy.Scope{Actor: worker, Tenant: owner, TenantID: owner.ID},
		other:    &tenancy.Scope{Actor: other, Tenant: other, TenantID: other.ID},
	}
	f.manager = NewManager(mem, subscription.NewGate(mem), f.issuer, f.notifier, f.photos,
		Options{PublicURL: "https://api.gymhub.test/", PhotoNamespace: "client-photos"}, zap.NewNop())
	f.manager.now = func() time.Time { return jan1 }
	return f
}

func asha() AddClientInput {
	return AddClientInput{Name: "Asha", Phone: "9000000001", MembershipType: "monthly", StartDate: "2024-01-01"}
}

func TestAddClientPending(t *testing.T) {
	f := newFixture(t)

	result, err := f.manager.AddClient(context.Background(), f.owner, asha())
	require.NoError(t, err)

	c := result.Client
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), c.EndDate)
	assert.True(t, decimal.NewFromInt(1500).Equal(c.Fee))
	assert.Equal(t, 0, c.IsActive)
	assert.False(t, c.TermsAccepted)
	assert.Equal(t, models.ClientStatusPending, c.Status)
	assert.Equal(t, "owner-1", c.OwnerID)

	assert.Equal(t, "https://api.gymhub.test/api/v1/public/terms/"+c.ID, result.ConsentLink)
	assert.Contains(t, result.WhatsAppMessage, "Hello Asha, welcome to Iron Temple!")
	assert.Contains(t, result.WhatsAppMessage, result.ConsentLink)

	receipts, err := f.mem.ListClientReceipts(context.Background(), "owner-1", c.ID)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.True(t, decimal.NewFromInt(1500).Equal(receipts[0].Amount))
	assert.Nil(t, receipts[0].ReceiptURL)
	assert.Equal(t, c.EndDate, receipts[0].EndDate)

	f.issuer.AssertNotCalled(t, "IssueBestEffort", mock.Anything)

	owner, err := f.mem.FindUser(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1500).Equal(owner.TotalRevenue))
}

func TestAddClientEndDates(t *testing.T) {
	tests := []struct {
		membership string
		endDate    string
		want       time.Time
		fee        int64
	}{
		{"monthly", "", time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC), 1500},
		{"quarterly", "", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), 4000},
		{"yearly", "", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), 15000},
		{"yearly", "2024-09-30", time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC), 15000},
	}
	for _, tt := range tests {
		t.Run(tt.membership+tt.endDate, func(t *testing.T) {
			f := newFixture(t)
			in := AddClientInput{Name: "Dev", Phone: "1", MembershipType: tt.membership, StartDate: "2024-03-15", EndDate: tt.endDate}
			result, err := f.manager.AddClient(context.Background(), f.owner, in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Client.EndDate)
			assert.True(t, decimal.NewFromInt(tt.fee).Equal(result.Client.Fee))
		})
	}
}

func TestAddClientFeeOverride(t *testing.T) {
	f := newFixture(t)
	in := asha()
	fee := decimal.RequireFromString("999.50")
	in.Fee = &fee

	result, err := f.manager.AddClient(context.Background(), f.owner, in)
	require.NoError(t, err)
	assert.True(t, fee.Equal(result.Client.Fee))
	assert.True(t, fee.Equal(result.Receipt.Amount))
}

func TestAddClientRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	missing := asha()
	missing.Name = ""
	_, err := f.manager.AddClient(ctx, f.owner, missing)
	assert.ErrorIs(t, err, utils.ErrValidation)

	badType := asha()
	badType.MembershipType = "weekly"
	_, err = f.manager.AddClient(ctx, f.owner, badType)
	assert.ErrorIs(t, err, utils.ErrValidation)

	backwards := asha()
	backwards.EndDate = "2023-12-01"
	_, err = f.manager.AddClient(ctx, f.owner, backwards)
	assert.ErrorIs(t, err, utils.ErrValidation)

	badDate := asha()
	badDate.StartDate = "01/01/2024"
	_, err = f.manager.AddClient(ctx, f.owner, badDate)
	assert.ErrorIs(t, err, utils.ErrValidation)

	workerSkip := asha()
	workerSkip.SkipConsent = true
	_, err = f.manager.AddClient(ctx, f.worker, workerSkip)
	assert.ErrorIs(t, err, utils.ErrForbidden)
}

func TestAddClientQuota(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < subscription.FreePlanClientLimit; i++ {
		in := asha()
		in.Name = fmt.Sprintf("Client %d", i)
		_, err := f.manager.AddClient(ctx, f.worker, in)
		require.NoError(t, err)
	}

	_, err := f.manager.AddClient(ctx, f.owner, asha())
	require.ErrorIs(t, err, utils.ErrQuotaExceeded)
	decision, ok := IsQuotaError(err)
	require.True(t, ok)
	assert.Equal(t, int64(10), decision.CurrentCount)
	assert.Equal(t, 10, *decision.Limit)

	// Another tenant is unaffected.
	_, err = f.manager.AddClient(ctx, f.other, asha())
	assert.NoError(t, err)
}

func TestAddClientSkipConsentRunsPipeline(t *testing.T) {
	f := newFixture(t)
	url := "https://cdn.test/gym-receipts/r.pdf"
	f.issuer.On("IssueBestEffort", mock.Anything).Return(&url).Once()
	f.notifier.On("ReceiptIssued", mock.MatchedBy(func(n notification.ReceiptNotice) bool {
		return n.ReceiptURL == url && n.ClientName == "Asha" && n.GymName == "Iron Temple"
	})).Once()

	in := asha()
	in.StartDate = "2024-01-01"
	in.SkipConsent = true
	result, err := f.manager.AddClient(context.Background(), f.owner, in)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Client.IsActive)
	assert.Equal(t, models.ClientStatusActive, result.Client.Status)
	assert.Empty(t, result.ConsentLink)
	require.NotNil(t, result.Receipt.ReceiptURL)
	assert.Equal(t, url, *result.Receipt.ReceiptURL)
	f.issuer.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestAddClientSkipConsentPipelineFailure(t *testing.T) {
	f := newFixture(t)
	f.issuer.On("IssueBestEffort", mock.Anything).Return(nil).Once()

	in := asha()
	in.SkipConsent = true
	result, err := f.manager.AddClient(context.Background(), f.owner, in)
	require.NoError(t, err)
	assert.Nil(t, result.Receipt.ReceiptURL)
	f.notifier.AssertNotCalled(t, "ReceiptIssued", mock.Anything)
}

func TestRenew(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	added, err := f.manager.AddClient(ctx, f.owner, asha())
	require.NoError(t, err)
	original := added.Receipt

	renewAt := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	f.manager.now = func() time.Time { return renewAt }

	c, rcpt, err := f.manager.Renew(ctx, f.worker, added.Client.ID, RenewInput{MembershipType: "yearly"})
	require.NoError(t, err)

	assert.Equal(t, renewAt.AddDate(1, 0, 0), c.EndDate)
	assert.Equal(t, renewAt, c.StartDate)
	assert.True(t, decimal.NewFromInt(15000).Equal(c.Fee))
	assert.Equal(t, 1, c.IsActive)
	assert.NotEqual(t, original.ID, rcpt.ID)
	assert.True(t, decimal.NewFromInt(15000).Equal(rcpt.Amount))

	stored, err := f.mem.FindReceipt(ctx, "owner-1", original.ID)
	require.NoError(t, err)
	assert.Equal(t, *original, *stored)

	receipts, err := f.mem.ListClientReceipts(ctx, "owner-1", c.ID)
	require.NoError(t, err)
	assert.Len(t, receipts, 2)

	// The client had not consented yet, so no PDF was produced.
	f.issuer.AssertNotCalled(t, "IssueBestEffort", mock.Anything)
}

func TestRenewActivatedClientIssuesArtifact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	added, err := f.manager.AddClient(ctx, f.owner, asha())
	require.NoError(t, err)
	_, err = f.mem.AcceptTerms(ctx, added.Client.ID, jan1)
	require.NoError(t, err)

	url := "https://cdn.test/renewal.pdf"
	f.issuer.On("IssueBestEffort", mock.MatchedBy(func(r *models.Receipt) bool {
		return r.ID != added.Receipt.ID && r.MembershipType == "quarterly"
	})).Return(&url).Once()
	f.notifier.On("ReceiptIssued", mock.Anything).Once()

	_, rcpt, err := f.manager.Renew(ctx, f.owner, added.Client.ID, RenewInput{MembershipType: "quarterly"})
	require.NoError(t, err)
	require.NotNil(t, rcpt.ReceiptURL)
	assert.Equal(t, url, *rcpt.ReceiptURL)
	f.issuer.AssertExpectations(t)
}

func TestRenewScopedToTenant(t *testing.T) {
	f := newFixture(t)
	added, err := f.manager.AddClient(context.Background(), f.owner, asha())
	require.NoError(t, err)

	_, _, err = f.manager.Renew(context.Background(), f.other, added.Client.ID, RenewInput{MembershipType: "yearly"})
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestListDerivesIsActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	past := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	expired := &models.Client{
		ID: "expired", OwnerID: "owner-1", Name: "Old", Phone: "1", MembershipType: "monthly",
		StartDate: past, EndDate: past.AddDate(0, 1, 0), IsActive: 1, TermsAccepted: true,
	}
	require.NoError(t, f.mem.CreateClient(ctx, expired, &models.Receipt{ID: "RCP-old", ClientID: "expired", OwnerID: "owner-1"}))

	current := &models.Client{
		ID: "current", OwnerID: "owner-1", Name: "New", Phone: "2", MembershipType: "monthly",
		StartDate: jan1, EndDate: jan1.AddDate(0, 1, 0), IsActive: 0, TermsAccepted: true,
	}
	require.NoError(t, f.mem.CreateClient(ctx, current, &models.Receipt{ID: "RCP-new", ClientID: "current", OwnerID: "owner-1"}))

	clients, total, err := f.manager.List(ctx, f.worker, store.ClientFilter{Page: utils.Page{Number: 1, Size: 20}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	byID := map[string]models.Client{}
	for _, c := range clients {
		byID[c.ID] = c
	}
	assert.Equal(t, 0, byID["expired"].IsActive)
	assert.Equal(t, models.ClientStatusExpired, byID["expired"].Status)
	assert.Equal(t, 1, byID["current"].IsActive)
	assert.Equal(t, models.ClientStatusActive, byID["current"].Status)

	// Moving the clock past the end date flips the derived flag without any write.
	f.manager.now = func() time.Time { return jan1.AddDate(0, 2, 0) }
	clients, _, err = f.manager.List(ctx, f.owner, store.ClientFilter{Status: models.ClientStatusExpired, Page: utils.Page{Number: 1, Size: 20}})
	require.NoError(t, err)
	assert.Len(t, clients, 2)
	for _, c := range clients {
		assert.Equal(t, 0, c.IsActive)
	}

	_, _, err = f.manager.List(ctx, f.owner, store.ClientFilter{Status: "archived"})
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestTenantIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.manager.AddClient(ctx, f.owner, asha())
	require.NoError(t, err)
	_, err = f.manager.AddClient(ctx, f.worker, AddClientInput{Name: "Bala", Phone: "2", MembershipType: "monthly", StartDate: "2024-01-01"})
	require.NoError(t, err)
	theirs, err := f.manager.AddClient(ctx, f.other, AddClientInput{Name: "Zed", Phone: "3", MembershipType: "monthly", StartDate: "2024-01-01"})
	require.NoError(t, err)

	page := store.ClientFilter{Page: utils.Page{Number: 1, Size: 20}}
	ownerView, _, err := f.manager.List(ctx, f.owner, page)
	require.NoError(t, err)
	workerView, _, err := f.manager.List(ctx, f.worker, page)
	require.NoError(t, err)
	otherView, _, err := f.manager.List(ctx, f.other, page)
	require.NoError(t, err)

	assert.Len(t, ownerView, 2)
	assert.ElementsMatch(t, ids(ownerView), ids(workerView))
	assert.Equal(t, []string{theirs.Client.ID}, ids(otherView))

	_, err = f.manager.Get(ctx, f.owner, theirs.Client.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)
	_, err = f.manager.Update(ctx, f.worker, theirs.Client.ID, UpdateClientInput{Name: strPtr("Hijack")})
	assert.ErrorIs(t, err, utils.ErrNotFound)
	assert.ErrorIs(t, f.manager.Delete(ctx, f.owner, theirs.Client.ID), utils.ErrNotFound)
}

func ids(clients []models.Client) []string {
	out := make([]string, 0, len(clients))
	for _, c := range clients {
		out = append(out, c.ID)
	}
	return out
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	added, err := f.manager.AddClient(ctx, f.owner, asha())
	require.NoError(t, err)
	id := added.Client.ID

	_, err = f.manager.Update(ctx, f.owner, id, UpdateClientInput{})
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = f.manager.Update(ctx, f.owner, id, UpdateClientInput{EndDate: strPtr("2023-06-01")})
	assert.ErrorIs(t, err, utils.ErrValidation)

	c, err := f.manager.Update(ctx, f.worker, id, UpdateClientInput{Name: strPtr("Asha K"), EndDate: strPtr("2024-03-01")})
	require.NoError(t, err)
	assert.Equal(t, "Asha K", c.Name)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), c.EndDate)

	// The admission receipt keeps its snapshot.
	rcpt, err := f.mem.FindReceipt(ctx, "owner-1", added.Receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", rcpt.ClientName)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), rcpt.EndDate)
}

func TestDeleteKeepsReceipts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	added, err := f.manager.AddClient(ctx, f.owner, asha())
	require.NoError(t, err)

	require.NoError(t, f.manager.Delete(ctx, f.worker, added.Client.ID))
	_, err = f.manager.Get(ctx, f.owner, added.Client.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	rcpt, err := f.mem.FindReceipt(ctx, "owner-1", added.Receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, added.Client.ID, rcpt.ClientID)
}

func TestUploadPhoto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	added, err := f.manager.AddClient(ctx, f.owner, asha())
	require.NoError(t, err)

	f.photos.On("Put", mock.Anything, []byte("jpeg-bytes"), "client-photos", mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, added.Client.ID+"/") && strings.HasSuffix(key, ".jpg")
	})).Return("https://cdn.test/client-photos/p.jpg", nil).Once()

	c, err := f.manager.UploadPhoto(ctx, f.worker, added.Client.ID, []byte("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.test/client-photos/p.jpg"}, []string(c.PhotoRefs))

	f.photos.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("s3 down")).Once()
	_, err = f.manager.UploadPhoto(ctx, f.worker, added.Client.ID, []byte("x"), "image/png")
	assert.ErrorIs(t, err, utils.ErrStorage)

	_, err = f.manager.UploadPhoto(ctx, f.other, added.Client.ID, []byte("x"), "image/png")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func serve(router *mux.Router, scope *tenancy.Scope, req *http.Request) *httptest.ResponseRecorder {
	req = req.WithContext(tenancy.WithScope(req.Context(), scope))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestClientRoutes(t *testing.T) {
	f := newFixture(t)
	router := mux.NewRouter()
	NewClientHandler(f.manager).RegisterRoutes(router)

	body := `{"name":"Asha","phone":"9000000001","membershipType":"monthly","startDate":"2024-01-01"}`
	rec := serve(router, f.worker, httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Success     bool           `json:"success"`
		Client      models.Client  `json:"client"`
		Receipt     models.Receipt `json:"receipt"`
		ReceiptURL  *string        `json:"receipt_url"`
		ConsentLink string         `json:"consent_link"`
		Message     string         `json:"whatsapp_message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.Success)
	assert.Equal(t, 0, created.Client.IsActive)
	assert.Equal(t, "pending", created.Client.Status)
	assert.Nil(t, created.ReceiptURL)
	assert.Contains(t, created.ConsentLink, created.Client.ID)
	assert.NotEmpty(t, created.Message)

	rec = serve(router, f.owner, httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(`{"name":"X"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, f.owner, httptest.NewRequest(http.MethodGet, "/clients?status=pending&page=1&page_size=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.Client.ID)

	rec = serve(router, f.owner, httptest.NewRequest(http.MethodGet, "/clients/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pending":1`)

	rec = serve(router, f.owner, httptest.NewRequest(http.MethodPut, "/clients/"+created.Client.ID, strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, f.owner, httptest.NewRequest(http.MethodPost, "/clients/"+created.Client.ID+"/renew", strings.NewReader(`{"membershipType":"yearly"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, f.other, httptest.NewRequest(http.MethodDelete, "/clients/"+created.Client.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = serve(router, f.owner, httptest.NewRequest(http.MethodDelete, "/clients/"+created.Client.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAddClientRouteQuotaBody(t *testing.T) {
	f := newFixture(t)
	router := mux.NewRouter()
	NewClientHandler(f.manager).RegisterRoutes(router)

	for i := 0; i < subscription.FreePlanClientLimit; i++ {
		_, err := f.manager.AddClient(context.Background(), f.owner, asha())
		require.NoError(t, err)
	}

	body := `{"name":"Asha","phone":"9000000001","membershipType":"monthly","startDate":"2024-01-01"}`
	rec := serve(router, f.owner, httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(body)))
	require.Equal(t, http.StatusForbidden, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, utils.ErrQuotaExceeded.Error(), resp["error"])
	assert.EqualValues(t, 10, resp["currentCount"])
	assert.EqualValues(t, 10, resp["limit"])
}

func TestUploadPhotoRoute(t *testing.T) {
	f := newFixture(t)
	router := mux.NewRouter()
	NewClientHandler(f.manager).RegisterRoutes(router)
	added, err := f.manager.AddClient(context.Background(), f.owner, asha())
	require.NoError(t, err)

	f.photos.On("Put", mock.Anything, []byte("png-bytes"), "client-photos", mock.Anything).
		Return("https://cdn.test/client-photos/a.png", nil).Once()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("photo", "face.png")
	require.NoError(t, err)
	part.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/clients/"+added.Client.ID+"/photos", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := serve(router, f.worker, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "https://cdn.test/client-photos/a.png")

	var bad bytes.Buffer
	mw = multipart.NewWriter(&bad)
	part, _ = mw.CreateFormFile("photo", "notes.txt")
	part.Write([]byte("hello"))
	mw.Close()
	req = httptest.NewRequest(http.MethodPost, "/clients/"+added.Client.ID+"/photos", &bad)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, serve(router, f.worker, req).Code)
}
