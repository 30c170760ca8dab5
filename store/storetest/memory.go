// Package storetest provides an in-memory stand-in for store.Store. It keeps the same
// tenant scoping and conditional-update rules so service tests exercise real semantics
// without a database.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"github.com/KAsare1/Gymhub-server/cmd/utils"
	"github.com/KAsare1/Gymhub-server/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Memory struct {
	mu sync.Mutex

	users      map[string]*models.User
	plans      []models.MembershipPlan
	nextPlanID uint
	admins     map[string]*models.SuperAdmin
	subs       map[string]*models.Subscription
	clients    []*models.Client
	receipts   []*models.Receipt

	devices       []*models.Device
	nextDeviceID  uint
	notifications []models.NotificationHistory
}

func New() *Memory {
	return &Memory{
		users:  make(map[string]*models.User),
		admins: make(map[string]*models.SuperAdmin),
		subs:   make(map[string]*models.Subscription),
	}
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, utils.ErrNotFound)
}

func conflict(what string) error {
	return fmt.Errorf("%s: %w", what, utils.ErrConflict)
}

func (m *Memory) Ping(context.Context) error { return nil }

// ---- users ----

func (m *Memory) CreateOwner(_ context.Context, owner *models.User, sub *models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.insertUser(owner); err != nil {
		return err
	}
	for i := range owner.MembershipPlans {
		m.nextPlanID++
		owner.MembershipPlans[i].ID = m.nextPlanID
		owner.MembershipPlans[i].OwnerID = owner.ID
		m.plans = append(m.plans, owner.MembershipPlans[i])
	}
	if _, ok := m.subs[sub.OwnerID]; ok {
		return conflict("create subscription")
	}
	copied := *sub
	m.subs[sub.OwnerID] = &copied
	return nil
}

func (m *Memory) CreateWorker(_ context.Context, worker *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertUser(worker)
}

func (m *Memory) insertUser(u *models.User) error {
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return conflict("create user")
		}
	}
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	if u.Role == "" {
		u.Role = models.RoleOwner
	}
	copied := *u
	copied.MembershipPlans = nil
	m.users[u.ID] = &copied
	return nil
}

func (m *Memory) FindUser(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, notFound("user")
	}
	copied := *u
	return &copied, nil
}

func (m *Memory) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, notFound("user")
}

func (m *Memory) EmailTaken(_ context.Context, email, exceptID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email && u.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) UpdateUser(ctx context.Context, id string, updates map[string]interface{}) (*models.User, error) {
	m.mu.Lock()
	u, ok := m.users[id]
	if !ok {
		m.mu.Unlock()
		return nil, notFound("user")
	}
	applyUserUpdates(u, updates)
	m.mu.Unlock()
	return m.FindUser(ctx, id)
}

func (m *Memory) ReplaceGymProfile(ctx context.Context, ownerID string, updates map[string]interface{}, plans []models.MembershipPlan) (*models.User, error) {
	m.mu.Lock()
	u, ok := m.users[ownerID]
	if !ok || u.Role != models.RoleOwner {
		m.mu.Unlock()
		return nil, notFound("user")
	}
	applyUserUpdates(u, updates)
	if plans != nil {
		kept := m.plans[:0]
		for _, p := range m.plans {
			if p.OwnerID != ownerID {
				kept = append(kept, p)
			}
		}
		m.plans = kept
		for _, p := range plans {
			m.nextPlanID++
			p.ID = m.nextPlanID
			p.OwnerID = ownerID
			m.plans = append(m.plans, p)
		}
	}
	m.mu.Unlock()
	return m.FindUser(ctx, ownerID)
}

func (m *Memory) ListMembershipPlans(_ context.Context, ownerID string) ([]models.MembershipPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.MembershipPlan
	for _, p := range m.plans {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Memory) ListWorkers(_ context.Context, ownerID string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		if u.Role == models.RoleWorker && u.OwnerID != nil && *u.OwnerID == ownerID {
			out = append(out, *u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) DeleteWorker(_ context.Context, ownerID, workerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[workerID]
	if !ok || u.Role != models.RoleWorker || u.OwnerID == nil || *u.OwnerID != ownerID {
		return notFound("worker")
	}
	delete(m.users, workerID)
	return nil
}

func (m *Memory) SetOwnerStatus(_ context.Context, ownerID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[ownerID]
	if !ok || u.Role != models.RoleOwner {
		return notFound("owner")
	}
	u.Status = status
	return nil
}

func (m *Memory) ListTenants(_ context.Context, filter store.TenantFilter) ([]store.TenantSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	search := strings.ToLower(filter.Search)
	var out []store.TenantSummary
	for _, u := range m.users {
		if u.Role != models.RoleOwner {
			continue
		}
		if filter.Status != "" && filter.Status != "all" && u.Status != filter.Status {
			continue
		}
		if search != "" {
			gym := ""
			if u.GymName != nil {
				gym = *u.GymName
			}
			hay := strings.ToLower(u.Name + " " + u.Email + " " + gym)
			if !strings.Contains(hay, search) {
				continue
			}
		}
		summary := store.TenantSummary{
			ID:               u.ID,
			Name:             u.Name,
			Email:            u.Email,
			GymName:          u.GymName,
			Status:           u.Status,
			TotalRevenue:     u.TotalRevenue,
			SubscriptionPlan: models.PlanFree,
			CreatedAt:        u.CreatedAt,
		}
		for _, c := range m.clients {
			if c.OwnerID == u.ID {
				summary.ClientCount++
			}
		}
		if sub, ok := m.subs[u.ID]; ok {
			summary.SubscriptionPlan = sub.Plan
		}
		out = append(out, summary)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) PlatformStats(_ context.Context, since time.Time) (*store.PlatformStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &store.PlatformStats{}
	for _, u := range m.users {
		if u.Role != models.RoleOwner {
			continue
		}
		stats.TotalAdmins++
		switch u.Status {
		case models.StatusActive:
			stats.ActiveAdmins++
		case models.StatusSuspended:
			stats.SuspendedAdmins++
		}
		stats.TotalRevenue = stats.TotalRevenue.Add(u.TotalRevenue)
	}
	for _, r := range m.receipts {
		if !r.GeneratedAt.Before(since) {
			stats.MonthlyRevenue = stats.MonthlyRevenue.Add(r.Amount)
		}
	}
	stats.TotalClients = int64(len(m.clients))
	return stats, nil
}

func (m *Memory) CreateSuperAdmin(_ context.Context, admin *models.SuperAdmin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.admins {
		if a.Email == admin.Email {
			return conflict("create super admin")
		}
	}
	copied := *admin
	m.admins[admin.ID] = &copied
	return nil
}

func (m *Memory) FindSuperAdmin(_ context.Context, id string) (*models.SuperAdmin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.admins[id]
	if !ok {
		return nil, notFound("super admin")
	}
	copied := *a
	return &copied, nil
}

func (m *Memory) FindSuperAdminByEmail(_ context.Context, email string) (*models.SuperAdmin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.admins {
		if a.Email == email {
			copied := *a
			return &copied, nil
		}
	}
	return nil, notFound("super admin")
}

// ---- clients ----

func (m *Memory) CreateClient(_ context.Context, client *models.Client, receipt *models.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.clients {
		if c.ID == client.ID {
			return conflict("create client")
		}
	}
	if m.findReceipt(receipt.ID) != nil {
		return conflict("create receipt")
	}
	now := time.Now()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}
	client.UpdatedAt = now
	m.clients = append(m.clients, cloneClient(client))
	m.insertReceipt(receipt)
	return nil
}

func (m *Memory) CountClients(_ context.Context, ownerID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.clients {
		if c.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func clientStatus(c *models.Client, now time.Time) string {
	switch {
	case !c.Activated():
		return models.ClientStatusPending
	case c.EndDate.After(now):
		return models.ClientStatusActive
	default:
		return models.ClientStatusExpired
	}
}

func (m *Memory) ListClients(_ context.Context, ownerID string, filter store.ClientFilter, now time.Time) ([]models.Client, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	search := strings.ToLower(filter.Search)
	var matched []models.Client
	for i := len(m.clients) - 1; i >= 0; i-- {
		c := m.clients[i]
		if c.OwnerID != ownerID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) && !strings.Contains(c.Phone, filter.Search) {
			continue
		}
		if filter.Status != "" && clientStatus(c, now) != filter.Status {
			continue
		}
		matched = append(matched, *cloneClient(c))
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := filter.Page.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Page.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *Memory) ClientStats(_ context.Context, ownerID string, now time.Time) (*store.ClientStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &store.ClientStats{}
	for _, c := range m.clients {
		if c.OwnerID != ownerID {
			continue
		}
		stats.Total++
		switch clientStatus(c, now) {
		case models.ClientStatusPending:
			stats.Pending++
		case models.ClientStatusActive:
			stats.Active++
		default:
			stats.Expired++
		}
	}
	return stats, nil
}

func (m *Memory) findClient(ownerID, id string) *models.Client {
	for _, c := range m.clients {
		if c.ID == id && (ownerID == "" || c.OwnerID == ownerID) {
			return c
		}
	}
	return nil
}

func (m *Memory) FindClient(_ context.Context, ownerID, id string) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.findClient(ownerID, id)
	if c == nil || ownerID == "" {
		return nil, notFound("client")
	}
	return cloneClient(c), nil
}

func (m *Memory) FindClientByID(_ context.Context, id string) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.findClient("", id)
	if c == nil {
		return nil, notFound("client")
	}
	return cloneClient(c), nil
}

func (m *Memory) UpdateClient(_ context.Context, ownerID, id string, updates map[string]interface{}) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.findClient(ownerID, id)
	if c == nil || ownerID == "" {
		return nil, notFound("client")
	}
	applyClientUpdates(c, updates)
	return cloneClient(c), nil
}

func (m *Memory) DeleteClient(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.clients {
		if c.ID == id && c.OwnerID == ownerID {
			m.clients = append(m.clients[:i], m.clients[i+1:]...)
			return nil
		}
	}
	return notFound("client")
}

func (m *Memory) RenewClient(_ context.Context, ownerID, id string, updates map[string]interface{}, receipt *models.Receipt) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.findClient(ownerID, id)
	if c == nil || ownerID == "" {
		return nil, fmt.Errorf("renew client: %w", utils.ErrNotFound)
	}
	if m.findReceipt(receipt.ID) != nil {
		return nil, conflict("renew client")
	}
	applyClientUpdates(c, updates)
	m.insertReceipt(receipt)
	return cloneClient(c), nil
}

func (m *Memory) AppendClientPhoto(_ context.Context, ownerID, id, ref string) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.findClient(ownerID, id)
	if c == nil || ownerID == "" {
		return nil, notFound("client")
	}
	c.PhotoRefs = append(c.PhotoRefs, ref)
	c.UpdatedAt = time.Now()
	return cloneClient(c), nil
}

func (m *Memory) AcceptTerms(_ context.Context, id string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.findClient("", id)
	if c == nil || c.TermsAccepted {
		return false, nil
	}
	c.TermsAccepted = true
	c.TermsAcceptedAt = &at
	c.IsActive = 1
	return true, nil
}

// ---- receipts ----

func (m *Memory) insertReceipt(r *models.Receipt) {
	copied := *r
	m.receipts = append(m.receipts, &copied)
	if owner, ok := m.users[r.OwnerID]; ok {
		owner.TotalRevenue = owner.TotalRevenue.Add(r.Amount)
	}
}

func (m *Memory) findReceipt(id string) *models.Receipt {
	for _, r := range m.receipts {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// newestFirst returns receipts matching keep ordered by GeneratedAt descending, later
// inserts first on ties.
func (m *Memory) newestFirst(keep func(*models.Receipt) bool) []models.Receipt {
	var out []models.Receipt
	for i := len(m.receipts) - 1; i >= 0; i-- {
		if keep(m.receipts[i]) {
			out = append(out, *m.receipts[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].GeneratedAt.After(out[j].GeneratedAt) })
	return out
}

func (m *Memory) ListReceipts(_ context.Context, ownerID string, page utils.Page) ([]models.Receipt, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.newestFirst(func(r *models.Receipt) bool { return r.OwnerID == ownerID })
	total := int64(len(all))
	start := page.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + page.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m *Memory) FindReceipt(_ context.Context, ownerID, id string) (*models.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.findReceipt(id)
	if r == nil || r.OwnerID != ownerID {
		return nil, notFound("receipt")
	}
	copied := *r
	return &copied, nil
}

func (m *Memory) ListClientReceipts(_ context.Context, ownerID, clientID string) ([]models.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.newestFirst(func(r *models.Receipt) bool {
		return r.OwnerID == ownerID && r.ClientID == clientID
	}), nil
}

func (m *Memory) AdmissionReceipt(_ context.Context, clientID string) (*models.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var first *models.Receipt
	for _, r := range m.receipts {
		if r.ClientID != clientID {
			continue
		}
		if first == nil || r.GeneratedAt.Before(first.GeneratedAt) {
			first = r
		}
	}
	if first == nil {
		return nil, notFound("receipt")
	}
	copied := *first
	return &copied, nil
}

func (m *Memory) SetReceiptURL(_ context.Context, id, url string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.findReceipt(id)
	if r == nil {
		return "", notFound("receipt")
	}
	if r.ReceiptURL == nil {
		r.ReceiptURL = &url
	}
	return *r.ReceiptURL, nil
}

func (m *Memory) DeleteReceipt(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.receipts {
		if r.ID == id && r.OwnerID == ownerID {
			m.receipts = append(m.receipts[:i], m.receipts[i+1:]...)
			return nil
		}
	}
	return notFound("receipt")
}

// ---- subscriptions ----

func (m *Memory) GetOrCreateSubscription(_ context.Context, ownerID string) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[ownerID]
	if !ok {
		sub = &models.Subscription{
			ID:           uuid.New().String(),
			OwnerID:      ownerID,
			Plan:         models.PlanFree,
			BillingCycle: models.BillingMonthly,
			StartDate:    time.Now(),
			IsActive:     1,
		}
		m.subs[ownerID] = sub
	}
	copied := *sub
	return &copied, nil
}

func (m *Memory) UpsertSubscription(_ context.Context, ownerID, plan, billingCycle string, start time.Time) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[ownerID]
	if !ok {
		sub = &models.Subscription{ID: uuid.New().String(), OwnerID: ownerID}
		m.subs[ownerID] = sub
	}
	sub.Plan = plan
	sub.BillingCycle = billingCycle
	sub.StartDate = start
	sub.IsActive = 1
	copied := *sub
	return &copied, nil
}

// ---- devices ----

func (m *Memory) SaveDevice(_ context.Context, device *models.Device) (*models.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.devices {
		if d.Token == device.Token && d.UserID == device.UserID {
			d.DeviceType = device.DeviceType
			d.DeviceName = device.DeviceName
			copied := *d
			return &copied, nil
		}
	}
	m.nextDeviceID++
	device.ID = m.nextDeviceID
	device.CreatedAt = time.Now()
	copied := *device
	m.devices = append(m.devices, &copied)
	return device, nil
}

func (m *Memory) ListDevices(_ context.Context, userID string) ([]models.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Device
	for _, d := range m.devices {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *Memory) DeleteDevice(_ context.Context, userID string, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, d := range m.devices {
		if d.ID == id && d.UserID == userID {
			m.devices = append(m.devices[:i], m.devices[i+1:]...)
			return nil
		}
	}
	return notFound("device")
}

func (m *Memory) RecordNotification(_ context.Context, history *models.NotificationHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, *history)
	return nil
}

func (m *Memory) ListNotifications(_ context.Context, userID string, limit, offset int) ([]models.NotificationHistory, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.NotificationHistory
	for i := len(m.notifications) - 1; i >= 0; i-- {
		if m.notifications[i].UserID == userID {
			out = append(out, m.notifications[i])
		}
	}
	total := int64(len(out))
	if offset > len(out) {
		offset = len(out)
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

// ---- helpers ----

func cloneClient(c *models.Client) *models.Client {
	copied := *c
	if c.PhotoRefs != nil {
		copied.PhotoRefs = append([]string(nil), c.PhotoRefs...)
	}
	return &copied
}

func optionalString(v interface{}) *string {
	switch s := v.(type) {
	case *string:
		return s
	case string:
		return &s
	default:
		return nil
	}
}

func applyUserUpdates(u *models.User, updates map[string]interface{}) {
	for k, v := range updates {
		switch k {
		case "name":
			u.Name = v.(string)
		case "email":
			u.Email = v.(string)
		case "password_hash":
			u.PasswordHash = v.(string)
		case "status":
			u.Status = v.(string)
		case "gym_type":
			u.GymType = v.(string)
		case "profile_image":
			u.ProfileImage = optionalString(v)
		case "gym_name":
			u.GymName = optionalString(v)
		case "gym_address":
			u.GymAddress = optionalString(v)
		case "gym_logo":
			u.GymLogo = optionalString(v)
		}
	}
	u.UpdatedAt = time.Now()
}

func applyClientUpdates(c *models.Client, updates map[string]interface{}) {
	for k, v := range updates {
		switch k {
		case "name":
			c.Name = v.(string)
		case "phone":
			c.Phone = v.(string)
		case "email":
			c.Email = optionalString(v)
		case "membership_type":
			c.MembershipType = v.(string)
		case "start_date":
			c.StartDate = v.(time.Time)
		case "end_date":
			c.EndDate = v.(time.Time)
		case "fee":
			c.Fee = v.(decimal.Decimal)
		case "is_active":
			c.IsActive = v.(int)
		case "terms_accepted":
			c.TermsAccepted = v.(bool)
		}
	}
	c.UpdatedAt = time.Now()
}
