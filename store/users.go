package store

import (
	"context"
	"time"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"gorm.io/gorm"
)

// CreateOwner inserts an owner, its plan catalog and its initial subscription atomically.
func (s *Store) CreateOwner(ctx context.Context, owner *models.User, sub *models.Subscription) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(owner).Error; err != nil {
			return translate(err, "create owner")
		}
		if err := tx.Create(sub).Error; err != nil {
			return translate(err, "create subscription")
		}
		return nil
	})
}

func (s *Store) CreateWorker(ctx context.Context, worker *models.User) error {
	return translate(s.db.WithContext(ctx).Create(worker).Error, "create worker")
}

func (s *Store) FindUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (s *Store) EmailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND id <> ?", email, exceptID).
		Count(&count).Error
	return count > 0, translate(err, "check email")
}

func (s *Store) UpdateUser(ctx context.Context, id string, updates map[string]interface{}) (*models.User, error) {
	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, translate(result.Error, "update user")
	}
	if result.RowsAffected == 0 {
		return nil, translate(gorm.ErrRecordNotFound, "user")
	}
	return s.FindUser(ctx, id)
}

// ReplaceGymProfile updates the owner's gym fields and swaps its plan catalog in one transaction.
func (s *Store) ReplaceGymProfile(ctx context.Context, ownerID string, updates map[string]interface{}, plans []models.MembershipPlan) (*models.User, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.User{}).Where("id = ? AND role = ?", ownerID, models.RoleOwner).Updates(updates).Error; err != nil {
				return err
			}
		}
		if plans == nil {
			return nil
		}
		if err := tx.Where("owner_id = ?", ownerID).Delete(&models.MembershipPlan{}).Error; err != nil {
			return err
		}
		for i := range plans {
			plans[i].ID = 0
			plans[i].OwnerID = ownerID
		}
		if len(plans) == 0 {
			return nil
		}
		return tx.Create(&plans).Error
	})
	if err != nil {
		return nil, translate(err, "update gym profile")
	}
	return s.FindUser(ctx, ownerID)
}

func (s *Store) ListMembershipPlans(ctx context.Context, ownerID string) ([]models.MembershipPlan, error) {
	var plans []models.MembershipPlan
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id").Find(&plans).Error
	return plans, translate(err, "list membership plans")
}

func (s *Store) ListWorkers(ctx context.Context, ownerID string) ([]models.User, error) {
	var workers []models.User
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND role = ?", ownerID, models.RoleWorker).
		Order("created_at DESC").
		Find(&workers).Error
	return workers, translate(err, "list workers")
}

func (s *Store) DeleteWorker(ctx context.Context, ownerID, workerID string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ? AND role = ?", workerID, ownerID, models.RoleWorker).
		Delete(&models.User{})
	if result.Error != nil {
		return translate(result.Error, "delete worker")
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "worker")
	}
	return nil
}

func (s *Store) SetOwnerStatus(ctx context.Context, ownerID, status string) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND role = ?", ownerID, models.RoleOwner).
		Update("status", status)
	if result.Error != nil {
		return translate(result.Error, "update owner status")
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "owner")
	}
	return nil
}

func (s *Store) ListTenants(ctx context.Context, filter TenantFilter) ([]TenantSummary, error) {
	query := s.db.WithContext(ctx).Model(&models.User{}).
		Select(`users.id, users.name, users.email, users.gym_name, users.status, users.total_revenue, users.created_at,
			(SELECT COUNT(*) FROM clients WHERE clients.owner_id = users.id) AS client_count,
			COALESCE((SELECT plan FROM subscriptions WHERE subscriptions.owner_id = users.id), ?) AS subscription_plan`, models.PlanFree).
		Where("users.role = ?", models.RoleOwner)

	if filter.Search != "" {
		like := containsPattern(filter.Search)
		query = query.Where("(users.name ILIKE ? OR users.email ILIKE ? OR users.gym_name ILIKE ?)", like, like, like)
	}
	if filter.Status != "" && filter.Status != "all" {
		query = query.Where("users.status = ?", filter.Status)
	}

	var tenants []TenantSummary
	err := query.Order("users.created_at DESC").Scan(&tenants).Error
	return tenants, translate(err, "list tenants")
}

func (s *Store) PlatformStats(ctx context.Context, since time.Time) (*PlatformStats, error) {
	var stats PlatformStats
	db := s.db.WithContext(ctx)

	err := db.Model(&models.User{}).
		Select(`COUNT(*) AS total_admins,
			COUNT(*) FILTER (WHERE status = ?) AS active_admins,
			COUNT(*) FILTER (WHERE status = ?) AS suspended_admins,
			COALESCE(SUM(total_revenue), 0) AS total_revenue`, models.StatusActive, models.StatusSuspended).
		Where("role = ?", models.RoleOwner).
		Scan(&stats).Error
	if err != nil {
		return nil, translate(err, "owner stats")
	}

	if err := db.Model(&models.Receipt{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("generated_at >= ?", since).
		Row().Scan(&stats.MonthlyRevenue); err != nil {
		return nil, translate(err, "receipt revenue")
	}

	if err := db.Model(&models.Client{}).Count(&stats.TotalClients).Error; err != nil {
		return nil, translate(err, "client count")
	}
	return &stats, nil
}

func (s *Store) CreateSuperAdmin(ctx context.Context, admin *models.SuperAdmin) error {
	return translate(s.db.WithContext(ctx).Create(admin).Error, "create super admin")
}

func (s *Store) FindSuperAdmin(ctx context.Context, id string) (*models.SuperAdmin, error) {
	var admin models.SuperAdmin
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&admin).Error; err != nil {
		return nil, translate(err, "super admin")
	}
	return &admin, nil
}

func (s *Store) FindSuperAdminByEmail(ctx context.Context, email string) (*models.SuperAdmin, error) {
	var admin models.SuperAdmin
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		return nil, translate(err, "super admin")
	}
	return &admin, nil
}
