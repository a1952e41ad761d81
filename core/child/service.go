package child

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tkabila/chekechea/core"
)

var (
	// errors
	ErrNotFound = errors.New("child not found")
)

type (
	Repository interface {
		CreateChild(ctx context.Context, ch Child, exec ...core.DBExecutor) (Child, error)
		GetChildByID(ctx context.Context, id string, exec ...core.DBExecutor) (Child, error)
		// QueryChildren applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Child.Name or Child.GuardianName.
		QueryChildren(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Child, error)
		UpdateChild(ctx context.Context, ch Child, exec ...core.DBExecutor) (Child, error)
		DeleteChildrenByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, nc NewChild, parentID string) (Child, error)
		GetByID(ctx context.Context, id string) (Child, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Child, error)
		Update(ctx context.Context, orig Child, uc UpdateChild) (Child, error)
		AssignCaregiver(ctx context.Context, orig Child, caregiverID string) (Child, error)
		Delete(ctx context.Context, ids ...string) error
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (svc *Service) Create(ctx context.Context, nc NewChild, parentID string) (Child, error) {
	now := core.NowFunc().UTC()
	fee := DefaultDailyFee
	if nc.BaseDailyFee != nil {
		fee = *nc.BaseDailyFee
	}
	ch := Child{
		Name:           nc.Name,
		DateOfBirth:    nc.DateOfBirth,
		Gender:         nc.Gender,
		Allergies:      nc.Allergies,
		MedicalNotes:   nc.MedicalNotes,
		GuardianName:   nc.GuardianName,
		GuardianPhone:  nc.GuardianPhone,
		GuardianEmail:  nc.GuardianEmail,
		ParentID:       parentID,
		EnrollmentDate: now,
		Status:         StatusActive,
		BaseDailyFee:   fee,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateChild(ctx, ch)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Child, error) {
	return svc.repo.GetChildByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Child, error) {
	return svc.repo.QueryChildren(ctx, filter, ordering)
}

func (svc *Service) Update(ctx context.Context, orig Child, uc UpdateChild) (Child, error) {
	ch := orig
	ch.Name = uc.Name
	ch.DateOfBirth = uc.DateOfBirth
	ch.Gender = uc.Gender
	ch.Status = uc.Status
	if uc.Allergies != nil {
		ch.Allergies = uc.Allergies
	}
	if uc.MedicalNotes != nil {
		ch.MedicalNotes = *uc.MedicalNotes
	}
	if uc.GuardianName != nil {
		ch.GuardianName = *uc.GuardianName
	}
	if uc.GuardianPhone != nil {
		ch.GuardianPhone = *uc.GuardianPhone
	}
	if uc.GuardianEmail != nil {
		ch.GuardianEmail = *uc.GuardianEmail
	}
	if uc.BaseDailyFee != nil {
		ch.BaseDailyFee = *uc.BaseDailyFee
	}
	ch.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateChild(ctx, ch)
}

func (svc *Service) AssignCaregiver(ctx context.Context, orig Child, caregiverID string) (Child, error) {
	ch := orig
	ch.CaregiverID = null.NewString(caregiverID, caregiverID != "")
	ch.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateChild(ctx, ch)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteChildrenByID(ctx, ids)
	return err
}
