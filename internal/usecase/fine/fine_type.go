package fine

import (
	"context"
	"strings"

	"library-circulation/internal/domain/fine"
	"library-circulation/internal/domain/uow"
	"library-circulation/internal/usecase/errmap"
	"library-circulation/pkg/apperr"
	"library-circulation/pkg/id"
)

func (u *Usecase) CreateFineType(ctx context.Context, in FineTypeInput) (*FineTypeDTO, error) {
	kind, err := validateType(in)
	if err != nil {
		return nil, err
	}
	ft := &fine.FineType{
		FineTypeID:  id.NewID32(),
		Name:        strings.TrimSpace(in.Name),
		Type:        kind,
		Amount:      in.Amount.Round(2),
		Description: in.Description,
	}
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error { return r.FineTypes.Create(ctx, ft) })
	u.metrics.Observe("create_fine_type", err)
	if err != nil {
		return nil, errmap.From(err)
	}
	return toTypeDTO(ft), nil
}

func (u *Usecase) GetFineType(ctx context.Context, fineTypeID string) (*FineTypeDTO, error) {
	var out *FineTypeDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		ft, err := r.FineTypes.GetByFineTypeID(ctx, fineTypeID)
		if err != nil {
			return err
		}
		out = toTypeDTO(ft)
		return nil
	})
	if err != nil {
		return nil, errmap.From(err)
	}
	return out, nil
}

func (u *Usecase) ListFineTypes(ctx context.Context) ([]FineTypeDTO, error) {
	out := []FineTypeDTO{}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		types, err := r.FineTypes.List(ctx)
		if err != nil {
			return err
		}
		for i := range types {
			out = append(out, *toTypeDTO(&types[i]))
		}
		return nil
	})
	if err != nil {
		return nil, errmap.From(err)
	}
	return out, nil
}

// UpdateFineType changes the catalog entry. Fines already assessed keep their amounts.
func (u *Usecase) UpdateFineType(ctx context.Context, fineTypeID string, in FineTypeInput) (*FineTypeDTO, error) {
	kind, err := validateType(in)
	if err != nil {
		return nil, err
	}
	var out *FineTypeDTO
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		ft, err := r.FineTypes.GetByFineTypeID(ctx, fineTypeID)
		if err != nil {
			return err
		}
		ft.Name = strings.TrimSpace(in.Name)
		ft.Type = kind
		ft.Amount = in.Amount.Round(2)
		ft.Description = in.Description
		if err := r.FineTypes.Save(ctx, ft); err != nil {
			return err
		}
		out = toTypeDTO(ft)
		return nil
	})
	u.metrics.Observe("update_fine_type", err)
	if err != nil {
		return nil, errmap.From(err)
	}
	return out, nil
}

// DeleteFineType refuses while any fine references the entry.
func (u *Usecase) DeleteFineType(ctx context.Context, fineTypeID string) error {
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		ft, err := r.FineTypes.GetByFineTypeID(ctx, fineTypeID)
		if err != nil {
			return err
		}
		n, err := r.Fines.CountByFineType(ctx, ft.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict("fine type %s is referenced by %d fines", ft.FineTypeID, n).
				WithDetails(map[string]any{"fine_type_id": ft.FineTypeID, "fines": n})
		}
		return r.FineTypes.Delete(ctx, ft.ID)
	})
	u.metrics.Observe("delete_fine_type", err)
	return errmap.From(err)
}

func validateType(in FineTypeInput) (fine.Kind, error) {
	if strings.TrimSpace(in.Name) == "" {
		return "", apperr.Validation("name is required")
	}
	kind, err := fine.ParseKind(in.Type)
	if err != nil {
		return "", apperr.Validation("type must be one of lost, damaged, late").
			WithDetails(map[string]any{"type": in.Type})
	}
	if in.Amount.IsNegative() {
		return "", apperr.Validation("amount must not be negative").
			WithDetails(map[string]any{"amount": in.Amount.String()})
	}
	return kind, nil
}

func toTypeDTO(ft *fine.FineType) *FineTypeDTO {
	return &FineTypeDTO{
		FineTypeID:  ft.FineTypeID,
		Name:        ft.Name,
		Type:        string(ft.Type),
		Amount:      ft.Amount,
		Description: ft.Description,
		CreatedAt:   ft.CreatedAt,
		UpdatedAt:   ft.UpdatedAt,
	}
}
