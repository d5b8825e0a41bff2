package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/xiebiao/pharmacy/internal/domain/medicine"
	"github.com/xiebiao/pharmacy/internal/domain/staff"
)

// StaffRepository 员工仓储
type StaffRepository struct{ s *Store }

func NewStaffRepository(s *Store) *StaffRepository { return &StaffRepository{s: s} }

func (r *StaffRepository) Create(ctx context.Context, st *staff.Staff) error {
	return r.s.do(ctx, func(db *state) error {
		for _, existing := range db.staff {
			if existing.Email == st.Email {
				return staff.ErrEmailDuplicate
			}
		}
		st.ID = db.next("staff")
		cp := *st
		db.staff[st.ID] = &cp
		return nil
	})
}

func (r *StaffRepository) FindByID(ctx context.Context, id uint) (*staff.Staff, error) {
	var out *staff.Staff
	err := r.s.do(ctx, func(db *state) error {
		st, ok := db.staff[id]
		if !ok {
			return staff.ErrStaffNotFound
		}
		cp := *st
		out = &cp
		return nil
	})
	return out, err
}

func (r *StaffRepository) FindByEmail(ctx context.Context, email string) (*staff.Staff, error) {
	var out *staff.Staff
	err := r.s.do(ctx, func(db *state) error {
		for _, st := range db.staff {
			if st.Email == email {
				cp := *st
				out = &cp
				return nil
			}
		}
		return staff.ErrStaffNotFound
	})
	return out, err
}

// MedicineRepository 药品目录仓储
type MedicineRepository struct{ s *Store }

func NewMedicineRepository(s *Store) *MedicineRepository { return &MedicineRepository{s: s} }

func (r *MedicineRepository) Create(ctx context.Context, m *medicine.Medicine) error {
	return r.s.do(ctx, func(db *state) error {
		if _, ok := db.medicines[m.ProductID]; ok {
			return medicine.ErrProductIDDuplicate
		}
		m.ID = db.next("medicine")
		cp := *m
		db.medicines[m.ProductID] = &cp
		return nil
	})
}

func (r *MedicineRepository) FindByProductID(ctx context.Context, productID string) (*medicine.Medicine, error) {
	var out *medicine.Medicine
	err := r.s.do(ctx, func(db *state) error {
		m, ok := db.medicines[productID]
		if !ok {
			return medicine.ErrMedicineNotFound
		}
		cp := *m
		out = &cp
		return nil
	})
	return out, err
}

func (r *MedicineRepository) Update(ctx context.Context, m *medicine.Medicine) error {
	return r.s.do(ctx, func(db *state) error {
		if _, ok := db.medicines[m.ProductID]; !ok {
			return medicine.ErrMedicineNotFound
		}
		cp := *m
		db.medicines[m.ProductID] = &cp
		return nil
	})
}

func (r *MedicineRepository) Upsert(ctx context.Context, m *medicine.Medicine) (bool, error) {
	created := false
	err := r.s.do(ctx, func(db *state) error {
		if existing, ok := db.medicines[m.ProductID]; ok {
			m.ID = existing.ID
			m.CreatedAt = existing.CreatedAt
			if m.Description == "" {
				m.Description = existing.Description
			}
		} else {
			m.ID = db.next("medicine")
			created = true
		}
		cp := *m
		db.medicines[m.ProductID] = &cp
		return nil
	})
	return created, err
}

func (r *MedicineRepository) List(ctx context.Context, params medicine.ListParams) ([]*medicine.Medicine, int64, error) {
	var (
		out   []*medicine.Medicine
		total int64
	)
	err := r.s.do(ctx, func(db *state) error {
		keyword := strings.ToLower(params.Keyword)
		matched := make([]*medicine.Medicine, 0, len(db.medicines))
		for _, m := range db.medicines {
			if params.Category != "" && m.Category != params.Category {
				continue
			}
			if keyword != "" &&
				!strings.Contains(strings.ToLower(m.ProductID), keyword) &&
				!strings.Contains(strings.ToLower(m.Name), keyword) {
				continue
			}
			cp := *m
			matched = append(matched, &cp)
		}
		sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
		total = int64(len(matched))
		out = paginate(matched, params.Page, params.PageSize)
		return nil
	})
	return out, total, err
}
