// Package cached wraps slow-changing reference repositories with an
// in-process TTL cache.
package cached

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/frontierlab/labdesk/internal/model"
	"github.com/frontierlab/labdesk/internal/repository"
)

const (
	labKey     = "lab_identity"
	doctorsKey = "doctors"
)

type Config struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

type LabRepository struct {
	next  repository.LabRepository
	cache *cache.Cache
}

func NewLabRepository(next repository.LabRepository, cfg Config) *LabRepository {
	return &LabRepository{next: next, cache: cache.New(cfg.TTL, cfg.CleanupInterval)}
}

func (r *LabRepository) Identity(ctx context.Context) (*model.LabIdentity, error) {
	if v, found := r.cache.Get(labKey); found {
		return v.(*model.LabIdentity), nil
	}

	lab, err := r.next.Identity(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(labKey, lab)
	return lab, nil
}

type DoctorRepository struct {
	next  repository.DoctorRepository
	cache *cache.Cache
}

func NewDoctorRepository(next repository.DoctorRepository, cfg Config) *DoctorRepository {
	return &DoctorRepository{next: next, cache: cache.New(cfg.TTL, cfg.CleanupInterval)}
}

// Get serves from the cached list when it is warm and falls through to the
// database otherwise.
func (r *DoctorRepository) Get(ctx context.Context, id int64) (*model.Doctor, error) {
	if v, found := r.cache.Get(doctorsKey); found {
		for _, d := range v.([]*model.Doctor) {
			if d.ID == id {
				return d, nil
			}
		}
	}
	return r.next.Get(ctx, id)
}

func (r *DoctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	if v, found := r.cache.Get(doctorsKey); found {
		return v.([]*model.Doctor), nil
	}

	doctors, err := r.next.List(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(doctorsKey, doctors)
	return doctors, nil
}
