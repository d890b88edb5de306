package memory

import (
	"context"
	"time"

	requestRepo "trimly/database/repository/request"
	"trimly/models"
)

// RequestRepo is the in-memory RequestRepository.
type RequestRepo struct {
	s *Store
}

var _ requestRepo.RequestRepository = (*RequestRepo)(nil)

func (r *RequestRepo) Create(ctx context.Context, req *models.ServiceRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.requests[req.ID] = *req
	return nil
}

func (r *RequestRepo) GetByID(ctx context.Context, id string) (*models.ServiceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[id]
	if !ok {
		return nil, requestRepo.ErrNotFound
	}
	return &req, nil
}

func (r *RequestRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.ServiceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.ServiceRequest
	for _, req := range r.s.requests {
		if req.CustomerID == customerID {
			out = append(out, req)
		}
	}
	return out, nil
}

func statusIn(status models.RequestStatus, from []models.RequestStatus) bool {
	for _, f := range from {
		if status == f {
			return true
		}
	}
	return false
}

func (r *RequestRepo) UpdateStatusIf(ctx context.Context, id string, from []models.RequestStatus, to models.RequestStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[id]
	if !ok || !statusIn(req.Status, from) {
		return false, nil
	}
	req.Status = to
	r.s.requests[id] = req
	return true, nil
}

func (r *RequestRepo) CancelIf(ctx context.Context, id string, from []models.RequestStatus, reason string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[id]
	if !ok || !statusIn(req.Status, from) {
		return false, nil
	}
	req.Status = models.RequestCancelled
	req.CancelReason = reason
	r.s.requests[id] = req
	return true, nil
}

func (r *RequestRepo) ListExpired(ctx context.Context, now time.Time, limit int64) ([]models.ServiceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.ServiceRequest
	for _, req := range r.s.requests {
		if req.Open() && now.After(req.ExpiresAt) {
			out = append(out, req)
			if int64(len(out)) == limit {
				break
			}
		}
	}
	return out, nil
}
