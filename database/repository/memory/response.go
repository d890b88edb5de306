package memory

import (
	"context"
	"sort"

	responseRepo "trimly/database/repository/response"
	"trimly/models"
)

// ResponseRepo is the in-memory ResponseRepository.
type ResponseRepo struct {
	s *Store
}

var _ responseRepo.ResponseRepository = (*ResponseRepo)(nil)

func (r *ResponseRepo) Create(ctx context.Context, resp *models.BarberResponse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := pairKey(resp.RequestID, resp.BarberID)
	if _, exists := r.s.pairs[key]; exists {
		return responseRepo.ErrDuplicate
	}
	r.s.responses[resp.ID] = *resp
	r.s.pairs[key] = resp.ID
	return nil
}

func (r *ResponseRepo) GetByID(ctx context.Context, id string) (*models.BarberResponse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	resp, ok := r.s.responses[id]
	if !ok {
		return nil, responseRepo.ErrNotFound
	}
	return &resp, nil
}

func (r *ResponseRepo) GetByRequestAndBarber(ctx context.Context, requestID, barberID string) (*models.BarberResponse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.pairs[pairKey(requestID, barberID)]
	if !ok {
		return nil, responseRepo.ErrNotFound
	}
	resp := r.s.responses[id]
	return &resp, nil
}

func (r *ResponseRepo) ListByRequest(ctx context.Context, requestID string) ([]models.BarberResponse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.BarberResponse
	for _, resp := range r.s.responses {
		if resp.RequestID == requestID {
			out = append(out, resp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RespondedAt.Before(out[j].RespondedAt) })
	return out, nil
}

func (r *ResponseRepo) ListPending(ctx context.Context, limit int64) ([]models.BarberResponse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.BarberResponse
	for _, resp := range r.s.responses {
		if resp.Status == models.ResponsePending {
			out = append(out, resp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RespondedAt.Before(out[j].RespondedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ResponseRepo) UpdateStatusIf(ctx context.Context, id string, from, to models.ResponseStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	resp, ok := r.s.responses[id]
	if !ok || resp.Status != from {
		return false, nil
	}
	resp.Status = to
	r.s.responses[id] = resp
	return true, nil
}

func (r *ResponseRepo) Rebid(ctx context.Context, resp *models.BarberResponse) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := pairKey(resp.RequestID, resp.BarberID)
	id, ok := r.s.pairs[key]
	if !ok {
		return false, nil
	}
	existing := r.s.responses[id]
	if existing.Status != models.ResponseExpired {
		return false, nil
	}
	delete(r.s.responses, id)
	r.s.responses[resp.ID] = *resp
	r.s.pairs[key] = resp.ID
	return true, nil
}

func (r *ResponseRepo) DeleteIfPending(ctx context.Context, id, barberID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	resp, ok := r.s.responses[id]
	if !ok || resp.BarberID != barberID || resp.Status != models.ResponsePending {
		return false, nil
	}
	delete(r.s.responses, id)
	delete(r.s.pairs, pairKey(resp.RequestID, resp.BarberID))
	return true, nil
}

func (r *ResponseRepo) TransitionPendingByRequest(ctx context.Context, requestID, exceptID string, to models.ResponseStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, resp := range r.s.responses {
		if resp.RequestID == requestID && resp.Status == models.ResponsePending && id != exceptID {
			resp.Status = to
			r.s.responses[id] = resp
			n++
		}
	}
	return n, nil
}
