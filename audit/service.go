// api/audit/service.go
package audit

import "context"

type Service interface {
	Log(ctx context.Context, entry LogEntry) error
	Query(ctx context.Context, userID, action string, limit int) ([]LogEntry, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Log(ctx context.Context, entry LogEntry) error {
	return s.repo.Append(ctx, entry)
}

func (s *service) Query(ctx context.Context, userID, action string, limit int) ([]LogEntry, error) {
	return s.repo.Query(ctx, userID, action, limit)
}
