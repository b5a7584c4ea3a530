package employees

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var ErrNotFound = errors.New("employee not found")

// Store is the backend surface the service needs. Implementations talk to the
// hosted table; the service never caches what they return.
type Store interface {
	List(ctx context.Context, orderBy string) ([]Employee, error)
	Get(ctx context.Context, id ID) (Employee, error)
	Insert(ctx context.Context, rows ...Fields) error
	Update(ctx context.Context, id ID, fields Fields) error
}

// SaveError reports a backend failure during Save.
type SaveError struct {
	Op  string
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("%s employee: %v", e.Op, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// Message is the text shown to the user. The cause only goes to the log.
func (e *SaveError) Message() string {
	return MessageSaveFailed
}

type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

func (s *Service) ListByName(ctx context.Context) ([]Employee, error) {
	return s.list(ctx, ColumnName)
}

func (s *Service) ListByDepartment(ctx context.Context) ([]Employee, error) {
	return s.list(ctx, ColumnDepartment)
}

func (s *Service) list(ctx context.Context, orderBy string) ([]Employee, error) {
	list, err := s.store.List(ctx, orderBy)
	if err != nil {
		return nil, fmt.Errorf("list employees by %s: %w", orderBy, err)
	}
	if list == nil {
		list = []Employee{}
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id ID) (Employee, error) {
	if strings.TrimSpace(id.String()) == "" {
		return Employee{}, ErrNotFound
	}
	employee, err := s.store.Get(ctx, id)
	if err != nil {
		return Employee{}, fmt.Errorf("get employee %s: %w", id, err)
	}
	return employee, nil
}

// Save inserts fields as a new row when prior is nil and otherwise updates the
// row with prior's id. Invalid fields never reach the store.
func (s *Service) Save(ctx context.Context, prior *Employee, fields Fields) error {
	fields = fields.Normalize()
	if err := fields.Validate(); err != nil {
		return err
	}

	if prior == nil {
		if err := s.store.Insert(ctx, fields); err != nil {
			s.logger.Error("save employee failed", zap.String("op", "insert"), zap.Error(err))
			return &SaveError{Op: "insert", Err: err}
		}
		s.logger.Info("employee inserted", zap.String("name", fields.Name), zap.String("department", fields.Department))
		return nil
	}

	if err := s.store.Update(ctx, prior.ID, fields); err != nil {
		s.logger.Error("save employee failed", zap.String("op", "update"), zap.String("id", prior.ID.String()), zap.Error(err))
		return &SaveError{Op: "update", Err: err}
	}
	s.logger.Info("employee updated", zap.String("id", prior.ID.String()))
	return nil
}

// ImportResult summarises a bulk import.
type ImportResult struct {
	Inserted int
	Skipped  int
}

// Import inserts every valid row in one request. Rows missing a name or
// department are skipped and counted.
func (s *Service) Import(ctx context.Context, rows []Fields) (ImportResult, error) {
	valid := make([]Fields, 0, len(rows))
	var result ImportResult
	for _, row := range rows {
		row = row.Normalize()
		if err := row.Validate(); err != nil {
			result.Skipped++
			continue
		}
		valid = append(valid, row)
	}
	if len(valid) == 0 {
		return result, nil
	}
	if err := s.store.Insert(ctx, valid...); err != nil {
		s.logger.Error("import employees failed", zap.Int("rows", len(valid)), zap.Error(err))
		return result, &SaveError{Op: "import", Err: err}
	}
	result.Inserted = len(valid)
	s.logger.Info("employees imported", zap.Int("inserted", result.Inserted), zap.Int("skipped", result.Skipped))
	return result, nil
}
