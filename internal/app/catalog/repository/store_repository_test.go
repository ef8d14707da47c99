package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// StoreRepositoryTestSuite тестовый suite для PostgreSQL repository
type StoreRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  StoreRepository
	sqlDB *sql.DB
}

func TestStoreRepositorySuite(t *testing.T) {
	suite.Run(t, new(StoreRepositoryTestSuite))
}

func (s *StoreRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{})
	require.NoError(s.T(), err)

	s.repo = NewStoreRepository(s.db)
}

func (s *StoreRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

// ===================== GetAll Tests =====================

func (s *StoreRepositoryTestSuite) TestGetAll_Success() {
	ctx := context.Background()
	createdAt := time.Now()

	rows := sqlmock.NewRows([]string{"id", "name", "address", "phone", "email", "created_at"}).
		AddRow(uuid.New(), "Store Center", "Lenina 1", "", "", createdAt).
		AddRow(uuid.New(), "Store North", "Mira 15", "", "", createdAt)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "stores" ORDER BY name ASC`)).
		WillReturnRows(rows)

	// Act
	stores, err := s.repo.GetAll(ctx)

	// Assert
	s.NoError(err)
	s.Len(stores, 2)
	s.Equal("Store Center", stores[0].Name)

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== CountByIDs Tests =====================

func (s *StoreRepositoryTestSuite) TestCountByIDs_Success() {
	ctx := context.Background()
	storeIDs := []uuid.UUID{uuid.New(), uuid.New()}

	rows := sqlmock.NewRows([]string{"count"}).AddRow(int64(2))

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "stores" WHERE id IN ($1,$2)`)).
		WillReturnRows(rows)

	// Act
	count, err := s.repo.CountByIDs(ctx, storeIDs)

	// Assert
	s.NoError(err)
	s.Equal(int64(2), count)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *StoreRepositoryTestSuite) TestCountByIDs_EmptyInput() {
	ctx := context.Background()

	// Пустой список не порождает запроса к БД
	count, err := s.repo.CountByIDs(ctx, nil)

	s.NoError(err)
	s.Equal(int64(0), count)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *StoreRepositoryTestSuite) TestCountByIDs_DBError() {
	ctx := context.Background()
	storeIDs := []uuid.UUID{uuid.New()}

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "stores" WHERE id IN ($1)`)).
		WillReturnError(sql.ErrConnDone)

	// Act
	count, err := s.repo.CountByIDs(ctx, storeIDs)

	// Assert
	s.Error(err)
	s.Equal(int64(0), count)

	s.NoError(s.mock.ExpectationsWereMet())
}
