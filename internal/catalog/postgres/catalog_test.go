package postgres

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatemesh/storefront/internal/domain"
	apperrors "github.com/gatemesh/storefront/pkg/errors"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func productRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "slug", "description", "price", "category",
		"specs", "features", "images", "in_stock", "featured",
	})
}

func TestCatalog_FindByID(t *testing.T) {
	mock := newMock(t)
	repo := NewCatalog(mock)

	rows := productRows().AddRow(
		"water-level-sensor", "Water Level Sensor", "water-level-sensor",
		"Real-time water level monitoring", int64(17900), domain.CategoryIrrigation,
		[]byte(`{"rating":"IP67"}`), []byte(`["Temperature sensing"]`),
		[]byte(`["/products/water-level-sensor.jpg"]`), true, true,
	)
	mock.ExpectQuery("SELECT (.+) FROM products").
		WithArgs("water-level-sensor").
		WillReturnRows(rows)

	p, err := repo.FindByID(context.Background(), "water-level-sensor")
	require.NoError(t, err)
	assert.Equal(t, int64(17900), p.Price)
	assert.Equal(t, "IP67", p.Specs["rating"])
	assert.True(t, p.Featured)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalog_FindByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewCatalog(mock)

	mock.ExpectQuery("SELECT (.+) FROM products").
		WithArgs("nope").
		WillReturnRows(productRows())

	_, err := repo.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalog_ListByCategory(t *testing.T) {
	mock := newMock(t)
	repo := NewCatalog(mock)

	rows := productRows().
		AddRow("headgate-controller", "Headgate Controller (Controller Only)", "headgate-controller",
			"Gate control", int64(32900), domain.CategoryIrrigation,
			[]byte(`{}`), []byte(`[]`), []byte(`[]`), true, false).
		AddRow("water-level-sensor", "Water Level Sensor", "water-level-sensor",
			"Water levels", int64(17900), domain.CategoryIrrigation,
			[]byte(`{}`), []byte(`[]`), []byte(`[]`), true, true)
	mock.ExpectQuery("SELECT (.+) FROM products").
		WithArgs(domain.CategoryIrrigation).
		WillReturnRows(rows)

	products, err := repo.ListByCategory(context.Background(), domain.CategoryIrrigation)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "headgate-controller", products[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalog_Categories(t *testing.T) {
	mock := newMock(t)
	repo := NewCatalog(mock)

	rows := pgxmock.NewRows([]string{"id", "name", "description", "count"}).
		AddRow(domain.CategoryIrrigation, "Irrigation Control", "Water management", 3).
		AddRow(domain.CategoryWeather, "Weather Monitoring", "Environmental sensors", 0)
	mock.ExpectQuery("SELECT (.+) FROM categories").WillReturnRows(rows)

	categories, err := repo.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, 3, categories[0].Count)
	assert.Zero(t, categories[1].Count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalog_Upsert(t *testing.T) {
	mock := newMock(t)
	repo := NewCatalog(mock)

	p := &domain.Product{
		ID:       "mesh-router",
		Name:     "Mesh Router Node",
		Slug:     "mesh-router",
		Price:    20900,
		Category: domain.CategoryInfrastructure,
		InStock:  true,
	}

	mock.ExpectExec("INSERT INTO products").
		WithArgs(p.ID, p.Name, p.Slug, p.Description, p.Price, p.Category,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), p.InStock, p.Featured).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Upsert(context.Background(), p))
	require.NoError(t, mock.ExpectationsWereMet())
}
